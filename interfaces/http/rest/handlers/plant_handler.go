package handlers

import (
	"net/http"
	"strconv"

	"plant-backend/application/commands"
	"plant-backend/application/commands/bus"
	"plant-backend/application/queries"
	querybus "plant-backend/application/queries/bus"
	"plant-backend/pkg/common"
	pkgerrors "plant-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PlantHandler handles plant-related HTTP requests
type PlantHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errHandler *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewPlantHandler creates a new plant handler
func NewPlantHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *PlantHandler {
	return &PlantHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		errHandler: errHandler,
		logger:     logger,
	}
}

// ListPlants handles GET /plants/user/{userID}
func (h *PlantHandler) ListPlants(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := currentUser(w, r, h.errHandler)
	if !ok {
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.ListPlantsQuery{
		UserID:      chi.URLParam(r, "userID"),
		RequesterID: userCtx.UserID,
	})
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	plants, _ := result.([]queries.PlantView)
	if plants == nil {
		plants = []queries.PlantView{}
	}
	common.RespondJSON(w, http.StatusOK, plants)
}

// GetPlantByHumanID handles GET /plants/user/{userID}/{humanID}
func (h *PlantHandler) GetPlantByHumanID(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := currentUser(w, r, h.errHandler)
	if !ok {
		return
	}

	humanID, err := strconv.Atoi(chi.URLParam(r, "humanID"))
	if err != nil || humanID <= 0 {
		h.errHandler.Handle(w, r, pkgerrors.NewValidationError("human_id must be a positive integer"))
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetPlantByHumanIDQuery{
		UserID:      chi.URLParam(r, "userID"),
		HumanID:     humanID,
		RequesterID: userCtx.UserID,
	})
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// GetPlant handles GET /plants/{plantID}
func (h *PlantHandler) GetPlant(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := currentUser(w, r, h.errHandler)
	if !ok {
		return
	}

	plantID, ok := h.plantID(w, r)
	if !ok {
		return
	}

	h.respondPlant(w, r, plantID, userCtx.UserID)
}

// CreatePlant handles POST /plants/create
func (h *PlantHandler) CreatePlant(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := currentUser(w, r, h.errHandler)
	if !ok {
		return
	}

	var req CreatePlantRequest
	if !decodeBody(w, r, h.errHandler, &req) {
		return
	}

	sourceDate, err := parseDate("source_date", req.SourceDate)
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}
	sinkDate, err := parseDate("sink_date", req.SinkDate)
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	plantID := uuid.New().String()
	cmd := commands.CreatePlantCommand{
		PlantID:    plantID,
		UserID:     userCtx.UserID,
		HumanID:    req.HumanID,
		HumanName:  req.HumanName,
		Species:    req.Species,
		Location:   req.Location,
		ParentIDs:  req.ParentID,
		Source:     req.Source,
		SourceDate: sourceDate,
		Sink:       req.Sink,
		SinkDate:   sinkDate,
		Notes:      req.Notes,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Warn("Failed to create plant",
			zap.String("userID", userCtx.UserID),
			zap.Int("humanID", req.HumanID),
			zap.Error(err),
		)
		h.errHandler.Handle(w, r, err)
		return
	}

	// The inverted index may not list the new plant yet, so read it back
	// from the owner's partition
	result, err := h.queryBus.Ask(r.Context(), queries.GetPlantByHumanIDQuery{
		UserID:      userCtx.UserID,
		HumanID:     req.HumanID,
		RequesterID: userCtx.UserID,
	})
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, result)
}

// UpdatePlant handles PATCH /plants/{plantID}
func (h *PlantHandler) UpdatePlant(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := currentUser(w, r, h.errHandler)
	if !ok {
		return
	}

	plantID, ok := h.plantID(w, r)
	if !ok {
		return
	}

	var req UpdatePlantRequest
	if !decodeBody(w, r, h.errHandler, &req) {
		return
	}
	patch, err := req.Patch()
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	cmd := commands.UpdatePlantCommand{
		PlantID: plantID,
		UserID:  userCtx.UserID,
		Patch:   patch,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Warn("Failed to update plant",
			zap.String("plantID", plantID),
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		h.errHandler.Handle(w, r, err)
		return
	}

	h.respondPlant(w, r, plantID, userCtx.UserID)
}

// DeletePlant handles DELETE /plants/{plantID}
func (h *PlantHandler) DeletePlant(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := currentUser(w, r, h.errHandler)
	if !ok {
		return
	}

	plantID, ok := h.plantID(w, r)
	if !ok {
		return
	}

	cmd := commands.DeletePlantCommand{
		PlantID: plantID,
		UserID:  userCtx.UserID,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	common.RespondNoContent(w)
}

func (h *PlantHandler) plantID(w http.ResponseWriter, r *http.Request) (string, bool) {
	plantID := chi.URLParam(r, "plantID")
	if _, err := uuid.Parse(plantID); err != nil {
		h.errHandler.Handle(w, r, pkgerrors.NewValidationError("Invalid plant ID format"))
		return "", false
	}
	return plantID, true
}

// respondPlant answers with the stored plant
func (h *PlantHandler) respondPlant(w http.ResponseWriter, r *http.Request, plantID, requesterID string) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetPlantQuery{
		PlantID:     plantID,
		RequesterID: requesterID,
	})
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}
