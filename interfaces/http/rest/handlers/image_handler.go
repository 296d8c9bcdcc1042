package handlers

import (
	"net/http"

	"plant-backend/application/commands"
	"plant-backend/application/commands/bus"
	"plant-backend/application/queries"
	querybus "plant-backend/application/queries/bus"
	"plant-backend/pkg/common"
	pkgerrors "plant-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ImageHandler serves plant photo metadata
type ImageHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errHandler *pkgerrors.ErrorHandler
}

// NewImageHandler creates a new image handler
func NewImageHandler(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, errHandler *pkgerrors.ErrorHandler) *ImageHandler {
	return &ImageHandler{commandBus: commandBus, queryBus: queryBus, errHandler: errHandler}
}

// ListImages handles GET /images/plant/{plantID}
func (h *ImageHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := currentUser(w, r, h.errHandler)
	if !ok {
		return
	}

	plantID, ok := h.uuidParam(w, r, "plantID", "Invalid plant ID format")
	if !ok {
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.ListImagesQuery{
		PlantID:     plantID,
		RequesterID: userCtx.UserID,
	})
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	images, _ := result.([]queries.ImageView)
	if images == nil {
		images = []queries.ImageView{}
	}
	common.RespondJSON(w, http.StatusOK, images)
}

// GetImage handles GET /images/{imageID}
func (h *ImageHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := currentUser(w, r, h.errHandler)
	if !ok {
		return
	}
	imageID, ok := h.uuidParam(w, r, "imageID", "Invalid image ID format")
	if !ok {
		return
	}
	h.respondImage(w, r, imageID, userCtx.UserID)
}

// UpdateImage handles PATCH /images/{imageID}
func (h *ImageHandler) UpdateImage(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := currentUser(w, r, h.errHandler)
	if !ok {
		return
	}
	imageID, ok := h.uuidParam(w, r, "imageID", "Invalid image ID format")
	if !ok {
		return
	}

	var req UpdateImageRequest
	if !decodeBody(w, r, h.errHandler, &req) {
		return
	}
	taken, err := req.Time()
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	if err := h.commandBus.Send(r.Context(), commands.UpdateImageCommand{
		ImageID:   imageID,
		UserID:    userCtx.UserID,
		Timestamp: taken,
	}); err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}
	h.respondImage(w, r, imageID, userCtx.UserID)
}

// DeleteImage handles DELETE /images/{imageID}
func (h *ImageHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := currentUser(w, r, h.errHandler)
	if !ok {
		return
	}
	imageID, ok := h.uuidParam(w, r, "imageID", "Invalid image ID format")
	if !ok {
		return
	}

	if err := h.commandBus.Send(r.Context(), commands.DeleteImageCommand{
		ImageID: imageID,
		UserID:  userCtx.UserID,
	}); err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}
	common.RespondNoContent(w)
}

func (h *ImageHandler) uuidParam(w http.ResponseWriter, r *http.Request, name, message string) (string, bool) {
	id := chi.URLParam(r, name)
	if _, err := uuid.Parse(id); err != nil {
		h.errHandler.Handle(w, r, pkgerrors.NewValidationError(message))
		return "", false
	}
	return id, true
}

func (h *ImageHandler) respondImage(w http.ResponseWriter, r *http.Request, imageID, requesterID string) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetImageQuery{
		ImageID:     imageID,
		RequesterID: requesterID,
	})
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}
