package handlers

import (
	"context"
	"sort"

	"plant-backend/application/ports"
	"plant-backend/application/queries"
	"go.uber.org/zap"
)

// PlantQueryHandler serves the read side of plants
type PlantQueryHandler struct {
	plantRepo ports.PlantRepository
	userRepo  ports.UserRepository
	logger    *zap.Logger
}

// NewPlantQueryHandler creates a new plant query handler
func NewPlantQueryHandler(plantRepo ports.PlantRepository, userRepo ports.UserRepository, logger *zap.Logger) *PlantQueryHandler {
	return &PlantQueryHandler{
		plantRepo: plantRepo,
		userRepo:  userRepo,
		logger:    logger,
	}
}

// HandleList returns a user's plants ordered by human id
func (h *PlantQueryHandler) HandleList(ctx context.Context, query queries.ListPlantsQuery) ([]queries.PlantView, error) {
	if err := authorizeView(ctx, h.userRepo, query.RequesterID, query.UserID); err != nil {
		return nil, err
	}

	plants, err := h.plantRepo.ListByUser(ctx, query.UserID)
	if err != nil {
		return nil, err
	}

	views := make([]queries.PlantView, len(plants))
	for i, p := range plants {
		views[i] = queries.NewPlantView(p)
	}
	sort.Slice(views, func(a, b int) bool { return views[a].HumanID < views[b].HumanID })

	h.logger.Debug("Listed plants",
		zap.String("userID", query.UserID),
		zap.Int("count", len(views)),
	)
	return views, nil
}

// HandleGet returns a plant by storage id
func (h *PlantQueryHandler) HandleGet(ctx context.Context, query queries.GetPlantQuery) (*queries.PlantView, error) {
	plant, err := h.plantRepo.GetByID(ctx, query.PlantID)
	if err != nil {
		return nil, err
	}
	if err := authorizeView(ctx, h.userRepo, query.RequesterID, plant.UserID()); err != nil {
		return nil, err
	}

	view := queries.NewPlantView(plant)
	return &view, nil
}

// HandleGetByHumanID returns a plant by its user-scoped human id
func (h *PlantQueryHandler) HandleGetByHumanID(ctx context.Context, query queries.GetPlantByHumanIDQuery) (*queries.PlantView, error) {
	if err := authorizeView(ctx, h.userRepo, query.RequesterID, query.UserID); err != nil {
		return nil, err
	}

	plant, err := h.plantRepo.GetByHumanID(ctx, query.UserID, query.HumanID)
	if err != nil {
		return nil, err
	}

	view := queries.NewPlantView(plant)
	return &view, nil
}
