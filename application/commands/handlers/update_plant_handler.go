package handlers

import (
	"context"

	"plant-backend/application/commands"
	"plant-backend/application/ports"
	"plant-backend/domain/config"
	"plant-backend/domain/core/entities"
	"plant-backend/domain/core/validators"
	pkgerrors "plant-backend/pkg/errors"
	"go.uber.org/zap"
)

// UpdatePlantHandler handles plant update commands
type UpdatePlantHandler struct {
	plantRepo ports.PlantRepository
	validator *validators.PlantValidator
	publisher ports.EventPublisher
	cache     ports.Cache
	logger    *zap.Logger
}

// NewUpdatePlantHandler creates a new update plant handler
func NewUpdatePlantHandler(
	plantRepo ports.PlantRepository,
	cfg *config.DomainConfig,
	publisher ports.EventPublisher,
	cache ports.Cache,
	logger *zap.Logger,
) *UpdatePlantHandler {
	return &UpdatePlantHandler{
		plantRepo: plantRepo,
		validator: validators.NewPlantValidator(cfg),
		publisher: publisher,
		cache:     cache,
		logger:    logger,
	}
}

// Handle executes the update plant command and returns the stored plant
func (h *UpdatePlantHandler) Handle(ctx context.Context, cmd commands.UpdatePlantCommand) (*entities.Plant, error) {
	plant, err := h.plantRepo.GetByID(ctx, cmd.PlantID)
	if err != nil {
		return nil, err
	}

	// Another user's plant is reported as missing
	if plant.UserID() != cmd.UserID {
		return nil, pkgerrors.ErrPlantNotFound.Clone().WithDetail("plant_id", cmd.PlantID)
	}

	changed, err := plant.Apply(cmd.Patch)
	if err != nil {
		return nil, err
	}
	if len(changed) == 0 {
		return plant, nil
	}

	if err := h.validator.ValidatePlant(plant.HumanID(), plant.Name().String(), plant.Details()); err != nil {
		return nil, err
	}
	if cmd.Patch.ParentIDs != nil && len(*cmd.Patch.ParentIDs) > 0 {
		collection, err := h.plantRepo.ListByUser(ctx, cmd.UserID)
		if err != nil {
			return nil, err
		}
		if err := checkParentsExist(*cmd.Patch.ParentIDs, collection); err != nil {
			return nil, err
		}
	}

	if err := h.plantRepo.Update(ctx, plant); err != nil {
		return nil, err
	}

	publishEvents(ctx, h.publisher, h.logger, plant.GetUncommittedEvents())
	plant.MarkEventsAsCommitted()
	invalidateLineage(ctx, h.cache, h.logger, cmd.UserID)

	h.logger.Info("Plant updated",
		zap.String("plantID", cmd.PlantID),
		zap.String("userID", cmd.UserID),
		zap.Strings("changed", changed),
	)
	return plant, nil
}
