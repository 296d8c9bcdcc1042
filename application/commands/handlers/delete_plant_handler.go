package handlers

import (
	"context"
	"fmt"

	"plant-backend/application/commands"
	"plant-backend/application/ports"
	"plant-backend/application/sagas"
	"plant-backend/domain/config"
	"plant-backend/domain/core/entities"
	pkgerrors "plant-backend/pkg/errors"
	"go.uber.org/zap"
)

// DeletePlantHandler handles plant deletion commands
type DeletePlantHandler struct {
	plantRepo ports.PlantRepository
	cleanup   *commands.CleanupPlantImagesHandler
	cfg       *config.DomainConfig
	publisher ports.EventPublisher
	cache     ports.Cache
	logger    *zap.Logger
}

// NewDeletePlantHandler creates a new delete plant handler
func NewDeletePlantHandler(
	plantRepo ports.PlantRepository,
	cleanup *commands.CleanupPlantImagesHandler,
	cfg *config.DomainConfig,
	publisher ports.EventPublisher,
	cache ports.Cache,
	logger *zap.Logger,
) *DeletePlantHandler {
	return &DeletePlantHandler{
		plantRepo: plantRepo,
		cleanup:   cleanup,
		cfg:       cfg,
		publisher: publisher,
		cache:     cache,
		logger:    logger,
	}
}

type deletePlantState struct {
	plant         *entities.Plant
	imagesRemoved int
}

// Handle executes the delete plant command. A plant that other plants
// name as a parent is kept. The plant item goes first; image cleanup is
// best effort.
func (h *DeletePlantHandler) Handle(ctx context.Context, cmd commands.DeletePlantCommand) error {
	builder := sagas.NewSagaBuilder("DeletePlant", h.logger).
		WithMetadata("plant_id", cmd.PlantID).
		WithStep("load_plant", func(ctx context.Context, _ interface{}) (interface{}, error) {
			plant, err := h.plantRepo.GetByID(ctx, cmd.PlantID)
			if err != nil {
				return nil, err
			}
			if plant.UserID() != cmd.UserID {
				return nil, pkgerrors.ErrPlantNotFound.Clone().WithDetail("plant_id", cmd.PlantID)
			}
			collection, err := h.plantRepo.ListByUser(ctx, cmd.UserID)
			if err != nil {
				return nil, err
			}
			if children := childrenOf(plant, collection); len(children) > 0 {
				return nil, pkgerrors.ErrPlantHasChildren.Clone().
					WithDetail("human_id", plant.HumanID()).
					WithDetail("child_ids", children)
			}
			return &deletePlantState{plant: plant}, nil
		}).
		WithStep("delete_plant", func(ctx context.Context, data interface{}) (interface{}, error) {
			state := data.(*deletePlantState)
			if err := h.plantRepo.Delete(ctx, state.plant); err != nil {
				return nil, err
			}
			return state, nil
		})

	if h.cfg.EnableImageCleanup {
		builder = builder.WithBestEffortStep("cleanup_images", func(ctx context.Context, data interface{}) (interface{}, error) {
			state := data.(*deletePlantState)
			removed, err := h.cleanup.Handle(ctx, commands.CleanupPlantImagesCommand{
				PlantID: cmd.PlantID,
				UserID:  cmd.UserID,
			})
			if err != nil {
				return nil, err
			}
			state.imagesRemoved = removed
			return state, nil
		})
	}

	result, err := builder.Build().Execute(ctx, nil)
	if err != nil {
		return err
	}
	state, ok := result.(*deletePlantState)
	if !ok {
		return fmt.Errorf("unexpected saga result %T", result)
	}

	state.plant.MarkDeleted(state.imagesRemoved)
	publishEvents(ctx, h.publisher, h.logger, state.plant.GetUncommittedEvents())
	state.plant.MarkEventsAsCommitted()
	invalidateLineage(ctx, h.cache, h.logger, cmd.UserID)

	h.logger.Info("Plant deleted",
		zap.String("plantID", cmd.PlantID),
		zap.String("userID", cmd.UserID),
		zap.Int("imagesRemoved", state.imagesRemoved),
	)
	return nil
}
