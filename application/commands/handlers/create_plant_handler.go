package handlers

import (
	"context"
	"errors"

	"plant-backend/application/commands"
	"plant-backend/application/ports"
	"plant-backend/domain/config"
	"plant-backend/domain/core/entities"
	"plant-backend/domain/core/validators"
	"plant-backend/domain/core/valueobjects"
	pkgerrors "plant-backend/pkg/errors"
	"go.uber.org/zap"
)

// CreatePlantHandler handles the CreatePlantCommand
type CreatePlantHandler struct {
	plantRepo ports.PlantRepository
	validator *validators.PlantValidator
	cfg       *config.DomainConfig
	publisher ports.EventPublisher
	cache     ports.Cache
	logger    *zap.Logger
}

// NewCreatePlantHandler creates a new handler instance
func NewCreatePlantHandler(
	plantRepo ports.PlantRepository,
	cfg *config.DomainConfig,
	publisher ports.EventPublisher,
	cache ports.Cache,
	logger *zap.Logger,
) *CreatePlantHandler {
	return &CreatePlantHandler{
		plantRepo: plantRepo,
		validator: validators.NewPlantValidator(cfg),
		cfg:       cfg,
		publisher: publisher,
		cache:     cache,
		logger:    logger,
	}
}

// Handle executes the create plant command
func (h *CreatePlantHandler) Handle(ctx context.Context, cmd commands.CreatePlantCommand) (*entities.Plant, error) {
	details := cmd.Details()
	if err := h.validator.ValidatePlant(cmd.HumanID, cmd.HumanName, details); err != nil {
		return nil, err
	}

	name, err := valueobjects.NewPlantNameWithConfig(cmd.HumanName, h.cfg)
	if err != nil {
		return nil, err
	}

	// The collection is small enough to check the limit and the human id in one read
	existing, err := h.plantRepo.ListByUser(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	if err := h.validator.ValidatePlantCount(len(existing)); err != nil {
		return nil, err
	}
	for _, p := range existing {
		if p.HumanID() == cmd.HumanID {
			return nil, pkgerrors.ErrDuplicateHumanID.Clone().WithDetail("human_id", cmd.HumanID)
		}
	}
	if err := checkParentsExist(details.ParentIDs, existing); err != nil {
		return nil, err
	}

	plant, err := entities.NewPlantWithID(cmd.PlantID, cmd.UserID, cmd.HumanID, name, details)
	if err != nil {
		return nil, err
	}

	if err := h.plantRepo.Create(ctx, plant); err != nil {
		// A concurrent create with the same human id loses the race here
		if pkgerrors.IsConflict(err) && !errors.Is(err, pkgerrors.ErrDuplicateHumanID) {
			return nil, pkgerrors.ErrDuplicateHumanID.Clone().
				WithDetail("human_id", cmd.HumanID).
				WithCause(err)
		}
		return nil, err
	}

	publishEvents(ctx, h.publisher, h.logger, plant.GetUncommittedEvents())
	plant.MarkEventsAsCommitted()
	invalidateLineage(ctx, h.cache, h.logger, cmd.UserID)

	h.logger.Info("Plant created",
		zap.String("plantID", plant.ID()),
		zap.String("userID", cmd.UserID),
		zap.Int("humanID", cmd.HumanID),
	)
	return plant, nil
}
