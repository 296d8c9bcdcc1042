package commands

import (
	"context"
	"fmt"

	"plant-backend/application/ports"
	"go.uber.org/zap"
)

// CleanupPlantImagesCommand removes the images of a deleted plant, both the
// table items and the stored photo objects
type CleanupPlantImagesCommand struct {
	PlantID string
	UserID  string
}

// Validate validates the command
func (c CleanupPlantImagesCommand) Validate() error {
	if c.PlantID == "" {
		return fmt.Errorf("plant ID is required")
	}
	if c.UserID == "" {
		return fmt.Errorf("user ID is required")
	}
	return nil
}

// CleanupPlantImagesHandler handles the cleanup of plant images
type CleanupPlantImagesHandler struct {
	imageRepo   ports.ImageRepository
	objectStore ports.ObjectStore
	logger      *zap.Logger
}

// NewCleanupPlantImagesHandler creates a new cleanup handler
func NewCleanupPlantImagesHandler(imageRepo ports.ImageRepository, objectStore ports.ObjectStore, logger *zap.Logger) *CleanupPlantImagesHandler {
	return &CleanupPlantImagesHandler{
		imageRepo:   imageRepo,
		objectStore: objectStore,
		logger:      logger,
	}
}

// Handle executes the cleanup and returns how many images were removed.
// Stored objects are deleted before their items.
func (h *CleanupPlantImagesHandler) Handle(ctx context.Context, cmd CleanupPlantImagesCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	images, err := h.imageRepo.ListByPlant(ctx, cmd.PlantID)
	if err != nil {
		return 0, fmt.Errorf("failed to list images: %w", err)
	}
	if len(images) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(images)*2)
	ids := make([]string, 0, len(images))
	for _, img := range images {
		keys = append(keys, img.ObjectKeys()...)
		ids = append(ids, img.ImageID)
	}

	if len(keys) > 0 {
		if err := h.objectStore.DeleteObjects(ctx, keys); err != nil {
			return 0, fmt.Errorf("failed to delete image objects: %w", err)
		}
	}
	if err := h.imageRepo.DeleteBatch(ctx, cmd.PlantID, ids); err != nil {
		return 0, fmt.Errorf("failed to delete image items: %w", err)
	}

	h.logger.Info("Cleaned up plant images",
		zap.String("plantID", cmd.PlantID),
		zap.String("userID", cmd.UserID),
		zap.Int("images", len(ids)),
		zap.Int("objects", len(keys)),
	)
	return len(ids), nil
}

// HandleCommand adapts the handler to the command bus
func (h *CleanupPlantImagesHandler) HandleCommand(ctx context.Context, cmd CleanupPlantImagesCommand) error {
	_, err := h.Handle(ctx, cmd)
	return err
}
