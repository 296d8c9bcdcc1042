package handlers

import (
	"context"
	"time"

	"plant-backend/application/commands"
	"plant-backend/application/ports"
	"plant-backend/application/sagas"
	"plant-backend/domain/core/entities"
	pkgerrors "plant-backend/pkg/errors"
	"go.uber.org/zap"
)

const (
	objectDeleteAttempts = 3
	objectDeleteDelay    = 200 * time.Millisecond
)

// ImageCommandHandler updates and deletes plant photos
type ImageCommandHandler struct {
	plantRepo   ports.PlantRepository
	imageRepo   ports.ImageRepository
	objectStore ports.ObjectStore
	logger      *zap.Logger
	retryDelay  time.Duration
}

// NewImageCommandHandler creates a new image command handler
func NewImageCommandHandler(
	plantRepo ports.PlantRepository,
	imageRepo ports.ImageRepository,
	objectStore ports.ObjectStore,
	logger *zap.Logger,
) *ImageCommandHandler {
	return &ImageCommandHandler{
		plantRepo:   plantRepo,
		imageRepo:   imageRepo,
		objectStore: objectStore,
		logger:      logger,
		retryDelay:  objectDeleteDelay,
	}
}

// ownedImage loads an image and checks that its plant belongs to userID
func (h *ImageCommandHandler) ownedImage(ctx context.Context, imageID, userID string) (*entities.Image, error) {
	img, err := h.imageRepo.GetByID(ctx, imageID)
	if err != nil {
		return nil, err
	}
	plant, err := h.plantRepo.GetByID(ctx, img.PlantID)
	if err != nil {
		return nil, err
	}
	if plant.UserID() != userID {
		return nil, pkgerrors.NewForbiddenError("User does not own plant").
			WithDetails(map[string]interface{}{"image_id": imageID})
	}
	return img, nil
}

// HandleUpdate changes the photo timestamp and returns the stored image
func (h *ImageCommandHandler) HandleUpdate(ctx context.Context, cmd commands.UpdateImageCommand) (*entities.Image, error) {
	img, err := h.ownedImage(ctx, cmd.ImageID, cmd.UserID)
	if err != nil {
		return nil, err
	}

	img.Timestamp = cmd.Timestamp.UTC()
	if err := h.imageRepo.Save(ctx, img); err != nil {
		return nil, err
	}

	h.logger.Info("Image updated",
		zap.String("imageID", img.ImageID),
		zap.String("plantID", img.PlantID),
	)
	return img, nil
}

// HandleDelete removes the image item, then its stored objects. When the
// objects cannot be removed the item is put back.
func (h *ImageCommandHandler) HandleDelete(ctx context.Context, cmd commands.DeleteImageCommand) error {
	img, err := h.ownedImage(ctx, cmd.ImageID, cmd.UserID)
	if err != nil {
		return err
	}

	saga := sagas.NewSagaBuilder("DeleteImage", h.logger).
		WithMetadata("image_id", img.ImageID).
		WithCompensableStep("delete_item",
			func(ctx context.Context, data interface{}) (interface{}, error) {
				return data, h.imageRepo.Delete(ctx, img)
			},
			func(ctx context.Context, _ interface{}) error {
				return h.imageRepo.Save(ctx, img)
			},
		).
		WithRetryableStep("delete_objects",
			func(ctx context.Context, data interface{}) (interface{}, error) {
				keys := img.ObjectKeys()
				if len(keys) == 0 {
					return data, nil
				}
				return data, h.objectStore.DeleteObjects(ctx, keys)
			},
			objectDeleteAttempts,
			h.retryDelay,
		).
		Build()

	if _, err := saga.Execute(ctx, nil); err != nil {
		return err
	}

	h.logger.Info("Image deleted",
		zap.String("imageID", img.ImageID),
		zap.String("plantID", img.PlantID),
		zap.Int("objects", len(img.ObjectKeys())),
	)
	return nil
}
