package commands

import (
	"time"

	pkgerrors "plant-backend/pkg/errors"
	"plant-backend/pkg/utils"
)

// UpdateImageCommand changes the capture time of one of the caller's photos
type UpdateImageCommand struct {
	ImageID   string    `json:"image_id" validate:"required"`
	UserID    string    `json:"user_id" validate:"required"`
	Timestamp time.Time `json:"timestamp"`
}

// Validate validates the command
func (c UpdateImageCommand) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return err
	}
	if c.Timestamp.IsZero() {
		return pkgerrors.NewValidationError("timestamp is required")
	}
	return nil
}

// DeleteImageCommand removes a photo together with its stored objects
type DeleteImageCommand struct {
	ImageID string `json:"image_id" validate:"required"`
	UserID  string `json:"user_id" validate:"required"`
}

// Validate validates the command
func (c DeleteImageCommand) Validate() error {
	return utils.ValidateStruct(c)
}
