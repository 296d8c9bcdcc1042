package commands

import "plant-backend/pkg/utils"

// UpdateVisibilityCommand makes a user's profile public or private
type UpdateVisibilityCommand struct {
	UserID   string `json:"user_id" validate:"required"`
	IsPublic bool   `json:"is_public_profile"`
}

// Validate validates the command
func (c UpdateVisibilityCommand) Validate() error {
	return utils.ValidateStruct(c)
}
