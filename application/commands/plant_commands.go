package commands

import (
	"time"

	"plant-backend/domain/core/entities"
	pkgerrors "plant-backend/pkg/errors"
	"plant-backend/pkg/utils"
)

// CreatePlantCommand represents the command to add a plant to a collection
type CreatePlantCommand struct {
	PlantID    string     `json:"plant_id" validate:"required,uuid"`
	UserID     string     `json:"user_id" validate:"required"`
	HumanID    int        `json:"human_id" validate:"gt=0"`
	HumanName  string     `json:"human_name" validate:"required"`
	Species    string     `json:"species"`
	Location   string     `json:"location"`
	ParentIDs  []int      `json:"parent_id" validate:"omitempty,dive,gt=0"`
	Source     string     `json:"source"`
	SourceDate *time.Time `json:"source_date"`
	Sink       string     `json:"sink"`
	SinkDate   *time.Time `json:"sink_date"`
	Notes      string     `json:"notes"`
}

// Validate validates the command
func (c CreatePlantCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// Details returns the descriptive fields of the new plant
func (c CreatePlantCommand) Details() entities.PlantDetails {
	return entities.PlantDetails{
		Species:    c.Species,
		Location:   c.Location,
		ParentIDs:  c.ParentIDs,
		Source:     c.Source,
		SourceDate: c.SourceDate,
		Sink:       c.Sink,
		SinkDate:   c.SinkDate,
		Notes:      c.Notes,
	}
}

// UpdatePlantCommand applies a partial update to one of the caller's plants
type UpdatePlantCommand struct {
	PlantID string              `json:"plant_id" validate:"required"`
	UserID  string              `json:"user_id" validate:"required"`
	Patch   entities.PlantPatch `json:"-"`
}

// Validate validates the command
func (c UpdatePlantCommand) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return err
	}
	if c.Patch.ParentIDs != nil {
		for _, p := range *c.Patch.ParentIDs {
			if p <= 0 {
				return pkgerrors.NewValidationError("parent ids must be positive integers")
			}
		}
	}
	return nil
}

// DeletePlantCommand removes a plant together with its images
type DeletePlantCommand struct {
	PlantID string `json:"plant_id" validate:"required"`
	UserID  string `json:"user_id" validate:"required"`
}

// Validate validates the command
func (c DeletePlantCommand) Validate() error {
	return utils.ValidateStruct(c)
}
