package queries

import (
	"time"

	"plant-backend/domain/core/entities"
	pkgerrors "plant-backend/pkg/errors"
	"plant-backend/pkg/utils"
)

// ListPlantsQuery lists every plant of a user
type ListPlantsQuery struct {
	UserID      string `json:"user_id"`
	RequesterID string `json:"requester_id"`
}

// Validate validates the query
func (q ListPlantsQuery) Validate() error {
	if q.UserID == "" {
		return pkgerrors.NewValidationError("user_id is required")
	}
	return requireRequester(q.RequesterID)
}

// GetPlantQuery fetches a plant by its storage id
type GetPlantQuery struct {
	PlantID     string `json:"plant_id"`
	RequesterID string `json:"requester_id"`
}

// Validate validates the query
func (q GetPlantQuery) Validate() error {
	if q.PlantID == "" {
		return pkgerrors.NewValidationError("plant_id is required")
	}
	return requireRequester(q.RequesterID)
}

// GetPlantByHumanIDQuery fetches a plant by the user-scoped human id
type GetPlantByHumanIDQuery struct {
	UserID      string `json:"user_id"`
	HumanID     int    `json:"human_id"`
	RequesterID string `json:"requester_id"`
}

// Validate validates the query
func (q GetPlantByHumanIDQuery) Validate() error {
	if q.UserID == "" {
		return pkgerrors.NewValidationError("user_id is required")
	}
	if q.HumanID <= 0 {
		return pkgerrors.NewValidationError("human_id must be a positive integer")
	}
	return requireRequester(q.RequesterID)
}

// PlantView is the API representation of a plant
type PlantView struct {
	PlantID    string    `json:"plant_id"`
	UserID     string    `json:"user_id"`
	HumanID    int       `json:"human_id"`
	HumanName  string    `json:"human_name"`
	Species    string    `json:"species,omitempty"`
	Location   string    `json:"location,omitempty"`
	ParentIDs  []int     `json:"parent_id"`
	Source     string    `json:"source,omitempty"`
	SourceDate *string   `json:"source_date"`
	Sink       string    `json:"sink,omitempty"`
	SinkDate   *string   `json:"sink_date"`
	Notes      string    `json:"notes,omitempty"`
	Version    int       `json:"version"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewPlantView converts a plant entity into its view
func NewPlantView(p *entities.Plant) PlantView {
	d := p.Details()
	return PlantView{
		PlantID:    p.ID(),
		UserID:     p.UserID(),
		HumanID:    p.HumanID(),
		HumanName:  p.Name().String(),
		Species:    d.Species,
		Location:   d.Location,
		ParentIDs:  d.ParentIDs,
		Source:     d.Source,
		SourceDate: utils.FormatDate(d.SourceDate),
		Sink:       d.Sink,
		SinkDate:   utils.FormatDate(d.SinkDate),
		Notes:      d.Notes,
		Version:    p.Version(),
		CreatedAt:  p.CreatedAt(),
		UpdatedAt:  p.UpdatedAt(),
	}
}

func requireRequester(id string) error {
	if id == "" {
		return pkgerrors.NewUnauthorizedError("requester is required")
	}
	return nil
}
