package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"plant-backend/domain/core/entities"
	pkgerrors "plant-backend/pkg/errors"
	"plant-backend/pkg/utils"
)

// ParentIDs accepts a list of ints, a single int or a comma separated string
type ParentIDs []int

// UnmarshalJSON implements json.Unmarshaler
func (p *ParentIDs) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = nil
		return nil
	}

	switch data[0] {
	case '[':
		var ids []int
		if err := json.Unmarshal(data, &ids); err != nil {
			return fmt.Errorf("parent_id: %w", err)
		}
		*p = ids
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		ids := []int{}
		for _, part := range strings.Split(s, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.Atoi(part)
			if err != nil {
				return fmt.Errorf("parent_id: %q is not an integer", part)
			}
			ids = append(ids, id)
		}
		*p = ids
	default:
		var id int
		if err := json.Unmarshal(data, &id); err != nil {
			return fmt.Errorf("parent_id: %w", err)
		}
		*p = []int{id}
	}
	return nil
}

// OptionalParentIDs records whether parent_id was present in a patch body.
// An explicit null clears the parents.
type OptionalParentIDs struct {
	IDs ParentIDs `validate:"omitempty,max=20,dive,gt=0"`
	Set bool      `validate:"-"`
}

// UnmarshalJSON implements json.Unmarshaler. It only runs for keys present
// in the body.
func (o *OptionalParentIDs) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.IDs = ParentIDs{}
		return nil
	}
	return o.IDs.UnmarshalJSON(data)
}

// CreatePlantRequest represents the request body for creating a plant
type CreatePlantRequest struct {
	HumanID    int       `json:"human_id" validate:"gt=0"`
	HumanName  string    `json:"human_name" validate:"required,max=200"`
	Species    string    `json:"species" validate:"max=200"`
	Location   string    `json:"location" validate:"max=200"`
	ParentID   ParentIDs `json:"parent_id" validate:"omitempty,max=20,dive,gt=0"`
	Source     string    `json:"source" validate:"max=200"`
	SourceDate string    `json:"source_date"`
	Sink       string    `json:"sink" validate:"max=200"`
	SinkDate   string    `json:"sink_date"`
	Notes      string    `json:"notes"`
}

// UpdatePlantRequest represents the request body for a partial update.
// Absent fields are left unchanged; human_id cannot be changed.
type UpdatePlantRequest struct {
	HumanName  *string           `json:"human_name" validate:"omitempty,min=1,max=200"`
	Species    *string           `json:"species" validate:"omitempty,max=200"`
	Location   *string           `json:"location" validate:"omitempty,max=200"`
	ParentID   OptionalParentIDs `json:"parent_id"`
	Source     *string           `json:"source" validate:"omitempty,max=200"`
	SourceDate *string           `json:"source_date"`
	Sink       *string           `json:"sink" validate:"omitempty,max=200"`
	SinkDate   *string           `json:"sink_date"`
	Notes      *string           `json:"notes"`
}

// Patch converts the request into an entity patch
func (r UpdatePlantRequest) Patch() (entities.PlantPatch, error) {
	patch := entities.PlantPatch{
		HumanName: r.HumanName,
		Species:   r.Species,
		Location:  r.Location,
		Source:    r.Source,
		Sink:      r.Sink,
		Notes:     r.Notes,
	}
	if r.ParentID.Set {
		ids := append([]int{}, r.ParentID.IDs...)
		patch.ParentIDs = &ids
	}

	var err error
	if patch.SourceDate, err = parseOptionalDate("source_date", r.SourceDate); err != nil {
		return patch, err
	}
	if patch.SinkDate, err = parseOptionalDate("sink_date", r.SinkDate); err != nil {
		return patch, err
	}
	return patch, nil
}

// UpdateImageRequest changes when a photo was taken
type UpdateImageRequest struct {
	Timestamp string `json:"timestamp" validate:"required"`
}

// Time parses the RFC3339 timestamp
func (r UpdateImageRequest) Time() (time.Time, error) {
	t, err := utils.ParseRFC3339(strings.TrimSpace(r.Timestamp))
	if err != nil {
		return time.Time{}, pkgerrors.NewValidationError("timestamp must be an RFC3339 date-time")
	}
	return t, nil
}

// VisibilityRequest toggles the caller's profile visibility
type VisibilityRequest struct {
	IsPublicProfile *bool `json:"is_public_profile" validate:"required"`
}

func parseDate(field, value string) (*time.Time, error) {
	t, err := utils.ParseDate(value)
	if err != nil {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("%s must be a date formatted YYYY-MM-DD", field))
	}
	return t, nil
}

func parseOptionalDate(field string, value *string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	return parseDate(field, *value)
}
