package validators

import (
	"strings"
	"time"
	"unicode/utf8"

	"plant-backend/domain/config"
	"plant-backend/domain/core/entities"
	"plant-backend/pkg/errors"
)

// PlantValidator validates configurable plant rules on top of the
// invariants the Plant entity enforces itself
type PlantValidator struct {
	cfg *config.DomainConfig
	now func() time.Time
}

// NewPlantValidator creates a validator. A nil config uses the defaults.
func NewPlantValidator(cfg *config.DomainConfig) *PlantValidator {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &PlantValidator{cfg: cfg, now: time.Now}
}

// ValidatePlant checks a candidate name and details
func (v *PlantValidator) ValidatePlant(humanID int, humanName string, d entities.PlantDetails) error {
	validationErrors := errors.NewValidationErrors()

	if err := v.validateName(humanName); err != nil {
		validationErrors.AddError(err)
	}
	if humanID <= 0 {
		validationErrors.Add("human_id", "human_id must be a positive integer")
	}

	v.checkLength(validationErrors, "species", d.Species, v.cfg.MaxSpeciesLength)
	v.checkLength(validationErrors, "location", d.Location, v.cfg.MaxLocationLength)
	v.checkLength(validationErrors, "source", d.Source, v.cfg.MaxSourceLength)
	v.checkLength(validationErrors, "sink", d.Sink, v.cfg.MaxSourceLength)
	if utf8.RuneCountInString(d.Notes) > v.cfg.MaxNotesLength {
		validationErrors.AddError(errors.ErrPlantNotesTooLong.Clone().
			WithDetail("field", "notes").
			WithDetail("max_length", v.cfg.MaxNotesLength))
	}

	if err := v.ValidateParents(humanID, d.ParentIDs, d.Source); err != nil {
		validationErrors.AddError(err)
	}

	if !v.cfg.AllowFutureSourceDate {
		now := v.now()
		if d.SourceDate != nil && d.SourceDate.After(now) {
			validationErrors.Add("source_date", "source_date cannot be in the future")
		}
		if d.SinkDate != nil && d.SinkDate.After(now) {
			validationErrors.Add("sink_date", "sink_date cannot be in the future")
		}
	}
	if d.SourceDate != nil && d.SinkDate != nil && d.SinkDate.Before(*d.SourceDate) {
		validationErrors.Add("sink_date", "sink_date cannot be before source_date")
	}

	if validationErrors.HasErrors() {
		return validationErrors
	}
	return nil
}

// ValidateParents checks the parent list of a plant
func (v *PlantValidator) ValidateParents(humanID int, parents []int, source string) *errors.DomainError {
	if len(parents) == 0 {
		if strings.TrimSpace(source) == "" {
			return errors.ErrSourceRequired.Clone().WithDetail("field", "source")
		}
		return nil
	}

	if len(parents) > v.cfg.MaxParentsPerPlant {
		return errors.ErrTooManyParents.Clone().
			WithDetail("field", "parent_id").
			WithDetail("max_parents", v.cfg.MaxParentsPerPlant)
	}

	seen := make(map[int]struct{}, len(parents))
	for _, p := range parents {
		if p <= 0 {
			return errors.NewDomainError(errors.DomainValidationError, "INVALID_PARENT_ID",
				"parent ids must be positive integers").WithDetail("field", "parent_id")
		}
		if p == humanID && !v.cfg.AllowSelfParent {
			return errors.ErrSelfParent.Clone().WithDetail("field", "parent_id")
		}
		if _, dup := seen[p]; dup {
			return errors.NewDomainError(errors.DomainValidationError, "DUPLICATE_PARENT_ID",
				"parent ids must be unique").WithDetail("field", "parent_id").WithDetail("parent_id", p)
		}
		seen[p] = struct{}{}
	}
	return nil
}

// ValidatePlantCount checks the collection size limit before adding a plant
func (v *PlantValidator) ValidatePlantCount(current int) error {
	if current >= v.cfg.MaxPlantsPerUser {
		return errors.ErrPlantLimitExceeded.Clone().WithDetail("limit", v.cfg.MaxPlantsPerUser)
	}
	return nil
}

func (v *PlantValidator) validateName(name string) *errors.DomainError {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) < v.cfg.MinNameLength || name == "" {
		return errors.ErrPlantNameRequired.Clone().WithDetail("field", "human_name")
	}
	if n := utf8.RuneCountInString(name); n > v.cfg.MaxNameLength {
		return errors.ErrPlantNameTooLong.Clone().
			WithDetail("field", "human_name").
			WithDetail("actual_length", n).
			WithDetail("max_length", v.cfg.MaxNameLength)
	}
	return nil
}

func (v *PlantValidator) checkLength(errs *errors.ValidationErrors, field, value string, max int) {
	if utf8.RuneCountInString(value) > max {
		errs.Add(field, field+" exceeds maximum length")
	}
}
