package validators

import (
	"strings"
	"testing"
	"time"

	"plant-backend/domain/config"
	"plant-backend/domain/core/entities"
	"plant-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlantValidator_ValidatePlant(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.AddDate(0, -1, 0)
	future := now.AddDate(0, 1, 0)

	tests := []struct {
		name      string
		humanID   int
		humanName string
		details   entities.PlantDetails
		wantField string
	}{
		{
			name:      "valid root plant",
			humanID:   1,
			humanName: "Monstera",
			details:   entities.PlantDetails{Source: "store", SourceDate: &past},
		},
		{
			name:      "valid cutting",
			humanID:   2,
			humanName: "Monstera cutting",
			details:   entities.PlantDetails{ParentIDs: []int{1}},
		},
		{
			name:      "missing name",
			humanID:   1,
			humanName: "   ",
			details:   entities.PlantDetails{Source: "store"},
			wantField: "human_name",
		},
		{
			name:      "root without source",
			humanID:   1,
			humanName: "Orphan",
			wantField: "source",
		},
		{
			name:      "own parent",
			humanID:   3,
			humanName: "Loop",
			details:   entities.PlantDetails{ParentIDs: []int{1, 3}},
			wantField: "parent_id",
		},
		{
			name:      "repeated parent",
			humanID:   3,
			humanName: "Twice",
			details:   entities.PlantDetails{ParentIDs: []int{1, 1}},
			wantField: "parent_id",
		},
		{
			name:      "future source date",
			humanID:   4,
			humanName: "Time traveller",
			details:   entities.PlantDetails{Source: "store", SourceDate: &future},
			wantField: "source_date",
		},
		{
			name:      "sunk before it arrived",
			humanID:   5,
			humanName: "Early",
			details:   entities.PlantDetails{Source: "store", SourceDate: &now, SinkDate: &past},
			wantField: "sink_date",
		},
		{
			name:      "notes too long",
			humanID:   6,
			humanName: "Verbose",
			details:   entities.PlantDetails{Source: "store", Notes: strings.Repeat("x", 10001)},
			wantField: "notes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewPlantValidator(config.DefaultDomainConfig())
			v.now = func() time.Time { return now }

			err := v.ValidatePlant(tt.humanID, tt.humanName, tt.details)

			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var validationErrs *errors.ValidationErrors
			require.ErrorAs(t, err, &validationErrs)
			assert.Contains(t, validationErrs.ToMap(), tt.wantField)
		})
	}
}

func TestPlantValidator_PredefinedErrorsStayClean(t *testing.T) {
	v := NewPlantValidator(nil)

	err := v.ValidateParents(2, []int{2}, "")

	require.NotNil(t, err)
	assert.Equal(t, "parent_id", err.Details["field"])
	assert.NotContains(t, errors.ErrSelfParent.Details, "field")
}

func TestPlantValidator_ValidatePlantCount(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	cfg.MaxPlantsPerUser = 2
	v := NewPlantValidator(cfg)

	assert.NoError(t, v.ValidatePlantCount(1))
	assert.Error(t, v.ValidatePlantCount(2))
}
