package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pkgerrors "plant-backend/pkg/errors"
)

type samplePayload struct {
	HumanID   int    `json:"human_id" validate:"gt=0"`
	HumanName string `json:"human_name" validate:"required,max=5"`
	ParentIDs []int  `json:"parent_id" validate:"omitempty,unique,dive,gt=0"`
}

func TestValidateStruct(t *testing.T) {
	err := ValidateStruct(samplePayload{HumanID: 0, HumanName: "too long", ParentIDs: []int{2, 2}})

	require.Error(t, err)
	var fields *pkgerrors.ValidationErrors
	require.ErrorAs(t, err, &fields)

	m := fields.ToMap()
	assert.Equal(t, []string{"human_id must be greater than 0"}, m["human_id"])
	assert.Equal(t, []string{"human_name must be at most 5 characters"}, m["human_name"])
	assert.Equal(t, []string{"parent_id must not contain duplicates"}, m["parent_id"])
}

func TestValidateStruct_Valid(t *testing.T) {
	assert.NoError(t, ValidateStruct(samplePayload{HumanID: 1, HumanName: "Hoya", ParentIDs: []int{3}}))
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    *time.Time
		wantErr bool
	}{
		{name: "empty", in: "", want: nil},
		{name: "date", in: "2024-02-29", want: ptr(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC))},
		{name: "timestamp", in: "2024-03-01T15:04:05Z", want: ptr(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))},
		{name: "garbage", in: "yesterday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatDate(t *testing.T) {
	assert.Nil(t, FormatDate(nil))
	d := time.Date(2023, 4, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "2023-04-01", *FormatDate(&d))
}

func ptr(t time.Time) *time.Time { return &t }
