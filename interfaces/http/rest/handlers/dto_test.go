package handlers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParentIDs_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ParentIDs
		wantErr bool
	}{
		{name: "list", input: `[1, 2]`, want: ParentIDs{1, 2}},
		{name: "single int", input: `4`, want: ParentIDs{4}},
		{name: "comma string", input: `"1, 2,3"`, want: ParentIDs{1, 2, 3}},
		{name: "empty string", input: `""`, want: ParentIDs{}},
		{name: "null", input: `null`, want: nil},
		{name: "not a number", input: `"1,x"`, wantErr: true},
		{name: "object", input: `{"a": 1}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body struct {
				ParentID ParentIDs `json:"parent_id"`
			}
			err := json.Unmarshal([]byte(`{"parent_id": `+tt.input+`}`), &body)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, body.ParentID)
		})
	}
}

func TestUpdatePlantRequest_Patch(t *testing.T) {
	var req UpdatePlantRequest
	require.NoError(t, json.Unmarshal([]byte(`{"sink": "compost", "sink_date": "2024-07-02", "parent_id": "5"}`), &req))

	patch, err := req.Patch()
	require.NoError(t, err)
	require.NotNil(t, patch.Sink)
	assert.Equal(t, "compost", *patch.Sink)
	require.NotNil(t, patch.SinkDate)
	assert.Equal(t, "2024-07-02", patch.SinkDate.Format("2006-01-02"))
	require.NotNil(t, patch.ParentIDs)
	assert.Equal(t, []int{5}, *patch.ParentIDs)
	assert.Nil(t, patch.SourceDate)
	assert.Nil(t, patch.Species)

	bad := "02/07/2024"
	_, err = UpdatePlantRequest{SourceDate: &bad}.Patch()
	assert.Error(t, err)
}

func TestUpdatePlantRequest_ParentIDPresence(t *testing.T) {
	tests := []struct {
		name string
		body string
		want *[]int
	}{
		{name: "absent leaves parents alone", body: `{"notes": "repotted"}`, want: nil},
		{name: "null clears parents", body: `{"parent_id": null}`, want: &[]int{}},
		{name: "empty list clears parents", body: `{"parent_id": []}`, want: &[]int{}},
		{name: "list replaces parents", body: `{"parent_id": [2, 3]}`, want: &[]int{2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req UpdatePlantRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))

			patch, err := req.Patch()
			require.NoError(t, err)
			if tt.want == nil {
				assert.Nil(t, patch.ParentIDs)
				return
			}
			require.NotNil(t, patch.ParentIDs)
			assert.Equal(t, *tt.want, *patch.ParentIDs)
		})
	}
}

func TestUpdateImageRequest_Time(t *testing.T) {
	got, err := UpdateImageRequest{Timestamp: "2024-06-01T12:00:00+02:00"}.Time()
	require.NoError(t, err)
	assert.Equal(t, 10, got.UTC().Hour())

	_, err = UpdateImageRequest{Timestamp: "yesterday"}.Time()
	assert.Error(t, err)
}
