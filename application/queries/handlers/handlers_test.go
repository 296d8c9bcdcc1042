package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"plant-backend/application/ports/mocks"
	"plant-backend/application/queries"
	"plant-backend/domain/config"
	"plant-backend/domain/core/entities"
	"plant-backend/domain/core/valueobjects"
	pkgerrors "plant-backend/pkg/errors"
)

func testUser(t *testing.T, id, given, family string, public, disabled bool) *entities.User {
	t.Helper()
	u, err := entities.ReconstructUser(id, id+"@example.com", given, family, disabled, public, time.Unix(0, 0).UTC())
	require.NoError(t, err)
	return u
}

func testPlant(t *testing.T, userID string, humanID int, name string, d entities.PlantDetails) *entities.Plant {
	t.Helper()
	n, err := valueobjects.NewPlantName(name)
	require.NoError(t, err)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p, err := entities.ReconstructPlant("plant-"+name, userID, humanID, n, d, now, now, 1)
	require.NoError(t, err)
	return p
}

func newLineageHandler(plants *mocks.MockPlantRepository, users *mocks.MockUserRepository, cache *mocks.MapCache, metrics *mocks.RecordingMetrics) *GetLineageHandler {
	return NewGetLineageHandler(plants, users, cache, mocks.NopTracer{}, metrics, config.DefaultDomainConfig(), zap.NewNop())
}

func TestGetLineageHandler_BuildsAndCaches(t *testing.T) {
	ctx := context.Background()
	plants := new(mocks.MockPlantRepository)
	users := new(mocks.MockUserRepository)
	cache := mocks.NewMapCache()
	metrics := &mocks.RecordingMetrics{}

	plants.On("ListByUser", mock.Anything, "u1").Return([]*entities.Plant{
		testPlant(t, "u1", 1, "Pothos", entities.PlantDetails{Source: "store"}),
		testPlant(t, "u1", 2, "Cutting", entities.PlantDetails{ParentIDs: []int{1}, Sink: "gifted"}),
	}, nil).Once()

	h := newLineageHandler(plants, users, cache, metrics)
	query := queries.GetLineageQuery{UserID: "u1", RequesterID: "u1"}

	levels, err := h.Handle(ctx, query)
	require.NoError(t, err)
	require.Len(t, levels, 4)
	assert.Equal(t, "store", levels[0][0].NodeName)
	assert.Equal(t, "gifted", levels[3][0].NodeName)
	assert.Equal(t, [][2]int{{4, 4}}, metrics.Lineages)

	// second call is served from the cache
	again, err := h.Handle(ctx, query)
	require.NoError(t, err)
	assert.Equal(t, levels, again)

	plants.AssertExpectations(t)
	users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestGetLineageHandler_Access(t *testing.T) {
	tests := []struct {
		name        string
		ownerPublic bool
		wantStatus  int
	}{
		{name: "private profile is forbidden", ownerPublic: false, wantStatus: http.StatusForbidden},
		{name: "public profile is readable", ownerPublic: true, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plants := new(mocks.MockPlantRepository)
			users := new(mocks.MockUserRepository)
			users.On("GetByID", mock.Anything, "owner").Return(testUser(t, "owner", "Olive", "Oak", tt.ownerPublic, false), nil)
			users.On("GetByID", mock.Anything, "viewer").Return(testUser(t, "viewer", "Vera", "Vine", false, false), nil)
			plants.On("ListByUser", mock.Anything, "owner").Return([]*entities.Plant{}, nil).Maybe()

			h := newLineageHandler(plants, users, mocks.NewMapCache(), &mocks.RecordingMetrics{})
			levels, err := h.Handle(context.Background(), queries.GetLineageQuery{UserID: "owner", RequesterID: "viewer"})

			if tt.wantStatus == http.StatusOK {
				require.NoError(t, err)
				assert.NotNil(t, levels)
				assert.Empty(t, levels)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, pkgerrors.ErrUserNotAuthorized)
			assert.Equal(t, tt.wantStatus, pkgerrors.StatusCode(err))
			plants.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything)
		})
	}
}

func TestGetLineageHandler_InvalidCollection(t *testing.T) {
	plants := new(mocks.MockPlantRepository)
	plants.On("ListByUser", mock.Anything, "u1").Return([]*entities.Plant{
		testPlant(t, "u1", 1, "Orphan", entities.PlantDetails{ParentIDs: []int{99}}),
	}, nil)

	h := newLineageHandler(plants, new(mocks.MockUserRepository), mocks.NewMapCache(), &mocks.RecordingMetrics{})
	_, err := h.Handle(context.Background(), queries.GetLineageQuery{UserID: "u1", RequesterID: "u1"})

	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidLineageGraph)
	assert.Equal(t, http.StatusUnprocessableEntity, pkgerrors.StatusCode(err))
	assert.Contains(t, pkgerrors.Resolve(err).Details["reason"], "unknown parent ids [99]")
}

func TestPlantQueryHandler_ListSortedByHumanID(t *testing.T) {
	plants := new(mocks.MockPlantRepository)
	plants.On("ListByUser", mock.Anything, "u1").Return([]*entities.Plant{
		testPlant(t, "u1", 3, "C", entities.PlantDetails{Source: "store"}),
		testPlant(t, "u1", 1, "A", entities.PlantDetails{Source: "store"}),
	}, nil)

	h := NewPlantQueryHandler(plants, new(mocks.MockUserRepository), zap.NewNop())
	views, err := h.HandleList(context.Background(), queries.ListPlantsQuery{UserID: "u1", RequesterID: "u1"})

	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, 1, views[0].HumanID)
	assert.Equal(t, 3, views[1].HumanID)
}

func TestPlantQueryHandler_GetChecksOwnerVisibility(t *testing.T) {
	plants := new(mocks.MockPlantRepository)
	users := new(mocks.MockUserRepository)
	plant := testPlant(t, "owner", 1, "A", entities.PlantDetails{Source: "store"})
	plants.On("GetByID", mock.Anything, plant.ID()).Return(plant, nil)
	users.On("GetByID", mock.Anything, "owner").Return(testUser(t, "owner", "O", "O", false, false), nil)
	users.On("GetByID", mock.Anything, "viewer").Return(testUser(t, "viewer", "V", "V", false, false), nil)

	h := NewPlantQueryHandler(plants, users, zap.NewNop())

	_, err := h.HandleGet(context.Background(), queries.GetPlantQuery{PlantID: plant.ID(), RequesterID: "viewer"})
	assert.ErrorIs(t, err, pkgerrors.ErrUserNotAuthorized)

	view, err := h.HandleGet(context.Background(), queries.GetPlantQuery{PlantID: plant.ID(), RequesterID: "owner"})
	require.NoError(t, err)
	assert.Equal(t, "A", view.HumanName)
}

func TestPlantQueryHandler_GetByHumanIDNotFound(t *testing.T) {
	plants := new(mocks.MockPlantRepository)
	plants.On("GetByHumanID", mock.Anything, "u1", 42).Return(nil, pkgerrors.ErrPlantNotFound.Clone())

	h := NewPlantQueryHandler(plants, new(mocks.MockUserRepository), zap.NewNop())
	_, err := h.HandleGetByHumanID(context.Background(), queries.GetPlantByHumanIDQuery{UserID: "u1", HumanID: 42, RequesterID: "u1"})

	assert.Equal(t, http.StatusNotFound, pkgerrors.StatusCode(err))
}

func TestUserQueryHandler_ListCountsPlants(t *testing.T) {
	users := new(mocks.MockUserRepository)
	plants := new(mocks.MockPlantRepository)
	users.On("List", mock.Anything).Return([]*entities.User{
		testUser(t, "u2", "Bea", "Birch", true, false),
		testUser(t, "u1", "Ada", "Ash", false, false),
		testUser(t, "u3", "Cy", "Cedar", false, true),
	}, nil)
	plants.On("ListByUser", mock.Anything, "u1").Return([]*entities.Plant{
		testPlant(t, "u1", 1, "A", entities.PlantDetails{Source: "store"}),
		testPlant(t, "u1", 2, "B", entities.PlantDetails{Source: "store", Sink: "compost"}),
	}, nil)
	plants.On("ListByUser", mock.Anything, "u2").Return([]*entities.Plant{}, nil)

	h := NewUserQueryHandler(users, plants, zap.NewNop())
	summaries, err := h.HandleList(context.Background(), queries.ListUsersQuery{})

	require.NoError(t, err)
	assert.Equal(t, []queries.UserSummary{
		{GoogleID: "u1", GivenName: "Ada", LastInitial: "A", NTotalPlants: 2, NActivePlants: 1},
		{GoogleID: "u2", GivenName: "Bea", LastInitial: "B", IsPublic: true},
	}, summaries)
	plants.AssertNotCalled(t, "ListByUser", mock.Anything, "u3")
}

func TestListImagesHandler_NewestFirst(t *testing.T) {
	plants := new(mocks.MockPlantRepository)
	images := new(mocks.MockImageRepository)
	plant := testPlant(t, "u1", 1, "A", entities.PlantDetails{Source: "store"})
	plants.On("GetByID", mock.Anything, plant.ID()).Return(plant, nil)

	older := &entities.Image{ImageID: "i1", PlantID: plant.ID(), Timestamp: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)}
	newer := &entities.Image{ImageID: "i2", PlantID: plant.ID(), Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	images.On("ListByPlant", mock.Anything, plant.ID()).Return([]*entities.Image{older, newer}, nil)

	h := NewListImagesHandler(plants, images, new(mocks.MockUserRepository))
	views, err := h.Handle(context.Background(), queries.ListImagesQuery{PlantID: plant.ID(), RequesterID: "u1"})

	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "i2", views[0].ImageID)
	assert.Equal(t, "i1", views[1].ImageID)
}

func TestGetImageHandler(t *testing.T) {
	plants := new(mocks.MockPlantRepository)
	images := new(mocks.MockImageRepository)
	users := new(mocks.MockUserRepository)
	plant := testPlant(t, "owner", 1, "A", entities.PlantDetails{Source: "store"})
	img := &entities.Image{ImageID: "i1", PlantID: plant.ID(), FullPhotoKey: "full/i1.jpg", Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	images.On("GetByID", mock.Anything, "i1").Return(img, nil)
	images.On("GetByID", mock.Anything, "gone").Return(nil, pkgerrors.ErrImageNotFound.Clone())
	plants.On("GetByID", mock.Anything, plant.ID()).Return(plant, nil)
	users.On("GetByID", mock.Anything, "owner").Return(testUser(t, "owner", "O", "O", false, false), nil)
	users.On("GetByID", mock.Anything, "viewer").Return(testUser(t, "viewer", "V", "V", false, false), nil)

	h := NewGetImageHandler(plants, images, users)

	view, err := h.Handle(context.Background(), queries.GetImageQuery{ImageID: "i1", RequesterID: "owner"})
	require.NoError(t, err)
	assert.Equal(t, plant.ID(), view.PlantID)
	assert.Equal(t, "full/i1.jpg", view.FullPhotoKey)

	_, err = h.Handle(context.Background(), queries.GetImageQuery{ImageID: "i1", RequesterID: "viewer"})
	assert.ErrorIs(t, err, pkgerrors.ErrUserNotAuthorized)

	_, err = h.Handle(context.Background(), queries.GetImageQuery{ImageID: "gone", RequesterID: "owner"})
	assert.Equal(t, http.StatusNotFound, pkgerrors.StatusCode(err))
}
