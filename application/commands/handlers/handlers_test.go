package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"plant-backend/application/commands"
	"plant-backend/application/ports/mocks"
	"plant-backend/application/queries"
	"plant-backend/domain/config"
	"plant-backend/domain/core/entities"
	"plant-backend/domain/core/valueobjects"
	"plant-backend/domain/events"
	pkgerrors "plant-backend/pkg/errors"
)

func existingPlant(t *testing.T, userID string, humanID int, d entities.PlantDetails) *entities.Plant {
	t.Helper()
	name, err := valueobjects.NewPlantName("Plant")
	require.NoError(t, err)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p, err := entities.ReconstructPlant(uuid.NewString(), userID, humanID, name, d, now, now, 1)
	require.NoError(t, err)
	return p
}

func eventTypes(evs []events.DomainEvent) []string {
	out := make([]string, len(evs))
	for i, e := range evs {
		out[i] = e.GetEventType()
	}
	return out
}

func TestCreatePlantHandler_Success(t *testing.T) {
	ctx := context.Background()
	plants := new(mocks.MockPlantRepository)
	publisher := new(mocks.MockEventPublisher)
	cache := mocks.NewMapCache()
	require.NoError(t, cache.Set(ctx, queries.LineageCacheKey("u1"), "stale", 30))

	plants.On("ListByUser", mock.Anything, "u1").Return([]*entities.Plant{
		existingPlant(t, "u1", 1, entities.PlantDetails{Source: "store"}),
	}, nil)
	plants.On("Create", mock.Anything, mock.AnythingOfType("*entities.Plant")).Return(nil)
	publisher.On("PublishBatch", mock.Anything, mock.MatchedBy(func(evs []events.DomainEvent) bool {
		return assert.ObjectsAreEqual([]string{events.TypePlantCreated}, eventTypes(evs))
	})).Return(nil)

	h := NewCreatePlantHandler(plants, config.DefaultDomainConfig(), publisher, cache, zap.NewNop())
	cmd := commands.CreatePlantCommand{
		PlantID:   uuid.NewString(),
		UserID:    "u1",
		HumanID:   2,
		HumanName: "  Pothos cutting ",
		ParentIDs: []int{1},
	}

	plant, err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, cmd.PlantID, plant.ID())
	assert.Equal(t, "Pothos cutting", plant.Name().String())
	assert.Empty(t, plant.GetUncommittedEvents())
	_, cached := cache.Get(ctx, queries.LineageCacheKey("u1"))
	assert.False(t, cached)
	plants.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestCreatePlantHandler_Rejects(t *testing.T) {
	tests := []struct {
		name       string
		cmd        commands.CreatePlantCommand
		wantStatus int
		wantErr    error
	}{
		{
			name:       "duplicate human id",
			cmd:        commands.CreatePlantCommand{UserID: "u1", HumanID: 1, HumanName: "Again", Source: "store"},
			wantStatus: http.StatusConflict,
			wantErr:    pkgerrors.ErrDuplicateHumanID,
		},
		{
			name:       "root without source",
			cmd:        commands.CreatePlantCommand{UserID: "u1", HumanID: 5, HumanName: "Lost"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "parent missing from the collection",
			cmd:        commands.CreatePlantCommand{UserID: "u1", HumanID: 5, HumanName: "Orphan", ParentIDs: []int{1, 9}},
			wantStatus: http.StatusBadRequest,
			wantErr:    pkgerrors.ErrUnknownParent,
		},
		{
			name:       "own parent",
			cmd:        commands.CreatePlantCommand{UserID: "u1", HumanID: 5, HumanName: "Loop", ParentIDs: []int{5}},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plants := new(mocks.MockPlantRepository)
			plants.On("ListByUser", mock.Anything, "u1").Return([]*entities.Plant{
				existingPlant(t, "u1", 1, entities.PlantDetails{Source: "store"}),
			}, nil).Maybe()

			h := NewCreatePlantHandler(plants, config.DefaultDomainConfig(), new(mocks.MockEventPublisher), mocks.NewMapCache(), zap.NewNop())
			tt.cmd.PlantID = uuid.NewString()

			_, err := h.Handle(context.Background(), tt.cmd)

			require.Error(t, err)
			assert.Equal(t, tt.wantStatus, pkgerrors.StatusCode(err))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			plants.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreatePlantHandler_ConcurrentDuplicate(t *testing.T) {
	plants := new(mocks.MockPlantRepository)
	plants.On("ListByUser", mock.Anything, "u1").Return([]*entities.Plant{}, nil)
	plants.On("Create", mock.Anything, mock.Anything).Return(pkgerrors.NewConflictError("condition failed"))

	h := NewCreatePlantHandler(plants, config.DefaultDomainConfig(), new(mocks.MockEventPublisher), mocks.NewMapCache(), zap.NewNop())
	_, err := h.Handle(context.Background(), commands.CreatePlantCommand{
		PlantID: uuid.NewString(), UserID: "u1", HumanID: 3, HumanName: "Race", Source: "store",
	})

	assert.ErrorIs(t, err, pkgerrors.ErrDuplicateHumanID)
}

func TestUpdatePlantHandler(t *testing.T) {
	t.Run("sinking a plant publishes update and sink events", func(t *testing.T) {
		plants := new(mocks.MockPlantRepository)
		publisher := new(mocks.MockEventPublisher)
		plant := existingPlant(t, "u1", 1, entities.PlantDetails{Source: "store"})
		plants.On("GetByID", mock.Anything, plant.ID()).Return(plant, nil)
		plants.On("Update", mock.Anything, plant).Return(nil)
		publisher.On("PublishBatch", mock.Anything, mock.MatchedBy(func(evs []events.DomainEvent) bool {
			return assert.ObjectsAreEqual([]string{events.TypePlantUpdated, events.TypePlantSunk}, eventTypes(evs))
		})).Return(nil)

		h := NewUpdatePlantHandler(plants, config.DefaultDomainConfig(), publisher, mocks.NewMapCache(), zap.NewNop())
		sink := "gifted"
		updated, err := h.Handle(context.Background(), commands.UpdatePlantCommand{
			PlantID: plant.ID(), UserID: "u1", Patch: entities.PlantPatch{Sink: &sink},
		})

		require.NoError(t, err)
		assert.False(t, updated.IsActive())
		assert.Equal(t, 2, updated.Version())
		publisher.AssertExpectations(t)
	})

	t.Run("another user's plant is not found", func(t *testing.T) {
		plants := new(mocks.MockPlantRepository)
		plant := existingPlant(t, "owner", 1, entities.PlantDetails{Source: "store"})
		plants.On("GetByID", mock.Anything, plant.ID()).Return(plant, nil)

		h := NewUpdatePlantHandler(plants, config.DefaultDomainConfig(), new(mocks.MockEventPublisher), mocks.NewMapCache(), zap.NewNop())
		notes := "mine now"
		_, err := h.Handle(context.Background(), commands.UpdatePlantCommand{
			PlantID: plant.ID(), UserID: "intruder", Patch: entities.PlantPatch{Notes: &notes},
		})

		assert.ErrorIs(t, err, pkgerrors.ErrPlantNotFound)
		plants.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("new parents must exist", func(t *testing.T) {
		plants := new(mocks.MockPlantRepository)
		plant := existingPlant(t, "u1", 2, entities.PlantDetails{Source: "store"})
		plants.On("GetByID", mock.Anything, plant.ID()).Return(plant, nil)
		plants.On("ListByUser", mock.Anything, "u1").Return([]*entities.Plant{
			existingPlant(t, "u1", 1, entities.PlantDetails{Source: "store"}),
			plant,
		}, nil)

		h := NewUpdatePlantHandler(plants, config.DefaultDomainConfig(), new(mocks.MockEventPublisher), mocks.NewMapCache(), zap.NewNop())
		parents := []int{1, 7}
		_, err := h.Handle(context.Background(), commands.UpdatePlantCommand{
			PlantID: plant.ID(), UserID: "u1", Patch: entities.PlantPatch{ParentIDs: &parents},
		})

		assert.ErrorIs(t, err, pkgerrors.ErrUnknownParent)
		assert.Equal(t, http.StatusBadRequest, pkgerrors.StatusCode(err))
		assert.Equal(t, []int{7}, pkgerrors.Resolve(err).Details["parent_ids"])
		plants.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("clearing parents needs no lookup", func(t *testing.T) {
		plants := new(mocks.MockPlantRepository)
		plant := existingPlant(t, "u1", 2, entities.PlantDetails{ParentIDs: []int{1}, Source: "store"})
		plants.On("GetByID", mock.Anything, plant.ID()).Return(plant, nil)
		plants.On("Update", mock.Anything, plant).Return(nil)

		publisher := new(mocks.MockEventPublisher)
		publisher.On("PublishBatch", mock.Anything, mock.Anything).Return(nil)
		h := NewUpdatePlantHandler(plants, config.DefaultDomainConfig(), publisher, mocks.NewMapCache(), zap.NewNop())
		none := []int{}
		updated, err := h.Handle(context.Background(), commands.UpdatePlantCommand{
			PlantID: plant.ID(), UserID: "u1", Patch: entities.PlantPatch{ParentIDs: &none},
		})

		require.NoError(t, err)
		assert.Empty(t, updated.Details().ParentIDs)
		plants.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything)
	})

	t.Run("no change skips the write", func(t *testing.T) {
		plants := new(mocks.MockPlantRepository)
		plant := existingPlant(t, "u1", 1, entities.PlantDetails{Source: "store"})
		plants.On("GetByID", mock.Anything, plant.ID()).Return(plant, nil)

		h := NewUpdatePlantHandler(plants, config.DefaultDomainConfig(), new(mocks.MockEventPublisher), mocks.NewMapCache(), zap.NewNop())
		source := "store"
		got, err := h.Handle(context.Background(), commands.UpdatePlantCommand{
			PlantID: plant.ID(), UserID: "u1", Patch: entities.PlantPatch{Source: &source},
		})

		require.NoError(t, err)
		assert.Equal(t, 1, got.Version())
		plants.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestDeletePlantHandler(t *testing.T) {
	newFixture := func(t *testing.T) (*mocks.MockPlantRepository, *mocks.MockImageRepository, *mocks.MockObjectStore, *mocks.MockEventPublisher, *entities.Plant) {
		plants := new(mocks.MockPlantRepository)
		images := new(mocks.MockImageRepository)
		store := new(mocks.MockObjectStore)
		publisher := new(mocks.MockEventPublisher)
		plant := existingPlant(t, "u1", 1, entities.PlantDetails{Source: "store"})
		plants.On("GetByID", mock.Anything, plant.ID()).Return(plant, nil)
		plants.On("ListByUser", mock.Anything, "u1").Return([]*entities.Plant{
			plant,
			existingPlant(t, "u1", 2, entities.PlantDetails{Source: "store"}),
		}, nil).Maybe()
		return plants, images, store, publisher, plant
	}

	t.Run("removes plant, images and objects", func(t *testing.T) {
		plants, images, store, publisher, plant := newFixture(t)
		plants.On("Delete", mock.Anything, plant).Return(nil)
		images.On("ListByPlant", mock.Anything, plant.ID()).Return([]*entities.Image{
			{ImageID: "i1", PlantID: plant.ID(), FullPhotoKey: "full/i1.jpg", ThumbnailKey: "thumb/i1.jpg"},
		}, nil)
		store.On("DeleteObjects", mock.Anything, []string{"full/i1.jpg", "thumb/i1.jpg"}).Return(nil)
		images.On("DeleteBatch", mock.Anything, plant.ID(), []string{"i1"}).Return(nil)
		publisher.On("PublishBatch", mock.Anything, mock.MatchedBy(func(evs []events.DomainEvent) bool {
			if len(evs) != 1 {
				return false
			}
			deleted, ok := evs[0].(events.PlantDeleted)
			return ok && deleted.ImagesRemoved == 1
		})).Return(nil)

		cleanup := commands.NewCleanupPlantImagesHandler(images, store, zap.NewNop())
		h := NewDeletePlantHandler(plants, cleanup, config.DefaultDomainConfig(), publisher, mocks.NewMapCache(), zap.NewNop())

		err := h.Handle(context.Background(), commands.DeletePlantCommand{PlantID: plant.ID(), UserID: "u1"})

		require.NoError(t, err)
		plants.AssertExpectations(t)
		images.AssertExpectations(t)
		store.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("image cleanup failure does not fail the delete", func(t *testing.T) {
		plants, images, store, publisher, plant := newFixture(t)
		plants.On("Delete", mock.Anything, plant).Return(nil)
		images.On("ListByPlant", mock.Anything, plant.ID()).Return(nil, errors.New("throttled"))
		publisher.On("PublishBatch", mock.Anything, mock.Anything).Return(nil)

		cleanup := commands.NewCleanupPlantImagesHandler(images, store, zap.NewNop())
		h := NewDeletePlantHandler(plants, cleanup, config.DefaultDomainConfig(), publisher, mocks.NewMapCache(), zap.NewNop())

		err := h.Handle(context.Background(), commands.DeletePlantCommand{PlantID: plant.ID(), UserID: "u1"})

		require.NoError(t, err)
		store.AssertNotCalled(t, "DeleteObjects", mock.Anything, mock.Anything)
	})

	t.Run("another user's plant is not found", func(t *testing.T) {
		plants, images, store, publisher, plant := newFixture(t)

		cleanup := commands.NewCleanupPlantImagesHandler(images, store, zap.NewNop())
		h := NewDeletePlantHandler(plants, cleanup, config.DefaultDomainConfig(), publisher, mocks.NewMapCache(), zap.NewNop())

		err := h.Handle(context.Background(), commands.DeletePlantCommand{PlantID: plant.ID(), UserID: "intruder"})

		assert.ErrorIs(t, err, pkgerrors.ErrPlantNotFound)
		assert.Equal(t, http.StatusNotFound, pkgerrors.StatusCode(err))
		plants.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("a parent of other plants is kept", func(t *testing.T) {
		plants := new(mocks.MockPlantRepository)
		parent := existingPlant(t, "u1", 1, entities.PlantDetails{Source: "store"})
		plants.On("GetByID", mock.Anything, parent.ID()).Return(parent, nil)
		plants.On("ListByUser", mock.Anything, "u1").Return([]*entities.Plant{
			parent,
			existingPlant(t, "u1", 2, entities.PlantDetails{ParentIDs: []int{1}}),
			existingPlant(t, "u1", 3, entities.PlantDetails{ParentIDs: []int{2, 1}}),
		}, nil)

		images := new(mocks.MockImageRepository)
		cleanup := commands.NewCleanupPlantImagesHandler(images, new(mocks.MockObjectStore), zap.NewNop())
		h := NewDeletePlantHandler(plants, cleanup, config.DefaultDomainConfig(), new(mocks.MockEventPublisher), mocks.NewMapCache(), zap.NewNop())

		err := h.Handle(context.Background(), commands.DeletePlantCommand{PlantID: parent.ID(), UserID: "u1"})

		assert.ErrorIs(t, err, pkgerrors.ErrPlantHasChildren)
		assert.Equal(t, http.StatusConflict, pkgerrors.StatusCode(err))
		assert.Equal(t, []int{2, 3}, pkgerrors.Resolve(err).Details["child_ids"])
		plants.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		images.AssertNotCalled(t, "ListByPlant", mock.Anything, mock.Anything)
	})
}

func TestUpdateVisibilityHandler(t *testing.T) {
	users := new(mocks.MockUserRepository)
	publisher := new(mocks.MockEventPublisher)
	user, err := entities.ReconstructUser("u1", "u1@example.com", "Ada", "Ash", false, false, time.Now())
	require.NoError(t, err)
	users.On("GetByID", mock.Anything, "u1").Return(user, nil)
	users.On("UpdateVisibility", mock.Anything, user).Return(nil).Once()
	publisher.On("PublishBatch", mock.Anything, mock.Anything).Return(nil).Once()

	h := NewUpdateVisibilityHandler(users, publisher, zap.NewNop())

	require.NoError(t, h.Handle(context.Background(), commands.UpdateVisibilityCommand{UserID: "u1", IsPublic: true}))
	assert.True(t, user.IsPublic())

	// setting the same value again is a no-op
	require.NoError(t, h.Handle(context.Background(), commands.UpdateVisibilityCommand{UserID: "u1", IsPublic: true}))
	users.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestImageCommandHandler(t *testing.T) {
	newFixture := func(t *testing.T, owner string) (*mocks.MockPlantRepository, *mocks.MockImageRepository, *mocks.MockObjectStore, *entities.Image) {
		plants := new(mocks.MockPlantRepository)
		images := new(mocks.MockImageRepository)
		store := new(mocks.MockObjectStore)
		plant := existingPlant(t, owner, 1, entities.PlantDetails{Source: "store"})
		img := &entities.Image{
			ImageID:      "i1",
			PlantID:      plant.ID(),
			FullPhotoKey: "full/i1.jpg",
			ThumbnailKey: "thumb/i1.jpg",
			Timestamp:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		}
		images.On("GetByID", mock.Anything, "i1").Return(img, nil)
		plants.On("GetByID", mock.Anything, plant.ID()).Return(plant, nil)
		return plants, images, store, img
	}

	t.Run("update moves the timestamp", func(t *testing.T) {
		plants, images, store, img := newFixture(t, "u1")
		images.On("Save", mock.Anything, img).Return(nil)

		h := NewImageCommandHandler(plants, images, store, zap.NewNop())
		taken := time.Date(2024, 6, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*3600))
		got, err := h.HandleUpdate(context.Background(), commands.UpdateImageCommand{ImageID: "i1", UserID: "u1", Timestamp: taken})

		require.NoError(t, err)
		assert.True(t, got.Timestamp.Equal(taken))
		assert.Equal(t, time.UTC, got.Timestamp.Location())
		images.AssertExpectations(t)
	})

	t.Run("another user's image is forbidden", func(t *testing.T) {
		plants, images, store, _ := newFixture(t, "owner")

		h := NewImageCommandHandler(plants, images, store, zap.NewNop())
		_, err := h.HandleUpdate(context.Background(), commands.UpdateImageCommand{ImageID: "i1", UserID: "intruder", Timestamp: time.Now()})
		assert.Equal(t, http.StatusForbidden, pkgerrors.StatusCode(err))

		err = h.HandleDelete(context.Background(), commands.DeleteImageCommand{ImageID: "i1", UserID: "intruder"})
		assert.Equal(t, http.StatusForbidden, pkgerrors.StatusCode(err))

		images.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		images.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "DeleteObjects", mock.Anything, mock.Anything)
	})

	t.Run("missing image is not found", func(t *testing.T) {
		images := new(mocks.MockImageRepository)
		images.On("GetByID", mock.Anything, "gone").Return(nil, pkgerrors.ErrImageNotFound.Clone())

		h := NewImageCommandHandler(new(mocks.MockPlantRepository), images, new(mocks.MockObjectStore), zap.NewNop())
		err := h.HandleDelete(context.Background(), commands.DeleteImageCommand{ImageID: "gone", UserID: "u1"})

		assert.Equal(t, http.StatusNotFound, pkgerrors.StatusCode(err))
	})

	t.Run("delete removes the item and both objects", func(t *testing.T) {
		plants, images, store, img := newFixture(t, "u1")
		images.On("Delete", mock.Anything, img).Return(nil)
		store.On("DeleteObjects", mock.Anything, []string{"full/i1.jpg", "thumb/i1.jpg"}).Return(nil)

		h := NewImageCommandHandler(plants, images, store, zap.NewNop())

		require.NoError(t, h.HandleDelete(context.Background(), commands.DeleteImageCommand{ImageID: "i1", UserID: "u1"}))
		images.AssertExpectations(t)
		store.AssertExpectations(t)
		images.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("object store failure retries then restores the item", func(t *testing.T) {
		plants, images, store, img := newFixture(t, "u1")
		images.On("Delete", mock.Anything, img).Return(nil)
		images.On("Save", mock.Anything, img).Return(nil).Once()
		store.On("DeleteObjects", mock.Anything, mock.Anything).Return(errors.New("s3 down"))

		h := NewImageCommandHandler(plants, images, store, zap.NewNop())
		h.retryDelay = time.Millisecond

		err := h.HandleDelete(context.Background(), commands.DeleteImageCommand{ImageID: "i1", UserID: "u1"})

		require.Error(t, err)
		store.AssertNumberOfCalls(t, "DeleteObjects", objectDeleteAttempts)
		images.AssertExpectations(t)
	})
}
