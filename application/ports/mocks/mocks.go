// Package mocks provides testify mocks of the application ports
package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"plant-backend/domain/core/entities"
	"plant-backend/domain/events"
)

type MockPlantRepository struct {
	mock.Mock
}

func (m *MockPlantRepository) Create(ctx context.Context, plant *entities.Plant) error {
	args := m.Called(ctx, plant)
	return args.Error(0)
}

func (m *MockPlantRepository) Update(ctx context.Context, plant *entities.Plant) error {
	args := m.Called(ctx, plant)
	return args.Error(0)
}

func (m *MockPlantRepository) GetByID(ctx context.Context, plantID string) (*entities.Plant, error) {
	args := m.Called(ctx, plantID)
	plant, _ := args.Get(0).(*entities.Plant)
	return plant, args.Error(1)
}

func (m *MockPlantRepository) GetByHumanID(ctx context.Context, userID string, humanID int) (*entities.Plant, error) {
	args := m.Called(ctx, userID, humanID)
	plant, _ := args.Get(0).(*entities.Plant)
	return plant, args.Error(1)
}

func (m *MockPlantRepository) ListByUser(ctx context.Context, userID string) ([]*entities.Plant, error) {
	args := m.Called(ctx, userID)
	plants, _ := args.Get(0).([]*entities.Plant)
	return plants, args.Error(1)
}

func (m *MockPlantRepository) Delete(ctx context.Context, plant *entities.Plant) error {
	args := m.Called(ctx, plant)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, googleID string) (*entities.User, error) {
	args := m.Called(ctx, googleID)
	user, _ := args.Get(0).(*entities.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]*entities.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]*entities.User)
	return users, args.Error(1)
}

func (m *MockUserRepository) UpdateVisibility(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type MockImageRepository struct {
	mock.Mock
}

func (m *MockImageRepository) ListByPlant(ctx context.Context, plantID string) ([]*entities.Image, error) {
	args := m.Called(ctx, plantID)
	images, _ := args.Get(0).([]*entities.Image)
	return images, args.Error(1)
}

func (m *MockImageRepository) GetByID(ctx context.Context, imageID string) (*entities.Image, error) {
	args := m.Called(ctx, imageID)
	img, _ := args.Get(0).(*entities.Image)
	return img, args.Error(1)
}

func (m *MockImageRepository) Save(ctx context.Context, image *entities.Image) error {
	return m.Called(ctx, image).Error(0)
}

func (m *MockImageRepository) Delete(ctx context.Context, image *entities.Image) error {
	return m.Called(ctx, image).Error(0)
}

func (m *MockImageRepository) DeleteBatch(ctx context.Context, plantID string, imageIDs []string) error {
	args := m.Called(ctx, plantID, imageIDs)
	return args.Error(0)
}

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) GetByID(ctx context.Context, tokenID string) (*entities.SessionToken, error) {
	args := m.Called(ctx, tokenID)
	token, _ := args.Get(0).(*entities.SessionToken)
	return token, args.Error(1)
}

type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) DeleteObjects(ctx context.Context, keys []string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishBatch(ctx context.Context, evs []events.DomainEvent) error {
	args := m.Called(ctx, evs)
	return args.Error(0)
}

// MapCache is a plain in-memory cache for tests
type MapCache struct {
	mu    sync.Mutex
	items map[string]interface{}
}

func NewMapCache() *MapCache {
	return &MapCache{items: make(map[string]interface{})}
}

func (c *MapCache) Get(_ context.Context, key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

func (c *MapCache) Set(_ context.Context, key string, value interface{}, _ int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return nil
}

func (c *MapCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

func (c *MapCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]interface{})
	return nil
}

// NopTracer runs traced functions without recording anything
type NopTracer struct{}

func (NopTracer) TraceFunction(ctx context.Context, _ string, fn func(context.Context) error) error {
	return fn(ctx)
}

func (NopTracer) AddAnnotation(context.Context, string, interface{}) {}

// RecordingMetrics remembers what was recorded
type RecordingMetrics struct {
	mu       sync.Mutex
	Commands []string
	Queries  []string
	Lineages [][2]int
}

func (r *RecordingMetrics) RecordCommandExecution(_ context.Context, name string, _ time.Duration, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Commands = append(r.Commands, name)
}

func (r *RecordingMetrics) RecordQueryExecution(_ context.Context, name string, _ time.Duration, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Queries = append(r.Queries, name)
}

func (r *RecordingMetrics) RecordLineageSize(_ context.Context, nodes, levels int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Lineages = append(r.Lineages, [2]int{nodes, levels})
}
