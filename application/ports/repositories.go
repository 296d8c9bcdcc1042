package ports

import (
	"context"
	"time"

	"plant-backend/domain/core/entities"
	"plant-backend/domain/events"
)

// PlantRepository defines the interface for plant persistence
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type PlantRepository interface {
	// Create persists a new plant. A second plant with the same human id
	// for the same user fails with a conflict.
	Create(ctx context.Context, plant *entities.Plant) error

	// Update persists changes to an existing plant, guarded by its version
	Update(ctx context.Context, plant *entities.Plant) error

	// GetByID retrieves a plant by its storage id
	GetByID(ctx context.Context, plantID string) (*entities.Plant, error)

	// GetByHumanID retrieves a plant by the user-scoped human id
	GetByHumanID(ctx context.Context, userID string, humanID int) (*entities.Plant, error)

	// ListByUser retrieves every plant of a user
	ListByUser(ctx context.Context, userID string) ([]*entities.Plant, error)

	// Delete removes a plant
	Delete(ctx context.Context, plant *entities.Plant) error
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// GetByID retrieves a user by google id
	GetByID(ctx context.Context, googleID string) (*entities.User, error)

	// List retrieves all users
	List(ctx context.Context) ([]*entities.User, error)

	// UpdateVisibility persists the profile visibility flag
	UpdateVisibility(ctx context.Context, user *entities.User) error
}

// ImageRepository defines the interface for image metadata persistence
type ImageRepository interface {
	// ListByPlant retrieves all images attached to a plant
	ListByPlant(ctx context.Context, plantID string) ([]*entities.Image, error)

	// GetByID retrieves a single image by its id
	GetByID(ctx context.Context, imageID string) (*entities.Image, error)

	// Save writes an image item, replacing any existing one
	Save(ctx context.Context, image *entities.Image) error

	// Delete removes one image item
	Delete(ctx context.Context, image *entities.Image) error

	// DeleteBatch removes image items of a plant
	DeleteBatch(ctx context.Context, plantID string, imageIDs []string) error
}

// SessionRepository resolves session cookies
type SessionRepository interface {
	GetByID(ctx context.Context, tokenID string) (*entities.SessionToken, error)
}

// ObjectStore removes photo objects from object storage
type ObjectStore interface {
	DeleteObjects(ctx context.Context, keys []string) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// Cache defines the interface for caching
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores a value in cache with TTL in seconds
	Set(ctx context.Context, key string, value interface{}, ttl int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Clear removes all values from cache
	Clear(ctx context.Context) error
}

// Tracer wraps a unit of work in a trace segment
type Tracer interface {
	TraceFunction(ctx context.Context, name string, fn func(context.Context) error) error
	AddAnnotation(ctx context.Context, key string, value interface{})
}

// Metrics records execution metrics
type Metrics interface {
	RecordCommandExecution(ctx context.Context, commandName string, duration time.Duration, err error)
	RecordQueryExecution(ctx context.Context, queryName string, duration time.Duration, err error)
	RecordLineageSize(ctx context.Context, nodes, levels int)
}
