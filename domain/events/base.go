package events

import (
	"time"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

const (
	TypePlantCreated      = "plant.created"
	TypePlantUpdated      = "plant.updated"
	TypePlantSunk         = "plant.sunk"
	TypePlantDeleted      = "plant.deleted"
	TypeVisibilityChanged = "user.visibility_changed"
)

// Plant Events

// PlantCreated is raised when a new plant is added to a collection
type PlantCreated struct {
	BaseEvent
	UserID    string `json:"user_id"`
	HumanID   int    `json:"human_id"`
	HumanName string `json:"human_name"`
	ParentIDs []int  `json:"parent_ids,omitempty"`
	Source    string `json:"source,omitempty"`
}

// NewPlantCreated creates a PlantCreated event
func NewPlantCreated(plantID, userID string, humanID int, humanName string, parentIDs []int, source string, timestamp time.Time) PlantCreated {
	return PlantCreated{
		BaseEvent: BaseEvent{
			AggregateID: plantID,
			EventType:   TypePlantCreated,
			Timestamp:   timestamp,
			Version:     1,
		},
		UserID:    userID,
		HumanID:   humanID,
		HumanName: humanName,
		ParentIDs: parentIDs,
		Source:    source,
	}
}

// PlantUpdated is raised when plant details change
type PlantUpdated struct {
	BaseEvent
	UserID        string   `json:"user_id"`
	HumanID       int      `json:"human_id"`
	ChangedFields []string `json:"changed_fields"`
}

// NewPlantUpdated creates a PlantUpdated event
func NewPlantUpdated(plantID, userID string, humanID int, changed []string, version int, timestamp time.Time) PlantUpdated {
	return PlantUpdated{
		BaseEvent: BaseEvent{
			AggregateID: plantID,
			EventType:   TypePlantUpdated,
			Timestamp:   timestamp,
			Version:     version,
		},
		UserID:        userID,
		HumanID:       humanID,
		ChangedFields: changed,
	}
}

// PlantSunk is raised when a plant leaves the collection
type PlantSunk struct {
	BaseEvent
	UserID  string `json:"user_id"`
	HumanID int    `json:"human_id"`
	Sink    string `json:"sink"`
}

// NewPlantSunk creates a PlantSunk event
func NewPlantSunk(plantID, userID string, humanID int, sink string, version int, timestamp time.Time) PlantSunk {
	return PlantSunk{
		BaseEvent: BaseEvent{
			AggregateID: plantID,
			EventType:   TypePlantSunk,
			Timestamp:   timestamp,
			Version:     version,
		},
		UserID:  userID,
		HumanID: humanID,
		Sink:    sink,
	}
}

// PlantDeleted is raised when a plant and its images are removed
type PlantDeleted struct {
	BaseEvent
	UserID        string `json:"user_id"`
	HumanID       int    `json:"human_id"`
	ImagesRemoved int    `json:"images_removed"`
}

// NewPlantDeleted creates a PlantDeleted event
func NewPlantDeleted(plantID, userID string, humanID, imagesRemoved int, timestamp time.Time) PlantDeleted {
	return PlantDeleted{
		BaseEvent: BaseEvent{
			AggregateID: plantID,
			EventType:   TypePlantDeleted,
			Timestamp:   timestamp,
			Version:     1,
		},
		UserID:        userID,
		HumanID:       humanID,
		ImagesRemoved: imagesRemoved,
	}
}

// User Events

// VisibilityChanged is raised when a user makes their profile public or private
type VisibilityChanged struct {
	BaseEvent
	IsPublic bool `json:"is_public"`
}

// NewVisibilityChanged creates a VisibilityChanged event
func NewVisibilityChanged(userID string, isPublic bool, timestamp time.Time) VisibilityChanged {
	return VisibilityChanged{
		BaseEvent: BaseEvent{
			AggregateID: userID,
			EventType:   TypeVisibilityChanged,
			Timestamp:   timestamp,
			Version:     1,
		},
		IsPublic: isPublic,
	}
}
