package entities

import (
	"time"

	"github.com/google/uuid"
	"plant-backend/domain/core/aggregates"
	"plant-backend/domain/core/valueobjects"
	"plant-backend/domain/events"
	pkgerrors "plant-backend/pkg/errors"
)

// PlantDetails carries the mutable descriptive fields of a plant
type PlantDetails struct {
	Species    string
	Location   string
	ParentIDs  []int
	Source     string
	SourceDate *time.Time
	Sink       string
	SinkDate   *time.Time
	Notes      string
}

// PlantPatch is a partial update. Nil fields are left unchanged.
type PlantPatch struct {
	HumanName  *string
	Species    *string
	Location   *string
	ParentIDs  *[]int
	Source     *string
	SourceDate *time.Time
	Sink       *string
	SinkDate   *time.Time
	Notes      *string
}

// IsEmpty reports whether the patch changes nothing
func (p PlantPatch) IsEmpty() bool {
	return p.HumanName == nil && p.Species == nil && p.Location == nil &&
		p.ParentIDs == nil && p.Source == nil && p.SourceDate == nil &&
		p.Sink == nil && p.SinkDate == nil && p.Notes == nil
}

// Plant is a single tracked plant in a user's collection
type Plant struct {
	id        string
	userID    string
	humanID   int
	name      valueobjects.PlantName
	details   PlantDetails
	createdAt time.Time
	updatedAt time.Time
	version   int

	events []events.DomainEvent
}

// NewPlant creates a new plant with business rule validation
func NewPlant(userID string, humanID int, name valueobjects.PlantName, details PlantDetails) (*Plant, error) {
	return NewPlantWithID(uuid.New().String(), userID, humanID, name, details)
}

// NewPlantWithID creates a new plant under an id chosen by the caller
func NewPlantWithID(id, userID string, humanID int, name valueobjects.PlantName, details PlantDetails) (*Plant, error) {
	if id == "" {
		return nil, pkgerrors.NewValidationError("plant id cannot be empty")
	}
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}
	details = normalizeDetails(details)
	if err := checkInvariants(humanID, details); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &Plant{
		id:        id,
		userID:    userID,
		humanID:   humanID,
		name:      name,
		details:   details,
		createdAt: now,
		updatedAt: now,
		version:   1,
		events:    []events.DomainEvent{},
	}

	p.addEvent(events.NewPlantCreated(p.id, userID, humanID, name.String(), details.ParentIDs, details.Source, now))
	if details.Sink != "" {
		p.addEvent(events.NewPlantSunk(p.id, userID, humanID, details.Sink, p.version, now))
	}
	return p, nil
}

// ReconstructPlant rebuilds a plant from stored data without raising events
func ReconstructPlant(
	id, userID string,
	humanID int,
	name valueobjects.PlantName,
	details PlantDetails,
	createdAt, updatedAt time.Time,
	version int,
) (*Plant, error) {
	if id == "" || userID == "" {
		return nil, pkgerrors.NewValidationError("plant id and user id are required")
	}
	if version < 1 {
		version = 1
	}
	return &Plant{
		id:        id,
		userID:    userID,
		humanID:   humanID,
		name:      name,
		details:   normalizeDetails(details),
		createdAt: createdAt,
		updatedAt: updatedAt,
		version:   version,
		events:    []events.DomainEvent{},
	}, nil
}

func (p *Plant) ID() string                   { return p.id }
func (p *Plant) UserID() string               { return p.userID }
func (p *Plant) HumanID() int                 { return p.humanID }
func (p *Plant) Name() valueobjects.PlantName { return p.name }
func (p *Plant) Version() int                 { return p.version }
func (p *Plant) CreatedAt() time.Time         { return p.createdAt }
func (p *Plant) UpdatedAt() time.Time         { return p.updatedAt }

// Details returns a copy of the descriptive fields
func (p *Plant) Details() PlantDetails {
	d := p.details
	if d.ParentIDs != nil {
		d.ParentIDs = append([]int(nil), d.ParentIDs...)
	}
	return d
}

// IsActive reports whether the plant is still in the collection
func (p *Plant) IsActive() bool {
	return p.details.Sink == ""
}

// Apply updates the plant from a patch and returns the changed field names.
// The human id never changes.
func (p *Plant) Apply(patch PlantPatch) ([]string, error) {
	next := p.details
	name := p.name
	var changed []string

	if patch.HumanName != nil {
		n, err := valueobjects.NewPlantName(*patch.HumanName)
		if err != nil {
			return nil, err
		}
		if !n.Equals(name) {
			name = n
			changed = append(changed, "human_name")
		}
	}
	setString(&next.Species, patch.Species, "species", &changed)
	setString(&next.Location, patch.Location, "location", &changed)
	setString(&next.Source, patch.Source, "source", &changed)
	setString(&next.Sink, patch.Sink, "sink", &changed)
	setString(&next.Notes, patch.Notes, "notes", &changed)
	setDate(&next.SourceDate, patch.SourceDate, "source_date", &changed)
	setDate(&next.SinkDate, patch.SinkDate, "sink_date", &changed)
	if patch.ParentIDs != nil && !equalInts(*patch.ParentIDs, next.ParentIDs) {
		next.ParentIDs = append([]int(nil), (*patch.ParentIDs)...)
		changed = append(changed, "parent_id")
	}

	next = normalizeDetails(next)
	if err := checkInvariants(p.humanID, next); err != nil {
		return nil, err
	}
	if len(changed) == 0 {
		return nil, nil
	}

	wasActive := p.IsActive()
	p.name = name
	p.details = next
	p.version++
	p.updatedAt = time.Now().UTC()

	p.addEvent(events.NewPlantUpdated(p.id, p.userID, p.humanID, changed, p.version, p.updatedAt))
	if wasActive && !p.IsActive() {
		p.addEvent(events.NewPlantSunk(p.id, p.userID, p.humanID, p.details.Sink, p.version, p.updatedAt))
	}
	return changed, nil
}

// Record projects the plant onto the fields the lineage builder reads
func (p *Plant) Record() aggregates.PlantRecord {
	d := p.Details()
	return aggregates.PlantRecord{
		HumanID:    p.humanID,
		PlantID:    p.id,
		HumanName:  p.name.String(),
		ParentIDs:  d.ParentIDs,
		Source:     d.Source,
		SourceDate: d.SourceDate,
		Sink:       d.Sink,
	}
}

// MarkDeleted raises the deletion event
func (p *Plant) MarkDeleted(imagesRemoved int) {
	p.addEvent(events.NewPlantDeleted(p.id, p.userID, p.humanID, imagesRemoved, time.Now().UTC()))
}

// GetUncommittedEvents returns events raised since the last commit
func (p *Plant) GetUncommittedEvents() []events.DomainEvent {
	return p.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (p *Plant) MarkEventsAsCommitted() {
	p.events = []events.DomainEvent{}
}

func (p *Plant) addEvent(event events.DomainEvent) {
	p.events = append(p.events, event)
}

func checkInvariants(humanID int, d PlantDetails) error {
	if humanID <= 0 {
		return pkgerrors.NewValidationError("human_id must be a positive integer")
	}
	if len(d.ParentIDs) == 0 && d.Source == "" {
		return pkgerrors.NewValidationError("a plant without parents needs a source")
	}
	for _, parent := range d.ParentIDs {
		if parent == humanID {
			return pkgerrors.NewValidationError("a plant cannot be its own parent")
		}
	}
	return nil
}

func normalizeDetails(d PlantDetails) PlantDetails {
	if len(d.ParentIDs) == 0 {
		d.ParentIDs = nil
	}
	return d
}

func setString(dst *string, src *string, field string, changed *[]string) {
	if src != nil && *src != *dst {
		*dst = *src
		*changed = append(*changed, field)
	}
}

func setDate(dst **time.Time, src *time.Time, field string, changed *[]string) {
	if src == nil {
		return
	}
	if *dst != nil && (*dst).Equal(*src) {
		return
	}
	v := *src
	*dst = &v
	*changed = append(*changed, field)
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
