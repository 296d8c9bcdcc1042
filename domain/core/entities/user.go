package entities

import (
	"strings"
	"time"
	"unicode/utf8"

	"plant-backend/domain/events"
	pkgerrors "plant-backend/pkg/errors"
)

// User is an account identified by its Google subject id
type User struct {
	googleID        string
	email           string
	givenName       string
	familyName      string
	disabled        bool
	isPublicProfile bool
	createdAt       time.Time

	events []events.DomainEvent
}

// ReconstructUser rebuilds a user from stored data
func ReconstructUser(googleID, email, givenName, familyName string, disabled, isPublic bool, createdAt time.Time) (*User, error) {
	if googleID == "" {
		return nil, pkgerrors.NewValidationError("google id cannot be empty")
	}
	return &User{
		googleID:        googleID,
		email:           email,
		givenName:       givenName,
		familyName:      familyName,
		disabled:        disabled,
		isPublicProfile: isPublic,
		createdAt:       createdAt,
		events:          []events.DomainEvent{},
	}, nil
}

func (u *User) GoogleID() string     { return u.googleID }
func (u *User) Email() string        { return u.email }
func (u *User) GivenName() string    { return u.givenName }
func (u *User) FamilyName() string   { return u.familyName }
func (u *User) Disabled() bool       { return u.disabled }
func (u *User) IsPublic() bool       { return u.isPublicProfile }
func (u *User) CreatedAt() time.Time { return u.createdAt }

// LastInitial returns the first letter of the family name, upper-cased
func (u *User) LastInitial() string {
	name := strings.TrimSpace(u.familyName)
	if name == "" {
		return ""
	}
	r, _ := utf8.DecodeRuneInString(name)
	return strings.ToUpper(string(r))
}

// CanView reports whether u may read target's collection.
// Users can always see their own plants; others only see public profiles.
func (u *User) CanView(target *User) bool {
	if target == nil {
		return false
	}
	return u.googleID == target.googleID || target.isPublicProfile
}

// SetVisibility changes whether the profile is public. It returns false
// when nothing changed.
func (u *User) SetVisibility(isPublic bool) bool {
	if u.isPublicProfile == isPublic {
		return false
	}
	u.isPublicProfile = isPublic
	u.events = append(u.events, events.NewVisibilityChanged(u.googleID, isPublic, time.Now().UTC()))
	return true
}

// GetUncommittedEvents returns events raised since the last commit
func (u *User) GetUncommittedEvents() []events.DomainEvent {
	return u.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (u *User) MarkEventsAsCommitted() {
	u.events = []events.DomainEvent{}
}
