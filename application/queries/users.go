package queries

import (
	"time"

	"plant-backend/domain/core/entities"
)

// ListUsersQuery lists the enabled users with their plant counts
type ListUsersQuery struct{}

// Validate validates the query
func (q ListUsersQuery) Validate() error { return nil }

// GetCurrentUserQuery fetches the authenticated user
type GetCurrentUserQuery struct {
	UserID string `json:"user_id"`
}

// Validate validates the query
func (q GetCurrentUserQuery) Validate() error {
	return requireRequester(q.UserID)
}

// UserSummary is the public directory entry of a user.
// Only the initial of the family name is exposed.
type UserSummary struct {
	GoogleID      string `json:"google_id"`
	GivenName     string `json:"given_name"`
	LastInitial   string `json:"last_initial"`
	IsPublic      bool   `json:"is_public_profile"`
	NTotalPlants  int    `json:"n_total_plants"`
	NActivePlants int    `json:"n_active_plants"`
}

// UserView is the full representation of the authenticated user
type UserView struct {
	GoogleID   string    `json:"google_id"`
	Email      string    `json:"email"`
	GivenName  string    `json:"given_name"`
	FamilyName string    `json:"family_name"`
	IsPublic   bool      `json:"is_public_profile"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewUserView converts a user entity into its view
func NewUserView(u *entities.User) UserView {
	return UserView{
		GoogleID:   u.GoogleID(),
		Email:      u.Email(),
		GivenName:  u.GivenName(),
		FamilyName: u.FamilyName(),
		IsPublic:   u.IsPublic(),
		CreatedAt:  u.CreatedAt(),
	}
}

