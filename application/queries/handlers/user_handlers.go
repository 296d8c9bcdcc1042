package handlers

import (
	"context"
	"sort"

	"plant-backend/application/ports"
	"plant-backend/application/queries"
	"go.uber.org/zap"
)

// UserQueryHandler serves the user directory and the current user
type UserQueryHandler struct {
	userRepo  ports.UserRepository
	plantRepo ports.PlantRepository
	logger    *zap.Logger
}

// NewUserQueryHandler creates a new user query handler
func NewUserQueryHandler(userRepo ports.UserRepository, plantRepo ports.PlantRepository, logger *zap.Logger) *UserQueryHandler {
	return &UserQueryHandler{
		userRepo:  userRepo,
		plantRepo: plantRepo,
		logger:    logger,
	}
}

// HandleList returns every enabled user with plant counts
func (h *UserQueryHandler) HandleList(ctx context.Context, _ queries.ListUsersQuery) ([]queries.UserSummary, error) {
	users, err := h.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]queries.UserSummary, 0, len(users))
	for _, u := range users {
		if u.Disabled() {
			continue
		}

		plants, err := h.plantRepo.ListByUser(ctx, u.GoogleID())
		if err != nil {
			return nil, err
		}
		active := 0
		for _, p := range plants {
			if p.IsActive() {
				active++
			}
		}

		summaries = append(summaries, queries.UserSummary{
			GoogleID:      u.GoogleID(),
			GivenName:     u.GivenName(),
			LastInitial:   u.LastInitial(),
			IsPublic:      u.IsPublic(),
			NTotalPlants:  len(plants),
			NActivePlants: active,
		})
	}

	sort.SliceStable(summaries, func(a, b int) bool {
		return summaries[a].GivenName < summaries[b].GivenName
	})
	return summaries, nil
}

// HandleCurrent returns the authenticated user
func (h *UserQueryHandler) HandleCurrent(ctx context.Context, query queries.GetCurrentUserQuery) (*queries.UserView, error) {
	user, err := h.userRepo.GetByID(ctx, query.UserID)
	if err != nil {
		return nil, err
	}
	view := queries.NewUserView(user)
	return &view, nil
}
