package handlers

import (
	"net/http"

	"plant-backend/application/commands"
	"plant-backend/application/commands/bus"
	"plant-backend/application/queries"
	querybus "plant-backend/application/queries/bus"
	"plant-backend/pkg/common"
	pkgerrors "plant-backend/pkg/errors"

	"go.uber.org/zap"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errHandler *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *UserHandler {
	return &UserHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		errHandler: errHandler,
		logger:     logger,
	}
}

// ListUsers handles GET /users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r, h.errHandler); !ok {
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.ListUsersQuery{})
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	users, _ := result.([]queries.UserSummary)
	if users == nil {
		users = []queries.UserSummary{}
	}
	common.RespondJSON(w, http.StatusOK, users)
}

// GetCurrentUser handles GET /users/me
func (h *UserHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := currentUser(w, r, h.errHandler)
	if !ok {
		return
	}
	h.respondCurrentUser(w, r, userCtx.UserID)
}

// UpdateVisibility handles POST /users/settings/visibility
func (h *UserHandler) UpdateVisibility(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := currentUser(w, r, h.errHandler)
	if !ok {
		return
	}

	var req VisibilityRequest
	if !decodeBody(w, r, h.errHandler, &req) {
		return
	}

	cmd := commands.UpdateVisibilityCommand{
		UserID:   userCtx.UserID,
		IsPublic: *req.IsPublicProfile,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Warn("Failed to update visibility",
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		h.errHandler.Handle(w, r, err)
		return
	}

	h.respondCurrentUser(w, r, userCtx.UserID)
}

func (h *UserHandler) respondCurrentUser(w http.ResponseWriter, r *http.Request, userID string) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetCurrentUserQuery{UserID: userID})
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}
