package handlers

import (
	"context"

	"plant-backend/application/commands"
	"plant-backend/application/ports"
	"go.uber.org/zap"
)

// UpdateVisibilityHandler toggles whether a profile is public
type UpdateVisibilityHandler struct {
	userRepo  ports.UserRepository
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewUpdateVisibilityHandler creates a new visibility handler
func NewUpdateVisibilityHandler(userRepo ports.UserRepository, publisher ports.EventPublisher, logger *zap.Logger) *UpdateVisibilityHandler {
	return &UpdateVisibilityHandler{
		userRepo:  userRepo,
		publisher: publisher,
		logger:    logger,
	}
}

// Handle executes the visibility command
func (h *UpdateVisibilityHandler) Handle(ctx context.Context, cmd commands.UpdateVisibilityCommand) error {
	user, err := h.userRepo.GetByID(ctx, cmd.UserID)
	if err != nil {
		return err
	}
	if !user.SetVisibility(cmd.IsPublic) {
		return nil
	}

	if err := h.userRepo.UpdateVisibility(ctx, user); err != nil {
		return err
	}

	publishEvents(ctx, h.publisher, h.logger, user.GetUncommittedEvents())
	user.MarkEventsAsCommitted()

	h.logger.Info("Profile visibility changed",
		zap.String("userID", cmd.UserID),
		zap.Bool("isPublic", cmd.IsPublic),
	)
	return nil
}
