package handlers

import (
	"context"

	"plant-backend/application/ports"
	pkgerrors "plant-backend/pkg/errors"
)

// authorizeView enforces the profile visibility rule: a requester may read
// their own data, or another user's data when that profile is public.
func authorizeView(ctx context.Context, users ports.UserRepository, requesterID, ownerID string) error {
	if requesterID == ownerID {
		return nil
	}

	owner, err := users.GetByID(ctx, ownerID)
	if err != nil {
		return err
	}
	requester, err := users.GetByID(ctx, requesterID)
	if err != nil {
		return err
	}
	if !requester.CanView(owner) {
		return pkgerrors.ErrUserNotAuthorized.Clone().
			WithDetail("owner_id", ownerID)
	}
	return nil
}
