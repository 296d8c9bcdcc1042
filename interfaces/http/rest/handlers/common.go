package handlers

import (
	"errors"
	"net/http"

	"plant-backend/pkg/auth"
	"plant-backend/pkg/common"
	pkgerrors "plant-backend/pkg/errors"
	"plant-backend/pkg/utils"
)

// currentUser returns the authenticated caller, answering 401 when the
// request bypassed the authenticator
func currentUser(w http.ResponseWriter, r *http.Request, errHandler *pkgerrors.ErrorHandler) (*auth.UserContext, bool) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		errHandler.HandleStatus(w, r, http.StatusUnauthorized, "Could not validate credentials")
		return nil, false
	}
	return userCtx, true
}

// decodeBody parses and validates a JSON request body
func decodeBody(w http.ResponseWriter, r *http.Request, errHandler *pkgerrors.ErrorHandler, v interface{}) bool {
	if err := common.ParseJSONBody(w, r, v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			errHandler.HandleStatus(w, r, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		errHandler.Handle(w, r, pkgerrors.NewValidationError(err.Error()))
		return false
	}
	if err := utils.ValidateStruct(v); err != nil {
		errHandler.Handle(w, r, err)
		return false
	}
	return true
}
