package handlers

import (
	"net/http"

	"plant-backend/pkg/common"
)

// CheckToken handles GET /auth/check_token. The authenticator has already
// accepted the credentials when this runs.
func CheckToken(w http.ResponseWriter, _ *http.Request) {
	common.RespondJSON(w, http.StatusOK, true)
}
