package handlers

import (
	"net/http"

	"plant-backend/application/queries"
	querybus "plant-backend/application/queries/bus"
	"plant-backend/domain/core/aggregates"
	"plant-backend/pkg/common"
	pkgerrors "plant-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// LineageHandler serves the leveled lineage graph
type LineageHandler struct {
	queryBus   *querybus.QueryBus
	errHandler *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewLineageHandler creates a new lineage handler
func NewLineageHandler(queryBus *querybus.QueryBus, errHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *LineageHandler {
	return &LineageHandler{
		queryBus:   queryBus,
		errHandler: errHandler,
		logger:     logger,
	}
}

// GetLineage handles GET /lineages/user/{userID}.
// The body is a list of generation levels, each a sorted list of nodes.
func (h *LineageHandler) GetLineage(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := currentUser(w, r, h.errHandler)
	if !ok {
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetLineageQuery{
		UserID:      chi.URLParam(r, "userID"),
		RequesterID: userCtx.UserID,
	})
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	levels, _ := result.([][]*aggregates.LineageNode)
	if levels == nil {
		levels = [][]*aggregates.LineageNode{}
	}
	common.RespondJSON(w, http.StatusOK, levels)
}
