package handlers

import (
	"context"

	"plant-backend/application/ports"
	"plant-backend/application/queries"
	"plant-backend/domain/core/entities"
	"plant-backend/domain/events"
	pkgerrors "plant-backend/pkg/errors"
	"go.uber.org/zap"
)

// publishEvents publishes committed changes. Publishing failures are logged
// and never fail the command, the change is already stored.
func publishEvents(ctx context.Context, publisher ports.EventPublisher, logger *zap.Logger, evs []events.DomainEvent) {
	if len(evs) == 0 {
		return
	}
	if err := publisher.PublishBatch(ctx, evs); err != nil {
		logger.Warn("Failed to publish domain events",
			zap.Int("count", len(evs)),
			zap.String("first_type", evs[0].GetEventType()),
			zap.Error(err),
		)
	}
}

// invalidateLineage drops the cached lineage of a user
func invalidateLineage(ctx context.Context, cache ports.Cache, logger *zap.Logger, userID string) {
	if err := cache.Delete(ctx, queries.LineageCacheKey(userID)); err != nil {
		logger.Warn("Failed to invalidate lineage cache", zap.String("userID", userID), zap.Error(err))
	}
}

// checkParentsExist rejects parent ids that name no plant of the collection
func checkParentsExist(parentIDs []int, collection []*entities.Plant) error {
	known := make(map[int]struct{}, len(collection))
	for _, p := range collection {
		known[p.HumanID()] = struct{}{}
	}

	var missing []int
	for _, id := range parentIDs {
		if _, ok := known[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return pkgerrors.ErrUnknownParent.Clone().WithDetail("parent_ids", missing)
	}
	return nil
}

// childrenOf returns the human ids of plants listing parent among their parents
func childrenOf(parent *entities.Plant, collection []*entities.Plant) []int {
	var children []int
	for _, p := range collection {
		if p.ID() == parent.ID() {
			continue
		}
		for _, id := range p.Details().ParentIDs {
			if id == parent.HumanID() {
				children = append(children, p.HumanID())
				break
			}
		}
	}
	return children
}
