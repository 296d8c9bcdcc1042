package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"plant-backend/application/ports"
	"plant-backend/application/queries"
	"plant-backend/domain/config"
	"plant-backend/domain/core/aggregates"
	pkgerrors "plant-backend/pkg/errors"
	"go.uber.org/zap"
)

// GetLineageHandler builds the leveled lineage graph of a collection
type GetLineageHandler struct {
	plantRepo ports.PlantRepository
	userRepo  ports.UserRepository
	cache     ports.Cache
	tracer    ports.Tracer
	metrics   ports.Metrics
	cfg       *config.DomainConfig
	logger    *zap.Logger
}

// NewGetLineageHandler creates a new lineage handler
func NewGetLineageHandler(
	plantRepo ports.PlantRepository,
	userRepo ports.UserRepository,
	cache ports.Cache,
	tracer ports.Tracer,
	metrics ports.Metrics,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *GetLineageHandler {
	return &GetLineageHandler{
		plantRepo: plantRepo,
		userRepo:  userRepo,
		cache:     cache,
		tracer:    tracer,
		metrics:   metrics,
		cfg:       cfg,
		logger:    logger,
	}
}

// Handle executes the lineage query
func (h *GetLineageHandler) Handle(ctx context.Context, query queries.GetLineageQuery) ([][]*aggregates.LineageNode, error) {
	if err := authorizeView(ctx, h.userRepo, query.RequesterID, query.UserID); err != nil {
		return nil, err
	}

	cacheKey := queries.LineageCacheKey(query.UserID)
	if h.cfg.EnableLineageCache {
		if cached, found := h.cache.Get(ctx, cacheKey); found {
			if levels, ok := cached.([][]*aggregates.LineageNode); ok {
				return levels, nil
			}
		}
	}

	var levels [][]*aggregates.LineageNode
	var nodeCount int
	err := h.tracer.TraceFunction(ctx, "BuildLineage", func(ctx context.Context) error {
		h.tracer.AddAnnotation(ctx, "user_id", query.UserID)

		plants, err := h.plantRepo.ListByUser(ctx, query.UserID)
		if err != nil {
			return err
		}
		if h.cfg.MaxLineageNodes > 0 && len(plants) > h.cfg.MaxLineageNodes {
			return pkgerrors.ErrInvalidLineageGraph.Clone().
				WithDetail("reason", fmt.Sprintf("collection has %d plants, limit is %d", len(plants), h.cfg.MaxLineageNodes))
		}

		records := make([]aggregates.PlantRecord, len(plants))
		for i, p := range plants {
			records[i] = p.Record()
		}

		levels, err = aggregates.BuildLineage(records)
		if err != nil {
			return err
		}
		for _, level := range levels {
			nodeCount += len(level)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, aggregates.ErrInvalidLineage) || errors.Is(err, aggregates.ErrCyclicLineage) {
			h.logger.Warn("Collection does not form a valid lineage",
				zap.String("userID", query.UserID),
				zap.Error(err),
			)
			return nil, pkgerrors.ErrInvalidLineageGraph.Clone().
				WithDetail("reason", err.Error()).
				WithCause(err)
		}
		return nil, err
	}

	h.metrics.RecordLineageSize(ctx, nodeCount, len(levels))

	if h.cfg.EnableLineageCache {
		if ttl := int(h.cfg.LineageCacheTTL / time.Second); ttl > 0 {
			if err := h.cache.Set(ctx, cacheKey, levels, ttl); err != nil {
				h.logger.Warn("Failed to cache lineage", zap.String("userID", query.UserID), zap.Error(err))
			}
		}
	}

	return levels, nil
}
