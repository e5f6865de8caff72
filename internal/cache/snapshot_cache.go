package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/survey-service/internal/models"
	"github.com/SAP-F-2025/survey-service/internal/repositories"
)

// SnapshotCache serves question snapshots for reporting from the cache and
// falls back to the wrapped source. Cache failures never fail a request.
type SnapshotCache struct {
	source repositories.SnapshotSource
	cache  CacheService
	ttl    time.Duration
	logger *slog.Logger
}

func NewSnapshotCache(source repositories.SnapshotSource, cache CacheService, ttl time.Duration, logger *slog.Logger) *SnapshotCache {
	return &SnapshotCache{source: source, cache: cache, ttl: ttl, logger: logger}
}

func SnapshotKey(formID uint) string {
	return fmt.Sprintf("survey:snapshots:form:%d", formID)
}

func (c *SnapshotCache) BuildQuestionSnapshots(ctx context.Context, formID uint) (*models.SnapshotSet, error) {
	key := SnapshotKey(formID)

	var cached models.SnapshotSet
	err := c.cache.Get(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		c.logger.Warn("Snapshot cache read failed", "form_id", formID, "error", err)
	}

	set, err := c.source.BuildQuestionSnapshots(ctx, formID)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, set, c.ttl); err != nil {
		c.logger.Warn("Snapshot cache write failed", "form_id", formID, "error", err)
	}
	return set, nil
}

// InvalidateAll drops every cached snapshot set. Called at startup so a new
// process never reports against snapshots cached by an older schema.
func (c *SnapshotCache) InvalidateAll(ctx context.Context) error {
	return c.cache.DeletePattern(ctx, "survey:snapshots:form:*")
}
