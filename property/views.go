package property

import (
	"context"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"estately/db"
)

const viewKeyPrefix = "property:views:"

// ViewCounter batches detail-view counts in Redis and flushes them to
// the views column periodically. With Redis disabled (nil client) every
// view writes through to the database directly.
type ViewCounter struct {
	rdb    *redis.Client
	pool   db.Querier
	repo   Repository
	logger *zap.Logger
}

func NewViewCounter(rdb *redis.Client, pool db.Querier, repo Repository, logger *zap.Logger) *ViewCounter {
	return &ViewCounter{rdb: rdb, pool: pool, repo: repo, logger: logger}
}

// Record counts one detail view. Counting is best-effort: a Redis error
// is logged and dropped rather than failing the page view.
func (v *ViewCounter) Record(ctx context.Context, propertyID string) {
	if v.rdb == nil {
		if err := v.repo.AddViews(ctx, v.pool, propertyID, 1); err != nil {
			v.logger.Warn("view write-through failed",
				zap.String("property_id", propertyID), zap.Error(err))
		}
		return
	}
	if err := v.rdb.Incr(ctx, viewKeyPrefix+propertyID).Err(); err != nil {
		v.logger.Warn("view counter incr failed",
			zap.String("property_id", propertyID), zap.Error(err))
	}
}

// Flush drains all pending counters into the database.
func (v *ViewCounter) Flush(ctx context.Context) error {
	if v.rdb == nil {
		return nil
	}

	iter := v.rdb.Scan(ctx, 0, viewKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		raw, err := v.rdb.GetDel(ctx, key).Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return err
		}
		count, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || count <= 0 {
			continue
		}
		propertyID := strings.TrimPrefix(key, viewKeyPrefix)
		if err := v.repo.AddViews(ctx, v.pool, propertyID, count); err != nil {
			v.logger.Warn("view counter flush failed",
				zap.String("property_id", propertyID), zap.Error(err))
		}
	}
	return iter.Err()
}
