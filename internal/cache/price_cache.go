// Package cache holds the redis-backed price lookup cache. Entries are
// keyed by the full query tuple under a per-(branch,service) generation
// counter; rule writes bump the generation, making stale entries
// unreachable without scanning keys.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"washhub/internal/models"
	"washhub/internal/service"
)

const defaultTTL = 5 * time.Minute

type entry struct {
	Rule models.PricingRule `json:"rule"`
	Tier string             `json:"tier"`
}

// PriceCache implements service.LookupCache on redis. All failures degrade
// to a cache miss; the caller falls through to the database.
type PriceCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewPriceCache returns a redis-backed price cache.
func NewPriceCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *PriceCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &PriceCache{client: client, ttl: ttl, logger: logger}
}

func genKey(branchID, serviceID int64) string {
	return fmt.Sprintf("price:gen:%d:%d", branchID, serviceID)
}

func (c *PriceCache) key(gen int64, branchID, serviceID, vehicleTypeID int64, brandID, modelID *int64) string {
	return fmt.Sprintf("price:%d:%d:g%d:%d:%s:%s",
		branchID, serviceID, gen, vehicleTypeID, idOrDash(brandID), idOrDash(modelID))
}

func idOrDash(id *int64) string {
	if id == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *id)
}

// Get returns a cached lookup result, if any.
func (c *PriceCache) Get(ctx context.Context, branchID, serviceID, vehicleTypeID int64, brandID, modelID *int64) (*models.PricingRule, service.MatchTier, bool) {
	gen, err := c.generation(ctx, branchID, serviceID)
	if err != nil {
		return nil, "", false
	}

	raw, err := c.client.Get(ctx, c.key(gen, branchID, serviceID, vehicleTypeID, brandID, modelID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("price cache read failed", zap.Error(err))
		}
		return nil, "", false
	}

	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		c.logger.Warn("price cache entry corrupt", zap.Error(err))
		return nil, "", false
	}
	return &e.Rule, service.MatchTier(e.Tier), true
}

// Save caches a lookup result under the current generation.
func (c *PriceCache) Save(ctx context.Context, branchID, serviceID, vehicleTypeID int64, brandID, modelID *int64, rule *models.PricingRule, tier service.MatchTier) {
	gen, err := c.generation(ctx, branchID, serviceID)
	if err != nil {
		return
	}

	data, err := json.Marshal(entry{Rule: *rule, Tier: string(tier)})
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(gen, branchID, serviceID, vehicleTypeID, brandID, modelID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("price cache write failed", zap.Error(err))
	}
}

// Invalidate bumps the generation for a (branch, service) pair. Old entries
// expire via TTL.
func (c *PriceCache) Invalidate(ctx context.Context, branchID, serviceID int64) {
	if err := c.client.Incr(ctx, genKey(branchID, serviceID)).Err(); err != nil {
		c.logger.Warn("price cache invalidation failed",
			zap.Int64("branch_id", branchID),
			zap.Int64("service_id", serviceID),
			zap.Error(err),
		)
	}
}

func (c *PriceCache) generation(ctx context.Context, branchID, serviceID int64) (int64, error) {
	gen, err := c.client.Get(ctx, genKey(branchID, serviceID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		c.logger.Warn("price cache generation read failed", zap.Error(err))
		return 0, err
	}
	return gen, nil
}
