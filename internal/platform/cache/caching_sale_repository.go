// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"sales_backend/internal/feature/sales/domain/entity"
	"sales_backend/internal/feature/sales/usecase"
	"sales_backend/internal/platform/db"
)

// CachingSaleRepository decorates a SaleRepository with Redis caching of the
// per-user list and aggregate reads. Writes invalidate every key of the affected
// user once the surrounding transaction commits.
type CachingSaleRepository struct {
	inner     usecase.SaleRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string

	// redeleteAfter > 0 repeats the invalidation after that delay, removing an
	// entry stored by a read that loaded before the write committed.
	redeleteAfter time.Duration
}

var _ usecase.SaleRepository = (*CachingSaleRepository)(nil)

// NewCachingSaleRepository decorates a SaleRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "sales".
func NewCachingSaleRepository(rdb *redis.Client, ttl time.Duration, inner usecase.SaleRepository, namespace string) *CachingSaleRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "sales"
	}
	return &CachingSaleRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// WithDelayedInvalidation enables a second invalidation d after each commit.
func (c *CachingSaleRepository) WithDelayedInvalidation(d time.Duration) *CachingSaleRepository {
	c.redeleteAfter = d
	return c
}

func (c *CachingSaleRepository) Create(ctx context.Context, s *entity.Sale) error {
	if err := c.inner.Create(ctx, s); err != nil {
		return err
	}
	c.invalidateAfterCommit(ctx, s.UserID)
	return nil
}

func (c *CachingSaleRepository) Update(ctx context.Context, s *entity.Sale) error {
	if err := c.inner.Update(ctx, s); err != nil {
		return err
	}
	c.invalidateAfterCommit(ctx, s.UserID)
	return nil
}

func (c *CachingSaleRepository) Delete(ctx context.Context, s *entity.Sale) error {
	if err := c.inner.Delete(ctx, s); err != nil {
		return err
	}
	c.invalidateAfterCommit(ctx, s.UserID)
	return nil
}

// Point lookups are not cached.

func (c *CachingSaleRepository) FindByID(ctx context.Context, id uint) (*entity.Sale, error) {
	return c.inner.FindByID(ctx, id)
}

func (c *CachingSaleRepository) FindByUserAndDate(ctx context.Context, userID string, date time.Time) (*entity.Sale, error) {
	return c.inner.FindByUserAndDate(ctx, userID, date)
}

func (c *CachingSaleRepository) FindByUserAndDateRange(ctx context.Context, userID string, start, end time.Time) ([]entity.Sale, error) {
	return c.inner.FindByUserAndDateRange(ctx, userID, start, end)
}

func (c *CachingSaleRepository) FindByUserAndMonth(ctx context.Context, userID string, year int, month time.Month) ([]entity.Sale, error) {
	return c.inner.FindByUserAndMonth(ctx, userID, year, month)
}

// FindAllByUser retrieves the user's sales, checking cache first then falling back to the database.
func (c *CachingSaleRepository) FindAllByUser(ctx context.Context, userID string) ([]entity.Sale, error) {
	return cached(ctx, c, c.cacheKey(userID, "list"), func() ([]entity.Sale, error) {
		return c.inner.FindAllByUser(ctx, userID)
	})
}

func (c *CachingSaleRepository) SumAmountByUser(ctx context.Context, userID string) (decimal.NullDecimal, error) {
	return cached(ctx, c, c.cacheKey(userID, "sum"), func() (decimal.NullDecimal, error) {
		return c.inner.SumAmountByUser(ctx, userID)
	})
}

func (c *CachingSaleRepository) AverageAmountByUser(ctx context.Context, userID string) (decimal.NullDecimal, error) {
	return cached(ctx, c, c.cacheKey(userID, "avg"), func() (decimal.NullDecimal, error) {
		return c.inner.AverageAmountByUser(ctx, userID)
	})
}

func (c *CachingSaleRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	return cached(ctx, c, c.cacheKey(userID, "count"), func() (int64, error) {
		return c.inner.CountByUser(ctx, userID)
	})
}

// cached returns the JSON value stored under key, or loads, stores and returns it.
// Redis failures fall through to load.
func cached[T any](ctx context.Context, c *CachingSaleRepository, key string, load func() (T, error)) (T, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return load()
	}

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out T
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := load()
	if err != nil {
		var zero T
		return zero, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return out, nil
}

func (c *CachingSaleRepository) invalidateAfterCommit(ctx context.Context, userID string) {
	if c.rdb == nil {
		return
	}
	bg := context.WithoutCancel(ctx)
	pattern := c.userPattern(userID)
	db.AfterCommit(ctx, func() {
		// Best effort: don't fail the write if cache deletion fails
		_ = c.deleteByPattern(bg, pattern)
		if c.redeleteAfter > 0 {
			time.AfterFunc(c.redeleteAfter, func() {
				_ = c.deleteByPattern(bg, pattern)
			})
		}
	})
}

// cacheKey generates a cache key for one query of one user.
func (c *CachingSaleRepository) cacheKey(userID, query string) string {
	return c.cacheKeyPrefix(userID) + query
}

// cacheKeyPrefix generates a prefix for invalidating every entry of a user.
// userID is free text, so it is hex encoded to keep distinct users on distinct keys.
func (c *CachingSaleRepository) cacheKeyPrefix(userID string) string {
	return c.namespace + ":" + hex.EncodeToString([]byte(userID)) + ":"
}

// userPattern returns the SCAN pattern matching every key of userID.
func (c *CachingSaleRepository) userPattern(userID string) string {
	return globEscaper.Replace(c.namespace) + ":" + hex.EncodeToString([]byte(userID)) + ":*"
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingSaleRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// globEscaper escapes the characters SCAN MATCH treats as glob syntax.
var globEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"?", `\?`,
	"[", `\[`,
	"]", `\]`,
)
