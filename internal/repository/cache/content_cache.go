package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"kondax-backend/internal/domain"
	"kondax-backend/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces every cached content read.
const KeyPrefix = "cms:"

const defaultTTL = time.Minute

// ContentRepository is a read-through cache in front of another
// domain.ContentRepository. Redis failures never fail a read; the call goes
// straight to the wrapped store instead.
type ContentRepository struct {
	next domain.ContentRepository
	rdb  *redis.Client
	ttl  time.Duration
}

var (
	_ domain.ContentRepository = (*ContentRepository)(nil)
	_ domain.ContentCache      = (*ContentRepository)(nil)
)

// NewContentRepository wraps next. A nil client disables caching.
func NewContentRepository(next domain.ContentRepository, rdb *redis.Client, ttl time.Duration) *ContentRepository {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &ContentRepository{next: next, rdb: rdb, ttl: ttl}
}

func (r *ContentRepository) FetchDocuments(ctx context.Context, q domain.DocumentQuery) ([]domain.Document, error) {
	key := cacheKey("list", q.Type, q.Category, strconv.Itoa(q.Offset), strconv.Itoa(q.Limit))
	return readThrough(ctx, r, key, func() ([]domain.Document, error) {
		return r.next.FetchDocuments(ctx, q)
	})
}

func (r *ContentRepository) CountDocuments(ctx context.Context, docType, category string) (int64, error) {
	return readThrough(ctx, r, cacheKey("count", docType, category), func() (int64, error) {
		return r.next.CountDocuments(ctx, docType, category)
	})
}

// GetBySlug does not cache misses, so a newly published slug shows up
// without a purge.
func (r *ContentRepository) GetBySlug(ctx context.Context, docType, slug string) (*domain.Document, error) {
	return readThrough(ctx, r, cacheKey("doc", docType, slug), func() (*domain.Document, error) {
		return r.next.GetBySlug(ctx, docType, slug)
	})
}

func (r *ContentRepository) ListCategories(ctx context.Context, docType string) ([]string, error) {
	return readThrough(ctx, r, cacheKey("categories", docType), func() ([]string, error) {
		return r.next.ListCategories(ctx, docType)
	})
}

func (r *ContentRepository) ListSlugs(ctx context.Context, docType string) ([]domain.SlugEntry, error) {
	return readThrough(ctx, r, cacheKey("slugs", docType), func() ([]domain.SlugEntry, error) {
		return r.next.ListSlugs(ctx, docType)
	})
}

// Purge deletes every cached content key and reports how many were removed.
func (r *ContentRepository) Purge(ctx context.Context) (int, error) {
	if r.rdb == nil {
		return 0, nil
	}

	removed := 0
	iter := r.rdb.Scan(ctx, 0, KeyPrefix+"*", 200).Iterator()
	batch := make([]string, 0, 200)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			n, err := r.rdb.Del(ctx, batch...).Result()
			if err != nil {
				return removed, fmt.Errorf("cache: purge: %w", err)
			}
			removed += int(n)
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("cache: scan: %w", err)
	}
	if len(batch) > 0 {
		n, err := r.rdb.Del(ctx, batch...).Result()
		if err != nil {
			return removed, fmt.Errorf("cache: purge: %w", err)
		}
		removed += int(n)
	}
	return removed, nil
}

func readThrough[T any](ctx context.Context, r *ContentRepository, key string, load func() (T, error)) (T, error) {
	if r.rdb == nil {
		return load()
	}

	raw, err := r.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached T
		jsonErr := json.Unmarshal(raw, &cached)
		if jsonErr == nil {
			return cached, nil
		}
		logger.Log.Warn("Discarding unreadable cache entry", "key", key, "error", jsonErr)
	case !errors.Is(err, redis.Nil):
		logger.Log.Warn("Content cache read failed", "key", key, "error", err)
	}

	value, err := load()
	if err != nil {
		return value, err
	}

	if encoded, jsonErr := json.Marshal(value); jsonErr == nil {
		if setErr := r.rdb.Set(ctx, key, encoded, r.ttl).Err(); setErr != nil {
			logger.Log.Warn("Content cache write failed", "key", key, "error", setErr)
		}
	}
	return value, nil
}

func cacheKey(op string, parts ...string) string {
	key := KeyPrefix + op
	for _, p := range parts {
		key += ":" + strconv.Quote(p)
	}
	return key
}
