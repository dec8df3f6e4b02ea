package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"kondax-backend/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	calls int
}

func (s *stubRepo) FetchDocuments(_ context.Context, q domain.DocumentQuery) ([]domain.Document, error) {
	s.calls++
	return []domain.Document{{ID: "a", Type: q.Type, Slug: "a"}}, nil
}

func (s *stubRepo) CountDocuments(context.Context, string, string) (int64, error) {
	s.calls++
	return 3, nil
}

func (s *stubRepo) GetBySlug(_ context.Context, _ string, slug string) (*domain.Document, error) {
	s.calls++
	if slug == "missing" {
		return nil, domain.ErrNotFound
	}
	return &domain.Document{ID: slug, Slug: slug}, nil
}

func (s *stubRepo) ListCategories(context.Context, string) ([]string, error) {
	s.calls++
	return []string{"tech"}, nil
}

func (s *stubRepo) ListSlugs(context.Context, string) ([]domain.SlugEntry, error) {
	s.calls++
	return []domain.SlugEntry{{Slug: "a"}}, nil
}

func TestContentCachePassthrough(t *testing.T) {
	t.Run("Should call the store directly without a client", func(t *testing.T) {
		next := &stubRepo{}
		repo := NewContentRepository(next, nil, 0)

		docs, err := repo.FetchDocuments(context.Background(), domain.DocumentQuery{Type: domain.DocTypeBlog, Limit: 5})
		require.NoError(t, err)
		assert.Len(t, docs, 1)

		_, err = repo.GetBySlug(context.Background(), domain.DocTypeBlog, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		total, err := repo.CountDocuments(context.Background(), domain.DocTypeBlog, "")
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Equal(t, 3, next.calls)

		n, err := repo.Purge(context.Background())
		assert.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("Should fall through when redis is unreachable", func(t *testing.T) {
		rdb := redis.NewClient(&redis.Options{
			Addr:        "127.0.0.1:1",
			DialTimeout: 50 * time.Millisecond,
			MaxRetries:  -1,
		})
		defer rdb.Close()

		next := &stubRepo{}
		repo := NewContentRepository(next, rdb, time.Second)

		categories, err := repo.ListCategories(context.Background(), domain.DocTypeBlog)
		require.NoError(t, err)
		assert.Equal(t, []string{"tech"}, categories)

		slugs, err := repo.ListSlugs(context.Background(), domain.DocTypeNews)
		require.NoError(t, err)
		assert.Len(t, slugs, 1)
		assert.Equal(t, 2, next.calls)

		_, err = repo.Purge(context.Background())
		assert.Error(t, err)
	})
}

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestContentCacheReadThrough(t *testing.T) {
	ctx := context.Background()

	t.Run("Should serve the second read from redis", func(t *testing.T) {
		mr, rdb := newMiniredis(t)
		next := &stubRepo{}
		repo := NewContentRepository(next, rdb, time.Minute)
		q := domain.DocumentQuery{Type: domain.DocTypeBlog, Category: "tech", Limit: 5}

		first, err := repo.FetchDocuments(ctx, q)
		require.NoError(t, err)
		second, err := repo.FetchDocuments(ctx, q)
		require.NoError(t, err)

		assert.Equal(t, 1, next.calls)
		assert.Equal(t, first, second)

		key := cacheKey("list", domain.DocTypeBlog, "tech", "0", "5")
		assert.True(t, mr.Exists(key))
		assert.Equal(t, time.Minute, mr.TTL(key))

		doc, err := repo.GetBySlug(ctx, domain.DocTypeBlog, "hello")
		require.NoError(t, err)
		cached, err := repo.GetBySlug(ctx, domain.DocTypeBlog, "hello")
		require.NoError(t, err)
		assert.Equal(t, doc, cached)
		assert.Equal(t, 2, next.calls)
	})

	t.Run("Should key pages separately", func(t *testing.T) {
		_, rdb := newMiniredis(t)
		next := &stubRepo{}
		repo := NewContentRepository(next, rdb, time.Minute)

		_, err := repo.FetchDocuments(ctx, domain.DocumentQuery{Type: domain.DocTypeBlog, Offset: 0, Limit: 5})
		require.NoError(t, err)
		_, err = repo.FetchDocuments(ctx, domain.DocumentQuery{Type: domain.DocTypeBlog, Offset: 5, Limit: 5})
		require.NoError(t, err)

		assert.Equal(t, 2, next.calls)
	})

	t.Run("Should not cache a missing document", func(t *testing.T) {
		mr, rdb := newMiniredis(t)
		next := &stubRepo{}
		repo := NewContentRepository(next, rdb, time.Minute)

		_, err := repo.GetBySlug(ctx, domain.DocTypeNews, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = repo.GetBySlug(ctx, domain.DocTypeNews, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		assert.Equal(t, 2, next.calls)
		assert.False(t, mr.Exists(cacheKey("doc", domain.DocTypeNews, "missing")))
	})

	t.Run("Should reload an unreadable entry", func(t *testing.T) {
		mr, rdb := newMiniredis(t)
		next := &stubRepo{}
		repo := NewContentRepository(next, rdb, time.Minute)
		key := cacheKey("count", domain.DocTypeBlog, "")
		require.NoError(t, mr.Set(key, "not-json"))

		total, err := repo.CountDocuments(ctx, domain.DocTypeBlog, "")
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Equal(t, 1, next.calls)

		raw, err := mr.Get(key)
		require.NoError(t, err)
		assert.Equal(t, "3", raw)
	})

	t.Run("Should expire entries after the ttl", func(t *testing.T) {
		mr, rdb := newMiniredis(t)
		next := &stubRepo{}
		repo := NewContentRepository(next, rdb, time.Minute)

		_, err := repo.ListCategories(ctx, domain.DocTypeBlog)
		require.NoError(t, err)
		mr.FastForward(2 * time.Minute)
		_, err = repo.ListCategories(ctx, domain.DocTypeBlog)
		require.NoError(t, err)

		assert.Equal(t, 2, next.calls)
	})
}

func TestContentCachePurge(t *testing.T) {
	ctx := context.Background()

	t.Run("Should delete only content keys", func(t *testing.T) {
		mr, rdb := newMiniredis(t)
		next := &stubRepo{}
		repo := NewContentRepository(next, rdb, time.Minute)

		_, err := repo.ListSlugs(ctx, domain.DocTypeBlog)
		require.NoError(t, err)
		_, err = repo.ListSlugs(ctx, domain.DocTypeNews)
		require.NoError(t, err)
		_, err = repo.ListCategories(ctx, domain.DocTypeBlog)
		require.NoError(t, err)
		require.NoError(t, mr.Set("rl:ip:203.0.113.7", "4"))

		removed, err := repo.Purge(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, removed)
		assert.True(t, mr.Exists("rl:ip:203.0.113.7"))
		assert.Equal(t, []string{"rl:ip:203.0.113.7"}, mr.Keys())

		// the next read goes back to the store
		_, err = repo.ListSlugs(ctx, domain.DocTypeBlog)
		require.NoError(t, err)
		assert.Equal(t, 4, next.calls)
	})

	t.Run("Should purge more keys than one scan batch", func(t *testing.T) {
		mr, rdb := newMiniredis(t)
		repo := NewContentRepository(&stubRepo{}, rdb, time.Minute)
		for i := 0; i < 450; i++ {
			require.NoError(t, mr.Set(cacheKey("doc", domain.DocTypeBlog, strconv.Itoa(i)), "{}"))
		}

		removed, err := repo.Purge(ctx)
		require.NoError(t, err)
		assert.Equal(t, 450, removed)
		assert.Empty(t, mr.Keys())
	})
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, `cms:list:"blog":"":"0":"5"`, cacheKey("list", "blog", "", "0", "5"))
	// quoting keeps a category containing ':' from colliding with another key
	assert.NotEqual(t, cacheKey("count", "blog", "a:b"), cacheKey("count", "blog:a", "b"))
}
