package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/case-gallery/internal/cache"
	"github.com/pkordes/case-gallery/internal/domain"
	"github.com/pkordes/case-gallery/internal/service"
)

// statsCases answers Count by filter shape. A zero now skips the window check.
func statsCases(t *testing.T, now time.Time) *mockCaseReader {
	t.Helper()
	return &mockCaseReader{
		count: func(_ context.Context, f domain.CaseFilter) (int64, error) {
			switch {
			case f.Status == domain.StatusDraft:
				return 2, nil
			case f.Featured != nil:
				return 3, nil
			case f.CreatedFrom != nil:
				require.NotNil(t, f.CreatedTo)
				assert.Equal(t, 7*24*time.Hour, f.CreatedTo.Sub(*f.CreatedFrom))
				if !now.IsZero() {
					assert.Equal(t, now, *f.CreatedTo)
				}
				return 4, nil
			default:
				return 10, nil
			}
		},
	}
}

func TestStats(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	terms := &mockTermReader{
		count: func(_ context.Context, tax domain.Taxonomy) (int64, error) {
			if tax == domain.TaxonomyCategory {
				return 5, nil
			}
			return 7, nil
		},
		mostPopulous: func(_ context.Context, tax domain.Taxonomy) (domain.Term, error) {
			if tax == domain.TaxonomyCategory {
				return domain.Term{ID: 1, Slug: "face", Name: "Face", Count: 9}, nil
			}
			return domain.Term{}, domain.ErrNotFound
		},
	}
	mem := cache.NewMemory(0)
	t.Cleanup(func() { _ = mem.Close() })
	engine := service.NewQueryEngine(statsCases(t, now), terms, mem, stubURLs{}, discardLogger(),
		service.QueryOptions{Now: func() time.Time { return now }})

	got, err := engine.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(10), got.Published)
	assert.Equal(t, int64(2), got.Draft)
	assert.Equal(t, int64(3), got.Featured)
	assert.Equal(t, int64(4), got.RecentWeek)
	assert.Equal(t, int64(5), got.CategoryTerms)
	assert.Equal(t, int64(7), got.ProcedureTerms)
	require.NotNil(t, got.TopCategory)
	assert.Equal(t, "/gallery/face/", got.TopCategory.URL)
	assert.Nil(t, got.TopProcedure, "an empty taxonomy has no top term")
	assert.Equal(t, now, got.GeneratedAt)
}

func TestStats_Cached(t *testing.T) {
	calls := 0
	terms := &mockTermReader{
		count: func(context.Context, domain.Taxonomy) (int64, error) {
			calls++
			return 1, nil
		},
		mostPopulous: func(context.Context, domain.Taxonomy) (domain.Term, error) {
			return domain.Term{}, domain.ErrNotFound
		},
	}
	engine, _ := newEngine(t, statsCases(t, time.Time{}), terms)
	ctx := context.Background()

	_, err := engine.Stats(ctx)
	require.NoError(t, err)
	_, err = engine.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, calls, "second call is served from cache")
}

func TestStats_CacheIsPerMode(t *testing.T) {
	terms := &mockTermReader{
		count: func(context.Context, domain.Taxonomy) (int64, error) { return 1, nil },
		mostPopulous: func(_ context.Context, tax domain.Taxonomy) (domain.Term, error) {
			if tax == domain.TaxonomyCategory {
				return domain.Term{ID: 1, Taxonomy: tax, Slug: "face", Count: 3}, nil
			}
			return domain.Term{}, domain.ErrNotFound
		},
	}
	mem := cache.NewMemory(0)
	t.Cleanup(func() { _ = mem.Close() })
	cases := statsCases(t, time.Time{})
	virtual := service.NewQueryEngine(cases, terms, mem, stubURLs{}, discardLogger(), service.QueryOptions{})
	native := service.NewQueryEngine(cases, terms, mem, nativeURLs{}, discardLogger(), service.QueryOptions{})
	ctx := context.Background()

	v, err := virtual.Stats(ctx)
	require.NoError(t, err)
	n, err := native.Stats(ctx)
	require.NoError(t, err)

	require.NotNil(t, v.TopCategory)
	require.NotNil(t, n.TopCategory)
	assert.Equal(t, "/gallery/face/", v.TopCategory.URL)
	assert.Equal(t, "/case-category/face/", n.TopCategory.URL)
}

func TestStats_Error(t *testing.T) {
	terms := &mockTermReader{
		count: func(context.Context, domain.Taxonomy) (int64, error) {
			return 0, errors.New("db down")
		},
		mostPopulous: func(context.Context, domain.Taxonomy) (domain.Term, error) {
			return domain.Term{}, domain.ErrNotFound
		},
	}
	engine, mem := newEngine(t, statsCases(t, time.Time{}), terms)

	_, err := engine.Stats(context.Background())

	assert.Error(t, err)
	assert.Equal(t, 0, mem.Len(), "failed stats are not cached")
}
