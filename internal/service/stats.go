package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pkordes/case-gallery/internal/cache"
	"github.com/pkordes/case-gallery/internal/domain"
)

// recentWindow is the span counted by Stats.RecentWeek.
const recentWindow = 7 * 24 * time.Hour

// Stats returns an aggregate snapshot of the gallery. The snapshot is cached;
// independent aggregates are computed concurrently.
func (e *QueryEngine) Stats(ctx context.Context) (domain.Stats, error) {
	key := keyStats + string(e.urls.Mode())
	if s, ok, err := cache.GetJSON[domain.Stats](ctx, e.cache, key); err == nil && ok {
		return s, nil
	} else if err != nil {
		e.log.WarnContext(ctx, "cache read failed", "key", key, "error", err)
	}

	now := e.now().UTC()
	from := now.Add(-recentWindow)
	featured := true

	var s domain.Stats
	g, gctx := errgroup.WithContext(ctx)

	count := func(dst *int64, f domain.CaseFilter) {
		g.Go(func() error {
			n, err := e.cases.Count(gctx, f)
			*dst = n
			return err
		})
	}
	count(&s.Published, domain.CaseFilter{Status: domain.StatusPublish})
	count(&s.Draft, domain.CaseFilter{Status: domain.StatusDraft})
	count(&s.RecentWeek, domain.CaseFilter{Status: domain.StatusPublish, CreatedFrom: &from, CreatedTo: &now})
	count(&s.Featured, domain.CaseFilter{Status: domain.StatusPublish, Featured: &featured})

	termCount := func(dst *int64, tax domain.Taxonomy) {
		g.Go(func() error {
			n, err := e.terms.Count(gctx, tax)
			*dst = n
			return err
		})
	}
	termCount(&s.CategoryTerms, domain.TaxonomyCategory)
	termCount(&s.ProcedureTerms, domain.TaxonomyProcedure)

	top := func(dst **domain.TermRecord, tax domain.Taxonomy) {
		g.Go(func() error {
			t, err := e.terms.MostPopulous(gctx, tax)
			if errors.Is(err, domain.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			rec := e.termRecord(t)
			*dst = &rec
			return nil
		})
	}
	top(&s.TopCategory, domain.TaxonomyCategory)
	top(&s.TopProcedure, domain.TaxonomyProcedure)

	if err := g.Wait(); err != nil {
		return domain.Stats{}, fmt.Errorf("service.QueryEngine.Stats: %w", err)
	}
	s.GeneratedAt = now

	e.cacheSet(ctx, key, s)
	return s, nil
}
