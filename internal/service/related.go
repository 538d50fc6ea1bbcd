package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pkordes/case-gallery/internal/cache"
	"github.com/pkordes/case-gallery/internal/domain"
)

// Related returns up to limit published cases sharing at least one term with
// case id, in random order, never including id itself. The chosen id list is
// cached; the records are rebuilt from it on every call.
func (e *QueryEngine) Related(ctx context.Context, id int64, limit int) []domain.CaseRecord {
	limit = clamp(limit, DefaultRelated, MaxRelated)

	ids, err := e.relatedIDs(ctx, id, limit)
	if err != nil {
		e.log.ErrorContext(ctx, "related lookup failed", "case_id", id, "error", err)
		return []domain.CaseRecord{}
	}
	if len(ids) == 0 {
		return []domain.CaseRecord{}
	}

	found, err := e.cases.Search(ctx, domain.CaseFilter{
		Status:     domain.StatusPublish,
		IncludeIDs: ids,
		ExcludeIDs: []int64{id},
		OrderBy:    domain.OrderID,
		Limit:      len(ids),
	})
	if err != nil {
		e.log.ErrorContext(ctx, "related load failed", "case_id", id, "error", err)
		return []domain.CaseRecord{}
	}

	byID := make(map[int64]domain.Case, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}
	out := make([]domain.CaseRecord, 0, len(ids))
	for _, rid := range ids {
		if c, ok := byID[rid]; ok {
			out = append(out, e.Format(ctx, c, domain.FormatOptions{}))
		}
	}
	return out
}

func (e *QueryEngine) relatedIDs(ctx context.Context, id int64, limit int) ([]int64, error) {
	key := keyRelated + strconv.FormatInt(id, 10) + ":" + strconv.Itoa(limit)
	if ids, ok, err := cache.GetJSON[[]int64](ctx, e.cache, key); err == nil && ok {
		return ids, nil
	} else if err != nil {
		e.log.WarnContext(ctx, "cache read failed", "key", key, "error", err)
	}

	terms, err := e.terms.ListByCase(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service.QueryEngine.Related: terms: %w", err)
	}
	termIDs := make([]int64, 0, len(terms))
	for _, t := range terms {
		termIDs = append(termIDs, t.ID)
	}

	ids := []int64{}
	if len(termIDs) > 0 {
		found, err := e.cases.Search(ctx, domain.CaseFilter{
			Status:     domain.StatusPublish,
			TermAny:    termIDs,
			ExcludeIDs: []int64{id},
			OrderBy:    domain.OrderRandom,
			Limit:      limit,
		})
		if err != nil {
			return nil, fmt.Errorf("service.QueryEngine.Related: %w", err)
		}
		for _, c := range found {
			ids = append(ids, c.ID)
		}
	}

	e.cacheSet(ctx, key, ids)
	return ids, nil
}

// Featured returns up to limit published cases: those flagged featured in
// menu order, then the most recent others by date to fill the remainder.
func (e *QueryEngine) Featured(ctx context.Context, limit int) []domain.CaseRecord {
	limit = clamp(limit, DefaultFeatured, MaxFeatured)
	featured := true

	picked, err := e.cases.Search(ctx, domain.CaseFilter{
		Status:   domain.StatusPublish,
		Featured: &featured,
		OrderBy:  domain.OrderMenuOrder,
		Order:    domain.SortAsc,
		Limit:    limit,
	})
	if err != nil {
		e.log.ErrorContext(ctx, "featured lookup failed", "error", err)
		return []domain.CaseRecord{}
	}

	if len(picked) < limit {
		chosen := make([]int64, 0, len(picked))
		for _, c := range picked {
			chosen = append(chosen, c.ID)
		}
		rest, err := e.cases.Search(ctx, domain.CaseFilter{
			Status:     domain.StatusPublish,
			ExcludeIDs: chosen,
			OrderBy:    domain.OrderDate,
			Order:      domain.SortDesc,
			Limit:      limit - len(picked),
		})
		if err != nil {
			e.log.ErrorContext(ctx, "featured back-fill failed", "error", err)
		}
		picked = append(picked, rest...)
	}

	out := make([]domain.CaseRecord, 0, len(picked))
	for _, c := range picked {
		out = append(out, e.Format(ctx, c, domain.FormatOptions{}))
	}
	return out
}
