package router

import (
	"context"

	"github.com/pkordes/case-gallery/internal/domain"
)

// maxAncestors bounds the parent walk so a corrupt parent cycle cannot spin.
const maxAncestors = 32

// Breadcrumbs returns the trail from the gallery root to desc. Category
// ancestors are listed oldest first. Only the last crumb is current.
func (r *Router) Breadcrumbs(ctx context.Context, desc domain.ViewDescriptor) []domain.Breadcrumb {
	mode := r.Mode()
	root := domain.Breadcrumb{Title: r.opts.RootTitle, URL: r.indexURL(mode, 1)}
	if desc.Type == domain.ViewIndex || !desc.Resolved {
		root.IsCurrent = desc.Type == domain.ViewIndex
		return []domain.Breadcrumb{root}
	}

	crumbs := []domain.Breadcrumb{root}
	switch desc.Type {
	case domain.ViewSearch:
		crumbs = append(crumbs, domain.Breadcrumb{
			Title: "Search: " + desc.SearchTerm,
			URL:   r.searchURL(mode, desc.SearchTerm, 1),
		})

	case domain.ViewFavorites:
		crumbs = append(crumbs, domain.Breadcrumb{Title: desc.Title, URL: r.FavoritesURL()})

	case domain.ViewTaxonomy:
		t, err := r.terms.GetByID(ctx, desc.TermID)
		if err != nil {
			r.log.WarnContext(ctx, "breadcrumb term lookup failed", "term_id", desc.TermID, "error", err)
			t = domain.Term{ID: desc.TermID, Slug: desc.TermSlug, Taxonomy: desc.Taxonomy, Name: desc.Title}
		}
		for _, a := range r.ancestors(ctx, t) {
			crumbs = append(crumbs, domain.Breadcrumb{Title: a.Name, URL: r.termURL(mode, a)})
		}
		crumbs = append(crumbs, domain.Breadcrumb{Title: t.Name, URL: r.termURL(mode, t)})

	case domain.ViewSingle:
		terms, err := r.terms.ListByCase(ctx, desc.CaseID)
		if err != nil {
			r.log.WarnContext(ctx, "breadcrumb terms lookup failed", "case_id", desc.CaseID, "error", err)
		}
		for _, t := range terms {
			if t.Taxonomy != domain.TaxonomyCategory {
				continue
			}
			for _, a := range r.ancestors(ctx, t) {
				crumbs = append(crumbs, domain.Breadcrumb{Title: a.Name, URL: r.termURL(mode, a)})
			}
			crumbs = append(crumbs, domain.Breadcrumb{Title: t.Name, URL: r.termURL(mode, t)})
			break
		}
		c := domain.Case{ID: desc.CaseID, Slug: desc.CaseSlug}
		crumbs = append(crumbs, domain.Breadcrumb{Title: desc.Title, URL: r.caseURL(mode, c, terms)})
	}

	crumbs[len(crumbs)-1].IsCurrent = true
	return crumbs
}

// ancestors returns t's parent chain, root first, excluding t itself.
// Only category terms have parents.
func (r *Router) ancestors(ctx context.Context, t domain.Term) []domain.Term {
	if t.Taxonomy != domain.TaxonomyCategory {
		return nil
	}
	seen := map[int64]bool{t.ID: true}
	var chain []domain.Term
	for cur := t; cur.ParentID != nil && len(chain) < maxAncestors; {
		pid := *cur.ParentID
		if seen[pid] {
			break
		}
		seen[pid] = true
		parent, err := r.terms.GetByID(ctx, pid)
		if err != nil {
			r.log.WarnContext(ctx, "breadcrumb parent lookup failed", "term_id", pid, "error", err)
			break
		}
		chain = append(chain, parent)
		cur = parent
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}
