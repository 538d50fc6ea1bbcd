package router

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/pkordes/case-gallery/internal/domain"
)

// GenerateURL returns the address of a case or term in the given mode.
// An empty mode means the router's own mode. It performs lookups only.
func (r *Router) GenerateURL(ctx context.Context, id int64, kind domain.Kind, mode domain.Mode) (string, error) {
	if mode == "" {
		mode = r.Mode()
	}
	switch kind {
	case domain.KindCase:
		c, err := r.cases.GetByID(ctx, id)
		if err != nil {
			return "", fmt.Errorf("router.GenerateURL: %w", err)
		}
		var terms []domain.Term
		if mode.IsVirtual() {
			if terms, err = r.terms.ListByCase(ctx, id); err != nil {
				return "", fmt.Errorf("router.GenerateURL: terms: %w", err)
			}
		}
		return r.caseURL(mode, c, terms), nil

	case domain.KindCategory, domain.KindProcedure:
		tax, _ := kind.Taxonomy()
		t, err := r.terms.GetByID(ctx, id)
		if err != nil {
			return "", fmt.Errorf("router.GenerateURL: %w", err)
		}
		if t.Taxonomy != tax {
			return "", fmt.Errorf("router.GenerateURL: term %d is not a %s: %w", id, kind, domain.ErrNotFound)
		}
		return r.termURL(mode, t), nil
	}
	return "", fmt.Errorf("router.GenerateURL: %w: %q", domain.ErrUnknownKind, kind)
}

// CaseURL returns the address of c in the router's mode. terms are the case's
// terms in display order; only categories are consulted.
func (r *Router) CaseURL(c domain.Case, terms []domain.Term) string {
	return r.caseURL(r.Mode(), c, terms)
}

// TermURL returns the address of t in the router's mode.
func (r *Router) TermURL(t domain.Term) string {
	return r.termURL(r.Mode(), t)
}

// IndexURL returns the gallery index address, paginated when page > 1.
func (r *Router) IndexURL(page int) string {
	return r.indexURL(r.Mode(), page)
}

// SearchURL returns the search address for term, paginated when page > 1.
func (r *Router) SearchURL(term string, page int) string {
	return r.searchURL(r.Mode(), term, page)
}

// FavoritesURL returns the favorites address. Both modes share it.
func (r *Router) FavoritesURL() string {
	return "/" + r.base + "/" + segFavorites + "/"
}

// ViewURL returns the address of desc at page in the router's mode.
// It is used for pagination links.
func (r *Router) ViewURL(ctx context.Context, desc domain.ViewDescriptor, page int) string {
	return r.viewURL(ctx, r.Mode(), desc, page)
}

func (r *Router) viewURL(ctx context.Context, mode domain.Mode, desc domain.ViewDescriptor, page int) string {
	switch desc.Type {
	case domain.ViewIndex:
		return r.indexURL(mode, page)
	case domain.ViewSearch:
		return r.searchURL(mode, desc.SearchTerm, page)
	case domain.ViewFavorites:
		return r.FavoritesURL()
	case domain.ViewTaxonomy:
		t := domain.Term{ID: desc.TermID, Slug: desc.TermSlug, Taxonomy: desc.Taxonomy}
		return withPage(r.termURL(mode, t), page)
	case domain.ViewSingle:
		c := domain.Case{ID: desc.CaseID, Slug: desc.CaseSlug}
		var terms []domain.Term
		if mode.IsVirtual() && desc.CaseID != 0 {
			var err error
			if terms, err = r.terms.ListByCase(ctx, desc.CaseID); err != nil {
				r.log.WarnContext(ctx, "router terms lookup failed", "case_id", desc.CaseID, "error", err)
			}
		}
		return r.caseURL(mode, c, terms)
	}
	return ""
}

func (r *Router) caseURL(mode domain.Mode, c domain.Case, terms []domain.Term) string {
	if mode.IsNative() {
		return "/" + r.opts.CaseBase + "/" + url.PathEscape(c.Slug) + "/"
	}
	category := Uncategorized
	for _, t := range terms {
		// A reserved slug would be read as search, paging or favorites.
		if t.Taxonomy == domain.TaxonomyCategory && !IsReserved(t.Slug) {
			category = t.Slug
			break
		}
	}
	return "/" + r.base + "/" + url.PathEscape(category) + "/" + url.PathEscape(c.Slug) + "/"
}

func (r *Router) termURL(mode domain.Mode, t domain.Term) string {
	if mode.IsVirtual() {
		return "/" + r.base + "/" + url.PathEscape(t.Slug) + "/"
	}
	prefix := r.opts.CategoryBase
	if t.Taxonomy == domain.TaxonomyProcedure {
		prefix = r.opts.ProcedureBase
	}
	return "/" + prefix + "/" + url.PathEscape(t.Slug) + "/"
}

func (r *Router) indexURL(mode domain.Mode, page int) string {
	if mode.IsNative() {
		return withPage("/"+r.opts.CaseBase+"/", page)
	}
	return withPage("/"+r.base+"/", page)
}

func (r *Router) searchURL(mode domain.Mode, term string, page int) string {
	if mode.IsNative() {
		return r.indexURL(mode, page) + "?s=" + url.QueryEscape(term)
	}
	return withPage("/"+r.base+"/"+segSearch+"/"+url.PathEscape(term)+"/", page)
}

// withPage appends page/{n}/ to an address ending in a slash.
func withPage(u string, page int) string {
	if page <= 1 {
		return u
	}
	return u + segPage + "/" + strconv.Itoa(page) + "/"
}
