package router

import (
	"context"

	"github.com/pkordes/case-gallery/internal/domain"
)

// RedirectIfCrossMode returns the active-mode address for a request that used
// the inactive mode's address shape. In native mode a virtual path under the
// base is resolved and mapped to its permalink; in virtual mode a native
// permalink is mapped to its virtual path. ok is false when the path belongs
// to the active mode, when nothing resolves, or when the target equals the
// request path. Callers should answer with 301.
func (r *Router) RedirectIfCrossMode(ctx context.Context, target string) (string, bool) {
	var (
		desc domain.ViewDescriptor
		to   domain.Mode
	)

	if r.mode.IsNative() {
		segs, query, ok := r.underBase(target)
		if !ok {
			return "", false
		}
		m, ok := matchRules(r.virtualRules, segs)
		if !ok || m.view == domain.ViewFavorites {
			return "", false
		}
		desc = r.resolveVirtual(ctx, m, segs)
		to = domain.ModeNative
		// /gallery/?s=term keeps working as a search after the switch.
		if desc.Type == domain.ViewIndex && query.Get("s") != "" {
			desc.Type = domain.ViewSearch
			desc.SearchTerm = query.Get("s")
		}
	} else {
		var ok bool
		desc, ok = r.ResolveNative(ctx, target)
		if !ok {
			return "", false
		}
		to = domain.ModeVirtual
	}

	if !desc.Resolved {
		return "", false
	}
	dest := r.viewURL(ctx, to, desc, desc.Page)
	if dest == "" || dest == target {
		return "", false
	}
	// A procedure whose slug is also a category slug has no virtual address
	// of its own; the virtual path would land on the category.
	if to.IsVirtual() && desc.Type == domain.ViewTaxonomy {
		back, ok := r.Parse(ctx, dest)
		if !ok || back.Taxonomy != desc.Taxonomy || back.TermID != desc.TermID {
			return "", false
		}
	}
	return dest, true
}
