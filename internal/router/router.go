// Package router maps gallery addresses onto view descriptors and back.
//
// Two address shapes exist. Native addresses are the persisted permalinks
// (/cases/{slug}/, /case-category/{slug}/, /procedure/{slug}/). Virtual
// addresses are synthetic paths under a configurable base
// (/gallery/{category}/{case}/). The Router parses and generates both, and
// computes the permanent redirect that carries a link from the inactive
// shape to the active one.
package router

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkordes/case-gallery/internal/domain"
)

// CaseFinder is the read side of the case store the router needs.
type CaseFinder interface {
	GetByID(ctx context.Context, id int64) (domain.Case, error)
	GetBySlug(ctx context.Context, slug string, status domain.Status) (domain.Case, error)
}

// TermFinder is the read side of the term store the router needs.
type TermFinder interface {
	GetByID(ctx context.Context, id int64) (domain.Term, error)
	GetBySlug(ctx context.Context, tax domain.Taxonomy, slug string) (domain.Term, error)
	ListByCase(ctx context.Context, caseID int64) ([]domain.Term, error)
}

// Reserved first segments under the virtual base. A term can never be
// addressed virtually by one of these slugs.
const (
	segSearch    = "search"
	segPage      = "page"
	segFavorites = "myfavorites"
)

// Uncategorized is the category segment used for cases with no category.
const Uncategorized = "uncategorized"

// Options holds the native permalink bases and display strings.
type Options struct {
	CaseBase      string
	CategoryBase  string
	ProcedureBase string
	RootTitle     string
	Logger        *slog.Logger
}

// DefaultOptions returns the stock native permalink layout.
func DefaultOptions() Options {
	return Options{
		CaseBase:      "cases",
		CategoryBase:  "case-category",
		ProcedureBase: "procedure",
		RootTitle:     "Gallery",
	}
}

// Router parses and generates gallery addresses for one mode.
// It is safe for concurrent use; all state is fixed at construction.
type Router struct {
	mode  domain.ModeContext
	base  string
	cases CaseFinder
	terms TermFinder
	opts  Options
	log   *slog.Logger

	virtualRules []Rule
}

// New builds a Router. base is the virtual path segment ("gallery" when empty).
// Zero-valued fields in opts take their DefaultOptions value.
func New(mode domain.ModeContext, base string, cases CaseFinder, terms TermFinder, opts Options) *Router {
	def := DefaultOptions()
	if opts.CaseBase == "" {
		opts.CaseBase = def.CaseBase
	}
	if opts.CategoryBase == "" {
		opts.CategoryBase = def.CategoryBase
	}
	if opts.ProcedureBase == "" {
		opts.ProcedureBase = def.ProcedureBase
	}
	if opts.RootTitle == "" {
		opts.RootTitle = def.RootTitle
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	base = strings.Trim(base, "/")
	if base == "" {
		base = "gallery"
	}

	r := &Router{mode: mode, base: base, cases: cases, terms: terms, opts: opts, log: logger}
	r.virtualRules = virtualRules(base)
	return r
}

// Base returns the virtual base segment.
func (r *Router) Base() string { return r.base }

// Mode returns the mode the router was built for.
func (r *Router) Mode() domain.Mode { return domain.ModeOf(r.mode) }

// Rules returns the rules installed for the active mode in match order.
// Native mode installs only the favorites rule; native permalinks are
// resolved by ResolveNative.
func (r *Router) Rules() []Rule {
	if r.mode.IsNative() {
		return []Rule{favoritesRule(r.base)}
	}
	out := make([]Rule, len(r.virtualRules))
	copy(out, r.virtualRules)
	return out
}

// Prefixes returns the path prefixes the active mode serves pages under.
// Native mode keeps the virtual base for the favorites rule.
func (r *Router) Prefixes() []string {
	if r.mode.IsNative() {
		return []string{"/" + r.opts.CaseBase, "/" + r.opts.CategoryBase, "/" + r.opts.ProcedureBase, "/" + r.base}
	}
	return []string{"/" + r.base}
}

// Resolve matches target against the address shape of the active mode:
// native permalinks first in native mode, then the installed rules.
func (r *Router) Resolve(ctx context.Context, target string) (domain.ViewDescriptor, bool) {
	if r.mode.IsNative() {
		if d, ok := r.ResolveNative(ctx, target); ok {
			return d, true
		}
	}
	return r.Parse(ctx, target)
}

// Parse matches a virtual gallery path. It is a no-op in native mode except
// for the favorites rule, which both modes install. ok is false when no rule
// matched; a matched path whose slug does not resolve returns a descriptor
// with Resolved set to false.
func (r *Router) Parse(ctx context.Context, target string) (domain.ViewDescriptor, bool) {
	segs, _, ok := r.underBase(target)
	if !ok {
		return domain.ViewDescriptor{}, false
	}
	m, ok := matchRules(r.Rules(), segs)
	if !ok {
		return domain.ViewDescriptor{}, false
	}
	return r.resolveVirtual(ctx, m, segs), true
}

// resolveVirtual turns a rule match into a descriptor, looking up slugs.
func (r *Router) resolveVirtual(ctx context.Context, m ruleMatch, segs []string) domain.ViewDescriptor {
	d := domain.ViewDescriptor{
		Type:     m.view,
		Segments: segs,
		Page:     max(m.page, 1),
	}

	switch m.view {
	case domain.ViewIndex:
		d.Title = r.opts.RootTitle
		d.Resolved = true
	case domain.ViewFavorites:
		d.Title = "My Favorites"
		d.Resolved = true
	case domain.ViewSearch:
		d.SearchTerm = m.term
		d.Title = m.term
		d.Resolved = true
	case domain.ViewTaxonomy:
		d.TermSlug = m.slug
		if t, ok := r.termBySlug(ctx, m.slug); ok {
			fillTerm(&d, t)
		}
	case domain.ViewSingle:
		d.CaseSlug = m.caseSlug
		// The first segment is not checked against the case's categories.
		if c, ok := r.caseBySlug(ctx, m.caseSlug); ok {
			fillCase(&d, c)
		}
	}
	return d
}

// termBySlug resolves a one-segment slug. Category is tried before
// procedure, so a slug present in both taxonomies resolves to the category.
func (r *Router) termBySlug(ctx context.Context, slug string) (domain.Term, bool) {
	for _, tax := range []domain.Taxonomy{domain.TaxonomyCategory, domain.TaxonomyProcedure} {
		t, err := r.terms.GetBySlug(ctx, tax, slug)
		if err == nil {
			return t, true
		}
		r.logMiss(ctx, "term", slug, err)
	}
	return domain.Term{}, false
}

func (r *Router) caseBySlug(ctx context.Context, slug string) (domain.Case, bool) {
	c, err := r.cases.GetBySlug(ctx, slug, domain.StatusPublish)
	if err != nil {
		r.logMiss(ctx, "case", slug, err)
		return domain.Case{}, false
	}
	return c, true
}

// logMiss records lookup failures that are not plain misses.
func (r *Router) logMiss(ctx context.Context, what, slug string, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		return
	}
	r.log.WarnContext(ctx, "router lookup failed", "kind", what, "slug", slug, "error", err)
}

// ResolveNative matches a native permalink. ok is false when the path is not
// in the native address space at all.
func (r *Router) ResolveNative(ctx context.Context, target string) (domain.ViewDescriptor, bool) {
	segs, query := splitTarget(target)
	if len(segs) == 0 {
		return domain.ViewDescriptor{}, false
	}

	head, rest := segs[0], segs[1:]
	slug, page, ok := splitPaged(rest)
	if !ok {
		return domain.ViewDescriptor{}, false
	}

	d := domain.ViewDescriptor{Segments: segs, Page: page, Native: true}
	switch head {
	case r.opts.CaseBase:
		if slug == "" {
			if s := query.Get("s"); s != "" {
				d.Type = domain.ViewSearch
				d.SearchTerm = s
				d.Title = s
			} else {
				d.Type = domain.ViewIndex
				d.Title = r.opts.RootTitle
			}
			d.Resolved = true
			return d, true
		}
		if page > 1 {
			return domain.ViewDescriptor{}, false
		}
		d.Type = domain.ViewSingle
		d.CaseSlug = slug
		if c, ok := r.caseBySlug(ctx, slug); ok {
			fillCase(&d, c)
		}
		return d, true

	case r.opts.CategoryBase, r.opts.ProcedureBase:
		if slug == "" {
			return domain.ViewDescriptor{}, false
		}
		tax := domain.TaxonomyCategory
		if head == r.opts.ProcedureBase {
			tax = domain.TaxonomyProcedure
		}
		d.Type = domain.ViewTaxonomy
		d.TermSlug = slug
		d.Taxonomy = tax
		t, err := r.terms.GetBySlug(ctx, tax, slug)
		if err != nil {
			r.logMiss(ctx, "term", slug, err)
			return d, true
		}
		fillTerm(&d, t)
		return d, true
	}
	return domain.ViewDescriptor{}, false
}

func fillTerm(d *domain.ViewDescriptor, t domain.Term) {
	d.TermID = t.ID
	d.TermSlug = t.Slug
	d.Taxonomy = t.Taxonomy
	d.Title = t.Name
	d.Resolved = true
}

func fillCase(d *domain.ViewDescriptor, c domain.Case) {
	d.CaseID = c.ID
	d.CaseSlug = c.Slug
	d.Title = c.Title
	d.Resolved = true
}

// underBase splits target and strips the virtual base. ok is false when the
// path is outside the base.
func (r *Router) underBase(target string) ([]string, url.Values, bool) {
	segs, query := splitTarget(target)
	if len(segs) == 0 || segs[0] != r.base {
		return nil, nil, false
	}
	return segs[1:], query, true
}

// splitTarget splits a request target into unescaped path segments and its
// query string. Empty segments are dropped.
func splitTarget(target string) ([]string, url.Values) {
	path, rawQuery, _ := strings.Cut(target, "?")
	query, _ := url.ParseQuery(rawQuery)

	var segs []string
	for _, s := range strings.Split(path, "/") {
		if s == "" {
			continue
		}
		if u, err := url.PathUnescape(s); err == nil {
			s = u
		}
		segs = append(segs, s)
	}
	return segs, query
}

// splitPaged reads an optional slug followed by an optional page/{n} suffix.
func splitPaged(segs []string) (slug string, page int, ok bool) {
	page = 1
	switch len(segs) {
	case 0:
		return "", page, true
	case 1:
		if segs[0] == segPage {
			return "", 0, false
		}
		return segs[0], page, true
	case 2:
		if segs[0] != segPage {
			return "", 0, false
		}
		n, ok := parsePage(segs[1])
		return "", n, ok
	case 3:
		if segs[1] != segPage {
			return "", 0, false
		}
		n, ok := parsePage(segs[2])
		return segs[0], n, ok
	}
	return "", 0, false
}

// parsePage reads a page number. Non-numeric input does not match; zero
// becomes page 1.
func parsePage(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return max(n, 1), true
}
