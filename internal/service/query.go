// Package service contains the gallery query engine.
// It turns declarative query arguments into cached, formatted result sets.
// No SQL lives here; the engine depends on repo interfaces, not implementations.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/pkordes/case-gallery/internal/cache"
	"github.com/pkordes/case-gallery/internal/domain"
	"github.com/pkordes/case-gallery/internal/repo"
)

// Limits for the derived read models.
const (
	DefaultRelated  = 4
	MaxRelated      = 20
	DefaultFeatured = 6
	MaxFeatured     = 50

	DefaultCacheTTL = time.Hour
)

// Cache key prefixes. The cache backend adds its own namespace. Entries that
// hold formatted records carry the mode, since their URLs depend on it.
const (
	keyQuery   = "query:"
	keyRelated = "related:"
	keyStats   = "stats:"
)

// URLGenerator produces canonical addresses in the active mode.
// *router.Router satisfies it.
type URLGenerator interface {
	CaseURL(c domain.Case, terms []domain.Term) string
	TermURL(t domain.Term) string
	Mode() domain.Mode
}

// QueryOptions tunes a QueryEngine. Zero values take defaults.
type QueryOptions struct {
	TTL time.Duration
	Now func() time.Time
}

// QueryEngine answers gallery queries over the case and term stores.
type QueryEngine struct {
	cases repo.CaseReader
	terms repo.TermReader
	cache cache.Cache
	urls  URLGenerator
	log   *slog.Logger
	ttl   time.Duration
	now   func() time.Time
}

// NewQueryEngine constructs a QueryEngine.
func NewQueryEngine(
	cases repo.CaseReader,
	terms repo.TermReader,
	c cache.Cache,
	urls URLGenerator,
	logger *slog.Logger,
	opts QueryOptions,
) *QueryEngine {
	if opts.TTL <= 0 {
		opts.TTL = DefaultCacheTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryEngine{
		cases: cases,
		terms: terms,
		cache: c,
		urls:  urls,
		log:   logger,
		ttl:   opts.TTL,
		now:   opts.Now,
	}
}

// normalizedQuery is the canonical form of QueryArgs. Its JSON encoding is
// hashed into the cache key, so field order here fixes the key.
type normalizedQuery struct {
	Mode       domain.Mode         `json:"mode"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
	Status     domain.Status       `json:"status"`
	OrderBy    string              `json:"orderby"`
	Order      string              `json:"order"`
	Search     string              `json:"search,omitempty"`
	TaxQuery   []domain.TaxClause  `json:"tax_query,omitempty"`
	MetaQuery  []domain.MetaClause `json:"meta_query,omitempty"`
	AgeMin     *int                `json:"age_min,omitempty"`
	AgeMax     *int                `json:"age_max,omitempty"`
	Gender     string              `json:"gender,omitempty"`
	WithMeta   bool                `json:"with_meta,omitempty"`
	WithImages bool                `json:"with_images,omitempty"`
}

// normalize fills defaults, clamps ranges, and folds the category and
// procedure shortcuts into taxonomy clauses.
func (e *QueryEngine) normalize(ctx context.Context, args domain.QueryArgs) normalizedQuery {
	page := args.Page
	p := domain.NewPaginationParams(&page, args.PageSize)

	orderBy := args.OrderBy
	if _, ok := allowedOrder[orderBy]; !ok {
		orderBy = domain.OrderDate
	}
	order := domain.SortDesc
	if strings.EqualFold(args.Order, domain.SortAsc) {
		order = domain.SortAsc
	}

	q := normalizedQuery{
		Mode:       e.urls.Mode(),
		Page:       p.Page,
		PageSize:   p.Limit,
		Status:     domain.ParseStatus(string(args.Status)),
		OrderBy:    orderBy,
		Order:      order,
		Search:     strings.TrimSpace(args.Search),
		MetaQuery:  args.MetaQuery,
		Gender:     strings.TrimSpace(args.Gender),
		WithMeta:   args.WithMeta,
		WithImages: args.WithImages,
	}

	if c := termClause(domain.TaxonomyCategory, args.Category); c != nil {
		q.TaxQuery = append(q.TaxQuery, *c)
	}
	if c := termClause(domain.TaxonomyProcedure, args.Procedure); c != nil {
		q.TaxQuery = append(q.TaxQuery, *c)
	}
	q.TaxQuery = append(q.TaxQuery, args.TaxQuery...)

	if args.Age != "" {
		lo, hi, err := ParseAgeRange(args.Age)
		if err != nil {
			e.log.WarnContext(ctx, "ignoring age filter", "age", args.Age, "error", err)
		} else {
			q.AgeMin, q.AgeMax = &lo, &hi
		}
	}
	return q
}

var allowedOrder = map[string]struct{}{
	domain.OrderDate:      {},
	domain.OrderModified:  {},
	domain.OrderTitle:     {},
	domain.OrderMenuOrder: {},
	domain.OrderRandom:    {},
	domain.OrderID:        {},
}

// termClause turns a category or procedure shortcut (id or slug) into a
// taxonomy clause.
func termClause(tax domain.Taxonomy, v string) *domain.TaxClause {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	field := "slug"
	if _, err := strconv.ParseInt(v, 10, 64); err == nil {
		field = "id"
	}
	return &domain.TaxClause{Taxonomy: tax, Field: field, Terms: []string{v}, Operator: domain.TaxIn}
}

// ParseAgeRange reads "N" or an inclusive range "N-M". A reversed range is
// swapped.
func ParseAgeRange(s string) (lo, hi int, err error) {
	s = strings.TrimSpace(s)
	a, b, isRange := strings.Cut(s, "-")
	lo, err = strconv.Atoi(strings.TrimSpace(a))
	if err != nil || lo < 0 {
		return 0, 0, fmt.Errorf("%w: age %q", domain.ErrValidation, s)
	}
	if !isRange {
		return lo, lo, nil
	}
	hi, err = strconv.Atoi(strings.TrimSpace(b))
	if err != nil || hi < 0 {
		return 0, 0, fmt.Errorf("%w: age %q", domain.ErrValidation, s)
	}
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo, hi, nil
}

func (q normalizedQuery) filter() domain.CaseFilter {
	p := domain.PaginationParams{Page: q.Page, Limit: q.PageSize}
	return domain.CaseFilter{
		Status:      q.Status,
		Search:      q.Search,
		OrderBy:     q.OrderBy,
		Order:       q.Order,
		Limit:       p.Limit,
		Offset:      p.Offset(),
		TaxClauses:  q.TaxQuery,
		MetaClauses: q.MetaQuery,
		AgeMin:      q.AgeMin,
		AgeMax:      q.AgeMax,
		Gender:      q.Gender,
	}
}

func (q normalizedQuery) cacheKey() (string, error) {
	raw, err := json.Marshal(q)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return keyQuery + hex.EncodeToString(sum[:]), nil
}

// Query runs a gallery query. Failures of any kind, panics included, are
// logged and degrade to an empty result.
func (e *QueryEngine) Query(ctx context.Context, args domain.QueryArgs) (result domain.QueryResult) {
	defer func() {
		if p := recover(); p != nil {
			e.log.ErrorContext(ctx, "gallery query panicked", "panic", p)
			result = domain.EmptyResult()
		}
	}()

	out, err := e.query(ctx, args)
	if err != nil {
		e.log.ErrorContext(ctx, "gallery query failed", "error", err)
		return domain.EmptyResult()
	}
	return out
}

func (e *QueryEngine) query(ctx context.Context, args domain.QueryArgs) (domain.QueryResult, error) {
	q := e.normalize(ctx, args)

	key, err := q.cacheKey()
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("service.QueryEngine.Query: key: %w", err)
	}
	if !args.NoCache {
		if hit, ok := e.cacheGet(ctx, key); ok {
			return hit, nil
		}
	}

	f := q.filter()
	found, err := e.cases.Search(ctx, f)
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("service.QueryEngine.Query: %w", err)
	}
	total, err := e.cases.Count(ctx, f)
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("service.QueryEngine.Query: count: %w", err)
	}

	opts := domain.FormatOptions{WithMeta: q.WithMeta, WithImages: q.WithImages}
	items := make([]domain.CaseRecord, 0, len(found))
	for _, c := range found {
		items = append(items, e.Format(ctx, c, opts))
	}

	res := domain.QueryResult{
		Items:      items,
		Pagination: domain.NewPagination(domain.PaginationParams{Page: q.Page, Limit: q.PageSize}, int(total)),
	}
	if !args.NoCache {
		e.cacheSet(ctx, key, res)
	}
	return res, nil
}

func (e *QueryEngine) cacheGet(ctx context.Context, key string) (domain.QueryResult, bool) {
	res, ok, err := cache.GetJSON[domain.QueryResult](ctx, e.cache, key)
	if err != nil {
		e.log.WarnContext(ctx, "cache read failed", "key", key, "error", err)
		return domain.QueryResult{}, false
	}
	return res, ok
}

func (e *QueryEngine) cacheSet(ctx context.Context, key string, v any) {
	if err := cache.SetJSON(ctx, e.cache, key, v, e.ttl); err != nil {
		e.log.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
}

// GetOne returns a single formatted case. A numeric idOrSlug is looked up by
// id first, in any status; otherwise, or on a miss, it is looked up as a
// published slug.
func (e *QueryEngine) GetOne(ctx context.Context, idOrSlug string, opts domain.FormatOptions) (domain.CaseRecord, error) {
	idOrSlug = strings.TrimSpace(idOrSlug)
	if idOrSlug == "" {
		return domain.CaseRecord{}, fmt.Errorf("service.QueryEngine.GetOne: %w: empty id or slug", domain.ErrValidation)
	}

	var (
		c   domain.Case
		err = domain.ErrNotFound
	)
	if id, perr := strconv.ParseInt(idOrSlug, 10, 64); perr == nil {
		c, err = e.cases.GetByID(ctx, id)
	}
	if errors.Is(err, domain.ErrNotFound) {
		c, err = e.cases.GetBySlug(ctx, idOrSlug, domain.StatusPublish)
	}
	if err != nil {
		return domain.CaseRecord{}, fmt.Errorf("service.QueryEngine.GetOne: %w", err)
	}

	rec := e.Format(ctx, c, opts)
	if opts.WithRelated {
		rec.Related = e.Related(ctx, c.ID, DefaultRelated)
	}
	return rec, nil
}

// GetTerm returns a formatted term by id.
func (e *QueryEngine) GetTerm(ctx context.Context, id int64) (domain.TermRecord, error) {
	t, err := e.terms.GetByID(ctx, id)
	if err != nil {
		return domain.TermRecord{}, fmt.Errorf("service.QueryEngine.GetTerm: %w", err)
	}
	return e.termRecord(t), nil
}

// ClearCache deletes key, or every entry when key is empty. Clearing an
// already-empty cache is not an error.
func (e *QueryEngine) ClearCache(ctx context.Context, key string) error {
	if key == "" {
		if err := e.cache.Flush(ctx); err != nil {
			return fmt.Errorf("service.QueryEngine.ClearCache: %w", err)
		}
		return nil
	}
	if err := e.cache.Delete(ctx, key); err != nil {
		return fmt.Errorf("service.QueryEngine.ClearCache: %w", err)
	}
	return nil
}

// clamp returns def for non-positive v, else v capped at hi.
func clamp(v, def, hi int) int {
	if v <= 0 {
		return def
	}
	return min(v, hi)
}
