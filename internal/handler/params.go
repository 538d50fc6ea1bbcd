package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/case-gallery/internal/domain"
)

// Parameter sets of the /api operations described in spec/openapi.yaml.
// Values are bound with the oapi-codegen runtime the same way generated
// server wrappers bind them: form style, exploded, for query parameters and
// simple style for path parameters.

// ListCasesParams defines parameters for GET /api/cases.
type ListCasesParams struct {
	Page      *int    `form:"page,omitempty" json:"page,omitempty"`
	PageSize  *int    `form:"page_size,omitempty" json:"page_size,omitempty"`
	Status    *string `form:"status,omitempty" json:"status,omitempty"`
	Orderby   *string `form:"orderby,omitempty" json:"orderby,omitempty"`
	Order     *string `form:"order,omitempty" json:"order,omitempty"`
	Search    *string `form:"search,omitempty" json:"search,omitempty"`
	S         *string `form:"s,omitempty" json:"s,omitempty"`
	Category  *string `form:"category,omitempty" json:"category,omitempty"`
	Procedure *string `form:"procedure,omitempty" json:"procedure,omitempty"`
	Age       *string `form:"age,omitempty" json:"age,omitempty"`
	Gender    *string `form:"gender,omitempty" json:"gender,omitempty"`
	Meta      *bool   `form:"meta,omitempty" json:"meta,omitempty"`
	Images    *bool   `form:"images,omitempty" json:"images,omitempty"`
	Cache     *bool   `form:"cache,omitempty" json:"cache,omitempty"`
	MetaQuery *string `form:"meta_query,omitempty" json:"meta_query,omitempty"`
	TaxQuery  *string `form:"tax_query,omitempty" json:"tax_query,omitempty"`
}

// LimitParams defines parameters for GET /api/cases/featured and
// GET /api/cases/{idOrSlug}/related.
type LimitParams struct {
	Limit *int `form:"limit,omitempty" json:"limit,omitempty"`
}

// GetCaseParams defines parameters for GET /api/cases/{idOrSlug}.
type GetCaseParams struct {
	Related *bool `form:"related,omitempty" json:"related,omitempty"`
	Meta    *bool `form:"meta,omitempty" json:"meta,omitempty"`
	Images  *bool `form:"images,omitempty" json:"images,omitempty"`
}

// GenerateURLParams defines parameters for GET /api/url.
type GenerateURLParams struct {
	Id   int64   `form:"id" json:"id"`
	Kind string  `form:"kind" json:"kind"`
	Mode *string `form:"mode,omitempty" json:"mode,omitempty"`
}

// ClearCacheParams defines parameters for POST /api/cache/clear.
type ClearCacheParams struct {
	Key *string `form:"key,omitempty" json:"key,omitempty"`
}

// invalidParam reports a parameter that failed to bind as a validation error.
func invalidParam(name string, err error) error {
	return fmt.Errorf("%w: invalid format for parameter %s: %v", domain.ErrValidation, name, err)
}

// queryBinder binds query parameters one at a time and keeps the first error.
type queryBinder struct {
	q   url.Values
	err error
}

func (b *queryBinder) bind(name string, required bool, dest any) {
	if b.err != nil {
		return
	}
	if err := runtime.BindQueryParameter("form", true, required, name, b.q, dest); err != nil {
		b.err = invalidParam(name, err)
	}
}

func bindListCasesParams(r *http.Request) (ListCasesParams, error) {
	var p ListCasesParams
	b := queryBinder{q: r.URL.Query()}
	b.bind("page", false, &p.Page)
	b.bind("page_size", false, &p.PageSize)
	b.bind("status", false, &p.Status)
	b.bind("orderby", false, &p.Orderby)
	b.bind("order", false, &p.Order)
	b.bind("search", false, &p.Search)
	b.bind("s", false, &p.S)
	b.bind("category", false, &p.Category)
	b.bind("procedure", false, &p.Procedure)
	b.bind("age", false, &p.Age)
	b.bind("gender", false, &p.Gender)
	b.bind("meta", false, &p.Meta)
	b.bind("images", false, &p.Images)
	b.bind("cache", false, &p.Cache)
	b.bind("meta_query", false, &p.MetaQuery)
	b.bind("tax_query", false, &p.TaxQuery)
	return p, b.err
}

func bindLimitParams(r *http.Request) (LimitParams, error) {
	var p LimitParams
	b := queryBinder{q: r.URL.Query()}
	b.bind("limit", false, &p.Limit)
	return p, b.err
}

func bindGetCaseParams(r *http.Request) (GetCaseParams, error) {
	var p GetCaseParams
	b := queryBinder{q: r.URL.Query()}
	b.bind("related", false, &p.Related)
	b.bind("meta", false, &p.Meta)
	b.bind("images", false, &p.Images)
	return p, b.err
}

func bindGenerateURLParams(r *http.Request) (GenerateURLParams, error) {
	var p GenerateURLParams
	b := queryBinder{q: r.URL.Query()}
	b.bind("id", true, &p.Id)
	b.bind("kind", true, &p.Kind)
	b.bind("mode", false, &p.Mode)
	return p, b.err
}

func bindClearCacheParams(r *http.Request) (ClearCacheParams, error) {
	var p ClearCacheParams
	b := queryBinder{q: r.URL.Query()}
	b.bind("key", false, &p.Key)
	return p, b.err
}

// bindPathParam binds the chi path parameter name into dest.
func bindPathParam(r *http.Request, name string, dest any) error {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return invalidParam(name, err)
	}
	return nil
}

// QueryArgs converts the bound parameters into engine arguments. Range
// checks are left to the query engine.
func (p ListCasesParams) QueryArgs() (domain.QueryArgs, error) {
	args := domain.QueryArgs{
		Page:       deref(p.Page),
		PageSize:   p.PageSize,
		Status:     domain.Status(deref(p.Status)),
		OrderBy:    deref(p.Orderby),
		Order:      deref(p.Order),
		Search:     firstNonEmpty(deref(p.Search), deref(p.S)),
		Category:   deref(p.Category),
		Procedure:  deref(p.Procedure),
		Age:        deref(p.Age),
		Gender:     deref(p.Gender),
		WithMeta:   deref(p.Meta),
		WithImages: deref(p.Images),
		NoCache:    p.Cache != nil && !*p.Cache,
	}
	if raw := deref(p.MetaQuery); raw != "" {
		if err := json.Unmarshal([]byte(raw), &args.MetaQuery); err != nil {
			return domain.QueryArgs{}, fmt.Errorf("%w: meta_query: %v", domain.ErrValidation, err)
		}
	}
	if raw := deref(p.TaxQuery); raw != "" {
		if err := json.Unmarshal([]byte(raw), &args.TaxQuery); err != nil {
			return domain.QueryArgs{}, fmt.Errorf("%w: tax_query: %v", domain.ErrValidation, err)
		}
	}
	return args, nil
}

// FormatOptions converts the bound flags into format options.
func (p GetCaseParams) FormatOptions() domain.FormatOptions {
	return domain.FormatOptions{
		WithMeta:    deref(p.Meta),
		WithImages:  deref(p.Images),
		WithRelated: deref(p.Related),
	}
}

// deref returns *v, or the zero value for nil.
func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
