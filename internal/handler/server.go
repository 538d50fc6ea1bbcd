// Package handler implements the HTTP surface of the case gallery: the
// server-rendered gallery pages and the JSON API under /api.
// All handlers are methods on Server so they share its dependencies; the
// methods are split into files by concern (pages.go, api.go, health.go).
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pkordes/case-gallery/internal/domain"
	"github.com/pkordes/case-gallery/internal/middleware"
	"github.com/pkordes/case-gallery/internal/view"
)

// maxBodyBytes bounds request bodies on the API. Only cache control accepts
// a body, and it is tiny.
const maxBodyBytes = 64 << 10

// Addresser is the URL router the handlers depend on. Defining the interface
// here, in the consumer package, lets tests swap implementations.
// *router.Router satisfies it.
type Addresser interface {
	Resolve(ctx context.Context, target string) (domain.ViewDescriptor, bool)
	RedirectIfCrossMode(ctx context.Context, target string) (string, bool)
	Prefixes() []string
	Breadcrumbs(ctx context.Context, desc domain.ViewDescriptor) []domain.Breadcrumb
	ViewURL(ctx context.Context, desc domain.ViewDescriptor, page int) string
	IndexURL(page int) string
	GenerateURL(ctx context.Context, id int64, kind domain.Kind, mode domain.Mode) (string, error)
	Base() string
	Mode() domain.Mode
}

// Renderer locates and renders templates. *view.Resolver satisfies it.
type Renderer interface {
	SelectForContent(desc domain.ViewDescriptor, mode domain.ModeContext) (view.Location, bool)
	Locate(names ...string) (view.Location, bool)
	Render(loc view.Location, vars map[string]any) (string, error)
	RenderPartial(name string, data any) (string, error)
}

// Gallery is the query engine. *service.QueryEngine satisfies it.
type Gallery interface {
	Query(ctx context.Context, args domain.QueryArgs) domain.QueryResult
	GetOne(ctx context.Context, idOrSlug string, opts domain.FormatOptions) (domain.CaseRecord, error)
	GetTerm(ctx context.Context, id int64) (domain.TermRecord, error)
	Related(ctx context.Context, id int64, limit int) []domain.CaseRecord
	Featured(ctx context.Context, limit int) []domain.CaseRecord
	Stats(ctx context.Context) (domain.Stats, error)
	ClearCache(ctx context.Context, key string) error
}

// Server holds the dependencies shared by every handler.
type Server struct {
	router  Addresser
	views   Renderer
	gallery Gallery
	log     *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(router Addresser, views Renderer, gallery Gallery, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{router: router, views: views, gallery: gallery, log: logger}
}

// RouteConfig holds the HTTP-level settings of Routes.
type RouteConfig struct {
	// CORSOrigins applies to /api only.
	CORSOrigins []string
	// AdminToken guards POST /api/cache/clear. Empty leaves the route
	// unmounted; the cache can still be cleared with galleryctl.
	AdminToken string
}

// Routes builds the chi router for the whole surface. Cross-mode redirects
// run before routing so addresses of the inactive mode never reach a
// handler.
func (s *Server) Routes(cfg RouteConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.GetHead)
	r.Use(middleware.NewCrossModeRedirect(s.router))
	r.NotFound(s.notFound)

	r.Get("/healthz", s.getHealth)
	r.Get("/openapi.yaml", s.getOpenAPI)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
		r.Use(middleware.NewMaxBodySizeHandler(maxBodyBytes))

		r.Get("/cases", s.listCases)
		r.Get("/cases/featured", s.featuredCases)
		r.Get("/cases/{idOrSlug}", s.getCase)
		r.Get("/cases/{idOrSlug}/related", s.relatedCases)
		r.Get("/cases/{idOrSlug}/fragment", s.caseFragment)
		r.Get("/stats", s.getStats)
		r.Get("/url", s.generateURL)
		if cfg.AdminToken != "" {
			r.With(middleware.NewBearerAuth(cfg.AdminToken)).Post("/cache/clear", s.clearCache)
		}
	})

	for _, prefix := range s.router.Prefixes() {
		r.Get(prefix, s.page)
		r.Get(prefix+"/*", s.page)
	}
	return r
}
