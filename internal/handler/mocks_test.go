package handler_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/pkordes/case-gallery/internal/domain"
	"github.com/pkordes/case-gallery/internal/handler"
	"github.com/pkordes/case-gallery/internal/router"
	"github.com/pkordes/case-gallery/internal/view"
)

// ---- mock Gallery ----------------------------------------------------------

// mockGallery implements handler.Gallery. Nil funcs return zero values so
// each test sets only what it exercises.
type mockGallery struct {
	query      func(ctx context.Context, args domain.QueryArgs) domain.QueryResult
	getOne     func(ctx context.Context, idOrSlug string, opts domain.FormatOptions) (domain.CaseRecord, error)
	getTerm    func(ctx context.Context, id int64) (domain.TermRecord, error)
	related    func(ctx context.Context, id int64, limit int) []domain.CaseRecord
	featured   func(ctx context.Context, limit int) []domain.CaseRecord
	stats      func(ctx context.Context) (domain.Stats, error)
	clearCache func(ctx context.Context, key string) error
}

func (m *mockGallery) Query(ctx context.Context, args domain.QueryArgs) domain.QueryResult {
	if m.query == nil {
		return domain.EmptyResult()
	}
	return m.query(ctx, args)
}
func (m *mockGallery) GetOne(ctx context.Context, idOrSlug string, opts domain.FormatOptions) (domain.CaseRecord, error) {
	if m.getOne == nil {
		return domain.CaseRecord{}, domain.ErrNotFound
	}
	return m.getOne(ctx, idOrSlug, opts)
}
func (m *mockGallery) GetTerm(ctx context.Context, id int64) (domain.TermRecord, error) {
	if m.getTerm == nil {
		return domain.TermRecord{}, domain.ErrNotFound
	}
	return m.getTerm(ctx, id)
}
func (m *mockGallery) Related(ctx context.Context, id int64, limit int) []domain.CaseRecord {
	if m.related == nil {
		return []domain.CaseRecord{}
	}
	return m.related(ctx, id, limit)
}
func (m *mockGallery) Featured(ctx context.Context, limit int) []domain.CaseRecord {
	if m.featured == nil {
		return []domain.CaseRecord{}
	}
	return m.featured(ctx, limit)
}
func (m *mockGallery) Stats(ctx context.Context) (domain.Stats, error) {
	return m.stats(ctx)
}
func (m *mockGallery) ClearCache(ctx context.Context, key string) error {
	return m.clearCache(ctx, key)
}

// compile-time checks: the production types satisfy the consumer interfaces.
var (
	_ handler.Gallery   = (*mockGallery)(nil)
	_ handler.Addresser = (*router.Router)(nil)
	_ handler.Renderer  = (*view.Resolver)(nil)
)

// ---- router finders --------------------------------------------------------

type stubCases struct{}

func (stubCases) GetByID(_ context.Context, id int64) (domain.Case, error) {
	for _, c := range fixtureCases {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.Case{}, domain.ErrNotFound
}

func (stubCases) GetBySlug(_ context.Context, slug string, status domain.Status) (domain.Case, error) {
	for _, c := range fixtureCases {
		if c.Slug == slug && (status == domain.StatusAny || c.Status == status) {
			return c, nil
		}
	}
	return domain.Case{}, domain.ErrNotFound
}

type stubTerms struct{}

func (stubTerms) GetByID(_ context.Context, id int64) (domain.Term, error) {
	for _, t := range fixtureTerms {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.Term{}, domain.ErrNotFound
}

func (stubTerms) GetBySlug(_ context.Context, tax domain.Taxonomy, slug string) (domain.Term, error) {
	for _, t := range fixtureTerms {
		if t.Taxonomy == tax && t.Slug == slug {
			return t, nil
		}
	}
	return domain.Term{}, domain.ErrNotFound
}

func (stubTerms) ListByCase(_ context.Context, caseID int64) ([]domain.Term, error) {
	if caseID == caseRhino.ID {
		return []domain.Term{termFace, termRhino}, nil
	}
	return nil, nil
}

var (
	termFace     = domain.Term{ID: 1, Taxonomy: domain.TaxonomyCategory, Name: "Face", Slug: "face"}
	termRhino    = domain.Term{ID: 11, Taxonomy: domain.TaxonomyProcedure, Name: "Rhinoplasty", Slug: "rhinoplasty"}
	fixtureTerms = []domain.Term{termFace, termRhino}
	caseRhino    = domain.Case{ID: 100, Title: "Rhinoplasty 101", Slug: "rhino-101", Status: domain.StatusPublish}
	fixtureCases = []domain.Case{caseRhino}
)

// ---- helpers ---------------------------------------------------------------

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newHTTPHandler wires a Server over a real router and the bundled templates.
// testAdminToken guards the cache-clear route in handlers built by newHTTPHandler.
const testAdminToken = "test-admin-token"

func newHTTPHandler(t *testing.T, mode domain.Mode, gallery *mockGallery) http.Handler {
	t.Helper()
	return newHTTPHandlerWith(t, mode, gallery, handler.RouteConfig{
		CORSOrigins: []string{"http://localhost:5173"},
		AdminToken:  testAdminToken,
	})
}

func newHTTPHandlerWith(t *testing.T, mode domain.Mode, gallery *mockGallery, cfg handler.RouteConfig) http.Handler {
	t.Helper()
	log := discardLogger()
	rt := router.New(mode, "gallery", stubCases{}, stubTerms{}, router.Options{Logger: log})
	views := view.NewResolver(log, view.DefaultRoots("", "")...)
	srv := handler.NewServer(rt, views, gallery, log)
	return srv.Routes(cfg)
}

func record(id int64, title, url string) domain.CaseRecord {
	return domain.CaseRecord{ID: id, Title: title, Slug: title, URL: url, Status: domain.StatusPublish}
}
