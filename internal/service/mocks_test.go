package service_test

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/case-gallery/internal/domain"
	"github.com/pkordes/case-gallery/internal/repo"
	"github.com/pkordes/case-gallery/internal/service"
)

// ---- mock CaseReader -------------------------------------------------------

type mockCaseReader struct {
	getByID       func(ctx context.Context, id int64) (domain.Case, error)
	getBySlug     func(ctx context.Context, slug string, status domain.Status) (domain.Case, error)
	search        func(ctx context.Context, f domain.CaseFilter) ([]domain.Case, error)
	count         func(ctx context.Context, f domain.CaseFilter) (int64, error)
	listImages    func(ctx context.Context, caseID int64) ([]domain.CaseImage, error)
	getAttachment func(ctx context.Context, id uuid.UUID) (domain.Attachment, error)
}

func (m *mockCaseReader) GetByID(ctx context.Context, id int64) (domain.Case, error) {
	return m.getByID(ctx, id)
}
func (m *mockCaseReader) GetBySlug(ctx context.Context, slug string, status domain.Status) (domain.Case, error) {
	return m.getBySlug(ctx, slug, status)
}
func (m *mockCaseReader) Search(ctx context.Context, f domain.CaseFilter) ([]domain.Case, error) {
	return m.search(ctx, f)
}
func (m *mockCaseReader) Count(ctx context.Context, f domain.CaseFilter) (int64, error) {
	if m.count == nil {
		return 0, nil
	}
	return m.count(ctx, f)
}
func (m *mockCaseReader) ListImages(ctx context.Context, caseID int64) ([]domain.CaseImage, error) {
	if m.listImages == nil {
		return nil, nil
	}
	return m.listImages(ctx, caseID)
}
func (m *mockCaseReader) GetAttachment(ctx context.Context, id uuid.UUID) (domain.Attachment, error) {
	return m.getAttachment(ctx, id)
}

// ---- mock TermReader -------------------------------------------------------

type mockTermReader struct {
	getByID      func(ctx context.Context, id int64) (domain.Term, error)
	getBySlug    func(ctx context.Context, tax domain.Taxonomy, slug string) (domain.Term, error)
	listByCase   func(ctx context.Context, caseID int64) ([]domain.Term, error)
	count        func(ctx context.Context, tax domain.Taxonomy) (int64, error)
	mostPopulous func(ctx context.Context, tax domain.Taxonomy) (domain.Term, error)
}

func (m *mockTermReader) GetByID(ctx context.Context, id int64) (domain.Term, error) {
	return m.getByID(ctx, id)
}
func (m *mockTermReader) GetBySlug(ctx context.Context, tax domain.Taxonomy, slug string) (domain.Term, error) {
	return m.getBySlug(ctx, tax, slug)
}
func (m *mockTermReader) ListByCase(ctx context.Context, caseID int64) ([]domain.Term, error) {
	if m.listByCase == nil {
		return nil, nil
	}
	return m.listByCase(ctx, caseID)
}
func (m *mockTermReader) Count(ctx context.Context, tax domain.Taxonomy) (int64, error) {
	return m.count(ctx, tax)
}
func (m *mockTermReader) MostPopulous(ctx context.Context, tax domain.Taxonomy) (domain.Term, error) {
	return m.mostPopulous(ctx, tax)
}

// compile-time checks
var (
	_ repo.CaseReader = (*mockCaseReader)(nil)
	_ repo.TermReader = (*mockTermReader)(nil)
)

// ---- URL generator ---------------------------------------------------------

// stubURLs builds virtual-looking addresses without a router.
type stubURLs struct{}

func (stubURLs) CaseURL(c domain.Case, _ []domain.Term) string { return "/gallery/x/" + c.Slug + "/" }
func (stubURLs) TermURL(t domain.Term) string                  { return "/gallery/" + t.Slug + "/" }
func (stubURLs) Mode() domain.Mode                             { return domain.ModeVirtual }

// nativeURLs builds native permalinks.
type nativeURLs struct{}

func (nativeURLs) CaseURL(c domain.Case, _ []domain.Term) string { return "/cases/" + c.Slug + "/" }
func (nativeURLs) TermURL(t domain.Term) string                  { return "/case-category/" + t.Slug + "/" }
func (nativeURLs) Mode() domain.Mode                             { return domain.ModeNative }

// compile-time checks
var (
	_ service.URLGenerator = stubURLs{}
	_ service.URLGenerator = nativeURLs{}
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
