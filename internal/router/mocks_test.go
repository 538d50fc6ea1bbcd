package router_test

import (
	"context"

	"github.com/pkordes/case-gallery/internal/domain"
	"github.com/pkordes/case-gallery/internal/router"
)

// ---- mock finders ----------------------------------------------------------

type mockCases struct {
	getByID   func(ctx context.Context, id int64) (domain.Case, error)
	getBySlug func(ctx context.Context, slug string, status domain.Status) (domain.Case, error)
}

func (m *mockCases) GetByID(ctx context.Context, id int64) (domain.Case, error) {
	return m.getByID(ctx, id)
}
func (m *mockCases) GetBySlug(ctx context.Context, slug string, status domain.Status) (domain.Case, error) {
	return m.getBySlug(ctx, slug, status)
}

type mockTerms struct {
	getByID    func(ctx context.Context, id int64) (domain.Term, error)
	getBySlug  func(ctx context.Context, tax domain.Taxonomy, slug string) (domain.Term, error)
	listByCase func(ctx context.Context, caseID int64) ([]domain.Term, error)
}

func (m *mockTerms) GetByID(ctx context.Context, id int64) (domain.Term, error) {
	return m.getByID(ctx, id)
}
func (m *mockTerms) GetBySlug(ctx context.Context, tax domain.Taxonomy, slug string) (domain.Term, error) {
	return m.getBySlug(ctx, tax, slug)
}
func (m *mockTerms) ListByCase(ctx context.Context, caseID int64) ([]domain.Term, error) {
	return m.listByCase(ctx, caseID)
}

// compile-time checks
var (
	_ router.CaseFinder = (*mockCases)(nil)
	_ router.TermFinder = (*mockTerms)(nil)
)

// ---- fixture store ---------------------------------------------------------

func ptr[T any](v T) *T { return &v }

// Category tree: body > tummy. "lift" exists in both taxonomies.
var (
	termFace   = domain.Term{ID: 1, Taxonomy: domain.TaxonomyCategory, Name: "Face", Slug: "face"}
	termBody   = domain.Term{ID: 2, Taxonomy: domain.TaxonomyCategory, Name: "Body", Slug: "body"}
	termTummy  = domain.Term{ID: 3, Taxonomy: domain.TaxonomyCategory, Name: "Tummy", Slug: "tummy", ParentID: ptr(int64(2))}
	termLiftC  = domain.Term{ID: 4, Taxonomy: domain.TaxonomyCategory, Name: "Lift", Slug: "lift"}
	termLiftP  = domain.Term{ID: 10, Taxonomy: domain.TaxonomyProcedure, Name: "Lift", Slug: "lift"}
	termRhino  = domain.Term{ID: 11, Taxonomy: domain.TaxonomyProcedure, Name: "Rhinoplasty", Slug: "rhinoplasty"}
	termSearch = domain.Term{ID: 5, Taxonomy: domain.TaxonomyCategory, Name: "Search", Slug: "search"}
	termPage   = domain.Term{ID: 6, Taxonomy: domain.TaxonomyCategory, Name: "Page", Slug: "page"}
	termFavs   = domain.Term{ID: 7, Taxonomy: domain.TaxonomyCategory, Name: "My Favorites", Slug: "myfavorites"}
	allTerms   = []domain.Term{termFace, termBody, termTummy, termLiftC, termSearch, termPage, termFavs, termLiftP, termRhino}
	caseRhino  = domain.Case{ID: 100, Title: "Rhinoplasty 101", Slug: "rhino-101", Status: domain.StatusPublish}
	caseLoner  = domain.Case{ID: 101, Title: "Loner", Slug: "loner", Status: domain.StatusPublish}
	caseTummy  = domain.Case{ID: 102, Title: "Tummy Tuck", Slug: "tummy-case", Status: domain.StatusPublish}
	caseDraft  = domain.Case{ID: 103, Title: "Draft", Slug: "draft-case", Status: domain.StatusDraft}
	caseSearch = domain.Case{ID: 104, Title: "Searchable", Slug: "searchable", Status: domain.StatusPublish}
	casePaged  = domain.Case{ID: 105, Title: "Paged", Slug: "paged", Status: domain.StatusPublish}
	caseFav    = domain.Case{ID: 106, Title: "Favourite", Slug: "favourite", Status: domain.StatusPublish}
	allCases   = []domain.Case{caseRhino, caseLoner, caseTummy, caseDraft, caseSearch, casePaged, caseFav}
	caseTermsM = map[int64][]domain.Term{
		100: {termFace, termRhino},
		102: {termTummy},
		104: {termSearch, termFace},
		105: {termPage, termRhino},
		106: {termFavs},
	}
)

func fixtureFinders() (*mockCases, *mockTerms) {
	cases := &mockCases{
		getByID: func(_ context.Context, id int64) (domain.Case, error) {
			for _, c := range allCases {
				if c.ID == id {
					return c, nil
				}
			}
			return domain.Case{}, domain.ErrNotFound
		},
		getBySlug: func(_ context.Context, slug string, status domain.Status) (domain.Case, error) {
			for _, c := range allCases {
				if c.Slug == slug && (status == domain.StatusAny || c.Status == status) {
					return c, nil
				}
			}
			return domain.Case{}, domain.ErrNotFound
		},
	}
	terms := &mockTerms{
		getByID: func(_ context.Context, id int64) (domain.Term, error) {
			for _, t := range allTerms {
				if t.ID == id {
					return t, nil
				}
			}
			return domain.Term{}, domain.ErrNotFound
		},
		getBySlug: func(_ context.Context, tax domain.Taxonomy, slug string) (domain.Term, error) {
			for _, t := range allTerms {
				if t.Taxonomy == tax && t.Slug == slug {
					return t, nil
				}
			}
			return domain.Term{}, domain.ErrNotFound
		},
		listByCase: func(_ context.Context, caseID int64) ([]domain.Term, error) {
			return caseTermsM[caseID], nil
		},
	}
	return cases, terms
}

func newRouter(mode domain.Mode) *router.Router {
	cases, terms := fixtureFinders()
	return router.New(mode, "gallery", cases, terms, router.Options{})
}
