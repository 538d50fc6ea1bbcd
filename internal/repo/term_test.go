package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/case-gallery/internal/domain"
)

func TestTermRepo_Upsert_ScopedByTaxonomy(t *testing.T) {
	_, terms := newTestRepos(t)

	cat := mustUpsertTerm(t, terms, domain.TaxonomyCategory, "shared-slug")
	proc := mustUpsertTerm(t, terms, domain.TaxonomyProcedure, "shared-slug")

	assert.NotEqual(t, cat.ID, proc.ID, "the same slug may exist once per taxonomy")
}

func TestTermRepo_GetBySlug_NotFound(t *testing.T) {
	_, terms := newTestRepos(t)

	_, err := terms.GetBySlug(context.Background(), domain.TaxonomyCategory, "zzz-no-match")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTermRepo_ParentChain(t *testing.T) {
	_, terms := newTestRepos(t)
	ctx := context.Background()

	parent := mustUpsertTerm(t, terms, domain.TaxonomyCategory, "body-test")
	child, err := terms.Upsert(ctx, domain.Term{
		Taxonomy: domain.TaxonomyCategory, Name: "Tummy", Slug: "tummy-test", ParentID: &parent.ID,
	})
	require.NoError(t, err)

	got, err := terms.GetByID(ctx, child.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, parent.ID, *got.ParentID)
}

func TestTermRepo_ListByCase_KeepsPosition(t *testing.T) {
	cases, terms := newTestRepos(t)
	ctx := context.Background()

	c := mustUpsertCase(t, cases, caseFixture("positioned"))
	second := mustUpsertTerm(t, terms, domain.TaxonomyCategory, "second-test")
	first := mustUpsertTerm(t, terms, domain.TaxonomyCategory, "first-test")
	require.NoError(t, cases.SetTerms(ctx, c.ID, []int64{first.ID, second.ID}))

	got, err := terms.ListByCase(ctx, c.ID)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first-test", got[0].Slug)
}

func TestTermRepo_RefreshCountsAndMostPopulous(t *testing.T) {
	cases, terms := newTestRepos(t)
	ctx := context.Background()

	popular := mustUpsertTerm(t, terms, domain.TaxonomyProcedure, "popular-test")
	a := mustUpsertCase(t, cases, caseFixture("pop-a"))
	b := mustUpsertCase(t, cases, caseFixture("pop-b"))
	require.NoError(t, cases.SetTerms(ctx, a.ID, []int64{popular.ID}))
	require.NoError(t, cases.SetTerms(ctx, b.ID, []int64{popular.ID}))

	require.NoError(t, terms.RefreshCounts(ctx))

	got, err := terms.GetByID(ctx, popular.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Count)

	top, err := terms.MostPopulous(ctx, domain.TaxonomyProcedure)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, top.Count, 2)
}
