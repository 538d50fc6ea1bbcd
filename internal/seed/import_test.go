package seed_test

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/case-gallery/internal/domain"
	"github.com/pkordes/case-gallery/internal/repo"
	"github.com/pkordes/case-gallery/internal/seed"
	"github.com/pkordes/case-gallery/testutil"
)

// TestImportDir is an integration test. The import runs inside an outer
// transaction (its own Begin becomes a savepoint) that is rolled back, so
// the shared database is left untouched.
func TestImportDir(t *testing.T) {
	tx := testutil.GalleryTx(t)
	ctx := context.Background()

	fsys := fstest.MapFS{
		"rhino.md": {Data: []byte(yamlCase)},
		"chin.md":  {Data: []byte(tomlCase)},
	}

	res, err := seed.ImportDir(ctx, tx, fsys, nil)

	require.NoError(t, err)
	assert.Equal(t, 2, res.Cases)

	cases, terms := repo.NewCaseRepo(tx), repo.NewTermRepo(tx)
	c, err := cases.GetBySlug(ctx, "rhinoplasty-101", domain.StatusPublish)
	require.NoError(t, err)
	require.NotNil(t, c.FeaturedImageID)

	images, err := cases.ListImages(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, images, 2)

	tummy, err := terms.GetBySlug(ctx, domain.TaxonomyCategory, "tummy")
	require.NoError(t, err)
	assert.Equal(t, 1, tummy.Count)
	require.NotNil(t, tummy.ParentID)

	// Re-importing is idempotent by slug.
	_, err = seed.ImportDir(ctx, tx, fsys, nil)
	require.NoError(t, err)
	again, err := cases.GetBySlug(ctx, "rhinoplasty-101", domain.StatusAny)
	require.NoError(t, err)
	assert.Equal(t, c.ID, again.ID)
}
