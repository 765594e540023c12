package catalog_test

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stevenktruong/graph-expansion/gexp"
	"github.com/stevenktruong/graph-expansion/libgexp"
	"github.com/stevenktruong/graph-expansion/libgexp/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	plus  = gexp.Plus
	minus = gexp.Minus
)

func orderZeroTerm(i int) *libgexp.Graph {
	return libgexp.MustGraph(libgexp.NewTrace(libgexp.M(plus), libgexp.E(gexp.A(i))))
}

// orderOneTerm is a closed G-loop: no traces left, one power of N^{-1}.
func orderOneTerm(b int) *libgexp.Graph {
	bi := gexp.B(b)
	return libgexp.MustGraph(
		libgexp.Theta(minus, plus, gexp.A(2), bi),
		libgexp.CalM(plus, minus, gexp.A(1), bi),
	)
}

func collectTex(cat gexp.Catalog, sel gexp.TermSelector) []string {
	var out []string
	for _, X := range gexp.SelectFromCatalog(cat, sel).Collect() {
		out = append(out, X.Tex())
	}
	return out
}

// runCatalogContract checks the behavior every Catalog implementation shares.
func runCatalogContract(t *testing.T, cat gexp.Catalog) {
	t.Helper()

	assert.False(t, cat.IsReadOnly())
	assert.Equal(t, "g-loop-2", cat.Seed())
	assert.EqualValues(t, 0, cat.NumTerms())

	added, err := cat.TryAddTerm(orderZeroTerm(1))
	require.NoError(t, err)
	assert.True(t, added)

	added, err = cat.TryAddTerm(orderZeroTerm(1))
	require.NoError(t, err)
	assert.False(t, added, "same term twice")

	added, err = cat.TryAddTerm(orderZeroTerm(2))
	require.NoError(t, err)
	assert.True(t, added)

	added, err = cat.TryAddTerm(orderOneTerm(3))
	require.NoError(t, err)
	assert.True(t, added)

	added, err = cat.TryAddTerm(orderOneTerm(7))
	require.NoError(t, err)
	assert.False(t, added, "renamed internal index encodes the same")

	assert.EqualValues(t, 3, cat.NumTerms())

	all := collectTex(cat, gexp.DefaultTermSelector)
	assert.Len(t, all, 3)

	orderOne := collectTex(cat, gexp.TermSelector{MinOrder: 1})
	require.Len(t, orderOne, 1)
	assert.Equal(t, libgexp.Canonical(orderOneTerm(3)).Tex(), orderOne[0])

	limited := collectTex(cat, gexp.TermSelector{Limit: 1})
	assert.Len(t, limited, 1)

	// AddTo only lets new terms through
	stream := gexp.StreamTerms(orderZeroTerm(2), orderZeroTerm(3)).AddTo(cat)
	assert.Equal(t, 1, stream.PullAll())
	assert.EqualValues(t, 4, cat.NumTerms())
}

func catalogOpts(path string) gexp.CatalogOpts {
	return gexp.CatalogOpts{
		DbPathName: path,
		Seed:       "g-loop-2",
		Order:      1,
	}
}

func TestInMemoryCatalog(t *testing.T) {
	ctx := gexp.NewCatalogContext()
	cat, err := catalog.OpenCatalog(ctx, catalogOpts(""))
	require.NoError(t, err)

	runCatalogContract(t, cat)

	ctx.Close()
	<-ctx.Done()
}

func TestCatalogOnDisk(t *testing.T) {
	dir := t.TempDir()

	ctx := gexp.NewCatalogContext()
	cat, err := catalog.OpenCatalog(ctx, catalogOpts(dir))
	require.NoError(t, err)
	runCatalogContract(t, cat)
	require.NoError(t, cat.Close())

	t.Run("reopen keeps terms", func(t *testing.T) {
		cat, err := catalog.OpenCatalog(ctx, catalogOpts(dir))
		require.NoError(t, err)
		defer cat.Close()

		assert.EqualValues(t, 4, cat.NumTerms())
		assert.Len(t, collectTex(cat, gexp.DefaultTermSelector), 4)
	})

	t.Run("read-only rejects adds", func(t *testing.T) {
		opts := catalogOpts(dir)
		opts.ReadOnly = true
		cat, err := catalog.OpenCatalog(ctx, opts)
		require.NoError(t, err)
		defer cat.Close()

		assert.True(t, cat.IsReadOnly())
		_, err = cat.TryAddTerm(orderZeroTerm(9))
		assert.ErrorIs(t, err, gexp.ErrCatalogReadOnly)
		assert.EqualValues(t, 4, cat.NumTerms())
	})

	t.Run("seed mismatch", func(t *testing.T) {
		opts := catalogOpts(dir)
		opts.Seed = "calM"
		_, err := catalog.OpenCatalog(ctx, opts)
		assert.ErrorIs(t, err, gexp.ErrBadCatalogParam)
	})

	t.Run("order mismatch", func(t *testing.T) {
		opts := catalogOpts(dir)
		opts.Order = 2
		_, err := catalog.OpenCatalog(ctx, opts)
		assert.ErrorIs(t, err, gexp.ErrBadCatalogParam)
	})

	ctx.Close()
	<-ctx.Done()
}

func TestReadOnlyNeedsPath(t *testing.T) {
	ctx := gexp.NewCatalogContext()
	defer ctx.Close()

	_, err := catalog.OpenCatalog(ctx, gexp.CatalogOpts{ReadOnly: true})
	assert.ErrorIs(t, err, gexp.ErrBadCatalogParam)
}

func TestRedisCatalog(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := gexp.NewCatalogContext()
	cat, err := catalog.NewFromClient(ctx, client, catalogOpts(""), catalog.WithPrefix("test:"))
	require.NoError(t, err)

	runCatalogContract(t, cat)
	assert.True(t, mr.Exists("test:terms"))
	assert.Equal(t, "g-loop-2", mr.HGet("test:state", "seed"))

	t.Run("second writer shares terms", func(t *testing.T) {
		other, err := catalog.NewRedisCatalog(ctx, mr.Addr(), catalogOpts(""), catalog.WithPrefix("test:"))
		require.NoError(t, err)
		defer other.Close()

		added, err := other.TryAddTerm(orderZeroTerm(1))
		require.NoError(t, err)
		assert.False(t, added)
		assert.EqualValues(t, 4, other.NumTerms())
	})

	t.Run("seed mismatch", func(t *testing.T) {
		opts := catalogOpts("")
		opts.Seed = "calM"
		_, err := catalog.NewFromClient(ctx, client, opts, catalog.WithPrefix("test:"))
		assert.ErrorIs(t, err, gexp.ErrBadCatalogParam)
	})

	t.Run("read-only", func(t *testing.T) {
		opts := catalogOpts("")
		opts.ReadOnly = true
		ro, err := catalog.NewFromClient(ctx, client, opts, catalog.WithPrefix("test:"))
		require.NoError(t, err)
		defer ro.Close()

		_, err = ro.TryAddTerm(orderZeroTerm(9))
		assert.ErrorIs(t, err, gexp.ErrCatalogReadOnly)

		_, err = catalog.NewFromClient(ctx, client, opts, catalog.WithPrefix("empty:"))
		assert.ErrorIs(t, err, gexp.ErrBadCatalogParam)
	})

	ctx.Close()
	<-ctx.Done()
}
