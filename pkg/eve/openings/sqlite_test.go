package openings_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martinnovaak/engineduel/pkg/eve/openings"
)

func TestSQLiteSource(t *testing.T) {
	ctx := context.Background()

	source, err := openings.OpenSQLite(filepath.Join(t.TempDir(), "openings.db"))
	require.NoError(t, err)
	defer source.Close()

	count, err := source.Import(ctx, strings.NewReader("e2e4 e7e5\n\n  d2d4   d7d5 \nc2c4\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	total, err := source.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	fetched, err := source.Fetch(ctx, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"e2e4 e7e5", "d2d4 d7d5", "c2c4"}, fetched)

	fetched, err = source.Fetch(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, fetched, 2)
}

func TestSQLiteSourceFeedsSupplier(t *testing.T) {
	ctx := context.Background()

	source, err := openings.OpenSQLite(filepath.Join(t.TempDir(), "openings.db"))
	require.NoError(t, err)
	defer source.Close()

	_, err = source.Import(ctx, strings.NewReader("e2e4 e7e5 g1f3\n"))
	require.NoError(t, err)

	supplier := openings.NewSupplier(ctx, source, nil)
	assert.Equal(t, []string{"e2e4", "e7e5", "g1f3"}, supplier.Pop(ctx))
}
