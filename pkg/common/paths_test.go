package common_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martinnovaak/engineduel/pkg/common"
)

func TestStatePath(t *testing.T) {
	path := common.StatePath("fixed-lmr")
	assert.Equal(t, common.PausedDirectory, filepath.Dir(path))
	assert.Equal(t, "fixed-lmr.yaml", filepath.Base(path))
}

func TestTryMkdir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, common.TryMkdir(dir))
	require.NoError(t, common.TryMkdir(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
