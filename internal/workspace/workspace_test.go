package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Lifecycle(t *testing.T) {
	base := t.TempDir()
	mgr := NewManager(base)
	assert.Empty(t, mgr.Path())

	require.NoError(t, mgr.Create())
	dir := mgr.Path()
	require.NotEmpty(t, dir)
	assert.True(t, strings.HasPrefix(filepath.Base(dir), "sitekit-"))
	assert.Equal(t, base, filepath.Dir(dir))

	require.NoError(t, mgr.Create())
	assert.Equal(t, dir, mgr.Path(), "create is idempotent")

	require.NoError(t, mgr.Cleanup())
	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
	assert.Empty(t, mgr.Path())
	require.NoError(t, mgr.Cleanup())
}

func TestManager_Subdir(t *testing.T) {
	mgr := NewManager(t.TempDir())
	_, err := mgr.Subdir("kits")
	require.Error(t, err, "workspace not created")

	require.NoError(t, mgr.Create())
	t.Cleanup(func() { _ = mgr.Cleanup() })

	sub, err := mgr.Subdir("base")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "stale.txt"), []byte("x"), 0o600))

	again, err := mgr.Subdir("base")
	require.NoError(t, err)
	assert.Equal(t, sub, again)
	_, err = os.Stat(filepath.Join(again, "stale.txt"))
	assert.True(t, os.IsNotExist(err), "subdir is reset")

	_, err = mgr.Subdir("../escape")
	assert.Error(t, err)
	_, err = mgr.Subdir("")
	assert.Error(t, err)
}
