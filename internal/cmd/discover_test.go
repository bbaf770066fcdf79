package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindManifestExplicitPathWinsUnconditionally(t *testing.T) {
	path, err := findManifest("somewhere/service.yml")
	require.NoError(t, err)
	assert.Equal(t, "somewhere/service.yml", path)
}

func TestFindManifestWalksUpward(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, manifestFilename), []byte("service: x\n"), 0o644))

	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	cwd, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(cwd)
	require.NoError(t, os.Chdir(nested))

	path, err := findManifest("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, manifestFilename), path)
}

func TestFindManifestReturnsErrorWhenNotFound(t *testing.T) {
	root := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(cwd)
	require.NoError(t, os.Chdir(root))

	_, err = findManifest("")
	assert.Error(t, err)
}
