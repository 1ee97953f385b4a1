// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docbatch/pkg/types"
)

func mkdirs(t *testing.T, root string, dirs ...string) {
	t.Helper()
	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(root, filepath.FromSlash(d)), 0o755))
	}
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "v2", "v10", "v1", "docs", "version-notes", "tools")
	require.NoError(t, os.WriteFile(filepath.Join(root, "v3"), []byte("not a dir"), 0o644))

	got, err := Discover(root, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"v1", "v10", "v2", "version-notes"}, got)

	got, err = Discover(root, "v[0-9]*")
	require.NoError(t, err)
	assert.Equal(t, []string{"v1", "v10", "v2"}, got)
}

func TestDiscoverErrors(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "missing"), "v*")
	assert.ErrorContains(t, err, "reading version root")

	_, err = Discover(t.TempDir(), "v[")
	assert.ErrorContains(t, err, "invalid version pattern")
}

func TestPlan(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "v1/chm/Original", "v1/api/Original", "v2/chm/Original", "v2/demo/Original")

	mappings := types.DefaultRecodeConfig().Mappings
	jobs := Plan(root, []string{"v1", "v2"}, mappings)
	require.Len(t, jobs, 6)

	assert.Equal(t, "v1", jobs[0].Version)
	assert.Equal(t, filepath.Join(root, "v1", "chm", "Original"), jobs[0].Source)
	assert.Equal(t, filepath.Join(root, "v1", "chm", "Utf8"), jobs[0].Target)

	var present []string
	for _, j := range jobs {
		if j.Exists() {
			rel, _ := filepath.Rel(root, j.Source)
			present = append(present, filepath.ToSlash(rel))
		}
	}
	assert.Equal(t, []string{"v1/chm/Original", "v1/api/Original", "v2/chm/Original", "v2/demo/Original"}, present)
}
