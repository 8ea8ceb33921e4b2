package manager

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/duynguyendang/listmembers/pkg/common/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePairs(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestIndexManager_Caches(t *testing.T) {
	dir := t.TempDir()
	p := writePairs(t, dir, "succeeding", "a b\nb c\n")

	im := NewIndexManager(2, false)

	first, err := im.GetIndex(p)
	require.NoError(t, err)
	second, err := im.GetIndex(p)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, im.Builds())
	assert.Equal(t, 1, im.Len())

	im.Purge()
	assert.Equal(t, 0, im.Len())

	third, err := im.GetIndex(p)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, 2, im.Builds())
}

func TestIndexManager_Evicts(t *testing.T) {
	dir := t.TempDir()
	p1 := writePairs(t, dir, "p1", "a b\n")
	p2 := writePairs(t, dir, "p2", "c d\n")

	im := NewIndexManager(1, false)

	_, err := im.GetIndex(p1)
	require.NoError(t, err)
	_, err = im.GetIndex(p2)
	require.NoError(t, err)
	assert.Equal(t, 1, im.Len())

	_, err = im.GetIndex(p1)
	require.NoError(t, err)
	assert.Equal(t, 3, im.Builds(), "p1 was evicted and rebuilt")
}

func TestIndexManager_StrictIsSeparateEntry(t *testing.T) {
	dir := t.TempDir()
	p := writePairs(t, dir, "dups", "a b\na c\n")

	im := NewIndexManager(4, false)

	idx, err := im.GetIndex(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, idx.Resolve("a"))

	_, err = im.GetIndexWith(p, true)
	assert.ErrorIs(t, err, errors.ErrDuplicatePredecessor)
	assert.Equal(t, 1, im.Len(), "failed builds are not cached")
}

func TestIndexManager_MissingFile(t *testing.T) {
	im := NewIndexManager(0, false)
	_, err := im.GetIndex(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, errors.ErrNotFound)
}
