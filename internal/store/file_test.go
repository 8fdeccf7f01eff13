package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolesmith/rolesmith/internal/role"
)

func TestSlug(t *testing.T) {
	assert.Equal(t, "storage-blob-reader", Slug("Storage Blob Reader"))
	assert.Equal(t, "already-slugged", Slug("already-slugged"))
}

func TestSaveByNameAndLoadByName(t *testing.T) {
	s := NewFileStore(t.TempDir())

	def := role.New("Storage Reader", "reads storage")
	path, err := s.SaveByName(def, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Dir(), "storage-reader.json"), path)

	loaded, err := s.LoadByName("storage-reader")
	require.NoError(t, err)
	assert.Equal(t, def.Name, loaded.Name)
	assert.Equal(t, def.ID, loaded.ID)

	// The extension and the display name are accepted too.
	loaded, err = s.LoadByName("storage-reader.json")
	require.NoError(t, err)
	assert.Equal(t, def.Name, loaded.Name)

	loaded, err = s.LoadByName("Storage Reader")
	require.NoError(t, err)
	assert.Equal(t, def.Name, loaded.Name)
}

func TestSave_RefusesOverwrite(t *testing.T) {
	s := NewFileStore(t.TempDir())
	def := role.New("Keep Me", "")

	_, err := s.SaveByName(def, false)
	require.NoError(t, err)

	_, err = s.SaveByName(def, false)
	require.ErrorIs(t, err, ErrExists)

	_, err = s.SaveByName(def, true)
	require.NoError(t, err)
}

func TestSave_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "roles")
	s := NewFileStore(dir)

	_, err := s.SaveByName(role.New("Nested", ""), false)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "nested.json"))
	require.NoError(t, err)
}

func TestLoad_NotFound(t *testing.T) {
	s := NewFileStore(t.TempDir())

	_, err := s.LoadByName("missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := NewFileStore(dir)
	_, err := s.LoadByName("broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestList(t *testing.T) {
	s := NewFileStore(t.TempDir())

	for _, name := range []string{"Zeta Role", "Alpha Role", "Mid Role"} {
		_, err := s.SaveByName(role.New(name, ""), false)
		require.NoError(t, err)
	}
	// Non-JSON files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "README.md"), []byte("x"), 0o644))

	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha-role", "mid-role", "zeta-role"}, names)
}

func TestList_MissingDirIsEmpty(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "does-not-exist"))

	names, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestDelete(t *testing.T) {
	s := NewFileStore(t.TempDir())
	_, err := s.SaveByName(role.New("Doomed", ""), false)
	require.NoError(t, err)

	deleted, err := s.Delete("doomed")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.Delete("doomed")
	require.NoError(t, err)
	assert.False(t, deleted)
}
