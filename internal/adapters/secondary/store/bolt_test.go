package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deckview/internal/domain/ports"
)

func openTestStore(t *testing.T) *BoltStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCollection_PutGetDelete(t *testing.T) {
	s := openTestStore(t)
	c := s.Collection(BucketThemes)

	require.NoError(t, c.Put("midnight", []byte(`{"id":"midnight"}`)))

	val, err := c.Get("midnight")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"midnight"}`, string(val))

	require.NoError(t, c.Delete("midnight"))
	_, err = c.Get("midnight")
	assert.ErrorIs(t, err, ports.ErrNotFound)

	// Deleting a missing id is not an error.
	assert.NoError(t, c.Delete("never-existed"))
}

func TestCollection_All(t *testing.T) {
	s := openTestStore(t)
	c := s.Collection(BucketTemplates)

	require.NoError(t, c.Put("a", []byte("1")))
	require.NoError(t, c.Put("b", []byte("2")))

	all, err := c.All()
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, []byte("1"), all["a"])
	assert.Equal(t, []byte("2"), all["b"])
}

func TestCollection_ReplaceAll(t *testing.T) {
	s := openTestStore(t)
	c := s.Collection(BucketTemplates)

	require.NoError(t, c.Put("old", []byte("x")))
	require.NoError(t, c.ReplaceAll(map[string][]byte{
		"new1": []byte("1"),
		"new2": []byte("2"),
	}))

	all, err := c.All()
	require.NoError(t, err)
	assert.Len(t, all, 2)
	_, err = c.Get("old")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestCollection_ReplaceAllEmpty(t *testing.T) {
	s := openTestStore(t)
	c := s.Collection(BucketThemes)

	require.NoError(t, c.Put("only", []byte("x")))
	require.NoError(t, c.ReplaceAll(nil))

	all, err := c.All()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSettings_GetSet(t *testing.T) {
	s := openTestStore(t)
	kv := s.Settings()

	_, err := kv.Get("activeTheme")
	assert.ErrorIs(t, err, ports.ErrNotFound)

	require.NoError(t, kv.Set("activeTheme", []byte("midnight")))
	val, err := kv.Get("activeTheme")
	require.NoError(t, err)
	assert.Equal(t, []byte("midnight"), val)

	require.NoError(t, kv.Set("activeTheme", []byte("daylight")))
	val, err = kv.Get("activeTheme")
	require.NoError(t, err)
	assert.Equal(t, []byte("daylight"), val)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "persist.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Collection(BucketThemes).Put("kept", []byte("v")))
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = s2.Close() }()

	val, err := s2.Collection(BucketThemes).Get("kept")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), val)
}
