package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deckview/internal/domain/entities"
	"deckview/internal/domain/ports"
)

type memCollection struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCollection() *memCollection {
	return &memCollection{data: make(map[string][]byte)}
}

func (m *memCollection) All() (map[string][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string][]byte, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out, nil
}

func (m *memCollection) Get(id string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[id]; ok {
		return v, nil
	}
	return nil, ports.ErrNotFound
}

func (m *memCollection) Put(id string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[id] = value
	return nil
}

func (m *memCollection) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

func (m *memCollection) ReplaceAll(records map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string][]byte, len(records))
	for k, v := range records {
		m.data[k] = v
	}
	return nil
}

func newTestLibrary() *LibraryService {
	return NewLibraryService(newMemCollection(), newMemCollection(), newFakeClock())
}

func TestLibrary_Seed(t *testing.T) {
	l := newTestLibrary()
	seedThemes := []entities.Theme{
		{ID: "dark", Name: "Dark", Vars: map[string]string{"--bg": "#000000"}},
	}
	require.NoError(t, l.Seed(nil, seedThemes))

	themes, err := l.ListThemes()
	require.NoError(t, err)
	require.Len(t, themes, 1)

	// A stored record wins over a seed record with the same id.
	edited := themes[0]
	edited.Name = "Edited Dark"
	_, err = l.SaveTheme(edited)
	require.NoError(t, err)

	require.NoError(t, l.Seed(nil, seedThemes))
	themes, err = l.ListThemes()
	require.NoError(t, err)
	require.Len(t, themes, 1)
	assert.Equal(t, "Edited Dark", themes[0].Name)

	// New seed entries still land next to kept records.
	require.NoError(t, l.Seed(nil, append(seedThemes, entities.Theme{ID: "extra", Name: "Extra"})))
	themes, err = l.ListThemes()
	require.NoError(t, err)
	assert.Len(t, themes, 2)
}

func TestLibrary_SaveTemplate(t *testing.T) {
	l := newTestLibrary()

	t.Run("generates id when missing", func(t *testing.T) {
		saved, err := l.SaveTemplate(entities.Template{Name: "Quote", LayoutKey: "Quote / Key Message Slide"})
		require.NoError(t, err)
		assert.NotEmpty(t, saved.ID)
	})

	t.Run("derives name from layout key", func(t *testing.T) {
		saved, err := l.SaveTemplate(entities.Template{LayoutKey: "image only"})
		require.NoError(t, err)
		assert.Equal(t, "Image Only", saved.Name)
	})

	t.Run("rejects empty template", func(t *testing.T) {
		_, err := l.SaveTemplate(entities.Template{})
		assert.Error(t, err)
	})
}

func TestLibrary_ThemeCRUD(t *testing.T) {
	l := newTestLibrary()

	saved, err := l.SaveTheme(entities.Theme{Name: "Ocean", Vars: map[string]string{"--bg": "#003355"}})
	require.NoError(t, err)

	got, err := l.GetTheme(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ocean", got.Name)

	require.NoError(t, l.DeleteTheme(saved.ID))
	_, err = l.GetTheme(saved.ID)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestLibrary_ImportReplacesAll(t *testing.T) {
	l := newTestLibrary()
	_, err := l.SaveTheme(entities.Theme{ID: "old", Name: "Old"})
	require.NoError(t, err)

	imported, err := l.ImportThemes([]byte(`[
		{"id": "new1", "name": "New One", "vars": {"--bg": "#111111"}},
		{"id": "new2", "name": "New Two"}
	]`))
	require.NoError(t, err)
	assert.Len(t, imported, 2)

	themes, err := l.ListThemes()
	require.NoError(t, err)
	assert.Len(t, themes, 2)
	_, err = l.GetTheme("old")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestLibrary_ImportRejectsNonArray(t *testing.T) {
	l := newTestLibrary()
	_, err := l.SaveTheme(entities.Theme{ID: "keep", Name: "Keep"})
	require.NoError(t, err)

	_, err = l.ImportThemes([]byte(`{"id": "x", "name": "X"}`))
	assert.Error(t, err)

	// Rejection leaves the collection untouched.
	themes, listErr := l.ListThemes()
	require.NoError(t, listErr)
	assert.Len(t, themes, 1)
}

func TestLibrary_ExportRoundTrip(t *testing.T) {
	l := newTestLibrary()
	_, err := l.SaveTheme(entities.Theme{ID: "t1", Name: "One", Vars: map[string]string{"--bg": "#000000"}})
	require.NoError(t, err)

	data, err := l.ExportThemes()
	require.NoError(t, err)

	restored, err := l.ImportThemes(data)
	require.NoError(t, err)
	require.Len(t, restored, 1)
	assert.Equal(t, "One", restored[0].Name)
	assert.Equal(t, "#000000", restored[0].Vars["--bg"])
}
