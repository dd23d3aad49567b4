package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deckview/internal/adapters/secondary/assets"
	"deckview/internal/adapters/secondary/embed"
	"deckview/internal/adapters/secondary/loader"
	"deckview/internal/adapters/secondary/renderer"
	"deckview/internal/domain/entities"
	"deckview/internal/domain/ports"
	"deckview/internal/domain/services"
)

type memKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemKV() *memKV { return &memKV{data: make(map[string][]byte)} }

func (m *memKV) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, ports.ErrNotFound
}

func (m *memKV) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

type memColl struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemColl() *memColl { return &memColl{data: make(map[string][]byte)} }

func (m *memColl) All() (map[string][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string][]byte, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out, nil
}

func (m *memColl) Get(id string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[id]; ok {
		return v, nil
	}
	return nil, ports.ErrNotFound
}

func (m *memColl) Put(id string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[id] = value
	return nil
}

func (m *memColl) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

func (m *memColl) ReplaceAll(records map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string][]byte, len(records))
	for k, v := range records {
		m.data[k] = v
	}
	return nil
}

type docFetcher struct {
	docs map[string][]byte
}

func (f *docFetcher) Fetch(_ context.Context, src string) ([]byte, error) {
	if f.docs != nil {
		if data, ok := f.docs[src]; ok {
			return data, nil
		}
	}
	return nil, errors.New("document not found: " + src)
}

type testEnv struct {
	server   *Server
	handler  http.Handler
	session  ports.SessionService
	resolver ports.AssetResolver
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	deck := &entities.Deck{Slides: []entities.Slide{
		{LayoutKey: "Title Slide", Fields: entities.Fields{"title": "Welcome", "notes": "hello"}},
		{LayoutKey: "Title and Content", Fields: entities.Fields{"title": "Second", "bullets": []any{"one", "two"}}},
		{LayoutKey: "Summary / Thank You Slide", Fields: entities.Fields{"title": "Done"}},
	}}

	theme := entities.Theme{ID: "light", Name: "Light", Vars: map[string]string{"--bg": "#ffffff"}}
	session := services.NewSessionService(deck, theme, newMemKV(), nil)
	library := services.NewLibraryService(newMemColl(), newMemColl(), nil)

	fetcher := &docFetcher{docs: map[string][]byte{
		"assets/mindmap.html": []byte("<html><head><title>mm</title></head><body>map</body></html>"),
	}}

	decks := services.NewDeckService(fetcher, loader.DecodeDeck, loader.DemoDeck)
	resolver := assets.NewResolver("assets")
	session.SetAssetResolver(resolver)
	helpers := renderer.NewHelpers(resolver, fetcher, session.Settings, session.ActiveTheme)
	engine := renderer.NewEngine(renderer.NewRegistry(), helpers)
	bridge := embed.NewBridge(resolver, fetcher, session.ActiveTheme)
	store := NewAssetStore()
	bridge.AssetBytes = store.Bytes

	srv := NewServer(Deps{
		Session:  session,
		Library:  library,
		Decks:    decks,
		Renderer: engine,
		Resolver: resolver,
		Bridge:   bridge,
		Assets:   store,
	}, &entities.ServerConfig{Host: "localhost", Port: 8765}, entities.AssetsConfig{})

	return &testEnv{server: srv, handler: srv.setupRoutes(), session: session, resolver: resolver}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleState(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/state", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var snap ports.SessionSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, 0, snap.Index)
	assert.Equal(t, "1 / 3", snap.View.Counter)
	assert.Equal(t, "light", snap.Theme.ID)
}

func TestHandleNavigate(t *testing.T) {
	t.Run("by index", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, http.MethodPost, "/api/navigate", map[string]any{"index": 2})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 2, env.session.Snapshot().Index)
	})

	t.Run("by action", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, http.MethodPost, "/api/navigate", map[string]any{"action": "next"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, env.session.Snapshot().Index)
	})

	t.Run("by key", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, http.MethodPost, "/api/navigate", map[string]any{"key": "End"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 2, env.session.Snapshot().Index)
	})

	t.Run("unknown action rejected", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, http.MethodPost, "/api/navigate", map[string]any{"action": "teleport"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty body rejected", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, http.MethodPost, "/api/navigate", map[string]any{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleTimer(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/timer", map[string]any{"action": "start"})
	require.Equal(t, http.StatusOK, rec.Code)
	var snap ports.SessionSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.True(t, snap.View.TimerRunning)

	rec = env.do(t, http.MethodPost, "/api/timer", map[string]any{"action": "stop"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.False(t, snap.View.TimerRunning)

	rec = env.do(t, http.MethodPost, "/api/timer", map[string]any{"action": "vanish"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSettings(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/api/settings", map[string]any{
		"notesVisible": true,
		"trustedHTML":  true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var settings entities.Settings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &settings))
	assert.True(t, settings.NotesVisible)
	assert.True(t, settings.TrustedHTML)
	assert.Equal(t, "assets", settings.AssetsBaseHref, "default base restored")
}

func TestSettingsUpdateRebasesResolver(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/api/settings", map[string]any{
		"assetsBaseHref": "media",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "media/photo.jpg", env.resolver.Resolve("photo.jpg"))
}

func TestHandleDeck(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/deck", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Slides []renderedSlideDTO `json:"slides"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Slides, 3)
	assert.Contains(t, payload.Slides[0].HTML, "Welcome")
	assert.Equal(t, "hello", payload.Slides[0].Notes)
}

func TestHandleDeckImport(t *testing.T) {
	t.Run("replaces deck from JSON array", func(t *testing.T) {
		env := newTestEnv(t)
		body := []byte(`[{"layout_key": "Title Slide", "fields": {"title": "Imported"}}]`)
		rec := env.do(t, http.MethodPost, "/api/deck", body)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, env.session.Deck().Len())
		assert.Equal(t, "Imported", env.session.Deck().Slides[0].Title())
	})

	t.Run("rejects non-array and keeps deck", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, http.MethodPost, "/api/deck", []byte(`{"layout_key": "Title Slide"}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, 3, env.session.Deck().Len())
	})
}

func TestThemeLibraryEndpoints(t *testing.T) {
	env := newTestEnv(t)

	// Save
	rec := env.do(t, http.MethodPost, "/api/themes", map[string]any{
		"id":   "midnight",
		"name": "Midnight",
		"vars": map[string]string{"--bg": "#0f1115"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// List
	rec = env.do(t, http.MethodGet, "/api/themes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var themes []entities.Theme
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &themes))
	require.Len(t, themes, 1)

	// Apply
	rec = env.do(t, http.MethodPost, "/api/themes/midnight/apply", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "midnight", env.session.ActiveTheme().ID)

	// Apply unknown
	rec = env.do(t, http.MethodPost, "/api/themes/nope/apply", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Export / import round trip
	rec = env.do(t, http.MethodGet, "/api/themes/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	exported := rec.Body.Bytes()

	rec = env.do(t, http.MethodPost, "/api/themes/import", exported)
	require.Equal(t, http.StatusOK, rec.Code)

	// Import rejects non-arrays
	rec = env.do(t, http.MethodPost, "/api/themes/import", []byte(`{"id":"x"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Delete
	rec = env.do(t, http.MethodDelete, "/api/themes/midnight", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestTemplateLibraryEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/templates", map[string]any{
		"layout_key": "Quote / Key Message Slide",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var saved entities.Template
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	assert.NotEmpty(t, saved.ID)
	assert.NotEmpty(t, saved.Name)

	rec = env.do(t, http.MethodGet, "/api/templates", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var templates []entities.Template
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &templates))
	assert.Len(t, templates, 1)

	rec = env.do(t, http.MethodDelete, "/api/templates/"+saved.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAssetUploadAndServe(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("files", "Drone.SVG")
	require.NoError(t, err)
	_, err = part.Write([]byte("<svg></svg>"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/assets", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Assets map[string]string `json:"assets"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "/assets/drone.svg", payload.Assets["Drone.SVG"])

	// Uploaded bytes serve back, case-insensitively
	rec = env.do(t, http.MethodGet, "/assets/drone.svg", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<svg></svg>", rec.Body.String())

	// The resolver now maps the original reference to the stored URL
	rec = env.do(t, http.MethodGet, "/api/deck", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAssetUploadImportsDeckDocument(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("files", "new-deck.json")
	require.NoError(t, err)
	_, err = part.Write([]byte(`[{"layout_key": "Title Slide", "fields": {"title": "Dropped"}}]`))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/assets", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		DeckSlides int `json:"deck_slides"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, 1, payload.DeckSlides)
	assert.Len(t, env.session.Deck().Slides, 1)
}

func TestHandleEmbed(t *testing.T) {
	env := newTestEnv(t)

	t.Run("injects bridge block", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/embed?src=mindmap.html", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "<base href=")
		assert.Contains(t, body, "__pptNav")
		assert.Contains(t, body, "map")
	})

	t.Run("missing src rejected", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/embed", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("load failure redirects to resolved src", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/embed?src=gone.html", nil)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/assets/gone.html", rec.Header().Get("Location"))
	})
}

func TestHandleShell(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "Welcome", "slides are pre-rendered into the page")
	assert.Contains(t, body, `id="counter"`)
	assert.Contains(t, body, `id="progress-bar"`)
	assert.Contains(t, body, "new WebSocket")
	assert.Contains(t, body, "--bg:#ffffff", "theme variables styled into the page")
	assert.True(t, strings.Contains(body, "data-index=\"2\""))
}

func TestActionFromName(t *testing.T) {
	tests := []struct {
		name   string
		action entities.Action
	}{
		{"next", entities.ActionNext},
		{"prev", entities.ActionPrev},
		{"first", entities.ActionFirst},
		{"last", entities.ActionLast},
		{"fullscreen", entities.ActionToggleFullscreen},
		{"blackout", entities.ActionToggleBlackout},
		{"timer", entities.ActionToggleTimer},
		{"timer_reset", entities.ActionResetTimer},
		{"overview", entities.ActionToggleOverview},
		{"help", entities.ActionToggleHelp},
		{"notes", entities.ActionToggleNotes},
		{"Next ", entities.ActionNext},
		{"bogus", entities.ActionNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.action, actionFromName(tt.name), tt.name)
	}
}
