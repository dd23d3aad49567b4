package embed

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deckview/internal/adapters/secondary/assets"
	"deckview/internal/domain/entities"
)

type stubFetcher struct {
	docs map[string][]byte
}

func (s *stubFetcher) Fetch(_ context.Context, src string) ([]byte, error) {
	if doc, ok := s.docs[src]; ok {
		return doc, nil
	}
	return nil, errors.New("not found")
}

func darkTheme() entities.Theme {
	return entities.Theme{Vars: map[string]string{
		"--bg": "#0e1420", "--fg": "#e8edf5", "--accent": "#4da3ff", "--muted": "#8a93a6",
	}}
}

func lightTheme() entities.Theme {
	return entities.Theme{Vars: map[string]string{"--bg": "#ffffff", "--fg": "#121212"}}
}

func TestBridge_Enhance(t *testing.T) {
	fetcher := &stubFetcher{docs: map[string][]byte{
		"assets/map.html": []byte("<html><head><title>Map</title></head><body><svg></svg></body></html>"),
		"assets/bare.html": []byte("<p>no head here</p>"),
	}}
	resolver := assets.NewResolver("assets")

	t.Run("injects before closing head", func(t *testing.T) {
		b := NewBridge(resolver, fetcher, darkTheme)
		out, err := b.Enhance(context.Background(), "map.html")
		require.NoError(t, err)

		assert.Contains(t, out, `<base href="assets/map.html">`)
		assert.Contains(t, out, "--bg:#0e1420")
		assert.Contains(t, out, "__pptNav")
		assert.Contains(t, out, "__mmTheme")
		// Block lands inside the existing head.
		assert.Less(t, strings.Index(out, "__pptNav"), strings.Index(out, "</head>"))
		assert.Contains(t, out, "<title>Map</title>")
	})

	t.Run("synthesizes head when absent", func(t *testing.T) {
		b := NewBridge(resolver, fetcher, darkTheme)
		out, err := b.Enhance(context.Background(), "bare.html")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "<head>"))
		assert.Contains(t, out, "</head><p>no head here</p>")
	})

	t.Run("dark background keeps dark stroke and dark class", func(t *testing.T) {
		b := NewBridge(resolver, fetcher, darkTheme)
		out, err := b.Enhance(context.Background(), "map.html")
		require.NoError(t, err)
		assert.Contains(t, out, "stroke:#2a2f3a")
		assert.Contains(t, out, "'markmap-dark', 1==1")
	})

	t.Run("light background switches stroke contrast", func(t *testing.T) {
		b := NewBridge(resolver, fetcher, lightTheme)
		out, err := b.Enhance(context.Background(), "map.html")
		require.NoError(t, err)
		assert.Contains(t, out, "stroke:#94a3b8")
		assert.Contains(t, out, "'markmap-dark', 0==1")
	})

	t.Run("asset bytes bypass the fetch", func(t *testing.T) {
		b := NewBridge(resolver, fetcher, darkTheme)
		b.AssetBytes = func(ref string) ([]byte, bool) {
			if ref == "uploaded.html" {
				return []byte("<html><head></head><body>uploaded</body></html>"), true
			}
			return nil, false
		}
		out, err := b.Enhance(context.Background(), "uploaded.html")
		require.NoError(t, err)
		assert.Contains(t, out, "uploaded")
		assert.Contains(t, out, "__pptNav")
	})

	t.Run("fetch failure surfaces error", func(t *testing.T) {
		b := NewBridge(resolver, fetcher, darkTheme)
		_, err := b.Enhance(context.Background(), "missing.html")
		assert.Error(t, err)
		assert.Equal(t, "assets/missing.html", b.ResolvedSrc("missing.html"))
	})
}
