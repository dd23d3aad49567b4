package renderer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deckview/internal/domain/entities"
)

func TestEngine_RenderSlide(t *testing.T) {
	engine := NewEngine(NewRegistry(), testHelpers())

	t.Run("chrome composed around body", func(t *testing.T) {
		slide := &entities.Slide{
			LayoutKey: LayoutTitleContent,
			Fields:    entities.Fields{"title": "Hello", "footer": "Acme Corp", "body": "text"},
		}
		rs, err := engine.RenderSlide(context.Background(), slide, 2)
		require.NoError(t, err)
		assert.Equal(t, 2, rs.Index)
		html := string(rs.HTML)
		assert.Contains(t, html, `<h1 class="title">Hello</h1>`)
		assert.Contains(t, html, `<div class="left">Acme Corp</div>`)
		assert.Contains(t, html, `<span class="timer" data-timer>`)
	})

	t.Run("footer cell present even without footer field", func(t *testing.T) {
		slide := &entities.Slide{LayoutKey: LayoutTitleContent, Fields: entities.Fields{}}
		rs, err := engine.RenderSlide(context.Background(), slide, 0)
		require.NoError(t, err)
		assert.Contains(t, string(rs.HTML), `<div class="left"></div>`)
	})

	t.Run("fullbleed class", func(t *testing.T) {
		slide := &entities.Slide{LayoutKey: LayoutImageOnly, Fields: entities.Fields{"fullbleed": true}}
		rs, err := engine.RenderSlide(context.Background(), slide, 0)
		require.NoError(t, err)
		assert.Contains(t, rs.Classes, "fullbleed")
	})

	t.Run("renderer classes carried through", func(t *testing.T) {
		slide := &entities.Slide{LayoutKey: LayoutTitle, Fields: entities.Fields{"title": "T"}}
		rs, err := engine.RenderSlide(context.Background(), slide, 0)
		require.NoError(t, err)
		assert.Contains(t, rs.Classes, "title-hero-present")
	})

	t.Run("chrome is escaped", func(t *testing.T) {
		slide := &entities.Slide{
			LayoutKey: LayoutTitleContent,
			Fields:    entities.Fields{"title": `<img onerror=x>`, "footer": "<svg>"},
		}
		rs, err := engine.RenderSlide(context.Background(), slide, 0)
		require.NoError(t, err)
		html := string(rs.HTML)
		assert.NotContains(t, html, "<img onerror")
		assert.NotContains(t, html, "<svg>")
	})

	t.Run("nil slide rejected", func(t *testing.T) {
		_, err := engine.RenderSlide(context.Background(), nil, 0)
		assert.Error(t, err)
	})
}

func TestEngine_LogoMark(t *testing.T) {
	engine := NewEngine(NewRegistry(), testHelpers())
	slide := &entities.Slide{LayoutKey: LayoutTitleContent, Fields: entities.Fields{"body": "x"}}

	rs, err := engine.RenderSlide(context.Background(), slide, 0)
	require.NoError(t, err)
	assert.NotContains(t, string(rs.HTML), "logo-mark")

	engine.SetLogoURL("/uploads/logo")
	rs, err = engine.RenderSlide(context.Background(), slide, 0)
	require.NoError(t, err)
	html := string(rs.HTML)
	assert.Contains(t, html, `<img class="logo-mark" src="/uploads/logo"`)
	assert.Contains(t, rs.Classes, "has-logo")
	// Mark comes before the body so it underlays slide content.
	assert.Less(t, strings.Index(html, "logo-mark"), strings.Index(html, `class="content"`))
}

func TestEngine_RenderDeck(t *testing.T) {
	engine := NewEngine(NewRegistry(), testHelpers())
	deck := &entities.Deck{Slides: []entities.Slide{
		{LayoutKey: LayoutTitle, Fields: entities.Fields{"title": "A"}},
		{LayoutKey: "Unknown Layout", Fields: entities.Fields{"body": "B"}},
	}}

	rendered, err := engine.RenderDeck(context.Background(), deck)
	require.NoError(t, err)
	require.Len(t, rendered, 2)
	assert.Equal(t, 0, rendered[0].Index)
	assert.Equal(t, 1, rendered[1].Index)
	assert.Contains(t, string(rendered[1].HTML), "<p>B</p>")
}
