package renderer

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"sync"

	"deckview/internal/domain/entities"
	"deckview/internal/domain/ports"
)

// Engine composes full slide markup: chrome (title, subtitle, footer, logo
// mark) around the body produced by the layout renderer for the slide's key.
type Engine struct {
	registry *Registry
	helpers  *Helpers

	mu      sync.RWMutex
	logoURL string
}

// NewEngine creates a rendering engine over a registry and helper set.
func NewEngine(registry *Registry, helpers *Helpers) *Engine {
	return &Engine{registry: registry, helpers: helpers}
}

// Registry exposes the engine's registry for layout overrides.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// SetLogoURL configures the deck logo mark prepended to every slide. Empty
// disables it.
func (e *Engine) SetLogoURL(u string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.logoURL = u
}

func (e *Engine) logo() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.logoURL
}

// RenderSlide renders a single slide, dispatching on its layout key. Unknown
// keys fall back to the default renderer.
func (e *Engine) RenderSlide(ctx context.Context, slide *entities.Slide, index int) (*ports.RenderedSlide, error) {
	if slide == nil {
		return nil, errors.New("slide cannot be nil")
	}

	esc := e.helpers.Escape
	shared := Shared{}
	if t := slide.Title(); t != "" {
		shared.TitleHTML = `<h1 class="title">` + esc(t) + `</h1>`
	}
	if st := slide.Fields.Str("subtitle"); st != "" {
		shared.SubtitleHTML = `<h2 class="subtitle">` + esc(st) + `</h2>`
	}

	result := e.registry.Lookup(slide.Layout()).Render(ctx, slide, e.helpers, shared)

	var b strings.Builder
	classes := make([]string, 0, len(result.Classes)+2)
	if slide.Fields.Truthy("fullbleed") {
		classes = append(classes, "fullbleed")
	}
	for _, c := range result.Classes {
		if c != "" {
			classes = append(classes, c)
		}
	}
	if logo := e.logo(); logo != "" {
		classes = append(classes, "has-logo")
		fmt.Fprintf(&b, `<img class="logo-mark" src="%s" alt="" draggable="false">`, esc(logo))
	}

	b.WriteString(result.HTML)

	// Footer chrome is appended after every body, even empty ones. The left
	// cell keeps its element so the grid stays stable without a footer field.
	b.WriteString(`<div class="footer"><div class="left">`)
	b.WriteString(esc(slide.Fields.Str("footer")))
	b.WriteString(`</div><div class="right"><span class="timer" data-timer></span></div></div>`)

	return &ports.RenderedSlide{
		Index:   index,
		Slide:   slide,
		HTML:    template.HTML(b.String()), // #nosec G203 -- field values escaped above
		Classes: strings.Join(classes, " "),
	}, nil
}

// RenderDeck renders every slide in order.
func (e *Engine) RenderDeck(ctx context.Context, deck *entities.Deck) ([]ports.RenderedSlide, error) {
	if deck == nil {
		return nil, errors.New("deck cannot be nil")
	}
	rendered := make([]ports.RenderedSlide, 0, deck.Len())
	for i := range deck.Slides {
		rs, err := e.RenderSlide(ctx, &deck.Slides[i], i)
		if err != nil {
			return nil, fmt.Errorf("rendering slide %d: %w", i, err)
		}
		rendered = append(rendered, *rs)
	}
	return rendered, nil
}
