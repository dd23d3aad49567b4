package ports

import (
	"context"
	"html/template"

	"deckview/internal/domain/entities"
)

// RenderedSlide represents a slide after rendering
type RenderedSlide struct {
	Index   int
	Slide   *entities.Slide
	HTML    template.HTML
	Classes string
}

// SlideRenderer defines the interface for rendering slides to HTML
type SlideRenderer interface {
	// RenderSlide renders a single slide, dispatching on its layout key.
	RenderSlide(ctx context.Context, slide *entities.Slide, index int) (*RenderedSlide, error)

	// RenderDeck renders every slide in order.
	RenderDeck(ctx context.Context, deck *entities.Deck) ([]RenderedSlide, error)
}

// AssetResolver defines the interface for mapping slide asset references to
// servable URLs.
type AssetResolver interface {
	// Resolve maps a reference (registered name, absolute URL, data URI, or
	// relative path) to the URL the shell should load.
	Resolve(ref string) string

	// Register binds a name to an object URL. The lowercased basename of the
	// name is the lookup key; re-registration overwrites.
	Register(name, href string)

	// RegisterBatch registers a set of assets atomically.
	RegisterBatch(assets map[string]string)

	// SetBase changes the base path used for relative references.
	SetBase(base string)
}
