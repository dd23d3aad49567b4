package services

import (
	"context"
	"fmt"

	"deckview/internal/domain/entities"
	"deckview/internal/domain/ports"
)

// DeckDecoder parses a raw deck document into slides.
type DeckDecoder func(data []byte) (*entities.Deck, error)

// DeckService loads and imports decks.
type DeckService struct {
	fetcher ports.DocumentFetcher
	decode  DeckDecoder
	demo    func() *entities.Deck
}

// NewDeckService creates the deck loader. demo supplies the fallback deck
// for when no source is available.
func NewDeckService(fetcher ports.DocumentFetcher, decode DeckDecoder, demo func() *entities.Deck) *DeckService {
	return &DeckService{fetcher: fetcher, decode: decode, demo: demo}
}

// Load loads a deck from a local path or URL. An empty src, a missing file,
// or a malformed document all fall back to the demo deck: startup must
// always yield a presentable deck.
func (d *DeckService) Load(ctx context.Context, src string) (*entities.Deck, error) {
	if src == "" {
		return d.demo(), nil
	}
	data, err := d.fetcher.Fetch(ctx, src)
	if err != nil {
		return d.demo(), nil
	}
	deck, err := d.decode(data)
	if err != nil {
		return d.demo(), nil
	}
	return deck, nil
}

// Import parses an uploaded deck document. Unlike Load it is strict: a
// malformed document is an error, never a silent demo fallback, because the
// caller is about to replace live state with the result.
func (d *DeckService) Import(data []byte) (*entities.Deck, error) {
	deck, err := d.decode(data)
	if err != nil {
		return nil, fmt.Errorf("importing deck: %w", err)
	}
	return deck, nil
}
