package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deckview/internal/domain/entities"
)

type stubFetcher struct {
	data map[string][]byte
}

func (f *stubFetcher) Fetch(_ context.Context, src string) ([]byte, error) {
	if data, ok := f.data[src]; ok {
		return data, nil
	}
	return nil, errors.New("not found: " + src)
}

func jsonDeckDecoder(data []byte) (*entities.Deck, error) {
	if len(data) == 0 || data[0] != '[' {
		return nil, errors.New("document must be an array")
	}
	return &entities.Deck{Slides: []entities.Slide{{LayoutKey: "Title Slide"}}}, nil
}

func demoDeck() *entities.Deck {
	return &entities.Deck{Slides: []entities.Slide{
		{LayoutKey: "Title Slide", Fields: entities.Fields{"title": "Demo"}},
	}}
}

func TestDeck_Load(t *testing.T) {
	fetcher := &stubFetcher{data: map[string][]byte{
		"slides.json": []byte(`[{"layout": "Title Slide"}]`),
		"broken.json": []byte(`{"layout": "Title Slide"}`),
	}}
	svc := NewDeckService(fetcher, jsonDeckDecoder, demoDeck)
	ctx := context.Background()

	t.Run("valid source loads", func(t *testing.T) {
		deck, err := svc.Load(ctx, "slides.json")
		require.NoError(t, err)
		assert.Equal(t, 1, deck.Len())
		assert.Empty(t, deck.Slides[0].Fields)
	})

	t.Run("empty source falls back to demo", func(t *testing.T) {
		deck, err := svc.Load(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, "Demo", deck.Slides[0].Fields.Str("title"))
	})

	t.Run("missing source falls back to demo", func(t *testing.T) {
		deck, err := svc.Load(ctx, "nope.json")
		require.NoError(t, err)
		assert.Equal(t, "Demo", deck.Slides[0].Fields.Str("title"))
	})

	t.Run("malformed source falls back to demo", func(t *testing.T) {
		deck, err := svc.Load(ctx, "broken.json")
		require.NoError(t, err)
		assert.Equal(t, "Demo", deck.Slides[0].Fields.Str("title"))
	})
}

func TestDeck_Import(t *testing.T) {
	svc := NewDeckService(&stubFetcher{}, jsonDeckDecoder, demoDeck)

	deck, err := svc.Import([]byte(`[{"layout": "Title Slide"}]`))
	require.NoError(t, err)
	assert.Equal(t, 1, deck.Len())

	_, err = svc.Import([]byte(`{"layout": "Title Slide"}`))
	assert.Error(t, err, "import never falls back silently")
}
