package entities

// Deck is the ordered sequence of slides currently loaded for presentation.
// Insertion order is display order. Decks are replaced wholesale on import,
// never partially mutated in place.
type Deck struct {
	Slides []Slide `json:"slides"`
}

// Len returns the number of slides.
func (d *Deck) Len() int {
	return len(d.Slides)
}

// SlideAt returns the slide at index, or nil when out of range.
func (d *Deck) SlideAt(index int) *Slide {
	if index < 0 || index >= len(d.Slides) {
		return nil
	}
	return &d.Slides[index]
}

// Clamp clamps an index into the deck's valid range. For an empty deck it
// returns 0.
func (d *Deck) Clamp(index int) int {
	if len(d.Slides) == 0 {
		return 0
	}
	if index < 0 {
		return 0
	}
	if index > len(d.Slides)-1 {
		return len(d.Slides) - 1
	}
	return index
}
