package entities

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ViewState is the derived projection of the navigation state that the shell
// and its chrome widgets bind to. It is recomputed after every transition and
// never stored.
type ViewState struct {
	Index         int    `json:"index"`
	Total         int    `json:"total"`
	Counter       string `json:"counter"`
	ProgressWidth string `json:"progressWidth"`
	Notes         string `json:"notes"`
	TimerLabel    string `json:"timerLabel"`
	TimerRunning  bool   `json:"timerRunning"`
	Fragment      string `json:"fragment"`
}

// DeriveViewState computes the chrome projection for the slide at index.
// Progress spans current/(total-1); a single-slide deck always reads 0%.
func DeriveViewState(deck *Deck, index int, elapsed time.Duration, running bool) ViewState {
	total := deck.Len()
	counter := fmt.Sprintf("%d / %d", index+1, total)
	if total == 0 {
		counter = "0 / 0"
	}
	vs := ViewState{
		Index:        index,
		Total:        total,
		Counter:      counter,
		TimerLabel:   FormatClock(elapsed),
		TimerRunning: running,
		Fragment:     FormatFragment(index),
	}
	if total > 1 {
		vs.ProgressWidth = fmt.Sprintf("%.4g%%", float64(index)/float64(total-1)*100)
	} else {
		vs.ProgressWidth = "0%"
	}
	if s := deck.SlideAt(index); s != nil {
		vs.Notes = s.Notes()
	}
	return vs
}

// FormatFragment renders a slide index as its 1-based URL fragment.
func FormatFragment(index int) string {
	return strconv.Itoa(index + 1)
}

// ParseFragment parses a 1-based URL fragment ("#3" or "3") back to a slide
// index. It reports ok=false for anything non-numeric or below 1.
func ParseFragment(fragment string) (int, bool) {
	fragment = strings.TrimPrefix(strings.TrimSpace(fragment), "#")
	n, err := strconv.Atoi(fragment)
	if err != nil || n < 1 {
		return 0, false
	}
	return n - 1, true
}

// FormatClock renders an elapsed duration as mm:ss. Hours spill into the
// minutes field.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
