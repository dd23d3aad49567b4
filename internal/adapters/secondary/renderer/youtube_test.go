package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsYouTubeURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected bool
	}{
		{name: "watch URL", url: "https://www.youtube.com/watch?v=abc123", expected: true},
		{name: "short URL", url: "https://youtu.be/abc123", expected: true},
		{name: "no scheme", url: "youtube.com/watch?v=abc123", expected: true},
		{name: "vimeo", url: "https://vimeo.com/12345", expected: false},
		{name: "local file", url: "clip.mp4", expected: false},
		{name: "empty", url: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isYouTubeURL(tt.url))
		})
	}
}

func TestYouTubeVideoID(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{name: "watch param", url: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", expected: "dQw4w9WgXcQ"},
		{name: "short link", url: "https://youtu.be/dQw4w9WgXcQ", expected: "dQw4w9WgXcQ"},
		{name: "embed path", url: "https://www.youtube.com/embed/dQw4w9WgXcQ?rel=0", expected: "dQw4w9WgXcQ"},
		{name: "no id", url: "https://www.youtube.com/", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, youTubeVideoID(tt.url))
		})
	}
}

func TestYouTubeEmbedURL(t *testing.T) {
	t.Run("autoplay muted defaults", func(t *testing.T) {
		u := youTubeEmbedURL("https://youtu.be/abc123", true, true, false, false)
		assert.Contains(t, u, "https://www.youtube.com/embed/abc123?")
		assert.Contains(t, u, "autoplay=1")
		assert.Contains(t, u, "mute=1")
		assert.Contains(t, u, "controls=0")
		assert.Contains(t, u, "rel=0")
		assert.Contains(t, u, "playsinline=1")
		assert.Contains(t, u, "disablekb=1")
		assert.NotContains(t, u, "loop=1")
	})

	t.Run("loop sets playlist to own id", func(t *testing.T) {
		u := youTubeEmbedURL("https://youtu.be/abc123", false, false, true, true)
		assert.Contains(t, u, "loop=1")
		assert.Contains(t, u, "playlist=abc123")
		assert.Contains(t, u, "controls=1")
		assert.NotContains(t, u, "autoplay=1")
	})

	t.Run("unextractable id yields empty", func(t *testing.T) {
		assert.Empty(t, youTubeEmbedURL("https://www.youtube.com/", true, true, false, false))
	})
}
