package renderer

import (
	"net/url"
	"regexp"
	"strings"
)

var youTubeHost = regexp.MustCompile(`(?i)^(https?://)?(www\.)?(youtube\.com|youtu\.be)/`)

func isYouTubeURL(raw string) bool {
	return youTubeHost.MatchString(raw)
}

// youTubeVideoID extracts the video id from watch, short, and embed URL
// forms. Empty when no id can be found.
func youTubeVideoID(raw string) string {
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if strings.Contains(u.Hostname(), "youtu.be") {
		return strings.TrimPrefix(u.Path, "/")
	}
	if v := u.Query().Get("v"); v != "" {
		return v
	}
	if rest, ok := strings.CutPrefix(u.Path, "/embed/"); ok {
		if i := strings.IndexAny(rest, "/?#"); i >= 0 {
			rest = rest[:i]
		}
		return rest
	}
	return ""
}

// youTubeEmbedURL rewrites a YouTube URL to its embed form with playback
// parameters. Looping requires the playlist parameter set to the video's own
// id. Empty when the id cannot be extracted.
func youTubeEmbedURL(raw string, autoplay, muted, controls, loop bool) string {
	id := youTubeVideoID(raw)
	if id == "" {
		return ""
	}
	params := url.Values{}
	if autoplay {
		params.Set("autoplay", "1")
	}
	if muted {
		params.Set("mute", "1")
	}
	if controls {
		params.Set("controls", "1")
	} else {
		params.Set("controls", "0")
	}
	if loop {
		params.Set("loop", "1")
		params.Set("playlist", id)
	}
	params.Set("rel", "0")
	params.Set("playsinline", "1")
	params.Set("disablekb", "1")
	return "https://www.youtube.com/embed/" + url.PathEscape(id) + "?" + params.Encode()
}
