package renderer

import (
	"bytes"
	"context"
	"errors"
	"html"
	"net/url"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"

	"deckview/internal/domain/entities"
	"deckview/internal/domain/ports"
)

// Shared holds the pre-escaped chrome fragments the engine computes once per
// slide and hands to every renderer.
type Shared struct {
	TitleHTML    string
	SubtitleHTML string
}

// Helpers bundles the facilities layout renderers are allowed to touch:
// escaping, asset resolution, sanitization, markdown conversion, document
// fetching, and read access to the live settings and theme.
type Helpers struct {
	assets   ports.AssetResolver
	fetcher  ports.DocumentFetcher
	settings func() entities.Settings
	theme    func() entities.Theme

	trusted *bluemonday.Policy
	md      goldmark.Markdown
}

// NewHelpers creates the renderer helper set. settingsFn and themeFn supply
// the current session settings and active theme; either may be nil, in which
// case zero values are reported.
func NewHelpers(assets ports.AssetResolver, fetcher ports.DocumentFetcher, settingsFn func() entities.Settings, themeFn func() entities.Theme) *Helpers {
	// Trusted custom HTML still goes through a sanitizer: authored markup
	// keeps its formatting and media but cannot script the host shell.
	trusted := bluemonday.UGCPolicy()
	trusted.AllowAttrs("style").Globally()
	trusted.AllowAttrs("class").Globally()
	trusted.AllowElements("video", "audio", "source", "figure", "figcaption")
	trusted.AllowAttrs("src", "controls", "autoplay", "muted", "loop", "playsinline", "poster").OnElements("video", "audio", "source")
	trusted.AllowImages()
	trusted.AllowDataURIImages()

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			goldmarkhtml.WithHardWraps(),
		),
	)

	return &Helpers{
		assets:   assets,
		fetcher:  fetcher,
		settings: settingsFn,
		theme:    themeFn,
		trusted:  trusted,
		md:       md,
	}
}

// Escape HTML-escapes a field value for interpolation into markup.
func (h *Helpers) Escape(s string) string {
	return html.EscapeString(s)
}

// Resolve maps an asset reference to its servable URL.
func (h *Helpers) Resolve(ref string) string {
	if h.assets == nil {
		return ref
	}
	return h.assets.Resolve(ref)
}

// EmbedURL returns the enhanced-document URL for an embedded source. The
// iframe layouts point here so the bridge runs exactly once per load.
func (h *Helpers) EmbedURL(src string) string {
	return "/embed?src=" + url.QueryEscape(src)
}

// Settings returns the current session settings.
func (h *Helpers) Settings() entities.Settings {
	if h.settings == nil {
		return entities.DefaultSettings()
	}
	return h.settings()
}

// Theme returns the active theme.
func (h *Helpers) Theme() entities.Theme {
	if h.theme == nil {
		return entities.Theme{}
	}
	return h.theme()
}

// Sanitize filters authored markup through the trusted-content policy.
func (h *Helpers) Sanitize(markup string) string {
	return h.trusted.Sanitize(markup)
}

// Markdown converts markdown source to HTML. Conversion failures degrade to
// the escaped source.
func (h *Helpers) Markdown(src string) string {
	var buf bytes.Buffer
	if err := h.md.Convert([]byte(src), &buf); err != nil {
		return "<p>" + h.Escape(src) + "</p>"
	}
	return buf.String()
}

// FetchDoc fetches an external document referenced by a slide.
func (h *Helpers) FetchDoc(ctx context.Context, src string) ([]byte, error) {
	if h.fetcher == nil {
		return nil, errors.New("no document fetcher configured")
	}
	return h.fetcher.Fetch(ctx, src)
}
