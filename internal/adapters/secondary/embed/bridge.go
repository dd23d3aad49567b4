// Package embed implements the embedded-document bridge: it fetches an
// external HTML document referenced by a slide and injects the glue that
// makes it behave as part of the presentation, in one server-side pass.
//
// The injected block carries a <base> element so the document's relative
// references keep working, theme CSS mapping the host variables onto the
// document, and a script that forwards key presses to the parent shell and
// listens for theme pushes.
package embed

import (
	"context"
	"fmt"
	"strings"

	"deckview/internal/domain/entities"
	"deckview/internal/domain/ports"
)

// Bridge enhances embedded HTML documents.
type Bridge struct {
	assets  ports.AssetResolver
	fetcher ports.DocumentFetcher
	theme   func() entities.Theme

	// AssetBytes looks up raw bytes for an uploaded asset, bypassing the
	// fetch when the document came in through the upload endpoint. Optional.
	AssetBytes func(ref string) ([]byte, bool)
}

// NewBridge creates the bridge. themeFn supplies the active theme for the
// injected CSS; nil means default colors.
func NewBridge(assets ports.AssetResolver, fetcher ports.DocumentFetcher, themeFn func() entities.Theme) *Bridge {
	return &Bridge{assets: assets, fetcher: fetcher, theme: themeFn}
}

// Enhance resolves src, loads the document body, and returns the markup with
// the bridge block injected before </head>. Documents without a head get one
// synthesized. Any load failure is returned so the caller can fall back to
// serving the plain resolved src.
func (b *Bridge) Enhance(ctx context.Context, src string) (string, error) {
	resolved := src
	if b.assets != nil {
		resolved = b.assets.Resolve(src)
	}

	var body []byte
	if b.AssetBytes != nil {
		if raw, ok := b.AssetBytes(src); ok {
			body = raw
		}
	}
	if body == nil {
		raw, err := b.fetcher.Fetch(ctx, resolved)
		if err != nil {
			return "", fmt.Errorf("loading embedded document %q: %w", src, err)
		}
		body = raw
	}

	return injectHead(string(body), b.injectionBlock(resolved)), nil
}

// ResolvedSrc returns the plain resolved URL for the fallback path.
func (b *Bridge) ResolvedSrc(src string) string {
	if b.assets == nil {
		return src
	}
	return b.assets.Resolve(src)
}

func (b *Bridge) activeTheme() entities.Theme {
	if b.theme == nil {
		return entities.Theme{}
	}
	return b.theme()
}

// injectionBlock builds the head block for one document load. The background
// light check decides stroke contrast and the markmap-dark class; it is
// independent of the theme broadcast's dark flag.
func (b *Bridge) injectionBlock(baseHref string) string {
	theme := b.activeTheme()
	p := theme.Palette()
	isLight := entities.IsLightColor(p.Background)

	stroke := "#2a2f3a"
	darkFlag := 1
	if isLight {
		stroke = "#94a3b8"
		darkFlag = 0
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n<base href=%q>\n<meta charset=\"utf-8\">\n", baseHref)
	fmt.Fprintf(&sb, "<style>\n:root{--bg:%s;--fg:%s;--accent:%s;--muted:%s}\n", p.Background, p.Foreground, p.Accent, p.Muted)
	sb.WriteString("html,body{height:100%;margin:0;background:var(--bg);color:var(--fg);overflow:hidden}\n")
	sb.WriteString("svg text{fill:var(--fg) !important}\n")
	fmt.Fprintf(&sb, "path, line{stroke:%s !important}\n", stroke)
	sb.WriteString("svg{width:100% !important;height:100% !important;display:block}\n</style>\n")

	fmt.Fprintf(&sb, `<script>(function(){
  try{document.documentElement.classList.toggle('markmap-dark', %d==1);}catch(_){}
  window.addEventListener('keydown',function(e){try{parent.postMessage({__pptNav:true,key:e.key,shift:e.shiftKey,alt:e.altKey,ctrl:e.ctrlKey},'*')}catch(_){}});
  window.addEventListener('message',function(e){var m=e.data;if(!m||!m.__mmTheme)return;try{var v=m.__mmTheme;var r=document.documentElement;r.style.setProperty('--bg',v.bg);r.style.setProperty('--card',v.card||v.bg);r.style.setProperty('--fg',v.fg);r.style.setProperty('--accent',v.accent);r.style.setProperty('--muted',v.muted);r.classList.toggle('markmap-dark',!!v.isDark);if(window.mm&&window.mm.fit)setTimeout(function(){window.mm.fit()},30);}catch(_){}});
  function fit(){try{if(window.mm&&typeof window.mm.fit==='function'){window.mm.fit();}}catch(_){}}
  window.addEventListener('load',function(){setTimeout(fit,50);});
  window.addEventListener('resize',function(){setTimeout(fit,50);});
})();</script>`, darkFlag)

	return sb.String()
}

// injectHead inserts the block before the document's closing head tag, or
// synthesizes a head when the document has none.
func injectHead(doc, block string) string {
	for _, tag := range []string{"</head>", "</HEAD>"} {
		if i := strings.Index(doc, tag); i >= 0 {
			return doc[:i] + block + "\n" + doc[i:]
		}
	}
	return "<head>" + block + "</head>" + doc
}
