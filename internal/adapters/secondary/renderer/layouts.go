package renderer

import (
	"context"
	"fmt"
	"strings"

	"deckview/internal/domain/entities"
)

// Built-in layout keys.
const (
	LayoutTitle           = "Title Slide"
	LayoutTitleContent    = "Title and Content"
	LayoutImageOnly       = "Image Only"
	LayoutVideo           = "Video Slide"
	LayoutIFrame          = "IFrame"
	LayoutMarkmapExport   = "Markmap Export"
	LayoutMindmap         = "Mindmap"
	LayoutCustom          = "Custom"
	LayoutMarkdown        = "Markdown"
	LayoutAgenda          = "Agenda / Outline Slide"
	LayoutComparison      = "Comparison Slide"
	LayoutProblemSolution = "Problem–Solution Slide"
	LayoutProcess         = "Process / Flow Slide"
	LayoutQuote           = "Quote / Key Message Slide"
	LayoutTeam            = "Team / Organizational Slide"
	LayoutSummary         = "Summary / Thank You Slide"
	LayoutThreeColumns    = "Three Columns Image+Text Slide"
	LayoutTextImage       = "Text + Image Slide"
	LayoutChart           = "Chart / Graph Slide"
	LayoutCalculator      = "Calculator"

	// LayoutCalculatorUk is the Ukrainian key older decks author the
	// calculator layout under.
	LayoutCalculatorUk = "Давайте порахуємо"
)

func registerBuiltins(r *Registry) {
	r.RegisterFunc(DefaultKey, renderDefault)
	r.RegisterFunc(LayoutTitle, renderTitle)
	r.RegisterFunc(LayoutTitleContent, renderTitleContent)
	r.RegisterFunc(LayoutImageOnly, renderImageOnly)
	r.RegisterFunc(LayoutVideo, renderVideo)
	r.RegisterFunc(LayoutIFrame, renderIFrame)
	r.RegisterFunc(LayoutMarkmapExport, renderMarkmapExport)
	r.RegisterFunc(LayoutMindmap, renderMindmap)
	r.RegisterFunc(LayoutCustom, renderCustom)
	r.RegisterFunc(LayoutMarkdown, renderMarkdown)
	r.RegisterFunc(LayoutAgenda, renderAgenda)
	r.RegisterFunc(LayoutComparison, renderComparison)
	r.RegisterFunc(LayoutProblemSolution, renderProblemSolution)
	r.RegisterFunc(LayoutProcess, renderProcess)
	r.RegisterFunc(LayoutQuote, renderQuote)
	r.RegisterFunc(LayoutTeam, renderTeam)
	r.RegisterFunc(LayoutSummary, renderSummary)
	r.RegisterFunc(LayoutThreeColumns, renderThreeColumns)
	r.RegisterFunc(LayoutTextImage, renderTextImage)
	r.RegisterFunc(LayoutChart, renderChart)
	r.RegisterFunc(LayoutCalculator, renderCalculator)
	r.RegisterFunc(LayoutCalculatorUk, renderCalculator)
}

// bulletList renders field items as <li> elements, coercing a bare string to
// a one-item list.
func bulletList(h *Helpers, items []any) string {
	var b strings.Builder
	for _, it := range items {
		if s, ok := it.(string); ok {
			b.WriteString("<li>")
			b.WriteString(h.Escape(s))
			b.WriteString("</li>")
		}
	}
	return b.String()
}

// bodyBlock renders the free-form body field: a list becomes bullets, a
// string becomes a paragraph, anything else an empty paragraph.
func bodyBlock(h *Helpers, f entities.Fields) string {
	switch v := f["body"].(type) {
	case []any:
		return "<ul>" + bulletList(h, v) + "</ul>"
	case string:
		return "<p>" + h.Escape(v) + "</p>"
	default:
		return "<p></p>"
	}
}

// sizeStyle renders optional w/h fields into an inline style, with defH used
// when no height is given.
func sizeStyle(h *Helpers, f entities.Fields, defH string) string {
	var b strings.Builder
	if w := f.Str("w"); w != "" {
		fmt.Fprintf(&b, "width:%s;", h.Escape(w))
	}
	if hh := f.Str("h"); hh != "" {
		fmt.Fprintf(&b, "height:%s;", h.Escape(hh))
	} else if defH != "" {
		fmt.Fprintf(&b, "height:%s;", defH)
	}
	return b.String()
}

func renderDefault(_ context.Context, slide *entities.Slide, h *Helpers, shared Shared) RenderResult {
	body := ""
	switch v := slide.Fields["body"].(type) {
	case []any:
		body = "<ul>" + bulletList(h, v) + "</ul>"
	case string:
		body = "<p>" + h.Escape(v) + "</p>"
	}
	return RenderResult{HTML: shared.TitleHTML + shared.SubtitleHTML + `<div class="content">` + body + `</div>`}
}

func renderTitle(_ context.Context, _ *entities.Slide, h *Helpers, shared Shared) RenderResult {
	bg := h.Resolve("logo/title.png")
	logo := h.Resolve("logo/logo.png")
	html := fmt.Sprintf(`<div class="title-hero">`+
		`<img class="title-bg" src="%s" alt="" onerror="this.style.display='none'">`+
		`<div class="title-veil"></div>`+
		`<div class="title-center"><img class="title-logo-big" src="%s" alt="" onerror="this.style.display='none'">%s%s</div>`+
		`</div>`,
		h.Escape(bg), h.Escape(logo), shared.TitleHTML, shared.SubtitleHTML)
	return RenderResult{HTML: html, Classes: []string{"title-hero-present"}}
}

func renderTitleContent(_ context.Context, slide *entities.Slide, h *Helpers, shared Shared) RenderResult {
	return RenderResult{HTML: shared.TitleHTML + `<div class="content">` + bodyBlock(h, slide.Fields) + `</div>`}
}

func renderImageOnly(_ context.Context, slide *entities.Slide, h *Helpers, shared Shared) RenderResult {
	var b strings.Builder
	for _, img := range slide.Fields.Maps("images") {
		fit := strings.ToLower(img.StrOr("fit", "contain"))
		style := sizeStyle(h, img, "")
		fmt.Fprintf(&b, `<div class="media %s" style="%s"><img src="%s" alt="%s"></div>`,
			h.Escape(fit), style, h.Escape(h.Resolve(img.Str("src"))), h.Escape(img.Str("alt")))
	}
	title := ""
	if slide.Title() != "" {
		title = shared.TitleHTML
	}
	return RenderResult{HTML: title + b.String()}
}

func renderVideo(_ context.Context, slide *entities.Slide, h *Helpers, shared Shared) RenderResult {
	var b strings.Builder
	withControls := false
	for _, v := range slide.Fields.Maps("videos") {
		src := v.Str("src")
		autoplay := v.BoolOr("autoplay", true)
		// Autoplay only works muted in modern browsers, so autoplay forces
		// the mute regardless of the authored value.
		muted := v.BoolOr("muted", true) || autoplay
		controls := v.BoolOr("controls", false)
		loop := v.BoolOr("loop", false)
		if controls {
			withControls = true
		}

		if isYouTubeURL(src) {
			embed := youTubeEmbedURL(src, autoplay, muted, controls, loop)
			if embed == "" {
				continue
			}
			fmt.Fprintf(&b, `<div class="embed"><iframe tabindex="-1" src="%s" allow="accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture; web-share" allowfullscreen loading="lazy"></iframe></div>`,
				h.Escape(embed))
			continue
		}

		attrs := make([]string, 0, 5)
		if controls {
			attrs = append(attrs, "controls")
		}
		if autoplay {
			attrs = append(attrs, "autoplay")
		}
		if loop {
			attrs = append(attrs, "loop")
		}
		if muted {
			attrs = append(attrs, "muted")
		}
		attrs = append(attrs, "playsinline")
		fmt.Fprintf(&b, `<div class="media contain"><video %s src="%s"></video></div>`,
			strings.Join(attrs, " "), h.Escape(h.Resolve(src)))
	}

	var classes []string
	if withControls {
		classes = []string{"video-controls"}
	}
	return RenderResult{HTML: shared.TitleHTML + b.String(), Classes: classes}
}

func renderIFrame(_ context.Context, slide *entities.Slide, h *Helpers, shared Shared) RenderResult {
	f := slide.Fields
	src := h.EmbedURL(f.Str("src"))
	style := sizeStyle(h, f, "100%")
	center := 0
	if f.BoolOr("center", true) {
		center = 1
	}
	frame := fmt.Sprintf(`<iframe src="%s" allowfullscreen data-center="%d"></iframe>`, h.Escape(src), center)
	if f.Truthy("pannable") {
		return RenderResult{HTML: shared.TitleHTML + fmt.Sprintf(
			`<div class="embed pan-container" style="%s" data-pannable><div class="pan-content">%s</div></div>`, style, frame)}
	}
	return RenderResult{HTML: shared.TitleHTML + fmt.Sprintf(`<div class="embed" style="%s">%s</div>`, style, frame)}
}

func renderMarkmapExport(_ context.Context, slide *entities.Slide, h *Helpers, shared Shared) RenderResult {
	f := slide.Fields
	src := h.EmbedURL(f.Str("src"))
	style := sizeStyle(h, f, "100%")
	center := 0
	if f.BoolOr("center", true) {
		center = 1
	}
	return RenderResult{HTML: shared.TitleHTML + fmt.Sprintf(
		`<div class="embed" style="%s"><iframe src="%s" allowfullscreen data-center="%d" data-mmexport="1"></iframe></div>`,
		style, h.Escape(src), center)}
}

func renderCustom(_ context.Context, slide *entities.Slide, h *Helpers, shared Shared) RenderResult {
	markup := slide.Fields.Str("html")
	var safe string
	if h.Settings().TrustedHTML {
		safe = h.Sanitize(markup)
	} else {
		safe = h.Escape(markup)
	}
	return RenderResult{HTML: shared.TitleHTML + `<div class="content">` + safe + `</div>`}
}

func renderMarkdown(_ context.Context, slide *entities.Slide, h *Helpers, shared Shared) RenderResult {
	src := slide.Fields.StrOr("markdown", slide.Fields.Str("body"))
	return RenderResult{HTML: shared.TitleHTML + `<div class="content markdown">` + h.Markdown(src) + `</div>`}
}

func renderAgenda(_ context.Context, slide *entities.Slide, h *Helpers, shared Shared) RenderResult {
	items := slide.Fields.List("items")
	if len(items) == 0 {
		items = slide.Fields.List("body")
	}
	return RenderResult{HTML: shared.TitleHTML + `<div class="content"><ul class="agenda">` + bulletList(h, items) + `</ul></div>`}
}

func renderComparison(_ context.Context, slide *entities.Slide, h *Helpers, shared Shared) RenderResult {
	f := slide.Fields
	type column struct {
		title string
		items []any
	}
	cols := []column{
		{title: f.StrOr("a_title", "A"), items: f.List("a")},
		{title: f.StrOr("b_title", "B"), items: f.List("b")},
	}
	if _, ok := f["c"]; ok {
		cols = append(cols, column{title: f.StrOr("c_title", "C"), items: f.List("c")})
	}
	var b strings.Builder
	for _, c := range cols {
		fmt.Fprintf(&b, `<div class="cmp-col"><h3>%s</h3><ul>%s</ul></div>`, h.Escape(c.title), bulletList(h, c.items))
	}
	return RenderResult{HTML: shared.TitleHTML + `<div class="content cmp-grid">` + b.String() + `</div>`}
}

func renderProblemSolution(_ context.Context, slide *entities.Slide, h *Helpers, shared Shared) RenderResult {
	f := slide.Fields
	prob := fmt.Sprintf(`<div class="col"><h3>%s</h3><ul>%s</ul></div>`,
		h.Escape(f.StrOr("problem_title", "Problem")), bulletList(h, f.List("problem")))
	sol := fmt.Sprintf(`<div class="col"><h3>%s</h3><ul>%s</ul></div>`,
		h.Escape(f.StrOr("solution_title", "Solution")), bulletList(h, f.List("solution")))
	return RenderResult{HTML: shared.TitleHTML + `<div class="content two-col">` + prob + sol + `</div>`}
}

func renderProcess(_ context.Context, slide *entities.Slide, h *Helpers, shared Shared) RenderResult {
	steps := slide.Fields.Strings("steps")
	parts := make([]string, 0, len(steps))
	for i, s := range steps {
		parts = append(parts, fmt.Sprintf(`<div class="step"><span class="idx">%d</span><span class="txt">%s</span></div>`, i+1, h.Escape(s)))
	}
	return RenderResult{HTML: shared.TitleHTML + `<div class="content flow">` + strings.Join(parts, `<div class="arrow">→</div>`) + `</div>`}
}

func renderQuote(_ context.Context, slide *entities.Slide, h *Helpers, shared Shared) RenderResult {
	f := slide.Fields
	quote := h.Escape(f.StrOr("quote", f.Str("text")))
	author := ""
	if a := f.Str("author"); a != "" {
		author = `<footer>— ` + h.Escape(a) + `</footer>`
	}
	photo := ""
	if p := f.Map("photo"); p.Str("src") != "" {
		photo = fmt.Sprintf(`<div class="q-photo"><img src="%s" alt="%s"></div>`,
			h.Escape(h.Resolve(p.Str("src"))), h.Escape(p.Str("alt")))
	}
	return RenderResult{HTML: shared.TitleHTML + `<div class="content quote"><blockquote>` + quote + author + `</blockquote>` + photo + `</div>`}
}

func renderTeam(_ context.Context, slide *entities.Slide, h *Helpers, shared Shared) RenderResult {
	var b strings.Builder
	for _, p := range slide.Fields.Maps("members") {
		photo := ""
		if src := p.Str("photo"); src != "" {
			photo = fmt.Sprintf(`<img src="%s" alt="%s">`, h.Escape(h.Resolve(src)), h.Escape(p.Str("name")))
		}
		fmt.Fprintf(&b, `<div class="member">%s<div class="name">%s</div><div class="role">%s</div></div>`,
			photo, h.Escape(p.Str("name")), h.Escape(p.Str("role")))
	}
	return RenderResult{HTML: shared.TitleHTML + `<div class="content team-grid">` + b.String() + `</div>`}
}

func renderSummary(_ context.Context, slide *entities.Slide, h *Helpers, shared Shared) RenderResult {
	f := slide.Fields
	var b strings.Builder
	if points := f.List("points"); len(points) > 0 {
		b.WriteString("<ul>" + bulletList(h, points) + "</ul>")
	}
	if contacts := f.Str("contacts"); contacts != "" {
		b.WriteString(`<div class="contacts">` + h.Escape(contacts) + `</div>`)
	}
	if qr := f.Map("qr"); qr.Str("src") != "" {
		fmt.Fprintf(&b, `<div class="qr"><img src="%s" alt="QR"></div>`, h.Escape(h.Resolve(qr.Str("src"))))
	}
	fmt.Fprintf(&b, `<div class="thanks">%s</div>`, h.Escape(f.StrOr("thanks", "Thank you for your attention!")))
	return RenderResult{HTML: shared.TitleHTML + `<div class="content summary">` + b.String() + `</div>`}
}

func renderThreeColumns(_ context.Context, slide *entities.Slide, h *Helpers, shared Shared) RenderResult {
	var b strings.Builder
	for _, c := range slide.Fields.Maps("columns") {
		pos := "top"
		if c.Str("imagePos") == "bottom" {
			pos = "bottom"
		}
		img := ""
		if im := c.Map("img"); im.Str("src") != "" {
			img = fmt.Sprintf(`<div class="tc-img"><img src="%s" alt="%s"></div>`,
				h.Escape(h.Resolve(im.Str("src"))), h.Escape(im.Str("alt")))
		}
		var text strings.Builder
		for _, t := range c.List("text") {
			if s, ok := t.(string); ok {
				text.WriteString("<p>" + h.Escape(s) + "</p>")
			}
		}
		if pos == "top" {
			fmt.Fprintf(&b, `<div class="tc-col top">%s%s</div>`, img, text.String())
		} else {
			fmt.Fprintf(&b, `<div class="tc-col bottom">%s%s</div>`, text.String(), img)
		}
	}
	return RenderResult{HTML: shared.TitleHTML + `<div class="content three-cols">` + b.String() + `</div>`}
}

func renderTextImage(_ context.Context, slide *entities.Slide, h *Helpers, shared Shared) RenderResult {
	f := slide.Fields
	list := bulletList(h, f.List("body"))
	img := f.Map("image")
	if img == nil {
		img = f.Map("img")
	}
	imageHTML := ""
	if src := img.Str("src"); src != "" {
		imageHTML = fmt.Sprintf(`<div class="ti-image"><img src="%s" alt="%s"></div>`,
			h.Escape(h.Resolve(src)), h.Escape(img.Str("alt")))
	}
	textHTML := `<div class="ti-text"><ul>` + list + `</ul></div>`
	content := textHTML + imageHTML
	if strings.ToLower(img.Str("pos")) == "left" {
		content = imageHTML + textHTML
	}
	return RenderResult{HTML: shared.TitleHTML + `<div class="content two-col">` + content + `</div>`}
}

func renderChart(_ context.Context, slide *entities.Slide, h *Helpers, shared Shared) RenderResult {
	f := slide.Fields
	img := f.Map("chartImage")
	if img == nil {
		img = f.Map("image")
	}
	var figure string
	if src := img.Str("src"); src != "" {
		alt := img.StrOr("alt", f.StrOr("title", "Chart"))
		caption := ""
		if c := f.Str("caption"); c != "" {
			caption = "<figcaption>" + h.Escape(c) + "</figcaption>"
		}
		height := img.StrOr("h", f.StrOr("h", "380px"))
		figure = fmt.Sprintf(`<figure class="chart"><img src="%s" alt="%s" style="height:%s;width:auto;object-fit:contain">%s</figure>`,
			h.Escape(h.Resolve(src)), h.Escape(alt), h.Escape(height), caption)
	} else {
		figure = `<div class="chart placeholder">` + h.Escape(f.StrOr("placeholder", "Chart goes here")) + `</div>`
	}
	return RenderResult{HTML: shared.TitleHTML + `<div class="content">` + figure + `</div>`}
}
