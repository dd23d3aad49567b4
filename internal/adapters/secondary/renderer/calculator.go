package renderer

import (
	"context"
	"fmt"
	"hash/fnv"

	"deckview/internal/domain/entities"
)

// calcWidgetID derives a stable per-slide widget id so scoped styles survive
// re-renders without colliding across slides.
func calcWidgetID(slide *entities.Slide) string {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s|%v", slide.LayoutKey, slide.Fields["task"])
	return fmt.Sprintf("c%08x", h.Sum32())
}

// renderCalculator lays out a task list on the left and a button-driven
// calculator widget on the right. Expression evaluation is delegated to the
// shell script; the markup carries data attributes only.
func renderCalculator(_ context.Context, slide *entities.Slide, h *Helpers, shared Shared) RenderResult {
	f := slide.Fields
	var left string
	if items := f.List("task"); len(items) > 0 {
		left = `<div class="calc-task"><ul>` + bulletList(h, items) + `</ul></div>`
	} else {
		left = `<div class="calc-task"><p>` + h.Escape(f.Str("body")) + `</p></div>`
	}

	id := calcWidgetID(slide)
	widget := fmt.Sprintf(`<div class="calc-widget" id="%s" aria-label="Calculator">`+
		`<input class="calc-display" type="text" inputmode="decimal" aria-label="Expression" placeholder="Enter an expression…" readonly />`+
		`<div class="calc-grid">`+
		`<button data-k="7">7</button><button data-k="8">8</button><button data-k="9">9</button><button data-k="/" title="Divide">÷</button>`+
		`<button data-k="4">4</button><button data-k="5">5</button><button data-k="6">6</button><button data-k="*" title="Multiply">×</button>`+
		`<button data-k="1">1</button><button data-k="2">2</button><button data-k="3">3</button><button data-k="-" title="Minus">−</button>`+
		`<button data-k="0">0</button><button data-k=".">.</button><button data-k="(">(</button><button data-k=")">)</button>`+
		`<button data-act="clear" class="muted" title="Clear">C</button>`+
		`<button data-act="back" class="muted" title="Delete">⌫</button>`+
		`<button data-k="+" class="muted" title="Plus">+</button>`+
		`<button data-act="eq" class="accent" title="Evaluate">=</button>`+
		`</div></div>`, id)

	// Styles are scoped by widget id so they never leak into other slides.
	style := fmt.Sprintf(`<style>`+
		`#%[1]s.calc-widget{display:grid;grid-template-rows:auto 1fr;gap:10px;align-self:stretch}`+
		`#%[1]s .calc-display{width:100%%;font-size:clamp(18px,2.4vw,28px);padding:8px 10px;border-radius:8px;border:1px solid var(--line);color:var(--fg);background:transparent}`+
		`#%[1]s .calc-grid{display:grid;grid-template-columns:repeat(4,minmax(0,1fr));gap:8px;align-content:start}`+
		`#%[1]s .calc-grid button{font-size:clamp(18px,2.2vw,26px);padding:10px;border-radius:10px;border:1px solid var(--line);color:var(--fg);background:var(--card);cursor:pointer}`+
		`#%[1]s .calc-grid button:hover{background:rgba(77,163,255,0.12)}`+
		`#%[1]s .calc-grid button.accent{background:var(--accent);color:#fff;border-color:var(--accent)}`+
		`#%[1]s .calc-grid button.muted{color:var(--muted)}`+
		`</style>`, id)

	right := `<div class="calc-side">` + widget + style + `</div>`
	return RenderResult{HTML: shared.TitleHTML + `<div class="content two-col">` + left + right + `</div>`}
}
