package renderer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"deckview/internal/domain/entities"
)

// Mindmap layout geometry.
const (
	mmVerticalGap   = 44
	mmHorizontalGap = 140
	mmNodeHeight    = 32
)

// mmTree is the mindmap document shape: a root node with up to two levels of
// children laid out around it.
type mmTree struct {
	Text     string   `json:"text"`
	Children []mmTree `json:"children"`
}

type mmNode struct {
	x, y  float64
	w, h  float64
	text  string
	side  int
	depth int
}

type mmLink struct{ from, to int }

// renderMindmap renders a mindmap as inline SVG. The tree comes from the
// mm_tree field, or from a JSON document referenced by src. Pan, zoom, and
// fit-to-viewport stay client-side; the markup carries the laid-out geometry.
func renderMindmap(ctx context.Context, slide *entities.Slide, h *Helpers, shared Shared) RenderResult {
	tree := loadMindmapTree(ctx, slide, h)
	svg := mindmapSVG(tree, h.Theme())
	return RenderResult{HTML: shared.TitleHTML + `<div class="mindmap" data-mindmap>` + svg + `</div>`}
}

func loadMindmapTree(ctx context.Context, slide *entities.Slide, h *Helpers) mmTree {
	f := slide.Fields
	if raw, ok := f["mm_tree"]; ok {
		if data, err := json.Marshal(raw); err == nil {
			var t mmTree
			if err := json.Unmarshal(data, &t); err == nil && t.Text != "" {
				return t
			}
		}
	}
	if src := f.Str("src"); src != "" {
		if data, err := h.FetchDoc(ctx, h.Resolve(src)); err == nil {
			var t mmTree
			if err := json.Unmarshal(data, &t); err == nil && t.Text != "" {
				return t
			}
		}
	}
	return mmTree{Text: "Mindmap", Children: []mmTree{{Text: "Item 1"}, {Text: "Item 2"}}}
}

func mmNodeSize(text string) (float64, float64) {
	w := float64(utf8.RuneCountInString(text))*9 + 30
	if w < 110 {
		w = 110
	}
	return w, mmNodeHeight
}

// layoutMindmap places the root at the origin and splits first-level
// children into a left and right half, stacking each half vertically and
// hanging grandchildren one horizontal step further out.
func layoutMindmap(tree mmTree) ([]mmNode, []mmLink) {
	var nodes []mmNode
	var links []mmLink

	add := func(x, y float64, text string, depth, side, parent int) int {
		w, hh := mmNodeSize(text)
		nodes = append(nodes, mmNode{x: x, y: y, w: w, h: hh, text: text, side: side, depth: depth})
		idx := len(nodes) - 1
		if parent >= 0 {
			links = append(links, mmLink{from: parent, to: idx})
		}
		return idx
	}

	rootText := tree.Text
	if rootText == "" {
		rootText = "Mindmap"
	}
	root := add(0, 0, rootText, 0, 0, -1)
	rootW := nodes[root].w

	split := (len(tree.Children) + 1) / 2
	left := tree.Children[:split]
	right := tree.Children[split:]

	layoutSide := func(children []mmTree, side int) {
		baseY := -float64(len(children)-1) * mmVerticalGap / 2
		for i, child := range children {
			w, _ := mmNodeSize(child.Text)
			x := float64(side) * (rootW/2 + mmHorizontalGap + w/2)
			y := baseY + float64(i)*mmVerticalGap
			idx := add(x, y, child.Text, 1, side, root)

			baseY2 := y - float64(len(child.Children)-1)*mmVerticalGap/2
			for j, grand := range child.Children {
				gw, _ := mmNodeSize(grand.Text)
				gx := x + float64(side)*(mmHorizontalGap+gw/2+w/2)
				gy := baseY2 + float64(j)*mmVerticalGap
				add(gx, gy, grand.Text, 2, side, idx)
			}
		}
	}
	layoutSide(left, -1)
	layoutSide(right, 1)

	return nodes, links
}

func mindmapSVG(tree mmTree, theme entities.Theme) string {
	nodes, links := layoutMindmap(tree)
	p := theme.Palette()
	bg := p.Card
	if bg == "" {
		bg = p.Background
	}

	var b strings.Builder
	b.WriteString(`<svg class="mm-svg" role="img" style="width:100%;height:100%"><g class="mm-viewport">`)

	b.WriteString(`<g class="mm-links">`)
	for _, l := range links {
		a, c := nodes[l.from], nodes[l.to]
		x1 := a.x + edgeOffset(a)
		x2 := c.x - attachOffset(c)
		mx := (x1 + x2) / 2
		fmt.Fprintf(&b, `<path d="M %.1f %.1f C %.1f %.1f, %.1f %.1f, %.1f %.1f" stroke="%s" fill="none" stroke-width="2"/>`,
			x1, a.y, mx, a.y, mx, c.y, x2, c.y, escapeAttr(p.Line))
	}
	b.WriteString(`</g>`)

	b.WriteString(`<g class="mm-nodes">`)
	for i, n := range nodes {
		fill := shadeHex(bg, 0.02)
		if i == 0 {
			fill = shadeHex(bg, 0.08)
		}
		fmt.Fprintf(&b, `<g transform="translate(%.1f, %.1f)">`, n.x-n.w/2, n.y-n.h/2)
		fmt.Fprintf(&b, `<rect width="%.0f" height="%.0f" rx="6" ry="6" fill="%s" stroke="%s"/>`,
			n.w, n.h, escapeAttr(fill), escapeAttr(p.Line))
		fmt.Fprintf(&b, `<text x="10" y="%.0f" dominant-baseline="middle" fill="%s">%s</text>`,
			n.h/2+1, escapeAttr(p.Foreground), escapeText(n.text))
		b.WriteString(`</g>`)
	}
	b.WriteString(`</g></g></svg>`)

	return b.String()
}

// edgeOffset is the outgoing link anchor: the node's far edge on its side.
func edgeOffset(n mmNode) float64 {
	if n.side >= 0 {
		return n.w / 2
	}
	return -n.w / 2
}

// attachOffset is the incoming link anchor: the node's near edge.
func attachOffset(n mmNode) float64 {
	if n.side >= 0 {
		return n.w / 2
	}
	return -n.w / 2
}

// shadeHex lightens (positive) or darkens (negative) a hex color by a
// fraction of full scale. Non-hex input passes through.
func shadeHex(hex string, amt float64) string {
	r, g, b, ok := entities.ParseHexColor(hex)
	if !ok {
		return hex
	}
	delta := int(255*amt + 0.5)
	if amt < 0 {
		delta = -int(-255*amt + 0.5)
	}
	clamp := func(v int) int {
		if v < 0 {
			return 0
		}
		if v > 255 {
			return 255
		}
		return v
	}
	return fmt.Sprintf("#%02x%02x%02x", clamp(int(r)+delta), clamp(int(g)+delta), clamp(int(b)+delta))
}

func escapeAttr(s string) string {
	return strings.NewReplacer(`&`, "&amp;", `"`, "&quot;", `<`, "&lt;", `>`, "&gt;").Replace(s)
}

func escapeText(s string) string {
	return strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;").Replace(s)
}
