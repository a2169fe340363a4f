package surface

import (
	"html"
	"sort"
	"strings"

	"github.com/go-weft/weft/pkg/vdom"
)

// voidTags are HTML elements that never carry children and render without
// a closing tag.
var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// HTML is a headless string-building surface: it maintains the same
// mutable tree as Memory and serializes it to deterministic HTML on
// demand. Attribute order is sorted and text is escaped, so equal trees
// always render to equal strings.
type HTML struct {
	Memory
}

// NewHTML returns an empty HTML surface.
func NewHTML() *HTML {
	return &HTML{}
}

// Render serializes the current tree. An empty surface renders to "".
func (h *HTML) Render() string {
	snapshot, err := h.Snapshot()
	if err != nil {
		return ""
	}
	return RenderNode(snapshot)
}

// RenderNode serializes a snapshot tree without a surface.
func RenderNode(n vdom.Node) string {
	var sb strings.Builder
	renderNode(&sb, n)
	return sb.String()
}

func renderNode(sb *strings.Builder, n vdom.Node) {
	switch n.Kind {
	case vdom.KindText:
		sb.WriteString(html.EscapeString(n.Text))
	case vdom.KindFragment:
		for _, c := range n.Children {
			renderNode(sb, c)
		}
	case vdom.KindComponent:
		// Unresolved component references have no concrete markup; leave a
		// marker so the omission is visible in output.
		sb.WriteString("<!-- unresolved component -->")
	case vdom.KindElement:
		sb.WriteString("<")
		sb.WriteString(n.Tag)
		for _, name := range sortedAttrNames(n.Attrs) {
			sb.WriteString(" ")
			sb.WriteString(name)
			sb.WriteString(`="`)
			sb.WriteString(html.EscapeString(n.Attrs[name]))
			sb.WriteString(`"`)
		}
		if voidTags[n.Tag] {
			sb.WriteString("/>")
			return
		}
		sb.WriteString(">")
		for _, c := range n.Children {
			renderNode(sb, c)
		}
		sb.WriteString("</")
		sb.WriteString(n.Tag)
		sb.WriteString(">")
	}
}

func sortedAttrNames(attrs vdom.Attrs) []string {
	if len(attrs) == 0 {
		return nil
	}
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
