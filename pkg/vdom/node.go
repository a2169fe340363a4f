package vdom

import (
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Kind discriminates the node variants.
type Kind int

const (
	// KindElement is a tagged element with attributes and children.
	KindElement Kind = iota
	// KindText is a leaf holding a string.
	KindText
	// KindFragment groups an ordered child sequence without an enclosing element.
	KindFragment
	// KindComponent embeds a component reference in render output. The
	// runtime resolves these before diffing; the diff engine never recurses
	// into one.
	KindComponent
)

func (k Kind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindText:
		return "text"
	case KindFragment:
		return "fragment"
	case KindComponent:
		return "component"
	default:
		return "invalid"
	}
}

// ComponentRef is an opaque handle to a component descriptor embedded in
// render output. The concrete type lives in the runtime package; vdom only
// needs identity for defensive comparisons.
type ComponentRef interface {
	ComponentName() string
	ComponentKey() string
}

// Event is the payload a target surface delivers into a binding.
type Event struct {
	Name    string
	Payload any
}

// EventHandler is the single callable type for element event handlers.
type EventHandler func(Event)

// Binding pairs an event handler with a stable identity. Go functions are
// not comparable, so the diff engine compares Ref instead: two bindings
// with the same ref are the same binding.
type Binding struct {
	Ref     string
	Handler EventHandler
}

// NewBinding wraps a handler with a fresh unique ref. A binding recreated
// on every render gets a new ref and therefore an UpdateEventBinding patch
// each pass; use StableBinding when the handler survives re-renders.
func NewBinding(h EventHandler) *Binding {
	return &Binding{Ref: uuid.NewString(), Handler: h}
}

// StableBinding wraps a handler with a caller-chosen ref.
func StableBinding(ref string, h EventHandler) *Binding {
	return &Binding{Ref: ref, Handler: h}
}

// Attrs maps attribute names to string values. Insertion order carries no
// meaning; renderers sort keys for deterministic output.
type Attrs map[string]string

// Node is one immutable snapshot in a rendered tree. Construct nodes with
// Elem, Text, Fragment or Embed and treat them as frozen afterwards; a
// render pass always builds a brand-new tree.
type Node struct {
	Kind      Kind
	Tag       string
	Attrs     Attrs
	Bindings  map[string]*Binding
	Children  []Node
	Key       string
	Text      string
	Component ComponentRef
}

// Elem constructs an element node.
func Elem(tag string, attrs Attrs, children ...Node) Node {
	return Node{Kind: KindElement, Tag: tag, Attrs: attrs, Children: children}
}

// Text constructs a text node.
func Text(text string) Node {
	return Node{Kind: KindText, Text: text}
}

// Fragment constructs a fragment node.
func Fragment(children ...Node) Node {
	return Node{Kind: KindFragment, Children: children}
}

// Embed constructs a component node around ref. The runtime replaces it
// with the component's rendered subtree during resolution.
func Embed(ref ComponentRef) Node {
	key := ""
	if ref != nil {
		key = ref.ComponentKey()
	}
	return Node{Kind: KindComponent, Component: ref, Key: key}
}

// WithKey returns a copy of n carrying the given sibling key.
func (n Node) WithKey(key string) Node {
	n.Key = key
	return n
}

// On returns a copy of n with binding b registered for the named event.
// A nil binding removes the event.
func (n Node) On(name string, b *Binding) Node {
	bindings := make(map[string]*Binding, len(n.Bindings)+1)
	for k, v := range n.Bindings {
		bindings[k] = v
	}
	if b == nil {
		delete(bindings, name)
	} else {
		bindings[name] = b
	}
	n.Bindings = bindings
	return n
}

// Equal reports structural equality of two trees. It exists for tests and
// surface verification; the framework never uses it to skip a diff, since
// comparing large trees is not assumed cheaper than diffing them.
func Equal(a, b Node) bool {
	if a.Kind != b.Kind || a.Tag != b.Tag || a.Key != b.Key || a.Text != b.Text {
		return false
	}
	if a.Kind == KindComponent {
		return sameRef(a.Component, b.Component)
	}
	if len(a.Attrs) != len(b.Attrs) || len(a.Bindings) != len(b.Bindings) || len(a.Children) != len(b.Children) {
		return false
	}
	for k, v := range a.Attrs {
		if bv, ok := b.Attrs[k]; !ok || bv != v {
			return false
		}
	}
	for k, v := range a.Bindings {
		bv, ok := b.Bindings[k]
		if !ok || (v == nil) != (bv == nil) {
			return false
		}
		if v != nil && v.Ref != bv.Ref {
			return false
		}
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

func sameRef(a, b ComponentRef) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ComponentName() == b.ComponentName() && a.ComponentKey() == b.ComponentKey()
}

// String renders a compact single-line description, for debugging and test
// failure messages.
func (n Node) String() string {
	var sb strings.Builder
	n.describe(&sb)
	return sb.String()
}

func (n Node) describe(sb *strings.Builder) {
	switch n.Kind {
	case KindText:
		sb.WriteString(strconv.Quote(n.Text))
	case KindComponent:
		sb.WriteString("<component ")
		if n.Component != nil {
			sb.WriteString(n.Component.ComponentName())
		}
		sb.WriteString(">")
	case KindFragment:
		sb.WriteString("fragment[")
		for i, c := range n.Children {
			if i > 0 {
				sb.WriteString(" ")
			}
			c.describe(sb)
		}
		sb.WriteString("]")
	case KindElement:
		sb.WriteString("<")
		sb.WriteString(n.Tag)
		if n.Key != "" {
			sb.WriteString(" key=")
			sb.WriteString(n.Key)
		}
		for _, k := range sortedKeys(n.Attrs) {
			sb.WriteString(" ")
			sb.WriteString(k)
			sb.WriteString("=")
			sb.WriteString(strconv.Quote(n.Attrs[k]))
		}
		if len(n.Children) == 0 {
			sb.WriteString("/>")
			return
		}
		sb.WriteString(">")
		for _, c := range n.Children {
			c.describe(sb)
		}
		sb.WriteString("</")
		sb.WriteString(n.Tag)
		sb.WriteString(">")
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Path addresses a node in a previously-applied tree as the sequence of
// child indices from the root. The empty path is the root itself.
type Path []int

// Child returns a new path extended by one index. The receiver is not
// modified and does not share backing storage with the result.
func (p Path) Child(i int) Path {
	child := make(Path, len(p)+1)
	copy(child, p)
	child[len(p)] = i
	return child
}

// Join appends rel to p, allocating a new path.
func (p Path) Join(rel Path) Path {
	joined := make(Path, 0, len(p)+len(rel))
	joined = append(joined, p...)
	joined = append(joined, rel...)
	return joined
}

func (p Path) String() string {
	if len(p) == 0 {
		return "/"
	}
	var sb strings.Builder
	for _, i := range p {
		sb.WriteString("/")
		sb.WriteString(strconv.Itoa(i))
	}
	return sb.String()
}
