package wefttest

import (
	"fmt"
	"strings"

	"github.com/go-weft/weft/pkg/vdom"
)

// Match is one node located by a finder, with its path from the root.
type Match struct {
	Path vdom.Path
	Node vdom.Node
}

// Finder locates nodes in a snapshot (depth-first pre-order).
type Finder interface {
	Evaluate(root vdom.Node) []Match
	Description() string
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	matches []Match
	finder  Finder
}

// First returns the first match. Panics if there are none.
func (r FinderResult) First() Match {
	if len(r.matches) == 0 {
		desc := "unknown"
		if r.finder != nil {
			desc = r.finder.Description()
		}
		panic(fmt.Sprintf("finder found no nodes: %s", desc))
	}
	return r.matches[0]
}

// All returns every match in traversal order.
func (r FinderResult) All() []Match { return r.matches }

// Count returns the number of matches.
func (r FinderResult) Count() int { return len(r.matches) }

// Exists reports whether anything matched.
func (r FinderResult) Exists() bool { return len(r.matches) > 0 }

func walk(n vdom.Node, path vdom.Path, visit func(vdom.Node, vdom.Path)) {
	visit(n, path)
	for i, c := range n.Children {
		walk(c, path.Child(i), visit)
	}
}

type predicateFinder struct {
	desc string
	fn   func(vdom.Node) bool
}

func (f predicateFinder) Evaluate(root vdom.Node) []Match {
	var out []Match
	walk(root, nil, func(n vdom.Node, p vdom.Path) {
		if f.fn(n) {
			out = append(out, Match{Path: p, Node: n})
		}
	})
	return out
}

func (f predicateFinder) Description() string { return f.desc }

// ByTag matches element nodes with the given tag.
func ByTag(tag string) Finder {
	return predicateFinder{
		desc: fmt.Sprintf("elements with tag %q", tag),
		fn: func(n vdom.Node) bool {
			return n.Kind == vdom.KindElement && n.Tag == tag
		},
	}
}

// ByText matches text nodes containing substr.
func ByText(substr string) Finder {
	return predicateFinder{
		desc: fmt.Sprintf("text nodes containing %q", substr),
		fn: func(n vdom.Node) bool {
			return n.Kind == vdom.KindText && strings.Contains(n.Text, substr)
		},
	}
}

// ByAttr matches element nodes carrying the given attribute value.
func ByAttr(name, value string) Finder {
	return predicateFinder{
		desc: fmt.Sprintf("elements with %s=%q", name, value),
		fn: func(n vdom.Node) bool {
			return n.Kind == vdom.KindElement && n.Attrs[name] == value
		},
	}
}

// ByKey matches nodes carrying the given sibling key.
func ByKey(key string) Finder {
	return predicateFinder{
		desc: fmt.Sprintf("nodes with key %q", key),
		fn: func(n vdom.Node) bool {
			return n.Key == key
		},
	}
}

// ByPredicate matches nodes the given function accepts. desc is used in
// failure messages.
func ByPredicate(desc string, fn func(vdom.Node) bool) Finder {
	return predicateFinder{desc: desc, fn: fn}
}
