package vdom

import (
	"fmt"

	"github.com/go-weft/weft/pkg/errors"
)

// Diff computes the ordered patch list that transforms old into new.
//
// Diff is total: it never fails. Mismatched kinds, or elements with
// different tags, degrade to a single replace patch for that position
// instead of an error, and the engine does not recurse below a replace.
//
// The result is pure with respect to the inputs. Duplicate sibling keys are
// additionally reported as warnings through the error handler; that
// diagnostic channel does not affect the returned patches.
func Diff(old, new Node) []Patch {
	var patches []Patch
	diffNode(old, new, nil, &patches)
	return patches
}

func diffNode(old, new Node, path Path, out *[]Patch) {
	if old.Kind != new.Kind || (new.Kind == KindElement && old.Tag != new.Tag) {
		replaceAt(new, path, out)
		return
	}

	switch new.Kind {
	case KindText:
		if old.Text != new.Text {
			*out = append(*out, Patch{Op: OpUpdateText, Path: path, Value: new.Text})
		}
	case KindElement:
		diffAttrs(old.Attrs, new.Attrs, path, out)
		diffBindings(old.Bindings, new.Bindings, path, out)
		diffChildren(old.Children, new.Children, path, out)
	case KindFragment:
		diffChildren(old.Children, new.Children, path, out)
	case KindComponent:
		// Component nodes are resolved by the runtime before diffing. If an
		// unresolved pair reaches us, replacing on a ref change is the only
		// safe degradation.
		if !sameRef(old.Component, new.Component) {
			replaceAt(new, path, out)
		}
	}
}

func replaceAt(new Node, path Path, out *[]Patch) {
	n := new
	*out = append(*out, Patch{Op: OpReplace, Path: path, Node: &n})
}

func diffAttrs(old, new Attrs, path Path, out *[]Patch) {
	for _, name := range sortedKeys(new) {
		if oldValue, ok := old[name]; !ok || oldValue != new[name] {
			*out = append(*out, Patch{Op: OpSetAttribute, Path: path, Name: name, Value: new[name]})
		}
	}
	for _, name := range sortedKeys(old) {
		if _, ok := new[name]; !ok {
			*out = append(*out, Patch{Op: OpRemoveAttribute, Path: path, Name: name})
		}
	}
}

func diffBindings(old, new map[string]*Binding, path Path, out *[]Patch) {
	for _, name := range sortedKeys(new) {
		binding := new[name]
		if binding == nil {
			continue
		}
		if prev, ok := old[name]; !ok || prev == nil || prev.Ref != binding.Ref {
			*out = append(*out, Patch{Op: OpBindEvent, Path: path, Name: name, Binding: binding})
		}
	}
	for _, name := range sortedKeys(old) {
		if old[name] == nil {
			continue
		}
		if binding, ok := new[name]; !ok || binding == nil {
			*out = append(*out, Patch{Op: OpBindEvent, Path: path, Name: name})
		}
	}
}

// diffChildren reconciles one sibling list. Matching is near-linear: one
// key→index map per list replaces any pairwise comparison. Keyed children
// match by key across positions; unkeyed children match by raw sibling
// index. Matched pairs recurse at their final new index, additions insert,
// disappearances remove, and keyed order changes move.
func diffChildren(old, new []Node, parent Path, out *[]Patch) {
	oldKeys := keyIndex(old, parent)
	newKeys := keyIndex(new, parent)

	// match[i] is the new index claimed by old child i; matchedOld[j] is the
	// old index claimed by new child j. -1 means unmatched.
	match := make([]int, len(old))
	for i := range match {
		match[i] = -1
	}
	matchedOld := make([]int, len(new))
	for j := range matchedOld {
		matchedOld[j] = -1
	}

	for j := range new {
		if key := effectiveKey(newKeys, new[j], j); key != "" {
			if i, ok := oldKeys[key]; ok {
				match[i] = j
				matchedOld[j] = i
			}
			continue
		}
		if j < len(old) && effectiveKey(oldKeys, old[j], j) == "" {
			match[j] = j
			matchedOld[j] = j
		}
	}

	// Simulate sequential application so every emitted index is valid at
	// the moment its patch applies.
	//
	// Removals go highest-index first: entries below a removed index keep
	// their positions, so the position of old child i at removal time is
	// exactly i.
	sim := make([]int, 0, len(old))
	for i := range old {
		sim = append(sim, i)
	}
	for i := len(old) - 1; i >= 0; i-- {
		if match[i] == -1 {
			*out = append(*out, Patch{Op: OpRemoveChild, Path: parent, Index: i})
			sim = append(sim[:i], sim[i+1:]...)
		}
	}

	// One ascending pass: after step j the prefix sim[:j+1] is final.
	pos := make(map[int]int, len(sim))
	for p, i := range sim {
		pos[i] = p
	}
	for j := range new {
		if i := matchedOld[j]; i >= 0 {
			p := pos[i]
			if p != j {
				*out = append(*out, Patch{Op: OpMoveChild, Path: parent, From: p, To: j})
				moved := sim[p]
				copy(sim[j+1:p+1], sim[j:p])
				sim[j] = moved
				for idx := j; idx <= p; idx++ {
					pos[sim[idx]] = idx
				}
			}
			continue
		}
		subtree := new[j]
		*out = append(*out, Patch{Op: OpInsertChild, Path: parent, Index: j, Node: &subtree})
		sim = append(sim, 0)
		copy(sim[j+1:], sim[j:])
		sim[j] = -1
		for idx := j + 1; idx < len(sim); idx++ {
			if sim[idx] >= 0 {
				pos[sim[idx]] = idx
			}
		}
	}

	// Recurse into matched pairs at their final positions, after the
	// structural patches above have settled the sibling list.
	for j := range new {
		if i := matchedOld[j]; i >= 0 {
			diffNode(old[i], new[j], parent.Child(j), out)
		}
	}
}

// keyIndex maps each effective key in a sibling list to its index. The
// first occurrence of a key wins; later occurrences are demoted to
// positional matching and reported as a duplicate-key warning.
func keyIndex(children []Node, parent Path) map[string]int {
	var keys map[string]int
	for i, c := range children {
		if c.Key == "" {
			continue
		}
		if keys == nil {
			keys = make(map[string]int)
		}
		if first, ok := keys[c.Key]; ok {
			errors.Report(&errors.WeftError{
				Op:   "vdom.Diff",
				Kind: errors.KindDuplicateKey,
				Err: fmt.Errorf("duplicate key %q at %s: indices %d and %d; the later child is matched positionally",
					c.Key, parent, first, i),
			})
			continue
		}
		keys[c.Key] = i
	}
	return keys
}

// effectiveKey returns the child's key if it is the winning occurrence in
// its sibling list, and "" for unkeyed or demoted children.
func effectiveKey(keys map[string]int, c Node, index int) string {
	if c.Key == "" {
		return ""
	}
	if first, ok := keys[c.Key]; ok && first == index {
		return c.Key
	}
	return ""
}
