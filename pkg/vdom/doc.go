// Package vdom provides the immutable node tree and the diff engine.
//
// A render pass produces a [Node] tree describing one frame. Trees are
// immutable once constructed: the framework never mutates a prior snapshot,
// it builds a brand-new tree and asks [Diff] for the ordered patch list
// that transforms the previous snapshot into the new one. Patches are
// interpreted against a live surface by the surface package.
//
// # Nodes
//
// A node is one of four kinds: an element with a tag, attributes, ordered
// children and optional event bindings; a text node; a fragment grouping
// an ordered child sequence without an enclosing element; or an embedded
// component reference. Component nodes only appear in raw render output —
// the runtime resolves them into concrete subtrees before any diffing, so
// the diff engine itself stays a pure function over concrete trees.
//
// # Keys
//
// An optional key gives a child a stable identity among its siblings.
// Keyed children are matched by key across the old and new sibling lists
// regardless of position, so reordering a keyed list produces cheap move
// patches instead of remove+insert churn. Unkeyed children are matched by
// their sibling index. When two siblings carry the same key, the first
// occurrence wins and later occurrences fall back to positional matching.
//
// # Patch ordering
//
// A patch list is only valid under strict sequential application: later
// patches may reference child indices that exist only after earlier patches
// have been applied. Diff emits parent patches before descendant patches,
// and for one sibling list removals in descending index order followed by a
// single ascending pass of moves and inserts.
package vdom
