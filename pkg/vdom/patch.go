package vdom

import (
	"fmt"
	"strconv"
	"strings"
)

// Op enumerates the patch variants.
type Op int

const (
	// OpReplace replaces the node at Path with a freshly materialized Node.
	OpReplace Op = iota
	// OpUpdateText rewrites the string of the text node at Path.
	OpUpdateText
	// OpSetAttribute adds or changes one attribute of the element at Path.
	OpSetAttribute
	// OpRemoveAttribute removes one attribute of the element at Path.
	OpRemoveAttribute
	// OpInsertChild materializes Node as a new child of Path at Index.
	OpInsertChild
	// OpRemoveChild removes the child of Path at Index.
	OpRemoveChild
	// OpMoveChild removes the child of Path at From and re-inserts it so it
	// lands at index To of the resulting list.
	OpMoveChild
	// OpBindEvent rebinds the named event of the element at Path. A nil
	// Binding unbinds it.
	OpBindEvent
)

func (o Op) String() string {
	switch o {
	case OpReplace:
		return "replace"
	case OpUpdateText:
		return "update-text"
	case OpSetAttribute:
		return "set-attr"
	case OpRemoveAttribute:
		return "remove-attr"
	case OpInsertChild:
		return "insert-child"
	case OpRemoveChild:
		return "remove-child"
	case OpMoveChild:
		return "move-child"
	case OpBindEvent:
		return "bind-event"
	default:
		return "invalid"
	}
}

// Patch is one atomic mutation instruction against a previously-applied
// tree. For OpReplace, OpUpdateText, attribute and binding ops, Path
// addresses the target node itself; for child ops it addresses the parent.
//
// A patch list is ordered and only valid under strict sequential
// application: indices in later patches assume every earlier patch in the
// same list has already been applied.
type Patch struct {
	Op      Op
	Path    Path
	Name    string // attribute or event name
	Value   string // attribute value or new text
	Index   int    // OpInsertChild, OpRemoveChild
	From    int    // OpMoveChild
	To      int    // OpMoveChild
	Node    *Node  // subtree for OpReplace and OpInsertChild
	Binding *Binding
}

func (p Patch) String() string {
	var sb strings.Builder
	sb.WriteString(p.Op.String())
	sb.WriteString(" ")
	sb.WriteString(p.Path.String())
	switch p.Op {
	case OpReplace:
		fmt.Fprintf(&sb, " %s", p.Node)
	case OpUpdateText:
		fmt.Fprintf(&sb, " %s", strconv.Quote(p.Value))
	case OpSetAttribute:
		fmt.Fprintf(&sb, " %s=%s", p.Name, strconv.Quote(p.Value))
	case OpRemoveAttribute:
		fmt.Fprintf(&sb, " %s", p.Name)
	case OpInsertChild:
		fmt.Fprintf(&sb, " %d %s", p.Index, p.Node)
	case OpRemoveChild:
		fmt.Fprintf(&sb, " %d", p.Index)
	case OpMoveChild:
		fmt.Fprintf(&sb, " %d->%d", p.From, p.To)
	case OpBindEvent:
		if p.Binding == nil {
			fmt.Fprintf(&sb, " %s (unbind)", p.Name)
		} else {
			fmt.Fprintf(&sb, " %s", p.Name)
		}
	}
	return sb.String()
}
