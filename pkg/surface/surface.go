// Package surface defines the target-surface capability that patch lists
// are applied against, plus two host surfaces: an in-memory mutable tree
// used as a test double and runtime backbone, and an HTML string renderer
// for headless output.
//
// The core never assumes what a surface is. A surface exposes eight
// primitive mutations; the applier interprets an ordered patch list into
// primitive calls, fail-fast: a primitive error aborts the remaining
// patches for that pass and is surfaced to the caller, because partial
// application can leave the surface inconsistent with the retained
// snapshot.
package surface

import (
	"fmt"

	"github.com/go-weft/weft/pkg/errors"
	"github.com/go-weft/weft/pkg/vdom"
)

// TargetSurface exposes the primitive mutations a host surface must
// provide. Nodes are addressed by child-index paths from the surface root.
// Each primitive must fail atomically: report an error rather than
// partially mutate, and calling it with patch-order-valid arguments must
// be safe to repeat.
type TargetSurface interface {
	// CreateElement materializes subtree n at the given path, replacing
	// whatever occupies that position. An empty path replaces (or
	// initializes) the surface root.
	CreateElement(at vdom.Path, n vdom.Node) error
	// SetText rewrites the string of the text node at the given path.
	SetText(at vdom.Path, text string) error
	// SetAttribute adds or changes an attribute of the element at the path.
	SetAttribute(at vdom.Path, name, value string) error
	// RemoveAttribute removes an attribute of the element at the path.
	RemoveAttribute(at vdom.Path, name string) error
	// InsertChild materializes subtree n as a child of parent at index.
	InsertChild(parent vdom.Path, index int, n vdom.Node) error
	// RemoveChild removes the child of parent at index.
	RemoveChild(parent vdom.Path, index int) error
	// MoveChild removes the child at from and re-inserts it at to.
	MoveChild(parent vdom.Path, from, to int) error
	// BindEvent rebinds the named event of the element at the path.
	// A nil binding unbinds it.
	BindEvent(at vdom.Path, name string, b *vdom.Binding) error
}

// Apply interprets patches against s in strict list order. The first
// primitive failure aborts the remaining patches and is returned wrapped
// with the failing patch's context.
func Apply(s TargetSurface, patches []vdom.Patch) error {
	return ApplyAt(s, nil, patches)
}

// ApplyAt is Apply with every patch path re-rooted under base. The runtime
// uses it to apply a component's patches at the component's position in
// the overall tree.
func ApplyAt(s TargetSurface, base vdom.Path, patches []vdom.Patch) error {
	for i, p := range patches {
		if err := applyOne(s, base, p); err != nil {
			werr := &errors.WeftError{
				Op:   "surface.Apply",
				Kind: errors.KindSurface,
				Err:  fmt.Errorf("patch %d of %d (%s): %w", i+1, len(patches), p, err),
			}
			errors.Report(werr)
			return werr
		}
	}
	return nil
}

func applyOne(s TargetSurface, base vdom.Path, p vdom.Patch) error {
	at := base.Join(p.Path)
	switch p.Op {
	case vdom.OpReplace:
		if p.Node == nil {
			return fmt.Errorf("replace patch carries no subtree")
		}
		return s.CreateElement(at, *p.Node)
	case vdom.OpUpdateText:
		return s.SetText(at, p.Value)
	case vdom.OpSetAttribute:
		return s.SetAttribute(at, p.Name, p.Value)
	case vdom.OpRemoveAttribute:
		return s.RemoveAttribute(at, p.Name)
	case vdom.OpInsertChild:
		if p.Node == nil {
			return fmt.Errorf("insert patch carries no subtree")
		}
		return s.InsertChild(at, p.Index, *p.Node)
	case vdom.OpRemoveChild:
		return s.RemoveChild(at, p.Index)
	case vdom.OpMoveChild:
		return s.MoveChild(at, p.From, p.To)
	case vdom.OpBindEvent:
		return s.BindEvent(at, p.Name, p.Binding)
	default:
		return fmt.Errorf("unknown patch op %d", p.Op)
	}
}
