// Package runtime hosts the component runtime: the instance tree, the
// batching scheduler, and the render/diff/apply cycle that keeps a
// target surface in sync with component output.
//
// The runtime is single-threaded and cooperative. Writes return
// immediately; the actual work happens when the host calls Flush. To
// feed writes in from another goroutine, serialize them onto the
// runtime's goroutine first.
package runtime

import (
	"github.com/go-weft/weft/pkg/errors"
	"github.com/go-weft/weft/pkg/state"
	"github.com/go-weft/weft/pkg/vdom"
)

// RenderFunc produces a component's subtree. It must be pure with
// respect to its inputs apart from signal reads through the context.
type RenderFunc func(ctx BuildContext) vdom.Node

// RecoverFunc turns a render failure into a fallback subtree. A
// component carrying one acts as an error boundary for itself and its
// descendants.
type RecoverFunc func(err *errors.RenderError) vdom.Node

// Component is an immutable descriptor: identity (Name, Key),
// configuration (Props) and behavior (Render, optional Recover).
// Instances are matched across renders by Name and Key; Props changes
// re-render the existing instance rather than remounting it.
type Component struct {
	Name    string
	Key     string
	Props   any
	Render  RenderFunc
	Recover RecoverFunc
}

// ComponentName implements vdom.ComponentRef.
func (c Component) ComponentName() string { return c.Name }

// ComponentKey implements vdom.ComponentRef.
func (c Component) ComponentKey() string { return c.Key }

// Child embeds c into a parent's render output. The runtime replaces
// the node with c's rendered subtree during resolution.
func Child(c Component) vdom.Node {
	return vdom.Embed(c)
}

// BuildContext is handed to every render call. It carries the
// component's props and the store the root mount owns.
type BuildContext struct {
	store *state.Store
	props any
}

// Store returns the root's reactive store. Signal reads through it
// subscribe the rendering component.
func (ctx BuildContext) Store() *state.Store { return ctx.store }

// Props returns the props of the component being rendered.
func (ctx BuildContext) Props() any { return ctx.props }
