package runtime

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/go-weft/weft/pkg/errors"
	"github.com/go-weft/weft/pkg/state"
	"github.com/go-weft/weft/pkg/surface"
	"github.com/go-weft/weft/pkg/vdom"
)

type lifecycle int

const (
	phaseUnmounted lifecycle = iota
	phaseMounted
	phaseUpdating
)

// instance is one arena slot in the component tree. parent and children
// are arena indices, never pointers; rel is the instance's position
// relative to its parent's subtree root, and rendered is the retained
// concrete subtree with all descendant components inlined.
type instance struct {
	comp     Component
	parent   int
	children []int
	depth    int
	phase    lifecycle
	rel      vdom.Path
	rendered vdom.Node
}

// Root is one mounted component tree bound to a target surface. Each
// Root owns its own store and scheduler; nothing is shared between
// mounts.
type Root struct {
	surface   surface.TargetSurface
	store     *state.Store
	sched     *scheduler
	instances []*instance

	renderedPass map[int]bool
	passErrs     []error
}

// Mount renders comp, materializes its tree on surf, and returns the
// live root. A render failure that no boundary absorbs is returned
// alongside the (still usable) root.
func Mount(surf surface.TargetSurface, comp Component) (*Root, error) {
	r := &Root{
		surface: surf,
		store:   state.NewStore(),
		sched:   newScheduler(),
	}
	r.store.SetNotifier(func(dirty []state.SubscriberID) {
		for _, id := range dirty {
			r.sched.schedule(id)
		}
	})

	r.renderedPass = map[int]bool{}
	rootIdx := r.newInstance(comp, -1)
	r.instances[rootIdx].rendered = r.renderInstance(rootIdx)

	if err := surf.CreateElement(nil, r.instances[rootIdx].rendered); err != nil {
		werr := &errors.WeftError{Op: "runtime.Mount", Kind: errors.KindInit, Err: err}
		errors.Report(werr)
		return nil, werr
	}

	err := stderrors.Join(r.passErrs...)
	r.passErrs = nil
	return r, err
}

// Store returns the store owned by this mount.
func (r *Root) Store() *state.Store { return r.store }

// SetOnNeedsFlush registers the host callback invoked when a write
// makes work pending while the scheduler is idle.
func (r *Root) SetOnNeedsFlush(fn func()) {
	r.sched.OnNeedsFlush = fn
}

// Pending reports whether a flush would do work.
func (r *Root) Pending() bool {
	return r.sched.pending()
}

// Flush is the single host entry point: it drains the dirty set once,
// parent before child, rendering each instance at most once. Instances
// unmounted after being marked dirty are skipped at dequeue. Writes
// made during the pass become the next batch. Calling Flush with no
// pending work is a no-op.
func (r *Root) Flush() error {
	batch := r.sched.begin()
	if batch == nil {
		return nil
	}
	r.renderedPass = map[int]bool{}
	r.passErrs = nil

	sort.Slice(batch, func(a, b int) bool {
		ia, ib := r.instances[batch[a]], r.instances[batch[b]]
		if ia.depth != ib.depth {
			return ia.depth < ib.depth
		}
		return batch[a] < batch[b]
	})

	for _, id := range batch {
		idx := int(id)
		inst := r.instances[idx]
		if inst.phase != phaseMounted {
			continue
		}
		if r.renderedPass[idx] {
			continue
		}
		if err := r.updateInstance(idx); err != nil {
			r.passErrs = append(r.passErrs, err)
		}
	}

	errs := r.passErrs
	r.passErrs = nil
	r.sched.finish()
	return stderrors.Join(errs...)
}

// Unmount tears the whole tree down, releasing every instance's
// signals. The surface keeps its last applied content; clearing it is
// the host's call.
func (r *Root) Unmount() {
	if len(r.instances) == 0 {
		return
	}
	r.unmountInstance(0)
}

func (r *Root) newInstance(comp Component, parent int) int {
	idx := len(r.instances)
	depth := 0
	if parent >= 0 {
		depth = r.instances[parent].depth + 1
	}
	r.instances = append(r.instances, &instance{
		comp:     comp,
		parent:   parent,
		depth:    depth,
		rendered: vdom.Fragment(),
	})
	return idx
}

// updateInstance re-renders one dirty instance, diffs the result
// against the retained subtree, and applies the patches at the
// instance's absolute path.
func (r *Root) updateInstance(idx int) error {
	inst := r.instances[idx]
	old := inst.rendered
	inst.rendered = r.renderInstance(idx)
	r.propagate(idx)

	patches := vdom.Diff(old, inst.rendered)
	if len(patches) == 0 {
		return nil
	}
	return surface.ApplyAt(r.surface, r.absPath(idx), patches)
}

// renderInstance runs the component's render with panic recovery and
// resolves its output: child component nodes are reconciled against
// existing child instances and replaced by their subtrees. The returned
// tree is always concrete and always usable; an unhandled render
// failure keeps the previous subtree and records the error for the
// pass.
func (r *Root) renderInstance(idx int) vdom.Node {
	inst := r.instances[idx]
	inst.phase = phaseUpdating
	r.renderedPass[idx] = true

	out, rerr := r.safeRender(idx)
	if rerr != nil {
		errors.ReportRender(rerr)
		fallback, handled := r.recoverFor(idx, rerr)
		if !handled {
			r.passErrs = append(r.passErrs, fmt.Errorf("render %s: %v", inst.comp.Name, rerr.Recovered))
			inst.phase = phaseMounted
			return inst.rendered
		}
		out = fallback
	}

	prev := inst.children
	inst.children = nil
	matched := map[int]bool{}
	resolved := r.resolveNode(idx, out, nil, prev, matched)
	for _, c := range prev {
		if !matched[c] {
			r.unmountInstance(c)
		}
	}
	inst.phase = phaseMounted
	return resolved
}

func (r *Root) safeRender(idx int) (out vdom.Node, rerr *errors.RenderError) {
	inst := r.instances[idx]
	ctx := BuildContext{store: r.store, props: inst.comp.Props}

	r.store.BeginRender(state.SubscriberID(idx))
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				rerr = &errors.RenderError{
					Component:  inst.comp.Name,
					Recovered:  rec,
					StackTrace: errors.CaptureStack(),
				}
			}
		}()
		if inst.comp.Render == nil {
			out = vdom.Fragment()
			return
		}
		out = inst.comp.Render(ctx)
	}()
	r.store.EndRender()
	return out, rerr
}

// recoverFor finds the nearest boundary, starting at the failed
// instance itself, and asks it for a fallback subtree.
func (r *Root) recoverFor(idx int, rerr *errors.RenderError) (vdom.Node, bool) {
	for i := idx; i >= 0; i = r.instances[i].parent {
		if rec := r.instances[i].comp.Recover; rec != nil {
			return rec(rerr), true
		}
	}
	return vdom.Node{}, false
}

// resolveNode walks a render output, inlining component nodes. Existing
// child instances are matched by name and key; a matched child with
// equal props keeps its retained subtree without re-rendering.
func (r *Root) resolveNode(parentIdx int, n vdom.Node, rel vdom.Path, prev []int, matched map[int]bool) vdom.Node {
	switch n.Kind {
	case vdom.KindComponent:
		comp, ok := n.Component.(Component)
		if !ok {
			return vdom.Fragment()
		}
		parent := r.instances[parentIdx]

		for _, c := range prev {
			if matched[c] {
				continue
			}
			ci := r.instances[c]
			if ci.comp.Name != comp.Name || ci.comp.Key != comp.Key {
				continue
			}
			matched[c] = true
			sameProps := reflect.DeepEqual(ci.comp.Props, comp.Props)
			ci.comp = comp
			ci.rel = append(vdom.Path(nil), rel...)
			parent.children = append(parent.children, c)
			if !sameProps {
				ci.rendered = r.renderInstance(c)
			}
			return ci.rendered
		}

		childIdx := r.newInstance(comp, parentIdx)
		ci := r.instances[childIdx]
		ci.rel = append(vdom.Path(nil), rel...)
		parent.children = append(parent.children, childIdx)
		ci.rendered = r.renderInstance(childIdx)
		return ci.rendered

	case vdom.KindElement, vdom.KindFragment:
		if len(n.Children) == 0 {
			return n
		}
		kids := make([]vdom.Node, len(n.Children))
		for i, c := range n.Children {
			kids[i] = r.resolveNode(parentIdx, c, rel.Child(i), prev, matched)
		}
		n.Children = kids
		return n

	default:
		return n
	}
}

func (r *Root) unmountInstance(idx int) {
	inst := r.instances[idx]
	if inst.phase == phaseUnmounted {
		return
	}
	for _, c := range inst.children {
		r.unmountInstance(c)
	}
	inst.children = nil
	inst.phase = phaseUnmounted
	r.store.Release(state.SubscriberID(idx))
}

// propagate pushes an instance's fresh subtree up the ancestor chain so
// every retained tree above it stays consistent with the surface.
func (r *Root) propagate(idx int) {
	for {
		inst := r.instances[idx]
		if inst.parent < 0 {
			return
		}
		parent := r.instances[inst.parent]
		parent.rendered = withSubtree(parent.rendered, inst.rel, inst.rendered)
		idx = inst.parent
	}
}

func (r *Root) absPath(idx int) vdom.Path {
	inst := r.instances[idx]
	if inst.parent < 0 {
		return append(vdom.Path(nil), inst.rel...)
	}
	return r.absPath(inst.parent).Join(inst.rel)
}

// withSubtree returns root with the node at rel replaced by sub,
// copying only the spine so other holders of the old tree are
// unaffected.
func withSubtree(root vdom.Node, rel vdom.Path, sub vdom.Node) vdom.Node {
	if len(rel) == 0 {
		return sub
	}
	i := rel[0]
	if i < 0 || i >= len(root.Children) {
		return root
	}
	children := make([]vdom.Node, len(root.Children))
	copy(children, root.Children)
	children[i] = withSubtree(children[i], rel[1:], sub)
	root.Children = children
	return root
}
