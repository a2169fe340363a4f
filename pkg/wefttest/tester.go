// Package wefttest provides isolated component testing without a real
// host: components mount on an in-memory surface, events are synthesized
// through finders, and output is inspected as a snapshot or as HTML.
package wefttest

import (
	"errors"
	"testing"

	"github.com/go-weft/weft/pkg/runtime"
	"github.com/go-weft/weft/pkg/state"
	"github.com/go-weft/weft/pkg/surface"
	"github.com/go-weft/weft/pkg/vdom"
)

// ErrSettleTimeout is returned when PumpAndSettle runs out of passes
// before the scheduler goes idle, which usually means a render keeps
// writing signals it also reads.
var ErrSettleTimeout = errors.New("PumpAndSettle: scheduler did not settle")

// maxSettlePasses bounds PumpAndSettle. Anything legitimate settles in
// a handful of passes.
const maxSettlePasses = 64

// Tester drives one mounted component tree.
type Tester struct {
	t    *testing.T
	mem  *surface.Memory
	root *runtime.Root
}

// New mounts comp on a fresh in-memory surface. The tree is unmounted
// automatically via t.Cleanup.
func New(t *testing.T, comp runtime.Component) *Tester {
	t.Helper()
	mem := surface.NewMemory()
	root, err := runtime.Mount(mem, comp)
	if err != nil {
		t.Fatalf("mount %s: %v", comp.Name, err)
	}
	t.Cleanup(root.Unmount)
	return &Tester{t: t, mem: mem, root: root}
}

// Store returns the mount's reactive store, for seeding state from the
// test body.
func (ts *Tester) Store() *state.Store { return ts.root.Store() }

// Root returns the live root for direct scheduler access.
func (ts *Tester) Root() *runtime.Root { return ts.root }

// Pump runs one flush.
func (ts *Tester) Pump() error {
	return ts.root.Flush()
}

// PumpAndSettle flushes until the scheduler is idle.
func (ts *Tester) PumpAndSettle() error {
	for i := 0; i < maxSettlePasses; i++ {
		if err := ts.root.Flush(); err != nil {
			return err
		}
		if !ts.root.Pending() {
			return nil
		}
	}
	return ErrSettleTimeout
}

// Fire synthesizes event on the first node the finder matches. The
// handler's writes stay pending until the next pump.
func (ts *Tester) Fire(f Finder, event string) error {
	ts.t.Helper()
	return ts.FireAt(ts.Find(f).First().Path, event, nil)
}

// FireAt synthesizes event with payload at an explicit path.
func (ts *Tester) FireAt(at vdom.Path, event string, payload any) error {
	return ts.mem.Fire(at, event, payload)
}

// Snapshot returns a deep copy of the surface's current tree.
func (ts *Tester) Snapshot() vdom.Node {
	ts.t.Helper()
	snap, err := ts.mem.Snapshot()
	if err != nil {
		ts.t.Fatalf("snapshot: %v", err)
	}
	return snap
}

// HTML renders the surface's current tree as deterministic HTML.
func (ts *Tester) HTML() string {
	ts.t.Helper()
	return surface.RenderNode(ts.Snapshot())
}

// Find evaluates a finder against the current snapshot.
func (ts *Tester) Find(f Finder) FinderResult {
	ts.t.Helper()
	return FinderResult{matches: f.Evaluate(ts.Snapshot()), finder: f}
}
