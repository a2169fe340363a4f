package vdom

import (
	"testing"

	"github.com/go-weft/weft/pkg/errors"
)

func countOps(patches []Patch, op Op) int {
	n := 0
	for _, p := range patches {
		if p.Op == op {
			n++
		}
	}
	return n
}

func TestDiff_IdenticalTreeYieldsNoPatches(t *testing.T) {
	tree := Elem("div", Attrs{"class": "box"},
		Text("hello"),
		Elem("ul", nil,
			Elem("li", nil, Text("a")).WithKey("1"),
			Elem("li", nil, Text("b")).WithKey("2"),
		),
	)
	if patches := Diff(tree, tree); len(patches) != 0 {
		t.Fatalf("expected empty patch list, got %v", patches)
	}
}

func TestDiff_TextChangeYieldsSingleUpdateText(t *testing.T) {
	patches := Diff(Text("a"), Text("b"))
	if len(patches) != 1 {
		t.Fatalf("expected exactly one patch, got %v", patches)
	}
	p := patches[0]
	if p.Op != OpUpdateText || p.Value != "b" || len(p.Path) != 0 {
		t.Errorf("unexpected patch %s", p)
	}
}

func TestDiff_KindMismatchDegradesToReplace(t *testing.T) {
	patches := Diff(Text("a"), Elem("div", nil))
	if len(patches) != 1 || patches[0].Op != OpReplace {
		t.Fatalf("expected single replace, got %v", patches)
	}
}

func TestDiff_TagMismatchDegradesToReplace(t *testing.T) {
	old := Elem("div", nil, Text("deep"))
	new := Elem("span", nil, Text("deep"))
	patches := Diff(old, new)
	if len(patches) != 1 || patches[0].Op != OpReplace {
		t.Fatalf("expected single replace without recursion, got %v", patches)
	}
}

func TestDiff_Attributes(t *testing.T) {
	old := Elem("div", Attrs{"a": "1", "b": "2", "gone": "x"})
	new := Elem("div", Attrs{"a": "1", "b": "3", "added": "y"})
	patches := Diff(old, new)

	want := []string{
		`set-attr / added="y"`,
		`set-attr / b="3"`,
		`remove-attr / gone`,
	}
	if len(patches) != len(want) {
		t.Fatalf("expected %d patches, got %v", len(want), patches)
	}
	for i, p := range patches {
		if p.String() != want[i] {
			t.Errorf("patch %d = %q, want %q", i, p, want[i])
		}
	}
}

func TestDiff_Bindings(t *testing.T) {
	old := Elem("button", nil).
		On("click", StableBinding("h1", nil)).
		On("hover", StableBinding("h2", nil))
	new := Elem("button", nil).
		On("click", StableBinding("h3", nil))
	patches := Diff(old, new)

	if len(patches) != 2 {
		t.Fatalf("expected rebind + unbind, got %v", patches)
	}
	if patches[0].Op != OpBindEvent || patches[0].Name != "click" || patches[0].Binding == nil {
		t.Errorf("expected click rebind, got %s", patches[0])
	}
	if patches[1].Op != OpBindEvent || patches[1].Name != "hover" || patches[1].Binding != nil {
		t.Errorf("expected hover unbind, got %s", patches[1])
	}
}

func TestDiff_SameBindingRefYieldsNoPatch(t *testing.T) {
	b := StableBinding("stable", func(Event) {})
	old := Elem("button", nil).On("click", b)
	new := Elem("button", nil).On("click", StableBinding("stable", func(Event) {}))
	if patches := Diff(old, new); len(patches) != 0 {
		t.Fatalf("expected no patches for unchanged ref, got %v", patches)
	}
}

func TestDiff_KeyedReorderProducesMoveOnly(t *testing.T) {
	a := Elem("li", nil, Text("a")).WithKey("1")
	b := Elem("li", nil, Text("b")).WithKey("2")
	old := Elem("ul", nil, a, b)
	new := Elem("ul", nil, b, a)

	patches := Diff(old, new)
	if countOps(patches, OpMoveChild) != 1 {
		t.Fatalf("expected one move, got %v", patches)
	}
	if countOps(patches, OpInsertChild) != 0 || countOps(patches, OpRemoveChild) != 0 {
		t.Fatalf("keyed reorder must not remove+insert, got %v", patches)
	}
	move := patches[0]
	if move.From != 1 || move.To != 0 {
		t.Errorf("expected move 1->0, got %s", move)
	}
}

func TestDiff_KeyedAppendYieldsSingleInsert(t *testing.T) {
	li1 := Elem("li", nil, Text("a")).WithKey("1")
	li2 := Elem("li", nil, Text("b")).WithKey("2")
	old := Elem("ul", nil, li1)
	new := Elem("ul", nil, li1, li2)

	patches := Diff(old, new)
	if len(patches) != 1 {
		t.Fatalf("expected exactly one patch, got %v", patches)
	}
	p := patches[0]
	if p.Op != OpInsertChild || p.Index != 1 || p.Node == nil || p.Node.Key != "2" {
		t.Errorf("expected insert-child at 1 with key 2, got %s", p)
	}
}

func TestDiff_KeyedRemovalKeepsSiblingIdentity(t *testing.T) {
	li1 := Elem("li", nil, Text("a")).WithKey("1")
	li2 := Elem("li", nil, Text("b")).WithKey("2")
	li3 := Elem("li", nil, Text("c")).WithKey("3")
	old := Elem("ul", nil, li1, li2, li3)
	new := Elem("ul", nil, li1, li3)

	patches := Diff(old, new)
	if len(patches) != 1 {
		t.Fatalf("expected single removal, got %v", patches)
	}
	if p := patches[0]; p.Op != OpRemoveChild || p.Index != 1 {
		t.Errorf("expected remove-child at 1, got %s", p)
	}
}

func TestDiff_MixedKeyedAndPositionalChildren(t *testing.T) {
	keyed := Elem("li", nil, Text("k")).WithKey("k")
	old := Elem("ul", nil, keyed, Elem("li", nil, Text("u")))
	new := Elem("ul", nil, Elem("li", nil, Text("u2")), keyed)

	patches := Diff(old, new)
	// The unkeyed old child at index 1 cannot match the unkeyed new child at
	// index 0, so it is removed and a fresh one inserted; the keyed child
	// keeps its identity.
	if countOps(patches, OpRemoveChild) != 1 || countOps(patches, OpInsertChild) != 1 {
		t.Fatalf("expected one remove and one insert, got %v", patches)
	}
	if countOps(patches, OpReplace) != 0 {
		t.Fatalf("keyed child must not be replaced, got %v", patches)
	}
}

func TestDiff_DuplicateKeysMatchPositionally(t *testing.T) {
	handler := &warningCapture{}
	errors.SetHandler(handler)
	defer errors.SetHandler(nil)

	old := Elem("ul", nil,
		Elem("li", nil, Text("a")).WithKey("1"),
		Elem("li", nil, Text("b")).WithKey("1"),
	)
	new := Elem("ul", nil,
		Elem("li", nil, Text("a")).WithKey("1"),
		Elem("li", nil, Text("b2")).WithKey("1"),
	)

	patches := Diff(old, new)
	if len(patches) != 1 {
		t.Fatalf("expected single text update, got %v", patches)
	}
	if p := patches[0]; p.Op != OpUpdateText || p.Value != "b2" || p.Path.String() != "/1/0" {
		t.Errorf("second occurrence should diff positionally, got %s", p)
	}
	if len(handler.warnings) == 0 {
		t.Error("expected a duplicate-key warning")
	}
	for _, w := range handler.warnings {
		if w.Kind != errors.KindDuplicateKey {
			t.Errorf("unexpected warning kind %s", w.Kind)
		}
	}
}

func TestDiff_FragmentChildren(t *testing.T) {
	old := Fragment(Text("a"), Text("b"))
	new := Fragment(Text("a"), Text("c"), Text("d"))
	patches := Diff(old, new)
	if countOps(patches, OpInsertChild) != 1 || countOps(patches, OpUpdateText) != 1 {
		t.Fatalf("expected one insert and one text update, got %v", patches)
	}
}

// applyOrderSim replays child-list patches against a plain slice, proving
// that emitted indices are valid under strict sequential application.
func applyOrderSim(t *testing.T, old []string, patches []Patch) []string {
	t.Helper()
	work := append([]string(nil), old...)
	for _, p := range patches {
		switch p.Op {
		case OpRemoveChild:
			if p.Index < 0 || p.Index >= len(work) {
				t.Fatalf("remove index %d out of range applying %s to %v", p.Index, p, work)
			}
			work = append(work[:p.Index], work[p.Index+1:]...)
		case OpInsertChild:
			if p.Index < 0 || p.Index > len(work) {
				t.Fatalf("insert index %d out of range applying %s to %v", p.Index, p, work)
			}
			work = append(work, "")
			copy(work[p.Index+1:], work[p.Index:])
			work[p.Index] = p.Node.Key
		case OpMoveChild:
			if p.From < 0 || p.From >= len(work) || p.To < 0 || p.To >= len(work) {
				t.Fatalf("move %d->%d out of range applying %s to %v", p.From, p.To, p, work)
			}
			moved := work[p.From]
			work = append(work[:p.From], work[p.From+1:]...)
			work = append(work, "")
			copy(work[p.To+1:], work[p.To:])
			work[p.To] = moved
		}
	}
	return work
}

func TestDiff_ChildPatchSequencesAreSequentiallyValid(t *testing.T) {
	mk := func(keys ...string) Node {
		children := make([]Node, len(keys))
		for i, k := range keys {
			children[i] = Elem("li", nil).WithKey(k)
		}
		return Elem("ul", nil, children...)
	}

	cases := []struct{ old, new []string }{
		{[]string{"a", "b", "c"}, []string{"c", "b", "a"}},
		{[]string{"a", "b", "c", "d"}, []string{"d", "a", "c"}},
		{[]string{}, []string{"a", "b"}},
		{[]string{"a", "b"}, []string{}},
		{[]string{"a", "b", "c"}, []string{"x", "c", "a", "y"}},
		{[]string{"a"}, []string{"b", "a", "c"}},
	}
	for _, tc := range cases {
		patches := Diff(mk(tc.old...), mk(tc.new...))
		got := applyOrderSim(t, tc.old, patches)
		if len(got) != len(tc.new) {
			t.Fatalf("%v -> %v: ended with %v", tc.old, tc.new, got)
		}
		for i, k := range tc.new {
			if got[i] != k {
				t.Fatalf("%v -> %v: ended with %v (patches %v)", tc.old, tc.new, got, patches)
			}
		}
	}
}

type warningCapture struct {
	warnings []*errors.WeftError
}

func (c *warningCapture) HandleError(err *errors.WeftError) { c.warnings = append(c.warnings, err) }
func (c *warningCapture) HandleRenderError(*errors.RenderError) {}
