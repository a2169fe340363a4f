package wefttest

import (
	"fmt"
	"testing"

	"github.com/go-weft/weft/pkg/runtime"
	"github.com/go-weft/weft/pkg/state"
	"github.com/go-weft/weft/pkg/vdom"
)

func counter() runtime.Component {
	return runtime.Component{
		Name: "counter",
		Render: func(ctx runtime.BuildContext) vdom.Node {
			n := state.Define(ctx.Store(), "n", 0)
			return vdom.Elem("div", nil,
				vdom.Elem("span", vdom.Attrs{"class": "value"},
					vdom.Text(fmt.Sprintf("%d", n.Get()))),
				vdom.Elem("button", nil, vdom.Text("+")).
					On("click", vdom.StableBinding("inc", func(vdom.Event) {
						n.Update(func(v int) int { return v + 1 })
					})),
			)
		},
	}
}

func TestTester_FireAndSettle(t *testing.T) {
	ts := New(t, counter())

	if got, want := ts.HTML(), `<div><span class="value">0</span><button>+</button></div>`; got != want {
		t.Fatalf("initial HTML = %q, want %q", got, want)
	}

	if err := ts.Fire(ByTag("button"), "click"); err != nil {
		t.Fatal(err)
	}
	if err := ts.PumpAndSettle(); err != nil {
		t.Fatal(err)
	}
	if !ts.Find(ByText("1")).Exists() {
		t.Fatalf("counter did not advance: %s", ts.HTML())
	}
}

func TestTester_SeedStateBeforePump(t *testing.T) {
	ts := New(t, counter())

	state.Define(ts.Store(), "n", 0).Set(41)
	if err := ts.Pump(); err != nil {
		t.Fatal(err)
	}
	if got := ts.Find(ByAttr("class", "value")).First().Node.Children[0].Text; got != "41" {
		t.Fatalf("value = %q", got)
	}
}

func TestFinders(t *testing.T) {
	ts := New(t, runtime.Component{
		Name: "list",
		Render: func(ctx runtime.BuildContext) vdom.Node {
			return vdom.Elem("ul", nil,
				vdom.Elem("li", nil, vdom.Text("alpha")).WithKey("a"),
				vdom.Elem("li", nil, vdom.Text("beta")).WithKey("b"),
			)
		},
	})

	if got := ts.Find(ByTag("li")).Count(); got != 2 {
		t.Fatalf("ByTag(li) found %d", got)
	}
	if p := ts.Find(ByKey("b")).First().Path; p.String() != "/1" {
		t.Fatalf("ByKey(b) at %s", p)
	}
	if !ts.Find(ByPredicate("li with text beta", func(n vdom.Node) bool {
		return n.Tag == "li" && len(n.Children) == 1 && n.Children[0].Text == "beta"
	})).Exists() {
		t.Fatal("predicate finder missed")
	}
	if ts.Find(ByText("gamma")).Exists() {
		t.Fatal("ByText matched nothing that exists")
	}
}

func TestPumpAndSettle_TimesOutOnRenderLoop(t *testing.T) {
	ts := New(t, runtime.Component{
		Name: "loop",
		Render: func(ctx runtime.BuildContext) vdom.Node {
			n := state.Define(ctx.Store(), "n", 0)
			// A render that always writes what it reads never settles.
			v := n.Get()
			n.Set(v + 1)
			return vdom.Text(fmt.Sprintf("%d", v))
		},
	})

	state.Define(ts.Store(), "n", 0).Set(100)
	if err := ts.PumpAndSettle(); err != ErrSettleTimeout {
		t.Fatalf("expected settle timeout, got %v", err)
	}
}
