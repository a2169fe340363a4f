// Package scene decodes YAML scene descriptions into node trees the
// runtime can mount. A scene is a static tree the tooling re-feeds
// through a signal whenever the file changes, so edits flow through the
// same diff and apply pipeline a live application uses.
package scene

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/go-weft/weft/pkg/runtime"
	"github.com/go-weft/weft/pkg/state"
	"github.com/go-weft/weft/pkg/vdom"
)

// SignalName is the store cell the scene component reads. Tooling
// writes reloaded scenes into it.
const SignalName = "scene"

// Scene is the top-level document.
type Scene struct {
	Title string `yaml:"title,omitempty"`
	Root  Item   `yaml:"root"`
}

// Item is one node: either a text item (Text set, no Tag) or an
// element item (Tag set, optional Attrs, Key and Children).
type Item struct {
	Tag      string            `yaml:"tag,omitempty"`
	Text     string            `yaml:"text,omitempty"`
	Key      string            `yaml:"key,omitempty"`
	Attrs    map[string]string `yaml:"attrs,omitempty"`
	Children []Item            `yaml:"children,omitempty"`
}

// Load reads and validates a scene file.
func Load(path string) (Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scene{}, fmt.Errorf("read scene: %w", err)
	}
	return Parse(data)
}

// Parse decodes a scene document. Unknown fields are rejected so typos
// in scene files fail loudly instead of silently dropping content.
func Parse(data []byte) (Scene, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var sc Scene
	if err := dec.Decode(&sc); err != nil {
		if err == io.EOF {
			return Scene{}, fmt.Errorf("scene is empty")
		}
		return Scene{}, fmt.Errorf("decode scene: %w", err)
	}
	if err := sc.Root.validate("root"); err != nil {
		return Scene{}, err
	}
	return sc, nil
}

func (it Item) validate(at string) error {
	switch {
	case it.Tag == "" && it.Text == "":
		return fmt.Errorf("%s: item needs a tag or text", at)
	case it.Tag != "" && it.Text != "" && len(it.Children) > 0:
		return fmt.Errorf("%s: element %q cannot mix text shorthand with children", at, it.Tag)
	case it.Tag == "" && (len(it.Children) > 0 || len(it.Attrs) > 0):
		return fmt.Errorf("%s: text item cannot carry attrs or children", at)
	}
	for i, c := range it.Children {
		if err := c.validate(fmt.Sprintf("%s.children[%d]", at, i)); err != nil {
			return err
		}
	}
	return nil
}

// Node converts a validated item into a node. Text on an element item
// is shorthand for a single text child.
func (it Item) Node() vdom.Node {
	if it.Tag == "" {
		return vdom.Text(it.Text)
	}
	children := make([]vdom.Node, 0, len(it.Children)+1)
	if it.Text != "" {
		children = append(children, vdom.Text(it.Text))
	}
	for _, c := range it.Children {
		children = append(children, c.Node())
	}
	n := vdom.Elem(it.Tag, it.Attrs, children...)
	if it.Key != "" {
		n = n.WithKey(it.Key)
	}
	return n
}

// Component wraps a scene in a component that re-renders whenever the
// scene signal is written.
func Component(initial Scene) runtime.Component {
	return runtime.Component{
		Name: "scene",
		Render: func(ctx runtime.BuildContext) vdom.Node {
			current := state.Define(ctx.Store(), SignalName, initial)
			return current.Get().Root.Node()
		},
	}
}

// Signal returns the scene cell on a mounted root's store, for tooling
// to write reloads into.
func Signal(s *state.Store, initial Scene) state.Signal[Scene] {
	return state.Define(s, SignalName, initial)
}
