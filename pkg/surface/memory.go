package surface

import (
	"fmt"
	"sync"

	"github.com/go-weft/weft/pkg/vdom"
)

// memNode is the mutable mirror of a vdom.Node held by a Memory surface.
type memNode struct {
	kind     vdom.Kind
	tag      string
	key      string
	text     string
	attrs    map[string]string
	bindings map[string]*vdom.Binding
	children []*memNode
}

func buildMemNode(n vdom.Node) *memNode {
	m := &memNode{
		kind: n.Kind,
		tag:  n.Tag,
		key:  n.Key,
		text: n.Text,
	}
	if len(n.Attrs) > 0 {
		m.attrs = make(map[string]string, len(n.Attrs))
		for k, v := range n.Attrs {
			m.attrs[k] = v
		}
	}
	if len(n.Bindings) > 0 {
		m.bindings = make(map[string]*vdom.Binding, len(n.Bindings))
		for k, v := range n.Bindings {
			m.bindings[k] = v
		}
	}
	for _, c := range n.Children {
		m.children = append(m.children, buildMemNode(c))
	}
	return m
}

func (m *memNode) snapshot() vdom.Node {
	n := vdom.Node{
		Kind: m.kind,
		Tag:  m.tag,
		Key:  m.key,
		Text: m.text,
	}
	if len(m.attrs) > 0 {
		n.Attrs = make(vdom.Attrs, len(m.attrs))
		for k, v := range m.attrs {
			n.Attrs[k] = v
		}
	}
	if len(m.bindings) > 0 {
		n.Bindings = make(map[string]*vdom.Binding, len(m.bindings))
		for k, v := range m.bindings {
			n.Bindings[k] = v
		}
	}
	for _, c := range m.children {
		n.Children = append(n.Children, c.snapshot())
	}
	return n
}

// Memory is an in-memory target surface. It mirrors the applied tree in
// mutable form, keeps a log of every primitive call, and can fire events
// into bindings, which makes it both the default test double and the
// backbone of headless rendering.
type Memory struct {
	mu   sync.Mutex
	root *memNode
	log  []string
}

// NewMemory returns an empty surface. The first CreateElement with an
// empty path initializes the root.
func NewMemory() *Memory {
	return &Memory{}
}

// NewMemoryFrom returns a surface already holding tree n.
func NewMemoryFrom(n vdom.Node) *Memory {
	return &Memory{root: buildMemNode(n)}
}

// Snapshot copies the current tree back into an immutable vdom.Node.
func (m *Memory) Snapshot() (vdom.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.root == nil {
		return vdom.Node{}, fmt.Errorf("surface is empty")
	}
	return m.root.snapshot(), nil
}

// Log returns the primitive calls applied so far, one entry per call, in
// application order.
func (m *Memory) Log() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.log...)
}

// Fire synthesizes an event into the binding registered for name on the
// element at the given path, as a host would on user input.
func (m *Memory) Fire(at vdom.Path, name string, payload any) error {
	m.mu.Lock()
	node, err := m.resolve(at)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	binding := node.bindings[name]
	m.mu.Unlock()
	if binding == nil || binding.Handler == nil {
		return fmt.Errorf("no %q binding at %s", name, at)
	}
	binding.Handler(vdom.Event{Name: name, Payload: payload})
	return nil
}

// resolve walks the path from the root. Callers hold the mutex.
func (m *Memory) resolve(at vdom.Path) (*memNode, error) {
	if m.root == nil {
		return nil, fmt.Errorf("surface is empty")
	}
	node := m.root
	for _, i := range at {
		if i < 0 || i >= len(node.children) {
			return nil, fmt.Errorf("no node at %s: index %d out of %d children", at, i, len(node.children))
		}
		node = node.children[i]
	}
	return node, nil
}

func (m *Memory) record(format string, args ...any) {
	m.log = append(m.log, fmt.Sprintf(format, args...))
}

// CreateElement implements TargetSurface.
func (m *Memory) CreateElement(at vdom.Path, n vdom.Node) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(at) == 0 {
		m.root = buildMemNode(n)
		m.record("create_element %s %s", at, n)
		return nil
	}
	parent, err := m.resolve(at[:len(at)-1])
	if err != nil {
		return err
	}
	i := at[len(at)-1]
	if i < 0 || i >= len(parent.children) {
		return fmt.Errorf("create_element %s: index %d out of %d children", at, i, len(parent.children))
	}
	parent.children[i] = buildMemNode(n)
	m.record("create_element %s %s", at, n)
	return nil
}

// SetText implements TargetSurface.
func (m *Memory) SetText(at vdom.Path, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	node, err := m.resolve(at)
	if err != nil {
		return err
	}
	if node.kind != vdom.KindText {
		return fmt.Errorf("set_text %s: node is %s, not text", at, node.kind)
	}
	node.text = text
	m.record("set_text %s %q", at, text)
	return nil
}

// SetAttribute implements TargetSurface.
func (m *Memory) SetAttribute(at vdom.Path, name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	node, err := m.resolve(at)
	if err != nil {
		return err
	}
	if node.kind != vdom.KindElement {
		return fmt.Errorf("set_attribute %s: node is %s, not an element", at, node.kind)
	}
	if node.attrs == nil {
		node.attrs = make(map[string]string)
	}
	node.attrs[name] = value
	m.record("set_attribute %s %s=%q", at, name, value)
	return nil
}

// RemoveAttribute implements TargetSurface.
func (m *Memory) RemoveAttribute(at vdom.Path, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	node, err := m.resolve(at)
	if err != nil {
		return err
	}
	if node.kind != vdom.KindElement {
		return fmt.Errorf("remove_attribute %s: node is %s, not an element", at, node.kind)
	}
	delete(node.attrs, name)
	m.record("remove_attribute %s %s", at, name)
	return nil
}

// InsertChild implements TargetSurface.
func (m *Memory) InsertChild(parent vdom.Path, index int, n vdom.Node) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	node, err := m.resolve(parent)
	if err != nil {
		return err
	}
	if index < 0 || index > len(node.children) {
		return fmt.Errorf("insert_child %s: index %d out of %d children", parent, index, len(node.children))
	}
	child := buildMemNode(n)
	node.children = append(node.children, nil)
	copy(node.children[index+1:], node.children[index:])
	node.children[index] = child
	m.record("insert_child %s %d %s", parent, index, n)
	return nil
}

// RemoveChild implements TargetSurface.
func (m *Memory) RemoveChild(parent vdom.Path, index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	node, err := m.resolve(parent)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(node.children) {
		return fmt.Errorf("remove_child %s: index %d out of %d children", parent, index, len(node.children))
	}
	node.children = append(node.children[:index], node.children[index+1:]...)
	m.record("remove_child %s %d", parent, index)
	return nil
}

// MoveChild implements TargetSurface.
func (m *Memory) MoveChild(parent vdom.Path, from, to int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	node, err := m.resolve(parent)
	if err != nil {
		return err
	}
	if from < 0 || from >= len(node.children) {
		return fmt.Errorf("move_child %s: from %d out of %d children", parent, from, len(node.children))
	}
	if to < 0 || to >= len(node.children) {
		return fmt.Errorf("move_child %s: to %d out of %d children", parent, to, len(node.children))
	}
	moved := node.children[from]
	node.children = append(node.children[:from], node.children[from+1:]...)
	node.children = append(node.children, nil)
	copy(node.children[to+1:], node.children[to:])
	node.children[to] = moved
	m.record("move_child %s %d->%d", parent, from, to)
	return nil
}

// BindEvent implements TargetSurface.
func (m *Memory) BindEvent(at vdom.Path, name string, b *vdom.Binding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	node, err := m.resolve(at)
	if err != nil {
		return err
	}
	if node.kind != vdom.KindElement {
		return fmt.Errorf("bind_event %s: node is %s, not an element", at, node.kind)
	}
	if b == nil {
		delete(node.bindings, name)
		m.record("bind_event %s %s (unbind)", at, name)
		return nil
	}
	if node.bindings == nil {
		node.bindings = make(map[string]*vdom.Binding)
	}
	node.bindings[name] = b
	m.record("bind_event %s %s", at, name)
	return nil
}
