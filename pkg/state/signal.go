package state

// Signal is a typed handle to one store cell. Handles are cheap values;
// copying one aliases the same cell.
type Signal[T any] struct {
	store *Store
	idx   int
}

// Define returns the signal named name, creating the cell with initial
// on first definition. Definition is idempotent by name: a later Define
// with the same name returns a handle to the existing cell and ignores
// initial. The cell is owned by the active render context, or by the
// host when defined outside a render.
func Define[T any](s *Store, name string, initial T) Signal[T] {
	return Signal[T]{store: s, idx: s.define(name, initial)}
}

// Get reads the current value. Inside an active render context the
// reading component is subscribed to future writes.
func (sig Signal[T]) Get() T {
	v, _ := sig.store.read(sig.idx).(T)
	return v
}

// Peek reads the current value without subscribing anyone.
func (sig Signal[T]) Peek() T {
	v, _ := sig.store.peek(sig.idx).(T)
	return v
}

// Set writes a new value: the cell version is bumped, current
// subscribers are handed to the scheduler as dirty, and the subscriber
// set is cleared for the next render to rebuild.
func (sig Signal[T]) Set(v T) {
	sig.store.write(sig.idx, v)
}

// Update applies a transformation to the current value.
func (sig Signal[T]) Update(transform func(T) T) {
	sig.Set(transform(sig.Peek()))
}

// Version returns the cell's write count.
func (sig Signal[T]) Version() uint64 {
	return sig.store.cells[sig.idx].version
}

// Name returns the cell's definition name.
func (sig Signal[T]) Name() string {
	return sig.store.cells[sig.idx].name
}

// Derived projects a signal through a selector. Reading a Derived
// subscribes like reading the underlying signal; there is no caching,
// the selector runs on every read.
type Derived[T, U any] struct {
	sig Signal[T]
	fn  func(T) U
}

// Derive builds a derived view over sig.
func Derive[T, U any](sig Signal[T], fn func(T) U) Derived[T, U] {
	return Derived[T, U]{sig: sig, fn: fn}
}

// Get computes the projection of the current value, subscribing the
// active render context to the underlying cell.
func (d Derived[T, U]) Get() U {
	return d.fn(d.sig.Get())
}

// Peek computes the projection without subscribing.
func (d Derived[T, U]) Peek() U {
	return d.fn(d.sig.Peek())
}
