// Package state implements the reactive store: named, versioned state
// cells with render-time subscription tracking.
//
// A Store is not a process-wide singleton. Each root mount owns one and
// threads it through render calls. Stores are NOT thread-safe; like the
// rest of the runtime they must only be touched from the scheduler's
// goroutine. Use the scheduler's dispatch mechanism to write from a
// background goroutine.
package state

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/go-weft/weft/pkg/errors"
)

// SubscriberID identifies a render context (a mounted component
// instance) inside subscriber sets and ownership records. IDs are
// assigned by the runtime, not by this package.
type SubscriberID int

// HostOwner marks cells defined outside any render context. They are
// never released by component unmount.
const HostOwner SubscriberID = -1

// cell is one arena slot. Subscribers are cleared on every write and
// re-established by the next render's reads, so the set only ever
// holds contexts whose current output actually depends on the cell.
type cell struct {
	name     string
	value    any
	version  uint64
	owner    SubscriberID
	released bool
	subs     map[SubscriberID]struct{}
}

// Store is an arena of state cells addressed by index, with a name
// lookup for idempotent definition.
type Store struct {
	id     string
	cells  []*cell
	byName map[string]int

	reader    SubscriberID
	rendering bool

	notify func(dirty []SubscriberID)
}

// NewStore returns an empty store with a fresh instance ID.
func NewStore() *Store {
	return &Store{
		id:     uuid.NewString(),
		byName: map[string]int{},
		reader: HostOwner,
	}
}

// ID returns the store's instance ID, used in error reports.
func (s *Store) ID() string { return s.id }

// SetNotifier registers the callback invoked after every write with
// the subscribers dirtied by that write. The scheduler installs itself
// here. A nil notifier drops dirty sets on the floor.
func (s *Store) SetNotifier(fn func(dirty []SubscriberID)) {
	s.notify = fn
}

// BeginRender marks id as the active render context. Until EndRender,
// every Get subscribes id to the cell it reads.
func (s *Store) BeginRender(id SubscriberID) {
	s.reader = id
	s.rendering = true
}

// EndRender closes the active render context.
func (s *Store) EndRender() {
	s.reader = HostOwner
	s.rendering = false
}

// Release retires every cell owned by owner and removes owner from all
// subscriber sets. Called on unmount; subsequent writes to a retired
// cell are reported as write-after-unmount.
func (s *Store) Release(owner SubscriberID) {
	for _, c := range s.cells {
		if c.owner == owner {
			c.released = true
			c.subs = nil
			continue
		}
		delete(c.subs, owner)
	}
}

func (s *Store) define(name string, initial any) int {
	if i, ok := s.byName[name]; ok {
		return i
	}
	i := len(s.cells)
	s.cells = append(s.cells, &cell{
		name:  name,
		value: initial,
		owner: s.reader,
		subs:  map[SubscriberID]struct{}{},
	})
	s.byName[name] = i
	return i
}

func (s *Store) read(i int) any {
	c := s.cells[i]
	if s.rendering && !c.released {
		if c.subs == nil {
			c.subs = map[SubscriberID]struct{}{}
		}
		c.subs[s.reader] = struct{}{}
	}
	return c.value
}

func (s *Store) peek(i int) any {
	return s.cells[i].value
}

func (s *Store) write(i int, v any) {
	c := s.cells[i]
	if c.released {
		errors.Report(&errors.WeftError{
			Op:   "state.Set",
			Kind: errors.KindWriteAfterUnmount,
			Err:  fmt.Errorf("store %s: write to released cell %q", s.id, c.name),
		})
		return
	}
	c.value = v
	c.version++

	if len(c.subs) == 0 {
		return
	}
	dirty := make([]SubscriberID, 0, len(c.subs))
	for id := range c.subs {
		dirty = append(dirty, id)
	}
	c.subs = map[SubscriberID]struct{}{}
	sort.Slice(dirty, func(a, b int) bool { return dirty[a] < dirty[b] })
	if s.notify != nil {
		s.notify(dirty)
	}
}
