package runtime

import (
	"sync"

	"github.com/go-weft/weft/pkg/state"
)

type schedPhase int

const (
	schedIdle schedPhase = iota
	schedPending
	schedFlushing
)

// scheduler tracks dirty instances between flushes. A write while idle
// moves it to pending and pings the host; writes while pending coalesce
// into the current batch; writes while flushing are deferred to the
// next pass so a render cannot re-enter the pass that triggered it.
type scheduler struct {
	mu    sync.Mutex
	phase schedPhase

	queue  []state.SubscriberID
	queued map[state.SubscriberID]bool

	deferred    []state.SubscriberID
	deferredSet map[state.SubscriberID]bool

	// OnNeedsFlush is called when work becomes pending, signalling the
	// host event loop that Flush should be invoked. Called at most once
	// per idle-to-pending transition.
	OnNeedsFlush func()
}

func newScheduler() *scheduler {
	return &scheduler{
		queued:      map[state.SubscriberID]bool{},
		deferredSet: map[state.SubscriberID]bool{},
	}
}

func (s *scheduler) schedule(id state.SubscriberID) {
	s.mu.Lock()
	if s.phase == schedFlushing {
		if !s.deferredSet[id] {
			s.deferredSet[id] = true
			s.deferred = append(s.deferred, id)
		}
		s.mu.Unlock()
		return
	}
	if s.queued[id] {
		s.mu.Unlock()
		return
	}
	s.queued[id] = true
	s.queue = append(s.queue, id)
	wake := s.phase == schedIdle
	if wake {
		s.phase = schedPending
	}
	s.mu.Unlock()

	if wake && s.OnNeedsFlush != nil {
		s.OnNeedsFlush()
	}
}

// begin starts a flush and hands back the batch, or nil when there is
// nothing to do.
func (s *scheduler) begin() []state.SubscriberID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != schedPending || len(s.queue) == 0 {
		return nil
	}
	s.phase = schedFlushing
	batch := s.queue
	s.queue = nil
	clear(s.queued)
	return batch
}

// finish ends a flush. Writes deferred during the pass become the next
// pending batch and ping the host again.
func (s *scheduler) finish() {
	s.mu.Lock()
	s.phase = schedIdle
	deferred := s.deferred
	s.deferred = nil
	clear(s.deferredSet)
	s.mu.Unlock()

	for _, id := range deferred {
		s.schedule(id)
	}
}

func (s *scheduler) pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue) > 0 || len(s.deferred) > 0
}
