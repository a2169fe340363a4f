package runtime

import (
	"testing"

	"github.com/go-weft/weft/pkg/state"
)

func TestScheduler_CoalescesDuplicateIDs(t *testing.T) {
	s := newScheduler()
	s.schedule(1)
	s.schedule(1)
	s.schedule(2)

	batch := s.begin()
	if len(batch) != 2 {
		t.Fatalf("batch = %v, want two distinct ids", batch)
	}
	s.finish()
}

func TestScheduler_BeginWithoutWorkReturnsNil(t *testing.T) {
	s := newScheduler()
	if batch := s.begin(); batch != nil {
		t.Fatalf("idle begin returned %v", batch)
	}
}

func TestScheduler_WritesDuringFlushDeferred(t *testing.T) {
	s := newScheduler()
	s.schedule(1)
	batch := s.begin()
	if len(batch) != 1 {
		t.Fatalf("batch = %v", batch)
	}

	s.schedule(2)
	if got := s.begin(); got != nil {
		t.Fatalf("mid-flush begin returned %v, deferred work must wait", got)
	}

	s.finish()
	next := s.begin()
	if len(next) != 1 || next[0] != state.SubscriberID(2) {
		t.Fatalf("next batch = %v, want the deferred id", next)
	}
	s.finish()
}

func TestScheduler_PingsHostOncePerIdleTransition(t *testing.T) {
	s := newScheduler()
	pings := 0
	s.OnNeedsFlush = func() { pings++ }

	s.schedule(1)
	s.schedule(2)
	if pings != 1 {
		t.Fatalf("pings = %d, want 1", pings)
	}

	s.begin()
	s.schedule(3)
	s.finish()
	if pings != 2 {
		t.Fatalf("pings after deferred requeue = %d, want 2", pings)
	}
}
