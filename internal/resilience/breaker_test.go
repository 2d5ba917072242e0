package resilience

import (
	"errors"
	"sync"
	"testing"
	"time"
)

var errFail = errors.New("fail")

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	b := newBreaker(3, time.Minute, nil, nil)

	for i := 0; i < 2; i++ {
		b.record(errFail)
	}
	if err := b.admit(); err != nil {
		t.Fatalf("expected closed breaker to admit, got %v", err)
	}

	b.record(errFail)
	if b.state != CircuitOpen {
		t.Fatalf("expected open after 3 failures, got %s", b.state)
	}
	if err := b.admit(); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestBreaker_SuccessResetsCount(t *testing.T) {
	b := newBreaker(3, time.Minute, nil, nil)

	b.record(errFail)
	b.record(errFail)
	b.record(nil)
	b.record(errFail)
	b.record(errFail)

	if b.state != CircuitClosed {
		t.Errorf("expected closed, got %s", b.state)
	}
}

func TestBreaker_HalfOpenAfterCooldown(t *testing.T) {
	now := time.Now()
	b := newBreaker(1, 100*time.Millisecond, nil, nil)
	b.now = func() time.Time { return now }

	b.record(errFail)
	if err := b.admit(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}

	now = now.Add(200 * time.Millisecond)
	if err := b.admit(); err != nil {
		t.Fatalf("expected admit after cooldown, got %v", err)
	}
	if b.state != CircuitHalfOpen {
		t.Fatalf("expected half-open, got %s", b.state)
	}

	b.record(nil)
	if b.state != CircuitClosed {
		t.Errorf("expected closed after successful call, got %s", b.state)
	}
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	now := time.Now()
	b := newBreaker(5, 100*time.Millisecond, nil, nil)
	b.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		b.record(errFail)
	}
	now = now.Add(200 * time.Millisecond)
	if err := b.admit(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b.record(errFail)
	if b.state != CircuitOpen {
		t.Errorf("expected open after failed half-open call, got %s", b.state)
	}
	if err := b.admit(); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected fresh cooldown, got %v", err)
	}
}

func TestBreaker_TripsFilter(t *testing.T) {
	b := newBreaker(1, time.Minute, IsTransient, nil)

	b.record(errors.New("place not found"))
	if b.state != CircuitClosed {
		t.Errorf("non-transient error should not trip, got %s", b.state)
	}

	b.record(NewTransientError(errors.New("throttled"), 429))
	if b.state != CircuitOpen {
		t.Errorf("transient error should trip, got %s", b.state)
	}
}

func TestBreaker_OnChange(t *testing.T) {
	now := time.Now()
	var transitions []string
	b := newBreaker(1, time.Second, nil, func(from, to State) {
		transitions = append(transitions, from.String()+"->"+to.String())
	})
	b.now = func() time.Time { return now }

	b.record(errFail)
	b.record(errFail)
	now = now.Add(2 * time.Second)
	_ = b.admit()
	b.record(nil)

	want := []string{"closed->open", "open->half-open", "half-open->closed"}
	if len(transitions) != len(want) {
		t.Fatalf("expected %v, got %v", want, transitions)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d: expected %q, got %q", i, want[i], transitions[i])
		}
	}
}

func TestBreaker_ConcurrentAccess(t *testing.T) {
	b := newBreaker(1000, time.Minute, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if b.admit() != nil {
				return
			}
			if i%2 == 0 {
				b.record(errFail)
			} else {
				b.record(nil)
			}
		}(i)
	}
	wg.Wait()

	if b.state != CircuitClosed {
		t.Errorf("expected closed, got %s", b.state)
	}
}

func TestState_String(t *testing.T) {
	cases := map[State]string{
		CircuitClosed:   "closed",
		CircuitOpen:     "open",
		CircuitHalfOpen: "half-open",
		State(42):       "unknown",
		State(-1):       "unknown",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("%d: expected %q, got %q", int(state), want, got)
		}
	}
}
