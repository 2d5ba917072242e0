// Package resilience guards upstream calls with retries and a circuit breaker.
package resilience

import (
	"sync"
	"time"

	"github.com/rotisserie/eris"
)

// State is the position of a Breaker.
type State int

const (
	// CircuitClosed lets every call through.
	CircuitClosed State = iota
	// CircuitOpen rejects calls until the cooldown has passed.
	CircuitOpen
	// CircuitHalfOpen lets calls through; the next outcome decides the state.
	CircuitHalfOpen
)

var stateNames = [...]string{"closed", "open", "half-open"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// ErrCircuitOpen is returned without calling upstream while a breaker is open.
var ErrCircuitOpen = eris.New("circuit breaker is open")

// Breaker counts consecutive tripping failures and opens after threshold of
// them. Errors for which trips returns false reset the count like a success.
type Breaker struct {
	threshold int
	cooldown  time.Duration
	trips     func(error) bool
	onChange  func(from, to State)
	now       func() time.Time

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
}

func newBreaker(threshold int, cooldown time.Duration, trips func(error) bool, onChange func(from, to State)) *Breaker {
	if trips == nil {
		trips = func(err error) bool { return err != nil }
	}
	return &Breaker{
		threshold: threshold,
		cooldown:  cooldown,
		trips:     trips,
		onChange:  onChange,
		now:       time.Now,
	}
}

// admit reports ErrCircuitOpen while the breaker is open and the cooldown
// has not yet passed.
func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != CircuitOpen {
		return nil
	}
	if b.now().Sub(b.openedAt) < b.cooldown {
		return ErrCircuitOpen
	}
	b.moveTo(CircuitHalfOpen)
	return nil
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil || !b.trips(err) {
		b.failures = 0
		if b.state == CircuitHalfOpen {
			b.moveTo(CircuitClosed)
		}
		return
	}

	b.failures++
	if b.state == CircuitHalfOpen || b.failures >= b.threshold {
		b.openedAt = b.now()
		b.moveTo(CircuitOpen)
	}
}

func (b *Breaker) moveTo(to State) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	if b.onChange != nil {
		b.onChange(from, to)
	}
}
