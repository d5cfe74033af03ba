package resilience

import (
	"errors"
	"testing"
	"time"
)

func newTestBreaker(threshold int, openTimeout time.Duration) (*CircuitBreaker, *time.Time) {
	b := NewCircuitBreaker("thesportsdb", CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: threshold,
		OpenTimeout:      openTimeout,
		HalfOpenMaxReq:   1,
	})

	now := time.Date(2025, 9, 20, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }
	return b, &now
}

func TestCircuitBreaker_BasicTransitions(t *testing.T) {
	b, now := newTestBreaker(2, 5*time.Second)

	var transitions []CircuitState
	b.OnStateChange(func(name string, from, to CircuitState) {
		if name != "thesportsdb" {
			t.Fatalf("unexpected breaker name %q", name)
		}
		transitions = append(transitions, to)
	})

	if err := b.Allow(); err != nil {
		t.Fatalf("expected allow in closed state: %v", err)
	}

	b.RecordFailure()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after first failure, got %s", state)
	}

	b.RecordFailure()
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open after threshold failures, got %s", state)
	}

	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected circuit open error, got %v", err)
	}

	*now = now.Add(6 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected half-open probe to pass, got %v", err)
	}
	if state := b.State(); state != CircuitStateHalfOpen {
		t.Fatalf("expected half-open state, got %s", state)
	}

	b.RecordSuccess()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after successful half-open probe, got %s", state)
	}

	want := []CircuitState{CircuitStateOpen, CircuitStateHalfOpen, CircuitStateClosed}
	if len(transitions) != len(want) {
		t.Fatalf("unexpected transitions: %v", transitions)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Fatalf("unexpected transitions: %v", transitions)
		}
	}
}

func TestCircuitBreaker_RecordClassifiesErrors(t *testing.T) {
	b, _ := newTestBreaker(1, time.Minute)
	notFound := errors.New("status=404")

	b.Record(notFound, func(err error) bool { return false })
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected non-transient error to keep breaker closed, got %s", state)
	}

	b.Record(errors.New("status=503"), nil)
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected transient error to open breaker, got %s", state)
	}
}

func TestCircuitBreaker_Disabled(t *testing.T) {
	b := NewCircuitBreaker("footballdata", CircuitBreakerConfig{Enabled: false, FailureThreshold: 1})

	b.RecordFailure()
	b.RecordFailure()
	if err := b.Allow(); err != nil {
		t.Fatalf("expected disabled breaker to allow, got %v", err)
	}
}
