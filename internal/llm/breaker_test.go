package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

type scriptedClient struct {
	errs  []error
	calls int
}

func (s *scriptedClient) Generate(ctx context.Context, req Request) (string, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	return "ok", nil
}

func TestBreakerOpensOnTransportFailures(t *testing.T) {
	down := &TransportError{StatusCode: 503}
	next := &scriptedClient{errs: []error{down, down, down}}
	b := NewBreakerWithConfig(next, 3, 1, time.Minute)

	for i := 0; i < 3; i++ {
		if _, err := b.Generate(context.Background(), Request{}); err == nil {
			t.Fatalf("call %d: expected error", i)
		}
	}
	if b.State() != CircuitOpen {
		t.Fatalf("expected open, got %s", b.State())
	}

	_, err := b.Generate(context.Background(), Request{})
	if !errors.Is(err, ErrCircuitOpen) || !IsTransport(err) {
		t.Fatalf("expected circuit-open transport error, got %v", err)
	}
	if next.calls != 3 {
		t.Errorf("open breaker should not call through, calls=%d", next.calls)
	}
}

func TestBreakerIgnoresUnexpectedErrors(t *testing.T) {
	bad := &UnexpectedError{Err: errors.New("garbled")}
	next := &scriptedClient{errs: []error{bad, bad, bad, bad}}
	b := NewBreakerWithConfig(next, 2, 1, time.Minute)

	for i := 0; i < 4; i++ {
		b.Generate(context.Background(), Request{})
	}
	if b.State() != CircuitClosed {
		t.Errorf("unexpected errors must not open the circuit, got %s", b.State())
	}
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	now := time.Now()
	next := &scriptedClient{errs: []error{&TransportError{StatusCode: 500}}}
	b := NewBreakerWithConfig(next, 1, 1, time.Second)
	b.now = func() time.Time { return now }

	var transitions []string
	b.OnStateChange = func(from, to CircuitState) {
		transitions = append(transitions, from.String()+"->"+to.String())
	}

	b.Generate(context.Background(), Request{})
	if b.State() != CircuitOpen {
		t.Fatalf("expected open, got %s", b.State())
	}

	now = now.Add(2 * time.Second)
	text, err := b.Generate(context.Background(), Request{})
	if err != nil || text != "ok" {
		t.Fatalf("probe failed: %q %v", text, err)
	}
	if b.State() != CircuitClosed {
		t.Fatalf("expected closed after successful probe, got %s", b.State())
	}

	want := []string{"closed->open", "open->half_open", "half_open->closed"}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d = %s, want %s", i, transitions[i], want[i])
		}
	}
}
