package kinetic

import (
	"context"
	"sync"
	"testing"
	"time"

	"kinetic/internal/wire"
)

// TestNOOPClosureInvokedExactlyOnce checks that every dispatched
// operation's closure fires exactly once.
func TestNOOPClosureInvokedExactlyOnce(t *testing.T) {
	s, serverConn := newTestSession(t)

	serverDone := make(chan error, 1)
	go func() {
		req, _, err := readRequest(serverConn)
		if err != nil {
			serverDone <- err
			return
		}
		serverDone <- writeResponse(serverConn, testHMACKey, req, 0, wire.Body{}, nil)
	}()

	var calls int
	var mu sync.Mutex
	done := make(chan struct{})
	st := s.NOOP(context.Background(), func(status Status, _ interface{}) {
		mu.Lock()
		calls++
		mu.Unlock()
		close(done)
	}, nil)
	if st != SUCCESS {
		t.Fatalf("NOOP dispatch: %v", st)
	}
	if err := <-serverDone; err != nil {
		t.Fatalf("fake server: %v", err)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("closure never invoked")
	}

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

// TestNOOPNotConnectedReturnsOperationInvalid covers the "session
// connected" precondition builders must check before consuming a
// sequence number.
func TestNOOPNotConnectedReturnsOperationInvalid(t *testing.T) {
	s := NewSession(SessionConfig{Host: "127.0.0.1", Port: 8123, HMACKey: testHMACKey})
	st := s.NOOP(context.Background(), func(Status, interface{}) {
		t.Fatal("closure should not be invoked when never dispatched")
	}, nil)
	if st != OPERATION_INVALID {
		t.Fatalf("NOOP = %v, want OPERATION_INVALID", st)
	}
}

// TestDisconnectDrainsPendingNOOP covers the bus's drain-on-close
// behavior surfaced through the root Session API.
func TestDisconnectDrainsPendingNOOP(t *testing.T) {
	s, serverConn := newTestSession(t)
	go readRequest(serverConn)

	done := make(chan Status, 1)
	st := s.NOOP(context.Background(), func(status Status, _ interface{}) { done <- status }, nil)
	if st != SUCCESS {
		t.Fatalf("NOOP dispatch: %v", st)
	}
	if err := s.Disconnect(); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	select {
	case status := <-done:
		if status != CONNECTION_ERROR {
			t.Fatalf("completion status = %v, want CONNECTION_ERROR", status)
		}
	case <-time.After(time.Second):
		t.Fatal("completion never invoked after Disconnect")
	}
}
