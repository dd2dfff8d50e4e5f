package kinetic

import (
	"context"
	"testing"
	"time"

	"kinetic/internal/wire"
)

func TestGetLogPopulatesOutOnSuccess(t *testing.T) {
	s, serverConn := newTestSession(t)
	var out LogInfo

	serverDone := make(chan error, 1)
	go func() {
		req, _, err := readRequest(serverConn)
		if err != nil {
			serverDone <- err
			return
		}
		respBody := wire.Body{GetLog: &wire.LogInfo{
			Types:        []int32{1, 2},
			Messages:     [][]byte{[]byte("m1"), []byte("m2")},
			Utilizations: []string{"cpu:10%"},
			Capacity:     1024,
		}}
		serverDone <- writeResponse(serverConn, testHMACKey, req, 0, respBody, nil)
	}()

	done := make(chan Status, 1)
	st := s.GetLog(context.Background(), []int32{1, 2}, &out, func(status Status, _ interface{}) { done <- status }, nil)
	if st != SUCCESS {
		t.Fatalf("GetLog dispatch: %v", st)
	}
	if err := <-serverDone; err != nil {
		t.Fatalf("fake server: %v", err)
	}
	select {
	case status := <-done:
		if status != SUCCESS {
			t.Fatalf("completion: %v", status)
		}
	case <-time.After(time.Second):
		t.Fatal("completion never invoked")
	}

	if out.Capacity != 1024 || len(out.Messages) != 2 {
		t.Fatalf("out = %+v, unexpected", out)
	}
}

// TestGetLogAbsentBodyIsOperationFailed covers the "body absent →
// OPERATION_FAILED" rule.
func TestGetLogAbsentBodyIsOperationFailed(t *testing.T) {
	s, serverConn := newTestSession(t)
	var out LogInfo

	serverDone := make(chan error, 1)
	go func() {
		req, _, err := readRequest(serverConn)
		if err != nil {
			serverDone <- err
			return
		}
		serverDone <- writeResponse(serverConn, testHMACKey, req, 0, wire.Body{}, nil)
	}()

	done := make(chan Status, 1)
	st := s.GetLog(context.Background(), []int32{1}, &out, func(status Status, _ interface{}) { done <- status }, nil)
	if st != SUCCESS {
		t.Fatalf("GetLog dispatch: %v", st)
	}
	if err := <-serverDone; err != nil {
		t.Fatalf("fake server: %v", err)
	}
	select {
	case status := <-done:
		if status != OPERATION_FAILED {
			t.Fatalf("completion = %v, want OPERATION_FAILED", status)
		}
	case <-time.After(time.Second):
		t.Fatal("completion never invoked")
	}
}
