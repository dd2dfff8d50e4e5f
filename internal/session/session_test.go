package session

import (
	"sort"
	"sync"
	"testing"
	"time"

	"kinetic/internal/wire"
)

func newTestSession() *Session {
	return New(Config{Host: "127.0.0.1", Port: 8123, Identity: 1, HMACKey: []byte("key")})
}

// TestSequenceMonotonicity checks that 1000 concurrent
// nextSequence calls from 8 goroutines produce exactly {0..999}, no
// gaps, no repeats.
func TestSequenceMonotonicity(t *testing.T) {
	s := newTestSession()
	const total = 1000
	const workers = 8

	seqs := make(chan int64, total)
	var wg sync.WaitGroup
	perWorker := total / workers
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				seqs <- s.NextSequence()
			}
		}()
	}
	wg.Wait()
	close(seqs)

	seen := make([]int64, 0, total)
	for v := range seqs {
		seen = append(seen, v)
	}
	if len(seen) != total {
		t.Fatalf("got %d sequence numbers, want %d", len(seen), total)
	}
	sort.Slice(seen, func(i, j int) bool { return seen[i] < seen[j] })
	for i, v := range seen {
		if v != int64(i) {
			t.Fatalf("sequence numbers have a gap/repeat at index %d: %d", i, v)
		}
	}
}

func TestRegisterCompleteOnce(t *testing.T) {
	s := newTestSession()
	var calls int32
	var mu sync.Mutex
	s.Register(0, time.Now().Add(time.Second), func(resp *wire.Command, value []byte, err error) {
		mu.Lock()
		calls++
		mu.Unlock()
	}, false)

	complete := s.Complete(0)
	if complete == nil {
		t.Fatal("expected a registered completion")
	}
	complete(&wire.Command{}, nil, nil)

	if again := s.Complete(0); again != nil {
		t.Errorf("Complete should return nil for an already-completed sequence")
	}
	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("completion invoked %d times, want 1", calls)
	}
}

func TestCompleteUnknownSequenceReturnsNil(t *testing.T) {
	s := newTestSession()
	if got := s.Complete(42); got != nil {
		t.Errorf("expected nil for unregistered sequence")
	}
}

func TestSweepTimeouts(t *testing.T) {
	s := newTestSession()
	done := make(chan error, 1)
	s.Register(0, time.Now().Add(-time.Millisecond), func(resp *wire.Command, value []byte, err error) {
		done <- err
	}, false)

	n := s.SweepTimeouts(time.Now())
	if n != 1 {
		t.Fatalf("SweepTimeouts completed %d entries, want 1", n)
	}
	select {
	case err := <-done:
		if err != ErrTimeout {
			t.Errorf("got err %v, want ErrTimeout", err)
		}
	default:
		t.Fatal("completion was not invoked")
	}
	if s.PendingCount() != 0 {
		t.Errorf("pending table should be empty after sweep")
	}
}

func TestSweepTimeoutsDropsLateResponse(t *testing.T) {
	s := newTestSession()
	calls := 0
	s.Register(0, time.Now().Add(-time.Millisecond), func(resp *wire.Command, value []byte, err error) {
		calls++
	}, false)
	s.SweepTimeouts(time.Now())

	// A late response arriving after the sweep finds nothing registered.
	if got := s.Complete(0); got != nil {
		t.Errorf("expected nil; a late response must be dropped, not delivered twice")
	}
	if calls != 1 {
		t.Errorf("completion invoked %d times, want exactly 1", calls)
	}
}

func TestDrainAllCancelsPending(t *testing.T) {
	s := newTestSession()
	results := make([]error, 3)
	for i := 0; i < 3; i++ {
		i := i
		s.Register(int64(i), time.Now().Add(time.Minute), func(resp *wire.Command, value []byte, err error) {
			results[i] = err
		}, false)
	}
	s.DrainAll(ErrConnectionBroken)
	for i, err := range results {
		if err != ErrConnectionBroken {
			t.Errorf("pending[%d] err = %v, want ErrConnectionBroken", i, err)
		}
	}
	if !s.Broken() {
		t.Errorf("session should be marked broken after DrainAll")
	}
	if s.PendingCount() != 0 {
		t.Errorf("pending table should be drained")
	}
}
