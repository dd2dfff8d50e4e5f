package semaphore

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestTakeBlocksUntilCapacity(t *testing.T) {
	s := New(2)
	ctx := context.Background()
	if err := s.Take(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Take(ctx); err != nil {
		t.Fatal(err)
	}
	if s.TryTake() {
		t.Errorf("TryTake succeeded beyond capacity")
	}
	s.Give()
	if !s.TryTake() {
		t.Errorf("TryTake failed after a Give freed a slot")
	}
}

func TestTakeContextCancel(t *testing.T) {
	s := New(1)
	ctx := context.Background()
	_ = s.Take(ctx)

	cctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.Take(cctx); err == nil {
		t.Errorf("expected Take to fail once context is done")
	}
}

// TestBackPressure checks that under concurrent load, in-flight
// admissions never exceed capacity.
func TestBackPressure(t *testing.T) {
	const capacity = 64
	const submitters = 100
	s := New(capacity)

	var inflight int64
	var maxSeen int64
	var wg sync.WaitGroup
	release := make(chan struct{})

	for i := 0; i < submitters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx := context.Background()
			if err := s.Take(ctx); err != nil {
				return
			}
			n := atomic.AddInt64(&inflight, 1)
			for {
				old := atomic.LoadInt64(&maxSeen)
				if n <= old || atomic.CompareAndSwapInt64(&maxSeen, old, n) {
					break
				}
			}
			<-release
			atomic.AddInt64(&inflight, -1)
			s.Give()
		}()
	}

	time.Sleep(50 * time.Millisecond)
	if got := atomic.LoadInt64(&maxSeen); got > capacity {
		t.Errorf("observed %d in-flight, want <= %d", got, capacity)
	}
	close(release)
	wg.Wait()
}
