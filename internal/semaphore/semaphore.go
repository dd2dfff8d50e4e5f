// Package semaphore implements the bounded admission counter used to
// cap in-flight operations per session, built on the buffered-channel
// semaphore idiom.
package semaphore

import "context"

// Sem is a counting semaphore with capacity fixed at construction.
type Sem struct {
	slots chan struct{}
}

// New returns a Sem with the given capacity.
func New(capacity int) *Sem {
	return &Sem{slots: make(chan struct{}, capacity)}
}

// Take blocks until a slot is available or ctx is done.
func (s *Sem) Take(ctx context.Context) error {
	select {
	case s.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryTake attempts to take a slot without blocking.
func (s *Sem) TryTake() bool {
	select {
	case s.slots <- struct{}{}:
		return true
	default:
		return false
	}
}

// Give releases a slot, waking one blocked Take if any are waiting.
func (s *Sem) Give() {
	select {
	case <-s.slots:
	default:
		// Give without a matching Take is a caller bug; ignored rather
		// than panicking, since the bus always pairs take/give.
	}
}

// InFlight returns the number of slots currently taken.
func (s *Sem) InFlight() int {
	return len(s.slots)
}

// Capacity returns the semaphore's fixed capacity.
func (s *Sem) Capacity() int {
	return cap(s.slots)
}
