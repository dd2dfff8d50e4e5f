package kinetic

import (
	"context"
	"time"

	"kinetic/internal/bus"
	"kinetic/internal/wire"
)

// pinOpTimeout returns the per-op timeout for each PINOP sub-command.
func pinOpTimeout(op wire.PinOpType) time.Duration {
	switch op {
	case wire.PinOpLock:
		return lockTimeout
	case wire.PinOpUnlock:
		return unlockTimeout
	case wire.PinOpErase, wire.PinOpSecureErase:
		return eraseTimeout
	default:
		return defaultTimeout
	}
}

// pinOp submits a PINOP request pin-authenticated with pin: lock,
// unlock, erase, and secure-erase all share this builder, differing
// only in PinOpType and timeout.
func (s *Session) pinOp(ctx context.Context, op wire.PinOpType, pin []byte, closure CompletionFunc, userData interface{}) Status {
	cmd := &wire.Command{
		Header: wire.Header{Sequence: wire.NotYetBound, MessageType: wire.MessagePINOP},
		Body:   wire.Body{PinOp: &wire.PinOpBody{Op: op}},
	}

	return s.dispatchRequest(ctx, bus.Request{
		Command: cmd,
		PinAuth: true,
		Pin:     pin,
		Timeout: pinOpTimeout(op),
		Complete: func(resp *wire.Command, value []byte, err error) {
			status := SUCCESS
			switch {
			case err != nil:
				status = failureStatus(err)
			case resp != nil:
				status = remoteStatus(resp)
			}
			if closure != nil {
				closure(status, userData)
			}
		},
	})
}

// Lock submits a PINOP lock request.
func (s *Session) Lock(ctx context.Context, pin []byte, closure CompletionFunc, userData interface{}) Status {
	return s.pinOp(ctx, wire.PinOpLock, pin, closure, userData)
}

// Unlock submits a PINOP unlock request.
func (s *Session) Unlock(ctx context.Context, pin []byte, closure CompletionFunc, userData interface{}) Status {
	return s.pinOp(ctx, wire.PinOpUnlock, pin, closure, userData)
}

// Erase submits a PINOP erase request.
func (s *Session) Erase(ctx context.Context, pin []byte, closure CompletionFunc, userData interface{}) Status {
	return s.pinOp(ctx, wire.PinOpErase, pin, closure, userData)
}

// SecureErase submits a PINOP secure-erase request.
func (s *Session) SecureErase(ctx context.Context, pin []byte, closure CompletionFunc, userData interface{}) Status {
	return s.pinOp(ctx, wire.PinOpSecureErase, pin, closure, userData)
}
