package kinetic

import (
	"context"

	"kinetic/internal/bus"
	"kinetic/internal/wire"
)

// NOOP submits a no-op request: no payload, no post-processing.
// Useful for exercising sequence and admission plumbing.
func (s *Session) NOOP(ctx context.Context, closure CompletionFunc, userData interface{}) Status {
	cmd := &wire.Command{Header: wire.Header{Sequence: wire.NotYetBound, MessageType: wire.MessageNOOP}}
	return s.dispatchRequest(ctx, bus.Request{
		Command: cmd,
		Timeout: defaultTimeout,
		Complete: func(resp *wire.Command, value []byte, err error) {
			status := SUCCESS
			if err != nil {
				status = failureStatus(err)
			} else if resp != nil {
				status = remoteStatus(resp)
			}
			if closure != nil {
				closure(status, userData)
			}
		},
	})
}

// FlushAllData submits a FLUSHALLDATA request: no payload, no
// post-processing.
func (s *Session) FlushAllData(ctx context.Context, closure CompletionFunc, userData interface{}) Status {
	cmd := &wire.Command{Header: wire.Header{Sequence: wire.NotYetBound, MessageType: wire.MessageFLUSHALLDATA}}
	return s.dispatchRequest(ctx, bus.Request{
		Command: cmd,
		Timeout: defaultTimeout,
		Complete: func(resp *wire.Command, value []byte, err error) {
			status := SUCCESS
			if err != nil {
				status = failureStatus(err)
			} else if resp != nil {
				status = remoteStatus(resp)
			}
			if closure != nil {
				closure(status, userData)
			}
		},
	})
}
