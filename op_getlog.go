package kinetic

import (
	"context"

	"kinetic/internal/bus"
	"kinetic/internal/wire"
)

// GetLog submits a GETLOG request for the given log types, populating
// out on success. A response with no GetLog body
// resolves to OPERATION_FAILED.
func (s *Session) GetLog(ctx context.Context, types []int32, out *LogInfo, closure CompletionFunc, userData interface{}) Status {
	cmd := &wire.Command{
		Header: wire.Header{Sequence: wire.NotYetBound, MessageType: wire.MessageGETLOG},
		Body:   wire.Body{GetLog: &wire.LogInfo{Types: types}},
	}

	return s.dispatchRequest(ctx, bus.Request{
		Command: cmd,
		Timeout: defaultTimeout,
		Complete: func(resp *wire.Command, value []byte, err error) {
			status := SUCCESS
			switch {
			case err != nil:
				status = failureStatus(err)
			case resp != nil:
				status = remoteStatus(resp)
			}
			if status == SUCCESS {
				if resp == nil || resp.Body.GetLog == nil {
					status = OPERATION_FAILED
				} else if out != nil {
					li := resp.Body.GetLog
					out.Types = li.Types
					out.Messages = li.Messages
					out.Utilizations = li.Utilizations
					out.Capacity = li.Capacity
				}
			}
			if closure != nil {
				closure(status, userData)
			}
		},
	})
}
