package kinetic

import (
	"context"

	"kinetic/internal/bus"
	"kinetic/internal/wire"
)

// GetKeyRange submits a GETKEYRANGE request for kr. On success, the
// response's keys are copied back into kr.Keys; if the server returned
// more than kr.MaxReturned, the caller's buffer can't hold them all
// and the operation resolves to BUFFER_OVERRUN instead. A MaxReturned
// of zero places no cap on the copy.
func (s *Session) GetKeyRange(ctx context.Context, kr *KeyRange, closure CompletionFunc, userData interface{}) Status {
	cmd := &wire.Command{
		Header: wire.Header{Sequence: wire.NotYetBound, MessageType: wire.MessageGETKEYRANGE},
		Body: wire.Body{Range: &wire.Range{
			StartKey:          kr.StartKey,
			EndKey:            kr.EndKey,
			StartKeyInclusive: kr.StartKeyInclusive,
			EndKeyInclusive:   kr.EndKeyInclusive,
			MaxReturned:       kr.MaxReturned,
			Reverse:           kr.Reverse,
		}},
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
			if status == SUCCESS && resp != nil && resp.Body.Range != nil {
				keys := resp.Body.Range.Keys
				if kr.MaxReturned > 0 && int32(len(keys)) > kr.MaxReturned {
					status = BUFFER_OVERRUN
				} else {
					kr.Keys = keys
				}
			}
			if closure != nil {
				closure(status, userData)
			}
		},
	})
}
