package kinetic

import (
	"context"

	"kinetic/internal/bus"
	"kinetic/internal/wire"
)

// P2P submits a P2POPERATION request. The operation
// tree is validated (nesting depth, total sub-operation count) before
// a sequence number is consumed. On success, the response tree is
// walked and each sub-operation's Status field is filled in.
func (s *Session) P2P(ctx context.Context, op *P2POperation, closure CompletionFunc, userData interface{}) Status {
	if st := op.validate(); st != SUCCESS {
		return st
	}

	cmd := &wire.Command{
		Header: wire.Header{Sequence: wire.NotYetBound, MessageType: wire.MessagePEER2PEERPUSH},
		Body:   wire.Body{P2P: buildP2PBody(op)},
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
			if status == SUCCESS && resp != nil && resp.Body.P2P != nil {
				walkP2PResponse(op, resp.Body.P2P)
			}
			if closure != nil {
				closure(status, userData)
			}
		},
	})
}

func buildP2PBody(op *P2POperation) *wire.P2PBody {
	body := &wire.P2PBody{
		PeerHost: op.PeerHost,
		PeerPort: op.PeerPort,
		PeerTLS:  op.PeerTLS,
		Ops:      make([]wire.P2POp, len(op.Ops)),
	}
	for i := range op.Ops {
		src := &op.Ops[i]
		wop := wire.P2POp{
			Key:    src.Key,
			Force:  src.Force(),
			NewKey: src.NewKey,
		}
		if src.NewKey != nil {
			wop.HasNewKey = true
		}
		if src.Version != nil {
			wop.HasVersion = true
			wop.Version = src.Version
		}
		if src.Chained != nil {
			wop.Chained = buildP2PBody(src.Chained)
		}
		body.Ops[i] = wop
	}
	return body
}

// walkP2PResponse copies each returned sub-operation's status back
// into the caller's tree. Trees are walked positionally: the response
// is expected to mirror the request's shape, so a length mismatch
// simply stops early rather than panicking.
func walkP2PResponse(op *P2POperation, body *wire.P2PBody) {
	n := len(op.Ops)
	if len(body.Ops) < n {
		n = len(body.Ops)
	}
	for i := 0; i < n; i++ {
		wop := body.Ops[i]
		if wop.HasStatus {
			op.Ops[i].Status = FromRemoteCode(wop.Status)
		}
		if op.Ops[i].Chained != nil && wop.Chained != nil {
			walkP2PResponse(op.Ops[i].Chained, wop.Chained)
		}
	}
}
