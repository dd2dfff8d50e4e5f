package kinetic

import (
	"context"
	"os"

	"kinetic/internal/bus"
	"kinetic/internal/wire"
)

// SetupFirmwareDownload reads path into the wire value buffer and
// submits a SETUP request carrying it. A file that
// cannot be opened or read resolves to INVALID_FILE synchronously,
// without consuming a sequence number.
func (s *Session) SetupFirmwareDownload(ctx context.Context, path string, closure CompletionFunc, userData interface{}) Status {
	data, err := os.ReadFile(path)
	if err != nil {
		return INVALID_FILE
	}

	cmd := &wire.Command{
		Header: wire.Header{Sequence: wire.NotYetBound, MessageType: wire.MessageSETUP},
		Body:   wire.Body{Setup: &wire.SetupBody{FirmwareDownload: true}},
	}

	return s.dispatchRequest(ctx, bus.Request{
		Command: cmd,
		Value:   data,
		Timeout: defaultTimeout,
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

// SetupNewClusterVersion submits a SETUP request installing v as the
// new cluster version. On success, the session's own cluster version
// is updated so subsequent requests carry it.
func (s *Session) SetupNewClusterVersion(ctx context.Context, v int64, closure CompletionFunc, userData interface{}) Status {
	cmd := &wire.Command{
		Header: wire.Header{Sequence: wire.NotYetBound, MessageType: wire.MessageSETUP},
		Body: wire.Body{Setup: &wire.SetupBody{
			NewClusterVersion: v,
			HasClusterVersion: true,
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
			if status == SUCCESS {
				s.sess.SetClusterVersion(v)
			}
			if closure != nil {
				closure(status, userData)
			}
		},
	})
}
