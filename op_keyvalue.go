package kinetic

import (
	"context"

	"kinetic/internal/bus"
	"kinetic/internal/wire"
)

// Put submits a PUT request for e. The value is rejected with
// BUFFER_OVERRUN before a sequence number is consumed if it exceeds
// MaxValue. On a successful response, if e.NewVersion was set at call
// time, it becomes e.DbVersion and e.NewVersion is cleared.
func (s *Session) Put(ctx context.Context, e *Entry, closure CompletionFunc, userData interface{}) Status {
	if st := e.validateValue(); st != SUCCESS {
		return st
	}
	oldNewVersion := append([]byte(nil), e.NewVersion...)

	cmd := &wire.Command{
		Header: wire.Header{Sequence: wire.NotYetBound, MessageType: wire.MessagePUT},
		Body: wire.Body{KeyValue: &wire.KeyValue{
			Key:          e.Key,
			NewVersion:   e.NewVersion,
			DbVersion:    e.DbVersion,
			Tag:          e.Tag,
			Algorithm:    int32(e.Algorithm),
			Force:        e.Force,
			MetadataOnly: e.MetadataOnly,
		}},
	}

	return s.dispatchRequest(ctx, bus.Request{
		Command: cmd,
		Value:   e.Value,
		Timeout: defaultTimeout,
		Complete: func(resp *wire.Command, value []byte, err error) {
			status := SUCCESS
			switch {
			case err != nil:
				status = failureStatus(err)
			case resp != nil:
				status = remoteStatus(resp)
			}
			if status == SUCCESS && len(oldNewVersion) > 0 {
				e.DbVersion = oldNewVersion
				e.NewVersion = nil
			}
			if closure != nil {
				closure(status, userData)
			}
		},
	})
}

// Delete submits a DELETE request for e.Key. No post-processing.
func (s *Session) Delete(ctx context.Context, e *Entry, closure CompletionFunc, userData interface{}) Status {
	cmd := &wire.Command{
		Header: wire.Header{Sequence: wire.NotYetBound, MessageType: wire.MessageDELETE},
		Body: wire.Body{KeyValue: &wire.KeyValue{
			Key:       e.Key,
			DbVersion: e.DbVersion,
			Force:     e.Force,
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
			if closure != nil {
				closure(status, userData)
			}
		},
	})
}

type getKind int

const (
	getExact getKind = iota
	getNext
	getPrevious
)

// Get submits a GET request for e.Key.
func (s *Session) Get(ctx context.Context, e *Entry, closure CompletionFunc, userData interface{}) Status {
	return s.getFamily(ctx, getExact, e, closure, userData)
}

// GetNext submits a GETNEXT request for the first key strictly after e.Key.
func (s *Session) GetNext(ctx context.Context, e *Entry, closure CompletionFunc, userData interface{}) Status {
	return s.getFamily(ctx, getNext, e, closure, userData)
}

// GetPrevious submits a GETPREVIOUS request for the last key strictly
// before e.Key.
func (s *Session) GetPrevious(ctx context.Context, e *Entry, closure CompletionFunc, userData interface{}) Status {
	return s.getFamily(ctx, getPrevious, e, closure, userData)
}

// getFamily implements GET/GETNEXT/GETPREVIOUS's shared builder and
// post-processor. A nil e.Value buffer is treated as a metadata-only
// request regardless of e.MetadataOnly. When e.Value was pre-allocated
// with spare capacity (cap(e.Value) > 0), the response value must fit
// that capacity or the operation resolves to BUFFER_OVERRUN; a
// capacity of zero means the caller left sizing to us and we simply
// grow e.Value to fit.
func (s *Session) getFamily(ctx context.Context, kind getKind, e *Entry, closure CompletionFunc, userData interface{}) Status {
	metadataOnly := e.MetadataOnly || e.Value == nil
	msgType := wire.MessageGET
	switch kind {
	case getNext:
		msgType = wire.MessageGETNEXT
	case getPrevious:
		msgType = wire.MessageGETPREVIOUS
	}

	cmd := &wire.Command{
		Header: wire.Header{Sequence: wire.NotYetBound, MessageType: msgType},
		Body: wire.Body{KeyValue: &wire.KeyValue{
			Key:          e.Key,
			Algorithm:    int32(e.Algorithm),
			MetadataOnly: metadataOnly,
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
			if status == SUCCESS && resp != nil && resp.Body.KeyValue != nil {
				kv := resp.Body.KeyValue
				e.Key = kv.Key
				e.Tag = kv.Tag
				e.DbVersion = kv.DbVersion
				e.Algorithm = Algorithm(kv.Algorithm)
				if !metadataOnly {
					if cap(e.Value) > 0 && len(value) > cap(e.Value) {
						status = BUFFER_OVERRUN
					} else {
						e.Value = append(e.Value[:0], value...)
					}
				}
			}
			if closure != nil {
				closure(status, userData)
			}
		},
	})
}
