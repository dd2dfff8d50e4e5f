package kinetic

import (
	"context"

	"kinetic/internal/bus"
	"kinetic/internal/wire"
)

// SetACL submits a SECURITY request attaching doc's records. Each
// (record, scope) pair flattens into one wire.ACLEntry
// combining the record's identity/key with that scope's
// offset/value/permissions/TLS requirement. Timeout is 90s (only
// erase and secure-erase, at 180s, are longer), since ACL installation
// can require the device to rewrite its security metadata.
func (s *Session) SetACL(ctx context.Context, doc *ACLDocument, closure CompletionFunc, userData interface{}) Status {
	entries := flattenACLDocument(doc)

	cmd := &wire.Command{
		Header: wire.Header{Sequence: wire.NotYetBound, MessageType: wire.MessageSECURITY},
		Body:   wire.Body{Security: &wire.SecurityBody{ACLs: entries}},
	}

	return s.dispatchRequest(ctx, bus.Request{
		Command: cmd,
		Timeout: setACLTimeout,
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

func flattenACLDocument(doc *ACLDocument) []wire.ACLEntry {
	var entries []wire.ACLEntry
	for _, rec := range doc.Records {
		for _, scope := range rec.Scopes {
			entry := wire.ACLEntry{
				Identity:       rec.Identity,
				HasIdentity:    rec.HasIdentity,
				Key:            rec.Key,
				HasKey:         rec.HasKey,
				Offset:         scope.Offset,
				HasOffset:      scope.HasOffset,
				Value:          scope.Value,
				HasValue:       scope.HasValue,
				TLSRequired:    scope.TLSRequired,
				HasTLSRequired: scope.HasTLSRequired,
			}
			entry.Permissions = make([]int32, len(scope.Permissions))
			for i, p := range scope.Permissions {
				entry.Permissions[i] = int32(p)
			}
			entries = append(entries, entry)
		}
	}
	return entries
}

// PINKind selects which PIN pair a SetPIN request replaces: the
// lock PIN or the erase PIN.
type PINKind int

const (
	PINKindLock PINKind = iota
	PINKindErase
)

// SetPIN submits a SECURITY request replacing a PIN. It is hmac-auth,
// not pin-auth, and carries a 30s timeout.
func (s *Session) SetPIN(ctx context.Context, kind PINKind, oldPIN, newPIN []byte, closure CompletionFunc, userData interface{}) Status {
	body := &wire.SecurityBody{IsErasePIN: kind == PINKindErase}
	switch kind {
	case PINKindErase:
		body.OldErasePIN = oldPIN
		body.NewErasePIN = newPIN
	default:
		body.OldLockPIN = oldPIN
		body.NewLockPIN = newPIN
	}

	cmd := &wire.Command{
		Header: wire.Header{Sequence: wire.NotYetBound, MessageType: wire.MessageSECURITY},
		Body:   wire.Body{Security: body},
	}

	return s.dispatchRequest(ctx, bus.Request{
		Command: cmd,
		Timeout: setPinTimeout,
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
