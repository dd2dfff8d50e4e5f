package wire

import "bytes"

// Envelope is the outer wire message: it carries the
// authentication mode plus the inner command-proto bytes. The PDU's
// "commandBytes" field (Frame.Command) is the marshaled Envelope; the
// Envelope's own CommandBytes field holds the marshaled inner Command
// (header/body/status).
type Envelope struct {
	AuthType     AuthType
	Identity     int64
	HMAC         []byte
	Pin          []byte
	CommandBytes []byte
}

// MarshalEnvelope encodes an Envelope to bytes.
func MarshalEnvelope(e *Envelope) []byte {
	var buf bytes.Buffer
	w := &writer{buf: &buf}
	w.writeI32(int32(e.AuthType))
	w.writeI64(e.Identity)
	w.writeBytes(e.HMAC)
	w.writeBytes(e.Pin)
	w.writeBytes(e.CommandBytes)
	return buf.Bytes()
}

// UnmarshalEnvelope decodes bytes produced by MarshalEnvelope.
func UnmarshalEnvelope(data []byte) (*Envelope, error) {
	r := &reader{buf: bytes.NewReader(data)}
	e := &Envelope{
		AuthType:     AuthType(r.readI32()),
		Identity:     r.readI64(),
		HMAC:         r.readBytes(),
		Pin:          r.readBytes(),
		CommandBytes: r.readBytes(),
	}
	if r.err != nil {
		return nil, r.err
	}
	return e, nil
}
