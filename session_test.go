package kinetic

import (
	"io"
	"testing"

	"kinetic/internal/bus"
	"kinetic/internal/hmacauth"
	"kinetic/internal/transport/transporttest"
	"kinetic/internal/wire"
)

var testHMACKey = []byte("shared-secret")

// newTestSession wires a Session directly to a fake in-process
// transport pair, bypassing Connect/transport.Dial so op-level tests
// don't need a real socket.
func newTestSession(t *testing.T) (*Session, *transporttest.FakeConn) {
	t.Helper()
	client, serverConn := transporttest.Pair()
	s := NewSession(SessionConfig{
		Host: "127.0.0.1", Port: 8123, Identity: 1, HMACKey: testHMACKey,
	})
	s.bus = bus.New(s.sess, client)
	s.bus.Start()
	t.Cleanup(func() { s.Disconnect() })
	return s, serverConn
}

// readRequest reads exactly one PDU off conn, decodes its envelope and
// inner command, and returns the PDU's value payload alongside it.
func readRequest(conn *transporttest.FakeConn) (*wire.Command, []byte, error) {
	hdr := make([]byte, wire.HeaderLen)
	if _, err := io.ReadFull(conn, hdr); err != nil {
		return nil, nil, err
	}
	commandLen, valueLen, err := wire.ParseHeader(hdr)
	if err != nil {
		return nil, nil, err
	}
	commandBytes := make([]byte, commandLen)
	if _, err := io.ReadFull(conn, commandBytes); err != nil {
		return nil, nil, err
	}
	var value []byte
	if valueLen > 0 {
		value = make([]byte, valueLen)
		if _, err := io.ReadFull(conn, value); err != nil {
			return nil, nil, err
		}
	}
	env, err := wire.UnmarshalEnvelope(commandBytes)
	if err != nil {
		return nil, nil, err
	}
	cmd, err := wire.Unmarshal(env.CommandBytes)
	if err != nil {
		return nil, nil, err
	}
	return cmd, value, nil
}

// writeResponse packs and writes a reply correlated to req via
// AckSequence, signed with key, carrying an optional typed body.
func writeResponse(conn *transporttest.FakeConn, key []byte, req *wire.Command, statusCode int32, body wire.Body, value []byte) error {
	resp := &wire.Command{
		Header: wire.Header{
			ClusterVersion: req.Header.ClusterVersion,
			ConnectionID:   1,
			AckSequence:    req.Header.Sequence,
			MessageType:    req.Header.MessageType + 1,
		},
		Body:   body,
		Status: wire.StatusInfo{Code: statusCode},
	}
	commandBytes, err := wire.Marshal(resp)
	if err != nil {
		return err
	}
	env := &wire.Envelope{
		AuthType:     wire.AuthHMAC,
		HMAC:         hmacauth.Sign(key, commandBytes),
		CommandBytes: commandBytes,
	}
	packed, err := wire.Pack(wire.Frame{Command: wire.MarshalEnvelope(env), Value: value})
	if err != nil {
		return err
	}
	_, err = conn.Write(packed)
	return err
}
