package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrTruncated is returned by Unmarshal when the buffer ends before a
// complete Command has been decoded.
var ErrTruncated = errors.New("wire: command-proto truncated")

// Marshal encodes a Command to its command-proto bytes. This is the
// plain length-prefixed encoding, not a wire-compatible
// reimplementation of any particular schema compiler.
func Marshal(c *Command) ([]byte, error) {
	var buf bytes.Buffer
	w := &writer{buf: &buf}

	w.writeI64(c.Header.ClusterVersion)
	w.writeI64(c.Header.ConnectionID)
	w.writeI64(c.Header.Sequence)
	w.writeI64(c.Header.AckSequence)
	w.writeI64(c.Header.Identity)
	w.writeI32(int32(c.Header.MessageType))

	w.writeI32(c.Status.Code)
	w.writeString(c.Status.Message)
	w.writeString(c.Status.DetailedMessage)

	writeBodyKeyValue(w, c.Body.KeyValue)
	writeBodyRange(w, c.Body.Range)
	writeBodyGetLog(w, c.Body.GetLog)
	writeBodySecurity(w, c.Body.Security)
	writeBodySetup(w, c.Body.Setup)
	writeBodyPinOp(w, c.Body.PinOp)
	writeBodyP2P(w, c.Body.P2P)

	if w.err != nil {
		return nil, w.err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes command-proto bytes produced by Marshal back into
// a Command.
func Unmarshal(data []byte) (*Command, error) {
	r := &reader{buf: bytes.NewReader(data)}

	c := &Command{}
	c.Header.ClusterVersion = r.readI64()
	c.Header.ConnectionID = r.readI64()
	c.Header.Sequence = r.readI64()
	c.Header.AckSequence = r.readI64()
	c.Header.Identity = r.readI64()
	c.Header.MessageType = MessageType(r.readI32())

	c.Status.Code = r.readI32()
	c.Status.Message = r.readString()
	c.Status.DetailedMessage = r.readString()

	c.Body.KeyValue = readBodyKeyValue(r)
	c.Body.Range = readBodyRange(r)
	c.Body.GetLog = readBodyGetLog(r)
	c.Body.Security = readBodySecurity(r)
	c.Body.Setup = readBodySetup(r)
	c.Body.PinOp = readBodyPinOp(r)
	c.Body.P2P = readBodyP2P(r)

	if r.err != nil {
		return nil, r.err
	}
	return c, nil
}

// --- low-level TLV writer/reader -------------------------------------------

type writer struct {
	buf *bytes.Buffer
	err error
}

func (w *writer) writeBool(b bool) {
	if b {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

func (w *writer) writePresent(present bool) { w.writeBool(present) }

func (w *writer) writeI32(v int32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	w.buf.Write(b[:])
}

func (w *writer) writeI64(v int64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	w.buf.Write(b[:])
}

func (w *writer) writeBytes(b []byte) {
	w.writeI32(int32(len(b)))
	w.buf.Write(b)
}

func (w *writer) writeString(s string) { w.writeBytes([]byte(s)) }

func (w *writer) writeBytesSlice(bs [][]byte) {
	w.writeI32(int32(len(bs)))
	for _, b := range bs {
		w.writeBytes(b)
	}
}

func (w *writer) writeI32Slice(vs []int32) {
	w.writeI32(int32(len(vs)))
	for _, v := range vs {
		w.writeI32(v)
	}
}

func (w *writer) writeStringSlice(ss []string) {
	w.writeI32(int32(len(ss)))
	for _, s := range ss {
		w.writeString(s)
	}
}

type reader struct {
	buf *bytes.Reader
	err error
}

func (r *reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *reader) readBool() bool {
	b, err := r.buf.ReadByte()
	if err != nil {
		r.fail(fmt.Errorf("%w: %v", ErrTruncated, err))
		return false
	}
	return b != 0
}

func (r *reader) readI32() int32 {
	var b [4]byte
	if _, err := readFull(r.buf, b[:]); err != nil {
		r.fail(err)
		return 0
	}
	return int32(binary.BigEndian.Uint32(b[:]))
}

func (r *reader) readI64() int64 {
	var b [8]byte
	if _, err := readFull(r.buf, b[:]); err != nil {
		r.fail(err)
		return 0
	}
	return int64(binary.BigEndian.Uint64(b[:]))
}

func (r *reader) readBytes() []byte {
	n := r.readI32()
	if r.err != nil || n <= 0 {
		return nil
	}
	b := make([]byte, n)
	if _, err := readFull(r.buf, b); err != nil {
		r.fail(err)
		return nil
	}
	return b
}

func (r *reader) readString() string { return string(r.readBytes()) }

func (r *reader) readBytesSlice() [][]byte {
	n := r.readI32()
	if r.err != nil || n <= 0 {
		return nil
	}
	out := make([][]byte, n)
	for i := range out {
		out[i] = r.readBytes()
	}
	return out
}

func (r *reader) readI32Slice() []int32 {
	n := r.readI32()
	if r.err != nil || n <= 0 {
		return nil
	}
	out := make([]int32, n)
	for i := range out {
		out[i] = r.readI32()
	}
	return out
}

func (r *reader) readStringSlice() []string {
	n := r.readI32()
	if r.err != nil || n <= 0 {
		return nil
	}
	out := make([]string, n)
	for i := range out {
		out[i] = r.readString()
	}
	return out
}

func readFull(r *bytes.Reader, b []byte) (int, error) {
	n, err := r.Read(b)
	if err != nil {
		return n, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	if n != len(b) {
		return n, ErrTruncated
	}
	return n, nil
}

// --- body codecs -------------------------------------------------------

func writeBodyKeyValue(w *writer, kv *KeyValue) {
	w.writePresent(kv != nil)
	if kv == nil {
		return
	}
	w.writeBytes(kv.Key)
	w.writeBytes(kv.NewVersion)
	w.writeBytes(kv.DbVersion)
	w.writeBytes(kv.Tag)
	w.writeI32(kv.Algorithm)
	w.writeBool(kv.Force)
	w.writeBool(kv.MetadataOnly)
}

func readBodyKeyValue(r *reader) *KeyValue {
	if !r.readBool() {
		return nil
	}
	return &KeyValue{
		Key:          r.readBytes(),
		NewVersion:   r.readBytes(),
		DbVersion:    r.readBytes(),
		Tag:          r.readBytes(),
		Algorithm:    r.readI32(),
		Force:        r.readBool(),
		MetadataOnly: r.readBool(),
	}
}

func writeBodyRange(w *writer, rg *Range) {
	w.writePresent(rg != nil)
	if rg == nil {
		return
	}
	w.writeBytes(rg.StartKey)
	w.writeBytes(rg.EndKey)
	w.writeBool(rg.StartKeyInclusive)
	w.writeBool(rg.EndKeyInclusive)
	w.writeI32(rg.MaxReturned)
	w.writeBool(rg.Reverse)
	w.writeBytesSlice(rg.Keys)
}

func readBodyRange(r *reader) *Range {
	if !r.readBool() {
		return nil
	}
	return &Range{
		StartKey:          r.readBytes(),
		EndKey:            r.readBytes(),
		StartKeyInclusive: r.readBool(),
		EndKeyInclusive:   r.readBool(),
		MaxReturned:       r.readI32(),
		Reverse:           r.readBool(),
		Keys:              r.readBytesSlice(),
	}
}

func writeBodyGetLog(w *writer, lg *LogInfo) {
	w.writePresent(lg != nil)
	if lg == nil {
		return
	}
	w.writeI32Slice(lg.Types)
	w.writeBytesSlice(lg.Messages)
	w.writeStringSlice(lg.Utilizations)
	w.writeI64(lg.Capacity)
}

func readBodyGetLog(r *reader) *LogInfo {
	if !r.readBool() {
		return nil
	}
	return &LogInfo{
		Types:        r.readI32Slice(),
		Messages:     r.readBytesSlice(),
		Utilizations: r.readStringSlice(),
		Capacity:     r.readI64(),
	}
}

func writeACLEntry(w *writer, e ACLEntry) {
	w.writeBool(e.HasIdentity)
	w.writeI64(e.Identity)
	w.writeBool(e.HasKey)
	w.writeBytes(e.Key)
	w.writeBool(e.HasOffset)
	w.writeI64(e.Offset)
	w.writeBool(e.HasValue)
	w.writeBytes(e.Value)
	w.writeI32Slice(e.Permissions)
	w.writeBool(e.HasTLSRequired)
	w.writeBool(e.TLSRequired)
}

func readACLEntry(r *reader) ACLEntry {
	var e ACLEntry
	e.HasIdentity = r.readBool()
	e.Identity = r.readI64()
	e.HasKey = r.readBool()
	e.Key = r.readBytes()
	e.HasOffset = r.readBool()
	e.Offset = r.readI64()
	e.HasValue = r.readBool()
	e.Value = r.readBytes()
	e.Permissions = r.readI32Slice()
	e.HasTLSRequired = r.readBool()
	e.TLSRequired = r.readBool()
	return e
}

func writeBodySecurity(w *writer, s *SecurityBody) {
	w.writePresent(s != nil)
	if s == nil {
		return
	}
	w.writeI32(int32(len(s.ACLs)))
	for _, e := range s.ACLs {
		writeACLEntry(w, e)
	}
	w.writeBytes(s.OldLockPIN)
	w.writeBytes(s.NewLockPIN)
	w.writeBytes(s.OldErasePIN)
	w.writeBytes(s.NewErasePIN)
	w.writeBool(s.IsErasePIN)
}

func readBodySecurity(r *reader) *SecurityBody {
	if !r.readBool() {
		return nil
	}
	n := r.readI32()
	s := &SecurityBody{}
	if n > 0 {
		s.ACLs = make([]ACLEntry, n)
		for i := range s.ACLs {
			s.ACLs[i] = readACLEntry(r)
		}
	}
	s.OldLockPIN = r.readBytes()
	s.NewLockPIN = r.readBytes()
	s.OldErasePIN = r.readBytes()
	s.NewErasePIN = r.readBytes()
	s.IsErasePIN = r.readBool()
	return s
}

func writeBodySetup(w *writer, s *SetupBody) {
	w.writePresent(s != nil)
	if s == nil {
		return
	}
	w.writeBool(s.FirmwareDownload)
	w.writeBool(s.HasClusterVersion)
	w.writeI64(s.NewClusterVersion)
}

func readBodySetup(r *reader) *SetupBody {
	if !r.readBool() {
		return nil
	}
	return &SetupBody{
		FirmwareDownload:  r.readBool(),
		HasClusterVersion: r.readBool(),
		NewClusterVersion: r.readI64(),
	}
}

func writeBodyPinOp(w *writer, p *PinOpBody) {
	w.writePresent(p != nil)
	if p == nil {
		return
	}
	w.writeI32(int32(p.Op))
}

func readBodyPinOp(r *reader) *PinOpBody {
	if !r.readBool() {
		return nil
	}
	return &PinOpBody{Op: PinOpType(r.readI32())}
}

func writeP2POp(w *writer, op P2POp) {
	w.writeBytes(op.Key)
	w.writeBool(op.HasNewKey)
	w.writeBytes(op.NewKey)
	w.writeBool(op.HasVersion)
	w.writeBytes(op.Version)
	w.writeBool(op.Force)
	w.writeBool(op.HasStatus)
	w.writeI32(op.Status)
	writeBodyP2P(w, op.Chained)
}

func readP2POp(r *reader) P2POp {
	var op P2POp
	op.Key = r.readBytes()
	op.HasNewKey = r.readBool()
	op.NewKey = r.readBytes()
	op.HasVersion = r.readBool()
	op.Version = r.readBytes()
	op.Force = r.readBool()
	op.HasStatus = r.readBool()
	op.Status = r.readI32()
	op.Chained = readBodyP2P(r)
	return op
}

func writeBodyP2P(w *writer, p *P2PBody) {
	w.writePresent(p != nil)
	if p == nil {
		return
	}
	w.writeString(p.PeerHost)
	w.writeI32(p.PeerPort)
	w.writeBool(p.PeerTLS)
	w.writeI32(int32(len(p.Ops)))
	for _, op := range p.Ops {
		writeP2POp(w, op)
	}
}

func readBodyP2P(r *reader) *P2PBody {
	if !r.readBool() {
		return nil
	}
	p := &P2PBody{
		PeerHost: r.readString(),
		PeerPort: r.readI32(),
		PeerTLS:  r.readBool(),
	}
	n := r.readI32()
	if n > 0 {
		p.Ops = make([]P2POp, n)
		for i := range p.Ops {
			p.Ops[i] = readP2POp(r)
		}
	}
	return p
}
