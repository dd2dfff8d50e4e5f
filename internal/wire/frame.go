// Package wire implements the Kinetic on-wire PDU framing (C2) and a
// concrete default codec for the command-proto structured message.
// The framing byte layout is fixed by the protocol; the command-proto
// encoding below is this module's own length-prefixed big-endian
// encoding, swappable for any codec with the same pack/unpack shape.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Magic is the single-byte PDU marker, ASCII 'F'.
const Magic byte = 0x46

// MaxCommand bounds the structured command-proto message. Every
// command the core builds stays within this ceiling.
//
// There is deliberately no value cap at this layer: the 1 MiB entry
// limit bounds an Entry's value for PUT, enforced before a sequence
// number is ever consumed. The value
// payload carried by a PDU is otherwise just an opaque
// length-prefixed blob whose size is operation-dependent: a firmware
// download legitimately carries a multi-MiB image.
const MaxCommand = 1 << 20 // 1 MiB

// ErrOversizeCommand is returned by Pack/Unpack when commandLen
// exceeds MaxCommand.
var (
	ErrOversizeCommand = errors.New("wire: command exceeds MAX_COMMAND")
	ErrBadMagic        = errors.New("wire: bad magic byte")
	ErrShortHeader     = errors.New("wire: PDU header truncated")
	ErrShortBody       = errors.New("wire: PDU body truncated")
)

// Frame is the decoded on-wire PDU: a command-proto byte string and an
// optional value payload:
//
//	0x46 | u32be commandLen | u32be valueLen | commandBytes | value
type Frame struct {
	Command []byte
	Value   []byte
}

// Pack renders a Frame to its on-wire byte representation. It rejects
// an oversize command payload before producing any bytes.
func Pack(f Frame) ([]byte, error) {
	if len(f.Command) > MaxCommand {
		return nil, ErrOversizeCommand
	}
	buf := make([]byte, 1+4+4+len(f.Command)+len(f.Value))
	buf[0] = Magic
	binary.BigEndian.PutUint32(buf[1:5], uint32(len(f.Command)))
	binary.BigEndian.PutUint32(buf[5:9], uint32(len(f.Value)))
	copy(buf[9:9+len(f.Command)], f.Command)
	copy(buf[9+len(f.Command):], f.Value)
	return buf, nil
}

// HeaderLen is the number of bytes preceding commandBytes: magic + two
// u32be lengths.
const HeaderLen = 9

// ParseHeader validates and decodes the 9-byte PDU header, returning
// the declared command and value lengths. It rejects an oversize
// command length before any further read is attempted; valueLen is
// returned as declared (see MaxCommand's doc comment for why the
// value length carries no generic ceiling here).
func ParseHeader(hdr []byte) (commandLen, valueLen uint32, err error) {
	if len(hdr) < HeaderLen {
		return 0, 0, ErrShortHeader
	}
	if hdr[0] != Magic {
		return 0, 0, ErrBadMagic
	}
	commandLen = binary.BigEndian.Uint32(hdr[1:5])
	valueLen = binary.BigEndian.Uint32(hdr[5:9])
	if commandLen > MaxCommand {
		return 0, 0, ErrOversizeCommand
	}
	return commandLen, valueLen, nil
}

// Unpack validates and decodes a full PDU byte slice (header + bodies)
// into a Frame.
func Unpack(pdu []byte) (Frame, error) {
	commandLen, valueLen, err := ParseHeader(pdu)
	if err != nil {
		return Frame{}, err
	}
	want := HeaderLen + int(commandLen) + int(valueLen)
	if len(pdu) < want {
		return Frame{}, ErrShortBody
	}
	f := Frame{
		Command: append([]byte(nil), pdu[HeaderLen:HeaderLen+int(commandLen)]...),
		Value:   append([]byte(nil), pdu[HeaderLen+int(commandLen):want]...),
	}
	return f, nil
}

func (f Frame) String() string {
	return fmt.Sprintf("Frame{command=%d bytes, value=%d bytes}", len(f.Command), len(f.Value))
}
