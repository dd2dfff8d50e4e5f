package wire

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	cases := []Frame{
		{Command: []byte("hello"), Value: []byte("world")},
		{Command: []byte{}, Value: []byte{}},
		{Command: []byte("cmd-only"), Value: nil},
	}
	for _, f := range cases {
		packed, err := Pack(f)
		if err != nil {
			t.Fatalf("Pack: %v", err)
		}
		got, err := Unpack(packed)
		if err != nil {
			t.Fatalf("Unpack: %v", err)
		}
		if !bytes.Equal(got.Command, f.Command) || !bytes.Equal(got.Value, f.Value) {
			t.Errorf("round trip mismatch: got %+v, want %+v", got, f)
		}
	}
}

func TestPackRejectsOversizeCommand(t *testing.T) {
	_, err := Pack(Frame{Command: make([]byte, MaxCommand+1)})
	if err != ErrOversizeCommand {
		t.Errorf("got %v, want ErrOversizeCommand", err)
	}
}

// TestPackAllowsLargeValue confirms the value length carries no
// generic ceiling at the framing layer: only MaxCommand is enforced
// here, since an operation-dependent payload (e.g. a multi-MiB
// firmware image) can legitimately exceed the entry-value limit,
// which is enforced elsewhere.
func TestPackAllowsLargeValue(t *testing.T) {
	big := make([]byte, MaxCommand+(1<<20))
	packed, err := Pack(Frame{Command: []byte("cmd"), Value: big})
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	got, err := Unpack(packed)
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if !bytes.Equal(got.Value, big) {
		t.Errorf("round trip dropped or corrupted the oversize value")
	}
}

func TestParseHeaderRejectsBadMagic(t *testing.T) {
	hdr := make([]byte, HeaderLen)
	hdr[0] = 0x00
	if _, _, err := ParseHeader(hdr); err != ErrBadMagic {
		t.Errorf("got %v, want ErrBadMagic", err)
	}
}

func TestParseHeaderRejectsOversizeBeforeRead(t *testing.T) {
	hdr := make([]byte, HeaderLen)
	hdr[0] = Magic
	binary.BigEndian.PutUint32(hdr[1:5], MaxCommand+1)
	if _, _, err := ParseHeader(hdr); err == nil {
		t.Errorf("expected oversize rejection")
	}
}

func TestUnpackShortBody(t *testing.T) {
	f := Frame{Command: []byte("abcdef")}
	packed, _ := Pack(f)
	truncated := packed[:len(packed)-2]
	if _, err := Unpack(truncated); err != ErrShortBody {
		t.Errorf("got %v, want ErrShortBody", err)
	}
}
