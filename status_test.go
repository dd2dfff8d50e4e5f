package kinetic

import "testing"

func TestFromRemoteCodeKnown(t *testing.T) {
	cases := map[int32]Status{
		0: SUCCESS,
		3: REMOTE_VERSION_MISMATCH,
		4: REMOTE_NOT_FOUND,
		5: REMOTE_NOT_AUTHORIZED,
		7: REMOTE_INTERNAL_ERROR,
	}
	for code, want := range cases {
		if got := FromRemoteCode(code); got != want {
			t.Errorf("FromRemoteCode(%d) = %v, want %v", code, got, want)
		}
	}
}

func TestFromRemoteCodeUnknown(t *testing.T) {
	if got := FromRemoteCode(9999); got != INVALID {
		t.Errorf("FromRemoteCode(unknown) = %v, want INVALID", got)
	}
}

func TestStatusString(t *testing.T) {
	if SUCCESS.String() != "SUCCESS" {
		t.Errorf("SUCCESS.String() = %q", SUCCESS.String())
	}
	if Status(999).String() != "INVALID" {
		t.Errorf("unknown status should stringify to INVALID")
	}
}
