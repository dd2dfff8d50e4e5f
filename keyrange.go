package kinetic

// KeyRange is a GETKEYRANGE request/result pair. Keys is
// populated by the post-processor on success, in server order, never
// exceeding MaxReturned entries when MaxReturned is positive (zero
// means no cap).
type KeyRange struct {
	StartKey          []byte
	EndKey            []byte
	StartKeyInclusive bool
	EndKeyInclusive   bool
	MaxReturned       int32
	Reverse           bool

	Keys [][]byte
}
