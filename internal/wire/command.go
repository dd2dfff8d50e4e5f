package wire

// MessageType enumerates the command message types. Response
// variants are the request type plus one (NOOP=30, NOOP_RESPONSE=31).
type MessageType int32

const (
	MessageNOOP                  MessageType = 30
	MessageNOOPResponse          MessageType = 31
	MessagePUT                   MessageType = 4
	MessagePUTResponse           MessageType = 5
	MessageGET                   MessageType = 2
	MessageGETResponse           MessageType = 3
	MessageDELETE                MessageType = 6
	MessageDELETEResponse        MessageType = 7
	MessageGETNEXT               MessageType = 8
	MessageGETNEXTResponse       MessageType = 9
	MessageGETPREVIOUS           MessageType = 10
	MessageGETPREVIOUSResponse   MessageType = 11
	MessageGETKEYRANGE           MessageType = 12
	MessageGETKEYRANGEResponse   MessageType = 13
	MessageGETLOG                MessageType = 24
	MessageGETLOGResponse        MessageType = 25
	MessageSETUP                 MessageType = 22
	MessageSETUPResponse         MessageType = 23
	MessageSECURITY              MessageType = 18
	MessageSECURITYResponse      MessageType = 19
	MessagePINOP                 MessageType = 26
	MessagePINOPResponse         MessageType = 27
	MessageFLUSHALLDATA          MessageType = 32
	MessageFLUSHALLDATAResponse  MessageType = 33
	MessagePEER2PEERPUSH         MessageType = 36
	MessagePEER2PEERPUSHResponse MessageType = 37
)

// NotYetBound is the sequence sentinel a freshly built Header must
// carry before the bus binds a real sequence number.
const NotYetBound int64 = -1

// Header is the command-proto header shared by every message type.
type Header struct {
	ClusterVersion int64
	ConnectionID   int64
	Sequence       int64
	AckSequence    int64
	Identity       int64
	MessageType    MessageType
}

// AuthType selects which authentication mode is attached to the outer
// message.
type AuthType int32

const (
	AuthHMAC AuthType = iota
	AuthPIN
)

// KeyValue carries PUT/GET/GETNEXT/GETPREVIOUS/DELETE request and
// response fields.
type KeyValue struct {
	Key          []byte
	NewVersion   []byte
	DbVersion    []byte
	Tag          []byte
	Algorithm    int32
	Force        bool
	MetadataOnly bool
}

// Range carries a GETKEYRANGE request (Keys empty) or response (Keys
// populated, ≤ MaxReturned entries).
type Range struct {
	StartKey          []byte
	EndKey            []byte
	StartKeyInclusive bool
	EndKeyInclusive   bool
	MaxReturned       int32
	Reverse           bool
	Keys              [][]byte
}

// LogInfo is the GETLOG response payload.
type LogInfo struct {
	Types        []int32
	Messages     [][]byte
	Utilizations []string
	Capacity     int64
}

// ACLEntry is the wire-compatible shape of one ACL scope grant,
// flattened for transport; internal/wire deliberately does not import
// the root package's ACLDocument type (that would create an import
// cycle); op builders translate between the two.
type ACLEntry struct {
	Identity       int64
	Key            []byte
	HasIdentity    bool
	HasKey         bool
	Offset         int64
	HasOffset      bool
	Value          []byte
	HasValue       bool
	Permissions    []int32
	TLSRequired    bool
	HasTLSRequired bool
}

// SecurityBody carries SECURITY.acl or SECURITY.pin requests.
type SecurityBody struct {
	ACLs []ACLEntry

	OldLockPIN  []byte
	NewLockPIN  []byte
	OldErasePIN []byte
	NewErasePIN []byte
	IsErasePIN  bool
}

// SetupBody carries SETUP.firmwareDownload / SETUP.newClusterVersion.
type SetupBody struct {
	FirmwareDownload  bool
	NewClusterVersion int64
	HasClusterVersion bool
}

// PinOpType enumerates PINOP sub-commands.
type PinOpType int32

const (
	PinOpLock PinOpType = iota
	PinOpUnlock
	PinOpErase
	PinOpSecureErase
)

// PinOpBody carries a PINOP request.
type PinOpBody struct {
	Op PinOpType
}

// P2POp is one sub-operation of a flattened P2P operation tree.
type P2POp struct {
	Key        []byte
	NewKey     []byte
	HasNewKey  bool
	Version    []byte
	HasVersion bool
	Force      bool
	Status     int32
	HasStatus  bool
	Chained    *P2PBody // nested chained operation, depth-limited
}

// P2PBody carries a PEER2PEERPUSH request/response.
type P2PBody struct {
	PeerHost string
	PeerPort int32
	PeerTLS  bool
	Ops      []P2POp
}

// Body is a tagged union over the per-command bodies.
// Exactly the field matching Header.MessageType's command family is
// expected to be populated; builders set only the relevant pointer.
type Body struct {
	KeyValue *KeyValue
	Range    *Range
	GetLog   *LogInfo
	Security *SecurityBody
	Setup    *SetupBody
	PinOp    *PinOpBody
	P2P      *P2PBody
}

// StatusInfo is the response status triple.
type StatusInfo struct {
	Code            int32
	Message         string
	DetailedMessage string
}

// Command is the decoded command-proto message: header, typed body,
// and status.
type Command struct {
	Header Header
	Body   Body
	Status StatusInfo
}
