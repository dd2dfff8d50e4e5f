package kinetic

import (
	"bytes"
	"encoding/json"
	"io"
)

// Permission is one entry in an ACLScope's permission vocabulary.
// PermissionInvalid is a sentinel and is never valid
// input; it rejects with ACLErrorInvalidField wherever it would be
// accepted.
type Permission int32

const (
	PermissionInvalid Permission = iota
	PermissionRead
	PermissionWrite
	PermissionDelete
	PermissionRange
	PermissionSetup
	PermissionP2POp
	PermissionGetLog
	PermissionSecurity
)

var permissionNames = map[string]Permission{
	"READ":     PermissionRead,
	"WRITE":    PermissionWrite,
	"DELETE":   PermissionDelete,
	"RANGE":    PermissionRange,
	"SETUP":    PermissionSetup,
	"P2POP":    PermissionP2POp,
	"GETLOG":   PermissionGetLog,
	"SECURITY": PermissionSecurity,
}

// HMACAlgorithm identifies an ACL record's key algorithm. The only
// accepted value is HmacSHA1; anything else is rejected at parse time.
const HMACAlgorithmHmacSHA1 = "HmacSHA1"

// ACLScope narrows a permission grant by offset/value prefix and/or a
// TLS requirement.
type ACLScope struct {
	HasOffset bool
	Offset    int64

	HasValue bool
	Value    []byte

	Permissions []Permission

	HasTLSRequired bool
	TLSRequired    bool
}

// ACLRecord is one parsed ACL object.
type ACLRecord struct {
	HasIdentity bool
	Identity    int64

	HasKey bool
	Key    []byte
	// HMACAlgorithm is always HMACAlgorithmHmacSHA1 when HasKey is set;
	// the field exists so round-tripped records carry it explicitly.
	HMACAlgorithm string

	Scopes []ACLScope
}

// ACLDocument is a parsed list of ACL records.
type ACLDocument struct {
	Records []ACLRecord
}

// ACLResult is the closed set of outcomes from the ACL parser.
type ACLResult int32

const (
	ACLOK ACLResult = iota
	ACLEndOfStream
	ACLErrorMemory
	ACLErrorJSONFile
	ACLErrorBadJSON
	ACLErrorMissingField
	ACLErrorInvalidField
	ACLErrorNull
)

// aclObjectJSON mirrors the closed per-object schema of the ACL file
// format. Unknown fields are ignored by encoding/json's default
// behavior.
type aclObjectJSON struct {
	Identity      *int64          `json:"identity"`
	Key           *string         `json:"key"`
	HMACAlgorithm *string         `json:"HMACAlgorithm"`
	Scope         json.RawMessage `json:"scope"`
}

type aclScopeJSON struct {
	Offset      *int64          `json:"offset"`
	Value       *string         `json:"value"`
	Permission  json.RawMessage `json:"permission"`
	TlsRequired *bool           `json:"TlsRequired"`
}

// ACLParser streams whitespace-separated JSON ACL objects: a UTF-8
// buffer holding a concatenation of objects with no enclosing array.
// Built around encoding/json.Decoder's streaming decode loop.
type ACLParser struct {
	dec   *json.Decoder
	count int
}

// NewACLParser returns a parser reading from r.
func NewACLParser(r io.Reader) *ACLParser {
	return &ACLParser{dec: json.NewDecoder(r)}
}

// Next decodes one ACL record. It returns (nil, ACLEndOfStream) after
// at least one record has been parsed and a clean EOF is reached;
// (nil, ACLErrorBadJSON) if EOF is reached with zero records parsed,
// or if the stream ends mid-object.
func (p *ACLParser) Next() (*ACLRecord, ACLResult) {
	var obj aclObjectJSON
	if err := p.dec.Decode(&obj); err != nil {
		if err == io.EOF {
			if p.count == 0 {
				return nil, ACLErrorBadJSON
			}
			return nil, ACLEndOfStream
		}
		return nil, ACLErrorBadJSON
	}

	record, result := decodeACLObject(obj)
	if result != ACLOK {
		return nil, result
	}
	p.count++
	return record, ACLOK
}

func decodeACLObject(obj aclObjectJSON) (*ACLRecord, ACLResult) {
	rec := &ACLRecord{}

	if obj.Identity != nil {
		rec.HasIdentity = true
		rec.Identity = *obj.Identity
	}
	if obj.Key != nil {
		rec.HasKey = true
		rec.Key = []byte(*obj.Key)
		rec.HMACAlgorithm = HMACAlgorithmHmacSHA1
	}
	if obj.HMACAlgorithm != nil {
		if *obj.HMACAlgorithm != HMACAlgorithmHmacSHA1 {
			return nil, ACLErrorInvalidField
		}
		rec.HMACAlgorithm = HMACAlgorithmHmacSHA1
	}

	if len(obj.Scope) == 0 || bytes.Equal(bytes.TrimSpace(obj.Scope), []byte("null")) {
		return nil, ACLErrorMissingField
	}
	var rawScopes []json.RawMessage
	if err := json.Unmarshal(obj.Scope, &rawScopes); err != nil {
		return nil, ACLErrorBadJSON
	}
	if len(rawScopes) == 0 {
		return nil, ACLErrorMissingField
	}

	scopes := make([]ACLScope, 0, len(rawScopes))
	for _, raw := range rawScopes {
		// A null entry inside the scope array is a parse error, not a
		// silently-dropped element.
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return nil, ACLErrorBadJSON
		}
		var sj aclScopeJSON
		if err := json.Unmarshal(raw, &sj); err != nil {
			return nil, ACLErrorBadJSON
		}
		scope, result := decodeACLScope(sj)
		if result != ACLOK {
			return nil, result
		}
		scopes = append(scopes, scope)
	}
	rec.Scopes = scopes
	return rec, ACLOK
}

func decodeACLScope(sj aclScopeJSON) (ACLScope, ACLResult) {
	var scope ACLScope
	if sj.Offset != nil {
		scope.HasOffset = true
		scope.Offset = *sj.Offset
	}
	if sj.Value != nil {
		scope.HasValue = true
		scope.Value = []byte(*sj.Value)
	}
	if sj.TlsRequired != nil {
		scope.HasTLSRequired = true
		scope.TLSRequired = *sj.TlsRequired
	}

	if len(sj.Permission) == 0 {
		return scope, ACLErrorMissingField
	}
	names, result := decodePermissionField(sj.Permission)
	if result != ACLOK {
		return scope, result
	}
	if len(names) > ACLMaxPermissions {
		return scope, ACLErrorInvalidField
	}
	perms := make([]Permission, len(names))
	for i, name := range names {
		if name == "INVALID" {
			return scope, ACLErrorInvalidField
		}
		p, ok := permissionNames[name]
		if !ok {
			return scope, ACLErrorInvalidField
		}
		perms[i] = p
	}
	scope.Permissions = perms
	return scope, ACLOK
}

// decodePermissionField accepts either a bare string or an array of
// strings.
func decodePermissionField(raw json.RawMessage) ([]string, ACLResult) {
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return []string{single}, ACLOK
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		if len(many) == 0 {
			return nil, ACLErrorMissingField
		}
		return many, ACLOK
	}
	return nil, ACLErrorBadJSON
}

// ParseACLDocument reads every record from data. A document with zero
// parsed objects is ACLErrorBadJSON.
func ParseACLDocument(data []byte) (*ACLDocument, ACLResult) {
	p := NewACLParser(bytes.NewReader(data))
	doc := &ACLDocument{}
	for {
		rec, result := p.Next()
		switch result {
		case ACLOK:
			doc.Records = append(doc.Records, *rec)
		case ACLEndOfStream:
			return doc, ACLOK
		default:
			return nil, result
		}
	}
}
