package kinetic

import "testing"

// TestParseACLDocumentTwoRecords checks that two concatenated ACL
// objects parse into two records.
func TestParseACLDocumentTwoRecords(t *testing.T) {
	input := []byte(`{"identity":1,"key":"k","HMACAlgorithm":"HmacSHA1","scope":[{"offset":0,"value":"v","permission":["READ","WRITE"],"TlsRequired":true}]}
{"identity":2,"key":"k2","HMACAlgorithm":"HmacSHA1","scope":[{"offset":0,"value":"v2","permission":"READ"}]}`)

	doc, result := ParseACLDocument(input)
	if result != ACLOK {
		t.Fatalf("ParseACLDocument result = %v, want ACLOK", result)
	}
	if len(doc.Records) != 2 {
		t.Fatalf("len(Records) = %d, want 2", len(doc.Records))
	}

	rec := doc.Records[0]
	if rec.Identity != 1 || string(rec.Key) != "k" {
		t.Errorf("record[0] identity/key = %d/%q, want 1/%q", rec.Identity, rec.Key, "k")
	}
	if len(rec.Scopes) != 1 {
		t.Fatalf("record[0] scopes = %d, want 1", len(rec.Scopes))
	}
	scope := rec.Scopes[0]
	if !scope.HasOffset || scope.Offset != 0 {
		t.Errorf("scope offset = %v/%d, want true/0", scope.HasOffset, scope.Offset)
	}
	if string(scope.Value) != "v" {
		t.Errorf("scope value = %q, want %q", scope.Value, "v")
	}
	if !scope.HasTLSRequired || !scope.TLSRequired {
		t.Errorf("scope TlsRequired = %v/%v, want true/true", scope.HasTLSRequired, scope.TLSRequired)
	}
	if len(scope.Permissions) != 2 || scope.Permissions[0] != PermissionRead || scope.Permissions[1] != PermissionWrite {
		t.Errorf("scope permissions = %v, want [READ WRITE]", scope.Permissions)
	}

	rec2 := doc.Records[1]
	if len(rec2.Scopes) != 1 || len(rec2.Scopes[0].Permissions) != 1 || rec2.Scopes[0].Permissions[0] != PermissionRead {
		t.Errorf("record[1] scope permissions = %v, want [READ] (bare-string form)", rec2.Scopes[0].Permissions)
	}
}

func TestParseACLDocumentBadAlgorithm(t *testing.T) {
	input := []byte(`{"identity":1,"key":"k","HMACAlgorithm":"HmacSHA2","scope":[{"permission":"READ"}]}`)
	_, result := ParseACLDocument(input)
	if result != ACLErrorInvalidField {
		t.Fatalf("result = %v, want ACLErrorInvalidField", result)
	}
}

func TestParseACLDocumentMissingScope(t *testing.T) {
	input := []byte(`{"identity":1,"key":"k","HMACAlgorithm":"HmacSHA1"}`)
	_, result := ParseACLDocument(input)
	if result != ACLErrorMissingField {
		t.Fatalf("result = %v, want ACLErrorMissingField", result)
	}
}

func TestParseACLDocumentInvalidPermission(t *testing.T) {
	input := []byte(`{"identity":1,"key":"k","HMACAlgorithm":"HmacSHA1","scope":[{"permission":["INVALID"]}]}`)
	_, result := ParseACLDocument(input)
	if result != ACLErrorInvalidField {
		t.Fatalf("result = %v, want ACLErrorInvalidField", result)
	}
}

// TestParseACLDocumentEmptyIsBadJSON covers the "zero parsed objects
// is BAD_JSON" rule.
func TestParseACLDocumentEmptyIsBadJSON(t *testing.T) {
	_, result := ParseACLDocument([]byte(""))
	if result != ACLErrorBadJSON {
		t.Fatalf("result = %v, want ACLErrorBadJSON", result)
	}
}

// TestParseACLDocumentNullScopeEntryIsError checks that a null entry
// inside the scope array is a parse error, not silently dropped.
func TestParseACLDocumentNullScopeEntryIsError(t *testing.T) {
	input := []byte(`{"identity":1,"key":"k","HMACAlgorithm":"HmacSHA1","scope":[null,{"permission":"READ"}]}`)
	_, result := ParseACLDocument(input)
	if result != ACLErrorBadJSON {
		t.Fatalf("result = %v, want ACLErrorBadJSON", result)
	}
}

func TestParseACLDocumentTooManyPermissions(t *testing.T) {
	perms := make([]string, ACLMaxPermissions+1)
	for i := range perms {
		perms[i] = "READ"
	}
	doc := `{"identity":1,"key":"k","HMACAlgorithm":"HmacSHA1","scope":[{"permission":` + jsonStringArray(perms) + `}]}`
	_, result := ParseACLDocument([]byte(doc))
	if result != ACLErrorInvalidField {
		t.Fatalf("result = %v, want ACLErrorInvalidField", result)
	}
}

func jsonStringArray(ss []string) string {
	out := "["
	for i, s := range ss {
		if i > 0 {
			out += ","
		}
		out += `"` + s + `"`
	}
	return out + "]"
}
