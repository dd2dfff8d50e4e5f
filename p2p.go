package kinetic

// P2PSubOperation is one per-key replication step within a
// P2POperation. A nil Version implies Force. Status is filled in by
// the post-processor after the response tree is walked.
type P2PSubOperation struct {
	Key     []byte
	NewKey  []byte
	Version []byte
	Chained *P2POperation
	Status  Status
}

// Force reports whether this sub-operation is implicitly forced
// (no expected version supplied).
func (op *P2PSubOperation) Force() bool { return op.Version == nil }

// P2POperation is a server-to-server replication request invoked by
// the client.
type P2POperation struct {
	PeerHost string
	PeerPort int32
	PeerTLS  bool
	Ops      []P2PSubOperation
}

// validate enforces the nesting-depth and total-operation-count limits
// (P2PMaxNesting, P2POperationLimit), walked once up front so an
// over-limit tree is rejected with OPERATION_INVALID before consuming
// a sequence number.
func (p *P2POperation) validate() Status {
	count := 0
	if !p2pWalk(p, 1, &count) {
		return OPERATION_INVALID
	}
	if count > P2POperationLimit {
		return OPERATION_INVALID
	}
	return SUCCESS
}

func p2pWalk(p *P2POperation, depth int, count *int) bool {
	if depth > P2PMaxNesting {
		return false
	}
	for i := range p.Ops {
		*count++
		if *count > P2POperationLimit {
			return false
		}
		if chained := p.Ops[i].Chained; chained != nil {
			if !p2pWalk(chained, depth+1, count) {
				return false
			}
		}
	}
	return true
}
