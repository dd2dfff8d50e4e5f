// Package session implements the per-connection mutable state (C5):
// identity, hmac key, cluster version, monotonic sequence, socket, and
// the pending-request table.
//
// Session deliberately knows nothing about Status: that taxonomy
// lives in the root package. Completion failures are reported via the
// sentinel errors below so higher layers can classify them without an
// import cycle.
package session

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"kinetic/internal/logging"
	"kinetic/internal/semaphore"
	"kinetic/internal/wire"
)

// Sentinel completion errors. Bus/root-level code maps these to the
// Status taxonomy.
var (
	ErrTimeout          = errors.New("session: operation timed out")
	ErrConnectionBroken = errors.New("session: connection broken")
	ErrDataIntegrity    = errors.New("session: hmac verification failed")
	ErrOversizePDU      = errors.New("session: peer sent an oversize PDU")
)

// CompleteFunc is invoked exactly once per registered sequence, either
// with a decoded response (plus its PDU value payload) or a non-nil
// failure (never both populated meaningfully at once: resp/value are
// nil on failure).
type CompleteFunc func(resp *wire.Command, value []byte, failure error)

// Config is the closed set of session construction options. New
// fills a nil Logger with a no-op sink and a zero MaxOutstanding with
// 64; other zero fields are kept as given.
type Config struct {
	Host           string
	Port           int
	Identity       int64
	HMACKey        []byte
	ClusterVersion int64
	TimeoutSecs    int
	Blocking       bool
	UseSSL         bool
	Logger         logging.Logger
	MaxOutstanding int
}

const defaultMaxOutstanding = 64

type pendingEntry struct {
	deadline time.Time
	complete CompleteFunc
	pinAuth  bool
}

// Session is the per-connection mutable state shared by the bus and
// the operation builders.
type Session struct {
	Host string
	Port int

	identity int64
	hmacKey  []byte

	clusterVersion atomic.Int64
	connectionID   atomic.Int64
	seq            atomic.Int64

	Logger logging.Logger
	Sem    *semaphore.Sem

	sendMu sync.Mutex

	mu      sync.Mutex
	pending map[int64]*pendingEntry

	broken atomic.Bool
}

// New constructs a Session in the not-yet-connected state. The root
// package's Session.Connect brings it live by pairing it with a
// transport in a bus.Bus, whose Start launches the receiver goroutine.
func New(cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Noop()
	}
	maxOutstanding := cfg.MaxOutstanding
	if maxOutstanding == 0 {
		maxOutstanding = defaultMaxOutstanding
	}
	s := &Session{
		Host:     cfg.Host,
		Port:     cfg.Port,
		identity: cfg.Identity,
		hmacKey:  append([]byte(nil), cfg.HMACKey...),
		Logger:   logger,
		Sem:      semaphore.New(maxOutstanding),
		pending:  make(map[int64]*pendingEntry),
	}
	s.clusterVersion.Store(cfg.ClusterVersion)
	return s
}

// Identity returns the session's configured identity.
func (s *Session) Identity() int64 { return s.identity }

// HMACKey returns the session's hmac key. Callers must not retain or
// mutate the returned slice beyond the current send.
func (s *Session) HMACKey() []byte { return s.hmacKey }

// ClusterVersion returns the current cluster version.
func (s *Session) ClusterVersion() int64 { return s.clusterVersion.Load() }

// SetClusterVersion updates the cluster version. Callers must only
// invoke this from the post-processor of a
// successful SET_CLUSTER_VERSION response, when no other operations
// are in flight; the bus's serialized receive-worker processing
// enforces that ordering; Session itself just stores the value.
func (s *Session) SetClusterVersion(v int64) { s.clusterVersion.Store(v) }

// ConnectionID returns the server-assigned connection id (0 until the
// first exchange completes).
func (s *Session) ConnectionID() int64 { return s.connectionID.Load() }

// SetConnectionID records the server-assigned connection id.
func (s *Session) SetConnectionID(id int64) { s.connectionID.Store(id) }

// NextSequence is the only permitted source of sequence numbers: an
// atomic fetch-and-add starting at 0, strictly monotone across all
// concurrent callers.
func (s *Session) NextSequence() int64 {
	return s.seq.Add(1) - 1
}

// SendMu is held for the bus's full send sequence so that on-wire
// ordering equals sequence-number allocation order.
func (s *Session) SendMu() *sync.Mutex { return &s.sendMu }

// Register adds seq to the pending table with the given deadline and
// completion closure. It is a caller bug to register a seq already
// present; Register panics in that case since it signals a violated
// invariant: a given sequence appears in the in-flight table at most
// once.
func (s *Session) Register(seq int64, deadline time.Time, complete CompleteFunc, pinAuth bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.pending[seq]; exists {
		panic("session: duplicate sequence registered")
	}
	s.pending[seq] = &pendingEntry{deadline: deadline, complete: complete, pinAuth: pinAuth}
}

// Unregister removes seq without invoking its completion, used on
// local send failure before any response could ever arrive.
func (s *Session) Unregister(seq int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, seq)
}

// Complete looks up and removes seq, returning its completion closure
// (or nil if seq is unknown; an unmatched ackSequence is logged and
// discarded by the caller).
func (s *Session) Complete(seq int64) CompleteFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.pending[seq]
	if !ok {
		return nil
	}
	delete(s.pending, seq)
	return entry.complete
}

// SweepTimeouts completes every pending entry whose deadline has
// passed with ErrTimeout and releases its admission slot. It returns
// the number of entries it completed.
func (s *Session) SweepTimeouts(now time.Time) int {
	var expired []CompleteFunc
	s.mu.Lock()
	for seq, entry := range s.pending {
		if now.After(entry.deadline) {
			expired = append(expired, entry.complete)
			delete(s.pending, seq)
		}
	}
	s.mu.Unlock()

	for _, complete := range expired {
		s.Sem.Give()
		complete(nil, nil, ErrTimeout)
	}
	return len(expired)
}

// DrainAll completes every pending entry with err (ErrConnectionBroken
// on disconnect) and marks the session broken. It is idempotent.
func (s *Session) DrainAll(err error) {
	s.broken.Store(true)
	s.mu.Lock()
	var entries []CompleteFunc
	for seq, entry := range s.pending {
		entries = append(entries, entry.complete)
		delete(s.pending, seq)
	}
	s.mu.Unlock()

	for _, complete := range entries {
		complete(nil, nil, err)
	}
}

// MarkBroken flags the session as broken without draining (used when
// the caller will drain separately, e.g. after logging).
func (s *Session) MarkBroken() { s.broken.Store(true) }

// Broken reports whether the session has been marked broken by a
// transport failure, oversize PDU, or disconnect.
func (s *Session) Broken() bool { return s.broken.Load() }

// PendingCount returns the number of currently in-flight operations,
// for tests and diagnostics.
func (s *Session) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
