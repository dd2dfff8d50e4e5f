// Package kinetic implements the client-side core of the Kinetic
// networked key-value storage protocol: session state, the
// request/response bus, typed operation builders, and the ACL
// document parser. Logging, transport, and the wire codec are
// consumed through interfaces; concrete default implementations are
// provided by internal/logging, internal/transport, and internal/wire
// respectively.
package kinetic

import (
	"context"
	"errors"
	"fmt"

	"kinetic/internal/bus"
	"kinetic/internal/logging"
	"kinetic/internal/session"
	"kinetic/internal/transport"
	"kinetic/internal/wire"
)

// CompletionFunc is the user closure invoked exactly once per
// dispatched operation. It never fires for an operation that failed to
// dispatch (builders return a Status synchronously in that case).
type CompletionFunc func(status Status, userData interface{})

// SessionConfig is the closed set of session construction options,
// mirrored onto internal/session.Config.
type SessionConfig struct {
	Host           string
	Port           int
	Identity       int64
	HMACKey        []byte
	ClusterVersion int64
	TimeoutSecs    int
	Blocking       bool
	UseSSL         bool
	Logger         logging.Logger
}

// Session is the client-visible handle bound to one Kinetic peer.
// It owns an internal/session.Session (sequence,
// hmac key, pending table) and, once Connect succeeds, an
// internal/bus.Bus driving the wire.
type Session struct {
	cfg  SessionConfig
	sess *session.Session
	bus  *bus.Bus
}

// NewSession constructs a not-yet-connected Session.
func NewSession(cfg SessionConfig) *Session {
	return &Session{
		cfg: cfg,
		sess: session.New(session.Config{
			Host:           cfg.Host,
			Port:           cfg.Port,
			Identity:       cfg.Identity,
			HMACKey:        cfg.HMACKey,
			ClusterVersion: cfg.ClusterVersion,
			TimeoutSecs:    cfg.TimeoutSecs,
			Blocking:       cfg.Blocking,
			UseSSL:         cfg.UseSSL,
			Logger:         cfg.Logger,
			MaxOutstanding: MaxOutstanding,
		}),
	}
}

// Connect establishes the transport and starts the bus's receiver and
// timeout-sweeper goroutines.
func (s *Session) Connect() error {
	conn, err := transport.Dial(s.cfg.Host, s.cfg.Port, s.cfg.Blocking)
	if err != nil {
		return fmt.Errorf("kinetic: connect: %w", err)
	}
	s.bus = bus.New(s.sess, conn)
	s.bus.Start()
	return nil
}

// Disconnect closes the socket, cancels all pending operations with
// CONNECTION_ERROR, and joins the receiver/sweeper goroutines.
// It is safe to call on a Session that
// was never connected.
func (s *Session) Disconnect() error {
	if s.bus == nil {
		return nil
	}
	return s.bus.Close()
}

// ConnectionID returns the server-assigned connection id (0 before
// the first successful exchange).
func (s *Session) ConnectionID() int64 { return s.sess.ConnectionID() }

// ClusterVersion returns the session's current cluster version.
func (s *Session) ClusterVersion() int64 { return s.sess.ClusterVersion() }

// InFlight returns the number of operations currently awaiting a
// response, for diagnostics (cmd/kineticdemo's status surface uses
// this).
func (s *Session) InFlight() int {
	if s.sess.Sem == nil {
		return 0
	}
	return s.sess.Sem.InFlight()
}

// dispatchRequest sends req through the bus, translating dispatch-time
// failures (never-dispatched operations) into the synchronous Status a
// builder returns. A SUCCESS return means the operation was handed to
// the transport; its outcome arrives only through req.Complete.
func (s *Session) dispatchRequest(ctx context.Context, req bus.Request) Status {
	if s.bus == nil {
		return OPERATION_INVALID
	}
	if err := s.bus.Send(ctx, req); err != nil {
		return dispatchErrStatus(err)
	}
	return SUCCESS
}

func dispatchErrStatus(err error) Status {
	switch {
	case errors.Is(err, bus.ErrSessionBroken):
		return CONNECTION_ERROR
	case errors.Is(err, bus.ErrAlreadyBound):
		return OPERATION_INVALID
	case errors.Is(err, bus.ErrPackFailed):
		return MEMORY_ERROR
	case errors.Is(err, bus.ErrWriteFailed):
		return REQUEST_REJECTED
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return REQUEST_REJECTED
	default:
		return REQUEST_REJECTED
	}
}

// failureStatus maps a session-layer completion failure (delivered via
// session.CompleteFunc's err parameter) to the Status taxonomy.
func failureStatus(err error) Status {
	switch {
	case errors.Is(err, session.ErrTimeout):
		return SOCKET_TIMEOUT
	case errors.Is(err, session.ErrConnectionBroken):
		return CONNECTION_ERROR
	case errors.Is(err, session.ErrDataIntegrity):
		return DATA_ERROR
	case errors.Is(err, session.ErrOversizePDU):
		return BUFFER_OVERRUN
	default:
		return OPERATION_FAILED
	}
}

// remoteStatus maps a decoded response's status code to the Status
// taxonomy.
func remoteStatus(resp *wire.Command) Status {
	return FromRemoteCode(resp.Status.Code)
}
