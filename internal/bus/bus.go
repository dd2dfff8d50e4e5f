// Package bus implements the request/response pipeline (C6): binding a
// sequence number, framing and authenticating a request, admitting it
// through the session's semaphore, and, on a dedicated receiver
// goroutine, decoding responses, verifying their HMAC, and completing
// the matching pending operation exactly once.
//
// One reader and many concurrent writers share a single socket;
// writers are serialized by the session's send mutex, and responses
// are correlated to requests by the sequence/ackSequence pair.
package bus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"kinetic/internal/hmacauth"
	"kinetic/internal/session"
	"kinetic/internal/transport"
	"kinetic/internal/wire"
)

// ReadHeaderTimeout bounds each blocking read of a PDU header: long
// enough to idle between responses, short enough that Close is
// noticed promptly.
const ReadHeaderTimeout = 5 * time.Second

// Errors returned directly by Send, before any response can ever
// arrive. They never populate the pending table.
var (
	ErrPackFailed    = errors.New("bus: failed to pack request")
	ErrWriteFailed   = errors.New("bus: failed to write request")
	ErrAlreadyBound  = errors.New("bus: request header already carries a bound sequence")
	ErrSessionBroken = errors.New("bus: session is broken")
)

// Request is everything Send needs to dispatch one operation.
type Request struct {
	// Command is the inner command-proto message. Its Header.Sequence
	// must be wire.NotYetBound; Send fills in Sequence, ClusterVersion,
	// ConnectionID and Identity.
	Command *wire.Command
	// Value is the PDU's value payload (e.g. a PUT's entry bytes).
	Value []byte
	// PinAuth selects pin authentication instead of HMAC for this
	// request. PIN ops use the device's lock/erase PIN, not the shared
	// HMAC secret.
	PinAuth bool
	Pin     []byte
	// Timeout is the per-operation deadline, chosen by the caller from
	// the operation-specific defaults in the root package, which knows
	// the operation kind.
	Timeout time.Duration
	// Complete is invoked exactly once, from the receiver goroutine or
	// from the timeout sweeper, with the decoded response (and its
	// value payload) or a failure.
	Complete session.CompleteFunc
}

// Bus pairs a Session with a live transport connection and owns the
// receiver and timeout-sweeper goroutines.
type Bus struct {
	sess *session.Session
	conn transport.Conn

	sweepInterval time.Duration

	stopCh chan struct{}
	wg     sync.WaitGroup

	closeOnce sync.Once
}

// New constructs a Bus. Start must be called before any Send.
func New(sess *session.Session, conn transport.Conn) *Bus {
	return &Bus{
		sess:          sess,
		conn:          conn,
		sweepInterval: time.Second,
		stopCh:        make(chan struct{}),
	}
}

// Start launches the receiver and timeout-sweeper goroutines.
func (b *Bus) Start() {
	b.wg.Add(2)
	go b.recvLoop()
	go b.sweepLoop()
}

// Close stops the bus's background goroutines, closes the transport,
// then drains any pending operations with session.ErrConnectionBroken.
// It is safe to call more than once.
func (b *Bus) Close() error {
	var err error
	b.closeOnce.Do(func() {
		close(b.stopCh)
		err = b.conn.Close()
		b.sess.DrainAll(session.ErrConnectionBroken)
	})
	b.wg.Wait()
	return err
}

// Send dispatches one request onto the wire. It blocks only on
// admission (the session's outstanding-operation semaphore); ctx
// cancels that wait, not the operation's own timeout, which starts
// once the request is admitted, just before the transport write, and
// is enforced by the sweeper against req.Complete.
func (b *Bus) Send(ctx context.Context, req Request) error {
	if b.sess.Broken() {
		return ErrSessionBroken
	}
	if req.Command.Header.Sequence != wire.NotYetBound {
		return ErrAlreadyBound
	}

	b.sess.SendMu().Lock()
	defer b.sess.SendMu().Unlock()

	seq := b.sess.NextSequence()
	req.Command.Header.Sequence = seq
	req.Command.Header.ClusterVersion = b.sess.ClusterVersion()
	req.Command.Header.ConnectionID = b.sess.ConnectionID()
	req.Command.Header.Identity = b.sess.Identity()

	commandBytes, err := wire.Marshal(req.Command)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPackFailed, err)
	}

	env := &wire.Envelope{CommandBytes: commandBytes}
	if req.PinAuth {
		env.AuthType = wire.AuthPIN
		env.Pin = req.Pin
	} else {
		env.AuthType = wire.AuthHMAC
		env.Identity = b.sess.Identity()
		env.HMAC = hmacauth.Sign(b.sess.HMACKey(), commandBytes)
	}
	envelopeBytes := wire.MarshalEnvelope(env)

	packed, err := wire.Pack(wire.Frame{Command: envelopeBytes, Value: req.Value})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPackFailed, err)
	}

	if err := b.sess.Sem.Take(ctx); err != nil {
		return err
	}

	deadline := time.Now().Add(req.Timeout)
	b.sess.Register(seq, deadline, req.Complete, req.PinAuth)

	if _, err := b.conn.Write(packed); err != nil {
		b.sess.Unregister(seq)
		b.sess.Sem.Give()
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

// recvLoop is the bus's single reader: one PDU at a time, correlated
// by ackSequence to the pending table. It owns the only call to
// conn.Read, so no locking is needed around the socket's read side.
func (b *Bus) recvLoop() {
	defer b.wg.Done()
	for {
		select {
		case <-b.stopCh:
			return
		default:
		}

		frame, err := b.readFrame()
		if err != nil {
			if isTimeout(err) {
				continue
			}
			if errors.Is(err, errStopped) {
				return
			}
			b.sess.Logger.Warnf("bus: recv loop terminating session: %v", err)
			b.sess.DrainAll(classifyRecvError(err))
			return
		}

		env, err := wire.UnmarshalEnvelope(frame.Command)
		if err != nil {
			b.sess.Logger.Warnf("bus: discarding PDU with malformed envelope: %v", err)
			continue
		}
		cmd, err := wire.Unmarshal(env.CommandBytes)
		if err != nil {
			b.sess.Logger.Warnf("bus: discarding PDU with malformed command: %v", err)
			continue
		}

		ok := hmacauth.Verify(b.sess.HMACKey(), env.CommandBytes, env.HMAC)

		complete := b.sess.Complete(cmd.Header.AckSequence)
		if complete == nil {
			b.sess.Logger.Warnf("bus: response for unknown sequence %d discarded", cmd.Header.AckSequence)
			continue
		}
		b.sess.Sem.Give()

		if !ok {
			complete(nil, nil, session.ErrDataIntegrity)
			continue
		}
		if cmd.Header.ConnectionID != 0 {
			b.sess.SetConnectionID(cmd.Header.ConnectionID)
		}
		complete(cmd, frame.Value, nil)
	}
}

var errStopped = errors.New("bus: stopped")

// readFrame reads exactly one PDU off the transport: a fixed 9-byte
// header, then the declared command and value lengths.
func (b *Bus) readFrame() (wire.Frame, error) {
	select {
	case <-b.stopCh:
		return wire.Frame{}, errStopped
	default:
	}

	if err := b.conn.SetReadDeadline(time.Now().Add(ReadHeaderTimeout)); err != nil {
		return wire.Frame{}, err
	}
	hdr := make([]byte, wire.HeaderLen)
	if _, err := io.ReadFull(b.conn, hdr); err != nil {
		return wire.Frame{}, err
	}
	commandLen, valueLen, err := wire.ParseHeader(hdr)
	if err != nil {
		return wire.Frame{}, err
	}

	if err := b.conn.SetReadDeadline(time.Now().Add(ReadHeaderTimeout)); err != nil {
		return wire.Frame{}, err
	}
	commandBytes := make([]byte, commandLen)
	if _, err := io.ReadFull(b.conn, commandBytes); err != nil {
		return wire.Frame{}, err
	}
	valueBytes := make([]byte, valueLen)
	if _, err := io.ReadFull(b.conn, valueBytes); err != nil {
		return wire.Frame{}, err
	}
	return wire.Frame{Command: commandBytes, Value: valueBytes}, nil
}

// isTimeout reports whether err is a plain read-deadline expiry (the
// recv loop's way of periodically rechecking stopCh), as opposed to a
// real transport failure.
func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// classifyRecvError maps a fatal recv-loop error to the session
// sentinel the root package will translate into a Status. Framing
// errors (bad magic, truncated header/body) desynchronize the byte
// stream (there is no way to locate the next PDU), so they are
// treated the same as a dropped connection. An oversize command gets
// its own sentinel so the root package can report BUFFER_OVERRUN
// instead of a generic connection error; there is no oversize-value
// case since valueLen carries no generic ceiling (wire.MaxCommand's
// doc comment).
func classifyRecvError(err error) error {
	if errors.Is(err, wire.ErrOversizeCommand) {
		return session.ErrOversizePDU
	}
	return session.ErrConnectionBroken
}

// sweepLoop periodically expires pending operations past their
// deadline.
func (b *Bus) sweepLoop() {
	defer b.wg.Done()
	t := time.NewTicker(b.sweepInterval)
	defer t.Stop()
	for {
		select {
		case <-b.stopCh:
			return
		case now := <-t.C:
			b.sess.SweepTimeouts(now)
		}
	}
}
