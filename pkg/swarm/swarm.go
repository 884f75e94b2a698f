// Package swarm declares the boundary between the connection pool core
// and the underlying peer-to-peer transport (TCP/WS/DNS/noise/multiplex
// composition and friends). None of that composition lives here — this
// package only names the actions the pool emits and the events it
// consumes.
package swarm

import (
	"context"
	"fmt"

	"github.com/DENNIS-CODES/nox/pkg/maddr"
	"github.com/DENNIS-CODES/nox/pkg/particle"
	"github.com/DENNIS-CODES/nox/pkg/peerid"
)

// Action is an outbound instruction the pool driver hands to the
// transport. The driver never blocks on an Action being carried out.
type Action interface {
	isAction()
}

// Dial asks the transport to attempt a connection. Peer is the zero
// value when the identity behind addresses is not yet known (an
// address-keyed dial tracked by the pool's dial registry rather than a
// per-peer record).
type Dial struct {
	Peer  peerid.ID
	Addrs []maddr.Addr
}

func (Dial) isAction() {}

// CloseConnectionScope selects which of a peer's connections to close.
type CloseConnectionScope int

// All is presently the only supported scope: close every connection to
// the named peer.
const All CloseConnectionScope = 0

// CloseConnection asks the transport to tear down connections to Peer.
type CloseConnection struct {
	Peer  peerid.ID
	Scope CloseConnectionScope
}

func (CloseConnection) isAction() {}

// NotifyHandler delivers a HandlerMessage to the per-connection handler
// for Peer — used to push an outbound particle onto the wire.
type NotifyHandler struct {
	Peer    peerid.ID
	Message HandlerMessage
}

func (NotifyHandler) isAction() {}

// HandlerMessage is what flows over the per-connection handler protocol.
type HandlerMessage interface {
	isHandlerMessage()
}

// InParticle is an inbound particle delivered from the wire.
type InParticle struct {
	Particle particle.Extended
}

func (InParticle) isHandlerMessage() {}

// OutParticle is an outbound particle submitted for delivery. Completion
// carries the eventual SendStatus back to whoever is awaiting it; it is
// never sent to more than once.
type OutParticle struct {
	Particle   particle.Extended
	Completion chan<- particle.SendStatus
}

func (OutParticle) isHandlerMessage() {}

// Upgrade signals that a connection's protocol upgrade finished; carried
// for handlers that need the tick but is otherwise inert to the pool.
type Upgrade struct{}

func (Upgrade) isHandlerMessage() {}

// Event is an inbound notification the transport reports to the pool.
type Event interface {
	isEvent()
}

// ConnectionEstablished reports that addr is now live for peer. Any
// addresses that were attempted alongside addr but failed are reported
// in FailedAddrs so the driver can resolve their pending promises too.
type ConnectionEstablished struct {
	Peer        peerid.ID
	Addr        maddr.Addr
	FailedAddrs []maddr.Addr
	Inbound     bool
}

func (ConnectionEstablished) isEvent() {}

// ConnectionClosed reports that a connection to peer at RemoteAddr ended.
// RemainingEstablished is the number of connections still live to peer
// after this one closed.
type ConnectionClosed struct {
	Peer                 peerid.ID
	RemoteAddr           maddr.Addr
	RemainingEstablished int
}

func (ConnectionClosed) isEvent() {}

// DialErrorKind classifies why a dial failed so the driver can apply the
// right cleanup path.
type DialErrorKind int

const (
	// DialErrorTransport covers per-address transport failures.
	DialErrorTransport DialErrorKind = iota
	// DialErrorWrongPeerID means the remote answered as a different peer
	// than requested.
	DialErrorWrongPeerID
	// DialErrorPeerConditionNotMet is a benign race: the peer was already
	// connected, or was not actually being dialed. Never resolves a
	// promise; never removes state.
	DialErrorPeerConditionNotMet
)

// AddrCause pairs a failed address with the error the transport reported
// for it.
type AddrCause struct {
	Addr  maddr.Addr
	Cause error
}

// DialFailure reports that a dial attempt did not succeed. Peer is nil
// when the attempt never learned an identity (address-keyed dial that
// never got far enough to see who answered).
type DialFailure struct {
	Peer      *peerid.ID
	Kind      DialErrorKind
	Addr      maddr.Addr  // set for DialErrorWrongPeerID
	Transport []AddrCause // set for DialErrorTransport
}

func (DialFailure) isEvent() {}

// Error renders a DialFailure as an error for logging.
func (f DialFailure) Error() string {
	switch f.Kind {
	case DialErrorPeerConditionNotMet:
		return "dial failure: peer condition not met"
	case DialErrorWrongPeerID:
		return fmt.Sprintf("dial failure: wrong peer id at %s", f.Addr)
	default:
		return fmt.Sprintf("dial failure: transport errors on %d address(es)", len(f.Transport))
	}
}

// ListenFailure reports that accepting an inbound connection failed. The
// pool logs it and changes no other state.
type ListenFailure struct {
	Addr maddr.Addr
	Err  error
}

func (ListenFailure) isEvent() {}

// Transporter is implemented by a concrete transport (see
// internal/wstransport for a demo implementation). Run owns the actual
// swarm loop: it consumes actions and produces events until ctx is
// canceled, and must not block indefinitely on either direction.
type Transporter interface {
	Run(ctx context.Context, actions <-chan Action, events chan<- Event) error
}
