package connpool

import (
	"context"
	"time"

	"github.com/DENNIS-CODES/nox/pkg/maddr"
	"github.com/DENNIS-CODES/nox/pkg/particle"
	"github.com/DENNIS-CODES/nox/pkg/peerid"
)

// Pool is the public API facade: a thin, cheap-to-copy handle (it holds
// only a channel and a duration) that packages each call into a command
// with a reply channel and awaits the reply. Every method call returns
// once the driver has serviced the request, or once ctx is canceled.
type Pool struct {
	commands    chan command
	sendTimeout time.Duration
}

func (p Pool) submit(ctx context.Context, cmd command) error {
	select {
	case p.commands <- cmd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dial asks the pool to establish a connection to addr without knowing
// the peer identity behind it ahead of time. It resolves to nil if the
// address turns out to be unreachable.
func (p Pool) Dial(ctx context.Context, addr maddr.Addr) (*Contact, error) {
	reply := make(chan *Contact, 1)
	if err := p.submit(ctx, dialCommand{addr: addr, reply: reply}); err != nil {
		return nil, err
	}
	select {
	case c := <-reply:
		return c, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Connect asks the pool to ensure at least one of contact's addresses is
// connected. It returns true once at least one address is connected.
func (p Pool) Connect(ctx context.Context, contact Contact) (bool, error) {
	reply := make(chan bool, 1)
	if err := p.submit(ctx, connectCommand{contact: contact, reply: reply}); err != nil {
		return false, err
	}
	select {
	case ok := <-reply:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Disconnect asks the pool to close every connection to peer. It
// resolves true once the close request has been queued with the
// transport, without waiting for the matching ConnectionClosed event.
func (p Pool) Disconnect(ctx context.Context, peer peerid.ID) (bool, error) {
	reply := make(chan bool, 1)
	if err := p.submit(ctx, disconnectCommand{peer: peer, reply: reply}); err != nil {
		return false, err
	}
	select {
	case ok := <-reply:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// IsConnected reports whether peer currently has a Peer record.
func (p Pool) IsConnected(ctx context.Context, peer peerid.ID) (bool, error) {
	reply := make(chan bool, 1)
	if err := p.submit(ctx, isConnectedCommand{peer: peer, reply: reply}); err != nil {
		return false, err
	}
	select {
	case ok := <-reply:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// GetContact returns peer's flattened Contact, or nil if no record
// exists for it.
func (p Pool) GetContact(ctx context.Context, peer peerid.ID) (*Contact, error) {
	reply := make(chan *Contact, 1)
	if err := p.submit(ctx, getContactCommand{peer: peer, reply: reply}); err != nil {
		return nil, err
	}
	select {
	case c := <-reply:
		return c, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Send submits ep for delivery to to. It enforces a send timeout of 2x
// the transport's upgrade timeout: on expiry it returns
// particle.StatusTimedOut without error, and the underlying delivery
// attempt inside the pool is left to finish on its own.
func (p Pool) Send(ctx context.Context, to Contact, ep particle.Extended) (particle.SendStatus, error) {
	sendCtx, cancel := context.WithTimeout(ctx, p.sendTimeout)
	defer cancel()

	reply := make(chan particle.SendStatus, 1)
	if err := p.submit(sendCtx, sendCommand{to: to, particle: ep, reply: reply}); err != nil {
		if ctx.Err() != nil {
			return particle.StatusFailed, ctx.Err()
		}
		return particle.StatusTimedOut, nil
	}
	select {
	case status := <-reply:
		return status, nil
	case <-sendCtx.Done():
		if ctx.Err() != nil {
			return particle.StatusFailed, ctx.Err()
		}
		return particle.StatusTimedOut, nil
	}
}

// CountConnections returns the number of peers with at least one
// recorded address (connected, discovered or dialing).
func (p Pool) CountConnections(ctx context.Context) (int, error) {
	reply := make(chan int, 1)
	if err := p.submit(ctx, countConnectionsCommand{reply: reply}); err != nil {
		return 0, err
	}
	select {
	case n := <-reply:
		return n, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Subscription is a live registration for LifecycleEvent notifications.
// Call Close to unsubscribe once the consumer stops reading; this is the
// explicit analogue of "drop the receiver" (see broadcaster.go).
type Subscription struct {
	Events <-chan LifecycleEvent

	pool Pool
	ch   chan LifecycleEvent
}

// Close queues an unsubscribe request with the driver and returns without
// waiting for it to be handled. Once the driver handles it, no further
// events are sent and Events is closed; events already buffered in
// Events remain readable.
func (s *Subscription) Close(ctx context.Context) error {
	select {
	case s.pool.commands <- unsubscribeCommand{ch: s.ch}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe registers for LifecycleEvent notifications.
func (p Pool) Subscribe(ctx context.Context) (*Subscription, error) {
	reply := make(chan chan LifecycleEvent, 1)
	if err := p.submit(ctx, subscribeCommand{reply: reply}); err != nil {
		return nil, err
	}
	select {
	case ch := <-reply:
		return &Subscription{Events: ch, pool: p, ch: ch}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
