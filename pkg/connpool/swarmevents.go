package connpool

import (
	"fmt"

	"github.com/DENNIS-CODES/nox/pkg/maddr"
	"github.com/DENNIS-CODES/nox/pkg/peerid"
	"github.com/DENNIS-CODES/nox/pkg/swarm"
	"go.uber.org/zap"
)

func (d *Driver) handleEvent(ev swarm.Event) {
	switch e := ev.(type) {
	case swarm.ConnectionEstablished:
		d.addConnectedAddress(e.Peer, e.Addr)
		peer := e.Peer
		for _, failed := range e.FailedAddrs {
			d.cleanupAddress(&peer, failed)
		}
	case swarm.ConnectionClosed:
		if e.RemainingEstablished == 0 {
			d.removeContact(e.Peer, "disconnected")
		}
		peer := e.Peer
		d.cleanupAddress(&peer, e.RemoteAddr)
	case swarm.DialFailure:
		d.handleDialFailure(e)
	case swarm.ListenFailure:
		d.log.Info("listen failure", zap.String("addr", e.Addr.String()), zap.Error(e.Err))
	default:
		d.log.Error("connpool: unhandled swarm event", zap.String("type", fmt.Sprintf("%T", ev)))
	}
}

// addConnectedAddress moves addr into the peer's connected set, resolves
// every pending dial promise for that peer, resolves the address-keyed
// dial registry waiters, broadcasts Connected, and refreshes the
// connected-peers gauge.
func (d *Driver) addConnectedAddress(peer peerid.ID, addr maddr.Addr) {
	rec, ok := d.peers[peer]
	if !ok {
		rec = newPeerRecord()
		d.peers[peer] = rec
	}
	rec.removeAddr(addr)
	rec.connected.Add(addr)

	promises := rec.takeDialPromises()
	resolveBoolPromises(promises, true)

	waiters := d.dialReg.drain(addr)
	contact := rec.contact(peer)
	resolveContactPromises(waiters, &contact)

	d.broadcast(LifecycleEvent{
		Kind:    Connected,
		Contact: Contact{PeerID: peer, Addresses: []maddr.Addr{addr}},
	})
	d.metrics.connectedPeers.Set(float64(len(d.peers)))
}

// removeContact drops the peer record entirely, broadcasts Disconnected
// with the addresses it held at the moment of removal, and fails every
// dial promise still outstanding for it.
func (d *Driver) removeContact(peer peerid.ID, reason string) {
	rec, ok := d.peers[peer]
	if !ok {
		return
	}
	contact := rec.contact(peer)
	delete(d.peers, peer)

	d.broadcast(LifecycleEvent{Kind: Disconnected, Contact: contact})
	resolveBoolPromises(rec.dialPromises, false)

	d.metrics.connectedPeers.Set(float64(len(d.peers)))
	d.log.Debug("peer record removed", zap.String("peer", peer.String()), zap.String("reason", reason))
}

// cleanupAddress is the single path every failure mode (transport error,
// wrong-peer-id, connection close) funnels through so waiters always see
// the same, testable outcome.
func (d *Driver) cleanupAddress(peer *peerid.ID, addr maddr.Addr) {
	waiters := d.dialReg.drain(addr)
	resolveContactPromises(waiters, nil)

	if peer == nil {
		return
	}
	rec, ok := d.peers[*peer]
	if !ok {
		return
	}
	rec.removeAddr(addr)
	if len(rec.dialing) == 0 {
		promises := rec.takeDialPromises()
		resolveBoolPromises(promises, false)
	}
	if len(rec.connected) == 0 && len(rec.dialing) == 0 {
		d.removeContact(*peer, "no more connected or dialed addresses")
	}
}

func (d *Driver) handleDialFailure(e swarm.DialFailure) {
	switch e.Kind {
	case swarm.DialErrorPeerConditionNotMet:
		d.log.Info("dial failure: peer condition not met, benign race")
		return
	case swarm.DialErrorWrongPeerID:
		d.cleanupAddress(e.Peer, e.Addr)
	case swarm.DialErrorTransport:
		for _, ac := range e.Transport {
			d.cleanupAddress(e.Peer, ac.Addr)
			d.log.Debug("dial failure on address", zap.String("addr", ac.Addr.String()), zap.Error(ac.Cause))
		}
	}
	if e.Peer != nil {
		d.removeContact(*e.Peer, e.Error())
	}
}
