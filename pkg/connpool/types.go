package connpool

import (
	"github.com/DENNIS-CODES/nox/pkg/maddr"
	"github.com/DENNIS-CODES/nox/pkg/peerid"
)

// Contact is the external description of a peer: its identity together
// with the multiaddresses believed usable to reach it. Address order is
// preserved for display but is not part of Contact's equality.
type Contact struct {
	PeerID    peerid.ID
	Addresses []maddr.Addr
}

// LifecycleKind distinguishes the two events a peer's lifecycle can emit.
type LifecycleKind int

const (
	// Connected fires each time a connection to a peer is established at
	// an address, carrying that single address.
	Connected LifecycleKind = iota
	// Disconnected fires when a peer's record is removed: its last live
	// connection closed, a dial to it failed, or no connected or dialed
	// address is left.
	Disconnected
)

// String renders the kind for logs.
func (k LifecycleKind) String() string {
	if k == Connected {
		return "connected"
	}
	return "disconnected"
}

// LifecycleEvent is broadcast to subscribers when a peer's connectivity
// changes.
type LifecycleEvent struct {
	Kind    LifecycleKind
	Contact Contact
}

// peerRecord is the pool's internal per-peer bookkeeping. connected,
// discovered and dialing are pairwise disjoint at every observable
// moment; a record exists iff at least one of the four fields is
// non-empty.
type peerRecord struct {
	connected    maddr.Set
	discovered   maddr.Set
	dialing      maddr.Set
	dialPromises []chan bool
}

func newPeerRecord() *peerRecord {
	return &peerRecord{
		connected:  maddr.NewSet(),
		discovered: maddr.NewSet(),
		dialing:    maddr.NewSet(),
	}
}

// isEmpty reports whether the record has no addresses and no pending
// promises left, i.e. it is ready for removal from the peer table.
func (r *peerRecord) isEmpty() bool {
	return len(r.connected) == 0 && len(r.discovered) == 0 && len(r.dialing) == 0 && len(r.dialPromises) == 0
}

// addresses returns the deduplicated union of the three address sets,
// the flattened view exposed through Contact.
func (r *peerRecord) addresses() []maddr.Addr {
	union := maddr.NewSet()
	for a := range r.connected {
		union.Add(a)
	}
	for a := range r.discovered {
		union.Add(a)
	}
	for a := range r.dialing {
		union.Add(a)
	}
	return union.Slice()
}

func (r *peerRecord) contact(id peerid.ID) Contact {
	return Contact{PeerID: id, Addresses: r.addresses()}
}

// removeAddr deletes addr from all three sets; it never touches
// dialPromises.
func (r *peerRecord) removeAddr(addr maddr.Addr) {
	r.connected.Remove(addr)
	r.discovered.Remove(addr)
	r.dialing.Remove(addr)
}

// takeDialPromises returns and clears the pending dial promises.
func (r *peerRecord) takeDialPromises() []chan bool {
	promises := r.dialPromises
	r.dialPromises = nil
	return promises
}

// resolveBoolPromises sends outcome to every promise in order. Reply
// channels are buffered (capacity 1), so this never blocks even if
// nobody is left to read the value.
func resolveBoolPromises(promises []chan bool, outcome bool) {
	for _, p := range promises {
		p <- outcome
	}
}

func resolveContactPromises(promises []chan *Contact, contact *Contact) {
	for _, p := range promises {
		p <- contact
	}
}
