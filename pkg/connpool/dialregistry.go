package connpool

import "github.com/DENNIS-CODES/nox/pkg/maddr"

// dialRegistry maps an address being dialed to the ordered sequence of
// callers waiting on its outcome, independent of peer identity — dials
// may be issued before the peer id behind an address is known.
type dialRegistry map[maddr.Addr][]chan *Contact

func newDialRegistry() dialRegistry {
	return make(dialRegistry)
}

// add appends reply to addr's waiter list, creating the entry if absent.
func (d dialRegistry) add(addr maddr.Addr, reply chan *Contact) {
	d[addr] = append(d[addr], reply)
}

// drain removes and returns addr's waiter list, leaving no entry behind.
func (d dialRegistry) drain(addr maddr.Addr) []chan *Contact {
	waiters := d[addr]
	delete(d, addr)
	return waiters
}
