package connpool

// broadcast fans LifecycleEvent ev out to every subscriber. Each send is
// non-blocking: a subscriber slow to drain its channel simply misses the
// event rather than stalling the driver. There is no retry and no
// buffering beyond the subscriber channel's own capacity.
//
// Go offers no way to detect that a receiver stopped reading without the
// receiver cooperating (there is no "send on a channel nobody reads from
// anymore" signal short of the channel being closed, and closing a
// channel the driver itself owns from the consumer side isn't safe).
// Pruning therefore happens only through the explicit Unsubscribe call a
// Subscription exposes — see facade.go — rather than through silent
// detection of a dropped receiver.
func (d *Driver) broadcast(ev LifecycleEvent) {
	for _, ch := range d.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}
