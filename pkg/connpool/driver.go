// Package connpool implements the connection pool core: the single
// cooperative state machine that multiplexes dials, swarm events,
// command requests and an egress stream toward the executor.
package connpool

import (
	"context"
	"fmt"

	"github.com/DENNIS-CODES/nox/pkg/config"
	"github.com/DENNIS-CODES/nox/pkg/maddr"
	"github.com/DENNIS-CODES/nox/pkg/particle"
	"github.com/DENNIS-CODES/nox/pkg/peerid"
	"github.com/DENNIS-CODES/nox/pkg/swarm"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Driver is a single goroutine owning every internal table, advancing
// the state machine as work arrives on its channels. It is not safe to
// call its unexported methods from more than one goroutine — callers
// interact with it only through the Pool facade and the channel
// accessors below.
type Driver struct {
	log       *zap.Logger
	cfg       config.P2P
	localPeer peerid.ID
	metrics   *poolMetrics

	peers   map[peerid.ID]*peerRecord
	dialReg dialRegistry

	subscribers []chan LifecycleEvent

	staging           []particle.Extended
	warnedStagingHigh bool

	pendingActions []swarm.Action

	commands chan command
	events   chan swarm.Event
	inbound  chan particle.Extended
	actions  chan swarm.Action
	egress   chan particle.Extended
}

// New builds a Driver and its Pool facade. reg may be nil to skip
// metrics registration (used in tests that construct many pools against
// the same process).
func New(localPeer peerid.ID, cfg config.P2P, log *zap.Logger, reg prometheus.Registerer) (*Pool, *Driver) {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Driver{
		log:       log,
		cfg:       cfg,
		localPeer: localPeer,
		metrics:   newPoolMetrics(reg),
		peers:     make(map[peerid.ID]*peerRecord),
		dialReg:   newDialRegistry(),
		commands:  make(chan command, cfg.CommandChannelSize),
		events:    make(chan swarm.Event, 64),
		inbound:   make(chan particle.Extended, 64),
		actions:   make(chan swarm.Action, 64),
		egress:    make(chan particle.Extended, cfg.EgressBufferSize),
	}
	return &Pool{commands: d.commands, sendTimeout: cfg.SendTimeout()}, d
}

// Actions is read by the transport layer to learn what the pool wants
// done (Dial / CloseConnection / NotifyHandler).
func (d *Driver) Actions() <-chan swarm.Action { return d.actions }

// Events is written to by the transport layer to report swarm-level
// occurrences.
func (d *Driver) Events() chan<- swarm.Event { return d.events }

// Inbound is written to by per-connection handler I/O to deliver
// particles received from the wire.
func (d *Driver) Inbound() chan<- particle.Extended { return d.inbound }

// Egress is read by the executor; particles appear here in FIFO order
// once admitted past the backpressure gate.
func (d *Driver) Egress() <-chan particle.Extended { return d.egress }

// Run executes the driver's cooperative loop until ctx is canceled. It
// never returns an error of its own accord: a failed dial or a closed
// connection is reported as an event, not a fatal condition for the
// driver as a whole.
func (d *Driver) Run(ctx context.Context) error {
	for {
		var egressCase chan<- particle.Extended
		var egressHead particle.Extended
		if len(d.staging) > 0 {
			egressCase = d.egress
			egressHead = d.staging[0]
		}

		var actionCase chan<- swarm.Action
		var actionHead swarm.Action
		if len(d.pendingActions) > 0 {
			actionCase = d.actions
			actionHead = d.pendingActions[0]
		}

		select {
		case <-ctx.Done():
			d.log.Info("connpool driver stopping",
				zap.Int("staging_remaining", len(d.staging)),
				zap.Int("peers_remaining", len(d.peers)))
			return ctx.Err()

		case cmd := <-d.commands:
			d.dispatch(cmd)

		case ev := <-d.events:
			d.handleEvent(ev)

		case ep := <-d.inbound:
			d.handleInboundParticle(ep)

		case egressCase <- egressHead:
			d.staging = d.staging[1:]
			d.updateQueueGauge()

		case actionCase <- actionHead:
			d.pendingActions = d.pendingActions[1:]
		}
	}
}

func (d *Driver) emitAction(a swarm.Action) {
	d.pendingActions = append(d.pendingActions, a)
}

func (d *Driver) updateQueueGauge() {
	n := len(d.staging)
	d.metrics.particleQueueSize.Set(float64(n))
	if n <= d.cfg.StagingWarnThreshold {
		d.warnedStagingHigh = false
	}
}

func (d *Driver) appendStaging(ep particle.Extended) {
	d.staging = append(d.staging, ep)
	n := len(d.staging)
	d.metrics.particleQueueSize.Set(float64(n))
	if n > d.cfg.StagingWarnThreshold && !d.warnedStagingHigh {
		d.log.Warn("particle staging queue above warning threshold",
			zap.Int("length", n), zap.Int("threshold", d.cfg.StagingWarnThreshold))
		d.warnedStagingHigh = true
	}
}

func (d *Driver) handleInboundParticle(ep particle.Extended) {
	d.metrics.observeInbound(ep.Particle.Type, len(ep.Particle.Payload))
	d.appendStaging(ep)
}

func (d *Driver) dispatch(cmd command) {
	switch c := cmd.(type) {
	case dialCommand:
		d.handleDial(c)
	case connectCommand:
		d.handleConnect(c)
	case disconnectCommand:
		d.emitAction(swarm.CloseConnection{Peer: c.peer, Scope: swarm.All})
		c.reply <- true
	case isConnectedCommand:
		_, ok := d.peers[c.peer]
		c.reply <- ok
	case getContactCommand:
		d.handleGetContact(c)
	case sendCommand:
		d.handleSend(c)
	case countConnectionsCommand:
		c.reply <- len(d.peers)
	case subscribeCommand:
		ch := make(chan LifecycleEvent, 64)
		d.subscribers = append(d.subscribers, ch)
		c.reply <- ch
	case unsubscribeCommand:
		d.removeSubscriber(c.ch)
	default:
		d.log.Error("connpool: unhandled command", zap.String("type", fmt.Sprintf("%T", cmd)))
	}
}

func (d *Driver) handleDial(c dialCommand) {
	d.dialReg.add(c.addr, c.reply)
	d.emitAction(swarm.Dial{Addrs: []maddr.Addr{c.addr}})
}

func (d *Driver) handleConnect(c connectCommand) {
	id := c.contact.PeerID
	rec, exists := d.peers[id]
	if !exists {
		rec = newPeerRecord()
		for _, a := range c.contact.Addresses {
			rec.dialing.Add(a)
		}
		rec.dialPromises = append(rec.dialPromises, c.reply)
		d.peers[id] = rec
		d.emitAction(swarm.Dial{Peer: id, Addrs: c.contact.Addresses})
		return
	}

	notConnected := false
	for _, a := range c.contact.Addresses {
		if !rec.connected.Has(a) {
			notConnected = true
			break
		}
	}
	var newAddrs []maddr.Addr
	for _, a := range c.contact.Addresses {
		if !rec.dialing.Has(a) && !rec.connected.Has(a) {
			newAddrs = append(newAddrs, a)
		}
	}

	if !notConnected {
		c.reply <- true
		return
	}

	rec.dialPromises = append(rec.dialPromises, c.reply)
	if len(newAddrs) > 0 {
		for _, a := range newAddrs {
			rec.dialing.Add(a)
		}
		d.emitAction(swarm.Dial{Peer: id, Addrs: newAddrs})
	}
}

func (d *Driver) handleGetContact(c getContactCommand) {
	rec, ok := d.peers[c.peer]
	if !ok {
		c.reply <- nil
		return
	}
	contact := rec.contact(c.peer)
	c.reply <- &contact
}

func (d *Driver) handleSend(c sendCommand) {
	if c.to.PeerID == d.localPeer {
		d.appendStaging(c.particle)
		c.reply <- particle.StatusOK
		return
	}
	if _, ok := d.peers[c.to.PeerID]; ok {
		// The handler resolves c.reply directly with the transmit
		// outcome; the driver's job here is done once the action is
		// queued.
		d.emitAction(swarm.NotifyHandler{
			Peer: c.to.PeerID,
			Message: swarm.OutParticle{
				Particle:   c.particle,
				Completion: c.reply,
			},
		})
		return
	}
	c.reply <- particle.StatusNotConnected
}

func (d *Driver) removeSubscriber(target chan LifecycleEvent) {
	for i, ch := range d.subscribers {
		if ch == target {
			d.subscribers = append(d.subscribers[:i], d.subscribers[i+1:]...)
			close(ch)
			return
		}
	}
}
