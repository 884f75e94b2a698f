// Package wstransport is a websocket-based swarm.Transporter, wired for
// demos and integration tests rather than production peer-to-peer use:
// no noise/TLS handshake, no multiplexing, one connection per peer.
package wstransport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/DENNIS-CODES/nox/pkg/maddr"
	"github.com/DENNIS-CODES/nox/pkg/particle"
	"github.com/DENNIS-CODES/nox/pkg/peerid"
	"github.com/DENNIS-CODES/nox/pkg/swarm"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const peerIDHeader = "X-Peer-Id"

// Transport implements swarm.Transporter over gorilla/websocket. A
// single Transport both accepts inbound connections on ListenAddr and
// dials outbound ones; the pool core never distinguishes the two.
type Transport struct {
	ListenAddr string

	localPeer peerid.ID
	inbound   chan<- particle.Extended
	log       *zap.Logger
	upgrader  websocket.Upgrader
	dialer    websocket.Dialer

	mu    sync.Mutex
	conns map[peerid.ID]*wsConn

	ready chan string
}

type wsConn struct {
	peer    peerid.ID
	addr    maddr.Addr
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// New builds a Transport. inbound is the channel inbound particles are
// forwarded to — typically a Driver's Inbound() channel.
func New(listenAddr string, localPeer peerid.ID, inbound chan<- particle.Extended, log *zap.Logger) *Transport {
	if log == nil {
		log = zap.NewNop()
	}
	return &Transport{
		ListenAddr: listenAddr,
		localPeer:  localPeer,
		inbound:    inbound,
		log:        log,
		conns:      make(map[peerid.ID]*wsConn),
		ready:      make(chan string, 1),
	}
}

// ListeningAddr blocks until Run's listener is bound and returns its
// actual address — useful when ListenAddr ends in ":0" and the OS picks
// the port.
func (t *Transport) ListeningAddr(ctx context.Context) (string, error) {
	select {
	case addr := <-t.ready:
		t.ready <- addr
		return addr, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Run implements swarm.Transporter. It serves inbound connections on
// ListenAddr and processes outbound actions until ctx is canceled.
func (t *Transport) Run(ctx context.Context, actions <-chan swarm.Action, events chan<- swarm.Event) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		t.accept(w, r, events)
	})
	srv := &http.Server{Addr: t.ListenAddr, Handler: mux}

	listener, err := net.Listen("tcp", t.ListenAddr)
	if err != nil {
		return fmt.Errorf("wstransport: listen on %s: %w", t.ListenAddr, err)
	}
	t.ready <- listener.Addr().String()

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(listener) }()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
			t.closeAll()
			return ctx.Err()

		case err := <-serveErr:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				t.log.Error("wstransport: serve failed", zap.Error(err))
			}

		case a, ok := <-actions:
			if !ok {
				continue
			}
			t.dispatch(ctx, a, events)
		}
	}
}

func (t *Transport) dispatch(ctx context.Context, a swarm.Action, events chan<- swarm.Event) {
	switch action := a.(type) {
	case swarm.Dial:
		go t.dial(ctx, action, events)
	case swarm.CloseConnection:
		t.closePeer(action.Peer)
	case swarm.NotifyHandler:
		t.notify(action)
	default:
		t.log.Warn("wstransport: unhandled action", zap.String("type", fmt.Sprintf("%T", a)))
	}
}

func (t *Transport) accept(w http.ResponseWriter, r *http.Request, events chan<- swarm.Event) {
	responseHeader := http.Header{}
	responseHeader.Set(peerIDHeader, t.localPeer.String())

	conn, err := t.upgrader.Upgrade(w, r, responseHeader)
	if err != nil {
		t.log.Debug("wstransport: upgrade failed", zap.Error(err))
		return
	}

	remoteStr := r.Header.Get(peerIDHeader)
	remote, err := peerid.Parse(remoteStr)
	if err != nil {
		t.log.Debug("wstransport: inbound connection missing valid peer id header", zap.Error(err))
		conn.Close()
		return
	}

	addr := addrFromHostPort(r.RemoteAddr)
	wc := &wsConn{peer: remote, addr: addr, conn: conn}
	t.mu.Lock()
	t.conns[remote] = wc
	t.mu.Unlock()

	events <- swarm.ConnectionEstablished{Peer: remote, Addr: addr, Inbound: true}
	go t.readLoop(wc, events)
}

func (t *Transport) dial(ctx context.Context, d swarm.Dial, events chan<- swarm.Event) {
	var causes []swarm.AddrCause
	for _, addr := range d.Addrs {
		wc, wrongPeer, err := t.dialOne(ctx, d.Peer, addr)
		if err != nil {
			causes = append(causes, swarm.AddrCause{Addr: addr, Cause: err})
			continue
		}
		if wrongPeer {
			events <- swarm.DialFailure{Peer: &d.Peer, Kind: swarm.DialErrorWrongPeerID, Addr: addr}
			continue
		}

		t.mu.Lock()
		t.conns[wc.peer] = wc
		t.mu.Unlock()
		events <- swarm.ConnectionEstablished{Peer: wc.peer, Addr: addr}
		go t.readLoop(wc, events)
		return
	}
	if len(causes) > 0 {
		var peer *peerid.ID
		if !d.Peer.IsZero() {
			peer = &d.Peer
		}
		events <- swarm.DialFailure{Peer: peer, Kind: swarm.DialErrorTransport, Transport: causes}
	}
}

// dialOne performs the handshake for a single address and reports
// whether the remote's self-reported identity matches the requested
// peer (when one was requested). The caller registers and starts
// reading the connection only once it decides to keep it.
func (t *Transport) dialOne(ctx context.Context, peer peerid.ID, addr maddr.Addr) (wc *wsConn, wrongPeer bool, err error) {
	host, ok := addr.Host()
	if !ok {
		return nil, false, fmt.Errorf("wstransport: address %s has no host segment", addr)
	}
	port, ok := addr.Port()
	if !ok {
		return nil, false, fmt.Errorf("wstransport: address %s has no port segment", addr)
	}
	url := fmt.Sprintf("ws://%s:%d/ws", host, port)

	header := http.Header{}
	header.Set(peerIDHeader, t.localPeer.String())

	conn, resp, err := t.dialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, false, err
	}
	remote, err := peerid.Parse(resp.Header.Get(peerIDHeader))
	if err != nil {
		conn.Close()
		return nil, false, fmt.Errorf("wstransport: remote at %s did not report a peer id: %w", addr, err)
	}
	if !peer.IsZero() && remote != peer {
		conn.Close()
		return nil, true, nil
	}

	return &wsConn{peer: remote, addr: addr, conn: conn}, false, nil
}

func (t *Transport) readLoop(wc *wsConn, events chan<- swarm.Event) {
	for {
		var w wireParticle
		if err := wc.conn.ReadJSON(&w); err != nil {
			t.mu.Lock()
			if t.conns[wc.peer] == wc {
				delete(t.conns, wc.peer)
			}
			t.mu.Unlock()
			events <- swarm.ConnectionClosed{Peer: wc.peer, RemoteAddr: wc.addr, RemainingEstablished: 0}
			return
		}
		ep := particle.NewExtended(w.toParticle(), time.Now())
		t.inbound <- ep
	}
}

func (t *Transport) notify(n swarm.NotifyHandler) {
	out, ok := n.Message.(swarm.OutParticle)
	if !ok {
		return
	}
	t.mu.Lock()
	wc, ok := t.conns[n.Peer]
	t.mu.Unlock()
	if !ok {
		out.Completion <- particle.StatusNotConnected
		return
	}

	wc.writeMu.Lock()
	err := wc.conn.WriteJSON(toWire(out.Particle.Particle))
	wc.writeMu.Unlock()
	if err != nil {
		out.Completion <- particle.StatusFailed
		return
	}
	out.Completion <- particle.StatusOK
}

func (t *Transport) closePeer(peer peerid.ID) {
	t.mu.Lock()
	wc, ok := t.conns[peer]
	t.mu.Unlock()
	if !ok {
		return
	}
	wc.conn.Close()
}

func (t *Transport) closeAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, wc := range t.conns {
		wc.conn.Close()
	}
}

func addrFromHostPort(hostPort string) maddr.Addr {
	host, port, err := net.SplitHostPort(hostPort)
	if err != nil {
		return maddr.Addr{}
	}
	a, err := maddr.Parse(fmt.Sprintf("/ip4/%s/tcp/%s", host, port))
	if err != nil {
		return maddr.Addr{}
	}
	return a
}
