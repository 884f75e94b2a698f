package wstransport_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/DENNIS-CODES/nox/internal/wstransport"
	"github.com/DENNIS-CODES/nox/pkg/maddr"
	"github.com/DENNIS-CODES/nox/pkg/particle"
	"github.com/DENNIS-CODES/nox/pkg/peerid"
	"github.com/DENNIS-CODES/nox/pkg/swarm"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestTwoTransportsDialAndExchangeParticles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	peerA := peerid.Random()
	peerB := peerid.Random()

	inboundA := make(chan particle.Extended, 8)
	inboundB := make(chan particle.Extended, 8)

	tA := wstransport.New("127.0.0.1:0", peerA, inboundA, zaptest.NewLogger(t))
	tB := wstransport.New("127.0.0.1:0", peerB, inboundB, zaptest.NewLogger(t))

	actionsA := make(chan swarm.Action, 8)
	eventsA := make(chan swarm.Event, 8)
	actionsB := make(chan swarm.Action, 8)
	eventsB := make(chan swarm.Event, 8)

	go tA.Run(ctx, actionsA, eventsA)
	go tB.Run(ctx, actionsB, eventsB)

	addrBStr, err := tB.ListeningAddr(ctx)
	require.NoError(t, err)
	_, err = tA.ListeningAddr(ctx)
	require.NoError(t, err)

	_, port, err := net.SplitHostPort(addrBStr)
	require.NoError(t, err)
	addrB := maddr.MustParse(fmt.Sprintf("/ip4/127.0.0.1/tcp/%s", port))

	actionsA <- swarm.Dial{Peer: peerB, Addrs: []maddr.Addr{addrB}}

	var estA, estB swarm.ConnectionEstablished
	select {
	case ev := <-eventsA:
		estA = ev.(swarm.ConnectionEstablished)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for A's established event")
	}
	select {
	case ev := <-eventsB:
		estB = ev.(swarm.ConnectionEstablished)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for B's established event")
	}
	require.Equal(t, peerB, estA.Peer)
	require.Equal(t, peerA, estB.Peer)

	completion := make(chan particle.SendStatus, 1)
	actionsA <- swarm.NotifyHandler{
		Peer: peerB,
		Message: swarm.OutParticle{
			Particle:   particle.NewExtended(particle.Particle{ID: "hello", Type: "greeting"}, time.Now()),
			Completion: completion,
		},
	}

	select {
	case status := <-completion:
		require.Equal(t, particle.StatusOK, status)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for send completion")
	}

	select {
	case ep := <-inboundB:
		require.Equal(t, "hello", ep.Particle.ID)
		require.Equal(t, "greeting", ep.Particle.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for inbound particle on B")
	}
}
