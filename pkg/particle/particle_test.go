package particle_test

import (
	"testing"
	"time"

	"github.com/DENNIS-CODES/nox/pkg/particle"
	"github.com/stretchr/testify/require"
)

func TestExpired(t *testing.T) {
	now := time.Now()
	p := particle.Particle{ID: "p1", Expiry: now.Add(-time.Second)}
	require.True(t, p.Expired(now))

	p2 := particle.Particle{ID: "p2", Expiry: now.Add(time.Second)}
	require.False(t, p2.Expired(now))

	p3 := particle.Particle{ID: "p3"}
	require.False(t, p3.Expired(now))
}

func TestNewExtendedAssignsTrace(t *testing.T) {
	now := time.Now()
	e1 := particle.NewExtended(particle.Particle{ID: "p1"}, now)
	e2 := particle.NewExtended(particle.Particle{ID: "p1"}, now)
	require.NotEqual(t, e1.Trace, e2.Trace)
	require.Equal(t, now, e1.Staged)
}

func TestSendStatusString(t *testing.T) {
	require.Equal(t, "ok", particle.StatusOK.String())
	require.Equal(t, "not_connected", particle.StatusNotConnected.String())
	require.Equal(t, "timed_out", particle.StatusTimedOut.String())
	require.Equal(t, "failed", particle.StatusFailed.String())
}
