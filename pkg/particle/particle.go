// Package particle defines the atomic unit of work routed between nodes
// by the connection pool, and the envelope the pool's internal staging
// queue carries it in.
package particle

import (
	"time"

	"github.com/google/uuid"
)

// Particle is an opaque routed message: an id, a payload, a TTL and a
// type label used for metrics. The execution script itself is the
// executor's concern; the pool never inspects payload contents.
type Particle struct {
	ID      string
	Type    string
	Payload []byte
	TTL     time.Duration
	Expiry  time.Time
}

// Expired reports whether the particle's TTL has elapsed relative to now.
func (p Particle) Expired(now time.Time) bool {
	if p.Expiry.IsZero() {
		return false
	}
	return now.After(p.Expiry)
}

// Extended pairs a Particle with a correlation id minted when it enters
// the pool, so staging and egress handling can be traced through logs
// without reconstructing causality from particle IDs alone (particle IDs
// are caller-supplied and not guaranteed unique across peers).
type Extended struct {
	Particle Particle
	Trace    uuid.UUID
	Staged   time.Time
}

// NewExtended wraps p with a fresh trace id and the current staging time.
func NewExtended(p Particle, now time.Time) Extended {
	return Extended{
		Particle: p,
		Trace:    uuid.New(),
		Staged:   now,
	}
}

// SendStatus is the outcome of a single send attempt.
type SendStatus int

const (
	// StatusOK means the particle was handed to the transport successfully
	// (for a self-send, staged successfully).
	StatusOK SendStatus = iota
	// StatusNotConnected means the destination peer has no live connection.
	StatusNotConnected
	// StatusTimedOut means the facade's send timeout elapsed before the
	// driver's underlying attempt resolved; the attempt may still
	// complete asynchronously.
	StatusTimedOut
	// StatusFailed means the transport reported a delivery failure.
	StatusFailed
)

// String renders the status for logs.
func (s SendStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotConnected:
		return "not_connected"
	case StatusTimedOut:
		return "timed_out"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}
