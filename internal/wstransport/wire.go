package wstransport

import (
	"time"

	"github.com/DENNIS-CODES/nox/pkg/particle"
)

// wireParticle is the JSON frame exchanged over a websocket connection.
// It mirrors particle.Particle field-for-field; kept as its own type so
// the wire format doesn't silently change shape if particle.Particle
// grows fields this transport has no business forwarding.
type wireParticle struct {
	ID      string        `json:"id"`
	Type    string        `json:"type"`
	Payload []byte        `json:"payload,omitempty"`
	TTL     time.Duration `json:"ttl"`
	Expiry  time.Time     `json:"expiry,omitempty"`
}

func toWire(p particle.Particle) wireParticle {
	return wireParticle{ID: p.ID, Type: p.Type, Payload: p.Payload, TTL: p.TTL, Expiry: p.Expiry}
}

func (w wireParticle) toParticle() particle.Particle {
	return particle.Particle{ID: w.ID, Type: w.Type, Payload: w.Payload, TTL: w.TTL, Expiry: w.Expiry}
}
