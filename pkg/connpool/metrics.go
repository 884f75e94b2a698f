package connpool

import "github.com/prometheus/client_golang/prometheus"

// poolMetrics bundles the pool's Prometheus collectors. Each Driver
// registers its own set against the prometheus.Registerer it is given,
// so multiple pools (e.g. in tests) never collide on a global default
// registry the way a package-level prometheus.MustRegister would.
type poolMetrics struct {
	connectedPeers    prometheus.Gauge
	particleQueueSize prometheus.Gauge
	receivedParticles *prometheus.CounterVec
	particleSizes     *prometheus.HistogramVec
}

func newPoolMetrics(reg prometheus.Registerer) *poolMetrics {
	m := &poolMetrics{
		connectedPeers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "connpool",
			Name:      "connected_peers",
			Help:      "Number of peers the pool holds a record for (connected or being dialed).",
		}),
		particleQueueSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "connpool",
			Name:      "particle_queue_size",
			Help:      "Number of particles waiting in the staging queue for egress.",
		}),
		receivedParticles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "connpool",
			Name:      "received_particles_total",
			Help:      "Number of inbound particles received, by particle type.",
		}, []string{"type"}),
		particleSizes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "connpool",
			Name:      "particle_sizes_bytes",
			Help:      "Size distribution of inbound particle payloads, by particle type.",
			Buckets:   prometheus.ExponentialBucketsRange(100, 100*1024*1024, 7),
		}, []string{"type"}),
	}
	if reg != nil {
		reg.MustRegister(m.connectedPeers, m.particleQueueSize, m.receivedParticles, m.particleSizes)
	}
	return m
}

func (m *poolMetrics) observeInbound(particleType string, size int) {
	m.receivedParticles.WithLabelValues(particleType).Inc()
	m.particleSizes.WithLabelValues(particleType).Observe(float64(size))
}
