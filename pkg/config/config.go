// Package config holds the connection pool's configuration tree,
// loaded from YAML the way neo-go's ApplicationConfiguration is.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for a node running the
// connection pool.
type Config struct {
	P2P    P2P    `yaml:"P2P"`
	Logger Logger `yaml:"Logger"`
}

// P2P holds pool-level tunables: timeouts and channel buffer sizes for
// the connection pool driver and its egress path.
type P2P struct {
	// UpgradeTimeout is the transport's connection upgrade timeout; the
	// facade's Send call times out at 2x this value.
	UpgradeTimeout time.Duration `yaml:"UpgradeTimeout"`
	// EgressBufferSize is the capacity of the bounded channel toward the
	// executor.
	EgressBufferSize int `yaml:"EgressBufferSize"`
	// StagingWarnThreshold is the staging-queue length above which the
	// driver logs a warning. The warning is logged once per excursion
	// above the threshold and re-armed only after the queue drains back
	// to the threshold or below.
	StagingWarnThreshold int `yaml:"StagingWarnThreshold"`
	// CommandChannelSize is the buffer capacity of the command channel.
	// The channel is bounded: once it is full, a facade call waits until
	// the driver takes a command or the call's context ends.
	CommandChannelSize int `yaml:"CommandChannelSize"`
	// ListenAddr is the local address the node's transport accepts
	// inbound connections on.
	ListenAddr string `yaml:"ListenAddr"`
}

// Default returns the pool's default tunables.
func Default() P2P {
	return P2P{
		UpgradeTimeout:       10 * time.Second,
		EgressBufferSize:     256,
		StagingWarnThreshold: 30,
		CommandChannelSize:   256,
		ListenAddr:           "127.0.0.1:0",
	}
}

// SendTimeout is the facade-level timeout for Send.
func (p P2P) SendTimeout() time.Duration {
	return 2 * p.UpgradeTimeout
}

// Validate checks the P2P configuration for internally-consistent values.
func (p P2P) Validate() error {
	if p.UpgradeTimeout <= 0 {
		return fmt.Errorf("config: UpgradeTimeout must be positive, got %s", p.UpgradeTimeout)
	}
	if p.EgressBufferSize <= 0 {
		return fmt.Errorf("config: EgressBufferSize must be positive, got %d", p.EgressBufferSize)
	}
	if p.StagingWarnThreshold < 0 {
		return fmt.Errorf("config: StagingWarnThreshold must be non-negative, got %d", p.StagingWarnThreshold)
	}
	return nil
}

// Load reads and parses a YAML config file at path, filling unset fields
// from Default.
func Load(path string) (Config, error) {
	cfg := Config{P2P: Default()}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := cfg.P2P.Validate(); err != nil {
		return cfg, err
	}
	if err := cfg.Logger.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
