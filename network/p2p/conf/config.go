// Package conf turns the process-style startup argument tokens handed to the
// bridge into the engine configuration.
package conf

import (
	"fmt"
	"time"
)

const (
	// DefaultListenAddress is the address the engine listens on when none is
	// given.
	DefaultListenAddress = "0.0.0.0"

	// DefaultPort is the TCP port the engine listens on when none is given.
	DefaultPort uint16 = 9000

	// DefaultMaxMessageSize bounds both gossip messages and rpc envelopes.
	DefaultMaxMessageSize = 1 << 20 // 1 mb

	// DefaultRPCTimeout is the maximum time an asynchronous rpc send may take
	// to dial the peer and write the envelope.
	DefaultRPCTimeout = 5 * time.Second
)

// DefaultTopics are the gossip channels joined at startup when none are given.
var DefaultTopics = []string{"beacon_block"}

// Config holds the engine's startup configuration.
type Config struct {
	// ListenAddress is the IPv4 address the engine's listening socket binds to.
	ListenAddress string

	// Port is the TCP port the engine's listening socket binds to.
	Port uint16

	// BootNodes are multiaddresses dialed at startup to seed discovery.
	BootNodes []string

	// Topics are the gossip channels subscribed to at startup.
	Topics []string

	// MaxMessageSize bounds inbound gossip messages and rpc envelopes.
	MaxMessageSize int

	// RPCTimeout bounds the dial-and-write of a single outbound rpc envelope.
	RPCTimeout time.Duration

	// DHTServer forces the kademlia DHT into server mode. By default the DHT
	// decides its mode from the host's observed reachability, which keeps
	// nodes behind NATs from advertising routes they cannot serve.
	DHTServer bool
}

// DefaultConfig returns a Config populated with the default values.
func DefaultConfig() *Config {
	return &Config{
		ListenAddress:  DefaultListenAddress,
		Port:           DefaultPort,
		BootNodes:      nil,
		Topics:         DefaultTopics,
		MaxMessageSize: DefaultMaxMessageSize,
		RPCTimeout:     DefaultRPCTimeout,
		DHTServer:      false,
	}
}

// Validate checks the configuration and sets default values for any missing
// fields.
func (c *Config) Validate() error {
	if c.ListenAddress == "" {
		c.ListenAddress = DefaultListenAddress
	}
	if c.Port == 0 {
		return fmt.Errorf("listen port must not be 0")
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = DefaultMaxMessageSize
	}
	if c.RPCTimeout <= 0 {
		c.RPCTimeout = DefaultRPCTimeout
	}
	return nil
}

// ListenMultiaddr renders the listen address and port as a multiaddress
// string.
func (c *Config) ListenMultiaddr() string {
	return fmt.Sprintf("/ip4/%s/tcp/%d", c.ListenAddress, c.Port)
}
