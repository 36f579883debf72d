package conf_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mothra-net/mothra-go/network/p2p/conf"
)

// TestParseArgs_Defaults verifies that a bare program-identity token yields
// the default configuration.
func TestParseArgs_Defaults(t *testing.T) {
	cfg, err := conf.ParseArgs([]string{"mothra"})
	require.NoError(t, err)

	require.Equal(t, conf.DefaultListenAddress, cfg.ListenAddress)
	require.Equal(t, conf.DefaultPort, cfg.Port)
	require.Equal(t, conf.DefaultTopics, cfg.Topics)
	require.Empty(t, cfg.BootNodes)
	require.Equal(t, conf.DefaultMaxMessageSize, cfg.MaxMessageSize)
	require.Equal(t, conf.DefaultRPCTimeout, cfg.RPCTimeout)
	require.False(t, cfg.DHTServer)
}

// TestParseArgs_Overrides verifies that configuration tokens override the
// defaults.
func TestParseArgs_Overrides(t *testing.T) {
	cfg, err := conf.ParseArgs([]string{
		"mothra",
		"--listen-address", "127.0.0.1",
		"--port", "9001",
		"--boot-nodes", "/ip4/10.0.0.1/tcp/9000/p2p/QmPeer",
		"--topics", "beacon_block,beacon_attestation",
		"--rpc-timeout", "2s",
		"--dht-server",
	})
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1", cfg.ListenAddress)
	require.Equal(t, uint16(9001), cfg.Port)
	require.Equal(t, []string{"/ip4/10.0.0.1/tcp/9000/p2p/QmPeer"}, cfg.BootNodes)
	require.Equal(t, []string{"beacon_block", "beacon_attestation"}, cfg.Topics)
	require.Equal(t, 2*time.Second, cfg.RPCTimeout)
	require.True(t, cfg.DHTServer)
	require.Equal(t, "/ip4/127.0.0.1/tcp/9001", cfg.ListenMultiaddr())
}

// TestParseArgs_Malformed verifies that unknown flags, bad values, and a
// missing program-identity token are rejected.
func TestParseArgs_Malformed(t *testing.T) {
	_, err := conf.ParseArgs([]string{"mothra", "--no-such-flag"})
	require.Error(t, err)

	_, err = conf.ParseArgs([]string{"mothra", "--port", "not-a-number"})
	require.Error(t, err)

	_, err = conf.ParseArgs([]string{"mothra", "--port", "0"})
	require.Error(t, err)

	_, err = conf.ParseArgs(nil)
	require.Error(t, err)
}
