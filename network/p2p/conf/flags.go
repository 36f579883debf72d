package conf

import (
	"fmt"

	"github.com/spf13/pflag"
)

const (
	// All constant strings are used for CLI flag names.
	listenAddress  = "listen-address"
	port           = "port"
	bootNodes      = "boot-nodes"
	topics         = "topics"
	maxMessageSize = "max-message-size"
	rpcTimeout     = "rpc-timeout"
	dhtServer      = "dht-server"
)

// ParseArgs parses process-style startup argument tokens into a Config. The
// first token is the program-identity token and carries no configuration.
func ParseArgs(args []string) (*Config, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("startup arguments must at least carry the program-identity token")
	}

	cfg := DefaultConfig()

	flags := pflag.NewFlagSet(args[0], pflag.ContinueOnError)
	flags.StringVar(&cfg.ListenAddress, listenAddress, cfg.ListenAddress, "IPv4 address the engine listens on")
	flags.Uint16Var(&cfg.Port, port, cfg.Port, "TCP port the engine listens on")
	flags.StringSliceVar(&cfg.BootNodes, bootNodes, cfg.BootNodes, "multiaddresses of boot nodes dialed at startup")
	flags.StringSliceVar(&cfg.Topics, topics, cfg.Topics, "gossip topics subscribed to at startup")
	flags.IntVar(&cfg.MaxMessageSize, maxMessageSize, cfg.MaxMessageSize, "maximum inbound message size in bytes")
	flags.DurationVar(&cfg.RPCTimeout, rpcTimeout, cfg.RPCTimeout, "maximum time an outbound rpc send may take")
	flags.BoolVar(&cfg.DHTServer, dhtServer, cfg.DHTServer, "force the discovery DHT into server mode")

	if err := flags.Parse(args[1:]); err != nil {
		return nil, fmt.Errorf("could not parse startup arguments: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid startup arguments: %w", err)
	}

	return cfg, nil
}
