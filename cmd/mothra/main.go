// Command mothra runs a single bridge node interactively: it prints every
// inbound gossip message, rpc message, and discovered peer, and reads
// outbound commands from stdin.
//
// Usage:
//
//	mothra [--listen-address ADDR] [--port PORT] [--boot-nodes MADDRS] [--topics TOPICS] [--dht-server]
//
// The node's own peer identity is logged at startup, so it can be handed to
// other nodes as a boot node or rpc target.
//
// Commands on stdin:
//
//	gossip <topic> <message>
//	rpc <peer-id> <method> <message>
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/mothra-net/mothra-go/network/bridge"
	"github.com/mothra-net/mothra-go/network/message"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b := bridge.New(log)
	if err := b.Initialize(); err != nil {
		log.Fatal().Err(err).Msg("could not initialize bridge")
	}

	b.RegisterGossipHandler(func(topic string, payload []byte) bool {
		fmt.Printf("received gossip message %s: %s\n", topic, payload)
		return true
	})
	b.RegisterRPCHandler(func(method string, direction message.Direction, peer string, payload []byte) bool {
		fmt.Printf("rpc method %s (%s) invoked by peer %s with message: %s\n", method, direction, peer, payload)
		return true
	})
	b.RegisterDiscoveryHandler(func(peer string) bool {
		fmt.Printf("discovered peer: %s\n", peer)
		return true
	})

	// the engine owns this goroutine for its whole lifetime; the main
	// goroutine stays free to issue outbound commands
	startErr := make(chan error, 1)
	go func() {
		startErr <- b.Start(ctx, os.Args)
	}()

	go commandLoop(b, log)

	if err := <-startErr; err != nil {
		log.Fatal().Err(err).Msg("engine terminated")
	}
}

func commandLoop(b *bridge.Bridge, log zerolog.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch strings.ToLower(fields[0]) {
		case "gossip":
			if len(fields) < 3 {
				fmt.Println("usage: gossip <topic> <message>")
				continue
			}
			payload := strings.Join(fields[2:], " ")
			if err := b.PublishGossip([]byte(fields[1]), []byte(payload)); err != nil {
				log.Error().Err(err).Msg("could not publish gossip")
			}
		case "rpc":
			if len(fields) < 4 {
				fmt.Println("usage: rpc <peer-id> <method> <message>")
				continue
			}
			payload := strings.Join(fields[3:], " ")
			err := b.SendRPC([]byte(fields[2]), message.DirectionRequest, []byte(fields[1]), []byte(payload))
			if err != nil {
				log.Error().Err(err).Msg("could not send rpc")
			}
		default:
			fmt.Println("commands: gossip <topic> <message> | rpc <peer-id> <method> <message>")
		}
	}
}
