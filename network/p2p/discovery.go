package p2p

import (
	"context"

	dht "github.com/libp2p/go-libp2p-kad-dht"
	"github.com/libp2p/go-libp2p/core/host"
	libp2pnet "github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/protocol"

	"github.com/mothra-net/mothra-go/network/message"
)

// dhtProtocolPrefix namespaces the kademlia protocol so engines only peer
// with each other.
const dhtProtocolPrefix protocol.ID = "/mothra"

// NewDHT produces a new kademlia DHT on the given host and bootstraps it.
func NewDHT(ctx context.Context, host host.Host, options ...dht.Option) (*dht.IpfsDHT, error) {
	allOptions := append(defaultDHTOptions(), options...)

	kdht, err := dht.New(ctx, host, allOptions...)
	if err != nil {
		return nil, err
	}

	if err = kdht.Bootstrap(ctx); err != nil {
		return nil, err
	}

	return kdht, nil
}

// AsServer sets the DHT mode. The default is ModeAuto, which switches the DHT
// between server and client mode based on whether the node appears publicly
// reachable. Forcing server mode is useful in test setups where nodes are not
// reachable from the public network.
func AsServer(enable bool) dht.Option {
	if enable {
		return dht.Mode(dht.ModeServer)
	}
	return dht.Mode(dht.ModeClient)
}

func defaultDHTOptions() []dht.Option {
	return []dht.Option{
		dht.ProtocolPrefix(dhtProtocolPrefix),
	}
}

// peerNotifiee surfaces newly connected peers as discovery events. The sink
// is invoked on the connection-handling goroutine; no de-duplication is
// performed, so a peer that reconnects is reported again.
func (e *Engine) peerNotifiee() libp2pnet.Notifiee {
	return &libp2pnet.NotifyBundle{
		ConnectedF: func(_ libp2pnet.Network, conn libp2pnet.Conn) {
			peerID := conn.RemotePeer().String()
			ack := e.sink.OnPeerDiscovered(message.DiscoveryEvent{Peer: peerID})
			if !ack {
				e.log.Debug().Str("peer", peerID).Msg("discovered peer not acknowledged by application")
			}
		},
	}
}
