// Package p2p implements the peer-to-peer engine on top of libp2p: gossipsub
// for the gossip plane, dedicated streams for RPC exchange, and a kademlia
// DHT plus connection notifications for peer discovery.
package p2p

import (
	"context"
	crand "crypto/rand"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/libp2p/go-libp2p"
	dht "github.com/libp2p/go-libp2p-kad-dht"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/host"
	libp2pnet "github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/multiformats/go-multiaddr"
	"github.com/rs/zerolog"

	"github.com/mothra-net/mothra-go/module/component"
	"github.com/mothra-net/mothra-go/module/irrecoverable"
	"github.com/mothra-net/mothra-go/network"
	"github.com/mothra-net/mothra-go/network/message"
	"github.com/mothra-net/mothra-go/network/p2p/conf"
)

// Engine is the libp2p-backed networking stack. It implements network.Engine:
// the bridge drives it through PublishGossip and SendRPC, and it delivers
// every inbound event to the network.EventSink it was constructed with.
//
// All events are delivered synchronously on the engine's own goroutines; a
// slow sink stalls further delivery on that plane for as long as it runs.
type Engine struct {
	*component.ComponentManager

	log  zerolog.Logger
	cfg  *conf.Config
	sink network.EventSink

	host   host.Host
	pubSub *pubsub.PubSub

	mu     sync.Mutex
	topics map[string]*pubsub.Topic // joined topics, keyed by topic string
	subs   map[string]*pubsub.Subscription
}

var _ network.Engine = (*Engine)(nil)

// NewEngine creates the engine's libp2p host, binding its listening socket.
// A binding failure surfaces here, synchronously, as a startup fault. The
// gossip, discovery, and RPC subsystems come up when the engine is started.
func NewEngine(log zerolog.Logger, cfg *conf.Config, sink network.EventSink) (*Engine, error) {
	sourceMultiAddr, err := multiaddr.NewMultiaddr(cfg.ListenMultiaddr())
	if err != nil {
		return nil, fmt.Errorf("could not parse listen address %s: %w", cfg.ListenMultiaddr(), err)
	}

	key, _, err := crypto.GenerateEd25519Key(crand.Reader)
	if err != nil {
		return nil, fmt.Errorf("could not generate networking key: %w", err)
	}

	libp2pHost, err := libp2p.New(
		libp2p.ListenAddrs(sourceMultiAddr),
		libp2p.Identity(key),
		libp2p.Ping(true),
	)
	if err != nil {
		return nil, fmt.Errorf("could not create libp2p host: %w", err)
	}

	e := &Engine{
		log:    log.With().Str("component", "p2p-engine").Logger(),
		cfg:    cfg,
		sink:   sink,
		host:   libp2pHost,
		topics: make(map[string]*pubsub.Topic),
		subs:   make(map[string]*pubsub.Subscription),
	}

	e.ComponentManager = component.NewComponentManagerBuilder().
		AddWorker(e.run).
		Build()

	e.log.Info().
		Str("peer_id", libp2pHost.ID().String()).
		Str("address", cfg.ListenMultiaddr()).
		Msg("libp2p host created")

	return e, nil
}

// PeerID returns the textual libp2p identity of this engine's host.
func (e *Engine) PeerID() string {
	return e.host.ID().String()
}

// run is the engine's single worker routine. It brings up gossipsub, the
// DHT, the RPC stream handler, and the discovery notifications, signals
// ready, and then blocks until shutdown.
//
// Teardown is deferred so that it also runs on the throw paths; a startup
// failure after the host was created must still release the listening
// socket, otherwise the caller cannot reconfigure and retry.
func (e *Engine) run(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
	var kdht *dht.IpfsDHT
	var readers sync.WaitGroup
	defer func() {
		e.mu.Lock()
		for _, sub := range e.subs {
			sub.Cancel()
		}
		e.mu.Unlock()
		readers.Wait()

		if err := e.stop(kdht); err != nil {
			e.log.Error().Err(err).Msg("engine did not shut down cleanly")
		}
	}()

	ps, err := pubsub.NewGossipSub(ctx, e.host,
		pubsub.WithMessageSigning(false),
		pubsub.WithStrictSignatureVerification(false),
		pubsub.WithMaxMessageSize(e.cfg.MaxMessageSize),
	)
	if err != nil {
		ctx.Throw(fmt.Errorf("could not create gossipsub: %w", err))
	}
	e.pubSub = ps

	var dhtOpts []dht.Option
	if e.cfg.DHTServer {
		dhtOpts = append(dhtOpts, AsServer(true))
	}
	kdht, err = NewDHT(ctx, e.host, dhtOpts...)
	if err != nil {
		ctx.Throw(fmt.Errorf("could not create dht: %w", err))
	}

	e.host.SetStreamHandler(RPCProtocolID, e.handleRPCStream)
	e.host.Network().Notify(e.peerNotifiee())

	e.connectBootNodes(ctx)

	for _, topic := range e.cfg.Topics {
		sub, err := e.subscribe(topic)
		if err != nil {
			ctx.Throw(fmt.Errorf("could not subscribe to topic %s: %w", topic, err))
		}
		readers.Add(1)
		go func() {
			defer readers.Done()
			e.readSubscription(ctx, sub)
		}()
	}

	ready()

	<-ctx.Done()
}

// stop tears down the topics, the DHT, and the host, aggregating any errors.
// The DHT may be nil when startup failed before it was created.
func (e *Engine) stop(kdht *dht.IpfsDHT) error {
	var result *multierror.Error

	e.mu.Lock()
	for name, topic := range e.topics {
		if err := topic.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("could not close topic %s: %w", name, err))
		}
	}
	e.topics = make(map[string]*pubsub.Topic)
	e.subs = make(map[string]*pubsub.Subscription)
	e.mu.Unlock()

	if kdht != nil {
		if err := kdht.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("could not close dht: %w", err))
		}
	}
	if err := e.host.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("could not close host: %w", err))
	}
	// to prevent a peerstore routine leak
	if err := e.host.Peerstore().Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("could not close peer store: %w", err))
	}

	return result.ErrorOrNil()
}

// connectBootNodes dials the configured boot nodes to seed discovery. A boot
// node that cannot be reached is logged and skipped, not fatal.
func (e *Engine) connectBootNodes(ctx context.Context) {
	for _, node := range e.cfg.BootNodes {
		maddr, err := multiaddr.NewMultiaddr(node)
		if err != nil {
			e.log.Warn().Err(err).Str("boot_node", node).Msg("skipping malformed boot node address")
			continue
		}
		info, err := peer.AddrInfoFromP2pAddr(maddr)
		if err != nil {
			e.log.Warn().Err(err).Str("boot_node", node).Msg("skipping boot node address without peer identity")
			continue
		}
		if err := e.host.Connect(ctx, *info); err != nil {
			e.log.Warn().Err(err).Str("boot_node", node).Msg("could not connect to boot node")
			continue
		}
		e.log.Info().Str("boot_node", node).Msg("connected to boot node")
	}
}

// joinTopic returns the pubsub topic handle for the given topic, joining it
// on first use. NOTE: a joined topic also receives this node's own published
// messages on its local subscription, if one exists.
func (e *Engine) joinTopic(topic string) (*pubsub.Topic, error) {
	if topic == "" {
		return nil, fmt.Errorf("topic must not be empty")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if tp, found := e.topics[topic]; found {
		return tp, nil
	}
	tp, err := e.pubSub.Join(topic)
	if err != nil {
		return nil, fmt.Errorf("could not join topic %s: %w", topic, err)
	}
	e.topics[topic] = tp
	return tp, nil
}

// subscribe joins the topic and opens a subscription on it.
func (e *Engine) subscribe(topic string) (*pubsub.Subscription, error) {
	tp, err := e.joinTopic(topic)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	sub, err := tp.Subscribe()
	if err != nil {
		return nil, fmt.Errorf("could not subscribe to topic %s: %w", topic, err)
	}
	e.subs[topic] = sub

	e.log.Debug().Str("topic", topic).Msg("subscribed to topic")
	return sub, nil
}

// readSubscription dispatches every message arriving on the subscription to
// the sink, in arrival order, until the subscription is cancelled or the
// context ends.
func (e *Engine) readSubscription(ctx context.Context, sub *pubsub.Subscription) {
	for {
		msg, err := sub.Next(ctx)
		if err != nil {
			// subscription cancelled or context done
			return
		}
		ack := e.sink.OnGossipReceived(message.GossipMessage{
			Topic:   msg.GetTopic(),
			Payload: msg.GetData(),
		})
		if !ack {
			e.log.Debug().
				Str("topic", msg.GetTopic()).
				Str("from", msg.ReceivedFrom.String()).
				Msg("gossip message not acknowledged by application")
		}
	}
}

// PublishGossip publishes the payload on the message's topic, joining the
// topic on first use. The publish is handed to gossipsub; no delivery
// acknowledgement exists.
func (e *Engine) PublishGossip(ctx context.Context, msg message.GossipMessage) error {
	tp, err := e.joinTopic(msg.Topic)
	if err != nil {
		return err
	}
	if err := tp.Publish(ctx, msg.Payload); err != nil {
		return fmt.Errorf("could not publish to topic %s: %w", msg.Topic, err)
	}
	return nil
}

// SendRPC resolves the addressed peer synchronously and then dials and writes
// the envelope on a fresh goroutine, bounded by the configured rpc timeout.
// A peer identifier that cannot be decoded, or one the engine has no
// addresses for, is rejected with an ErrUnknownPeer.
func (e *Engine) SendRPC(ctx context.Context, msg message.RPCMessage) error {
	pid, err := peer.Decode(msg.Peer)
	if err != nil {
		return network.NewUnknownPeerErr(msg.Peer, err)
	}

	if e.host.Network().Connectedness(pid) != libp2pnet.Connected && len(e.host.Peerstore().Addrs(pid)) == 0 {
		return network.NewUnknownPeerErr(msg.Peer, fmt.Errorf("no known addresses for peer"))
	}

	go func() {
		sendCtx, cancel := context.WithTimeout(ctx, e.cfg.RPCTimeout)
		defer cancel()

		stream, err := e.host.NewStream(sendCtx, pid, RPCProtocolID)
		if err != nil {
			e.log.Warn().Err(err).
				Str("peer", msg.Peer).
				Str("method", msg.Method).
				Msg("could not open rpc stream")
			return
		}
		if err := message.WriteRPCEnvelope(stream, msg); err != nil {
			e.log.Warn().Err(err).
				Str("peer", msg.Peer).
				Str("method", msg.Method).
				Msg("could not write rpc envelope")
			_ = stream.Reset()
			return
		}
		if err := stream.Close(); err != nil {
			e.log.Warn().Err(err).Str("peer", msg.Peer).Msg("could not close rpc stream")
		}
	}()

	return nil
}
