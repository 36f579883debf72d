package bridge

import (
	"github.com/rs/zerolog"

	"github.com/mothra-net/mothra-go/network"
	"github.com/mothra-net/mothra-go/network/message"
)

// defaultAck is returned to the engine whenever an event cannot be handed to
// application code, either because no handler is registered for its kind or
// because the handler panicked. It deliberately signals "unhandled" so the
// engine never mistakes absent application wiring for successful processing.
const defaultAck = false

// Dispatcher is the single choke point through which every inbound engine
// event is routed to the currently registered application handler.
//
// All methods run synchronously on the engine's delivery goroutine. A panic
// inside a handler is contained here and converted to the default
// acknowledgement; it must never unwind into the engine, as that could take
// down the whole networking stack.
type Dispatcher struct {
	log      zerolog.Logger
	registry *Registry
}

var _ network.EventSink = (*Dispatcher)(nil)

// NewDispatcher returns a Dispatcher routing events to handlers held by the
// given registry.
func NewDispatcher(log zerolog.Logger, registry *Registry) *Dispatcher {
	return &Dispatcher{
		log:      log.With().Str("component", "dispatcher").Logger(),
		registry: registry,
	}
}

// OnGossipReceived routes an inbound gossip message to the gossip handler and
// forwards its acknowledgement verbatim. When no handler is registered it
// returns the default acknowledgement rather than failing, since delivery
// must survive absent application wiring.
func (d *Dispatcher) OnGossipReceived(msg message.GossipMessage) bool {
	handler := d.registry.GossipHandler()
	if handler == nil {
		d.log.Debug().Str("topic", msg.Topic).Msg("gossip message arrived with no handler registered")
		return defaultAck
	}
	return d.invoke("gossip", func() bool {
		return handler(msg.Topic, msg.Payload)
	})
}

// OnRPCReceived routes an inbound RPC message to the RPC handler, passing all
// fields through unchanged.
func (d *Dispatcher) OnRPCReceived(msg message.RPCMessage) bool {
	handler := d.registry.RPCHandler()
	if handler == nil {
		d.log.Debug().
			Str("method", msg.Method).
			Str("peer", msg.Peer).
			Msg("rpc message arrived with no handler registered")
		return defaultAck
	}
	return d.invoke("rpc", func() bool {
		return handler(msg.Method, msg.Direction, msg.Peer, msg.Payload)
	})
}

// OnPeerDiscovered routes a peer observation to the discovery handler. The
// returned acknowledgement expresses whether the application wants to retain
// the peer; its semantics are engine-defined.
func (d *Dispatcher) OnPeerDiscovered(ev message.DiscoveryEvent) bool {
	handler := d.registry.DiscoveryHandler()
	if handler == nil {
		d.log.Debug().Str("peer", ev.Peer).Msg("peer discovered with no handler registered")
		return defaultAck
	}
	return d.invoke("discovery", func() bool {
		return handler(ev.Peer)
	})
}

// invoke runs the handler closure, containing any panic at this boundary. A
// recovered panic yields the default acknowledgement and a diagnostic; the
// dispatcher remains usable for subsequent events.
func (d *Dispatcher) invoke(kind string, fn func() bool) (ack bool) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().
				Str("kind", kind).
				Interface("panic", r).
				Msg("application handler panicked; event dropped")
			ack = defaultAck
		}
	}()
	return fn()
}
