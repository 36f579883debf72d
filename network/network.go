package network

import (
	"context"

	"github.com/mothra-net/mothra-go/module/component"
	"github.com/mothra-net/mothra-go/network/message"
)

// GossipHandler is an application-supplied function invoked for every inbound
// gossip message. The returned boolean acknowledgement is forwarded verbatim
// to the engine; its semantics are engine-defined.
type GossipHandler func(topic string, payload []byte) bool

// RPCHandler is an application-supplied function invoked for every inbound
// RPC message, whether a fresh request or the response that correlates to an
// earlier outbound call.
type RPCHandler func(method string, direction message.Direction, peer string, payload []byte) bool

// DiscoveryHandler is an application-supplied function invoked once per peer
// the engine reports as newly observed. The engine makes no de-duplication
// guarantee; the same peer may be reported more than once.
// The returned boolean expresses whether the application wants to retain the
// peer; its exact semantics are engine-defined.
type DiscoveryHandler func(peer string) bool

// EventSink receives every inbound event the engine produces. Implementations
// are invoked on the engine's own delivery goroutine and therefore must be
// fast, non-blocking, and must never panic through to the caller.
type EventSink interface {
	// OnGossipReceived is called for every gossip message arriving from the
	// network. The returned acknowledgement is forwarded to the engine.
	OnGossipReceived(msg message.GossipMessage) bool

	// OnRPCReceived is called for every RPC message arriving from a peer.
	OnRPCReceived(msg message.RPCMessage) bool

	// OnPeerDiscovered is called whenever the engine observes a peer.
	OnPeerDiscovered(ev message.DiscoveryEvent) bool
}

// Engine is the narrow command surface of the opaque peer-to-peer networking
// stack. The engine runs on its own execution context once started; inbound
// events are delivered to the EventSink the engine was constructed with.
type Engine interface {
	component.Component

	// PublishGossip hands a gossip publish off to the engine. It returns once
	// the engine has accepted the command; no delivery acknowledgement is
	// given. Repeated calls produce repeated network messages.
	PublishGossip(ctx context.Context, msg message.GossipMessage) error

	// SendRPC hands an RPC send for the addressed peer off to the engine.
	// Same fire-and-forget contract as PublishGossip.
	// Returns an ErrUnknownPeer if the engine cannot resolve the peer
	// identifier.
	SendRPC(ctx context.Context, msg message.RPCMessage) error
}
