package bridge_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mothra-net/mothra-go/network/bridge"
	"github.com/mothra-net/mothra-go/network/message"
)

func newDispatcher() (*bridge.Dispatcher, *bridge.Registry) {
	registry := bridge.NewRegistry()
	return bridge.NewDispatcher(zerolog.Nop(), registry), registry
}

// TestDispatcher_GossipDelivery verifies that an inbound gossip message
// invokes the registered handler exactly once with the identical topic and
// payload, and that the handler's acknowledgement is forwarded verbatim.
func TestDispatcher_GossipDelivery(t *testing.T) {
	d, registry := newDispatcher()

	calls := 0
	var gotTopic string
	var gotPayload []byte
	registry.SetGossipHandler(func(topic string, payload []byte) bool {
		calls++
		gotTopic = topic
		gotPayload = payload
		return true
	})

	ack := d.OnGossipReceived(message.GossipMessage{Topic: "beacon_block", Payload: []byte("hello")})

	require.True(t, ack)
	require.Equal(t, 1, calls)
	require.Equal(t, "beacon_block", gotTopic)
	require.Equal(t, []byte("hello"), gotPayload)
}

// TestDispatcher_RPCDelivery verifies that all four rpc fields pass through
// to the handler unchanged.
func TestDispatcher_RPCDelivery(t *testing.T) {
	d, registry := newDispatcher()

	var got message.RPCMessage
	registry.SetRPCHandler(func(method string, direction message.Direction, peer string, payload []byte) bool {
		got = message.RPCMessage{Method: method, Direction: direction, Peer: peer, Payload: payload}
		return true
	})

	sent := message.RPCMessage{
		Method:    "HELLO",
		Direction: message.DirectionResponse,
		Peer:      "peer-42",
		Payload:   []byte("ping"),
	}
	require.True(t, d.OnRPCReceived(sent))
	require.Equal(t, sent, got)
}

// TestDispatcher_NoHandler verifies that events with no registered handler
// resolve to the default acknowledgement (false) instead of raising.
func TestDispatcher_NoHandler(t *testing.T) {
	d, _ := newDispatcher()

	require.False(t, d.OnGossipReceived(message.GossipMessage{Topic: "beacon_block", Payload: []byte("hello")}))
	require.False(t, d.OnRPCReceived(message.RPCMessage{Method: "HELLO", Peer: "peer-42"}))
	require.False(t, d.OnPeerDiscovered(message.DiscoveryEvent{Peer: "peerA"}))
}

// TestDispatcher_HandlerPanic verifies that a panicking handler is contained
// at the dispatch boundary: the default acknowledgement is returned and the
// dispatcher remains usable for subsequent events.
func TestDispatcher_HandlerPanic(t *testing.T) {
	d, registry := newDispatcher()

	registry.SetGossipHandler(func(string, []byte) bool {
		panic("application bug")
	})
	require.NotPanics(t, func() {
		require.False(t, d.OnGossipReceived(message.GossipMessage{Topic: "beacon_block"}))
	})

	// replace the faulty handler and verify delivery still works
	registry.SetGossipHandler(func(string, []byte) bool { return true })
	require.True(t, d.OnGossipReceived(message.GossipMessage{Topic: "beacon_block"}))
}

// TestDispatcher_DiscoveryNoDeduplication verifies that two sequential
// discovery events for the same peer both invoke the handler.
func TestDispatcher_DiscoveryNoDeduplication(t *testing.T) {
	d, registry := newDispatcher()

	calls := 0
	registry.SetDiscoveryHandler(func(peer string) bool {
		require.Equal(t, "peerA", peer)
		calls++
		return true
	})

	require.True(t, d.OnPeerDiscovered(message.DiscoveryEvent{Peer: "peerA"}))
	require.True(t, d.OnPeerDiscovered(message.DiscoveryEvent{Peer: "peerA"}))
	require.Equal(t, 2, calls)
}

// TestDispatcher_ReRegisterSameHandler verifies that registering the same
// handler twice keeps single-handler semantics: one delivered event means one
// invocation.
func TestDispatcher_ReRegisterSameHandler(t *testing.T) {
	d, registry := newDispatcher()

	calls := 0
	handler := func(string, []byte) bool {
		calls++
		return true
	}
	registry.SetGossipHandler(handler)
	registry.SetGossipHandler(handler)

	d.OnGossipReceived(message.GossipMessage{Topic: "beacon_block"})
	require.Equal(t, 1, calls)
}
