// Package message holds the data shapes exchanged across the boundary
// between the application, the bridge, and the peer-to-peer engine.
//
// Topic, method, and peer identifiers are opaque to this layer; they carry a
// textual (UTF-8) interpretation but are never inspected. Payloads are opaque
// byte sequences throughout.
package message

import (
	"fmt"
)

// Direction distinguishes an inbound RPC call from a reply correlated to an
// earlier outbound call. It is represented as a small integer tag at the wire
// boundary.
type Direction uint8

const (
	// DirectionRequest tags an RPC message that initiates an exchange.
	DirectionRequest Direction = iota

	// DirectionResponse tags an RPC message that replies to an earlier request.
	DirectionResponse
)

func (d Direction) String() string {
	switch d {
	case DirectionRequest:
		return "request"
	case DirectionResponse:
		return "response"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// Valid returns whether d is one of the two defined direction tags.
func (d Direction) Valid() bool {
	return d == DirectionRequest || d == DirectionResponse
}

// GossipMessage is a topic-addressed message, produced by the engine on
// receipt from the network or by the application for publication.
type GossipMessage struct {
	Topic   string
	Payload []byte
}

// RPCMessage is a peer-addressed message exchanged over a dedicated stream.
type RPCMessage struct {
	Method    string
	Direction Direction
	Peer      string
	Payload   []byte
}

// DiscoveryEvent is raised by the engine once per observed peer. The engine
// may or may not suppress repeats; this layer performs no de-duplication.
type DiscoveryEvent struct {
	Peer string
}
