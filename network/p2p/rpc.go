package p2p

import (
	libp2pnet "github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/protocol"

	"github.com/mothra-net/mothra-go/network/message"
)

// RPCProtocolID is the libp2p protocol under which rpc envelopes are
// exchanged. Each envelope travels on its own stream.
const RPCProtocolID protocol.ID = "/mothra/rpc/1.0.0"

// handleRPCStream reads the single envelope carried by an inbound rpc stream
// and dispatches it to the sink on this goroutine, the engine's delivery
// context for the rpc plane. A negative acknowledgement resets the stream so
// the remote side can observe the rejection.
func (e *Engine) handleRPCStream(stream libp2pnet.Stream) {
	remote := stream.Conn().RemotePeer().String()

	msg, err := message.ReadRPCEnvelope(stream, int64(e.cfg.MaxMessageSize))
	if err != nil {
		e.log.Warn().Err(err).Str("peer", remote).Msg("dropping malformed rpc envelope")
		_ = stream.Reset()
		return
	}
	msg.Peer = remote

	ack := e.sink.OnRPCReceived(msg)
	if !ack {
		e.log.Debug().
			Str("peer", remote).
			Str("method", msg.Method).
			Str("direction", msg.Direction.String()).
			Msg("rpc message not acknowledged by application")
		_ = stream.Reset()
		return
	}
	_ = stream.Close()
}
