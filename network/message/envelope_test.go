package message_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mothra-net/mothra-go/network/message"
)

// TestRPCEnvelopeRoundTrip verifies that an envelope written to a stream is
// read back with method, direction, and payload intact, and the peer left for
// the receiver to fill in.
func TestRPCEnvelopeRoundTrip(t *testing.T) {
	sent := message.RPCMessage{
		Method:    "HELLO",
		Direction: message.DirectionRequest,
		Peer:      "peer-42", // not part of the wire framing
		Payload:   []byte("ping"),
	}

	var buf bytes.Buffer
	require.NoError(t, message.WriteRPCEnvelope(&buf, sent))

	got, err := message.ReadRPCEnvelope(&buf, int64(buf.Len()))
	require.NoError(t, err)
	require.Equal(t, sent.Method, got.Method)
	require.Equal(t, sent.Direction, got.Direction)
	require.Equal(t, sent.Payload, got.Payload)
	require.Empty(t, got.Peer)
}

// TestReadRPCEnvelope_SizeLimit verifies that an envelope larger than the
// size bound is rejected.
func TestReadRPCEnvelope_SizeLimit(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, message.WriteRPCEnvelope(&buf, message.RPCMessage{
		Method:  "HELLO",
		Payload: bytes.Repeat([]byte("x"), 1024),
	}))

	_, err := message.ReadRPCEnvelope(&buf, 16)
	require.Error(t, err)
}

// TestReadRPCEnvelope_UnknownDirection verifies that a direction tag outside
// the defined set is rejected with ErrUnknownDirection.
func TestReadRPCEnvelope_UnknownDirection(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, message.WriteRPCEnvelope(&buf, message.RPCMessage{
		Method:    "HELLO",
		Direction: message.Direction(7),
	}))

	_, err := message.ReadRPCEnvelope(&buf, int64(buf.Len()))
	require.True(t, message.IsErrUnknownDirection(err))
}

func TestDirection(t *testing.T) {
	require.Equal(t, "request", message.DirectionRequest.String())
	require.Equal(t, "response", message.DirectionResponse.String())
	require.True(t, message.DirectionRequest.Valid())
	require.True(t, message.DirectionResponse.Valid())
	require.False(t, message.Direction(7).Valid())
}
