package message

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// rpcEnvelope is the CBOR wire framing of an RPCMessage on a stream. The
// sending peer is not part of the envelope; the receiver derives it from the
// stream's remote endpoint.
type rpcEnvelope struct {
	Method    []byte `cbor:"1,keyasint"`
	Direction uint8  `cbor:"2,keyasint"`
	Payload   []byte `cbor:"3,keyasint"`
}

var encMode = func() cbor.EncMode {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Errorf("could not create cbor encoding mode: %w", err))
	}
	return em
}()

// WriteRPCEnvelope frames the method, direction, and payload of the given
// message onto the writer. The Peer field is intentionally not encoded.
func WriteRPCEnvelope(w io.Writer, msg RPCMessage) error {
	env := rpcEnvelope{
		Method:    []byte(msg.Method),
		Direction: uint8(msg.Direction),
		Payload:   msg.Payload,
	}
	if err := encMode.NewEncoder(w).Encode(env); err != nil {
		return fmt.Errorf("could not encode rpc envelope: %w", err)
	}
	return nil
}

// ReadRPCEnvelope reads a single envelope from the reader, consuming at most
// maxSize bytes, and returns the decoded message with the Peer field left
// empty for the caller to fill in.
func ReadRPCEnvelope(r io.Reader, maxSize int64) (RPCMessage, error) {
	var env rpcEnvelope
	if err := cbor.NewDecoder(io.LimitReader(r, maxSize)).Decode(&env); err != nil {
		return RPCMessage{}, fmt.Errorf("could not decode rpc envelope: %w", err)
	}

	dir := Direction(env.Direction)
	if !dir.Valid() {
		return RPCMessage{}, NewUnknownDirectionErr(env.Direction)
	}

	return RPCMessage{
		Method:    string(env.Method),
		Direction: dir,
		Payload:   env.Payload,
	}, nil
}
