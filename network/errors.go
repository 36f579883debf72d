package network

import (
	"errors"
	"fmt"
)

// ErrNotStarted indicates that an outbound operation was issued before the
// engine completed its startup phase.
type ErrNotStarted struct {
	op string
}

func (e ErrNotStarted) Error() string {
	return fmt.Sprintf("cannot %s: engine has not been started", e.op)
}

// NewNotStartedErr returns a new ErrNotStarted for the given operation.
func NewNotStartedErr(op string) ErrNotStarted {
	return ErrNotStarted{op: op}
}

// IsErrNotStarted returns whether an error is ErrNotStarted.
func IsErrNotStarted(err error) bool {
	var e ErrNotStarted
	return errors.As(err, &e)
}

// ErrInvalidState indicates a lifecycle contract violation by the caller,
// e.g. initializing twice or starting before initializing.
type ErrInvalidState struct {
	reason string
}

func (e ErrInvalidState) Error() string {
	return fmt.Sprintf("invalid lifecycle state: %s", e.reason)
}

// NewInvalidStateErr returns a new ErrInvalidState.
func NewInvalidStateErr(reason string) ErrInvalidState {
	return ErrInvalidState{reason: reason}
}

// IsErrInvalidState returns whether an error is ErrInvalidState.
func IsErrInvalidState(err error) bool {
	var e ErrInvalidState
	return errors.As(err, &e)
}

// ErrUnknownPeer indicates an outbound RPC addressed to a peer identifier the
// engine cannot resolve.
type ErrUnknownPeer struct {
	peer string
	err  error
}

func (e ErrUnknownPeer) Error() string {
	return fmt.Sprintf("unknown peer %s: %s", e.peer, e.err)
}

func (e ErrUnknownPeer) Unwrap() error {
	return e.err
}

// NewUnknownPeerErr returns a new ErrUnknownPeer wrapping the engine-supplied
// resolution failure.
func NewUnknownPeerErr(peer string, err error) ErrUnknownPeer {
	return ErrUnknownPeer{peer: peer, err: err}
}

// IsErrUnknownPeer returns whether an error is ErrUnknownPeer.
func IsErrUnknownPeer(err error) bool {
	var e ErrUnknownPeer
	return errors.As(err, &e)
}

// ErrStartup indicates that the engine failed to come up: malformed startup
// arguments, port binding failure, or any other boot-time precondition.
// It is fatal to the execution context running Start.
type ErrStartup struct {
	err error
}

func (e ErrStartup) Error() string {
	return fmt.Sprintf("engine startup failed: %s", e.err)
}

func (e ErrStartup) Unwrap() error {
	return e.err
}

// NewStartupErr returns a new ErrStartup wrapping the engine-supplied
// diagnostic.
func NewStartupErr(err error) ErrStartup {
	return ErrStartup{err: err}
}

// IsErrStartup returns whether an error is ErrStartup.
func IsErrStartup(err error) bool {
	var e ErrStartup
	return errors.As(err, &e)
}
