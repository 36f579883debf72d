package irrecoverable

import (
	"context"
	"log"
	"runtime"
	"sync"
)

// Signaler sends the error out.
type Signaler struct {
	errChan   chan error
	errThrown sync.Once
}

func NewSignaler() (*Signaler, <-chan error) {
	errChan := make(chan error, 1)
	signaler := &Signaler{errChan: errChan}
	return signaler, errChan
}

// Throw reports an irrecoverable error to whoever is listening on the error
// channel and terminates the calling goroutine. It is a narrow drop-in
// replacement for panic or log.Fatal anywhere a Signaler is connected.
// Only the first thrown error is delivered; subsequent calls still terminate
// their goroutine.
func (s *Signaler) Throw(err error) {
	defer runtime.Goexit()
	s.errThrown.Do(func() {
		s.errChan <- err
	})
}

// SignalerContext is a constrained drop-in replacement for context.Context
// that additionally carries a Signaler for irrecoverable errors.
type SignalerContext interface {
	context.Context
	Throw(err error) // delegates to the signaler
	sealed()         // private, to constrain construction to WithSignaler
}

type signalerCtx struct {
	context.Context
	*Signaler
}

func (sc signalerCtx) sealed() {}

// WithSignaler is the One True Way of getting a SignalerContext.
func WithSignaler(parent context.Context) (SignalerContext, <-chan error) {
	sig, errChan := NewSignaler()
	return &signalerCtx{parent, sig}, errChan
}

// Throw enables throwing an irrecoverable error from any context.Context that
// was built on a SignalerContext. If the context does not support throwing,
// there is nowhere to send the error and the process exits loudly.
func Throw(ctx context.Context, err error) {
	signalerAbleContext, ok := ctx.(SignalerContext)
	if ok {
		signalerAbleContext.Throw(err)
	}
	log.Fatalf("irrecoverable error signaler not found for context, please implement! Unhandled irrecoverable error: %v", err)
}
