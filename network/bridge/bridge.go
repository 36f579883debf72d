// Package bridge implements the delivery boundary between the peer-to-peer
// engine and the embedding application: the Bridge marshals application
// commands into the engine, and the Dispatcher routes engine events into
// application-registered handlers.
package bridge

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"

	"github.com/mothra-net/mothra-go/module/irrecoverable"
	"github.com/mothra-net/mothra-go/module/util"
	"github.com/mothra-net/mothra-go/network"
	"github.com/mothra-net/mothra-go/network/message"
	"github.com/mothra-net/mothra-go/network/p2p"
	"github.com/mothra-net/mothra-go/network/p2p/conf"
)

// EngineFactory builds the engine that Start will run, wired to deliver its
// inbound events to the given sink.
type EngineFactory func(log zerolog.Logger, cfg *conf.Config, sink network.EventSink) (network.Engine, error)

// runningEngine pairs a started engine with the context governing its
// lifetime, so outbound commands issued after startup inherit the run
// context's cancellation.
type runningEngine struct {
	ctx    context.Context
	engine network.Engine
}

// Bridge owns the engine lifecycle and provides the only sanctioned entry
// points for outbound interaction. A Bridge supports a single
// Initialize/Start cycle.
//
// Start blocks its calling goroutine for the lifetime of the engine, so the
// caller must issue it from a dedicated goroutine, leaving the primary one
// free to register handlers and issue outbound commands.
//
// Outbound commands issued from a single goroutine are handed to the engine
// in call order; no ordering holds across goroutines.
type Bridge struct {
	log      zerolog.Logger
	registry *Registry
	sink     *Dispatcher
	factory  EngineFactory

	initialized *atomic.Bool
	starting    *atomic.Bool
	running     atomic.Pointer[runningEngine]
}

// Option can override a Bridge attribute at construction time.
type Option func(*Bridge)

// WithEngineFactory overrides the default libp2p engine factory. It is mostly
// used for testing against an in-memory engine.
func WithEngineFactory(factory EngineFactory) Option {
	return func(b *Bridge) {
		b.factory = factory
	}
}

// New returns a Bridge that, once initialized and started, runs a libp2p
// engine configured from the startup arguments.
func New(log zerolog.Logger, opts ...Option) *Bridge {
	b := &Bridge{
		log:         log.With().Str("component", "bridge").Logger(),
		initialized: atomic.NewBool(false),
		starting:    atomic.NewBool(false),
	}
	b.registry = NewRegistry()
	b.sink = NewDispatcher(b.log, b.registry)
	b.factory = func(log zerolog.Logger, cfg *conf.Config, sink network.EventSink) (network.Engine, error) {
		return p2p.NewEngine(log, cfg, sink)
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Initialize prepares the bridge for a single Start. Calling it twice is a
// caller contract violation and returns an ErrInvalidState.
func (b *Bridge) Initialize() error {
	if !b.initialized.CompareAndSwap(false, true) {
		return network.NewInvalidStateErr("bridge is already initialized")
	}
	return nil
}

// Start launches the engine using args as process-style configuration tokens,
// the first being a program-identity token, and blocks until the engine
// terminates or fatally errors.
//
// Cancelling ctx is the only way to stop delivery; it shuts the engine down
// gracefully and Start returns nil. Boot-time failures (malformed arguments,
// port binding) are returned as ErrStartup and do not consume the bridge's
// start cycle: after an ErrStartup the caller may invoke Start again with
// corrected arguments. Once the engine has reached ready, the cycle is spent
// and any further Start returns an ErrInvalidState. A fatal engine error
// after startup is returned as-is.
func (b *Bridge) Start(ctx context.Context, args []string) error {
	if !b.initialized.Load() {
		return network.NewInvalidStateErr("bridge must be initialized before start")
	}
	if !b.starting.CompareAndSwap(false, true) {
		return network.NewInvalidStateErr("bridge is already started")
	}

	cfg, err := conf.ParseArgs(args)
	if err != nil {
		b.starting.Store(false)
		return network.NewStartupErr(err)
	}

	engine, err := b.factory(b.log, cfg, b.sink)
	if err != nil {
		b.starting.Store(false)
		return network.NewStartupErr(err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	signalerCtx, errChan := irrecoverable.WithSignaler(runCtx)

	engine.Start(signalerCtx)

	// the engine's setup phase ends when it signals ready; only then do
	// outbound commands start being accepted
	select {
	case err := <-errChan:
		cancel()
		<-engine.Done()
		b.starting.Store(false)
		return network.NewStartupErr(err)
	case <-engine.Ready():
	}

	b.running.Store(&runningEngine{ctx: runCtx, engine: engine})
	defer b.running.Store(nil)

	b.log.Info().Msg("engine started")

	if err := util.WaitError(errChan, engine.Done()); err != nil {
		return err
	}
	return nil
}

// PublishGossip marshals and forwards a publish command to the engine. It
// returns once the engine accepts the command; no acknowledgement of network
// delivery is given. Returns an ErrNotStarted before Start has completed its
// setup phase.
func (b *Bridge) PublishGossip(topic []byte, payload []byte) error {
	run := b.running.Load()
	if run == nil {
		return network.NewNotStartedErr("publish gossip")
	}
	return run.engine.PublishGossip(run.ctx, message.GossipMessage{
		Topic:   string(topic),
		Payload: copyBytes(payload),
	})
}

// SendRPC marshals and forwards an RPC send for the named peer to the engine.
// Returns an ErrNotStarted before Start has completed its setup phase, or an
// ErrUnknownPeer when the engine rejects the peer identifier.
func (b *Bridge) SendRPC(method []byte, direction message.Direction, peer []byte, payload []byte) error {
	run := b.running.Load()
	if run == nil {
		return network.NewNotStartedErr("send rpc")
	}
	return run.engine.SendRPC(run.ctx, message.RPCMessage{
		Method:    string(method),
		Direction: direction,
		Peer:      string(peer),
		Payload:   copyBytes(payload),
	})
}

// RegisterGossipHandler installs or replaces the handler invoked for inbound
// gossip messages. Registration is safe concurrently with event delivery.
func (b *Bridge) RegisterGossipHandler(h network.GossipHandler) {
	b.registry.SetGossipHandler(h)
}

// RegisterRPCHandler installs or replaces the handler invoked for inbound RPC
// messages.
func (b *Bridge) RegisterRPCHandler(h network.RPCHandler) {
	b.registry.SetRPCHandler(h)
}

// RegisterDiscoveryHandler installs or replaces the handler invoked for peer
// discovery notifications.
func (b *Bridge) RegisterDiscoveryHandler(h network.DiscoveryHandler) {
	b.registry.SetDiscoveryHandler(h)
}

// copyBytes detaches the payload from the caller's buffer; values crossing
// the boundary are owned copies on each side.
func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
