package bridge

import (
	"go.uber.org/atomic"

	"github.com/mothra-net/mothra-go/network"
)

// Registry holds the application's current handler for each inbound event
// kind. At most one handler per kind is active at a time; registration
// replaces any prior handler (last write wins).
//
// Registration happens on the application's goroutine while lookups happen on
// the engine's delivery goroutine, so each slot is an independently swappable
// atomic pointer. Lookups never block and never observe a partially written
// handler.
type Registry struct {
	gossip    atomic.Pointer[network.GossipHandler]
	rpc       atomic.Pointer[network.RPCHandler]
	discovery atomic.Pointer[network.DiscoveryHandler]
}

// NewRegistry returns a Registry with no handlers installed.
func NewRegistry() *Registry {
	return &Registry{}
}

// SetGossipHandler installs or replaces the gossip handler.
func (r *Registry) SetGossipHandler(h network.GossipHandler) {
	r.gossip.Store(&h)
}

// SetRPCHandler installs or replaces the RPC handler.
func (r *Registry) SetRPCHandler(h network.RPCHandler) {
	r.rpc.Store(&h)
}

// SetDiscoveryHandler installs or replaces the discovery handler.
func (r *Registry) SetDiscoveryHandler(h network.DiscoveryHandler) {
	r.discovery.Store(&h)
}

// GossipHandler returns the currently installed gossip handler, or nil when
// none has been registered yet.
func (r *Registry) GossipHandler() network.GossipHandler {
	if h := r.gossip.Load(); h != nil {
		return *h
	}
	return nil
}

// RPCHandler returns the currently installed RPC handler, or nil when none
// has been registered yet.
func (r *Registry) RPCHandler() network.RPCHandler {
	if h := r.rpc.Load(); h != nil {
		return *h
	}
	return nil
}

// DiscoveryHandler returns the currently installed discovery handler, or nil
// when none has been registered yet.
func (r *Registry) DiscoveryHandler() network.DiscoveryHandler {
	if h := r.discovery.Load(); h != nil {
		return *h
	}
	return nil
}
