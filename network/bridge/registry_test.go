package bridge_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mothra-net/mothra-go/network/bridge"
)

// TestRegistry_Empty verifies that a fresh registry reports no handler for
// any event kind.
func TestRegistry_Empty(t *testing.T) {
	r := bridge.NewRegistry()
	require.Nil(t, r.GossipHandler())
	require.Nil(t, r.RPCHandler())
	require.Nil(t, r.DiscoveryHandler())
}

// TestRegistry_LastWriteWins verifies that registering a handler replaces any
// prior one without error.
func TestRegistry_LastWriteWins(t *testing.T) {
	r := bridge.NewRegistry()

	first := 0
	second := 0
	r.SetGossipHandler(func(string, []byte) bool {
		first++
		return true
	})
	r.SetGossipHandler(func(string, []byte) bool {
		second++
		return true
	})

	r.GossipHandler()("topic", nil)
	require.Equal(t, 0, first)
	require.Equal(t, 1, second)
}

// TestRegistry_ConcurrentRegistration verifies that registration is safe
// concurrently with lookups from another goroutine: every lookup observes
// either no handler or a fully installed one.
func TestRegistry_ConcurrentRegistration(t *testing.T) {
	r := bridge.NewRegistry()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			r.SetDiscoveryHandler(func(string) bool { return true })
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			if h := r.DiscoveryHandler(); h != nil {
				require.True(t, h("peer"))
			}
		}
	}()

	wg.Wait()
}
