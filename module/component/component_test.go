package component_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mothra-net/mothra-go/module"
	"github.com/mothra-net/mothra-go/module/component"
	"github.com/mothra-net/mothra-go/module/irrecoverable"
)

func waitClosed(t *testing.T, ch <-chan struct{}, msg string) {
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal(msg)
	}
}

// TestComponentManager_ReadyDone verifies that Ready closes once all workers
// signal ready, and Done closes after cancellation once all workers return.
func TestComponentManager_ReadyDone(t *testing.T) {
	cm := component.NewComponentManagerBuilder().
		AddWorker(func(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
			ready()
			<-ctx.Done()
		}).
		AddWorker(func(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
			ready()
			<-ctx.Done()
		}).
		Build()

	ctx, cancel := context.WithCancel(context.Background())
	signalerCtx, _ := irrecoverable.WithSignaler(ctx)
	cm.Start(signalerCtx)

	waitClosed(t, cm.Ready(), "component did not become ready")

	cancel()
	waitClosed(t, cm.Done(), "component did not shut down")
}

// TestComponentManager_ThrowPropagates verifies that an irrecoverable error
// thrown by a worker reaches the parent signaler and shuts the component down.
func TestComponentManager_ThrowPropagates(t *testing.T) {
	boom := errors.New("worker failed")
	cm := component.NewComponentManagerBuilder().
		AddWorker(func(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
			ready()
			ctx.Throw(boom)
		}).
		Build()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	signalerCtx, errChan := irrecoverable.WithSignaler(ctx)
	cm.Start(signalerCtx)

	select {
	case err := <-errChan:
		require.ErrorIs(t, err, boom)
	case <-time.After(time.Second):
		t.Fatal("irrecoverable error was not propagated")
	}

	waitClosed(t, cm.Done(), "component did not shut down after throw")
}

// TestComponentManager_MultipleStart verifies that starting twice panics with
// ErrMultipleStartup.
func TestComponentManager_MultipleStart(t *testing.T) {
	cm := component.NewComponentManagerBuilder().
		AddWorker(func(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
			ready()
			<-ctx.Done()
		}).
		Build()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	signalerCtx, _ := irrecoverable.WithSignaler(ctx)
	cm.Start(signalerCtx)

	require.PanicsWithError(t, module.ErrMultipleStartup.Error(), func() {
		cm.Start(signalerCtx)
	})
}
