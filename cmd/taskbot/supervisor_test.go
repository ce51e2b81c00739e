package main

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"tasklist/internal/api"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupervisor_FailureTriggersShutdown(t *testing.T) {
	sup := newSupervisor()
	sup.run("test", func() error { return errors.New("bind: address already in use") })

	select {
	case <-sup.ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("supervisor did not trigger shutdown")
	}
	assert.Equal(t, 1, sup.exitCode(0))
	assert.Equal(t, 1, sup.exitCode(1))
}

func TestSupervisor_CleanExit(t *testing.T) {
	sup := newSupervisor()
	done := make(chan struct{})
	sup.run("test", func() error {
		defer close(done)
		return nil
	})
	<-done

	assert.NoError(t, sup.ctx.Err())
	assert.Equal(t, 0, sup.exitCode(0))
}

func TestSupervisor_ErrorsAfterStopAreIgnored(t *testing.T) {
	sup := newSupervisor()
	sup.stop()

	done := make(chan struct{})
	sup.run("test", func() error {
		defer close(done)
		return errors.New("listener closed")
	})
	<-done

	assert.NoError(t, sup.ctx.Err())
	assert.Equal(t, 0, sup.exitCode(0))
}

// An HTTP server that cannot bind must end the process with a non-zero code
// instead of waiting for a signal.
func TestHTTPBindFailureExitsNonZero(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()

	server := api.New(nil)
	sup := newSupervisor()
	sup.run("[api] HTTP server", func() error {
		return server.Start(taken.Addr().String())
	})

	wait := gfshutdown.GracefulShutdown(sup.ctx, 5*time.Second, map[string]gfshutdown.Operation{
		"http-api": func(ctx context.Context) error {
			sup.stop()
			return nil
		},
	})

	select {
	case code := <-wait:
		assert.Equal(t, 1, sup.exitCode(code))
	case <-time.After(5 * time.Second):
		t.Fatal("process kept waiting after the HTTP server failed to start")
	}
}
