package main

import (
	"context"
	"log"
	"sync/atomic"
)

// supervisor turns the first front-end failure into a shutdown trigger and
// a non-zero exit code. Failures reported after stop are expected and
// ignored.
type supervisor struct {
	ctx      context.Context
	cancel   context.CancelFunc
	failed   atomic.Bool
	stopping atomic.Bool
}

func newSupervisor() *supervisor {
	ctx, cancel := context.WithCancel(context.Background())
	return &supervisor{ctx: ctx, cancel: cancel}
}

// run calls start in its own goroutine.
func (s *supervisor) run(name string, start func() error) {
	go func() {
		err := start()
		if err == nil || s.stopping.Load() {
			return
		}
		log.Printf("%s failed: %v", name, err)
		s.failed.Store(true)
		s.cancel()
	}()
}

func (s *supervisor) stop() {
	s.stopping.Store(true)
}

func (s *supervisor) exitCode(code int) int {
	if code == 0 && s.failed.Load() {
		return 1
	}
	return code
}
