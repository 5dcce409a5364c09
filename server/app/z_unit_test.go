package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type stubComp struct {
	runErr   error
	block    chan struct{}
	shutdown atomic.Int32
}

func (s *stubComp) Run() error {
	if s.block != nil {
		<-s.block
	}
	return s.runErr
}

func (s *stubComp) Shutdown(ctx context.Context) error {
	if s.shutdown.Add(1) == 1 && s.block != nil {
		close(s.block)
	}
	return nil
}

func TestRunContextCancel(t *testing.T) {
	comp := &stubComp{block: make(chan struct{})}
	var closed atomic.Bool
	a := NewWith(comp, OnShutdown(func(ctx context.Context) error {
		closed.Store(true)
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.RunContext(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected err %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("app did not stop")
	}
	if comp.shutdown.Load() != 1 || !closed.Load() {
		t.Fatalf("shutdown not propagated: comp=%d hook=%v", comp.shutdown.Load(), closed.Load())
	}
}

func TestRunReturnsComponentError(t *testing.T) {
	boom := errors.New("listen: address in use")
	hookErr := errors.New("close failed")
	a := NewWith(&stubComp{runErr: boom}, OnShutdown(func(context.Context) error { return hookErr }))
	if err := a.Run(); !errors.Is(err, boom) {
		t.Fatalf("expected component error, got %v", err)
	}
}

func TestHookShutdownOnce(t *testing.T) {
	var n atomic.Int32
	h := OnShutdown(func(context.Context) error { n.Add(1); return nil })
	_ = h.Shutdown(context.Background())
	_ = h.Shutdown(context.Background())
	if n.Load() != 1 {
		t.Fatalf("expected 1 call, got %d", n.Load())
	}
	if err := h.Run(); err != nil {
		t.Fatal(err)
	}
}
