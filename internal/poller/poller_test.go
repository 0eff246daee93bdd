package poller

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DoxrGitHub/freegs/internal/reconcile"
)

// fakeEngine counts cycles and can block inside Reconcile.
type fakeEngine struct {
	calls atomic.Int32
	block chan struct{} // closed to release a blocked cycle; nil means no blocking
}

func (f *fakeEngine) Reconcile(context.Context) reconcile.Report {
	f.calls.Add(1)
	if f.block != nil {
		<-f.block
	}
	return reconcile.Report{}
}

func waitForCalls(t *testing.T, engine *fakeEngine, want int32) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for engine.calls.Load() < want {
		if time.Now().After(deadline) {
			t.Fatalf("engine calls = %d, want at least %d", engine.calls.Load(), want)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestTriggerNowRunsImmediately(t *testing.T) {
	engine := &fakeEngine{}
	p := New(engine, 60)
	p.initialDelay = time.Hour // keep the scheduled first run out of the way

	go p.Start(context.Background())
	defer p.Stop()

	p.TriggerNow()
	waitForCalls(t, engine, 1)
}

func TestTriggerNowCoalesces(t *testing.T) {
	engine := &fakeEngine{block: make(chan struct{})}
	p := New(engine, 60)
	p.initialDelay = time.Hour

	go p.Start(context.Background())
	defer p.Stop()

	// First trigger starts a cycle that blocks inside the engine.
	p.TriggerNow()
	waitForCalls(t, engine, 1)

	// Triggers while busy collapse into at most one pending run.
	for range 5 {
		p.TriggerNow()
	}
	// Closing releases the blocked cycle; later cycles pass straight through.
	close(engine.block)

	waitForCalls(t, engine, 2)
	time.Sleep(50 * time.Millisecond)
	if got := engine.calls.Load(); got != 2 {
		t.Fatalf("engine calls = %d, want 2 (1 in-flight + 1 coalesced)", got)
	}
}

func TestInitialDelayedRun(t *testing.T) {
	engine := &fakeEngine{}
	p := New(engine, 60)
	p.initialDelay = 10 * time.Millisecond

	go p.Start(context.Background())
	defer p.Stop()

	waitForCalls(t, engine, 1)
}

func TestStopBeforeFirstRun(t *testing.T) {
	engine := &fakeEngine{}
	p := New(engine, 60)
	p.initialDelay = time.Hour

	done := make(chan struct{})
	go func() {
		p.Start(context.Background())
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	p.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after Stop")
	}
	if got := engine.calls.Load(); got != 0 {
		t.Errorf("engine calls = %d, want 0", got)
	}
}

func TestContextCancelStopsLoop(t *testing.T) {
	engine := &fakeEngine{}
	p := New(engine, 60)
	p.initialDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after context cancellation")
	}
}
