package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/DoxrGitHub/freegs/internal/reconcile"
)

// Engine is the reconciliation pipeline the poller drives.
type Engine interface {
	Reconcile(ctx context.Context) reconcile.Report
}

// Poller runs reconciliation on a fixed interval and on demand
type Poller struct {
	engine       Engine
	interval     time.Duration
	initialDelay time.Duration

	// triggerChan has capacity 1: any number of manual triggers while a
	// cycle is in flight coalesce into a single pending run.
	triggerChan chan struct{}
	stopChan    chan struct{}
	wg          sync.WaitGroup
}

// New creates a new Poller
func New(engine Engine, intervalMinutes int) *Poller {
	return &Poller{
		engine:       engine,
		interval:     time.Duration(intervalMinutes) * time.Minute,
		initialDelay: 5 * time.Second,
		triggerChan:  make(chan struct{}, 1),
		stopChan:     make(chan struct{}),
	}
}

// Start begins the polling loop. The first cycle runs after a short
// delay so the Discord connection has settled.
func (p *Poller) Start(ctx context.Context) {
	slog.Info("Starting poller", "interval", p.interval)

	p.wg.Add(1)
	defer p.wg.Done()

	// Initial delayed run
	select {
	case <-ctx.Done():
		return
	case <-p.stopChan:
		return
	case <-time.After(p.initialDelay):
		p.engine.Reconcile(ctx)
	case <-p.triggerChan:
		p.engine.Reconcile(ctx)
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Poller stopped (context cancelled)")
			return
		case <-p.stopChan:
			slog.Info("Poller stopped")
			return
		case <-ticker.C:
			p.engine.Reconcile(ctx)
		case <-p.triggerChan:
			p.engine.Reconcile(ctx)
		}
	}
}

// TriggerNow requests an immediate reconciliation. Never blocks; a
// trigger arriving while one is already pending is dropped.
func (p *Poller) TriggerNow() {
	select {
	case p.triggerChan <- struct{}{}:
	default:
	}
}

// Stop signals the poller to stop and waits for the current cycle
func (p *Poller) Stop() {
	close(p.stopChan)
	p.wg.Wait()
}
