// Package reconcile delivers the current free offer to every subscribed
// guild that has not seen it yet.
package reconcile

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/DoxrGitHub/freegs/internal/epic"
	"github.com/DoxrGitHub/freegs/internal/storage"
)

// sendTimeout bounds a single delivery so one stuck destination cannot
// stall the rest of the cycle.
const sendTimeout = 15 * time.Second

// OfferSource yields the offer currently promoted upstream.
type OfferSource interface {
	CurrentOffer(ctx context.Context) (*epic.Offer, error)
}

// SubscriberStore persists guild subscriptions and delivery markers.
type SubscriberStore interface {
	ListAll(ctx context.Context) ([]*storage.Server, error)
	UpdateMarker(ctx context.Context, guildID, offerKey string) error
}

// DeliveryChannel sends a rendered notification to one guild.
type DeliveryChannel interface {
	Send(ctx context.Context, server *storage.Server, offer *epic.Offer) error
}

// Report summarizes one reconciliation cycle
type Report struct {
	Attempted int
	Succeeded int
	Failed    int
}

// Engine compares the current offer against every guild's delivery
// marker and notifies the guilds whose marker differs
type Engine struct {
	source  OfferSource
	store   SubscriberStore
	channel DeliveryChannel

	// mu makes Reconcile single-flight: a delivery followed by its
	// marker write must never race a second pass over the same rows.
	mu sync.Mutex
}

// New creates a reconciliation engine
func New(source OfferSource, store SubscriberStore, channel DeliveryChannel) *Engine {
	return &Engine{
		source:  source,
		store:   store,
		channel: channel,
	}
}

// Reconcile runs one cycle. Concurrent callers serialize; each gets its
// own full pass. Failures are isolated per guild and reported, never
// returned as an error.
func (e *Engine) Reconcile(ctx context.Context) Report {
	e.mu.Lock()
	defer e.mu.Unlock()

	var report Report

	offer, err := e.source.CurrentOffer(ctx)
	if err != nil {
		slog.Warn("Could not determine current offer, skipping cycle", "error", err)
		return report
	}
	if offer == nil {
		slog.Debug("No free offer right now")
		return report
	}

	servers, err := e.store.ListAll(ctx)
	if err != nil {
		slog.Error("Failed to list subscribed guilds", "error", err)
		return report
	}

	for _, server := range servers {
		select {
		case <-ctx.Done():
			slog.Info("Reconciliation cancelled", "error", ctx.Err())
			return report
		default:
		}

		if server.LastOfferKey.Valid && server.LastOfferKey.String == offer.Identity {
			continue
		}

		report.Attempted++
		if err := e.deliver(ctx, server, offer); err != nil {
			report.Failed++
			slog.Error("Delivery failed", "guild", server.GuildID, "offer", offer.Identity, "error", err)
			continue
		}
		report.Succeeded++
		slog.Info("Delivered offer", "guild", server.GuildID, "offer", offer.Identity, "title", offer.Title)
	}

	if report.Attempted > 0 {
		slog.Info("Reconciliation cycle finished",
			"offer", offer.Identity,
			"attempted", report.Attempted,
			"succeeded", report.Succeeded,
			"failed", report.Failed)
	}

	return report
}

// deliver sends the offer to one guild and advances its marker. The
// marker is written only after the send succeeded, so a failed guild is
// retried on the next cycle.
func (e *Engine) deliver(ctx context.Context, server *storage.Server, offer *epic.Offer) error {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if err := e.channel.Send(sendCtx, server, offer); err != nil {
		return err
	}

	// The send happened; a shutdown mid-write would leave the guild
	// eligible for a duplicate, so the marker write ignores cancellation.
	return e.store.UpdateMarker(context.WithoutCancel(ctx), server.GuildID, offer.Identity)
}
