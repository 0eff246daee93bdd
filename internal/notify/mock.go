package notify

import (
	"context"
	"sync"

	"github.com/DoxrGitHub/freegs/internal/epic"
	"github.com/DoxrGitHub/freegs/internal/storage"
)

// Mock is a delivery channel for tests: it records every send and can
// be told to fail for specific guilds.
type Mock struct {
	mu      sync.Mutex
	sent    []MockSend
	failFor map[string]error
}

// MockSend records one delivered notification
type MockSend struct {
	GuildID   string
	ChannelID string
	OfferKey  string
}

// NewMock creates a mock delivery channel
func NewMock() *Mock {
	return &Mock{failFor: make(map[string]error)}
}

// FailFor makes sends to the given guild return err; nil clears the failure
func (m *Mock) FailFor(guildID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failFor[guildID] = err
}

// Send records the delivery, or fails if the guild is marked failing
func (m *Mock) Send(_ context.Context, server *storage.Server, offer *epic.Offer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failFor[server.GuildID]; err != nil {
		return err
	}

	m.sent = append(m.sent, MockSend{
		GuildID:   server.GuildID,
		ChannelID: server.ChannelID,
		OfferKey:  offer.Identity,
	})
	return nil
}

// Sent returns a copy of all recorded sends
func (m *Mock) Sent() []MockSend {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockSend, len(m.sent))
	copy(out, m.sent)
	return out
}
