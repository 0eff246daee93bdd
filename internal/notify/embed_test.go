package notify

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/DoxrGitHub/freegs/internal/epic"
)

func TestEmbed(t *testing.T) {
	end := time.Date(2025, 6, 19, 15, 0, 0, 0, time.UTC)
	offer := &epic.Offer{
		Identity:     "ns1:id1",
		Title:        "Free Game",
		Description:  "A great free game",
		WindowEnd:    end,
		PurchaseLink: "https://store.epicgames.com/purchase?offers=1-ns1-id1",
		InfoLink:     "https://store.epicgames.com/en-US/p/free-game",
		ImageURL:     "https://cdn.example/wide.jpg",
	}

	embed := Embed(offer)

	if embed.Title != "Free Game" {
		t.Errorf("Title = %q", embed.Title)
	}
	if embed.Description != "A great free game" {
		t.Errorf("Description = %q", embed.Description)
	}
	if len(embed.Fields) != 2 {
		t.Fatalf("Fields = %d, want 2", len(embed.Fields))
	}

	wantExpiry := fmt.Sprintf("<t:%d:R>", end.Unix())
	if embed.Fields[0].Value != wantExpiry {
		t.Errorf("expiry field = %q, want %q", embed.Fields[0].Value, wantExpiry)
	}
	if !strings.Contains(embed.Fields[1].Value, offer.InfoLink) {
		t.Errorf("links field %q is missing the store page", embed.Fields[1].Value)
	}
	if !strings.Contains(embed.Fields[1].Value, offer.PurchaseLink) {
		t.Errorf("links field %q is missing the purchase link", embed.Fields[1].Value)
	}
	if embed.Image == nil || embed.Image.URL != offer.ImageURL {
		t.Errorf("Image = %+v, want %q", embed.Image, offer.ImageURL)
	}
}

func TestEmbedFallbacks(t *testing.T) {
	offer := &epic.Offer{
		Identity:     "ns1:id1",
		Title:        "Free Game",
		WindowEnd:    time.Now().UTC(),
		PurchaseLink: "https://store.epicgames.com/purchase",
	}

	embed := Embed(offer)

	if embed.Description != "No description available" {
		t.Errorf("Description = %q, want fallback text", embed.Description)
	}
	if !strings.Contains(embed.Fields[1].Value, "https://store.epicgames.com") {
		t.Errorf("links field %q should fall back to the store root", embed.Fields[1].Value)
	}
	if embed.Image != nil {
		t.Errorf("Image = %+v, want nil without an image URL", embed.Image)
	}
}

func TestMention(t *testing.T) {
	if got := Mention(""); got != "@everyone" {
		t.Errorf("Mention(\"\") = %q", got)
	}
	if got := Mention("12345"); got != "<@&12345>" {
		t.Errorf("Mention(12345) = %q", got)
	}
}
