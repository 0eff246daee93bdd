package epic

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry"
)

const (
	// Static free-games promotions endpoint of the Epic Games Store.
	FreeGamesURL = "https://store-site-backend-static-ipv4.ak.epicgames.com/freeGamesPromotions?locale=en-US&country=US&allowCountries=US"
)

// Client fetches the free-games promotion catalog
type Client struct {
	url        string
	httpClient *http.Client

	// now is swappable for tests
	now func() time.Time
}

// NewClient creates a new Epic Games Store catalog client
func NewClient() *Client {
	return &Client{
		url: FreeGamesURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		now: time.Now,
	}
}

// CurrentOffer returns the free offer active right now, or nil when the
// store promotes none. Transient fetch failures are retried with backoff;
// a persistent failure comes back as an error and callers must treat it
// the same as "no offer this cycle".
func (c *Client) CurrentOffer(ctx context.Context) (*Offer, error) {
	var payload catalogResponse

	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, http.NoBody)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("create request: %w", err))
			}

			// The static endpoint rejects clients that look too much
			// like scripts, so send browser-like headers.
			req.Header.Set("Accept", "application/json, text/plain, */*")
			req.Header.Set("Accept-Language", "en-US,en;q=0.9")
			req.Header.Set("Cache-Control", "no-cache")
			req.Header.Set("Pragma", "no-cache")
			req.Header.Set("Referer", "https://store.epicgames.com/en-US/")
			req.Header.Set("X-Requested-With", "XMLHttpRequest")

			resp, err := c.httpClient.Do(req)
			if err != nil {
				slog.Warn("Catalog request failed, will retry", "error", err)
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				slog.Warn("Catalog request returned non-OK status", "status", resp.StatusCode)
				return fmt.Errorf("HTTP %d", resp.StatusCode)
			}

			payload = catalogResponse{}
			if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
				// A malformed body will not get better on retry.
				return retry.Unrecoverable(fmt.Errorf("decode catalog: %w", err))
			}

			return nil
		},
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.MaxDelay(10*time.Second),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			slog.Info("Retrying catalog fetch", "attempt", n, "error", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("fetch free games catalog: %w", err)
	}

	elements := payload.Data.Catalog.SearchStore.Elements
	if len(elements) == 0 {
		return nil, fmt.Errorf("catalog payload has no elements")
	}

	return pickFreeOffer(elements, c.now()), nil
}
