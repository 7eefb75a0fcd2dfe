package animation

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// maxPayload bounds the size of a downloaded animation document.
const maxPayload = 4 << 20

// Fetcher downloads Lottie animation documents. Animations are decorative:
// every failure degrades to a nil result and is never reported as an error.
type Fetcher struct {
	client *http.Client
}

// Fetch downloads the JSON document at url. It returns nil on transport
// errors, on any status other than 200 and on invalid JSON.
func (f *Fetcher) Fetch(ctx context.Context, url string) json.RawMessage {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		slog.Debug("Animation request", "url", url, "error", err)
		return nil
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		slog.Debug("Animation fetch", "url", url, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Debug("Animation fetch", "url", url, "status", resp.StatusCode)
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayload))
	if err != nil {
		slog.Debug("Animation read", "url", url, "error", err)
		return nil
	}
	if !json.Valid(body) {
		slog.Debug("Animation is not JSON", "url", url)
		return nil
	}

	return json.RawMessage(body)
}

// NewFetcher creates a fetcher whose requests never outlive timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}
