package jwtx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// JWKSFetcher keeps a KeySet in sync with the identity provider's published
// JWKS. Keys rotate on the provider side, so the set is re-fetched on an
// interval rather than once at startup.
type JWKSFetcher struct {
	URL        string
	Keys       *KeySet
	HTTPClient *http.Client
	Interval   time.Duration
	Logger     *slog.Logger

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewJWKSFetcher creates a fetcher. If interval is 0 or negative it defaults
// to 15 minutes.
func NewJWKSFetcher(url string, keys *KeySet, interval time.Duration, logger *slog.Logger) *JWKSFetcher {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &JWKSFetcher{
		URL:        url,
		Keys:       keys,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Interval:   interval,
		Logger:     logger,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Refresh fetches the JWKS once and swaps it into the KeySet.
func (f *JWKSFetcher) Refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch jwks: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("jwks endpoint returned %d", resp.StatusCode)
	}

	var jwks JWKS
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&jwks); err != nil {
		return fmt.Errorf("failed to decode jwks: %w", err)
	}
	if len(jwks.Keys) == 0 {
		return fmt.Errorf("jwks from %s contains no keys", f.URL)
	}

	return f.Keys.ResetFromJWKS(jwks)
}

// Start refreshes in the background until Stop is called. A failed refresh
// keeps the previous keys.
func (f *JWKSFetcher) Start() {
	go f.run()
	f.Logger.Info("jwks fetcher started", "url", f.URL, "interval", f.Interval)
}

// Stop blocks until the background loop has exited.
func (f *JWKSFetcher) Stop() {
	close(f.stopCh)
	<-f.doneCh
	f.Logger.Info("jwks fetcher stopped")
}

func (f *JWKSFetcher) run() {
	defer close(f.doneCh)

	ticker := time.NewTicker(f.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := f.Refresh(ctx); err != nil {
				f.Logger.Error("jwks refresh failed", "error", err)
			} else {
				f.Logger.Debug("jwks refreshed", "keys", f.Keys.Len())
			}
			cancel()
		case <-f.stopCh:
			return
		}
	}
}
