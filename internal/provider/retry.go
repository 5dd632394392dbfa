package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"time"
)

// maxAttempts bounds how many times a single fetch hits the wire.
const maxAttempts = 3

// doJSON performs one provider call end to end: request with retry on
// transient failures (network errors, 5xx, 429), status check, JSON decode
// into out. Any failure comes back as a *FetchError for the given
// provider/op pair.
func doJSON(ctx context.Context, client *http.Client, logger *slog.Logger, providerName, op string, buildReq func() (*http.Request, error), out any) error {
	resp, err := send(ctx, client, logger, buildReq)
	if err != nil {
		return fetchErr(providerName, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fetchErr(providerName, op, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fetchErr(providerName, op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// send issues the request, retrying transient failures with exponential
// backoff and jitter. The caller owns the returned body.
func send(ctx context.Context, client *http.Client, logger *slog.Logger, buildReq func() (*http.Request, error)) (*http.Response, error) {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			base := time.Duration(1<<(attempt-1)) * time.Second
			backoff := base + time.Duration(rand.Int63n(int64(base/2+1)))
			logger.Warn("provider retry", "attempt", attempt, "backoff", backoff, "err", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := buildReq()
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}

		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
			continue
		}

		return resp, nil
	}

	return nil, fmt.Errorf("giving up after %d attempts: %w", maxAttempts, lastErr)
}
