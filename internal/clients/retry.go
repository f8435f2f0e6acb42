// Package clients holds shared HTTP plumbing for the external API adapters.
package clients

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

const (
	defaultMaxRetries      = 3
	defaultInitialInterval = 500 * time.Millisecond
	defaultMaxInterval     = 10 * time.Second
)

// HTTPDoer is the subset of *http.Client the adapters need. Tests substitute
// a fake to exercise retry behavior without sleeping on real sockets.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RetryConfig controls DoWithRetry.
type RetryConfig struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryConfig returns the retry policy used by all adapters.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      defaultMaxRetries,
		InitialInterval: defaultInitialInterval,
		MaxInterval:     defaultMaxInterval,
	}
}

// DoWithRetry issues the request with exponential backoff. Rate limiting
// (429) and server errors (5xx) are retried; other non-2xx statuses fail
// immediately. On success the full body is returned and the response closed.
func DoWithRetry(ctx context.Context, client HTTPDoer, req *http.Request, cfg RetryConfig, log zerolog.Logger) ([]byte, error) {
	if cfg.MaxRetries == 0 {
		cfg = DefaultRetryConfig()
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = cfg.InitialInterval
	policy.MaxInterval = cfg.MaxInterval

	var body []byte
	attempt := 0
	operation := func() error {
		attempt++
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Str("url", req.URL.String()).Msg("Request failed")
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			body, err = io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("failed to read response body: %w", err)
			}
			return nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			log.Warn().Int("status", resp.StatusCode).Int("attempt", attempt).Str("url", req.URL.String()).Msg("Retryable API error")
			return fmt.Errorf("API returned status %d", resp.StatusCode)
		default:
			return backoff.Permanent(fmt.Errorf("API returned status %d", resp.StatusCode))
		}
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, cfg.MaxRetries), ctx))
	if err != nil {
		return nil, err
	}
	return body, nil
}
