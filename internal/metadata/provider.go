// SPDX-License-Identifier: MIT

package metadata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/sportarr/sportarr/internal/config"
	applog "github.com/sportarr/sportarr/internal/log"
)

// Provider failure kinds. ErrNotFound and ErrAuthFailure are permanent;
// ErrRateLimited and ErrTransient are retried.
var (
	ErrNotFound    = errors.New("metadata reference not found")
	ErrAuthFailure = errors.New("metadata provider authentication failed")
	ErrRateLimited = errors.New("metadata provider rate limited")
	ErrTransient   = errors.New("metadata provider transient failure")
)

// Provider fetches the raw metadata payload for a show reference.
type Provider interface {
	Fetch(ctx context.Context, showRef string) ([]byte, error)
}

// RetryPolicy controls fetch retries for retryable failures.
type RetryPolicy struct {
	MaxAttempts int
	BaseBackoff time.Duration
	Jitter      time.Duration
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.BaseBackoff <= 0 {
		p.BaseBackoff = 500 * time.Millisecond
	}
	if p.Jitter < 0 {
		p.Jitter = 0
	}
	return p
}

// backoff returns the wait before the given retry (attempt is 1-based and
// names the attempt that just failed). Exponential with optional jitter.
func (p RetryPolicy) backoff(attempt int) time.Duration {
	wait := p.BaseBackoff << (attempt - 1)
	if p.Jitter > 0 {
		wait += time.Duration(rand.Int63n(int64(p.Jitter)))
	}
	return wait
}

// HTTPProvider fetches metadata over HTTP with retries and client-side rate
// limiting.
type HTTPProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
	policy  RetryPolicy
	logger  zerolog.Logger
}

// NewHTTPProvider builds a provider from settings. A zero RequestsPerSec
// disables client-side rate limiting.
func NewHTTPProvider(settings config.ProviderSettings) *HTTPProvider {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if settings.RequestsPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(settings.RequestsPerSec), 1)
	}
	timeout := settings.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPProvider{
		baseURL: settings.BaseURL,
		apiKey:  settings.APIKey,
		client:  &http.Client{Timeout: timeout},
		limiter: limiter,
		policy: RetryPolicy{
			MaxAttempts: settings.MaxAttempts,
			BaseBackoff: settings.BaseBackoff,
			Jitter:      250 * time.Millisecond,
		}.normalized(),
		logger: applog.WithComponent("metadata.provider"),
	}
}

// Fetch retrieves the payload for showRef, retrying transient and
// rate-limited failures with exponential backoff.
func (p *HTTPProvider) Fetch(ctx context.Context, showRef string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= p.policy.MaxAttempts; attempt++ {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		payload, err := p.fetchOnce(ctx, showRef)
		if err == nil {
			return payload, nil
		}
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrAuthFailure) {
			return nil, err
		}
		lastErr = err

		if attempt == p.policy.MaxAttempts {
			break
		}
		wait := p.policy.backoff(attempt)
		p.logger.Warn().
			Str("event", "metadata.fetch.retry").
			Str("show_ref", showRef).
			Int("attempt", attempt).
			Dur("backoff", wait).
			Err(err).
			Msg("metadata fetch failed, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, fmt.Errorf("fetch %s after %d attempts: %w", showRef, p.policy.MaxAttempts, lastErr)
}

func (p *HTTPProvider) fetchOnce(ctx context.Context, showRef string) ([]byte, error) {
	endpoint, err := url.JoinPath(p.baseURL, "shows", url.PathEscape(showRef))
	if err != nil {
		return nil, fmt.Errorf("build metadata URL: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build metadata request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		payload, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
		if err != nil {
			return nil, fmt.Errorf("%w: read body: %v", ErrTransient, err)
		}
		return payload, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, showRef)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d", ErrAuthFailure, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: status 429", ErrRateLimited)
	default:
		return nil, fmt.Errorf("%w: status %d", ErrTransient, resp.StatusCode)
	}
}
