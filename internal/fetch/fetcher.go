package fetch

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"net/url"
	"time"
)

// Fetcher issues rate-limited, retried page fetches through a PageFetcher.
type Fetcher struct {
	client      PageFetcher
	limiter     *HostLimiter
	backoffBase time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
	jitter      func() float64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithBackoffBase sets the base delay for exponential backoff.
func WithBackoffBase(d time.Duration) Option {
	return func(f *Fetcher) { f.backoffBase = d }
}

// WithSleep replaces the backoff sleep function, for deterministic tests.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(f *Fetcher) { f.sleep = fn }
}

// NewFetcher creates a Fetcher over the given page-fetch capability.
func NewFetcher(client PageFetcher, limiter *HostLimiter, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:      client,
		limiter:     limiter,
		backoffBase: 2 * time.Second,
		sleep:       sleepCtx,
		jitter:      rand.Float64,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves pageURL, retrying transient failures with exponential
// backoff and jitter up to attemptBudget tries. Permanent failures return
// immediately. The returned error is always a *Error when non-nil and not a
// context error.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string, attemptBudget int) (*Result, error) {
	if attemptBudget < 1 {
		attemptBudget = 1
	}

	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Host == "" || parsed.Scheme == "" {
		return nil, permanentError(pageURL, errors.New("malformed URL"))
	}

	var lastErr *Error
	for attempt := 0; attempt < attemptBudget; attempt++ {
		if attempt > 0 {
			delay := f.backoffDelay(attempt)
			slog.Debug("retrying fetch", "url", pageURL, "attempt", attempt+1, "delay", delay)
			if err := f.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		if f.limiter != nil {
			if err := f.limiter.Wait(ctx, parsed.Host); err != nil {
				return nil, err
			}
		}

		doc, err := f.client.FetchPage(ctx, pageURL)
		if err == nil {
			slog.Debug("fetched page", "url", pageURL, "retries", attempt)
			return &Result{Document: doc, Retries: attempt}, nil
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		var fe *Error
		if !errors.As(err, &fe) {
			fe = transportError(pageURL, err)
		}
		if fe.Kind == Permanent {
			return nil, fe
		}
		lastErr = fe
		slog.Warn("transient fetch failure", "url", pageURL, "attempt", attempt+1, "error", fe)
	}

	return nil, lastErr
}

// backoffDelay computes base * 2^(attempt-1) with up to 50% added jitter.
func (f *Fetcher) backoffDelay(attempt int) time.Duration {
	d := f.backoffBase << (attempt - 1)
	return d + time.Duration(f.jitter()*0.5*float64(d))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
