package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

const userAgent = "OncoPurpose/1.0"

// guard is the shared admission wrapper for outbound provider calls.  It
// enforces, in order: the per-provider concurrency bound, request pacing, the
// circuit breaker, and the per-request timeout.  Acquisition blocks until the
// caller's context deadline.
type guard struct {
	sem     *semaphore.Weighted
	pace    *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	timeout time.Duration
}

func newGuard(name string, maxConcurrent int, perSecond float64, timeout time.Duration) *guard {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	var pace *rate.Limiter
	if perSecond > 0 {
		pace = rate.NewLimiter(rate.Limit(perSecond), maxConcurrent)
	}
	return &guard{
		sem:  semaphore.NewWeighted(int64(maxConcurrent)),
		pace: pace,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 3,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
		timeout: timeout,
	}
}

// do runs fn under the guard.  The context passed to fn carries the
// per-request timeout in addition to any caller deadline.
func (g *guard) do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer g.sem.Release(1)

	if g.pace != nil {
		if err := g.pace.Wait(ctx); err != nil {
			return err
		}
	}

	_, err := g.breaker.Execute(func() (interface{}, error) {
		reqCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()
		return nil, fn(reqCtx)
	})
	return err
}

// getJSON issues a GET request and decodes the JSON body into out.  Non-2xx
// statuses are returned as errors carrying the status code.
func getJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
