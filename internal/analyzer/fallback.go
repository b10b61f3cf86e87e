package analyzer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"docanalyzer/internal/port"
)

// circuitState tracks rate-limit backoff for a single provider.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackAnalyzer tries providers in order, skipping those with open circuits.
// It implements port.DocumentAnalyzer.
type FallbackAnalyzer struct {
	analyzers []port.DocumentAnalyzer
	circuits  []*circuitState
	names     []string
	now       func() time.Time
}

// NewFallbackAnalyzer creates a FallbackAnalyzer from an ordered list of providers and their names.
func NewFallbackAnalyzer(analyzers []port.DocumentAnalyzer, names []string) *FallbackAnalyzer {
	circuits := make([]*circuitState, len(analyzers))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &FallbackAnalyzer{
		analyzers: analyzers,
		circuits:  circuits,
		names:     names,
		now:       time.Now,
	}
}

func (f *FallbackAnalyzer) Analyze(ctx context.Context, input port.AnalyzeInput) (*port.AnalyzeOutput, error) {
	now := f.now()
	var lastErr error
	anyRateLimited := false
	var earliestReset time.Time

	for i, a := range f.analyzers {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			log.Debug().Msgf("analyzer.FallbackAnalyzer: skipping %s (circuit open until %s)", f.names[i], resetAt.Format(time.RFC3339))
			anyRateLimited = true
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		out, err := a.Analyze(ctx, input)
		if err == nil {
			return out, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		log.Warn().Err(err).Msgf("analyzer.FallbackAnalyzer: %s failed", f.names[i])
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			anyRateLimited = true
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		}
	}

	// Any throttled provider turns the failure into a retryable rate limit.
	if anyRateLimited {
		retryAfter := earliestReset.Sub(now)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		cause := lastErr
		if cause == nil {
			cause = errors.New("all providers rate limited")
		}
		return nil, NewRateLimitError("all", cause, int(retryAfter.Seconds()))
	}
	if lastErr == nil {
		return nil, errors.New("no analysis providers available")
	}

	return nil, fmt.Errorf("all providers failed: %w", lastErr)
}
