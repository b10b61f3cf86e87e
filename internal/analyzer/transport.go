package analyzer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultRetryBackoff = time.Second

// Request is a JSON POST to a provider API.
type Request struct {
	Endpoint string
	Headers  map[string]string
	Body     []byte
	// MaxRetries is how many extra attempts transport errors and 5xx answers get.
	MaxRetries int
	// Backoff is multiplied by the attempt number between tries. Zero means one second.
	Backoff time.Duration
}

// Response is the final answer of a provider API.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// PostJSON sends req, retrying transient failures. 429 is returned to the
// caller immediately so the fallback chain can open the provider's circuit.
func PostJSON(ctx context.Context, client *http.Client, req Request) (*Response, error) {
	backoff := req.Backoff
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}
	retries := req.MaxRetries
	if retries < 0 {
		retries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			log.Debug().Err(lastErr).Int("attempt", attempt+1).Str("endpoint", req.Endpoint).
				Msg("analyzer.PostJSON: retrying provider call")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * backoff):
			}
		}

		resp, err := post(ctx, client, req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}
		if resp.StatusCode >= http.StatusInternalServerError && attempt < retries {
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			continue
		}
		return resp, nil
	}
	return nil, lastErr
}

func post(ctx context.Context, client *http.Client, req Request) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.Endpoint, bytes.NewReader(req.Body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}
