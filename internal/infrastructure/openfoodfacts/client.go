package openfoodfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/labelsafe/backend/internal/domain"
)

const maxResponseBytes = 1 << 20 // 1 MiB, OFF product payloads are well below this

// Client handles communication with the Open Food Facts product API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	rateLimiter *rate.Limiter
	log         *zap.Logger
}

// NewClient creates a new Open Food Facts API client. OFF asks read
// clients to stay under 100 req/min for product queries.
func NewClient(baseURL, userAgent string, log *zap.Logger) *Client {
	limiter := rate.NewLimiter(rate.Limit(100.0/60.0), 10)
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:     baseURL,
		userAgent:   userAgent,
		rateLimiter: limiter,
		log:         log,
	}
}

// GetProduct fetches the product record for a barcode. A missing record
// maps to domain.ErrProductNotFound; transport and server failures map
// to domain.ErrLookupFailure after bounded retries.
func (c *Client) GetProduct(ctx context.Context, code string) (*domain.ProductRecord, error) {
	reqURL := fmt.Sprintf("%s/api/v2/product/%s.json", c.baseURL, url.PathEscape(code))

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			c.log.Warn("product request failed",
				zap.String("code", code), zap.Int("attempt", attempt), zap.Error(err))
			lastErr = err
			if sleepErr := sleepBackoff(ctx, attempt); sleepErr != nil {
				return nil, sleepErr
			}
			continue
		}

		body, readErr := readLimitedBody(resp.Body, maxResponseBytes)
		resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("%w: %v", domain.ErrLookupFailure, readErr)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, domain.ErrProductNotFound
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			c.log.Warn("product API error",
				zap.String("code", code), zap.Int("attempt", attempt), zap.Int("status", resp.StatusCode))
			lastErr = fmt.Errorf("%w: status %d", domain.ErrLookupFailure, resp.StatusCode)
			if sleepErr := sleepBackoff(ctx, attempt); sleepErr != nil {
				return nil, sleepErr
			}
			continue
		case resp.StatusCode != http.StatusOK:
			// 4xx other than 404/429 will not get better on retry.
			return nil, fmt.Errorf("%w: status %d", domain.ErrLookupFailure, resp.StatusCode)
		}

		var envelope productEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}

		if envelope.Status != 1 || envelope.Product == nil {
			return nil, domain.ErrProductNotFound
		}

		record := mapToProductRecord(code, envelope.Product)
		c.log.Debug("product fetched", zap.String("code", code), zap.String("name", record.Name))
		return record, nil
	}

	return nil, lastErr
}

// doRequest executes an HTTP GET request with proper headers.
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLookupFailure, err)
	}
	return resp, nil
}

// sleepBackoff waits out the retry delay, aborting early when the
// context is done.
func sleepBackoff(ctx context.Context, attempt int) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(exponentialBackoff(attempt)):
		return nil
	}
}

// exponentialBackoff returns the delay before the next retry attempt.
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(1<<(attempt-1)) * 500 * time.Millisecond
}

// readLimitedBody reads at most limit bytes of the response body.
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}
