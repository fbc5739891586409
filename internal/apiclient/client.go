package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"creativesync/internal/config"
	"creativesync/internal/logger"
	"creativesync/internal/models"
	"creativesync/internal/provider"
	"creativesync/internal/ratelimit"
)

// maxResponseSize bounds a single listing page body (8MB)
const maxResponseSize = 8 * 1024 * 1024

// HTTPClient implements Service over a provider's paginated listing API
type HTTPClient struct {
	cfg       config.ProviderConfig
	adapter   provider.Adapter
	validator *provider.Validator
	pacer     *ratelimit.Pacer
	logger    logger.Service
	client    *http.Client
	sleep     func(time.Duration)
}

// NewHTTPClient creates a provider API client. The pacer spaces page
// requests to the provider's rate limit.
func NewHTTPClient(
	cfg config.ProviderConfig,
	adapter provider.Adapter,
	validator *provider.Validator,
	loggerService logger.Service,
) Service {
	return &HTTPClient{
		cfg:       cfg,
		adapter:   adapter,
		validator: validator,
		pacer:     ratelimit.NewPacer(cfg.RequestsPerSec),
		logger:    loggerService,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		sleep: time.Sleep,
	}
}

func (c *HTTPClient) Source() string {
	return c.adapter.Source()
}

// Stats reports the client's effective configuration
func (c *HTTPClient) Stats() models.ClientStats {
	return models.ClientStats{
		BaseURL:        c.cfg.BaseURL,
		TimeoutSeconds: c.cfg.Timeout.Seconds(),
		MaxRetries:     c.cfg.MaxRetries,
		MaxPages:       c.cfg.MaxPages,
		RequestsPerSec: c.cfg.RequestsPerSec,
	}
}

// FetchAll walks pages from startPage, stopping on the first page with no
// valid records or on the configured page ceiling. A failure past the first
// page logs and returns the partial result instead of discarding fetched
// records.
func (c *HTTPClient) FetchAll(ctx context.Context, status string, startPage int) ([]*models.CreativeRecord, error) {
	if startPage < 1 {
		startPage = 1
	}

	var all []*models.CreativeRecord
	page := startPage

	for fetched := 0; fetched < c.cfg.MaxPages; fetched++ {
		if err := c.pacer.WaitNext(ctx); err != nil {
			return nil, err
		}

		records, err := c.FetchPage(ctx, page, status)
		if err != nil {
			if page > startPage {
				c.logger.LogError(ctx, logger.OpFetchAll, c.Source(),
					"Page fetch failed mid-run, returning partial results",
					err, models.LogSeverityMedium, map[string]interface{}{
						"failed_page":       page,
						"collected_records": len(all),
					})
				return all, nil
			}
			return nil, err
		}

		// A page yielding no valid records means the listing is exhausted
		if len(records) == 0 {
			break
		}

		all = append(all, records...)
		page++
	}

	c.logger.LogSuccess(ctx, logger.OpFetchAll, c.Source(), "Fetched all creative pages",
		map[string]interface{}{
			"pages_fetched": page - startPage,
			"record_count":  len(all),
		})

	return all, nil
}

// TestConnection fetches one sample page without touching storage
func (c *HTTPClient) TestConnection(ctx context.Context) (int, error) {
	records, err := c.FetchPage(ctx, c.cfg.StartPage, c.cfg.StatusFilter)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// FetchPage performs the bounded-retry page request, decodes the body and
// returns the records that survived validation
func (c *HTTPClient) FetchPage(ctx context.Context, page int, status string) ([]*models.CreativeRecord, error) {
	body, err := c.requestWithRetries(ctx, page, status)
	if err != nil {
		return nil, err
	}

	// Providers occasionally return an error object instead of the listing
	// array; treat any non-array body as an empty page
	var rawRecords []json.RawMessage
	if err := json.Unmarshal(body, &rawRecords); err != nil {
		c.logger.LogInfo(ctx, logger.OpFetchPage, "Non-array response body, treating as empty page",
			map[string]interface{}{"source": c.Source(), "page": page})
		return nil, nil
	}

	records := make([]*models.CreativeRecord, 0, len(rawRecords))
	dropped := 0
	for _, raw := range rawRecords {
		record, err := c.adapter.Decode(raw)
		if err != nil {
			dropped++
			continue
		}
		if !c.validator.IsValid(ctx, record, c.adapter.SupportedFormats()) {
			dropped++
			continue
		}
		records = append(records, record)
	}

	if dropped > 0 {
		c.logger.LogInfo(ctx, logger.OpFetchPage, "Dropped invalid records from page",
			map[string]interface{}{"source": c.Source(), "page": page, "dropped": dropped})
	}

	return records, nil
}

// requestWithRetries performs the page request with bounded retries.
// Transient failures (network errors, 5xx, 429) back off and retry; a 404
// fails immediately since a missing endpoint is a configuration error, not
// an outage.
func (c *HTTPClient) requestWithRetries(ctx context.Context, page int, status string) ([]byte, error) {
	url := fmt.Sprintf("%s/v1/ads/%d/%s", c.cfg.BaseURL, page, status)

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxRetries+1; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		body, retryIn, err := c.doRequest(ctx, url)
		if err == nil {
			return body, nil
		}
		if retryIn < 0 {
			return nil, err
		}
		lastErr = err

		if attempt <= c.cfg.MaxRetries {
			delay := retryIn
			if delay <= 0 {
				delay = c.cfg.RetryDelay * time.Duration(attempt)
			}
			c.sleep(delay)
		}
	}

	return nil, fmt.Errorf("%w after %d retries: %v", models.ErrRetriesExhausted, c.cfg.MaxRetries, lastErr)
}

// doRequest performs one HTTP attempt. The returned duration is a
// provider-supplied retry hint (from Retry-After); -1 marks a permanent
// failure that must not be retried.
func (c *HTTPClient) doRequest(ctx context.Context, url string) ([]byte, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, -1, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", "CreativeSync/1.0")
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("X-Api-Key", c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read response body: %w", err)
		}
		return body, 0, nil

	case resp.StatusCode == http.StatusNotFound:
		return nil, -1, fmt.Errorf("%w: HTTP 404 at %s", models.ErrEndpointNotFound, url)

	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, retryAfterHint(resp, c.cfg.RetryDelay), fmt.Errorf("rate limited: HTTP 429")

	case resp.StatusCode >= 500:
		return nil, 0, fmt.Errorf("server error: HTTP %d", resp.StatusCode)

	default:
		return nil, -1, fmt.Errorf("unexpected HTTP status %d at %s", resp.StatusCode, url)
	}
}

// retryAfterHint reads the Retry-After header, falling back to the
// configured delay when absent or unparseable
func retryAfterHint(resp *http.Response, fallback time.Duration) time.Duration {
	raw := resp.Header.Get("Retry-After")
	if raw == "" {
		return fallback
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}
