package kemono

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"

	"kemograb/pkg/config"
	errs "kemograb/pkg/errors"
	"kemograb/pkg/logger"
	"kemograb/pkg/ratelimit"
	"kemograb/pkg/retry"
)

// Client performs all HTTP traffic against the hosting site. Every call
// shares one underlying http.Client, one header set, one rate limiter and
// one retry policy, so the whole run behaves like a single polite session.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	limiter    ratelimit.Limiter
	maxRetries int
	baseDelay  time.Duration
	logger     logger.Logger
}

// NewClient creates a site client from HTTP configuration
func NewClient(cfg *config.HTTPConfig, limiter ratelimit.Limiter, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if limiter == nil {
		limiter = ratelimit.NewUnlimited()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		headers: map[string]string{
			"User-Agent":      cfg.UserAgent,
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
		},
		limiter:    limiter,
		maxRetries: cfg.MaxRetries,
		baseDelay:  cfg.RetryBaseDelay,
		logger:     log,
	}
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// doRequest performs a single GET attempt and maps failures to typed errors
func (c *Client) doRequest(ctx context.Context, url string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeUnknown, fmt.Sprintf("failed to create request: %v", err))
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"url":      url,
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errs.New(errs.ErrorTypeNetwork, fmt.Sprintf("network error: %v", err))
	}

	logger.LogRequest(http.MethodGet, url, resp.StatusCode, float64(duration.Milliseconds()))

	if err := c.checkResponseStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}

	return resp, nil
}

// checkResponseStatus maps non-2xx statuses to typed errors. Only the
// transient server statuses come back as retryable server errors.
func (c *Client) checkResponseStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code == http.StatusOK:
		return nil
	case errs.IsRetryableStatusCode(code):
		return errs.NewWithCode(errs.ErrorTypeServerError, fmt.Sprintf("server returned status %d", code), code)
	case code == http.StatusTooManyRequests:
		return errs.NewWithCode(errs.ErrorTypeRateLimit, "rate limit exceeded", code)
	case code == http.StatusNotFound:
		return errs.NewWithCode(errs.ErrorTypeNotFound, "resource not found", code)
	case code >= 400:
		return errs.NewWithCode(errs.ErrorTypeUnknown, fmt.Sprintf("unexpected status code: %d", code), code)
	default:
		return nil
	}
}

// Get performs a GET request with the client's retry policy: up to
// MaxRetries retries with exponential backoff, restricted to the
// transient server statuses. Connection errors are not retried here and
// propagate as network errors.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	return retry.DoWithResult(func() (*http.Response, error) {
		return c.doRequest(ctx, url)
	}, &retry.Config{
		MaxAttempts: c.maxRetries + 1,
		Backoff: &retry.ExponentialBackoff{
			BaseDelay:    c.baseDelay,
			MaxDelay:     60 * time.Second,
			Multiplier:   2.0,
			JitterFactor: 0.1,
		},
		RetryIf: retry.DefaultRetryIf,
		Context: ctx,
		Logger:  c.logger,
	})
}

// GetDocument fetches a page and parses it with goquery
func (c *Client) GetDocument(ctx context.Context, url string) (*goquery.Document, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errs.NewWithCode(errs.ErrorTypeParsing, fmt.Sprintf("failed to parse HTML: %v", err), resp.StatusCode)
	}

	return doc, nil
}

// DownloadFile fetches raw file content. A body read failure after a
// successful response is reported as a chunked transfer error.
func (c *Client) DownloadFile(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.ErrorWithFields("failed to read file data", map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		})
		return nil, errs.New(errs.ErrorTypeChunkedTransfer, fmt.Sprintf("failed to read response body: %v", err))
	}

	c.logger.DebugWithFields("file downloaded", map[string]interface{}{
		"url":  url,
		"size": len(data),
	})

	return data, nil
}
