package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/labelproof/artcheck/internal/domain"
)

const (
	maxAttempts      = 3
	maxErrorBodySize = 4 << 10
	maxResponseSize  = 64 << 20
)

// ClientConfig configures the extraction service client.
type ClientConfig struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Client talks to a remote document text-extraction service.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
	backoff     func(attempt int) time.Duration
	logger      *zap.Logger
}

// NewClient creates a new extraction service client
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 5
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		rateLimiter: rate.NewLimiter(rate.Limit(rps), burst),
		backoff:     exponentialBackoff,
		logger:      logger.With(zap.String("component", "extraction")),
	}
}

// exponentialBackoff returns the wait before retrying after the given attempt.
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// readLimitedBody reads at most limit bytes of body.
func readLimitedBody(body io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, limit))
}

// Extract uploads the artwork and maps the service response into an
// extraction. Transport failures and rejected requests are errors; a document
// without text comes back as a FAILED extraction.
func (c *Client) Extract(ctx context.Context, name string, content []byte) (*domain.ArtworkExtraction, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: empty artwork %q", domain.ErrInvalidRequest, name)
	}

	payload, contentType, err := buildMultipart(name, content)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	endpoint := c.baseURL + "/v1/extract"

	c.logger.Debug("extracting artwork", zap.String("artwork", name), zap.Int("bytes", len(content)))

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		resp, err := c.doRequest(ctx, endpoint, payload, contentType)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrExtractionService, ctx.Err())
			}
			c.logger.Warn("extraction request failed", zap.Int("attempt", attempt), zap.Error(err))
			lastErr = err
			if err := c.wait(ctx, attempt); err != nil {
				return nil, err
			}
			continue
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := readLimitedBody(resp.Body, maxErrorBodySize)
			resp.Body.Close()
			c.logger.Warn("extraction service error",
				zap.Int("attempt", attempt),
				zap.Int("status", resp.StatusCode),
				zap.String("body", string(body)))

			switch {
			case resp.StatusCode == http.StatusUnsupportedMediaType:
				return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, name)
			case resp.StatusCode == http.StatusTooManyRequests:
				lastErr = fmt.Errorf("%w: %w", domain.ErrExtractionService, domain.ErrRateLimited)
			case resp.StatusCode >= 500:
				lastErr = fmt.Errorf("%w: status %d", domain.ErrExtractionService, resp.StatusCode)
			default:
				return nil, fmt.Errorf("%w: status %d, body: %s", domain.ErrExtractionService, resp.StatusCode, string(body))
			}
			if err := c.wait(ctx, attempt); err != nil {
				return nil, err
			}
			continue
		}

		var dto ExtractResponse
		err = json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&dto)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}

		extraction := MapToExtraction(name, &dto)
		c.logger.Info("artwork extracted",
			zap.String("artwork", name),
			zap.Stringer("method", extraction.Summary.Method),
			zap.Int("fragments", len(extraction.Fragments)),
			zap.Int("warnings", len(extraction.Warnings)))
		return extraction, nil
	}

	c.logger.Error("all extraction attempts failed", zap.String("artwork", name), zap.Error(lastErr))
	return nil, lastErr
}

// doRequest executes one upload with the proper headers.
func (c *Client) doRequest(ctx context.Context, endpoint string, payload []byte, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "artcheck/1.0")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractionService, err)
	}
	return resp, nil
}

// wait sleeps for the backoff unless this was the last attempt or ctx ends.
func (c *Client) wait(ctx context.Context, attempt int) error {
	if attempt >= maxAttempts {
		return nil
	}
	timer := time.NewTimer(c.backoff(attempt))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", domain.ErrExtractionService, ctx.Err())
	case <-timer.C:
		return nil
	}
}

func buildMultipart(name string, content []byte) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filepath.Base(name))
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(content); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
