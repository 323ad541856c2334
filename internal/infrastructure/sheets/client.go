package sheets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/taabalselect/storefront/internal/domain"
)

// maxFeedBytes bounds the size of a downloaded feed
const maxFeedBytes = 16 << 20

// ErrFeedTooLarge is the cause of a TransportError for an oversized feed
var ErrFeedTooLarge = errors.New("feed exceeds size limit")

// utf8BOM is stripped from the start of a payload
const utf8BOM = "\uFEFF"

// Client downloads the published spreadsheet export
type Client struct {
	httpClient  *http.Client
	feedURL     string
	rateLimiter *rate.Limiter
	logger      *zap.Logger
	debug       bool
	maxBytes    int
	now         func() time.Time
}

// NewClient creates a feed client. requestsPerMinute <= 0 disables limiting.
func NewClient(feedURL string, timeout time.Duration, requestsPerMinute int, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if requestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), requestsPerMinute)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		feedURL:     feedURL,
		rateLimiter: limiter,
		logger:      logger.Named("feed"),
		maxBytes:    maxFeedBytes,
		now:         time.Now,
	}
}

// SetDebug enables or disables per-request debug logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// Fetch downloads the feed text. Any failure is a *domain.TransportError;
// the request is not retried.
func (c *Client) Fetch(ctx context.Context) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", &domain.TransportError{URL: c.feedURL, Err: fmt.Errorf("rate limiter: %w", err)}
	}

	reqURL, err := c.cacheBustedURL()
	if err != nil {
		return "", &domain.TransportError{URL: c.feedURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", &domain.TransportError{URL: c.feedURL, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("User-Agent", "TaabalSelect-Storefront/1.0")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	if c.debug {
		c.logger.Debug("fetching feed", zap.String("url", reqURL))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("feed request failed", zap.String("url", c.feedURL), zap.Error(err))
		return "", &domain.TransportError{URL: c.feedURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		c.logger.Warn("feed returned error status",
			zap.String("url", c.feedURL),
			zap.Int("status", resp.StatusCode))
		return "", &domain.TransportError{StatusCode: resp.StatusCode, URL: c.feedURL}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, int64(c.maxBytes)+1))
	if err != nil {
		return "", &domain.TransportError{StatusCode: resp.StatusCode, URL: c.feedURL, Err: fmt.Errorf("failed to read body: %w", err)}
	}
	if len(body) > c.maxBytes {
		c.logger.Warn("feed exceeds size limit", zap.String("url", c.feedURL), zap.Int("limit", c.maxBytes))
		return "", &domain.TransportError{StatusCode: resp.StatusCode, URL: c.feedURL, Err: ErrFeedTooLarge}
	}

	if c.debug {
		c.logger.Debug("feed fetched", zap.Int("bytes", len(body)))
	}
	return strings.TrimPrefix(string(body), utf8BOM), nil
}

// cacheBustedURL appends a ts parameter so intermediaries cannot serve a
// stale export
func (c *Client) cacheBustedURL() (string, error) {
	u, err := url.Parse(c.feedURL)
	if err != nil {
		return "", fmt.Errorf("invalid feed url: %w", err)
	}
	q := u.Query()
	q.Set("ts", strconv.FormatInt(c.now().UnixMilli(), 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
