package kilonova

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

const (
	DefaultURL   = "https://rcpc.kilonova.ro/api/submissions/get"
	DefaultLimit = 50

	maxTries       = 10
	maxElapsedTime = 60 * time.Second
	requestTimeout = 10 * time.Second
)

type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

type Config struct {
	BaseURL   string
	Limit     int
	ContestID int64
	ProblemID int64
	// RequestsPerSecond paces requests; zero disables pacing.
	RequestsPerSecond float64
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	newBackOff func() backoff.BackOff
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultURL
	}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: requestTimeout},
		limiter:    limiter,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.MaxElapsedTime = maxElapsedTime
			return backoff.WithMaxRetries(b, maxTries-1)
		},
	}
}

func (c *Client) Limit() int {
	return c.cfg.Limit
}

func (c *Client) pageURL(offset int) (string, error) {
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	q := u.Query()
	q.Set("ascending", "false")
	q.Set("limit", strconv.Itoa(c.cfg.Limit))
	q.Set("ordering", "id")
	q.Set("offset", strconv.Itoa(offset))
	if c.cfg.ContestID != 0 {
		q.Set("contest_id", strconv.FormatInt(c.cfg.ContestID, 10))
	}
	if c.cfg.ProblemID != 0 {
		q.Set("problem_id", strconv.FormatInt(c.cfg.ProblemID, 10))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FetchPage downloads the page starting at offset. Network errors, 5xx and
// 429 responses are retried with exponential backoff; other 4xx are not.
func (c *Client) FetchPage(ctx context.Context, offset int) (*Page, error) {
	pageURL, err := c.pageURL(offset)
	if err != nil {
		return nil, err
	}

	var page *Page
	operation := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		p, err := c.get(ctx, pageURL)
		if err != nil {
			return err
		}
		page = p
		return nil
	}
	notify := func(err error, wait time.Duration) {
		log.Printf("[INGEST] offset %d: %v, retrying in %s", offset, err, wait.Round(time.Millisecond))
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(c.newBackOff(), ctx), notify); err != nil {
		return nil, fmt.Errorf("fetch offset %d: %w", offset, err)
	}
	return page, nil
}

func (c *Client) get(ctx context.Context, pageURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(body), 200)}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, statusErr
		}
		return nil, backoff.Permanent(statusErr)
	}

	var envelope Envelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("decode response: %w", err))
	}
	return &envelope.Data, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
