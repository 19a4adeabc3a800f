package ncbi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DefaultBaseURL is the E-utilities endpoint root.
const DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// ErrNotFound is returned when efetch answers with an empty record.
var ErrNotFound = errors.New("ncbi: record not found")

type cachedEntry struct {
	text        string
	retrievedAt time.Time
}

// Client fetches GenBank flat files. Tests may replace HTTPClient with a
// mock transport.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
	APIKey     string
	TTL        time.Duration
	// Attempts bounds retries on 429 and transport errors.
	Attempts int

	mu    sync.RWMutex
	cache map[string]cachedEntry
	sleep func(context.Context, time.Duration) error
	now   func() time.Time
}

// NewClient returns a client with a 20s timeout and a 7 day cache TTL.
func NewClient(apiKey string) *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: 20 * time.Second},
		BaseURL:    DefaultBaseURL,
		APIKey:     apiKey,
		TTL:        7 * 24 * time.Hour,
		Attempts:   3,
	}
}

func (c *Client) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

func (c *Client) wait(ctx context.Context, d time.Duration) error {
	if c.sleep != nil {
		return c.sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Client) getCached(acc string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.cache[acc]
	if !ok {
		return "", false
	}
	if c.TTL > 0 && c.clock().Sub(e.retrievedAt) > c.TTL {
		return "", false
	}
	return e.text, true
}

func (c *Client) setCached(acc, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cache == nil {
		c.cache = make(map[string]cachedEntry)
	}
	c.cache[acc] = cachedEntry{text: text, retrievedAt: c.clock()}
}

func (c *Client) efetchURL(acc string) string {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	q := url.Values{}
	q.Set("db", "nuccore")
	q.Set("id", acc)
	q.Set("rettype", "gb")
	q.Set("retmode", "text")
	if c.APIKey != "" {
		q.Set("api_key", c.APIKey)
	}
	return strings.TrimRight(base, "/") + "/efetch.fcgi?" + q.Encode()
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(h http.Header, fallback time.Duration) time.Duration {
	if s := h.Get("Retry-After"); s != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && n >= 0 {
			return time.Duration(n) * time.Second
		}
	}
	return fallback
}

// FetchGenBank returns the GenBank flat file for accession.
func (c *Client) FetchGenBank(ctx context.Context, accession string) (string, error) {
	accession = strings.TrimSpace(accession)
	if accession == "" {
		return "", fmt.Errorf("ncbi: empty accession")
	}
	if v, ok := c.getCached(accession); ok {
		return v, nil
	}

	attempts := c.Attempts
	if attempts <= 0 {
		attempts = 3
	}
	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.efetchURL(accession), nil)
		if err != nil {
			return "", err
		}
		req.Header.Set("User-Agent", "seqview/1.0")
		backoff := time.Duration(attempt*300) * time.Millisecond

		resp, err := hc.Do(req)
		if err != nil {
			lastErr = err
		} else {
			body, rerr := io.ReadAll(resp.Body)
			resp.Body.Close()
			switch {
			case resp.StatusCode == http.StatusOK:
				if rerr != nil {
					return "", rerr
				}
				text := string(body)
				if strings.TrimSpace(text) == "" {
					return "", fmt.Errorf("%w: %s", ErrNotFound, accession)
				}
				c.setCached(accession, text)
				return text, nil
			case resp.StatusCode == http.StatusTooManyRequests:
				lastErr = fmt.Errorf("ncbi efetch returned 429")
				backoff = retryAfter(resp.Header, time.Duration(attempt*500)*time.Millisecond)
			case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest:
				return "", fmt.Errorf("%w: %s (status %d)", ErrNotFound, accession, resp.StatusCode)
			default:
				return "", fmt.Errorf("ncbi efetch returned status %d: %s", resp.StatusCode, string(body))
			}
		}
		if attempt == attempts {
			break
		}
		if err := c.wait(ctx, backoff); err != nil {
			return "", err
		}
	}
	return "", lastErr
}
