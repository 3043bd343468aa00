// Package uscis fetches case records from the my.uscis.gov
// case-service API using cookies exported from an authenticated
// browser session.
package uscis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pders01/casewatch/internal/record"
)

// DefaultBaseURL is the case-service endpoint; the receipt number is
// appended directly.
const DefaultBaseURL = "https://my.uscis.gov/account/case-service/api/cases/"

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Client fetches raw case records. Failures are reported to the
// caller, never retried here; the next scheduled cycle is the retry.
type Client struct {
	baseURL    string
	cookiePath string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a case-service client reading session cookies
// from the given Netscape-format export file.
func NewClient(baseURL, cookiePath string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		cookiePath: cookiePath,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// FetchCase retrieves the raw record for one receipt number. The
// cookie file is re-read on every call so a freshly exported session
// takes effect without a restart.
func (c *Client) FetchCase(ctx context.Context, receiptNumber string) (record.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+receiptNumber, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", "https://my.uscis.gov/")
	req.Header.Set("Accept", "application/json, text/plain, */*")

	cookies, err := LoadCookies(c.cookiePath)
	if err != nil {
		c.logger.Warn("cookie file unavailable, request will be unauthenticated",
			"path", c.cookiePath, "error", err)
		c.logger.Info("export cookies from a logged-in my.uscis.gov browser session in Netscape format",
			"path", c.cookiePath)
	}
	for name, value := range cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d for case %s", resp.StatusCode, receiptNumber)
	}

	var rec record.Record
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode case record: %w", err)
	}

	return rec, nil
}
