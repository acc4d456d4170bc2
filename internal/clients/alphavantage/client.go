// Package alphavantage provides a client for the Alpha Vantage market data API.
package alphavantage

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// dailyRequestLimit is the free-tier budget enforced by Alpha Vantage.
// Tracking it client-side fails fast instead of burning a request on a
// rate-limit response.
const dailyRequestLimit = 25

// Client is an Alpha Vantage API client.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	log     zerolog.Logger

	mu           sync.Mutex
	requestCount int
	resetCron    *cron.Cron
}

// NewClient creates a new Alpha Vantage client.
func NewClient(apiKey string, log zerolog.Logger) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: "https://www.alphavantage.co/query",
		client:  &http.Client{Timeout: 15 * time.Second},
		log:     log.With().Str("client", "alphavantage").Logger(),
	}
}

// DailySeries fetches the daily price history for a symbol, sorted
// chronologically ascending. Uses the compact output size (latest ~100
// trading days).
//
// Returns ErrNoTimeSeries when the response carries no usable series.
func (c *Client) DailySeries(symbol string) ([]DailyPrice, error) {
	body, err := c.get(map[string]string{
		"function":   "TIME_SERIES_DAILY",
		"symbol":     symbol,
		"outputsize": "compact",
	})
	if err != nil {
		return nil, err
	}

	prices, err := parseDailySeries(body)
	if err != nil {
		c.log.Warn().Str("symbol", symbol).Msg("Provider response had no time series")
		return nil, ErrNoTimeSeries{Symbol: symbol, Payload: body}
	}

	c.log.Debug().Str("symbol", symbol).Int("records", len(prices)).Msg("Fetched daily series")
	return prices, nil
}

// SearchSymbols runs a symbol search for the given keyword.
// Results are passed through uncached.
func (c *Client) SearchSymbols(keyword string) ([]SymbolMatch, error) {
	body, err := c.get(map[string]string{
		"function": "SYMBOL_SEARCH",
		"keywords": keyword,
	})
	if err != nil {
		return nil, err
	}

	matches, err := parseSymbolSearch(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse symbol search response: %w", err)
	}

	c.log.Debug().Str("keyword", keyword).Int("matches", len(matches)).Msg("Symbol search complete")
	return matches, nil
}

// RemainingRequests returns how many requests are left in today's budget.
func (c *Client) RemainingRequests() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return dailyRequestLimit - c.requestCount
}

// ResetDailyCounter resets the daily request counter.
func (c *Client) ResetDailyCounter() {
	c.mu.Lock()
	c.requestCount = 0
	c.mu.Unlock()
	c.log.Info().Msg("Daily request counter reset")
}

// StartCounterReset schedules the daily counter reset at midnight UTC.
func (c *Client) StartCounterReset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.resetCron != nil {
		return
	}
	c.resetCron = cron.New(cron.WithLocation(time.UTC))
	_, _ = c.resetCron.AddFunc("0 0 * * *", c.ResetDailyCounter)
	c.resetCron.Start()
}

// StopCounterReset stops the scheduled counter reset.
func (c *Client) StopCounterReset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.resetCron != nil {
		c.resetCron.Stop()
		c.resetCron = nil
	}
}

// checkRateLimit consumes one request from the daily budget.
func (c *Client) checkRateLimit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.requestCount >= dailyRequestLimit {
		return ErrRateLimitExceeded{}
	}
	c.requestCount++
	return nil
}

// get performs a GET request against the query endpoint with the given
// parameters plus the API key, and returns the raw response body.
func (c *Client) get(params map[string]string) ([]byte, error) {
	if err := c.checkRateLimit(); err != nil {
		return nil, err
	}

	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	q.Set("apikey", c.apiKey)

	resp, err := c.client.Get(c.baseURL + "?" + q.Encode())
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}
