package alphavantage

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// parseDailySeries extracts the "Time Series (Daily)" block from a raw
// response and returns the records sorted by date, oldest first.
func parseDailySeries(body []byte) ([]DailyPrice, error) {
	var raw struct {
		Series map[string]map[string]string `json:"Time Series (Daily)"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if len(raw.Series) == 0 {
		return nil, fmt.Errorf("response has no time series")
	}

	prices := make([]DailyPrice, 0, len(raw.Series))
	for dateStr, fields := range raw.Series {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			continue
		}
		prices = append(prices, DailyPrice{
			Date:   date,
			Open:   parseFloat(fields["1. open"]),
			High:   parseFloat(fields["2. high"]),
			Low:    parseFloat(fields["3. low"]),
			Close:  parseFloat(fields["4. close"]),
			Volume: parseInt(fields["5. volume"]),
		})
	}

	sort.Slice(prices, func(i, j int) bool {
		return prices[i].Date.Before(prices[j].Date)
	})

	return prices, nil
}

// parseSymbolSearch extracts the "bestMatches" block from a raw response.
// A response without matches yields an empty slice, not an error.
func parseSymbolSearch(body []byte) ([]SymbolMatch, error) {
	var raw struct {
		BestMatches []map[string]string `json:"bestMatches"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	matches := make([]SymbolMatch, 0, len(raw.BestMatches))
	for _, item := range raw.BestMatches {
		matches = append(matches, SymbolMatch{
			Symbol:   item["1. symbol"],
			Name:     item["2. name"],
			Region:   item["4. region"],
			Currency: item["8. currency"],
		})
	}

	return matches, nil
}

// parseFloat parses a numeric-as-text field. The provider uses "None", "-"
// and empty strings for missing values; those parse as zero. A trailing "%"
// is stripped.
func parseFloat(s string) float64 {
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	if s == "" || s == "None" || s == "null" || s == "-" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// parseInt parses an integer-as-text field, tolerating float notation.
func parseInt(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "None" || s == "null" || s == "-" {
		return 0
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return 0
}
