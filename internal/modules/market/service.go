// Package market provides cached access to daily price histories.
package market

import (
	"time"

	"github.com/rs/zerolog"

	"finsight/internal/cache"
	"finsight/internal/clients/alphavantage"
)

// HistoryTTL bounds how long a fetched price history is served without
// asking the provider again.
const HistoryTTL = 5 * time.Minute

// Fetcher fetches a daily price history for a symbol.
type Fetcher interface {
	DailySeries(symbol string) ([]alphavantage.DailyPrice, error)
}

// Service serves price histories through a per-symbol TTL cache.
type Service struct {
	cache         *cache.Store[[]alphavantage.DailyPrice]
	fetcher       Fetcher
	defaultSymbol string
	log           zerolog.Logger
}

// NewService creates a new market data service. The cache store is owned by
// the application context and injected, so tests and future multi-instance
// deployments control its lifetime.
func NewService(store *cache.Store[[]alphavantage.DailyPrice], fetcher Fetcher, defaultSymbol string, log zerolog.Logger) *Service {
	return &Service{
		cache:         store,
		fetcher:       fetcher,
		defaultSymbol: defaultSymbol,
		log:           log.With().Str("service", "market").Logger(),
	}
}

// Resolve substitutes the configured default symbol for an empty one.
// Substitution happens before the symbol is used as a cache key, so a
// defaulted request and an explicit request for the same ticker share one
// entry.
func (s *Service) Resolve(symbol string) string {
	if symbol == "" {
		return s.defaultSymbol
	}
	return symbol
}

// History returns the daily price history for symbol, fetching from the
// provider at most once per TTL window. Symbols are case-sensitive and used
// as cache keys exactly as supplied.
func (s *Service) History(symbol string) ([]alphavantage.DailyPrice, error) {
	sym := s.Resolve(symbol)

	return s.cache.GetOrFetch(sym, HistoryTTL, func() ([]alphavantage.DailyPrice, error) {
		s.log.Debug().Str("symbol", sym).Msg("Cache miss, fetching from provider")
		return s.fetcher.DailySeries(sym)
	})
}

// Latest returns the most recent limit records of the symbol's history.
func (s *Service) Latest(symbol string, limit int) ([]alphavantage.DailyPrice, error) {
	history, err := s.History(symbol)
	if err != nil {
		return nil, err
	}

	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	return history, nil
}
