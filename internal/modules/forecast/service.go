// Package forecast produces price forecasts by delegating to the external
// forecasting model.
package forecast

import (
	"github.com/rs/zerolog"

	"finsight/internal/clients/alphavantage"
	"finsight/internal/clients/forecaster"
)

// DefaultPeriods is the forecast horizon used when the caller does not
// specify one.
const DefaultPeriods = 30

// HistorySource supplies the (cached) price history for a symbol.
type HistorySource interface {
	History(symbol string) ([]alphavantage.DailyPrice, error)
}

// Oracle fits a model on a history and predicts future points.
type Oracle interface {
	Forecast(req forecaster.ForecastRequest) ([]forecaster.ForecastPoint, error)
}

// Service wires the market history into the forecast oracle.
type Service struct {
	history HistorySource
	oracle  Oracle
	log     zerolog.Logger
}

// NewService creates a new forecast service.
func NewService(history HistorySource, oracle Oracle, log zerolog.Logger) *Service {
	return &Service{
		history: history,
		oracle:  oracle,
		log:     log.With().Str("service", "forecast").Logger(),
	}
}

// Forecast predicts the symbol's close series periods days ahead. A
// non-positive horizon falls back to DefaultPeriods. History comes through
// the market cache, so repeated forecasts within the TTL window reuse one
// provider fetch.
func (s *Service) Forecast(symbol string, periods int) ([]forecaster.ForecastPoint, error) {
	if periods <= 0 {
		periods = DefaultPeriods
	}

	history, err := s.history.History(symbol)
	if err != nil {
		return nil, err
	}

	req := forecaster.ForecastRequest{
		Dates:   make([]string, 0, len(history)),
		Closes:  make([]float64, 0, len(history)),
		Periods: periods,
	}
	for _, p := range history {
		req.Dates = append(req.Dates, p.Date.Format("2006-01-02"))
		req.Closes = append(req.Closes, p.Close)
	}

	return s.oracle.Forecast(req)
}
