package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"finsight/internal/clients/alphavantage"
	"finsight/internal/modules/forecast"
	"finsight/internal/modules/insights"
	"finsight/internal/modules/kpis"
	"finsight/internal/modules/market"
)

// marketDataLimit caps how many records /finance/market returns.
const marketDataLimit = 150

// SymbolSearcher runs an uncached symbol search against the provider.
type SymbolSearcher interface {
	SearchSymbols(keyword string) ([]alphavantage.SymbolMatch, error)
}

// FinanceHandlers provides HTTP handlers for the finance endpoints
type FinanceHandlers struct {
	market   *market.Service
	forecast *forecast.Service
	insights *insights.Service
	search   SymbolSearcher
	log      zerolog.Logger
}

// NewFinanceHandlers creates a new finance handler set
func NewFinanceHandlers(
	marketSvc *market.Service,
	forecastSvc *forecast.Service,
	insightsSvc *insights.Service,
	search SymbolSearcher,
	log zerolog.Logger,
) *FinanceHandlers {
	return &FinanceHandlers{
		market:   marketSvc,
		forecast: forecastSvc,
		insights: insightsSvc,
		search:   search,
		log:      log.With().Str("handler", "finance").Logger(),
	}
}

// RegisterRoutes mounts the finance endpoints on the router
func (h *FinanceHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/finance", func(r chi.Router) {
		r.Get("/market", h.HandleMarket)
		r.Get("/forecast", h.HandleForecast)
		r.Get("/kpis", h.HandleKPIs)
		r.Get("/search", h.HandleSearch)
		r.Get("/kpi-insight", h.HandleKPIInsight)
	})
}

// HandleMarket handles GET /finance/market?symbol=
func (h *FinanceHandlers) HandleMarket(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")

	data, err := h.market.Latest(symbol, marketDataLimit)
	if err != nil {
		h.writeProviderError(w, err, "Failed to fetch market data")
		return
	}

	h.writeJSON(w, map[string]interface{}{
		"symbol": h.market.Resolve(symbol),
		"data":   data,
	})
}

// HandleForecast handles GET /finance/forecast?symbol=&periods=30
func (h *FinanceHandlers) HandleForecast(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")

	periods := forecast.DefaultPeriods
	if p := r.URL.Query().Get("periods"); p != "" {
		parsed, err := strconv.Atoi(p)
		if err != nil {
			http.Error(w, "periods must be an integer", http.StatusBadRequest)
			return
		}
		periods = parsed
	}

	points, err := h.forecast.Forecast(symbol, periods)
	if err != nil {
		h.writeProviderError(w, err, "Failed to compute forecast")
		return
	}

	h.writeJSON(w, map[string]interface{}{
		"symbol":   h.market.Resolve(symbol),
		"forecast": points,
	})
}

// HandleKPIs handles GET /finance/kpis?symbol=
func (h *FinanceHandlers) HandleKPIs(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")

	history, err := h.market.History(symbol)
	if err != nil {
		h.writeProviderError(w, err, "Failed to fetch market data")
		return
	}

	summary, err := kpis.Calculate(history)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("KPI calculation failed")
		http.Error(w, "Failed to calculate KPIs", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]interface{}{
		"symbol": h.market.Resolve(symbol),
		"kpis":   summary,
	})
}

// HandleSearch handles GET /finance/search?q=
func (h *FinanceHandlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("q")
	if keyword == "" {
		http.Error(w, "q is required", http.StatusBadRequest)
		return
	}

	results, err := h.search.SearchSymbols(keyword)
	if err != nil {
		h.writeProviderError(w, err, "Symbol search failed")
		return
	}

	h.writeJSON(w, map[string]interface{}{
		"results": results,
	})
}

// HandleKPIInsight handles GET /finance/kpi-insight?kpi=&value=&symbol=
//
// Insight failures are deliberately opaque to the caller: whatever went
// wrong upstream, the response is a generic 500.
func (h *FinanceHandlers) HandleKPIInsight(w http.ResponseWriter, r *http.Request) {
	kpi := r.URL.Query().Get("kpi")
	value := r.URL.Query().Get("value")
	if kpi == "" || value == "" {
		http.Error(w, "kpi and value are required", http.StatusBadRequest)
		return
	}

	symbol := h.market.Resolve(r.URL.Query().Get("symbol"))

	insight, err := h.insights.Explain(symbol, kpi, value)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Str("kpi", kpi).Msg("Insight generation failed")
		http.Error(w, "AI service error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]interface{}{
		"kpi":     kpi,
		"insight": insight,
	})
}

// writeProviderError maps an upstream failure to a response. Provider
// refusals (no series, exhausted quota) become 502; anything else 500.
func (h *FinanceHandlers) writeProviderError(w http.ResponseWriter, err error, msg string) {
	h.log.Error().Err(err).Msg(msg)

	var noSeries alphavantage.ErrNoTimeSeries
	var rateLimited alphavantage.ErrRateLimitExceeded
	if errors.As(err, &noSeries) || errors.As(err, &rateLimited) {
		http.Error(w, msg, http.StatusBadGateway)
		return
	}

	http.Error(w, msg, http.StatusInternalServerError)
}

func (h *FinanceHandlers) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
