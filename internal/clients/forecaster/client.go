// Package forecaster provides an HTTP client for the forecasting microservice.
//
// The statistical model is opaque to this service: the microservice is handed
// a historical close series and a horizon and returns predicted values with
// uncertainty bounds for the historical-plus-future timeline.
package forecaster

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Client is an HTTP client for the forecaster microservice.
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewClient creates a new forecaster client.
func NewClient(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 60 * time.Second, // Model fitting can take time
		},
		log: log.With().Str("client", "forecaster").Logger(),
	}
}

// ForecastRequest represents a forecast request.
type ForecastRequest struct {
	Dates   []string  `json:"dates"`   // YYYY-MM-DD, aligned with Closes
	Closes  []float64 `json:"closes"`  // Historical closing prices
	Periods int       `json:"periods"` // Future periods to predict
}

// ForecastPoint is one predicted point with uncertainty bounds.
type ForecastPoint struct {
	Date  string  `json:"ds"`
	Value float64 `json:"yhat"`
	Upper float64 `json:"yhat_upper"`
	Lower float64 `json:"yhat_lower"`
}

// serviceResponse is the standard response envelope from the microservice.
type serviceResponse struct {
	Success  bool            `json:"success"`
	Forecast []ForecastPoint `json:"forecast"`
	Error    *string         `json:"error"`
}

// Forecast fits the model on the supplied history and returns predictions
// for the historical timeline plus the requested future periods.
func (c *Client) Forecast(req ForecastRequest) ([]ForecastPoint, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := c.client.Post(c.baseURL+"/forecast", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("forecaster returned status %d", resp.StatusCode)
	}

	var result serviceResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if !result.Success {
		msg := "unknown error"
		if result.Error != nil {
			msg = *result.Error
		}
		return nil, fmt.Errorf("forecaster error: %s", msg)
	}

	c.log.Debug().
		Int("history", len(req.Closes)).
		Int("periods", req.Periods).
		Int("points", len(result.Forecast)).
		Msg("Forecast complete")

	return result.Forecast, nil
}
