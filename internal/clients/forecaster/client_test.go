package forecaster

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForecast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast", r.URL.Path)

		var req ForecastRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 30, req.Periods)
		assert.Equal(t, []string{"2024-01-14", "2024-01-15"}, req.Dates)

		w.Write([]byte(`{
			"success": true,
			"forecast": [
				{"ds": "2024-01-15", "yhat": 186.1, "yhat_upper": 190.0, "yhat_lower": 182.3},
				{"ds": "2024-01-16", "yhat": 186.9, "yhat_upper": 191.2, "yhat_lower": 182.8}
			]
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zerolog.Nop())

	points, err := client.Forecast(ForecastRequest{
		Dates:   []string{"2024-01-14", "2024-01-15"},
		Closes:  []float64{185.0, 186.2},
		Periods: 30,
	})
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, "2024-01-16", points[1].Date)
	assert.Equal(t, 186.9, points[1].Value)
	assert.Equal(t, 191.2, points[1].Upper)
	assert.Equal(t, 182.8, points[1].Lower)
}

func TestForecastErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		substr string
	}{
		{
			name:   "Service error envelope",
			status: http.StatusOK,
			body:   `{"success": false, "error": "series too short"}`,
			substr: "series too short",
		},
		{
			name:   "HTTP error",
			status: http.StatusBadGateway,
			body:   `gateway error`,
			substr: "502",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient(srv.URL, zerolog.Nop())

			_, err := client.Forecast(ForecastRequest{Periods: 30})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.substr)
		})
	}
}
