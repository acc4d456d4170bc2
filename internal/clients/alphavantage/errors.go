package alphavantage

import "fmt"

// ErrNoTimeSeries indicates the provider response did not contain the
// expected time series - an invalid symbol, a rate-limited response, or some
// other provider-side refusal. The raw payload is kept for diagnostics.
type ErrNoTimeSeries struct {
	Symbol  string
	Payload []byte
}

func (e ErrNoTimeSeries) Error() string {
	body := string(e.Payload)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("alphavantage: no time series for %q: %s", e.Symbol, body)
}

// ErrRateLimitExceeded indicates the daily request budget is exhausted.
// The counter resets at midnight UTC.
type ErrRateLimitExceeded struct{}

func (e ErrRateLimitExceeded) Error() string {
	return "alphavantage: daily rate limit exceeded (resets at midnight UTC)"
}
