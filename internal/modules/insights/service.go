// Package insights generates cached natural-language explanations of KPI
// values.
package insights

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"finsight/internal/cache"
)

// InsightTTL bounds how long a generated explanation is served before the
// generator is asked again for the same (symbol, kpi, value) triple.
const InsightTTL = time.Hour

// promptTemplate is the fixed analyst prompt. The %s slots are symbol, KPI
// name and value, in that order.
const promptTemplate = `You are a professional financial analyst.

Stock: %s
KPI: %s
Value: %s

Explain clearly for an investor:
- What this means
- Risk level
- Recommendation

Use max 3 short sentences.`

// Generator produces a completion for a free-text prompt.
type Generator interface {
	Generate(prompt string) (string, error)
}

// ErrGeneration indicates the insight provider call failed.
type ErrGeneration struct {
	Err error
}

func (e ErrGeneration) Error() string {
	return fmt.Sprintf("insight generation failed: %v", e.Err)
}

func (e ErrGeneration) Unwrap() error {
	return e.Err
}

// Service serves KPI explanations through a TTL cache keyed by the
// (symbol, kpi, value) triple.
type Service struct {
	cache *cache.Store[string]
	gen   Generator
	log   zerolog.Logger
}

// NewService creates a new insights service with an injected cache store.
func NewService(store *cache.Store[string], gen Generator, log zerolog.Logger) *Service {
	return &Service{
		cache: store,
		gen:   gen,
		log:   log.With().Str("service", "insights").Logger(),
	}
}

// cacheKey joins the triple into a single order-sensitive key.
//
// Components are not escaped: a component containing the delimiter can
// collide with a differently-split triple. Symbols and KPI names do not
// contain ':' in practice, so the ambiguity is accepted rather than hidden
// behind an escaping scheme.
func cacheKey(symbol, kpi, value string) string {
	return strings.Join([]string{symbol, kpi, value}, ":")
}

// Explain returns a short natural-language explanation of a KPI value,
// generating it at most once per TTL window per (symbol, kpi, value) triple.
// The generated text is trimmed of surrounding whitespace before caching.
func (s *Service) Explain(symbol, kpi, value string) (string, error) {
	key := cacheKey(symbol, kpi, value)

	return s.cache.GetOrFetch(key, InsightTTL, func() (string, error) {
		log := s.log.With().
			Str("request_id", uuid.NewString()).
			Str("symbol", symbol).
			Str("kpi", kpi).
			Logger()
		log.Debug().Msg("Cache miss, generating insight")

		text, err := s.gen.Generate(fmt.Sprintf(promptTemplate, symbol, kpi, value))
		if err != nil {
			log.Error().Err(err).Msg("Insight generation failed")
			return "", ErrGeneration{Err: err}
		}

		return strings.TrimSpace(text), nil
	})
}
