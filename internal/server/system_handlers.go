package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// QuotaReporter exposes the remaining daily request budget of the market
// data provider.
type QuotaReporter interface {
	RemainingRequests() int
}

// SystemHandlers provides HTTP handlers for system monitoring
type SystemHandlers struct {
	quota     QuotaReporter
	startedAt time.Time
	log       zerolog.Logger
}

// NewSystemHandlers creates a new system handler set
func NewSystemHandlers(quota QuotaReporter, log zerolog.Logger) *SystemHandlers {
	return &SystemHandlers{
		quota:     quota,
		startedAt: time.Now(),
		log:       log.With().Str("handler", "system").Logger(),
	}
}

// HandleStatus handles GET /api/system/status
func (h *SystemHandlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int(time.Since(h.startedAt).Seconds()),
	}

	// Short sample interval: status is polled, responses must be fast.
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
	} else if len(cpuPercent) > 0 {
		status["cpu_percent"] = cpuPercent[0]
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
	} else {
		status["memory_percent"] = memStat.UsedPercent
	}

	if h.quota != nil {
		status["provider_requests_remaining"] = h.quota.RemainingRequests()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode status response")
	}
}
