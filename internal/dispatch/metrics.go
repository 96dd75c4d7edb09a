package dispatch

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/mentionpulse/alert-engine/internal/models"
)

// Metrics holds dispatcher counters exposed on the admin endpoint.
type Metrics struct {
	mu sync.RWMutex

	Dispatched      int                    `json:"dispatched"`
	Skipped         int                    `json:"skipped"`
	ChannelSends    map[models.Channel]int `json:"channel_sends"`
	ChannelFailures map[models.Channel]int `json:"channel_failures"`
	LastRun         time.Time              `json:"last_run"`
	LastRunDuration string                 `json:"last_run_duration"`
}

func newMetrics() *Metrics {
	return &Metrics{
		ChannelSends:    make(map[models.Channel]int),
		ChannelFailures: make(map[models.Channel]int),
	}
}

func (m *Metrics) recordDispatch(channel models.Channel, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Dispatched++
	m.ChannelSends[channel]++
	if !success {
		m.ChannelFailures[channel]++
	}
}

func (m *Metrics) recordSkip() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Skipped++
}

func (m *Metrics) recordRun(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastRun = time.Now()
	m.LastRunDuration = duration.String()
}

// JSON renders the counters for the admin endpoint.
func (m *Metrics) JSON() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, _ := json.MarshalIndent(m, "", "  ")
	return string(data)
}
