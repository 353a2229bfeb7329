package metrics

import (
	"context"
	"runtime"
	"time"
)

// RunSystemGauges refreshes uptime and goroutine gauges until ctx is done
func (m *Metrics) RunSystemGauges(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}

	start := time.Now()
	m.collectSystem(start)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.collectSystem(start)
		}
	}
}

func (m *Metrics) collectSystem(start time.Time) {
	m.UptimeSeconds.Set(time.Since(start).Seconds())
	m.Goroutines.Set(float64(runtime.NumGoroutine()))
}
