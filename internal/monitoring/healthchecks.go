package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

const HEALTHCHECK_INTERVAL = 15 * time.Second

// Prober reports whether a dependency is currently usable.
type Prober interface {
	HealthCheck(ctx context.Context) bool
}

type ProberFunc func(ctx context.Context) bool

func (f ProberFunc) HealthCheck(ctx context.Context) bool { return f(ctx) }

// MonitorHealth probes on every tick and stores the outcome in healthy
// until ctx is done. Transitions are logged once.
func MonitorHealth(ctx context.Context, clock clockwork.Clock, name string, probe Prober, healthy *atomic.Bool) {
	ticker := clock.NewTicker(HEALTHCHECK_INTERVAL)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			probeCtx, cancel := context.WithTimeout(ctx, HEALTHCHECK_INTERVAL/2)
			isHealthy := probe.HealthCheck(probeCtx)
			cancel()

			if was := healthy.Swap(isHealthy); was != isHealthy {
				if isHealthy {
					slog.Info("[HealthCheck] Dependency recovered", slog.String("dependency", name))
				} else {
					slog.Warn("[HealthCheck] Dependency is unhealthy", slog.String("dependency", name))
				}
			}
		}
	}
}
