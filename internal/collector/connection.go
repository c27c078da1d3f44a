package collector

import (
	"context"
	"time"

	"github.com/maisquelle/maisquelle/internal/dbconn"
	"github.com/maisquelle/maisquelle/internal/models"
)

// ConnectionCollector gathers connection and thread activity counters and
// the server identity (version, uptime).
type ConnectionCollector struct{}

func (c *ConnectionCollector) Name() models.CheckType { return models.CheckConnectionStats }

func (c *ConnectionCollector) Collect(ctx context.Context, session *dbconn.Session) ([]models.MetricSample, error) {
	now := time.Now()
	check := c.Name()

	status, err := statusValues(ctx, session, `
		SHOW GLOBAL STATUS WHERE Variable_name IN (
			'Threads_connected', 'Threads_running', 'Max_used_connections',
			'Aborted_connects', 'Uptime'
		)`)
	if err != nil {
		return nil, err
	}

	vars, err := statusValues(ctx, session,
		`SHOW GLOBAL VARIABLES WHERE Variable_name = 'max_connections'`)
	if err != nil {
		return nil, err
	}

	var samples []models.MetricSample

	var version string
	if err := session.QueryRowScan(ctx, "SELECT VERSION()", &version); err == nil {
		samples = append(samples, models.TextSample(check, "server.version", version, now))
	}

	if v, ok := statusFloat(status, "Uptime"); ok {
		samples = append(samples, models.DurationSample(check, "server.uptime", time.Duration(v)*time.Second, now))
	}

	current, haveCurrent := statusFloat(status, "Threads_connected")
	if haveCurrent {
		samples = append(samples, models.NumberSample(check, "connections.current", current, now))
	}
	if v, ok := statusFloat(status, "Threads_running"); ok {
		samples = append(samples, models.NumberSample(check, "connections.running", v, now))
	}
	if v, ok := statusFloat(status, "Max_used_connections"); ok {
		samples = append(samples, models.NumberSample(check, "connections.max_used", v, now))
	}
	if v, ok := statusFloat(status, "Aborted_connects"); ok {
		samples = append(samples, models.NumberSample(check, "connections.aborted", v, now))
	}

	max, haveMax := statusFloat(vars, "max_connections")
	if haveMax {
		samples = append(samples, models.NumberSample(check, "connections.max", max, now))
	}

	// usage % = current/max × 100, clamped to [0,100]; 0 when max is 0.
	if haveCurrent && haveMax {
		usage := 0.0
		if max > 0 {
			usage = clampPercent(current / max * 100)
		}
		samples = append(samples, models.NumberSample(check, "connections.usage_percent", usage, now))
	}

	return samples, nil
}
