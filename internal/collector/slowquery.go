package collector

import (
	"context"
	"time"

	"github.com/maisquelle/maisquelle/internal/dbconn"
	"github.com/maisquelle/maisquelle/internal/models"
)

// SlowQueryCollector reports slow query log status and, when the log is
// written to the mysql.slow_log table, the volume of recent entries.
type SlowQueryCollector struct{}

func (c *SlowQueryCollector) Name() models.CheckType { return models.CheckSlowQueries }

func (c *SlowQueryCollector) Collect(ctx context.Context, session *dbconn.Session) ([]models.MetricSample, error) {
	now := time.Now()
	check := c.Name()

	vars, err := statusValues(ctx, session, `
		SHOW GLOBAL VARIABLES WHERE Variable_name IN
		('slow_query_log', 'long_query_time', 'log_output')`)
	if err != nil {
		return nil, err
	}

	var samples []models.MetricSample

	logEnabled := vars["slow_query_log"]
	if logEnabled != "" {
		samples = append(samples, models.TextSample(check, "slow_queries.log_enabled", logEnabled, now))
	}
	if v, ok := statusFloat(vars, "long_query_time"); ok {
		samples = append(samples, models.DurationSample(check, "slow_queries.long_query_time",
			time.Duration(v*float64(time.Second)), now))
	}

	status, err := statusValues(ctx, session,
		`SHOW GLOBAL STATUS LIKE 'Slow_queries'`)
	if err != nil {
		return nil, err
	}
	if v, ok := statusFloat(status, "Slow_queries"); ok {
		samples = append(samples, models.NumberSample(check, "slow_queries.total", v, now))
	}

	// Recent entries are only readable when the log goes to a table.
	if logEnabled == "ON" {
		var recent float64
		err := session.QueryRowScan(ctx, `
			SELECT COUNT(*) FROM (
				SELECT start_time FROM mysql.slow_log
				ORDER BY start_time DESC LIMIT 10
			) recent`, &recent)
		if err == nil {
			samples = append(samples, models.NumberSample(check, "slow_queries.recent", recent, now))
		}
	}

	return samples, nil
}
