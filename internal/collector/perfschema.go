package collector

import (
	"context"
	"database/sql"
	"time"

	"github.com/maisquelle/maisquelle/internal/dbconn"
	"github.com/maisquelle/maisquelle/internal/models"
)

// PerfSchemaCollector summarizes performance_schema statement digests and
// metadata lock pressure.
type PerfSchemaCollector struct{}

func (c *PerfSchemaCollector) Name() models.CheckType { return models.CheckPerformanceSchema }

func (c *PerfSchemaCollector) Collect(ctx context.Context, session *dbconn.Session) ([]models.MetricSample, error) {
	now := time.Now()
	check := c.Name()

	rows, err := session.Query(ctx, `
		SELECT
			count_star,
			COALESCE(avg_timer_wait/1000000000, 0),
			COALESCE(sum_timer_wait/1000000000, 0)
		FROM performance_schema.events_statements_summary_by_digest
		ORDER BY sum_timer_wait DESC
		LIMIT 10`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		digests      int
		executions   float64
		maxAvgMs     float64
		totalWaitMs  float64
	)
	for rows.Next() {
		var countStar, avgMs, sumMs sql.NullFloat64
		if err := rows.Scan(&countStar, &avgMs, &sumMs); err != nil {
			continue
		}
		digests++
		executions += countStar.Float64
		totalWaitMs += sumMs.Float64
		if avgMs.Float64 > maxAvgMs {
			maxAvgMs = avgMs.Float64
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	samples := []models.MetricSample{
		models.NumberSample(check, "perf_schema.top_digests", float64(digests), now),
		models.NumberSample(check, "perf_schema.top_digests.executions", executions, now),
		models.NumberSample(check, "perf_schema.top_digests.max_avg_latency_ms", maxAvgMs, now),
		models.NumberSample(check, "perf_schema.top_digests.total_latency_ms", totalWaitMs, now),
	}

	var locks float64
	err = session.QueryRowScan(ctx, `
		SELECT COUNT(*) FROM performance_schema.metadata_locks
		WHERE OWNER_THREAD_ID IS NOT NULL`, &locks)
	if err == nil {
		samples = append(samples, models.NumberSample(check, "perf_schema.metadata_locks", locks, now))
	}

	return samples, nil
}
