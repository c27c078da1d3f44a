package collector

import (
	"context"
	"time"

	"github.com/maisquelle/maisquelle/internal/dbconn"
	"github.com/maisquelle/maisquelle/internal/models"
)

// InnoDBCollector gathers buffer pool and data I/O counters plus the
// derived hit ratio and pool efficiency.
type InnoDBCollector struct{}

func (c *InnoDBCollector) Name() models.CheckType { return models.CheckInnoDB }

func (c *InnoDBCollector) Collect(ctx context.Context, session *dbconn.Session) ([]models.MetricSample, error) {
	now := time.Now()
	check := c.Name()

	// Buffer pool status excludes the string-valued dump/load progress vars.
	pool, err := statusValues(ctx, session, `
		SHOW GLOBAL STATUS WHERE Variable_name LIKE 'Innodb_buffer_pool%'
		AND Variable_name NOT LIKE '%dump%'
		AND Variable_name NOT LIKE '%load%'
		AND Variable_name NOT LIKE '%resize%'`)
	if err != nil {
		return nil, err
	}

	data, err := statusValues(ctx, session,
		`SHOW GLOBAL STATUS WHERE Variable_name LIKE 'Innodb_data%'`)
	if err != nil {
		return nil, err
	}

	var samples []models.MetricSample

	var poolSize float64
	if err := session.QueryRowScan(ctx, "SELECT @@innodb_buffer_pool_size", &poolSize); err == nil {
		samples = append(samples, models.NumberSample(check, "innodb.buffer_pool.size_bytes", poolSize, now))
	}

	readRequests, haveRequests := statusFloat(pool, "Innodb_buffer_pool_read_requests")
	reads, haveReads := statusFloat(pool, "Innodb_buffer_pool_reads")
	if haveRequests {
		samples = append(samples, models.NumberSample(check, "innodb.buffer_pool.read_requests", readRequests, now))
	}
	if haveReads {
		samples = append(samples, models.NumberSample(check, "innodb.buffer_pool.reads", reads, now))
	}

	// efficiency = 1 − disk_reads/logical_reads; 0 when there were no
	// logical reads yet, clamped to [0,1].
	if haveRequests && haveReads {
		efficiency := 0.0
		if readRequests > 0 {
			efficiency = clampUnit(1 - reads/readRequests)
		}
		samples = append(samples, models.NumberSample(check, "innodb.buffer_pool.hit_ratio", efficiency, now))
	}

	if total, ok := statusFloat(pool, "Innodb_buffer_pool_pages_total"); ok && total > 0 {
		samples = append(samples, models.NumberSample(check, "innodb.buffer_pool.pages_total", total, now))
		if dirty, ok := statusFloat(pool, "Innodb_buffer_pool_pages_dirty"); ok {
			samples = append(samples,
				models.NumberSample(check, "innodb.buffer_pool.pages_dirty", dirty, now),
				models.NumberSample(check, "innodb.buffer_pool.dirty_percent", clampPercent(dirty/total*100), now),
			)
		}
		if free, ok := statusFloat(pool, "Innodb_buffer_pool_pages_free"); ok {
			samples = append(samples, models.NumberSample(check, "innodb.buffer_pool.pages_free", free, now))
		}
	}

	if v, ok := statusFloat(data, "Innodb_data_reads"); ok {
		samples = append(samples, models.NumberSample(check, "innodb.data.reads", v, now))
	}
	if v, ok := statusFloat(data, "Innodb_data_writes"); ok {
		samples = append(samples, models.NumberSample(check, "innodb.data.writes", v, now))
	}
	if v, ok := statusFloat(data, "Innodb_data_fsyncs"); ok {
		samples = append(samples, models.NumberSample(check, "innodb.data.fsyncs", v, now))
	}
	if v, ok := statusFloat(data, "Innodb_data_pending_reads"); ok {
		samples = append(samples, models.NumberSample(check, "innodb.data.pending_reads", v, now))
	}

	// Open transaction state; absent when the table is not readable.
	var trxActive, trxLongest float64
	if err := session.QueryRowScan(ctx, `
		SELECT COUNT(*), COALESCE(MAX(TIMESTAMPDIFF(SECOND, trx_started, NOW())), 0)
		FROM information_schema.innodb_trx`, &trxActive, &trxLongest); err == nil {
		samples = append(samples,
			models.NumberSample(check, "innodb.transactions.active", trxActive, now),
			models.NumberSample(check, "innodb.transactions.longest_seconds", trxLongest, now),
		)
	}

	return samples, nil
}
