package collector

import (
	"context"
	"database/sql"
	"time"

	"github.com/maisquelle/maisquelle/internal/dbconn"
	"github.com/maisquelle/maisquelle/internal/models"
)

// TableStatsCollector scans information_schema table and index metadata.
// Its cost scales with schema size, which is why policy double-gates it
// behind Expert level and an explicit enable flag.
type TableStatsCollector struct{}

func (c *TableStatsCollector) Name() models.CheckType { return models.CheckTableStatistics }

func (c *TableStatsCollector) Collect(ctx context.Context, session *dbconn.Session) ([]models.MetricSample, error) {
	now := time.Now()
	check := c.Name()

	rows, err := session.Query(ctx, `
		SELECT
			table_schema, table_name,
			COALESCE(table_rows, 0),
			COALESCE(data_length, 0),
			COALESCE(index_length, 0),
			COALESCE(data_free, 0)
		FROM information_schema.tables
		WHERE table_schema NOT IN
			('information_schema', 'mysql', 'performance_schema', 'sys')`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	const gigabyte = float64(1 << 30)

	var (
		tableCount     float64
		totalRows      float64
		totalData      float64
		totalIndex     float64
		withoutIndexes float64
		fragmented     float64
		overGigabyte   float64
		largestBytes   float64
	)
	for rows.Next() {
		var schema, name string
		var tableRows, dataLen, indexLen, dataFree float64
		if err := rows.Scan(&schema, &name, &tableRows, &dataLen, &indexLen, &dataFree); err != nil {
			continue
		}
		tableCount++
		totalRows += tableRows
		totalData += dataLen
		totalIndex += indexLen
		if indexLen == 0 {
			withoutIndexes++
		}
		if dataLen > 0 && dataFree > dataLen*0.2 {
			fragmented++
		}
		if dataLen > gigabyte {
			overGigabyte++
		}
		if dataLen > largestBytes {
			largestBytes = dataLen
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	samples := []models.MetricSample{
		models.NumberSample(check, "tables.count", tableCount, now),
		models.NumberSample(check, "tables.total_rows", totalRows, now),
		models.NumberSample(check, "tables.total_data_bytes", totalData, now),
		models.NumberSample(check, "tables.total_index_bytes", totalIndex, now),
		models.NumberSample(check, "tables.without_indexes", withoutIndexes, now),
		models.NumberSample(check, "tables.fragmented", fragmented, now),
		models.NumberSample(check, "tables.over_1g", overGigabyte, now),
		models.NumberSample(check, "tables.largest_bytes", largestBytes, now),
	}

	// Deep index inspection: low-cardinality secondary indexes are a
	// common sign of useless indexes.
	var indexCount, lowCardinality sql.NullFloat64
	err = session.QueryRowScan(ctx, `
		SELECT COUNT(*), COALESCE(SUM(cardinality < 2 AND index_name <> 'PRIMARY'), 0)
		FROM information_schema.statistics
		WHERE table_schema NOT IN
			('information_schema', 'mysql', 'performance_schema', 'sys')`,
		&indexCount, &lowCardinality)
	if err == nil {
		samples = append(samples,
			models.NumberSample(check, "indexes.count", indexCount.Float64, now),
			models.NumberSample(check, "indexes.low_cardinality", lowCardinality.Float64, now),
		)
	}

	return samples, nil
}
