package analysis

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/maisquelle/maisquelle/internal/models"
)

// thresholdsFile is the on-disk shape of a thresholds document.
type thresholdsFile struct {
	Version    string             `yaml:"version"`
	Thresholds []models.Threshold `yaml:"thresholds"`
}

// DefaultThresholds returns the built-in rule set. The limits mirror
// long-standing MySQL tuning heuristics: 95% buffer pool hit ratio,
// 80% connection usage, query cache bounds on both sides (hit ratio
// under 30%, memory over 95% or under 20%, fragmentation over 20%),
// and host saturation ceilings.
func DefaultThresholds() []models.Threshold {
	return []models.Threshold{
		{
			Name: "connection_usage", Metric: "connections.usage_percent",
			Op: ">", Limit: 80, Severity: models.SeverityHigh,
			Advice:  "Connection usage is near max_connections; raise the limit or reduce client pool sizes",
			Command: "SET GLOBAL max_connections = {{suggest}}",
		},
		{
			Name: "aborted_connects", Metric: "connections.aborted",
			Op: ">", Limit: 100, Severity: models.SeverityMedium,
			Advice: "High number of aborted connection attempts; check credentials and network stability",
		},
		{
			Name: "buffer_pool_hit_ratio", Metric: "innodb.buffer_pool.hit_ratio",
			Op: "<", Limit: 0.95, Severity: models.SeverityMedium,
			Advice:  "Buffer pool hit ratio is low; consider increasing innodb_buffer_pool_size",
			Command: "SET GLOBAL innodb_buffer_pool_size = {{suggest}}",
		},
		{
			Name: "buffer_pool_dirty", Metric: "innodb.buffer_pool.dirty_percent",
			Op: ">", Limit: 75, Severity: models.SeverityMedium,
			Advice: "Large share of dirty buffer pool pages; check flush activity and I/O capacity",
		},
		{
			Name: "query_cache_hit_ratio", Metric: "query_cache.hit_ratio",
			Op: "<", Limit: 0.30, Severity: models.SeverityMedium,
			Advice: "Query cache hit ratio is below 30%; consider resizing or disabling the cache",
		},
		{
			Name: "query_cache_memory", Metric: "query_cache.memory_used_percent",
			Op: ">", Limit: 95, Severity: models.SeverityMedium,
			Advice:  "Query cache memory is nearly full; consider increasing query_cache_size",
			Command: "SET GLOBAL query_cache_size = {{suggest}}",
		},
		{
			Name: "query_cache_memory_low", Metric: "query_cache.memory_used_percent",
			Op: "<", Limit: 20, Severity: models.SeverityLow,
			Advice: "Query cache memory is mostly unused; consider reducing query_cache_size",
		},
		{
			Name: "query_cache_fragmentation", Metric: "query_cache.fragmentation_percent",
			Op: ">", Limit: 20, Severity: models.SeverityLow,
			Advice:  "Query cache is fragmented; flushing it will defragment the blocks",
			Command: "FLUSH QUERY CACHE",
		},
		{
			Name: "long_running_transaction", Metric: "innodb.transactions.longest_seconds",
			Op: ">", Limit: 300, Severity: models.SeverityMedium,
			Advice: "A transaction has been open for minutes; it blocks purge and holds locks",
		},
		{
			Name: "slow_query_volume", Metric: "slow_queries.recent",
			Op: ">", Limit: 5, Severity: models.SeverityMedium,
			Advice: "Many recent slow queries; review and optimize them, or raise long_query_time if acceptable",
		},
		{
			Name: "statement_latency", Metric: "perf_schema.top_digests.max_avg_latency_ms",
			Op: ">", Limit: 1000, Severity: models.SeverityMedium,
			Advice: "Statements averaging over a second; review the top digests in performance_schema",
		},
		{
			Name: "metadata_locks", Metric: "perf_schema.metadata_locks",
			Op: ">", Limit: 10, Severity: models.SeverityMedium,
			Advice: "Many held metadata locks; look for long-running transactions or DDL contention",
		},
		{
			Name: "tables_without_indexes", Metric: "tables.without_indexes",
			Op: ">", Limit: 0, Severity: models.SeverityMedium,
			Advice: "Tables without any index found; add appropriate indexes",
		},
		{
			Name: "fragmented_tables", Metric: "tables.fragmented",
			Op: ">", Limit: 0, Severity: models.SeverityLow,
			Advice:  "Tables with over 20% free space; OPTIMIZE TABLE reclaims it",
			Command: "OPTIMIZE TABLE {{table}}",
		},
		{
			Name: "oversized_tables", Metric: "tables.over_1g",
			Op: ">", Limit: 0, Severity: models.SeverityLow,
			Advice: "Tables larger than 1GB; consider partitioning or archiving",
		},
		{
			Name: "cpu_saturation", Metric: "system.cpu.percent",
			Op: ">", Limit: 90, Severity: models.SeverityHigh,
			Advice: "Host CPU is saturated; MySQL throughput will degrade",
		},
		{
			Name: "ram_saturation", Metric: "system.ram.percent",
			Op: ">", Limit: 90, Severity: models.SeverityHigh,
			Advice: "Host memory is nearly exhausted; risk of swapping or OOM",
		},
		{
			Name: "swap_usage", Metric: "system.swap.percent",
			Op: ">", Limit: 50, Severity: models.SeverityMedium,
			Advice: "Significant swap usage; database pages may be swapped out",
		},
		{
			Name: "disk_usage", Metric: "system.disk.percent",
			Op: ">", Limit: 90, Severity: models.SeverityHigh,
			Advice: "Data disk is nearly full; the server will stop accepting writes when it fills",
		},
	}
}

// LoadThresholds reads a thresholds YAML file. A missing path returns the
// defaults; an explicit file replaces them entirely.
func LoadThresholds(path string) ([]models.Threshold, error) {
	if path == "" {
		return DefaultThresholds(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("thresholds file not found: %s", path)
		}
		return nil, fmt.Errorf("read thresholds: %w", err)
	}

	var f thresholdsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse thresholds: %w", err)
	}

	if len(f.Thresholds) == 0 {
		return nil, fmt.Errorf("thresholds file %s defines no rules", path)
	}
	for _, t := range f.Thresholds {
		if err := t.Validate(); err != nil {
			return nil, err
		}
	}

	return f.Thresholds, nil
}

// SampleThresholdsYAML renders the default rule set as a starting-point
// thresholds file.
func SampleThresholdsYAML() (string, error) {
	f := thresholdsFile{
		Version:    "1",
		Thresholds: DefaultThresholds(),
	}
	out, err := yaml.Marshal(f)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
