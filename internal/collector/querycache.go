package collector

import (
	"context"
	"time"

	"github.com/maisquelle/maisquelle/internal/dbconn"
	"github.com/maisquelle/maisquelle/internal/models"
)

// QueryCacheCollector gathers query cache configuration and efficiency.
// On servers without a query cache (MySQL 8+) the variables are simply
// absent and the collector emits only what exists.
type QueryCacheCollector struct{}

func (c *QueryCacheCollector) Name() models.CheckType { return models.CheckQueryCache }

func (c *QueryCacheCollector) Collect(ctx context.Context, session *dbconn.Session) ([]models.MetricSample, error) {
	now := time.Now()
	check := c.Name()

	config, err := statusValues(ctx, session,
		`SHOW GLOBAL VARIABLES LIKE 'query_cache%'`)
	if err != nil {
		return nil, err
	}

	status, err := statusValues(ctx, session,
		`SHOW GLOBAL STATUS LIKE 'Qcache%'`)
	if err != nil {
		return nil, err
	}

	var samples []models.MetricSample

	cacheType, haveType := config["query_cache_type"]
	if haveType {
		samples = append(samples, models.TextSample(check, "query_cache.type", cacheType, now))
	}
	cacheSize, haveSize := statusFloat(config, "query_cache_size")
	if haveSize {
		samples = append(samples, models.NumberSample(check, "query_cache.size_bytes", cacheSize, now))
	}
	if v, ok := statusFloat(config, "query_cache_limit"); ok {
		samples = append(samples, models.NumberSample(check, "query_cache.limit_bytes", v, now))
	}

	// Efficiency metrics only make sense with the cache enabled; when it
	// is off the derived metrics stay absent so no finding fires.
	if !haveType || cacheType == "OFF" {
		return samples, nil
	}

	hits, haveHits := statusFloat(status, "Qcache_hits")
	inserts, haveInserts := statusFloat(status, "Qcache_inserts")
	if haveHits {
		samples = append(samples, models.NumberSample(check, "query_cache.hits", hits, now))
	}
	if haveInserts {
		samples = append(samples, models.NumberSample(check, "query_cache.inserts", inserts, now))
	}
	if haveHits && haveInserts {
		samples = append(samples, models.NumberSample(check, "query_cache.hit_ratio", ratio(hits, inserts), now))
	}

	if totalBlocks, ok := statusFloat(status, "Qcache_total_blocks"); ok && totalBlocks > 0 {
		if freeBlocks, ok := statusFloat(status, "Qcache_free_blocks"); ok {
			samples = append(samples, models.NumberSample(check, "query_cache.fragmentation_percent",
				clampPercent(freeBlocks/totalBlocks*100), now))
		}
	}

	if freeMem, ok := statusFloat(status, "Qcache_free_memory"); ok && haveSize && cacheSize > 0 {
		samples = append(samples, models.NumberSample(check, "query_cache.memory_used_percent",
			clampPercent((cacheSize-freeMem)/cacheSize*100), now))
	}

	if v, ok := statusFloat(status, "Qcache_lowmem_prunes"); ok {
		samples = append(samples, models.NumberSample(check, "query_cache.lowmem_prunes", v, now))
	}
	if v, ok := statusFloat(status, "Qcache_queries_in_cache"); ok {
		samples = append(samples, models.NumberSample(check, "query_cache.queries_cached", v, now))
	}

	return samples, nil
}
