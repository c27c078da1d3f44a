package collector

import (
	"context"
	"fmt"

	"github.com/maisquelle/maisquelle/internal/dbconn"
	"github.com/maisquelle/maisquelle/internal/models"
)

// Collector gathers one family of metrics from the monitored server or
// its host. Implementations must be read-only with respect to the server
// and independently retriable: a failure in one collector never blocks
// the others.
type Collector interface {
	Name() models.CheckType
	Collect(ctx context.Context, session *dbconn.Session) ([]models.MetricSample, error)
}

// Registry is the single source of truth for available collectors,
// keyed by check name so policy resolution is a pure set computation.
var Registry = map[models.CheckType]Collector{
	models.CheckSystemResources:   NewSystemCollector("/"),
	models.CheckConnectionStats:   &ConnectionCollector{},
	models.CheckInnoDB:            &InnoDBCollector{},
	models.CheckQueryCache:        &QueryCacheCollector{},
	models.CheckSlowQueries:       &SlowQueryCollector{},
	models.CheckPerformanceSchema: &PerfSchemaCollector{},
	models.CheckTableStatistics:   &TableStatsCollector{},
}

// Result is the outcome of running the resolved check set: the union of
// all samples plus one error record per failed collector. Empty samples
// with errors is a valid, reportable outcome.
type Result struct {
	Groups []models.SampleGroup
	Errors []models.CollectorError
}

// Set executes the policy-selected subset of collectors over one session.
type Set struct {
	registry map[models.CheckType]Collector
	progress func(check models.CheckType, err error)
}

// NewSet creates a collector set backed by the default registry.
// progress, if non-nil, is called after each collector finishes.
func NewSet(progress func(check models.CheckType, err error)) *Set {
	return &Set{registry: Registry, progress: progress}
}

// NewSetWithRegistry creates a collector set over a custom registry.
func NewSetWithRegistry(registry map[models.CheckType]Collector, progress func(check models.CheckType, err error)) *Set {
	return &Set{registry: registry, progress: progress}
}

// Run executes the resolved checks sequentially over the single session.
// Collector failures are isolated into Result.Errors; the run itself
// only fails for unknown check names, which policy resolution should
// have rejected earlier.
func (s *Set) Run(ctx context.Context, session *dbconn.Session, checks []models.CheckType) (Result, error) {
	var result Result

	for _, check := range checks {
		c, ok := s.registry[check]
		if !ok {
			return result, fmt.Errorf("no collector registered for check %q", check)
		}

		samples, err := c.Collect(ctx, session)
		if s.progress != nil {
			s.progress(check, err)
		}
		if err != nil {
			result.Errors = append(result.Errors, models.CollectorError{
				Check: check,
				Error: err.Error(),
			})
			continue
		}
		result.Groups = append(result.Groups, models.SampleGroup{
			Check:   check,
			Samples: samples,
		})
	}

	return result, nil
}
