package collector

import (
	"context"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/maisquelle/maisquelle/internal/dbconn"
	"github.com/maisquelle/maisquelle/internal/models"
)

// SystemCollector gathers CPU, RAM, swap and disk metrics from the host
// the tool runs on, plus the presence of MySQL server processes. It never
// touches the database session.
type SystemCollector struct {
	diskPath string

	// collection functions injected for testing
	cpuPercent    func(ctx context.Context, interval time.Duration, percpu bool) ([]float64, error)
	cpuCounts     func(ctx context.Context, logical bool) (int, error)
	virtualMemory func(ctx context.Context) (*mem.VirtualMemoryStat, error)
	swapMemory    func(ctx context.Context) (*mem.SwapMemoryStat, error)
	diskUsage     func(ctx context.Context, path string) (*disk.UsageStat, error)
	processNames  func(ctx context.Context) ([]string, error)
}

// NewSystemCollector creates a host metrics collector monitoring diskPath.
func NewSystemCollector(diskPath string) *SystemCollector {
	if diskPath == "" {
		diskPath = "/"
	}
	return &SystemCollector{
		diskPath:      diskPath,
		cpuPercent:    cpu.PercentWithContext,
		cpuCounts:     cpu.CountsWithContext,
		virtualMemory: mem.VirtualMemoryWithContext,
		swapMemory:    mem.SwapMemoryWithContext,
		diskUsage:     disk.UsageWithContext,
		processNames:  listProcessNames,
	}
}

func (c *SystemCollector) Name() models.CheckType { return models.CheckSystemResources }

// Collect gathers the host metrics. Individual probe failures degrade to
// missing samples; the collector only fails as a whole when every probe
// fails.
func (c *SystemCollector) Collect(ctx context.Context, _ *dbconn.Session) ([]models.MetricSample, error) {
	now := time.Now()
	check := c.Name()
	var samples []models.MetricSample
	var lastErr error
	probes := 0
	failed := 0

	probes++
	if pct, err := c.cpuPercent(ctx, time.Second, false); err == nil && len(pct) > 0 {
		samples = append(samples, models.NumberSample(check, "system.cpu.percent", pct[0], now))
	} else if err != nil {
		failed++
		lastErr = err
	}

	probes++
	if n, err := c.cpuCounts(ctx, true); err == nil {
		samples = append(samples, models.NumberSample(check, "system.cpu.count", float64(n), now))
	} else {
		failed++
		lastErr = err
	}

	probes++
	if vm, err := c.virtualMemory(ctx); err == nil {
		samples = append(samples,
			models.NumberSample(check, "system.ram.percent", vm.UsedPercent, now),
			models.NumberSample(check, "system.ram.total_bytes", float64(vm.Total), now),
			models.NumberSample(check, "system.ram.used_bytes", float64(vm.Used), now),
		)
	} else {
		failed++
		lastErr = err
	}

	probes++
	if sw, err := c.swapMemory(ctx); err == nil {
		samples = append(samples,
			models.NumberSample(check, "system.swap.percent", sw.UsedPercent, now),
			models.NumberSample(check, "system.swap.total_bytes", float64(sw.Total), now),
		)
	} else {
		failed++
		lastErr = err
	}

	probes++
	if du, err := c.diskUsage(ctx, c.diskPath); err == nil {
		samples = append(samples,
			models.NumberSample(check, "system.disk.percent", du.UsedPercent, now),
			models.NumberSample(check, "system.disk.free_bytes", float64(du.Free), now),
		)
	} else {
		failed++
		lastErr = err
	}

	probes++
	if names, err := c.processNames(ctx); err == nil {
		count := 0
		for _, name := range names {
			if strings.Contains(strings.ToLower(name), "mysql") {
				count++
			}
		}
		samples = append(samples, models.NumberSample(check, "system.mysql.process_count", float64(count), now))
	} else {
		failed++
		lastErr = err
	}

	if failed == probes {
		return nil, lastErr
	}
	return samples, nil
}

// listProcessNames returns the names of all visible processes.
func listProcessNames(ctx context.Context) ([]string, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}
