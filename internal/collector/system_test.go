package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/maisquelle/maisquelle/internal/models"
)

func testSystemCollector() *SystemCollector {
	return &SystemCollector{
		diskPath: "/",
		cpuPercent: func(ctx context.Context, interval time.Duration, percpu bool) ([]float64, error) {
			return []float64{37.5}, nil
		},
		cpuCounts: func(ctx context.Context, logical bool) (int, error) {
			return 8, nil
		},
		virtualMemory: func(ctx context.Context) (*mem.VirtualMemoryStat, error) {
			return &mem.VirtualMemoryStat{Total: 16 << 30, Used: 8 << 30, UsedPercent: 50}, nil
		},
		swapMemory: func(ctx context.Context) (*mem.SwapMemoryStat, error) {
			return &mem.SwapMemoryStat{Total: 4 << 30, UsedPercent: 10}, nil
		},
		diskUsage: func(ctx context.Context, path string) (*disk.UsageStat, error) {
			return &disk.UsageStat{Free: 100 << 30, UsedPercent: 60}, nil
		},
		processNames: func(ctx context.Context) ([]string, error) {
			return []string{"systemd", "mysqld", "mysqld_safe", "sshd"}, nil
		},
	}
}

func findSample(t *testing.T, samples []models.MetricSample, name string) models.MetricSample {
	t.Helper()
	for _, s := range samples {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("sample %q not found", name)
	return models.MetricSample{}
}

func TestSystemCollect(t *testing.T) {
	c := testSystemCollector()
	samples, err := c.Collect(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s := findSample(t, samples, "system.cpu.percent"); s.Number != 37.5 {
		t.Errorf("cpu percent: expected 37.5, got %v", s.Number)
	}
	if s := findSample(t, samples, "system.cpu.count"); s.Number != 8 {
		t.Errorf("cpu count: expected 8, got %v", s.Number)
	}
	if s := findSample(t, samples, "system.ram.percent"); s.Number != 50 {
		t.Errorf("ram percent: expected 50, got %v", s.Number)
	}
	if s := findSample(t, samples, "system.disk.percent"); s.Number != 60 {
		t.Errorf("disk percent: expected 60, got %v", s.Number)
	}
	if s := findSample(t, samples, "system.mysql.process_count"); s.Number != 2 {
		t.Errorf("mysql process count: expected 2, got %v", s.Number)
	}

	for _, s := range samples {
		if s.Collector != models.CheckSystemResources {
			t.Errorf("sample %s attributed to %s", s.Name, s.Collector)
		}
	}
}

func TestSystemCollectPartialFailure(t *testing.T) {
	c := testSystemCollector()
	c.swapMemory = func(ctx context.Context) (*mem.SwapMemoryStat, error) {
		return nil, errors.New("no swap info")
	}

	samples, err := c.Collect(context.Background(), nil)
	if err != nil {
		t.Fatalf("partial probe failure should degrade, not fail: %v", err)
	}

	for _, s := range samples {
		if s.Name == "system.swap.percent" {
			t.Error("expected swap samples to be absent")
		}
	}
	findSample(t, samples, "system.cpu.percent")
}

func TestSystemCollectTotalFailure(t *testing.T) {
	boom := errors.New("probes unavailable")
	c := &SystemCollector{
		diskPath: "/",
		cpuPercent: func(ctx context.Context, interval time.Duration, percpu bool) ([]float64, error) {
			return nil, boom
		},
		cpuCounts:     func(ctx context.Context, logical bool) (int, error) { return 0, boom },
		virtualMemory: func(ctx context.Context) (*mem.VirtualMemoryStat, error) { return nil, boom },
		swapMemory:    func(ctx context.Context) (*mem.SwapMemoryStat, error) { return nil, boom },
		diskUsage:     func(ctx context.Context, path string) (*disk.UsageStat, error) { return nil, boom },
		processNames:  func(ctx context.Context) ([]string, error) { return nil, boom },
	}

	if _, err := c.Collect(context.Background(), nil); err == nil {
		t.Fatal("expected error when every probe fails")
	}
}
