package models

import (
	"fmt"
	"strings"
)

// CheckType identifies one metric collector family
type CheckType string

const (
	CheckSystemResources   CheckType = "system_resources"
	CheckConnectionStats   CheckType = "connection_stats"
	CheckInnoDB            CheckType = "innodb"
	CheckQueryCache        CheckType = "query_cache"
	CheckSlowQueries       CheckType = "slow_queries"
	CheckPerformanceSchema CheckType = "performance_schema"
	CheckTableStatistics   CheckType = "table_statistics"
)

// CheckInfo contains metadata about a supported check
type CheckInfo struct {
	Name        string
	Description string
	HostSide    bool // collected from the host, not the database
	Expensive   bool // cost scales with schema size; needs explicit enablement
}

// SupportedChecks defines explicitly supported checks
var SupportedChecks = map[CheckType]CheckInfo{
	CheckSystemResources: {
		Name:        "system_resources",
		Description: "CPU, RAM, swap and disk usage of the host",
		HostSide:    true,
	},
	CheckConnectionStats: {
		Name:        "connection_stats",
		Description: "connection counts, thread activity and uptime",
	},
	CheckInnoDB: {
		Name:        "innodb",
		Description: "InnoDB buffer pool and data I/O counters",
	},
	CheckQueryCache: {
		Name:        "query_cache",
		Description: "query cache configuration and efficiency",
	},
	CheckSlowQueries: {
		Name:        "slow_queries",
		Description: "slow query log status and recent entries",
	},
	CheckPerformanceSchema: {
		Name:        "performance_schema",
		Description: "top statement digests and metadata locks",
	},
	CheckTableStatistics: {
		Name:        "table_statistics",
		Description: "per-table and per-index size and cardinality",
		Expensive:   true,
	},
}

// IsSupportedCheck checks if a check name is explicitly supported
func IsSupportedCheck(check CheckType) bool {
	_, ok := SupportedChecks[check]
	return ok
}

// Level is the inspection depth of a monitoring run
type Level int

const (
	LevelBasic Level = iota + 1
	LevelAdvanced
	LevelExpert
)

func (l Level) String() string {
	switch l {
	case LevelBasic:
		return "basic"
	case LevelAdvanced:
		return "advanced"
	case LevelExpert:
		return "expert"
	default:
		return "unknown"
	}
}

// ParseLevel accepts level names and the legacy numeric form (1/2/3).
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "basic", "1":
		return LevelBasic, nil
	case "advanced", "2":
		return LevelAdvanced, nil
	case "expert", "3":
		return LevelExpert, nil
	default:
		return 0, fmt.Errorf("unknown level %q (use basic, advanced, or expert)", s)
	}
}

// MarshalText implements encoding.TextMarshaler so reports carry the name.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Severity levels for findings and recommendations
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

// SeverityRank returns numeric priority for sorting (higher = more urgent)
func SeverityRank(severity string) int {
	switch severity {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// ValidSeverity reports whether s is one of the known severity levels.
func ValidSeverity(s string) bool {
	return SeverityRank(s) > 0
}
