package policy

import (
	"fmt"
	"sort"

	"github.com/maisquelle/maisquelle/internal/models"
)

// levelDefaults maps each inspection level to its default check set.
// The sets are monotone: Basic ⊂ Advanced ⊂ Expert.
var levelDefaults = map[models.Level][]models.CheckType{
	models.LevelBasic: {
		models.CheckSystemResources,
		models.CheckConnectionStats,
	},
	models.LevelAdvanced: {
		models.CheckSystemResources,
		models.CheckConnectionStats,
		models.CheckInnoDB,
		models.CheckQueryCache,
		models.CheckSlowQueries,
	},
	models.LevelExpert: {
		models.CheckSystemResources,
		models.CheckConnectionStats,
		models.CheckInnoDB,
		models.CheckQueryCache,
		models.CheckSlowQueries,
		models.CheckPerformanceSchema,
		models.CheckTableStatistics,
	},
}

// DefaultChecks returns a copy of the default check set for a level.
func DefaultChecks(level models.Level) []models.CheckType {
	defaults := levelDefaults[level]
	out := make([]models.CheckType, len(defaults))
	copy(out, defaults)
	return out
}

// Resolve computes the concrete check set for one run. It is called once;
// the result does not change mid-run.
//
// Resolution: start from the level's default set; if an explicit enabled
// set is given it replaces the default (the operator named exactly what
// they want). table_statistics is double-gated: it runs only at Expert
// AND with tablesEnabled, no matter how it was requested.
func Resolve(level models.Level, enabled []models.CheckType, tablesEnabled bool) ([]models.CheckType, error) {
	if _, ok := levelDefaults[level]; !ok {
		return nil, fmt.Errorf("unknown inspection level %d", level)
	}

	checks := DefaultChecks(level)
	if len(enabled) > 0 {
		for _, c := range enabled {
			if !models.IsSupportedCheck(c) {
				return nil, fmt.Errorf("unknown check %q", c)
			}
		}
		checks = append([]models.CheckType(nil), enabled...)
	}

	// Deduplicate and apply the table-statistics gate.
	seen := make(map[models.CheckType]bool, len(checks))
	var resolved []models.CheckType
	for _, c := range checks {
		if seen[c] {
			continue
		}
		seen[c] = true
		if c == models.CheckTableStatistics {
			if level != models.LevelExpert || !tablesEnabled {
				continue
			}
		}
		resolved = append(resolved, c)
	}

	// Stable order keeps collection and report output deterministic.
	sort.Slice(resolved, func(i, j int) bool { return rank(resolved[i]) < rank(resolved[j]) })
	return resolved, nil
}

// rank orders checks cheapest-first, matching the level default ordering.
func rank(c models.CheckType) int {
	for i, d := range levelDefaults[models.LevelExpert] {
		if d == c {
			return i
		}
	}
	return len(levelDefaults[models.LevelExpert])
}
