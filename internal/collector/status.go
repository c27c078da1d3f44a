package collector

import (
	"context"
	"strconv"

	"github.com/maisquelle/maisquelle/internal/dbconn"
)

// statusValues runs a two-column name/value statement (SHOW GLOBAL STATUS,
// SHOW GLOBAL VARIABLES and their LIKE/WHERE forms) into a map.
func statusValues(ctx context.Context, session *dbconn.Session, stmt string) (map[string]string, error) {
	rows, err := session.Query(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var name, val string
		if err := rows.Scan(&name, &val); err != nil {
			continue
		}
		values[name] = val
	}
	return values, rows.Err()
}

// statusFloat parses a status value, returning ok=false for absent or
// non-numeric entries ("not started", empty) rather than an error.
func statusFloat(values map[string]string, name string) (float64, bool) {
	raw, ok := values[name]
	if !ok || raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ratio computes hits/(hits+misses), defined as 0 when the denominator
// is 0.
func ratio(hits, misses float64) float64 {
	total := hits + misses
	if total <= 0 {
		return 0
	}
	return hits / total
}

// clampPercent clamps a percentage into [0, 100].
func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// clampUnit clamps a ratio into [0, 1].
func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
