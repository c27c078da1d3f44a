package policy

import (
	"testing"

	"github.com/maisquelle/maisquelle/internal/models"
)

func contains(checks []models.CheckType, want models.CheckType) bool {
	for _, c := range checks {
		if c == want {
			return true
		}
	}
	return false
}

func TestDefaultChecksMonotone(t *testing.T) {
	basic := DefaultChecks(models.LevelBasic)
	advanced := DefaultChecks(models.LevelAdvanced)
	expert := DefaultChecks(models.LevelExpert)

	if len(basic) >= len(advanced) || len(advanced) >= len(expert) {
		t.Fatalf("expected strictly growing sets, got %d/%d/%d", len(basic), len(advanced), len(expert))
	}

	for _, c := range basic {
		if !contains(advanced, c) {
			t.Errorf("advanced missing basic check %s", c)
		}
	}
	for _, c := range advanced {
		if !contains(expert, c) {
			t.Errorf("expert missing advanced check %s", c)
		}
	}
}

func TestResolveBasicDefaults(t *testing.T) {
	checks, err := Resolve(models.LevelBasic, nil, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(checks) != 2 {
		t.Fatalf("expected 2 checks, got %d: %v", len(checks), checks)
	}
	if !contains(checks, models.CheckSystemResources) || !contains(checks, models.CheckConnectionStats) {
		t.Errorf("unexpected basic set: %v", checks)
	}
}

func TestResolveExplicitSelectionReplacesDefaults(t *testing.T) {
	checks, err := Resolve(models.LevelExpert, []models.CheckType{models.CheckInnoDB}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(checks) != 1 || checks[0] != models.CheckInnoDB {
		t.Fatalf("expected [innodb], got %v", checks)
	}
}

func TestResolveUnknownCheck(t *testing.T) {
	_, err := Resolve(models.LevelBasic, []models.CheckType{"replication_lag"}, false)
	if err == nil {
		t.Fatal("expected error for unknown check")
	}
}

func TestResolveUnknownLevel(t *testing.T) {
	_, err := Resolve(models.Level(9), nil, false)
	if err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestResolveTableStatisticsDoubleGate(t *testing.T) {
	tests := []struct {
		name     string
		level    models.Level
		enabled  []models.CheckType
		tables   bool
		expected bool
	}{
		{"expert without flag", models.LevelExpert, nil, false, false},
		{"expert with flag", models.LevelExpert, nil, true, true},
		{"advanced with flag", models.LevelAdvanced, []models.CheckType{models.CheckTableStatistics}, true, false},
		{"explicit expert without flag", models.LevelExpert, []models.CheckType{models.CheckTableStatistics}, false, false},
		{"explicit expert with flag", models.LevelExpert, []models.CheckType{models.CheckTableStatistics}, true, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			checks, err := Resolve(tt.level, tt.enabled, tt.tables)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := contains(checks, models.CheckTableStatistics); got != tt.expected {
				t.Errorf("table_statistics included=%v, expected %v (set %v)", got, tt.expected, checks)
			}
		})
	}
}

func TestResolveDeduplicates(t *testing.T) {
	checks, err := Resolve(models.LevelBasic, []models.CheckType{
		models.CheckInnoDB, models.CheckInnoDB, models.CheckSystemResources,
	}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(checks) != 2 {
		t.Fatalf("expected 2 deduplicated checks, got %v", checks)
	}
}

func TestResolveStableOrder(t *testing.T) {
	// Same selection in different input orders resolves identically.
	a, err := Resolve(models.LevelBasic, []models.CheckType{
		models.CheckQueryCache, models.CheckSystemResources, models.CheckInnoDB,
	}, false)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Resolve(models.LevelBasic, []models.CheckType{
		models.CheckInnoDB, models.CheckQueryCache, models.CheckSystemResources,
	}, false)
	if err != nil {
		t.Fatal(err)
	}

	if len(a) != len(b) {
		t.Fatalf("length mismatch: %v vs %v", a, b)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("order mismatch: %v vs %v", a, b)
		}
	}
	if a[0] != models.CheckSystemResources {
		t.Errorf("expected system_resources first, got %v", a)
	}
}
