package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/maisquelle/maisquelle/internal/analysis"
	"github.com/maisquelle/maisquelle/internal/dbconn"
)

var doctorFormat string

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check environment readiness and diagnose common problems",
	Long: `Doctor validates your Maisquelle setup end-to-end:

  1. Config file — found and readable?
  2. Thresholds — file parseable and rules valid?
  3. MySQL — reachable with the configured credentials?
  4. performance_schema — enabled for expert level?
  5. Slow query log — enabled for the slow query check?
  6. Reasoning service — API key configured?
  7. Storage — directory writable?

Fix the issues it reports, then run 'maisquelle check' with confidence.`,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().StringVar(&doctorFormat, "format", "text",
		"output format: text or json")
}

type doctorCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"` // "ok", "warn", "fail"
	Detail string `json:"detail,omitempty"`
}

type doctorResult struct {
	Checks  []doctorCheck `json:"checks"`
	Summary string        `json:"summary"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	var checks []doctorCheck

	// 1. Config file
	checks = append(checks, checkConfigFile())

	// 2. Thresholds
	checks = append(checks, checkThresholdsFile())

	// 3-5. Server-side checks share one session
	checks = append(checks, checkServer()...)

	// 6. Reasoning service
	checks = append(checks, checkAssistant())

	// 7. Storage directory
	checks = append(checks, checkStorage())

	// Build summary
	fails, warns := 0, 0
	for _, c := range checks {
		switch c.Status {
		case "fail":
			fails++
		case "warn":
			warns++
		}
	}

	summary := "all checks passed"
	if fails > 0 {
		summary = fmt.Sprintf("%d issue(s) found", fails)
	} else if warns > 0 {
		summary = fmt.Sprintf("ok with %d warning(s)", warns)
	}

	result := doctorResult{Checks: checks, Summary: summary}

	if doctorFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	return writeDoctorText(result)
}

func writeDoctorText(result doctorResult) error {
	icons := map[string]string{
		"ok":   "✓",
		"warn": "△",
		"fail": "✗",
	}

	for _, c := range result.Checks {
		icon := icons[c.Status]
		if c.Detail != "" {
			fmt.Printf("  %s %-20s %s\n", icon, c.Name, c.Detail)
		} else {
			fmt.Printf("  %s %s\n", icon, c.Name)
		}
	}

	fmt.Printf("\n%s\n", result.Summary)
	return nil
}

func checkConfigFile() doctorCheck {
	if configFile != "" {
		if _, err := os.Stat(configFile); err != nil {
			return doctorCheck{
				Name:   "config",
				Status: "fail",
				Detail: fmt.Sprintf("%s not readable: %v", configFile, err),
			}
		}
		return doctorCheck{
			Name:   "config",
			Status: "ok",
			Detail: configFile,
		}
	}

	for _, candidate := range configCandidates() {
		if _, err := os.Stat(candidate); err == nil {
			return doctorCheck{
				Name:   "config",
				Status: "ok",
				Detail: candidate,
			}
		}
	}

	return doctorCheck{
		Name:   "config",
		Status: "warn",
		Detail: "no config file found (using defaults)",
	}
}

// configCandidates lists the standard config search locations.
func configCandidates() []string {
	candidates := []string{"maisquelle.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, home+"/maisquelle.yaml")
	}
	return candidates
}

func checkThresholdsFile() doctorCheck {
	thresholds, err := analysis.LoadThresholds(cfg.ThresholdsFile)
	if err != nil {
		return doctorCheck{
			Name:   "thresholds",
			Status: "fail",
			Detail: err.Error(),
		}
	}

	detail := fmt.Sprintf("%d built-in rules", len(thresholds))
	if cfg.ThresholdsFile != "" {
		detail = fmt.Sprintf("%s (%d rules)", cfg.ThresholdsFile, len(thresholds))
	}
	return doctorCheck{
		Name:   "thresholds",
		Status: "ok",
		Detail: detail,
	}
}

// checkServer connects once and probes the surfaces the deeper levels
// need. Connection failure short-circuits the dependent checks.
func checkServer() []doctorCheck {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	session, err := dbconn.Connect(ctx, dbconn.Config{
		Host:           cfg.MySQL.Host,
		Port:           cfg.MySQL.Port,
		User:           cfg.MySQL.User,
		Password:       cfg.MySQL.Password,
		ConnectTimeout: cfg.MySQL.ConnectTimeout,
		QueryTimeout:   cfg.MySQL.QueryTimeout,
		Attempts:       1,
	})
	if err != nil {
		return []doctorCheck{{
			Name:   "mysql",
			Status: "fail",
			Detail: fmt.Sprintf("unreachable (%v)", err),
		}}
	}
	defer func() { _ = session.Close() }()

	checks := []doctorCheck{{
		Name:   "mysql",
		Status: "ok",
		Detail: fmt.Sprintf("%s:%d as %s", cfg.MySQL.Host, cfg.MySQL.Port, cfg.MySQL.User),
	}}

	checks = append(checks, checkPerfSchema(ctx, session))
	checks = append(checks, checkSlowLog(ctx, session))
	return checks
}

func checkPerfSchema(ctx context.Context, session *dbconn.Session) doctorCheck {
	var value string
	err := session.QueryRowScan(ctx, "SELECT @@performance_schema", &value)
	if err != nil || value == "0" {
		return doctorCheck{
			Name:   "performance_schema",
			Status: "warn",
			Detail: "disabled — expert level statement digests unavailable",
		}
	}
	return doctorCheck{
		Name:   "performance_schema",
		Status: "ok",
		Detail: "enabled",
	}
}

func checkSlowLog(ctx context.Context, session *dbconn.Session) doctorCheck {
	var name, value string
	err := session.QueryRowScan(ctx, "SHOW GLOBAL VARIABLES LIKE 'slow_query_log'", &name, &value)
	if err != nil {
		return doctorCheck{
			Name:   "slow_query_log",
			Status: "warn",
			Detail: "status unknown",
		}
	}
	if value != "ON" && value != "1" {
		return doctorCheck{
			Name:   "slow_query_log",
			Status: "warn",
			Detail: "disabled — recent slow query details unavailable",
		}
	}
	return doctorCheck{
		Name:   "slow_query_log",
		Status: "ok",
		Detail: "enabled",
	}
}

func checkAssistant() doctorCheck {
	if cfg.Anthropic.APIKey == "" {
		return doctorCheck{
			Name:   "assistant",
			Status: "warn",
			Detail: "not configured (local advice only). Set MAISQUELLE_ANTHROPIC_API_KEY",
		}
	}
	return doctorCheck{
		Name:   "assistant",
		Status: "ok",
		Detail: "API key configured",
	}
}

func checkStorage() doctorCheck {
	storagePath := cfg.StorageDir
	if storagePath == "" {
		storagePath = ".maisquelle"
	}

	info, err := os.Stat(storagePath)
	if err != nil {
		// Directory doesn't exist yet — that's fine, it will be created
		return doctorCheck{
			Name:   "storage",
			Status: "ok",
			Detail: fmt.Sprintf("%s (will be created on first --store)", storagePath),
		}
	}

	if !info.IsDir() {
		return doctorCheck{
			Name:   "storage",
			Status: "fail",
			Detail: fmt.Sprintf("%s exists but is not a directory", storagePath),
		}
	}

	// Try writing a temp file to check write access
	tmpFile := storagePath + "/.doctor-check"
	if err := os.WriteFile(tmpFile, []byte("ok"), 0600); err != nil {
		return doctorCheck{
			Name:   "storage",
			Status: "fail",
			Detail: fmt.Sprintf("%s not writable: %v", storagePath, err),
		}
	}
	_ = os.Remove(tmpFile)

	return doctorCheck{
		Name:   "storage",
		Status: "ok",
		Detail: storagePath,
	}
}
