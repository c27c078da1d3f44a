package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/maisquelle/maisquelle/internal/advisor"
	"github.com/maisquelle/maisquelle/internal/analysis"
	"github.com/maisquelle/maisquelle/internal/anthropic"
	"github.com/maisquelle/maisquelle/internal/collector"
	"github.com/maisquelle/maisquelle/internal/dbconn"
	"github.com/maisquelle/maisquelle/internal/models"
	"github.com/maisquelle/maisquelle/internal/policy"
	"github.com/maisquelle/maisquelle/internal/tui"
)

var (
	checkHost         string
	checkPort         int
	checkUser         string
	checkPassword     string
	checkLevel        string
	checkChecks       []string
	checkEnableTables bool
	checkThresholds   string
	checkFormat       string
	checkOutput       string
	checkStore        bool
	checkStorageDir   string
	checkFailSeverity string
	checkNoInput      bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Inspect a MySQL server and report on its health",
	Long: `Check performs a full monitoring run:

  1. Connect  — establish a session with the target server
  2. Collect  — run the checks selected by level and flags
  3. Analyze  — evaluate samples against the thresholds
  4. Advise   — turn findings into recommendations
  5. Report   — print results (text, json, or both)

The inspection level controls depth: basic covers host resources and
connections, advanced adds InnoDB, query cache and slow queries, expert
adds performance_schema. Table statistics scan whole schemas and need
both --level expert and --enable-tables.

Commands proposed by recommendations are reviewed interactively and
recorded in the report; nothing is ever executed against the server.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkHost, "host", "H", "",
		"MySQL host (default: localhost)")
	checkCmd.Flags().IntVarP(&checkPort, "port", "P", 0,
		"MySQL port (default: 3306)")
	checkCmd.Flags().StringVarP(&checkUser, "user", "u", "",
		"MySQL user (default: root)")
	checkCmd.Flags().StringVarP(&checkPassword, "password", "p", "",
		"MySQL password (prefer MAISQUELLE_MYSQL_PASSWORD)")
	checkCmd.Flags().StringVarP(&checkLevel, "level", "l", "",
		"inspection level: basic, advanced, or expert")
	checkCmd.Flags().StringSliceVar(&checkChecks, "checks", nil,
		"explicit check selection, replaces the level defaults")
	checkCmd.Flags().BoolVar(&checkEnableTables, "enable-tables", false,
		"enable the expensive table statistics scan (expert level only)")
	checkCmd.Flags().StringVar(&checkThresholds, "thresholds", "",
		"thresholds YAML file (default: built-in rules)")
	checkCmd.Flags().StringVar(&checkFormat, "format", "",
		"output format: text, json, or both")
	checkCmd.Flags().StringVarP(&checkOutput, "output", "o", "",
		"write output to file")
	checkCmd.Flags().BoolVar(&checkStore, "store", false,
		"persist the report for later inspection")
	checkCmd.Flags().StringVar(&checkStorageDir, "storage-dir", "",
		"storage directory (default: .maisquelle)")
	checkCmd.Flags().StringVar(&checkFailSeverity, "fail-severity", "",
		"exit 1 when findings at or above this severity exist")
	checkCmd.Flags().BoolVar(&checkNoInput, "no-input", false,
		"skip the command approval review; commands stay pending")
}

func runCheck(cmd *cobra.Command, args []string) error {
	applyCheckFlags(cmd)

	level, err := models.ParseLevel(cfg.Level)
	if err != nil {
		return &ValidationError{Message: err.Error()}
	}

	thresholds, err := analysis.LoadThresholds(cfg.ThresholdsFile)
	if err != nil {
		return &ValidationError{Message: err.Error()}
	}

	checks, err := policy.Resolve(level, cfg.CheckTypes(), cfg.EnableTables)
	if err != nil {
		return &ValidationError{Message: err.Error()}
	}

	logVerbose("level %s resolved to %d check(s)", level, len(checks))
	logDebug("effective checks: %v", checks)
	logDebug("thresholds in effect: %d rule(s)", len(thresholds))

	// Step 1: Connect
	ctx := context.Background()
	session, err := dbconn.Connect(ctx, dbconn.Config{
		Host:           cfg.MySQL.Host,
		Port:           cfg.MySQL.Port,
		User:           cfg.MySQL.User,
		Password:       cfg.MySQL.Password,
		ConnectTimeout: cfg.MySQL.ConnectTimeout,
		QueryTimeout:   cfg.MySQL.QueryTimeout,
		Attempts:       cfg.MySQL.Retries,
	})
	if err != nil {
		logError("connection failed: %v", err)
		return err
	}
	defer func() { _ = session.Close() }()

	logVerbose("connected to %s:%d", cfg.MySQL.Host, cfg.MySQL.Port)

	// Step 2: Collect
	set := collector.NewSet(func(check models.CheckType, err error) {
		if err != nil {
			logError("  ✗ %s: %v", check, err)
		} else {
			logVerbose("  ✓ %s", check)
		}
	})
	result, err := set.Run(ctx, session, checks)
	if err != nil {
		return err
	}

	samples := make([]models.MetricSample, 0)
	for _, g := range result.Groups {
		logDebug("%s: %d sample(s)", g.Check, len(g.Samples))
		samples = append(samples, g.Samples...)
	}
	logVerbose("collected %d sample(s), %d collector(s) failed", len(samples), len(result.Errors))

	// Step 3: Analyze
	findings := analysis.Evaluate(samples, thresholds)
	logVerbose("found %d threshold violation(s)", len(findings))

	// Step 4: Advise
	client := anthropic.New(cfg.Anthropic.APIKey, cfg.Anthropic.Model, cfg.Anthropic.Timeout)
	adv := advisor.New(client, logVerbose)
	advice := adv.Generate(ctx, level, findings, thresholds, samples)

	recs := advice.Recommendations
	if !checkNoInput && cfg.Format != "json" {
		recs, err = advisor.ApplyApprovals(recs, tui.NewInteractiveApprover())
		if err != nil {
			logError("approval review failed: %v", err)
			recs = advice.Recommendations
		}
	}

	// Step 5: Report
	report := &models.Report{
		GeneratedAt: time.Now(),
		Target: models.Target{
			Host: cfg.MySQL.Host,
			Port: cfg.MySQL.Port,
			User: cfg.MySQL.User,
		},
		Level:           level,
		Checks:          checks,
		Samples:         result.Groups,
		CollectorErrors: result.Errors,
		Findings:        findings,
		Recommendations: recs,
		AssistantUsed:   advice.AssistantUsed,
	}

	return RunPipeline(report, PipelineConfig{
		Format:       cfg.Format,
		Output:       cfg.Output,
		Store:        cfg.Store,
		StorageDir:   cfg.StorageDir,
		FailSeverity: cfg.FailSeverity,
	})
}

// applyCheckFlags merges explicitly set flags over the loaded config.
func applyCheckFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.MySQL.Host = checkHost
	}
	if flags.Changed("port") {
		cfg.MySQL.Port = checkPort
	}
	if flags.Changed("user") {
		cfg.MySQL.User = checkUser
	}
	if flags.Changed("password") {
		cfg.MySQL.Password = checkPassword
	}
	if flags.Changed("level") {
		cfg.Level = checkLevel
	}
	if flags.Changed("checks") {
		cfg.EnabledChecks = checkChecks
	}
	if flags.Changed("enable-tables") {
		cfg.EnableTables = checkEnableTables
	}
	if flags.Changed("thresholds") {
		cfg.ThresholdsFile = checkThresholds
	}
	if flags.Changed("format") {
		cfg.Format = checkFormat
	}
	if flags.Changed("output") {
		cfg.Output = checkOutput
	}
	if flags.Changed("store") {
		cfg.Store = checkStore
	}
	if flags.Changed("storage-dir") {
		cfg.StorageDir = checkStorageDir
	}
	if flags.Changed("fail-severity") {
		cfg.FailSeverity = checkFailSeverity
	}
}
