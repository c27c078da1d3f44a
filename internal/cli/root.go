package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/maisquelle/maisquelle/internal/config"
	"github.com/maisquelle/maisquelle/internal/dbconn"
)

// logOut receives diagnostic output; stderr in production.
var logOut io.Writer = os.Stderr

const (
	// Exit codes for CI/CD integration
	ExitOK           = 0 // Success
	ExitSeverityGate = 1 // Findings at or above the configured severity
	ExitInvalidInput = 2 // Flag, config, or thresholds validation error
	ExitRuntimeError = 3 // Connection, I/O, or runtime error
)

var (
	// Global config instance
	cfg *config.Config

	// Global flags
	configFile string
	verbose    bool
	debug      bool

	// Set at build time through SetVersion
	version = "dev"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "maisquelle",
	Short: "Maisquelle - MySQL and host health monitor",
	Long: `Maisquelle inspects a MySQL server and the host it runs on, evaluates
the measurements against tuning thresholds, and recommends corrective
actions. Proposed commands are surfaced for review, never executed.

It provides:
- Tiered inspection depth (basic, advanced, expert)
- Host resource checks alongside server internals
- Configurable thresholds with sensible built-in defaults
- Optional AI-enriched recommendations
- CI/CD integration with exit codes

Quick start:
  maisquelle doctor
  maisquelle check --level advanced
  maisquelle check --level expert --enable-tables --store

Other commands:
  maisquelle thresholds --sample > thresholds.yaml
  maisquelle status`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load configuration
		var err error
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Override config with flags if provided
		if verbose {
			cfg.Verbose = true
		}
		if debug {
			cfg.Debug = true
		}

		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		os.Exit(HandleError(err))
	}
}

// SetVersion records the build-time version string.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default: ~/maisquelle.yaml or ./maisquelle.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"debug mode (very verbose)")

	// Add subcommands
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(thresholdsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(versionCmd)
}

// versionCmd shows version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Maisquelle %s\n", version)
		fmt.Println("MySQL and host health monitor")
	},
}

// HandleError determines the appropriate exit code for an error
func HandleError(err error) int {
	if err == nil {
		return ExitOK
	}

	switch err.(type) {
	case *ValidationError:
		return ExitInvalidInput
	case *SeverityGateError:
		return ExitSeverityGate
	case *dbconn.ConnectionError:
		return ExitRuntimeError
	default:
		return ExitRuntimeError
	}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// SeverityGateError represents a tripped fail-severity gate
type SeverityGateError struct {
	Severity string
	Count    int
}

func (e *SeverityGateError) Error() string {
	return fmt.Sprintf("%d finding(s) at or above severity %q", e.Count, e.Severity)
}

// logVerbose prints a message if verbose mode is enabled
func logVerbose(format string, args ...interface{}) {
	if cfg != nil && cfg.Verbose {
		fmt.Fprintf(logOut, "[INFO] "+format+"\n", args...)
	}
}

// logDebug prints a message if debug mode is enabled
func logDebug(format string, args ...interface{}) {
	if cfg != nil && cfg.Debug {
		fmt.Fprintf(logOut, "[DEBUG] "+format+"\n", args...)
	}
}

// logError prints an error message
func logError(format string, args ...interface{}) {
	fmt.Fprintf(logOut, "[ERROR] "+format+"\n", args...)
}
