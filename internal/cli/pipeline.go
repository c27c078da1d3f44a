package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/maisquelle/maisquelle/internal/models"
	"github.com/maisquelle/maisquelle/internal/reporter"
	"github.com/maisquelle/maisquelle/internal/storage"
)

// PipelineConfig holds options for the shared report pipeline.
type PipelineConfig struct {
	Format       string
	Output       string
	Store        bool
	StorageDir   string
	FailSeverity string
}

// RunPipeline handles the tail of a monitoring run:
// store → output → severity gate.
func RunPipeline(report *models.Report, pcfg PipelineConfig) error {
	if pcfg.FailSeverity != "" && !models.ValidSeverity(pcfg.FailSeverity) {
		return &ValidationError{
			Message: fmt.Sprintf("invalid fail-severity: %s (must be critical, high, medium, or low)", pcfg.FailSeverity),
		}
	}

	// Step 1: Store if enabled
	if pcfg.Store {
		storagePath, err := getStoragePath(pcfg.StorageDir)
		if err != nil {
			logError("Failed to get storage path: %v", err)
			return err
		}

		store := storage.NewLocal(storagePath)

		if err := store.EnsureDirectoryExists(); err != nil {
			logError("Failed to create storage directory: %v", err)
			return err
		}

		if err := store.SaveReport(report); err != nil {
			logError("Failed to store report: %v", err)
			return err
		}

		logVerbose("Stored report in: %s", storagePath)
	}

	// Step 2: Generate output
	if err := generateOutput(report, pcfg.Format, pcfg.Output); err != nil {
		logError("Failed to generate output: %v", err)
		return err
	}

	// Step 3: Severity gate
	if pcfg.FailSeverity != "" {
		gateRank := models.SeverityRank(pcfg.FailSeverity)
		count := 0
		for _, f := range report.Findings {
			if models.SeverityRank(f.Severity) >= gateRank {
				count++
			}
		}
		if count > 0 {
			logError("%d finding(s) at or above severity %q", count, pcfg.FailSeverity)
			return &SeverityGateError{Severity: pcfg.FailSeverity, Count: count}
		}
	}

	return nil
}

// generateOutput generates the output in the specified format(s).
func generateOutput(report *models.Report, format, outputPath string) error {
	var writer *os.File
	if outputPath == "" {
		writer = os.Stdout
	} else {
		var err error
		writer, err = os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = writer.Close() }()
	}

	switch format {
	case "text":
		textReporter := reporter.NewTextReporter(writer)
		return textReporter.Generate(report)

	case "json":
		jsonReporter := reporter.NewJSONReporter(writer, true)
		return jsonReporter.Generate(report)

	case "both":
		if outputPath == "" {
			textReporter := reporter.NewTextReporter(os.Stdout)
			if err := textReporter.Generate(report); err != nil {
				return err
			}

			jsonFile, err := os.Create("maisquelle-report.json")
			if err != nil {
				return fmt.Errorf("failed to create JSON file: %w", err)
			}
			defer func() { _ = jsonFile.Close() }()

			jsonReporter := reporter.NewJSONReporter(jsonFile, true)
			return jsonReporter.Generate(report)
		}

		textReporter := reporter.NewTextReporter(writer)
		if err := textReporter.Generate(report); err != nil {
			return err
		}

		if _, err := fmt.Fprintf(writer, "\n=== JSON Output ===\n\n"); err != nil {
			return err
		}

		jsonReporter := reporter.NewJSONReporter(writer, true)
		return jsonReporter.Generate(report)

	default:
		return fmt.Errorf("unsupported format: %s (use text, json, or both)", format)
	}
}

// getStoragePath resolves the storage path, expanding ~ and converting to absolute.
func getStoragePath(storageDir string) (string, error) {
	if len(storageDir) >= 2 && storageDir[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		storageDir = filepath.Join(home, storageDir[2:])
	}

	absPath, err := filepath.Abs(storageDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	return absPath, nil
}
