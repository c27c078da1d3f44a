package storage

import (
	"time"

	"github.com/maisquelle/maisquelle/internal/models"
)

// Storage defines the interface for persisting reports
type Storage interface {
	// SaveReport stores a complete monitoring report
	SaveReport(report *models.Report) error

	// LoadReport loads a report from a specific timestamp
	LoadReport(timestamp time.Time) (*models.Report, error)

	// GetLatestRun retrieves the most recent report
	GetLatestRun() (*models.Report, error)

	// GetLastNRuns retrieves the last N reports
	GetLastNRuns(n int) ([]*models.Report, error)

	// ListRuns returns all available run timestamps
	ListRuns() ([]time.Time, error)
}
