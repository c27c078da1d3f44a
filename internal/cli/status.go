package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maisquelle/maisquelle/internal/storage"
)

var statusLast int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show stored run history",
	Long: `Status lists the reports persisted with 'check --store' and
summarizes the most recent one, so you can see how the server has been
trending without re-running the inspection.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusLast, "last", 5,
		"number of recent runs to list")
}

func runStatus(cmd *cobra.Command, args []string) error {
	storagePath, err := getStoragePath(cfg.StorageDir)
	if err != nil {
		return err
	}

	store := storage.NewLocal(storagePath)

	timestamps, err := store.ListRuns()
	if err != nil {
		return err
	}
	if len(timestamps) == 0 {
		fmt.Println("No stored runs. Use 'maisquelle check --store' to persist reports.")
		return nil
	}

	reports, err := store.GetLastNRuns(statusLast)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		return fmt.Errorf("no loadable runs in %s", storagePath)
	}

	fmt.Printf("Stored runs in %s (%d total, showing last %d):\n\n",
		storagePath, len(timestamps), len(reports))

	for _, report := range reports {
		degraded := ""
		if report.Degraded() {
			degraded = fmt.Sprintf("  (%d collector(s) failed)", len(report.CollectorErrors))
		}
		fmt.Printf("  %s  %s  level=%s  findings=%d%s\n",
			report.GeneratedAt.Format("2006-01-02 15:04:05"),
			report.Target.String(),
			report.Level,
			len(report.Findings),
			degraded)
	}

	latest := reports[len(reports)-1]
	if len(latest.Findings) > 0 {
		fmt.Printf("\nLatest findings:\n")
		for _, f := range latest.Findings {
			fmt.Printf("  [%s] %s\n", strings.ToUpper(f.Severity), f.Description)
		}
	} else {
		fmt.Printf("\nLatest run is clean.\n")
	}

	return nil
}
