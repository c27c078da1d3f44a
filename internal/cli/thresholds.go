package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maisquelle/maisquelle/internal/analysis"
)

var (
	thresholdsFilePath string
	thresholdsSample   bool
)

var thresholdsCmd = &cobra.Command{
	Use:   "thresholds",
	Short: "Show the effective threshold rules",
	Long: `Thresholds prints the rule set a check run would evaluate: the
built-in defaults, or the contents of a thresholds file if one is
configured. Use --sample to emit the defaults as YAML, ready to edit:

  maisquelle thresholds --sample > thresholds.yaml
  maisquelle check --thresholds thresholds.yaml`,
	RunE: runThresholds,
}

func init() {
	thresholdsCmd.Flags().StringVar(&thresholdsFilePath, "thresholds", "",
		"thresholds YAML file to inspect (default: built-in rules)")
	thresholdsCmd.Flags().BoolVar(&thresholdsSample, "sample", false,
		"print the default rules as an editable YAML file")
}

func runThresholds(cmd *cobra.Command, args []string) error {
	if thresholdsSample {
		out, err := analysis.SampleThresholdsYAML()
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	}

	path := thresholdsFilePath
	if path == "" {
		path = cfg.ThresholdsFile
	}

	thresholds, err := analysis.LoadThresholds(path)
	if err != nil {
		return &ValidationError{Message: err.Error()}
	}

	source := "built-in defaults"
	if path != "" {
		source = path
	}
	fmt.Printf("Effective thresholds (%s):\n\n", source)

	for _, t := range thresholds {
		fmt.Printf("  %-26s %s %s %s [%s]\n",
			t.Name, t.Metric, t.Op, formatLimit(t.Limit), t.Severity)
		if t.Command != "" {
			fmt.Printf("  %-26s command: %s\n", "", t.Command)
		}
	}

	fmt.Printf("\n%d rule(s)\n", len(thresholds))
	return nil
}

func formatLimit(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
