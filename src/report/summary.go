package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Guide5210/Tensiometer-Arduino/src/logger"
	"github.com/Guide5210/Tensiometer-Arduino/src/models"
)

// -----------------------------------------------------------------------------
// SummaryReporter
// -----------------------------------------------------------------------------

// SummaryReporter writes a plain text SUMMARY.txt with the per-profile
// statistics, readable without a spreadsheet application.
type SummaryReporter struct {
	Config *models.MConfig
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSummaryReporter(cfg *models.MConfig, log *logger.Logger) *SummaryReporter {
	return &SummaryReporter{
		Config: cfg,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

func (r *SummaryReporter) Name() string {
	return "summary"
}

// -----------------------------------------------------------------------------

func (r *SummaryReporter) Write(aggs []*models.MTestAggregate, stats map[string]models.MStatistics) error {
	var b strings.Builder

	b.WriteString("TENSIOMETER TEST SUMMARY\n")
	b.WriteString(fmt.Sprintf("Generated: %s\n", time.Now().Format("2006-01-02 15:04:05")))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	for _, agg := range aggs {
		s := stats[agg.ProfileName]

		b.WriteString(fmt.Sprintf("%s (%.5f mm/s)\n", agg.ProfileName, agg.SpeedMMs))
		b.WriteString(strings.Repeat("-", 40) + "\n")
		b.WriteString(fmt.Sprintf("  Runs:      %d\n", s.RunCount))
		b.WriteString(fmt.Sprintf("  Mean Peak: %.5f N\n", s.Mean))
		b.WriteString(fmt.Sprintf("  Std Dev:   %.5f N\n", s.Std))
		b.WriteString(fmt.Sprintf("  RSD:       %.2f %%\n", s.RSDPercent))
		b.WriteString(fmt.Sprintf("  Min Peak:  %.5f N\n", s.Min))
		b.WriteString(fmt.Sprintf("  Max Peak:  %.5f N\n", s.Max))
		b.WriteString("\n")
	}

	path := filepath.Join(r.Config.Output.Dir, "SUMMARY.txt")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return err
	}

	r.Logger.Info("Summary written to %s", path)
	return nil
}
