package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Guide5210/Tensiometer-Arduino/src/logger"
	"github.com/Guide5210/Tensiometer-Arduino/src/models"
)

// -----------------------------------------------------------------------------
// CSVReporter
// -----------------------------------------------------------------------------

// CSVReporter writes one file per recorded run, named after the run index and
// profile, with the raw sample table.
type CSVReporter struct {
	Config *models.MConfig
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewCSVReporter(cfg *models.MConfig, log *logger.Logger) *CSVReporter {
	return &CSVReporter{
		Config: cfg,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

func (r *CSVReporter) Name() string {
	return "csv"
}

// -----------------------------------------------------------------------------

func (r *CSVReporter) Write(aggs []*models.MTestAggregate, stats map[string]models.MStatistics) error {
	written := 0

	for _, agg := range aggs {
		for i, run := range agg.Runs {
			name := fmt.Sprintf("%d_%s.csv", i+1, run.ProfileName)
			path := filepath.Join(r.Config.Output.Dir, name)

			if err := r.writeRun(path, run); err != nil {
				return err
			}
			written++
		}
	}

	r.Logger.Info("CSV export done, %d file(s) in %s", written, r.Config.Output.Dir)
	return nil
}

// -----------------------------------------------------------------------------

func (r *CSVReporter) writeRun(path string, run models.MRunResult) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write([]string{"Time (sec)", "Force (N)", "Position (mm)"}); err != nil {
		return err
	}

	for _, s := range run.Samples {
		record := []string{
			strconv.FormatFloat(s.Elapsed, 'f', 3, 64),
			strconv.FormatFloat(s.Force, 'f', 5, 64),
			strconv.FormatFloat(s.Position, 'f', 4, 64),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	return w.Error()
}
