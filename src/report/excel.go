package report

import (
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/Guide5210/Tensiometer-Arduino/src/logger"
	"github.com/Guide5210/Tensiometer-Arduino/src/models"

	"github.com/xuri/excelize/v2"
)

// -----------------------------------------------------------------------------
// ExcelReporter
// -----------------------------------------------------------------------------

// ExcelReporter writes one workbook per session: a summary sheet with the
// per-profile statistics, plus one sheet per recorded run holding the full
// sample table.
type ExcelReporter struct {
	Config *models.MConfig
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewExcelReporter(cfg *models.MConfig, log *logger.Logger) *ExcelReporter {
	return &ExcelReporter{
		Config: cfg,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

func (r *ExcelReporter) Name() string {
	return "excel"
}

// -----------------------------------------------------------------------------

func (r *ExcelReporter) Write(aggs []*models.MTestAggregate, stats map[string]models.MStatistics) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return err
	}

	if err := r.writeSummarySheet(f, aggs, stats); err != nil {
		return err
	}

	for _, agg := range aggs {
		for i, run := range agg.Runs {
			if err := r.writeRunSheet(f, run, i+1); err != nil {
				return err
			}
		}
	}

	name := fmt.Sprintf("tensiometer_results_%s.xlsx", time.Now().Format("20060102_150405"))
	path := filepath.Join(r.Config.Output.Dir, name)

	if err := f.SaveAs(path); err != nil {
		return err
	}

	r.Logger.Info("Excel report written to %s", path)
	return nil
}

// -----------------------------------------------------------------------------

func (r *ExcelReporter) writeSummarySheet(f *excelize.File, aggs []*models.MTestAggregate, stats map[string]models.MStatistics) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}

	headers := []string{"Profile", "Speed (mm/s)", "Runs", "Mean Peak (N)", "Std Dev (N)", "RSD (%)", "Min Peak (N)", "Max Peak (N)"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue("Summary", cell, h); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle("Summary", "A1", "H1", headerStyle); err != nil {
		return err
	}

	for rowIdx, agg := range aggs {
		s := stats[agg.ProfileName]
		values := []interface{}{
			agg.ProfileName,
			agg.SpeedMMs,
			s.RunCount,
			roundTo(s.Mean, 5),
			roundTo(s.Std, 5),
			roundTo(s.RSDPercent, 2),
			roundTo(s.Min, 5),
			roundTo(s.Max, 5),
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, rowIdx+2)
			if err := f.SetCellValue("Summary", cell, v); err != nil {
				return err
			}
		}
	}

	return f.SetColWidth("Summary", "A", "H", 15)
}

// -----------------------------------------------------------------------------

func (r *ExcelReporter) writeRunSheet(f *excelize.File, run models.MRunResult, runNumber int) error {
	sheet := sheetName(run.ProfileName, runNumber)

	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"1F4E78"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}

	// Title banner
	if err := f.MergeCell(sheet, "A1", "C1"); err != nil {
		return err
	}
	title := fmt.Sprintf("%s - Run %d", run.ProfileName, runNumber)
	if err := f.SetCellValue(sheet, "A1", title); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "C1", titleStyle); err != nil {
		return err
	}

	// Run metadata block
	info := [][]interface{}{
		{"Speed (um/s)", run.SpeedMMs * 1000},
		{"Peak Force (N)", roundTo(run.PeakForce, 5)},
		{"Duration (s)", roundTo(run.Duration, 3)},
		{"Data Points", len(run.Samples)},
		{"Recorded", run.CreatedAt.Format("2006-01-02 15:04:05")},
	}
	for i, row := range info {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, i+3)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	// Data table
	const dataHeaderRow = 9
	headers := []string{"Time (s)", "Force (N)", "Position (mm)"}
	for c, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(c+1, dataHeaderRow)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	hFirst, _ := excelize.CoordinatesToCellName(1, dataHeaderRow)
	hLast, _ := excelize.CoordinatesToCellName(3, dataHeaderRow)
	if err := f.SetCellStyle(sheet, hFirst, hLast, headerStyle); err != nil {
		return err
	}

	for i, s := range run.Samples {
		values := []interface{}{
			roundTo(s.Elapsed, 3),
			roundTo(s.Force, 5),
			roundTo(s.Position, 4),
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, dataHeaderRow+1+i)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	return f.SetColWidth(sheet, "A", "C", 15)
}

// -----------------------------------------------------------------------------

// sheetName builds a per-run sheet name within the 31 character Excel limit.
func sheetName(profile string, runNumber int) string {
	suffix := fmt.Sprintf("_r%d", runNumber)
	max := 31 - len(suffix)
	if len(profile) > max {
		profile = profile[:max]
	}
	return profile + suffix
}

// -----------------------------------------------------------------------------

func roundTo(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
