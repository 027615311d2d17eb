package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Guide5210/Tensiometer-Arduino/src/logger"
	"github.com/Guide5210/Tensiometer-Arduino/src/models"

	"github.com/stretchr/testify/assert"
)

// -----------------------------------------------------------------------------

func reportConfig(dir string) *models.MConfig {
	return &models.MConfig{
		Output: models.MOutputConfig{Dir: dir},
	}
}

func testAggregates() ([]*models.MTestAggregate, map[string]models.MStatistics) {
	run := models.MRunResult{
		ID:          "run-1",
		ProfileName: "MEASURE_M",
		SpeedMMs:    0.0125,
		Samples: []models.MSample{
			{Elapsed: 0.0, Force: 0.00123, Position: 0.0},
			{Elapsed: 0.1, Force: 0.00456, Position: 0.00125},
		},
		PeakForce: 0.00456,
		Duration:  0.1,
		CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}

	aggs := []*models.MTestAggregate{{
		ProfileName: "MEASURE_M",
		SpeedMMs:    0.0125,
		Runs:        []models.MRunResult{run},
		PeakForces:  []float64{0.00456},
	}}

	stats := map[string]models.MStatistics{
		"MEASURE_M": {RunCount: 1, Mean: 0.00456, Min: 0.00456, Max: 0.00456},
	}

	return aggs, stats
}

// -----------------------------------------------------------------------------

func TestCSVReporterWritesOneFilePerRun(t *testing.T) {
	dir := t.TempDir()
	r := NewCSVReporter(reportConfig(dir), logger.NewLogger("ERROR", "test"))

	aggs, stats := testAggregates()
	assert.NoError(t, r.Write(aggs, stats))

	data, err := os.ReadFile(filepath.Join(dir, "1_MEASURE_M.csv"))
	assert.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "Time (sec),Force (N),Position (mm)", lines[0])
	assert.Equal(t, "0.000,0.00123,0.0000", lines[1])
	assert.Equal(t, "0.100,0.00456,0.0013", lines[2])
}

// -----------------------------------------------------------------------------

func TestSummaryReporterContent(t *testing.T) {
	dir := t.TempDir()
	r := NewSummaryReporter(reportConfig(dir), logger.NewLogger("ERROR", "test"))

	aggs, stats := testAggregates()
	assert.NoError(t, r.Write(aggs, stats))

	data, err := os.ReadFile(filepath.Join(dir, "SUMMARY.txt"))
	assert.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "TENSIOMETER TEST SUMMARY")
	assert.Contains(t, text, "MEASURE_M (0.01250 mm/s)")
	assert.Contains(t, text, "Runs:      1")
	assert.Contains(t, text, "Mean Peak: 0.00456 N")
}

// -----------------------------------------------------------------------------

func TestExcelReporterProducesWorkbook(t *testing.T) {
	dir := t.TempDir()
	r := NewExcelReporter(reportConfig(dir), logger.NewLogger("ERROR", "test"))

	aggs, stats := testAggregates()
	assert.NoError(t, r.Write(aggs, stats))

	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "tensiometer_results_"))
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".xlsx"))
}

// -----------------------------------------------------------------------------

func TestSheetNameStaysWithinExcelLimit(t *testing.T) {
	name := sheetName("A_VERY_LONG_PROFILE_NAME_THAT_OVERFLOWS", 12)
	assert.LessOrEqual(t, len(name), 31)
	assert.True(t, strings.HasSuffix(name, "_r12"))

	assert.Equal(t, "MEASURE_M_r1", sheetName("MEASURE_M", 1))
}
