package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Guide5210/Tensiometer-Arduino/src/logger"
	"github.com/Guide5210/Tensiometer-Arduino/src/models"

	"github.com/stretchr/testify/assert"
)

// -----------------------------------------------------------------------------

func newTestDB(t *testing.T) *SQLiteDB {
	cfg := &models.MConfig{
		Storage: models.MStorageConfig{
			DBType: "sqlite",
			DBPath: filepath.Join(t.TempDir(), "test.db"),
		},
	}

	db, err := NewSQLiteDB(cfg, logger.NewLogger("ERROR", "test"))
	assert.NoError(t, err)
	assert.NoError(t, db.Initialize())
	t.Cleanup(func() { db.Close() })

	return db
}

func testAggregate() *models.MTestAggregate {
	run := models.MRunResult{
		ID:          "run-abc",
		ProfileName: "MEASURE_M",
		SpeedMMs:    0.0125,
		Samples: []models.MSample{
			{Elapsed: 0.0, Force: 0.001, Position: 0.0},
			{Elapsed: 0.1, Force: 0.004, Position: 0.00125},
		},
		PeakForce: 0.004,
		Duration:  0.1,
		CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}

	return &models.MTestAggregate{
		ProfileName: "MEASURE_M",
		SpeedMMs:    0.0125,
		Runs:        []models.MRunResult{run},
		PeakForces:  []float64{0.004},
	}
}

// -----------------------------------------------------------------------------

func TestSaveRunsPersistsRunsAndSamples(t *testing.T) {
	db := newTestDB(t)

	assert.NoError(t, db.SaveRuns([]*models.MTestAggregate{testAggregate()}))

	var runCount int
	assert.NoError(t, db.DB.QueryRow("SELECT COUNT(*) FROM runs").Scan(&runCount))
	assert.Equal(t, 1, runCount)

	var sampleCount int
	assert.NoError(t, db.DB.QueryRow("SELECT COUNT(*) FROM samples WHERE run_id = 'run-abc'").Scan(&sampleCount))
	assert.Equal(t, 2, sampleCount)

	var profile string
	var peak float64
	assert.NoError(t, db.DB.QueryRow("SELECT profile, peak_force FROM runs WHERE id = 'run-abc'").Scan(&profile, &peak))
	assert.Equal(t, "MEASURE_M", profile)
	assert.Equal(t, 0.004, peak)
}

// -----------------------------------------------------------------------------

func TestSaveRunsIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	aggs := []*models.MTestAggregate{testAggregate()}

	assert.NoError(t, db.SaveRuns(aggs))
	assert.NoError(t, db.SaveRuns(aggs))

	var runCount int
	assert.NoError(t, db.DB.QueryRow("SELECT COUNT(*) FROM runs").Scan(&runCount))
	assert.Equal(t, 1, runCount)
}

// -----------------------------------------------------------------------------

func TestSaveStatisticsUpserts(t *testing.T) {
	db := newTestDB(t)

	first := map[string]models.MStatistics{
		"MEASURE_M": {RunCount: 1, Mean: 0.004, Min: 0.004, Max: 0.004},
	}
	assert.NoError(t, db.SaveStatistics(first))

	second := map[string]models.MStatistics{
		"MEASURE_M": {RunCount: 2, Mean: 0.0045, Std: 0.0005, RSDPercent: 11.1, Min: 0.004, Max: 0.005},
	}
	assert.NoError(t, db.SaveStatistics(second))

	var count, runCount int
	var mean float64
	assert.NoError(t, db.DB.QueryRow("SELECT COUNT(*) FROM profile_stats").Scan(&count))
	assert.Equal(t, 1, count)

	assert.NoError(t, db.DB.QueryRow("SELECT run_count, mean_peak FROM profile_stats WHERE profile = 'MEASURE_M'").Scan(&runCount, &mean))
	assert.Equal(t, 2, runCount)
	assert.Equal(t, 0.0045, mean)
}

// -----------------------------------------------------------------------------

func TestSaveEmptyInputsAreNoOps(t *testing.T) {
	db := newTestDB(t)

	assert.NoError(t, db.SaveRuns(nil))
	assert.NoError(t, db.SaveStatistics(nil))
}
