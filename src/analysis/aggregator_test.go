package analysis

import (
	"testing"

	"github.com/Guide5210/Tensiometer-Arduino/src/logger"
	"github.com/Guide5210/Tensiometer-Arduino/src/models"

	"github.com/stretchr/testify/assert"
)

// -----------------------------------------------------------------------------

func testLogger() *logger.Logger {
	return logger.NewLogger("ERROR", "test")
}

func samplesWithPeak(peak float64) []models.MSample {
	return []models.MSample{
		{Elapsed: 0.0, Force: peak / 2, Position: 0.0},
		{Elapsed: 0.5, Force: peak, Position: 0.5},
		{Elapsed: 1.0, Force: peak / 4, Position: 1.0},
	}
}

// -----------------------------------------------------------------------------

func TestRecordRunAppendsInOrder(t *testing.T) {
	a := NewRunAggregator(testLogger())

	a.RecordRun("MEASURE_M", 0.0125, samplesWithPeak(0.010))
	a.RecordRun("MEASURE_M", 0.0125, samplesWithPeak(0.012))
	a.RecordRun("MEASURE_M", 0.0125, samplesWithPeak(0.011))

	aggs := a.Aggregates()
	assert.Len(t, aggs, 1)
	assert.Len(t, aggs[0].Runs, 3)
	assert.Equal(t, []float64{0.010, 0.012, 0.011}, aggs[0].PeakForces)
	assert.Equal(t, 3, a.TotalRuns())
}

// -----------------------------------------------------------------------------

func TestStatisticsOverThreeRuns(t *testing.T) {
	a := NewRunAggregator(testLogger())

	a.RecordRun("MEASURE_M", 0.0125, samplesWithPeak(0.010))
	a.RecordRun("MEASURE_M", 0.0125, samplesWithPeak(0.012))
	a.RecordRun("MEASURE_M", 0.0125, samplesWithPeak(0.011))

	s, err := a.Statistics("MEASURE_M")

	assert.NoError(t, err)
	assert.Equal(t, 3, s.RunCount)
	assert.InDelta(t, 0.011, s.Mean, 1e-12)
	assert.Equal(t, 0.010, s.Min)
	assert.Equal(t, 0.012, s.Max)
}

// -----------------------------------------------------------------------------

func TestStatisticsUsePopulationStdDev(t *testing.T) {
	a := NewRunAggregator(testLogger())

	a.RecordRun("MEASURE_U", 0.00625, samplesWithPeak(0.00420))
	a.RecordRun("MEASURE_U", 0.00625, samplesWithPeak(0.00455))

	s, err := a.Statistics("MEASURE_U")

	assert.NoError(t, err)
	assert.InDelta(t, 0.004375, s.Mean, 1e-9)
	// Population (N denominator), not sample (N-1)
	assert.InDelta(t, 0.000175, s.Std, 1e-9)
	assert.InDelta(t, 4.0, s.RSDPercent, 1e-6)
}

// -----------------------------------------------------------------------------

func TestStatisticsSingleRunHasZeroSpread(t *testing.T) {
	a := NewRunAggregator(testLogger())

	a.RecordRun("FAST_UP", 0.750, samplesWithPeak(0.008))

	s, err := a.Statistics("FAST_UP")

	assert.NoError(t, err)
	assert.Equal(t, 1, s.RunCount)
	assert.Equal(t, 0.008, s.Mean)
	assert.Equal(t, 0.0, s.Std)
	assert.Equal(t, 0.0, s.RSDPercent)
}

// -----------------------------------------------------------------------------

func TestStatisticsErrorsWithoutRuns(t *testing.T) {
	a := NewRunAggregator(testLogger())

	_, err := a.Statistics("MEASURE_Z")
	assert.Error(t, err)
}

// -----------------------------------------------------------------------------

func TestRecordRunEmptyBufferHasZeroPeak(t *testing.T) {
	a := NewRunAggregator(testLogger())

	run := a.RecordRun("ULTRA_FAST", 1.0, nil)

	assert.Equal(t, 0.0, run.PeakForce)
	assert.Equal(t, 0.0, run.Duration)
	assert.Equal(t, 1, a.TotalRuns())
}

// -----------------------------------------------------------------------------

func TestAggregatesKeepFirstRunOrder(t *testing.T) {
	a := NewRunAggregator(testLogger())

	a.RecordRun("MEASURE_Z", 0.00125, samplesWithPeak(0.004))
	a.RecordRun("ULTRA_FAST", 1.0, samplesWithPeak(0.009))
	a.RecordRun("MEASURE_Z", 0.00125, samplesWithPeak(0.005))

	aggs := a.Aggregates()
	assert.Len(t, aggs, 2)
	assert.Equal(t, "MEASURE_Z", aggs[0].ProfileName)
	assert.Equal(t, "ULTRA_FAST", aggs[1].ProfileName)
	assert.Len(t, aggs[0].Runs, 2)
}

// -----------------------------------------------------------------------------

func TestAllStatisticsCoversEveryProfile(t *testing.T) {
	a := NewRunAggregator(testLogger())

	a.RecordRun("FAST_UP", 0.750, samplesWithPeak(0.007))
	a.RecordRun("FAST_DOWN", 0.250, samplesWithPeak(0.006))

	all := a.AllStatistics()
	assert.Len(t, all, 2)
	assert.Equal(t, 0.007, all["FAST_UP"].Mean)
	assert.Equal(t, 0.006, all["FAST_DOWN"].Mean)
}

// -----------------------------------------------------------------------------

func TestResetDiscardsEverything(t *testing.T) {
	a := NewRunAggregator(testLogger())

	a.RecordRun("MEASURE_F", 0.03125, samplesWithPeak(0.005))
	a.Reset()

	assert.Equal(t, 0, a.TotalRuns())
	assert.Empty(t, a.Aggregates())
	_, err := a.Statistics("MEASURE_F")
	assert.Error(t, err)
}
