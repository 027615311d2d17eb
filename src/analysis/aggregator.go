package analysis

import (
	"fmt"
	"time"

	"github.com/Guide5210/Tensiometer-Arduino/src/analysis/core"
	"github.com/Guide5210/Tensiometer-Arduino/src/logger"
	"github.com/Guide5210/Tensiometer-Arduino/src/models"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// RunAggregator owns the per-profile collection of runs and their derived
// statistics. First run and repeat run are the same code path: recording
// always appends, never overwrites. All recording happens on the single
// session control path, so no locking is needed here.
// -----------------------------------------------------------------------------

type RunAggregator struct {
	Logger *logger.Logger

	order     []string // profile names, first-run order
	byName    map[string]*models.MTestAggregate
	totalRuns int
}

// -----------------------------------------------------------------------------

func NewRunAggregator(log *logger.Logger) *RunAggregator {
	return &RunAggregator{
		Logger: log,
		byName: make(map[string]*models.MTestAggregate),
	}
}

// -----------------------------------------------------------------------------

// RecordRun takes ownership of a completed sample buffer, computes its peak
// force, and appends the run to the profile's aggregate (creating the
// aggregate on the profile's first run).
func (a *RunAggregator) RecordRun(profileName string, speedMMs float64, samples []models.MSample) models.MRunResult {
	run := models.MRunResult{
		ID:          uuid.NewString(),
		ProfileName: profileName,
		SpeedMMs:    speedMMs,
		Samples:     samples,
		PeakForce:   core.PeakForce(samples),
		Duration:    core.Duration(samples),
		CreatedAt:   time.Now().UTC(),
	}

	agg, ok := a.byName[profileName]
	if !ok {
		agg = &models.MTestAggregate{
			ProfileName: profileName,
			SpeedMMs:    speedMMs,
		}
		a.byName[profileName] = agg
		a.order = append(a.order, profileName)
	}

	agg.Runs = append(agg.Runs, run)
	agg.PeakForces = append(agg.PeakForces, run.PeakForce)
	a.totalRuns++

	a.Logger.Info("Recorded run %d for %s: peak %.5f N over %d samples",
		len(agg.Runs), profileName, run.PeakForce, len(samples))

	return run
}

// -----------------------------------------------------------------------------

// Statistics summarizes the peak forces recorded for one profile. Errors when
// the profile has no runs; statistics over zero runs are undefined.
func (a *RunAggregator) Statistics(profileName string) (models.MStatistics, error) {
	agg, ok := a.byName[profileName]
	if !ok || len(agg.PeakForces) == 0 {
		return models.MStatistics{}, fmt.Errorf("no runs recorded for profile %s", profileName)
	}
	return core.Describe(agg.PeakForces), nil
}

// -----------------------------------------------------------------------------

// AllStatistics returns the statistics snapshot for every profile with at
// least one run.
func (a *RunAggregator) AllStatistics() map[string]models.MStatistics {
	out := make(map[string]models.MStatistics, len(a.order))
	for _, name := range a.order {
		agg := a.byName[name]
		if len(agg.PeakForces) > 0 {
			out[name] = core.Describe(agg.PeakForces)
		}
	}
	return out
}

// -----------------------------------------------------------------------------

// Aggregates returns every aggregate in first-run order.
func (a *RunAggregator) Aggregates() []*models.MTestAggregate {
	out := make([]*models.MTestAggregate, 0, len(a.order))
	for _, name := range a.order {
		out = append(out, a.byName[name])
	}
	return out
}

// -----------------------------------------------------------------------------

// TotalRuns returns the number of runs recorded across all profiles.
func (a *RunAggregator) TotalRuns() int {
	return a.totalRuns
}

// -----------------------------------------------------------------------------

// Reset discards every recorded run. Whole-session reset only; there is no
// per-profile removal.
func (a *RunAggregator) Reset() {
	a.order = nil
	a.byName = make(map[string]*models.MTestAggregate)
	a.totalRuns = 0
	a.Logger.Info("All recorded data cleared")
}
