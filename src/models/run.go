package models

import "time"

// -----------------------------------------------------------------------------
// Run results and per-profile aggregates
// -----------------------------------------------------------------------------

// MRunResult is one completed execution of a profile.
type MRunResult struct {
	ID          string    `json:"id"`
	ProfileName string    `json:"profile_name"`
	SpeedMMs    float64   `json:"speed_mm_s"`
	Samples     []MSample `json:"samples"`
	PeakForce   float64   `json:"peak_force"` // 0 for an empty sample buffer
	Duration    float64   `json:"duration"`   // last sample's elapsed time, seconds
	CreatedAt   time.Time `json:"created_at"`
}

// -----------------------------------------------------------------------------

// MTestAggregate collects every run recorded for one profile.
// Invariant: len(Runs) == len(PeakForces). Runs are only appended, never
// reordered or overwritten; repeating a test adds a new run.
type MTestAggregate struct {
	ProfileName string      `json:"profile_name"`
	SpeedMMs    float64     `json:"speed_mm_s"`
	Runs        []MRunResult `json:"runs"`
	PeakForces  []float64   `json:"peak_forces"`
}

// -----------------------------------------------------------------------------

// MStatistics summarizes the peak forces of a profile's runs.
// Std uses the population form (denominator N).
type MStatistics struct {
	RunCount   int     `json:"run_count"`
	Mean       float64 `json:"mean"`
	Std        float64 `json:"std"`
	RSDPercent float64 `json:"rsd_percent"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
}

// -----------------------------------------------------------------------------

// MRunSummary is the lightweight shape broadcast to live observers when a run
// completes (the full sample buffer stays host-side).
type MRunSummary struct {
	ID          string  `json:"id"`
	ProfileName string  `json:"profile_name"`
	PeakForce   float64 `json:"peak_force"`
	SampleCount int     `json:"sample_count"`
	Duration    float64 `json:"duration"`
}
