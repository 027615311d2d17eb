package core

import (
	"github.com/Guide5210/Tensiometer-Arduino/src/models"

	"github.com/montanaflynn/stats"
)

// -----------------------------------------------------------------------------

// Describe computes peak-force statistics over a run series. Std uses the
// population form (denominator N, not N-1): the runs recorded ARE the
// population being summarized, not a sample from a larger one. The zero value
// is returned for an empty series; callers guard run count themselves.
func Describe(data []float64) models.MStatistics {
	if len(data) == 0 {
		return models.MStatistics{}
	}

	mean, _ := stats.Mean(data)

	// For a single run, std = 0
	std := 0.0
	if len(data) > 1 {
		std, _ = stats.StandardDeviationPopulation(data)
	}

	min, _ := stats.Min(data)
	max, _ := stats.Max(data)

	rsd := 0.0
	if mean != 0 {
		rsd = std / mean * 100
	}

	return models.MStatistics{
		RunCount:   len(data),
		Mean:       mean,
		Std:        std,
		RSDPercent: rsd,
		Min:        min,
		Max:        max,
	}
}

// -----------------------------------------------------------------------------

// PeakForce returns the maximum force over a sample buffer, 0 for an empty
// buffer. The degenerate case is a defined value, not an error.
func PeakForce(samples []models.MSample) float64 {
	peak := 0.0
	for i, s := range samples {
		if i == 0 || s.Force > peak {
			peak = s.Force
		}
	}
	return peak
}

// -----------------------------------------------------------------------------

// Duration returns the last sample's elapsed time, 0 for an empty buffer.
func Duration(samples []models.MSample) float64 {
	if len(samples) == 0 {
		return 0
	}
	return samples[len(samples)-1].Elapsed
}
