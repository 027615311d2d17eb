package interfaces

import "github.com/Guide5210/Tensiometer-Arduino/src/models"

// -----------------------------------------------------------------------------
// IReporter renders the engine's result structures into an output artifact
// (spreadsheet, CSV files, plain-text summary). Reporters never mutate the
// aggregates they are handed.
// -----------------------------------------------------------------------------

type IReporter interface {

	// Name returns a short identifier used in logs ("excel", "csv", ...).
	Name() string

	// -----------------------------------------------------------------------------

	// Write renders all recorded runs and their statistics.
	Write(aggs []*models.MTestAggregate, stats map[string]models.MStatistics) error
}
