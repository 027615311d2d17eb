package interfaces

import "github.com/Guide5210/Tensiometer-Arduino/src/models"

// -----------------------------------------------------------------------------
// IDatabase defines the contract for storage operations.
// -----------------------------------------------------------------------------

type IDatabase interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SaveRuns persists every recorded run and its samples.
	SaveRuns(aggs []*models.MTestAggregate) error

	// -----------------------------------------------------------------------------

	// SaveStatistics upserts the per-profile peak-force statistics.
	SaveStatistics(stats map[string]models.MStatistics) error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
