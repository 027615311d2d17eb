package interfaces

import "github.com/Guide5210/Tensiometer-Arduino/src/models"

// -----------------------------------------------------------------------------
// IDataExchanger defines the interface for sharing live session data with
// external observers (status server / websocket clients).
// -----------------------------------------------------------------------------

type IDataExchanger interface {

	// UpdateSessionState records the current session mode in the server state
	// and pushes it to connected clients.
	UpdateSessionState(state string)

	// -----------------------------------------------------------------------------

	// UpdateAggregates replaces the per-profile statistics snapshot.
	UpdateAggregates(stats map[string]models.MStatistics)

	// -----------------------------------------------------------------------------

	// BroadcastSample pushes one live sample. Best effort: slow consumers are
	// dropped rather than blocking the acquisition path.
	BroadcastSample(sample models.MSample)

	// -----------------------------------------------------------------------------

	// BroadcastRun pushes a completed-run summary.
	BroadcastRun(run models.MRunSummary)

	// -----------------------------------------------------------------------------

	// Start the server
	Start() error

	// -----------------------------------------------------------------------------

	// Stop the server gracefully
	Stop() error
}
