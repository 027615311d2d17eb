package models

// -----------------------------------------------------------------------------
// Live server state / websocket payloads
// -----------------------------------------------------------------------------

// MLatestData is both the snapshot held by the status server and the delta
// pushed to websocket clients. Type is "INITIAL" on connect, then "STATE",
// "SAMPLE" or "RUN" depending on what changed.
type MLatestData struct {
	Type       string                 `json:"type"`
	State      string                 `json:"state"`
	Sample     *MSample               `json:"sample,omitempty"`
	Run        *MRunSummary           `json:"run,omitempty"`
	Aggregates map[string]MStatistics `json:"aggregates,omitempty"`
	Timestamp  int64                  `json:"timestamp"`
}
