package models

// MSample represents one measurement tick streamed by the device.
type MSample struct {
	Elapsed  float64 `json:"elapsed"`  // seconds since test start
	Force    float64 `json:"force"`    // newtons
	Position float64 `json:"position"` // millimeters
}
