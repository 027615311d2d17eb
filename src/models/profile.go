package models

// MTestProfile is one entry of the host-side test catalog. The table must
// mirror the device firmware's own profile table; there is no handshake to
// verify the two sides agree.
type MTestProfile struct {
	ID          string  `json:"id"` // the single-digit command selecting it
	Name        string  `json:"name"`
	SpeedMMs    float64 `json:"speed_mm_s"` // nominal actuation speed
	Description string  `json:"description"`
}
