package catalog

import (
	"time"

	"github.com/Guide5210/Tensiometer-Arduino/src/models"
)

// -----------------------------------------------------------------------------
// Catalog is the static host-side table of test profiles. It must mirror the
// device firmware's own table by convention; the protocol carries no handshake
// to verify the two sides agree, so a mismatch is invisible to this layer.
// -----------------------------------------------------------------------------

type Catalog struct {
	profiles []models.MTestProfile
	byID     map[string]models.MTestProfile
	byName   map[string]models.MTestProfile

	travelMM     float64
	settleMargin time.Duration
	returnBuffer time.Duration
}

// -----------------------------------------------------------------------------

// defaultProfiles mirrors the firmware table: ids 1-8, fastest first.
func defaultProfiles() []models.MTestProfile {
	return []models.MTestProfile{
		{ID: "1", Name: "ULTRA_FAST", SpeedMMs: 1.000, Description: "Ultra Fast (1 mm/s)"},
		{ID: "2", Name: "FAST_UP", SpeedMMs: 0.750, Description: "Fast Up (750 µm/s)"},
		{ID: "3", Name: "FAST_DOWN", SpeedMMs: 0.250, Description: "Fast Down (250 µm/s)"},
		{ID: "4", Name: "MEASURE_F", SpeedMMs: 0.03125, Description: "Measure Fast (31.25 µm/s)"},
		{ID: "5", Name: "MEASURE_M", SpeedMMs: 0.0125, Description: "Measure Medium (12.5 µm/s)"},
		{ID: "6", Name: "MEASURE_U", SpeedMMs: 0.00625, Description: "Measure Ultra (6.25 µm/s)"},
		{ID: "7", Name: "MEASURE_X", SpeedMMs: 0.003125, Description: "Measure Extra (3.125 µm/s)"},
		{ID: "8", Name: "MEASURE_Z", SpeedMMs: 0.00125, Description: "Measure Zero (1.25 µm/s)"},
	}
}

// -----------------------------------------------------------------------------

// NewCatalog builds the catalog with the rig geometry taken from config.
func NewCatalog(cfg *models.MConfig) *Catalog {
	c := &Catalog{
		profiles:     defaultProfiles(),
		byID:         make(map[string]models.MTestProfile),
		byName:       make(map[string]models.MTestProfile),
		travelMM:     cfg.Rig.TravelMM,
		settleMargin: time.Duration(cfg.Rig.SettleMarginSeconds * float64(time.Second)),
		returnBuffer: time.Duration(cfg.Rig.ReturnBufferSeconds * float64(time.Second)),
	}

	for _, p := range c.profiles {
		c.byID[p.ID] = p
		c.byName[p.Name] = p
	}

	return c
}

// -----------------------------------------------------------------------------

// ByID looks up a profile by its single-digit command id
func (c *Catalog) ByID(id string) (models.MTestProfile, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// -----------------------------------------------------------------------------

// ByName looks up a profile by its device-reported name
func (c *Catalog) ByName(name string) (models.MTestProfile, bool) {
	p, ok := c.byName[name]
	return p, ok
}

// -----------------------------------------------------------------------------

// ByPosition returns the i-th profile in catalog order (0-based)
func (c *Catalog) ByPosition(i int) (models.MTestProfile, bool) {
	if i < 0 || i >= len(c.profiles) {
		return models.MTestProfile{}, false
	}
	return c.profiles[i], true
}

// -----------------------------------------------------------------------------

// Profiles returns all profiles in catalog order
func (c *Catalog) Profiles() []models.MTestProfile {
	return c.profiles
}

// -----------------------------------------------------------------------------

// Count returns the number of profiles (the expected auto-sequence length)
func (c *Catalog) Count() int {
	return len(c.profiles)
}

// -----------------------------------------------------------------------------

// EstimateDuration computes the advisory streaming deadline for a profile:
// full travel at the nominal speed plus a settle margin, plus the return
// travel buffer when the caller waits for the reference-reached marker.
// Profiles span three orders of magnitude in speed, so this can never be a
// fixed constant. The estimate is advisory: the reader still honors an early
// end marker, and exceeding it is reported, not fatal.
func (c *Catalog) EstimateDuration(p models.MTestProfile, includeReturn bool) time.Duration {
	d := time.Duration(c.travelMM / p.SpeedMMs * float64(time.Second))
	d += c.settleMargin
	if includeReturn {
		d += c.returnBuffer
	}
	return d
}

// -----------------------------------------------------------------------------

// MaxEstimate returns the largest duration estimate over the whole catalog.
// Used for auto sequences, where the host does not know in advance which
// profile the device will run next.
func (c *Catalog) MaxEstimate(includeReturn bool) time.Duration {
	var max time.Duration
	for _, p := range c.profiles {
		if d := c.EstimateDuration(p, includeReturn); d > max {
			max = d
		}
	}
	return max
}
