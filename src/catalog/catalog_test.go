package catalog

import (
	"testing"
	"time"

	"github.com/Guide5210/Tensiometer-Arduino/src/models"

	"github.com/stretchr/testify/assert"
)

// -----------------------------------------------------------------------------

func testConfig() *models.MConfig {
	return &models.MConfig{
		Rig: models.MRigConfig{
			TravelMM:            15.0,
			SettleMarginSeconds: 5,
			ReturnBufferSeconds: 10,
		},
	}
}

// -----------------------------------------------------------------------------

func TestCatalogLookups(t *testing.T) {
	c := NewCatalog(testConfig())

	assert.Equal(t, 8, c.Count())

	p, ok := c.ByID("1")
	assert.True(t, ok)
	assert.Equal(t, "ULTRA_FAST", p.Name)
	assert.Equal(t, 1.0, p.SpeedMMs)

	p, ok = c.ByName("MEASURE_Z")
	assert.True(t, ok)
	assert.Equal(t, "8", p.ID)
	assert.Equal(t, 0.00125, p.SpeedMMs)

	p, ok = c.ByPosition(0)
	assert.True(t, ok)
	assert.Equal(t, "ULTRA_FAST", p.Name)

	_, ok = c.ByID("9")
	assert.False(t, ok)
	_, ok = c.ByName("NOPE")
	assert.False(t, ok)
	_, ok = c.ByPosition(8)
	assert.False(t, ok)
}

// -----------------------------------------------------------------------------

func TestEstimateDurationScalesWithSpeed(t *testing.T) {
	c := NewCatalog(testConfig())

	fast, _ := c.ByName("ULTRA_FAST")
	slow, _ := c.ByName("MEASURE_Z")

	// 15 mm at 1 mm/s plus 5 s settle
	assert.Equal(t, 20*time.Second, c.EstimateDuration(fast, false))
	// plus 10 s return buffer
	assert.Equal(t, 30*time.Second, c.EstimateDuration(fast, true))

	// 15 mm at 1.25 um/s is 12000 s of travel
	assert.Equal(t, 12015*time.Second, c.EstimateDuration(slow, true))
}

// -----------------------------------------------------------------------------

func TestMaxEstimateIsTheSlowestProfile(t *testing.T) {
	c := NewCatalog(testConfig())

	slow, _ := c.ByName("MEASURE_Z")
	assert.Equal(t, c.EstimateDuration(slow, true), c.MaxEstimate(true))
}

// -----------------------------------------------------------------------------

func TestProfilesAreOrderedFastestFirst(t *testing.T) {
	c := NewCatalog(testConfig())

	profiles := c.Profiles()
	for i := 1; i < len(profiles); i++ {
		assert.Greater(t, profiles[i-1].SpeedMMs, profiles[i].SpeedMMs)
	}
}
