package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// -----------------------------------------------------------------------------

func TestDecodeSampleLine(t *testing.T) {
	c := NewCodec()

	line := c.Decode(`{"t": 1.250, "f": 0.00431, "p": 3.1250}`)

	assert.Equal(t, LineSample, line.Kind)
	assert.Equal(t, 1.250, line.Sample.Elapsed)
	assert.Equal(t, 0.00431, line.Sample.Force)
	assert.Equal(t, 3.1250, line.Sample.Position)
}

// -----------------------------------------------------------------------------

func TestDecodeSampleWithZeroValues(t *testing.T) {
	c := NewCodec()

	// Zero is a legitimate reading and must not be confused with a missing key
	line := c.Decode(`{"t": 0, "f": 0, "p": 0}`)

	assert.Equal(t, LineSample, line.Kind)
	assert.Equal(t, 0.0, line.Sample.Force)
}

// -----------------------------------------------------------------------------

func TestDecodeMalformedPayloads(t *testing.T) {
	c := NewCodec()

	cases := []string{
		`{"t": 1.0, "f": 0.004}`,            // missing position
		`{"t": 1.0, "p": 3.0}`,              // missing force
		`{"f": 0.004, "p": 3.0}`,            // missing time
		`{"t": "abc", "f": 1, "p": 2}`,      // wrong type
		`{"t": 1.0, "f": 0.004, "p": null}`, // explicit null
		`{"t": 1.0, "f": 0.004, "p": }`,     // broken JSON inside the braces
	}

	for _, raw := range cases {
		line := c.Decode(raw)
		assert.Equal(t, LineMalformed, line.Kind, "input: %s", raw)
	}
}

// -----------------------------------------------------------------------------

func TestDecodeTruncatedBraceOnlyIsInfo(t *testing.T) {
	c := NewCodec()

	// Without the closing brace the line is not self-delimited JSON, so it
	// falls through to the info classification.
	assert.Equal(t, LineInfo, c.Decode(`{"t": 1.0, "f": 0.004`).Kind)
	assert.Equal(t, LineInfo, c.Decode(`{"t": 1.0, "f": 0.004, "p":`).Kind)
}

// -----------------------------------------------------------------------------

func TestDecodeMarkers(t *testing.T) {
	c := NewCodec()

	assert.Equal(t, LineStreamStart, c.Decode("DATA_START").Kind)
	assert.Equal(t, LineStreamEnd, c.Decode("END_STREAM").Kind)
	assert.Equal(t, LineHomeReached, c.Decode("HOME_REACHED").Kind)

	// Markers embedded in surrounding text still classify
	assert.Equal(t, LineStreamEnd, c.Decode(">> END_STREAM <<").Kind)
}

// -----------------------------------------------------------------------------

func TestDecodeEmptyAndWhitespace(t *testing.T) {
	c := NewCodec()

	assert.Equal(t, LineEmpty, c.Decode("").Kind)
	assert.Equal(t, LineEmpty, c.Decode("   \r").Kind)
}

// -----------------------------------------------------------------------------

func TestDecodeInfoLine(t *testing.T) {
	c := NewCodec()

	line := c.Decode("Taring load cell...")

	assert.Equal(t, LineInfo, line.Kind)
	assert.Equal(t, "Taring load cell...", line.Text)
}

// -----------------------------------------------------------------------------

func TestEncodeCommandAppendsTerminator(t *testing.T) {
	c := NewCodec()

	assert.Equal(t, "T\n", c.EncodeCommand(CmdTare))
	assert.Equal(t, "5\n", c.EncodeCommand(ProfileCommand("5")))
}

// -----------------------------------------------------------------------------

func TestTestAnnouncement(t *testing.T) {
	name, ok := TestAnnouncement("TEST:MEASURE_M")
	assert.True(t, ok)
	assert.Equal(t, "MEASURE_M", name)

	name, ok = TestAnnouncement("TEST: FAST_UP ")
	assert.True(t, ok)
	assert.Equal(t, "FAST_UP", name)

	_, ok = TestAnnouncement("TEST:")
	assert.False(t, ok)

	_, ok = TestAnnouncement("Starting test")
	assert.False(t, ok)
}

// -----------------------------------------------------------------------------

func TestSequenceAndCalibrationTokens(t *testing.T) {
	assert.True(t, IsSequenceComplete("SEQUENCE_COMPLETE"))
	assert.False(t, IsSequenceComplete("SEQUENCE"))

	assert.True(t, IsCalibrationDone("CAL_DONE"))
	assert.False(t, IsCalibrationDone("calibrating"))
}
