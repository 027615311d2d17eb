package protocol

import (
	"encoding/json"
	"strings"

	"github.com/Guide5210/Tensiometer-Arduino/src/models"
)

// -----------------------------------------------------------------------------
// Wire markers. The device emits newline-delimited text: JSON sample payloads
// interleaved with marker tokens and free-form status lines.
// -----------------------------------------------------------------------------

const (
	MarkerStreamStart = "DATA_START"
	MarkerStreamEnd   = "END_STREAM"
	MarkerHomeReached = "HOME_REACHED"

	// Info-line prefixes/tokens interpreted only by the auto-sequence and
	// calibration paths. The codec itself classifies them as Info.
	testAnnouncePrefix     = "TEST:"
	markerSequenceComplete = "SEQUENCE_COMPLETE"
	markerCalibrationDone  = "CAL_DONE"
)

// -----------------------------------------------------------------------------
// Outgoing commands
// -----------------------------------------------------------------------------

type Command string

const (
	CmdTare         Command = "T"
	CmdSetHome      Command = "0"
	CmdGoHome       Command = "H"
	CmdMonitor      Command = "M"
	CmdCalibrate    Command = "C"
	CmdAutoSequence Command = "A"
	CmdCancel       Command = "Q"
)

// ProfileCommand builds the command selecting a test profile by id.
func ProfileCommand(id string) Command {
	return Command(id)
}

// -----------------------------------------------------------------------------
// Decoded line classification
// -----------------------------------------------------------------------------

type LineKind int

const (
	LineEmpty LineKind = iota
	LineSample
	LineMalformed
	LineStreamStart
	LineStreamEnd
	LineHomeReached
	LineInfo
)

func (k LineKind) String() string {
	switch k {
	case LineEmpty:
		return "empty"
	case LineSample:
		return "sample"
	case LineMalformed:
		return "malformed"
	case LineStreamStart:
		return "stream_start"
	case LineStreamEnd:
		return "stream_end"
	case LineHomeReached:
		return "home_reached"
	case LineInfo:
		return "info"
	}
	return "unknown"
}

// Line is one classified incoming line. Sample is valid only for LineSample,
// Text only for LineInfo.
type Line struct {
	Kind   LineKind
	Sample models.MSample
	Text   string
}

// -----------------------------------------------------------------------------
// Codec
// -----------------------------------------------------------------------------

type Codec struct{}

func NewCodec() *Codec {
	return &Codec{}
}

// -----------------------------------------------------------------------------

// samplePayload uses pointer fields so an absent key is distinguishable from
// a zero value: any nil field means the payload is malformed.
type samplePayload struct {
	T *float64 `json:"t"`
	F *float64 `json:"f"`
	P *float64 `json:"p"`
}

// -----------------------------------------------------------------------------

// Decode classifies one raw line from the device.
func (c *Codec) Decode(raw string) Line {
	text := strings.TrimSpace(raw)

	if text == "" {
		return Line{Kind: LineEmpty}
	}

	// Structured sample payloads are self-delimited JSON objects.
	if strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}") {
		var payload samplePayload
		if err := json.Unmarshal([]byte(text), &payload); err != nil {
			return Line{Kind: LineMalformed, Text: text}
		}
		if payload.T == nil || payload.F == nil || payload.P == nil {
			return Line{Kind: LineMalformed, Text: text}
		}
		return Line{
			Kind: LineSample,
			Sample: models.MSample{
				Elapsed:  *payload.T,
				Force:    *payload.F,
				Position: *payload.P,
			},
		}
	}

	switch {
	case strings.Contains(text, MarkerStreamEnd):
		return Line{Kind: LineStreamEnd}
	case strings.Contains(text, MarkerStreamStart):
		return Line{Kind: LineStreamStart}
	case strings.Contains(text, MarkerHomeReached):
		return Line{Kind: LineHomeReached}
	}

	// Anything else is surfaced to the operator, never parsed further here.
	return Line{Kind: LineInfo, Text: text}
}

// -----------------------------------------------------------------------------

// EncodeCommand renders an outgoing command with the terminator the device
// expects.
func (c *Codec) EncodeCommand(cmd Command) string {
	return string(cmd) + "\n"
}

// -----------------------------------------------------------------------------
// Info-line helpers. These keep protocol string knowledge out of the session
// layer; only the paths that need them call them.
// -----------------------------------------------------------------------------

// TestAnnouncement extracts the profile name from a "TEST:<NAME>" info line.
func TestAnnouncement(text string) (string, bool) {
	if !strings.HasPrefix(text, testAnnouncePrefix) {
		return "", false
	}
	name := strings.TrimSpace(strings.TrimPrefix(text, testAnnouncePrefix))
	if name == "" {
		return "", false
	}
	return name, true
}

// -----------------------------------------------------------------------------

// IsSequenceComplete reports whether an info line marks the end of an auto
// sequence.
func IsSequenceComplete(text string) bool {
	return strings.Contains(text, markerSequenceComplete)
}

// -----------------------------------------------------------------------------

// IsCalibrationDone reports whether an info line marks the end of the
// calibration dialogue.
func IsCalibrationDone(text string) bool {
	return strings.Contains(text, markerCalibrationDone)
}
