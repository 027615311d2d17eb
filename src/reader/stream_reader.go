package reader

import (
	"context"
	"time"

	"github.com/Guide5210/Tensiometer-Arduino/src/interfaces"
	"github.com/Guide5210/Tensiometer-Arduino/src/logger"
	"github.com/Guide5210/Tensiometer-Arduino/src/models"
	"github.com/Guide5210/Tensiometer-Arduino/src/protocol"
)

// -----------------------------------------------------------------------------
// Stream outcomes
// -----------------------------------------------------------------------------

type Outcome int

const (
	// OutcomeCompleted: a clean end marker arrived (and, when required, the
	// reference-reached acknowledgement after it).
	OutcomeCompleted Outcome = iota

	// OutcomeTimedOut: the deadline elapsed first. Collected samples are
	// returned as-is; the caller decides whether partial data is usable.
	OutcomeTimedOut

	// OutcomeCancelled: the context was cancelled. The buffer is discarded.
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeTimedOut:
		return "timed_out"
	case OutcomeCancelled:
		return "cancelled"
	}
	return "unknown"
}

// -----------------------------------------------------------------------------

// Result is everything one streaming session produced.
type Result struct {
	Samples  []models.MSample
	Outcome  Outcome
	Decoded  int // valid sample lines
	Skipped  int // malformed sample lines
	EndSeen  bool
	HomeSeen bool
}

// -----------------------------------------------------------------------------
// StreamReader consumes lines from the channel until an end marker, the
// deadline, or cancellation. Samples are appended in arrival order; info
// lines are forwarded to the observer and never affect control flow.
// -----------------------------------------------------------------------------

type StreamReader struct {
	Channel interfaces.ILineChannel
	Codec   *protocol.Codec
	Logger  *logger.Logger

	// Poll bounds how long a single read may block, so the deadline and an
	// external cancellation are observed within one interval.
	Poll time.Duration

	// InfoObserver receives free-text device lines. Best effort; must not
	// block.
	InfoObserver func(text string)

	// SampleObserver receives each decoded sample as it arrives, for live
	// broadcast. Must not block.
	SampleObserver func(sample models.MSample)
}

// -----------------------------------------------------------------------------

const defaultPoll = 100 * time.Millisecond

func NewStreamReader(ch interfaces.ILineChannel, log *logger.Logger) *StreamReader {
	return &StreamReader{
		Channel: ch,
		Codec:   protocol.NewCodec(),
		Logger:  log,
		Poll:    defaultPoll,
	}
}

// -----------------------------------------------------------------------------

// Stream reads until one of the three terminal conditions. When
// requireHomeAfterEnd is set, the device keeps moving back to its reference
// position after the data burst; the stream only counts as complete once the
// reference-reached marker arrives, and further samples past the end marker
// are ignored. A returned error means the channel itself failed, which is
// fatal for the session.
func (r *StreamReader) Stream(ctx context.Context, deadline time.Time, requireHomeAfterEnd bool) (*Result, error) {
	res := &Result{}

	poll := r.Poll
	if poll <= 0 {
		poll = defaultPoll
	}

	for {
		select {
		case <-ctx.Done():
			res.Samples = nil
			res.Outcome = OutcomeCancelled
			return res, nil
		default:
		}

		if !time.Now().Before(deadline) {
			// An end marker without the required acknowledgement still counts
			// as incomplete: the device may be mid-travel and unsafe to
			// command.
			res.Outcome = OutcomeTimedOut
			return res, nil
		}

		wait := poll
		if remaining := time.Until(deadline); remaining < wait {
			wait = remaining
		}

		raw, ok, err := r.Channel.ReadLine(wait)
		if err != nil {
			return res, err
		}
		if !ok {
			continue
		}

		line := r.Codec.Decode(raw)

		switch line.Kind {
		case protocol.LineSample:
			if res.EndSeen {
				// Post-end samples belong to the return travel, not the run.
				continue
			}
			res.Samples = append(res.Samples, line.Sample)
			res.Decoded++
			if r.SampleObserver != nil {
				r.SampleObserver(line.Sample)
			}

		case protocol.LineMalformed:
			res.Skipped++

		case protocol.LineStreamStart:
			// Burst delimiter; nothing to do, samples follow.

		case protocol.LineStreamEnd:
			res.EndSeen = true
			if !requireHomeAfterEnd {
				res.Outcome = OutcomeCompleted
				return res, nil
			}

		case protocol.LineHomeReached:
			res.HomeSeen = true
			if res.EndSeen {
				res.Outcome = OutcomeCompleted
				return res, nil
			}

		case protocol.LineInfo:
			if r.InfoObserver != nil {
				r.InfoObserver(line.Text)
			}

		case protocol.LineEmpty:
			// Ignored.
		}
	}
}
