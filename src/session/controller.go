package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Guide5210/Tensiometer-Arduino/src/analysis"
	"github.com/Guide5210/Tensiometer-Arduino/src/catalog"
	"github.com/Guide5210/Tensiometer-Arduino/src/helpers"
	"github.com/Guide5210/Tensiometer-Arduino/src/interfaces"
	"github.com/Guide5210/Tensiometer-Arduino/src/logger"
	"github.com/Guide5210/Tensiometer-Arduino/src/models"
	"github.com/Guide5210/Tensiometer-Arduino/src/protocol"
	"github.com/Guide5210/Tensiometer-Arduino/src/reader"
	"github.com/Guide5210/Tensiometer-Arduino/src/utils"
)

// -----------------------------------------------------------------------------
// Session states
// -----------------------------------------------------------------------------

const (
	StateIdle         = "IDLE"
	StateConnecting   = "CONNECTING"
	StateMonitor      = "MONITOR"
	StateSingleTest   = "RUNNING_SINGLE_TEST"
	StateAutoSequence = "RUNNING_AUTO_SEQUENCE"
	StateCalibrating  = "CALIBRATING"
	StateHoming       = "HOMING"
	StateTerminated   = "TERMINATED"
)

// Default settle waits after utility commands. The device acknowledges these
// with free-text lines only, so the host drains for a fixed window instead of
// waiting on a marker.
const (
	defaultTareSettle    = 2 * time.Second
	defaultSetHomeSettle = 1 * time.Second
	defaultGoHomeSettle  = 3 * time.Second
)

// -----------------------------------------------------------------------------

// TestOutcome is the full result of one test attempt. Run is nil when nothing
// was recorded; Warning explains why (timeout or validation failure) so the
// operator can decide whether to retry or keep the partial data.
type TestOutcome struct {
	Profile models.MTestProfile
	Stream  *reader.Result
	Run     *models.MRunResult
	Warning error
}

// -----------------------------------------------------------------------------
// Controller owns the device dialogue. The protocol is half duplex with no
// request ids, so every operation runs on the single control path: at most one
// outstanding command, and all stream reads attributed to it.
// -----------------------------------------------------------------------------

type Controller struct {
	Config     *models.MConfig
	Logger     *logger.Logger
	Channel    interfaces.ILineChannel
	Reader     *reader.StreamReader
	Catalog    *catalog.Catalog
	Aggregator *analysis.RunAggregator
	Exchanger  interfaces.IDataExchanger
	Monitor    *utils.RingBuffer

	// Settle windows drained after the corresponding utility commands.
	// Overridable like Reader.Poll.
	TareSettle    time.Duration
	SetHomeSettle time.Duration
	GoHomeSettle  time.Duration

	codec *protocol.Codec

	mu    sync.Mutex
	state string

	// Auto-sequence bookkeeping, written only by the info observer which runs
	// on the control path.
	lastAnnounced string
	sequenceDone  bool
}

// -----------------------------------------------------------------------------

func NewController(cfg *models.MConfig, log *logger.Logger, ch interfaces.ILineChannel,
	cat *catalog.Catalog, agg *analysis.RunAggregator, ex interfaces.IDataExchanger) *Controller {

	c := &Controller{
		Config:     cfg,
		Logger:     log,
		Channel:    ch,
		Catalog:    cat,
		Aggregator: agg,
		Exchanger:  ex,
		Monitor:    utils.NewRingBuffer(cfg.Rig.MonitorBufferSize),
		codec:      protocol.NewCodec(),
		state:      StateIdle,

		TareSettle:    defaultTareSettle,
		SetHomeSettle: defaultSetHomeSettle,
		GoHomeSettle:  defaultGoHomeSettle,
	}

	c.Reader = reader.NewStreamReader(ch, log)
	if cfg.Serial.ReadTimeoutMs > 0 {
		c.Reader.Poll = time.Duration(cfg.Serial.ReadTimeoutMs) * time.Millisecond
	}
	c.Reader.InfoObserver = c.onInfoLine
	c.Reader.SampleObserver = c.onSample

	return c
}

// -----------------------------------------------------------------------------
// Observers, called synchronously from the stream loop
// -----------------------------------------------------------------------------

func (c *Controller) onInfoLine(text string) {
	if name, ok := protocol.TestAnnouncement(text); ok {
		c.lastAnnounced = name
		c.Logger.Info("Device starting test: %s", name)
		return
	}
	if protocol.IsSequenceComplete(text) {
		c.sequenceDone = true
		return
	}
	c.Logger.Info(">> %s", text)
}

// -----------------------------------------------------------------------------

func (c *Controller) onSample(sample models.MSample) {
	c.Monitor.Append(sample)
	if c.Exchanger != nil {
		c.Exchanger.BroadcastSample(sample)
	}
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

// Connect opens the serial channel and drains the device boot chatter before
// handing control to the operator.
func (c *Controller) Connect() error {
	c.setState(StateConnecting)

	if err := c.Channel.Open(); err != nil {
		c.setState(StateTerminated)
		return err
	}

	c.Logger.Info("Connected to %s, waiting for device boot", c.Channel.Endpoint())
	c.drainFor(time.Duration(c.Config.Serial.BootGraceSeconds) * time.Second)

	c.setState(StateIdle)
	return nil
}

// -----------------------------------------------------------------------------

// Terminate closes the channel. The session cannot be resumed afterwards.
func (c *Controller) Terminate() error {
	c.setState(StateTerminated)
	return c.Channel.Close()
}

// -----------------------------------------------------------------------------

func (c *Controller) State() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// -----------------------------------------------------------------------------

func (c *Controller) setState(state string) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()

	if c.Exchanger != nil {
		c.Exchanger.UpdateSessionState(state)
	}
}

// -----------------------------------------------------------------------------

func (c *Controller) sendCommand(cmd protocol.Command) error {
	if err := c.Channel.WriteLine(c.codec.EncodeCommand(cmd)); err != nil {
		return helpers.NewWriteError(fmt.Sprintf("failed to send command %q", string(cmd)), err)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Single test
// -----------------------------------------------------------------------------

// RunProfile runs one test for the given profile id and waits for the device
// to return to its reference position. A completed run is validated and
// recorded; a timed out or invalid run is returned with a Warning and NOT
// recorded, leaving the retry decision to the caller (AcceptRun records the
// partial data if the operator chooses to keep it). A returned error means
// the channel failed and the session is terminated.
func (c *Controller) RunProfile(ctx context.Context, id string) (*TestOutcome, error) {
	profile, ok := c.Catalog.ByID(id)
	if !ok {
		return nil, fmt.Errorf("unknown test profile id %q", id)
	}

	c.setState(StateSingleTest)
	defer c.setState(StateIdle)

	if err := c.sendCommand(protocol.ProfileCommand(id)); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(c.Catalog.EstimateDuration(profile, true))
	c.Logger.Info("Running %s (%.5f mm/s), deadline in %s",
		profile.Name, profile.SpeedMMs, time.Until(deadline).Round(time.Second))

	res, err := c.Reader.Stream(ctx, deadline, true)
	if err != nil {
		c.setState(StateTerminated)
		return nil, err
	}

	outcome := &TestOutcome{Profile: profile, Stream: res}

	switch res.Outcome {
	case reader.OutcomeCancelled:
		c.Logger.Warning("Test %s cancelled, data discarded", profile.Name)
		c.abortDeviceOp()

	case reader.OutcomeTimedOut:
		outcome.Warning = helpers.NewTimeoutError(fmt.Sprintf(
			"test %s did not finish before its deadline (%d samples collected)",
			profile.Name, len(res.Samples)))

	case reader.OutcomeCompleted:
		if warn := c.validate(profile, res); warn != nil {
			outcome.Warning = warn
		} else {
			run := c.record(profile, res.Samples)
			outcome.Run = &run
		}
	}

	return outcome, nil
}

// -----------------------------------------------------------------------------

// AcceptRun records a run the automatic validation refused, on explicit
// operator decision.
func (c *Controller) AcceptRun(profile models.MTestProfile, res *reader.Result) models.MRunResult {
	c.Logger.Warning("Recording %s despite warnings (%d samples)", profile.Name, len(res.Samples))
	return c.record(profile, res.Samples)
}

// -----------------------------------------------------------------------------

// validate applies the configured floor checks to a completed run. A failure
// is a warning for the operator, never a hard error: thresholds catch a slack
// drive belt or an unplugged load cell, but low readings can also be a real
// low surface tension.
func (c *Controller) validate(profile models.MTestProfile, res *reader.Result) error {
	if len(res.Samples) < c.Config.Validation.MinSamples {
		return helpers.NewValidationError(fmt.Sprintf(
			"%s produced %d samples, below the minimum of %d",
			profile.Name, len(res.Samples), c.Config.Validation.MinSamples))
	}

	peak := 0.0
	for _, s := range res.Samples {
		if s.Force > peak {
			peak = s.Force
		}
	}
	if peak < c.Config.Validation.MinPeakForceN {
		return helpers.NewValidationError(fmt.Sprintf(
			"%s peak force %.5f N is below the plausibility floor %.5f N, check the probe",
			profile.Name, peak, c.Config.Validation.MinPeakForceN))
	}

	return nil
}

// -----------------------------------------------------------------------------

func (c *Controller) record(profile models.MTestProfile, samples []models.MSample) models.MRunResult {
	run := c.Aggregator.RecordRun(profile.Name, profile.SpeedMMs, samples)

	if c.Exchanger != nil {
		c.Exchanger.BroadcastRun(models.MRunSummary{
			ID:          run.ID,
			ProfileName: run.ProfileName,
			PeakForce:   run.PeakForce,
			SampleCount: len(run.Samples),
			Duration:    run.Duration,
		})
		c.Exchanger.UpdateAggregates(c.Aggregator.AllStatistics())
	}

	return run
}

// -----------------------------------------------------------------------------
// Auto sequence
// -----------------------------------------------------------------------------

// RunAutoSequence triggers the device-side sequence over the whole catalog and
// records each completed segment. Profiles are attributed by the device's own
// announcement line, falling back to catalog position when a segment produced
// none. Returns the number of runs recorded.
func (c *Controller) RunAutoSequence(ctx context.Context) (int, error) {
	c.setState(StateAutoSequence)
	defer c.setState(StateIdle)

	c.sequenceDone = false

	if err := c.sendCommand(protocol.CmdAutoSequence); err != nil {
		return 0, err
	}

	recorded := 0

	for i := 0; i < c.Catalog.Count(); i++ {
		c.lastAnnounced = ""

		deadline := time.Now().Add(c.Catalog.MaxEstimate(true))
		res, err := c.Reader.Stream(ctx, deadline, true)
		if err != nil {
			c.setState(StateTerminated)
			return recorded, err
		}

		if res.Outcome == reader.OutcomeCancelled {
			c.Logger.Warning("Auto sequence cancelled after %d run(s)", recorded)
			c.abortDeviceOp()
			return recorded, nil
		}

		if res.Outcome == reader.OutcomeTimedOut {
			c.Logger.Warning("Auto sequence segment %d timed out (%d samples), continuing", i+1, len(res.Samples))
			if c.sequenceDone {
				break
			}
			continue
		}

		profile := c.resolveSegmentProfile(i)
		c.record(profile, res.Samples)
		recorded++

		if c.sequenceDone {
			break
		}
	}

	c.Logger.Info("Auto sequence finished, %d run(s) recorded", recorded)
	return recorded, nil
}

// -----------------------------------------------------------------------------

func (c *Controller) resolveSegmentProfile(position int) models.MTestProfile {
	if c.lastAnnounced != "" {
		if p, ok := c.Catalog.ByName(c.lastAnnounced); ok {
			return p
		}
		// Name the host table does not know. Keep the device's name so the
		// data is not lost, at an unknown speed.
		c.Logger.Warning("Device announced unknown test %q", c.lastAnnounced)
		return models.MTestProfile{Name: c.lastAnnounced}
	}

	if p, ok := c.Catalog.ByPosition(position); ok {
		return p
	}
	return models.MTestProfile{Name: fmt.Sprintf("SEGMENT_%d", position+1)}
}

// -----------------------------------------------------------------------------
// Monitor mode
// -----------------------------------------------------------------------------

// MonitorMode streams live readings into the monitor ring buffer until the
// context is cancelled. Nothing is recorded.
func (c *Controller) MonitorMode(ctx context.Context) error {
	c.setState(StateMonitor)
	defer c.setState(StateIdle)

	c.Monitor.Clear()

	if err := c.sendCommand(protocol.CmdMonitor); err != nil {
		return err
	}

	// Monitor has no natural end, the deadline only bounds a forgotten
	// session.
	deadline := time.Now().Add(24 * time.Hour)

	res, err := c.Reader.Stream(ctx, deadline, false)
	if err != nil {
		c.setState(StateTerminated)
		return err
	}

	c.Logger.Info("Monitor stopped, %d sample(s) in buffer", c.Monitor.Size())

	if res.Outcome == reader.OutcomeCancelled {
		c.abortDeviceOp()
	}
	return nil
}

// -----------------------------------------------------------------------------
// Calibration
// -----------------------------------------------------------------------------

// Calibrate relays the device's interactive calibration dialogue to the
// operator and returns when the device reports completion.
func (c *Controller) Calibrate(ctx context.Context) error {
	c.setState(StateCalibrating)
	defer c.setState(StateIdle)

	if err := c.sendCommand(protocol.CmdCalibrate); err != nil {
		return err
	}

	deadline := time.Now().Add(60 * time.Second)

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			c.abortDeviceOp()
			return ctx.Err()
		default:
		}

		raw, ok, err := c.Channel.ReadLine(100 * time.Millisecond)
		if err != nil {
			c.setState(StateTerminated)
			return err
		}
		if !ok {
			continue
		}

		line := c.codec.Decode(raw)
		if line.Kind != protocol.LineInfo {
			continue
		}
		if protocol.IsCalibrationDone(line.Text) {
			c.Logger.Info("Calibration complete")
			return nil
		}
		c.Logger.Info(">> %s", line.Text)
	}

	return helpers.NewTimeoutError("calibration did not complete within 60s")
}

// -----------------------------------------------------------------------------
// Utility commands
// -----------------------------------------------------------------------------

// Tare zeroes the load cell reading.
func (c *Controller) Tare() error {
	if err := c.sendCommand(protocol.CmdTare); err != nil {
		return err
	}
	c.drainFor(c.TareSettle)
	return nil
}

// -----------------------------------------------------------------------------

// SetHome declares the current physical position as the reference.
func (c *Controller) SetHome() error {
	if err := c.sendCommand(protocol.CmdSetHome); err != nil {
		return err
	}
	c.drainFor(c.SetHomeSettle)
	return nil
}

// -----------------------------------------------------------------------------

// GoHome drives the stage back to the reference position.
func (c *Controller) GoHome() error {
	c.setState(StateHoming)
	defer c.setState(StateIdle)

	if err := c.sendCommand(protocol.CmdGoHome); err != nil {
		return err
	}
	c.drainFor(c.GoHomeSettle)
	return nil
}

// -----------------------------------------------------------------------------

// abortDeviceOp asks the device to stop its current operation and absorbs the
// lines it emits while winding down.
func (c *Controller) abortDeviceOp() {
	if err := c.sendCommand(protocol.CmdCancel); err != nil {
		c.Logger.Warning("Failed to send cancel: %v", err)
		return
	}
	c.drainFor(500 * time.Millisecond)
}

// -----------------------------------------------------------------------------

// drainFor reads and logs device chatter for a fixed window. Used after
// commands the device acknowledges with free text only.
func (c *Controller) drainFor(d time.Duration) {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		raw, ok, err := c.Channel.ReadLine(100 * time.Millisecond)
		if err != nil {
			return
		}
		if !ok {
			continue
		}
		if line := c.codec.Decode(raw); line.Kind == protocol.LineInfo {
			c.Logger.Info(">> %s", line.Text)
		}
	}
}
