package channel

import (
	"fmt"
	"strings"
	"time"

	"github.com/Guide5210/Tensiometer-Arduino/src/helpers"
	"github.com/Guide5210/Tensiometer-Arduino/src/logger"
	"github.com/Guide5210/Tensiometer-Arduino/src/models"

	"go.bug.st/serial"
)

// -----------------------------------------------------------------------------
// SerialChannel implements interfaces.ILineChannel over a physical serial
// port. It owns newline framing and nothing else: no protocol knowledge, no
// retries. Unfinished bytes survive between ReadLine calls; they are only
// dropped when the port is closed.
// -----------------------------------------------------------------------------

type SerialChannel struct {
	Config *models.MConfig
	Logger *logger.Logger

	port     serial.Port
	endpoint string
	pending  []byte // bytes read but not yet terminated by a newline
	closed   bool
}

// -----------------------------------------------------------------------------

func NewSerialChannel(cfg *models.MConfig, log *logger.Logger) *SerialChannel {
	return &SerialChannel{
		Config: cfg,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

// Open resolves the endpoint (auto-detecting the first available port when
// configured) and opens it at the configured baud rate.
func (s *SerialChannel) Open() error {
	endpoint := s.Config.Serial.Endpoint

	if endpoint == "" && s.Config.Serial.AutoDetect {
		ports, err := serial.GetPortsList()
		if err != nil {
			return helpers.NewConnectionError("failed to enumerate serial ports", err)
		}
		if len(ports) == 0 {
			return helpers.NewConnectionError("no serial ports found", nil)
		}
		endpoint = ports[0]
		s.Logger.Info("Auto-detected serial port: %s", endpoint)
	}

	mode := &serial.Mode{BaudRate: s.Config.Serial.Baud}
	port, err := serial.Open(endpoint, mode)
	if err != nil {
		return helpers.NewConnectionError(fmt.Sprintf("failed to open %s at %d baud", endpoint, s.Config.Serial.Baud), err)
	}

	s.port = port
	s.endpoint = endpoint
	s.closed = false
	s.pending = nil

	s.Logger.Info("Connected to %s at %d baud", endpoint, s.Config.Serial.Baud)
	return nil
}

// -----------------------------------------------------------------------------

// ReadLine returns the next newline-terminated line, waiting at most timeout.
// ok is false on timeout; partial bytes stay buffered for the next call.
func (s *SerialChannel) ReadLine(timeout time.Duration) (string, bool, error) {
	if s.port == nil || s.closed {
		return "", false, helpers.NewConnectionError("channel is not open", nil)
	}

	deadline := time.Now().Add(timeout)
	buf := make([]byte, 256)

	for {
		// A complete line may already be buffered from a previous read.
		if line, found := s.takeLine(); found {
			return line, true, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return "", false, nil
		}

		if err := s.port.SetReadTimeout(remaining); err != nil {
			return "", false, helpers.NewConnectionError("failed to set read timeout", err)
		}

		n, err := s.port.Read(buf)
		if err != nil {
			return "", false, helpers.NewConnectionError("serial read failed", err)
		}
		if n == 0 {
			// Driver-level timeout expired with nothing received.
			return "", false, nil
		}

		s.pending = append(s.pending, buf[:n]...)
	}
}

// -----------------------------------------------------------------------------

// takeLine pops the first complete line from the pending buffer.
func (s *SerialChannel) takeLine() (string, bool) {
	for i, b := range s.pending {
		if b == '\n' {
			line := strings.TrimRight(string(s.pending[:i]), "\r")
			s.pending = s.pending[i+1:]
			return line, true
		}
	}
	return "", false
}

// -----------------------------------------------------------------------------

// WriteLine sends raw text to the device.
func (s *SerialChannel) WriteLine(text string) error {
	if s.port == nil || s.closed {
		return helpers.NewWriteError("channel is not open", nil)
	}

	if _, err := s.port.Write([]byte(text)); err != nil {
		return helpers.NewWriteError("serial write failed", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

// Endpoint returns the resolved port name.
func (s *SerialChannel) Endpoint() string {
	return s.endpoint
}

// -----------------------------------------------------------------------------

// Close releases the port. Safe to call more than once.
func (s *SerialChannel) Close() error {
	if s.closed || s.port == nil {
		return nil
	}

	s.closed = true
	s.pending = nil

	if err := s.port.Close(); err != nil {
		return err
	}

	s.Logger.Info("Serial connection closed")
	return nil
}
