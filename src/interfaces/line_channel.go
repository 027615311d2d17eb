package interfaces

import "time"

// -----------------------------------------------------------------------------
// ILineChannel is the duplex byte-stream abstraction over the physical serial
// connection. It knows nothing about the protocol: newline framing only.
// -----------------------------------------------------------------------------

type ILineChannel interface {

	// Open establishes the connection. Returns a ConnectionError on failure.
	Open() error

	// -----------------------------------------------------------------------------

	// ReadLine returns the next complete line, stripped of its terminator.
	// ok is false when the timeout elapsed with no complete line; partial
	// bytes are retained for the next call. A non-nil error means the channel
	// is broken.
	ReadLine(timeout time.Duration) (line string, ok bool, err error)

	// -----------------------------------------------------------------------------

	// WriteLine sends raw text to the device. Returns a WriteError on a
	// closed or broken channel.
	WriteLine(text string) error

	// -----------------------------------------------------------------------------

	// Endpoint returns the resolved endpoint name (e.g. /dev/ttyUSB0).
	Endpoint() string

	// -----------------------------------------------------------------------------

	// Close releases the connection. Idempotent.
	Close() error
}
