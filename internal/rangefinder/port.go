// Package rangefinder drives the ultrasonic sensor MCU over a serial line
// and exposes it as a hazard.RangeSampler. The MCU fans the three
// trigger/echo pairs out to the physical sensors; this package owns the wire
// protocol and the echo-time-to-distance conversion.
package rangefinder

import (
	"io"
	"time"
)

// SerialPorter is the minimal interface needed for the sensor serial port.
// The abstraction enables unit testing without real hardware.
type SerialPorter interface {
	io.ReadWriter
	io.Closer
}

// TimeoutSerialPorter extends SerialPorter with a bounded read timeout. The
// echo wait is bounded by setting this timeout on the port, so a silent
// sensor can never block a publish cycle.
type TimeoutSerialPorter interface {
	SerialPorter
	SetReadTimeout(timeout time.Duration) error
}

// SerialPortMode defines serial port configuration parameters.
type SerialPortMode struct {
	BaudRate int
	DataBits int
	Parity   Parity
	StopBits StopBits
}

// Parity defines serial port parity options.
type Parity int

const (
	NoParity Parity = iota
	OddParity
	EvenParity
)

// StopBits defines serial port stop bit options.
type StopBits int

const (
	OneStopBit StopBits = iota
	TwoStopBits
)

// DefaultSerialPortMode returns the default mode for the sensor MCU.
func DefaultSerialPortMode() *SerialPortMode {
	return &SerialPortMode{
		BaudRate: 9600,
		DataBits: 8,
		Parity:   NoParity,
		StopBits: OneStopBit,
	}
}
