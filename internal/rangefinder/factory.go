package rangefinder

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// Open opens the sensor MCU's serial port and wraps it in a SerialSampler
// with the given echo timeout.
func Open(path string, mode *SerialPortMode, timeout time.Duration) (*SerialSampler, error) {
	if mode == nil {
		mode = DefaultSerialPortMode()
	}

	serialMode, err := serialMode(mode)
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(path, serialMode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", path, err)
	}

	sampler, err := NewSerialSampler(port, timeout)
	if err != nil {
		port.Close()
		return nil, err
	}
	return sampler, nil
}

// serialMode translates our port mode to the go.bug.st/serial representation.
func serialMode(mode *SerialPortMode) (*serial.Mode, error) {
	out := &serial.Mode{
		BaudRate: mode.BaudRate,
		DataBits: mode.DataBits,
	}

	switch mode.Parity {
	case NoParity:
		out.Parity = serial.NoParity
	case OddParity:
		out.Parity = serial.OddParity
	case EvenParity:
		out.Parity = serial.EvenParity
	default:
		return nil, fmt.Errorf("unsupported parity %d", mode.Parity)
	}

	switch mode.StopBits {
	case OneStopBit:
		out.StopBits = serial.OneStopBit
	case TwoStopBits:
		out.StopBits = serial.TwoStopBits
	default:
		return nil, fmt.Errorf("unsupported stop bits %d", mode.StopBits)
	}

	return out, nil
}
