package rangefinder

import (
	"bytes"
	"errors"
	"sync"
	"time"
)

// TestableSerialPort implements TimeoutSerialPorter with configurable
// behaviour for testing: scripted replies, injectable errors, and capture of
// everything written to the port.
type TestableSerialPort struct {
	mu sync.Mutex

	// ReadBuffer holds data to be returned by Read calls.
	ReadBuffer *bytes.Buffer

	// WriteBuffer captures data written to the port.
	WriteBuffer *bytes.Buffer

	// OnWrite, if set, runs after each successful Write, outside the port
	// lock. Tests use it to queue the MCU's reply to a trigger.
	OnWrite func(p []byte)

	// ReadError is returned by the next Read call if set.
	ReadError error

	// WriteError is returned by the next Write call if set.
	WriteError error

	// Closed indicates whether Close was called.
	Closed bool

	// ReadTimeout is the timeout last set via SetReadTimeout.
	ReadTimeout time.Duration

	// WriteCalls records the number of Write calls.
	WriteCalls int
}

// NewTestableSerialPort creates a TestableSerialPort with empty buffers.
func NewTestableSerialPort() *TestableSerialPort {
	return &TestableSerialPort{
		ReadBuffer:  bytes.NewBuffer(nil),
		WriteBuffer: bytes.NewBuffer(nil),
	}
}

// Read drains the read buffer. An empty buffer reads as (0, nil), matching a
// timed-out read on the real port.
func (t *TestableSerialPort) Read(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.Closed {
		return 0, errors.New("serial port closed")
	}
	if t.ReadError != nil {
		err := t.ReadError
		t.ReadError = nil
		return 0, err
	}
	if t.ReadBuffer.Len() == 0 {
		return 0, nil
	}
	return t.ReadBuffer.Read(p)
}

// Write appends to the write buffer, then fires the OnWrite hook with the
// lock released so the hook can call back into the port.
func (t *TestableSerialPort) Write(p []byte) (int, error) {
	t.mu.Lock()

	t.WriteCalls++

	if t.Closed {
		t.mu.Unlock()
		return 0, errors.New("serial port closed")
	}
	if t.WriteError != nil {
		err := t.WriteError
		t.WriteError = nil
		t.mu.Unlock()
		return 0, err
	}

	n, err := t.WriteBuffer.Write(p)
	hook := t.OnWrite
	t.mu.Unlock()

	if err == nil && hook != nil {
		hook(p)
	}
	return n, err
}

// Close marks the port as closed.
func (t *TestableSerialPort) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Closed = true
	return nil
}

// SetReadTimeout records the read timeout.
func (t *TestableSerialPort) SetReadTimeout(timeout time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ReadTimeout = timeout
	return nil
}

// QueueReply appends a reply line (already including its terminator) for
// subsequent Read calls. Safe from any goroutine, including OnWrite hooks.
func (t *TestableSerialPort) QueueReply(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ReadBuffer.WriteString(line)
}

// AddReadData appends raw bytes for subsequent Read calls.
func (t *TestableSerialPort) AddReadData(data []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ReadBuffer.Write(data)
}

// GetWrittenData returns all data written to the port.
func (t *TestableSerialPort) GetWrittenData() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.WriteBuffer.Bytes()
}
