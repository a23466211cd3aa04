package rangefinder

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/real-ds/IOT-ADAS/internal/hazard"
	"github.com/real-ds/IOT-ADAS/internal/monitoring"
)

// Wire protocol: the host writes "P<n>\n" (n = 0 left, 1 center, 2 right) to
// fire one trigger pulse; the MCU replies with a single line holding the
// round-trip echo time in microseconds, or "T" when no echo arrived within
// the sensor's own window.
const (
	triggerPrefix = "P"
	noEchoReply   = "T"

	// maxReplyBytes bounds a reply line; anything longer is framing garbage.
	maxReplyBytes = 32
)

// Physical limits of the ultrasonic sensors. Echoes converting to a distance
// outside this window are physically impossible (blanking-zone ringing or a
// multi-bounce return) and collapse to the no-object sentinel, same as a
// timeout: a missing reading must never be mistaken for "obstacle very
// close".
const (
	MinRangeCM = 2.0
	MaxRangeCM = 400.0

	// SpeedOfSoundCMPerUS is the speed of sound at room temperature. The
	// echo travels to the obstacle and back, so conversion halves it.
	SpeedOfSoundCMPerUS = 0.0343
)

// DefaultEchoTimeout bounds the wait for a reply line. The sensors give up
// after ~38ms themselves; the margin covers serial transfer of the reply.
const DefaultEchoTimeout = 60 * time.Millisecond

var zoneIndex = map[hazard.Zone]int{
	hazard.ZoneLeft:   0,
	hazard.ZoneCenter: 1,
	hazard.ZoneRight:  2,
}

// SerialSampler implements hazard.RangeSampler over a serial-attached sensor
// MCU. Trigger/reply exchanges are serialized with a mutex; the acoustic
// cross-talk constraint is enforced one level up, but the port itself also
// cannot interleave two exchanges.
type SerialSampler struct {
	mu   sync.Mutex
	port SerialPorter
	buf  [16]byte
}

// NewSerialSampler wraps an open port. If the port supports read timeouts
// the echo wait is bounded to timeout; ports without timeout support are
// rejected rather than allowed to block a publish cycle forever.
func NewSerialSampler(port SerialPorter, timeout time.Duration) (*SerialSampler, error) {
	if timeout <= 0 {
		return nil, fmt.Errorf("echo timeout must be positive, got %v", timeout)
	}
	tp, ok := port.(TimeoutSerialPorter)
	if !ok {
		return nil, fmt.Errorf("serial port does not support read timeouts")
	}
	if err := tp.SetReadTimeout(timeout); err != nil {
		return nil, fmt.Errorf("failed to set echo timeout: %w", err)
	}
	return &SerialSampler{port: port}, nil
}

// Close releases the underlying serial port. It waits for an in-flight
// exchange to finish; Measure calls after Close return the sentinel through
// the port's error paths.
func (s *SerialSampler) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port.Close()
}

// Measure fires one trigger for the zone and converts the echo reply to a
// distance in cm. Timeouts, framing garbage and physically impossible
// results all return hazard.NoObjectCM; Measure never fails.
func (s *SerialSampler) Measure(ctx context.Context, zone hazard.Zone) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ctx.Err() != nil {
		return hazard.NoObjectCM
	}

	idx, ok := zoneIndex[zone]
	if !ok {
		monitoring.Logf("rangefinder: unknown zone %q", zone)
		return hazard.NoObjectCM
	}

	trigger := fmt.Sprintf("%s%d\n", triggerPrefix, idx)
	if _, err := s.port.Write([]byte(trigger)); err != nil {
		monitoring.Logf("rangefinder: trigger write for %s failed: %v", zone, err)
		return hazard.NoObjectCM
	}

	reply, ok := s.readReply()
	if !ok {
		return hazard.NoObjectCM
	}
	return echoToDistance(reply)
}

// readReply reads one reply line. The port's read timeout bounds each Read;
// a zero-byte read or any error means the echo window elapsed.
func (s *SerialSampler) readReply() (string, bool) {
	var line []byte
	for {
		n, err := s.port.Read(s.buf[:])
		if err != nil || n == 0 {
			return "", false
		}
		for _, b := range s.buf[:n] {
			if b == '\n' {
				return strings.TrimSpace(string(line)), true
			}
			line = append(line, b)
		}
		if len(line) > maxReplyBytes {
			monitoring.Logf("rangefinder: discarding oversized reply %q...", line[:maxReplyBytes])
			return "", false
		}
	}
}

// echoToDistance converts a reply line to a distance in cm, or the sentinel
// for no-echo and out-of-range replies.
func echoToDistance(reply string) float64 {
	if reply == "" || reply == noEchoReply {
		return hazard.NoObjectCM
	}

	// ParseFloat accepts "nan" and "inf", and NaN slides past both range
	// comparisons below; neither must ever escape as a distance.
	echoUS, err := strconv.ParseFloat(reply, 64)
	if err != nil || echoUS <= 0 || math.IsNaN(echoUS) || math.IsInf(echoUS, 0) {
		monitoring.Logf("rangefinder: unparseable echo reply %q", reply)
		return hazard.NoObjectCM
	}

	distance := echoUS * SpeedOfSoundCMPerUS / 2
	if distance < MinRangeCM || distance > MaxRangeCM {
		return hazard.NoObjectCM
	}
	return distance
}
