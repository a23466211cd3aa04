package rangefinder

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/real-ds/IOT-ADAS/internal/hazard"
	"github.com/real-ds/IOT-ADAS/internal/monitoring"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	os.Exit(m.Run())
}

func newSamplerWithReplies(t *testing.T, replies map[string]string) (*SerialSampler, *TestableSerialPort) {
	t.Helper()
	port := NewTestableSerialPort()
	port.OnWrite = func(p []byte) {
		trigger := strings.TrimSpace(string(p))
		if reply, ok := replies[trigger]; ok {
			port.QueueReply(reply)
		}
	}

	sampler, err := NewSerialSampler(port, DefaultEchoTimeout)
	if err != nil {
		t.Fatalf("NewSerialSampler: %v", err)
	}
	return sampler, port
}

func TestMeasureConvertsEchoToDistance(t *testing.T) {
	// 5831us round trip at 0.0343 cm/us, halved: ~100cm.
	sampler, port := newSamplerWithReplies(t, map[string]string{"P1": "5831\n"})

	got := sampler.Measure(context.Background(), hazard.ZoneCenter)

	want := 5831 * SpeedOfSoundCMPerUS / 2
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Measure = %v, want %v", got, want)
	}

	if written := string(port.GetWrittenData()); written != "P1\n" {
		t.Errorf("trigger written = %q, want %q", written, "P1\n")
	}
}

func TestMeasureTriggerIndexPerZone(t *testing.T) {
	tests := []struct {
		zone    hazard.Zone
		trigger string
	}{
		{hazard.ZoneLeft, "P0\n"},
		{hazard.ZoneCenter, "P1\n"},
		{hazard.ZoneRight, "P2\n"},
	}

	for _, tt := range tests {
		t.Run(string(tt.zone), func(t *testing.T) {
			sampler, port := newSamplerWithReplies(t, nil)
			sampler.Measure(context.Background(), tt.zone)
			if written := string(port.GetWrittenData()); written != tt.trigger {
				t.Errorf("trigger = %q, want %q", written, tt.trigger)
			}
		})
	}
}

func TestMeasureSentinelCases(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"explicit no-echo reply", "T\n"},
		{"empty reply line", "\n"},
		{"garbage reply", "zzz\n"},
		{"negative echo time", "-10\n"},
		{"below blanking distance", "58\n"},     // ~1cm
		{"beyond rated range", "30000\n"},       // ~514cm
		{"not-a-number reply", "nan\n"},
		{"capitalized not-a-number reply", "NaN\n"},
		{"positive infinity reply", "+Inf\n"},
		{"negative infinity reply", "-inf\n"},
		{"oversized framing garbage", strings.Repeat("9", 64) + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sampler, _ := newSamplerWithReplies(t, map[string]string{"P0": tt.reply})
			got := sampler.Measure(context.Background(), hazard.ZoneLeft)
			if got != hazard.NoObjectCM {
				t.Errorf("Measure = %v, want sentinel %v", got, hazard.NoObjectCM)
			}
		})
	}
}

func TestMeasureTimeoutReturnsSentinel(t *testing.T) {
	// No reply queued: the port reads as timed out (0, nil).
	sampler, _ := newSamplerWithReplies(t, nil)

	got := sampler.Measure(context.Background(), hazard.ZoneRight)
	if got != hazard.NoObjectCM {
		t.Errorf("Measure on timeout = %v, want sentinel", got)
	}
}

func TestMeasureWriteErrorReturnsSentinel(t *testing.T) {
	port := NewTestableSerialPort()
	port.WriteError = errors.New("kaput")

	sampler, err := NewSerialSampler(port, DefaultEchoTimeout)
	if err != nil {
		t.Fatalf("NewSerialSampler: %v", err)
	}

	if got := sampler.Measure(context.Background(), hazard.ZoneLeft); got != hazard.NoObjectCM {
		t.Errorf("Measure on write error = %v, want sentinel", got)
	}
}

func TestMeasureCancelledContext(t *testing.T) {
	sampler, port := newSamplerWithReplies(t, map[string]string{"P0": "583\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if got := sampler.Measure(ctx, hazard.ZoneLeft); got != hazard.NoObjectCM {
		t.Errorf("Measure with cancelled ctx = %v, want sentinel", got)
	}
	if port.WriteCalls != 0 {
		t.Errorf("no trigger should be fired after cancellation, got %d writes", port.WriteCalls)
	}
}

func TestCloseClosesPort(t *testing.T) {
	sampler, port := newSamplerWithReplies(t, map[string]string{"P0": "2915\n"})

	if err := sampler.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !port.Closed {
		t.Error("underlying port not closed")
	}
	if got := sampler.Measure(context.Background(), hazard.ZoneLeft); got != hazard.NoObjectCM {
		t.Errorf("Measure after Close = %v, want sentinel", got)
	}
}

func TestOnWriteRunsOutsidePortLock(t *testing.T) {
	port := NewTestableSerialPort()
	port.OnWrite = func(p []byte) {
		// QueueReply takes the port lock itself; a hook invoked under the
		// lock would deadlock here.
		port.QueueReply("2915\n")
	}

	if _, err := port.Write([]byte("P0\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	buf := make([]byte, 16)
	n, err := port.Read(buf)
	if err != nil || string(buf[:n]) != "2915\n" {
		t.Errorf("Read = %q, %v; want queued reply", buf[:n], err)
	}
}

func TestNewSerialSamplerSetsEchoTimeout(t *testing.T) {
	port := NewTestableSerialPort()
	if _, err := NewSerialSampler(port, 25*time.Millisecond); err != nil {
		t.Fatalf("NewSerialSampler: %v", err)
	}
	if port.ReadTimeout != 25*time.Millisecond {
		t.Errorf("read timeout = %v, want 25ms", port.ReadTimeout)
	}
}

func TestNewSerialSamplerRejectsBadTimeout(t *testing.T) {
	if _, err := NewSerialSampler(NewTestableSerialPort(), 0); err == nil {
		t.Error("expected error for zero timeout")
	}
}

func TestEchoToDistance(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		expected float64
	}{
		{"mid-range echo", "2915", 2915 * SpeedOfSoundCMPerUS / 2},
		{"near blanking edge", "117", 117 * SpeedOfSoundCMPerUS / 2}, // ~2.006cm, just valid
		{"no echo", "T", hazard.NoObjectCM},
		{"zero", "0", hazard.NoObjectCM},
		{"not a number", "nan", hazard.NoObjectCM},
		{"positive infinity", "+Inf", hazard.NoObjectCM},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := echoToDistance(tt.reply)
			// NaN compares false against everything, so check it explicitly.
			if math.IsNaN(got) || math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("echoToDistance(%q) = %v, want %v", tt.reply, got, tt.expected)
			}
		})
	}
}

func TestMeasureResultAlwaysMarshals(t *testing.T) {
	// A non-finite distance would poison every JSON consumer downstream:
	// encoding/json refuses NaN and infinities outright.
	sampler, _ := newSamplerWithReplies(t, map[string]string{"P1": "nan\n"})

	got := sampler.Measure(context.Background(), hazard.ZoneCenter)
	if got != hazard.NoObjectCM {
		t.Fatalf("Measure = %v, want sentinel %v", got, hazard.NoObjectCM)
	}

	reading := hazard.ZoneReading{Zone: hazard.ZoneCenter, DistanceCM: got, Level: hazard.LevelClear}
	if _, err := json.Marshal(reading); err != nil {
		t.Errorf("reading does not marshal: %v", err)
	}
}

func TestDefaultSerialPortMode(t *testing.T) {
	mode := DefaultSerialPortMode()
	if mode.BaudRate != 9600 || mode.DataBits != 8 || mode.Parity != NoParity || mode.StopBits != OneStopBit {
		t.Errorf("unexpected default mode: %+v", mode)
	}
}
