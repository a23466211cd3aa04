package hazard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/real-ds/IOT-ADAS/internal/timeutil"
)

func TestNewDenoiserRejectsBadSampleCounts(t *testing.T) {
	sampler := NewScriptedSampler(nil)
	clock := timeutil.NewMockClock(time.Now())

	for _, samples := range []int{0, 1, 2, 4, 6} {
		_, err := NewDenoiser(sampler, clock, samples, 0)
		assert.Errorf(t, err, "sample count %d should be rejected", samples)
	}

	_, err := NewDenoiser(sampler, clock, 3, -time.Millisecond)
	assert.Error(t, err, "negative pause should be rejected")
}

func TestStabilizeSuppressesSingleOutlier(t *testing.T) {
	// One spurious no-echo among two valid readings: the median keeps the
	// valid estimate, it does not leak the sentinel.
	sampler := NewScriptedSampler(map[Zone][]float64{
		ZoneCenter: {8, NoObjectCM, 9},
	})
	clock := timeutil.NewMockClock(time.Now())

	denoiser, err := NewDenoiser(sampler, clock, 3, 10*time.Millisecond)
	require.NoError(t, err)

	got := denoiser.Stabilize(context.Background(), ZoneCenter)
	assert.Equal(t, 9.0, got)
}

func TestStabilizeMedianCases(t *testing.T) {
	tests := []struct {
		name     string
		samples  []float64
		expected float64
	}{
		{"all identical", []float64{50, 50, 50}, 50},
		{"one short outlier", []float64{3, 120, 121}, 120},
		{"one long outlier", []float64{60, 61, 400}, 61},
		{"all sentinel", []float64{NoObjectCM, NoObjectCM, NoObjectCM}, NoObjectCM},
		{"five samples", []float64{20, 22, 21, 400, 2}, 21},
		{"rounds to one decimal", []float64{10.34, 10.36, 10.35}, 10.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sampler := NewScriptedSampler(map[Zone][]float64{ZoneLeft: tt.samples})
			clock := timeutil.NewMockClock(time.Now())

			denoiser, err := NewDenoiser(sampler, clock, len(tt.samples), 0)
			require.NoError(t, err)

			got := denoiser.Stabilize(context.Background(), ZoneLeft)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestStabilizePausesBetweenSamples(t *testing.T) {
	sampler := NewScriptedSampler(map[Zone][]float64{
		ZoneRight: {30, 30, 30, 30, 30},
	})
	clock := timeutil.NewMockClock(time.Now())

	denoiser, err := NewDenoiser(sampler, clock, 5, 10*time.Millisecond)
	require.NoError(t, err)

	denoiser.Stabilize(context.Background(), ZoneRight)

	// N samples need N-1 pauses: no pause before the first trigger and none
	// after the last echo.
	sleeps := clock.Sleeps()
	require.Len(t, sleeps, 4)
	for _, d := range sleeps {
		assert.Equal(t, 10*time.Millisecond, d)
	}
}

func TestStabilizeExhaustedScriptYieldsSentinel(t *testing.T) {
	sampler := NewScriptedSampler(map[Zone][]float64{ZoneLeft: {12}})
	clock := timeutil.NewMockClock(time.Now())

	denoiser, err := NewDenoiser(sampler, clock, 3, 0)
	require.NoError(t, err)

	// Two of the three samples are sentinels, so the median is the sentinel.
	got := denoiser.Stabilize(context.Background(), ZoneLeft)
	assert.Equal(t, NoObjectCM, got)
}

func TestStabilizeCancelledContextStaysTotal(t *testing.T) {
	sampler := NewScriptedSampler(map[Zone][]float64{
		ZoneCenter: {8, 8, 8},
	})
	clock := timeutil.NewMockClock(time.Now())

	denoiser, err := NewDenoiser(sampler, clock, 3, 0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A cancelled context must still produce a value, not an error: the
	// missing samples are padded with sentinels.
	got := denoiser.Stabilize(ctx, ZoneCenter)
	assert.Equal(t, NoObjectCM, got)
}

func TestRound1(t *testing.T) {
	tests := []struct {
		in       float64
		expected float64
	}{
		{10.34, 10.3},
		{10.36, 10.4},
		{10.0, 10.0},
		{NoObjectCM, NoObjectCM},
	}
	for _, tt := range tests {
		if got := Round1(tt.in); got != tt.expected {
			t.Errorf("Round1(%v) = %v, want %v", tt.in, got, tt.expected)
		}
	}
}
