package hazard

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/real-ds/IOT-ADAS/internal/timeutil"
)

// Denoiser reduces several raw samples for one zone to a single stable
// estimate by taking their median. The median suppresses a single spurious
// short or long reading (for example a stray reflection) without the
// smoothing lag of a mean.
type Denoiser struct {
	sampler RangeSampler
	clock   timeutil.Clock
	samples int
	pause   time.Duration
}

// NewDenoiser creates a Denoiser taking samples-many readings per estimate,
// with pause between consecutive readings so the previous echo fully
// dissipates before the next trigger. The sample count must be odd and at
// least 3 so the median is an actual sample, with no averaging tie-break.
func NewDenoiser(sampler RangeSampler, clock timeutil.Clock, samples int, pause time.Duration) (*Denoiser, error) {
	if samples < 3 || samples%2 == 0 {
		return nil, fmt.Errorf("sample count must be odd and >= 3, got %d", samples)
	}
	if pause < 0 {
		return nil, fmt.Errorf("inter-sample pause must be non-negative, got %v", pause)
	}
	return &Denoiser{
		sampler: sampler,
		clock:   clock,
		samples: samples,
		pause:   pause,
	}, nil
}

// Stabilize measures the zone repeatedly and returns the median distance,
// rounded to one decimal place. The context is checked between samples; a
// cancelled context finishes the estimate with the samples gathered so far
// padded by sentinels rather than returning an error, keeping the chain
// total.
func (d *Denoiser) Stabilize(ctx context.Context, zone Zone) float64 {
	window := make([]float64, 0, d.samples)
	for i := 0; i < d.samples; i++ {
		if i > 0 {
			d.clock.Sleep(d.pause)
		}
		if ctx.Err() != nil {
			break
		}
		window = append(window, d.sampler.Measure(ctx, zone))
	}
	for len(window) < d.samples {
		window = append(window, NoObjectCM)
	}

	sort.Float64s(window)
	// Empirical quantile at p=0.5 over an odd-length sorted window is
	// exactly the middle sample.
	median := stat.Quantile(0.5, stat.Empirical, window, nil)
	return Round1(median)
}

// Round1 rounds a distance to one decimal place, the precision the boundary
// reports.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
