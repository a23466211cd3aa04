package hazard

import (
	"context"
	"sync"
)

// NoObjectCM is the sentinel distance meaning "no valid reading": echo
// timeout, below the blanking distance, or beyond rated range. It is chosen
// larger than any real threshold so classification treats it as a clear
// zone, never as "obstacle very close".
const NoObjectCM = 999.0

// RangeSampler acquires one raw distance measurement for a zone. A missing or
// physically impossible echo is reported as NoObjectCM, never as an error:
// the sampling chain is total over its input domain.
type RangeSampler interface {
	Measure(ctx context.Context, zone Zone) float64
}

// ScriptedSampler replays fixed per-zone distance sequences. It backs dev
// mode and the engine tests, and records the order zones were measured in so
// tests can assert the strictly sequential sampling requirement.
type ScriptedSampler struct {
	mu     sync.Mutex
	script map[Zone][]float64
	next   map[Zone]int
	calls  []Zone

	// Loop makes each zone's sequence repeat instead of draining.
	Loop bool
}

// NewScriptedSampler creates a sampler replaying the given per-zone values.
func NewScriptedSampler(script map[Zone][]float64) *ScriptedSampler {
	return &ScriptedSampler{
		script: script,
		next:   make(map[Zone]int),
	}
}

// Measure returns the zone's next scripted value, or NoObjectCM once the
// script is exhausted.
func (s *ScriptedSampler) Measure(_ context.Context, zone Zone) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, zone)

	seq := s.script[zone]
	if len(seq) == 0 {
		return NoObjectCM
	}

	i := s.next[zone]
	if i >= len(seq) {
		if !s.Loop {
			return NoObjectCM
		}
		i = i % len(seq)
	}
	s.next[zone] = i + 1
	return seq[i]
}

// Calls returns every zone measured so far, in call order.
func (s *ScriptedSampler) Calls() []Zone {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Zone, len(s.calls))
	copy(out, s.calls)
	return out
}
