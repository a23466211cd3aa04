// Package publisher runs the periodic publish cycle: it drives the three
// zone engines, aggregates their readings into a StatusRecord, and exposes
// the latest record to transport readers as an atomic snapshot.
package publisher

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/real-ds/IOT-ADAS/internal/hazard"
	"github.com/real-ds/IOT-ADAS/internal/monitoring"
	"github.com/real-ds/IOT-ADAS/internal/timeutil"
)

// Sink receives every freshly published record. A failing sink is logged and
// skipped; it never blocks or aborts the publish loop.
type Sink interface {
	Publish(record *hazard.StatusRecord) error
}

// Publisher owns the publish cycle. It is the single writer of the shared
// status record; transports read concurrently via Latest and always see a
// fully-formed record from one cycle, never a mix of cycles, because the
// record pointer is swapped whole.
type Publisher struct {
	engines    [3]*hazard.ZoneEngine
	thresholds hazard.Thresholds
	clock      timeutil.Clock
	interval   time.Duration
	sinks      []Sink

	latest atomic.Pointer[hazard.StatusRecord]
}

// New creates a Publisher over the three zone engines, which must be in
// Left, Center, Right order.
func New(engines [3]*hazard.ZoneEngine, thresholds hazard.Thresholds, clock timeutil.Clock, interval time.Duration, sinks ...Sink) (*Publisher, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("publish interval must be positive, got %v", interval)
	}
	for i, engine := range engines {
		if engine == nil {
			return nil, fmt.Errorf("zone engine %d is nil", i)
		}
		if engine.Zone() != hazard.Zones[i] {
			return nil, fmt.Errorf("engine %d covers zone %s, want %s", i, engine.Zone(), hazard.Zones[i])
		}
	}
	return &Publisher{
		engines:    engines,
		thresholds: thresholds,
		clock:      clock,
		interval:   interval,
		sinks:      sinks,
	}, nil
}

// Latest returns the most recently published record, or nil before the first
// cycle completes. It never samples and never blocks.
func (p *Publisher) Latest() *hazard.StatusRecord {
	return p.latest.Load()
}

// RunCycle performs one full publish cycle and returns the published record.
//
// The three zones are sampled strictly one after another: simultaneous
// pulses from adjacent sensors cross-interfere (one sensor's echo detector
// fires on another's pulse), so the sequential order is a correctness
// requirement, not a performance choice. Do not parallelise these reads.
func (p *Publisher) RunCycle(ctx context.Context) *hazard.StatusRecord {
	var readings [3]hazard.ZoneReading
	for i, engine := range p.engines {
		readings[i] = engine.Read(ctx)
	}

	record := hazard.Aggregate(readings, p.thresholds)
	record.CycleID = uuid.NewString()
	record.CapturedAt = p.clock.Now().UTC()

	p.latest.Store(&record)

	for _, sink := range p.sinks {
		if err := sink.Publish(&record); err != nil {
			monitoring.Logf("publisher: sink failed for cycle %s: %v", record.CycleID, err)
		}
	}

	return &record
}

// Run publishes one cycle immediately and then on every tick until the
// context is cancelled. A cycle always runs to completion; cancellation is
// honoured between cycles.
func (p *Publisher) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.RunCycle(ctx)

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C():
			p.RunCycle(ctx)
		}
	}
}
