package engine

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeClock drives the controller without real sleeping.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestController(t *testing.T, opts ...ControllerOption) (*Controller, *fakeClock, *captureSink) {
	t.Helper()
	clock := &fakeClock{t: time.UnixMilli(0)}
	sink := &captureSink{}
	opts = append([]ControllerOption{WithClock(clock.now)}, opts...)
	return NewController(DefaultConfig(), sink, opts...), clock, sink
}

func activeController(t *testing.T) (*Controller, *fakeClock, *captureSink) {
	t.Helper()
	c, clock, sink := newTestController(t)
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	clock.advance(3 * time.Second)
	if c.State() != StateActive {
		t.Fatalf("expected active after countdown, got %v", c.State())
	}
	return c, clock, sink
}

func TestPermissionGateDeniesStart(t *testing.T) {
	c, _, _ := newTestController(t, WithPermissionGate(func(context.Context) (bool, error) {
		return false, nil
	}))

	if err := c.Start(context.Background()); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
	if c.State() != StateIdle {
		t.Fatalf("denied start must stay idle")
	}
}

func TestCountdownGatesSampleProcessing(t *testing.T) {
	c, clock, _ := newTestController(t)
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if c.State() != StateCountdown {
		t.Fatalf("expected countdown, got %v", c.State())
	}

	out := c.OnLocation(LocationSample{Lat: 1, Lng: 1, TimestampMs: 100, SpeedMps: 1})
	if out.Accepted {
		t.Fatalf("sample processed during countdown")
	}

	clock.advance(3 * time.Second)
	out = c.OnLocation(LocationSample{Lat: 1, Lng: 1, TimestampMs: 3100, SpeedMps: 1})
	if !out.Accepted {
		t.Fatalf("sample rejected after countdown")
	}
}

func TestPauseSuspendsWithoutReset(t *testing.T) {
	c, _, sink := activeController(t)

	c.OnAccel(InertialSample{Z: 9.8, TimestampMs: 3100})
	if err := c.Pause(); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if c.State() != StatePaused {
		t.Fatalf("expected paused")
	}

	// Bump-magnitude sample while paused is swallowed.
	c.OnAccel(InertialSample{Z: 13, TimestampMs: 4000})
	if len(sink.byKind(EventBump)) != 0 {
		t.Fatalf("event emitted while paused")
	}

	if err := c.Resume(); err != nil {
		t.Fatalf("resume: %v", err)
	}
	// Detector state survived the pause: the baseline seeded before pausing
	// still classifies this as a bump.
	c.OnAccel(InertialSample{Z: 13, TimestampMs: 5000})
	if len(sink.byKind(EventBump)) != 1 {
		t.Fatalf("expected bump after resume")
	}
}

func TestInvalidTransitions(t *testing.T) {
	c, _, _ := newTestController(t)

	if err := c.Pause(); !errors.Is(err, ErrBadTransition) {
		t.Fatalf("pause from idle must fail")
	}
	if err := c.Resume(); !errors.Is(err, ErrBadTransition) {
		t.Fatalf("resume from idle must fail")
	}
	if _, err := c.Stop(); !errors.Is(err, ErrBadTransition) {
		t.Fatalf("stop from idle must fail")
	}
	if _, err := c.Summary(); !errors.Is(err, ErrNotStopped) {
		t.Fatalf("summary before stop must fail")
	}

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := c.Start(context.Background()); !errors.Is(err, ErrBadTransition) {
		t.Fatalf("double start must fail")
	}
}

func TestStopFinalizesAndSamplesBecomeNoOps(t *testing.T) {
	c, clock, _ := activeController(t)

	c.OnLocation(LocationSample{Lat: 0, Lng: 0, TimestampMs: 3100, SpeedMps: 1})
	c.OnLocation(LocationSample{Lat: 0.0001, Lng: 0, TimestampMs: 4100, SpeedMps: 1})

	clock.advance(10 * time.Second)
	sum, err := c.Stop()
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if sum.TotalDistanceM == 0 {
		t.Fatalf("expected distance in summary")
	}
	if sum.AverageSpeedMps != 1 {
		t.Fatalf("expected average speed 1, got %v", sum.AverageSpeedMps)
	}

	// Late samples against a stopped session are no-ops.
	before := c.Progress().TotalDistanceM
	c.OnLocation(LocationSample{Lat: 0.001, Lng: 0, TimestampMs: 20000, SpeedMps: 2})
	c.OnAccel(InertialSample{Z: 13, TimestampMs: 20000})
	c.OnGyro(InertialSample{X: 5, TimestampMs: 20000})
	c.OnRamp(20000)
	if c.Progress().TotalDistanceM != before {
		t.Fatalf("stopped session mutated by late samples")
	}

	got, err := c.Summary()
	if err != nil || got.TotalDistanceM != sum.TotalDistanceM {
		t.Fatalf("summary mismatch after stop")
	}
}

func TestStopClosesOpenStillness(t *testing.T) {
	c, clock, _ := activeController(t)

	for ts := int64(3100); ts <= 19000; ts += 250 {
		c.OnAccel(InertialSample{Z: 9.8, TimestampMs: ts})
	}

	clock.advance(20 * time.Second)
	sum, err := c.Stop()
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if len(sum.Stops) != 1 {
		t.Fatalf("expected the open stop to be closed at stop, got %d", len(sum.Stops))
	}
}

func TestResetIsIdempotentAndIsolatesJourneys(t *testing.T) {
	c, clock, sink := activeController(t)

	// First journey leaves counters, stops and baselines behind.
	c.OnAccel(InertialSample{Z: 9.8, TimestampMs: 3100})
	c.OnAccel(InertialSample{Z: 13, TimestampMs: 4100})
	c.OnLocation(LocationSample{Lat: 0, Lng: 0, TimestampMs: 3100, SpeedMps: 1})
	c.OnLocation(LocationSample{Lat: 0.0001, Lng: 0, TimestampMs: 4100, SpeedMps: 1})

	if _, err := c.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := c.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := c.Reset(); err != nil {
		t.Fatalf("second reset: %v", err)
	}
	if c.State() != StateIdle {
		t.Fatalf("expected idle after reset")
	}

	// Second journey starts from first principles: zero totals, and the first
	// accel sample seeds a fresh baseline instead of reading as a bump
	// against the previous journey's.
	sink.events = nil
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("restart: %v", err)
	}
	clock.advance(3 * time.Second)

	p := c.Progress()
	if p.TotalDistanceM != 0 || len(p.Counts) != 0 || p.StopCount != 0 {
		t.Fatalf("second journey inherited state: %+v", p)
	}

	c.OnAccel(InertialSample{Z: 13, TimestampMs: 50000})
	if len(sink.byKind(EventBump)) != 0 {
		t.Fatalf("first sample of new journey classified against stale baseline")
	}
}
