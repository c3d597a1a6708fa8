package engine

import "testing"

func TestFilterRejectsLowAccuracyFix(t *testing.T) {
	f := NewLocationFilter(DefaultConfig())

	out := f.Update(LocationSample{Lat: 0, Lng: 0, TimestampMs: 0, SpeedMps: -1})
	if !out.Accepted {
		t.Fatalf("seed fix should be accepted")
	}

	before := f.TotalDistanceM()
	out = f.Update(LocationSample{Lat: 0.001, Lng: 0.001, TimestampMs: 1000, AccuracyM: 50, SpeedMps: -1})
	if out.Accepted {
		t.Fatalf("low-accuracy fix should be rejected")
	}
	if f.TotalDistanceM() != before {
		t.Fatalf("rejected fix changed cumulative distance")
	}
}

func TestFilterDistanceMonotonic(t *testing.T) {
	f := NewLocationFilter(DefaultConfig())

	var prev float64
	for i := 0; i < 20; i++ {
		f.Update(LocationSample{
			Lat:         float64(i) * 0.0001,
			Lng:         0,
			TimestampMs: int64(i) * 1000,
			SpeedMps:    1.0,
		})
		if f.TotalDistanceM() < prev {
			t.Fatalf("distance regressed: %v < %v", f.TotalDistanceM(), prev)
		}
		prev = f.TotalDistanceM()
	}
	if prev == 0 {
		t.Fatalf("expected accumulated distance")
	}
}

func TestFilterStationaryDriftIgnored(t *testing.T) {
	cfg := DefaultConfig()
	f := NewLocationFilter(cfg)

	// Sub-meter jitter at zero reported speed should never count as travel.
	f.Update(LocationSample{Lat: 10, Lng: 10, TimestampMs: 0, SpeedMps: 0})
	for i := 1; i <= 10; i++ {
		jitter := 0.000002 * float64(i%2) // ~0.2 m
		f.Update(LocationSample{Lat: 10 + jitter, Lng: 10, TimestampMs: int64(i) * 1000, SpeedMps: 0})
	}
	if f.TotalDistanceM() != 0 {
		t.Fatalf("stationary drift inflated distance: %v", f.TotalDistanceM())
	}
}

func TestFilterDerivedSpeed(t *testing.T) {
	f := NewLocationFilter(DefaultConfig())
	f.Update(LocationSample{Lat: 0, Lng: 0, TimestampMs: 0, SpeedMps: -1})

	// ~11.1 m in 10 s, no reported speed.
	out := f.Update(LocationSample{Lat: 0.0001, Lng: 0, TimestampMs: 10000, SpeedMps: -1})
	if out.SpeedMps < 1.0 || out.SpeedMps > 1.3 {
		t.Fatalf("unexpected derived speed: %v", out.SpeedMps)
	}
}

func TestFilterZeroDtSpeedIsZero(t *testing.T) {
	f := NewLocationFilter(DefaultConfig())
	f.Update(LocationSample{Lat: 0, Lng: 0, TimestampMs: 1000, SpeedMps: -1})

	out := f.Update(LocationSample{Lat: 0.0001, Lng: 0, TimestampMs: 1000, SpeedMps: -1})
	if out.SpeedMps != 0 {
		t.Fatalf("expected zero speed for non-positive dt, got %v", out.SpeedMps)
	}
}

func TestFilterReportedSpeedPreferred(t *testing.T) {
	f := NewLocationFilter(DefaultConfig())
	f.Update(LocationSample{Lat: 0, Lng: 0, TimestampMs: 0, SpeedMps: -1})

	out := f.Update(LocationSample{Lat: 0.0001, Lng: 0, TimestampMs: 1000, SpeedMps: 0.7})
	if out.SpeedMps != 0.7 {
		t.Fatalf("expected reported speed, got %v", out.SpeedMps)
	}
}

func TestFilterKalmanSmoothsJitter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UseKalman = true
	f := NewLocationFilter(cfg)

	f.Update(LocationSample{Lat: 10, Lng: 10, TimestampMs: 0, SpeedMps: 0})
	out := f.Update(LocationSample{Lat: 10.001, Lng: 10, TimestampMs: 1000, SpeedMps: 0})

	// Gain below one: the filtered coordinate lags the raw jump.
	if out.Lat <= 10 || out.Lat >= 10.001 {
		t.Fatalf("expected filtered lat between raw endpoints, got %v", out.Lat)
	}
}

func TestFilterReset(t *testing.T) {
	f := NewLocationFilter(DefaultConfig())
	f.Update(LocationSample{Lat: 0, Lng: 0, TimestampMs: 0, SpeedMps: 1})
	f.Update(LocationSample{Lat: 0.001, Lng: 0, TimestampMs: 1000, SpeedMps: 1})
	if f.TotalDistanceM() == 0 {
		t.Fatalf("expected distance before reset")
	}

	f.Reset()
	if f.TotalDistanceM() != 0 {
		t.Fatalf("expected zero distance after reset")
	}
}
