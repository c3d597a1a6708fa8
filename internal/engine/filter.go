package engine

import "backend-rollpath/internal/shared/geo"

// FilterOutput is the result of feeding one raw fix through the filter.
type FilterOutput struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	SpeedMps float64 `json:"speed_mps"`
	DeltaM   float64 `json:"delta_m"`
	Accepted bool    `json:"accepted"`
}

// LocationFilter smooths a raw coordinate stream and accumulates traveled
// distance, rejecting low-accuracy fixes and stationary GPS drift.
type LocationFilter struct {
	cfg Config

	seeded bool
	fLat   float64 // filtered coordinate
	fLng   float64
	pLat   float64 // per-axis Kalman covariance
	pLng   float64

	rawLat  float64
	rawLng  float64
	rawAtMs int64
	totalM  float64
}

func NewLocationFilter(cfg Config) *LocationFilter {
	return &LocationFilter{cfg: cfg}
}

// Update consumes one raw fix. Fixes whose reported accuracy exceeds the
// configured maximum are rejected without touching any state.
func (f *LocationFilter) Update(s LocationSample) FilterOutput {
	if s.AccuracyM > 0 && s.AccuracyM > f.cfg.AccuracyMaxM {
		return FilterOutput{Lat: f.fLat, Lng: f.fLng}
	}

	if !f.seeded {
		f.seeded = true
		f.fLat, f.fLng = s.Lat, s.Lng
		f.pLat = f.cfg.KalmanMeasureVar
		f.pLng = f.cfg.KalmanMeasureVar
		f.rawLat, f.rawLng, f.rawAtMs = s.Lat, s.Lng, s.TimestampMs
		speed := 0.0
		if s.SpeedMps >= 0 {
			speed = s.SpeedMps
		}
		return FilterOutput{Lat: f.fLat, Lng: f.fLng, SpeedMps: speed, Accepted: true}
	}

	speed := f.instantSpeed(s)

	prevLat, prevLng := f.fLat, f.fLng
	if f.cfg.UseKalman {
		f.fLat, f.pLat = kalmanStep(f.fLat, f.pLat, s.Lat, f.cfg.KalmanProcessVar, f.cfg.KalmanMeasureVar)
		f.fLng, f.pLng = kalmanStep(f.fLng, f.pLng, s.Lng, f.cfg.KalmanProcessVar, f.cfg.KalmanMeasureVar)
	} else {
		a := f.cfg.SmoothingAlpha
		f.fLat = a*s.Lat + (1-a)*f.fLat
		f.fLng = a*s.Lng + (1-a)*f.fLng
	}

	delta := geo.DistanceM(prevLat, prevLng, f.fLat, f.fLng)
	// Dual gate: tiny deltas at rest are jitter, but the same delta while the
	// chair is demonstrably moving is real travel.
	if delta > f.cfg.DistanceNoiseM || speed > f.cfg.MinMovingSpeedMps {
		f.totalM += delta
	} else {
		delta = 0
	}

	f.rawLat, f.rawLng, f.rawAtMs = s.Lat, s.Lng, s.TimestampMs
	return FilterOutput{Lat: f.fLat, Lng: f.fLng, SpeedMps: speed, DeltaM: delta, Accepted: true}
}

// instantSpeed prefers the provider-reported speed and falls back to deriving
// one from consecutive raw fixes.
func (f *LocationFilter) instantSpeed(s LocationSample) float64 {
	if s.SpeedMps >= 0 {
		return s.SpeedMps
	}
	dt := float64(s.TimestampMs-f.rawAtMs) / 1000
	if dt <= 0 {
		return 0
	}
	return geo.DistanceM(f.rawLat, f.rawLng, s.Lat, s.Lng) / dt
}

// TotalDistanceM is the cumulative accepted travel distance. Non-decreasing
// for the life of the filter.
func (f *LocationFilter) TotalDistanceM() float64 { return f.totalM }

// Reset returns the filter to its unseeded initial state.
func (f *LocationFilter) Reset() {
	*f = LocationFilter{cfg: f.cfg}
}

// kalmanStep runs one scalar predict/update cycle and returns the new estimate
// and covariance.
func kalmanStep(x, p, z, q, r float64) (float64, float64) {
	p += q
	k := p / (p + r)
	x += k * (z - x)
	p *= 1 - k
	return x, p
}
