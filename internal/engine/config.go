package engine

import "time"

// Config carries every filter and detector threshold. The algorithm shape is
// fixed; deployments tune the numbers, so nothing here is hard-coded in the
// detectors themselves.
type Config struct {
	// Location filter.
	AccuracyMaxM      float64 // fixes with reported accuracy above this are dropped
	SmoothingAlpha    float64 // low-pass weight on the raw coordinate
	UseKalman         bool    // scalar per-axis Kalman instead of the low-pass
	KalmanProcessVar  float64 // Q
	KalmanMeasureVar  float64 // R
	DistanceNoiseM    float64 // minimum per-step delta counted as movement
	MinMovingSpeedMps float64 // speed above which deltas always count

	// Shared event cooldown: one firing detector suppresses siblings.
	EventCooldown time.Duration

	// Stillness / stop detection.
	StillnessDelta  float64       // max per-axis accel delta to count as still
	StillnessWindow time.Duration // continuous stillness before a stop is recorded

	// Vertical bump detection.
	BumpMinorDelta    float64 // |z - baseline| above this is a minor bump
	BumpMajorDelta    float64 // and above this a major one
	BaselineAdaptRate float64 // weight of the new z when adapting the baseline
	BaselineAdaptBand float64 // adapt only while z is within this band of baseline

	// Orientation fall detection.
	FallAngleDeg float64       // tilt from the gravity baseline that means fallen
	FallSustain  time.Duration // tilt must hold this long before firing

	// Free-fall detection.
	FreeFallMagnitude float64 // accel magnitude below this means free fall
	FallDropHeightM   float64 // computed drop above this is a fall, else a bump

	// Sharp turn detection. Rotation rates at or below the minor threshold
	// are treated as steering noise.
	TurnMinorRate float64
	TurnMajorRate float64

	// Speed detection.
	OverspeedMps       float64       // rising-edge overspeed threshold
	SpeedLimitMps      float64       // level-triggered limit alert, 0 disables
	SpeedAlertCooldown time.Duration // limit alert re-fire interval

	// Backward movement detection.
	BackwardWindow        time.Duration // coordinate buffer span
	BackwardAngleTolDeg   float64       // tolerance around forward+180
	BackwardMinDistanceM  float64       // buffered displacement before evaluating
	BackwardMinDuration   time.Duration // buffered time before evaluating
	BackwardRearmSpeedMps float64       // speed must drop below this to re-arm

	// Session.
	CountdownDuration time.Duration
}

// DefaultConfig is the standard preset.
func DefaultConfig() Config {
	return Config{
		AccuracyMaxM:      20,
		SmoothingAlpha:    0.95,
		KalmanProcessVar:  0.01,
		KalmanMeasureVar:  10,
		DistanceNoiseM:    1.0,
		MinMovingSpeedMps: 0.2,

		EventCooldown: time.Second,

		StillnessDelta:  0.05,
		StillnessWindow: 15 * time.Second,

		BumpMinorDelta:    2.5,
		BumpMajorDelta:    5.0,
		BaselineAdaptRate: 0.05,
		BaselineAdaptBand: 0.2,

		FallAngleDeg: 45,
		FallSustain:  500 * time.Millisecond,

		FreeFallMagnitude: 3.0,
		FallDropHeightM:   0.1524,

		TurnMinorRate: 1.5,
		TurnMajorRate: 3.0,

		OverspeedMps:       2.5,
		SpeedLimitMps:      3.0,
		SpeedAlertCooldown: 30 * time.Second,

		BackwardWindow:        3 * time.Second,
		BackwardAngleTolDeg:   30,
		BackwardMinDistanceM:  0.3,
		BackwardMinDuration:   500 * time.Millisecond,
		BackwardRearmSpeedMps: 0.1,

		CountdownDuration: 3 * time.Second,
	}
}

// PresetByName maps a configuration name to a preset. The presets preserve
// the threshold sets seen on different chair/firmware combinations: sensitive
// rigs report cleaner accelerometer data and can run tighter thresholds,
// relaxed rigs the opposite. Unknown names fall back to the default.
func PresetByName(name string) Config {
	switch name {
	case "sensitive":
		cfg := DefaultConfig()
		cfg.BumpMinorDelta = 2.0
		cfg.BumpMajorDelta = 4.0
		cfg.TurnMinorRate = 1.2
		cfg.TurnMajorRate = 2.5
		cfg.BackwardAngleTolDeg = 25
		cfg.BackwardMinDistanceM = 0.2
		return cfg
	case "relaxed":
		cfg := DefaultConfig()
		cfg.BumpMinorDelta = 3.0
		cfg.BumpMajorDelta = 6.0
		cfg.TurnMinorRate = 2.0
		cfg.TurnMajorRate = 4.0
		cfg.DistanceNoiseM = 3.0
		return cfg
	default:
		return DefaultConfig()
	}
}
