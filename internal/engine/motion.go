package engine

import (
	"math"

	"backend-rollpath/internal/shared/geo"
)

const gravityMps2 = 9.81

// stopRecorder receives closed stop intervals that survived the stillness
// window. The aggregator implements it.
type stopRecorder interface {
	recordStop(startMs, endMs int64)
}

type trackPoint struct {
	lat, lng float64
	atMs     int64
}

// Classifier runs the motion detectors over accelerometer, gyroscope and
// filtered-location inputs and emits classified events through its sink.
//
// All detectors share one cooldown timestamp: whichever fires suppresses the
// others for the configured window, debouncing a single physical jerk into a
// single event. The speed-limit alert runs on its own longer cooldown and
// neither checks nor arms the shared one. Detectors are evaluated in a fixed
// order (stillness, fall, bump on the accel path; turn on the gyro path;
// overspeed then backward on the location path) because fall state suppresses
// bump detection.
type Classifier struct {
	cfg   Config
	sink  EventSink
	stops stopRecorder

	cooldownUntilMs int64

	// Stillness.
	prevAccel    InertialSample
	hasPrevAccel bool
	stillSinceMs int64
	stillOpen    bool

	// Vertical bump baseline.
	zBaseline    float64
	zBaselineSet bool

	// Orientation fall.
	gravity    [3]float64
	gravitySet bool
	tiltSince  int64
	fallen     bool

	// Free fall.
	freefallStartMs int64

	// Speed.
	prevSpeed         float64
	hasPrevSpeed      bool
	speedAlertUntilMs int64

	// Backward movement.
	backBuf        []trackPoint
	backArmed      bool
	forwardHeading float64
	hasHeading     bool
}

func NewClassifier(cfg Config, sink EventSink, stops stopRecorder) *Classifier {
	return &Classifier{cfg: cfg, sink: sink, stops: stops, backArmed: true}
}

// Fallen reports whether the orientation detector currently considers the
// chair tipped over.
func (c *Classifier) Fallen() bool { return c.fallen }

// OnAccel consumes one accelerometer sample. Evaluation order matters:
// stillness first (an interrupted stillness run must close before anything
// else fires), then the fall detectors, then bump, which fall state
// suppresses.
func (c *Classifier) OnAccel(s InertialSample) {
	c.updateStillness(s)
	c.updateFreeFall(s)
	c.updateOrientation(s)
	c.updateBump(s)

	c.prevAccel = s
	c.hasPrevAccel = true
}

// OnGyro consumes one gyroscope sample and runs sharp-turn detection.
func (c *Classifier) OnGyro(s InertialSample) {
	rate := math.Max(math.Abs(s.X), math.Abs(s.Z))
	if rate <= c.cfg.TurnMinorRate {
		return
	}

	dominant := s.X
	if math.Abs(s.Z) > math.Abs(s.X) {
		dominant = s.Z
	}
	direction := "right"
	if dominant < 0 {
		direction = "left"
	}

	intensity := IntensityMinor
	if rate > c.cfg.TurnMajorRate {
		intensity = IntensityMajor
	}
	c.emit(Event{Kind: EventSharpTurn, Intensity: intensity, Direction: direction, AtMs: s.TimestampMs})
}

// OnSpeed consumes one filtered instantaneous speed reading.
func (c *Classifier) OnSpeed(speed float64, atMs int64) {
	// Rising-edge overspeed: fires on the transition, not the level.
	if c.hasPrevSpeed && c.prevSpeed <= c.cfg.OverspeedMps && speed > c.cfg.OverspeedMps {
		c.emit(Event{Kind: EventOverspeed, Intensity: IntensityAlert, AtMs: atMs})
	}

	// Level-triggered limit alert on its own cooldown, independent of the
	// shared debounce window.
	if c.cfg.SpeedLimitMps > 0 && speed > c.cfg.SpeedLimitMps && atMs >= c.speedAlertUntilMs {
		c.speedAlertUntilMs = atMs + c.cfg.SpeedAlertCooldown.Milliseconds()
		c.sink.Emit(Event{Kind: EventSpeedLimit, Intensity: IntensityAlert, AtMs: atMs})
	}

	c.prevSpeed = speed
	c.hasPrevSpeed = true
}

// OnPosition consumes one filtered coordinate for backward-movement
// detection. heading is the provider-reported forward heading in degrees, or
// negative when unreported; without any heading ever seen the detector stays
// quiet.
func (c *Classifier) OnPosition(lat, lng, heading, speed float64, atMs int64) {
	if heading >= 0 && heading < 360 {
		c.forwardHeading = heading
		c.hasHeading = true
	}
	if speed < c.cfg.BackwardRearmSpeedMps {
		c.backArmed = true
	}

	c.backBuf = append(c.backBuf, trackPoint{lat: lat, lng: lng, atMs: atMs})
	cutoff := atMs - c.cfg.BackwardWindow.Milliseconds()
	for len(c.backBuf) > 0 && c.backBuf[0].atMs < cutoff {
		c.backBuf = c.backBuf[1:]
	}

	if !c.hasHeading || !c.backArmed || len(c.backBuf) < 2 {
		return
	}
	span := c.backBuf[len(c.backBuf)-1].atMs - c.backBuf[0].atMs
	if span < c.cfg.BackwardMinDuration.Milliseconds() {
		return
	}

	// Decompose each segment into east/north components weighted by segment
	// length, so the travel bearing reflects where the chair actually went
	// rather than the jitter of any single fix.
	var east, north, total float64
	for i := 1; i < len(c.backBuf); i++ {
		a, b := c.backBuf[i-1], c.backBuf[i]
		d := geo.DistanceM(a.lat, a.lng, b.lat, b.lng)
		if d == 0 {
			continue
		}
		brg := geo.BearingDeg(a.lat, a.lng, b.lat, b.lng)
		if math.IsNaN(brg) {
			continue
		}
		east += d * math.Sin(geo.Radians(brg))
		north += d * math.Cos(geo.Radians(brg))
		total += d
	}
	if total < c.cfg.BackwardMinDistanceM {
		return
	}

	travel := geo.NormalizeDeg(geo.Degrees(math.Atan2(east, north)))
	reverse := geo.NormalizeDeg(c.forwardHeading + 180)
	if geo.AngleDiffDeg(travel, reverse) <= c.cfg.BackwardAngleTolDeg {
		if c.emit(Event{Kind: EventBackward, Intensity: IntensityAlert, AtMs: atMs}) {
			// One event per backward episode: re-arms only once speed drops
			// below the moving threshold.
			c.backArmed = false
			c.backBuf = c.backBuf[:0]
		}
	}
}

// OnRamp forwards an incline event from the external ramp-detection
// collaborator. The engine treats it as a black-box event source.
func (c *Classifier) OnRamp(atMs int64) {
	c.emit(Event{Kind: EventIncline, Intensity: IntensityAlert, AtMs: atMs})
}

// CloseOpenStop closes a stop interval still open at session end.
func (c *Classifier) CloseOpenStop(endMs int64) {
	if c.stillOpen && c.stops != nil {
		c.stops.recordStop(c.stillSinceMs, endMs)
	}
	c.stillOpen = false
	c.stillSinceMs = 0
}

func (c *Classifier) updateStillness(s InertialSample) {
	if !c.hasPrevAccel {
		return
	}
	still := math.Abs(s.X-c.prevAccel.X) < c.cfg.StillnessDelta &&
		math.Abs(s.Y-c.prevAccel.Y) < c.cfg.StillnessDelta &&
		math.Abs(s.Z-c.prevAccel.Z) < c.cfg.StillnessDelta

	if still {
		if c.stillSinceMs == 0 {
			c.stillSinceMs = s.TimestampMs
		}
		if !c.stillOpen && s.TimestampMs-c.stillSinceMs >= c.cfg.StillnessWindow.Milliseconds() {
			c.stillOpen = true
			c.emit(Event{Kind: EventStop, Intensity: IntensityAlert, AtMs: s.TimestampMs})
		}
		return
	}

	// Interrupted: record the stop only if it survived the full window,
	// shorter pauses are discarded silently.
	if c.stillOpen && c.stops != nil {
		c.stops.recordStop(c.stillSinceMs, s.TimestampMs)
	}
	c.stillOpen = false
	c.stillSinceMs = 0
}

func (c *Classifier) updateBump(s InertialSample) {
	if !c.zBaselineSet {
		c.zBaseline = s.Z
		c.zBaselineSet = true
		return
	}

	dev := math.Abs(s.Z - c.zBaseline)
	if dev <= c.cfg.BaselineAdaptBand {
		// Track slow gravity-axis drift, never a bump in progress.
		r := c.cfg.BaselineAdaptRate
		c.zBaseline = (1-r)*c.zBaseline + r*s.Z
		return
	}

	if c.fallen || dev <= c.cfg.BumpMinorDelta {
		return
	}
	intensity := IntensityMinor
	if dev > c.cfg.BumpMajorDelta {
		intensity = IntensityMajor
	}
	c.emit(Event{Kind: EventBump, Intensity: intensity, AtMs: s.TimestampMs})
}

func (c *Classifier) updateOrientation(s InertialSample) {
	mag := vecMag(s.X, s.Y, s.Z)
	if mag == 0 {
		// Degenerate vector, skip rather than divide by zero.
		return
	}
	if !c.gravitySet {
		c.gravity = [3]float64{s.X, s.Y, s.Z}
		c.gravitySet = true
		return
	}
	gmag := vecMag(c.gravity[0], c.gravity[1], c.gravity[2])
	if gmag == 0 {
		c.gravitySet = false
		return
	}

	dot := s.X*c.gravity[0] + s.Y*c.gravity[1] + s.Z*c.gravity[2]
	cos := math.Max(-1, math.Min(1, dot/(mag*gmag)))
	angle := geo.Degrees(math.Acos(cos))

	if angle > c.cfg.FallAngleDeg {
		if c.tiltSince == 0 {
			c.tiltSince = s.TimestampMs
		}
		if !c.fallen && s.TimestampMs-c.tiltSince >= c.cfg.FallSustain.Milliseconds() {
			c.fallen = true
			c.emit(Event{Kind: EventFall, Intensity: IntensityMajor, AtMs: s.TimestampMs})
		}
		return
	}

	c.tiltSince = 0
	c.fallen = false
	// Adapt the gravity baseline only while upright.
	r := c.cfg.BaselineAdaptRate
	c.gravity[0] = (1-r)*c.gravity[0] + r*s.X
	c.gravity[1] = (1-r)*c.gravity[1] + r*s.Y
	c.gravity[2] = (1-r)*c.gravity[2] + r*s.Z
}

func (c *Classifier) updateFreeFall(s InertialSample) {
	mag := vecMag(s.X, s.Y, s.Z)
	if mag < c.cfg.FreeFallMagnitude {
		if c.freefallStartMs == 0 {
			c.freefallStartMs = s.TimestampMs
		}
		return
	}
	if c.freefallStartMs == 0 {
		return
	}

	// Resolved on the recovery edge: drop height decides fall vs bump.
	t := float64(s.TimestampMs-c.freefallStartMs) / 1000
	c.freefallStartMs = 0
	drop := 0.5 * gravityMps2 * t * t
	if drop > c.cfg.FallDropHeightM {
		c.emit(Event{Kind: EventFall, Intensity: IntensityMajor, AtMs: s.TimestampMs})
	} else if drop > 0 {
		c.emit(Event{Kind: EventBump, Intensity: IntensityMinor, AtMs: s.TimestampMs})
	}
}

// emit fires an event unless the shared cooldown window is still open.
// Returns whether the event actually fired.
func (c *Classifier) emit(e Event) bool {
	if e.AtMs < c.cooldownUntilMs {
		return false
	}
	c.cooldownUntilMs = e.AtMs + c.cfg.EventCooldown.Milliseconds()
	c.sink.Emit(e)
	return true
}

func vecMag(x, y, z float64) float64 {
	return math.Sqrt(x*x + y*y + z*z)
}
