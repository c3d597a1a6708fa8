// Package engine classifies raw GPS and inertial sensor streams from a
// wheelchair into discrete motion events (stops, bumps, falls, sharp turns,
// backward movement, inclines, overspeed) and accumulates a journey summary.
//
// The package is pure computation: no I/O, no goroutines, no timers. Cooldowns
// and sustained-condition gates are deadline timestamps compared against
// sample timestamps, so pausing or stopping a session can never race a stale
// callback. A Controller and everything it owns must be driven from a single
// goroutine; callers that receive samples concurrently serialize around it.
package engine

// LocationSample is one raw GPS fix as delivered by the location provider.
type LocationSample struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	TimestampMs int64   `json:"timestamp_ms"`
	// AccuracyM is the reported horizontal accuracy in meters.
	// Zero or negative means the provider did not report accuracy.
	AccuracyM float64 `json:"accuracy_m"`
	// SpeedMps is the provider-reported speed. Negative means unreported.
	SpeedMps float64 `json:"speed_mps"`
	// HeadingDeg is the provider-reported heading in [0,360).
	// Negative means unreported.
	HeadingDeg float64 `json:"heading_deg"`
}

// InertialSample is one accelerometer (m/s²) or gyroscope (rad/s) reading in
// the device frame.
type InertialSample struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Z           float64 `json:"z"`
	TimestampMs int64   `json:"timestamp_ms"`
}

// EventKind identifies a classified motion event.
type EventKind string

const (
	EventStop       EventKind = "stop"
	EventBump       EventKind = "bump"
	EventFall       EventKind = "fall"
	EventSharpTurn  EventKind = "sharp_turn"
	EventOverspeed  EventKind = "overspeed"
	EventSpeedLimit EventKind = "speed_limit"
	EventBackward   EventKind = "backward"
	EventIncline    EventKind = "incline"
)

// Intensity labels for classified events.
const (
	IntensityMinor = "minor"
	IntensityMajor = "major"
	IntensityAlert = "alert"
)

// Event is one classified motion event.
type Event struct {
	Kind      EventKind `json:"kind"`
	Intensity string    `json:"intensity"`
	// Direction is "left" or "right" for sharp turns, empty otherwise.
	Direction string `json:"direction,omitempty"`
	AtMs      int64  `json:"at_ms"`
}

// EventSink receives classified events as they fire.
type EventSink interface {
	Emit(Event)
}

// EventSinkFunc adapts a function to the EventSink interface.
type EventSinkFunc func(Event)

func (f EventSinkFunc) Emit(e Event) { f(e) }
