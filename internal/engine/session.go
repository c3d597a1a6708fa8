package engine

import (
	"context"
	"errors"
	"time"
)

// State of the session controller.
type State string

const (
	StateIdle      State = "idle"
	StateCountdown State = "countdown"
	StateActive    State = "active"
	StatePaused    State = "paused"
	StateStopped   State = "stopped"
)

var (
	ErrPermissionDenied = errors.New("sensor permission denied")
	ErrBadTransition    = errors.New("invalid session state transition")
	ErrNotStopped       = errors.New("session not stopped")
)

// PermissionGate is consulted once before the countdown begins. A nil gate
// always allows.
type PermissionGate func(context.Context) (bool, error)

// ControllerOption customizes a Controller.
type ControllerOption func(*Controller)

// WithClock replaces the wall clock, used by tests and the countdown.
func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) { c.now = now }
}

// WithPermissionGate installs the pre-countdown permission check.
func WithPermissionGate(gate PermissionGate) ControllerOption {
	return func(c *Controller) { c.gate = gate }
}

// Controller orchestrates one journey: it owns the location filter, the
// motion classifier and the aggregator, and walks the
// Idle → Countdown → Active ⇄ Paused → Stopped lifecycle.
//
// While Paused or in Countdown, samples are swallowed at the top of every
// input path; detector state is suspended, not reset. Stop tears everything
// down unconditionally and finalizes the summary. There are no timers to
// cancel: every deadline in the engine is a timestamp, and a "timer" that
// would have fired after Stop simply never gets evaluated.
type Controller struct {
	cfg  Config
	now  func() time.Time
	gate PermissionGate
	sink EventSink

	state           State
	countdownEndsAt time.Time

	filter     *LocationFilter
	classifier *Classifier
	agg        *Aggregator
	summary    Summary
}

// NewController wires a controller whose classified events are delivered to
// sink (after being counted by the aggregator).
func NewController(cfg Config, sink EventSink, opts ...ControllerOption) *Controller {
	c := &Controller{cfg: cfg, sink: sink, now: time.Now, state: StateIdle}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start consults the permission gate and enters Countdown. Only valid from
// Idle.
func (c *Controller) Start(ctx context.Context) error {
	if c.state != StateIdle {
		return ErrBadTransition
	}
	if c.gate != nil {
		ok, err := c.gate(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return ErrPermissionDenied
		}
	}

	start := c.now()
	c.countdownEndsAt = start.Add(c.cfg.CountdownDuration)
	c.filter = NewLocationFilter(c.cfg)
	c.agg = NewAggregator(start.UnixMilli())
	c.classifier = NewClassifier(c.cfg, EventSinkFunc(c.dispatch), c.agg)
	c.state = StateCountdown
	return nil
}

// dispatch counts the event, then hands it to the external sink.
func (c *Controller) dispatch(e Event) {
	c.agg.Emit(e)
	if c.sink != nil {
		c.sink.Emit(e)
	}
}

// maybeActivate promotes Countdown to Active once the countdown has elapsed.
func (c *Controller) maybeActivate() {
	if c.state == StateCountdown && !c.now().Before(c.countdownEndsAt) {
		c.state = StateActive
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.maybeActivate()
	return c.state
}

// Pause suspends sample processing without resetting detector state.
func (c *Controller) Pause() error {
	c.maybeActivate()
	if c.state != StateActive {
		return ErrBadTransition
	}
	c.state = StatePaused
	return nil
}

// Resume returns a paused session to Active.
func (c *Controller) Resume() error {
	if c.state != StatePaused {
		return ErrBadTransition
	}
	c.state = StateActive
	return nil
}

// Stop ends the journey from any live state, closes a still-open stop
// interval, finalizes the aggregator and returns the summary.
func (c *Controller) Stop() (Summary, error) {
	c.maybeActivate()
	switch c.state {
	case StateCountdown, StateActive, StatePaused:
	default:
		return Summary{}, ErrBadTransition
	}

	endMs := c.now().UnixMilli()
	c.classifier.CloseOpenStop(endMs)
	c.summary = c.agg.Finalize(endMs)
	c.state = StateStopped
	return c.summary, nil
}

// Summary returns the finalized summary of a stopped session.
func (c *Controller) Summary() (Summary, error) {
	if c.state != StateStopped {
		return Summary{}, ErrNotStopped
	}
	return c.summary, nil
}

// Reset discards everything and returns to Idle so a new journey starts from
// first principles. Valid from Stopped or Idle; idempotent.
func (c *Controller) Reset() error {
	if c.state != StateStopped && c.state != StateIdle {
		return ErrBadTransition
	}
	c.filter = nil
	c.classifier = nil
	c.agg = nil
	c.summary = Summary{}
	c.state = StateIdle
	return nil
}

// OnLocation feeds one raw GPS fix through the filter and the location-driven
// detectors. Swallowed outside Active.
func (c *Controller) OnLocation(s LocationSample) FilterOutput {
	c.maybeActivate()
	if c.state != StateActive {
		return FilterOutput{}
	}

	out := c.filter.Update(s)
	if !out.Accepted {
		return out
	}
	c.agg.SetDistance(c.filter.TotalDistanceM())
	c.agg.AddSpeed(out.SpeedMps)
	c.classifier.OnSpeed(out.SpeedMps, s.TimestampMs)
	c.classifier.OnPosition(out.Lat, out.Lng, s.HeadingDeg, out.SpeedMps, s.TimestampMs)
	return out
}

// OnAccel feeds one accelerometer sample. Swallowed outside Active.
func (c *Controller) OnAccel(s InertialSample) {
	c.maybeActivate()
	if c.state != StateActive {
		return
	}
	c.classifier.OnAccel(s)
}

// OnGyro feeds one gyroscope sample. Swallowed outside Active.
func (c *Controller) OnGyro(s InertialSample) {
	c.maybeActivate()
	if c.state != StateActive {
		return
	}
	c.classifier.OnGyro(s)
}

// OnRamp injects an incline event from the ramp-detection collaborator.
// Swallowed outside Active.
func (c *Controller) OnRamp(atMs int64) {
	c.maybeActivate()
	if c.state != StateActive {
		return
	}
	c.classifier.OnRamp(atMs)
}

// Progress returns live journey totals; zero value when no journey is live.
func (c *Controller) Progress() Progress {
	c.maybeActivate()
	if c.agg == nil {
		return Progress{Counts: map[EventKind]int{}}
	}
	return c.agg.Snapshot()
}
