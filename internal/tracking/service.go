package tracking

import (
	"context"
	"errors"
	"time"

	"backend-rollpath/internal/db"
	"backend-rollpath/internal/engine"
	"backend-rollpath/internal/stream"
	"backend-rollpath/internal/triplog"

	"github.com/google/uuid"
)

var ErrBadSensor = errors.New("sensor must be accel or gyro")

type Service struct {
	db     db.Querier
	hub    *stream.Hub
	trips  *triplog.Client
	reg    *registry
	clock  func() time.Time
	preset string
	limit  float64
}

type Option func(*Service)

// WithClock replaces the wall clock used for countdowns and timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

func NewService(database db.Querier, hub *stream.Hub, trips *triplog.Client, defaultPreset string, speedLimitMps float64, opts ...Option) *Service {
	s := &Service{
		db:     database,
		hub:    hub,
		trips:  trips,
		reg:    newRegistry(),
		clock:  time.Now,
		preset: defaultPreset,
		limit:  speedLimitMps,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens a journey for a rider: the engine's permission gate is
// consulted, the session enters its countdown, an active journey row is
// written and the start is mirrored to the trip log.
func (s *Service) Start(ctx context.Context, riderID string, req StartRequest) (Session, error) {
	preset := req.Preset
	if preset == "" {
		preset = s.preset
	}
	cfg := engine.PresetByName(preset)
	if req.SpeedLimitMps > 0 {
		cfg.SpeedLimitMps = req.SpeedLimitMps
	} else if s.limit > 0 {
		cfg.SpeedLimitMps = s.limit
	}

	ls := &liveSession{
		id:        uuid.NewString(),
		riderID:   riderID,
		preset:    preset,
		startedAt: s.clock(),
	}
	sink := engine.EventSinkFunc(func(e engine.Event) {
		ls.events = append(ls.events, e)
		if s.hub != nil {
			s.hub.PublishEvent(ls.id, e)
		}
	})
	ls.ctrl = engine.NewController(cfg, sink,
		engine.WithClock(s.clock),
		engine.WithPermissionGate(func(context.Context) (bool, error) {
			return req.SensorsGranted, nil
		}),
	)
	if err := ls.ctrl.Start(ctx); err != nil {
		return Session{}, err
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO journeys (id, rider_id, preset, status, started_at)
		VALUES ($1,$2,$3,'active',$4)
		RETURNING started_at
	`, ls.id, riderID, preset, ls.startedAt)
	if err := row.Scan(&ls.startedAt); err != nil {
		return Session{}, err
	}

	s.reg.add(ls)
	s.trips.Send(ctx, ls.id, map[string]any{"state": "started", "rider_id": riderID})

	return s.session(ls), nil
}

func (s *Service) session(ls *liveSession) Session {
	return Session{
		ID:        ls.id,
		RiderID:   ls.riderID,
		Preset:    ls.preset,
		State:     string(ls.ctrl.State()),
		StartedAt: ls.startedAt,
	}
}

// owned looks a live session up and verifies the caller is its rider.
// Ownership failures read as unknown sessions so ids don't leak.
func (s *Service) owned(riderID, sessionID string) (*liveSession, error) {
	ls, err := s.reg.get(sessionID)
	if err != nil {
		return nil, err
	}
	if ls.riderID != riderID {
		return nil, ErrSessionNotFound
	}
	return ls, nil
}

// AddLocation feeds one raw GPS fix into a live session.
func (s *Service) AddLocation(_ context.Context, riderID, sessionID string, req LocationRequest) (engine.FilterOutput, error) {
	ls, err := s.owned(riderID, sessionID)
	if err != nil {
		return engine.FilterOutput{}, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.ctrl.OnLocation(req.toSample()), nil
}

// AddInertial feeds one accelerometer or gyroscope sample into a live session.
func (s *Service) AddInertial(_ context.Context, riderID, sessionID string, req InertialRequest) error {
	ls, err := s.owned(riderID, sessionID)
	if err != nil {
		return err
	}

	sample := engine.InertialSample{X: req.X, Y: req.Y, Z: req.Z, TimestampMs: req.TimestampMs}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	switch req.Sensor {
	case "accel":
		ls.ctrl.OnAccel(sample)
	case "gyro":
		ls.ctrl.OnGyro(sample)
	default:
		return ErrBadSensor
	}
	return nil
}

// AddRamp injects an incline event from the ramp-detection collaborator.
func (s *Service) AddRamp(_ context.Context, riderID, sessionID string, req RampRequest) error {
	ls, err := s.owned(riderID, sessionID)
	if err != nil {
		return err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.ctrl.OnRamp(req.TimestampMs)
	return nil
}

func (s *Service) Pause(riderID, sessionID string) (Session, error) {
	ls, err := s.owned(riderID, sessionID)
	if err != nil {
		return Session{}, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	if err := ls.ctrl.Pause(); err != nil {
		return Session{}, err
	}
	return s.session(ls), nil
}

func (s *Service) Resume(riderID, sessionID string) (Session, error) {
	ls, err := s.owned(riderID, sessionID)
	if err != nil {
		return Session{}, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	if err := ls.ctrl.Resume(); err != nil {
		return Session{}, err
	}
	return s.session(ls), nil
}

// Progress returns live totals for a running session.
func (s *Service) Progress(riderID, sessionID string) (ProgressResponse, error) {
	ls, err := s.owned(riderID, sessionID)
	if err != nil {
		return ProgressResponse{}, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	p := ls.ctrl.Progress()

	counts := make(map[string]int, len(p.Counts))
	for k, v := range p.Counts {
		counts[string(k)] = v
	}
	return ProgressResponse{
		SessionID:      ls.id,
		State:          string(ls.ctrl.State()),
		TotalDistanceM: p.TotalDistanceM,
		Counts:         counts,
		StopCount:      p.StopCount,
	}, nil
}

// Stop finalizes a journey: the engine summary is persisted together with its
// stops and events, the live session is released, and the stop is mirrored to
// the trip log. The trip log can fail without affecting any of that.
//
// Stop is re-entrant: the session stays registered until its summary is
// persisted, and a retry after a database failure picks the already-finalized
// summary back up instead of tripping over the controller's Stopped state.
func (s *Service) Stop(ctx context.Context, riderID, sessionID string) (engine.Summary, error) {
	ls, err := s.owned(riderID, sessionID)
	if err != nil {
		return engine.Summary{}, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	sum, err := ls.ctrl.Stop()
	if errors.Is(err, engine.ErrBadTransition) {
		sum, err = ls.ctrl.Summary()
	}
	if err != nil {
		return engine.Summary{}, err
	}

	_, err = s.db.Exec(ctx, `
		UPDATE journeys
		SET status='completed', ended_at=$2, total_distance_m=$3,
		    average_speed_mps=$4, max_speed_mps=$5, duration_sec=$6
		WHERE id=$1
	`, ls.id, time.UnixMilli(sum.EndedAtMs), sum.TotalDistanceM, sum.AverageSpeedMps, sum.MaxSpeedMps, sum.DurationSec)
	if err != nil {
		return sum, err
	}

	for _, st := range sum.Stops {
		if _, err := s.db.Exec(ctx, `
			INSERT INTO journey_stops (journey_id, start_ms, end_ms, duration_ms)
			VALUES ($1,$2,$3,$4)
		`, ls.id, st.StartMs, st.EndMs, st.DurationMs); err != nil {
			return sum, err
		}
	}
	for _, e := range ls.events {
		if _, err := s.db.Exec(ctx, `
			INSERT INTO journey_events (journey_id, kind, intensity, direction, at_ms)
			VALUES ($1,$2,$3,$4,$5)
		`, ls.id, string(e.Kind), e.Intensity, e.Direction, e.AtMs); err != nil {
			return sum, err
		}
	}

	s.reg.remove(ls.id)
	s.trips.Send(ctx, ls.id, map[string]any{
		"state":            "stopped",
		"total_distance_m": sum.TotalDistanceM,
		"duration_sec":     sum.DurationSec,
	})
	return sum, nil
}
