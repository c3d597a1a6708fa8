package tracking

import (
	"time"

	"backend-rollpath/internal/engine"
)

type StartRequest struct {
	// SensorsGranted reports the outcome of the mobile permission prompt.
	// The session controller refuses to start without it.
	SensorsGranted bool    `json:"sensors_granted"`
	Preset         string  `json:"preset"`
	SpeedLimitMps  float64 `json:"speed_limit_mps"`
}

type Session struct {
	ID        string    `json:"id"`
	RiderID   string    `json:"rider_id"`
	Preset    string    `json:"preset"`
	State     string    `json:"state"`
	StartedAt time.Time `json:"started_at"`
}

type LocationRequest struct {
	Lat         float64  `json:"lat"`
	Lng         float64  `json:"lng"`
	TimestampMs int64    `json:"timestamp_ms"`
	AccuracyM   float64  `json:"accuracy_m"`
	SpeedMps    *float64 `json:"speed_mps"`
	HeadingDeg  *float64 `json:"heading_deg"`
}

func (r LocationRequest) toSample() engine.LocationSample {
	s := engine.LocationSample{
		Lat:         r.Lat,
		Lng:         r.Lng,
		TimestampMs: r.TimestampMs,
		AccuracyM:   r.AccuracyM,
		SpeedMps:    -1,
		HeadingDeg:  -1,
	}
	if r.SpeedMps != nil && *r.SpeedMps >= 0 {
		s.SpeedMps = *r.SpeedMps
	}
	if r.HeadingDeg != nil {
		s.HeadingDeg = *r.HeadingDeg
	}
	return s
}

type InertialRequest struct {
	// Sensor is "accel" or "gyro".
	Sensor      string  `json:"sensor"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Z           float64 `json:"z"`
	TimestampMs int64   `json:"timestamp_ms"`
}

type RampRequest struct {
	TimestampMs int64 `json:"timestamp_ms"`
}

type ProgressResponse struct {
	SessionID      string         `json:"session_id"`
	State          string         `json:"state"`
	TotalDistanceM float64        `json:"total_distance_m"`
	Counts         map[string]int `json:"counts"`
	StopCount      int            `json:"stop_count"`
}
