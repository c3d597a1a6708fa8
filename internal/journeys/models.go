package journeys

import "time"

// Journey is one persisted journey row. Ended fields are zero while the
// journey is still active.
type Journey struct {
	ID              string     `json:"id"`
	RiderID         string     `json:"rider_id"`
	Preset          string     `json:"preset"`
	Status          string     `json:"status"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	TotalDistanceM  float64    `json:"total_distance_m"`
	AverageSpeedMps float64    `json:"average_speed_mps"`
	MaxSpeedMps     float64    `json:"max_speed_mps"`
	DurationSec     int64      `json:"duration_sec"`
}

// JourneyStop is one recorded stillness interval of a completed journey.
type JourneyStop struct {
	StartMs    int64 `json:"start_ms"`
	EndMs      int64 `json:"end_ms"`
	DurationMs int64 `json:"duration_ms"`
}

// JourneyEvent is one classified motion event of a completed journey.
type JourneyEvent struct {
	Kind      string `json:"kind"`
	Intensity string `json:"intensity"`
	Direction string `json:"direction,omitempty"`
	AtMs      int64  `json:"at_ms"`
}

// JourneyDetail is a journey with its stops, events and per-kind counts.
type JourneyDetail struct {
	Journey
	Stops  []JourneyStop  `json:"stops"`
	Events []JourneyEvent `json:"events"`
	Counts map[string]int `json:"counts"`
}
