package engine

// Stop is one recorded stillness interval.
type Stop struct {
	StartMs    int64 `json:"start_ms"`
	EndMs      int64 `json:"end_ms"`
	DurationMs int64 `json:"duration_ms"`
}

// Summary is the finalized, read-only record of one journey.
type Summary struct {
	StartedAtMs     int64             `json:"started_at_ms"`
	EndedAtMs       int64             `json:"ended_at_ms"`
	DurationSec     int64             `json:"duration_sec"`
	TotalDistanceM  float64           `json:"total_distance_m"`
	AverageSpeedMps float64           `json:"average_speed_mps"`
	MaxSpeedMps     float64           `json:"max_speed_mps"`
	Counts          map[EventKind]int `json:"counts"`
	Stops           []Stop            `json:"stops"`
}

// Progress is a live snapshot of an unfinished journey.
type Progress struct {
	TotalDistanceM float64           `json:"total_distance_m"`
	Counts         map[EventKind]int `json:"counts"`
	StopCount      int               `json:"stop_count"`
}

// Aggregator owns the running journey totals: event counters, speed readings,
// cumulative distance and the stop list. Counters only ever grow; the only way
// down is a full reset at the start of a new journey.
type Aggregator struct {
	startMs   int64
	distanceM float64
	speeds    []float64
	maxSpeed  float64
	counts    map[EventKind]int
	stops     []Stop

	finalized bool
	summary   Summary
}

func NewAggregator(startMs int64) *Aggregator {
	return &Aggregator{startMs: startMs, counts: map[EventKind]int{}}
}

// SetDistance copies the filter's cumulative distance in. Regressions are
// ignored so the reported distance is monotonically non-decreasing.
func (a *Aggregator) SetDistance(m float64) {
	if a.finalized || m <= a.distanceM {
		return
	}
	a.distanceM = m
}

func (a *Aggregator) AddSpeed(mps float64) {
	if a.finalized || mps < 0 {
		return
	}
	a.speeds = append(a.speeds, mps)
	if mps > a.maxSpeed {
		a.maxSpeed = mps
	}
}

// Emit counts an event, satisfying EventSink so the aggregator can sit
// directly on the classifier's fan-out path.
func (a *Aggregator) Emit(e Event) {
	if a.finalized {
		return
	}
	a.counts[e.Kind]++
}

func (a *Aggregator) recordStop(startMs, endMs int64) {
	if a.finalized || endMs <= startMs {
		return
	}
	a.stops = append(a.stops, Stop{StartMs: startMs, EndMs: endMs, DurationMs: endMs - startMs})
}

// Snapshot returns the live totals.
func (a *Aggregator) Snapshot() Progress {
	counts := make(map[EventKind]int, len(a.counts))
	for k, v := range a.counts {
		counts[k] = v
	}
	return Progress{TotalDistanceM: a.distanceM, Counts: counts, StopCount: len(a.stops)}
}

// Finalize freezes the aggregator and returns the journey summary. Further
// calls return the same summary.
func (a *Aggregator) Finalize(endMs int64) Summary {
	if a.finalized {
		return a.summary
	}
	a.finalized = true

	avg := 0.0
	for _, s := range a.speeds {
		avg += s
	}
	if len(a.speeds) > 0 {
		avg /= float64(len(a.speeds))
	}

	a.summary = Summary{
		StartedAtMs:     a.startMs,
		EndedAtMs:       endMs,
		DurationSec:     (endMs - a.startMs) / 1000,
		TotalDistanceM:  a.distanceM,
		AverageSpeedMps: avg,
		MaxSpeedMps:     a.maxSpeed,
		Counts:          a.counts,
		Stops:           a.stops,
	}
	return a.summary
}
