package journeys

import (
	"context"
	"errors"

	"backend-rollpath/internal/db"

	"github.com/jackc/pgx/v5"
)

var ErrJourneyNotFound = errors.New("journey not found")

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

// List returns a rider's journeys, newest first.
func (s *Service) List(ctx context.Context, riderID string) ([]Journey, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, rider_id, preset, status, started_at, ended_at,
		       total_distance_m, average_speed_mps, max_speed_mps, duration_sec
		FROM journeys WHERE rider_id=$1
		ORDER BY started_at DESC
	`, riderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Journey
	for rows.Next() {
		j, err := scanJourney(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, j)
	}
	return list, rows.Err()
}

// Get returns one journey together with its stops, events and per-kind event
// counts.
func (s *Service) Get(ctx context.Context, id string) (JourneyDetail, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, rider_id, preset, status, started_at, ended_at,
		       total_distance_m, average_speed_mps, max_speed_mps, duration_sec
		FROM journeys WHERE id=$1
	`, id)
	journey, err := scanJourney(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return JourneyDetail{}, ErrJourneyNotFound
		}
		return JourneyDetail{}, err
	}

	detail := JourneyDetail{Journey: journey, Counts: map[string]int{}}

	stopRows, err := s.db.Query(ctx, `
		SELECT start_ms, end_ms, duration_ms
		FROM journey_stops WHERE journey_id=$1
		ORDER BY start_ms
	`, id)
	if err != nil {
		return JourneyDetail{}, err
	}
	defer stopRows.Close()
	for stopRows.Next() {
		var st JourneyStop
		if err := stopRows.Scan(&st.StartMs, &st.EndMs, &st.DurationMs); err != nil {
			return JourneyDetail{}, err
		}
		detail.Stops = append(detail.Stops, st)
	}
	if err := stopRows.Err(); err != nil {
		return JourneyDetail{}, err
	}

	eventRows, err := s.db.Query(ctx, `
		SELECT kind, intensity, direction, at_ms
		FROM journey_events WHERE journey_id=$1
		ORDER BY at_ms
	`, id)
	if err != nil {
		return JourneyDetail{}, err
	}
	defer eventRows.Close()
	for eventRows.Next() {
		var e JourneyEvent
		if err := eventRows.Scan(&e.Kind, &e.Intensity, &e.Direction, &e.AtMs); err != nil {
			return JourneyDetail{}, err
		}
		detail.Events = append(detail.Events, e)
		detail.Counts[e.Kind]++
	}
	return detail, eventRows.Err()
}

// Delete removes a journey and its dependent rows.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM journey_events WHERE journey_id=$1`, id); err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, `DELETE FROM journey_stops WHERE journey_id=$1`, id); err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx, `DELETE FROM journeys WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrJourneyNotFound
	}
	return nil
}

func scanJourney(row pgx.Row) (Journey, error) {
	var j Journey
	err := row.Scan(&j.ID, &j.RiderID, &j.Preset, &j.Status, &j.StartedAt, &j.EndedAt,
		&j.TotalDistanceM, &j.AverageSpeedMps, &j.MaxSpeedMps, &j.DurationSec)
	return j, err
}
