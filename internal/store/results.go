package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ridelog/internal/stream"
)

const resultColumns = `id, segment_id, activity_id, date, start_index, end_index, duration_seconds,
	avg_power, max_power, avg_heart_rate, max_heart_rate, avg_cadence, max_cadence,
	avg_speed, max_speed, average_speed_kmh, power, heart_rate, cadence, speed`

// SaveSegmentResult stores a result, replacing an earlier one for the same
// segment, activity and start index. The ID is written back into r.
func (s *Store) SaveSegmentResult(ctx context.Context, r *SegmentResult) error {
	encoded := make([]*string, 0, 4)
	for _, st := range []stream.Stream{r.Power, r.HeartRate, r.Cadence, r.Speed} {
		v, err := encodeStream(st)
		if err != nil {
			return fmt.Errorf("encoding result stream: %w", err)
		}
		encoded = append(encoded, v)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO segment_results (
			segment_id, activity_id, date, start_index, end_index, duration_seconds,
			avg_power, max_power, avg_heart_rate, max_heart_rate, avg_cadence, max_cadence,
			avg_speed, max_speed, average_speed_kmh, power, heart_rate, cadence, speed
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(segment_id, activity_id, start_index) DO UPDATE SET
			date = excluded.date,
			end_index = excluded.end_index,
			duration_seconds = excluded.duration_seconds,
			avg_power = excluded.avg_power,
			max_power = excluded.max_power,
			avg_heart_rate = excluded.avg_heart_rate,
			max_heart_rate = excluded.max_heart_rate,
			avg_cadence = excluded.avg_cadence,
			max_cadence = excluded.max_cadence,
			avg_speed = excluded.avg_speed,
			max_speed = excluded.max_speed,
			average_speed_kmh = excluded.average_speed_kmh,
			power = excluded.power,
			heart_rate = excluded.heart_rate,
			cadence = excluded.cadence,
			speed = excluded.speed
		RETURNING id
	`,
		r.SegmentID, r.ActivityID, r.Date.UTC().Format(time.RFC3339),
		r.StartIndex, r.EndIndex, r.DurationSeconds,
		r.AvgPower, r.MaxPower, r.AvgHeartRate, r.MaxHeartRate, r.AvgCadence, r.MaxCadence,
		r.AvgSpeed, r.MaxSpeed, r.AverageSpeedKmh,
		encoded[0], encoded[1], encoded[2], encoded[3],
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("upserting segment result: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	r.ID = id
	return nil
}

// GetSegmentResult retrieves a single result
func (s *Store) GetSegmentResult(ctx context.Context, id int64) (*SegmentResult, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+resultColumns+` FROM segment_results WHERE id = ?`, id)
	return scanResult(row)
}

// ListSegmentResults returns every result on a segment, fastest first
func (s *Store) ListSegmentResults(ctx context.Context, segmentID int64) ([]SegmentResult, error) {
	return s.queryResults(ctx, `SELECT `+resultColumns+`
		FROM segment_results
		WHERE segment_id = ?
		ORDER BY duration_seconds, date, id
	`, segmentID)
}

// ListActivityResults returns every result recorded on an activity in
// track order.
func (s *Store) ListActivityResults(ctx context.Context, activityID int64) ([]SegmentResult, error) {
	return s.queryResults(ctx, `SELECT `+resultColumns+`
		FROM segment_results
		WHERE activity_id = ?
		ORDER BY start_index, segment_id
	`, activityID)
}

// DeleteActivitySegmentResults removes all results of an activity
func (s *Store) DeleteActivitySegmentResults(ctx context.Context, activityID int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM segment_results WHERE activity_id = ?", activityID)
	return err
}

// DeleteSegmentResults removes all results of a segment
func (s *Store) DeleteSegmentResults(ctx context.Context, segmentID int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM segment_results WHERE segment_id = ?", segmentID)
	return err
}

func (s *Store) queryResults(ctx context.Context, query string, args ...interface{}) ([]SegmentResult, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SegmentResult
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func scanResult(row scanner) (*SegmentResult, error) {
	var r SegmentResult
	var date string
	var power, heartRate, cadence, speed *string

	err := row.Scan(
		&r.ID, &r.SegmentID, &r.ActivityID, &date, &r.StartIndex, &r.EndIndex, &r.DurationSeconds,
		&r.AvgPower, &r.MaxPower, &r.AvgHeartRate, &r.MaxHeartRate, &r.AvgCadence, &r.MaxCadence,
		&r.AvgSpeed, &r.MaxSpeed, &r.AverageSpeedKmh,
		&power, &heartRate, &cadence, &speed,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSegmentResultNotFound
	}
	if err != nil {
		return nil, err
	}

	if r.Date, err = time.Parse(time.RFC3339, date); err != nil {
		return nil, fmt.Errorf("parsing date %q: %w", date, err)
	}
	for _, f := range []struct {
		raw *string
		dst *stream.Stream
	}{
		{power, &r.Power},
		{heartRate, &r.HeartRate},
		{cadence, &r.Cadence},
		{speed, &r.Speed},
	} {
		if *f.dst, err = decodeStream(f.raw); err != nil {
			return nil, fmt.Errorf("decoding result stream: %w", err)
		}
	}

	return &r, nil
}

// encodeStream stores a stream as a JSON array with null for gaps
func encodeStream(s stream.Stream) (*string, error) {
	if s == nil {
		return nil, nil
	}
	b, err := json.Marshal(s.Ptrs())
	if err != nil {
		return nil, err
	}
	out := string(b)
	return &out, nil
}

func decodeStream(raw *string) (stream.Stream, error) {
	if raw == nil {
		return nil, nil
	}
	var values []*float64
	if err := json.Unmarshal([]byte(*raw), &values); err != nil {
		return nil, err
	}
	return stream.FromPtrs(values), nil
}
