package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ridelog/internal/geo"
)

const activityColumns = `id, user_id, title, date, duration_seconds, distance_meters,
	avg_power, max_power, avg_heart_rate, max_heart_rate, avg_cadence, max_cadence,
	avg_speed, max_speed, min_lat, max_lat, min_lng, max_lng,
	normalized_power, ftp, intensity_factor, tss`

// SaveActivity inserts a new activity (ID 0) or replaces an existing one,
// together with its streams, critical curves and laps. A new ID is written
// back into a.
func (s *Store) SaveActivity(ctx context.Context, a *Activity) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var minLat, maxLat, minLng, maxLng *float64
	if a.Bounds != nil {
		minLat, maxLat = &a.Bounds.MinLat, &a.Bounds.MaxLat
		minLng, maxLng = &a.Bounds.MinLng, &a.Bounds.MaxLng
	}

	args := []interface{}{
		a.UserID, a.Title, a.Date.UTC().Format(time.RFC3339), a.DurationSeconds, a.DistanceMeters,
		a.AvgPower, a.MaxPower, a.AvgHeartRate, a.MaxHeartRate, a.AvgCadence, a.MaxCadence,
		a.AvgSpeed, a.MaxSpeed, minLat, maxLat, minLng, maxLng,
		a.NormalizedPower, a.FTP, a.IntensityFactor, a.TSS,
	}

	if a.ID == 0 {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO activities (
				user_id, title, date, duration_seconds, distance_meters,
				avg_power, max_power, avg_heart_rate, max_heart_rate, avg_cadence, max_cadence,
				avg_speed, max_speed, min_lat, max_lat, min_lng, max_lng,
				normalized_power, ftp, intensity_factor, tss
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, args...)
		if err != nil {
			return fmt.Errorf("inserting activity: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading activity id: %w", err)
		}
		a.ID = id
	} else {
		result, err := tx.ExecContext(ctx, `
			UPDATE activities SET
				user_id = ?, title = ?, date = ?, duration_seconds = ?, distance_meters = ?,
				avg_power = ?, max_power = ?, avg_heart_rate = ?, max_heart_rate = ?,
				avg_cadence = ?, max_cadence = ?, avg_speed = ?, max_speed = ?,
				min_lat = ?, max_lat = ?, min_lng = ?, max_lng = ?,
				normalized_power = ?, ftp = ?, intensity_factor = ?, tss = ?,
				updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`, append(args, a.ID)...)
		if err != nil {
			return fmt.Errorf("updating activity: %w", err)
		}
		if err := requireRow(result, ErrActivityNotFound); err != nil {
			return err
		}
	}

	if err := saveStreams(ctx, tx, a); err != nil {
		return err
	}
	if err := saveCurve(ctx, tx, a.ID, curvePower, a.CriticalPower); err != nil {
		return err
	}
	if err := saveCurve(ctx, tx, a.ID, curveHeartRate, a.CriticalHeartRate); err != nil {
		return err
	}
	if err := saveLaps(ctx, tx, a.ID, a.Laps); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetActivity retrieves an activity with its streams, curves and laps
func (s *Store) GetActivity(ctx context.Context, id int64) (*Activity, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+activityColumns+` FROM activities WHERE id = ?`, id)
	a, err := scanActivity(row)
	if err != nil {
		return nil, err
	}

	if err := s.loadStreams(ctx, a); err != nil {
		return nil, fmt.Errorf("loading streams: %w", err)
	}
	if a.CriticalPower, err = s.loadCurve(ctx, a.ID, curvePower); err != nil {
		return nil, fmt.Errorf("loading power curve: %w", err)
	}
	if a.CriticalHeartRate, err = s.loadCurve(ctx, a.ID, curveHeartRate); err != nil {
		return nil, fmt.Errorf("loading heart rate curve: %w", err)
	}
	if a.Laps, err = s.GetLaps(ctx, a.ID); err != nil {
		return nil, fmt.Errorf("loading laps: %w", err)
	}

	return a, nil
}

// ListActivities returns a user's activities ordered by date descending
func (s *Store) ListActivities(ctx context.Context, userID int64, limit, offset int) ([]ActivitySummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+activityColumns+`
		FROM activities
		WHERE user_id = ?
		ORDER BY date DESC
		LIMIT ? OFFSET ?
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ActivitySummary
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, summarize(a))
	}
	return out, rows.Err()
}

// ListActivityIDs returns the ids of a user's activities, oldest first
func (s *Store) ListActivityIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM activities WHERE user_id = ? ORDER BY date, id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListActivitiesContaining returns ids of a user's GPS activities whose
// bounding box contains box.
func (s *Store) ListActivitiesContaining(ctx context.Context, userID int64, box geo.BoundingBox) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM activities
		WHERE user_id = ?
			AND min_lat <= ? AND max_lat >= ?
			AND min_lng <= ? AND max_lng >= ?
		ORDER BY date, id
	`, userID, box.MinLat, box.MaxLat, box.MinLng, box.MaxLng)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DailyTSS returns the summed TSS per calendar day (UTC, YYYY-MM-DD) for a
// user. Days without a scored ride are omitted.
func (s *Store) DailyTSS(ctx context.Context, userID int64) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT substr(date, 1, 10) AS day, SUM(tss)
		FROM activities
		WHERE user_id = ? AND tss IS NOT NULL
		GROUP BY day
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var day string
		var tss int
		if err := rows.Scan(&day, &tss); err != nil {
			return nil, err
		}
		out[day] = tss
	}
	return out, rows.Err()
}

// RenameActivity changes an activity's title
func (s *Store) RenameActivity(ctx context.Context, id int64, title string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE activities SET title = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, title, id)
	if err != nil {
		return err
	}
	return requireRow(result, ErrActivityNotFound)
}

// DeleteActivity removes an activity. Streams, curves, laps and segment
// results cascade.
func (s *Store) DeleteActivity(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM activities WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireRow(result, ErrActivityNotFound)
}

// CountActivities returns the number of activities a user has
func (s *Store) CountActivities(ctx context.Context, userID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM activities WHERE user_id = ?", userID).Scan(&count)
	return count, err
}

// scanner is satisfied by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanActivity(row scanner) (*Activity, error) {
	var a Activity
	var date string
	var minLat, maxLat, minLng, maxLng *float64

	err := row.Scan(
		&a.ID, &a.UserID, &a.Title, &date, &a.DurationSeconds, &a.DistanceMeters,
		&a.AvgPower, &a.MaxPower, &a.AvgHeartRate, &a.MaxHeartRate, &a.AvgCadence, &a.MaxCadence,
		&a.AvgSpeed, &a.MaxSpeed, &minLat, &maxLat, &minLng, &maxLng,
		&a.NormalizedPower, &a.FTP, &a.IntensityFactor, &a.TSS,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrActivityNotFound
	}
	if err != nil {
		return nil, err
	}

	a.Date, err = time.Parse(time.RFC3339, date)
	if err != nil {
		return nil, fmt.Errorf("parsing date %q: %w", date, err)
	}

	if minLat != nil && maxLat != nil && minLng != nil && maxLng != nil {
		a.Bounds = &geo.BoundingBox{MinLat: *minLat, MaxLat: *maxLat, MinLng: *minLng, MaxLng: *maxLng}
	}

	return &a, nil
}

func summarize(a *Activity) ActivitySummary {
	return ActivitySummary{
		ID:              a.ID,
		UserID:          a.UserID,
		Title:           a.Title,
		Date:            a.Date,
		DurationSeconds: a.DurationSeconds,
		DistanceMeters:  a.DistanceMeters,
		AvgPower:        a.AvgPower,
		NormalizedPower: a.NormalizedPower,
		TSS:             a.TSS,
		HasGPS:          a.Bounds != nil,
	}
}

func requireRow(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
