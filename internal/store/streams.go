package store

import (
	"context"
	"database/sql"
	"fmt"

	"ridelog/internal/geo"
	"ridelog/internal/stream"
)

// saveStreams replaces the per-second stream rows of an activity
func saveStreams(ctx context.Context, tx *sql.Tx, a *Activity) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM streams WHERE activity_id = ?", a.ID); err != nil {
		return fmt.Errorf("deleting existing streams: %w", err)
	}

	n := a.SampleCount()
	if n == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO streams (
			activity_id, time_offset, power, heart_rate, cadence, speed,
			elevation, grade, distance, lat, lng
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		var lat, lng *float64
		if i < len(a.LatLng) && a.LatLng[i].Valid {
			p := a.LatLng[i]
			lat, lng = &p.Lat, &p.Lng
		}
		_, err := stmt.ExecContext(ctx,
			a.ID, i,
			a.Power.At(i).Ptr(), a.HeartRate.At(i).Ptr(), a.Cadence.At(i).Ptr(), a.Speed.At(i).Ptr(),
			a.Elevation.At(i).Ptr(), a.Grade.At(i).Ptr(), a.Distance.At(i).Ptr(),
			lat, lng,
		)
		if err != nil {
			return fmt.Errorf("inserting stream point: %w", err)
		}
	}

	return nil
}

// loadStreams fills the streams of a. A column with no reading at all is
// treated as an absent stream.
func (s *Store) loadStreams(ctx context.Context, a *Activity) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT power, heart_rate, cadence, speed, elevation, grade, distance, lat, lng
		FROM streams
		WHERE activity_id = ?
		ORDER BY time_offset
	`, a.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	columns := make([]stream.Stream, len(stream.Names))
	var track []geo.NullLatLng
	for rows.Next() {
		values := make([]*float64, len(stream.Names))
		var lat, lng *float64
		dest := make([]interface{}, 0, len(values)+2)
		for i := range values {
			dest = append(dest, &values[i])
		}
		dest = append(dest, &lat, &lng)

		if err := rows.Scan(dest...); err != nil {
			return err
		}

		for i, v := range values {
			columns[i] = append(columns[i], stream.FromPtrs([]*float64{v})...)
		}
		var p geo.NullLatLng
		if lat != nil && lng != nil {
			p = geo.Point(*lat, *lng)
		}
		track = append(track, p)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i, name := range stream.Names {
		if columns[i].Count() > 0 {
			a.SetStream(name, columns[i])
		}
	}
	for _, p := range track {
		if p.Valid {
			a.LatLng = track
			break
		}
	}

	return nil
}

// StreamCount returns the number of per-second rows stored for an activity
func (s *Store) StreamCount(ctx context.Context, activityID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM streams WHERE activity_id = ?", activityID).Scan(&count)
	return count, err
}
