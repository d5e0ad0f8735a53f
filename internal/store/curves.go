package store

import (
	"context"
	"database/sql"
	"fmt"
)

const (
	curvePower     = "power"
	curveHeartRate = "heart_rate"
)

func saveCurve(ctx context.Context, tx *sql.Tx, activityID int64, kind string, curve []CurvePoint) error {
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM critical_curves WHERE activity_id = ? AND kind = ?
	`, activityID, kind); err != nil {
		return fmt.Errorf("deleting %s curve: %w", kind, err)
	}
	if len(curve) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO critical_curves (activity_id, kind, duration, value) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range curve {
		if _, err := stmt.ExecContext(ctx, activityID, kind, p.Duration, p.Value); err != nil {
			return fmt.Errorf("inserting %s curve point: %w", kind, err)
		}
	}
	return nil
}

func (s *Store) loadCurve(ctx context.Context, activityID int64, kind string) ([]CurvePoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT duration, value FROM critical_curves
		WHERE activity_id = ? AND kind = ?
		ORDER BY duration
	`, activityID, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var curve []CurvePoint
	for rows.Next() {
		var p CurvePoint
		if err := rows.Scan(&p.Duration, &p.Value); err != nil {
			return nil, err
		}
		curve = append(curve, p)
	}
	return curve, rows.Err()
}

func saveLaps(ctx context.Context, tx *sql.Tx, activityID int64, laps []Lap) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM laps WHERE activity_id = ?", activityID); err != nil {
		return fmt.Errorf("deleting laps: %w", err)
	}
	for i, lap := range laps {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO laps (activity_id, lap_index, start_index, end_index) VALUES (?, ?, ?, ?)
		`, activityID, i, lap.StartIndex, lap.EndIndex); err != nil {
			return fmt.Errorf("inserting lap: %w", err)
		}
	}
	return nil
}

// GetLaps returns an activity's laps ordered by start index
func (s *Store) GetLaps(ctx context.Context, activityID int64) ([]Lap, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT start_index, end_index FROM laps
		WHERE activity_id = ?
		ORDER BY start_index, lap_index
	`, activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var laps []Lap
	for rows.Next() {
		var lap Lap
		if err := rows.Scan(&lap.StartIndex, &lap.EndIndex); err != nil {
			return nil, err
		}
		laps = append(laps, lap)
	}
	return laps, rows.Err()
}

// SaveLaps replaces an activity's laps
func (s *Store) SaveLaps(ctx context.Context, activityID int64, laps []Lap) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM activities WHERE id = ?", activityID).Scan(&exists)
	if err == sql.ErrNoRows {
		return ErrActivityNotFound
	}
	if err != nil {
		return err
	}

	if err := saveLaps(ctx, tx, activityID, laps); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
