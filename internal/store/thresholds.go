package store

import (
	"context"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// SaveThreshold records the value of a threshold from date onwards,
// replacing an entry on the same day.
func (s *Store) SaveThreshold(ctx context.Context, userID int64, kind ThresholdKind, entry ThresholdEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO thresholds (user_id, kind, date, value) VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, kind, date) DO UPDATE SET value = excluded.value
	`, userID, string(kind), entry.Date.UTC().Format(dateLayout), entry.Value)
	return err
}

// DeleteThreshold removes the entry of a threshold on date
func (s *Store) DeleteThreshold(ctx context.Context, userID int64, kind ThresholdKind, date time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM thresholds WHERE user_id = ? AND kind = ? AND date = ?
	`, userID, string(kind), date.UTC().Format(dateLayout))
	return err
}

// ThresholdHistory returns a user's entries of a threshold, oldest first
func (s *Store) ThresholdHistory(ctx context.Context, userID int64, kind ThresholdKind) ([]ThresholdEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, value FROM thresholds
		WHERE user_id = ? AND kind = ?
		ORDER BY date
	`, userID, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []ThresholdEntry
	for rows.Next() {
		var date string
		var e ThresholdEntry
		if err := rows.Scan(&date, &e.Value); err != nil {
			return nil, err
		}
		if e.Date, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("parsing date %q: %w", date, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
