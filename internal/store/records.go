package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CurveKind selects the power or heart rate curve
type CurveKind string

const (
	CurvePower     CurveKind = curvePower
	CurveHeartRate CurveKind = curveHeartRate
)

// Record is the best curve value held for a duration and the ride that
// set it
type Record struct {
	Duration   int
	Value      int
	ActivityID int64
	Title      string
	Date       time.Time
}

// Records returns, for each duration, a user's best curve value among
// rides on or after since. A zero since covers every ride. Durations no
// ride lasted are omitted; ties go to the earlier ride.
func (s *Store) Records(ctx context.Context, userID int64, kind CurveKind, durations []int, since time.Time) ([]Record, error) {
	var out []Record
	for _, d := range durations {
		row := s.db.QueryRowContext(ctx, `
			SELECT c.value, a.id, a.title, a.date
			FROM critical_curves c
			JOIN activities a ON a.id = c.activity_id
			WHERE a.user_id = ? AND c.kind = ? AND c.duration = ? AND a.date >= ?
			ORDER BY c.value DESC, a.date ASC
			LIMIT 1
		`, userID, string(kind), d, since.UTC().Format(time.RFC3339))

		r := Record{Duration: d}
		var date string
		err := row.Scan(&r.Value, &r.ActivityID, &r.Title, &date)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("querying %ds record: %w", d, err)
		}
		if r.Date, err = time.Parse(time.RFC3339, date); err != nil {
			return nil, fmt.Errorf("parsing date %q: %w", date, err)
		}
		out = append(out, r)
	}
	return out, nil
}
