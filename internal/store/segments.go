package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ridelog/internal/geo"
)

// CreateSegment inserts a segment with its polyline and writes the new ID
// back into seg.
func (s *Store) CreateSegment(ctx context.Context, seg *Segment) error {
	elevation, err := encodeFloats(seg.Elevation)
	if err != nil {
		return fmt.Errorf("encoding elevation: %w", err)
	}
	grade, err := encodeFloats(seg.Grade)
	if err != nil {
		return fmt.Errorf("encoding grade: %w", err)
	}
	distance, err := encodeFloats(seg.Distance)
	if err != nil {
		return fmt.Errorf("encoding distance: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if seg.CreatedAt.IsZero() {
		seg.CreatedAt = time.Now().UTC()
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO segments (
			user_id, name, distance_meters, min_lat, max_lat, min_lng, max_lng,
			elevation, grade, distance, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		seg.UserID, seg.Name, seg.DistanceMeters,
		seg.Bounds.MinLat, seg.Bounds.MaxLat, seg.Bounds.MinLng, seg.Bounds.MaxLng,
		elevation, grade, distance, seg.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting segment: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading segment id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO segment_points (segment_id, point_index, lat, lng) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, p := range seg.Points {
		if _, err := stmt.ExecContext(ctx, id, i, p.Lat, p.Lng); err != nil {
			return fmt.Errorf("inserting segment point: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	seg.ID = id
	return nil
}

const segmentColumns = `id, user_id, name, distance_meters, min_lat, max_lat, min_lng, max_lng,
	elevation, grade, distance, created_at`

// GetSegment retrieves a segment with its polyline
func (s *Store) GetSegment(ctx context.Context, id int64) (*Segment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+segmentColumns+` FROM segments WHERE id = ?`, id)
	seg, err := scanSegment(row)
	if err != nil {
		return nil, err
	}
	if seg.Points, err = s.loadSegmentPoints(ctx, seg.ID); err != nil {
		return nil, fmt.Errorf("loading segment points: %w", err)
	}
	return seg, nil
}

// ListSegments returns a user's segments ordered by name, without polylines
func (s *Store) ListSegments(ctx context.Context, userID int64) ([]Segment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+segmentColumns+`
		FROM segments
		WHERE user_id = ?
		ORDER BY name, id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Segment
	for rows.Next() {
		seg, err := scanSegment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *seg)
	}
	return out, rows.Err()
}

// ListSegmentsWithin returns ids of a user's segments whose bounding box
// lies inside box.
func (s *Store) ListSegmentsWithin(ctx context.Context, userID int64, box geo.BoundingBox) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM segments
		WHERE user_id = ?
			AND min_lat >= ? AND max_lat <= ?
			AND min_lng >= ? AND max_lng <= ?
		ORDER BY id
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

// RenameSegment changes a segment's name
func (s *Store) RenameSegment(ctx context.Context, id int64, name string) error {
	result, err := s.db.ExecContext(ctx, "UPDATE segments SET name = ? WHERE id = ?", name, id)
	if err != nil {
		return err
	}
	return requireRow(result, ErrSegmentNotFound)
}

// DeleteSegment removes a segment; its points and results cascade
func (s *Store) DeleteSegment(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM segments WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireRow(result, ErrSegmentNotFound)
}

func (s *Store) loadSegmentPoints(ctx context.Context, segmentID int64) ([]geo.LatLng, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT lat, lng FROM segment_points WHERE segment_id = ? ORDER BY point_index
	`, segmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []geo.LatLng
	for rows.Next() {
		var p geo.LatLng
		if err := rows.Scan(&p.Lat, &p.Lng); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func scanSegment(row scanner) (*Segment, error) {
	var seg Segment
	var elevation, grade, distance *string
	var createdAt string

	err := row.Scan(
		&seg.ID, &seg.UserID, &seg.Name, &seg.DistanceMeters,
		&seg.Bounds.MinLat, &seg.Bounds.MaxLat, &seg.Bounds.MinLng, &seg.Bounds.MaxLng,
		&elevation, &grade, &distance, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSegmentNotFound
	}
	if err != nil {
		return nil, err
	}

	if seg.Elevation, err = decodeFloats(elevation); err != nil {
		return nil, fmt.Errorf("decoding elevation: %w", err)
	}
	if seg.Grade, err = decodeFloats(grade); err != nil {
		return nil, fmt.Errorf("decoding grade: %w", err)
	}
	if seg.Distance, err = decodeFloats(distance); err != nil {
		return nil, fmt.Errorf("decoding distance: %w", err)
	}
	// created_at may carry the column default format
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		seg.CreatedAt = t
	} else if t, err := time.Parse(time.DateTime, createdAt); err == nil {
		seg.CreatedAt = t
	}

	return &seg, nil
}

func encodeFloats(values []float64) (*string, error) {
	if values == nil {
		return nil, nil
	}
	b, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

func decodeFloats(s *string) ([]float64, error) {
	if s == nil {
		return nil, nil
	}
	var values []float64
	if err := json.Unmarshal([]byte(*s), &values); err != nil {
		return nil, err
	}
	return values, nil
}
