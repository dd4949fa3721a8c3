package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const timeLayout = time.RFC3339Nano

type readingRepository struct {
	db *DB
}

var _ ReadingRepository = (*readingRepository)(nil)

func NewReadingRepository(db *DB) ReadingRepository {
	return &readingRepository{db: db}
}

func (r *readingRepository) ReadingExistsForDate(ctx context.Context, date string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM readings WHERE date = ?)
	`, date).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check reading for %s: %w", date, err)
	}

	return exists, nil
}

func (r *readingRepository) GetReadingByDate(ctx context.Context, date string) (*Reading, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, date, title, content, source, created_at
		FROM readings
		WHERE date = ?
	`, date)

	reading, err := scanReading(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reading for %s: %w", date, err)
	}

	return reading, nil
}

func (r *readingRepository) GetRecentReadings(ctx context.Context, limit int) ([]Reading, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, title, content, source, created_at
		FROM readings
		ORDER BY date DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent readings: %w", err)
	}
	defer rows.Close()

	var readings []Reading
	for rows.Next() {
		reading, err := scanReading(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reading row: %w", err)
		}
		readings = append(readings, *reading)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reading rows: %w", err)
	}

	return readings, nil
}

func (r *readingRepository) GetReadingCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM readings`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count readings: %w", err)
	}

	return count, nil
}

// InsertReading relies on the unique date column so that two racing resets
// store a single row.
func (r *readingRepository) InsertReading(ctx context.Context, date, title, content, source string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO readings (id, date, title, content, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO NOTHING
	`, uuid.NewString(), date, title, content, source, time.Now().UTC().Format(timeLayout))
	if err != nil {
		return false, fmt.Errorf("failed to insert reading for %s: %w", date, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReading(row rowScanner) (*Reading, error) {
	var reading Reading
	var createdAt string

	err := row.Scan(&reading.ID, &reading.Date, &reading.Title, &reading.Content, &reading.Source, &createdAt)
	if err != nil {
		return nil, err
	}

	reading.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}

	return &reading, nil
}
