package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
)

// AttendanceRepository persists lesson attendance.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository creates a new repository instance.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// BulkCreate inserts all records in a single transaction.
func (r *AttendanceRepository) BulkCreate(ctx context.Context, records []models.Attendance) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attendance tx: %w", err)
	}
	const query = `INSERT INTO attendances (date, present, student_id, lesson_id) VALUES ($1, $2, $3, $4) RETURNING id`
	for i := range records {
		rec := &records[i]
		if err := tx.GetContext(ctx, &rec.ID, query, rec.Date, rec.Present, rec.StudentID, rec.LessonID); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("create attendance: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attendance: %w", err)
	}
	return nil
}
