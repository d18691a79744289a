package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
)

// AssignmentRepository handles persistence for assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository creates a new repository instance.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// FindByLesson returns the canonical assignment of a lesson or sql.ErrNoRows.
func (r *AssignmentRepository) FindByLesson(ctx context.Context, exec sqlx.ExtContext, lessonID int64) (*models.Assignment, error) {
	const query = `SELECT id, title, description, due_date, lesson_id FROM assignments WHERE lesson_id = $1 LIMIT 1`
	var assignment models.Assignment
	if err := sqlx.GetContext(ctx, executor(r.db, exec), &assignment, query, lessonID); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// Create persists a new assignment and sets its id.
func (r *AssignmentRepository) Create(ctx context.Context, exec sqlx.ExtContext, assignment *models.Assignment) error {
	const query = `INSERT INTO assignments (title, description, due_date, lesson_id) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := sqlx.GetContext(ctx, executor(r.db, exec), &assignment.ID, query,
		assignment.Title, assignment.Description, assignment.DueDate, assignment.LessonID); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}
