package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
)

// ExamRepository handles persistence for exams.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository creates a new repository instance.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

// FindBySubjectAndClass returns the canonical exam for the pair or sql.ErrNoRows.
func (r *ExamRepository) FindBySubjectAndClass(ctx context.Context, exec sqlx.ExtContext, subjectID, classID int64) (*models.Exam, error) {
	const query = `SELECT id, subject_id, class_id, start_time, end_time FROM exams WHERE subject_id = $1 AND class_id = $2 LIMIT 1`
	var exam models.Exam
	if err := sqlx.GetContext(ctx, executor(r.db, exec), &exam, query, subjectID, classID); err != nil {
		return nil, err
	}
	return &exam, nil
}

// Create persists a new exam and sets its id.
func (r *ExamRepository) Create(ctx context.Context, exec sqlx.ExtContext, exam *models.Exam) error {
	const query = `INSERT INTO exams (subject_id, class_id, start_time, end_time) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := sqlx.GetContext(ctx, executor(r.db, exec), &exam.ID, query, exam.SubjectID, exam.ClassID, exam.StartTime, exam.EndTime); err != nil {
		return fmt.Errorf("create exam: %w", err)
	}
	return nil
}
