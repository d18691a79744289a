package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
)

// ResultRepository handles persistence for exam and assignment results.
type ResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository creates a new repository instance.
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

const resultColumns = `id, score, student_id, exam_id, assignment_id`

// FindByStudentAndExam returns the student's exam result or sql.ErrNoRows.
func (r *ResultRepository) FindByStudentAndExam(ctx context.Context, exec sqlx.ExtContext, studentID string, examID int64) (*models.Result, error) {
	query := `SELECT ` + resultColumns + ` FROM results WHERE student_id = $1 AND exam_id = $2 LIMIT 1`
	var result models.Result
	if err := sqlx.GetContext(ctx, executor(r.db, exec), &result, query, studentID, examID); err != nil {
		return nil, err
	}
	return &result, nil
}

// FindByStudentAndAssignment returns the student's assignment result or sql.ErrNoRows.
func (r *ResultRepository) FindByStudentAndAssignment(ctx context.Context, exec sqlx.ExtContext, studentID string, assignmentID int64) (*models.Result, error) {
	query := `SELECT ` + resultColumns + ` FROM results WHERE student_id = $1 AND assignment_id = $2 LIMIT 1`
	var result models.Result
	if err := sqlx.GetContext(ctx, executor(r.db, exec), &result, query, studentID, assignmentID); err != nil {
		return nil, err
	}
	return &result, nil
}

// Create persists a result after checking it targets exactly one of exam/assignment.
func (r *ResultRepository) Create(ctx context.Context, exec sqlx.ExtContext, result *models.Result) error {
	if _, err := result.Kind(); err != nil {
		return fmt.Errorf("create result: %w", err)
	}
	const query = `INSERT INTO results (score, student_id, exam_id, assignment_id) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := sqlx.GetContext(ctx, executor(r.db, exec), &result.ID, query,
		result.Score, result.StudentID, result.ExamID, result.AssignmentID); err != nil {
		return fmt.Errorf("create result: %w", err)
	}
	return nil
}

// UpdateScore overwrites the score of an existing result in place.
func (r *ResultRepository) UpdateScore(ctx context.Context, exec sqlx.ExtContext, id int64, score float64) error {
	res, err := executor(r.db, exec).ExecContext(ctx, `UPDATE results SET score = $1 WHERE id = $2`, score, id)
	if err != nil {
		return fmt.Errorf("update result score: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("update result score: result %d not found", id)
	}
	return nil
}

// List returns results with student and subject names resolved.
func (r *ResultRepository) List(ctx context.Context, filter models.ResultFilter) ([]models.ResultDetail, error) {
	query := `SELECT r.id, r.score, r.student_id, s.name AS student_name, s.surname AS student_surname,
        r.exam_id, r.assignment_id, COALESCE(es.name, ls.name) AS subject_name
        FROM results r
        JOIN students s ON s.id = r.student_id
        LEFT JOIN exams e ON e.id = r.exam_id
        LEFT JOIN subjects es ON es.id = e.subject_id
        LEFT JOIN assignments a ON a.id = r.assignment_id
        LEFT JOIN lessons l ON l.id = a.lesson_id
        LEFT JOIN subjects ls ON ls.id = l.subject_id`

	var conditions []string
	var args []interface{}
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		conditions = append(conditions, fmt.Sprintf("r.student_id = $%d", len(args)))
	}
	if filter.ClassID > 0 {
		args = append(args, filter.ClassID)
		conditions = append(conditions, fmt.Sprintf("s.class_id = $%d", len(args)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY r.id"

	results := []models.ResultDetail{}
	if err := r.db.SelectContext(ctx, &results, query, args...); err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return results, nil
}

// SubjectAverages returns mean exam and assignment scores per subject.
func (r *ResultRepository) SubjectAverages(ctx context.Context) ([]models.SubjectScoreAverage, error) {
	const query = `SELECT sub.name AS subject_name,
        (SELECT AVG(r.score)::float8 FROM results r JOIN exams e ON e.id = r.exam_id WHERE e.subject_id = sub.id) AS exam_avg,
        (SELECT AVG(r.score)::float8 FROM results r JOIN assignments a ON a.id = r.assignment_id
            JOIN lessons l ON l.id = a.lesson_id WHERE l.subject_id = sub.id) AS assignment_avg
        FROM subjects sub ORDER BY sub.name`
	averages := []models.SubjectScoreAverage{}
	if err := r.db.SelectContext(ctx, &averages, query); err != nil {
		return nil, fmt.Errorf("subject averages: %w", err)
	}
	return averages, nil
}
