package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
)

// SubjectRepository handles persistence for subjects.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new repository instance.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// FindByName returns the subject with the exact name or sql.ErrNoRows.
func (r *SubjectRepository) FindByName(ctx context.Context, exec sqlx.ExtContext, name string) (*models.Subject, error) {
	const query = `SELECT id, name FROM subjects WHERE name = $1 LIMIT 1`
	var subject models.Subject
	if err := sqlx.GetContext(ctx, executor(r.db, exec), &subject, query, name); err != nil {
		return nil, err
	}
	return &subject, nil
}

// Create persists a new subject and sets its id.
func (r *SubjectRepository) Create(ctx context.Context, exec sqlx.ExtContext, subject *models.Subject) error {
	const query = `INSERT INTO subjects (name) VALUES ($1) RETURNING id`
	if err := sqlx.GetContext(ctx, executor(r.db, exec), &subject.ID, query, subject.Name); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}
