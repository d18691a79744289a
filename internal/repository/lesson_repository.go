package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
)

// LessonRepository handles persistence for lessons.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository creates a new repository instance.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

// FindBySubjectAndClass returns the first lesson of a subject in a class.
func (r *LessonRepository) FindBySubjectAndClass(ctx context.Context, exec sqlx.ExtContext, subjectID, classID int64) (*models.Lesson, error) {
	const query = `SELECT id, name, subject_id, class_id, teacher_id, room_id, start_time, end_time
        FROM lessons WHERE subject_id = $1 AND class_id = $2 ORDER BY id LIMIT 1`
	var lesson models.Lesson
	if err := sqlx.GetContext(ctx, executor(r.db, exec), &lesson, query, subjectID, classID); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// Create persists a new lesson and sets its id.
func (r *LessonRepository) Create(ctx context.Context, exec sqlx.ExtContext, lesson *models.Lesson) error {
	const query = `INSERT INTO lessons (name, subject_id, class_id, teacher_id, room_id, start_time, end_time)
        VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err := sqlx.GetContext(ctx, executor(r.db, exec), &lesson.ID, query,
		lesson.Name, lesson.SubjectID, lesson.ClassID, lesson.TeacherID, lesson.RoomID, lesson.StartTime, lesson.EndTime); err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}
	return nil
}

// ListSummaries returns lessons owned by a teacher within a class.
func (r *LessonRepository) ListSummaries(ctx context.Context, filter models.LessonFilter) ([]models.LessonSummary, error) {
	where, args := lessonConditions(filter, "")
	query := "SELECT id, name, class_id FROM lessons" + where + " ORDER BY start_time, id"
	lessons := []models.LessonSummary{}
	if err := r.db.SelectContext(ctx, &lessons, query, args...); err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return lessons, nil
}

// ListScheduled returns lessons joined with class and room names for calendar display.
func (r *LessonRepository) ListScheduled(ctx context.Context, filter models.LessonFilter) ([]models.ScheduledLesson, error) {
	where, args := lessonConditions(filter, "l.")
	query := `SELECT l.id, l.name, l.start_time, l.end_time, c.name AS class_name, rm.name AS room_name
        FROM lessons l
        LEFT JOIN classes c ON c.id = l.class_id
        LEFT JOIN rooms rm ON rm.id = l.room_id` + where + " ORDER BY l.start_time, l.id"
	lessons := []models.ScheduledLesson{}
	if err := r.db.SelectContext(ctx, &lessons, query, args...); err != nil {
		return nil, fmt.Errorf("list scheduled lessons: %w", err)
	}
	return lessons, nil
}

func lessonConditions(filter models.LessonFilter, alias string) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	if filter.TeacherID != "" {
		args = append(args, filter.TeacherID)
		conditions = append(conditions, fmt.Sprintf("%steacher_id = $%d", alias, len(args)))
	}
	if filter.ClassID > 0 {
		args = append(args, filter.ClassID)
		conditions = append(conditions, fmt.Sprintf("%sclass_id = $%d", alias, len(args)))
	}
	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
