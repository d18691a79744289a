package models

import "time"

// Assignment is the canonical homework attached to a lesson.
type Assignment struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	DueDate     time.Time `db:"due_date" json:"due_date"`
	LessonID    int64     `db:"lesson_id" json:"lesson_id"`
}
