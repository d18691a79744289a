package models

import "time"

// Lesson belongs to exactly one subject and one class.
type Lesson struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	SubjectID int64     `db:"subject_id" json:"subject_id"`
	ClassID   int64     `db:"class_id" json:"class_id"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	RoomID    *int64    `db:"room_id" json:"room_id,omitempty"`
	StartTime time.Time `db:"start_time" json:"start_time"`
	EndTime   time.Time `db:"end_time" json:"end_time"`
}

// LessonSummary is the short form returned to teachers picking a lesson.
type LessonSummary struct {
	ID      int64  `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	ClassID int64  `db:"class_id" json:"class_id"`
}

// ScheduledLesson is a lesson joined with its class and room names.
type ScheduledLesson struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	StartTime time.Time `db:"start_time"`
	EndTime   time.Time `db:"end_time"`
	ClassName *string   `db:"class_name"`
	RoomName  *string   `db:"room_name"`
}

// LessonFilter selects lessons by owner. Zero values are ignored.
type LessonFilter struct {
	TeacherID string
	ClassID   int64
}
