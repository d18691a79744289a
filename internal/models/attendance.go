package models

import "time"

// Attendance records whether a student was present at a lesson on a date.
type Attendance struct {
	ID        int64     `db:"id" json:"id"`
	Date      time.Time `db:"date" json:"date"`
	Present   bool      `db:"present" json:"present"`
	StudentID string    `db:"student_id" json:"student_id"`
	LessonID  int64     `db:"lesson_id" json:"lesson_id"`
}
