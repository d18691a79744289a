package models

import "time"

// Exam is the canonical exam for a subject in a class.
type Exam struct {
	ID        int64     `db:"id" json:"id"`
	SubjectID int64     `db:"subject_id" json:"subject_id"`
	ClassID   int64     `db:"class_id" json:"class_id"`
	StartTime time.Time `db:"start_time" json:"start_time"`
	EndTime   time.Time `db:"end_time" json:"end_time"`
}
