package events

import "time"

// TypeResultsReconciled is emitted after a grade submission is fully applied.
const TypeResultsReconciled = "results.reconciled"

// ResultsReconciled tells downstream consumers (parent notifications, report caches) that a
// student's results changed.
type ResultsReconciled struct {
	ID         string    `json:"id"`
	StudentID  string    `json:"student_id"`
	ClassID    int64     `json:"class_id"`
	Subjects   []string  `json:"subjects"`
	OccurredAt time.Time `json:"occurred_at"`
}
