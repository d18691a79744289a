package models

import "errors"

// ResultKind tells which curriculum entity a result scores.
type ResultKind string

const (
	ResultKindExam       ResultKind = "EXAM"
	ResultKindAssignment ResultKind = "ASSIGNMENT"
)

// ErrResultTarget is returned when a result does not reference exactly one of exam/assignment.
var ErrResultTarget = errors.New("result must reference exactly one of exam or assignment")

// Result is a student's score on either an exam or an assignment, never both.
type Result struct {
	ID           int64   `db:"id" json:"id"`
	Score        float64 `db:"score" json:"score"`
	StudentID    string  `db:"student_id" json:"student_id"`
	ExamID       *int64  `db:"exam_id" json:"exam_id,omitempty"`
	AssignmentID *int64  `db:"assignment_id" json:"assignment_id,omitempty"`
}

// NewExamResult builds an exam-linked result.
func NewExamResult(studentID string, examID int64, score float64) *Result {
	return &Result{StudentID: studentID, ExamID: &examID, Score: score}
}

// NewAssignmentResult builds an assignment-linked result.
func NewAssignmentResult(studentID string, assignmentID int64, score float64) *Result {
	return &Result{StudentID: studentID, AssignmentID: &assignmentID, Score: score}
}

// Kind returns the target kind, or an error when the exclusivity invariant is broken.
func (r Result) Kind() (ResultKind, error) {
	switch {
	case r.ExamID != nil && r.AssignmentID == nil:
		return ResultKindExam, nil
	case r.AssignmentID != nil && r.ExamID == nil:
		return ResultKindAssignment, nil
	}
	return "", ErrResultTarget
}

// ResultDetail is a result joined with student and subject names for listing.
type ResultDetail struct {
	ID             int64   `db:"id" json:"id"`
	Score          float64 `db:"score" json:"score"`
	StudentID      string  `db:"student_id" json:"student_id"`
	StudentName    string  `db:"student_name" json:"student_name"`
	StudentSurname string  `db:"student_surname" json:"student_surname"`
	ExamID         *int64  `db:"exam_id" json:"exam_id,omitempty"`
	AssignmentID   *int64  `db:"assignment_id" json:"assignment_id,omitempty"`
	SubjectName    *string `db:"subject_name" json:"subject_name,omitempty"`
}

// Kind mirrors Result.Kind for joined rows.
func (d ResultDetail) Kind() (ResultKind, error) {
	return Result{ExamID: d.ExamID, AssignmentID: d.AssignmentID}.Kind()
}

// ResultFilter scopes result listing. At least one field must be set.
type ResultFilter struct {
	StudentID string
	ClassID   int64
}

// SubjectScoreAverage holds raw per-subject averages before rounding.
type SubjectScoreAverage struct {
	SubjectName   string   `db:"subject_name"`
	ExamAvg       *float64 `db:"exam_avg"`
	AssignmentAvg *float64 `db:"assignment_avg"`
}
