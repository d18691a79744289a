package dto

// GradeLine is one subject's pair of scores submitted for a student.
type GradeLine struct {
	Subject         string  `json:"subject" validate:"required"`
	ExamValue       float64 `json:"examValue"`
	AssignmentValue float64 `json:"assignmentValue"`
}

// ReconcileResultsRequest is the payload of the grade submission form.
type ReconcileResultsRequest struct {
	ClassID   int64       `json:"classId" validate:"required,gt=0"`
	StudentID string      `json:"studentId" validate:"required"`
	Grades    []GradeLine `json:"grades" validate:"required,min=1,dive"`
	// Average is computed client-side and ignored here.
	Average *float64 `json:"average,omitempty"`
}

// ReconcileResultsResponse reports a successful submission.
type ReconcileResultsResponse struct {
	Message   string `json:"message"`
	Processed int    `json:"processed"`
}

// SubjectResult aggregates one subject's exam and assignment scores.
type SubjectResult struct {
	Subject         string  `json:"subject"`
	ExamScore       float64 `json:"exam_score"`
	AssignmentScore float64 `json:"assignment_score"`
	Average         float64 `json:"average"`
}

// StandingStatus is the overall verdict on a student's global average.
type StandingStatus string

const (
	StandingPassed       StandingStatus = "PASSED"
	StandingFailed       StandingStatus = "FAILED"
	StandingNotEvaluated StandingStatus = "NOT_EVALUATED"
)

// StudentResultSummary is a student's report card.
type StudentResultSummary struct {
	StudentID     string          `json:"student_id"`
	StudentName   string          `json:"student_name,omitempty"`
	Subjects      []SubjectResult `json:"subjects"`
	GlobalAverage float64         `json:"global_average"`
	Status        StandingStatus  `json:"status"`
}

// SubjectAverage is a bar of the class scores chart.
type SubjectAverage struct {
	Subject       string  `json:"subject"`
	ExamAvg       float64 `json:"exam_avg"`
	AssignmentAvg float64 `json:"assignment_avg"`
}
