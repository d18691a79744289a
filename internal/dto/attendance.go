package dto

// AttendanceMark is one student's presence flag.
type AttendanceMark struct {
	StudentID string `json:"studentId" validate:"required"`
	Present   bool   `json:"present"`
}

// RecordAttendanceRequest stores presence for a lesson on a date (YYYY-MM-DD or RFC3339).
type RecordAttendanceRequest struct {
	Date        string           `json:"date" validate:"required"`
	LessonID    int64            `json:"lessonId" validate:"required,gt=0"`
	Attendances []AttendanceMark `json:"attendances" validate:"required,min=1,dive"`
}

// RecordAttendanceResponse reports how many rows were stored.
type RecordAttendanceResponse struct {
	Message string `json:"message"`
	Saved   int    `json:"saved"`
}
