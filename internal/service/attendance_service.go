package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-gradebook-api/internal/dto"
	"github.com/noah-isme/sma-gradebook-api/internal/models"
	appErrors "github.com/noah-isme/sma-gradebook-api/pkg/errors"
)

type attendanceWriter interface {
	BulkCreate(ctx context.Context, records []models.Attendance) error
}

// AttendanceService records lesson attendance sheets.
type AttendanceService struct {
	repo      attendanceWriter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the service.
func NewAttendanceService(repo attendanceWriter, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, validator: validate, logger: logger}
}

// Record stores one attendance row per student, all or nothing.
func (s *AttendanceService) Record(ctx context.Context, req dto.RecordAttendanceRequest) (*dto.RecordAttendanceResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	date, err := parseAttendanceDate(req.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date must be YYYY-MM-DD or RFC3339")
	}

	seen := make(map[string]struct{}, len(req.Attendances))
	records := make([]models.Attendance, 0, len(req.Attendances))
	for _, mark := range req.Attendances {
		studentID := strings.TrimSpace(mark.StudentID)
		if _, dup := seen[studentID]; dup {
			return nil, appErrors.Clone(appErrors.ErrValidation, "student "+studentID+" appears more than once")
		}
		seen[studentID] = struct{}{}
		records = append(records, models.Attendance{
			Date:      date,
			Present:   mark.Present,
			StudentID: studentID,
			LessonID:  req.LessonID,
		})
	}

	if err := s.repo.BulkCreate(ctx, records); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Failed to save attendance")
	}

	s.logger.Info("attendance recorded", zap.Int64("lesson_id", req.LessonID), zap.Int("rows", len(records)))
	return &dto.RecordAttendanceResponse{Message: "Attendance saved successfully", Saved: len(records)}, nil
}

func parseAttendanceDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
