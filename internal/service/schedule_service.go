package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-gradebook-api/internal/dto"
	"github.com/noah-isme/sma-gradebook-api/internal/models"
	appErrors "github.com/noah-isme/sma-gradebook-api/pkg/errors"
)

type lessonReader interface {
	ListScheduled(ctx context.Context, filter models.LessonFilter) ([]models.ScheduledLesson, error)
	ListSummaries(ctx context.Context, filter models.LessonFilter) ([]models.LessonSummary, error)
}

// ScheduleService builds weekly calendars and lesson pickers.
type ScheduleService struct {
	lessons lessonReader
	logger  *zap.Logger
	now     func() time.Time
}

// NewScheduleService constructs the service. A nil clock falls back to time.Now.
func NewScheduleService(lessons lessonReader, logger *zap.Logger, now func() time.Time) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &ScheduleService{lessons: lessons, logger: logger, now: now}
}

// Week returns the lessons of a teacher or a class projected onto the current week.
func (s *ScheduleService) Week(ctx context.Context, filter models.LessonFilter) (*dto.WeekSchedule, error) {
	if filter.TeacherID == "" && filter.ClassID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "teacherId or classId is required")
	}

	lessons, err := s.lessons.ListScheduled(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lessons")
	}

	entries := make([]dto.CalendarEntry, 0, len(lessons))
	for _, lesson := range lessons {
		entries = append(entries, dto.CalendarEntry{
			Title: lessonTitle(lesson),
			Start: lesson.StartTime,
			End:   lesson.EndTime,
		})
	}

	now := s.now()
	normalized := NormalizeWeek(entries, now)

	overnight := 0
	for _, entry := range normalized {
		if entry.End.Before(entry.Start) {
			overnight++
		}
	}
	if overnight > 0 {
		s.logger.Warn("lessons crossing midnight were pinned to their start day",
			zap.Int("count", overnight),
			zap.String("teacher_id", filter.TeacherID),
			zap.Int64("class_id", filter.ClassID))
	}

	return &dto.WeekSchedule{WeekStart: WeekAnchor(now), Entries: normalized}, nil
}

// TeacherLessons lists a teacher's lessons in a class.
func (s *ScheduleService) TeacherLessons(ctx context.Context, teacherID string, classID int64) ([]models.LessonSummary, error) {
	if classID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "classId is required")
	}
	if teacherID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	lessons, err := s.lessons.ListSummaries(ctx, models.LessonFilter{TeacherID: teacherID, ClassID: classID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lessons")
	}
	return lessons, nil
}

func lessonTitle(lesson models.ScheduledLesson) string {
	className := "No Class"
	if lesson.ClassName != nil && *lesson.ClassName != "" {
		className = *lesson.ClassName
	}
	roomName := "No Room"
	if lesson.RoomName != nil && *lesson.RoomName != "" {
		roomName = *lesson.RoomName
	}
	return fmt.Sprintf("Class: %s, Room: %s, Lesson: %s", className, roomName, lesson.Name)
}
