package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
	appErrors "github.com/noah-isme/sma-gradebook-api/pkg/errors"
)

type lessonReaderStub struct {
	scheduled []models.ScheduledLesson
	summaries []models.LessonSummary
	err       error
	filter    models.LessonFilter
}

func (s *lessonReaderStub) ListScheduled(_ context.Context, filter models.LessonFilter) ([]models.ScheduledLesson, error) {
	s.filter = filter
	return s.scheduled, s.err
}

func (s *lessonReaderStub) ListSummaries(_ context.Context, filter models.LessonFilter) ([]models.LessonSummary, error) {
	s.filter = filter
	return s.summaries, s.err
}

func strPtr(v string) *string { return &v }

func TestScheduleServiceWeekTitlesAndNormalizes(t *testing.T) {
	now := time.Date(2026, time.October, 15, 10, 0, 0, 0, time.UTC)
	reader := &lessonReaderStub{scheduled: []models.ScheduledLesson{
		{
			ID: 1, Name: "Math Lesson", ClassName: strPtr("1A"), RoomName: strPtr("101"),
			StartTime: time.Date(2024, time.March, 4, 8, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC),
		},
		{
			ID: 2, Name: "Art Lesson",
			StartTime: time.Date(2024, time.March, 6, 13, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2024, time.March, 6, 14, 0, 0, 0, time.UTC),
		},
	}}
	svc := NewScheduleService(reader, nil, func() time.Time { return now })

	week, err := svc.Week(context.Background(), models.LessonFilter{ClassID: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(3), reader.filter.ClassID)
	assert.Equal(t, time.Date(2026, time.October, 12, 0, 0, 0, 0, time.UTC), week.WeekStart)
	require.Len(t, week.Entries, 2)
	assert.Equal(t, "Class: 1A, Room: 101, Lesson: Math Lesson", week.Entries[0].Title)
	assert.Equal(t, "Class: No Class, Room: No Room, Lesson: Art Lesson", week.Entries[1].Title)
	assert.Equal(t, time.Date(2026, time.October, 14, 13, 0, 0, 0, time.UTC), week.Entries[1].Start)
}

func TestScheduleServiceWeekWarnsOnOvernightLessons(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	reader := &lessonReaderStub{scheduled: []models.ScheduledLesson{{
		Name:      "Night revision",
		StartTime: time.Date(2025, time.February, 2, 23, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2025, time.February, 3, 1, 0, 0, 0, time.UTC),
	}}}
	svc := NewScheduleService(reader, zap.New(core), func() time.Time {
		return time.Date(2026, time.October, 14, 9, 0, 0, 0, time.UTC)
	})

	week, err := svc.Week(context.Background(), models.LessonFilter{TeacherID: "teacher1"})
	require.NoError(t, err)
	require.Len(t, week.Entries, 1)
	assert.True(t, week.Entries[0].End.Before(week.Entries[0].Start))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, int64(1), logs.All()[0].ContextMap()["count"])
}

func TestScheduleServiceWeekRequiresFilter(t *testing.T) {
	svc := NewScheduleService(&lessonReaderStub{}, nil, nil)
	_, err := svc.Week(context.Background(), models.LessonFilter{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestScheduleServiceWeekRepositoryError(t *testing.T) {
	svc := NewScheduleService(&lessonReaderStub{err: errors.New("boom")}, nil, nil)
	_, err := svc.Week(context.Background(), models.LessonFilter{ClassID: 1})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestScheduleServiceTeacherLessons(t *testing.T) {
	reader := &lessonReaderStub{summaries: []models.LessonSummary{{ID: 4, Name: "Math Lesson", ClassID: 2}}}
	svc := NewScheduleService(reader, nil, nil)

	lessons, err := svc.TeacherLessons(context.Background(), "teacher-9", 2)
	require.NoError(t, err)
	assert.Len(t, lessons, 1)
	assert.Equal(t, models.LessonFilter{TeacherID: "teacher-9", ClassID: 2}, reader.filter)

	_, err = svc.TeacherLessons(context.Background(), "teacher-9", 0)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.TeacherLessons(context.Background(), "", 2)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
