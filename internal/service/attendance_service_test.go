package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-gradebook-api/internal/dto"
	"github.com/noah-isme/sma-gradebook-api/internal/models"
	appErrors "github.com/noah-isme/sma-gradebook-api/pkg/errors"
)

type attendanceWriterStub struct {
	records []models.Attendance
	err     error
}

func (s *attendanceWriterStub) BulkCreate(_ context.Context, records []models.Attendance) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, records...)
	return nil
}

func TestAttendanceServiceRecord(t *testing.T) {
	repo := &attendanceWriterStub{}
	svc := NewAttendanceService(repo, nil, nil)

	res, err := svc.Record(context.Background(), dto.RecordAttendanceRequest{
		Date:     "2026-10-12",
		LessonID: 4,
		Attendances: []dto.AttendanceMark{
			{StudentID: "stu-1", Present: true},
			{StudentID: "stu-2", Present: false},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Saved)
	require.Len(t, repo.records, 2)
	assert.Equal(t, time.Date(2026, time.October, 12, 0, 0, 0, 0, time.UTC), repo.records[0].Date)
	assert.Equal(t, int64(4), repo.records[1].LessonID)
	assert.False(t, repo.records[1].Present)
}

func TestAttendanceServiceAcceptsRFC3339(t *testing.T) {
	repo := &attendanceWriterStub{}
	svc := NewAttendanceService(repo, nil, nil)

	_, err := svc.Record(context.Background(), dto.RecordAttendanceRequest{
		Date:        "2026-10-12T08:00:00Z",
		LessonID:    4,
		Attendances: []dto.AttendanceMark{{StudentID: "stu-1", Present: true}},
	})
	require.NoError(t, err)
	assert.Equal(t, 8, repo.records[0].Date.Hour())
}

func TestAttendanceServiceValidation(t *testing.T) {
	cases := map[string]dto.RecordAttendanceRequest{
		"bad date":       {Date: "12/10/2026", LessonID: 1, Attendances: []dto.AttendanceMark{{StudentID: "stu-1"}}},
		"missing lesson": {Date: "2026-10-12", Attendances: []dto.AttendanceMark{{StudentID: "stu-1"}}},
		"empty sheet":    {Date: "2026-10-12", LessonID: 1},
		"blank student":  {Date: "2026-10-12", LessonID: 1, Attendances: []dto.AttendanceMark{{}}},
		"duplicate":      {Date: "2026-10-12", LessonID: 1, Attendances: []dto.AttendanceMark{{StudentID: "stu-1"}, {StudentID: "stu-1"}}},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			repo := &attendanceWriterStub{}
			_, err := NewAttendanceService(repo, nil, nil).Record(context.Background(), req)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
			assert.Empty(t, repo.records)
		})
	}
}

func TestAttendanceServiceRepositoryFailure(t *testing.T) {
	svc := NewAttendanceService(&attendanceWriterStub{err: errors.New("tx aborted")}, nil, nil)
	_, err := svc.Record(context.Background(), dto.RecordAttendanceRequest{
		Date: "2026-10-12", LessonID: 1, Attendances: []dto.AttendanceMark{{StudentID: "stu-1"}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}
