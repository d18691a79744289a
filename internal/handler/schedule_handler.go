package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-gradebook-api/internal/dto"
	"github.com/noah-isme/sma-gradebook-api/internal/models"
	appErrors "github.com/noah-isme/sma-gradebook-api/pkg/errors"
	"github.com/noah-isme/sma-gradebook-api/pkg/response"
)

type scheduleService interface {
	Week(ctx context.Context, filter models.LessonFilter) (*dto.WeekSchedule, error)
	TeacherLessons(ctx context.Context, teacherID string, classID int64) ([]models.LessonSummary, error)
}

// ScheduleHandler serves the weekly calendar and lesson pickers.
type ScheduleHandler struct {
	service scheduleService
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(svc scheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

// Week godoc
// @Summary Weekly schedule
// @Description Lessons of a teacher or class projected onto the current week
// @Tags Schedule
// @Produce json
// @Param teacherId query string false "Teacher ID"
// @Param classId query int false "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedule [get]
func (h *ScheduleHandler) Week(c *gin.Context) {
	filter := models.LessonFilter{TeacherID: strings.TrimSpace(c.Query("teacherId"))}
	classID, err := optionalInt64(c.Query("classId"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "classId must be an integer"))
		return
	}
	filter.ClassID = classID

	week, err := h.service.Week(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, week, nil)
}

// TeacherLessons godoc
// @Summary Lessons of the signed-in teacher in a class
// @Tags Schedule
// @Produce json
// @Param classId query int true "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /lessons [get]
func (h *ScheduleHandler) TeacherLessons(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	classID, err := optionalInt64(c.Query("classId"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "classId must be an integer"))
		return
	}

	lessons, err := h.service.TeacherLessons(c.Request.Context(), claims.UserID, classID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lessons, nil)
}

func optionalInt64(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}
