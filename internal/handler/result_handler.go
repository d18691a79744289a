package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-gradebook-api/internal/dto"
	"github.com/noah-isme/sma-gradebook-api/internal/middleware"
	"github.com/noah-isme/sma-gradebook-api/internal/models"
	"github.com/noah-isme/sma-gradebook-api/internal/service"
	appErrors "github.com/noah-isme/sma-gradebook-api/pkg/errors"
	"github.com/noah-isme/sma-gradebook-api/pkg/export"
	"github.com/noah-isme/sma-gradebook-api/pkg/response"
)

type resultService interface {
	Reconcile(ctx context.Context, req dto.ReconcileResultsRequest) (*dto.ReconcileResultsResponse, error)
	List(ctx context.Context, filter models.ResultFilter) ([]models.ResultDetail, error)
	StudentSummary(ctx context.Context, studentID string) (*dto.StudentResultSummary, error)
	SubjectAverages(ctx context.Context) ([]dto.SubjectAverage, bool, error)
}

type reportService interface {
	ReportCard(ctx context.Context, studentID string, format export.Format) (*service.ReportFile, error)
}

// ResultHandler exposes grade submission and result read models.
type ResultHandler struct {
	results resultService
	reports reportService
}

// NewResultHandler constructs the handler.
func NewResultHandler(results resultService, reports reportService) *ResultHandler {
	return &ResultHandler{results: results, reports: reports}
}

// Reconcile godoc
// @Summary Submit a student's grades
// @Description Creates missing subjects, lessons, exams and assignments, then upserts exam and assignment results per subject
// @Tags Results
// @Accept json
// @Produce json
// @Param payload body dto.ReconcileResultsRequest true "Grades"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /results [post]
func (h *ResultHandler) Reconcile(c *gin.Context) {
	var req dto.ReconcileResultsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "Missing required fields"))
		return
	}

	res, err := h.results.Reconcile(c.Request.Context(), req)
	if err != nil {
		var lineErr *service.GradeLineError
		if errors.As(err, &lineErr) {
			response.Error(c, lineErr.Err, map[string]interface{}{
				"subject": lineErr.Subject,
				"details": lineErr.Err.Details(),
			})
			return
		}
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// List godoc
// @Summary List results
// @Tags Results
// @Produce json
// @Param studentId query string false "Student ID"
// @Param classId query int false "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /results [get]
func (h *ResultHandler) List(c *gin.Context) {
	filter := models.ResultFilter{StudentID: strings.TrimSpace(c.Query("studentId"))}
	if raw := c.Query("classId"); raw != "" {
		classID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "classId must be an integer"))
			return
		}
		filter.ClassID = classID
	}

	results, err := h.results.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, results, &models.Pagination{Page: 1, PageSize: len(results), TotalCount: len(results)})
}

// StudentSummary godoc
// @Summary Student report card
// @Tags Results
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /results/students/{id}/summary [get]
func (h *ResultHandler) StudentSummary(c *gin.Context) {
	summary, err := h.results.StudentSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Report godoc
// @Summary Download a student report card
// @Tags Results
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Student ID"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /results/students/{id}/report [get]
func (h *ResultHandler) Report(c *gin.Context) {
	format, ok := export.ParseFormat(strings.ToLower(c.Query("format")))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
		return
	}

	file, err := h.reports.ReportCard(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// SubjectAverages godoc
// @Summary Per-subject mean exam and assignment scores
// @Tags Results
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /results/subjects/averages [get]
func (h *ResultHandler) SubjectAverages(c *gin.Context) {
	averages, hit, err := h.results.SubjectAverages(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, averages, nil, middleware.ExtractMeta(c))
}
