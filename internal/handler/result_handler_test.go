package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-gradebook-api/internal/dto"
	"github.com/noah-isme/sma-gradebook-api/internal/models"
	"github.com/noah-isme/sma-gradebook-api/internal/service"
	appErrors "github.com/noah-isme/sma-gradebook-api/pkg/errors"
	"github.com/noah-isme/sma-gradebook-api/pkg/export"
)

type resultServiceMock struct {
	reconcileErr error
	lastFilter   models.ResultFilter
	averagesHit  bool
}

func (m *resultServiceMock) Reconcile(ctx context.Context, req dto.ReconcileResultsRequest) (*dto.ReconcileResultsResponse, error) {
	if m.reconcileErr != nil {
		return nil, m.reconcileErr
	}
	return &dto.ReconcileResultsResponse{Message: "Results saved successfully", Processed: len(req.Grades)}, nil
}

func (m *resultServiceMock) List(ctx context.Context, filter models.ResultFilter) ([]models.ResultDetail, error) {
	m.lastFilter = filter
	return []models.ResultDetail{{ID: 1, Score: 15, StudentID: filter.StudentID}}, nil
}

func (m *resultServiceMock) StudentSummary(ctx context.Context, studentID string) (*dto.StudentResultSummary, error) {
	if studentID == "missing" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return &dto.StudentResultSummary{StudentID: studentID, Status: dto.StandingNotEvaluated}, nil
}

func (m *resultServiceMock) SubjectAverages(ctx context.Context) ([]dto.SubjectAverage, bool, error) {
	return []dto.SubjectAverage{{Subject: "Math", ExamAvg: 14.5, AssignmentAvg: 12}}, m.averagesHit, nil
}

type reportServiceMock struct {
	lastFormat export.Format
}

func (m *reportServiceMock) ReportCard(ctx context.Context, studentID string, format export.Format) (*service.ReportFile, error) {
	m.lastFormat = format
	return &service.ReportFile{Filename: "report-card-" + studentID + ".csv", ContentType: "text/csv", Body: []byte("Subject\n")}, nil
}

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func newTestContext(method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestResultHandlerReconcileSuccess(t *testing.T) {
	handler := NewResultHandler(&resultServiceMock{}, &reportServiceMock{})
	c, w := newTestContext(http.MethodPost, "/results",
		[]byte(`{"classId":1,"studentId":"stu-1","grades":[{"subject":"Math","examValue":15,"assignmentValue":12}]}`))

	handler.Reconcile(c)

	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.JSONEq(t, `{"message":"Results saved successfully","processed":1}`, string(env.Data))
}

func TestResultHandlerReconcileMalformedBody(t *testing.T) {
	handler := NewResultHandler(&resultServiceMock{}, &reportServiceMock{})
	c, w := newTestContext(http.MethodPost, "/results", []byte(`{"classId":`))

	handler.Reconcile(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "Missing required fields", env.Error.Message)
}

func TestResultHandlerReconcileLineFailureNamesSubject(t *testing.T) {
	lineErr := &service.GradeLineError{
		Subject: "Physics",
		Err:     appErrors.Wrap(errors.New("connection reset"), appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, `Error processing grade for subject "Physics"`),
	}
	handler := NewResultHandler(&resultServiceMock{reconcileErr: lineErr}, &reportServiceMock{})
	c, w := newTestContext(http.MethodPost, "/results",
		[]byte(`{"classId":1,"studentId":"stu-1","grades":[{"subject":"Physics","examValue":1,"assignmentValue":2}]}`))

	handler.Reconcile(c)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "Physics", env.Meta["subject"])
	assert.Equal(t, "connection reset", env.Meta["details"])
}

func TestResultHandlerListParsesFilter(t *testing.T) {
	results := &resultServiceMock{}
	handler := NewResultHandler(results, &reportServiceMock{})
	c, w := newTestContext(http.MethodGet, "/results?studentId=%20stu-1%20&classId=3", nil)

	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ResultFilter{StudentID: "stu-1", ClassID: 3}, results.lastFilter)
}

func TestResultHandlerListRejectsBadClassID(t *testing.T) {
	handler := NewResultHandler(&resultServiceMock{}, &reportServiceMock{})
	c, w := newTestContext(http.MethodGet, "/results?classId=abc", nil)

	handler.List(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResultHandlerStudentSummaryNotFound(t *testing.T) {
	handler := NewResultHandler(&resultServiceMock{}, &reportServiceMock{})
	c, w := newTestContext(http.MethodGet, "/results/students/missing/summary", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.StudentSummary(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestResultHandlerReportFormats(t *testing.T) {
	reports := &reportServiceMock{}
	handler := NewResultHandler(&resultServiceMock{}, reports)

	c, w := newTestContext(http.MethodGet, "/results/students/stu-1/report", nil)
	c.Params = gin.Params{{Key: "id", Value: "stu-1"}}
	handler.Report(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.FormatCSV, reports.lastFormat)
	assert.Equal(t, `attachment; filename="report-card-stu-1.csv"`, w.Header().Get("Content-Disposition"))

	c, w = newTestContext(http.MethodGet, "/results/students/stu-1/report?format=xlsx", nil)
	c.Params = gin.Params{{Key: "id", Value: "stu-1"}}
	handler.Report(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResultHandlerSubjectAveragesCacheMeta(t *testing.T) {
	handler := NewResultHandler(&resultServiceMock{averagesHit: true}, &reportServiceMock{})
	c, w := newTestContext(http.MethodGet, "/results/subjects/averages", nil)

	handler.SubjectAverages(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	env := decodeEnvelope(t, w)
	assert.Equal(t, true, env.Meta["cache_hit"])
}
