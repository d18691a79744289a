package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-gradebook-api/internal/dto"
	"github.com/noah-isme/sma-gradebook-api/internal/models"
	"github.com/noah-isme/sma-gradebook-api/pkg/database"
	appErrors "github.com/noah-isme/sma-gradebook-api/pkg/errors"
	"github.com/noah-isme/sma-gradebook-api/pkg/events"
)

type subjectStore interface {
	FindByName(ctx context.Context, exec sqlx.ExtContext, name string) (*models.Subject, error)
	Create(ctx context.Context, exec sqlx.ExtContext, subject *models.Subject) error
}

type lessonStore interface {
	FindBySubjectAndClass(ctx context.Context, exec sqlx.ExtContext, subjectID, classID int64) (*models.Lesson, error)
	Create(ctx context.Context, exec sqlx.ExtContext, lesson *models.Lesson) error
}

type examStore interface {
	FindBySubjectAndClass(ctx context.Context, exec sqlx.ExtContext, subjectID, classID int64) (*models.Exam, error)
	Create(ctx context.Context, exec sqlx.ExtContext, exam *models.Exam) error
}

type assignmentStore interface {
	FindByLesson(ctx context.Context, exec sqlx.ExtContext, lessonID int64) (*models.Assignment, error)
	Create(ctx context.Context, exec sqlx.ExtContext, assignment *models.Assignment) error
}

type resultStore interface {
	FindByStudentAndExam(ctx context.Context, exec sqlx.ExtContext, studentID string, examID int64) (*models.Result, error)
	FindByStudentAndAssignment(ctx context.Context, exec sqlx.ExtContext, studentID string, assignmentID int64) (*models.Result, error)
	Create(ctx context.Context, exec sqlx.ExtContext, result *models.Result) error
	UpdateScore(ctx context.Context, exec sqlx.ExtContext, id int64, score float64) error
	List(ctx context.Context, filter models.ResultFilter) ([]models.ResultDetail, error)
	SubjectAverages(ctx context.Context) ([]models.SubjectScoreAverage, error)
}

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type reconcileNotifier interface {
	NotifyReconciled(ctx context.Context, event events.ResultsReconciled) error
}

// ResultStores bundles the repositories the result service works against.
type ResultStores struct {
	Subjects    subjectStore
	Lessons     lessonStore
	Exams       examStore
	Assignments assignmentStore
	Results     resultStore
	Students    studentReader
}

// ResultServiceConfig carries the defaults used when curriculum entities are bootstrapped.
type ResultServiceConfig struct {
	DefaultTeacherID string
	LessonDuration   time.Duration
	ExamDuration     time.Duration
	AssignmentDueIn  time.Duration
	AveragesCacheTTL time.Duration
	MaxGrades        int
}

const subjectAveragesCacheKey = "results:subject-averages"

// GradeLineError identifies the grade line that aborted a reconciliation.
type GradeLineError struct {
	Subject string
	Err     *appErrors.Error
}

func (e *GradeLineError) Error() string { return e.Err.Error() }

func (e *GradeLineError) Unwrap() error { return e.Err }

// ResultService reconciles submitted grades into results and serves result read models.
type ResultService struct {
	tx        txProvider
	stores    ResultStores
	cache     *CacheService
	notifier  reconcileNotifier
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ResultServiceConfig
	now       func() time.Time
}

// NewResultService constructs the service. Nil cache, notifier and metrics are allowed.
func NewResultService(tx txProvider, stores ResultStores, cache *CacheService, notifier reconcileNotifier, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg ResultServiceConfig) *ResultService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultTeacherID == "" {
		cfg.DefaultTeacherID = "teacher1"
	}
	if cfg.LessonDuration <= 0 {
		cfg.LessonDuration = time.Hour
	}
	if cfg.ExamDuration <= 0 {
		cfg.ExamDuration = time.Hour
	}
	if cfg.AssignmentDueIn <= 0 {
		cfg.AssignmentDueIn = 7 * 24 * time.Hour
	}
	return &ResultService{
		tx:        tx,
		stores:    stores,
		cache:     cache,
		notifier:  notifier,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// WithClock replaces the clock used for default lesson/exam/assignment windows.
func (s *ResultService) WithClock(now func() time.Time) *ResultService {
	if now != nil {
		s.now = now
	}
	return s
}

// Reconcile applies each grade line in order, one transaction per line. The first failing
// line aborts the request; lines applied before it stay committed.
func (s *ResultService) Reconcile(ctx context.Context, req dto.ReconcileResultsRequest) (*dto.ReconcileResultsResponse, error) {
	if err := s.validateReconcile(req); err != nil {
		s.metrics.ObserveReconciliation(OutcomeRejected)
		return nil, err
	}

	subjects := make([]string, 0, len(req.Grades))
	for _, line := range req.Grades {
		subject := strings.TrimSpace(line.Subject)
		if err := s.reconcileLine(ctx, req.ClassID, req.StudentID, subject, line); err != nil {
			s.metrics.ObserveReconciliation(OutcomeFailed)
			s.logger.Error("grade line failed",
				zap.String("subject", subject),
				zap.String("student_id", req.StudentID),
				zap.Int64("class_id", req.ClassID),
				zap.Error(err))
			return nil, &GradeLineError{Subject: subject, Err: lineError(subject, err)}
		}
		subjects = append(subjects, subject)
	}

	s.metrics.ObserveReconciliation(OutcomeSuccess)
	_ = s.cache.Invalidate(ctx, subjectAveragesCacheKey)
	if s.notifier != nil {
		_ = s.notifier.NotifyReconciled(ctx, events.ResultsReconciled{
			ID:         uuid.NewString(),
			StudentID:  req.StudentID,
			ClassID:    req.ClassID,
			Subjects:   subjects,
			OccurredAt: s.now().UTC(),
		})
	}

	s.logger.Info("results reconciled",
		zap.String("student_id", req.StudentID),
		zap.Int64("class_id", req.ClassID),
		zap.Int("grades", len(req.Grades)))
	return &dto.ReconcileResultsResponse{Message: "Results saved successfully", Processed: len(req.Grades)}, nil
}

func (s *ResultService) validateReconcile(req dto.ReconcileResultsRequest) error {
	if req.ClassID <= 0 || strings.TrimSpace(req.StudentID) == "" || len(req.Grades) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "Missing required fields")
	}
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grades payload")
	}
	if s.cfg.MaxGrades > 0 && len(req.Grades) > s.cfg.MaxGrades {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("at most %d grades per submission", s.cfg.MaxGrades))
	}
	for i, line := range req.Grades {
		if strings.TrimSpace(line.Subject) == "" {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("grades[%d]: subject is required", i))
		}
		if !finite(line.ExamValue) || !finite(line.AssignmentValue) {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("grades[%d]: scores must be finite numbers", i))
		}
	}
	return nil
}

// reconcileLine runs one grade line in its own transaction. A unique violation means a
// concurrent request created the same rows first; the line is retried once and then
// finds them.
func (s *ResultService) reconcileLine(ctx context.Context, classID int64, studentID, subject string, line dto.GradeLine) error {
	start := time.Now()
	defer func() { s.metrics.ObserveDBQuery("reconcile_line", time.Since(start)) }()

	path, err := s.applyInTx(ctx, classID, studentID, subject, line)
	if err != nil && database.IsUniqueViolation(err) {
		s.logger.Warn("concurrent grade write detected, retrying line", zap.String("subject", subject), zap.Error(err))
		if _, err = s.applyInTx(ctx, classID, studentID, subject, line); err == nil {
			path = LinePathRetried
		}
	}
	if err != nil {
		return err
	}
	s.metrics.ObserveGradeLine(path)
	return nil
}

func (s *ResultService) applyInTx(ctx context.Context, classID int64, studentID, subject string, line dto.GradeLine) (path string, err error) {
	if s.tx == nil {
		return "", errors.New("transaction provider missing")
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if path, err = s.applyLine(ctx, tx, classID, studentID, subject, line); err != nil {
		return "", err
	}
	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("commit transaction: %w", err)
	}
	return path, nil
}

// applyLine ensures subject, lesson, exam and assignment exist, then upserts the two results.
func (s *ResultService) applyLine(ctx context.Context, exec sqlx.ExtContext, classID int64, studentID, subjectName string, line dto.GradeLine) (string, error) {
	now := s.now()

	subject, err := s.stores.Subjects.FindByName(ctx, exec, subjectName)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("find subject: %w", err)
	}

	if subject == nil {
		subject = &models.Subject{Name: subjectName}
		if err := s.stores.Subjects.Create(ctx, exec, subject); err != nil {
			return "", err
		}
		lesson := s.defaultLesson(subject, classID, now)
		if err := s.stores.Lessons.Create(ctx, exec, lesson); err != nil {
			return "", err
		}
		exam := s.defaultExam(subject, classID, now)
		if err := s.stores.Exams.Create(ctx, exec, exam); err != nil {
			return "", err
		}
		assignment := s.defaultAssignment(subject, lesson, now)
		if err := s.stores.Assignments.Create(ctx, exec, assignment); err != nil {
			return "", err
		}
		if err := s.stores.Results.Create(ctx, exec, models.NewExamResult(studentID, exam.ID, line.ExamValue)); err != nil {
			return "", err
		}
		if err := s.stores.Results.Create(ctx, exec, models.NewAssignmentResult(studentID, assignment.ID, line.AssignmentValue)); err != nil {
			return "", err
		}
		return LinePathBootstrap, nil
	}

	lesson, err := s.stores.Lessons.FindBySubjectAndClass(ctx, exec, subject.ID, classID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("find lesson: %w", err)
		}
		lesson = s.defaultLesson(subject, classID, now)
		if err := s.stores.Lessons.Create(ctx, exec, lesson); err != nil {
			return "", err
		}
	}

	exam, err := s.stores.Exams.FindBySubjectAndClass(ctx, exec, subject.ID, classID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("find exam: %w", err)
		}
		exam = s.defaultExam(subject, classID, now)
		if err := s.stores.Exams.Create(ctx, exec, exam); err != nil {
			return "", err
		}
	}

	assignment, err := s.stores.Assignments.FindByLesson(ctx, exec, lesson.ID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("find assignment: %w", err)
		}
		assignment = s.defaultAssignment(subject, lesson, now)
		if err := s.stores.Assignments.Create(ctx, exec, assignment); err != nil {
			return "", err
		}
	}

	examResult, err := s.stores.Results.FindByStudentAndExam(ctx, exec, studentID, exam.ID)
	if err := s.upsertResult(ctx, exec, examResult, err, models.NewExamResult(studentID, exam.ID, line.ExamValue)); err != nil {
		return "", fmt.Errorf("exam result: %w", err)
	}

	assignmentResult, err := s.stores.Results.FindByStudentAndAssignment(ctx, exec, studentID, assignment.ID)
	if err := s.upsertResult(ctx, exec, assignmentResult, err, models.NewAssignmentResult(studentID, assignment.ID, line.AssignmentValue)); err != nil {
		return "", fmt.Errorf("assignment result: %w", err)
	}

	return LinePathExisting, nil
}

// upsertResult overwrites the score of existing, or creates fresh when the lookup found nothing.
func (s *ResultService) upsertResult(ctx context.Context, exec sqlx.ExtContext, existing *models.Result, lookupErr error, fresh *models.Result) error {
	if lookupErr != nil && !errors.Is(lookupErr, sql.ErrNoRows) {
		return lookupErr
	}
	if existing != nil && lookupErr == nil {
		return s.stores.Results.UpdateScore(ctx, exec, existing.ID, fresh.Score)
	}
	return s.stores.Results.Create(ctx, exec, fresh)
}

func (s *ResultService) defaultLesson(subject *models.Subject, classID int64, now time.Time) *models.Lesson {
	return &models.Lesson{
		Name:      subject.Name + " Lesson",
		SubjectID: subject.ID,
		ClassID:   classID,
		TeacherID: s.cfg.DefaultTeacherID,
		StartTime: now,
		EndTime:   now.Add(s.cfg.LessonDuration),
	}
}

func (s *ResultService) defaultExam(subject *models.Subject, classID int64, now time.Time) *models.Exam {
	return &models.Exam{
		SubjectID: subject.ID,
		ClassID:   classID,
		StartTime: now,
		EndTime:   now.Add(s.cfg.ExamDuration),
	}
}

func (s *ResultService) defaultAssignment(subject *models.Subject, lesson *models.Lesson, now time.Time) *models.Assignment {
	return &models.Assignment{
		Title:       subject.Name + " Assignment",
		Description: "Assignment for " + subject.Name,
		DueDate:     now.Add(s.cfg.AssignmentDueIn),
		LessonID:    lesson.ID,
	}
}

func lineError(subject string, err error) *appErrors.Error {
	message := fmt.Sprintf("Error processing grade for subject %q", subject)
	if database.IsUniqueViolation(err) {
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, message)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// List returns results for a student, a class, or both.
func (s *ResultService) List(ctx context.Context, filter models.ResultFilter) ([]models.ResultDetail, error) {
	if filter.StudentID == "" && filter.ClassID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Student ID or Class ID is required")
	}
	results, err := s.stores.Results.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Failed to fetch results")
	}
	return results, nil
}

// StudentSummary builds a student's report card from their results.
func (s *ResultService) StudentSummary(ctx context.Context, studentID string) (*dto.StudentResultSummary, error) {
	if strings.TrimSpace(studentID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student id is required")
	}
	student, err := s.stores.Students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	results, err := s.stores.Results.List(ctx, models.ResultFilter{StudentID: studentID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Failed to fetch results")
	}

	subjects := SummarizeResults(results)
	global := GlobalAverage(subjects)
	return &dto.StudentResultSummary{
		StudentID:     student.ID,
		StudentName:   student.DisplayName(),
		Subjects:      subjects,
		GlobalAverage: global,
		Status:        Standing(global),
	}, nil
}

// SubjectAverages returns rounded mean exam and assignment scores per subject; the bool
// reports whether the answer came from cache.
func (s *ResultService) SubjectAverages(ctx context.Context) ([]dto.SubjectAverage, bool, error) {
	averages, hit, err := Remember(ctx, s.cache, subjectAveragesCacheKey, s.cfg.AveragesCacheTTL, func(ctx context.Context) ([]dto.SubjectAverage, error) {
		rows, err := s.stores.Results.SubjectAverages(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]dto.SubjectAverage, 0, len(rows))
		for _, row := range rows {
			out = append(out, dto.SubjectAverage{
				Subject:       row.SubjectName,
				ExamAvg:       roundOrZero(row.ExamAvg),
				AssignmentAvg: roundOrZero(row.AssignmentAvg),
			})
		}
		return out, nil
	})
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute subject averages")
	}
	return averages, hit, nil
}

func roundOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return math.Round(*v)
}
