package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-gradebook-api/internal/repository"
	"github.com/noah-isme/sma-gradebook-api/internal/service"
	"github.com/noah-isme/sma-gradebook-api/pkg/cache"
	"github.com/noah-isme/sma-gradebook-api/pkg/config"
	"github.com/noah-isme/sma-gradebook-api/pkg/database"
	"github.com/noah-isme/sma-gradebook-api/pkg/events"
	"github.com/noah-isme/sma-gradebook-api/pkg/jobs"
)

// App holds the wired services shared by the HTTP server and the admin CLI.
type App struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *sqlx.DB

	Metrics    *service.MetricsService
	Tokens     *service.TokenService
	Results    *service.ResultService
	Reports    *service.ReportService
	Schedule   *service.ScheduleService
	Attendance *service.AttendanceService

	redis     *redis.Client
	cacheRepo *repository.CacheRepository
	publisher events.Publisher
	queue     *jobs.Queue
}

// New connects to the datastores, optionally migrates, and builds every service.
// The event queue is started; Close stops it and releases connections.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.Database.AutoMigrate {
		if err := Migrate(cfg, logger, "up"); err != nil {
			return nil, err
		}
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	a := &App{Config: cfg, Logger: logger, DB: db}

	a.redis, err = cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		// The averages cache is optional; run without it.
		logger.Warn("redis unavailable, caching disabled", zap.Error(err))
		a.redis = nil
	}

	if err := a.buildEvents(); err != nil {
		_ = a.Close()
		return nil, err
	}
	a.buildServices()
	a.queue.Start(context.Background())

	return a, nil
}

func (a *App) buildEvents() error {
	cfg := a.Config.Events
	if cfg.Enabled {
		publisher, err := events.NewAMQPPublisher(cfg)
		if err != nil {
			return fmt.Errorf("connect event broker: %w", err)
		}
		a.publisher = publisher
	} else {
		a.publisher = events.NewLogPublisher(a.Logger)
	}
	return nil
}

func (a *App) buildServices() {
	cfg := a.Config
	validate := validator.New()

	a.Metrics = service.NewMetricsService()
	a.Tokens = service.NewTokenService(cfg.JWT)

	a.cacheRepo = repository.NewCacheRepository(a.redis, a.Logger)
	cacheSvc := service.NewCacheService(a.cacheRepo, a.Metrics, cfg.Results.AveragesCacheTTL, a.Logger, cfg.Results.CacheEnabled && a.redis != nil)

	dispatcher := service.NewEventDispatcher(a.publisher, cfg.Events.RoutingKey, a.Logger)
	a.queue = jobs.NewQueue("events", dispatcher.Handle, jobs.QueueConfig{
		Workers:    cfg.Events.Workers,
		MaxRetries: cfg.Events.Retries,
		RetryDelay: cfg.Events.RetryDelay,
		Logger:     a.Logger,
	})
	dispatcher.AttachQueue(a.queue)

	lessons := repository.NewLessonRepository(a.DB)
	results := repository.NewResultRepository(a.DB)

	a.Results = service.NewResultService(a.DB, service.ResultStores{
		Subjects:    repository.NewSubjectRepository(a.DB),
		Lessons:     lessons,
		Exams:       repository.NewExamRepository(a.DB),
		Assignments: repository.NewAssignmentRepository(a.DB),
		Results:     results,
		Students:    repository.NewStudentRepository(a.DB),
	}, cacheSvc, dispatcher, a.Metrics, validate, a.Logger, service.ResultServiceConfig{
		DefaultTeacherID: cfg.Results.DefaultTeacherID,
		LessonDuration:   cfg.Results.LessonDuration,
		ExamDuration:     cfg.Results.ExamDuration,
		AssignmentDueIn:  cfg.Results.AssignmentDueIn,
		AveragesCacheTTL: cfg.Results.AveragesCacheTTL,
		MaxGrades:        cfg.Results.MaxGradesPerBatch,
	})
	a.Reports = service.NewReportService(a.Results, a.Logger)
	a.Schedule = service.NewScheduleService(lessons, a.Logger, time.Now)
	a.Attendance = service.NewAttendanceService(repository.NewAttendanceRepository(a.DB), validate, a.Logger)
}

// Ping reports whether the database answers.
func (a *App) Ping(ctx context.Context) error {
	return a.DB.PingContext(ctx)
}

// Close stops background work and releases connections.
func (a *App) Close() error {
	if a.queue != nil {
		a.queue.Stop()
	}
	var errs []error
	if a.publisher != nil {
		errs = append(errs, a.publisher.Close())
	}
	switch {
	case a.cacheRepo != nil:
		errs = append(errs, a.cacheRepo.Close())
	case a.redis != nil:
		errs = append(errs, a.redis.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}

// Migrate runs schema migrations in the given direction ("up" or "down").
func Migrate(cfg *config.Config, logger *zap.Logger, direction string) error {
	migrator, err := database.NewMigrator(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer migrator.Close() //nolint:errcheck

	switch direction {
	case "up":
		return migrator.Up()
	case "down":
		return migrator.Down()
	}
	return fmt.Errorf("unknown migration direction %q", direction)
}
