package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/sma-gradebook-api/api/swagger"
	"github.com/noah-isme/sma-gradebook-api/internal/handler"
	"github.com/noah-isme/sma-gradebook-api/internal/middleware"
	"github.com/noah-isme/sma-gradebook-api/internal/models"
	"github.com/noah-isme/sma-gradebook-api/pkg/config"
	"github.com/noah-isme/sma-gradebook-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-gradebook-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-gradebook-api/pkg/middleware/requestid"
)

var (
	staff     = []models.UserRole{models.RoleAdmin, models.RoleTeacher}
	everybody = []models.UserRole{models.RoleAdmin, models.RoleTeacher, models.RoleStudent, models.RoleParent}
)

// Router builds the gin engine with every route mounted.
func (a *App) Router() *gin.Engine {
	if a.Config.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(a.Logger))
	r.Use(corsmiddleware.New(a.Config.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(a.Metrics))
	r.Use(middleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(a.Metrics)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", a.ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if a.Config.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	resultHandler := handler.NewResultHandler(a.Results, a.Reports)
	scheduleHandler := handler.NewScheduleHandler(a.Schedule)
	attendanceHandler := handler.NewAttendanceHandler(a.Attendance)

	api := r.Group(a.Config.APIPrefix, middleware.JWT(a.Tokens))

	results := api.Group("/results")
	results.POST("", middleware.RequireRoles(staff...), resultHandler.Reconcile)
	results.GET("", middleware.RequireRoles(staff...), resultHandler.List)
	results.GET("/subjects/averages", middleware.RequireRoles(staff...), resultHandler.SubjectAverages)

	self := middleware.RBAC(middleware.Access{Roles: staff, SelfParam: "id"})
	results.GET("/students/:id/summary", self, resultHandler.StudentSummary)
	results.GET("/students/:id/report", self, resultHandler.Report)

	api.GET("/schedule", middleware.RequireRoles(everybody...), scheduleHandler.Week)
	api.GET("/lessons", middleware.RequireRoles(models.RoleTeacher), scheduleHandler.TeacherLessons)
	api.POST("/attendance", middleware.RequireRoles(staff...), attendanceHandler.Record)
	api.GET("/metrics/summary", middleware.RequireRoles(models.RoleAdmin), metricsHandler.Summary)

	return r
}

func (a *App) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := a.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
