package server

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/dosetrack/dosetrack-backend/internal/http/handlers"
	"github.com/dosetrack/dosetrack-backend/internal/http/middleware"
	"github.com/dosetrack/dosetrack-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string

	AuthMiddleware *middleware.AuthMiddleware

	AuthHandler       *handlers.AuthHandler
	UserHandler       *handlers.UserHandler
	MedicationHandler *handlers.MedicationHandler
	ScheduleHandler   *handlers.ScheduleHandler
	IntakeHandler     *handlers.IntakeHandler
	ReportHandler     *handlers.ReportHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(middleware.AttachTraceContext())
	router.Use(middleware.RequestLogger(cfg.Log))
	router.Use(middleware.CORS(cfg.CORSOrigins))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)
	api := router.Group("/api")
	{
		api.POST("/auth/register", cfg.AuthHandler.Register)
		api.POST("/auth/login", cfg.AuthHandler.Login)
		api.POST("/auth/refresh", cfg.AuthHandler.Refresh)
	}

	// Protected
	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	protected.POST("/auth/logout", cfg.AuthHandler.Logout)

	protected.GET("/user", cfg.UserHandler.GetMe)
	protected.PUT("/user", cfg.UserHandler.UpdateProfile)
	protected.PUT("/user/password", cfg.UserHandler.ChangePassword)

	protected.GET("/medications", cfg.MedicationHandler.List)
	protected.POST("/medications", cfg.MedicationHandler.Create)
	protected.GET("/medications/:id", cfg.MedicationHandler.Get)
	protected.PUT("/medications/:id", cfg.MedicationHandler.Update)
	protected.DELETE("/medications/:id", cfg.MedicationHandler.Deactivate)

	protected.GET("/medications/:id/schedules", cfg.ScheduleHandler.ListByMedication)
	protected.POST("/medications/:id/schedules", cfg.ScheduleHandler.Create)
	protected.PUT("/schedules/:id", cfg.ScheduleHandler.Update)
	protected.DELETE("/schedules/:id", cfg.ScheduleHandler.Deactivate)

	protected.GET("/intakes", cfg.IntakeHandler.List)
	protected.POST("/intakes", cfg.IntakeHandler.Create)
	protected.DELETE("/intakes/:id", cfg.IntakeHandler.Delete)

	protected.GET("/reports/adherence", cfg.ReportHandler.Adherence)
	protected.GET("/reports/adherence/medications", cfg.ReportHandler.ByMedication)
	protected.GET("/reports/adherence/schedules", cfg.ReportHandler.BySchedule)
	protected.GET("/reports/adherence/daily", cfg.ReportHandler.Daily)
	protected.GET("/reports/adherence/weekly", cfg.ReportHandler.Weekly)
	protected.GET("/reports/adherence/monthly", cfg.ReportHandler.Monthly)
	protected.GET("/reports/intake-timeline", cfg.ReportHandler.Timeline)

	return router
}
