package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	redisclient "github.com/dosetrack/dosetrack-backend/internal/clients/redis"
	"github.com/dosetrack/dosetrack-backend/internal/data/db"
	"github.com/dosetrack/dosetrack-backend/internal/data/repos"
	"github.com/dosetrack/dosetrack-backend/internal/http/handlers"
	"github.com/dosetrack/dosetrack-backend/internal/http/middleware"
	"github.com/dosetrack/dosetrack-backend/internal/platform/dbctx"
	"github.com/dosetrack/dosetrack-backend/internal/platform/logger"
	"github.com/dosetrack/dosetrack-backend/internal/server"
	"github.com/dosetrack/dosetrack-backend/internal/services"
)

type App struct {
	Log    *logger.Logger
	Cfg    Config
	DB     *db.PostgresService
	Router *gin.Engine

	denylist redisclient.TokenDenylist
}

func New(log *logger.Logger) (*App, error) {
	cfg := LoadConfig(log)

	pg, err := db.NewPostgresService(log)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	// Revocation needs Redis; without it logout still deletes the
	// refresh token, so a missing instance is not fatal.
	denylist, err := redisclient.NewTokenDenylist(log)
	if err != nil {
		log.Warn("token denylist unavailable, access tokens stay valid until expiry", "error", err)
		denylist = nil
	}

	repoSet := repos.NewSet(pg.DB(), log)
	clock := services.SystemClock()

	if err := repoSet.UserToken.DeleteExpired(dbctx.New(context.Background()), clock.Now()); err != nil {
		log.Warn("expired session cleanup failed", "error", err)
	}

	authService := services.NewAuthService(repoSet.User, repoSet.UserToken, denylist, clock, services.AuthConfig{
		JWTSecret:  cfg.JWTSecretKey,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	}, log)
	userService := services.NewUserService(repoSet.User, log)
	medicationService := services.NewMedicationService(repoSet.Medication, log)
	scheduleService := services.NewScheduleService(repoSet.Medication, repoSet.Schedule, log)
	intakeService := services.NewIntakeService(repoSet.Schedule, repoSet.Intake, clock, log)
	reportService := services.NewReportService(
		repoSet.User,
		repoSet.Medication,
		repoSet.Schedule,
		repoSet.Intake,
		clock,
		cfg.IntakeTolerance,
		log,
	)

	router := server.NewRouter(server.RouterConfig{
		Log:         log,
		ServiceName: cfg.ServiceName,
		CORSOrigins: cfg.CORSOrigins,

		AuthMiddleware: middleware.NewAuthMiddleware(log, authService),

		AuthHandler:       handlers.NewAuthHandler(authService),
		UserHandler:       handlers.NewUserHandler(userService),
		MedicationHandler: handlers.NewMedicationHandler(medicationService),
		ScheduleHandler:   handlers.NewScheduleHandler(scheduleService),
		IntakeHandler:     handlers.NewIntakeHandler(intakeService),
		ReportHandler:     handlers.NewReportHandler(reportService),
	})

	return &App{
		Log:      log,
		Cfg:      cfg,
		DB:       pg,
		Router:   router,
		denylist: denylist,
	}, nil
}

func (a *App) Run() error {
	addr := ":" + a.Cfg.Port
	a.Log.Info("server listening", "addr", addr, "env", a.Cfg.Environment)
	return a.Router.Run(addr)
}

func (a *App) Close() {
	if a.denylist != nil {
		if err := a.denylist.Close(); err != nil {
			a.Log.Warn("denylist close failed", "error", err)
		}
	}
	a.Log.Sync()
}
