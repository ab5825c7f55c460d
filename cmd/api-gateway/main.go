package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/school-roster-api/internal/handler"
	"github.com/noah-isme/school-roster-api/internal/repository"
	"github.com/noah-isme/school-roster-api/internal/service"
	"github.com/noah-isme/school-roster-api/pkg/cache"
	"github.com/noah-isme/school-roster-api/pkg/config"
	"github.com/noah-isme/school-roster-api/pkg/database"
	"github.com/noah-isme/school-roster-api/pkg/jobs"
	"github.com/noah-isme/school-roster-api/pkg/logger"
	"github.com/noah-isme/school-roster-api/pkg/mail"
)

// @title School Roster API
// @version 1.0.0
// @description Classes, class teachers, teacher workload and timetables for multi-school tenants.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()

	var (
		cacheRepo   service.CacheRepository
		redisClient *redis.Client
	)
	if cfg.Workload.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, workload cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close() //nolint:errcheck
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Workload.CacheTTL, logr, cfg.Workload.CacheEnabled)

	notifier, queue := buildNotifications(cfg.Notifications, metrics, logr)
	if queue != nil {
		// stopped after srv.Shutdown, not on signal
		queue.Start(context.Background())
	}

	app := buildApp(db, cacheSvc, notifier, metrics, cfg, logr)
	checks := map[string]handler.Pinger{"database": db}
	if redisClient != nil {
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
	router := newRouter(cfg, app, handler.NewMetricsHandler(metrics, checks), service.NewTokenVerifier(cfg.JWT.Secret, cfg.JWT.Issuer), metrics, logr)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "prefix", cfg.APIPrefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	if queue != nil {
		queue.Stop()
	}
}

type application struct {
	classes   *handler.ClassHandler
	teachers  *handler.ClassTeacherHandler
	workload  *handler.WorkloadHandler
	timetable *handler.TimetableHandler
}

func buildApp(db *sqlx.DB, cacheSvc *service.CacheService, notifier *service.NotificationService, metrics *service.MetricsService, cfg *config.Config, logr *zap.Logger) *application {
	validate := validator.New()

	schoolRepo := repository.NewSchoolRepository(db)
	levelRepo := repository.NewClassLevelRepository(db)
	armRepo := repository.NewClassArmRepository(db)
	classRepo := repository.NewClassRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	classTeacherRepo := repository.NewClassTeacherRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)

	resolver := service.NewClassResolver(schoolRepo, armRepo, classRepo, logr)
	workloadSvc := service.NewWorkloadService(resolver, teacherRepo, cacheSvc, cfg.Workload.CacheTTL, logr)
	classSvc := service.NewClassService(resolver, levelRepo, armRepo, classRepo, classTeacherRepo, enrollmentRepo, workloadSvc, db, validate, logr)

	var assignmentNotifier service.AssignmentNotifier
	if notifier != nil {
		assignmentNotifier = notifier
	}
	classTeacherSvc := service.NewClassTeacherService(resolver, teacherRepo, classTeacherRepo, enrollmentRepo, db, assignmentNotifier, metrics, validate, logr)
	timetableSvc := service.NewTimetableService(
		resolver,
		timetableRepo,
		service.NewTimetableGenerator(cfg.Timetable.DefaultFreePeriods),
		workloadSvc,
		db,
		metrics,
		validate,
		logr,
	)

	return &application{
		classes:   handler.NewClassHandler(classSvc),
		teachers:  handler.NewClassTeacherHandler(classTeacherSvc),
		workload:  handler.NewWorkloadHandler(workloadSvc),
		timetable: handler.NewTimetableHandler(timetableSvc),
	}
}

func buildNotifications(cfg config.NotificationConfig, metrics *service.MetricsService, logr *zap.Logger) (*service.NotificationService, *jobs.Queue) {
	if !cfg.Enabled {
		return nil, nil
	}
	var sender mail.Sender
	switch cfg.Provider {
	case config.MailProviderSendGrid:
		sender = mail.NewSendGridSender(cfg.SendGridAPIKey, cfg.FromName, cfg.FromAddress)
	default:
		sender = mail.NewLogSender(logr)
	}

	notifier := service.NewNotificationService(sender, metrics, logr)
	queue := jobs.NewQueue("notifications", notifier.Handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		DeadLetter: notifier.DeadLetter,
		Logger:     logr,
	})
	notifier.AttachQueue(queue)
	return notifier, queue
}
