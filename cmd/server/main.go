package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/tracker/api/handler"
	"github.com/fastygo/tracker/internal/config"
	"github.com/fastygo/tracker/internal/infrastructure/buffer"
	"github.com/fastygo/tracker/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/tracker/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/tracker/internal/infrastructure/redis"
	"github.com/fastygo/tracker/internal/middleware"
	"github.com/fastygo/tracker/internal/router"
	"github.com/fastygo/tracker/internal/services"
	"github.com/fastygo/tracker/internal/services/lifecycle"
	"github.com/fastygo/tracker/pkg/httpcontext"
	"github.com/fastygo/tracker/pkg/logger"
	"github.com/fastygo/tracker/repository/postgres"
	redisRepo "github.com/fastygo/tracker/repository/redis"
	"github.com/fastygo/tracker/usecase"
	authUC "github.com/fastygo/tracker/usecase/auth"
	dashboardUC "github.com/fastygo/tracker/usecase/dashboard"
	notificationUC "github.com/fastygo/tracker/usecase/notification"
	profileUC "github.com/fastygo/tracker/usecase/profile"
	projectUC "github.com/fastygo/tracker/usecase/project"
	taskUC "github.com/fastygo/tracker/usecase/task"
	ticketUC "github.com/fastygo/tracker/usecase/ticket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:       cfg.Logger.Level,
		Encoding:    cfg.Logger.Encoding,
		Service:     cfg.AppName,
		Environment: cfg.Environment,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	if cfg.JWT.Secret == "" {
		zapLogger.Fatal("JWT_SECRET is required")
	}

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pgInfra.Close(pool, zapLogger)
		return nil
	})

	redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis, zapLogger)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.RegisterCloser("redis", redisClient)

	bufferStore, err := buffer.Open(cfg.Buffer.Path, buffer.Options{MaxSize: cfg.Buffer.MaxSize})
	if err != nil {
		zapLogger.Fatal("failed to open buffer store", zap.Error(err))
	}
	manager.RegisterCloser("buffer", bufferStore)

	mon := monitor.New(monitor.Probes{
		Postgres: pool.Ping,
		Redis:    redisInfra.Ping(redisClient),
	}, bufferStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	userRepo := postgres.NewUserRepository(pool)
	projectRepo := postgres.NewProjectRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	ticketRepo := postgres.NewTicketRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.Session.KeyPrefix, cfg.Session.TTL)
	viewCache := redisRepo.NewViewCache(redisClient)

	bufferProcessor := services.NewBufferProcessor(
		bufferStore,
		mon,
		services.Repositories{
			Users:    userRepo,
			Projects: projectRepo,
			Tasks:    taskRepo,
		},
		zapLogger,
		services.ProcessorConfig{
			Interval:   cfg.Buffer.SyncInterval,
			BatchSize:  cfg.Buffer.BatchSize,
			MaxRetries: cfg.Buffer.MaxRetry,
			Retention:  time.Duration(cfg.Buffer.RetentionHours) * time.Hour,
		},
	)
	bufferProcessor.Start()
	manager.Register("buffer_processor", func(ctx context.Context) error {
		bufferProcessor.Stop(ctx)
		return nil
	})

	if cfg.Reminders.Enabled {
		reminders, err := services.NewReminderService(taskRepo, notificationRepo, zapLogger, services.ReminderConfig{
			Schedule:   cfg.Reminders.Schedule,
			WindowDays: cfg.View.Defaults.WindowDays,
		})
		if err != nil {
			zapLogger.Fatal("invalid reminder schedule", zap.String("schedule", cfg.Reminders.Schedule), zap.Error(err))
		}
		reminders.Start()
		manager.Register("reminders", func(ctx context.Context) error {
			reminders.Stop(ctx)
			return nil
		})
	}

	bufferBridge := services.NewBufferBridge(bufferProcessor)

	authUseCase := authUC.New(userRepo, sessionRepo, authUC.Config{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
		TTL:    cfg.Session.TTL,
		MaxTTL: cfg.Session.MaxTTL,
	}, zapLogger)
	profileUseCase := profileUC.New(userRepo, bufferBridge, zapLogger)
	projectUseCase := projectUC.New(projectRepo, viewCache, bufferBridge, zapLogger)
	taskUseCase := taskUC.New(taskRepo, projectRepo, viewCache, bufferBridge, cfg.View.Defaults, zapLogger)
	ticketUseCase := ticketUC.New(ticketRepo, taskRepo, notificationRepo, viewCache, zapLogger)
	notificationUseCase := notificationUC.New(notificationRepo, zapLogger)

	dispatcher := usecase.NewDispatcher()
	dashboardUC.New(taskRepo, projectRepo, viewCache, dashboardUC.Config{
		Defaults: cfg.View.Defaults,
		CacheTTL: cfg.View.CacheTTL,
	}, zapLogger).Register(dispatcher)
	zapLogger.Debug("dispatcher ready", zap.Strings("queries", dispatcher.Queries()))

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:         apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger, cfg.Session.TTL),
		Profile:      apiHandler.NewProfileHandler(profileUseCase, ctxAdapter, zapLogger),
		Project:      apiHandler.NewProjectHandler(projectUseCase, ctxAdapter, zapLogger),
		Task:         apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Ticket:       apiHandler.NewTicketHandler(ticketUseCase, ctxAdapter, zapLogger),
		Notification: apiHandler.NewNotificationHandler(notificationUseCase, ctxAdapter, zapLogger),
		Dashboard:    apiHandler.NewDashboardHandler(dispatcher, ctxAdapter, zapLogger),
		Health:       apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(authUseCase, cfg.Context.RequestTimeout, zapLogger)
	r := router.New(handlers, authMiddleware, router.Options{EnablePprof: cfg.HTTP.EnablePprof})

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
