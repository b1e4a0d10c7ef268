package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"inkwell/config"
	"inkwell/content"
	"inkwell/database"
	"inkwell/handlers"
	"inkwell/middleware"
	"inkwell/services"
	"inkwell/tasks"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		logrus.Fatal("Failed to load configuration: ", err)
	}
	if err := config.SetupLogging(cfg.Log); err != nil {
		logrus.Fatal("Failed to configure logging: ", err)
	}

	// Initialize database
	dbLogLevel := logger.Warn
	if cfg.Log.Level == "debug" {
		dbLogLevel = logger.Info
	}
	db, err := database.NewDatabase(cfg.Database, database.Options{LogLevel: dbLogLevel})
	if err != nil {
		logrus.Fatal("Failed to initialize database: ", err)
	}
	defer db.Close()

	// Initialize services
	notificationService := services.NewNotificationService(db)
	svc := handlers.Services{
		Auth:          services.NewAuthService(db),
		Articles:      services.NewArticleService(db, notificationService),
		Social:        services.NewSocialService(db),
		Notifications: notificationService,
	}

	renderer, err := handlers.NewRenderer()
	if err != nil {
		logrus.Fatal("Failed to load templates: ", err)
	}
	authMiddleware := middleware.NewAuthMiddleware(svc.Auth, notificationService, cfg.Session)
	router := handlers.NewRouter(svc, authMiddleware, renderer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Setup background jobs
	queue := tasks.NewQueue(ctx, cfg.Redis, cfg.Publisher.ResultTTL)
	defer queue.Close()
	workerDone := setupBackgroundJobs(ctx, cfg, svc, queue)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logrus.WithField("port", cfg.Port).Info("Inkwell server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Error("HTTP server failed")
			stop()
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Graceful shutdown failed")
	}
	<-workerDone
}

// setupBackgroundJobs starts the task worker and, when enabled, the publish
// schedule. The returned channel closes once both have stopped.
func setupBackgroundJobs(ctx context.Context, cfg *config.Config, svc handlers.Services, queue tasks.Queue) <-chan struct{} {
	generator := content.New(cfg.Generator.FeedURL)
	publisher := tasks.NewPublisher(svc.Auth, svc.Articles, generator, cfg.Admin)

	worker := tasks.NewWorker(queue)
	worker.Register(tasks.TaskGenerateAndPublish, publisher.Handle)

	var scheduler *tasks.Scheduler
	if cfg.Publisher.Enabled {
		s, err := tasks.NewScheduler(queue, cfg.Publisher.Interval, cfg.Publisher.Topic)
		if err != nil {
			logrus.Fatal("Failed to schedule publisher: ", err)
		}
		scheduler = s
		scheduler.Start()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		worker.Run(ctx)
		if scheduler != nil {
			scheduler.Stop()
		}
	}()
	return done
}
