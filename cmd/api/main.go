package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/neurobyte-x/AI-Maintainance-Reporter/internal/api/http"
	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/api/http/handlers"
	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/auth"
	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/config"
	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/events"
	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/observability"
	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/persistence"
	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/pipeline"
	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/repository"
	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/service"
	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/storage"
	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/vision"
	"github.com/neurobyte-x/AI-Maintainance-Reporter/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	store := storage.NewLocalStore(cfg.Storage.UploadDir)
	if err := store.EnsureDir(); err != nil {
		logger.Fatal("failed to create upload directory", zap.Error(err))
	}
	if err := os.MkdirAll(cfg.Storage.StaticDir, 0o755); err != nil {
		logger.Fatal("failed to create static directory", zap.Error(err))
	}

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	userSource := repository.NewCachedUserSource(userRepo, redis.Client)

	inspector := vision.NewGeminiInspector(
		cfg.Classifier.APIKey,
		cfg.Classifier.Model,
		cfg.Classifier.BaseURL,
		&http.Client{Timeout: cfg.Classifier.Timeout()},
	)
	workflow := pipeline.NewWorkflow(inspector)

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authService := service.NewAuthService(*cfg, userRepo)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		Store:      store,
		Workflow:   workflow,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userSource)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Env, pg),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		AuthMiddleware: authMiddleware,
		UploadDir:      cfg.Storage.UploadDir,
		StaticDir:      cfg.Storage.StaticDir,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
