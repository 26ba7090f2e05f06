package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk-intel/internal/api/http"
	"github.com/spec-kit/helpdesk-intel/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-intel/internal/config"
	"github.com/spec-kit/helpdesk-intel/internal/events"
	"github.com/spec-kit/helpdesk-intel/internal/observability"
	"github.com/spec-kit/helpdesk-intel/internal/persistence"
	"github.com/spec-kit/helpdesk-intel/internal/repository"
	"github.com/spec-kit/helpdesk-intel/internal/service"
	"github.com/spec-kit/helpdesk-intel/internal/similarity"
	"github.com/spec-kit/helpdesk-intel/internal/worker"
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

	if err := observability.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Fatal("failed to register metrics", zap.Error(err))
	}

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

	tuning, err := config.LoadTuning(cfg.Similarity.TuningFile)
	if err != nil {
		logger.Fatal("failed to load similarity tuning", zap.Error(err))
	}
	tuning.Apply(&cfg.Similarity)

	var extraStopwords []string
	if tuning != nil {
		extraStopwords = tuning.ExtraStopwords
	}
	normalizer := similarity.NewNormalizer(extraStopwords)
	scorer := similarity.NewScorer(normalizer, similarity.Weights{
		Cosine:      cfg.Similarity.CosineWeight,
		Jaccard:     cfg.Similarity.JaccardWeight,
		Levenshtein: cfg.Similarity.LevenshteinWeight,
	})

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	technicianRepo := repository.NewTechnicianRepository(pool)
	assignmentRepo := repository.NewAssignmentRepository(pool)
	alertRepo := repository.NewAlertRepository(pool)
	metricRepo := repository.NewMetricRepository(pool)

	dispatcher := events.NewInMemoryDispatcher(logger)
	notifications := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	notifications.RegisterHandlers()

	duplicateService := service.NewDuplicateService(service.DuplicateDependencies{
		Search:             ticketRepo,
		TicketRepo:         ticketRepo,
		Scorer:             scorer,
		Dispatcher:         dispatcher,
		Logger:             logger,
		DuplicateThreshold: cfg.Similarity.DuplicateThreshold,
		ClusterThreshold:   cfg.Similarity.ClusterThreshold,
		CandidateLimit:     cfg.Similarity.CandidateLimit,
	})
	matcherService := service.NewMatcherService(technicianRepo)
	estimateService := service.NewEstimateService(ticketRepo, redis.Client, cfg.Jobs.EstimateCacheTTL, logger)
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		TicketRepo:     ticketRepo,
		TechnicianRepo: technicianRepo,
		AssignmentRepo: assignmentRepo,
		Matcher:        matcherService,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})

	runner := worker.NewRunner(logger, cfg.Jobs.QueryTimeout)
	runner.Register(worker.NewSlaMonitorJob(ticketRepo, alertRepo, dispatcher, logger), cfg.Jobs.SLAMonitorInterval)
	runner.Register(worker.NewMetricAggregatorJob(metricRepo, dispatcher, logger, cfg.Jobs.SnapshotRetention), cfg.Jobs.MetricAggregateInterval)
	runner.Start(ctx)
	defer runner.Stop()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:       handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Intelligence: handlers.NewIntelligenceHandler(duplicateService, matcherService, estimateService, assignmentService),
		Jobs:         handlers.NewJobsHandler(runner),
	})

	go func() {
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
