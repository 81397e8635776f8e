package app

import (
	"fmt"
	"log/slog"
	"net/http"

	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/dota-coach/external/opendota"
	"github.com/riskibarqy/dota-coach/internal/config"
	"github.com/riskibarqy/dota-coach/internal/domain/digest"
	"github.com/riskibarqy/dota-coach/internal/domain/statistics"
	"github.com/riskibarqy/dota-coach/internal/infrastructure/account/gatekeeper"
	"github.com/riskibarqy/dota-coach/internal/infrastructure/jobqueue"
	"github.com/riskibarqy/dota-coach/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/dota-coach/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/dota-coach/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/dota-coach/internal/platform/cache"
	idgen "github.com/riskibarqy/dota-coach/internal/platform/id"
	"github.com/riskibarqy/dota-coach/internal/platform/logging"
	"github.com/riskibarqy/dota-coach/internal/platform/resilience"
	"github.com/riskibarqy/dota-coach/internal/usecase"
)

// NewHTTPServer wires the whole service together. The returned cleanup
// closes the database pool and must run after server shutdown.
func NewHTTPServer(cfg config.Config, logger *slog.Logger, appLogger *logging.Logger) (*http.Server, func() error, error) {
	if appLogger == nil {
		appLogger = logging.Default()
	}

	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Connect("postgres", dsn,
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	var digestRepo digest.Repository = postgres.NewDigestRepository(db)
	var statsRepo statistics.Repository = postgres.NewStatisticsRepository(db)
	rawRepo := postgres.NewRawMatchRepository(db)
	metricsRepo := postgres.NewMetricsRepository(db)
	runRepo := postgres.NewPipelineRepository(db)
	taskRepo := postgres.NewTaskRepository(db)

	if cfg.CacheEnabled {
		store := basecache.NewStore(cfg.CacheTTL)
		digestRepo = cache.NewDigestRepository(digestRepo, store)
		statsRepo = cache.NewStatisticsRepository(statsRepo, store)
	}

	provider := opendota.NewClient(opendota.ClientConfig{
		BaseURL:    cfg.OpenDotaBaseURL,
		APIKey:     cfg.OpenDotaAPIKey,
		Timeout:    cfg.OpenDotaTimeout,
		MaxRetries: cfg.OpenDotaMaxRetries,
		Logger:     appLogger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.OpenDotaCircuitEnabled,
			FailureThreshold: cfg.OpenDotaCircuitFailureCount,
			OpenTimeout:      cfg.OpenDotaCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.OpenDotaCircuitHalfOpenMaxReq,
		},
	})

	builder := usecase.NewDigestBuilder(appLogger)
	metricsSvc := usecase.NewMetricsService(digestRepo, metricsRepo)
	statsSvc := usecase.NewStatisticsService(digestRepo, metricsRepo, statsRepo, taskRepo, appLogger)
	pipelineSvc := usecase.NewPipelineService(provider, rawRepo, digestRepo, runRepo, builder, metricsSvc, statsSvc, appLogger)
	taskSvc := usecase.NewTaskService(taskRepo, statsRepo, idgen.NewRandomGenerator(), appLogger)
	matchSvc := usecase.NewMatchService(digestRepo, metricsRepo)
	dashboardSvc := usecase.NewDashboardService(statsRepo, taskRepo)
	recomputeSvc := usecase.NewRecomputeService(pipelineSvc, statsSvc, appLogger)

	queue := usecase.NewNoopJobQueue()
	if cfg.JobqueueEnabled {
		queue = jobqueue.NewPublisher(jobqueue.PublisherConfig{
			BaseURL:          cfg.JobqueueBaseURL,
			Token:            cfg.JobqueueToken,
			TargetBaseURL:    cfg.JobqueueTargetBaseURL,
			Retries:          cfg.JobqueueRetries,
			InternalJobToken: cfg.InternalJobToken,
			Timeout:          cfg.JobqueueTimeout,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.JobqueueCircuitEnabled,
				FailureThreshold: cfg.JobqueueCircuitFailureCount,
				OpenTimeout:      cfg.JobqueueCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.JobqueueCircuitHalfOpenMaxReq,
			},
		}, logger)
	}
	jobDispatch := usecase.NewJobDispatchService(queue, appLogger)

	gatekeeperClient := gatekeeper.NewClient(
		&http.Client{Timeout: cfg.GatekeeperTimeout},
		cfg.GatekeeperBaseURL,
		cfg.GatekeeperIntrospectPath,
		cfg.GatekeeperCacheTTL,
		logger,
	)

	handler := httpapi.NewHandler(
		matchSvc,
		pipelineSvc,
		statsSvc,
		taskSvc,
		dashboardSvc,
		recomputeSvc,
		jobDispatch,
		appLogger,
	)
	router := httpapi.NewRouter(
		handler,
		gatekeeperClient,
		logger,
		cfg.SwaggerEnabled,
		cfg.CORSAllowedOrigins,
		cfg.InternalJobToken,
	)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		_ = db.Close()
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, db.Close, nil
}
