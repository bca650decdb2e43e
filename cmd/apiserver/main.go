// Command apiserver runs the OncoPurpose HTTP API: corpus search, drug
// scoring, live-evidence fusion, and the analysis artifact store.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/trovesx/OncoPurpose/internal/application/query"
	"github.com/trovesx/OncoPurpose/internal/auth"
	"github.com/trovesx/OncoPurpose/internal/config"
	"github.com/trovesx/OncoPurpose/internal/corpus"
	"github.com/trovesx/OncoPurpose/internal/external"
	"github.com/trovesx/OncoPurpose/internal/infrastructure/database/postgres"
	"github.com/trovesx/OncoPurpose/internal/infrastructure/database/redis"
	"github.com/trovesx/OncoPurpose/internal/infrastructure/messaging/kafka"
	"github.com/trovesx/OncoPurpose/internal/infrastructure/monitoring/logging"
	prommetrics "github.com/trovesx/OncoPurpose/internal/infrastructure/monitoring/prometheus"
	httpiface "github.com/trovesx/OncoPurpose/internal/interfaces/http"
	"github.com/trovesx/OncoPurpose/internal/interfaces/http/handlers"
	"github.com/trovesx/OncoPurpose/internal/interfaces/http/middleware"
	"github.com/trovesx/OncoPurpose/internal/ratelimit"
	"github.com/trovesx/OncoPurpose/internal/scoring"
	"github.com/trovesx/OncoPurpose/internal/search"
	"github.com/trovesx/OncoPurpose/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	log, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	logging.SetDefault(log)

	if *configPath != "" {
		err := config.Watch(*configPath,
			func(updated *config.Config) {
				log.Info("configuration file changed; restart to apply",
					logging.String("path", *configPath),
					logging.String("environment", updated.Environment))
			},
			func(err error) {
				log.Warn("configuration reload failed", logging.Err(err))
			})
		if err != nil {
			log.Warn("configuration watch unavailable", logging.Err(err))
		}
	}

	metrics := prommetrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Corpus is mandatory; everything else degrades gracefully.
	loaded, err := corpus.NewLoader(cfg.Corpus.Dir, log).Load()
	if err != nil {
		return err
	}
	idx := corpus.BuildIndex(loaded)
	stats := idx.Stats()
	metrics.CorpusDrugsLoaded.Set(float64(stats.TotalDrugs))
	metrics.CorpusHeroCases.Set(float64(stats.HeroCases))
	log.Info("corpus loaded",
		logging.Int("drugs", stats.TotalDrugs),
		logging.Int("hero_cases", stats.HeroCases),
		logging.Int("oncology", stats.Oncology))

	redisClient, err := redis.Connect(ctx, cfg.Cache, log)
	if err != nil {
		log.Warn("cache unavailable, continuing without it", logging.Err(err))
	}
	cache := redis.NewCache(redisClient)
	defer func() { _ = redisClient.Close() }()

	var primary store.Repository
	if cfg.Database.URL != "" {
		if err := postgres.Migrate(cfg.Database.URL, cfg.Database.MigrationsPath, log); err != nil {
			return err
		}
		pool, err := postgres.Connect(ctx, cfg.Database, log)
		if err != nil {
			return err
		}
		defer pool.Close()
		primary = store.NewPostgresRepository(pool)
	}

	producer := kafka.NewProducer(cfg.Kafka, log)
	defer func() { _ = producer.Close() }()

	artifacts := store.New(primary, producer, log, metrics)

	scorer := scoring.New()
	engine := search.New(idx, scorer, log)

	orchestrator := query.New(query.Config{
		Engine:  engine,
		Scorer:  scorer,
		Cache:   cache,
		Store:   artifacts,
		Papers:  external.NewPubMed(cfg.External.PubMed, cfg.External.Timeout, log, metrics),
		Trials:  external.NewClinicalTrials(cfg.External.ClinicalTrials, cfg.External.Timeout, log, metrics),
		Drugs:   external.NewDrugBank(cfg.External.DrugBank, cfg.External.Timeout, log, metrics),
		Cfg:     *cfg,
		Log:     log,
		Metrics: metrics,
	})

	limiter := ratelimit.New(redisClient, cfg.RateLimit, log, metrics)

	checks := map[string]handlers.CheckFunc{
		"cache": cache.Ping,
	}

	router := httpiface.NewRouter(httpiface.RouterConfig{
		SearchHandler:   handlers.NewSearch(orchestrator),
		DrugHandler:     handlers.NewDrug(idx, scorer, cache, cfg.Cache.DrugTTL, log),
		StatsHandler:    handlers.NewStats(idx),
		AuthHandler:     handlers.NewAuth(auth.NewManager(cache, cfg.Auth, log)),
		ArtifactHandler: handlers.NewArtifact(artifacts),
		HealthHandler:   handlers.NewHealth(idx, checks),

		IdentityMiddleware:  middleware.NewIdentity(),
		CORSMiddleware:      middleware.NewCORS(cfg.Server.CORSOrigins),
		LoggingMiddleware:   middleware.NewLogging(log, metrics),
		RateLimitMiddleware: middleware.NewRateLimit(limiter),

		MetricsHandler: metrics.Handler(),
	})

	server := httpiface.NewServer(cfg.Server, router, log)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutdown signal received")
	return server.Stop(context.Background())
}
