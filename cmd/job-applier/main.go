// cmd/job-applier/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsclient "job-applier/internal/common/aws"
	"job-applier/internal/common/camunda"
	"job-applier/internal/common/config"
	"job-applier/internal/common/database"
	"job-applier/internal/common/logger"
	"job-applier/internal/common/observability"

	"job-applier/internal/catalog"
	"job-applier/internal/customizer"
	"job-applier/internal/dedup"
	"job-applier/internal/ingest"
	"job-applier/internal/lifecycle"
	"job-applier/internal/notify"
	"job-applier/internal/recommend"
	"job-applier/internal/search"
	"job-applier/internal/store"

	car "job-applier/internal/workers/application/create-application-record"
	rae "job-applier/internal/workers/application/record-application-event"
	ta "job-applier/internal/workers/application/transition-application"
	pc "job-applier/internal/workers/customization/prepare-customization"
	rt "job-applier/internal/workers/customization/recommend-template"
	ijp "job-applier/internal/workers/ingestion/ingest-job-posting"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog, err := logger.Build(logger.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Output:  cfg.Logging.Output,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
	})
	if err != nil {
		bootLog.Fatal("logger init failed", zap.Error(err))
	}
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	log.Info("starting job-applier", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	obs := observability.New(cfg.App.Name, log)
	ctx := context.Background()

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, log, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	log.Info("Zeebe client connected successfully", nil)

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, log, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	log.Info("PostgreSQL connected successfully", nil)

	st := store.New(pg.GetDB(), log)
	if err := st.Migrate(ctx); err != nil {
		zapLog.Fatal("schema migration failed", zap.Error(err))
	}

	// --- Redis ---
	redis := database.NewRedis(cfg.Database.Redis)
	err = retryWithBackoff(func() error {
		return redis.Ping(ctx)
	}, 10, 2*time.Second, log, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	log.Info("Redis connected successfully", nil)

	// --- Elasticsearch (optional) ---
	var (
		indexer  ingest.Indexer
		searcher jobSearcher
		es       *database.ElasticsearchClient
	)
	if cfg.Database.Elasticsearch.Enabled() {
		err = retryWithBackoff(func() error {
			var err error
			es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return es.Ping(ctx)
		}, 5, 2*time.Second, log, "Elasticsearch connection")
		if err != nil {
			log.Warn("elasticsearch unavailable, job indexing disabled", map[string]interface{}{"error": err.Error()})
			es = nil
		} else {
			ix := search.NewIndexer(es.Client, cfg.Database.Elasticsearch.Index, log)
			if err := ix.EnsureIndex(ctx); err != nil {
				log.Warn("search index bootstrap failed, job indexing disabled", map[string]interface{}{"error": err.Error()})
				es = nil
			} else {
				indexer, searcher = ix, ix
				log.Info("Elasticsearch connected successfully", nil)
			}
		}
	}

	// --- Template catalog ---
	templates := catalog.DefaultTemplates()
	if cfg.Templates.CatalogPath != "" {
		templates, err = catalog.LoadFile(afero.NewOsFs(), cfg.Templates.CatalogPath)
		if err != nil {
			zapLog.Fatal("catalog file load failed", zap.Error(err))
		}
	}
	templateFs := afero.NewReadOnlyFs(afero.NewBasePathFs(afero.NewOsFs(), cfg.Templates.InputDir))
	cat, err := catalog.New(templateFs, templates, log)
	if err != nil {
		zapLog.Fatal("catalog invalid", zap.Error(err))
	}
	for _, t := range cat.List() {
		if !cat.Validate(t.Key) {
			log.Warn("template content missing", map[string]interface{}{"template": t.Key, "inputDir": cfg.Templates.InputDir})
		}
	}

	// --- Notifications ---
	var notifier lifecycle.Notifier
	if cfg.Notifications.Email.Enabled || cfg.Notifications.SNS.Enabled {
		awsCfg, err := awsclient.LoadConfig(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("aws config load failed", zap.Error(err))
		}
		n := notify.NewInterventionNotifier(log)
		if cfg.Notifications.Email.Enabled {
			n.WithEmail(awsclient.NewSESClient(awsCfg), notify.EmailSettings{
				From: cfg.Notifications.Email.FromEmail,
				To:   cfg.Notifications.Email.ToEmail,
			})
		}
		if cfg.Notifications.SNS.Enabled {
			n.WithTopic(awsclient.NewSNSClient(awsCfg), cfg.Notifications.SNS.TopicARN)
		}
		notifier = n
		log.Info("intervention notifications enabled", map[string]interface{}{"channels": n.Channels()})
	}

	// --- Services ---
	seen := dedup.NewSeenCache(redis.Client, time.Duration(cfg.Database.Redis.SeenTTL)*time.Hour)
	ingestSvc := ingest.NewService(st, seen, indexer, log)
	lifecycleSvc := lifecycle.NewService(st, notifier, log)
	engine := recommend.NewEngine(cat, log)
	staging := customizer.NewStagingStore(redis.Client, time.Duration(cfg.Database.Redis.StageTTL)*time.Hour)
	cust := customizer.New(cat, afero.NewOsFs(), cfg.Templates.OutputDir, staging, log)

	// --- Workers ---
	wc := func(taskType string) config.WorkerConfig { return config.GetWorkerConfig(cfg, taskType) }
	handlers := []struct {
		taskType string
		handler  camunda.JobHandler
	}{
		{ijp.TaskType, ijp.NewHandler(ijp.LoadConfig(wc(ijp.TaskType)), ingestSvc, log)},
		{car.TaskType, car.NewHandler(car.LoadConfig(wc(car.TaskType)), lifecycleSvc, log)},
		{ta.TaskType, ta.NewHandler(ta.LoadConfig(wc(ta.TaskType)), lifecycleSvc, log)},
		{rae.TaskType, rae.NewHandler(rae.LoadConfig(wc(rae.TaskType)), lifecycleSvc, log)},
		{rt.TaskType, rt.NewHandler(rt.LoadConfig(wc(rt.TaskType), cfg.Templates.TopN), engine, st, log)},
		{pc.TaskType, pc.NewHandler(pc.LoadConfig(wc(pc.TaskType)), cust, log)},
	}

	var workers []*camunda.Worker
	for _, h := range handlers {
		if w := camunda.StartWorker(zeebe.Raw(), h.taskType, wc(h.taskType), h.handler, obs, log); w != nil {
			workers = append(workers, w)
		}
	}
	log.Info("workers registered", map[string]interface{}{"count": len(workers)})

	// --- Health / metrics / admin ---
	srv := &server{
		stats:     st,
		jobs:      ingestSvc,
		history:   lifecycleSvc,
		catalog:   cat,
		search:    searcher,
		staleDays: cfg.Lifecycle.StaleAfterDays,
		logger:    logger.Component(log, "http"),
		checks: []readinessCheck{
			{"postgres", st.HealthCheck},
			{"redis", redis.Ping},
			{"zeebe", zeebe.HealthCheck},
		},
	}
	if es != nil {
		srv.checks = append(srv.checks, readinessCheck{"elasticsearch", es.Ping})
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("health and metrics server listening", map[string]interface{}{"address": cfg.Server.Address})
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("health/metrics server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	// --- Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, stopping workers...", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("http server shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	if err := zeebe.Close(); err != nil {
		log.Warn("zeebe close failed", map[string]interface{}{"error": err.Error()})
	}
	if err := redis.Close(); err != nil {
		log.Warn("redis close failed", map[string]interface{}{"error": err.Error()})
	}
	if err := pg.Close(); err != nil {
		log.Warn("postgres close failed", map[string]interface{}{"error": err.Error()})
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		log.Warn("observability shutdown failed", map[string]interface{}{"error": err.Error()})
	}

	log.Info("shutdown complete", nil)
}
