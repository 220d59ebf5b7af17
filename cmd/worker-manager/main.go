// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"loan-intake-workers/internal/classification"
	awsclient "loan-intake-workers/internal/common/aws"
	"loan-intake-workers/internal/common/camunda"
	"loan-intake-workers/internal/common/config"
	"loan-intake-workers/internal/common/database"
	httpclient "loan-intake-workers/internal/common/http"
	"loan-intake-workers/internal/common/logger"
	"loan-intake-workers/internal/common/observability"
	"loan-intake-workers/internal/common/validation"
	"loan-intake-workers/internal/extraction"
	"loan-intake-workers/internal/financial"
	"loan-intake-workers/internal/store"
	"loan-intake-workers/pkg/registry"

	cdc "loan-intake-workers/internal/workers/loan/check-document-completeness"
	cld "loan-intake-workers/internal/workers/loan/classify-document"
	ecp "loan-intake-workers/internal/workers/loan/evaluate-compliance"
	edf "loan-intake-workers/internal/workers/loan/extract-document-fields"
	sce "loan-intake-workers/internal/workers/loan/score-eligibility"
	sdn "loan-intake-workers/internal/workers/loan/send-decision-notification"
)

// connectWithRetry runs connect with exponential backoff, logging each failed attempt.
func connectWithRetry(ctx context.Context, name string, attempts uint, connect func() error, log logger.Logger) error {
	err := retry.Do(
		connect,
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(2*time.Second),
		retry.MaxDelay(30*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn(fmt.Sprintf("%s failed, retrying...", name), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     n + 1,
				"maxAttempts": attempts,
			})
		}),
	)
	if err != nil {
		return fmt.Errorf("%s failed after %d attempts: %w", name, attempts, err)
	}
	return nil
}

func workerTimeout(cfg *config.Config, taskType string, fallback time.Duration) time.Duration {
	if ms := config.GetWorkerConfig(cfg, taskType).Timeout; ms > 0 {
		return config.GetDuration(ms)
	}
	return fallback
}

func serviceClient(timeoutMs, retries int, rps float64, burst int, apiKey string) *httpclient.Client {
	opts := []httpclient.Option{httpclient.WithRetries(retries, 500*time.Millisecond)}
	if rps > 0 {
		opts = append(opts, httpclient.WithRateLimit(rps, burst))
	}
	if apiKey != "" {
		opts = append(opts, httpclient.WithHeader("X-API-Key", apiKey))
	}
	return httpclient.NewClient(config.GetDuration(timeoutMs), opts...)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("info", "console")
		boot.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	})

	log.Info("Starting worker manager...", map[string]interface{}{"environment": cfg.App.Environment})

	obs, err := observability.New("worker-manager")
	if err != nil {
		log.Warn("otel metrics disabled", map[string]interface{}{"error": err.Error()})
	}

	ctx := context.Background()

	// --- Zeebe ---
	zeebe, err := camunda.NewClientWithConfig(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: cfg.Camunda.Plaintext,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
		RetryConfig: &camunda.RetryConfig{
			MaxRetries: 10,
			BaseDelay:  2 * time.Second,
			MaxDelay:   30 * time.Second,
		},
	})
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	log.Info("Zeebe client connected successfully", nil)

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = connectWithRetry(ctx, "PostgreSQL connection", 15, func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, log)
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()

	if err := pg.Migrate(ctx, store.Schema...); err != nil {
		zapLog.Fatal("postgres migration failed", zap.Error(err))
	}
	log.Info("PostgreSQL connected successfully", nil)

	// --- Elasticsearch ---
	var esClient *database.ElasticsearchClient
	err = connectWithRetry(ctx, "Elasticsearch connection", 15, func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping(ctx)
	}, log)
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}

	extractionIndex := cfg.Database.Elasticsearch.ExtractionIndex
	if err := esClient.EnsureIndex(ctx, extractionIndex, store.ExtractionIndexMapping); err != nil {
		zapLog.Fatal("extraction index setup failed", zap.Error(err))
	}
	log.Info("Elasticsearch connected successfully", map[string]interface{}{"index": extractionIndex})

	// --- Redis ---
	var redis *database.RedisClient
	err = connectWithRetry(ctx, "Redis connection", 10, func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, log)
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	log.Info("Redis connected successfully", nil)

	// --- Outbound services ---
	pipeline := extraction.NewPipeline(
		extraction.NewHTTPBackend(cfg.Extraction.BaseURL, serviceClient(
			cfg.Extraction.Timeout,
			cfg.Extraction.MaxRetries,
			cfg.Extraction.RequestsPerSec,
			cfg.Extraction.Burst,
			cfg.Extraction.APIKey,
		)),
		extraction.WithMaxParallel(cfg.Extraction.MaxParallel),
	)

	classifier := classification.NewClient(
		classification.Config{BaseURL: cfg.Classifier.BaseURL, Model: cfg.Classifier.Model},
		serviceClient(cfg.Classifier.Timeout, cfg.Classifier.MaxRetries, 0, 0, cfg.Classifier.APIKey),
	)

	services := financial.NewHTTPServices(cfg.FinancialData.BaseURL, serviceClient(
		cfg.FinancialData.Timeout,
		cfg.FinancialData.MaxRetries,
		cfg.FinancialData.RequestsPerSec,
		cfg.FinancialData.Burst,
		cfg.FinancialData.APIKey,
	))
	if cfg.FinancialData.CacheTTL > 0 {
		services = financial.WithCache(services, redis.Client, time.Duration(cfg.FinancialData.CacheTTL)*time.Second)
	}

	records := store.NewPostgresStore(pg.DB)
	search := store.NewSearchIndex(esClient.Client, extractionIndex)

	reg, err := registry.Default()
	if err != nil {
		zapLog.Fatal("activity registry failed to load", zap.Error(err))
	}
	validator, err := validation.NewRegistryValidator(reg)
	if err != nil {
		zapLog.Fatal("input schemas failed to compile", zap.Error(err))
	}

	awsCfg, err := awsclient.LoadConfig(ctx, cfg.Notifications.AWS.Region)
	if err != nil {
		zapLog.Fatal("aws config failed", zap.Error(err))
	}
	emailSender := awsclient.NewSESSender(awsCfg, cfg.Notifications.Email.FromEmail)
	smsSender := awsclient.NewSNSSender(awsCfg, cfg.Notifications.SMS.SenderID)

	log.Info("All external service clients initialized", nil)

	// --- Register loan intake workers ---
	var workers []worker.JobWorker
	start := func(taskType string, handler camunda.HandlerFunc) {
		if !config.IsWorkerEnabled(cfg, taskType) {
			log.Info("worker disabled", map[string]interface{}{"taskType": taskType})
			return
		}
		workers = append(workers, camunda.StartWorker(
			zeebe.GetClient(), taskType, config.GetWorkerConfig(cfg, taskType), handler, obs, log,
		))
	}

	{
		handler := cld.NewHandler(
			&cld.Config{Timeout: workerTimeout(cfg, cld.TaskType, cld.LoadConfig().Timeout)},
			classifier, records, validator, log,
		)
		start(cld.TaskType, handler.Handle)
	}

	{
		handler := edf.NewHandler(
			&edf.Config{Timeout: workerTimeout(cfg, edf.TaskType, edf.LoadConfig().Timeout)},
			pipeline, records, search, validator, log,
		)
		start(edf.TaskType, handler.Handle)
	}

	{
		handler := cdc.NewHandler(
			&cdc.Config{Timeout: workerTimeout(cfg, cdc.TaskType, cdc.LoadConfig().Timeout)},
			records, validator, log,
		)
		start(cdc.TaskType, handler.Handle)
	}

	{
		handler := sce.NewHandler(
			&sce.Config{Timeout: workerTimeout(cfg, sce.TaskType, sce.LoadConfig().Timeout)},
			services, records, validator, log,
		)
		start(sce.TaskType, handler.Handle)
	}

	{
		handler := ecp.NewHandler(
			&ecp.Config{Timeout: workerTimeout(cfg, ecp.TaskType, ecp.LoadConfig().Timeout)},
			services, records, validator, log,
		)
		start(ecp.TaskType, handler.Handle)
	}

	{
		handler := sdn.NewHandler(
			&sdn.Config{
				EmailEnabled: cfg.Notifications.Email.Enabled,
				SMSEnabled:   cfg.Notifications.SMS.Enabled,
				Timeout:      workerTimeout(cfg, sdn.TaskType, sdn.LoadConfig().Timeout),
			},
			records, emailSender, smsSender, validator, log,
		)
		start(sdn.TaskType, handler.Handle)
	}

	log.Info("Loan intake workers registered", map[string]interface{}{"count": len(workers)})

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy", nil)
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{"zeebe": "ok", "postgres": "ok"}
		status := http.StatusOK
		if err := zeebe.HealthCheck(checkCtx); err != nil {
			checks["zeebe"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if err := pg.Ping(checkCtx); err != nil {
			checks["postgres"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if status == http.StatusOK {
			writeStatus(w, status, "ready", checks)
			return
		}
		writeStatus(w, status, "not_ready", checks)
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{Addr: cfg.Metrics.Address, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info("Health/Metrics server listening", map[string]interface{}{"address": cfg.Metrics.Address})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Health/Metrics server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutdown signal received, stopping workers...", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Close()
		w.AwaitClose()
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Error stopping health server", map[string]interface{}{"error": err.Error()})
	}
	if err := zeebe.Close(); err != nil {
		log.Error("Error closing Zeebe client", map[string]interface{}{"error": err.Error()})
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		log.Error("Error flushing otel metrics", map[string]interface{}{"error": err.Error()})
	}

	log.Info("Worker manager stopped gracefully", nil)
}

func writeStatus(w http.ResponseWriter, code int, status string, checks map[string]string) {
	body := map[string]interface{}{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	}
	if checks != nil {
		body["checks"] = checks
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
