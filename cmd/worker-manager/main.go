// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"evidly-workers/internal/common/aws"
	"evidly-workers/internal/common/camunda"
	"evidly-workers/internal/common/config"
	"evidly-workers/internal/common/database"
	"evidly-workers/internal/common/logger"
	"evidly-workers/internal/common/observability"
	"evidly-workers/internal/common/validation"
	"evidly-workers/internal/history"
	"evidly-workers/internal/providers"
	"evidly-workers/internal/reporting"

	// Reporting workers (3)
	dmd "evidly-workers/internal/workers/reporting/detect-missing-documents"
	ghr "evidly-workers/internal/workers/reporting/generate-health-dept-report"
	lrh "evidly-workers/internal/workers/reporting/list-report-history"

	// Infrastructure / communication workers (2)
	sca "evidly-workers/internal/workers/communication/send-compliance-alert"
	vs "evidly-workers/internal/workers/infrastructure/validate-subscription"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// stores holds the live backends. All fields are nil in demo mode.
type stores struct {
	pg    *database.PostgresClient
	es    *database.ElasticsearchClient
	redis *database.RedisClient
}

func (s *stores) close(log *zap.Logger) {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Error("error closing redis", zap.Error(err))
		}
	}
	if s.pg != nil {
		if err := s.pg.Close(); err != nil {
			log.Error("error closing postgres", zap.Error(err))
		}
	}
}

func connectStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*stores, error) {
	s := &stores{}

	err := retryWithBackoff(func() error {
		var err error
		s.pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return s.pg.Ping(ctx)
	}, 15, 2*time.Second, log, "PostgreSQL connection")
	if err != nil {
		return nil, err
	}
	log.Info("PostgreSQL connected successfully")

	err = retryWithBackoff(func() error {
		var err error
		s.es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return s.es.Ping(ctx)
	}, 15, 2*time.Second, log, "Elasticsearch connection")
	if err != nil {
		s.close(log)
		return nil, err
	}
	log.Info("Elasticsearch connected successfully")

	err = retryWithBackoff(func() error {
		var err error
		s.redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return s.redis.Ping(ctx)
	}, 10, 2*time.Second, log, "Redis connection")
	if err != nil {
		s.close(log)
		return nil, err
	}
	log.Info("Redis connected successfully")

	return s, nil
}

func thresholdsFromConfig(cfg config.ReportingConfig) reporting.Thresholds {
	return reporting.Thresholds{
		CertExpiringSoonDays:  cfg.Thresholds.CertExpiringSoonDays,
		VendorExpiringDays:    cfg.Thresholds.VendorExpiringDays,
		FireDueSoonDays:       cfg.Thresholds.FireDueSoonDays,
		DocumentLookaheadDays: cfg.Thresholds.DocumentLookaheadDays,
		TrendPeriods:          cfg.TrendPeriods,
	}
}

func main() {
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}
	_ = bootLog.Sync()

	zapLog := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("environment", cfg.App.Environment),
		zap.Bool("demoMode", cfg.Reporting.DemoMode),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Zeebe ---
	zeebe, err := camunda.Connect(ctx, camunda.ConfigFromApp(cfg.Camunda))
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Data stores ---
	live := &stores{}
	if !cfg.Reporting.DemoMode {
		live, err = connectStores(ctx, cfg, zapLog)
		if err != nil {
			zapLog.Fatal("data stores unavailable", zap.Error(err))
		}
	} else {
		zapLog.Info("demo mode: serving fixtures, history kept in memory")
	}
	defer live.close(zapLog)

	// --- Reporting core ---
	registry, err := reporting.LoadRegistry(cfg.Reporting.JurisdictionRegistryPath)
	if err != nil {
		zapLog.Fatal("jurisdiction registry load failed", zap.Error(err))
	}
	clock := reporting.SystemClock
	assembler, err := reporting.NewAssembler(registry, thresholdsFromConfig(cfg.Reporting), clock)
	if err != nil {
		zapLog.Fatal("assembler setup failed", zap.Error(err))
	}
	zapLog.Info("jurisdiction registry loaded", zap.Strings("jurisdictions", registry.Keys()))

	validator, err := validation.NewValidator()
	if err != nil {
		zapLog.Fatal("schema compilation failed", zap.Error(err))
	}

	selector := providers.Selector{Demo: providers.NewFixtureProvider(clock)}
	var (
		historyReader   history.Reader
		historySearcher history.Searcher
		historyRecorder *history.Recorder
	)
	if cfg.Reporting.DemoMode {
		mem := history.NewMemoryStore()
		historyReader = mem
		historySearcher = mem
		historyRecorder = history.NewRecorder(mem, nil, log)
	} else {
		cacheTTL := time.Duration(cfg.Reporting.CacheTTLSeconds) * time.Second
		selector.Live = providers.NewCachedProvider(providers.NewPostgresProvider(live.pg.DB), live.redis.Client, cacheTTL, log)

		store := history.NewPostgresStore(live.pg.DB)
		index := history.NewESIndex(live.es, cfg.Reporting.HistoryIndex)
		if err := index.EnsureIndex(ctx); err != nil {
			zapLog.Fatal("history index setup failed", zap.Error(err))
		}
		historyReader = store
		historySearcher = index
		historyRecorder = history.NewRecorder(store, index, log)
	}

	// --- AWS ---
	var (
		sesClient sca.SESService
		snsClient sca.SNSService
	)
	if cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		clients, err := aws.NewClients(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("aws client setup failed", zap.Error(err))
		}
		sesClient = clients.SES
		snsClient = clients.SNS
		zapLog.Info("AWS clients initialized", zap.String("region", cfg.Notifications.AWS.Region))
	}

	// --- Workers ---
	client := zeebe.GetClient()
	var workers []worker.JobWorker
	start := func(taskType string, h camunda.ContextHandler) {
		jw := camunda.StartWorker(client, taskType, config.GetWorkerConfig(cfg, taskType),
			camunda.Instrument(taskType, h, obs, log), log)
		if jw != nil {
			workers = append(workers, jw)
		}
	}
	timeoutOf := func(taskType string) time.Duration {
		return config.GetDuration(config.GetWorkerConfig(cfg, taskType).Timeout)
	}

	if config.IsWorkerEnabled(cfg, ghr.TaskType) {
		handler := ghr.NewHandler(
			&ghr.Config{Timeout: timeoutOf(ghr.TaskType), DemoMode: cfg.Reporting.DemoMode},
			assembler, selector, historyRecorder, validator, log,
		)
		start(ghr.TaskType, handler.HandleContext)
	}

	if config.IsWorkerEnabled(cfg, dmd.TaskType) {
		handler := dmd.NewHandler(
			&dmd.Config{Timeout: timeoutOf(dmd.TaskType), DemoMode: cfg.Reporting.DemoMode},
			assembler, selector, validator, log,
		)
		start(dmd.TaskType, handler.HandleContext)
	}

	if config.IsWorkerEnabled(cfg, lrh.TaskType) {
		handler := lrh.NewHandler(
			&lrh.Config{Timeout: timeoutOf(lrh.TaskType)},
			historyReader, historySearcher, validator, log,
		)
		start(lrh.TaskType, handler.HandleContext)
	}

	if config.IsWorkerEnabled(cfg, vs.TaskType) {
		if live.pg == nil {
			zapLog.Warn("validate-subscription needs postgres, not started in demo mode")
		} else {
			handler := vs.NewHandler(
				&vs.Config{
					Timeout:  timeoutOf(vs.TaskType),
					CacheTTL: time.Duration(cfg.Reporting.CacheTTLSeconds) * time.Second,
				},
				live.pg.DB, live.redis.Client, clock, validator, log,
			)
			start(vs.TaskType, handler.HandleContext)
		}
	}

	if config.IsWorkerEnabled(cfg, sca.TaskType) {
		handler := sca.NewHandler(
			&sca.Config{
				EmailEnabled: cfg.Notifications.Email.Enabled,
				SMSEnabled:   cfg.Notifications.SMS.Enabled,
				FromEmail:    cfg.Notifications.Email.FromEmail,
				Timeout:      timeoutOf(sca.TaskType),
			},
			sesClient, snsClient, clock, validator, log,
		)
		start(sca.TaskType, handler.HandleContext)
	}
	zapLog.Info("workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy", nil)
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{"zeebe": "ok"}
		status := http.StatusOK
		fail := func(name string, err error) {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if err := zeebe.HealthCheck(checkCtx); err != nil {
			fail("zeebe", err)
		}
		if live.pg != nil {
			checks["postgres"] = "ok"
			if err := live.pg.Ping(checkCtx); err != nil {
				fail("postgres", err)
			}
		}
		if live.redis != nil {
			checks["redis"] = "ok"
			if err := live.redis.Ping(checkCtx); err != nil {
				fail("redis", err)
			}
		}

		label := "ready"
		if status != http.StatusOK {
			label = "not ready"
		}
		writeStatus(w, status, label, checks)
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, jw := range workers {
		jw.Close()
		jw.AwaitClose()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
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
