// cmd/worker-manager/main.go
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"homematch-workers/internal/common/camunda"
	"homematch-workers/internal/common/config"
	"homematch-workers/internal/common/database"
	apihttp "homematch-workers/internal/common/http"
	"homematch-workers/internal/common/logger"
	"homematch-workers/internal/common/metrics"
	"homematch-workers/internal/common/observability"
	"homematch-workers/internal/common/validation"
	"homematch-workers/internal/dataset"
	"homematch-workers/internal/matching"
	"homematch-workers/pkg/registry"

	ahr "homematch-workers/internal/workers/housing/apply-housing-ranking"
	chs "homematch-workers/internal/workers/housing/calculate-housing-score"
	php "homematch-workers/internal/workers/housing/parse-housing-preferences"
)

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

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)
	zapLog.Info("Starting worker manager...", zap.String("datasetSource", cfg.Dataset.Source))

	obs := observability.New(cfg.App.Name, prometheus.DefaultRegisterer, log)
	defer obs.Shutdown()

	ctx := context.Background()

	backends, closeBackends := connectBackends(ctx, cfg, zapLog)
	defer closeBackends()

	source, err := dataset.NewSource(cfg.Dataset, backends)
	if err != nil {
		zapLog.Fatal("dataset source setup failed", zap.Error(err))
	}

	loaderOpts := []dataset.LoaderOption{
		dataset.WithDefaultFee(cfg.Dataset.DefaultFee),
		dataset.WithRand(rand.New(rand.NewSource(backfillSeed(cfg.Dataset.BackfillSeed)))),
	}
	if cfg.Dataset.CacheEnabled {
		redisClient := database.NewRedis(cfg.Database.Redis)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx); err != nil {
			zapLog.Warn("redis unreachable, dataset cache will be bypassed", zap.Error(err))
		}
		ttl := time.Duration(cfg.Dataset.CacheTTL) * time.Second
		loaderOpts = append(loaderOpts, dataset.WithCache(dataset.NewSnapshotCache(redisClient.Client, ttl)))
	}

	store := dataset.NewStore()
	err = retryWithBackoff(func() error {
		return store.Load(ctx, dataset.NewLoader(source, log, loaderOpts...))
	}, 3, 2*time.Second, zapLog, "Dataset load")
	if err != nil {
		zapLog.Fatal("dataset load failed", zap.Error(err))
	}
	metrics.DatasetListings.Set(float64(store.Len()))
	zapLog.Info("Dataset loaded", zap.String("source", store.SourceID()), zap.Int("listings", store.Len()))

	policy, err := matching.PolicyByName(cfg.Scoring.VibePolicy)
	if err != nil {
		zapLog.Fatal("invalid vibe policy", zap.Error(err))
	}
	scorer := matching.NewScorer(policy)

	rankerOpts := []matching.RankerOption{
		matching.WithMaxResults(cfg.Ranking.MaxResults),
		matching.WithParallelism(cfg.Ranking.Parallelism),
		matching.WithMaxPossible(cfg.Scoring.MaxPossible),
	}
	if cfg.Ranking.Jitter {
		rankerOpts = append(rankerOpts, matching.WithJitter(rand.New(rand.NewSource(time.Now().UnixNano()))))
	}
	recommender := matching.NewRecommender(
		matching.NewRanker(scorer, rankerOpts...),
		matching.WithBudgetCeiling(cfg.Preferences.BudgetCeiling),
		matching.WithBudgetTipThreshold(cfg.Preferences.BudgetTipThreshold),
	)

	reg, err := registry.Default()
	if err != nil {
		zapLog.Fatal("activity registry load failed", zap.Error(err))
	}
	validator := validation.NewValidator(reg)

	var (
		zeebe   *camunda.Client
		workers []*camunda.Worker
	)
	if cfg.Camunda.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
				GatewayAddress:         cfg.Camunda.BrokerAddress,
				UsePlaintextConnection: true,
				ConnectionTimeout:      config.GetDuration(cfg.Camunda.Timeout),
				RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
			})
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		zapLog.Info("Zeebe client connected successfully")

		if config.IsWorkerEnabled(cfg, php.TaskType) {
			wcfg := config.GetWorkerConfig(cfg, php.TaskType)
			handler := php.NewHandler(
				&php.Config{
					Timeout:       config.GetDuration(wcfg.Timeout),
					MaxRetries:    wcfg.MaxRetries,
					BudgetCeiling: cfg.Preferences.BudgetCeiling,
				},
				validator, obs, log,
			)
			workers = append(workers, startWorker(zeebe, php.TaskType, wcfg, handler, log))
		}

		if config.IsWorkerEnabled(cfg, chs.TaskType) {
			wcfg := config.GetWorkerConfig(cfg, chs.TaskType)
			handler := chs.NewHandler(
				&chs.Config{
					Timeout:     config.GetDuration(wcfg.Timeout),
					MaxRetries:  wcfg.MaxRetries,
					MaxPossible: cfg.Scoring.MaxPossible,
				},
				store, scorer, validator, obs, log,
			)
			workers = append(workers, startWorker(zeebe, chs.TaskType, wcfg, handler, log))
		}

		if config.IsWorkerEnabled(cfg, ahr.TaskType) {
			wcfg := config.GetWorkerConfig(cfg, ahr.TaskType)
			handler := ahr.NewHandler(
				&ahr.Config{
					Timeout:     config.GetDuration(wcfg.Timeout),
					MaxRetries:  wcfg.MaxRetries,
					MaxResults:  cfg.Ranking.MaxResults,
					SlowRanking: 500 * time.Millisecond,
				},
				store, recommender, validator, obs, log,
			)
			workers = append(workers, startWorker(zeebe, ahr.TaskType, wcfg, handler, log))
		}
		zapLog.Info("Workers registered", zap.Int("count", len(workers)))
	} else {
		zapLog.Info("Camunda disabled, serving the HTTP API only")
	}

	server := apihttp.NewServer(store, recommender, validator, log)
	go func() {
		if err := server.ListenAndServe(cfg.HTTP.Address); err != nil {
			zapLog.Error("HTTP server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping HTTP server", zap.Error(err))
	}
	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}
	zapLog.Info("Worker manager stopped gracefully")
}

// connectBackends opens only the store the configured dataset source reads from.
func connectBackends(ctx context.Context, cfg *config.Config, zapLog *zap.Logger) (dataset.Backends, func()) {
	var backends dataset.Backends
	closeFn := func() {}

	switch cfg.Dataset.Source {
	case config.SourcePostgres:
		var pg *database.PostgresClient
		err := retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		zapLog.Info("PostgreSQL connected successfully")
		backends.Postgres = pg.DB
		closeFn = func() { _ = pg.Close() }

	case config.SourceElasticsearch:
		var es *database.ElasticsearchClient
		err := retryWithBackoff(func() error {
			var err error
			es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return es.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully")
		backends.Elasticsearch = es.Client
	}
	return backends, closeFn
}

func backfillSeed(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return time.Now().UnixNano()
}

func startWorker(client *camunda.Client, taskType string, wcfg config.WorkerConfig, handler camunda.JobHandler, log logger.Logger) *camunda.Worker {
	return camunda.NewWorker(client.GetClient(), taskType, handler, camunda.WorkerOptions{
		MaxJobsActive: wcfg.MaxJobsActive,
		Timeout:       config.GetDuration(wcfg.Timeout),
	}, log)
}
