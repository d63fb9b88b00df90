// Package main запускает сервис курирования телеметрии флота роботов
// Сервис реализует:
// - снапшот курирования: KPI с моментумом, недельные тренды, heatmap загрузки, алерты, каталоги
// - live-точки для анимации дашборда с историей в Redis
// - ассистента (инсайты и база знаний) через OpenAI с локальным запасным путем
// - экспорт метрик в Prometheus
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fleet-curation-service/internal/analytics"
	"fleet-curation-service/internal/assistant"
	"fleet-curation-service/internal/cache"
	"fleet-curation-service/internal/catalog"
	"fleet-curation-service/internal/config"
	"fleet-curation-service/internal/curation"
	apihandlers "fleet-curation-service/internal/handlers"
	"fleet-curation-service/internal/live"
	"fleet-curation-service/internal/logging"
	"fleet-curation-service/internal/metrics"
	"fleet-curation-service/internal/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fleet-curation",
		Short:         "Curated robotics fleet telemetry for the operations dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	})

	snapshot := &cobra.Command{
		Use:   "snapshot",
		Short: "Compose one curation snapshot and print it as JSON",
		RunE:  runSnapshot,
	}
	snapshot.Flags().Bool("pretty", true, "indent JSON output")
	root.AddCommand(snapshot)
	return root
}

// buildComposer загружает набор данных, пороги и каталог
func buildComposer(cfg config.Config, logger *zap.Logger) (*curation.Composer, *store.MemoryStore, error) {
	records, err := store.Open(cfg.DatasetFile)
	if err != nil {
		return nil, nil, err
	}
	if records.Skipped() > 0 {
		logger.Warn("dataset rows skipped on load", zap.Int("skipped", records.Skipped()))
	}

	thresholds, err := analytics.LoadThresholdsFile(cfg.ThresholdsFile)
	if err != nil {
		return nil, nil, err
	}

	composer, err := curation.New(records, thresholds, catalog.Default(), logger.Named("curation"))
	if err != nil {
		return nil, nil, err
	}
	return composer, records, nil
}

func runSnapshot(cmd *cobra.Command, _ []string) error {
	cfg := config.FromEnv()
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync()

	composer, _, err := buildComposer(cfg, logger)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	if pretty, _ := cmd.Flags().GetBool("pretty"); pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(composer.Compose())
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg := config.FromEnv()
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("starting fleet curation service",
		zap.String("go_version", runtime.Version()),
		zap.Int("num_cpu", runtime.NumCPU()))

	composer, records, err := buildComposer(cfg, logger)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	logger.Info("record store loaded", zap.Int("records", records.Len()))

	// Redis необязателен: без него нет истории live-точек
	var history apihandlers.LiveHistory
	redisCache := connectRedis(cfg, logger)
	if redisCache != nil {
		history = redisCache
	}

	var provider assistant.Provider
	openai, err := assistant.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
	switch {
	case errors.Is(err, assistant.ErrProviderUnavailable):
		logger.Warn("OPENAI_API_KEY not set, assistant runs in fallback mode")
	case err != nil:
		return err
	default:
		provider = openai
		logger.Info("assistant provider configured", zap.String("model", openai.Model()))
	}

	handler := apihandlers.NewHandler(apihandlers.Deps{
		Composer:            composer,
		Live:                live.NewRandomSource(),
		Insights:            assistant.NewInsights(provider, cfg.AssistantTimeout, logger.Named("insights")),
		Knowledge:           assistant.NewKnowledge(provider, composer.FAQ(), composer.Knowledge(), cfg.AssistantTimeout, logger.Named("knowledge")),
		History:             history,
		AssistantConfigured: provider != nil,
		Logger:              logger.Named("http"),
	})

	router := mux.NewRouter()
	handler.Register(router)

	// Prometheus метрики
	router.Handle("/prometheus", promhttp.Handler())

	// pprof для профилирования
	router.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)

	router.Use(metricsMiddleware)

	accessLog := zap.NewStdLog(logger.Named("access")).Writer()
	var root http.Handler = router
	root = handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(root)
	root = handlers.RecoveryHandler(
		handlers.RecoveryLogger(zap.NewStdLog(logger.Named("recovery"))),
	)(root)
	root = handlers.CombinedLoggingHandler(accessLog, root)

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      root,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go updateMetricsLoop(ctx)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.ServerAddr))
		logger.Info("endpoints",
			zap.Strings("routes", []string{
				"GET  /api/curation",
				"GET  /api/live?type=operations|metrics|training|api|all",
				"GET  /api/live/history?type=&count=",
				"POST /api/insights",
				"POST /api/knowledge",
				"GET  /health",
				"GET  /stats",
				"GET  /prometheus",
			}))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down server")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	if redisCache != nil {
		redisCache.Close()
	}

	logger.Info("server stopped")
	return nil
}

// connectRedis пробует подключиться к Redis с повторами, nil если не удалось
func connectRedis(cfg config.Config, logger *zap.Logger) *cache.RedisCache {
	var lastErr error
	for i := 0; i < 5; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisCache, err := cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.LiveHistorySize)
		cancel()
		if err == nil {
			logger.Info("connected to Redis", zap.String("addr", cfg.RedisAddr))
			return redisCache
		}
		lastErr = err
		logger.Warn("Redis connection attempt failed", zap.Int("attempt", i+1), zap.Error(err))
		if i < 4 {
			time.Sleep(time.Duration(i+1) * time.Second)
		}
	}
	logger.Warn("running without Redis cache", zap.Error(lastErr))
	return nil
}

// metricsMiddleware считает запросы в обработке
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.InFlightRequests.Inc()
		defer metrics.InFlightRequests.Dec()
		next.ServeHTTP(w, r)
	})
}

// updateMetricsLoop периодически обновляет метрики Prometheus
func updateMetricsLoop(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.ActiveGoroutines.Set(float64(runtime.NumGoroutine()))
		}
	}
}
