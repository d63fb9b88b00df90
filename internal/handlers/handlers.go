// Package handlers содержит HTTP обработчики для API
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"fleet-curation-service/internal/assistant"
	"fleet-curation-service/internal/cache"
	"fleet-curation-service/internal/curation"
	"fleet-curation-service/internal/live"
	"fleet-curation-service/internal/metrics"
	"fleet-curation-service/internal/models"
)

// maxBodyBytes предел тела POST-запросов
const maxBodyBytes = 64 << 10

// LiveHistory хранилище истории live-точек и счетчиков (Redis)
type LiveHistory interface {
	PushLiveSample(ctx context.Context, kind string, sample any) error
	LatestLiveSamples(ctx context.Context, kind string, count int64) ([]json.RawMessage, error)
	IncrementCounter(ctx context.Context, key string) (int64, error)
	GetCounter(ctx context.Context, key string) (int64, error)
	Ping(ctx context.Context) error
}

// Handler содержит зависимости для HTTP обработчиков
type Handler struct {
	composer            *curation.Composer
	live                live.Source
	insights            *assistant.Insights
	knowledge           *assistant.Knowledge
	history             LiveHistory
	assistantConfigured bool
	logger              *zap.Logger
	startTime           time.Time
}

// Deps зависимости обработчиков; History и провайдер ассистента необязательны
type Deps struct {
	Composer            *curation.Composer
	Live                live.Source
	Insights            *assistant.Insights
	Knowledge           *assistant.Knowledge
	History             LiveHistory
	AssistantConfigured bool
	Logger              *zap.Logger
}

// NewHandler создает новый обработчик
func NewHandler(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		composer:            d.Composer,
		live:                d.Live,
		insights:            d.Insights,
		knowledge:           d.Knowledge,
		history:             d.History,
		assistantConfigured: d.AssistantConfigured,
		logger:              logger,
		startTime:           time.Now(),
	}
}

// Register регистрирует маршруты API
func (h *Handler) Register(router *mux.Router) {
	router.HandleFunc("/api/curation", h.CurationHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/live", h.LiveHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/live/history", h.LiveHistoryHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/insights", h.InsightsHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/knowledge", h.KnowledgeHandler).Methods(http.MethodPost)
	router.HandleFunc("/health", h.HealthHandler).Methods(http.MethodGet)
	router.HandleFunc("/stats", h.StatsHandler).Methods(http.MethodGet)
}

// CurationHandler обрабатывает GET /api/curation - полный снапшот
func (h *Handler) CurationHandler(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(metrics.RequestDuration.WithLabelValues("/api/curation", r.Method))
	defer timer.ObserveDuration()

	snap := h.composer.Compose()

	metrics.RequestsTotal.WithLabelValues("/api/curation", r.Method, "200").Inc()
	h.respondJSON(w, snap, http.StatusOK)
}

// LiveHandler обрабатывает GET /api/live?type= - одна свежая live-точка
func (h *Handler) LiveHandler(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(metrics.RequestDuration.WithLabelValues("/api/live", r.Method))
	defer timer.ObserveDuration()

	kind := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("type")))
	if kind == "" {
		kind = live.TypeAll
	}

	if kind == live.TypeAll {
		bundle := models.LiveBundle{
			Operations: h.live.GenerateLiveDataPoint(),
			Metrics:    h.live.GenerateLiveMetrics(),
			Training:   h.live.GenerateTrainingUpdate(),
			API:        h.live.GenerateAPIMetrics(),
			Curation:   curation.Digest(h.composer.Compose()),
		}
		h.recordLive(r.Context(), live.TypeOperations, bundle.Operations)
		h.recordLive(r.Context(), live.TypeMetrics, bundle.Metrics)
		h.recordLive(r.Context(), live.TypeTraining, bundle.Training)
		h.recordLive(r.Context(), live.TypeAPI, bundle.API)

		metrics.RequestsTotal.WithLabelValues("/api/live", r.Method, "200").Inc()
		h.respondJSON(w, bundle, http.StatusOK)
		return
	}

	sample, ok := live.Generate(h.live, kind)
	if !ok {
		h.respondError(w, "Unknown live type: "+kind+" (expected operations, metrics, training, api or all)", http.StatusBadRequest)
		metrics.RequestsTotal.WithLabelValues("/api/live", r.Method, "400").Inc()
		return
	}
	h.recordLive(r.Context(), kind, sample)

	metrics.RequestsTotal.WithLabelValues("/api/live", r.Method, "200").Inc()
	h.respondJSON(w, sample, http.StatusOK)
}

// recordLive сохраняет точку в историю; ошибка кэша не влияет на ответ
func (h *Handler) recordLive(ctx context.Context, kind string, sample any) {
	metrics.LiveSamples.WithLabelValues(kind).Inc()
	if h.history == nil {
		return
	}
	if err := h.history.PushLiveSample(ctx, kind, sample); err != nil {
		metrics.CacheMisses.Inc()
		h.logger.Debug("failed to cache live sample", zap.String("type", kind), zap.Error(err))
		return
	}
	metrics.CacheHits.Inc()
}

// LiveHistoryHandler обрабатывает GET /api/live/history - последние live-точки из кэша
func (h *Handler) LiveHistoryHandler(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(metrics.RequestDuration.WithLabelValues("/api/live/history", r.Method))
	defer timer.ObserveDuration()

	kind := strings.ToLower(r.URL.Query().Get("type"))
	if !isLiveType(kind) {
		h.respondError(w, "Unknown live type: "+kind, http.StatusBadRequest)
		metrics.RequestsTotal.WithLabelValues("/api/live/history", r.Method, "400").Inc()
		return
	}

	count := int64(50)
	if countStr := r.URL.Query().Get("count"); countStr != "" {
		if c, err := strconv.ParseInt(countStr, 10, 64); err == nil && c > 0 && c <= 500 {
			count = c
		}
	}

	if h.history == nil {
		h.respondError(w, "Cache not available", http.StatusServiceUnavailable)
		metrics.RequestsTotal.WithLabelValues("/api/live/history", r.Method, "503").Inc()
		return
	}

	samples, err := h.history.LatestLiveSamples(r.Context(), kind, count)
	if err != nil {
		metrics.CacheMisses.Inc()
		h.respondError(w, "Failed to get live samples: "+err.Error(), http.StatusInternalServerError)
		metrics.RequestsTotal.WithLabelValues("/api/live/history", r.Method, "500").Inc()
		return
	}

	metrics.CacheHits.Inc()
	metrics.RequestsTotal.WithLabelValues("/api/live/history", r.Method, "200").Inc()
	h.respondJSON(w, map[string]interface{}{
		"type":    kind,
		"count":   len(samples),
		"samples": samples,
	}, http.StatusOK)
}

func isLiveType(kind string) bool {
	for _, t := range live.Types() {
		if t == kind {
			return true
		}
	}
	return false
}

// InsightsHandler обрабатывает POST /api/insights - комментарий ассистента к снапшоту
func (h *Handler) InsightsHandler(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(metrics.RequestDuration.WithLabelValues("/api/insights", r.Method))
	defer timer.ObserveDuration()

	var req models.InsightRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.respondError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		metrics.RequestsTotal.WithLabelValues("/api/insights", r.Method, "400").Inc()
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		h.respondError(w, "prompt is required", http.StatusBadRequest)
		metrics.RequestsTotal.WithLabelValues("/api/insights", r.Method, "400").Inc()
		return
	}

	snap := h.composer.Compose()
	content, mode, err := h.insights.Generate(r.Context(), req.Prompt, snap)
	metrics.AssistantResponses.WithLabelValues("insights", string(mode)).Inc()
	if err != nil {
		h.respondError(w, "Insights provider failed: "+err.Error(), http.StatusInternalServerError)
		metrics.RequestsTotal.WithLabelValues("/api/insights", r.Method, "500").Inc()
		return
	}
	if mode == assistant.ModeFallback {
		h.countFallback(r.Context())
	}

	metrics.RequestsTotal.WithLabelValues("/api/insights", r.Method, "200").Inc()
	h.respondJSON(w, models.InsightResponse{Content: content}, http.StatusOK)
}

// KnowledgeHandler обрабатывает POST /api/knowledge - ответы по FAQ и базе знаний
func (h *Handler) KnowledgeHandler(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(metrics.RequestDuration.WithLabelValues("/api/knowledge", r.Method))
	defer timer.ObserveDuration()

	var req models.KnowledgeRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.respondError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		metrics.RequestsTotal.WithLabelValues("/api/knowledge", r.Method, "400").Inc()
		return
	}

	// Без явного query берем последний вопрос пользователя из истории
	if strings.TrimSpace(req.Query) == "" {
		for i := len(req.Messages) - 1; i >= 0; i-- {
			if req.Messages[i].Role == "user" && strings.TrimSpace(req.Messages[i].Content) != "" {
				req.Query = req.Messages[i].Content
				req.Messages = req.Messages[:i]
				break
			}
		}
	}
	if strings.TrimSpace(req.Query) == "" {
		h.respondError(w, "query is required", http.StatusBadRequest)
		metrics.RequestsTotal.WithLabelValues("/api/knowledge", r.Method, "400").Inc()
		return
	}

	resp, mode := h.knowledge.Answer(r.Context(), req)
	metrics.AssistantResponses.WithLabelValues("knowledge", string(mode)).Inc()
	if mode == assistant.ModeFallback {
		h.countFallback(r.Context())
	}

	metrics.RequestsTotal.WithLabelValues("/api/knowledge", r.Method, "200").Inc()
	h.respondJSON(w, resp, http.StatusOK)
}

func (h *Handler) countFallback(ctx context.Context) {
	if h.history == nil {
		return
	}
	if _, err := h.history.IncrementCounter(ctx, cache.CounterAssistantFallback); err != nil {
		metrics.CacheMisses.Inc()
	}
}

// HealthHandler обрабатывает GET /health - проверка здоровья
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	redisStatus := "disconnected"
	if h.history != nil && h.history.Ping(r.Context()) == nil {
		redisStatus = "connected"
	}
	assistantStatus := "fallback"
	if h.assistantConfigured {
		assistantStatus = "provider"
	}

	status := models.HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Redis:     redisStatus,
		Assistant: assistantStatus,
		Uptime:    time.Since(h.startTime).String(),
	}

	h.respondJSON(w, status, http.StatusOK)
}

// StatsHandler обрабатывает GET /stats - статистика сервиса
func (h *Handler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(metrics.RequestDuration.WithLabelValues("/stats", r.Method))
	defer timer.ObserveDuration()

	metrics.ActiveGoroutines.Set(float64(runtime.NumGoroutine()))

	snap := h.composer.Compose()
	response := models.StatsResponse{
		RecordCount: snap.Meta.RecordCount,
		KPICount:    len(snap.KPIs),
		AlertCount:  len(snap.Alerts),
	}
	if h.history != nil {
		response.LiveSamplesTotal, _ = h.history.GetCounter(r.Context(), cache.CounterLiveSamples)
		response.AssistantFallback, _ = h.history.GetCounter(r.Context(), cache.CounterAssistantFallback)
	}

	metrics.RequestsTotal.WithLabelValues("/stats", r.Method, "200").Inc()
	h.respondJSON(w, response, http.StatusOK)
}

// decodeBody читает JSON-тело с ограничением размера
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}
		return err
	}
	return nil
}

// respondJSON отправляет JSON ответ
func (h *Handler) respondJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warn("failed to encode response", zap.Error(err))
	}
}

// respondError отправляет ошибку в JSON формате
func (h *Handler) respondError(w http.ResponseWriter, message string, status int) {
	h.respondJSON(w, map[string]string{"error": message}, status)
}
