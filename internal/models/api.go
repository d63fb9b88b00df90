package models

import "time"

// LiveOperationPoint свежая синтетическая точка операционной телеметрии
type LiveOperationPoint struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Facility     string    `json:"facility"`
	Shift        Shift     `json:"shift"`
	OrdersServed int       `json:"ordersServed"`
	Uptime       float64   `json:"uptime"`
	Incidents    int       `json:"incidents"`
	ActiveRobots int       `json:"activeRobots"`
}

// LiveMetrics свежий срез агрегатов флота для анимации дашборда
type LiveMetrics struct {
	ID              string    `json:"id"`
	Timestamp       time.Time `json:"timestamp"`
	OrdersPerMinute float64   `json:"ordersPerMinute"`
	FleetUptime     float64   `json:"fleetUptime"`
	ActiveRobots    int       `json:"activeRobots"`
	QueueDepth      int       `json:"queueDepth"`
	EnergyKw        float64   `json:"energyKw"`
}

// TrainingUpdate свежий прогресс обучения модели
type TrainingUpdate struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Model     string    `json:"model"`
	Epoch     int       `json:"epoch"`
	Loss      float64   `json:"loss"`
	Accuracy  float64   `json:"accuracy"`
	Progress  int       `json:"progress"`
}

// APIMetrics свежие показатели нагрузки на API
type APIMetrics struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Endpoint     string    `json:"endpoint"`
	RequestsPerS float64   `json:"requestsPerSecond"`
	LatencyP95Ms float64   `json:"latencyP95Ms"`
	ErrorRate    float64   `json:"errorRate"`
}

// SnapshotDigest сжатое представление снапшота для type=all
type SnapshotDigest struct {
	KPICount       int      `json:"kpiCount"`
	LatestKPI      *KPICard `json:"latestKPI"`
	AlertCount     int      `json:"alertCount"`
	CriticalAlerts int      `json:"criticalAlerts"`
}

// LiveBundle ответ /api/live?type=all
type LiveBundle struct {
	Operations LiveOperationPoint `json:"operations"`
	Metrics    LiveMetrics        `json:"metrics"`
	Training   TrainingUpdate     `json:"training"`
	API        APIMetrics         `json:"api"`
	Curation   SnapshotDigest     `json:"curation"`
}

// InsightRequest тело POST /api/insights
type InsightRequest struct {
	Prompt string `json:"prompt"`
}

// InsightResponse ответ POST /api/insights
type InsightResponse struct {
	Content string `json:"content"`
}

// ChatMessage сообщение истории диалога
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// KnowledgeRequest тело POST /api/knowledge
type KnowledgeRequest struct {
	Query    string        `json:"query"`
	Messages []ChatMessage `json:"messages"`
}

// KnowledgeResponse ответ POST /api/knowledge
type KnowledgeResponse struct {
	Answer             string   `json:"answer"`
	SuggestedQuestions []string `json:"suggestedQuestions"`
	Sources            []string `json:"sources"`
}

// HealthStatus представляет статус здоровья сервиса
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Redis     string    `json:"redis"`
	Assistant string    `json:"assistant"`
	Uptime    string    `json:"uptime"`
}

// StatsResponse содержит статистику сервиса
type StatsResponse struct {
	RecordCount       int   `json:"recordCount"`
	KPICount          int   `json:"kpiCount"`
	AlertCount        int   `json:"alertCount"`
	LiveSamplesTotal  int64 `json:"liveSamplesTotal"`
	AssistantFallback int64 `json:"assistantFallbackTotal"`
}
