package models

import "time"

// Momentum направление изменения KPI относительно предыдущего окна
type Momentum string

const (
	MomentumUp     Momentum = "up"
	MomentumDown   Momentum = "down"
	MomentumSteady Momentum = "steady"
)

// Severity уровень важности алерта
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank возвращает вес уровня, больше значит важнее
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// KPICard одна сводная метрика с направлением тренда
type KPICard struct {
	ID          string   `json:"id" validate:"required"`
	Label       string   `json:"label" validate:"required"`
	Value       string   `json:"value" validate:"required"`
	Momentum    Momentum `json:"momentum" validate:"required,oneof=up down steady"`
	Delta       string   `json:"delta" validate:"required"`
	Description string   `json:"description" validate:"required"`
}

// TrendPoint точка недельного ряда для графиков
type TrendPoint struct {
	Week         string    `json:"week" validate:"required"`
	WeekStart    time.Time `json:"weekStart" validate:"required"`
	Throughput   int       `json:"throughput" validate:"gte=0"`
	Uptime       float64   `json:"uptime" validate:"gte=0,lte=100"`
	Satisfaction float64   `json:"satisfaction"`
	Incidents    int       `json:"incidents" validate:"gte=0"`
}

// HeatmapCell загрузка пары объект × смена
type HeatmapCell struct {
	Facility           string  `json:"facility" validate:"required"`
	Shift              Shift   `json:"shift" validate:"required"`
	DemandScore        float64 `json:"demandScore" validate:"gte=0,lte=1"`
	Utilization        float64 `json:"utilization" validate:"gte=0"`
	DisplayUtilization float64 `json:"displayUtilization" validate:"gte=0,lte=100"`
}

// AlertInsight операционный алерт, выведенный из пороговых правил
type AlertInsight struct {
	ID       string   `json:"id" validate:"required"`
	Facility string   `json:"facility" validate:"required"`
	Category string   `json:"category" validate:"required"`
	Title    string   `json:"title" validate:"required"`
	Detail   string   `json:"detail" validate:"required"`
	Severity Severity `json:"severity" validate:"required,oneof=low medium high critical"`
	Owner    string   `json:"owner" validate:"required"`
	ETAHours int      `json:"etaHours" validate:"gt=0"`
}

// FinancialSnapshot финансовый срез программы автоматизации
type FinancialSnapshot struct {
	ID             string  `json:"id" validate:"required"`
	Period         string  `json:"period" validate:"required"`
	RevenueUSD     float64 `json:"revenueUsd" validate:"gte=0"`
	CostSavingsUSD float64 `json:"costSavingsUsd" validate:"gte=0"`
	ROIPercent     float64 `json:"roiPercent"`
	PaybackMonths  int     `json:"paybackMonths" validate:"gt=0"`
	Notes          string  `json:"notes" validate:"required"`
}

// APISurface описание публичного эндпоинта платформы
type APISurface struct {
	ID           string `json:"id" validate:"required"`
	Name         string `json:"name" validate:"required"`
	Method       string `json:"method" validate:"required,oneof=GET POST PUT PATCH DELETE"`
	Path         string `json:"path" validate:"required,startswith=/"`
	Description  string `json:"description" validate:"required"`
	LatencyP95Ms int    `json:"latencyP95Ms" validate:"gt=0"`
	Status       string `json:"status" validate:"required,oneof=stable beta deprecated"`
}

// KnowledgeSlice фрагмент базы знаний
type KnowledgeSlice struct {
	ID        string   `json:"id" validate:"required"`
	Title     string   `json:"title" validate:"required"`
	Category  string   `json:"category" validate:"required"`
	Summary   string   `json:"summary" validate:"required"`
	Tags      []string `json:"tags" validate:"required,min=1,dive,required"`
	UpdatedAt string   `json:"updatedAt" validate:"required,datetime=2006-01-02"`
}

// Milestone контрольная точка плана обучения
type Milestone struct {
	ID        string `json:"id" validate:"required"`
	Title     string `json:"title" validate:"required"`
	DueDate   string `json:"dueDate" validate:"required,datetime=2006-01-02"`
	Completed bool   `json:"completed"`
}

// TrainingPlan план обучения модели
type TrainingPlan struct {
	ID         string      `json:"id" validate:"required"`
	Model      string      `json:"model" validate:"required"`
	Objective  string      `json:"objective" validate:"required"`
	Status     string      `json:"status" validate:"required,oneof=planned training evaluating deployed"`
	Progress   int         `json:"progress" validate:"gte=0,lte=100"`
	Milestones []Milestone `json:"milestones" validate:"required,min=1,dive"`
}

// SnapshotMeta детерминированная диагностика композиции
type SnapshotMeta struct {
	RecordCount      int      `json:"recordCount"`
	SkippedRecords   int      `json:"skippedRecords"`
	WindowBuckets    int      `json:"windowBuckets"`
	DegradedSections []string `json:"degradedSections" validate:"required"`
}

// CurationSnapshot единый ответ, который потребляют все страницы и API
type CurationSnapshot struct {
	KPIs          []KPICard           `json:"kpis" validate:"required,dive"`
	Trend         []TrendPoint        `json:"trend" validate:"required,dive"`
	Heatmap       []HeatmapCell       `json:"heatmap" validate:"required,dive"`
	Alerts        []AlertInsight      `json:"alerts" validate:"required,dive"`
	Financials    []FinancialSnapshot `json:"financials" validate:"required,dive"`
	APISurfaces   []APISurface        `json:"apiSurfaces" validate:"required,dive"`
	Knowledge     []KnowledgeSlice    `json:"knowledge" validate:"required,dive"`
	TrainingPlans []TrainingPlan      `json:"trainingPlans" validate:"required,dive"`
	Meta          SnapshotMeta        `json:"meta"`
}

// CriticalAlerts возвращает количество критических алертов
func (s CurationSnapshot) CriticalAlerts() int {
	n := 0
	for _, a := range s.Alerts {
		if a.Severity == SeverityCritical {
			n++
		}
	}
	return n
}

// FAQEntry запись справочника частых вопросов
type FAQEntry struct {
	ID       string   `json:"id" validate:"required"`
	Question string   `json:"question" validate:"required"`
	Answer   string   `json:"answer" validate:"required"`
	Category string   `json:"category" validate:"required"`
	Keywords []string `json:"keywords" validate:"required,min=1,dive,required"`
}
