// Package curation собирает единый снапшот дашборда из агрегатов и каталогов
package curation

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"fleet-curation-service/internal/analytics"
	"fleet-curation-service/internal/catalog"
	"fleet-curation-service/internal/metrics"
	"fleet-curation-service/internal/models"
	"fleet-curation-service/internal/store"
)

// Названия секций снапшота
const (
	SectionRecords = "records"
	SectionKPIs    = "kpis"
	SectionTrend   = "trend"
	SectionHeatmap = "heatmap"
	SectionAlerts  = "alerts"
)

var snapshotValidate = validator.New()

// Composer единая точка входа курирования.
// Все вычисления выполняются заново на каждый вызов, общего изменяемого состояния нет.
type Composer struct {
	repo       store.Repository
	thresholds analytics.Thresholds
	catalog    catalog.Catalog
	logger     *zap.Logger

	aggregate func([]models.OperationalRecord, analytics.Thresholds) analytics.KPIResult
	trend     func([]models.OperationalRecord) []models.TrendPoint
	heatmap   func([]models.OperationalRecord, analytics.Thresholds) []models.HeatmapCell
	alerts    func([]models.OperationalRecord, analytics.Thresholds) []models.AlertInsight
}

// New проверяет пороги и каталог. Неполный каталог: ошибка конфигурации, сервис не должен стартовать.
func New(repo store.Repository, thresholds analytics.Thresholds, cat catalog.Catalog, logger *zap.Logger) (*Composer, error) {
	if repo == nil {
		return nil, fmt.Errorf("record repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid thresholds: %w", err)
	}
	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return &Composer{
		repo:       repo,
		thresholds: thresholds,
		catalog:    cat.Clone(),
		logger:     logger,
		aggregate:  analytics.Aggregate,
		trend:      analytics.BuildTrend,
		heatmap:    analytics.BuildHeatmap,
		alerts:     analytics.SynthesizeAlerts,
	}, nil
}

// Thresholds возвращает действующие пороги
func (c *Composer) Thresholds() analytics.Thresholds {
	return c.thresholds
}

// FAQ возвращает копию таблицы частых вопросов
func (c *Composer) FAQ() []models.FAQEntry {
	return c.catalog.Clone().FAQ
}

// Knowledge возвращает копию фрагментов базы знаний
func (c *Composer) Knowledge() []models.KnowledgeSlice {
	return c.catalog.Clone().Knowledge
}

// Compose собирает снапшот. Никогда не паникует: упавшая секция становится пустой
// и попадает в meta.degradedSections.
func (c *Composer) Compose() models.CurationSnapshot {
	start := time.Now()
	cat := c.catalog.Clone()
	snap := models.CurationSnapshot{
		KPIs:          []models.KPICard{},
		Trend:         []models.TrendPoint{},
		Heatmap:       []models.HeatmapCell{},
		Alerts:        []models.AlertInsight{},
		Financials:    cat.Financials,
		APISurfaces:   cat.APISurfaces,
		Knowledge:     cat.Knowledge,
		TrainingPlans: cat.TrainingPlans,
		Meta: models.SnapshotMeta{
			WindowBuckets:    c.thresholds.WindowBuckets,
			DegradedSections: []string{},
		},
	}

	var records []models.OperationalRecord
	if !c.guard(&snap, SectionRecords, func() { records = c.repo.Records() }) {
		records = nil
	}
	snap.Meta.RecordCount = len(records)

	c.guard(&snap, SectionKPIs, func() {
		res := c.aggregate(records, c.thresholds)
		snap.KPIs = nonNil(res.Cards)
		snap.Meta.SkippedRecords = res.Skipped
		snap.Meta.WindowBuckets = res.WindowBuckets
	})
	c.guard(&snap, SectionTrend, func() { snap.Trend = nonNil(c.trend(records)) })
	c.guard(&snap, SectionHeatmap, func() { snap.Heatmap = nonNil(c.heatmap(records, c.thresholds)) })
	c.guard(&snap, SectionAlerts, func() { snap.Alerts = nonNil(c.alerts(records, c.thresholds)) })

	if err := ValidateSnapshot(snap); err != nil {
		c.logger.Error("curation snapshot failed shape validation", zap.Error(err))
	}

	bySeverity := make(map[string]int)
	for _, a := range snap.Alerts {
		bySeverity[string(a.Severity)]++
	}
	metrics.ObserveSnapshot(snap.Meta.SkippedRecords, bySeverity, snap.Meta.DegradedSections)
	metrics.CompositionLatency.Observe(time.Since(start).Seconds())

	if snap.Meta.SkippedRecords > 0 {
		c.logger.Warn("skipped malformed records",
			zap.Int("skipped", snap.Meta.SkippedRecords),
			zap.Int("records", snap.Meta.RecordCount))
	}
	c.logger.Debug("composed curation snapshot",
		zap.Int("kpis", len(snap.KPIs)),
		zap.Int("trend_points", len(snap.Trend)),
		zap.Int("heatmap_cells", len(snap.Heatmap)),
		zap.Int("alerts", len(snap.Alerts)),
		zap.Duration("elapsed", time.Since(start)))
	return snap
}

// guard выполняет секцию и перехватывает панику
func (c *Composer) guard(snap *models.CurationSnapshot, section string, fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			snap.Meta.DegradedSections = append(snap.Meta.DegradedSections, section)
			c.logger.Error("curation section degraded",
				zap.String("section", section),
				zap.Any("panic", r))
		}
	}()
	fn()
	return true
}

// ValidateSnapshot проверяет, что все обязательные поля снапшота заполнены
func ValidateSnapshot(s models.CurationSnapshot) error {
	if err := snapshotValidate.Struct(s); err != nil {
		return fmt.Errorf("snapshot shape: %w", err)
	}
	return nil
}

// Digest сжатое представление снапшота для live-эндпоинта
func Digest(s models.CurationSnapshot) models.SnapshotDigest {
	d := models.SnapshotDigest{
		KPICount:       len(s.KPIs),
		AlertCount:     len(s.Alerts),
		CriticalAlerts: s.CriticalAlerts(),
	}
	if len(s.KPIs) > 0 {
		kpi := s.KPIs[0]
		d.LatestKPI = &kpi
	}
	return d
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
