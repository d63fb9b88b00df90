package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"fleet-curation-service/internal/models"
)

const insightsSystemPrompt = "You are an operations analyst for a robotics fleet. " +
	"Answer concisely using only the snapshot below. Quote KPI values exactly as given.\n\n"

// Insights генерирует комментарий к снапшоту
type Insights struct {
	provider Provider
	timeout  time.Duration
	logger   *zap.Logger
}

// NewInsights создает сервис; provider может быть nil
func NewInsights(provider Provider, timeout time.Duration, logger *zap.Logger) *Insights {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Insights{provider: provider, timeout: timeout, logger: logger}
}

// Generate без провайдера возвращает детерминированную сводку.
// Ошибка провайдера после попытки вызова возвращается вызывающему.
func (s *Insights) Generate(ctx context.Context, prompt string, snap models.CurationSnapshot) (string, Mode, error) {
	if s.provider == nil {
		return FallbackInsight(prompt, snap), ModeFallback, nil
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	content, err := s.provider.Complete(ctx, insightsSystemPrompt+SnapshotSummary(snap),
		[]models.ChatMessage{{Role: "user", Content: prompt}})
	if err != nil {
		s.logger.Error("insights provider call failed", zap.Error(err))
		return "", ModeError, fmt.Errorf("insights provider: %w", err)
	}
	return content, ModeProvider, nil
}

// FallbackInsight строит помеченный ответ из сводки снапшота
func FallbackInsight(prompt string, snap models.CurationSnapshot) string {
	var b strings.Builder
	b.WriteString("[Fallback insight: AI provider not configured]\n")
	if p := strings.TrimSpace(prompt); p != "" {
		fmt.Fprintf(&b, "Request: %s\n", p)
	}
	b.WriteString(SnapshotSummary(snap))
	return b.String()
}

// SnapshotSummary текстовая сводка KPI и алертов
func SnapshotSummary(snap models.CurationSnapshot) string {
	var b strings.Builder
	if len(snap.KPIs) == 0 {
		b.WriteString("KPIs: no data.\n")
	} else {
		b.WriteString("KPIs:\n")
		for _, k := range snap.KPIs {
			fmt.Fprintf(&b, "- %s: %s (%s, %s)\n", k.Label, k.Value, k.Delta, k.Momentum)
		}
	}

	fmt.Fprintf(&b, "Alerts: %d active, %d critical.\n", len(snap.Alerts), snap.CriticalAlerts())
	for i, a := range snap.Alerts {
		if i == 3 {
			fmt.Fprintf(&b, "- ... and %d more\n", len(snap.Alerts)-3)
			break
		}
		fmt.Fprintf(&b, "- [%s] %s: %s Owner: %s, ETA %dh.\n", a.Severity, a.Title, a.Detail, a.Owner, a.ETAHours)
	}

	if n := len(snap.Trend); n > 0 {
		last := snap.Trend[n-1]
		fmt.Fprintf(&b, "Latest week %s: %d orders, %.1f%% uptime, %d incidents.\n",
			last.Week, last.Throughput, last.Uptime, last.Incidents)
	}
	return b.String()
}
