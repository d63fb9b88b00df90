package analytics

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"fleet-curation-service/internal/models"
)

// DeltaUnavailable отображается, когда сравнение с предыдущим окном невозможно
const DeltaUnavailable = "n/a"

// KPIResult результат агрегации KPI
type KPIResult struct {
	Cards         []models.KPICard
	Skipped       int
	WindowBuckets int
}

// kpiDef описывает одну карточку: как считать скаляр окна и как его показать.
// compute возвращает ok=false, если окно не дает значения (пусто или нулевой знаменатель).
type kpiDef struct {
	id          string
	label       string
	description string
	compute     func(rs []models.OperationalRecord) (float64, bool)
	format      func(v float64) string
}

var kpiDefs = []kpiDef{
	{
		id:          "orders-automated",
		label:       "Orders Automated",
		description: "Total orders served by the fleet in the current window",
		compute: func(rs []models.OperationalRecord) (float64, bool) {
			if len(rs) == 0 {
				return 0, false
			}
			total := 0
			for _, r := range rs {
				total += r.OrdersServed
			}
			return float64(total), true
		},
		format: func(v float64) string { return humanize.Comma(int64(math.Round(v))) },
	},
	{
		id:          "fleet-uptime",
		label:       "Fleet Uptime",
		description: "Mean robot uptime across all shifts in the current window",
		compute: meanOf(func(r models.OperationalRecord) float64 { return r.Uptime }),
		format:  func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
	},
	{
		id:          "avg-nps",
		label:       "Average NPS",
		description: "Mean customer satisfaction score in the current window",
		compute: meanOf(func(r models.OperationalRecord) float64 { return float64(r.NPS) }),
		format:  func(v float64) string { return fmt.Sprintf("%.0f", v) },
	},
	{
		id:          "incident-rate",
		label:       "Incident Rate",
		description: "Incidents per 1,000 orders served in the current window",
		compute: func(rs []models.OperationalRecord) (float64, bool) {
			orders, incidents := 0, 0
			for _, r := range rs {
				orders += r.OrdersServed
				incidents += r.Incidents
			}
			if orders == 0 {
				return 0, false
			}
			return float64(incidents) * 1000 / float64(orders), true
		},
		format: func(v float64) string { return fmt.Sprintf("%.2f / 1k orders", v) },
	},
	{
		id:          "avg-turn-time",
		label:       "Average Turn Time",
		description: "Mean seconds a robot needs to complete one order",
		compute: meanOf(func(r models.OperationalRecord) float64 { return r.AvgTurnTimeSeconds }),
		format:  func(v float64) string { return fmt.Sprintf("%.1fs", v) },
	},
	{
		id:          "energy-per-order",
		label:       "Energy per Order",
		description: "Energy consumed per served order in the current window",
		compute: func(rs []models.OperationalRecord) (float64, bool) {
			orders, energy := 0, 0.0
			for _, r := range rs {
				orders += r.OrdersServed
				energy += r.EnergyKwh
			}
			if orders == 0 {
				return 0, false
			}
			return energy / float64(orders), true
		},
		format: func(v float64) string { return fmt.Sprintf("%.3f kWh", v) },
	},
}

// KPICount фиксированное количество карточек
func KPICount() int {
	return len(kpiDefs)
}

func meanOf(field func(models.OperationalRecord) float64) func([]models.OperationalRecord) (float64, bool) {
	return func(rs []models.OperationalRecord) (float64, bool) {
		var s RunningStats
		for _, r := range rs {
			s.Add(field(r))
		}
		if s.Count() == 0 {
			return 0, false
		}
		return s.Mean(), true
	}
}

// Aggregate сворачивает записи в фиксированный упорядоченный список KPI
func Aggregate(records []models.OperationalRecord, t Thresholds) KPIResult {
	valid, skipped := Sanitize(records)
	split := splitWindows(valid, t.WindowBuckets)

	cards := make([]models.KPICard, 0, len(kpiDefs))
	for _, def := range kpiDefs {
		current, currentOK := def.compute(split.Current)
		prior, priorOK := def.compute(split.Prior)
		if !currentOK || math.IsNaN(current) || math.IsInf(current, 0) {
			current, currentOK = 0, false
		}
		momentum, delta := Momentum(current, currentOK, prior, priorOK, t.MomentumEpsilon)
		cards = append(cards, models.KPICard{
			ID:          def.id,
			Label:       def.label,
			Value:       def.format(current),
			Momentum:    momentum,
			Delta:       delta,
			Description: def.description,
		})
	}

	return KPIResult{Cards: cards, Skipped: skipped, WindowBuckets: split.Buckets}
}

// Momentum сравнивает текущее окно с предыдущим.
// Изменение считается относительно |prior|, чтобы знак отражал направление и для отрицательных NPS.
func Momentum(current float64, currentOK bool, prior float64, priorOK bool, epsilon float64) (models.Momentum, string) {
	if !currentOK || !priorOK || prior == 0 {
		return models.MomentumSteady, DeltaUnavailable
	}
	delta := (current - prior) / math.Abs(prior)
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return models.MomentumSteady, DeltaUnavailable
	}

	label := fmt.Sprintf("%+.1f%%", delta*100)
	if math.Abs(delta*100) < 0.05 {
		label = "0.0%"
	}

	switch {
	case math.Abs(delta) <= epsilon:
		return models.MomentumSteady, label
	case delta > 0:
		return models.MomentumUp, label
	default:
		return models.MomentumDown, label
	}
}
