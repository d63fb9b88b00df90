package analytics

import (
	"math"
	"sort"

	"fleet-curation-service/internal/models"
)

type cellKey struct {
	facility string
	shift    models.Shift
}

type cellAgg struct {
	records  int
	orders   int
	busySec  float64
	availSec float64
}

// BuildHeatmap строит ячейку для каждой встреченной пары объект × смена.
//
// demandScore = min-max нормализация заказов на робото-час по всем ячейкам текущего вызова.
// utilization = 100 · Σ(orders · turnTime) / Σ(shiftHours · 3600 · uptime/100), без ограничения сверху;
// displayUtilization ограничен потолком для отрисовки.
func BuildHeatmap(records []models.OperationalRecord, t Thresholds) []models.HeatmapCell {
	valid, _ := Sanitize(records)
	cells := make([]models.HeatmapCell, 0)
	if len(valid) == 0 {
		return cells
	}

	shiftSec := t.ShiftHours * 3600
	aggs := make(map[cellKey]*cellAgg)
	for _, r := range valid {
		k := cellKey{facility: r.Facility, shift: r.Shift}
		a, ok := aggs[k]
		if !ok {
			a = &cellAgg{}
			aggs[k] = a
		}
		a.records++
		a.orders += r.OrdersServed
		a.busySec += float64(r.OrdersServed) * r.AvgTurnTimeSeconds
		a.availSec += shiftSec * r.Uptime / 100
	}

	keys := make([]cellKey, 0, len(aggs))
	for k := range aggs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].facility != keys[j].facility {
			return keys[i].facility < keys[j].facility
		}
		return keys[i].shift.Rank() < keys[j].shift.Rank()
	})

	demand := make([]float64, len(keys))
	var bounds RunningStats
	for i, k := range keys {
		a := aggs[k]
		demand[i] = float64(a.orders) / (float64(a.records) * t.ShiftHours)
		bounds.Add(demand[i])
	}

	for i, k := range keys {
		a := aggs[k]
		util := 0.0
		if a.availSec > 0 {
			util = round(100*a.busySec/a.availSec, 2)
		}
		cells = append(cells, models.HeatmapCell{
			Facility:           k.facility,
			Shift:              k.shift,
			DemandScore:        round(bounds.Normalize(demand[i], t.FlatDemandScore), 4),
			Utilization:        util,
			DisplayUtilization: math.Min(util, t.UtilizationCeiling),
		})
	}
	return cells
}
