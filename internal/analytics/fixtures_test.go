package analytics

import (
	"time"

	"fleet-curation-service/internal/models"
)

// Monday of ISO week 2025-W02
var week1 = time.Date(2025, time.January, 6, 8, 0, 0, 0, time.UTC)

func weekOf(n int) time.Time {
	return week1.Add(time.Duration(n-1) * week)
}

// rec builds a valid record with neutral defaults for the fields a test does not care about
func rec(facility string, shift models.Shift, ts time.Time, uptime float64, orders, incidents int) models.OperationalRecord {
	return models.OperationalRecord{
		Facility:           facility,
		City:               facility,
		Region:             models.RegionAPAC,
		Shift:              shift,
		Timestamp:          ts,
		OrdersServed:       orders,
		Uptime:             uptime,
		NPS:                60,
		Incidents:          incidents,
		AvgTurnTimeSeconds: 30,
		EnergyKwh:          50,
	}
}

// seoulScenario two weekly buckets for one facility: uptime collapses and incidents appear
func seoulScenario() []models.OperationalRecord {
	return []models.OperationalRecord{
		rec("Seoul", models.ShiftMorning, weekOf(1), 98, 500, 0),
		rec("Seoul", models.ShiftMorning, weekOf(2), 60, 100, 5),
	}
}
