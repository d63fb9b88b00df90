package analytics

import (
	"time"

	"fleet-curation-service/internal/models"
)

type trendBucket struct {
	throughput   int
	incidents    int
	uptime       RunningStats
	satisfaction RunningStats
}

// BuildTrend раскладывает записи по ISO-неделям.
// Ряд покрывает весь интервал от первой до последней недели без пропусков и упорядочен по времени;
// в пустых неделях счетчики нулевые, а средние переносятся с предыдущей точки.
func BuildTrend(records []models.OperationalRecord) []models.TrendPoint {
	valid, _ := Sanitize(records)
	points := make([]models.TrendPoint, 0)
	if len(valid) == 0 {
		return points
	}

	buckets := make(map[time.Time]*trendBucket)
	first, last := WeekStart(valid[0].Timestamp), WeekStart(valid[0].Timestamp)
	for _, r := range valid {
		ws := WeekStart(r.Timestamp)
		b, ok := buckets[ws]
		if !ok {
			b = &trendBucket{}
			buckets[ws] = b
		}
		b.throughput += r.OrdersServed
		b.incidents += r.Incidents
		b.uptime.Add(r.Uptime)
		b.satisfaction.Add(float64(r.NPS))

		if ws.Before(first) {
			first = ws
		}
		if ws.After(last) {
			last = ws
		}
	}

	var prev models.TrendPoint
	for ws := first; !ws.After(last); ws = ws.Add(week) {
		p := models.TrendPoint{Week: WeekLabel(ws), WeekStart: ws}
		if b, ok := buckets[ws]; ok {
			p.Throughput = b.throughput
			p.Incidents = b.incidents
			p.Uptime = round(b.uptime.Mean(), 2)
			p.Satisfaction = round(b.satisfaction.Mean(), 2)
		} else {
			p.Uptime = prev.Uptime
			p.Satisfaction = prev.Satisfaction
		}
		points = append(points, p)
		prev = p
	}
	return points
}
