package analytics

import (
	"fmt"
	"sort"
	"time"

	"fleet-curation-service/internal/models"
)

const week = 7 * 24 * time.Hour

// WeekStart возвращает начало ISO-недели (понедельник 00:00 UTC)
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -offset)
}

// WeekLabel возвращает метку ISO-недели вида 2025-W03
func WeekLabel(t time.Time) string {
	year, w := t.UTC().ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, w)
}

// Sanitize отбрасывает некорректные записи и возвращает их количество.
// Порядок корректных записей сохраняется.
func Sanitize(records []models.OperationalRecord) ([]models.OperationalRecord, int) {
	valid := make([]models.OperationalRecord, 0, len(records))
	skipped := 0
	for _, r := range records {
		if err := r.Validate(); err != nil {
			skipped++
			continue
		}
		valid = append(valid, r)
	}
	return valid, skipped
}

// windowSplit делит записи на текущее и предыдущее окно одинаковой длины
type windowSplit struct {
	Current      []models.OperationalRecord
	Prior        []models.OperationalRecord
	Buckets      int
	CurrentStart time.Time
	LatestStart  time.Time
}

// spannedWeeks считает недели от первой до последней включительно
func spannedWeeks(first, last time.Time) int {
	return int(last.Sub(first)/week) + 1
}

// splitWindows ожидает уже очищенные записи.
// Если данных меньше чем на 2N недель, N уменьшается до max(1, span/2).
func splitWindows(records []models.OperationalRecord, n int) windowSplit {
	if len(records) == 0 {
		return windowSplit{Buckets: n}
	}
	first, last := WeekStart(records[0].Timestamp), WeekStart(records[0].Timestamp)
	for _, r := range records[1:] {
		ws := WeekStart(r.Timestamp)
		if ws.Before(first) {
			first = ws
		}
		if ws.After(last) {
			last = ws
		}
	}

	span := spannedWeeks(first, last)
	if span < 2*n {
		n = span / 2
		if n < 1 {
			n = 1
		}
	}

	currentStart := last.Add(-time.Duration(n-1) * week)
	priorStart := currentStart.Add(-time.Duration(n) * week)

	split := windowSplit{Buckets: n, CurrentStart: currentStart, LatestStart: last}
	for _, r := range records {
		ws := WeekStart(r.Timestamp)
		switch {
		case !ws.Before(currentStart):
			split.Current = append(split.Current, r)
		case !ws.Before(priorStart):
			split.Prior = append(split.Prior, r)
		}
	}
	return split
}

// windowLabel описывает текущее окно для текстов алертов
func (w windowSplit) windowLabel() string {
	if w.Buckets <= 1 || w.CurrentStart.Equal(w.LatestStart) {
		return WeekLabel(w.CurrentStart)
	}
	return WeekLabel(w.CurrentStart) + ".." + WeekLabel(w.LatestStart)
}

// facilities возвращает отсортированный список объектов
func facilities(records []models.OperationalRecord) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		seen[r.Facility] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
