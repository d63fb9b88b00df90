// Package analytics реализует детерминированную агрегацию операционных записей флота
// Включает KPI с моментумом, недельные тренды, heatmap загрузки и пороговые алерты
package analytics

import "math"

// RunningStats накапливает сумму, сумму квадратов и границы для набора значений
type RunningStats struct {
	count int
	sum   float64
	sumSq float64
	min   float64
	max   float64
}

// Add добавляет значение, нечисловые значения игнорируются
func (s *RunningStats) Add(value float64) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return
	}
	if s.count == 0 || value < s.min {
		s.min = value
	}
	if s.count == 0 || value > s.max {
		s.max = value
	}
	s.count++
	s.sum += value
	s.sumSq += value * value
}

// Count возвращает количество значений
func (s *RunningStats) Count() int {
	return s.count
}

// Sum возвращает сумму значений
func (s *RunningStats) Sum() float64 {
	return s.sum
}

// Mean возвращает среднее, 0 для пустого набора
func (s *RunningStats) Mean() float64 {
	if s.count == 0 {
		return 0
	}
	return s.sum / float64(s.count)
}

// Min возвращает минимум
func (s *RunningStats) Min() float64 {
	return s.min
}

// Max возвращает максимум
func (s *RunningStats) Max() float64 {
	return s.max
}

// StdDev возвращает выборочное стандартное отклонение
func (s *RunningStats) StdDev() float64 {
	if s.count < 2 {
		return 0
	}
	n := float64(s.count)
	variance := (s.sumSq - (s.sum*s.sum)/n) / (n - 1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// ZScore вычисляет z-score для заданного значения
func (s *RunningStats) ZScore(value float64) float64 {
	stdDev := s.StdDev()
	if stdDev == 0 {
		return 0
	}
	return (value - s.Mean()) / stdDev
}

// Normalize приводит значение к [0,1] по наблюдаемым min/max.
// Для вырожденного диапазона возвращает flat.
func (s *RunningStats) Normalize(value, flat float64) float64 {
	span := s.max - s.min
	if s.count == 0 || span <= 1e-9 {
		return flat
	}
	v := (value - s.min) / span
	return math.Min(1, math.Max(0, v))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
