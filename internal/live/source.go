// Package live генерирует случайные live-точки для анимации дашборда.
// Эти значения не попадают в хранилище операционных записей.
package live

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"fleet-curation-service/internal/models"
)

// Типы live-сигналов
const (
	TypeOperations = "operations"
	TypeMetrics    = "metrics"
	TypeTraining   = "training"
	TypeAPI        = "api"
	TypeAll        = "all"
)

// Types возвращает одиночные типы сигналов
func Types() []string {
	return []string{TypeOperations, TypeMetrics, TypeTraining, TypeAPI}
}

// Source поставщик свежих синтетических точек, по одной на вызов
type Source interface {
	GenerateLiveDataPoint() models.LiveOperationPoint
	GenerateLiveMetrics() models.LiveMetrics
	GenerateTrainingUpdate() models.TrainingUpdate
	GenerateAPIMetrics() models.APIMetrics
}

// RandomSource реализация Source на math/rand, безопасна для конкурентного использования
type RandomSource struct {
	mu         sync.Mutex
	rng        *rand.Rand
	now        func() time.Time
	facilities []string
	modelNames []string
	endpoints  []string
}

// Option настройка RandomSource
type Option func(*RandomSource)

// WithSeed фиксирует зерно генератора
func WithSeed(seed int64) Option {
	return func(s *RandomSource) { s.rng = rand.New(rand.NewSource(seed)) }
}

// WithClock подменяет источник времени
func WithClock(now func() time.Time) Option {
	return func(s *RandomSource) { s.now = now }
}

// WithFacilities задает список объектов для операционных точек
func WithFacilities(names []string) Option {
	return func(s *RandomSource) {
		if len(names) > 0 {
			s.facilities = append([]string(nil), names...)
		}
	}
}

// NewRandomSource создает генератор
func NewRandomSource(opts ...Option) *RandomSource {
	s := &RandomSource{
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		now:        time.Now,
		facilities: []string{"Austin Hub", "Berlin Depot", "London Central", "Seoul", "Singapore Bay", "Sydney Harbour", "Tokyo Shibuya", "Toronto North"},
		modelNames: []string{"route-planner-v4", "grasp-vision-v2", "demand-forecast-v1"},
		endpoints:  []string{"/api/curation", "/api/live", "/api/insights", "/api/knowledge"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateLiveDataPoint возвращает операционную точку для случайного объекта
func (s *RandomSource) GenerateLiveDataPoint() models.LiveOperationPoint {
	s.mu.Lock()
	defer s.mu.Unlock()

	shifts := models.Shifts()
	return models.LiveOperationPoint{
		ID:           uuid.NewString(),
		Timestamp:    s.now().UTC(),
		Facility:     s.facilities[s.rng.Intn(len(s.facilities))],
		Shift:        shifts[s.rng.Intn(len(shifts))],
		OrdersServed: 40 + s.rng.Intn(80),
		Uptime:       round1(math.Min(100, 92+s.rng.Float64()*8)),
		Incidents:    s.incidentDraw(),
		ActiveRobots: 8 + s.rng.Intn(17),
	}
}

// GenerateLiveMetrics возвращает срез агрегатов флота
func (s *RandomSource) GenerateLiveMetrics() models.LiveMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()

	return models.LiveMetrics{
		ID:              uuid.NewString(),
		Timestamp:       s.now().UTC(),
		OrdersPerMinute: round1(180 + s.rng.Float64()*120),
		FleetUptime:     round1(95 + s.rng.Float64()*4.5),
		ActiveRobots:    140 + s.rng.Intn(40),
		QueueDepth:      s.rng.Intn(60),
		EnergyKw:        round1(310 + s.rng.Float64()*90),
	}
}

// GenerateTrainingUpdate возвращает прогресс обучения случайной модели
func (s *RandomSource) GenerateTrainingUpdate() models.TrainingUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()

	epoch := 1 + s.rng.Intn(50)
	progress := epoch * 2
	loss := 1.2*math.Exp(-float64(epoch)/18) + s.rng.Float64()*0.05
	return models.TrainingUpdate{
		ID:        uuid.NewString(),
		Timestamp: s.now().UTC(),
		Model:     s.modelNames[s.rng.Intn(len(s.modelNames))],
		Epoch:     epoch,
		Loss:      math.Round(loss*10000) / 10000,
		Accuracy:  math.Round(math.Min(0.99, 0.6+float64(epoch)*0.007+s.rng.Float64()*0.02)*10000) / 10000,
		Progress:  progress,
	}
}

// GenerateAPIMetrics возвращает нагрузку на случайный эндпоинт
func (s *RandomSource) GenerateAPIMetrics() models.APIMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()

	return models.APIMetrics{
		ID:           uuid.NewString(),
		Timestamp:    s.now().UTC(),
		Endpoint:     s.endpoints[s.rng.Intn(len(s.endpoints))],
		RequestsPerS: round1(20 + s.rng.Float64()*180),
		LatencyP95Ms: round1(8 + s.rng.Float64()*60),
		ErrorRate:    math.Round(s.rng.Float64()*0.02*10000) / 10000,
	}
}

// incidentDraw вызывается под мьютексом
func (s *RandomSource) incidentDraw() int {
	if s.rng.Float64() < 0.1 {
		return 1
	}
	return 0
}

// Generate возвращает точку запрошенного одиночного типа
func Generate(src Source, kind string) (any, bool) {
	switch kind {
	case TypeOperations:
		return src.GenerateLiveDataPoint(), true
	case TypeMetrics:
		return src.GenerateLiveMetrics(), true
	case TypeTraining:
		return src.GenerateTrainingUpdate(), true
	case TypeAPI:
		return src.GenerateAPIMetrics(), true
	}
	return nil, false
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
