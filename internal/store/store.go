// Package store хранит операционные записи флота в памяти
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"fleet-curation-service/internal/models"
)

// ErrMalformed возвращается, когда строка набора данных не содержит обязательных полей
var ErrMalformed = errors.New("malformed dataset row")

// Repository источник операционных записей для агрегации
type Repository interface {
	Records() []models.OperationalRecord
}

// MemoryStore неизменяемый упорядоченный набор записей
type MemoryStore struct {
	records []models.OperationalRecord
	skipped int
}

// NewMemoryStore копирует записи и упорядочивает их по времени
func NewMemoryStore(records []models.OperationalRecord) *MemoryStore {
	cp := make([]models.OperationalRecord, len(records))
	copy(cp, records)
	sort.SliceStable(cp, func(i, j int) bool {
		return cp[i].Timestamp.Before(cp[j].Timestamp)
	})
	return &MemoryStore{records: cp}
}

// Records возвращает копию записей, чтобы вызывающий код не мог изменить хранилище
func (s *MemoryStore) Records() []models.OperationalRecord {
	out := make([]models.OperationalRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Len возвращает количество записей
func (s *MemoryStore) Len() int {
	return len(s.records)
}

// Skipped возвращает количество строк, отброшенных при загрузке
func (s *MemoryStore) Skipped() int {
	return s.skipped
}

// recordWire принимает строку JSON; указатели отличают отсутствующее поле от нуля
type recordWire struct {
	Facility           *string    `json:"facility"`
	City               string     `json:"city"`
	Region             string     `json:"region"`
	RobotModel         string     `json:"robotModel"`
	Shift              *string    `json:"shift"`
	Timestamp          *time.Time `json:"timestamp"`
	OrdersServed       *int       `json:"ordersServed"`
	Uptime             *float64   `json:"uptime"`
	NPS                *int       `json:"nps"`
	Incidents          *int       `json:"incidents"`
	AvgTurnTimeSeconds *float64   `json:"avgTurnTimeSeconds"`
	EnergyKwh          *float64   `json:"energyKwh"`
	StaffingDelta      int        `json:"staffingDelta"`
	Vertical           string     `json:"vertical"`
}

func (w recordWire) toRecord() (models.OperationalRecord, error) {
	missing := func(name string) error { return fmt.Errorf("%w: missing %s", ErrMalformed, name) }
	switch {
	case w.Facility == nil:
		return models.OperationalRecord{}, missing("facility")
	case w.Shift == nil:
		return models.OperationalRecord{}, missing("shift")
	case w.Timestamp == nil:
		return models.OperationalRecord{}, missing("timestamp")
	case w.OrdersServed == nil:
		return models.OperationalRecord{}, missing("ordersServed")
	case w.Uptime == nil:
		return models.OperationalRecord{}, missing("uptime")
	case w.NPS == nil:
		return models.OperationalRecord{}, missing("nps")
	case w.Incidents == nil:
		return models.OperationalRecord{}, missing("incidents")
	case w.AvgTurnTimeSeconds == nil:
		return models.OperationalRecord{}, missing("avgTurnTimeSeconds")
	case w.EnergyKwh == nil:
		return models.OperationalRecord{}, missing("energyKwh")
	}
	return models.OperationalRecord{
		Facility:           *w.Facility,
		City:               w.City,
		Region:             models.Region(w.Region),
		RobotModel:         w.RobotModel,
		Shift:              models.Shift(*w.Shift),
		Timestamp:          *w.Timestamp,
		OrdersServed:       *w.OrdersServed,
		Uptime:             *w.Uptime,
		NPS:                *w.NPS,
		Incidents:          *w.Incidents,
		AvgTurnTimeSeconds: *w.AvgTurnTimeSeconds,
		EnergyKwh:          *w.EnergyKwh,
		StaffingDelta:      w.StaffingDelta,
		Vertical:           w.Vertical,
	}, nil
}

// LoadJSON читает JSON-массив записей. Строки без обязательных полей пропускаются и считаются.
func LoadJSON(r io.Reader) (*MemoryStore, error) {
	var rows []json.RawMessage
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}

	records := make([]models.OperationalRecord, 0, len(rows))
	skipped := 0
	for _, raw := range rows {
		var w recordWire
		if err := json.Unmarshal(raw, &w); err != nil {
			skipped++
			continue
		}
		rec, err := w.toRecord()
		if err != nil {
			skipped++
			continue
		}
		records = append(records, rec)
	}

	s := NewMemoryStore(records)
	s.skipped = skipped
	return s, nil
}

// LoadFile открывает набор данных из файла
func LoadFile(path string) (*MemoryStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()
	return LoadJSON(f)
}

// Open возвращает хранилище из файла или встроенный набор, если путь пуст
func Open(path string) (*MemoryStore, error) {
	if path == "" {
		return NewMemoryStore(SeedRecords()), nil
	}
	return LoadFile(path)
}
