package analytics

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Thresholds собирает все пороги агрегации в одном месте
type Thresholds struct {
	// WindowBuckets длина текущего и предыдущего окна в неделях
	WindowBuckets int `yaml:"windowBuckets"`
	// MomentumEpsilon относительное изменение, в пределах которого KPI считается steady
	MomentumEpsilon float64 `yaml:"momentumEpsilon"`

	// ShiftHours длительность одной смены
	ShiftHours float64 `yaml:"shiftHours"`
	// FlatDemandScore demandScore для всех ячеек, когда спрос одинаков
	FlatDemandScore float64 `yaml:"flatDemandScore"`
	// UtilizationCeiling потолок отображаемой загрузки
	UtilizationCeiling float64 `yaml:"utilizationCeiling"`

	UptimeCriticalBelow    float64 `yaml:"uptimeCriticalBelow"`
	UptimeHighBelow        float64 `yaml:"uptimeHighBelow"`
	IncidentsHighAtLeast   int     `yaml:"incidentsHighAtLeast"`
	IncidentsMediumAtLeast int     `yaml:"incidentsMediumAtLeast"`
	// ThroughputDropRatio падение заказов относительно предыдущего окна (0.25 = 25%)
	ThroughputDropRatio float64 `yaml:"throughputDropRatio"`
	NPSLowBelow         float64 `yaml:"npsLowBelow"`
	// IncidentZScore порог отклонения инцидентов объекта от флота (> 2σ)
	IncidentZScore              float64 `yaml:"incidentZScore"`
	IncidentZScoreMinFacilities int     `yaml:"incidentZScoreMinFacilities"`
}

// DefaultThresholds возвращает пороги по умолчанию
func DefaultThresholds() Thresholds {
	return Thresholds{
		WindowBuckets:               1,
		MomentumEpsilon:             0.01,
		ShiftHours:                  6,
		FlatDemandScore:             0.5,
		UtilizationCeiling:          100,
		UptimeCriticalBelow:         70,
		UptimeHighBelow:             85,
		IncidentsHighAtLeast:        6,
		IncidentsMediumAtLeast:      3,
		ThroughputDropRatio:         0.25,
		NPSLowBelow:                 30,
		IncidentZScore:              2.0,
		IncidentZScoreMinFacilities: 3,
	}
}

// Validate проверяет согласованность порогов
func (t Thresholds) Validate() error {
	switch {
	case t.WindowBuckets < 1:
		return fmt.Errorf("windowBuckets must be >= 1, got %d", t.WindowBuckets)
	case t.MomentumEpsilon < 0:
		return fmt.Errorf("momentumEpsilon must be >= 0, got %v", t.MomentumEpsilon)
	case t.ShiftHours <= 0:
		return fmt.Errorf("shiftHours must be > 0, got %v", t.ShiftHours)
	case t.FlatDemandScore < 0 || t.FlatDemandScore > 1:
		return fmt.Errorf("flatDemandScore must be within [0,1], got %v", t.FlatDemandScore)
	case t.UtilizationCeiling <= 0 || t.UtilizationCeiling > 100:
		return fmt.Errorf("utilizationCeiling must be within (0,100], got %v", t.UtilizationCeiling)
	case t.UptimeCriticalBelow > t.UptimeHighBelow:
		return fmt.Errorf("uptimeCriticalBelow (%v) must not exceed uptimeHighBelow (%v)", t.UptimeCriticalBelow, t.UptimeHighBelow)
	case t.IncidentsMediumAtLeast < 1 || t.IncidentsMediumAtLeast > t.IncidentsHighAtLeast:
		return fmt.Errorf("incident bands must satisfy 1 <= medium (%d) <= high (%d)", t.IncidentsMediumAtLeast, t.IncidentsHighAtLeast)
	case t.ThroughputDropRatio <= 0 || t.ThroughputDropRatio > 1:
		return fmt.Errorf("throughputDropRatio must be within (0,1], got %v", t.ThroughputDropRatio)
	case t.IncidentZScoreMinFacilities < 2:
		return fmt.Errorf("incidentZScoreMinFacilities must be >= 2, got %d", t.IncidentZScoreMinFacilities)
	}
	return nil
}

// LoadThresholds читает YAML поверх значений по умолчанию
func LoadThresholds(r io.Reader) (Thresholds, error) {
	t := DefaultThresholds()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil && err != io.EOF {
		return Thresholds{}, fmt.Errorf("failed to decode thresholds: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Thresholds{}, fmt.Errorf("invalid thresholds: %w", err)
	}
	return t, nil
}

// LoadThresholdsFile читает пороги из файла, пустой путь дает значения по умолчанию
func LoadThresholdsFile(path string) (Thresholds, error) {
	if path == "" {
		return DefaultThresholds(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Thresholds{}, fmt.Errorf("failed to open thresholds file: %w", err)
	}
	defer f.Close()
	return LoadThresholds(f)
}
