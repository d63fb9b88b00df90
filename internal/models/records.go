// Package models содержит структуры данных операционных записей, снапшота курирования и API
package models

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
)

// Shift смена на объекте
type Shift string

const (
	ShiftMorning   Shift = "morning"
	ShiftAfternoon Shift = "afternoon"
	ShiftEvening   Shift = "evening"
	ShiftNight     Shift = "night"
)

// Shifts возвращает смены в порядке суток
func Shifts() []Shift {
	return []Shift{ShiftMorning, ShiftAfternoon, ShiftEvening, ShiftNight}
}

// Rank возвращает порядковый номер смены, -1 для неизвестной
func (s Shift) Rank() int {
	for i, sh := range Shifts() {
		if sh == s {
			return i
		}
	}
	return -1
}

// Region регион присутствия флота
type Region string

const (
	RegionAPAC Region = "APAC"
	RegionEMEA Region = "EMEA"
	RegionAMER Region = "AMER"
)

// ErrMalformedRecord возвращается для записей, которые нельзя агрегировать
var ErrMalformedRecord = errors.New("malformed operational record")

// OperationalRecord одна смена на одном объекте
type OperationalRecord struct {
	Facility           string    `json:"facility" validate:"required"`
	City               string    `json:"city"`
	Region             Region    `json:"region" validate:"omitempty,oneof=APAC EMEA AMER"`
	RobotModel         string    `json:"robotModel"`
	Shift              Shift     `json:"shift" validate:"required,oneof=morning afternoon evening night"`
	Timestamp          time.Time `json:"timestamp" validate:"required"`
	OrdersServed       int       `json:"ordersServed" validate:"gte=0"`
	Uptime             float64   `json:"uptime" validate:"gte=0,lte=100"`
	NPS                int       `json:"nps" validate:"gte=-100,lte=100"`
	Incidents          int       `json:"incidents" validate:"gte=0"`
	AvgTurnTimeSeconds float64   `json:"avgTurnTimeSeconds" validate:"gte=0"`
	EnergyKwh          float64   `json:"energyKwh" validate:"gte=0"`
	StaffingDelta      int       `json:"staffingDelta"`
	Vertical           string    `json:"vertical"`
}

var recordValidate = validator.New()

// Validate проверяет запись перед агрегацией
func (r OperationalRecord) Validate() error {
	for name, v := range map[string]float64{
		"uptime":             r.Uptime,
		"avgTurnTimeSeconds": r.AvgTurnTimeSeconds,
		"energyKwh":          r.EnergyKwh,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrMalformedRecord, name)
		}
	}
	if err := recordValidate.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return nil
}
