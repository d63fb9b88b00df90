package store

import (
	"math"
	"math/rand"
	"time"

	"fleet-curation-service/internal/models"
)

type facilityProfile struct {
	name       string
	city       string
	region     models.Region
	robotModel string
	vertical   string
	baseOrders int
	baseUptime float64
	baseNPS    int
}

var fleetProfiles = []facilityProfile{
	{"Austin Hub", "Austin", models.RegionAMER, "Porter-5", "grocery", 420, 97.5, 64},
	{"Berlin Depot", "Berlin", models.RegionEMEA, "Courier-X", "pharmacy", 310, 96.0, 58},
	{"London Central", "London", models.RegionEMEA, "Courier-X", "quick-service", 380, 97.0, 61},
	{"Seoul", "Seoul", models.RegionAPAC, "Atlas-R2", "quick-service", 500, 98.2, 70},
	{"Singapore Bay", "Singapore", models.RegionAPAC, "Atlas-R2", "grocery", 460, 98.0, 67},
	{"Sydney Harbour", "Sydney", models.RegionAPAC, "Porter-5", "pharmacy", 260, 95.5, 55},
	{"Tokyo Shibuya", "Tokyo", models.RegionAPAC, "Atlas-R2", "quick-service", 540, 98.6, 72},
	{"Toronto North", "Toronto", models.RegionAMER, "Porter-5", "grocery", 340, 96.4, 59},
}

var shiftLoad = map[models.Shift]float64{
	models.ShiftMorning:   1.0,
	models.ShiftAfternoon: 1.25,
	models.ShiftEvening:   1.1,
	models.ShiftNight:     0.45,
}

var shiftHour = map[models.Shift]int{
	models.ShiftMorning:   6,
	models.ShiftAfternoon: 12,
	models.ShiftEvening:   18,
	models.ShiftNight:     0,
}

const (
	seedWeeks = 8
	seedValue = 20250106
)

// seedStart понедельник первой недели встроенного набора
var seedStart = time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)

// SeedRecords строит встроенный набор данных флота.
// Генератор засеян константой, поэтому набор одинаков при каждом запуске.
// В последнюю неделю Berlin Depot теряет аптайм, а Sydney Harbour копит инциденты.
func SeedRecords() []models.OperationalRecord {
	rng := rand.New(rand.NewSource(seedValue))
	days := seedWeeks * 7
	out := make([]models.OperationalRecord, 0, len(fleetProfiles)*len(shiftLoad)*days)

	for day := 0; day < days; day++ {
		date := seedStart.AddDate(0, 0, day)
		lastWeek := day >= days-7
		for _, p := range fleetProfiles {
			for _, shift := range models.Shifts() {
				load := shiftLoad[shift]
				orders := int(float64(p.baseOrders)*load*(0.9+0.2*rng.Float64()) + float64(day))
				uptime := p.baseUptime + rng.NormFloat64()*0.8
				incidents := 0
				if rng.Float64() < 0.08 {
					incidents = 1
				}

				if lastWeek && p.name == "Berlin Depot" {
					uptime -= 14
				}
				if lastWeek && p.name == "Sydney Harbour" && shift == models.ShiftEvening {
					incidents += 1 + rng.Intn(2)
				}

				out = append(out, models.OperationalRecord{
					Facility:           p.name,
					City:               p.city,
					Region:             p.region,
					RobotModel:         p.robotModel,
					Shift:              shift,
					Timestamp:          date.Add(time.Duration(shiftHour[shift]) * time.Hour),
					OrdersServed:       orders,
					Uptime:             math.Round(math.Min(100, math.Max(0, uptime))*10) / 10,
					NPS:                p.baseNPS + rng.Intn(11) - 5,
					Incidents:          incidents,
					AvgTurnTimeSeconds: math.Round((24+rng.Float64()*8)*10) / 10,
					EnergyKwh:          math.Round(float64(orders)*(0.1+0.03*rng.Float64())*100) / 100,
					StaffingDelta:      rng.Intn(5) - 2,
					Vertical:           p.vertical,
				})
			}
		}
	}
	return out
}
