package analytics

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"fleet-curation-service/internal/models"
)

// Категории алертов
const (
	CategoryUptime       = "uptime"
	CategoryIncidents    = "incidents"
	CategoryThroughput   = "throughput"
	CategorySatisfaction = "satisfaction"
)

// alertNamespace пространство имен UUID v5 для детерминированных идентификаторов алертов
var alertNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("fleet-curation-service/alerts"))

// Routing владелец и срок реакции для категории и уровня
type Routing struct {
	Owner    string
	ETAHours int
}

type routingKey struct {
	category string
	severity models.Severity
}

var routingTable = map[routingKey]Routing{
	{CategoryUptime, models.SeverityCritical}:   {Owner: "Fleet Reliability On-call", ETAHours: 2},
	{CategoryUptime, models.SeverityHigh}:       {Owner: "Site Maintenance Lead", ETAHours: 6},
	{CategoryIncidents, models.SeverityHigh}:    {Owner: "Safety & Incident Desk", ETAHours: 4},
	{CategoryIncidents, models.SeverityMedium}:  {Owner: "Safety & Incident Desk", ETAHours: 12},
	{CategoryThroughput, models.SeverityMedium}: {Owner: "Operations Planning", ETAHours: 24},
	{CategorySatisfaction, models.SeverityLow}:  {Owner: "Customer Experience Team", ETAHours: 48},
}

var defaultRouting = Routing{Owner: "Operations Control Center", ETAHours: 24}

// RouteAlert возвращает владельца и ETA по таблице маршрутизации
func RouteAlert(category string, severity models.Severity) Routing {
	if r, ok := routingTable[routingKey{category, severity}]; ok {
		return r
	}
	return defaultRouting
}

// facilityAgg агрегаты объекта за текущее окно
type facilityAgg struct {
	Facility     string
	Uptime       float64
	Incidents    int
	Orders       int
	PriorOrders  int
	NPS          float64
	IncidentZ    float64
	FleetSampled int
}

// alertRule одно пороговое правило
type alertRule struct {
	category string
	severity models.Severity
	match    func(a facilityAgg, t Thresholds) bool
	title    func(a facilityAgg) string
	detail   func(a facilityAgg, t Thresholds, window string) string
}

// alertRules упорядочены по приоритету: при совпадении объекта и категории побеждает первое правило
var alertRules = []alertRule{
	{
		category: CategoryUptime,
		severity: models.SeverityCritical,
		match:    func(a facilityAgg, t Thresholds) bool { return a.Uptime < t.UptimeCriticalBelow },
		title:    func(a facilityAgg) string { return fmt.Sprintf("%s uptime collapse", a.Facility) },
		detail: func(a facilityAgg, t Thresholds, window string) string {
			return fmt.Sprintf("Mean uptime %.1f%% in %s is below the %.0f%% critical band.", a.Uptime, window, t.UptimeCriticalBelow)
		},
	},
	{
		category: CategoryUptime,
		severity: models.SeverityHigh,
		match:    func(a facilityAgg, t Thresholds) bool { return a.Uptime < t.UptimeHighBelow },
		title:    func(a facilityAgg) string { return fmt.Sprintf("%s uptime degraded", a.Facility) },
		detail: func(a facilityAgg, t Thresholds, window string) string {
			return fmt.Sprintf("Mean uptime %.1f%% in %s is below the %.0f%% operating band.", a.Uptime, window, t.UptimeHighBelow)
		},
	},
	{
		category: CategoryIncidents,
		severity: models.SeverityHigh,
		match:    func(a facilityAgg, t Thresholds) bool { return a.Incidents >= t.IncidentsHighAtLeast },
		title:    func(a facilityAgg) string { return fmt.Sprintf("%s incident surge", a.Facility) },
		detail: func(a facilityAgg, t Thresholds, window string) string {
			return fmt.Sprintf("%d incidents logged in %s (high band starts at %d).", a.Incidents, window, t.IncidentsHighAtLeast)
		},
	},
	{
		category: CategoryIncidents,
		severity: models.SeverityMedium,
		match:    func(a facilityAgg, t Thresholds) bool { return a.Incidents >= t.IncidentsMediumAtLeast },
		title:    func(a facilityAgg) string { return fmt.Sprintf("%s incidents elevated", a.Facility) },
		detail: func(a facilityAgg, t Thresholds, window string) string {
			return fmt.Sprintf("%d incidents logged in %s (medium band starts at %d).", a.Incidents, window, t.IncidentsMediumAtLeast)
		},
	},
	{
		category: CategoryThroughput,
		severity: models.SeverityMedium,
		match: func(a facilityAgg, t Thresholds) bool {
			if a.PriorOrders == 0 {
				return false
			}
			drop := float64(a.PriorOrders-a.Orders) / float64(a.PriorOrders)
			return drop >= t.ThroughputDropRatio
		},
		title: func(a facilityAgg) string { return fmt.Sprintf("%s throughput drop", a.Facility) },
		detail: func(a facilityAgg, t Thresholds, window string) string {
			drop := 100 * float64(a.PriorOrders-a.Orders) / float64(a.PriorOrders)
			return fmt.Sprintf("Orders fell %.1f%% to %d in %s versus %d in the prior window.", drop, a.Orders, window, a.PriorOrders)
		},
	},
	{
		category: CategorySatisfaction,
		severity: models.SeverityLow,
		match:    func(a facilityAgg, t Thresholds) bool { return a.NPS < t.NPSLowBelow },
		title:    func(a facilityAgg) string { return fmt.Sprintf("%s satisfaction slipping", a.Facility) },
		detail: func(a facilityAgg, t Thresholds, window string) string {
			return fmt.Sprintf("Mean NPS %.1f in %s is below %.0f.", a.NPS, window, t.NPSLowBelow)
		},
	},
	{
		category: CategoryIncidents,
		severity: models.SeverityMedium,
		match: func(a facilityAgg, t Thresholds) bool {
			return a.FleetSampled >= t.IncidentZScoreMinFacilities && a.IncidentZ > t.IncidentZScore
		},
		title: func(a facilityAgg) string { return fmt.Sprintf("%s incident outlier", a.Facility) },
		detail: func(a facilityAgg, t Thresholds, window string) string {
			return fmt.Sprintf("%d incidents in %s sit %.2fσ above the fleet mean.", a.Incidents, window, a.IncidentZ)
		},
	},
}

// SynthesizeAlerts применяет пороговые правила к агрегатам объектов текущего окна.
// Пустой результат означает, что ни одно правило не сработало.
func SynthesizeAlerts(records []models.OperationalRecord, t Thresholds) []models.AlertInsight {
	valid, _ := Sanitize(records)
	alerts := make([]models.AlertInsight, 0)
	split := splitWindows(valid, t.WindowBuckets)
	if len(split.Current) == 0 {
		return alerts
	}

	aggs := facilityAggregates(split)
	window := split.windowLabel()
	seen := make(map[string]struct{})

	for _, rule := range alertRules {
		for _, a := range aggs {
			key := a.Facility + "|" + rule.category
			if _, dup := seen[key]; dup {
				continue
			}
			if !rule.match(a, t) {
				continue
			}
			seen[key] = struct{}{}

			route := RouteAlert(rule.category, rule.severity)
			name := fmt.Sprintf("%s|%s|%s|%s", a.Facility, rule.category, rule.severity, split.CurrentStart.Format("2006-01-02"))
			alerts = append(alerts, models.AlertInsight{
				ID:       uuid.NewSHA1(alertNamespace, []byte(name)).String(),
				Facility: a.Facility,
				Category: rule.category,
				Title:    rule.title(a),
				Detail:   rule.detail(a, t, window),
				Severity: rule.severity,
				Owner:    route.Owner,
				ETAHours: route.ETAHours,
			})
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		ri, rj := alerts[i].Severity.Rank(), alerts[j].Severity.Rank()
		if ri != rj {
			return ri > rj
		}
		if alerts[i].Facility != alerts[j].Facility {
			return alerts[i].Facility < alerts[j].Facility
		}
		return alerts[i].Category < alerts[j].Category
	})
	return alerts
}

// facilityAggregates считает агрегаты по объектам текущего окна в алфавитном порядке
func facilityAggregates(split windowSplit) []facilityAgg {
	type acc struct {
		uptime    RunningStats
		nps       RunningStats
		incidents int
		orders    int
	}
	current := make(map[string]*acc)
	for _, r := range split.Current {
		a, ok := current[r.Facility]
		if !ok {
			a = &acc{}
			current[r.Facility] = a
		}
		a.uptime.Add(r.Uptime)
		a.nps.Add(float64(r.NPS))
		a.incidents += r.Incidents
		a.orders += r.OrdersServed
	}
	prior := make(map[string]int)
	for _, r := range split.Prior {
		prior[r.Facility] += r.OrdersServed
	}

	names := facilities(split.Current)
	var fleet RunningStats
	for _, name := range names {
		fleet.Add(float64(current[name].incidents))
	}

	out := make([]facilityAgg, 0, len(names))
	for _, name := range names {
		a := current[name]
		out = append(out, facilityAgg{
			Facility:     name,
			Uptime:       a.uptime.Mean(),
			Incidents:    a.incidents,
			Orders:       a.orders,
			PriorOrders:  prior[name],
			NPS:          a.nps.Mean(),
			IncidentZ:    fleet.ZScore(float64(a.incidents)),
			FleetSampled: fleet.Count(),
		})
	}
	return out
}
