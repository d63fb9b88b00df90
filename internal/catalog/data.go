package catalog

import "fleet-curation-service/internal/models"

// Default возвращает встроенные каталоги дашборда
func Default() Catalog {
	return Catalog{
		Financials:    financials(),
		APISurfaces:   apiSurfaces(),
		Knowledge:     knowledge(),
		TrainingPlans: trainingPlans(),
		FAQ:           FAQ(),
	}
}

func financials() []models.FinancialSnapshot {
	return []models.FinancialSnapshot{
		{ID: "fin-2024-q4", Period: "2024-Q4", RevenueUSD: 4_820_000, CostSavingsUSD: 1_240_000, ROIPercent: 18.4, PaybackMonths: 22, Notes: "Pilot sites in APAC reached break-even on labor offsets."},
		{ID: "fin-2025-q1", Period: "2025-Q1", RevenueUSD: 5_360_000, CostSavingsUSD: 1_610_000, ROIPercent: 23.9, PaybackMonths: 19, Notes: "EMEA rollout added two depots; energy contract renegotiated."},
		{ID: "fin-2025-q2", Period: "2025-Q2", RevenueUSD: 5_910_000, CostSavingsUSD: 1_940_000, ROIPercent: 27.1, PaybackMonths: 17, Notes: "Night-shift automation extended to AMER grocery sites."},
	}
}

func apiSurfaces() []models.APISurface {
	return []models.APISurface{
		{ID: "api-curation", Name: "Curation Snapshot", Method: "GET", Path: "/api/curation", Description: "Full curated dashboard snapshot.", LatencyP95Ms: 45, Status: "stable"},
		{ID: "api-live", Name: "Live Signals", Method: "GET", Path: "/api/live", Description: "One freshly generated live sample per call.", LatencyP95Ms: 12, Status: "stable"},
		{ID: "api-live-history", Name: "Live Signal History", Method: "GET", Path: "/api/live/history", Description: "Recent live samples retained in the cache.", LatencyP95Ms: 18, Status: "beta"},
		{ID: "api-insights", Name: "Operational Insights", Method: "POST", Path: "/api/insights", Description: "AI-generated commentary over the current snapshot.", LatencyP95Ms: 2400, Status: "beta"},
		{ID: "api-knowledge", Name: "Knowledge Assistant", Method: "POST", Path: "/api/knowledge", Description: "Answers fleet questions from the FAQ and knowledge base.", LatencyP95Ms: 1800, Status: "beta"},
	}
}

func knowledge() []models.KnowledgeSlice {
	return []models.KnowledgeSlice{
		{ID: "kb-charging", Title: "Opportunity charging playbook", Category: "operations", Summary: "Robots dock between order waves when battery drops below 35%; full cycles run during night shift.", Tags: []string{"charging", "battery", "night-shift"}, UpdatedAt: "2025-02-14"},
		{ID: "kb-incident-triage", Title: "Incident triage ladder", Category: "safety", Summary: "Critical incidents page the reliability on-call within 15 minutes; medium incidents batch into the daily review.", Tags: []string{"incidents", "safety", "on-call"}, UpdatedAt: "2025-01-30"},
		{ID: "kb-uptime-bands", Title: "Uptime operating bands", Category: "reliability", Summary: "Sites run green above 85% uptime, amber between 70% and 85%, red below 70%.", Tags: []string{"uptime", "sla"}, UpdatedAt: "2025-02-03"},
		{ID: "kb-nps", Title: "Reading customer NPS", Category: "experience", Summary: "NPS is sampled per shift from in-app surveys; scores below 30 trigger a customer experience review.", Tags: []string{"nps", "satisfaction"}, UpdatedAt: "2025-01-21"},
	}
}

func trainingPlans() []models.TrainingPlan {
	return []models.TrainingPlan{
		{
			ID: "tp-route-planner", Model: "route-planner-v4", Objective: "Cut average turn time by 8% in dense quick-service layouts.", Status: "training", Progress: 64,
			Milestones: []models.Milestone{
				{ID: "tp-route-planner-m1", Title: "Collect Seoul and Tokyo floor traces", DueDate: "2025-01-20", Completed: true},
				{ID: "tp-route-planner-m2", Title: "Offline evaluation against v3", DueDate: "2025-03-03", Completed: false},
				{ID: "tp-route-planner-m3", Title: "Shadow deployment at Tokyo Shibuya", DueDate: "2025-03-24", Completed: false},
			},
		},
		{
			ID: "tp-grasp-vision", Model: "grasp-vision-v2", Objective: "Reduce pick failures on pharmacy blister packs.", Status: "evaluating", Progress: 88,
			Milestones: []models.Milestone{
				{ID: "tp-grasp-vision-m1", Title: "Label 40k pharmacy pick frames", DueDate: "2024-12-16", Completed: true},
				{ID: "tp-grasp-vision-m2", Title: "Safety review with Berlin Depot", DueDate: "2025-02-28", Completed: false},
			},
		},
		{
			ID: "tp-demand-forecast", Model: "demand-forecast-v1", Objective: "Forecast shift demand to pre-position robots before peaks.", Status: "planned", Progress: 10,
			Milestones: []models.Milestone{
				{ID: "tp-demand-forecast-m1", Title: "Backfill 12 months of shift records", DueDate: "2025-04-07", Completed: false},
			},
		},
	}
}

// FAQ возвращает встроенную таблицу частых вопросов
func FAQ() []models.FAQEntry {
	return []models.FAQEntry{
		{ID: "faq-charging", Question: "How does robot charging work?", Answer: "Robots opportunity-charge between order waves whenever battery drops below 35%, and run full charge cycles during the night shift when demand is lowest.", Category: "operations", Keywords: []string{"charging", "charge", "battery", "dock", "power"}},
		{ID: "faq-uptime", Question: "What uptime is considered healthy?", Answer: "Sites are healthy above 85% uptime. Below 85% raises a high alert for the site maintenance lead, and below 70% pages the fleet reliability on-call.", Category: "reliability", Keywords: []string{"uptime", "availability", "downtime", "sla"}},
		{ID: "faq-incidents", Question: "How are incidents escalated?", Answer: "Three or more incidents in a week raise a medium alert and six or more raise a high alert routed to the safety and incident desk.", Category: "safety", Keywords: []string{"incident", "incidents", "escalation", "safety"}},
		{ID: "faq-nps", Question: "How is customer satisfaction measured?", Answer: "Each shift samples in-app surveys into an NPS score. Weekly means below 30 open a customer experience review.", Category: "experience", Keywords: []string{"nps", "satisfaction", "survey", "customer"}},
		{ID: "faq-energy", Question: "How much energy does each order use?", Answer: "The energy per order KPI divides metered kWh by orders served; most sites land between 0.10 and 0.13 kWh per order.", Category: "operations", Keywords: []string{"energy", "kwh", "electricity", "consumption"}},
		{ID: "faq-training", Question: "How are new AI models rolled out?", Answer: "Models move from planned to training, then evaluating in shadow mode at a single site before they are deployed fleet-wide.", Category: "ai", Keywords: []string{"training", "model", "rollout", "deploy", "ai"}},
		{ID: "faq-heatmap", Question: "What does the utilization heatmap show?", Answer: "Each cell is one facility and shift. Demand is orders per robot-hour scaled to 0-1 across cells, and utilization compares busy time with available robot time.", Category: "analytics", Keywords: []string{"heatmap", "utilization", "demand", "shift"}},
	}
}
