package dto

// SummaryCard is one comparison window on the dashboard (today, this week,
// this month). Hours are decimal strings formatted to one fraction digit.
type SummaryCard struct {
	Label      string `json:"label"`
	TotalHours string `json:"total_hours"`
	LogCount   int    `json:"log_count"`
}

// BreakdownRow is one group in a by-project / by-category / by-user rollup.
type BreakdownRow struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	Hours      string `json:"hours"`
	Percentage string `json:"percentage"`
	LogCount   int    `json:"log_count"`
}

// TrendPoint is the total hours logged on one calendar day.
type TrendPoint struct {
	Date  string `json:"date"`
	Hours string `json:"hours"`
}

// DashboardStats is the full statistics payload for a dashboard view.
type DashboardStats struct {
	Cards      []SummaryCard  `json:"cards"`
	ByProject  []BreakdownRow `json:"by_project"`
	ByCategory []BreakdownRow `json:"by_category"`
	ByUser     []BreakdownRow `json:"by_user,omitempty"`
	DailyTrend []TrendPoint   `json:"daily_trend"`
}
