package stats

// DaysStat summarizes activity for a period of the calendar.
type DaysStat struct {
	Period     string `json:"period"`
	DaysActive int    `json:"days_active"`
	TotalDays  int    `json:"total_days"`
}
