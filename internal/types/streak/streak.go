package streak

// Record is the single persisted streak entity. It is stored as one JSON
// blob under a fixed key and always written whole; there are no partial
// updates.
type Record struct {
	CurrentStreak   int      `json:"current_streak"`
	LongestStreak   int      `json:"longest_streak"`
	LastLoggedDate  string   `json:"last_logged_date"`
	StreakStartDate string   `json:"streak_start_date"`
	TotalDaysLogged int      `json:"total_days_logged"`
	MemoryLogDates  []string `json:"memory_log_dates"`
	CurrentBadge    string   `json:"current_badge"`
	Milestones      []int    `json:"milestones"`
	EarnedBadges    []string `json:"earned_badges"`
}

// NewRecord returns the all-zero default record used on first read and
// after a reset.
func NewRecord() *Record {
	return &Record{
		MemoryLogDates: []string{},
		Milestones:     []int{},
		EarnedBadges:   []string{},
	}
}

// ActivityResult reports what changed during a single RecordActivity call.
// A same-day duplicate trigger returns the unmodified record with all
// deltas empty.
type ActivityResult struct {
	Record          *Record  `json:"record"`
	StreakIncreased bool     `json:"streak_increased"`
	NewBadges       []string `json:"new_badges"`
	NewMilestones   []int    `json:"new_milestones"`
	IsFirstActivity bool     `json:"is_first_activity"`
}

// RiskStatus is the at-risk read model exposed to the app.
type RiskStatus struct {
	AtRisk        bool `json:"at_risk"`
	DaysUntilLost int  `json:"days_until_lost"`
}
