package badge

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
	RarityMythic    Rarity = "mythic"
)

type Badge struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	DaysRequired int    `json:"days_required"`
	Rarity       Rarity `json:"rarity"`
}

// Catalog is the static tier table, ordered ascending by DaysRequired.
var Catalog = []Badge{
	{ID: "spark", Name: "Spark", DaysRequired: 1, Rarity: RarityCommon},
	{ID: "flame", Name: "Flame", DaysRequired: 3, Rarity: RarityCommon},
	{ID: "keeper", Name: "Keeper", DaysRequired: 7, Rarity: RarityUncommon},
	{ID: "torch", Name: "Torch Bearer", DaysRequired: 14, Rarity: RarityUncommon},
	{ID: "beacon", Name: "Beacon", DaysRequired: 30, Rarity: RarityRare},
	{ID: "luminary", Name: "Luminary", DaysRequired: 60, Rarity: RarityEpic},
	{ID: "centurion", Name: "Centurion", DaysRequired: 100, Rarity: RarityLegendary},
	{ID: "eternal", Name: "Eternal Flame", DaysRequired: 365, Rarity: RarityMythic},
}

// Milestones mirrors the catalog thresholds. Crossed milestones are tracked
// independently of the current badge tier and never regress.
var Milestones = []int{1, 3, 7, 14, 30, 60, 100, 365}

// ForStreak returns the highest tier whose threshold is satisfied by n,
// or nil when n is below the smallest threshold.
func ForStreak(n int) *Badge {
	var best *Badge
	for i := range Catalog {
		if Catalog[i].DaysRequired <= n {
			best = &Catalog[i]
		}
	}
	return best
}

// IDsForStreak returns the ids of every tier satisfied by n, ascending.
func IDsForStreak(n int) []string {
	ids := make([]string, 0, len(Catalog))
	for i := range Catalog {
		if Catalog[i].DaysRequired <= n {
			ids = append(ids, Catalog[i].ID)
		}
	}
	return ids
}

// Next returns the lowest tier not yet satisfied by n, or nil when n has
// cleared the whole catalog.
func Next(n int) *Badge {
	for i := range Catalog {
		if Catalog[i].DaysRequired > n {
			return &Catalog[i]
		}
	}
	return nil
}

// ByID looks a tier up by its id.
func ByID(id string) *Badge {
	for i := range Catalog {
		if Catalog[i].ID == id {
			return &Catalog[i]
		}
	}
	return nil
}

// MilestonesForStreak returns every milestone threshold ≤ n, ascending.
func MilestonesForStreak(n int) []int {
	crossed := make([]int, 0, len(Milestones))
	for _, m := range Milestones {
		if m <= n {
			crossed = append(crossed, m)
		}
	}
	return crossed
}
