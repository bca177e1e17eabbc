package badge

import "testing"

func TestForStreakBoundaries(t *testing.T) {
	tests := []struct {
		streak int
		want   string
	}{
		{0, ""},
		{1, "spark"},
		{2, "spark"},
		{3, "flame"},
		{6, "flame"},
		{7, "keeper"},
		{13, "keeper"},
		{14, "torch"},
		{364, "centurion"},
		{365, "eternal"},
		{1000, "eternal"},
	}

	for _, tt := range tests {
		b := ForStreak(tt.streak)
		if tt.want == "" {
			if b != nil {
				t.Errorf("ForStreak(%d) = %s, want nil", tt.streak, b.ID)
			}
			continue
		}
		if b == nil {
			t.Errorf("ForStreak(%d) = nil, want %s", tt.streak, tt.want)
			continue
		}
		if b.ID != tt.want {
			t.Errorf("ForStreak(%d) = %s, want %s", tt.streak, b.ID, tt.want)
		}
	}
}

func TestIDsForStreak(t *testing.T) {
	ids := IDsForStreak(10)

	want := []string{"spark", "flame", "keeper"}
	if len(ids) != len(want) {
		t.Fatalf("IDsForStreak(10) = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("IDsForStreak(10) = %v, want %v", ids, want)
		}
	}

	if got := IDsForStreak(0); len(got) != 0 {
		t.Errorf("IDsForStreak(0) = %v, want empty", got)
	}
}

func TestNext(t *testing.T) {
	if b := Next(0); b == nil || b.ID != "spark" {
		t.Errorf("Next(0) should be spark")
	}
	if b := Next(7); b == nil || b.ID != "torch" {
		t.Errorf("Next(7) should be torch")
	}
	if b := Next(365); b != nil {
		t.Errorf("Next(365) = %s, want nil", b.ID)
	}
}

func TestCatalogOrderedAscending(t *testing.T) {
	for i := 1; i < len(Catalog); i++ {
		if Catalog[i].DaysRequired <= Catalog[i-1].DaysRequired {
			t.Fatalf("Catalog not ascending at index %d", i)
		}
	}
	if len(Catalog) != len(Milestones) {
		t.Fatalf("Milestone list must mirror catalog thresholds")
	}
	for i, m := range Milestones {
		if Catalog[i].DaysRequired != m {
			t.Errorf("Milestone %d does not match catalog threshold %d", m, Catalog[i].DaysRequired)
		}
	}
}

func TestMilestonesForStreak(t *testing.T) {
	got := MilestonesForStreak(30)
	want := []int{1, 3, 7, 14, 30}
	if len(got) != len(want) {
		t.Fatalf("MilestonesForStreak(30) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("MilestonesForStreak(30) = %v, want %v", got, want)
		}
	}
}
