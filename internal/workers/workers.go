package workers

import (
	"context"
	"log"
	"time"

	"lifeSpheresAPI/services"
)

// StartRecalcWorker runs the recalculation pass on a ticker so a streak
// decays on schedule even when the app never comes to the foreground. The
// pass is idempotent, so firing alongside a lifecycle-triggered
// recalculation is harmless.
func StartRecalcWorker(streakService *services.StreakService, interval time.Duration) (stop func()) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				runRecalc(streakService)
			case <-done:
				return
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(done)
	}
}

func runRecalc(streakService *services.StreakService) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	record := streakService.Recalculate(ctx)
	log.Printf("Recalc worker: current streak %d, window size %d",
		record.CurrentStreak, len(record.MemoryLogDates))
}
