package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"lifeSpheresAPI/internal/storage"
	"lifeSpheresAPI/internal/types/badge"
	"lifeSpheresAPI/internal/types/streak"
)

// StreakStorageKey is the fixed key the single streak record lives under.
const StreakStorageKey = "memory_streak_data"

// StreakStore owns load/save of the persisted streak record, including the
// one-shot migration of legacy records that predate earned badges.
type StreakStore struct {
	kv storage.KeyValueStore
}

func NewStreakStore(kv storage.KeyValueStore) *StreakStore {
	return &StreakStore{kv: kv}
}

// Load reads the persisted record. A missing key, a storage failure, or
// malformed JSON all degrade to the zero default record; the streak
// feature must never take the app down.
func (s *StreakStore) Load(ctx context.Context) *streak.Record {
	raw, err := s.kv.Get(ctx, StreakStorageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("StreakStore: failed to read record, falling back to defaults: %v", err)
		}
		return streak.NewRecord()
	}

	// Decode through a raw map first so a legacy record with no
	// earned_badges key can be told apart from one with an empty list.
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		log.Printf("StreakStore: malformed record, falling back to defaults: %v", err)
		return streak.NewRecord()
	}

	record := streak.NewRecord()
	if err := json.Unmarshal([]byte(raw), record); err != nil {
		log.Printf("StreakStore: malformed record, falling back to defaults: %v", err)
		return streak.NewRecord()
	}
	normalize(record)

	if _, ok := fields["earned_badges"]; !ok {
		// Legacy shape: derive earned badges from the all-time high-water
		// mark and persist immediately so the next load is a plain read.
		record.EarnedBadges = badge.IDsForStreak(record.LongestStreak)
		if err := s.Save(ctx, record); err != nil {
			log.Printf("StreakStore: failed to persist migrated record: %v", err)
		} else {
			log.Printf("StreakStore: migrated legacy record, derived %d earned badges from longest streak %d",
				len(record.EarnedBadges), record.LongestStreak)
		}
	}

	return record
}

// Save serializes and overwrites the whole record. Callers read-modify-write;
// there are no partial updates.
func (s *StreakStore) Save(ctx context.Context, record *streak.Record) error {
	normalize(record)

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to serialize streak record: %w", err)
	}

	if err := s.kv.Set(ctx, StreakStorageKey, string(data)); err != nil {
		return fmt.Errorf("failed to persist streak record: %w", err)
	}
	return nil
}

// Reset discards all history and writes the zero default record.
func (s *StreakStore) Reset(ctx context.Context) error {
	return s.Save(ctx, streak.NewRecord())
}

// normalize keeps slice fields non-nil so a saved record always carries
// every key, which is what makes the migration one-shot.
func normalize(record *streak.Record) {
	if record.MemoryLogDates == nil {
		record.MemoryLogDates = []string{}
	}
	if record.Milestones == nil {
		record.Milestones = []int{}
	}
	if record.EarnedBadges == nil {
		record.EarnedBadges = []string{}
	}
}
