package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"mentorbot/internal/database"
	"mentorbot/internal/models"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Initialize(); err != nil {
		t.Fatalf("Failed to initialize schema: %v", err)
	}
	return db
}

func newTestProgressService(t *testing.T) (*ProgressService, Cache) {
	t.Helper()
	cache := NewMemoryCache(time.Minute)
	svc := NewProgressService(cache, setupTestDB(t))
	svc.now = func() time.Time {
		return time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	}
	return svc, cache
}

func TestProgressUpdate_FreshConcept(t *testing.T) {
	svc, _ := newTestProgressService(t)
	ctx := context.Background()

	record, err := svc.Update(ctx, "user1", "<CONCEPT=Recursion><EXAMPLE> a tree walks...")
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if record.Concept != "recursion" {
		t.Errorf("Expected concept recursion, got %q", record.Concept)
	}
	if record.ExamplesGiven != 1 || record.ExplanationsGiven != 0 {
		t.Errorf("Expected examples=1 explanations=0, got examples=%d explanations=%d",
			record.ExamplesGiven, record.ExplanationsGiven)
	}
	if record.Level != models.LevelBeginner {
		t.Errorf("Expected level 0, got %d", record.Level)
	}
	if record.NextReviewDate != "2025-06-16" {
		t.Errorf("Expected next review today+1, got %q", record.NextReviewDate)
	}
	if record.Status != models.StatusActive {
		t.Errorf("Expected status active, got %q", record.Status)
	}
}

func TestProgressUpdate_NoMarkerIsIdempotentOnCounters(t *testing.T) {
	svc, _ := newTestProgressService(t)
	ctx := context.Background()

	if _, err := svc.Update(ctx, "user1", "<CONCEPT=loops><EXPLANATION> first"); err != nil {
		t.Fatalf("Seed update failed: %v", err)
	}

	before, err := svc.Get(ctx, "user1", "loops")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	svc.now = func() time.Time {
		return time.Date(2025, 6, 20, 10, 0, 0, 0, time.UTC)
	}
	after, err := svc.Update(ctx, "user1", "<CONCEPT=loops> just chatting, no markers")
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if after.ExplanationsGiven != before.ExplanationsGiven ||
		after.ExamplesGiven != before.ExamplesGiven ||
		after.AssignmentsGiven != before.AssignmentsGiven ||
		after.Level != before.Level {
		t.Errorf("Counters or level changed on marker-free update: before=%+v after=%+v", before, after)
	}
	if !after.LastInteraction.After(before.LastInteraction) {
		t.Errorf("Expected last_interaction to advance: %v -> %v", before.LastInteraction, after.LastInteraction)
	}
	if after.NextReviewDate == before.NextReviewDate {
		t.Errorf("Expected next_review_date to move with the interaction, still %q", after.NextReviewDate)
	}
}

func TestProgressUpdate_LevelAdvancementBoundary(t *testing.T) {
	svc, _ := newTestProgressService(t)
	ctx := context.Background()

	// 2 explanations + 2 examples: not enough.
	replies := []string{
		"<CONCEPT=sorting><EXPLANATION> one",
		"<CONCEPT=sorting><EXAMPLE> one",
		"<CONCEPT=sorting><EXPLANATION> two",
		"<CONCEPT=sorting><EXAMPLE> two",
	}
	var record *models.ConceptProgress
	var err error
	for _, reply := range replies {
		if record, err = svc.Update(ctx, "user1", reply); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
	}
	if record.Level != models.LevelBeginner {
		t.Errorf("Expected level to stay 0 at 2 explanations + 2 examples, got %d", record.Level)
	}

	// Third explanation crosses the threshold.
	record, err = svc.Update(ctx, "user1", "<CONCEPT=sorting><EXPLANATION> three")
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if record.Level != models.LevelIntermediate {
		t.Errorf("Expected level 1 after 3 explanations + 2 examples, got %d", record.Level)
	}
}

func TestProgressUpdate_LevelMonotonicAndCapped(t *testing.T) {
	svc, _ := newTestProgressService(t)
	ctx := context.Background()

	replies := []string{
		"<CONCEPT=graphs><EXPLANATION> a",
		"<CONCEPT=graphs><EXPLANATION> b",
		"<CONCEPT=graphs><EXAMPLE> a",
		"<CONCEPT=graphs><EXPLANATION> c", // 3 explanations, 1 example: no advance yet
		"<CONCEPT=graphs><EXAMPLE> b",     // thresholds met: level 1
		"<CONCEPT=graphs><EXPLANATION> d", // thresholds still met: level 2
		"<CONCEPT=graphs><EXPLANATION> e", // capped
		"<CONCEPT=graphs><EXAMPLE> c",
	}

	prev := -1
	for i, reply := range replies {
		record, err := svc.Update(ctx, "user1", reply)
		if err != nil {
			t.Fatalf("Update %d failed: %v", i, err)
		}
		if record.Level < prev {
			t.Fatalf("Level decreased from %d to %d on update %d", prev, record.Level, i)
		}
		if record.Level > models.LevelAdvanced {
			t.Fatalf("Level exceeded cap: %d", record.Level)
		}
		prev = record.Level
	}
	if prev != models.LevelAdvanced {
		t.Errorf("Expected level to reach cap %d, got %d", models.LevelAdvanced, prev)
	}
}

func TestProgressUpdate_ReviewIntervalByLevel(t *testing.T) {
	svc, _ := newTestProgressService(t)
	ctx := context.Background()

	tests := []struct {
		level    int
		expected string
	}{
		{models.LevelBeginner, "2025-06-16"},     // +1 day
		{models.LevelIntermediate, "2025-06-18"}, // +3 days
		{models.LevelAdvanced, "2025-06-22"},     // +7 days
	}

	for _, tt := range tests {
		seed := models.NewConceptProgress("user1", "trees")
		seed.Level = tt.level
		if err := svc.save(ctx, seed); err != nil {
			t.Fatalf("Seed save failed: %v", err)
		}

		record, err := svc.Update(ctx, "user1", "<CONCEPT=trees> no markers")
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if record.NextReviewDate != tt.expected {
			t.Errorf("Level %d: expected next review %s, got %s", tt.level, tt.expected, record.NextReviewDate)
		}
	}
}

func TestProgressGet_DurableFallbackAfterCacheExpiry(t *testing.T) {
	svc, cache := newTestProgressService(t)
	ctx := context.Background()

	written, err := svc.Update(ctx, "user1", "<CONCEPT=recursion><ASSIGNMENT> do this")
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	// Immediate read comes from the cache.
	fromCache, err := svc.Get(ctx, "user1", "recursion")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if fromCache == nil || fromCache.AssignmentsGiven != written.AssignmentsGiven {
		t.Fatalf("Cached read mismatch: %+v", fromCache)
	}

	// Simulate expiry and read through to the durable store.
	if err := cache.Delete(ctx, conceptKey("user1", "recursion")); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	fromDB, err := svc.Get(ctx, "user1", "recursion")
	if err != nil {
		t.Fatalf("Get after expiry failed: %v", err)
	}
	if fromDB == nil {
		t.Fatal("Expected durable record after cache expiry, got nil")
	}
	if fromDB.AssignmentsGiven != written.AssignmentsGiven ||
		fromDB.Level != written.Level ||
		fromDB.NextReviewDate != written.NextReviewDate ||
		fromDB.Status != written.Status {
		t.Errorf("Durable read mismatch: expected %+v, got %+v", written, fromDB)
	}
}

func TestProgressGet_AbsentRecord(t *testing.T) {
	svc, _ := newTestProgressService(t)

	record, err := svc.Get(context.Background(), "nobody", "nothing")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if record != nil {
		t.Errorf("Expected nil for absent record, got %+v", record)
	}
}
