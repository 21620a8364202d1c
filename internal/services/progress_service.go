package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"mentorbot/internal/database"
	"mentorbot/internal/models"
)

// Spaced-repetition schedule: escalating review intervals in days,
// indexed by learning level (clamped to the last entry).
var reviewIntervals = [...]int{1, 3, 7, 14}

// Level-advancement thresholds.
const (
	explanationsForAdvance = 3
	examplesForAdvance     = 2
)

// ProgressService is the progress tracking engine: it derives per-concept
// learning state from completed assistant replies and answers point queries.
// Writes are last-write-wins on both layers; concurrent updates to the same
// (user, concept) are not coordinated.
type ProgressService struct {
	cache Cache
	db    *database.DB
	now   func() time.Time
}

// NewProgressService creates a new progress tracking engine.
func NewProgressService(cache Cache, db *database.DB) *ProgressService {
	return &ProgressService{cache: cache, db: db, now: time.Now}
}

func conceptKey(userID, concept string) string {
	return "user:" + userID + ":concept:" + concept
}

// Get returns the progress record for (userID, concept), cache first with a
// durable fallback. Returns (nil, nil) when neither store has a record.
func (s *ProgressService) Get(ctx context.Context, userID, concept string) (*models.ConceptProgress, error) {
	data, err := s.cache.Get(ctx, conceptKey(userID, concept))
	if err == nil {
		var p models.ConceptProgress
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return nil, fmt.Errorf("failed to decode cached progress: %w", err)
		}
		return &p, nil
	}
	if err != ErrCacheMiss {
		return nil, fmt.Errorf("failed to read progress cache: %w", err)
	}

	p := models.ConceptProgress{UserID: userID, Concept: concept}
	var nextReview, lastInteraction sql.NullString
	err = s.db.QueryRowContext(ctx, `
		SELECT level, explanations_given, examples_given, assignments_given, assignments_completed, next_review_date, last_interaction, status
		FROM user_concepts WHERE user_id=? AND concept=?
	`, userID, concept).Scan(
		&p.Level, &p.ExplanationsGiven, &p.ExamplesGiven, &p.AssignmentsGiven,
		&p.AssignmentsCompleted, &nextReview, &lastInteraction, &p.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query progress: %w", err)
	}

	p.NextReviewDate = nextReview.String
	if lastInteraction.Valid {
		p.LastInteraction, _ = time.Parse(timestampFormat, lastInteraction.String)
	}
	return &p, nil
}

// Update analyses a completed assistant reply and advances the learning
// state for the concept it references. Invoked once per reply, normally by
// the progress worker. Returns the updated record.
func (s *ProgressService) Update(ctx context.Context, userID, replyText string) (*models.ConceptProgress, error) {
	concept := ExtractConcept(replyText)
	responseType := ClassifyResponse(replyText)

	progress, err := s.Get(ctx, userID, concept)
	if err != nil {
		return nil, err
	}
	if progress == nil {
		progress = models.NewConceptProgress(userID, concept)
	}

	switch responseType {
	case ResponseExplanation:
		progress.ExplanationsGiven++
	case ResponseExample:
		progress.ExamplesGiven++
	case ResponseAssignment:
		progress.AssignmentsGiven++
	}

	now := s.now().UTC()
	progress.LastInteraction = now

	// Recomputed on every update so the review date is never stale
	// relative to the last interaction. Uses the pre-advancement level.
	stage := progress.Level
	if stage > len(reviewIntervals)-1 {
		stage = len(reviewIntervals) - 1
	}
	progress.NextReviewDate = now.AddDate(0, 0, reviewIntervals[stage]).Format("2006-01-02")

	if progress.ExplanationsGiven >= explanationsForAdvance && progress.ExamplesGiven >= examplesForAdvance {
		if next := progress.Level + 1; next <= models.LevelAdvanced {
			progress.Level = next
		}
	}

	if err := s.save(ctx, progress); err != nil {
		return nil, err
	}

	log.Printf("📈 [PROGRESS] Updated %s/%s: level=%d type=%s next_review=%s",
		userID, concept, progress.Level, responseType, progress.NextReviewDate)

	return progress, nil
}

// save writes the record through to both layers: cache without expiry,
// durable store as an upsert. A durable failure propagates so the caller
// can decide; silent loss of progress updates is undesirable.
func (s *ProgressService) save(ctx context.Context, p *models.ConceptProgress) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode progress: %w", err)
	}
	if err := s.cache.Set(ctx, conceptKey(p.UserID, p.Concept), string(data), NoExpiration); err != nil {
		return fmt.Errorf("failed to cache progress: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		REPLACE INTO user_concepts
		(user_id, concept, level, explanations_given, examples_given, assignments_given, assignments_completed, next_review_date, last_interaction, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.UserID, p.Concept, p.Level, p.ExplanationsGiven, p.ExamplesGiven,
		p.AssignmentsGiven, p.AssignmentsCompleted, p.NextReviewDate,
		p.LastInteraction.UTC().Format(timestampFormat), p.Status)
	if err != nil {
		return fmt.Errorf("failed to persist progress: %w", err)
	}
	return nil
}
