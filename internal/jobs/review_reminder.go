package jobs

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"mentorbot/internal/database"
	"mentorbot/internal/models"
	"mentorbot/internal/services"
)

// ReviewReminderJob runs once a day and publishes a reminder event for
// every user with active concepts whose next review date has arrived.
// Nothing consumes review_due events yet; the progress worker ignores
// them, and an outbound transport can subscribe later.
type ReviewReminderJob struct {
	db   *database.DB
	bus  services.EventBus
	hour int // UTC hour of day to run
}

// NewReviewReminderJob creates the daily review reminder job.
func NewReviewReminderJob(db *database.DB, bus services.EventBus, hour int) *ReviewReminderJob {
	return &ReviewReminderJob{db: db, bus: bus, hour: hour}
}

// Run finds all due concepts grouped per user and publishes one reminder
// event per user.
func (j *ReviewReminderJob) Run(ctx context.Context) error {
	today := time.Now().UTC().Format("2006-01-02")

	rows, err := j.db.QueryContext(ctx, `
		SELECT user_id, concept FROM user_concepts
		WHERE status=? AND next_review_date IS NOT NULL AND next_review_date<=?
		ORDER BY user_id
	`, models.StatusActive, today)
	if err != nil {
		return fmt.Errorf("failed to query due concepts: %w", err)
	}
	defer rows.Close()

	due := make(map[string][]string)
	for rows.Next() {
		var userID, concept string
		if err := rows.Scan(&userID, &concept); err != nil {
			return fmt.Errorf("failed to scan due concept: %w", err)
		}
		due[userID] = append(due[userID], concept)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for userID, concepts := range due {
		event := models.Event{
			Type:    "review_due",
			UserID:  userID,
			Message: strings.Join(concepts, ", "),
		}
		if err := j.bus.Publish(ctx, event); err != nil {
			log.Printf("⚠️ [REVIEW] Failed to publish reminder for %s: %v", userID, err)
			continue
		}
		log.Printf("📅 [REVIEW] %s has %d concept(s) due for review: %s",
			userID, len(concepts), event.Message)
	}

	log.Printf("📅 [REVIEW] Reminder pass complete: %d user(s) due", len(due))
	return nil
}

// GetNextRunTime returns the next daily occurrence of the configured hour.
func (j *ReviewReminderJob) GetNextRunTime() time.Time {
	now := time.Now().UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), j.hour, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
