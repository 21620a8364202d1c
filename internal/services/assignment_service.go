package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mentorbot/internal/database"
	"mentorbot/internal/models"
)

// AssignmentService persists assignments per (user, concept). Saves with
// the same assignment ID are idempotent upserts: answer, feedback and
// status may be overwritten in place.
type AssignmentService struct {
	cache Cache
	db    *database.DB
}

// NewAssignmentService creates a new assignment service.
func NewAssignmentService(cache Cache, db *database.DB) *AssignmentService {
	return &AssignmentService{cache: cache, db: db}
}

func assignmentsKey(userID, concept string) string {
	return "user:" + userID + ":concept:" + concept + ":assignments"
}

// Save upserts one assignment into both stores. A missing ID gets a
// generated one so later saves can address the same row.
func (s *AssignmentService) Save(ctx context.Context, a *models.Assignment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.GivenAt.IsZero() {
		a.GivenAt = time.Now().UTC()
	}

	// Refresh the cached list alongside the durable upsert.
	list, err := s.List(ctx, a.UserID, a.Concept)
	if err != nil {
		return err
	}
	replaced := false
	for i := range list {
		if list[i].ID == a.ID {
			list[i] = *a
			replaced = true
			break
		}
	}
	if !replaced {
		list = append(list, *a)
	}
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to encode assignments: %w", err)
	}
	if err := s.cache.Set(ctx, assignmentsKey(a.UserID, a.Concept), string(data), NoExpiration); err != nil {
		return fmt.Errorf("failed to cache assignments: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		REPLACE INTO assignments (user_id, concept, assignment_id, question, answer, feedback, given_at, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, a.UserID, a.Concept, a.ID, a.Question, a.Answer, a.Feedback,
		a.GivenAt.UTC().Format(timestampFormat), a.Status)
	if err != nil {
		return fmt.Errorf("failed to persist assignment: %w", err)
	}
	return nil
}

// List returns all assignments for a (user, concept), cache first with a
// durable fallback.
func (s *AssignmentService) List(ctx context.Context, userID, concept string) ([]models.Assignment, error) {
	data, err := s.cache.Get(ctx, assignmentsKey(userID, concept))
	if err == nil {
		var list []models.Assignment
		if err := json.Unmarshal([]byte(data), &list); err != nil {
			return nil, fmt.Errorf("failed to decode cached assignments: %w", err)
		}
		return list, nil
	}
	if err != ErrCacheMiss {
		return nil, fmt.Errorf("failed to read assignments cache: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT assignment_id, question, answer, feedback, given_at, status FROM assignments WHERE user_id=? AND concept=?",
		userID, concept)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var list []models.Assignment
	for rows.Next() {
		a := models.Assignment{UserID: userID, Concept: concept}
		var givenAt string
		if err := rows.Scan(&a.ID, &a.Question, &a.Answer, &a.Feedback, &givenAt, &a.Status); err != nil {
			return nil, fmt.Errorf("failed to scan assignment row: %w", err)
		}
		a.GivenAt, _ = time.Parse(timestampFormat, givenAt)
		list = append(list, a)
	}
	return list, rows.Err()
}
