package models

import "time"

// Learning levels for a concept
const (
	LevelBeginner     = 0
	LevelIntermediate = 1
	LevelAdvanced     = 2
)

// Concept progress statuses. The engine only ever writes "active";
// mastered/paused are reserved for external policy.
const (
	StatusActive   = "active"
	StatusMastered = "mastered"
	StatusPaused   = "paused"
)

// ConceptProgress tracks a user's learning state for one concept.
// Uniquely keyed by (UserID, Concept). Level never decreases.
type ConceptProgress struct {
	UserID               string    `json:"user_id"`
	Concept              string    `json:"concept"`
	Level                int       `json:"level"`
	ExplanationsGiven    int       `json:"explanations_given"`
	ExamplesGiven        int       `json:"examples_given"`
	AssignmentsGiven     int       `json:"assignments_given"`
	AssignmentsCompleted int       `json:"assignments_completed"`
	NextReviewDate       string    `json:"next_review_date"` // YYYY-MM-DD, no time-of-day
	LastInteraction      time.Time `json:"last_interaction"`
	Status               string    `json:"status"`
}

// NewConceptProgress returns the zero-valued record created lazily on the
// first interaction referencing a concept.
func NewConceptProgress(userID, concept string) *ConceptProgress {
	return &ConceptProgress{
		UserID:  userID,
		Concept: concept,
		Level:   LevelBeginner,
		Status:  StatusActive,
	}
}

// Assignment is one exercise handed to a user for a concept.
// Saves with the same ID overwrite answer/feedback/status in place.
type Assignment struct {
	UserID   string    `json:"user_id"`
	Concept  string    `json:"concept"`
	ID       string    `json:"id"`
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	Feedback string    `json:"feedback"`
	GivenAt  time.Time `json:"given_at"`
	Status   string    `json:"status"`
}
