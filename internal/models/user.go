package models

import "time"

// UserProfile holds per-user tutoring preferences and activity metadata.
// Created on first profile save; never deleted by the backend.
type UserProfile struct {
	UserID      string            `json:"user_id"`
	Name        string            `json:"name"`
	Topics      []string          `json:"topics"`
	Preferences map[string]string `json:"preferences"`
	LastActive  time.Time         `json:"last_active"`
}
