package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mentorbot/internal/database"
	"mentorbot/internal/models"
)

// UserService persists user profiles with cache-aside reads and
// write-through saves.
type UserService struct {
	cache Cache
	db    *database.DB
}

// NewUserService creates a new user profile service.
func NewUserService(cache Cache, db *database.DB) *UserService {
	return &UserService{cache: cache, db: db}
}

func profileKey(userID string) string {
	return "user:" + userID
}

// SaveProfile writes a profile to both the cache (no expiry) and the
// durable store in one logical operation.
func (s *UserService) SaveProfile(ctx context.Context, profile *models.UserProfile) error {
	if profile.LastActive.IsZero() {
		profile.LastActive = time.Now().UTC()
	}

	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := s.cache.Set(ctx, profileKey(profile.UserID), string(data), NoExpiration); err != nil {
		return fmt.Errorf("failed to cache profile: %w", err)
	}

	topics, _ := json.Marshal(profile.Topics)
	prefs, _ := json.Marshal(profile.Preferences)

	_, err = s.db.ExecContext(ctx, `
		REPLACE INTO users (user_id, name, topics, preferences, last_active)
		VALUES (?, ?, ?, ?, ?)
	`, profile.UserID, profile.Name, string(topics), string(prefs),
		profile.LastActive.UTC().Format(timestampFormat))
	if err != nil {
		return fmt.Errorf("failed to persist profile: %w", err)
	}
	return nil
}

// GetProfile returns a user's profile, or nil when no record exists in
// either store.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	data, err := s.cache.Get(ctx, profileKey(userID))
	if err == nil {
		var profile models.UserProfile
		if err := json.Unmarshal([]byte(data), &profile); err != nil {
			return nil, fmt.Errorf("failed to decode cached profile: %w", err)
		}
		return &profile, nil
	}
	if err != ErrCacheMiss {
		return nil, fmt.Errorf("failed to read profile cache: %w", err)
	}

	var name, topics, prefs, lastActive string
	err = s.db.QueryRowContext(ctx,
		"SELECT name, topics, preferences, last_active FROM users WHERE user_id=?",
		userID).Scan(&name, &topics, &prefs, &lastActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}

	profile := &models.UserProfile{UserID: userID, Name: name}
	if err := json.Unmarshal([]byte(topics), &profile.Topics); err != nil {
		return nil, fmt.Errorf("failed to decode topics: %w", err)
	}
	if err := json.Unmarshal([]byte(prefs), &profile.Preferences); err != nil {
		return nil, fmt.Errorf("failed to decode preferences: %w", err)
	}
	profile.LastActive, _ = time.Parse(timestampFormat, lastActive)
	return profile, nil
}
