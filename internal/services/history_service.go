package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"mentorbot/internal/database"
	"mentorbot/internal/models"
)

// timestampFormat is a fixed-width UTC format so the durable store's
// lexicographic ORDER BY timestamp matches chronological order.
const timestampFormat = "2006-01-02T15:04:05.000000Z"

// HistoryService provides per-user conversation history with cache-aside
// semantics: the fast cache holds the full rolling window under an
// inactivity expiry, the durable store is the append-only ledger.
type HistoryService struct {
	cache Cache
	db    *database.DB
	ttl   time.Duration
}

// NewHistoryService creates a new history service.
func NewHistoryService(cache Cache, db *database.DB, ttl time.Duration) *HistoryService {
	return &HistoryService{cache: cache, db: db, ttl: ttl}
}

func historyKey(userID string) string {
	return "history:" + userID
}

// Load returns the ordered conversation history for a user. On a cache miss
// it reads the durable ledger; the cache is deliberately not repopulated on
// this path, so a cold load cannot pin a stale long-lived entry.
func (s *HistoryService) Load(ctx context.Context, userID string) ([]models.ConversationTurn, error) {
	data, err := s.cache.Get(ctx, historyKey(userID))
	if err == nil {
		var history []models.ConversationTurn
		if err := json.Unmarshal([]byte(data), &history); err != nil {
			return nil, fmt.Errorf("failed to decode cached history: %w", err)
		}
		return history, nil
	}
	if err != ErrCacheMiss {
		return nil, fmt.Errorf("failed to read history cache: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT role, content, timestamp FROM conversation_history WHERE user_id=? ORDER BY timestamp",
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var history []models.ConversationTurn
	for rows.Next() {
		var turn models.ConversationTurn
		var ts string
		if err := rows.Scan(&turn.Role, &turn.Content, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		turn.Timestamp, _ = time.Parse(timestampFormat, ts)
		history = append(history, turn)
	}
	return history, rows.Err()
}

// Save writes the full history into the cache under the inactivity expiry
// and appends only the newest turn to the durable ledger. The cache entry
// self-expires if the user goes idle; the durable copy is permanent.
func (s *HistoryService) Save(ctx context.Context, userID string, history []models.ConversationTurn) error {
	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	if err := s.cache.Set(ctx, historyKey(userID), string(data), s.ttl); err != nil {
		return fmt.Errorf("failed to cache history: %w", err)
	}

	if len(history) == 0 {
		return nil
	}

	last := history[len(history)-1]
	ts := last.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO conversation_history (user_id, timestamp, role, content) VALUES (?, ?, ?, ?)",
		userID, ts.UTC().Format(timestampFormat), last.Role, last.Content)
	if err != nil {
		return fmt.Errorf("failed to persist turn: %w", err)
	}
	return nil
}
