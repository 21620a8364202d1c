package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Init configures the global slog logger.
// In production (ENVIRONMENT=production) it uses JSON output for log aggregation.
// Otherwise it uses the human-readable text handler.
func Init() {
	env := strings.ToLower(os.Getenv("ENVIRONMENT"))

	var handler slog.Handler
	if env == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}

	slog.SetDefault(slog.New(handler))
}

// WithUser returns a logger with the user context attached.
// Use this for logging along the request-serving path.
func WithUser(userID string) *slog.Logger {
	return slog.With("user_id", userID)
}

// WithConcept returns a logger scoped to one (user, concept) progress record.
func WithConcept(logger *slog.Logger, concept string) *slog.Logger {
	return logger.With("concept", concept)
}
