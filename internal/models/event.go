package models

// Event types published on the shared channel. Consumers ignore
// unknown types rather than failing.
const (
	EventHistorySaved = "history_saved"
)

// Event is the payload exchanged between the serving path and the
// progress worker. Delivery is at-most-once: if no subscriber is
// listening when an event is published, it is lost.
type Event struct {
	Type    string `json:"type"`
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}
