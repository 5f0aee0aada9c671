package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeMessageSealed is emitted when a streamed answer is sealed.
	EventTypeMessageSealed = "cenace.message.sealed"

	// EventTypeMessageLiked is emitted when an answer is liked or unliked.
	EventTypeMessageLiked = "cenace.message.liked"
)

// Event is a transport-neutral event payload. Exactly one of Sealed and
// Liked is set, matching EventType.
type Event struct {
	SchemaVersion int            `json:"schema_version"`
	EventType     string         `json:"event_type"`
	EventID       string         `json:"event_id"`
	EmittedAt     time.Time      `json:"emitted_at"`
	Source        EventSource    `json:"source"`
	Sealed        *MessageSealed `json:"sealed,omitempty"`
	Liked         *MessageLiked  `json:"liked,omitempty"`
}

// EventSource identifies the client that emitted the event.
type EventSource struct {
	Client      string `json:"client"`
	Version     string `json:"version,omitempty"`
	APIEndpoint string `json:"api_endpoint,omitempty"`
}

// MessageSealed describes an answer at the moment it was sealed.
type MessageSealed struct {
	UserID         string    `json:"user_id"`
	ConversationID string    `json:"conversation_id"`
	MessageID      string    `json:"message_id,omitempty"`
	Degraded       bool      `json:"degraded"`
	TextLength     int       `json:"text_length"`
	ReferenceIDs   []string  `json:"reference_ids,omitempty"`
	StartedAt      time.Time `json:"started_at"`
	CompletedAt    time.Time `json:"completed_at"`
	DurationMs     int64     `json:"duration_ms"`
}

// MessageLiked records a like toggle that the backend accepted.
type MessageLiked struct {
	UserID    string `json:"user_id"`
	MessageID string `json:"message_id"`
	Liked     bool   `json:"liked"`
}

func newEvent(src EventSource, eventType string) *Event {
	return &Event{
		SchemaVersion: SchemaVersionV1,
		EventType:     eventType,
		EventID:       "evt_" + uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Source:        src,
	}
}

// NewSealedEvent builds a cenace.message.sealed event.
func NewSealedEvent(src EventSource, sealed MessageSealed) *Event {
	e := newEvent(src, EventTypeMessageSealed)
	if sealed.DurationMs == 0 && !sealed.StartedAt.IsZero() && !sealed.CompletedAt.IsZero() {
		sealed.DurationMs = sealed.CompletedAt.Sub(sealed.StartedAt).Milliseconds()
	}
	e.Sealed = &sealed
	return e
}

// NewLikedEvent builds a cenace.message.liked event.
func NewLikedEvent(src EventSource, liked MessageLiked) *Event {
	e := newEvent(src, EventTypeMessageLiked)
	e.Liked = &liked
	return e
}

// Key is the partition key of the event: events of one user stay ordered.
func (e *Event) Key() string {
	switch {
	case e.Sealed != nil:
		return e.Sealed.UserID
	case e.Liked != nil:
		return e.Liked.UserID
	default:
		return e.EventID
	}
}
