package chat

import (
	"sync"

	"github.com/anmerino-pnd/proyectoCenace/pkg/backend"
	"github.com/anmerino-pnd/proyectoCenace/pkg/chatstream"
)

// Entry is one message shown in a conversation.
type Entry struct {
	// Seq identifies the entry inside a Transcript. It is never reused, not
	// even across Reset, so updates for entries of a previous conversation
	// are dropped.
	Seq int

	Role backend.Role
	Text string
	HTML string

	// MessageID is the backend id of a bot answer; empty for user messages,
	// notices and answers whose stream ended without a control payload.
	MessageID  string
	References []chatstream.Reference
	Liked      bool

	// Streaming is true while the answer is still being received.
	Streaming bool

	// Notice marks messages produced by the client itself (greetings and
	// errors). They are not stored by the backend.
	Notice bool
}

// Likeable reports whether the entry is a finished answer with an id.
func (e Entry) Likeable() bool {
	return e.Role == backend.RoleBot && e.MessageID != "" && !e.Streaming && !e.Notice
}

// Transcript is the ordered list of entries of the open conversation.
// It is safe for concurrent use.
type Transcript struct {
	mu      sync.RWMutex
	entries []Entry
	seq     int
	gen     uint64
}

func NewTranscript() *Transcript {
	return &Transcript{}
}

// Reset drops every entry and starts a new generation.
func (t *Transcript) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = nil
	t.gen++
}

// Generation counts the resets so far.
func (t *Transcript) Generation() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.gen
}

// Append adds e and returns it with its Seq assigned.
func (t *Transcript) Append(e Entry) Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.appendLocked(e)
}

// AppendTo appends e only while the transcript is still at generation gen.
func (t *Transcript) AppendTo(gen uint64, e Entry) (Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.gen != gen {
		return Entry{}, false
	}
	return t.appendLocked(e), true
}

func (t *Transcript) appendLocked(e Entry) Entry {
	t.seq++
	e.Seq = t.seq
	t.entries = append(t.entries, e)
	return e
}

// Update replaces the entry with the same Seq. It returns false when the
// entry is no longer part of the transcript.
func (t *Transcript) Update(e Entry) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.entries {
		if t.entries[i].Seq == e.Seq {
			t.entries[i] = e
			return true
		}
	}
	return false
}

// Entries returns a copy of the entries in order.
func (t *Transcript) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Find returns the entry holding the answer messageID.
func (t *Transcript) Find(messageID string) (Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, e := range t.entries {
		if e.MessageID == messageID && messageID != "" {
			return e, true
		}
	}
	return Entry{}, false
}

// SetLiked sets the liked flag of the answer messageID. It returns the
// updated entry and the previous flag; ok is false when no entry holds
// that answer.
func (t *Transcript) SetLiked(messageID string, liked bool) (updated Entry, previous bool, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.entries {
		if messageID != "" && t.entries[i].MessageID == messageID {
			previous = t.entries[i].Liked
			t.entries[i].Liked = liked
			return t.entries[i], previous, true
		}
	}
	return Entry{}, false, false
}
