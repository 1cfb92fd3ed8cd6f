// Package memory provides the per-thread conversation history and the
// per-user long-term fact ledger, both persisted as full-state JSON
// documents through a pluggable DocStore.
package memory

import "time"

// Tuning constants. The stored-turn bound is twice MaxTurns because a
// turn pair (user + assistant) is always appended together.
const (
	// MaxTurns is the number of exchanges kept per thread.
	MaxTurns = 10

	// HistoryWindow bounds how old a turn may be and still be offered
	// as model context.
	HistoryWindow = 20 * time.Minute

	// UserFactsMax bounds the fact ledger per user.
	UserFactsMax = 12

	// UserFactsSnippet is how many recent facts a snippet includes.
	UserFactsSnippet = 3

	// UserFactsTTL expires facts from retrieval. Expired facts are
	// filtered on read and physically dropped on the next write.
	UserFactsTTL = 90 * 24 * time.Hour

	// SnippetMaxLen caps the joined snippet string.
	SnippetMaxLen = 350

	// storedFactCap caps a single stored fact's text.
	storedFactCap = 200

	// assistantTurnOffset keeps user/assistant ordering stable when both
	// turns land on the same millisecond.
	assistantTurnOffset = 100
)

// Turn is a single message in a conversation thread. Immutable once created.
type Turn struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
}

// Thread is the ordered turn history for one (guild-or-channel, author) pair.
type Thread struct {
	Turns []Turn `json:"turns"`
	Last  int64  `json:"last"` // unix milliseconds of last activity
}

// Fact is one extracted self-referential statement with its capture time.
type Fact struct {
	T    int64  `json:"t"` // unix milliseconds
	Text string `json:"text"`
}

// UserEntry is the fact ledger for one user.
type UserEntry struct {
	Facts []Fact `json:"facts"`
	Last  int64  `json:"last"` // unix milliseconds of last update
}

// DocStore persists one JSON document as a single unit. Implementations:
// the default full-state-overwrite file store and the optional sqlite
// backend. Save replaces the whole document; there is no append log.
type DocStore interface {
	// Load returns the stored document, or nil if none exists yet.
	Load() ([]byte, error)

	// Save atomically replaces the stored document.
	Save(doc []byte) error
}

// nowMillis is the production clock for both stores.
func nowMillis() int64 {
	return time.Now().UnixMilli()
}
