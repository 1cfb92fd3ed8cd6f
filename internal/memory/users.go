package memory

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
)

// UserStore is the durable per-user fact ledger. All access serializes
// through one lock; every mutating call persists the full state through
// the DocStore before returning.
type UserStore struct {
	mu      sync.Mutex
	entries map[string]*UserEntry
	doc     DocStore
	logger  *slog.Logger
	now     func() int64
}

// NewUserStore creates a UserStore backed by the given DocStore and loads
// any previously persisted state. A corrupt or unreadable document degrades
// to an empty ledger rather than failing.
func NewUserStore(doc DocStore, logger *slog.Logger) *UserStore {
	if logger == nil {
		logger = slog.Default()
	}
	s := &UserStore{
		entries: make(map[string]*UserEntry),
		doc:     doc,
		logger:  logger,
		now:     nowMillis,
	}
	s.load()
	return s
}

func (s *UserStore) load() {
	raw, err := s.doc.Load()
	if err != nil {
		s.logger.Warn("user memory load failed, starting empty", "error", err)
		return
	}
	if len(raw) == 0 {
		return
	}
	entries := make(map[string]*UserEntry)
	if err := json.Unmarshal(raw, &entries); err != nil {
		s.logger.Warn("user memory document corrupt, starting empty", "error", err)
		return
	}
	s.entries = entries
}

// persist writes the full ledger. Called with the lock held. A failed save
// is logged and dropped; the in-memory state stays authoritative for the
// lifetime of the process.
func (s *UserStore) persist() {
	raw, err := json.Marshal(s.entries)
	if err != nil {
		s.logger.Error("user memory marshal failed", "error", err)
		return
	}
	if err := s.doc.Save(raw); err != nil {
		s.logger.Error("user memory save failed", "error", err)
	}
}

// RecordFacts extracts self-referential facts from text and appends them to
// the user's ledger. Expired facts are dropped and the ledger is truncated
// to its capacity, oldest first. No-op when the text yields no facts or the
// user ID is empty.
func (s *UserStore) RecordFacts(userID, text string) {
	if userID == "" {
		return
	}
	facts := ExtractFacts(text)
	if len(facts) == 0 {
		return
	}

	now := s.now()
	ttl := UserFactsTTL.Milliseconds()

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[userID]
	if !ok {
		entry = &UserEntry{}
		s.entries[userID] = entry
	}

	fresh := entry.Facts[:0]
	for _, f := range entry.Facts {
		if now-f.T <= ttl {
			fresh = append(fresh, f)
		}
	}
	for _, text := range facts {
		fresh = append(fresh, Fact{T: now, Text: clipRunes(text, storedFactCap)})
	}
	if len(fresh) > UserFactsMax {
		fresh = fresh[len(fresh)-UserFactsMax:]
	}

	entry.Facts = append([]Fact(nil), fresh...)
	entry.Last = now
	s.persist()
}

// Snippet returns the user's most recent non-expired facts joined into one
// capped string, or "" for an unknown user. Read-only: expiry is evaluated
// but nothing is written back (lazy expiry).
func (s *UserStore) Snippet(userID string) string {
	if userID == "" {
		return ""
	}

	now := s.now()
	ttl := UserFactsTTL.Milliseconds()

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[userID]
	if !ok {
		return ""
	}

	var fresh []Fact
	for _, f := range entry.Facts {
		if now-f.T <= ttl {
			fresh = append(fresh, f)
		}
	}
	if len(fresh) == 0 {
		return ""
	}
	if len(fresh) > UserFactsSnippet {
		fresh = fresh[len(fresh)-UserFactsSnippet:]
	}

	parts := make([]string, 0, len(fresh))
	for _, f := range fresh {
		if f.Text != "" {
			parts = append(parts, f.Text)
		}
	}
	return clipRunes(strings.Join(parts, "; "), SnippetMaxLen)
}

// Compact rewrites the ledger dropping expired facts for every user. Used
// by the optional maintenance job; the request path relies on lazy expiry.
// Returns the number of facts removed.
func (s *UserStore) Compact() int {
	now := s.now()
	ttl := UserFactsTTL.Milliseconds()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, entry := range s.entries {
		fresh := entry.Facts[:0]
		for _, f := range entry.Facts {
			if now-f.T <= ttl {
				fresh = append(fresh, f)
			}
		}
		removed += len(entry.Facts) - len(fresh)
		if len(fresh) == 0 {
			delete(s.entries, id)
			continue
		}
		entry.Facts = append([]Fact(nil), fresh...)
	}

	if removed > 0 {
		s.persist()
	}
	return removed
}

// Len returns the number of users with a ledger entry.
func (s *UserStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
