package memory

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// ThreadKey derives the conversation identity for a message. Continuity is
// tracked per author, not per whole channel, so two users in the same guild
// never share history. Outside a guild the channel ID scopes the key to
// avoid leakage across direct-message channels.
func ThreadKey(guildID, channelID, authorID string) string {
	if guildID != "" {
		return fmt.Sprintf("guild:%s:%s", guildID, authorID)
	}
	if channelID == "" {
		channelID = "c0"
	}
	return fmt.Sprintf("dm:%s:%s", channelID, authorID)
}

// ThreadStore is the durable per-thread turn history. Same discipline as
// UserStore: one lock, full-state persistence on every mutation.
type ThreadStore struct {
	mu      sync.Mutex
	threads map[string]*Thread
	doc     DocStore
	logger  *slog.Logger
	now     func() int64
}

// NewThreadStore creates a ThreadStore backed by the given DocStore and
// loads any previously persisted state.
func NewThreadStore(doc DocStore, logger *slog.Logger) *ThreadStore {
	if logger == nil {
		logger = slog.Default()
	}
	s := &ThreadStore{
		threads: make(map[string]*Thread),
		doc:     doc,
		logger:  logger,
		now:     nowMillis,
	}
	s.load()
	return s
}

func (s *ThreadStore) load() {
	raw, err := s.doc.Load()
	if err != nil {
		s.logger.Warn("conversation load failed, starting empty", "error", err)
		return
	}
	if len(raw) == 0 {
		return
	}
	threads := make(map[string]*Thread)
	if err := json.Unmarshal(raw, &threads); err != nil {
		s.logger.Warn("conversation document corrupt, starting empty", "error", err)
		return
	}
	s.threads = threads
}

func (s *ThreadStore) persist() {
	raw, err := json.Marshal(s.threads)
	if err != nil {
		s.logger.Error("conversation marshal failed", "error", err)
		return
	}
	if err := s.doc.Save(raw); err != nil {
		s.logger.Error("conversation save failed", "error", err)
	}
}

// AppendTurn records one complete exchange: the user turn and the assistant
// turn are appended together, never separately. The assistant timestamp is
// offset so ordering survives millisecond collisions. The thread is trimmed
// to the most recent 2×MaxTurns turns, oldest evicted first.
func (s *ThreadStore) AppendTurn(key, userText, assistantText string) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	thread, ok := s.threads[key]
	if !ok {
		thread = &Thread{Last: now}
		s.threads[key] = thread
	}

	thread.Turns = append(thread.Turns,
		Turn{Role: "user", Content: userText, Timestamp: now},
		Turn{Role: "assistant", Content: assistantText, Timestamp: now + assistantTurnOffset},
	)
	if limit := MaxTurns * 2; len(thread.Turns) > limit {
		thread.Turns = append([]Turn(nil), thread.Turns[len(thread.Turns)-limit:]...)
	}
	thread.Last = now
	s.persist()
}

// RecentTurns returns the thread's turns newer than the window, in storage
// order (oldest first), capped to the most recent 2×MaxTurns. Expired turns
// are filtered, not removed; only AppendTurn evicts.
func (s *ThreadStore) RecentTurns(key string, window time.Duration) []Turn {
	now := s.now()
	windowMs := window.Milliseconds()

	s.mu.Lock()
	defer s.mu.Unlock()

	thread, ok := s.threads[key]
	if !ok {
		return nil
	}

	var recent []Turn
	for _, turn := range thread.Turns {
		if now-turn.Timestamp < windowMs {
			recent = append(recent, turn)
		}
	}
	if limit := MaxTurns * 2; len(recent) > limit {
		recent = recent[len(recent)-limit:]
	}
	return recent
}

// LastAssistantMessage returns the most recent assistant turn's content for
// the thread, or "" when the thread is unknown or has no assistant turn.
func (s *ThreadStore) LastAssistantMessage(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	thread, ok := s.threads[key]
	if !ok {
		return ""
	}
	for i := len(thread.Turns) - 1; i >= 0; i-- {
		if thread.Turns[i].Role == "assistant" {
			return strings.TrimSpace(thread.Turns[i].Content)
		}
	}
	return ""
}

// Compact rewrites every thread dropping turns outside the history window.
// Used by the optional maintenance job. Returns the number of turns removed.
func (s *ThreadStore) Compact(window time.Duration) int {
	now := s.now()
	windowMs := window.Milliseconds()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, thread := range s.threads {
		fresh := thread.Turns[:0]
		for _, turn := range thread.Turns {
			if now-turn.Timestamp < windowMs {
				fresh = append(fresh, turn)
			}
		}
		removed += len(thread.Turns) - len(fresh)
		if len(fresh) == 0 {
			delete(s.threads, key)
			continue
		}
		thread.Turns = append([]Turn(nil), fresh...)
	}

	if removed > 0 {
		s.persist()
	}
	return removed
}

// Len returns the number of tracked threads.
func (s *ThreadStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.threads)
}
