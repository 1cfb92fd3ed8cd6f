package memory

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// memDoc is an in-memory DocStore for tests.
type memDoc struct {
	mu      sync.Mutex
	data    []byte
	saves   int
	loadErr error
	saveErr error
}

func (d *memDoc) Load() ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.loadErr != nil {
		return nil, d.loadErr
	}
	return d.data, nil
}

func (d *memDoc) Save(doc []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.saveErr != nil {
		return d.saveErr
	}
	d.data = append([]byte(nil), doc...)
	d.saves++
	return nil
}

var _ DocStore = (*memDoc)(nil)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixedClock returns a controllable millisecond clock.
func fixedClock(start int64) (*int64, func() int64) {
	now := start
	return &now, func() int64 { return now }
}

func TestThreadKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                   string
		guild, channel, author string
		want                   string
	}{
		{"guild scoped", "g1", "ch9", "u1", "guild:g1:u1"},
		{"dm with channel", "", "ch9", "u1", "dm:ch9:u1"},
		{"dm without channel", "", "", "u1", "dm:c0:u1"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ThreadKey(tt.guild, tt.channel, tt.author); got != tt.want {
				t.Errorf("ThreadKey(%q,%q,%q) = %q, want %q", tt.guild, tt.channel, tt.author, got, tt.want)
			}
		})
	}

	// Guild and channel scope must never collide for the same author.
	if ThreadKey("x", "", "u1") == ThreadKey("", "x", "u1") {
		t.Error("guild and dm keys collide")
	}
}

func TestThreadStore_AppendTurnPairsAndBounds(t *testing.T) {
	t.Parallel()

	doc := &memDoc{}
	s := NewThreadStore(doc, testLogger())
	now, clock := fixedClock(1_000_000)
	s.now = clock

	for i := 0; i < 15; i++ {
		s.AppendTurn("guild:g:u", "ping", "pong")
		*now += 1000
	}

	turns := s.RecentTurns("guild:g:u", time.Hour)
	if len(turns) != MaxTurns*2 {
		t.Fatalf("stored %d turns, want %d", len(turns), MaxTurns*2)
	}
	if len(turns)%2 != 0 {
		t.Error("turn count is odd; exchanges must be complete pairs")
	}
	if turns[len(turns)-1].Role != "assistant" {
		t.Error("last turn is not an assistant turn")
	}
	for i := 0; i+1 < len(turns); i += 2 {
		if turns[i].Role != "user" || turns[i+1].Role != "assistant" {
			t.Fatalf("turn pair %d = (%s,%s), want (user,assistant)", i/2, turns[i].Role, turns[i+1].Role)
		}
		if turns[i+1].Timestamp != turns[i].Timestamp+assistantTurnOffset {
			t.Errorf("assistant timestamp %d, want user+%d", turns[i+1].Timestamp, assistantTurnOffset)
		}
	}

	if doc.saves != 15 {
		t.Errorf("saves = %d, want one per AppendTurn", doc.saves)
	}
}

func TestThreadStore_RecentTurnsWindow(t *testing.T) {
	t.Parallel()

	s := NewThreadStore(&memDoc{}, testLogger())
	now, clock := fixedClock(0)
	s.now = clock

	s.AppendTurn("k", "old", "old reply")
	*now = HistoryWindow.Milliseconds() + 1000
	s.AppendTurn("k", "new", "new reply")

	turns := s.RecentTurns("k", HistoryWindow)
	if len(turns) != 2 {
		t.Fatalf("got %d turns, want only the fresh pair", len(turns))
	}
	if turns[0].Content != "new" {
		t.Errorf("turns[0].Content = %q, want %q", turns[0].Content, "new")
	}

	// Filtering is read-only: the old pair is still stored.
	if all := s.RecentTurns("k", time.Hour*24*365); len(all) != 4 {
		t.Errorf("stored turns = %d, want 4 (lazy expiry)", len(all))
	}
}

func TestThreadStore_LastAssistantMessage(t *testing.T) {
	t.Parallel()

	s := NewThreadStore(&memDoc{}, testLogger())
	if got := s.LastAssistantMessage("nope"); got != "" {
		t.Errorf("unknown thread = %q, want empty", got)
	}

	s.AppendTurn("k", "hi", "  hello!  ")
	if got := s.LastAssistantMessage("k"); got != "hello!" {
		t.Errorf("LastAssistantMessage = %q, want %q", got, "hello!")
	}
}

func TestThreadStore_PersistenceRoundTrip(t *testing.T) {
	t.Parallel()

	doc := &memDoc{}
	s := NewThreadStore(doc, testLogger())
	s.AppendTurn("guild:g:u", "hello", "hey there")

	// The persisted document keeps the original bridge file shape.
	var persisted map[string]struct {
		Turns []Turn `json:"turns"`
		Last  int64  `json:"last"`
	}
	if err := json.Unmarshal(doc.data, &persisted); err != nil {
		t.Fatalf("unmarshal persisted doc: %v", err)
	}
	if len(persisted["guild:g:u"].Turns) != 2 {
		t.Fatalf("persisted turns = %d, want 2", len(persisted["guild:g:u"].Turns))
	}

	reloaded := NewThreadStore(doc, testLogger())
	if got := reloaded.LastAssistantMessage("guild:g:u"); got != "hey there" {
		t.Errorf("reloaded LastAssistantMessage = %q, want %q", got, "hey there")
	}
}

func TestThreadStore_CorruptDocumentStartsEmpty(t *testing.T) {
	t.Parallel()

	doc := &memDoc{data: []byte("{broken")}
	s := NewThreadStore(doc, testLogger())
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0 after corrupt load", s.Len())
	}

	failing := &memDoc{loadErr: errors.New("disk gone")}
	s = NewThreadStore(failing, testLogger())
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0 after load error", s.Len())
	}
}

func TestThreadStore_SaveFailureDoesNotPanic(t *testing.T) {
	t.Parallel()

	doc := &memDoc{saveErr: errors.New("read-only fs")}
	s := NewThreadStore(doc, testLogger())
	s.AppendTurn("k", "hi", "yo")

	// In-memory state stays authoritative.
	if got := s.LastAssistantMessage("k"); got != "yo" {
		t.Errorf("LastAssistantMessage = %q, want %q", got, "yo")
	}
}

func TestUserStore_RecordFactsBoundsAndExpiry(t *testing.T) {
	t.Parallel()

	doc := &memDoc{}
	s := NewUserStore(doc, testLogger())
	now, clock := fixedClock(1_000)
	s.now = clock

	s.RecordFacts("u1", "I like apples")
	s.RecordFacts("u1", "no facts here at all")
	if doc.saves != 1 {
		t.Errorf("saves = %d; factless text must not persist", doc.saves)
	}

	// Push past the ledger cap.
	letters := []string{"b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m", "n"}
	for _, l := range letters {
		s.RecordFacts("u1", "I like "+l+l+l)
	}

	s.mu.Lock()
	count := len(s.entries["u1"].Facts)
	oldest := s.entries["u1"].Facts[0].Text
	s.mu.Unlock()

	if count != UserFactsMax {
		t.Fatalf("facts = %d, want cap %d", count, UserFactsMax)
	}
	if oldest == "I like apples" {
		t.Error("oldest fact survived eviction; eviction must be FIFO")
	}

	// Expired facts disappear on the next write.
	*now += UserFactsTTL.Milliseconds() + 1
	s.RecordFacts("u1", "I'm back after a long time")

	s.mu.Lock()
	count = len(s.entries["u1"].Facts)
	s.mu.Unlock()
	if count != 1 {
		t.Errorf("facts after TTL write = %d, want 1", count)
	}
}

func TestUserStore_Snippet(t *testing.T) {
	t.Parallel()

	s := NewUserStore(&memDoc{}, testLogger())
	_, clock := fixedClock(5_000)
	s.now = clock

	if got := s.Snippet("unknown"); got != "" {
		t.Errorf("Snippet(unknown) = %q, want empty", got)
	}

	s.RecordFacts("u1", "I like tea. I love rain. My cat is named Bo. I'm from Oslo.")
	got := s.Snippet("u1")

	// Only the three most recent facts make the snippet.
	if strings.Contains(got, "I like tea") {
		t.Errorf("snippet %q contains evicted fact", got)
	}
	for _, want := range []string{"I love rain", "My cat is named Bo", "I'm from Oslo"} {
		if !strings.Contains(got, want) {
			t.Errorf("snippet %q missing %q", got, want)
		}
	}

	// Expired facts are filtered on read but not rewritten (lazy expiry).
	doc := &memDoc{}
	s2 := NewUserStore(doc, testLogger())
	now2, clock2 := fixedClock(5_000)
	s2.now = clock2
	s2.RecordFacts("u2", "I like winter")
	savesBefore := doc.saves
	*now2 += UserFactsTTL.Milliseconds() + 1
	if got := s2.Snippet("u2"); got != "" {
		t.Errorf("Snippet after TTL = %q, want empty", got)
	}
	if doc.saves != savesBefore {
		t.Error("Snippet persisted state; reads must not write")
	}
}

func TestUserStore_SnippetCap(t *testing.T) {
	t.Parallel()

	s := NewUserStore(&memDoc{}, testLogger())
	long := strings.Repeat("y", 150)
	s.RecordFacts("u1", "I am "+long+". I like "+long+". My thing is "+long+".")
	if n := len([]rune(s.Snippet("u1"))); n > SnippetMaxLen {
		t.Errorf("snippet length = %d, want <= %d", n, SnippetMaxLen)
	}
}

func TestUserStore_PersistenceShape(t *testing.T) {
	t.Parallel()

	doc := &memDoc{}
	s := NewUserStore(doc, testLogger())
	s.RecordFacts("42", "I'm a test user")

	var persisted map[string]struct {
		Facts []struct {
			T    int64  `json:"t"`
			Text string `json:"text"`
		} `json:"facts"`
		Last int64 `json:"last"`
	}
	if err := json.Unmarshal(doc.data, &persisted); err != nil {
		t.Fatalf("unmarshal persisted doc: %v", err)
	}
	entry, ok := persisted["42"]
	if !ok || len(entry.Facts) != 1 {
		t.Fatalf("persisted entry = %+v, want one fact under key 42", persisted)
	}
	if entry.Facts[0].Text != "I'm a test user" {
		t.Errorf("fact text = %q", entry.Facts[0].Text)
	}
}

func TestStores_Compact(t *testing.T) {
	t.Parallel()

	threads := NewThreadStore(&memDoc{}, testLogger())
	tnow, tclock := fixedClock(0)
	threads.now = tclock
	threads.AppendTurn("k", "old", "old")
	*tnow = HistoryWindow.Milliseconds() + 1000
	threads.AppendTurn("k", "new", "new")

	if removed := threads.Compact(HistoryWindow); removed != 2 {
		t.Errorf("threads.Compact removed %d, want 2", removed)
	}
	if all := threads.RecentTurns("k", time.Hour*24); len(all) != 2 {
		t.Errorf("turns after compact = %d, want 2", len(all))
	}

	users := NewUserStore(&memDoc{}, testLogger())
	unow, uclock := fixedClock(0)
	users.now = uclock
	users.RecordFacts("u", "I like snow")
	*unow = UserFactsTTL.Milliseconds() + 1000

	if removed := users.Compact(); removed != 1 {
		t.Errorf("users.Compact removed %d, want 1", removed)
	}
	if users.Len() != 0 {
		t.Errorf("users.Len = %d, want 0 after compacting the only entry", users.Len())
	}
}
