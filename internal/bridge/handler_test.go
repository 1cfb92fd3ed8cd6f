package bridge

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"strings"
	"testing"

	"github.com/floofbot/floofbridge/internal/memory"
	"github.com/floofbot/floofbridge/internal/provider"
)

const testGuild = "1393659651832152185"

// stubProvider returns canned completions.
type stubProvider struct {
	content string
	err     error
	calls   int
	gotReq  provider.CompletionRequest
}

func (p *stubProvider) Complete(_ context.Context, req provider.CompletionRequest) (provider.CompletionResponse, error) {
	p.calls++
	p.gotReq = req
	if p.err != nil {
		return provider.CompletionResponse{}, p.err
	}
	return provider.CompletionResponse{Content: p.content}, nil
}

func (p *stubProvider) ContextWindowSize() int { return 4096 }
func (p *stubProvider) ModelName() string      { return "test-model" }

// panicProvider simulates an unexpected internal fault mid-handling.
type panicProvider struct{ stubProvider }

func (p *panicProvider) Complete(context.Context, provider.CompletionRequest) (provider.CompletionResponse, error) {
	panic("boom")
}

type nullDoc struct{}

func (nullDoc) Load() ([]byte, error) { return nil, nil }
func (nullDoc) Save([]byte) error     { return nil }

func newTestModule(llm provider.Provider) *Module {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &Module{
		config:  Config{TargetGuildID: testGuild},
		logger:  logger,
		rand:    rand.New(rand.NewSource(7)),
		llm:     llm,
		threads: memory.NewThreadStore(nullDoc{}, logger),
		users:   memory.NewUserStore(nullDoc{}, logger),
		snippet: func() string { return "" },
	}
}

func TestHandle_EmptyContentSkips(t *testing.T) {
	t.Parallel()

	m := newTestModule(&stubProvider{content: "hi"})
	reply := m.Handle(context.Background(), Message{GuildID: testGuild, Content: "   "})
	if reply.Engage {
		t.Error("engaged on empty content")
	}
	if reply.Reason != ReasonEmptyContent {
		t.Errorf("reason = %s, want %s", reply.Reason, ReasonEmptyContent)
	}
}

func TestHandle_GuildAllowList(t *testing.T) {
	t.Parallel()

	stub := &stubProvider{content: "hello!"}
	m := newTestModule(stub)

	reply := m.Handle(context.Background(), Message{GuildID: "other-id", Content: "floof help me"})
	if reply.Engage {
		t.Error("engaged for a non-allow-listed guild")
	}
	if reply.Reason != ReasonGuildNotAllowed {
		t.Errorf("reason = %s, want %s", reply.Reason, ReasonGuildNotAllowed)
	}
	if stub.calls != 0 {
		t.Error("backend called despite allow-list rejection")
	}
}

func TestHandle_NameMentionEngages(t *testing.T) {
	t.Parallel()

	stub := &stubProvider{content: "doing great, thanks for asking!"}
	m := newTestModule(stub)

	reply := m.Handle(context.Background(), Message{
		GuildID:  testGuild,
		AuthorID: "u1",
		Content:  "hey floof how are you",
	})

	if !reply.Engage {
		t.Fatal("expected engagement")
	}
	if reply.Reason != ReasonNameMention {
		t.Errorf("reason = %s, want %s", reply.Reason, ReasonNameMention)
	}
	if reply.Response != "doing great, thanks for asking!" {
		t.Errorf("response = %q", reply.Response)
	}
	if reply.ResponseDelayMs < 200 || reply.ResponseDelayMs > 4000 {
		t.Errorf("delay = %d, outside [200, 4000]", reply.ResponseDelayMs)
	}

	// The name is stripped from the prompt's final user message.
	last := stub.gotReq.Messages[len(stub.gotReq.Messages)-1]
	if strings.Contains(strings.ToLower(last.Content), "floof") {
		t.Errorf("prompt user message still contains the name: %q", last.Content)
	}

	// The exchange landed in thread memory.
	key := memory.ThreadKey(testGuild, "", "u1")
	if got := m.threads.LastAssistantMessage(key); got != reply.Response {
		t.Errorf("stored assistant message = %q, want %q", got, reply.Response)
	}
}

func TestHandle_BackendFailureUsesFallback(t *testing.T) {
	t.Parallel()

	m := newTestModule(&stubProvider{err: provider.ErrBackendDown})
	reply := m.Handle(context.Background(), Message{
		GuildID:  testGuild,
		AuthorID: "u1",
		Content:  "floof are you there",
	})

	if !reply.Engage {
		t.Fatal("backend failure must not cancel engagement")
	}
	found := false
	for _, line := range fallbackLines {
		if reply.Response == line {
			found = true
		}
	}
	if !found {
		t.Errorf("response %q is not a fallback line", reply.Response)
	}
	if reply.ResponseDelayMs < 200 || reply.ResponseDelayMs > 4000 {
		t.Errorf("delay = %d, outside [200, 4000]", reply.ResponseDelayMs)
	}
}

func TestHandle_OwnerBackendFailureUsesOwnerFallback(t *testing.T) {
	t.Parallel()

	m := newTestModule(&stubProvider{err: errors.New("weird failure")})
	reply := m.Handle(context.Background(), Message{
		IsOwner:  true,
		AuthorID: "owner",
		Content:  "hello",
	})

	if !reply.Engage {
		t.Fatal("expected engagement for owner")
	}
	found := false
	for _, line := range fallbackLinesOwner {
		if reply.Response == line {
			found = true
		}
	}
	if !found {
		t.Errorf("response %q is not an owner fallback line", reply.Response)
	}
}

func TestHandle_RepeatBackendTextGetsDeduped(t *testing.T) {
	t.Parallel()

	stub := &stubProvider{content: "Sounds like a plan."}
	m := newTestModule(stub)
	msg := Message{GuildID: testGuild, AuthorID: "u1", Content: "floof what do you think"}

	first := m.Handle(context.Background(), msg)
	second := m.Handle(context.Background(), msg)

	if first.Response != "Sounds like a plan." {
		t.Fatalf("first response = %q", first.Response)
	}
	if second.Response == first.Response {
		t.Errorf("second response %q repeats the first verbatim", second.Response)
	}
}

func TestHandle_RecordsUserFacts(t *testing.T) {
	t.Parallel()

	m := newTestModule(&stubProvider{content: "nice!"})
	m.Handle(context.Background(), Message{
		GuildID:  testGuild,
		AuthorID: "u1",
		Content:  "floof I'm from Lisbon",
	})

	if got := m.users.Snippet("u1"); !strings.Contains(got, "I'm from Lisbon") {
		t.Errorf("user snippet = %q, want the extracted fact", got)
	}
}

func TestHandle_FollowUp(t *testing.T) {
	t.Parallel()

	m := newTestModule(&stubProvider{content: "That sounds rough."})
	// Intn(5) = 0 picks the first follow-up line, Intn(5001) = 0 the
	// minimum delay; Float64 = 0 passes the probability gate.
	m.rand = &seqRand{ints: []int{0, 0, 0, 0}, floats: []float64{0}}

	reply := m.Handle(context.Background(), Message{
		GuildID:  testGuild,
		AuthorID: "u1",
		Content:  "floof i'm feeling pretty sad today",
	})

	if reply.FollowUp == "" {
		t.Fatal("expected a follow-up")
	}
	if reply.FollowUp != followUpLines[0] {
		t.Errorf("follow-up = %q, want %q", reply.FollowUp, followUpLines[0])
	}
	if reply.FollowUpDelayMs < 3000 || reply.FollowUpDelayMs > 8000 {
		t.Errorf("follow-up delay = %d, outside [3000, 8000]", reply.FollowUpDelayMs)
	}

	// Probability gate failing suppresses the follow-up.
	m2 := newTestModule(&stubProvider{content: "That sounds rough."})
	m2.rand = &seqRand{ints: []int{0, 0, 0, 0}, floats: []float64{0.9}}
	reply = m2.Handle(context.Background(), Message{
		GuildID:  testGuild,
		AuthorID: "u1",
		Content:  "floof i'm feeling pretty sad today",
	})
	if reply.FollowUp != "" {
		t.Errorf("follow-up = %q, want none when the coin flip fails", reply.FollowUp)
	}
}

func TestHandle_PanicYieldsApology(t *testing.T) {
	t.Parallel()

	m := newTestModule(&panicProvider{})
	reply := m.Handle(context.Background(), Message{
		GuildID:  testGuild,
		AuthorID: "u1",
		Content:  "floof hello",
	})

	if !reply.Engage {
		t.Fatal("fault recovery must still engage")
	}
	if reply.Response != apologyLine {
		t.Errorf("response = %q, want the apology line", reply.Response)
	}
	if reply.ResponseDelayMs != apologyDelayMs {
		t.Errorf("delay = %d, want %d", reply.ResponseDelayMs, apologyDelayMs)
	}
}

// seqRand feeds fixed values.
type seqRand struct {
	ints   []int
	floats []float64
}

func (r *seqRand) Intn(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0] % n
	r.ints = r.ints[1:]
	return v
}

func (r *seqRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}
