package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/floofbot/floofbridge/internal/core"
	"github.com/floofbot/floofbridge/internal/memory"
	"github.com/floofbot/floofbridge/internal/provider"
)

func init() {
	core.RegisterModule(&Module{})
}

// Config holds the handler module configuration.
type Config struct {
	// TargetGuildID is the single allow-listed server. Messages carrying
	// any other guild ID are skipped before the policy runs.
	TargetGuildID string `yaml:"target_guild_id"`
}

func (c *Config) validate() error {
	if c.TargetGuildID == "" {
		return errors.New("bridge: target_guild_id is required")
	}
	return nil
}

// Module is the request orchestrator. It wires the engagement policy,
// memory stores, prompt assembly, inference call, sanitizer, and timing
// into one Handle sequence, and publishes itself as "bridge.handler" for
// the gateway to call.
type Module struct {
	config  Config
	logger  *slog.Logger
	appCtx  *core.AppContext
	rand    Rand
	llm     provider.Provider
	threads *memory.ThreadStore
	users   *memory.UserStore
	snippet memory.SnippetLoader
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "bridge.handler",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return err
	}
	return nil
}

// Provision implements core.Provisioner. Dependencies on other modules'
// services are resolved later, in Start, once every module is provisioned.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.logger = ctx.Logger
	m.appCtx = ctx
	m.rand = systemRand{}
	ctx.RegisterService("bridge.handler", m)
	return nil
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	return m.config.validate()
}

// Start implements core.Starter.
func (m *Module) Start() error {
	svc, ok := m.appCtx.Service("provider.llm")
	if !ok {
		return provider.ErrNoProvider
	}
	m.llm, ok = svc.(provider.Provider)
	if !ok {
		return fmt.Errorf("bridge: provider.llm service has type %T", svc)
	}

	if svc, ok = m.appCtx.Service("memory.threads"); !ok {
		return errors.New("bridge: memory.threads service not available")
	}
	m.threads = svc.(*memory.ThreadStore)

	if svc, ok = m.appCtx.Service("memory.users"); !ok {
		return errors.New("bridge: memory.users service not available")
	}
	m.users = svc.(*memory.UserStore)

	if svc, ok = m.appCtx.Service("memory.snippet"); ok {
		m.snippet = svc.(memory.SnippetLoader)
	}

	m.logger.Info("bridge handler ready", "target_guild", m.config.TargetGuildID)
	return nil
}

// Handle runs the full sequence for one inbound message. It never fails:
// once engagement is decided the caller always gets a response, degrading
// through fallback lines and, on an unexpected fault, a fixed apology.
func (m *Module) Handle(ctx context.Context, msg Message) (reply Reply) {
	logger := m.logger.With("request_id", uuid.NewString(), "author", msg.AuthorID)

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("handler fault, replying with apology", "panic", rec)
			reply = Reply{
				Engage:          true,
				Response:        apologyLine,
				ResponseDelayMs: apologyDelayMs,
			}
		}
	}()

	content := strings.TrimSpace(msg.Content)
	if content == "" {
		return Reply{Reason: ReasonEmptyContent}
	}
	if msg.GuildID != "" && msg.GuildID != m.config.TargetGuildID {
		return Reply{Reason: ReasonGuildNotAllowed}
	}

	engage, reason := Decide(msg, content)
	if !engage {
		logger.Debug("not engaging", "reason", reason)
		return Reply{Reason: reason}
	}
	logger.Info("engaging", "reason", reason)

	userContent := CleanContent(content)
	key := memory.ThreadKey(msg.GuildID, msg.ChannelID, msg.AuthorID)
	lastAssistant := m.threads.LastAssistantMessage(key)

	in := ContextInput{
		UserSnippet: m.users.Snippet(msg.AuthorID),
		RecentTurns: m.threads.RecentTurns(key, memory.HistoryWindow),
	}
	if m.snippet != nil {
		in.ContextSnippet = m.snippet()
	}

	response := m.complete(ctx, logger, BuildContext(msg, userContent, in))
	if response == "" {
		if msg.IsOwner {
			response = pickLine(m.rand, fallbackLinesOwner)
		} else {
			response = pickLine(m.rand, fallbackLines)
		}
	}
	response = Sanitize(m.rand, msg.IsOwner, lastAssistant, response)

	m.threads.AppendTurn(key, userContent, response)
	if msg.AuthorID != "" {
		m.users.RecordFacts(msg.AuthorID, content)
	}

	reply = Reply{
		Engage:          true,
		Reason:          reason,
		Response:        response,
		ResponseDelayMs: ComputeDelay(m.rand, response, msg.IsOwner),
	}

	if ShouldFollowUp(content, response) && m.rand.Float64() < followUpProbability {
		lines := followUpLines
		if msg.IsOwner {
			lines = followUpLinesOwner
		}
		followUp := Sanitize(m.rand, msg.IsOwner, lastAssistant, pickLine(m.rand, lines))
		reply.FollowUp = followUp
		reply.FollowUpDelayMs = FollowUpDelay(m.rand)
	}
	return reply
}

// complete calls the inference backend and converts every failure into an
// empty string. Degraded outcomes (backend down, malformed reply) log at
// warn; anything else at error. The caller substitutes fallback text.
func (m *Module) complete(ctx context.Context, logger *slog.Logger, messages []provider.LLMMessage) string {
	resp, err := m.llm.Complete(ctx, provider.CompletionRequest{Messages: messages})
	if err != nil {
		if provider.IsDegraded(err) {
			logger.Warn("inference backend degraded", "error", err)
		} else {
			logger.Error("inference call failed", "error", err)
		}
		return ""
	}
	return strings.TrimSpace(resp.Content)
}

// Compile-time interface assertions.
var (
	_ core.Module       = (*Module)(nil)
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
	_ core.Starter      = (*Module)(nil)
)
