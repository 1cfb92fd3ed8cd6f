package memory

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/floofbot/floofbridge/internal/core"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&Module{})
}

// OpenBackend opens the two document stores for a non-file backend.
// Registered by backend packages (modules/memory/sqlite) to avoid a
// dependency from this package onto the driver.
type OpenBackend func(path string) (threads, users DocStore, closer func() error, err error)

var backends = map[string]OpenBackend{}

// RegisterBackend makes a persistence backend available under the given
// name. Intended to be called from init() functions.
func RegisterBackend(name string, open OpenBackend) {
	if _, exists := backends[name]; exists {
		panic("memory: backend already registered: " + name)
	}
	backends[name] = open
}

// ModuleConfig configures the memory store module.
type ModuleConfig struct {
	// Backend selects the persistence implementation: "file" (default)
	// or a registered backend such as "sqlite".
	Backend string `yaml:"backend"`

	// Dir overrides the data directory for the state files.
	Dir string `yaml:"dir"`

	// ConversationsFile / UserMemoriesFile name the two JSON documents
	// (file backend) relative to Dir when not absolute.
	ConversationsFile string `yaml:"conversations_file"`
	UserMemoriesFile  string `yaml:"user_memories_file"`

	// SQLitePath is the database path for the sqlite backend.
	SQLitePath string `yaml:"sqlite_path"`

	// ContextFile is the optional read-only memory/context snippet document.
	ContextFile string `yaml:"context_file"`
}

func (c *ModuleConfig) defaults() {
	if c.Backend == "" {
		c.Backend = "file"
	}
	if c.ConversationsFile == "" {
		c.ConversationsFile = "ai-conversations.json"
	}
	if c.UserMemoriesFile == "" {
		c.UserMemoriesFile = "ai-user-memories.json"
	}
	if c.SQLitePath == "" {
		c.SQLitePath = "memory.db"
	}
}

// Module wires the thread and user stores into the app lifecycle and
// publishes them for the bridge handler to discover.
type Module struct {
	config  ModuleConfig
	logger  *slog.Logger
	threads *ThreadStore
	users   *UserStore
	closer  func() error
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "memory.store",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return err
	}
	m.config.defaults()
	return nil
}

// Provision implements core.Provisioner. Stores load their persisted state
// here so that history survives restarts.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.logger = ctx.Logger

	dir := m.config.Dir
	if dir == "" {
		dir = ctx.DataDir
	}

	var threadDoc, userDoc DocStore
	switch m.config.Backend {
	case "file":
		threadDoc = NewFileDocStore(resolvePath(dir, m.config.ConversationsFile))
		userDoc = NewFileDocStore(resolvePath(dir, m.config.UserMemoriesFile))
	default:
		open, ok := backends[m.config.Backend]
		if !ok {
			return fmt.Errorf("memory: unknown backend %q", m.config.Backend)
		}
		var err error
		var closer func() error
		threadDoc, userDoc, closer, err = open(resolvePath(dir, m.config.SQLitePath))
		if err != nil {
			return fmt.Errorf("memory: opening %s backend: %w", m.config.Backend, err)
		}
		m.closer = closer
	}

	m.threads = NewThreadStore(threadDoc, m.logger)
	m.users = NewUserStore(userDoc, m.logger)

	snippetPath := m.config.ContextFile
	if snippetPath != "" {
		snippetPath = resolvePath(dir, snippetPath)
	}

	ctx.RegisterService("memory.threads", m.threads)
	ctx.RegisterService("memory.users", m.users)
	ctx.RegisterService("memory.snippet", SnippetLoader(func() string {
		return LoadContextSnippet(snippetPath)
	}))

	m.logger.Info("memory stores ready",
		"backend", m.config.Backend,
		"threads", m.threads.Len(),
		"users", m.users.Len(),
	)
	return nil
}

// Stop implements core.Stopper.
func (m *Module) Stop(_ context.Context) error {
	if m.closer != nil {
		return m.closer()
	}
	return nil
}

// SnippetLoader returns the current external context snippet, re-reading
// the document on each call so out-of-band edits show up without a restart.
type SnippetLoader func() string

func resolvePath(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// Compile-time interface assertions.
var (
	_ core.Module       = (*Module)(nil)
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Stopper      = (*Module)(nil)
)
