// Package autocrew provides a high-level facade over the agent runtime,
// the roster planner and the team scheduler. Most applications interact
// with this package by:
//  1. Creating an AutoCrew via New() (optionally overriding config, model
//     and stores)
//  2. Chatting with the default agent (Chat)
//  3. Launching autonomous team runs (RunTeam)
//
// Defaults are safe for local use: configuration from ~/.autocrew, the
// OpenAI backend with credentials from the environment, a JSONL session
// file and a SQLite run archive.
package autocrew

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	openaisdk "github.com/openai/openai-go"

	"github.com/hupe1980/autocrew/agent"
	"github.com/hupe1980/autocrew/config"
	"github.com/hupe1980/autocrew/core"
	"github.com/hupe1980/autocrew/logging"
	"github.com/hupe1980/autocrew/model"
	"github.com/hupe1980/autocrew/model/anthropic"
	"github.com/hupe1980/autocrew/model/openai"
	"github.com/hupe1980/autocrew/roster"
	"github.com/hupe1980/autocrew/session"
	"github.com/hupe1980/autocrew/skill"
	"github.com/hupe1980/autocrew/store"
	"github.com/hupe1980/autocrew/team"
	"github.com/hupe1980/autocrew/tool"
)

// Options configure the AutoCrew instance. Any unset service is initialized
// from the resolved configuration.
type Options struct {
	// Config overrides the loaded configuration entirely.
	Config *config.Config
	// Model overrides the provider-derived model, e.g. a scripted model in
	// tests.
	Model model.Model
	// Observer receives run events. Defaults to a no-op; the CLI installs
	// the console observer.
	Observer core.Observer
	// Logger defaults to a slog text logger at the configured level.
	Logger logging.Logger
	// Session overrides the JSONL session store.
	Session session.Store
	// Archive overrides the SQLite run archive. Explicitly setting nil via
	// DisableArchive skips archiving.
	Archive *store.Store
	// DisableArchive skips opening the run archive.
	DisableArchive bool
	// Skills overrides the skill registry rooted at the config skills dir.
	Skills *skill.Registry
	// Workspace roots the file tools. Empty means the working directory.
	Workspace string
}

// AutoCrew aggregates the chat agent, the tool registry and the shared
// stores behind a small API surface.
type AutoCrew struct {
	cfg      config.Config
	llm      model.Model
	tools    *tool.Registry
	chat     *agent.Agent
	sess     session.Store
	archive  *store.Store
	skills   *skill.Registry
	observer core.Observer
	logger   logging.Logger
}

// New creates an AutoCrew instance with optional overrides.
func New(optFns ...func(o *Options)) (*AutoCrew, error) {
	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}

	var cfg config.Config
	if opts.Config != nil {
		cfg = *opts.Config
	} else {
		loaded, err := config.Load("")
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.New(&logging.Config{
			Level:  logging.ParseLevel(cfg.LogLevel),
			Format: "text",
			Output: os.Stderr,
		})
	}
	observer := opts.Observer
	if observer == nil {
		observer = core.NopObserver{}
	}

	llm := opts.Model
	if llm == nil {
		built, err := buildModel(cfg)
		if err != nil {
			return nil, err
		}
		llm = built
	}

	skills := opts.Skills
	if skills == nil {
		reg, err := skill.NewRegistry(cfg.SkillsDir())
		if err != nil {
			logger.Warn("skills.unavailable", "dir", cfg.SkillsDir(), "error", err.Error())
		} else {
			skills = reg
		}
	}

	archive := opts.Archive
	if archive == nil && !opts.DisableArchive {
		opened, err := store.Open(cfg.StorePath())
		if err != nil {
			logger.Warn("archive.unavailable", "path", cfg.StorePath(), "error", err.Error())
		} else {
			archive = opened
		}
	}

	sess := opts.Session
	if sess == nil {
		sess = session.NewFileStore(cfg.SessionPath())
	}

	ac := &AutoCrew{
		cfg:      cfg,
		llm:      llm,
		sess:     sess,
		archive:  archive,
		skills:   skills,
		observer: observer,
		logger:   logger,
	}

	ac.tools = tool.NewBuiltins(func(o *tool.BuiltinsOptions) {
		o.Workspace = opts.Workspace
		o.Skills = skills
		o.Spawn = ac.runSpawned
		o.ExecTimeout = cfg.ToolTimeout
		if os.Getenv("OPENAI_API_KEY") != "" {
			client := openaisdk.NewClient()
			o.OpenAIClient = &client
		}
	})

	dispatcher := tool.NewDispatcher(ac.tools, func(o *tool.DispatcherOptions) {
		o.Timeout = cfg.ToolTimeout
		o.Logger = logger
	})
	ac.chat = agent.New(agent.Config{
		Role:         "assistant",
		SystemPrompt: cfg.SystemPrompt,
		Grants:       ac.tools.Names(),
		Model:        llm,
		Dispatcher:   dispatcher,
		Observer:     observer,
		Logger:       logger,
	}, func(o *agent.Options) {
		o.MaxToolCalls = cfg.MaxToolCalls
	})

	if records, err := sess.Load(); err != nil {
		logger.Warn("session.load_failed", "error", err.Error())
	} else if len(records) > 0 {
		ac.chat.SeedHistory(session.Contents(records))
	}

	return ac, nil
}

// buildModel constructs the configured provider backend.
func buildModel(cfg config.Config) (model.Model, error) {
	switch cfg.Provider {
	case "openai", "":
		return openai.New(func(o *openai.Options) {
			o.Model = cfg.Model
		}), nil
	case "anthropic":
		return anthropic.New(func(o *anthropic.Options) {
			// The default model id is OpenAI-shaped; only a user-set id
			// carries over.
			if cfg.Model != "" && cfg.Model != config.DefaultModel {
				o.Model = anthropicsdk.Model(cfg.Model)
			}
			o.APIKey = cfg.APIKey
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (want openai or anthropic)", cfg.Provider)
	}
}

// Chat runs one turn of the default agent and persists the exchange.
func (ac *AutoCrew) Chat(ctx context.Context, input string) (string, error) {
	outcome, err := ac.chat.RunTurn(ctx, input)
	if err != nil {
		return "", err
	}
	if err := ac.sess.Append(
		session.Record{Role: "user", Content: input},
		session.Record{Role: "assistant", Content: outcome.Text},
	); err != nil {
		ac.logger.Warn("session.append_failed", "error", err.Error())
	}
	return outcome.Text, nil
}

// RunTeam plans a roster for the task and executes the team run. The report
// is valid even when err is non-nil.
func (ac *AutoCrew) RunTeam(ctx context.Context, task string) (*team.Report, error) {
	planner := roster.NewPlanner(ac.llm, func(o *roster.Options) {
		if ac.skills != nil {
			o.Skills = ac.skills.List()
		}
		o.Logger = ac.logger
	})
	r, err := planner.Plan(ctx, task, ac.tools.Catalog())
	if err != nil {
		return nil, err
	}

	runID := team.NewRunID()
	tm, err := team.New(team.Config{
		Task:   task,
		Roster: r,
		Model:  ac.llm,
		Tools:  ac.tools,
	}, func(o *team.Options) {
		o.RunID = runID
		if ac.cfg.DataDir != "" {
			o.Workspace = filepath.Join(ac.cfg.TeamsDir(), runID)
		}
		o.MaxTurns = ac.cfg.MaxTurns
		o.HistoryLimit = ac.cfg.HistoryLimit
		o.MaxToolCalls = ac.cfg.MaxToolCalls
		o.ToolTimeout = ac.cfg.ToolTimeout
		o.Skills = ac.skills
		o.Observer = ac.observer
		o.Logger = ac.logger
		if ac.archive != nil {
			o.Recorders = append(o.Recorders, ac.archive.Recorder(runID))
		}
	})
	if err != nil {
		return nil, err
	}

	if ac.archive != nil {
		if err := ac.archive.StartRun(ctx, runID, task); err != nil {
			ac.logger.Warn("archive.start_failed", "run_id", runID, "error", err.Error())
		}
	}

	report, runErr := tm.Run(ctx)

	if ac.archive != nil {
		if err := ac.archive.FinishRun(ctx, report.RunID, report.Status, report.Reason, report.Turns, report.Summary); err != nil {
			ac.logger.Warn("archive.finish_failed", "run_id", report.RunID, "error", err.Error())
		}
	}

	if err := ac.sess.Append(
		session.Record{Role: "user", Content: "/team " + task},
		session.Record{Role: "assistant", Content: "[Team result] " + report.Summary},
	); err != nil {
		ac.logger.Warn("session.append_failed", "error", err.Error())
	}

	return report, runErr
}

// runSpawned executes a synchronous sub-agent with the built-in tool set
// minus spawn_agent, so a sub-agent cannot spawn further sub-agents.
func (ac *AutoCrew) runSpawned(toolCtx *core.ToolContext, task string) (string, error) {
	grants := make([]string, 0, len(ac.tools.Names()))
	for _, name := range ac.tools.Names() {
		if name != "spawn_agent" {
			grants = append(grants, name)
		}
	}

	sub := agent.New(agent.Config{
		Role:         "spawned_agent",
		SystemPrompt: "You are a focused sub-agent. Complete the given task directly and reply with your result.",
		Grants:       grants,
		RunID:        toolCtx.RunID(),
		Model:        ac.llm,
		Dispatcher: tool.NewDispatcher(ac.tools, func(o *tool.DispatcherOptions) {
			o.Timeout = ac.cfg.ToolTimeout
			o.Logger = ac.logger
		}),
		Logger: ac.logger,
	}, func(o *agent.Options) {
		o.Streaming = false
		o.MaxToolCalls = ac.cfg.MaxToolCalls
	})

	outcome, err := sub.RunTurn(toolCtx.Context(), task)
	if err != nil {
		return "", err
	}
	return outcome.Text, nil
}

// ClearSession wipes the persisted chat history and the in-memory agent
// history.
func (ac *AutoCrew) ClearSession() error {
	ac.chat.SeedHistory(nil)
	return ac.sess.Clear()
}

// History returns the persisted chat records.
func (ac *AutoCrew) History() ([]session.Record, error) { return ac.sess.Load() }

// Skills returns the skill registry, nil when unavailable.
func (ac *AutoCrew) Skills() *skill.Registry { return ac.skills }

// Archive returns the run archive, nil when unavailable.
func (ac *AutoCrew) Archive() *store.Store { return ac.archive }

// Config returns the resolved configuration.
func (ac *AutoCrew) Config() config.Config { return ac.cfg }

// Close releases held resources.
func (ac *AutoCrew) Close() error {
	if ac.archive != nil {
		return ac.archive.Close()
	}
	return nil
}
