package team

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/autocrew/agent"
	"github.com/hupe1980/autocrew/artifact"
	"github.com/hupe1980/autocrew/core"
	"github.com/hupe1980/autocrew/internal/util"
	"github.com/hupe1980/autocrew/logging"
	"github.com/hupe1980/autocrew/model"
	"github.com/hupe1980/autocrew/skill"
	"github.com/hupe1980/autocrew/tool"
)

const (
	// DefaultMaxTurns caps the total number of agent turns per run.
	DefaultMaxTurns = 30

	// DefaultHistoryLimit trims each agent's cross-turn history to the last
	// N entries at turn boundaries.
	DefaultHistoryLimit = 6

	// maxConsecutiveFallbacks is the deadlock threshold: this many forced
	// orchestrator turns with no real activation in between abort the run.
	maxConsecutiveFallbacks = 2

	// boardSnapshotN is how many visible messages the turn prompt embeds.
	boardSnapshotN = 20
)

// Run status values.
const (
	StatusRunning = "running"
	StatusDone    = "done"
	StatusAborted = "aborted"
)

// Abort reasons carried in Report.Reason.
const (
	ReasonCompleted = "completed"
	ReasonTurnLimit = "turn_limit"
	ReasonDeadlock  = "deadlock"
	ReasonCanceled  = "canceled"
	ReasonAgentErr  = "agent_error"
)

// Config assembles a team run from its task, roster and shared services.
type Config struct {
	// Task is the user's natural-language objective, broadcast to the team
	// as the first board entry.
	Task string
	// Roster is the validated team specification. Must contain exactly one
	// orchestrator.
	Roster *core.Roster
	// Model generates every agent's turns.
	Model model.Model
	// Tools is the global built-in registry shared with plain chat.
	Tools *tool.Registry
}

// Options tune a team run.
type Options struct {
	// RunID overrides the generated run identifier.
	RunID string
	// Workspace overrides the run directory. Defaults to
	// ~/.autocrew/teams/<run_id>.
	Workspace string
	// MaxTurns caps total turns. Zero means DefaultMaxTurns.
	MaxTurns int
	// HistoryLimit trims per-agent history. Zero means DefaultHistoryLimit.
	HistoryLimit int
	// MaxToolCalls caps tool calls per turn. Zero uses the agent default.
	MaxToolCalls int
	// Streaming requests partial model output for live observers.
	Streaming bool
	// ToolTimeout bounds each tool call. Zero uses the dispatcher default.
	ToolTimeout time.Duration
	// Skills, when set, lets agents granted use_skill see the skill list in
	// their system prompt.
	Skills *skill.Registry
	// Recorders receive every board append in addition to the run's own
	// JSONL transcript, e.g. the SQLite run archive.
	Recorders []core.Recorder

	Observer core.Observer
	Logger   logging.Logger
}

// Report summarizes a finished run.
type Report struct {
	RunID     string
	Status    string
	Reason    string
	Turns     int
	Summary   string
	Messages  []core.Message
	Artifacts []string
}

// Team drives one multi-agent run: it owns the board, the activation queue
// and one Agent per roster entry, and steps them until a terminal status.
// A Team is single-use; construct a new one per task.
type Team struct {
	runID        string
	task         string
	roster       *core.Roster
	orchestrator string

	board *core.Board
	queue *Queue

	agents map[string]*agent.Agent
	order  []string

	// lastSeen tracks, per role, the highest board ID included in that
	// agent's turn input so far. Messages above it are delivered on the
	// next turn no matter how much newer traffic lands in between.
	lastSeen map[string]int64

	workspace    string
	artifactsDir string
	artifacts    *artifact.DirStore
	recorder     *FileRecorder

	maxTurns int
	turns    int
	status   string
	reason   string
	summary  string

	observer core.Observer
	logger   logging.Logger
}

// New prepares a run: creates the run workspace and transcript, constructs
// the per-run team tool registry and dispatcher, and instantiates one agent
// per roster entry with a roster-aware system prompt.
func New(cfg Config, optFns ...func(o *Options)) (*Team, error) {
	opts := Options{
		MaxTurns:     DefaultMaxTurns,
		HistoryLimit: DefaultHistoryLimit,
		Streaming:    true,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxTurns <= 0 {
		opts.MaxTurns = DefaultMaxTurns
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.Observer == nil {
		opts.Observer = core.NopObserver{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	orch, ok := cfg.Roster.Orchestrator()
	if !ok {
		return nil, fmt.Errorf("roster has no orchestrator")
	}

	runID := opts.RunID
	if runID == "" {
		runID = NewRunID()
	}

	workspace := opts.Workspace
	if workspace == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		workspace = filepath.Join(home, ".autocrew", "teams", runID)
	}
	artifactsDir := filepath.Join(workspace, "artifacts")
	artifacts, err := artifact.NewDirStore(artifactsDir)
	if err != nil {
		return nil, fmt.Errorf("create run workspace: %w", err)
	}

	recorder, err := NewFileRecorder(filepath.Join(workspace, "messages.jsonl"))
	if err != nil {
		return nil, err
	}
	recorders := append([]core.Recorder{recorder}, opts.Recorders...)

	t := &Team{
		runID:        runID,
		task:         cfg.Task,
		roster:       cfg.Roster,
		orchestrator: orch.Role,
		board:        core.NewBoard(recorders...),
		queue:        NewQueue(),
		agents:       make(map[string]*agent.Agent, len(cfg.Roster.Agents)),
		lastSeen:     make(map[string]int64, len(cfg.Roster.Agents)),
		workspace:    workspace,
		artifactsDir: artifactsDir,
		artifacts:    artifacts,
		recorder:     recorder,
		maxTurns:     opts.MaxTurns,
		status:       StatusRunning,
		observer:     opts.Observer,
		logger:       opts.Logger,
	}

	dispatcher := tool.NewDispatcher(cfg.Tools, func(o *tool.DispatcherOptions) {
		o.TeamRegistry = teamRegistry(t)
		o.Timeout = opts.ToolTimeout
		o.Logger = opts.Logger
	})

	for _, spec := range cfg.Roster.Agents {
		prompt, err := t.systemPrompt(spec, opts.Skills)
		if err != nil {
			return nil, fmt.Errorf("compose system prompt for %s: %w", spec.Role, err)
		}
		t.agents[spec.Role] = agent.New(agent.Config{
			Role:         spec.Role,
			Orchestrator: spec.Orchestrator,
			SystemPrompt: prompt,
			Grants:       spec.Tools,
			RunID:        runID,
			Model:        cfg.Model,
			Dispatcher:   dispatcher,
			Observer:     opts.Observer,
			Logger:       opts.Logger,
		}, func(o *agent.Options) {
			o.MaxToolCalls = opts.MaxToolCalls
			o.HistoryLimit = opts.HistoryLimit
			o.Streaming = opts.Streaming
		})
		t.order = append(t.order, spec.Role)
	}

	return t, nil
}

// NewRunID returns a fresh 12-hex-char run identifier.
func NewRunID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// RunID returns the run identifier.
func (t *Team) RunID() string { return t.runID }

// Workspace returns the run's directory on disk.
func (t *Team) Workspace() string { return t.workspace }

// Board returns the run's message board.
func (t *Team) Board() *core.Board { return t.board }

// Run executes the scheduling loop until the run reaches a terminal status:
// done via declare_done, or aborted via the turn limit, a deadlock (two
// consecutive empty-queue fallbacks), cancellation, or an agent failure.
// The returned report is valid even when err is non-nil.
func (t *Team) Run(ctx context.Context) (*Report, error) {
	defer t.recorder.Close()

	seed, err := t.board.Append(core.SenderSystem, core.RecipientAll, "TASK: "+t.task)
	if err != nil {
		t.logger.Warn("team.record_failed", "run_id", t.runID, "error", err.Error())
	}
	t.observer.MessagePosted(seed)
	t.queue.Push(t.orchestrator)

	var runErr error
	fallbacks := 0
	for t.status == StatusRunning {
		if ctx.Err() != nil {
			t.abort(ReasonCanceled, "(team run canceled)")
			runErr = ctx.Err()
			break
		}
		if t.turns >= t.maxTurns {
			t.abort(ReasonTurnLimit, "(team reached max turns without completing)")
			break
		}

		role, ok := t.queue.Pop()
		if ok {
			fallbacks = 0
			runErr = t.step(ctx, role, false)
			continue
		}

		fallbacks++
		runErr = t.step(ctx, t.orchestrator, true)
		if t.status == StatusRunning && fallbacks >= maxConsecutiveFallbacks {
			t.abort(ReasonDeadlock, "(team ended: orchestrator could not route work)")
		}
	}

	t.observer.RunFinished(t.status, t.summary)
	t.logger.Info("team.finished",
		"run_id", t.runID, "status", t.status, "reason", t.reason, "turns", t.turns)

	return t.report(), runErr
}

// step runs one turn for the role. Tool failures stay inside the turn; an
// error here means the model boundary itself failed, which aborts the run.
func (t *Team) step(ctx context.Context, role string, fallback bool) error {
	ag, ok := t.agents[role]
	if !ok {
		t.logger.Error("team.unknown_role", "run_id", t.runID, "role", role)
		return nil
	}

	t.turns++
	t.observer.TurnStarted(role, t.turns, t.maxTurns)

	outcome, err := ag.RunTurn(ctx, t.turnPrompt(role, fallback))
	if err != nil {
		t.abort(ReasonAgentErr, fmt.Sprintf("(team aborted: %s turn failed: %v)", role, err))
		return fmt.Errorf("turn %d (%s): %w", t.turns, role, err)
	}
	if outcome.BudgetExceeded {
		t.logger.Warn("team.turn_budget_exceeded", "run_id", t.runID, "role", role, "turn", t.turns)
	}
	if outcome.EndRun {
		t.status = StatusDone
		t.reason = ReasonCompleted
		if t.summary == "" {
			t.summary = outcome.Text
		}
	}
	return nil
}

// turnPrompt is the user-visible input for a turn: the turn number plus the
// agent's current view of the board.
func (t *Team) turnPrompt(role string, fallback bool) string {
	view := formatMessages(t.boardView(role))
	if fallback {
		return fmt.Sprintf(
			"Turn %d. No agents are waiting to act. Review progress, post follow-up work to a teammate, or call declare_done if the task is complete.\n\nCurrent message board:\n%s",
			t.turns, view)
	}
	return fmt.Sprintf(
		"Turn %d. Continue working on your tasks.\n\nCurrent message board:\n%s",
		t.turns, view)
}

// boardView composes the board excerpt for a turn: everything addressed to
// the agent since its previous turn, plus the tail window for shared context.
// Without the unseen slice a direct message would drop off the board once
// enough broadcasts pile up behind it.
func (t *Team) boardView(role string) []core.Message {
	unseen := t.board.VisibleTo(role, t.lastSeen[role])
	recent := t.board.Recent(role, boardSnapshotN)
	t.lastSeen[role] = t.board.LastID()
	return mergeByID(unseen, recent)
}

// declareDone records the orchestrator's summary. The status transition
// happens in step once the turn's outcome reports EndRun, keeping all state
// transitions on the scheduler goroutine.
func (t *Team) declareDone(summary string) {
	t.summary = summary
}

func (t *Team) abort(reason, summary string) {
	t.status = StatusAborted
	t.reason = reason
	t.summary = summary
}

func (t *Team) report() *Report {
	artifacts, err := t.artifactPaths()
	if err != nil {
		t.logger.Warn("team.list_artifacts_failed", "run_id", t.runID, "error", err.Error())
	}
	return &Report{
		RunID:     t.runID,
		Status:    t.status,
		Reason:    t.reason,
		Turns:     t.turns,
		Summary:   t.summary,
		Messages:  t.board.All(),
		Artifacts: artifacts,
	}
}

// agentPromptTemplate composes each agent's standing instruction from its
// roster entry and the team context.
const agentPromptTemplate = `{{.BasePrompt}}

You are "{{.Role}}" on a team working on this task:
{{.Task}}
{{if .Focus}}
Your focus: {{.Focus}}
{{end}}
Team roster:
{{bullet .Roster}}

Shared artifacts directory: {{.ArtifactsDir}}
Save files there so teammates can find them.

Coordinate through the message board: post_message hands work to a teammate and read_messages catches you up. Recipients are activated after your turn ends, so post your message and finish the turn instead of waiting for a reply.
{{if .Orchestrator}}
You are the orchestrator. Delegate work, review what comes back, and call declare_done with a final summary once the task is complete.{{end}}{{if .Skills}}

{{.Skills}}{{end}}`

func (t *Team) systemPrompt(spec core.AgentSpec, skills *skill.Registry) (string, error) {
	listing := make([]string, 0, len(t.roster.Agents))
	for _, a := range t.roster.Agents {
		entry := a.Role
		if a.Orchestrator {
			entry += " (orchestrator)"
		}
		if a.Focus != "" {
			entry += ": " + a.Focus
		}
		listing = append(listing, entry)
	}

	skillsSection := ""
	if skills != nil && spec.Granted("use_skill") {
		skillsSection = skills.PromptSection()
	}

	rendered, err := util.RenderTemplate(agentPromptTemplate, map[string]any{
		"BasePrompt":   strings.TrimSpace(spec.SystemPrompt),
		"Role":         spec.Role,
		"Task":         t.task,
		"Focus":        spec.Focus,
		"Roster":       listing,
		"ArtifactsDir": t.artifactsDir,
		"Orchestrator": spec.Orchestrator,
		"Skills":       skillsSection,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(rendered), nil
}

// artifactPaths lists the run's artifact store, sorted.
func (t *Team) artifactPaths() ([]string, error) {
	return t.artifacts.List()
}
