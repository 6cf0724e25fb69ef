package tool

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/openai/openai-go"

	"github.com/hupe1980/autocrew/core"
	"github.com/hupe1980/autocrew/skill"
)

// maxContentChars caps fetched web/PDF content so a single tool result
// cannot crowd everything else out of the model's context.
const maxContentChars = 50000

// fetchUserAgent is sent on web_fetch and pdf_fetch requests. Some hosts
// refuse clients without a browser-ish UA.
const fetchUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AutoCrew/1.0"

// SpawnRunner executes a sub-agent task and returns its final text. Wired in
// by the facade so the tool package stays independent of the agent runtime.
type SpawnRunner func(toolCtx *core.ToolContext, task string) (string, error)

// BuiltinsOptions configure the built-in tool set.
type BuiltinsOptions struct {
	// Workspace roots relative paths of read_file/write_file. Empty means
	// the process working directory.
	Workspace string
	// Skills backs use_skill; nil omits the tool.
	Skills *skill.Registry
	// Spawn backs spawn_agent; nil omits the tool.
	Spawn SpawnRunner
	// HTTPClient serves web_fetch and pdf_fetch. Nil uses a default client.
	HTTPClient *http.Client
	// OpenAIClient backs generate_video; nil omits the tool.
	OpenAIClient *openai.Client
	// VideoDir receives generated videos. Empty means <workspace>/videos.
	VideoDir string
	// ExecTimeout bounds a single exec call. Zero means DefaultToolTimeout.
	ExecTimeout time.Duration
}

// NewBuiltins assembles the registry of built-in tools, in the stable order
// offered to the roster planner.
func NewBuiltins(optFns ...func(o *BuiltinsOptions)) *Registry {
	opts := BuiltinsOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.ExecTimeout <= 0 {
		opts.ExecTimeout = DefaultToolTimeout
	}
	if opts.VideoDir == "" {
		opts.VideoDir = filepath.Join(opts.Workspace, "videos")
	}

	registry := NewRegistry(
		NewExecTool(opts.ExecTimeout),
		NewReadFileTool(opts.Workspace),
		NewWriteFileTool(opts.Workspace),
		NewWebFetchTool(opts.HTTPClient),
		NewPDFFetchTool(opts.HTTPClient),
	)
	if opts.OpenAIClient != nil {
		registry.Register(NewGenerateVideoTool(opts.OpenAIClient, opts.VideoDir))
	}
	if opts.Skills != nil {
		registry.Register(NewUseSkillTool(opts.Skills))
	}
	if opts.Spawn != nil {
		registry.Register(NewSpawnAgentTool(opts.Spawn))
	}
	return registry
}

// resolvePath expands ~ and roots relative paths at the workspace.
func resolvePath(workspace, path string) string {
	if path == "~" || len(path) > 1 && path[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	if filepath.IsAbs(path) || workspace == "" {
		return path
	}
	return filepath.Join(workspace, path)
}
