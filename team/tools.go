package team

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hupe1980/autocrew/core"
	"github.com/hupe1980/autocrew/tool"
)

// defaultReadMessagesN is how many visible messages read_messages returns
// when the caller does not say.
const defaultReadMessagesN = 20

// teamRegistry builds the per-run registry of team-context tools. Each tool
// closes over the Team; the dispatcher resolves them only when a team
// registry is installed, so outside a run they surface as NOT_AVAILABLE.
func teamRegistry(t *Team) *tool.Registry {
	reg := tool.NewRegistry()

	reg.Register(tool.NewFunctionTool(
		core.ToolPostMessage,
		"Post a message to a teammate (or 'all'). The recipient is activated after your turn ends.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"to":      map[string]any{"type": "string", "description": "Recipient role name, or 'all' to broadcast"},
				"content": map[string]any{"type": "string", "description": "The message body"},
			},
			"required": []string{"to", "content"},
		},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			to, _ := args["to"].(string)
			content, _ := args["content"].(string)
			return t.postMessage(toolCtx.Caller().Role, to, content)
		},
	))

	reg.Register(tool.NewFunctionTool(
		core.ToolReadMessages,
		"Read recent messages addressed to you or broadcast to all.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"last_n": map[string]any{"type": "number", "description": "How many recent messages to return (default 20)"},
			},
		},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			n := defaultReadMessagesN
			if raw, ok := args["last_n"].(float64); ok && raw > 0 {
				n = int(raw)
			}
			return t.readMessages(toolCtx.Caller().Role, n), nil
		},
	))

	reg.Register(tool.NewFunctionTool(
		core.ToolReadArtifacts,
		"List the files the team has produced in the shared artifacts directory.",
		map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			return t.readArtifacts()
		},
	))

	reg.Register(tool.NewFunctionTool(
		core.ToolDeclareDone,
		"Declare the team's task complete. Only the orchestrator may call this; it ends the run.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"summary": map[string]any{"type": "string", "description": "Final summary of what the team accomplished"},
			},
			"required": []string{"summary"},
		},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			summary, _ := args["summary"].(string)
			t.declareDone(summary)
			toolCtx.EndRun()
			return "Team run marked as done.", nil
		},
	))

	return reg
}

// postMessage appends to the board and activates the recipient. Unknown
// recipients are rejected as a correctable tool error without touching the
// board; "all" broadcasts inform but activate nobody.
func (t *Team) postMessage(from, to, content string) (string, error) {
	if to != core.RecipientAll && !t.roster.HasRole(to) {
		return "", tool.NewToolError(
			core.ToolPostMessage,
			fmt.Sprintf("unknown recipient %q; valid recipients: %s, all", to, strings.Join(t.roster.Roles(), ", ")),
			tool.CodeValidation,
		)
	}

	msg, err := t.board.Append(from, to, content)
	if err != nil {
		t.logger.Warn("team.record_failed", "run_id", t.runID, "error", err.Error())
	}
	t.observer.MessagePosted(msg)

	if to != core.RecipientAll {
		t.queue.Push(to)
	}
	return "Message posted.", nil
}

// readMessages formats the role's board view: every message addressed
// directly to it, unioned with the last n entries it can see. The union
// keeps direct assignments readable even after n broadcasts bury them.
func (t *Team) readMessages(role string, n int) string {
	var addressed []core.Message
	for _, m := range t.board.VisibleTo(role, 0) {
		if m.Recipient == role {
			addressed = append(addressed, m)
		}
	}
	return formatMessages(mergeByID(addressed, t.board.Recent(role, n)))
}

// mergeByID unions two ID-ordered board slices, deduplicated and sorted by ID.
func mergeByID(a, b []core.Message) []core.Message {
	seen := make(map[int64]bool, len(a)+len(b))
	merged := make([]core.Message, 0, len(a)+len(b))
	for _, m := range append(a, b...) {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		merged = append(merged, m)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].ID < merged[j].ID })
	return merged
}

// readArtifacts lists the run's artifacts directory recursively, sorted by
// path relative to the artifacts root.
func (t *Team) readArtifacts() (string, error) {
	paths, err := t.artifactPaths()
	if err != nil {
		return "", fmt.Errorf("list artifacts: %w", err)
	}
	if len(paths) == 0 {
		return "(no artifacts yet)", nil
	}

	var sb strings.Builder
	for _, p := range paths {
		fmt.Fprintf(&sb, "- %s\n", p)
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

// formatMessages renders board entries the way agents read them.
func formatMessages(msgs []core.Message) string {
	if len(msgs) == 0 {
		return "(no messages yet)"
	}
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		lines = append(lines, fmt.Sprintf("[%s → %s]: %s", m.Sender, m.Recipient, m.Body))
	}
	return strings.Join(lines, "\n")
}
