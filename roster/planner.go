// Package roster implements the planner that turns a natural-language task
// into a validated team specification via a one-shot JSON-mode completion.
// This is the only place role identities are minted.
package roster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/autocrew/core"
	"github.com/hupe1980/autocrew/logging"
	"github.com/hupe1980/autocrew/model"
	"github.com/hupe1980/autocrew/skill"
	"github.com/hupe1980/autocrew/tool"
)

// DefaultMaxAgents caps the roster size the planner accepts.
const DefaultMaxAgents = 6

// maxRoleCount caps how many copies of one role the planner may request.
const maxRoleCount = 3

// Options configure a Planner.
type Options struct {
	// Skills are offered to the model so it can grant use_skill to roles
	// that benefit from them.
	Skills []skill.Skill
	// MaxAgents caps the expanded roster size. Zero means DefaultMaxAgents.
	MaxAgents int
	Logger    logging.Logger
}

// Planner synthesizes team rosters from tasks. Validation is strict: an
// invalid roster is never repaired. One corrective retry is attempted with
// the validation issues appended; a second failure is fatal to the run.
type Planner struct {
	llm  model.Model
	opts Options
}

// NewPlanner builds a planner over the given model.
func NewPlanner(llm model.Model, optFns ...func(o *Options)) *Planner {
	opts := Options{MaxAgents: DefaultMaxAgents}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxAgents <= 0 {
		opts.MaxAgents = DefaultMaxAgents
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Planner{llm: llm, opts: opts}
}

// plannedRole is the JSON shape the model emits per roster entry.
type plannedRole struct {
	Role         string   `json:"role"`
	Count        int      `json:"count"`
	Focus        string   `json:"focus"`
	SystemPrompt string   `json:"system_prompt"`
	Tools        []string `json:"tools"`
	Orchestrator bool     `json:"is_orchestrator"`
}

type plannedRoster struct {
	Roster []plannedRole `json:"roster"`
}

// Plan asks the model for a roster and validates it against the catalog.
// Returns *core.PlanningError when the model cannot produce a valid roster
// within the single corrective retry.
func (p *Planner) Plan(ctx context.Context, task string, catalog []tool.CatalogEntry) (*core.Roster, error) {
	prompt := p.buildPrompt(task, catalog)

	validTools := make([]string, 0, len(catalog)+4)
	for _, entry := range catalog {
		validTools = append(validTools, entry.Name)
	}
	validTools = append(validTools, core.TeamTools()...)

	roster, err := p.planOnce(ctx, prompt, validTools)
	if err == nil {
		return roster, nil
	}

	var planErr *core.PlanningError
	if !errors.As(err, &planErr) {
		return nil, err // model boundary failure, retrying won't help
	}

	p.opts.Logger.Warn("roster.plan_invalid", "task", task, "error", err.Error())

	roster, retryErr := p.planOnce(ctx, prompt+"\n\n"+planErr.Corrective(), validTools)
	if retryErr != nil {
		return nil, fmt.Errorf("roster planning failed after corrective retry: %w", retryErr)
	}
	return roster, nil
}

// planOnce issues one JSON-mode completion and validates its roster.
func (p *Planner) planOnce(ctx context.Context, prompt string, validTools []string) (*core.Roster, error) {
	respCh, errCh := p.llm.Generate(ctx, model.Request{
		Contents: []core.Content{core.NewTextContent("user", prompt)},
		JSONOnly: true,
	})
	content, err := model.FinalContent(respCh, errCh)
	if err != nil {
		return nil, fmt.Errorf("roster completion: %w", err)
	}

	var planned plannedRoster
	raw := stripFences(content.Text())
	if err := json.Unmarshal([]byte(raw), &planned); err != nil {
		return nil, &core.PlanningError{
			Issues: []string{fmt.Sprintf("response was not a valid JSON roster object: %v", err)},
		}
	}

	roster := p.expand(planned)
	if err := roster.Validate(validTools); err != nil {
		return nil, err
	}
	return roster, nil
}

// expand turns planned roles into concrete agent specs: counts become
// numbered role copies, every agent receives the mandatory team tools, and
// the orchestrator additionally declare_done. Grants are augmented, never
// filtered; unknown tool names survive into validation so they fail loudly.
func (p *Planner) expand(planned plannedRoster) *core.Roster {
	roster := &core.Roster{}
	for _, entry := range planned.Roster {
		count := entry.Count
		if count < 1 {
			count = 1
		}
		if count > maxRoleCount {
			count = maxRoleCount
		}

		systemPrompt := entry.SystemPrompt
		if systemPrompt == "" {
			systemPrompt = fmt.Sprintf("You are a %s agent.", entry.Role)
		}

		for i := 1; i <= count; i++ {
			if len(roster.Agents) >= p.opts.MaxAgents {
				break
			}
			role := entry.Role
			if count > 1 {
				role = fmt.Sprintf("%s_%d", entry.Role, i)
			}

			grants := append([]string(nil), entry.Tools...)
			for _, name := range []string{core.ToolPostMessage, core.ToolReadMessages, core.ToolReadArtifacts} {
				if !contains(grants, name) {
					grants = append(grants, name)
				}
			}
			if entry.Orchestrator && !contains(grants, core.ToolDeclareDone) {
				grants = append(grants, core.ToolDeclareDone)
			}

			roster.Agents = append(roster.Agents, core.AgentSpec{
				Role:         role,
				Focus:        entry.Focus,
				SystemPrompt: systemPrompt,
				Tools:        grants,
				Orchestrator: entry.Orchestrator,
			})
		}
	}
	return roster
}

func (p *Planner) buildPrompt(task string, catalog []tool.CatalogEntry) string {
	var sb strings.Builder
	sb.WriteString("You are a meta-orchestrator. Given a task, design a team of specialized agents to accomplish it. Create custom roles tailored to this specific task.\n\n")
	fmt.Fprintf(&sb, "Task: %s\n\n", task)

	sb.WriteString("Available tools you can assign to agents:\n")
	for _, entry := range catalog {
		fmt.Fprintf(&sb, "- %s: %s\n", entry.Name, entry.Description)
	}
	sb.WriteString("(Every agent automatically gets: post_message, read_messages, read_artifacts)\n")

	if len(p.opts.Skills) > 0 {
		sb.WriteString("\nAvailable skills (give agents the 'use_skill' tool to access these):\n")
		for _, s := range p.opts.Skills {
			fmt.Fprintf(&sb, "- %s: %s\n", s.Name, s.Description)
		}
	}

	sb.WriteString("\nRespond with a JSON object containing a 'roster' array. Each entry has:\n")
	sb.WriteString(`- "role": a short snake_case role name you invent (e.g. "haiku_poet", "fact_checker")` + "\n")
	sb.WriteString(`- "count": how many of this role (usually 1, max 3)` + "\n")
	sb.WriteString(`- "focus": what this agent should focus on` + "\n")
	sb.WriteString(`- "system_prompt": instructions for this agent (2-4 sentences describing its job)` + "\n")
	sb.WriteString(`- "tools": array of tool names from the available list above` + "\n")
	sb.WriteString(`- "is_orchestrator": true for exactly one coordinating role` + "\n\n")

	sb.WriteString("Rules:\n")
	sb.WriteString("- Mark exactly 1 role with is_orchestrator: true and give it tools: [] (it only needs the automatic team tools plus declare_done)\n")
	sb.WriteString("- The orchestrator coordinates the others and calls declare_done when finished\n")
	fmt.Fprintf(&sb, "- Total agents must be at most %d\n", p.opts.MaxAgents)
	sb.WriteString("- Only create roles that are needed for this task\n")
	sb.WriteString("- Only assign tool names from the available list; do not invent tools\n")
	sb.WriteString("- Keep system_prompts concise and task-specific\n\n")

	sb.WriteString("Example:\n")
	sb.WriteString(`{"roster": [` + "\n")
	sb.WriteString(`  {"role": "orchestrator", "count": 1, "focus": "Coordinate and finalize",` + "\n")
	sb.WriteString(`   "system_prompt": "You coordinate the team. Delegate work, review progress, call declare_done when complete.",` + "\n")
	sb.WriteString(`   "tools": [], "is_orchestrator": true},` + "\n")
	sb.WriteString(`  {"role": "haiku_poet", "count": 1, "focus": "Write haiku about recursion",` + "\n")
	sb.WriteString(`   "system_prompt": "You are a poet. Write haiku in strict 5-7-5 syllable form. Post your drafts to the message board.",` + "\n")
	sb.WriteString(`   "tools": ["write_file"], "is_orchestrator": false}` + "\n")
	sb.WriteString("]}")

	return sb.String()
}

// stripFences removes a wrapping markdown code fence, which some models emit
// even in JSON mode.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
