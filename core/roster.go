package core

import "fmt"

// ToolDeclareDone is the termination tool. It is reserved to the
// orchestrator; a roster granting it to any other role is invalid.
const ToolDeclareDone = "declare_done"

// Team-context tool names. These tools exist only during a team run; the
// dispatcher rejects them as not available anywhere else.
const (
	ToolPostMessage   = "post_message"
	ToolReadMessages  = "read_messages"
	ToolReadArtifacts = "read_artifacts"
)

// TeamTools returns the names of all team-context tools.
func TeamTools() []string {
	return []string{ToolPostMessage, ToolReadMessages, ToolReadArtifacts, ToolDeclareDone}
}

// IsTeamTool reports whether name refers to a team-context tool.
func IsTeamTool(name string) bool {
	switch name {
	case ToolPostMessage, ToolReadMessages, ToolReadArtifacts, ToolDeclareDone:
		return true
	}
	return false
}

// AgentSpec is the planner-produced configuration record for one agent.
// Roles double as identities: they are unique within a roster and are the
// addresses used on the message board.
type AgentSpec struct {
	Role         string   `json:"role"`
	Focus        string   `json:"focus"`
	SystemPrompt string   `json:"system_prompt"`
	Tools        []string `json:"tools"`
	Orchestrator bool     `json:"is_orchestrator"`
}

// Granted reports whether the spec grants the named tool.
func (s AgentSpec) Granted(name string) bool {
	for _, t := range s.Tools {
		if t == name {
			return true
		}
	}
	return false
}

// Roster is the validated team specification: an ordered list of agent
// specs with exactly one orchestrator.
type Roster struct {
	Agents []AgentSpec `json:"roster"`
}

// Orchestrator returns the orchestrator spec. The boolean is false only for
// rosters that never passed Validate.
func (r *Roster) Orchestrator() (AgentSpec, bool) {
	for _, a := range r.Agents {
		if a.Orchestrator {
			return a, true
		}
	}
	return AgentSpec{}, false
}

// Lookup returns the spec for a role name.
func (r *Roster) Lookup(role string) (AgentSpec, bool) {
	for _, a := range r.Agents {
		if a.Role == role {
			return a, true
		}
	}
	return AgentSpec{}, false
}

// HasRole reports whether the role names a roster member.
func (r *Roster) HasRole(role string) bool {
	_, ok := r.Lookup(role)
	return ok
}

// Roles returns the role names in roster order.
func (r *Roster) Roles() []string {
	roles := make([]string, 0, len(r.Agents))
	for _, a := range r.Agents {
		roles = append(roles, a.Role)
	}
	return roles
}

// Validate checks the roster invariants against the tool catalog: a
// non-empty roster, unique non-empty role names, exactly one orchestrator,
// every grant present in the catalog, and the termination tool reserved to
// the orchestrator. Violations are collected into a single *PlanningError so
// a corrective retry can fix them all at once. It never repairs the roster.
func (r *Roster) Validate(catalog []string) error {
	known := make(map[string]bool, len(catalog))
	for _, name := range catalog {
		known[name] = true
	}

	var issues []string

	if len(r.Agents) == 0 {
		issues = append(issues, "roster is empty")
	}

	seen := make(map[string]bool, len(r.Agents))
	orchestrators := 0
	for _, a := range r.Agents {
		if a.Role == "" {
			issues = append(issues, "an agent has an empty role name")
			continue
		}
		if seen[a.Role] {
			issues = append(issues, fmt.Sprintf("duplicate role name %q", a.Role))
		}
		seen[a.Role] = true

		if a.Orchestrator {
			orchestrators++
		}

		for _, t := range a.Tools {
			if !known[t] {
				issues = append(issues, fmt.Sprintf("role %q grants unknown tool %q", a.Role, t))
			}
			if t == ToolDeclareDone && !a.Orchestrator {
				issues = append(issues, fmt.Sprintf("role %q grants %s, which is reserved to the orchestrator", a.Role, ToolDeclareDone))
			}
		}
	}

	switch {
	case orchestrators == 0 && len(r.Agents) > 0:
		issues = append(issues, "no agent is marked as orchestrator")
	case orchestrators > 1:
		issues = append(issues, fmt.Sprintf("%d agents are marked as orchestrator, expected exactly 1", orchestrators))
	}

	if len(issues) > 0 {
		return &PlanningError{Issues: issues}
	}
	return nil
}
