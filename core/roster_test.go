package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogForTest() []string {
	return append([]string{"exec", "write_file"}, TeamTools()...)
}

func TestRosterValidateOK(t *testing.T) {
	r := &Roster{Agents: []AgentSpec{
		{Role: "orchestrator", Orchestrator: true, Tools: []string{ToolPostMessage, ToolDeclareDone}},
		{Role: "writer", Tools: []string{"write_file", ToolPostMessage}},
	}}
	assert.NoError(t, r.Validate(catalogForTest()))
}

func TestRosterValidateCollectsIssues(t *testing.T) {
	r := &Roster{Agents: []AgentSpec{
		{Role: "lead", Orchestrator: true},
		{Role: "lead", Orchestrator: true},
		{Role: "writer", Tools: []string{"teleport", ToolDeclareDone}},
	}}

	err := r.Validate(catalogForTest())
	require.Error(t, err)

	var planErr *PlanningError
	require.True(t, errors.As(err, &planErr))
	assert.Len(t, planErr.Issues, 4)
	assert.Contains(t, planErr.Error(), "duplicate role name")
	assert.Contains(t, planErr.Error(), "teleport")
	assert.Contains(t, planErr.Error(), "reserved to the orchestrator")
}

func TestRosterValidateMissingOrchestrator(t *testing.T) {
	r := &Roster{Agents: []AgentSpec{{Role: "writer"}}}

	var planErr *PlanningError
	require.True(t, errors.As(r.Validate(catalogForTest()), &planErr))
	assert.Contains(t, planErr.Error(), "no agent is marked as orchestrator")
}

func TestRosterValidateEmpty(t *testing.T) {
	r := &Roster{}
	assert.Error(t, r.Validate(catalogForTest()))
}

func TestPlanningErrorCorrective(t *testing.T) {
	planErr := &PlanningError{Issues: []string{"roster is empty"}}
	corrective := planErr.Corrective()
	assert.Contains(t, corrective, "roster is empty")
}

func TestRosterLookupAndRoles(t *testing.T) {
	r := &Roster{Agents: []AgentSpec{
		{Role: "orchestrator", Orchestrator: true},
		{Role: "writer"},
	}}

	orch, ok := r.Orchestrator()
	require.True(t, ok)
	assert.Equal(t, "orchestrator", orch.Role)

	assert.True(t, r.HasRole("writer"))
	assert.False(t, r.HasRole("editor"))
	assert.Equal(t, []string{"orchestrator", "writer"}, r.Roles())
}

func TestIsTeamTool(t *testing.T) {
	assert.True(t, IsTeamTool(ToolPostMessage))
	assert.True(t, IsTeamTool(ToolDeclareDone))
	assert.False(t, IsTeamTool("exec"))
}
