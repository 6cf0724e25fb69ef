package roster

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/autocrew/core"
	"github.com/hupe1980/autocrew/model"
	"github.com/hupe1980/autocrew/tool"
)

func testCatalog() []tool.CatalogEntry {
	return []tool.CatalogEntry{
		{Name: "exec", Description: "Run a command"},
		{Name: "write_file", Description: "Write a file"},
	}
}

const validRosterJSON = `{
  "roster": [
    {"role": "orchestrator", "count": 1, "focus": "Coordinate",
     "system_prompt": "You coordinate the team.",
     "tools": [], "is_orchestrator": true},
    {"role": "writer", "count": 2, "focus": "Write sections",
     "system_prompt": "You write.",
     "tools": ["write_file"], "is_orchestrator": false}
  ]
}`

func TestPlanValidRoster(t *testing.T) {
	llm := model.NewScriptedModel(model.Text(validRosterJSON))
	p := NewPlanner(llm)

	roster, err := p.Plan(context.Background(), "write a report", testCatalog())
	require.NoError(t, err)
	require.Len(t, roster.Agents, 3)

	orch, ok := roster.Orchestrator()
	require.True(t, ok)
	assert.Equal(t, "orchestrator", orch.Role)
	// Team tools are granted automatically; declare_done only to the
	// orchestrator.
	assert.True(t, orch.Granted(core.ToolPostMessage))
	assert.True(t, orch.Granted(core.ToolDeclareDone))

	assert.Equal(t, "writer_1", roster.Agents[1].Role)
	assert.Equal(t, "writer_2", roster.Agents[2].Role)
	assert.True(t, roster.Agents[1].Granted("write_file"))
	assert.True(t, roster.Agents[1].Granted(core.ToolReadMessages))
	assert.False(t, roster.Agents[1].Granted(core.ToolDeclareDone))

	assert.Equal(t, 1, llm.CallCount())
}

func TestPlanStripsCodeFences(t *testing.T) {
	llm := model.NewScriptedModel(model.Text("```json\n" + validRosterJSON + "\n```"))
	p := NewPlanner(llm)

	roster, err := p.Plan(context.Background(), "task", testCatalog())
	require.NoError(t, err)
	assert.Len(t, roster.Agents, 3)
}

func TestPlanCorrectiveRetry(t *testing.T) {
	// First response grants an unknown tool; the retry fixes it.
	invalid := `{"roster": [
	  {"role": "orchestrator", "tools": ["teleport"], "is_orchestrator": true}
	]}`
	llm := model.NewScriptedModel(model.Text(invalid), model.Text(validRosterJSON))
	p := NewPlanner(llm)

	roster, err := p.Plan(context.Background(), "task", testCatalog())
	require.NoError(t, err)
	assert.Len(t, roster.Agents, 3)
	assert.Equal(t, 2, llm.CallCount())
}

func TestPlanFailsAfterSecondInvalidRoster(t *testing.T) {
	invalid := `{"roster": [{"role": "writer", "is_orchestrator": false}]}`
	llm := model.NewScriptedModel(model.Text(invalid), model.Text(invalid))
	p := NewPlanner(llm)

	_, err := p.Plan(context.Background(), "task", testCatalog())
	require.Error(t, err)

	var planErr *core.PlanningError
	assert.True(t, errors.As(err, &planErr))
	assert.Equal(t, 2, llm.CallCount())
}

func TestPlanRejectsNonJSON(t *testing.T) {
	llm := model.NewScriptedModel(model.Text("sure, here is a team!"), model.Text("still not json"))
	p := NewPlanner(llm)

	_, err := p.Plan(context.Background(), "task", testCatalog())
	require.Error(t, err)

	var planErr *core.PlanningError
	assert.True(t, errors.As(err, &planErr))
}

func TestPlanCapsAgentCount(t *testing.T) {
	big := `{"roster": [
	  {"role": "orchestrator", "tools": [], "is_orchestrator": true},
	  {"role": "worker", "count": 3, "tools": [], "is_orchestrator": false},
	  {"role": "helper", "count": 3, "tools": [], "is_orchestrator": false}
	]}`
	llm := model.NewScriptedModel(model.Text(big))
	p := NewPlanner(llm, func(o *Options) {
		o.MaxAgents = 4
	})

	roster, err := p.Plan(context.Background(), "task", testCatalog())
	require.NoError(t, err)
	assert.Len(t, roster.Agents, 4)
}
