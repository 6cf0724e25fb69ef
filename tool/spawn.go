package tool

import (
	"time"

	"github.com/hupe1980/autocrew/core"
)

type spawnAgentArgs struct {
	Task string `json:"task" description:"A clear, self-contained description of what the sub-agent should do"`
}

// NewSpawnAgentTool returns the spawn_agent built-in. The runner is injected
// by the wiring layer and executes a synchronous sub-agent with a fresh
// conversation and the built-in tool set minus spawn_agent, so sub-agents
// cannot spawn recursively.
func NewSpawnAgentTool(run SpawnRunner) *FunctionTool {
	return NewFunctionToolFromStruct(
		"spawn_agent",
		"Spawn a sub-agent to handle an independent subtask. The sub-agent gets its own conversation with the LLM and access to all tools (except spawn_agent). It runs synchronously and returns its final answer. Use this when a subtask is self-contained and can be solved independently.",
		spawnAgentArgs{},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			task, _ := args["task"].(string)
			toolCtx.Logger().Info("spawn_agent.start", "task", task)
			result, err := run(toolCtx, task)
			if err != nil {
				return nil, err
			}
			toolCtx.Logger().Info("spawn_agent.finished")
			return result, nil
		},
	).WithTimeout(10 * time.Minute)
}
