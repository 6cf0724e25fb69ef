package tool

import (
	"fmt"

	"github.com/hupe1980/autocrew/core"
	"github.com/hupe1980/autocrew/skill"
)

type useSkillArgs struct {
	Name string `json:"name" description:"The skill name (e.g. 'weather', 'slack')"`
}

// NewUseSkillTool returns the use_skill built-in: load a skill's full
// instructions from the registry by name.
func NewUseSkillTool(skills *skill.Registry) *FunctionTool {
	return NewFunctionToolFromStruct(
		"use_skill",
		"Load the full instructions for a skill by name. Call this before performing a skill to get its detailed instructions.",
		useSkillArgs{},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			name, _ := args["name"].(string)
			body, err := skills.Load(name)
			if err != nil {
				return fmt.Sprintf("Error: %v", err), nil
			}
			return body, nil
		},
	)
}
