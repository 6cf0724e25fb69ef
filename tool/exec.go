package tool

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/hupe1980/autocrew/core"
)

// execArgs are the arguments of the exec tool.
type execArgs struct {
	Command string `json:"command" description:"The shell command to execute"`
}

// NewExecTool returns the exec built-in: run a shell command and return its
// combined output. Failures are reported in the result text (exit code
// suffix, timeout notice) so the model can react instead of halting.
func NewExecTool(timeout time.Duration) *FunctionTool {
	return NewFunctionToolFromStruct(
		"exec",
		"Execute a shell command and return its output. Use for running programs, installing packages, git operations, etc.",
		execArgs{},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			command, _ := args["command"].(string)

			ctx, cancel := context.WithTimeout(toolCtx.Context(), timeout)
			defer cancel()

			cmd := exec.CommandContext(ctx, "sh", "-c", command)
			raw, err := cmd.CombinedOutput()
			output := string(raw)

			if ctx.Err() == context.DeadlineExceeded {
				return fmt.Sprintf("Error: command timed out after %s", timeout), nil
			}
			if err != nil {
				var exitErr *exec.ExitError
				if errors.As(err, &exitErr) {
					output += fmt.Sprintf("\n(exit code %d)", exitErr.ExitCode())
				} else {
					return nil, fmt.Errorf("run command: %w", err)
				}
			}

			output = strings.TrimSpace(output)
			if output == "" {
				output = "(no output)"
			}
			return truncate(output), nil
		},
	)
}

// truncate caps a result at maxContentChars with a marker.
func truncate(text string) string {
	if len(text) <= maxContentChars {
		return text
	}
	return text[:maxContentChars] + fmt.Sprintf("\n\n... (truncated at %d chars)", maxContentChars)
}
