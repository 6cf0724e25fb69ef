package tool

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hupe1980/autocrew/core"
)

type readFileArgs struct {
	Path string `json:"path" description:"Absolute or relative path to the file"`
}

// NewReadFileTool returns the read_file built-in. Relative paths resolve
// against the workspace directory; missing files report an error string the
// model can correct.
func NewReadFileTool(workspace string) *FunctionTool {
	return NewFunctionToolFromStruct(
		"read_file",
		"Read the contents of a file and return them.",
		readFileArgs{},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			path, _ := args["path"].(string)
			resolved := resolvePath(workspace, path)

			raw, err := os.ReadFile(resolved)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return fmt.Sprintf("Error: file not found: %s", resolved), nil
				}
				if errors.Is(err, fs.ErrPermission) {
					return fmt.Sprintf("Error: permission denied: %s", resolved), nil
				}
				return nil, fmt.Errorf("read %s: %w", resolved, err)
			}
			return truncate(string(raw)), nil
		},
	)
}

type writeFileArgs struct {
	Path    string `json:"path" description:"Absolute or relative path to the file"`
	Content string `json:"content" description:"The content to write"`
}

// NewWriteFileTool returns the write_file built-in: create or overwrite a
// file, creating parent directories as needed.
func NewWriteFileTool(workspace string) *FunctionTool {
	return NewFunctionToolFromStruct(
		"write_file",
		"Write content to a file. Creates the file if it doesn't exist, overwrites if it does. Creates parent directories as needed.",
		writeFileArgs{},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			path, _ := args["path"].(string)
			content, _ := args["content"].(string)
			resolved := resolvePath(workspace, path)

			if dir := filepath.Dir(resolved); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return nil, fmt.Errorf("create parent dirs for %s: %w", resolved, err)
				}
			}
			if err := os.WriteFile(resolved, []byte(content), 0o644); err != nil {
				if errors.Is(err, fs.ErrPermission) {
					return fmt.Sprintf("Error: permission denied: %s", resolved), nil
				}
				return nil, fmt.Errorf("write %s: %w", resolved, err)
			}
			return fmt.Sprintf("Wrote %d bytes to %s", len(content), resolved), nil
		},
	)
}
