// Package skill discovers and serves skill files: directories containing a
// SKILL.md whose YAML frontmatter names and describes the skill. Discovery
// results feed agent system prompts; the use_skill tool loads full bodies on
// demand. A Watcher keeps the registry fresh while the REPL is open.
package skill

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Skill is one discovered skill: frontmatter metadata plus the path of its
// SKILL.md file.
type Skill struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Path        string `yaml:"-"`
}

// Registry indexes the skills found under a root directory. Safe for
// concurrent use; Reload swaps the index atomically.
type Registry struct {
	dir string

	mu     sync.RWMutex
	skills map[string]Skill
}

// NewRegistry builds a registry rooted at dir and performs the initial scan.
// A missing or empty directory is not an error; the registry is just empty.
func NewRegistry(dir string) (*Registry, error) {
	r := &Registry{dir: dir, skills: map[string]Skill{}}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Dir returns the registry's root directory.
func (r *Registry) Dir() string { return r.dir }

// Reload rescans <dir>/*/SKILL.md. Files without a parseable frontmatter
// name are skipped rather than failing the whole scan.
func (r *Registry) Reload() error {
	matches, err := filepath.Glob(filepath.Join(r.dir, "*", "SKILL.md"))
	if err != nil {
		return fmt.Errorf("scan skills dir: %w", err)
	}

	skills := map[string]Skill{}
	for _, path := range matches {
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		meta, ok := parseFrontmatter(string(raw))
		if !ok || meta.Name == "" {
			continue
		}
		meta.Path = path
		skills[meta.Name] = meta
	}

	r.mu.Lock()
	r.skills = skills
	r.mu.Unlock()
	return nil
}

// List returns the discovered skills sorted by name.
func (r *Registry) List() []Skill {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Skill, 0, len(r.skills))
	for _, s := range r.skills {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Load returns the full SKILL.md body for the named skill.
func (r *Registry) Load(name string) (string, error) {
	r.mu.RLock()
	s, ok := r.skills[name]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("skill not found: %s", name)
	}
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return "", fmt.Errorf("read skill %s: %w", name, err)
	}
	return string(raw), nil
}

// PromptSection renders the skills listing appended to system prompts of
// agents granted use_skill. Empty when no skills are discovered.
func (r *Registry) PromptSection() string {
	skills := r.List()
	if len(skills) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\n\n## Available Skills\n\n")
	sb.WriteString("Call the `use_skill` tool with the skill name to load its full instructions before performing it.\n")
	for _, s := range skills {
		sb.WriteString(fmt.Sprintf("- **%s**: %s\n", s.Name, s.Description))
	}
	return sb.String()
}

// parseFrontmatter extracts the YAML block between the leading "---" fences.
func parseFrontmatter(text string) (Skill, bool) {
	if !strings.HasPrefix(text, "---") {
		return Skill{}, false
	}
	rest := strings.TrimPrefix(text, "---")
	idx := strings.Index(rest, "\n---")
	if idx < 0 {
		return Skill{}, false
	}
	var meta Skill
	if err := yaml.Unmarshal([]byte(rest[:idx]), &meta); err != nil {
		return Skill{}, false
	}
	return meta, true
}
