package tool

import (
	"fmt"
	"sync"

	"github.com/hupe1980/autocrew/model"
)

// CatalogEntry is the name/description pair the roster planner offers when
// asking the model to assign tools to roles.
type CatalogEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Registry is an ordered collection of tools. Order is registration order
// and is preserved in catalogs and schema lists so planner prompts and model
// requests are reproducible.
type Registry struct {
	mu    sync.RWMutex
	order []string
	tools map[string]Tool
}

// NewRegistry constructs a registry holding the given tools.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool)}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

// Register adds a tool, replacing any previous tool of the same name while
// keeping its original position.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[t.Name()]; !exists {
		r.order = append(r.order, t.Name())
	}
	r.tools[t.Name()] = t
}

// Get returns the named tool.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Catalog returns name/description entries in registration order.
func (r *Registry) Catalog() []CatalogEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := make([]CatalogEntry, 0, len(r.order))
	for _, name := range r.order {
		entries = append(entries, CatalogEntry{
			Name:        name,
			Description: r.tools[name].Description(),
		})
	}
	return entries
}

// Definitions returns the model-facing schemas for the named tools, in the
// order given. Unknown names are skipped: grants are validated upstream by
// the roster planner, and a stale grant must not break a turn.
func (r *Registry) Definitions(names []string) []model.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]model.ToolDefinition, 0, len(names))
	for _, name := range names {
		t, ok := r.tools[name]
		if !ok {
			continue
		}
		defs = append(defs, model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return defs
}

// MustGet returns the named tool or panics. For wiring code where a missing
// tool is a programming error.
func (r *Registry) MustGet(name string) Tool {
	t, ok := r.Get(name)
	if !ok {
		panic(fmt.Sprintf("tool %q not registered", name))
	}
	return t
}
