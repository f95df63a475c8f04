package ai

import "context"

// ToolHandler executes a read tool and returns a JSON-encoded result string.
type ToolHandler func(ctx context.Context) (string, error)

// ToolDefinition is a named read-only data source the agent can consult.
// Tools never write; the agent only drafts actions for human confirmation.
type ToolDefinition struct {
	Name        string
	Description string
	Handler     ToolHandler
}

// ToolRegistry holds the read tools available to the agent for a call.
// The app layer registers catalog, stock level, and ledger lookups here
// before invoking InterpretStockNote.
type ToolRegistry struct {
	tools []ToolDefinition
}

// NewToolRegistry creates an empty ToolRegistry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{}
}

// Register adds a tool to the registry.
func (r *ToolRegistry) Register(t ToolDefinition) {
	r.tools = append(r.tools, t)
}

// Get returns the ToolDefinition for a given tool name, and whether it was found.
func (r *ToolRegistry) Get(name string) (ToolDefinition, bool) {
	for _, t := range r.tools {
		if t.Name == name {
			return t, true
		}
	}
	return ToolDefinition{}, false
}

// All returns all registered tools.
func (r *ToolRegistry) All() []ToolDefinition {
	return r.tools
}
