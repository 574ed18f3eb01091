package toolbox

import (
	"context"
	"encoding/json"
	"fmt"
)

// ToolBox orchestrates a collection of tools. It allows registering, retrieving,
// listing, and calling tools. The orchestrator-facing server uses ToolBox to
// dispatch tool calls.
type ToolBox struct {
	tools map[string]Tool
}

// New creates a new ToolBox ready for use.
func New() *ToolBox {
	return &ToolBox{
		tools: make(map[string]Tool),
	}
}

// Register adds one or more tools to the ToolBox. If a tool with the same name
// already exists, it is replaced.
func (tb *ToolBox) Register(tools ...Tool) {
	for _, t := range tools {
		tb.tools[t.Name] = t
	}
}

// Get returns a tool by name and a boolean indicating whether it was found.
func (tb *ToolBox) Get(name string) (Tool, bool) {
	t, ok := tb.tools[name]
	return t, ok
}

// Merge registers all tools from another ToolBox into this one. If a tool
// with the same name already exists, it is replaced.
func (tb *ToolBox) Merge(other *ToolBox) {
	for _, t := range other.tools {
		tb.tools[t.Name] = t
	}
}

// Tools returns all registered tools as a slice.
func (tb *ToolBox) Tools() []Tool {
	result := make([]Tool, 0, len(tb.tools))
	for _, t := range tb.tools {
		result = append(result, t)
	}
	return result
}

// Filter returns a ToolBox containing only the named tools. Names that are
// not registered are skipped. If names is empty, the receiver is returned
// unchanged.
func (tb *ToolBox) Filter(names []string) *ToolBox {
	if len(names) == 0 {
		return tb
	}

	filtered := New()
	for _, name := range names {
		if t, ok := tb.tools[name]; ok {
			filtered.Register(t)
		}
	}
	return filtered
}

// Call executes a tool call and returns a ToolResult. If the tool is not found
// or the handler returns an error, the result will have IsError set to true.
func (tb *ToolBox) Call(ctx context.Context, tc ToolCall) ToolResult {
	t, ok := tb.tools[tc.Name]
	if !ok {
		return ToolResult{
			ToolCallID: tc.ID,
			Content:    fmt.Sprintf("tool not found: %s", tc.Name),
			IsError:    true,
		}
	}

	result, err := t.Handler(ctx, json.RawMessage(tc.Arguments))
	if err != nil {
		return ToolResult{
			ToolCallID: tc.ID,
			Content:    err.Error(),
			IsError:    true,
		}
	}

	return ToolResult{
		ToolCallID: tc.ID,
		Content:    result,
	}
}
