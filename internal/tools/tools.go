// Package tools implements the tool surface the agents expose to the
// model: named executors with JSON Schema argument contracts, and a
// dispatcher that turns model tool calls into tool-role conversation
// turns.
//
// Dispatch never fails a run because the model asked for something
// wrong. Unknown names, malformed arguments, schema violations, and
// executor failures all come back as {"error": "..."} payloads so the
// model can read the failure and correct itself.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/quantive/stepgraph/pkg/stepgraph/llm"
	"github.com/quantive/stepgraph/pkg/stepgraph/registry"
)

// Executor runs a tool against already-validated arguments and returns a
// JSON-serializable result.
type Executor func(ctx context.Context, args map[string]any) (any, error)

// Definition describes one callable tool.
type Definition struct {
	// Name is the identifier the model calls the tool by.
	Name string

	// Description tells the model when to use the tool.
	Description string

	// Schema is the JSON Schema for the arguments object. Required.
	Schema json.RawMessage

	// Execute runs the tool. Required.
	Execute Executor
}

type entry struct {
	def      Definition
	compiled *jsonschema.Schema
}

// Registry holds the tools available to one agent. Safe for concurrent
// use.
type Registry struct {
	entries *registry.Registry[string, entry]
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: registry.New[string, entry]()}
}

// Register adds a tool, compiling its argument schema up front so that
// malformed schemas surface at wiring time rather than mid-run.
func (r *Registry) Register(def Definition) error {
	if strings.TrimSpace(def.Name) == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if def.Execute == nil {
		return fmt.Errorf("tool %q has no executor", def.Name)
	}
	if len(def.Schema) == 0 {
		return fmt.Errorf("tool %q has no argument schema", def.Name)
	}

	compiled, err := compileSchema(def.Name, def.Schema)
	if err != nil {
		return err
	}

	if r.entries.Has(def.Name) {
		return fmt.Errorf("duplicate tool: %s", def.Name)
	}
	r.entries.Register(def.Name, entry{def: def, compiled: compiled})
	return nil
}

// MustRegister is Register for wiring code where a bad definition is a
// programming error.
func (r *Registry) MustRegister(def Definition) {
	if err := r.Register(def); err != nil {
		panic("tools: " + err.Error())
	}
}

// Definitions returns the registered tools as model-facing declarations,
// sorted by name for stable prompts.
func (r *Registry) Definitions() []llm.Tool {
	out := make([]llm.Tool, 0, r.entries.Len())
	for _, name := range r.entries.Keys() {
		e, ok := r.entries.Get(name)
		if !ok {
			continue
		}
		out = append(out, llm.Tool{
			Name:        e.def.Name,
			Description: e.def.Description,
			Parameters:  e.def.Schema,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Has reports whether a tool is registered.
func (r *Registry) Has(name string) bool {
	return r.entries.Has(name)
}

// Dispatch executes one model tool call and returns the tool-role turn
// carrying the result payload. The returned message always pairs with
// the call via ToolCallID, including on failure.
func (r *Registry) Dispatch(ctx context.Context, call llm.ToolCall) llm.Message {
	payload := r.run(ctx, call)

	data, err := json.Marshal(payload)
	if err != nil {
		data, _ = json.Marshal(map[string]string{
			"error": fmt.Sprintf("unserializable tool result: %v", err),
		})
	}

	return llm.Message{
		Role:       llm.RoleTool,
		Content:    string(data),
		Name:       call.Name,
		ToolCallID: call.ID,
	}
}

// DispatchAll dispatches every call in order, one turn per call.
func (r *Registry) DispatchAll(ctx context.Context, calls []llm.ToolCall) []llm.Message {
	out := make([]llm.Message, 0, len(calls))
	for _, call := range calls {
		out = append(out, r.Dispatch(ctx, call))
	}
	return out
}

func (r *Registry) run(ctx context.Context, call llm.ToolCall) any {
	e, ok := r.entries.Get(call.Name)
	if !ok {
		return errPayload(fmt.Sprintf("Unknown tool: %s", call.Name))
	}

	raw := call.Arguments
	if len(raw) == 0 {
		raw = json.RawMessage(`{}`)
	}

	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(string(raw)))
	if err != nil {
		return errPayload(fmt.Sprintf("invalid arguments for %s: %v", call.Name, err))
	}
	if err := e.compiled.Validate(doc); err != nil {
		return errPayload(fmt.Sprintf("invalid arguments for %s: %v", call.Name, err))
	}

	args, ok := doc.(map[string]any)
	if !ok {
		return errPayload(fmt.Sprintf("invalid arguments for %s: expected an object", call.Name))
	}

	result, err := e.def.Execute(ctx, args)
	if err != nil {
		return errPayload(err.Error())
	}
	return result
}

func errPayload(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func compileSchema(name string, schema json.RawMessage) (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(string(schema)))
	if err != nil {
		return nil, fmt.Errorf("tool %q schema: %w", name, err)
	}
	c := jsonschema.NewCompiler()
	uri := fmt.Sprintf("mem://tools/%s.json", name)
	if err := c.AddResource(uri, doc); err != nil {
		return nil, fmt.Errorf("tool %q schema: %w", name, err)
	}
	compiled, err := c.Compile(uri)
	if err != nil {
		return nil, fmt.Errorf("tool %q schema: %w", name, err)
	}
	return compiled, nil
}
