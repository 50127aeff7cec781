package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/osmcp/osmcp/internal/errorsx"
	"github.com/rs/zerolog/log"
	"github.com/xeipuuv/gojsonschema"
)

// ErrUnknownTool is returned by Invoke for names that are not registered.
var ErrUnknownTool = errors.New("unknown tool")

// ValidationError reports arguments that do not satisfy a tool's schema.
type ValidationError struct {
	Tool     string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %s", e.Tool, strings.Join(e.Problems, "; "))
}

type entry struct {
	tool   Tool
	schema *gojsonschema.Schema
}

// Registry is an immutable name → tool lookup built once at startup. All
// methods are safe for concurrent use.
type Registry struct {
	order   []string
	entries map[string]entry
}

// NewRegistry compiles each tool's input schema and indexes the tools by name.
// Empty or duplicate names and invalid schemas are rejected.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{
		order:   make([]string, 0, len(tools)),
		entries: make(map[string]entry, len(tools)),
	}
	for _, t := range tools {
		if t.Name == "" {
			return nil, errors.New("tool name is required")
		}
		if _, dup := r.entries[t.Name]; dup {
			return nil, fmt.Errorf("duplicate tool %q", t.Name)
		}
		if t.Execute == nil {
			return nil, fmt.Errorf("tool %q has no handler", t.Name)
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(t.InputSchema))
		if err != nil {
			return nil, fmt.Errorf("compile schema for %q: %w", t.Name, err)
		}
		r.entries[t.Name] = entry{tool: t, schema: schema}
		r.order = append(r.order, t.Name)
	}
	return r, nil
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (Tool, bool) {
	e, ok := r.entries[name]
	return e.tool, ok
}

// List returns the tools in registration order.
func (r *Registry) List() []Tool {
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name].tool)
	}
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.order)
}

// Validate checks args against the named tool's input schema.
func (r *Registry) Validate(name string, args map[string]interface{}) error {
	e, ok := r.entries[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	if args == nil {
		args = map[string]interface{}{}
	}
	result, err := e.schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return &ValidationError{Tool: name, Problems: []string{err.Error()}}
	}
	if result.Valid() {
		return nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return &ValidationError{Tool: name, Problems: problems}
}

// Invoke validates args and runs the named tool. Unknown names and schema
// violations are returned as errors; every handler outcome, including
// failures, comes back as a Result.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]interface{}) (Result, error) {
	if args == nil {
		args = map[string]interface{}{}
	}
	if err := r.Validate(name, args); err != nil {
		return Result{}, err
	}

	start := time.Now()
	res := r.entries[name].tool.Execute(ctx, args)

	if res.IsError {
		log.Warn().
			Str("tool", name).
			Str("reason", string(errorsx.Reason(res.Err))).
			Err(res.Err).
			Dur("duration", time.Since(start)).
			Msg("tool failed")
	} else {
		log.Debug().
			Str("tool", name).
			Dur("duration", time.Since(start)).
			Msg("tool completed")
	}
	return res, nil
}
