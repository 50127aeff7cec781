// Package mcpserver exposes the tool registry as an MCP server over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	mcpgo "github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/protocol"
	"github.com/osmcp/osmcp/internal/errorsx"
	"github.com/osmcp/osmcp/internal/security"
	"github.com/osmcp/osmcp/internal/tools"
)

const instructions = "Tools for inspecting an OpenSearch cluster (indices, mappings, search, shards) " +
	"and, when enabled, the JMA forecast overview for a Japanese prefecture."

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
	stringType  = reflect.TypeOf("")
	mapType     = reflect.TypeOf(map[string]interface{}{})
)

// Config configures the MCP server.
type Config struct {
	Name     string
	Version  string
	Registry *tools.Registry
	Audit    *security.AuditLogger
}

// Server binds every registry entry to an MCP tool of the same name.
type Server struct {
	srv      *mcpgo.Server
	registry *tools.Registry
	audit    *security.AuditLogger
}

func New(cfg Config) *Server {
	info := mcpgo.ServerInfo{
		Name:        cfg.Name,
		Version:     cfg.Version,
		Description: "OpenSearch and weather tools",
		Capabilities: mcpgo.Capabilities{
			Tools: true,
		},
	}

	s := &Server{
		srv:      mcpgo.NewServer(info, mcpgo.WithInstructions(instructions)),
		registry: cfg.Registry,
		audit:    cfg.Audit,
	}
	for _, t := range cfg.Registry.List() {
		s.srv.Tool(t.Name).
			Description(t.Description).
			Handler(s.typedHandler(t))
	}
	return s
}

// MCP returns the underlying mcp-go server.
func (s *Server) MCP() *mcpgo.Server {
	return s.srv
}

// typedHandler builds func(context.Context, A) (string, error) for the tool's
// argument struct A. mcp-go derives the advertised input schema from A, so
// the json and jsonschema tags on A are what clients see.
func (s *Server) typedHandler(t tools.Tool) interface{} {
	argType := mapType
	if t.Args != nil {
		argType = reflect.TypeOf(t.Args)
	}
	fnType := reflect.FuncOf(
		[]reflect.Type{contextType, argType},
		[]reflect.Type{stringType, errorType},
		false,
	)
	call := s.Handler(t.Name)

	fn := reflect.MakeFunc(fnType, func(in []reflect.Value) []reflect.Value {
		ctx, _ := in[0].Interface().(context.Context)
		if ctx == nil {
			ctx = context.Background()
		}
		raw, err := json.Marshal(in[1].Interface())
		var text string
		if err == nil {
			text, err = call(ctx, raw)
		}
		errVal := reflect.Zero(errorType)
		if err != nil {
			errVal = reflect.ValueOf(&err).Elem()
		}
		return []reflect.Value{reflect.ValueOf(text), errVal}
	})
	return fn.Interface()
}

// Handler returns the untyped handler for one tool. Tool failures come back as
// their envelope text; only undecodable or schema-violating input is an error.
func (s *Server) Handler(name string) func(ctx context.Context, input json.RawMessage) (string, error) {
	return func(ctx context.Context, input json.RawMessage) (string, error) {
		args, err := decodeInput(input)
		if err != nil {
			return "", err
		}

		start := time.Now()
		res, err := s.registry.Invoke(ctx, name, args)
		if err != nil {
			return "", err
		}

		call := security.ToolCall{
			Tool:      name,
			Arguments: args,
			Transport: "stdio",
			IsError:   res.IsError,
			Duration:  time.Since(start),
		}
		if res.IsError {
			call.Reason = string(errorsx.Reason(res.Err))
			markFailed(ctx)
		}
		s.audit.LogToolCall(call)

		return res.Content.Text(), nil
	}
}

// ServeStdio runs the server over stdin/stdout until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	return mcpgo.ServeStdio(ctx, s.srv, mcpgo.WithMiddleware(mcpgo.Recover(), s.Middleware()))
}

func decodeInput(input json.RawMessage) (map[string]interface{}, error) {
	if len(input) == 0 || string(input) == "null" {
		return map[string]interface{}{}, nil
	}
	var args map[string]interface{}
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, fmt.Errorf("arguments must be a JSON object: %w", err)
	}
	return args, nil
}

type failureKey struct{}

type failureMark struct {
	failed bool
}

func markFailed(ctx context.Context) {
	if m, ok := ctx.Value(failureKey{}).(*failureMark); ok {
		m.failed = true
	}
}

// withDefaultArguments fills in {} when a tools/call omits arguments or sends
// null, since mcp-go cannot decode an empty payload into the argument struct.
func withDefaultArguments(req *protocol.Request) *protocol.Request {
	var params map[string]json.RawMessage
	if err := json.Unmarshal(req.Params, &params); err != nil || params == nil {
		return req
	}
	if args, ok := params["arguments"]; ok && len(args) > 0 && string(args) != "null" {
		return req
	}
	params["arguments"] = json.RawMessage(`{}`)
	raw, err := json.Marshal(params)
	if err != nil {
		return req
	}
	clone := *req
	clone.Params = raw
	return &clone
}

// Middleware fills in missing tools/call arguments and sets isError on a
// result whose tool reported a failure. mcp-go only builds the content block,
// so the flag is added here.
func (s *Server) Middleware() mcpgo.Middleware {
	return func(next mcpgo.MiddlewareHandlerFunc) mcpgo.MiddlewareHandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			if req.Method != protocol.MethodToolsCall {
				return next(ctx, req)
			}

			req = withDefaultArguments(req)
			mark := &failureMark{}
			resp, err := next(context.WithValue(ctx, failureKey{}, mark), req)
			if err != nil || resp == nil || !mark.failed {
				return resp, err
			}
			if result, ok := resp.Result.(map[string]any); ok {
				result["isError"] = true
			}
			return resp, nil
		}
	}
}
