package tools

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/osmcp/osmcp/internal/errorsx"
)

// FailurePolicy renders a handler fault as the caller-facing text.
type FailurePolicy func(err error) string

// Prefixed reports faults verbatim behind a fixed prefix.
func Prefixed(prefix string) FailurePolicy {
	return func(err error) string {
		return prefix + err.Error()
	}
}

// Run calls fn and converts its outcome into a Result. Errors and panics are
// rendered through onFailure.
func Run(onFailure FailurePolicy, fn func() (string, error)) (res Result) {
	defer func() {
		if rec := recover(); rec != nil {
			err := errorsx.Wrap(fmt.Errorf("panic: %v", rec), errorsx.ReasonPanic)
			res = Failure(onFailure(err), err)
		}
	}()

	text, err := fn()
	if err != nil {
		return Failure(onFailure(err), err)
	}
	return Success(text)
}

// newTool binds a typed handler to a tool descriptor. The validated input map
// is decoded into A before run is called.
func newTool[A any](name, description string, schema map[string]interface{}, onFailure FailurePolicy, run func(ctx context.Context, args A) (string, error)) Tool {
	var zero A
	return Tool{
		Name:        name,
		Description: description,
		InputSchema: schema,
		Args:        zero,
		Execute: func(ctx context.Context, input map[string]interface{}) Result {
			return Run(onFailure, func() (string, error) {
				var args A
				if err := decodeArgs(input, &args); err != nil {
					return "", err
				}
				return run(ctx, args)
			})
		},
	}
}

func decodeArgs(input map[string]interface{}, out any) error {
	if len(input) == 0 {
		return nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "mapstructure",
		Result:  out,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("decode arguments: %w", err)
	}
	return nil
}

// stringProperty is the schema of a required, non-empty string argument.
func stringProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"minLength":   1,
		"description": description,
	}
}
