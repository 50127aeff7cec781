package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/osmcp/osmcp/internal/server"
	"github.com/spf13/cobra"
)

// errToolFailed is returned by call when the tool reported a failure; the
// envelope text has already been printed.
var errToolFailed = errors.New("tool reported a failure")

var (
	toolName   = color.New(color.FgCyan, color.Bold).SprintFunc()
	argName    = color.New(color.FgYellow).SprintFunc()
	failedText = color.New(color.FgRed).SprintFunc()
)

func newToolsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the registered tools and their arguments",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := server.NewDeps(a.cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, t := range deps.Registry.List() {
				fmt.Fprintf(out, "%s\n  %s\n", toolName(t.Name), t.Description)
				if params := describeArgs(t.InputSchema); params != "" {
					fmt.Fprintf(out, "  args: %s\n", params)
				}
			}
			return nil
		},
	}
}

func newCallCommand(a *app) *cobra.Command {
	var rawArgs string
	cmd := &cobra.Command{
		Use:   "call NAME",
		Short: "Invoke one tool and print its response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := map[string]interface{}{}
			if strings.TrimSpace(rawArgs) != "" {
				if err := json.Unmarshal([]byte(rawArgs), &input); err != nil {
					return fmt.Errorf("--args must be a JSON object: %w", err)
				}
			}

			deps, err := server.NewDeps(a.cfg)
			if err != nil {
				return err
			}
			res, err := deps.Registry.Invoke(cmd.Context(), args[0], input)
			if err != nil {
				return err
			}

			text := res.Content.Text()
			if res.IsError {
				fmt.Fprintln(cmd.OutOrStdout(), failedText(text))
				return errToolFailed
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().StringVar(&rawArgs, "args", "", `tool arguments as a JSON object, e.g. '{"index":"logs"}'`)
	return cmd
}

// describeArgs renders the schema's properties as "name*, other" with
// required arguments starred.
func describeArgs(schema map[string]interface{}) string {
	props, _ := schema["properties"].(map[string]interface{})
	if len(props) == 0 {
		return ""
	}
	required := map[string]bool{}
	if req, ok := schema["required"].([]interface{}); ok {
		for _, r := range req {
			if s, ok := r.(string); ok {
				required[s] = true
			}
		}
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		if required[name] {
			name += "*"
		}
		parts[i] = argName(name)
	}
	return strings.Join(parts, ", ")
}
