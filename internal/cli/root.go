// Package cli implements the osmcp command tree.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/osmcp/osmcp/internal/config"
	"github.com/osmcp/osmcp/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries the state shared by every sub-command of one root command.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	logOut  io.Writer
}

// NewRootCommand builds the osmcp command tree. Flags are bound to viper keys
// so they override the config file and the environment.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New(), logOut: os.Stderr}

	root := &cobra.Command{
		Use:           "osmcp",
		Short:         "osmcp - OpenSearch and weather tools over MCP and HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWith(a.v, a.cfgFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			// stdout carries the MCP stream and command output, so logs go to stderr.
			logging.Init(cfg.LogLevel, cfg.Environment == config.DefaultEnvironment, a.logOut)
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (JSON, YAML or TOML)")
	root.PersistentFlags().String("log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	_ = a.v.BindPFlag("log_level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(
		newServeCommand(a),
		newStdioCommand(a),
		newToolsCommand(a),
		newCallCommand(a),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
