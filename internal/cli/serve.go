package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/osmcp/osmcp/internal/handler"
	"github.com/osmcp/osmcp/internal/mcpserver"
	"github.com/osmcp/osmcp/internal/server"
	"github.com/spf13/cobra"
)

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tools as a JSON HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			deps, err := server.NewDeps(a.cfg)
			if err != nil {
				return err
			}
			return server.New(a.cfg, deps).Run(ctx)
		},
	}
	cmd.Flags().String("host", "", "listen host")
	cmd.Flags().Int("port", 0, "listen port")
	_ = a.v.BindPFlag("host", cmd.Flags().Lookup("host"))
	_ = a.v.BindPFlag("port", cmd.Flags().Lookup("port"))
	return cmd
}

func newStdioCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stdio",
		Short: "Serve the tools as an MCP server on stdin/stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			deps, err := server.NewDeps(a.cfg)
			if err != nil {
				return err
			}
			srv := mcpserver.New(mcpserver.Config{
				Name:     "osmcp",
				Version:  handler.Version,
				Registry: deps.Registry,
				Audit:    deps.Audit,
			})
			return srv.ServeStdio(ctx)
		},
	}
}
