package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Rahulagowda004/FIle-Explorer-Agent/internal/tools"
)

func newServeCommand() *cobra.Command {
	var workDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the filesystem tool host on stdio",
		Long: `Serve the filesystem tools over the Model Context Protocol on stdin/stdout.

The chat command starts this automatically. It can also be registered with
any MCP client. Logs go to stderr and the run log, never to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("work-dir") {
				cfg.MergeWithFlags(nil, &workDir, nil, nil)
			}

			log, closeLog, err := newLogger(cfg, cmd.ErrOrStderr(), true)
			if err != nil {
				return err
			}
			defer closeLog()

			ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := tools.NewServer(cfg, afero.NewOsFs(), log, Version)
			log.LogInfo(fmt.Sprintf("tool host %s ready with %d tools", Version, len(tools.ToolNames)))
			if err := srv.Serve(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&workDir, "work-dir", "", "Directory relative tool paths resolve against (default: current directory)")
	return cmd
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
