package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Rahulagowda004/FIle-Explorer-Agent/internal/config"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for fileagent
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fileagent",
		Short: "Conversational file explorer backed by MCP filesystem tools",
		Long: `fileagent lets you find, inspect and organize local files by chatting
with an LLM agent. The agent calls filesystem tools (bounded searches,
duplicate detection, file operations) served over the Model Context Protocol.

The search engine can also be used directly from the command line.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "Path to config file (default: $FILEAGENT_HOME/config.yaml)")
	cmd.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn, error")

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newChatCommand())
	cmd.AddCommand(newSearchCommand())
	cmd.AddCommand(newDuplicatesCommand())
	cmd.AddCommand(newHistoryCommand())

	return cmd
}

// loadConfig reads the config file named by --config (or the default one),
// overlays the environment and the --log-level flag, and validates the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		var err error
		configPath, err = config.DefaultConfigPath()
		if err != nil {
			return nil, err
		}
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}
	cfg.ApplyEnv()

	var logLevel *string
	if cmd.Flags().Changed("log-level") {
		level, _ := cmd.Flags().GetString("log-level")
		logLevel = &level
	}
	cfg.MergeWithFlags(logLevel, nil, nil, nil)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
