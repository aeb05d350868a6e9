package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Rahulagowda004/FIle-Explorer-Agent/internal/config"
	"github.com/Rahulagowda004/FIle-Explorer-Agent/internal/search"
	"github.com/Rahulagowda004/FIle-Explorer-Agent/internal/tools"
)

type searchOptions struct {
	path          string
	searchType    string
	extensions    string
	maxResults    int
	maxDepth      int
	caseSensitive bool
	timeout       time.Duration
	quick         bool
	jsonOutput    bool
}

func newSearchCommand() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <pattern>",
		Short: "Search for files and folders by name",
		Long: `Run the bounded search engine directly, without the agent.

The pattern is a glob when it contains *, ? or [, otherwise a substring of the
name. The walk stops at --max-depth, after --max-results hits or when
--timeout elapses; the output says when that happened.

Examples:
  fileagent search "*.pdf" --path ~/Documents
  fileagent search invoice --type files --max-depth 5
  fileagent search report --quick
  fileagent search "" --ext .mp4,.mkv --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.path, "path", "", "Directory to search (default: search.default_root or home)")
	cmd.Flags().StringVar(&opts.searchType, "type", "both", "What to match: files, folders or both")
	cmd.Flags().StringVar(&opts.extensions, "ext", "", "Comma separated extensions files must have")
	cmd.Flags().IntVar(&opts.maxResults, "max-results", 0, "Stop after this many hits (default: search.max_results)")
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", 0, "Directory levels below the path to descend (default: search.max_depth)")
	cmd.Flags().BoolVar(&opts.caseSensitive, "case-sensitive", false, "Match names case-sensitively")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Stop the walk after this long (default: search.timeout)")
	cmd.Flags().BoolVar(&opts.quick, "quick", false, "Search the common user directories and the working directory instead of --path")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print the result as JSON")
	return cmd
}

func runSearch(cmd *cobra.Command, pattern string, opts searchOptions) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	scope, err := search.ParseScope(opts.searchType)
	if err != nil {
		return err
	}

	req := search.Request{
		Pattern:       pattern,
		Scope:         scope,
		MaxResults:    orDefault(opts.maxResults, cfg.Search.MaxResults),
		MaxDepth:      orDefault(opts.maxDepth, cfg.Search.MaxDepth),
		CaseSensitive: opts.caseSensitive,
		Timeout:       opts.timeout,
		Excluded:      excludedDirs(cfg),
		Extensions:    search.ParseExtensionList(opts.extensions),
	}
	if req.Timeout <= 0 {
		req.Timeout = cfg.Search.Timeout.Std()
	}

	engine := search.NewEngine(afero.NewOsFs())
	ctx := contextOrBackground(cmd.Context())

	var res search.Result
	if opts.quick {
		// zero values select the quick search defaults
		req.MaxResults, req.MaxDepth, req.Timeout = opts.maxResults, opts.maxDepth, opts.timeout
		workDir, err := cfg.ResolveWorkDir()
		if err != nil {
			return err
		}
		home, _ := os.UserHomeDir()
		res = engine.QuickSearch(ctx, req, cfg.QuickRoots(home, workDir))
	} else {
		root := opts.path
		if root == "" {
			root = cfg.SearchRoot()
		}
		if req.Root, err = filepath.Abs(root); err != nil {
			return fmt.Errorf("resolve path: %w", err)
		}
		res = engine.SearchDrive(ctx, req)
	}

	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		return writeJSON(out, tools.ToSearchOutput(res))
	}
	printSearchResult(out, res)
	if !res.Success {
		return fmt.Errorf("search failed")
	}
	return nil
}

// excludedDirs extends the built-in exclusion list with search.excluded.
// nil lets each variant apply its own defaults.
func excludedDirs(cfg *config.Config) []string {
	if len(cfg.Search.Excluded) == 0 {
		return nil
	}
	out := append([]string{}, search.DefaultExcluded...)
	return append(out, cfg.Search.Excluded...)
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func printSearchResult(w io.Writer, res search.Result) {
	header := color.New(color.FgCyan, color.Bold)
	warn := color.New(color.FgYellow)
	gray := color.New(color.FgHiBlack)

	if !res.Success {
		color.New(color.FgRed).Fprintln(w, res.Message)
		return
	}

	header.Fprintf(w, "%s\n", res.Message)
	for _, item := range res.Items {
		fmt.Fprintf(w, "  %-6s %s", item.Kind, item.Path)
		if item.Size != nil {
			gray.Fprintf(w, "  %s", search.FormatBytes(*item.Size))
		}
		if item.ModifiedAt != nil {
			gray.Fprintf(w, "  %s", item.ModifiedAt.Format("2006-01-02 15:04"))
		}
		fmt.Fprintln(w)
	}
	if res.Truncated || res.TimedOut {
		warn.Fprintln(w, "Results are partial; narrow the pattern or raise the limits.")
	}
	gray.Fprintf(w, "Searched %s in %.2fs\n", res.Root, res.ElapsedSeconds())
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
