package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Rahulagowda004/FIle-Explorer-Agent/internal/search"
)

func newDuplicatesCommand() *cobra.Command {
	var recursive bool
	var algorithm string

	cmd := &cobra.Command{
		Use:   "duplicates <directory>",
		Short: "Find files with identical content",
		Long: `Group the files under a directory by content digest and report the space
the extra copies take. Files are compared by size first, so only files that
share a size are hashed. Files above search.max_hash_size_mb are skipped.

Examples:
  fileagent duplicates ~/Downloads
  fileagent duplicates ~/Pictures --recursive=false
  fileagent duplicates . --hash blake3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if algorithm == "" {
				algorithm = cfg.Search.HashAlgorithm
			}
			algo, err := search.ParseHashAlgorithm(algorithm)
			if err != nil {
				return err
			}
			root, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}

			engine := search.NewEngine(afero.NewOsFs())
			res := engine.FindDuplicates(contextOrBackground(cmd.Context()), root, search.DuplicateOptions{
				Recursive:   recursive,
				MaxFileSize: cfg.Search.MaxHashSizeMB * 1024 * 1024,
				Algorithm:   algo,
				Excluded:    excludedDirs(cfg),
				Timeout:     cfg.Search.Timeout.Std(),
			})

			printDuplicates(cmd.OutOrStdout(), res)
			if !res.Success {
				return fmt.Errorf("duplicate search failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&recursive, "recursive", true, "Include subdirectories")
	cmd.Flags().StringVar(&algorithm, "hash", "", "Digest: sha256 or blake3 (default: search.hash_algorithm)")
	return cmd
}

func printDuplicates(w io.Writer, res search.DuplicateResult) {
	if !res.Success {
		color.New(color.FgRed).Fprintln(w, res.Message)
		return
	}

	cyan := color.New(color.FgCyan, color.Bold)
	gray := color.New(color.FgHiBlack)

	cyan.Fprintln(w, res.Message)
	for i, group := range res.Groups {
		fmt.Fprintf(w, "\nGroup %d: %d files, %s each\n", i+1, len(group.Files), search.FormatBytes(group.Size))
		for _, file := range group.Files {
			fmt.Fprintf(w, "  %s\n", file)
		}
	}
	if res.SkippedLarge > 0 {
		gray.Fprintf(w, "\nSkipped %d files above the size limit.\n", res.SkippedLarge)
	}
}
