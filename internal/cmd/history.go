package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Rahulagowda004/FIle-Explorer-Agent/internal/history"
)

// errNoHistory means the history database has not been created yet.
var errNoHistory = errors.New("no chat history yet")

func newHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage saved chat sessions",
		Long: `List, show, export and delete the chat sessions saved by "fileagent chat".

Sessions are stored in $FILEAGENT_HOME/history.db unless history.db_path says
otherwise.`,
	}

	cmd.AddCommand(newHistoryListCommand())
	cmd.AddCommand(newHistoryShowCommand())
	cmd.AddCommand(newHistoryExportCommand())
	cmd.AddCommand(newHistoryDeleteCommand())
	return cmd
}

// openHistory opens the configured SQLite history without creating it.
func openHistory(cmd *cobra.Command) (*history.SQLiteStore, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dbPath, err := cfg.HistoryDBPath()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, errNoHistory
	}
	store, err := history.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return store, nil
}

func newHistoryListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List chat sessions, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			store, err := openHistory(cmd)
			if errors.Is(err, errNoHistory) {
				fmt.Fprintln(out, "No chat sessions found.")
				return nil
			}
			if err != nil {
				return err
			}
			defer store.Close()

			sessions, err := store.ListSessions(contextOrBackground(cmd.Context()))
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}
			if len(sessions) == 0 {
				fmt.Fprintln(out, "No chat sessions found.")
				return nil
			}
			if limit > 0 && len(sessions) > limit {
				sessions = sessions[:limit]
			}
			printSessions(out, sessions, time.Now())
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Show at most this many sessions (0 = all)")
	return cmd
}

func printSessions(w io.Writer, sessions []*history.Session, now time.Time) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUPDATED\tMESSAGES\tTITLE")
	for _, s := range sessions {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", s.ID, formatAge(now.Sub(s.UpdatedAt)), s.MessageCount, s.Title)
	}
	tw.Flush()
}

// formatAge renders a duration as "just now", "5m ago", "3h ago" or "2d ago".
func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

func newHistoryShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Print a session transcript as Markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			data, err := history.Export(contextOrBackground(cmd.Context()), store, args[0], history.FormatMarkdown)
			if err != nil {
				return fmt.Errorf("show session: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newHistoryExportCommand() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export <session-id>",
		Short: "Write a session transcript to a Markdown or HTML file",
		Long: `Export a chat session transcript.

Examples:
  fileagent history export 01HZX3T9B8V4Q6J7M2K5N0P1RS
  fileagent history export 01HZX3T9B8V4Q6J7M2K5N0P1RS --format html -o chat.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := history.ParseFormat(format)
			if err != nil {
				return err
			}
			id := args[0]
			if output == "" {
				output = "fileagent-" + id + f.Extension()
			}
			path, err := filepath.Abs(output)
			if err != nil {
				return fmt.Errorf("resolve output path: %w", err)
			}

			store, err := openHistory(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := history.ExportToFile(contextOrBackground(cmd.Context()), afero.NewOsFs(), store, id, f, path); err != nil {
				return fmt.Errorf("export session: %w", err)
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Exported session %s to %s\n", id, path)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "markdown", "Transcript format: markdown or html")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: fileagent-<id>.md or .html)")
	return cmd
}

func newHistoryDeleteCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a chat session and its messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			store, err := openHistory(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := contextOrBackground(cmd.Context())
			sess, err := store.GetSession(ctx, args[0])
			if err != nil {
				return err
			}

			if !yes {
				fmt.Fprintf(out, "This will delete session %s (%q, %d messages).\n", sess.ID, sess.Title, sess.MessageCount)
				if !confirmAction(cmd.InOrStdin(), out) {
					fmt.Fprintln(out, "Operation cancelled.")
					return nil
				}
			}

			if err := store.DeleteSession(ctx, sess.ID); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
			fmt.Fprintf(out, "Deleted session %s\n", sess.ID)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

// confirmAction asks a yes/no question; anything but y or yes declines.
func confirmAction(in io.Reader, out io.Writer) bool {
	fmt.Fprint(out, "Continue? [y/N]: ")

	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return false
	}
	response := strings.TrimSpace(strings.ToLower(scanner.Text()))
	return response == "y" || response == "yes"
}
