package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/Rahulagowda004/FIle-Explorer-Agent/internal/agent"
	"github.com/Rahulagowda004/FIle-Explorer-Agent/internal/config"
	"github.com/Rahulagowda004/FIle-Explorer-Agent/internal/history"
	"github.com/Rahulagowda004/FIle-Explorer-Agent/internal/logger"
)

// maxInputLine bounds one REPL line (pasted paths and notes can be long).
const maxInputLine = 1 << 20

type chatOptions struct {
	sessionID string
	memory    bool
	once      string
	model     string
	serverCmd []string
}

func newChatCommand() *cobra.Command {
	var opts chatOptions

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the file explorer agent",
		Long: `Start an interactive conversation with the file explorer agent.

The agent reaches the filesystem through the tool host, which is started as a
child process ("fileagent serve" unless server.command or --server-cmd says
otherwise). Conversations are saved to the history database; resume one with
--session. Type "exit" or "quit" to leave.

Examples:
  fileagent chat
  fileagent chat --session 01HZX3T9B8V4Q6J7M2K5N0P1RS
  fileagent chat --once "find my tax pdfs"
  fileagent chat --memory --model gpt-4o`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.sessionID, "session", "", "Resume the chat session with this ID")
	cmd.Flags().BoolVar(&opts.memory, "memory", false, "Keep history in memory only for this run")
	cmd.Flags().StringVar(&opts.once, "once", "", "Send a single message, print the answer and exit")
	cmd.Flags().StringVar(&opts.model, "model", "", "Override llm.model")
	cmd.Flags().StringSliceVar(&opts.serverCmd, "server-cmd", nil, "Command (comma separated) that starts the MCP tool host")
	return cmd
}

func runChat(cmd *cobra.Command, opts chatOptions) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	var model, backend *string
	if opts.model != "" {
		model = &opts.model
	}
	if opts.memory {
		mem := "memory"
		backend = &mem
	}
	cfg.MergeWithFlags(nil, nil, model, backend)

	log, closeLog, err := newLogger(cfg, cmd.ErrOrStderr(), true)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), os.Interrupt)
	defer stop()

	provider, err := agent.NewOpenAIProvider(cfg.LLM, agent.WithProviderLogger(log))
	if err != nil {
		return err
	}

	session, err := connectToolHost(ctx, cmd, cfg, opts.serverCmd)
	if err != nil {
		return err
	}
	defer session.Close()

	toolSet, err := agent.NewMCPToolSet(ctx, session)
	if err != nil {
		return err
	}
	log.LogDebug(fmt.Sprintf("tool host offers %d tools", len(toolSet.Names())))

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	a := agent.New(provider, toolSet, agent.Config{
		SystemPrompt:  cfg.Agent.SystemPrompt,
		MaxIterations: cfg.Agent.MaxIterations,
		HistoryWindow: cfg.Agent.HistoryWindow,
		Temperature:   cfg.LLM.Temperature,
	}, log)

	chat := newChatSession(a, store, log)
	if opts.sessionID != "" {
		if err := chat.resume(ctx, opts.sessionID); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if opts.once != "" {
		text, err := chat.send(ctx, opts.once)
		if text != "" {
			fmt.Fprintln(out, text)
		}
		return err
	}

	in := cmd.InOrStdin()
	return runREPL(ctx, in, out, chat, isInteractive(in))
}

// connectToolHost spawns the tool host and opens an MCP client session on its
// stdio.
func connectToolHost(ctx context.Context, cmd *cobra.Command, cfg *config.Config, override []string) (*mcp.ClientSession, error) {
	argv, err := toolHostCommand(cmd, cfg, override)
	if err != nil {
		return nil, err
	}

	hostCmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	hostCmd.Stderr = cmd.ErrOrStderr()

	client := mcp.NewClient(&mcp.Implementation{Name: "fileagent-chat", Version: Version}, nil)
	session, err := client.Connect(ctx, &mcp.CommandTransport{Command: hostCmd}, nil)
	if err != nil {
		return nil, fmt.Errorf("start tool host %q: %w", strings.Join(argv, " "), err)
	}
	return session, nil
}

// toolHostCommand returns --server-cmd, server.command, or this binary's serve
// command with the config and log level forwarded.
func toolHostCommand(cmd *cobra.Command, cfg *config.Config, override []string) ([]string, error) {
	if len(override) > 0 {
		return override, nil
	}
	if len(cfg.Server.Command) > 0 {
		return cfg.Server.Command, nil
	}

	self, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate fileagent binary: %w", err)
	}
	argv := []string{self, "serve", "--log-level", cfg.LogLevel}
	if configPath, _ := cmd.Flags().GetString("config"); configPath != "" {
		argv = append(argv, "--config", configPath)
	}
	if cfg.WorkDir != "" {
		argv = append(argv, "--work-dir", cfg.WorkDir)
	}
	return argv, nil
}

func openStore(cfg *config.Config) (history.Store, error) {
	if cfg.History.Backend == "memory" {
		return history.NewMemoryStore(), nil
	}
	dbPath, err := cfg.HistoryDBPath()
	if err != nil {
		return nil, err
	}
	store, err := history.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return store, nil
}

func isInteractive(in io.Reader) bool {
	f, ok := in.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// turner is the part of agent.Agent the chat loop needs.
type turner interface {
	Turn(ctx context.Context, prior []agent.Message, userText string) (*agent.Reply, error)
}

// chatSession binds an agent to one persisted conversation. The session row
// is created lazily on the first message so empty chats leave no trace.
type chatSession struct {
	agent   turner
	store   history.Store
	log     logger.Logger
	id      string
	history []agent.Message
}

func newChatSession(a turner, store history.Store, log logger.Logger) *chatSession {
	return &chatSession{agent: a, store: store, log: logger.OrNoOp(log)}
}

func (c *chatSession) resume(ctx context.Context, id string) error {
	if _, err := c.store.GetSession(ctx, id); err != nil {
		return fmt.Errorf("resume session: %w", err)
	}
	msgs, err := c.store.Messages(ctx, id)
	if err != nil {
		return fmt.Errorf("load session messages: %w", err)
	}
	c.id = id
	c.history = toAgentMessages(msgs)
	c.log.LogInfo(fmt.Sprintf("resumed session %s with %d messages", id, len(msgs)))
	return nil
}

// send runs one turn and persists what it produced. The returned text is
// shown to the user even when err is set (for example at the iteration limit).
func (c *chatSession) send(ctx context.Context, text string) (string, error) {
	reply, turnErr := c.agent.Turn(ctx, c.history, text)
	if reply == nil || len(reply.Messages) == 0 {
		return "", turnErr
	}
	if turnErr != nil && !errors.Is(turnErr, agent.ErrMaxIterations) {
		// keep the failed exchange out of the transcript
		return "", turnErr
	}

	c.history = append(c.history, reply.Messages...)
	if c.id == "" {
		sess, err := c.store.CreateSession(ctx, history.TitleFromText(text))
		if err != nil {
			return reply.Text, fmt.Errorf("create session: %w", err)
		}
		c.id = sess.ID
	}
	if err := c.store.AppendMessages(ctx, c.id, toHistoryMessages(reply.Messages)); err != nil {
		c.log.LogWarn(fmt.Sprintf("failed to save messages: %v", err))
	}
	return reply.Text, turnErr
}

// runREPL reads user lines until EOF or an exit command. interactive enables
// the prompt and colors.
func runREPL(ctx context.Context, in io.Reader, out io.Writer, chat *chatSession, interactive bool) error {
	you := color.New(color.FgCyan, color.Bold)
	bot := color.New(color.FgGreen, color.Bold)
	errColor := color.New(color.FgRed)
	if !interactive {
		you.DisableColor()
		bot.DisableColor()
		errColor.DisableColor()
	}

	if interactive {
		fmt.Fprintln(out, `File explorer agent. Type "exit" to quit.`)
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxInputLine)
	for {
		if interactive {
			you.Fprint(out, "You: ")
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if isExitCommand(line) {
			break
		}

		text, err := chat.send(ctx, line)
		if text != "" {
			bot.Fprint(out, "Agent: ")
			fmt.Fprintln(out, text)
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			errColor.Fprintf(out, "Error: %v\n", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	if chat.id != "" {
		fmt.Fprintf(out, "Session saved: %s\n", chat.id)
	}
	return nil
}

func isExitCommand(line string) bool {
	switch strings.ToLower(line) {
	case "exit", "quit", ":q":
		return true
	}
	return false
}
