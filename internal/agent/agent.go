package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Rahulagowda004/FIle-Explorer-Agent/internal/logger"
)

// ErrMaxIterations is returned when the model keeps requesting tools past the
// configured iteration limit.
var ErrMaxIterations = errors.New("agent reached the iteration limit")

// Provider produces the next assistant message for a conversation.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}

// CompletionRequest is one model call.
type CompletionRequest struct {
	Messages    []Message
	Tools       []ToolSpec
	Temperature float64
}

// Completion is the provider's answer to a CompletionRequest.
type Completion struct {
	Message      Message
	FinishReason string
	Usage        Usage
}

// ToolSet executes the tools offered to the model.
type ToolSet interface {
	Specs() []ToolSpec
	// Call runs the named tool and returns the text handed back to the model.
	// Invalid arguments and tool-level failures are reported as errors.
	Call(ctx context.Context, name, arguments string) (string, error)
}

// Config tunes the turn loop.
type Config struct {
	// SystemPrompt overrides the built-in prompt when non-empty
	SystemPrompt string

	// MaxIterations bounds model calls per turn
	MaxIterations int

	// HistoryWindow is how many prior messages are sent (0 = all)
	HistoryWindow int

	Temperature float64
}

// Reply is the outcome of a turn.
type Reply struct {
	// Text is the final assistant answer
	Text string

	// Messages are the messages produced this turn, starting with the user
	// message, in the order they should be persisted
	Messages []Message

	ModelCalls int
	ToolCalls  int
	Usage      Usage
}

// Agent runs conversational turns against a Provider and a ToolSet.
type Agent struct {
	provider Provider
	tools    ToolSet
	log      logger.Logger
	cfg      Config
	prompt   string
	now      func() time.Time
}

// New creates an Agent. A nil tools runs the model without tools and a nil log
// discards events.
func New(provider Provider, tools ToolSet, cfg Config, log logger.Logger) *Agent {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 10
	}
	a := &Agent{
		provider: provider,
		tools:    tools,
		log:      logger.OrNoOp(log),
		cfg:      cfg,
		now:      time.Now,
	}
	a.prompt = cfg.SystemPrompt
	if a.prompt == "" {
		a.prompt = SystemPrompt(a.specs())
	}
	return a
}

func (a *Agent) specs() []ToolSpec {
	if a.tools == nil {
		return nil
	}
	return a.tools.Specs()
}

// Turn answers userText given the prior conversation. On ErrMaxIterations the
// returned Reply still holds every message produced before the limit.
func (a *Agent) Turn(ctx context.Context, history []Message, userText string) (*Reply, error) {
	start := a.now()
	reply := &Reply{}
	err := a.run(ctx, history, userText, reply)
	a.log.LogTurn(logger.TurnSummary{
		ModelCalls: reply.ModelCalls,
		ToolCalls:  reply.ToolCalls,
		Elapsed:    a.now().Sub(start),
		Err:        err,
	})
	return reply, err
}

func (a *Agent) run(ctx context.Context, history []Message, userText string, reply *Reply) error {
	userText = strings.TrimSpace(userText)
	if userText == "" {
		return fmt.Errorf("empty user message")
	}

	prior := trimHistory(history, a.cfg.HistoryWindow)
	conversation := make([]Message, 0, len(prior)+2)
	conversation = append(conversation, Message{Role: RoleSystem, Content: a.prompt})
	conversation = append(conversation, prior...)

	user := Message{Role: RoleUser, Content: userText}
	conversation = append(conversation, user)
	reply.Messages = append(reply.Messages, user)

	specs := a.specs()
	for iteration := 0; iteration < a.cfg.MaxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		completion, err := a.provider.Complete(ctx, CompletionRequest{
			Messages:    conversation,
			Tools:       specs,
			Temperature: a.cfg.Temperature,
		})
		reply.ModelCalls++
		if err != nil {
			return fmt.Errorf("model call %d: %w", reply.ModelCalls, err)
		}
		reply.Usage.PromptTokens += completion.Usage.PromptTokens
		reply.Usage.CompletionTokens += completion.Usage.CompletionTokens
		reply.Usage.TotalTokens += completion.Usage.TotalTokens

		assistant := completion.Message
		assistant.Role = RoleAssistant
		assistant.ToolCalls = append([]ToolCall(nil), assistant.ToolCalls...)
		for i := range assistant.ToolCalls {
			if strings.TrimSpace(assistant.ToolCalls[i].ID) == "" {
				assistant.ToolCalls[i].ID = synthesizeCallID(assistant.ToolCalls[i], iteration, i)
			}
		}
		conversation = append(conversation, assistant)
		reply.Messages = append(reply.Messages, assistant)

		if len(assistant.ToolCalls) == 0 {
			reply.Text = assistant.Content
			return nil
		}

		for _, call := range assistant.ToolCalls {
			result := a.callTool(ctx, call)
			reply.ToolCalls++
			conversation = append(conversation, result)
			reply.Messages = append(reply.Messages, result)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}

	reply.Text = fmt.Sprintf("I stopped after %d steps without reaching an answer. Try narrowing the request.", a.cfg.MaxIterations)
	return fmt.Errorf("%w (%d)", ErrMaxIterations, a.cfg.MaxIterations)
}

// callTool runs one tool call. Failures become the tool message content so the
// model can correct itself.
func (a *Agent) callTool(ctx context.Context, call ToolCall) Message {
	msg := Message{Role: RoleTool, ToolCallID: call.ID, Name: call.Name}
	if a.tools == nil {
		msg.Content = fmt.Sprintf("Error: tool %q is not available", call.Name)
		return msg
	}

	start := a.now()
	out, err := a.tools.Call(ctx, call.Name, call.Arguments)
	a.log.LogToolCall(call.Name, a.now().Sub(start), err)
	if err != nil {
		if out != "" {
			msg.Content = out
		} else {
			msg.Content = "Error: " + err.Error()
		}
		return msg
	}
	msg.Content = out
	return msg
}
