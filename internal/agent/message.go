// Package agent runs the conversational turn loop: the model is called with the
// conversation so far, any tool calls it requests are executed through a
// ToolSet, and the loop repeats until the model answers in plain text.
package agent

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Role identifies the author of a Message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a tool invocation requested by the model. Arguments is the raw
// JSON object text the model produced.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// Message is one entry of the conversation sent to the provider.
type Message struct {
	Role    Role
	Content string

	// ToolCalls is set on assistant messages that request tools
	ToolCalls []ToolCall

	// ToolCallID and Name are set on tool result messages
	ToolCallID string
	Name       string
}

// ToolSpec describes a tool to the model. Parameters is a JSON schema object.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// Usage reports token accounting returned by the provider.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// synthesizeCallID derives a stable id for a tool call the model left
// unnamed. iteration and index keep identical calls in one turn distinct.
func synthesizeCallID(call ToolCall, iteration, index int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d/%d/%s/%s", iteration, index, call.Name, call.Arguments)))
	return "call_" + hex.EncodeToString(sum[:8])
}

// trimHistory keeps at most window trailing messages. The kept slice never
// starts with a tool result or assistant tool request whose partner was cut,
// so it is advanced to the first user message. window <= 0 keeps everything.
func trimHistory(history []Message, window int) []Message {
	if window <= 0 || len(history) <= window {
		return history
	}
	kept := history[len(history)-window:]
	for i, msg := range kept {
		if msg.Role == RoleUser {
			return kept[i:]
		}
	}
	return nil
}
