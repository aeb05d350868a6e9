package cmd

import (
	"github.com/Rahulagowda004/FIle-Explorer-Agent/internal/agent"
	"github.com/Rahulagowda004/FIle-Explorer-Agent/internal/history"
)

// toAgentMessages converts stored messages into the agent's conversation form.
// System messages are dropped; the agent supplies its own.
func toAgentMessages(msgs []history.Message) []agent.Message {
	out := make([]agent.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == history.RoleSystem {
			continue
		}
		msg := agent.Message{
			Role:       agent.Role(m.Role),
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
			Name:       m.Name,
		}
		for _, tc := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, agent.ToolCall{ID: tc.ID, Name: tc.Name, Arguments: tc.Arguments})
		}
		out = append(out, msg)
	}
	return out
}

func toHistoryMessages(msgs []agent.Message) []history.Message {
	out := make([]history.Message, 0, len(msgs))
	for _, m := range msgs {
		msg := history.Message{
			Role:       history.Role(m.Role),
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
			Name:       m.Name,
		}
		for _, tc := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, history.ToolCall{ID: tc.ID, Name: tc.Name, Arguments: tc.Arguments})
		}
		out = append(out, msg)
	}
	return out
}
