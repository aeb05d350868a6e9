package agent

import (
	"fmt"
	"strings"
)

const roleText = `You are a file explorer assistant working on the user's local machine.
You find, inspect and organize files by calling the tools you are given.`

var guidelines = []string{
	"Use a tool whenever the answer depends on the filesystem. Never guess paths, sizes or dates.",
	"Prefer quick_search for everyday lookups and search_drive only when the user asks for a wider search.",
	"Report truncated or timed out searches and suggest a narrower path or pattern.",
	"Ask before deleting, overwriting or moving files unless the user already asked for it explicitly.",
	"cleanup_temp_files runs as a dry run unless the user confirms the deletion.",
	"Keep answers short. List paths one per line and give sizes in human units.",
}

// XMLTag wraps content in XML tags: <name>content</name>
func XMLTag(name, content string) string {
	return fmt.Sprintf("<%s>%s</%s>", name, content, name)
}

// XMLSection creates a section with proper formatting
// Output: <name>\ncontent\n</name>
func XMLSection(name, content string) string {
	return fmt.Sprintf("<%s>\n%s\n</%s>", name, strings.TrimSpace(content), name)
}

// XMLList creates an XML list with item elements
// Output: <name>\n<item>a</item>\n<item>b</item>\n</name>
func XMLList(name string, items []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<%s>\n", name)
	for _, item := range items {
		fmt.Fprintf(&sb, "<item>%s</item>\n", item)
	}
	fmt.Fprintf(&sb, "</%s>", name)
	return sb.String()
}

// SystemPrompt builds the default system prompt for the given tools.
func SystemPrompt(tools []ToolSpec) string {
	sections := []string{
		XMLSection("role", roleText),
		XMLList("guidelines", guidelines),
	}
	if len(tools) > 0 {
		names := make([]string, 0, len(tools))
		for _, tool := range tools {
			names = append(names, tool.Name)
		}
		sections = append(sections, XMLTag("available_tools", strings.Join(names, ", ")))
	}
	return strings.Join(sections, "\n\n")
}
