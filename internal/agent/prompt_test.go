package agent

import (
	"strings"
	"testing"
)

func TestXMLHelpers(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{name: "tag", got: XMLTag("path", "/tmp"), expected: "<path>/tmp</path>"},
		{name: "empty tag", got: XMLTag("empty", ""), expected: "<empty></empty>"},
		{name: "section trims", got: XMLSection("role", "  helper \n"), expected: "<role>\nhelper\n</role>"},
		{name: "list", got: XMLList("rules", []string{"a", "b"}), expected: "<rules>\n<item>a</item>\n<item>b</item>\n</rules>"},
		{name: "empty list", got: XMLList("rules", nil), expected: "<rules>\n</rules>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %q, want %q", tt.got, tt.expected)
			}
		})
	}
}

func TestSystemPrompt(t *testing.T) {
	prompt := SystemPrompt([]ToolSpec{{Name: "quick_search"}, {Name: "read_file"}})

	for _, want := range []string{"<role>", "<guidelines>", "<available_tools>quick_search, read_file</available_tools>"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("SystemPrompt() missing %q:\n%s", want, prompt)
		}
	}

	if strings.Contains(SystemPrompt(nil), "available_tools") {
		t.Error("SystemPrompt(nil) should not list tools")
	}
}
