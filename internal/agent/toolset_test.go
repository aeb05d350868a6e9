package agent

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rahulagowda004/FIle-Explorer-Agent/internal/config"
	"github.com/Rahulagowda004/FIle-Explorer-Agent/internal/tools"
)

func connectToolHost(t *testing.T, fs afero.Fs) *MCPToolSet {
	t.Helper()
	ctx := context.Background()

	srv := tools.NewServer(config.DefaultConfig(), fs, nil, "test", tools.WithUserHome("/home/ana"), tools.WithWorkDir("/work"))
	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	ss, err := srv.MCP().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "agent-test", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })

	set, err := NewMCPToolSet(ctx, cs)
	require.NoError(t, err)
	return set
}

func TestMCPToolSetDiscovers(t *testing.T) {
	set := connectToolHost(t, afero.NewMemMapFs())

	assert.ElementsMatch(t, tools.ToolNames, set.Names())
	specs := set.Specs()
	require.Len(t, specs, len(tools.ToolNames))
	for _, spec := range specs {
		assert.NotEmpty(t, spec.Description, spec.Name)
		var schema map[string]any
		require.NoError(t, json.Unmarshal(spec.Parameters, &schema), spec.Name)
		assert.Equal(t, "object", schema["type"], spec.Name)
	}
}

func TestMCPToolSetCall(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/work/notes.txt", []byte("buy milk"), 0o644))
	set := connectToolHost(t, fs)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		out, err := set.Call(ctx, "read_file", `{"file_path":"notes.txt"}`)
		require.NoError(t, err)

		var res map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &res), out)
		assert.Equal(t, true, res["success"])
		assert.Equal(t, "buy milk", res["content"])
	})

	t.Run("tool reports failure", func(t *testing.T) {
		out, err := set.Call(ctx, "read_file", `{"file_path":"missing.txt"}`)
		var toolErr *ToolError
		require.ErrorAs(t, err, &toolErr)
		assert.Contains(t, toolErr.Message, "does not exist")
		assert.Contains(t, out, `"success":false`)
	})

	t.Run("missing required argument", func(t *testing.T) {
		_, err := set.Call(ctx, "read_file", `{}`)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "read_file", vErr.Tool)
		assert.Contains(t, vErr.Error(), "file_path")
	})

	t.Run("wrong argument type", func(t *testing.T) {
		_, err := set.Call(ctx, "read_file", `{"file_path": 42}`)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.NotEmpty(t, vErr.Reason)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := set.Call(ctx, "read_file", `{"file_path":`)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Contains(t, vErr.Reason, "not a JSON object")
	})

	t.Run("unknown tool", func(t *testing.T) {
		_, err := set.Call(ctx, "format_disk", `{}`)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Empty(t, vErr.Reason)
		assert.Contains(t, vErr.Error(), "tool 'format_disk' not found")
		assert.Contains(t, vErr.Error(), "quick_search")
	})
}

func TestAgentDrivesToolHost(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/work/todo.txt", []byte("line one\nline two\n"), 0o644))
	set := connectToolHost(t, fs)

	provider := &scriptedProvider{replies: []Message{
		toolRequest(ToolCall{Name: "count_lines", Arguments: `{"file_path":"todo.txt"}`}),
		{Content: "todo.txt has 2 lines."},
	}}
	a := New(provider, set, Config{MaxIterations: 3}, nil)

	reply, err := a.Turn(context.Background(), nil, "how long is my todo list?")
	require.NoError(t, err)
	assert.Equal(t, "todo.txt has 2 lines.", reply.Text)

	toolMsg := reply.Messages[2]
	assert.Equal(t, RoleTool, toolMsg.Role)
	assert.Contains(t, toolMsg.Content, `"success":true`)
}

func TestValidationErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "bad arguments",
			err:  &ValidationError{Tool: "copy_file", Reason: "missing properties"},
			want: "invalid arguments for tool 'copy_file': missing properties",
		},
		{
			name: "unknown tool",
			err:  &ValidationError{Tool: "x", Available: []string{"a", "b"}},
			want: "tool 'x' not found; available tools: a, b",
		},
		{
			name: "no tools",
			err:  &ValidationError{Tool: "x"},
			want: "tool 'x' not found; the tool host offers no tools",
		},
		{
			name: "tool failure",
			err:  &ToolError{Tool: "read_file", Message: "File 'a' does not exist"},
			want: "tool 'read_file' failed: File 'a' does not exist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
