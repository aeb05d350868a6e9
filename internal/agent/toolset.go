package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

type remoteTool struct {
	spec   ToolSpec
	schema *jsonschema.Schema
}

// MCPToolSet exposes the tools of a connected MCP session to the agent.
// Arguments are validated against each tool's input schema before dispatch.
type MCPToolSet struct {
	session *mcp.ClientSession
	tools   map[string]remoteTool
	order   []string
}

// NewMCPToolSet lists the session's tools and compiles their input schemas.
func NewMCPToolSet(ctx context.Context, session *mcp.ClientSession) (*MCPToolSet, error) {
	set := &MCPToolSet{session: session, tools: make(map[string]remoteTool)}

	var cursor string
	for {
		res, err := session.ListTools(ctx, &mcp.ListToolsParams{Cursor: cursor})
		if err != nil {
			return nil, fmt.Errorf("list tools: %w", err)
		}
		for _, tool := range res.Tools {
			if err := set.add(tool); err != nil {
				return nil, err
			}
		}
		if res.NextCursor == "" {
			break
		}
		cursor = res.NextCursor
	}

	sort.Strings(set.order)
	return set, nil
}

func (s *MCPToolSet) add(tool *mcp.Tool) error {
	params, err := schemaJSON(tool.InputSchema)
	if err != nil {
		return fmt.Errorf("tool %s schema: %w", tool.Name, err)
	}
	schema, err := compileSchema(tool.Name, params)
	if err != nil {
		return fmt.Errorf("tool %s schema: %w", tool.Name, err)
	}
	if _, dup := s.tools[tool.Name]; !dup {
		s.order = append(s.order, tool.Name)
	}
	s.tools[tool.Name] = remoteTool{
		spec:   ToolSpec{Name: tool.Name, Description: tool.Description, Parameters: params},
		schema: schema,
	}
	return nil
}

// Names returns the tool names in sorted order.
func (s *MCPToolSet) Names() []string {
	return append([]string(nil), s.order...)
}

// Specs returns the tool descriptions offered to the model.
func (s *MCPToolSet) Specs() []ToolSpec {
	specs := make([]ToolSpec, 0, len(s.order))
	for _, name := range s.order {
		specs = append(specs, s.tools[name].spec)
	}
	return specs
}

// Call validates arguments and invokes the tool. A result the host flags as
// an error is returned as its text together with a *ToolError.
func (s *MCPToolSet) Call(ctx context.Context, name, arguments string) (string, error) {
	tool, ok := s.tools[name]
	if !ok {
		return "", &ValidationError{Tool: name, Available: s.Names()}
	}

	args, err := decodeArguments(arguments)
	if err != nil {
		return "", &ValidationError{Tool: name, Reason: err.Error()}
	}
	if err := tool.schema.Validate(args); err != nil {
		return "", &ValidationError{Tool: name, Reason: err.Error()}
	}

	res, err := s.session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return "", fmt.Errorf("call tool %s: %w", name, err)
	}

	text := renderResult(res)
	if res.IsError {
		return text, &ToolError{Tool: name, Message: failureMessage(text)}
	}
	return text, nil
}

func schemaJSON(schema any) (json.RawMessage, error) {
	if schema == nil {
		return json.RawMessage(`{"type":"object","properties":{}}`), nil
	}
	if raw, ok := schema.(json.RawMessage); ok {
		return raw, nil
	}
	b, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func compileSchema(name string, params json.RawMessage) (*jsonschema.Schema, error) {
	url := name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, strings.NewReader(string(params))); err != nil {
		return nil, err
	}
	return c.Compile(url)
}

func decodeArguments(arguments string) (map[string]any, error) {
	var args map[string]any
	if strings.TrimSpace(arguments) != "" {
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			return nil, fmt.Errorf("arguments are not a JSON object: %v", err)
		}
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

// renderResult prefers structured content and falls back to the text blocks.
func renderResult(res *mcp.CallToolResult) string {
	if res.StructuredContent != nil {
		if b, err := json.Marshal(res.StructuredContent); err == nil {
			return string(b)
		}
	}
	var parts []string
	for _, content := range res.Content {
		if text, ok := content.(*mcp.TextContent); ok {
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// failureMessage pulls the "message" field out of a JSON tool result.
func failureMessage(text string) string {
	var result struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(text), &result); err == nil && result.Message != "" {
		return result.Message
	}
	return strings.TrimSpace(text)
}
