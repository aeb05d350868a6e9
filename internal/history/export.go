package history

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/spf13/afero"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/Rahulagowda004/FIle-Explorer-Agent/internal/filelock"
)

// Format is a transcript export format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat accepts "markdown", "md" and "html".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unknown export format %q (want markdown or html)", s)
}

// Extension returns the file extension for the format, including the dot.
func (f Format) Extension() string {
	if f == FormatHTML {
		return ".html"
	}
	return ".md"
}

// Export renders the session transcript.
func Export(ctx context.Context, store Store, sessionID string, format Format) ([]byte, error) {
	sess, err := store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	msgs, err := store.Messages(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	md := RenderMarkdown(sess, msgs)
	if format != FormatHTML {
		return []byte(md), nil
	}
	return renderHTML(sess.Title, md)
}

// ExportToFile renders the transcript and writes it atomically to path
// under a file lock.
func ExportToFile(ctx context.Context, fs afero.Fs, store Store, sessionID string, format Format, path string) error {
	data, err := Export(ctx, store, sessionID, format)
	if err != nil {
		return err
	}
	if err := filelock.LockAndWrite(ctx, fs, path, data); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}

// RenderMarkdown renders a transcript. Tool results become fenced blocks and
// assistant tool requests are listed under the assistant turn.
func RenderMarkdown(sess *Session, msgs []Message) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", sess.Title)
	fmt.Fprintf(&sb, "- Session: `%s`\n", sess.ID)
	fmt.Fprintf(&sb, "- Created: %s\n", sess.CreatedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&sb, "- Messages: %d\n", len(msgs))

	for _, m := range msgs {
		switch m.Role {
		case RoleSystem:
			continue
		case RoleUser:
			sb.WriteString("\n## User\n\n")
			sb.WriteString(strings.TrimSpace(m.Content))
			sb.WriteString("\n")
		case RoleAssistant:
			sb.WriteString("\n## Assistant\n\n")
			if text := strings.TrimSpace(m.Content); text != "" {
				sb.WriteString(text)
				sb.WriteString("\n")
			}
			if len(m.ToolCalls) > 0 {
				if strings.TrimSpace(m.Content) != "" {
					sb.WriteString("\n")
				}
				for _, tc := range m.ToolCalls {
					fmt.Fprintf(&sb, "- called `%s` with `%s`\n", tc.Name, compact(tc.Arguments))
				}
			}
		case RoleTool:
			name := m.Name
			if name == "" {
				name = "tool"
			}
			fmt.Fprintf(&sb, "\n### Result: %s\n\n", name)
			fence := "```"
			for strings.Contains(m.Content, fence) {
				fence += "`"
			}
			fmt.Fprintf(&sb, "%sjson\n%s\n%s\n", fence, strings.TrimSpace(m.Content), fence)
		}
	}
	return sb.String()
}

func compact(args string) string {
	args = strings.Join(strings.Fields(args), " ")
	if args == "" {
		return "{}"
	}
	return strings.ReplaceAll(args, "`", "'")
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

func renderHTML(title, md string) ([]byte, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(md), &body); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}

	var out bytes.Buffer
	out.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&out, "<title>%s</title>\n", html.EscapeString(title))
	out.WriteString("</head>\n<body>\n")
	out.Write(body.Bytes())
	out.WriteString("</body>\n</html>\n")
	return out.Bytes(), nil
}
