package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/wagiedev/mcp-test-go/internal/errors"
	"github.com/wagiedev/mcp-test-go/internal/message"
)

// Output formats accepted by -o.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

func validateFormat(format string) error {
	switch format {
	case FormatTable, FormatJSON, FormatYAML:
		return nil
	default:
		return &errors.ConfigError{Field: "output", Reason: fmt.Sprintf("%q is not one of table, json, yaml", format)}
	}
}

// writeStructured writes v as indented JSON or as YAML.
//
// YAML goes through JSON first so that json tags and raw schema fields
// render the same way in both formats.
func writeStructured(w io.Writer, format string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}

	if format == FormatJSON {
		_, err = fmt.Fprintf(w, "%s\n", data)

		return err
	}

	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(generic); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}

	return enc.Close()
}

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(title)

	return t
}

func renderProbeTable(w io.Writer, r *probeReport) {
	info := newTable(w, "Server")
	info.AppendHeader(table.Row{"FIELD", "VALUE"})
	info.AppendRow(table.Row{"Name", r.Server.Name})
	info.AppendRow(table.Row{"Version", r.Server.Version})
	info.AppendRow(table.Row{"Protocol", r.ProtocolVersion})
	info.AppendRow(table.Row{"Capabilities", strings.Join(r.Capabilities, ", ")})

	if r.Instructions != "" {
		info.AppendRow(table.Row{"Instructions", r.Instructions})
	}

	info.Render()

	if len(r.Tools) > 0 {
		tools := newTable(w, "Tools")
		tools.AppendHeader(table.Row{"NAME", "DESCRIPTION", "PARAMETERS"})

		for _, tool := range r.Tools {
			tools.AppendRow(table.Row{tool.Name, tool.Description, strings.Join(tool.InputSchema.ParamNames(), ", ")})
		}

		tools.Render()
	}

	if len(r.Resources) > 0 {
		resources := newTable(w, "Resources")
		resources.AppendHeader(table.Row{"URI", "NAME", "MIME TYPE"})

		for _, res := range r.Resources {
			resources.AppendRow(table.Row{res.URI, res.Name, res.MIMEType})
		}

		resources.Render()
	}

	if len(r.Prompts) > 0 {
		prompts := newTable(w, "Prompts")
		prompts.AppendHeader(table.Row{"NAME", "DESCRIPTION", "ARGUMENTS"})

		for _, p := range r.Prompts {
			args := make([]string, 0, len(p.Arguments))
			for _, a := range p.Arguments {
				if a.Required {
					args = append(args, a.Name+"*")
				} else {
					args = append(args, a.Name)
				}
			}

			prompts.AppendRow(table.Row{p.Name, p.Description, strings.Join(args, ", ")})
		}

		prompts.Render()
	}
}

func renderToolResultTable(w io.Writer, name string, r *message.ToolResult) {
	t := newTable(w, fmt.Sprintf("%s: %s", name, r.Outcome()))
	t.AppendHeader(table.Row{"TYPE", "CONTENT"})

	for _, c := range r.Content {
		t.AppendRow(table.Row{c.ContentType(), describeContent(c)})
	}

	t.Render()
}

func describeContent(c message.Content) string {
	switch v := c.(type) {
	case *message.TextContent:
		return v.Text
	case *message.ImageContent:
		return fmt.Sprintf("%s, %d base64 bytes", v.MIMEType, len(v.Data))
	case *message.AudioContent:
		return fmt.Sprintf("%s, %d base64 bytes", v.MIMEType, len(v.Data))
	case *message.ResourceLink:
		return v.URI
	case *message.EmbeddedResource:
		if v.Resource.Text != "" {
			return v.Resource.URI + "\n" + v.Resource.Text
		}

		return v.Resource.URI
	default:
		return ""
	}
}
