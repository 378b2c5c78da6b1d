package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/cado/pkg/domain"
)

// Options tune the generated chart.
type Options struct {
	// Highlight marks one cell, e.g. the one being run.
	Highlight string
	// ShowCode appends the first line of code to each label.
	ShowCode bool
}

// GenerateMermaid produces a Mermaid flowchart of the dependency graph.
// Edges are derived by matching input names to output names:
//   - Cell with an output name: ["name"]
//   - Cell without one: (["short id"]) (a sink)
//   - Input with no producer: dashed edge from a {{"missing"}} node
//
// Every cell carries a class named after its status.
func GenerateMermaid(nb *domain.Notebook, opts Options) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	producers := make(map[string]*domain.Cell)
	for _, c := range nb.Cells {
		if c.HasOutput() {
			producers[c.OutputName] = c
		}
	}

	missing := make(map[string]bool)
	for _, c := range nb.Cells {
		id := nodeID(c.ID)
		sb.WriteString(fmt.Sprintf("    %s%s\n", id, shape(c, opts.ShowCode)))

		for _, in := range c.InputNames {
			if p, ok := producers[in]; ok && p.ID != c.ID {
				sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n", nodeID(p.ID), escape(in), id))
				continue
			}
			missingID := "missing_" + sanitizeMermaidID(in)
			if !missing[in] {
				missing[in] = true
				sb.WriteString(fmt.Sprintf("    %s{{\"%s ?\"}}\n", missingID, escape(in)))
			}
			sb.WriteString(fmt.Sprintf("    %s -.-> %s\n", missingID, id))
		}
	}

	sb.WriteString("\n    %% Status Styles\n")
	// Force black text (color:#000) for high-contrast on light backgrounds
	sb.WriteString("    classDef ok fill:#e8f5e9,stroke:#2e7d32,color:#000;\n")
	sb.WriteString("    classDef error fill:#ffebee,stroke:#c62828,color:#000;\n")
	sb.WriteString("    classDef expired fill:#eceff1,stroke:#78909c,color:#000;\n")
	sb.WriteString("    classDef running fill:#fff8e1,stroke:#f9a825,stroke-width:3px,color:#000;\n")
	sb.WriteString("    classDef current stroke-width:4px;\n")

	for _, c := range nb.Cells {
		sb.WriteString(fmt.Sprintf("    class %s %s;\n", nodeID(c.ID), c.Status))
	}
	if opts.Highlight != "" && nb.IndexOf(opts.Highlight) >= 0 {
		sb.WriteString(fmt.Sprintf("    class %s current;\n", nodeID(opts.Highlight)))
	}

	return sb.String()
}

func shape(c *domain.Cell, showCode bool) string {
	label := c.OutputName
	if label == "" {
		label = shortID(c.ID)
	}
	if showCode {
		if line := firstLine(c.Code); line != "" {
			label += " <br/> " + line
		}
	}
	label = escape(label)
	if c.HasOutput() {
		return fmt.Sprintf("[\"%s\"]", label)
	}
	return fmt.Sprintf("([\"%s\"])", label)
}

func firstLine(code string) string {
	code = strings.TrimSpace(code)
	if i := strings.IndexByte(code, '\n'); i >= 0 {
		code = code[:i] + " …"
	}
	return code
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func nodeID(cellID string) string {
	return "c_" + sanitizeMermaidID(cellID)
}

// escape replaces double quotes, which would end a Mermaid label.
func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
