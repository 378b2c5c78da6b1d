package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/cado/pkg/domain"
	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
// When stdout is not a terminal the markdown is returned untouched.
func NewRenderer() func(string) (string, error) {
	if !IsTerminal() {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	if err != nil {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// IsTerminal reports whether stdout is attached to a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

var statusIcons = map[domain.CellStatus]string{
	domain.StatusOK:      "✅",
	domain.StatusError:   "❌",
	domain.StatusExpired: "⏳",
	domain.StatusRunning: "🔄",
}

// NotebookMarkdown renders a notebook as a markdown document, one section
// per cell.
func NotebookMarkdown(nb *domain.Notebook) string {
	var sb strings.Builder
	name := nb.Name
	if name == "" {
		name = "Untitled"
	}
	fmt.Fprintf(&sb, "# %s\n\n", name)
	fmt.Fprintf(&sb, "_%s · updated %s_\n\n", nb.ID, nb.Updated.Format("2006-01-02 15:04"))

	for i, c := range nb.Cells {
		title := c.OutputName
		if title == "" {
			title = "(no output)"
		}
		fmt.Fprintf(&sb, "## %d. %s %s\n\n", i+1, statusIcons[c.Status], title)
		if len(c.InputNames) > 0 {
			fmt.Fprintf(&sb, "inputs: `%s`\n\n", strings.Join(c.InputNames, "`, `"))
		}
		fmt.Fprintf(&sb, "```%s\n%s\n```\n\n", c.Language, strings.TrimRight(c.Code, "\n"))

		switch c.Status {
		case domain.StatusOK:
			if c.HasOutput() {
				fmt.Fprintf(&sb, "**%s** = `%v`\n\n", c.OutputName, c.Output)
			}
		case domain.StatusError:
			fmt.Fprintf(&sb, "> **error:** %s\n\n", c.Error)
		}
		if c.Stdout != "" {
			fmt.Fprintf(&sb, "```text\n%s\n```\n\n", strings.TrimRight(c.Stdout, "\n"))
		}
		if c.Stderr != "" {
			fmt.Fprintf(&sb, "stderr:\n\n```text\n%s\n```\n\n", strings.TrimRight(c.Stderr, "\n"))
		}
	}
	return sb.String()
}
