package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/aretw0/cado"
	"github.com/aretw0/cado/internal/presentation/graph"
	"github.com/aretw0/cado/internal/presentation/tui"
	"github.com/aretw0/cado/internal/validator"
	"github.com/aretw0/cado/pkg/domain"
	"github.com/aretw0/cado/pkg/persistence"
)

// ErrRunFailed is returned when at least one cell ended in ERROR.
var ErrRunFailed = errors.New("run failed")

// CreateNotebook creates a notebook and prints its id.
func CreateNotebook(ctx context.Context, app *App, name string, w io.Writer) error {
	nb, err := app.Manager.Create(ctx, name)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, nb.ID)
	return nil
}

// ListNotebooks prints one line per notebook, most recent first.
func ListNotebooks(ctx context.Context, app *App, w io.Writer) error {
	details, err := app.Manager.Details(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tUPDATED")
	for _, d := range details {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.ID, d.Name, d.Updated.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

// ShowNotebook prints a notebook as markdown, rendered for terminals.
func ShowNotebook(ctx context.Context, app *App, id string, w io.Writer) error {
	nb, err := app.Manager.Load(ctx, id)
	if err != nil {
		return err
	}
	out, err := tui.NewRenderer()(tui.NotebookMarkdown(nb))
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// RunNotebook runs one cell (with its stale ancestors and its descendants)
// or, when cellID is empty, the whole notebook, then prints every cell
// status. ErrRunFailed is returned if a cell ended in ERROR.
func RunNotebook(ctx context.Context, app *App, id, cellID string, w io.Writer) error {
	nb, err := app.Manager.Do(ctx, id, func(eng *cado.Engine) error {
		if cellID != "" {
			_, err := eng.RunCell(ctx, cellID)
			return err
		}
		return eng.RunAll(ctx)
	})
	if nb == nil {
		return err
	}
	PrintSummary(w, nb)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRunFailed, err)
	}
	// RunCell reports only the target cell; descendants may still have failed.
	for _, c := range nb.Cells {
		if c.Status == domain.StatusError {
			return fmt.Errorf("%w: cell %s: %s", ErrRunFailed, c.ID, c.Error)
		}
	}
	return nil
}

// PrintSummary prints a status line per cell with its output or error.
func PrintSummary(w io.Writer, nb *domain.Notebook) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, c := range nb.Cells {
		name := c.OutputName
		if name == "" {
			name = "-"
		}
		detail := ""
		switch c.Status {
		case domain.StatusOK:
			if c.HasOutput() {
				detail = fmt.Sprintf("%v", c.Output)
			}
		case domain.StatusError:
			detail = c.Error
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, name, c.Status, detail)
	}
	_ = tw.Flush()
}

// PrintGraph prints the Mermaid chart of a notebook.
func PrintGraph(ctx context.Context, app *App, id string, showCode bool, w io.Writer) error {
	nb, err := app.Manager.Load(ctx, id)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, graph.GenerateMermaid(nb, graph.Options{ShowCode: showCode}))
	return err
}

// ValidateFile decodes a notebook document and checks its graph.
func ValidateFile(path string) (*domain.Notebook, error) {
	nb, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return nb, validator.ValidateNotebook(nb)
}

// ImportFile validates a notebook document and stores it.
func ImportFile(ctx context.Context, app *App, path string, w io.Writer) error {
	nb, err := ValidateFile(path)
	if err != nil {
		return err
	}
	if err := app.Manager.Import(ctx, nb); err != nil {
		return err
	}
	fmt.Fprintln(w, nb.ID)
	return nil
}

// ExportNotebook writes a stored notebook in the given format (json or yaml).
func ExportNotebook(ctx context.Context, app *App, id, format string, w io.Writer) error {
	nb, err := app.Manager.Load(ctx, id)
	if err != nil {
		return err
	}
	var codec persistence.Codec = persistence.JSONCodec{Indent: true}
	if format == "yaml" {
		codec = persistence.YAMLCodec{}
	}
	data, err := codec.Marshal(nb)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func readFile(path string) (*domain.Notebook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	nb, err := persistence.CodecFor(path).Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return nb, nil
}
