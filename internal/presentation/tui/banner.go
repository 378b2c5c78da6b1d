package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the cado banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"   ___ __ _  __| | ___  ", "#34d399"},
		{"  / __/ _` |/ _` |/ _ \\ ", "#2dd4bf"},
		{" | (_| (_| | (_| | (_) |", "#22d3ee"},
		{"  \\___\\__,_|\\__,_|\\___/ ", "#38bdf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
