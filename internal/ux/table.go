package ux

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Field is one labelled value of a detail view
type Field struct {
	Label string
	Value string
}

// RenderTable renders rows under headers as a bordered table
func RenderTable(w io.Writer, styles Styles, headers []string, rows [][]string) error {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styles.Border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.Header
			}
			return styles.Cell
		})

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// RenderFields renders a title followed by aligned label/value pairs
func RenderFields(w io.Writer, styles Styles, title string, fields []Field) error {
	width := 0
	for _, f := range fields {
		if len(f.Label) > width {
			width = len(f.Label)
		}
	}

	var b strings.Builder
	if title != "" {
		b.WriteString(styles.Title.Render(title))
		b.WriteString("\n")
	}
	for _, f := range fields {
		label := f.Label + ":" + strings.Repeat(" ", width-len(f.Label))
		b.WriteString(styles.Key.Render(label))
		b.WriteString(" ")
		b.WriteString(f.Value)
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderEmpty writes a muted placeholder for an empty list
func RenderEmpty(w io.Writer, styles Styles, what string) error {
	_, err := fmt.Fprintln(w, styles.Muted.Render(fmt.Sprintf("No %s found.", what)))
	return err
}
