package main

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// renderTable renders headers and rows with go-pretty. Columns named in
// rightCols (zero-based) are right-aligned, which keeps numeric columns
// readable; everything else stays left-aligned. Rounded borders on a
// terminal, plain light borders when piped.
func renderTable(headers []string, rows [][]string, rightCols ...int) string {
	if len(headers) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(tableStyle())

	tw.AppendHeader(toRow(headers, len(headers)))
	for _, row := range rows {
		tw.AppendRow(toRow(row, len(headers)))
	}

	right := make(map[int]bool, len(rightCols))
	for _, col := range rightCols {
		right[col] = true
	}
	var configs []table.ColumnConfig
	for i := range headers {
		if !right[i] {
			continue
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       text.AlignRight,
			AlignHeader: text.AlignLeft,
		})
	}
	if len(configs) > 0 {
		tw.SetColumnConfigs(configs)
	}

	return tw.Render()
}

func tableStyle() table.Style {
	if isatty.IsTerminal(os.Stdout.Fd()) {
		return table.StyleRounded
	}
	return table.StyleLight
}

// toRow pads or truncates cells to the header width so ragged rows still
// render.
func toRow(cells []string, width int) table.Row {
	r := make(table.Row, width)
	for i := 0; i < width; i++ {
		if i < len(cells) {
			r[i] = cells[i]
		} else {
			r[i] = ""
		}
	}
	return r
}
