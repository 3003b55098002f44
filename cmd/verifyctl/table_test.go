package main

import (
	"strings"
	"testing"
)

func TestRenderTableEmptyHeaders(t *testing.T) {
	if got := renderTable(nil, [][]string{{"a"}}); got != "" {
		t.Fatalf("output = %q, want empty", got)
	}
}

func TestRenderTableRaggedRows(t *testing.T) {
	out := renderTable(
		[]string{"Metric", "Value"},
		[][]string{
			{"Total", "7"},
			{"Pending"},
		},
		1,
	)
	for _, cell := range []string{"Metric", "Value", "Total", "7", "Pending"} {
		if !strings.Contains(out, cell) {
			t.Fatalf("output missing %q:\n%s", cell, out)
		}
	}
}

func TestRenderTableRightAlignsNumericColumn(t *testing.T) {
	out := renderTable(
		[]string{"Metric", "Value"},
		[][]string{{"Total", "7"}},
		1,
	)

	var header, row string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "Value") {
			header = line
		}
		if strings.Contains(line, "7") {
			row = line
		}
	}
	if header == "" || row == "" {
		t.Fatalf("rendered table missing header or row:\n%s", out)
	}
	// Right alignment pushes the cell to the column's far edge, so the
	// value sits further right than the left-aligned header text starts.
	if strings.Index(row, "7") <= strings.Index(header, "Value") {
		t.Fatalf("value column not right-aligned:\n%s", out)
	}
}
