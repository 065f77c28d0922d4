package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// column describes one table column.
type column struct {
	header string
	align  columnAlignment
}

func renderTable(columns []column, rows [][]string, footer []string) string {
	if len(columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(toRow(len(columns), headers(columns)))
	for _, row := range rows {
		tw.AppendRow(toRow(len(columns), row))
	}
	if len(footer) > 0 {
		tw.AppendFooter(toRow(len(columns), footer))
	}

	configs := make([]table.ColumnConfig, len(columns))
	for i, col := range columns {
		align := text.AlignLeft
		if col.align == alignRight {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{
			Number:           i + 1,
			Align:            align,
			AlignFooter:      align,
			AlignHeader:      text.AlignLeft,
			WidthMax:         60,
			WidthMaxEnforcer: text.WrapSoft,
		}
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func headers(columns []column) []string {
	out := make([]string, len(columns))
	for i, col := range columns {
		out[i] = col.header
	}
	return out
}

func toRow(width int, cells []string) table.Row {
	row := make(table.Row, width)
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		} else {
			row[i] = ""
		}
	}
	return row
}
