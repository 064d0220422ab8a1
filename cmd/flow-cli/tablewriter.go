package main

import (
	"os"

	"github.com/olekukonko/tablewriter"
)

type VisualTable struct {
	Header   []string
	Data     [][]string
	RowColor []RowColor
}

type RowColor struct {
	row    int
	column []int
	color  []tablewriter.Colors
}

func NewVisualTable(header []string, data [][]string, rowColor []RowColor) *VisualTable {
	return &VisualTable{
		Header:   header,
		Data:     data,
		RowColor: rowColor,
	}
}

func (v *VisualTable) Generate() {
	table := tablewriter.NewWriter(os.Stdout)

	for index, datum := range v.Data {
		table.Rich(datum, v.rowColors(index, len(datum)))
	}

	table.SetHeader(v.Header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)
	table.Render()
}

// rowColors expands the sparse RowColor entries for one row into a full
// per-column color slice, defaulting untargeted columns to no color.
func (v *VisualTable) rowColors(row, columns int) []tablewriter.Colors {
	for _, rowColor := range v.RowColor {
		if rowColor.row != row {
			continue
		}
		colors := make([]tablewriter.Colors, columns)
		for n, colIndex := range rowColor.column {
			if colIndex < columns && n < len(rowColor.color) {
				colors[colIndex] = rowColor.color[n]
			}
		}
		return colors
	}
	return nil
}
