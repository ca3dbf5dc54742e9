package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// tableView is a header row plus string cells, rendered with go-pretty.
type tableView struct {
	headers []string
	aligns  []columnAlignment
	rows    [][]string
}

func newTableView(headers ...string) *tableView {
	return &tableView{headers: headers}
}

func (v *tableView) align(aligns ...columnAlignment) *tableView {
	v.aligns = aligns
	return v
}

func (v *tableView) add(cells ...string) {
	v.rows = append(v.rows, cells)
}

// write renders the table to w. Terminals get rounded borders; pipes get
// the plain ASCII style.
func (v *tableView) write(w io.Writer) error {
	_, err := fmt.Fprintln(w, renderTable(v.headers, v.rows, v.aligns, shouldColorize(w)))
	return err
}

func renderTable(headers []string, rows [][]string, aligns []columnAlignment, rounded bool) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	if rounded {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleDefault)
	}

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}
