package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/vanderheijden86/leadsheet/pkg/metrics"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range r {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func printTimings(w io.Writer) {
	stats := metrics.AllTimingStats()
	rows := make([][]string, 0, len(stats)+2)
	for _, s := range stats {
		rows = append(rows, []string{
			s.Name,
			strconv.FormatInt(s.Count, 10),
			s.Avg.Round(time.Microsecond).String(),
			s.Max.Round(time.Microsecond).String(),
			s.Total.Round(time.Microsecond).String(),
		})
	}
	for _, c := range metrics.AllCounters() {
		rows = append(rows, []string{c.Name(), strconv.FormatInt(c.Value(), 10), "", "", ""})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"Metric", "Count", "Avg", "Max", "Total"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight},
	))
}
