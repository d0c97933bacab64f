// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/aclements/go-moremath/stats"

	"golang.org/x/perfview/internal/texttab"
	"golang.org/x/perfview/internal/timescale"
	"golang.org/x/perfview/profstat"
	"golang.org/x/perfview/profview"
)

// textSink is a profview.Sink that prints the last view as text.
type textSink struct {
	profview.Frame
}

// print writes the last view as text tables.
func (t *textSink) print(w io.Writer, reg *profstat.Registry, state profview.State) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "session %s: %s", state.Session, state.Mode.Title())
	if state.Mode == profview.PercentageView && state.Function != "" {
		fmt.Fprintf(&buf, " of %s", state.Function)
	}
	buf.WriteString("\n\n")

	switch {
	case t.Bars != nil:
		s, _ := reg.Lookup(t.Bars.Session)
		if err := formatBars(&buf, *t.Bars, s); err != nil {
			return err
		}
	case t.Grid != nil:
		if err := formatPanels(&buf, *t.Grid); err != nil {
			return err
		}
	default:
		buf.WriteString("nothing to draw\n")
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func formatBars(w *bytes.Buffer, bars profview.BarSeries, s *profstat.Session) error {
	if len(bars.Values) == 0 {
		w.WriteString("no functions to compare\n")
		return nil
	}
	// The bars are the ranked functions of s, in the same order.
	ranked := profstat.RankForBarGraph(s.Functions())

	scale := timescale.CommonScale(bars.Values)
	var tab texttab.Table
	tab.Row().Cell("function").Cell("average", texttab.Right).Cell("times run", texttab.Right)
	for i, name := range bars.Categories {
		runs := ""
		if i < len(ranked) {
			runs = strconv.FormatInt(ranked[i].TimesRun(), 10)
		}
		tab.Row().Cell(name).Cell(scale.Format(bars.Values[i]), texttab.Right).Cell(runs, texttab.Right)
	}
	if err := tab.Format(w); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nmean %s", scale.Format(stats.Mean(bars.Values)))
	// The geometric mean is undefined with a zero average, so it
	// covers only the nonzero ones.
	nonzero := make([]float64, 0, len(bars.Values))
	for _, v := range bars.Values {
		if v > 0 {
			nonzero = append(nonzero, v)
		}
	}
	switch len(nonzero) {
	case len(bars.Values):
		fmt.Fprintf(w, ", geomean %s", scale.Format(stats.GeoMean(nonzero)))
	case 0:
	default:
		fmt.Fprintf(w, ", geomean %s (nonzero only)", scale.Format(stats.GeoMean(nonzero)))
	}
	w.WriteString("\n")
	return nil
}

func formatPanels(w *bytes.Buffer, grid profview.PanelGrid) error {
	for i, p := range grid.Panels {
		if i > 0 {
			w.WriteString("\n")
		}
		fmt.Fprintf(w, "%s\n", p.Title)
		var tab texttab.Table
		for j, label := range p.Labels {
			tab.Row().Cell("  "+label).Cell(fmt.Sprintf("%3.1f%%", p.Sizes[j]), texttab.Right)
		}
		if err := tab.Format(w); err != nil {
			return err
		}
	}
	return nil
}
