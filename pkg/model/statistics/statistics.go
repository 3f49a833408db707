// Package statistics derives the numbers shown next to a selected flamechart
// frame: total and self weight, their share of the grand total, and timing
// deltas between two selected frames.
package statistics

import (
	"fmt"
	"math"

	"github.com/grafana/flamestate/pkg/model/calltree"
	"github.com/grafana/flamestate/pkg/model/flamechart"
)

// Percent returns 100*w/grandTotal. It is NaN when grandTotal is 0, which
// callers should render as "no data".
func Percent(w, grandTotal float64) float64 {
	if grandTotal == 0 {
		return math.NaN()
	}
	return 100 * w / grandTotal
}

// FormatPercent renders a percentage with more precision for small values.
func FormatPercent(p float64) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return "n/a"
	}
	if p < 0 {
		return "-" + FormatPercent(-p)
	}
	switch {
	case p == 100:
		return "100%"
	case p > 99:
		return ">99%"
	case p < 0.01:
		return "<0.01%"
	case p < 1:
		return fmt.Sprintf("%.2f%%", p)
	case p < 10:
		return fmt.Sprintf("%.1f%%", p)
	}
	return fmt.Sprintf("%.0f%%", p)
}

// Formatter renders a weight, usually Flamechart.FormatValue.
type Formatter func(float64) string

// Table is the total/self summary of one node or of all occurrences of a
// frame.
type Table struct {
	Title        string
	GrandTotal   float64
	Total        float64
	Self         float64
	TotalPercent float64
	SelfPercent  float64

	format Formatter
}

func NewTable(title string, grandTotal, total, self float64, format Formatter) Table {
	return Table{
		Title:        title,
		GrandTotal:   grandTotal,
		Total:        total,
		Self:         self,
		TotalPercent: Percent(total, grandTotal),
		SelfPercent:  Percent(self, grandTotal),
		format:       format,
	}
}

// ThisInstance summarizes a single call tree node.
func ThisInstance(fc *flamechart.Flamechart, node calltree.Node) Table {
	return NewTable("This Instance", fc.TotalWeight(), node.TotalWeight(), node.SelfWeight(), fc.FormatValue)
}

// AllInstances summarizes every occurrence of a frame.
func AllInstances(fc *flamechart.Flamechart, frame *calltree.Frame) Table {
	return NewTable("All Instances", fc.TotalWeight(), frame.TotalWeight(), frame.SelfWeight(), fc.FormatValue)
}

func (t Table) FormattedTotal() string { return formatWith(t.format, t.Total) }

func (t Table) FormattedSelf() string { return formatWith(t.format, t.Self) }

func (t Table) FormattedTotalPercent() string { return FormatPercent(t.TotalPercent) }

func (t Table) FormattedSelfPercent() string { return FormatPercent(t.SelfPercent) }

func formatWith(f Formatter, v float64) string {
	if f == nil {
		return fmt.Sprint(v)
	}
	return f(v)
}
