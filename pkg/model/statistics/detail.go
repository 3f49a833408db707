package statistics

import (
	"github.com/grafana/flamestate/pkg/model/calltree"
	"github.com/grafana/flamestate/pkg/model/flamechart"
)

// Detail holds everything the detail panel of a flamechart shows for the
// selected node.
type Detail struct {
	ThisInstance Table
	AllInstances Table
	// Timings is nil unless a full frame pair is selected.
	Timings    *Timings
	StackTrace []calltree.StackFrame
}

// NewDetail computes the detail panel for node. pair may be nil.
func NewDetail(fc *flamechart.Flamechart, node calltree.Node, pair *flamechart.FramePair) Detail {
	d := Detail{
		ThisInstance: ThisInstance(fc, node),
		StackTrace:   calltree.StackTrace(node),
	}
	if f := node.Frame(); f != nil {
		d.AllInstances = AllInstances(fc, f)
	} else {
		d.AllInstances = NewTable("All Instances", fc.TotalWeight(), node.TotalWeight(), node.SelfWeight(), fc.FormatValue)
	}
	if pair != nil {
		if t, ok := NewTimings(*pair, fc.TotalWeight(), fc.FormatValue); ok {
			d.Timings = &t
		}
	}
	return d
}
