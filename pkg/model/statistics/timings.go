package statistics

import "github.com/grafana/flamestate/pkg/model/flamechart"

// Timings compares when two frames start and end. Deltas keep their sign:
// a negative value means the second frame starts or ends first.
type Timings struct {
	StartToStart        float64
	EndToEnd            float64
	StartToStartPercent float64
	EndToEndPercent     float64

	format Formatter
}

// StartToStart returns b.Start - a.Start.
func StartToStart(a, b *flamechart.Frame) float64 { return b.Start - a.Start }

// EndToEnd returns b.End - a.End.
func EndToEnd(a, b *flamechart.Frame) float64 { return b.End - a.End }

// NewTimings computes the deltas between the frames of a full pair. It
// returns false if either slot of the pair is empty.
func NewTimings(pair flamechart.FramePair, grandTotal float64, format Formatter) (Timings, bool) {
	if !pair.IsFull() {
		return Timings{}, false
	}
	s2s := StartToStart(pair[0], pair[1])
	e2e := EndToEnd(pair[0], pair[1])
	return Timings{
		StartToStart:        s2s,
		EndToEnd:            e2e,
		StartToStartPercent: Percent(s2s, grandTotal),
		EndToEndPercent:     Percent(e2e, grandTotal),
		format:              format,
	}, true
}

func (t Timings) FormattedStartToStart() string { return formatWith(t.format, t.StartToStart) }

func (t Timings) FormattedEndToEnd() string { return formatWith(t.format, t.EndToEnd) }

func (t Timings) FormattedStartToStartPercent() string { return FormatPercent(t.StartToStartPercent) }

func (t Timings) FormattedEndToEndPercent() string { return FormatPercent(t.EndToEndPercent) }
