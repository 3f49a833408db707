package flamechart

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grafana/flamestate/pkg/model/calltree"
)

// buildProfile takes stacks as "a;b;c" strings, root first. An empty string
// is a sample with an empty stack.
func buildProfile(t testing.TB, stacks []string, weights []float64) *calltree.Profile {
	t.Helper()
	b := calltree.NewBuilder("test", calltree.UnitMilliseconds)
	infos := make([][]calltree.FrameInfo, 0, len(stacks))
	for _, s := range stacks {
		var stack []calltree.FrameInfo
		if s == "" {
			infos = append(infos, stack)
			continue
		}
		for _, name := range strings.Split(s, ";") {
			stack = append(stack, calltree.FrameInfo{Name: name})
		}
		infos = append(infos, stack)
	}
	require.NoError(t, b.AppendSamples(infos, weights))
	return b.Build()
}

type span struct {
	name       string
	start, end float64
}

func spans(frames []*Frame) []span {
	out := make([]span, len(frames))
	for i, f := range frames {
		out[i] = span{f.Node.Frame().Name, f.Start, f.End}
	}
	return out
}

func Test_NewChrono(t *testing.T) {
	p := buildProfile(t, []string{"a;b", "a;b", "a;c", "a;b"}, []float64{1, 1, 2, 3})
	fc := NewChrono(p)
	assert.Equal(t, KindChrono, fc.Kind())
	assert.Equal(t, 7.0, fc.TotalWeight())
	require.Equal(t, 2, fc.Depth())
	assert.Equal(t, []span{{"a", 0, 7}}, spans(fc.FramesAt(0)))
	assert.Equal(t, []span{{"b", 0, 2}, {"c", 2, 4}, {"b", 4, 7}}, spans(fc.FramesAt(1)))

	a := fc.FramesAt(0)[0]
	assert.Equal(t, fc.FramesAt(1), a.Children)
	for _, c := range a.Children {
		assert.Same(t, a, c.Parent)
		assert.Equal(t, 1, c.Depth)
	}
	assert.Nil(t, fc.FramesAt(2))
	assert.Nil(t, fc.FramesAt(-1))
}

func Test_NewLeftHeavy(t *testing.T) {
	p := buildProfile(t, []string{"a;c", "a;b", "a;b", "d"}, []float64{2, 1, 3, 1})
	fc := NewLeftHeavy(p)
	assert.Equal(t, "left-heavy", fc.Kind().String())
	assert.Equal(t, []span{{"a", 0, 6}, {"d", 6, 7}}, spans(fc.FramesAt(0)))
	assert.Equal(t, []span{{"b", 0, 4}, {"c", 4, 6}}, spans(fc.FramesAt(1)))
	assert.Same(t, p, fc.Profile())
	assert.Equal(t, "4.00ms", fc.FormatValue(4))
}

func Test_Layout_SelfTime(t *testing.T) {
	for _, tc := range []struct {
		name      string
		stacks    []string
		weights   []float64
		chrono    [][]span
		leftHeavy [][]span
	}{
		{
			name:      "self before child",
			stacks:    []string{"a", "a;b"},
			weights:   []float64{1, 2},
			chrono:    [][]span{{{"a", 0, 3}}, {{"b", 1, 3}}},
			leftHeavy: [][]span{{{"a", 0, 3}}, {{"b", 0, 2}}},
		},
		{
			name:      "self between children",
			stacks:    []string{"a;b", "a", "a;c"},
			weights:   []float64{1, 2, 1},
			chrono:    [][]span{{{"a", 0, 4}}, {{"b", 0, 1}, {"c", 3, 4}}},
			leftHeavy: [][]span{{{"a", 0, 4}}, {{"b", 0, 1}, {"c", 1, 2}}},
		},
		{
			name:      "frame leaves the stack and comes back",
			stacks:    []string{"a;b", "a", "a;b"},
			weights:   []float64{1, 1, 1},
			chrono:    [][]span{{{"a", 0, 3}}, {{"b", 0, 1}, {"b", 2, 3}}},
			leftHeavy: [][]span{{{"a", 0, 3}}, {{"b", 0, 2}}},
		},
		{
			name:      "zero weight sample keeps frames open",
			stacks:    []string{"a;b", "a", "a;b"},
			weights:   []float64{1, 0, 1},
			chrono:    [][]span{{{"a", 0, 2}}, {{"b", 0, 2}}},
			leftHeavy: [][]span{{{"a", 0, 2}}, {{"b", 0, 2}}},
		},
		{
			name:      "empty stack between samples",
			stacks:    []string{"a", "", "a"},
			weights:   []float64{1, 1, 1},
			chrono:    [][]span{{{"a", 0, 1}, {"a", 2, 3}}},
			leftHeavy: [][]span{{{"a", 0, 2}}},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			p := buildProfile(t, tc.stacks, tc.weights)
			for _, c := range []struct {
				fc       *Flamechart
				expected [][]span
			}{
				{NewChrono(p), tc.chrono},
				{NewLeftHeavy(p), tc.leftHeavy},
			} {
				require.Equal(t, len(c.expected), c.fc.Depth(), c.fc.Kind())
				for depth, expected := range c.expected {
					assert.Equal(t, expected, spans(c.fc.FramesAt(depth)), "%s depth %d", c.fc.Kind(), depth)
				}
			}
		})
	}
}

func Test_NewChrono_FramesMatchNodes(t *testing.T) {
	p := buildProfile(t, []string{"a;b", "a", "a;b;c", "a;b", "d"}, []float64{1, 2, 3, 1, 2})
	fc := NewChrono(p)
	for _, layer := range fc.Layers() {
		for _, f := range layer {
			assert.Equal(t, f.Node.TotalWeight(), f.Duration(), "%s at %v", f.Node.Frame().Name, f.Start)
			for _, c := range f.Children {
				assert.Same(t, f, c.Parent)
				assert.Equal(t, f.Node, c.Node.Parent())
				assert.GreaterOrEqual(t, c.Start, f.Start)
				assert.LessOrEqual(t, c.End, f.End)
			}
		}
	}
	assert.Equal(t, []span{{"b", 0, 1}, {"b", 3, 7}}, spans(fc.FramesAt(1)))
	assert.Equal(t, []span{{"c", 3, 6}}, spans(fc.FramesAt(2)))
}

func Test_Layout_SkipsEmptyNodes(t *testing.T) {
	p := buildProfile(t, []string{"a;b", "a;c"}, []float64{0, 1})
	fc := NewLeftHeavy(p)
	assert.Equal(t, []span{{"c", 0, 1}}, spans(fc.FramesAt(1)))
}

func Test_Flamechart_FrameAt(t *testing.T) {
	p := buildProfile(t, []string{"a;b", "a;c", "a;b"}, []float64{2, 2, 3})
	fc := NewChrono(p)
	for _, tc := range []struct {
		depth    int
		x        float64
		expected string
	}{
		{0, 0, "a"},
		{0, 6.9, "a"},
		{0, 7, ""},
		{0, -1, ""},
		{1, 1.5, "b"},
		{1, 2, "c"},
		{1, 4.5, "b"},
		{2, 1, ""},
	} {
		f := fc.FrameAt(tc.depth, tc.x)
		if tc.expected == "" {
			assert.Nil(t, f, "depth %d x %v", tc.depth, tc.x)
			continue
		}
		require.NotNil(t, f, "depth %d x %v", tc.depth, tc.x)
		assert.Equal(t, tc.expected, f.Node.Frame().Name)
	}
}

func Test_FramePair(t *testing.T) {
	f := &Frame{Start: 1, End: 3}
	assert.False(t, FramePair{}.IsFull())
	assert.False(t, FramePair{f, nil}.IsFull())
	assert.False(t, FramePair{nil, f}.IsFull())
	assert.True(t, FramePair{f, f}.IsFull())
	assert.Equal(t, 2.0, f.Duration())
}

func Test_SandwichFlamecharts(t *testing.T) {
	p := buildProfile(t, []string{"main;a;x", "main;b;x", "main;b"}, []float64{1, 2, 4})
	x, ok := p.FrameByName("x")
	require.True(t, ok)

	callers := NewLeftHeavy(p.InvertedCallersOf(x))
	assert.Equal(t, []span{{"x", 0, 3}}, spans(callers.FramesAt(0)))
	assert.Equal(t, []span{{"b", 0, 2}, {"a", 2, 3}}, spans(callers.FramesAt(1)))
	assert.Equal(t, []span{{"main", 0, 2}, {"main", 2, 3}}, spans(callers.FramesAt(2)))

	callees := NewLeftHeavy(p.CalleesOf(x))
	assert.Equal(t, []span{{"x", 0, 3}}, spans(callees.FramesAt(0)))
	assert.Equal(t, 1, callees.Depth())
}
