// Package flamechart lays out call trees as positioned frames.
package flamechart

import (
	"sort"

	"github.com/samber/lo"

	"github.com/grafana/flamestate/pkg/model"
	"github.com/grafana/flamestate/pkg/model/calltree"
)

// Frame is one rendered rectangle: an occurrence of a call tree node placed
// on [Start, End) in profile weight units at the given depth.
type Frame struct {
	Node     calltree.Node
	Start    float64
	End      float64
	Depth    int
	Parent   *Frame
	Children []*Frame
}

func (f *Frame) Duration() float64 { return f.End - f.Start }

// FramePair holds up to two frames selected for timing comparison. Each slot
// may be nil independently.
type FramePair [2]*Frame

// IsFull reports whether both slots are populated.
func (p FramePair) IsFull() bool { return p[0] != nil && p[1] != nil }

type Kind int

const (
	KindChrono Kind = iota
	KindLeftHeavy
)

func (k Kind) String() string {
	switch k {
	case KindChrono:
		return "chrono"
	case KindLeftHeavy:
		return "left-heavy"
	default:
		return "unknown"
	}
}

type Flamechart struct {
	kind    Kind
	profile *calltree.Profile
	layers  [][]*Frame
}

// NewChrono lays out the append-order tree in sample order. A frame opens at
// the first sample passing through its node and closes at the first sample
// that does not, so self time stays where it happened.
func NewChrono(p *calltree.Profile) *Flamechart {
	fc := &Flamechart{kind: KindChrono, profile: p}
	open := model.NewStack[*Frame](64)
	var (
		path []calltree.Node
		x    float64
	)
	closeFrames := func(depth int) {
		for open.Len() > depth {
			f, _ := open.Pop()
			f.End = x
		}
	}
	p.ForEachChronoSample(func(leaf calltree.Node, weight float64) {
		if weight <= 0 {
			return
		}
		path = path[:0]
		for n := leaf; !n.IsRoot(); n = n.Parent() {
			path = append(path, n)
		}
		path = lo.Reverse(path)
		// Nodes are unique per occurrence, so a matching top at some depth
		// means every frame below it is still on the stack.
		for {
			top, ok := open.Peek()
			if !ok || (top.Depth < len(path) && path[top.Depth] == top.Node) {
				break
			}
			closeFrames(top.Depth)
		}
		for depth := open.Len(); depth < len(path); depth++ {
			parent, _ := open.Peek()
			open.Push(fc.add(&Frame{Node: path[depth], Start: x, Depth: depth, Parent: parent}))
		}
		x += weight
	})
	closeFrames(0)
	return fc
}

// NewLeftHeavy lays out the grouped tree with the heaviest children first.
func NewLeftHeavy(p *calltree.Profile) *Flamechart {
	return build(KindLeftHeavy, p, p.GroupedRoot(), func(children []calltree.Node) {
		sort.SliceStable(children, func(i, j int) bool {
			return children[i].TotalWeight() > children[j].TotalWeight()
		})
	})
}

// add links f to its parent and appends it to its layer.
func (fc *Flamechart) add(f *Frame) *Frame {
	if f.Parent != nil {
		f.Parent.Children = append(f.Parent.Children, f)
	}
	if f.Depth == len(fc.layers) {
		fc.layers = append(fc.layers, nil)
	}
	fc.layers[f.Depth] = append(fc.layers[f.Depth], f)
	return f
}

type layoutNode struct {
	node   calltree.Node
	start  float64
	depth  int
	parent *Frame
}

// build walks the tree depth first. A node's self weight is placed after
// its children. Nodes without weight are not laid out.
func build(kind Kind, p *calltree.Profile, root calltree.Node, order func([]calltree.Node)) *Flamechart {
	fc := &Flamechart{kind: kind, profile: p}
	stack := model.NewStack[layoutNode](64)
	pushChildren := func(n calltree.Node, start float64, depth int, parent *Frame) {
		children := n.Children()
		order(children)
		starts := make([]float64, len(children))
		x := start
		for i, c := range children {
			starts[i] = x
			x += c.TotalWeight()
		}
		for i := len(children) - 1; i >= 0; i-- {
			if children[i].TotalWeight() <= 0 {
				continue
			}
			stack.Push(layoutNode{node: children[i], start: starts[i], depth: depth, parent: parent})
		}
	}
	pushChildren(root, 0, 0, nil)
	for {
		current, ok := stack.Pop()
		if !ok {
			break
		}
		f := fc.add(&Frame{
			Node:   current.node,
			Start:  current.start,
			End:    current.start + current.node.TotalWeight(),
			Depth:  current.depth,
			Parent: current.parent,
		})
		pushChildren(current.node, current.start, current.depth+1, f)
	}
	return fc
}

func (fc *Flamechart) Kind() Kind { return fc.kind }

func (fc *Flamechart) Profile() *calltree.Profile { return fc.profile }

// TotalWeight is the grand total used as the percentage denominator.
func (fc *Flamechart) TotalWeight() float64 { return fc.profile.TotalWeight() }

func (fc *Flamechart) FormatValue(v float64) string { return fc.profile.FormatValue(v) }

// Layers returns the frames grouped by depth, each layer ordered by start.
func (fc *Flamechart) Layers() [][]*Frame { return fc.layers }

func (fc *Flamechart) Depth() int { return len(fc.layers) }

func (fc *Flamechart) FramesAt(depth int) []*Frame {
	if depth < 0 || depth >= len(fc.layers) {
		return nil
	}
	return fc.layers[depth]
}

// FrameAt returns the frame covering x at the given depth, or nil.
func (fc *Flamechart) FrameAt(depth int, x float64) *Frame {
	layer := fc.FramesAt(depth)
	i := sort.Search(len(layer), func(i int) bool { return layer[i].End > x })
	if i < len(layer) && layer[i].Start <= x {
		return layer[i]
	}
	return nil
}
