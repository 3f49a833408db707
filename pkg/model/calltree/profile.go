package calltree

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/xlab/treeprint"

	"github.com/grafana/flamestate/pkg/model"
)

type sample struct {
	stack  []int32 // Frame indices, root first.
	weight float64
	chrono int32 // Leaf node in the append-order tree.
}

// Profile is an immutable weighted call tree of one captured run.
//
// It keeps two trees over the same samples: the append-order tree, where
// consecutive samples share a node only while they share a prefix, and the
// grouped tree, where all samples with the same stack prefix are merged.
type Profile struct {
	name        string
	unit        Unit
	frames      []*Frame
	samples     []sample
	chrono      *tree
	grouped     *tree
	totalWeight float64
}

func (p *Profile) Name() string { return p.name }

func (p *Profile) Unit() Unit { return p.unit }

// TotalWeight is the grand total of the profile.
func (p *Profile) TotalWeight() float64 { return p.totalWeight }

func (p *Profile) FormatValue(v float64) string { return p.unit.Format(v) }

// Frames returns the frames of the profile ordered by first appearance.
func (p *Profile) Frames() []*Frame { return p.frames }

// ChronoRoot is the root of the append-order call tree.
func (p *Profile) ChronoRoot() Node { return p.chrono.root() }

// GroupedRoot is the root of the call tree with identical stacks merged.
func (p *Profile) GroupedRoot() Node { return p.grouped.root() }

// ForEachChronoSample calls fn for every sample in append order with the
// append-order tree node of its leaf. Samples with an empty stack report the
// root.
func (p *Profile) ForEachChronoSample(fn func(leaf Node, weight float64)) {
	for _, s := range p.samples {
		fn(Node{t: p.chrono, i: s.chrono}, s.weight)
	}
}

// Samples returns the number of samples appended to the profile.
func (p *Profile) Samples() int { return len(p.samples) }

// FrameByName returns the first frame with the given name.
func (p *Profile) FrameByName(name string) (*Frame, bool) {
	return lo.Find(p.frames, func(f *Frame) bool { return f.Name == name })
}

// CalleesOf returns a profile of everything called from frame. Each sample
// containing frame contributes its stack starting at the outermost
// occurrence of frame.
func (p *Profile) CalleesOf(frame *Frame) *Profile {
	b := NewBuilder(p.name, p.unit)
	p.forEachOccurrence(frame, func(stack []int32, at int, weight float64) {
		b.appendFrames(p.infos(stack[at:]), weight)
	})
	return b.Build()
}

// InvertedCallersOf returns a profile rooted at frame whose children are its
// callers. Each sample containing frame contributes the reversed stack from
// the outermost occurrence of frame up to the root.
func (p *Profile) InvertedCallersOf(frame *Frame) *Profile {
	b := NewBuilder(p.name, p.unit)
	p.forEachOccurrence(frame, func(stack []int32, at int, weight float64) {
		b.appendFrames(lo.Reverse(p.infos(stack[:at+1])), weight)
	})
	return b.Build()
}

func (p *Profile) forEachOccurrence(frame *Frame, fn func(stack []int32, at int, weight float64)) {
	if frame == nil || int(frame.index) >= len(p.frames) || p.frames[frame.index] != frame {
		return
	}
	for _, s := range p.samples {
		if at := lo.IndexOf(s.stack, frame.index); at >= 0 {
			fn(s.stack, at, s.weight)
		}
	}
}

// infos returns a fresh slice of frame infos for the stack.
func (p *Profile) infos(stack []int32) []FrameInfo {
	return lo.Map(stack, func(i int32, _ int) FrameInfo { return p.frames[i].FrameInfo })
}

func (p *Profile) String() string {
	type branch struct {
		node Node
		treeprint.Tree
	}
	tp := treeprint.NewWithRoot(fmt.Sprintf("%s: total %s", p.name, p.FormatValue(p.totalWeight)))
	remaining := model.NewStack[branch](len(p.grouped.nodes))
	children := p.GroupedRoot().Children()
	for i := len(children) - 1; i >= 0; i-- {
		remaining.Push(branch{node: children[i], Tree: tp})
	}
	for {
		current, ok := remaining.Pop()
		if !ok {
			break
		}
		label := fmt.Sprintf("%s: self %s total %s",
			current.node.Frame().Name,
			p.FormatValue(current.node.SelfWeight()),
			p.FormatValue(current.node.TotalWeight()))
		children := current.node.Children()
		if len(children) == 0 {
			current.Tree.AddNode(label)
			continue
		}
		b := current.Tree.AddBranch(label)
		for i := len(children) - 1; i >= 0; i-- {
			remaining.Push(branch{node: children[i], Tree: b})
		}
	}
	return tp.String()
}

// Builder accumulates samples into a Profile. A Builder must not be used
// after Build.
type Builder struct {
	p          *Profile
	frameIndex map[string]int32
	// Grouped tree children keyed by parent node and frame.
	groupedChildren map[[2]int32]int32
	seen            map[int32]struct{}
	// Append-order tree path of the last weighted sample, and scratch
	// space for the current one.
	prevChrono []int32
	chronoPath []int32
}

func NewBuilder(name string, unit Unit) *Builder {
	return &Builder{
		p: &Profile{
			name:    name,
			unit:    unit,
			chrono:  newTree(),
			grouped: newTree(),
		},
		frameIndex:      make(map[string]int32),
		groupedChildren: make(map[[2]int32]int32),
		seen:            make(map[int32]struct{}),
	}
}

// AppendSample adds one sample. The stack is ordered from the outermost
// caller to the leaf.
func (b *Builder) AppendSample(stack []FrameInfo, weight float64) error {
	if weight < 0 {
		return errors.Errorf("negative sample weight %v", weight)
	}
	b.appendFrames(stack, weight)
	return nil
}

// AppendSamples adds the samples in order, stopping at the first failure.
func (b *Builder) AppendSamples(stacks [][]FrameInfo, weights []float64) error {
	if len(stacks) != len(weights) {
		return errors.Errorf("got %d stacks and %d weights", len(stacks), len(weights))
	}
	for i := range stacks {
		if err := b.AppendSample(stacks[i], weights[i]); err != nil {
			return errors.Wrapf(err, "sample %d", i)
		}
	}
	return nil
}

func (b *Builder) Build() *Profile {
	p := b.p
	b.p = nil
	return p
}

func (b *Builder) appendFrames(stack []FrameInfo, weight float64) {
	p := b.p
	s := sample{stack: make([]int32, len(stack)), weight: weight}
	for i, fi := range stack {
		s.stack[i] = b.intern(fi)
	}
	p.totalWeight += weight

	clear(b.seen)
	path := b.chronoPath[:0]
	chrono, grouped := rootIndex, rootIndex
	p.chrono.nodes[rootIndex].total += weight
	p.grouped.nodes[rootIndex].total += weight
	for depth, fi := range s.stack {
		f := p.frames[fi]
		if _, ok := b.seen[fi]; !ok {
			b.seen[fi] = struct{}{}
			f.totalWeight += weight
		}
		chrono = b.chronoChild(chrono, f, depth)
		p.chrono.nodes[chrono].total += weight
		path = append(path, chrono)
		grouped = b.groupedChild(grouped, f)
		p.grouped.nodes[grouped].total += weight
	}
	b.chronoPath = path
	// Zero weight samples take no time, so they do not end the frames of
	// the previous sample.
	if weight > 0 {
		b.prevChrono, b.chronoPath = b.chronoPath, b.prevChrono
	}
	s.chrono = chrono
	p.samples = append(p.samples, s)
	// Samples with an empty stack leave their weight on the roots.
	p.chrono.nodes[chrono].self += weight
	p.grouped.nodes[grouped].self += weight
	if len(s.stack) > 0 {
		p.frames[s.stack[len(s.stack)-1]].selfWeight += weight
	}
}

func (b *Builder) intern(fi FrameInfo) int32 {
	k := fi.key()
	if i, ok := b.frameIndex[k]; ok {
		return i
	}
	i := int32(len(b.p.frames))
	b.p.frames = append(b.p.frames, &Frame{FrameInfo: fi, index: i})
	b.frameIndex[k] = i
	return i
}

// chronoChild reuses the node the previous sample passed through at depth
// when both samples share the path above it and the frame matches. A frame
// that left the stack gets a new node when it comes back.
func (b *Builder) chronoChild(parent int32, f *Frame, depth int) int32 {
	t := b.p.chrono
	if depth < len(b.prevChrono) {
		if prev := b.prevChrono[depth]; t.nodes[prev].parent == parent && t.nodes[prev].frame == f {
			return prev
		}
	}
	return t.addChild(parent, f)
}

func (b *Builder) groupedChild(parent int32, f *Frame) int32 {
	k := [2]int32{parent, f.index}
	if i, ok := b.groupedChildren[k]; ok {
		return i
	}
	i := b.p.grouped.addChild(parent, f)
	b.groupedChildren[k] = i
	return i
}

// ProfileGroup is a set of profiles loaded together, e.g. one per thread.
type ProfileGroup struct {
	Name        string
	IndexToView int
	Profiles    []*Profile
}

// Validate checks the group is fit to be handed to a view state store.
func (g *ProfileGroup) Validate() error {
	if len(g.Profiles) == 0 {
		return model.ValidationError{Err: errors.Errorf("profile group %q has no profiles", g.Name)}
	}
	if g.IndexToView < 0 || g.IndexToView >= len(g.Profiles) {
		return model.ValidationError{Err: errors.Errorf("profile group %q: index to view %d out of range [0, %d]", g.Name, g.IndexToView, len(g.Profiles)-1)}
	}
	for i, p := range g.Profiles {
		if p == nil {
			return model.ValidationError{Err: errors.Errorf("profile group %q: profile %d is nil", g.Name, i)}
		}
	}
	return nil
}
