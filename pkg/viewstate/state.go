package viewstate

import (
	"github.com/grafana/flamestate/pkg/model/calltree"
	"github.com/grafana/flamestate/pkg/model/flamechart"
)

// Vec2 is a point or a size.
type Vec2 struct {
	X, Y float64
}

var Vec2Zero = Vec2{}

// Rect is an axis-aligned rectangle.
type Rect struct {
	Origin Vec2
	Size   Vec2
}

var RectEmpty = Rect{}

func (r Rect) Width() float64  { return r.Size.X }
func (r Rect) Height() float64 { return r.Size.Y }
func (r Rect) Left() float64   { return r.Origin.X }
func (r Rect) Right() float64  { return r.Origin.X + r.Size.X }
func (r Rect) Top() float64    { return r.Origin.Y }
func (r Rect) Bottom() float64 { return r.Origin.Y + r.Size.Y }

func (r Rect) IsEmpty() bool { return r.Size.X == 0 || r.Size.Y == 0 }

// PointerEvent is the pointer position that caused a hover, in logical
// space.
type PointerEvent struct {
	X, Y float64
}

// HoverNode is what a pointer is currently over in a flamechart.
type HoverNode struct {
	Node  calltree.Node
	Event PointerEvent
	Frame *flamechart.Frame
}

// FlamechartViewState is the navigation state of one flamechart. Values are
// immutable once published: updates build a new value.
type FlamechartViewState struct {
	Hover        *HoverNode
	SelectedNode calltree.Node
	// SelectedFrames is nil when nothing is selected for comparison.
	SelectedFrames           *flamechart.FramePair
	LogicalSpaceViewportSize Vec2
	ConfigSpaceViewportRect  Rect
}

// InitialFlamechartViewState is shared by every fresh view.
var InitialFlamechartViewState = &FlamechartViewState{
	ConfigSpaceViewportRect:  RectEmpty,
	LogicalSpaceViewportSize: Vec2Zero,
}

// IsInitial reports whether vs carries no navigation state.
func (vs *FlamechartViewState) IsInitial() bool {
	return vs.Hover == nil &&
		!vs.SelectedNode.Valid() &&
		vs.SelectedFrames == nil &&
		vs.LogicalSpaceViewportSize == Vec2Zero &&
		vs.ConfigSpaceViewportRect == RectEmpty
}

// CallerCalleeState exists while a frame is selected for sandwich analysis.
type CallerCalleeState struct {
	SelectedFrame            *calltree.Frame
	InvertedCallerFlamegraph *FlamechartViewState
	CalleeFlamegraph         *FlamechartViewState
}

type SandwichViewState struct {
	CallerCallee *CallerCalleeState
}

var emptySandwichViewState = &SandwichViewState{}

type ProfileState struct {
	Profile   *calltree.Profile
	Chrono    *FlamechartViewState
	LeftHeavy *FlamechartViewState
	Sandwich  *SandwichViewState
}

// ProfileGroupState is the root of the navigation state. A nil
// *ProfileGroupState means no profiles are loaded.
type ProfileGroupState struct {
	Name string
	// IndexToView is the position of the active profile in Profiles.
	IndexToView int
	Profiles    []*ProfileState
}

// ActiveProfile returns the profile at IndexToView, or nil.
func (s *ProfileGroupState) ActiveProfile() *ProfileState {
	if s == nil || s.IndexToView < 0 || s.IndexToView >= len(s.Profiles) {
		return nil
	}
	return s.Profiles[s.IndexToView]
}

// ShallowEqual compares the top-level fields of two states, with Profiles
// compared by slice identity. Nested branches are never compared deeply.
func ShallowEqual(a, b *ProfileGroupState) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.Name == b.Name &&
		a.IndexToView == b.IndexToView &&
		sameSlice(a.Profiles, b.Profiles)
}

func sameSlice[T any](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}

func newProfileState(p *calltree.Profile) *ProfileState {
	return &ProfileState{
		Profile:   p,
		Chrono:    InitialFlamechartViewState,
		LeftHeavy: InitialFlamechartViewState,
		Sandwich:  emptySandwichViewState,
	}
}
