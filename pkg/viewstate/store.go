// Package viewstate keeps the navigation state of the flamechart views of a
// loaded profile group: which profile is active, and per view the hovered
// and selected nodes, the frames selected for comparison and the viewport.
//
// The state is a tree of immutable values. Every update builds a new tree
// that shares all untouched branches with the previous one, and subscribers
// are notified only when the top-level value actually changes.
package viewstate

import (
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"

	"github.com/grafana/flamestate/pkg/model/calltree"
	"github.com/grafana/flamestate/pkg/model/flamechart"
	"github.com/grafana/flamestate/pkg/util/atom"
)

// Outcome tells what an update did to the state.
type Outcome int

const (
	// Updated means a new state was published.
	Updated Outcome = iota
	// Unchanged means the update would not change anything.
	Unchanged
	// NoProfileGroup means no profile group is loaded.
	NoProfileGroup
	// NoActiveProfile means IndexToView does not address a profile.
	NoActiveProfile
	// NotAddressable means the targeted view does not exist, e.g. a sandwich
	// view while no frame is selected.
	NotAddressable
	// InvalidArgument means the value was rejected.
	InvalidArgument
)

func (o Outcome) String() string {
	switch o {
	case Updated:
		return "updated"
	case Unchanged:
		return "unchanged"
	case NoProfileGroup:
		return "no_profile_group"
	case NoActiveProfile:
		return "no_active_profile"
	case NotAddressable:
		return "not_addressable"
	case InvalidArgument:
		return "invalid_argument"
	default:
		return "unknown"
	}
}

type Option func(*options)

type options struct {
	initial *ProfileGroupState
}

// WithInitialState seeds the store, e.g. to restore a snapshot in tests.
func WithInitialState(s *ProfileGroupState) Option {
	return func(o *options) {
		o.initial = s
	}
}

// Store holds the ProfileGroupState. It is not safe for concurrent use:
// every call runs to completion, including subscriber notification, before
// it returns.
type Store struct {
	cfg     Config
	logger  log.Logger
	metrics *metrics
	state   *atom.Atom[*ProfileGroupState]
}

func NewStore(cfg Config, logger log.Logger, reg prometheus.Registerer, opts ...Option) *Store {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Store{
		cfg:     cfg,
		logger:  logger,
		metrics: newMetrics(reg),
		state:   atom.New(o.initial, atom.WithEqual[*ProfileGroupState](ShallowEqual)),
	}
}

// State returns the current snapshot. It may be nil and must not be
// modified.
func (s *Store) State() *ProfileGroupState { return s.state.Get() }

// Subscribe registers fn to be called after every published change.
func (s *Store) Subscribe(fn func()) *atom.Subscription { return s.state.Subscribe(fn) }

func (s *Store) Unsubscribe(sub *atom.Subscription) { s.state.Unsubscribe(sub) }

// ActiveProfile returns the state of the profile being viewed, or nil.
func (s *Store) ActiveProfile() *ProfileState { return s.state.Get().ActiveProfile() }

func (s *Store) set(op string, next *ProfileGroupState) Outcome {
	o := Unchanged
	if s.state.Set(next) {
		o = Updated
		s.metrics.notifications.Inc()
	}
	s.metrics.observe(op, o)
	return o
}

// SetProfileGroup replaces the whole state with fresh view states for every
// profile of g. The group name and active index are kept as given. A nil
// group unloads the store.
func (s *Store) SetProfileGroup(g *calltree.ProfileGroup) Outcome {
	if g == nil {
		level.Debug(s.logger).Log("msg", "unloading profile group")
		return s.set(opSetProfileGroup, nil)
	}
	level.Debug(s.logger).Log("msg", "loading profile group", "name", g.Name, "profiles", len(g.Profiles), "index_to_view", g.IndexToView)
	return s.set(opSetProfileGroup, &ProfileGroupState{
		Name:        g.Name,
		IndexToView: g.IndexToView,
		Profiles:    lo.Map(g.Profiles, func(p *calltree.Profile, _ int) *ProfileState { return newProfileState(p) }),
	})
}

// SetProfileIndexToView activates the profile at i, clamped to the valid
// range.
func (s *Store) SetProfileIndexToView(i int) Outcome {
	current := s.state.Get()
	if current == nil {
		s.metrics.observe(opSetProfileIndexToView, NoProfileGroup)
		return NoProfileGroup
	}
	clamped := max(0, min(i, len(current.Profiles)-1))
	if clamped != i {
		level.Debug(s.logger).Log("msg", "profile index out of range, clamping", "requested", i, "index", clamped, "profiles", len(current.Profiles))
	}
	return s.set(opSetProfileIndexToView, &ProfileGroupState{
		Name:        current.Name,
		IndexToView: clamped,
		Profiles:    current.Profiles,
	})
}

// SetSelectedFrame selects frame for sandwich analysis, discarding any
// previous caller and callee navigation state. A nil frame removes the
// sandwich state altogether.
func (s *Store) SetSelectedFrame(frame *calltree.Frame) Outcome {
	return s.updateActiveProfile(opSetSelectedFrame, func(p *ProfileState) (*ProfileState, Outcome) {
		if frame == nil {
			if p.Sandwich.CallerCallee == nil {
				return p, Unchanged
			}
			return p.withSandwich(emptySandwichViewState), Updated
		}
		level.Debug(s.logger).Log("msg", "selecting frame for sandwich view", "frame", frame.Name)
		return p.withSandwich(&SandwichViewState{
			CallerCallee: &CallerCalleeState{
				SelectedFrame:            frame,
				InvertedCallerFlamegraph: InitialFlamechartViewState,
				CalleeFlamegraph:         InitialFlamechartViewState,
			},
		}), Updated
	})
}

func (s *Store) SetFlamechartHoveredNode(id FlamechartID, hover *HoverNode) Outcome {
	return s.updateFlamechart(opSetHoveredNode, id, withHover(hover))
}

func (s *Store) SetSelectedNode(id FlamechartID, node calltree.Node) Outcome {
	return s.updateFlamechart(opSetSelectedNode, id, func(vs *FlamechartViewState) *FlamechartViewState {
		if vs.SelectedNode == node {
			return vs
		}
		c := *vs
		c.SelectedNode = node
		return &c
	})
}

// SetSelectedFrames stores the pair of frames selected for timing
// comparison. The pair is copied. A nil pair clears the selection.
func (s *Store) SetSelectedFrames(id FlamechartID, pair *flamechart.FramePair) Outcome {
	if pair != nil {
		for _, f := range pair {
			if f != nil && f.Start > f.End {
				level.Warn(s.logger).Log("msg", "rejecting selected frame ending before it starts", "view", id, "start", f.Start, "end", f.End)
				s.metrics.observe(opSetSelectedFrames, InvalidArgument)
				return InvalidArgument
			}
		}
		pair = lo.ToPtr(*pair)
	}
	return s.updateFlamechart(opSetSelectedFrames, id, func(vs *FlamechartViewState) *FlamechartViewState {
		if samePair(vs.SelectedFrames, pair) {
			return vs
		}
		c := *vs
		c.SelectedFrames = pair
		return &c
	})
}

func (s *Store) SetConfigSpaceViewportRect(id FlamechartID, rect Rect) Outcome {
	return s.updateFlamechart(opSetConfigSpaceViewportRect, id, func(vs *FlamechartViewState) *FlamechartViewState {
		if vs.ConfigSpaceViewportRect == rect {
			return vs
		}
		c := *vs
		c.ConfigSpaceViewportRect = rect
		return &c
	})
}

func (s *Store) SetLogicalSpaceViewportSize(id FlamechartID, size Vec2) Outcome {
	return s.updateFlamechart(opSetLogicalSpaceViewportSize, id, func(vs *FlamechartViewState) *FlamechartViewState {
		if vs.LogicalSpaceViewportSize == size {
			return vs
		}
		c := *vs
		c.LogicalSpaceViewportSize = size
		return &c
	})
}

// ClearHoverNode clears the hover of every view, in the order of
// FlamechartIDs. Unless batching is enabled each view is updated on its own,
// so subscribers may be notified up to four times.
func (s *Store) ClearHoverNode() Outcome {
	if s.cfg.BatchHoverClear {
		return s.updateActiveProfile(opClearHoverNode, func(p *ProfileState) (*ProfileState, Outcome) {
			next := p
			for _, id := range FlamechartIDs {
				if updated, o := next.updateView(id, withHover(nil)); o == Updated {
					next = updated
				}
			}
			if next == p {
				return p, Unchanged
			}
			level.Debug(s.logger).Log("msg", "cleared hover of all flamecharts")
			return next, Updated
		})
	}
	outcomes := make([]Outcome, 0, len(FlamechartIDs))
	for _, id := range FlamechartIDs {
		outcomes = append(outcomes, s.SetFlamechartHoveredNode(id, nil))
	}
	switch {
	case lo.Contains(outcomes, Updated):
		return Updated
	case outcomes[0] == NoProfileGroup || outcomes[0] == NoActiveProfile:
		return outcomes[0]
	}
	return Unchanged
}

func (s *Store) updateActiveProfile(op string, fn func(*ProfileState) (*ProfileState, Outcome)) Outcome {
	current := s.state.Get()
	if current == nil {
		s.metrics.observe(op, NoProfileGroup)
		return NoProfileGroup
	}
	active := current.ActiveProfile()
	if active == nil {
		s.metrics.observe(op, NoActiveProfile)
		return NoActiveProfile
	}
	next, o := fn(active)
	if o != Updated || next == active {
		if o == Updated {
			o = Unchanged
		}
		s.metrics.observe(op, o)
		return o
	}
	profiles := make([]*ProfileState, len(current.Profiles))
	copy(profiles, current.Profiles)
	profiles[current.IndexToView] = next
	return s.set(op, &ProfileGroupState{
		Name:        current.Name,
		IndexToView: current.IndexToView,
		Profiles:    profiles,
	})
}

func (s *Store) updateFlamechart(op string, id FlamechartID, fn func(*FlamechartViewState) *FlamechartViewState) Outcome {
	if _, ok := flamechartIDNames[id]; !ok {
		level.Warn(s.logger).Log("msg", "unknown flamechart", "view", id)
		s.metrics.observe(op, NotAddressable)
		return NotAddressable
	}
	return s.updateActiveProfile(op, func(p *ProfileState) (*ProfileState, Outcome) {
		return p.updateView(id, fn)
	})
}

// updateView applies fn to the view state addressed by id. It returns p
// itself unless the view state changed.
func (p *ProfileState) updateView(id FlamechartID, fn func(*FlamechartViewState) *FlamechartViewState) (*ProfileState, Outcome) {
	switch id {
	case Chrono:
		next := fn(p.Chrono)
		if next == p.Chrono {
			return p, Unchanged
		}
		c := *p
		c.Chrono = next
		return &c, Updated

	case LeftHeavy:
		next := fn(p.LeftHeavy)
		if next == p.LeftHeavy {
			return p, Unchanged
		}
		c := *p
		c.LeftHeavy = next
		return &c, Updated

	case SandwichCallees, SandwichInvertedCallers:
		cc := p.Sandwich.CallerCallee
		if cc == nil {
			return p, NotAddressable
		}
		next := *cc
		if id == SandwichCallees {
			next.CalleeFlamegraph = fn(cc.CalleeFlamegraph)
		} else {
			next.InvertedCallerFlamegraph = fn(cc.InvertedCallerFlamegraph)
		}
		if next == *cc {
			return p, Unchanged
		}
		return p.withSandwich(&SandwichViewState{CallerCallee: &next}), Updated
	}
	return p, NotAddressable
}

func (p *ProfileState) withSandwich(sandwich *SandwichViewState) *ProfileState {
	c := *p
	c.Sandwich = sandwich
	return &c
}

func withHover(hover *HoverNode) func(*FlamechartViewState) *FlamechartViewState {
	if hover != nil {
		hover = lo.ToPtr(*hover)
	}
	return func(vs *FlamechartViewState) *FlamechartViewState {
		if sameHover(vs.Hover, hover) {
			return vs
		}
		c := *vs
		c.Hover = hover
		return &c
	}
}

func sameHover(a, b *HoverNode) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func samePair(a, b *flamechart.FramePair) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
