package viewstate

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	updates       *prometheus.CounterVec
	notifications prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flamestate",
			Subsystem: "viewstate",
			Name:      "updates_total",
			Help:      "The number of view state operations by outcome.",
		}, []string{"operation", "outcome"}),
		notifications: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flamestate",
			Subsystem: "viewstate",
			Name:      "notifications_total",
			Help:      "The number of state changes published to subscribers.",
		}),
	}
	m.updates = registerOrGet(reg, m.updates)
	m.notifications = registerOrGet(reg, m.notifications)
	return m
}

// registerOrGet registers c, or returns the collector already registered
// under the same descriptor so stores sharing a registry share counters.
func registerOrGet[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if reg == nil {
		return c
	}
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			return already.ExistingCollector.(T)
		}
		panic(err)
	}
	return c
}

const (
	opSetProfileGroup             = "set_profile_group"
	opSetProfileIndexToView       = "set_profile_index_to_view"
	opSetSelectedFrame            = "set_selected_frame"
	opSetHoveredNode              = "set_hovered_node"
	opSetSelectedNode             = "set_selected_node"
	opSetSelectedFrames           = "set_selected_frames"
	opSetConfigSpaceViewportRect  = "set_config_space_viewport_rect"
	opSetLogicalSpaceViewportSize = "set_logical_space_viewport_size"
	opClearHoverNode              = "clear_hover_node"
)

func (m *metrics) observe(op string, o Outcome) {
	m.updates.WithLabelValues(op, o.String()).Inc()
}
