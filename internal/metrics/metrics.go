// Package metrics exposes Prometheus collectors fed by interaction hooks.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/easel/pkg/domain"
)

// Collector holds the interaction metric families. Attach its Hooks to an
// engine, merging with other hook sets via domain.MergeHooks.
type Collector struct {
	gestures   *prometheus.CounterVec
	durations  *prometheus.HistogramVec
	selections *prometheus.CounterVec
	pulses     *prometheus.CounterVec
	nodesAdded prometheus.Counter
	nodeMoves  prometheus.Counter
	edges      prometheus.Counter
}

// NewCollector creates the interaction metrics and registers them on reg.
// Pass prometheus.DefaultRegisterer outside tests.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		gestures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "easel_gestures_total",
			Help: "Pointer gestures by name and phase.",
		}, []string{"gesture", "phase"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "easel_gesture_duration_seconds",
			Help:    "Elapsed time between gesture start and end.",
			Buckets: prometheus.DefBuckets,
		}, []string{"gesture"}),
		selections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "easel_selection_changes_total",
			Help: "Selection changes by kind.",
		}, []string{"change"}),
		pulses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "easel_edit_pulses_total",
			Help: "Rejected edits by reason.",
		}, []string{"reason"}),
		nodesAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "easel_nodes_added_total",
			Help: "Nodes committed by placement.",
		}),
		nodeMoves: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "easel_node_moves_total",
			Help: "Node positions committed by drags.",
		}),
		edges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "easel_edges_connected_total",
			Help: "Edges committed by connect gestures.",
		}),
	}
	reg.MustRegister(
		c.gestures,
		c.durations,
		c.selections,
		c.pulses,
		c.nodesAdded,
		c.nodeMoves,
		c.edges,
	)
	return c
}

// Hooks returns the callbacks feeding the collectors.
func (c *Collector) Hooks() domain.InteractionHooks {
	return domain.InteractionHooks{
		OnGesture: func(ctx context.Context, e *domain.GestureEvent) {
			c.gestures.WithLabelValues(e.Gesture, e.Phase).Inc()
			if e.Phase == domain.GesturePhaseEnd {
				c.durations.WithLabelValues(e.Gesture).Observe(e.Duration.Seconds())
			}
		},
		OnNodeSelected: func(ctx context.Context, e *domain.SelectionEvent) {
			c.selections.WithLabelValues("selected").Inc()
		},
		OnSelectionCleared: func(ctx context.Context, e *domain.SelectionEvent) {
			c.selections.WithLabelValues("cleared").Inc()
		},
		OnNodeMoved: func(ctx context.Context, e *domain.NodeEvent) {
			c.nodeMoves.Inc()
		},
		OnNodeAdded: func(ctx context.Context, e *domain.NodeEvent) {
			c.nodesAdded.Inc()
		},
		OnEdgeConnected: func(ctx context.Context, e *domain.EdgeEvent) {
			c.edges.Inc()
		},
		OnEditPulse: func(ctx context.Context, e *domain.PulseEvent) {
			c.pulses.WithLabelValues(e.Reason).Inc()
		},
	}
}
