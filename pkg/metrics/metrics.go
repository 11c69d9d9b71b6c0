// Package metrics exposes engine history activity as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dshills/goundo/pkg/engine"
)

const metricsNamespace = "goundo"

// Collector holds the history metrics. Observe feeds it from engine events.
type Collector struct {
	// CommandsTotal counts history actions.
	// Labels: action (filed, merged, discarded, undone, redone)
	CommandsTotal *prometheus.CounterVec

	// EvictionsTotal counts commands dropped by full history stacks.
	// Labels: stack (undo, redo)
	EvictionsTotal *prometheus.CounterVec

	// HistoryDepth tracks the number of retained commands.
	// Labels: stack (undo, redo)
	HistoryDepth *prometheus.GaugeVec

	// VariationsTotal counts leaf variations in filed commands.
	VariationsTotal prometheus.Counter
}

// New registers the collector's metrics with reg. A nil reg uses the
// default Prometheus registerer.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		CommandsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "commands_total",
			Help:      "Total history actions by kind",
		}, []string{"action"}),
		EvictionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "evictions_total",
			Help:      "Commands evicted from a full history stack",
		}, []string{"stack"}),
		HistoryDepth: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "history_depth",
			Help:      "Number of commands retained on each history stack",
		}, []string{"stack"}),
		VariationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "variations_total",
			Help:      "Leaf variations in filed commands",
		}),
	}
}

// Observe implements engine.Listener.
func (c *Collector) Observe(ev engine.Event) {
	switch ev.Action {
	case engine.ActionFiled:
		c.CommandsTotal.WithLabelValues(string(ev.Action)).Inc()
		if ev.Command != nil {
			c.VariationsTotal.Add(float64(ev.Command.Size()))
		}
	case engine.ActionMerged, engine.ActionDiscarded, engine.ActionUndone, engine.ActionNestedUndone, engine.ActionRedone:
		c.CommandsTotal.WithLabelValues(string(ev.Action)).Inc()
	case engine.ActionEvicted:
		c.EvictionsTotal.WithLabelValues(ev.Stack).Inc()
	}

	c.HistoryDepth.WithLabelValues(engine.StackUndo).Set(float64(ev.UndoDepth))
	c.HistoryDepth.WithLabelValues(engine.StackRedo).Set(float64(ev.RedoDepth))
}

// OnEvent implements engine.Listener.
func (c *Collector) OnEvent(ev engine.Event) {
	c.Observe(ev)
}

var _ engine.Listener = (*Collector)(nil)
