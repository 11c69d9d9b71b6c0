package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/dshills/goundo/pkg/engine"
	"github.com/dshills/goundo/pkg/model"
)

type gauge struct {
	model.Entity
	Level int
}

var gaugeLevel = model.NewField("Level",
	func(g *gauge) int { return g.Level },
	func(g *gauge, v int) { g.Level = v })

func newTestCollector(t *testing.T) *Collector {
	t.Helper()
	return New(prometheus.NewRegistry())
}

func TestCollector_Observe(t *testing.T) {
	c := newTestCollector(t)

	ed := engine.New(engine.WithMaxUndos(2), engine.WithListener(c))
	ed.Start()
	g := &gauge{}
	g.Bind(ed)

	for i := 1; i <= 3; i++ {
		if _, err := ed.Do("level", func() error { return gaugeLevel.Set(g, i) }); err != nil {
			t.Fatalf("Do failed: %v", err)
		}
	}
	if _, err := ed.UndoLast(); err != nil {
		t.Fatalf("UndoLast failed: %v", err)
	}

	if got := testutil.ToFloat64(c.CommandsTotal.WithLabelValues("filed")); got != 3 {
		t.Errorf("CommandsTotal[filed] = %f, want 3", got)
	}
	if got := testutil.ToFloat64(c.CommandsTotal.WithLabelValues("undone")); got != 1 {
		t.Errorf("CommandsTotal[undone] = %f, want 1", got)
	}
	if got := testutil.ToFloat64(c.EvictionsTotal.WithLabelValues("undo")); got != 1 {
		t.Errorf("EvictionsTotal[undo] = %f, want 1", got)
	}
	if got := testutil.ToFloat64(c.HistoryDepth.WithLabelValues("undo")); got != 1 {
		t.Errorf("HistoryDepth[undo] = %f, want 1", got)
	}
	if got := testutil.ToFloat64(c.HistoryDepth.WithLabelValues("redo")); got != 1 {
		t.Errorf("HistoryDepth[redo] = %f, want 1", got)
	}
	if got := testutil.ToFloat64(c.VariationsTotal); got != 3 {
		t.Errorf("VariationsTotal = %f, want 3", got)
	}
}

func TestCollector_DiscardAndMerge(t *testing.T) {
	c := newTestCollector(t)

	c.Observe(engine.Event{Action: engine.ActionDiscarded})
	c.Observe(engine.Event{Action: engine.ActionMerged, UndoDepth: 4})
	c.Observe(engine.Event{Action: engine.ActionExistenceChanged, UndoDepth: 5})

	if got := testutil.ToFloat64(c.CommandsTotal.WithLabelValues("discarded")); got != 1 {
		t.Errorf("CommandsTotal[discarded] = %f, want 1", got)
	}
	if got := testutil.ToFloat64(c.CommandsTotal.WithLabelValues("merged")); got != 1 {
		t.Errorf("CommandsTotal[merged] = %f, want 1", got)
	}
	if got := testutil.ToFloat64(c.HistoryDepth.WithLabelValues("undo")); got != 5 {
		t.Errorf("HistoryDepth[undo] = %f, want 5", got)
	}
}

func TestNew_RegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	defer func() {
		if recover() == nil {
			t.Error("expected duplicate registration to panic")
		}
	}()
	New(reg)
}
