package journal

import (
	"context"
	"log/slog"

	"github.com/dshills/goundo/internal/logging"
	"github.com/dshills/goundo/pkg/engine"
)

// Listener appends every engine event to a journal.
//
// Engine listeners cannot fail, so append errors are logged and counted.
type Listener struct {
	journal *Journal
	ctx     context.Context
	logger  *slog.Logger
	failed  int
}

// NewListener creates a listener writing to j. A nil logger discards errors.
func NewListener(ctx context.Context, j *Journal, logger *slog.Logger) *Listener {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Listener{journal: j, ctx: ctx, logger: logger}
}

// OnEvent implements engine.Listener.
func (l *Listener) OnEvent(ev engine.Event) {
	if _, err := l.journal.Append(l.ctx, EntryFromEvent(ev)); err != nil {
		l.failed++
		l.logger.Error("journal append failed", "engine", ev.EngineID, "action", string(ev.Action), "error", err)
	}
}

// Failed returns the number of events that could not be journaled.
func (l *Listener) Failed() int {
	return l.failed
}

var _ engine.Listener = (*Listener)(nil)
