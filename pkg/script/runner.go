package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dshills/goundo/internal/logging"
	"github.com/dshills/goundo/pkg/engine"
	"github.com/dshills/goundo/pkg/workflow"
)

const tracerName = "github.com/dshills/goundo/pkg/script"

var (
	// ErrUnknownOp is returned for a step whose op the runner does not know.
	ErrUnknownOp = errors.New("unknown step op")
	// ErrUnclosedCommand is returned when a script ends with commands still open.
	ErrUnclosedCommand = errors.New("script left commands open")
)

// Result summarizes a script run.
type Result struct {
	Steps     int              `json:"steps" yaml:"steps"`
	Replayed  int              `json:"replayed" yaml:"replayed"`
	UndoDepth int              `json:"undo_depth" yaml:"undo_depth"`
	RedoDepth int              `json:"redo_depth" yaml:"redo_depth"`
	Existence engine.Existence `json:"-" yaml:"-"`
}

// Runner applies scripts to one workflow through its engine.
type Runner struct {
	wf     *workflow.Workflow
	ed     *engine.Engine
	logger *slog.Logger
	tracer trace.Tracer
	eval   *evaluator
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the runner's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTracerProvider sets the provider the runner's spans come from.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *Runner) {
		if tp != nil {
			r.tracer = tp.Tracer(tracerName)
		}
	}
}

// NewRunner binds wf to ed and returns a runner for it.
func NewRunner(wf *workflow.Workflow, ed *engine.Engine, opts ...Option) *Runner {
	r := &Runner{
		wf:     wf,
		ed:     ed,
		logger: logging.NewNop(),
		tracer: otel.Tracer(tracerName),
		eval:   newEvaluator(),
	}
	for _, opt := range opts {
		opt(r)
	}
	wf.Bind(ed)
	return r
}

// Run executes the steps of s in order and stops at the first failure.
// Commands a script leaves open, or that are open when a step fails, are
// discarded; their edits stay applied.
func (r *Runner) Run(ctx context.Context, s *Script) (*Result, error) {
	ctx, span := r.tracer.Start(ctx, "script.run",
		trace.WithAttributes(
			attribute.String("script.name", s.Name),
			attribute.Int("script.steps", len(s.Steps)),
			attribute.String("engine.id", r.ed.ID()),
		))
	defer span.End()

	res := &Result{}
	fail := func(err error) (*Result, error) {
		r.discardOpen()
		r.fill(res)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return res, err
	}

	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		if err := r.runStep(ctx, i, step, res); err != nil {
			return fail(fmt.Errorf("step %d (%s): %w", i+1, step.Op, err))
		}
		res.Steps++
	}

	if open := r.ed.NestingDepth(); open > 0 {
		return fail(fmt.Errorf("%w: %d", ErrUnclosedCommand, open))
	}

	r.fill(res)
	span.SetAttributes(
		attribute.Int("history.undo_depth", res.UndoDepth),
		attribute.Int("history.redo_depth", res.RedoDepth),
	)
	r.logger.Info("script finished", "script", s.Name, "steps", res.Steps, "replayed", res.Replayed,
		"existence", res.Existence.String())
	return res, nil
}

func (r *Runner) fill(res *Result) {
	res.UndoDepth = r.ed.UndoDepth()
	res.RedoDepth = r.ed.RedoDepth()
	res.Existence = r.ed.Existence()
}

func (r *Runner) discardOpen() {
	for r.ed.NestingDepth() > 0 {
		cmd := r.ed.Declaring()
		if err := r.ed.DiscardCommand(); err != nil {
			r.logger.Error("discard failed", "command", cmd.Name, "error", err)
			return
		}
		r.logger.Warn("open command discarded", "command", cmd.Name)
	}
}

func (r *Runner) runStep(ctx context.Context, index int, step Step, res *Result) error {
	_, span := r.tracer.Start(ctx, "script.step",
		trace.WithAttributes(
			attribute.Int("step.index", index),
			attribute.String("step.op", step.Op),
		))
	defer span.End()

	r.logger.Debug("running step", "index", index, "op", step.Op)
	if err := r.apply(step, res); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (r *Runner) apply(step Step, res *Result) error {
	switch step.Op {
	case OpBegin:
		name := step.Name
		if name == "" {
			name = "script"
		}
		r.ed.StartCommand(name)
		return nil
	case OpCommit:
		_, err := r.ed.CompleteCommand(step.Extends)
		return err
	case OpDiscard:
		return r.ed.DiscardCommand()
	case OpUndo:
		return r.replay(step, res, r.ed.Undo)
	case OpRedo:
		return r.replay(step, res, r.ed.Redo)
	case OpAssert:
		ok, err := r.eval.Bool(step.Expr, r.wf.Snapshot())
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrAssertionFailed, step.Expr)
		}
		return nil
	}

	return r.edit(step)
}

// replay undoes or redoes up to Count commands, stopping early when the
// history runs out.
func (r *Runner) replay(step Step, res *Result, fn func(keep, echo bool) (bool, error)) error {
	for i := 0; i < step.times(); i++ {
		ok, err := fn(true, step.Echo)
		if err != nil {
			return err
		}
		if !ok {
			r.logger.Debug("nothing to replay", "op", step.Op, "replayed", i)
			return nil
		}
		res.Replayed++
	}
	return nil
}

func (r *Runner) edit(step Step) error {
	switch step.Op {
	case OpRename:
		v, err := r.value(step)
		if err != nil {
			return err
		}
		return r.wf.Rename(v)
	case OpDescribe:
		v, err := r.value(step)
		if err != nil {
			return err
		}
		return r.wf.SetDescription(v)
	case OpAddNode:
		v, err := r.value(step)
		if err != nil {
			return err
		}
		_, err = r.wf.AddNode(step.ID, step.Type, v)
		return err
	case OpRenameNode:
		v, err := r.value(step)
		if err != nil {
			return err
		}
		return r.wf.RenameNode(step.ID, v)
	case OpRemoveNode:
		return r.wf.RemoveNode(step.ID)
	case OpAddEdge:
		_, err := r.wf.AddEdge(step.From, step.To, step.Condition)
		return err
	case OpRemoveEdge:
		id, err := r.edgeID(step)
		if err != nil {
			return err
		}
		return r.wf.RemoveEdge(id)
	case OpSetCondition:
		id, err := r.edgeID(step)
		if err != nil {
			return err
		}
		return r.wf.SetEdgeCondition(id, step.Condition)
	case OpSetVar:
		v, err := r.value(step)
		if err != nil {
			return err
		}
		return r.wf.SetVariable(step.Key, v)
	case OpDeleteVar:
		return r.wf.DeleteVariable(step.Key)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, step.Op)
	}
}

// value returns the step's expression result when it has one, or its literal.
func (r *Runner) value(step Step) (string, error) {
	if step.Expr == "" {
		return step.Value, nil
	}
	return r.eval.String(step.Expr, r.wf.Snapshot())
}

// edgeID resolves a step's edge by ID, or by its endpoints.
func (r *Runner) edgeID(step Step) (string, error) {
	if step.ID != "" {
		return step.ID, nil
	}
	for _, e := range r.wf.Edges.Items() {
		if e.From == step.From && e.To == step.To {
			return e.ID, nil
		}
	}
	return "", fmt.Errorf("%w from %s to %s", workflow.ErrEdgeNotFound, step.From, step.To)
}
