package merge

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Engine applies conflict policies to a batch of entities against a Store.
type Engine struct {
	store  Store
	logger *zap.Logger
}

// NewEngine creates an engine over store.
func NewEngine(store Store, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{store: store, logger: logger}
}

// Run plans and applies entities. The returned error is only non-nil for
// invalid options; per-entity failures are reported in the result.
func (e *Engine) Run(ctx context.Context, entities []Entity, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return e.Apply(ctx, BuildPlan(entities, opts), opts), nil
}

type outcome struct {
	action ActionType
	err    error
}

// Apply executes the pending items of plan. Items are independent: a failure
// is recorded against its id and the remaining items still run.
func (e *Engine) Apply(ctx context.Context, plan *Plan, opts Options) *Result {
	outcomes := make([]outcome, len(plan.Items))

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	var g errgroup.Group
	g.SetLimit(workers)

	for i, item := range plan.Items {
		if item.State != StatePending {
			continue
		}
		g.Go(func() error {
			outcomes[i] = e.execute(ctx, item, opts)
			return nil
		})
	}
	_ = g.Wait()

	// Aggregate in input order so logs are deterministic regardless of scheduling
	result := &Result{DryRun: opts.DryRun}
	for i, item := range plan.Items {
		kind := item.Entity.EntityKind()
		kr := result.For(kind)

		switch item.State {
		case StateFiltered:
			kr.Skipped++
			continue
		case StateRejected:
			e.recordFailure(kr, item.Entity, item.Err)
			continue
		}

		out := outcomes[i]
		if out.err != nil {
			e.recordFailure(kr, item.Entity, out.err)
			continue
		}
		switch out.action {
		case ActionCreate:
			kr.Created++
		case ActionUpdate, ActionMerge:
			kr.Updated++
		case ActionSkip:
			kr.Skipped++
		}
	}

	return result
}

// execute runs one existence check and one write for a pending item.
func (e *Engine) execute(ctx context.Context, item PlanItem, opts Options) (out outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = outcome{err: fmt.Errorf("store panic: %v", r)}
		}
	}()

	callCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	ent := item.Entity
	existing, found, err := e.store.Find(callCtx, ent.EntityKind(), ent.EntityID())
	if err != nil {
		return outcome{err: fmt.Errorf("lookup failed: %w", err)}
	}

	action := Decide(item.Policy, found)
	if opts.DryRun || action == ActionSkip {
		return outcome{action: action}
	}

	switch action {
	case ActionCreate:
		err = e.store.Create(callCtx, ent)
	case ActionUpdate:
		err = e.store.Update(callCtx, ent)
	case ActionMerge:
		var merged Entity
		merged, err = e.store.Merge(existing, ent)
		if err == nil {
			err = e.store.Update(callCtx, merged)
		}
	}
	if err != nil {
		return outcome{action: action, err: fmt.Errorf("%s failed: %w", action, err)}
	}
	return outcome{action: action}
}

func (e *Engine) recordFailure(kr *KindResult, ent Entity, err error) {
	kr.Errors++
	kr.Log = append(kr.Log, LogEntry{ID: ent.EntityID(), Message: err.Error()})
	e.logger.Warn("Entity import failed",
		zap.String("kind", string(ent.EntityKind())),
		zap.Int("id", ent.EntityID()),
		zap.Error(err),
	)
}
