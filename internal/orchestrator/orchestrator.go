// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/matt-FFFFFF/vaxtag/internal/batcher"
	"github.com/matt-FFFFFF/vaxtag/internal/ctxlog"
	"github.com/matt-FFFFFF/vaxtag/internal/progress"
	"github.com/matt-FFFFFF/vaxtag/internal/runner"
	"github.com/matt-FFFFFF/vaxtag/internal/script"
	"github.com/matt-FFFFFF/vaxtag/internal/scriptstore"
	"github.com/oklog/ulid/v2"
)

// Executor runs one batch script with the automation interpreter.
// *runner.Runner satisfies it.
type Executor interface {
	Run(ctx context.Context, executable, scriptPath string, batch int) (runner.ExitInfo, error)
	Kill()
}

var _ Executor = (*runner.Runner)(nil)

// Options configures an Orchestrator.
type Options struct {
	Store       scriptstore.Store
	Generator   *script.Generator            // Defaults to the built-in template
	Executor    Executor                     // Defaults to a runner reporting to Reporter
	Reporter    progress.Reporter            // Defaults to a NullReporter
	BatchSize   int                          // Defaults to batcher.DefaultSize
	Interpreter string                       // Path or name of the automation interpreter
	Locate      func(string) (string, error) // Defaults to runner.Locate
}

// Request starts a run.
type Request struct {
	Items   []string
	Village string
}

// Result summarises a finished run.
type Result struct {
	RunID             string
	Outcome           Outcome
	TotalBatches      int
	CompletedBatches  int
	TotalTags         int
	Village           string
	CustomizedBatches []int
}

// Snapshot is a point-in-time view of the orchestrator.
type Snapshot struct {
	RunID                string
	Status               Status
	Batch                int // Batch running or awaiting confirmation
	TotalBatches         int
	CompletedBatches     int
	PendingConfirmations int
}

// Orchestrator sequences the batches of one run at a time.
type Orchestrator struct {
	store       scriptstore.Store
	resolver    *script.Resolver
	gen         *script.Generator
	executor    Executor
	reporter    progress.Reporter
	batchSize   int
	interpreter string
	locate      func(string) (string, error)

	mu        sync.Mutex
	status    Status
	runID     string
	batch     int
	total     int
	completed int
	gate      *Gate
	cancel    context.CancelCauseFunc
}

// New creates an Orchestrator. Options.Store is required.
func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		store:       opts.Store,
		resolver:    script.NewResolver(opts.Store),
		gen:         opts.Generator,
		executor:    opts.Executor,
		reporter:    opts.Reporter,
		batchSize:   opts.BatchSize,
		interpreter: opts.Interpreter,
		locate:      opts.Locate,
	}

	if o.gen == nil {
		o.gen = script.MustDefaultGenerator()
	}

	if o.reporter == nil {
		o.reporter = progress.NewNullReporter()
	}

	if o.executor == nil {
		o.executor = runner.New(runner.WithReporter(o.reporter))
	}

	if o.batchSize <= 0 {
		o.batchSize = batcher.DefaultSize
	}

	if o.locate == nil {
		o.locate = runner.Locate
	}

	return o
}

// Start runs every batch of the request and blocks until the run ends.
//
// A run stopped with Stop returns OutcomeStopped and a nil error. Cancelling ctx also stops
// the run but returns the cancellation cause. Validation failures leave the orchestrator idle
// and return a *ValidationError; batch failures return a *BatchError.
func (o *Orchestrator) Start(ctx context.Context, req Request) (Result, error) {
	items := batcher.Clean(req.Items)

	plan, err := o.validate(items, req.Village)
	if err != nil {
		return Result{Outcome: OutcomeFailed}, err
	}

	mat, err := script.NewMaterializer(o.gen, req.Village)
	if err != nil {
		return Result{Outcome: OutcomeFailed}, &ValidationError{Err: err}
	}

	runCtx, err := o.begin(ctx, plan)
	if err != nil {
		return Result{Outcome: OutcomeFailed}, err
	}

	res := Result{
		RunID:        progress.RunID(runCtx),
		TotalBatches: plan.Len(),
		TotalTags:    plan.TotalItems(),
		Village:      req.Village,
	}

	ctxlog.Info(runCtx, "run started", "batches", res.TotalBatches, "tags", res.TotalTags, "village", res.Village)

	res, err = o.execute(runCtx, plan, mat, res)

	o.finish(runCtx, &res, err)

	if res.Outcome == OutcomeStopped {
		// Stop is a normal way to end a run; a cancelled parent context is not.
		if cause := context.Cause(ctx); cause != nil {
			return res, cause
		}

		return res, nil
	}

	return res, err
}

// Confirm signals that the operator submitted the form for the last finished batch.
// Confirmations that arrive before the run pauses are held for the next pause.
// It returns false when no run is active.
func (o *Orchestrator) Confirm() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.status.Active() {
		return false
	}

	return o.gate.Confirm()
}

// Stop cancels the active run, killing the interpreter if it is running.
// It returns false when no run is active.
func (o *Orchestrator) Stop() bool {
	o.mu.Lock()

	if !o.status.Active() {
		o.mu.Unlock()
		return false
	}

	o.gate.Cancel()
	o.cancel(ErrStopped)
	o.mu.Unlock()

	o.executor.Kill()

	return true
}

// Snapshot returns the current state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	s := Snapshot{
		RunID:            o.runID,
		Status:           o.status,
		Batch:            o.batch,
		TotalBatches:     o.total,
		CompletedBatches: o.completed,
	}

	if o.gate != nil {
		s.PendingConfirmations = o.gate.Pending()
	}

	return s
}

func (o *Orchestrator) validate(items []string, village string) (batcher.Plan, error) {
	o.mu.Lock()
	active := o.status.Active()
	o.mu.Unlock()

	if active {
		return nil, ErrRunInProgress
	}

	if len(items) == 0 {
		return nil, &ValidationError{Err: ErrNoWorkItems}
	}

	if err := script.ValidateVillage(village); err != nil {
		return nil, &ValidationError{Err: err}
	}

	plan, err := batcher.Split(items, o.batchSize)
	if err != nil {
		return nil, &ValidationError{Err: err}
	}

	return plan, nil
}

// begin moves the orchestrator to Running and returns the context of the new run.
func (o *Orchestrator) begin(ctx context.Context, plan batcher.Plan) (context.Context, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.status.Active() {
		return nil, ErrRunInProgress
	}

	runID := ulid.Make().String()

	runCtx, cancel := context.WithCancelCause(ctx)
	runCtx = progress.WithRunID(runCtx, runID)
	runCtx = ctxlog.With(runCtx, "runID", runID)

	o.status = StatusRunning
	o.runID = runID
	o.batch = 0
	o.total = plan.Len()
	o.completed = 0
	o.gate = NewGate()
	o.cancel = cancel

	return runCtx, nil
}

func (o *Orchestrator) execute(ctx context.Context, plan batcher.Plan, mat *script.Materializer, res Result) (Result, error) {
	interpreter, err := o.locate(o.interpreter)
	if err != nil {
		res.Outcome = OutcomeFailed
		return res, err
	}

	for _, b := range plan {
		if ctx.Err() != nil {
			res.Outcome = OutcomeStopped
			return res, nil
		}

		o.setBatch(StatusRunning, b.Number)

		bctx := ctxlog.With(ctx, "batch", b.Number)

		src, path, err := o.prepare(bctx, mat, b, plan.Len())
		if err != nil {
			res.Outcome = OutcomeFailed
			return res, &BatchError{Batch: b.Number, Err: err}
		}

		// Stop may have arrived while the script was being written.
		if ctx.Err() != nil {
			res.Outcome = OutcomeStopped
			return res, nil
		}

		if src.IsCustomized() {
			res.CustomizedBatches = append(res.CustomizedBatches, b.Number)
		}

		o.report(bctx, progress.EventScriptSelected, fmt.Sprintf("Batch %d uses %s script", b.Number, src.Kind), progress.EventData{
			Script: &progress.ScriptInfo{Batch: b.Number, Customized: src.IsCustomized(), Path: path},
		})

		o.report(bctx, progress.EventBatchStarted, fmt.Sprintf("Starting batch %d of %d", b.Number, plan.Len()), progress.EventData{})

		if _, err := o.executor.Run(bctx, interpreter, path, b.Number); err != nil || ctx.Err() != nil {
			if ctx.Err() != nil {
				res.Outcome = OutcomeStopped
				return res, nil
			}

			res.Outcome = OutcomeFailed

			return res, &BatchError{Batch: b.Number, Err: err}
		}

		res.CompletedBatches = b.Number
		o.setCompleted(b.Number)

		o.report(bctx, progress.EventBatchProgress, fmt.Sprintf("Batch %d of %d completed", b.Number, plan.Len()), progress.EventData{
			Progress: &progress.BatchProgress{
				Completed:          b.Number,
				Total:              plan.Len(),
				CurrentBatch:       b.Number,
				TagsInCurrentBatch: b.Len(),
			},
		})

		if plan.IsLast(b.Number) {
			break
		}

		if err := o.awaitConfirmation(bctx, plan, b); err != nil {
			res.Outcome = OutcomeStopped
			return res, nil
		}
	}

	res.Outcome = OutcomeCompleted

	return res, nil
}

// prepare resolves and materializes the script for b and writes it to the store.
func (o *Orchestrator) prepare(ctx context.Context, mat *script.Materializer, b batcher.Batch, total int) (script.Source, string, error) {
	src, err := o.resolver.Resolve(b.Number)
	if err != nil {
		return src, "", err
	}

	text, err := mat.Materialize(src, b, total)
	if err != nil {
		return src, "", err
	}

	key := src.Key(b.Number)
	if err := o.store.Write(key, text); err != nil {
		return src, "", err
	}

	ctxlog.Debug(ctx, "script materialized", "key", key.String(), "customized", src.IsCustomized())

	return src, o.store.Path(key), nil
}

func (o *Orchestrator) awaitConfirmation(ctx context.Context, plan batcher.Plan, b batcher.Batch) error {
	o.mu.Lock()
	o.status = StatusAwaitingConfirmation
	gate := o.gate
	o.mu.Unlock()

	next := plan[b.Number]

	o.report(ctx, progress.EventConfirmationRequired,
		fmt.Sprintf("Submit the form for batch %d, then confirm to continue with batch %d", b.Number, next.Number),
		progress.EventData{
			Confirmation: &progress.ConfirmationRequest{
				BatchNumber:   b.Number,
				TotalBatches:  plan.Len(),
				CompletedTags: plan.ItemsThrough(b.Number),
				TotalTags:     plan.TotalItems(),
				NextBatchSize: next.Len(),
			},
		})

	ctxlog.Info(ctx, "waiting for manual submission")

	if err := gate.Wait(ctx); err != nil {
		ctxlog.Debug(ctx, "confirmation wait ended", "error", err)
		return err
	}

	o.report(ctx, progress.EventConfirmed, fmt.Sprintf("Batch %d submitted", b.Number), progress.EventData{})

	return nil
}

func (o *Orchestrator) finish(ctx context.Context, res *Result, err error) {
	summary := &progress.Summary{
		TotalBatches:      res.TotalBatches,
		CompletedBatches:  res.CompletedBatches,
		TotalTags:         res.TotalTags,
		Village:           res.Village,
		CustomizedBatches: res.CustomizedBatches,
	}

	o.mu.Lock()
	o.gate.Cancel()
	o.cancel(nil)

	switch res.Outcome {
	case OutcomeCompleted:
		o.status = StatusCompleted
	case OutcomeStopped:
		o.status = StatusCancelled
	default:
		o.status = StatusFailed
	}
	o.mu.Unlock()

	// Events are stamped with the run context, which is cancelled from here on.
	ctx = context.WithoutCancel(ctx)

	switch res.Outcome {
	case OutcomeCompleted:
		ctxlog.Info(ctx, "run completed", "batches", res.TotalBatches, "tags", res.TotalTags)
		o.report(ctx, progress.EventCompleted,
			fmt.Sprintf("All %d batches completed (%d tags)", res.TotalBatches, res.TotalTags),
			progress.EventData{Summary: summary})
	case OutcomeStopped:
		ctxlog.Info(ctx, "run stopped", "completedBatches", res.CompletedBatches)
		o.report(ctx, progress.EventStopped,
			fmt.Sprintf("Stopped after %d of %d batches", res.CompletedBatches, res.TotalBatches),
			progress.EventData{Summary: summary})
	default:
		ctxlog.Error(ctx, "run failed", "error", err)
		o.report(ctx, progress.EventFailed, err.Error(), progress.EventData{Error: err})
	}
}

func (o *Orchestrator) setBatch(status Status, batch int) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.status = status
	o.batch = batch
}

func (o *Orchestrator) setCompleted(batch int) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.completed = batch
}

func (o *Orchestrator) report(ctx context.Context, typ progress.EventType, msg string, data progress.EventData) {
	o.reporter.Report(progress.Event{
		RunID:     progress.RunID(ctx),
		Type:      typ,
		Message:   msg,
		Timestamp: time.Now(),
		Data:      data,
	})
}
