package extender

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/justchokingaround/extender/internal/config"
	"github.com/justchokingaround/extender/internal/metrics"
	"gorm.io/gorm"
)

const (
	finishedMessage  = "All videos processed successfully!"
	cancelledMessage = "Processing cancelled"
)

// Options configures an Orchestrator. Prober and Runner are required; the rest is optional.
type Options struct {
	Config  *config.ExtenderConfig
	Prober  Prober
	Runner  Runner
	DB      *gorm.DB
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Orchestrator implements the Repeater interface. Files of a batch are processed
// strictly in order on a single worker goroutine.
type Orchestrator struct {
	mu sync.Mutex

	// State
	state   RunState
	runID   string
	cancel  context.CancelFunc
	done    chan struct{}
	summary Summary

	// Subscribers
	subMu       sync.RWMutex
	subscribers []func(Event)
	seq         atomic.Uint64

	// Collaborators
	config  *config.ExtenderConfig
	prober  Prober
	runner  Runner
	db      *gorm.DB
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewOrchestrator creates an idle orchestrator
func NewOrchestrator(opts Options) (*Orchestrator, error) {
	if opts.Prober == nil {
		return nil, fmt.Errorf("prober cannot be nil")
	}
	if opts.Runner == nil {
		return nil, fmt.Errorf("runner cannot be nil")
	}

	cfg := opts.Config
	if cfg == nil {
		cfg = &config.DefaultConfig().Extender
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		state:   StateIdle,
		summary: Summary{State: StateIdle},
		config:  cfg,
		prober:  opts.Prober,
		runner:  opts.Runner,
		db:      opts.DB,
		logger:  logger,
		metrics: opts.Metrics,
	}, nil
}

// Subscribe registers fn for every subsequent event. Callbacks run synchronously on the
// worker goroutine in emission order, so they must not block for long.
func (o *Orchestrator) Subscribe(fn func(Event)) {
	if fn == nil {
		return
	}
	o.subMu.Lock()
	defer o.subMu.Unlock()
	o.subscribers = append(o.subscribers, fn)
}

// Start validates job and begins processing it in the background
func (o *Orchestrator) Start(ctx context.Context, job Job) error {
	if err := job.Validate(); err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state == StateRunning {
		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	o.state = StateRunning
	o.runID = uuid.New().String()
	o.cancel = cancel
	o.done = make(chan struct{})
	o.summary = Summary{RunID: o.runID, State: StateRunning}
	o.seq.Store(0)

	go o.run(runCtx, cancel, o.runID, job, o.done)

	return nil
}

// Run processes job and blocks until the batch reaches a terminal state
func (o *Orchestrator) Run(ctx context.Context, job Job) (Summary, error) {
	if err := o.Start(ctx, job); err != nil {
		return Summary{}, err
	}
	return o.Wait(), nil
}

// Cancel requests cooperative cancellation of the running batch
func (o *Orchestrator) Cancel() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != StateRunning || o.cancel == nil {
		return ErrNotRunning
	}
	o.cancel()
	return nil
}

// Wait blocks until the current batch finishes and returns its summary
func (o *Orchestrator) Wait() Summary {
	o.mu.Lock()
	done := o.done
	o.mu.Unlock()

	if done != nil {
		<-done
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	return o.summary
}

// State returns the current batch state
func (o *Orchestrator) State() RunState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// run is the worker loop for one batch
func (o *Orchestrator) run(ctx context.Context, cancel context.CancelFunc, runID string, job Job, done chan struct{}) {
	defer close(done)
	defer cancel()

	start := time.Now()
	total := len(job.Files)
	logger := o.logger.With("run_id", runID)
	logger.Info("batch started", "files", total, "hours", job.Hours, "minutes", job.Minutes, "times", job.Times)

	o.metrics.RunStarted()
	o.recordRunStart(runID, job, start)

	summary := Summary{RunID: runID, Files: make([]FileResult, 0, total)}
	cancelled := false

	for i, path := range job.Files {
		if ctx.Err() != nil {
			cancelled = true
			break
		}

		result := o.processFile(ctx, runID, job, i, path, logger)
		summary.Files = append(summary.Files, result)

		switch result.Status {
		case StatusCompleted:
			summary.Completed++
		case StatusFailed:
			summary.Failed++
		case StatusCancelled:
			cancelled = true
		}
		if cancelled {
			break
		}

		o.emit(runID, Event{Type: EventFileProgress, Index: i, Total: total, Percent: (i + 1) * 100 / total})
	}

	summary.Skipped = total - len(summary.Files)
	summary.Elapsed = time.Since(start)

	state, success, message := StateCompleted, true, finishedMessage
	if cancelled {
		state, success, message = StateCancelled, false, cancelledMessage
	}
	summary.State = state
	summary.Message = message

	o.recordRunEnd(summary)
	o.metrics.RunFinished(string(state))
	logger.Info("batch finished", "state", state, "completed", summary.Completed,
		"failed", summary.Failed, "skipped", summary.Skipped, "elapsed", summary.Elapsed.Round(time.Millisecond))

	// finished goes out while the batch still counts as running, so Start cannot
	// reset seq under a run that is still emitting
	o.emit(runID, Event{Type: EventFinished, Index: -1, Total: total, Success: success, Text: message})

	o.mu.Lock()
	o.state = state
	o.summary = summary
	o.cancel = nil
	o.mu.Unlock()
}

// emit stamps ev and delivers it to every subscriber. Subscribers are called
// without holding o.mu so they may call Cancel or State.
func (o *Orchestrator) emit(runID string, ev Event) {
	ev.Seq = o.seq.Add(1)
	ev.Timestamp = time.Now()
	ev.RunID = runID

	o.subMu.RLock()
	subs := make([]func(Event), len(o.subscribers))
	copy(subs, o.subscribers)
	o.subMu.RUnlock()

	for _, fn := range subs {
		fn(ev)
	}
}
