package browser

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const runnerQueueSize = 64

// Op is one user action applied to a tab.
type Op func(ctx context.Context, tab *Tab) error

// Runner owns a tab on behalf of an event-driven host. Ops run one at a
// time on a single goroutine, in the order they were submitted, so input
// events are never reordered. After is called with the tab following
// each op.
type Runner struct {
	tab     *Tab
	timeout time.Duration
	logger  *zap.Logger
	after   func(tab *Tab)

	ops  chan Op
	done chan struct{}
}

// NewRunner starts a runner for tab. Each op gets its own context with
// timeout applied when it is positive.
func NewRunner(tab *Tab, timeout time.Duration, logger *zap.Logger, after func(*Tab)) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Runner{
		tab:     tab,
		timeout: timeout,
		logger:  logger.Named("runner"),
		after:   after,
		ops:     make(chan Op, runnerQueueSize),
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

// Submit queues op. It blocks only while the queue is full.
func (r *Runner) Submit(op Op) {
	r.ops <- op
}

// Close stops accepting ops and waits for the queued ones to finish.
func (r *Runner) Close() {
	close(r.ops)
	<-r.done
}

func (r *Runner) run() {
	defer close(r.done)
	for op := range r.ops {
		r.apply(op)
	}
}

func (r *Runner) apply(op Op) {
	ctx := context.Background()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	if err := op(ctx, r.tab); err != nil {
		r.logger.Warn("tab operation failed", zap.Error(err))
	}
	if r.after != nil {
		r.after(r.tab)
	}
}
