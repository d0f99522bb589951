// AngelaMos | 2026
// outbox.go

package outbox

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const DefaultTimeout = 15 * time.Second

// Runner executes the notify half of RecordAndNotify. Synchronous runners
// block the caller until notify returns; async runners hand it to a
// goroutine that Wait drains on shutdown.
type Runner struct {
	async   bool
	timeout time.Duration
	logger  *slog.Logger
	wg      sync.WaitGroup
}

func NewRunner(async bool, timeout time.Duration, logger *slog.Logger) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		async:   async,
		timeout: timeout,
		logger:  logger,
	}
}

func (r *Runner) Async() bool {
	return r.async
}

// RecordAndNotify commits a record and then runs notify against it. A
// record error aborts and is returned. A notify error is logged and never
// returned: the record is the source of truth and notify is responsible
// for writing its own outcome back.
//
// notify runs on a context detached from the caller's cancellation so an
// early client disconnect cannot abort delivery halfway.
func RecordAndNotify[T any](
	ctx context.Context,
	r *Runner,
	record func(ctx context.Context) (T, error),
	notify func(ctx context.Context, rec T) error,
) (T, error) {
	rec, err := record(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	run := func() {
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()

		defer func() {
			if p := recover(); p != nil {
				r.logger.ErrorContext(nctx, "notify panicked", "panic", fmt.Sprint(p))
			}
		}()

		if err := notify(nctx, rec); err != nil {
			r.logger.WarnContext(nctx, "notify failed", "error", err)
		}
	}

	if !r.async {
		run()
		return rec, nil
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		run()
	}()

	return rec, nil
}

// Wait blocks until in-flight async notifications finish or ctx is done.
func (r *Runner) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("outbox drain: %w", ctx.Err())
	}
}
