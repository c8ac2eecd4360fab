package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/events"
)

// retryBackoff is how long a cycle sleeps after an escaped panic or
// error before the next tick is attempted (§7 "sleeps 60s before the
// next cycle").
const retryBackoff = 60 * time.Second

// errPanic stands in for whatever value recover() produced, since the
// loop only needs to know a cycle failed, not the panic's payload (the
// payload is already logged with its stack trace at the recover site).
var errPanic = errors.New("orchestrator: cycle panicked")

// Start begins the continuous-mode loop (§6 "run --mode continuous"):
// two independent tickers, one per layer, dispatching RunTriggerCycle
// and RunReviewCycle on their own edges (§5 "owns two tickers... and
// dispatches on their edges"). Safe to call once; a second call before
// Stop is a no-op.
func (o *Orchestrator) Start(ctx context.Context) {
	if o.cancel != nil {
		return
	}
	ctx, o.cancel = context.WithCancel(ctx)
	o.done = make(chan struct{})
	go o.run(ctx)
}

// Stop cancels the loop and waits for it to exit. Safe to call when the
// loop was never started.
func (o *Orchestrator) Stop() {
	if o.cancel == nil {
		return
	}
	o.cancel()
	<-o.done
	o.cancel = nil
}

// RunOnce runs exactly one trigger cycle followed by one review cycle
// (§6 "run --mode once"), regardless of interval state.
func (o *Orchestrator) RunOnce(ctx context.Context) (CycleResult, error) {
	triggeredBy := "scheduled"
	if _, shouldReview, err := o.safeRunTrigger(ctx); err != nil {
		return CycleResult{}, err
	} else if shouldReview {
		triggeredBy = "trigger"
	}
	return o.safeRunReview(ctx, triggeredBy)
}

func (o *Orchestrator) run(ctx context.Context) {
	defer close(o.done)

	triggerTicker := time.NewTicker(o.triggerInterval)
	defer triggerTicker.Stop()
	reviewTicker := time.NewTicker(o.reviewInterval)
	defer reviewTicker.Stop()

	lastTriggerWorthy := false

	for {
		select {
		case <-ctx.Done():
			return

		case <-triggerTicker.C:
			_, worthy, err := o.safeRunTrigger(ctx)
			if err != nil {
				o.sleepBackoff(ctx)
				continue
			}
			lastTriggerWorthy = worthy

		case <-reviewTicker.C:
			triggeredBy := "scheduled"
			if lastTriggerWorthy {
				triggeredBy = "trigger"
			}
			if _, err := o.safeRunReview(ctx, triggeredBy); err != nil {
				o.sleepBackoff(ctx)
			}
		}
	}
}

// safeRunTrigger wraps RunTriggerCycle with the §7 propagation policy:
// any escaped panic is recovered, logged with a stack trace, and
// reported as an error rather than crashing the loop.
func (o *Orchestrator) safeRunTrigger(ctx context.Context) (evts []events.Event, worthy bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("orchestrator: trigger cycle panicked", "panic", r, "stack", string(debug.Stack()))
			err = errPanic
		}
	}()
	return o.RunTriggerCycle(ctx)
}

func (o *Orchestrator) safeRunReview(ctx context.Context, triggeredBy string) (result CycleResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("orchestrator: review cycle panicked", "panic", r, "stack", string(debug.Stack()))
			err = errPanic
		}
	}()
	return o.RunReviewCycle(ctx, triggeredBy)
}

func (o *Orchestrator) sleepBackoff(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(retryBackoff):
	}
}
