package sim

import (
	"context"
	"time"

	logsim "deepwarren/server/logging/simulation"
)

// Run paces the turn loop at a fixed interval until the context is
// cancelled. After every turn the snapshot is handed to onTurn, typically
// the observer hub.
func (e *Engine) Run(ctx context.Context, interval time.Duration, onTurn func(Snapshot)) {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			started := time.Now()
			e.Step()
			elapsed := time.Since(started)
			if elapsed > interval {
				logsim.TurnBudgetOverrun(ctx, e.publisher, e.Turn(), logsim.TurnBudgetOverrunPayload{
					DurationMillis: elapsed.Milliseconds(),
					BudgetMillis:   interval.Milliseconds(),
					Ratio:          float64(elapsed) / float64(interval),
				})
			}
			if onTurn != nil {
				onTurn(e.Snapshot())
			}
		}
	}
}
