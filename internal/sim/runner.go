package sim

import (
	"context"
	"time"

	"github.com/elektrokombinacija/fleetsim/internal/core"
)

// Run drives the scheduler for a fixed number of ticks, invoking fn
// after each one; a non-nil error from fn stops the run and is
// returned. When interval is positive, ticks are paced on the wall
// clock; otherwise they run back to back. Simulated time never depends
// on the pacing. Run returns early when ctx is cancelled.
func Run(ctx context.Context, s *Scheduler, ticks int, interval time.Duration, fn func(core.FleetSnapshot) error) error {
	var ticker *time.Ticker
	if interval > 0 {
		ticker = time.NewTicker(interval)
		defer ticker.Stop()
	}

	for i := 0; i < ticks; i++ {
		if ticker != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		} else {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}

		snap := s.Tick()
		if fn != nil {
			if err := fn(snap); err != nil {
				return err
			}
		}
	}
	return nil
}
