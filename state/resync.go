package state

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// ScheduleResync registers a periodic full refresh on sched. It covers notifications lost
// while the listener connection was down.
func ScheduleResync(ctx context.Context, sched gocron.Scheduler, store *Store, interval time.Duration, logger *slog.Logger) (gocron.Job, error) {
	job, err := sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if err := store.Refresh(ctx); err != nil {
				logger.Error("scheduled state resync failed", slog.Any("error", err))
				return
			}
			logger.Debug("state resynced")
		}),
		gocron.WithName("state-resync"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule state resync: %w", err)
	}
	return job, nil
}
