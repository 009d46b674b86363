// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"github.com/nsu/musclub/internal/app/notify"
)

// NotificationSweepJob creates the job that delivers due reminders.
// The interval is measured between run starts; overlapping runs are
// prevented by the runner, so a slow sweep simply delays the next one.
func NotificationSweepJob(scheduler *notify.Scheduler, interval time.Duration) Job {
	return Job{
		Name:     "notification-sweep",
		Interval: interval,
		Run: func(ctx context.Context) error {
			return scheduler.ProcessDueNotifications(ctx)
		},
	}
}
