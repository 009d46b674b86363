// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	"github.com/nsu/musclub/internal/app/notify"
	eventstore "github.com/nsu/musclub/internal/app/store/events"
	memberstore "github.com/nsu/musclub/internal/app/store/members"
	notificationstore "github.com/nsu/musclub/internal/app/store/notifications"
	userstore "github.com/nsu/musclub/internal/app/store/users"
	"github.com/nsu/musclub/internal/app/system/mailer"
	"github.com/nsu/musclub/internal/app/system/tasks"
)

// scheduler and taskRunner are built once in Startup and shared with
// BuildHandler and Shutdown. WAFFLE runs the hooks sequentially, so the
// package-level handoff is race-free.
var (
	scheduler  *notify.Scheduler
	taskRunner *tasks.Runner
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. Here it
// wires the mailer and reminder scheduler, then starts the background sweep
// that delivers due notifications.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	m := mailer.New(mailer.Config{
		Host:     appCfg.MailSMTPHost,
		Port:     appCfg.MailSMTPPort,
		User:     appCfg.MailSMTPUser,
		Pass:     appCfg.MailSMTPPass,
		From:     appCfg.MailFrom,
		FromName: appCfg.MailFromName,
	}, logger)

	db := deps.MongoDatabase
	scheduler = notify.NewScheduler(
		eventstore.New(db),
		userstore.New(db),
		memberstore.New(db),
		notificationstore.New(db),
		m,
		logger,
	)

	taskRunner = tasks.NewRunner(logger)
	if err := taskRunner.Add(tasks.NotificationSweepJob(scheduler, appCfg.ReminderSweepInterval)); err != nil {
		return fmt.Errorf("register notification sweep: %w", err)
	}
	taskRunner.Start()

	logger.Info("reminder sweep started",
		zap.Duration("interval", appCfg.ReminderSweepInterval))
	return nil
}
