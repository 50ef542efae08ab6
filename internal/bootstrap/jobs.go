// 文件路径: internal/bootstrap/jobs.go
// 模块说明: 注册后台任务。
package bootstrap

import (
	"log/slog"

	"github.com/brinaregal/brina/internal/job"
)

// Job schedules. The notification drain runs often so the kitchen hears
// about a new order within seconds.
const (
	NotifySchedule       = "@every 10s"
	StaleOrderSchedule   = "@every 1m"
	LoginCleanupSchedule = "@daily"
)

// BuildScheduler registers every background job without starting the cron loop.
func BuildScheduler(infra *Infrastructure, svc *Services, logger *slog.Logger) (*job.Scheduler, error) {
	scheduler := job.NewScheduler(logger)
	entries := []struct {
		spec     string
		runnable job.Runnable
	}{
		{NotifySchedule, job.NewSendNotificationJob(infra.Queue, infra.Delivery, logger)},
		{StaleOrderSchedule, job.NewStaleOrderJob(svc.Housekeeping, logger)},
		{LoginCleanupSchedule, job.NewLoginLogCleanupJob(svc.Housekeeping, logger)},
	}
	for _, e := range entries {
		if _, err := scheduler.Register(e.spec, e.runnable); err != nil {
			return nil, err
		}
	}
	return scheduler, nil
}
