package job

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/brinaregal/brina/internal/service"
)

// StaleOrderJob reminds the kitchen about orders nobody has confirmed yet.
type StaleOrderJob struct {
	Housekeeping service.HousekeepingService
	Logger       *slog.Logger
}

func NewStaleOrderJob(housekeeping service.HousekeepingService, logger *slog.Logger) *StaleOrderJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &StaleOrderJob{Housekeeping: housekeeping, Logger: logger}
}

func (j *StaleOrderJob) Name() string { return "orders.stale" }

func (j *StaleOrderJob) Run(ctx context.Context) error {
	if j == nil || j.Housekeeping == nil {
		return fmt.Errorf("stale order job dependencies not configured / 超时订单任务依赖未配置")
	}
	if _, err := j.Housekeeping.AlertStaleOrders(ctx); err != nil {
		return fmt.Errorf("stale order job: %w", err)
	}
	return nil
}

// LoginLogCleanupJob removes login attempts past the retention window.
type LoginLogCleanupJob struct {
	Housekeeping service.HousekeepingService
	Logger       *slog.Logger
}

func NewLoginLogCleanupJob(housekeeping service.HousekeepingService, logger *slog.Logger) *LoginLogCleanupJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoginLogCleanupJob{Housekeeping: housekeeping, Logger: logger}
}

func (j *LoginLogCleanupJob) Name() string { return "login_logs.cleanup" }

func (j *LoginLogCleanupJob) Run(ctx context.Context) error {
	if j == nil || j.Housekeeping == nil {
		return fmt.Errorf("login log cleanup job dependencies not configured / 登录日志清理任务依赖未配置")
	}
	deleted, err := j.Housekeeping.PurgeLoginLogs(ctx)
	if err != nil {
		return fmt.Errorf("login log cleanup job: %w", err)
	}
	if deleted > 0 {
		j.Logger.Info("cleaned up old login logs", "deleted_rows", deleted)
	}
	return nil
}
