// 文件路径: internal/service/housekeeping.go
// 模块说明: 定时任务调用的维护逻辑：超时未处理订单提醒、登录日志清理。
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/brinaregal/brina/internal/notifier"
	"github.com/brinaregal/brina/internal/repository"
)

const staleAlertBatch = 50

// HousekeepingOptions 注入维护任务依赖。
type HousekeepingOptions struct {
	Orders            repository.OrderRepository
	LoginLogs         repository.LoginLogRepository
	Notifier          notifier.Service
	Events            EventPublisher
	StaleAfter        time.Duration
	LoginLogRetention time.Duration
	Logger            *slog.Logger
	Now               func() time.Time
}

// HousekeepingService 由 job 包按计划调用。
type HousekeepingService interface {
	// AlertStaleOrders notifies once for every pending order older than the
	// configured threshold and returns how many were alerted.
	AlertStaleOrders(ctx context.Context) (int, error)
	PurgeLoginLogs(ctx context.Context) (int64, error)
}

type housekeepingService struct {
	opts   HousekeepingOptions
	logger *slog.Logger
	now    func() time.Time
}

func NewHousekeepingService(opts HousekeepingOptions) HousekeepingService {
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = 15 * time.Minute
	}
	if opts.LoginLogRetention <= 0 {
		opts.LoginLogRetention = 30 * 24 * time.Hour
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &housekeepingService{opts: opts, logger: logger.With("component", "housekeeping"), now: now}
}

func (s *housekeepingService) AlertStaleOrders(ctx context.Context) (int, error) {
	if s.opts.Orders == nil {
		return 0, fmt.Errorf("housekeeping: orders repository not configured / 订单仓储未配置")
	}
	now := s.now()
	cutoff := now.Add(-s.opts.StaleAfter).Unix()
	orders, err := s.opts.Orders.ListUnalerted(ctx, string(OrderStatusPending), cutoff, staleAlertBatch)
	if err != nil {
		return 0, fmt.Errorf("list stale orders: %w", err)
	}
	alerted := 0
	for _, order := range orders {
		if err := ctx.Err(); err != nil {
			return alerted, err
		}
		// mark first so a failing notifier never produces repeated alerts
		if err := s.opts.Orders.MarkAlerted(ctx, order.ID, now.Unix()); err != nil {
			return alerted, fmt.Errorf("mark order %s alerted: %w", order.Reference, err)
		}
		order.AlertedAt = now.Unix()
		announceOrder(ctx, s.logger, s.opts.Notifier, s.opts.Events, EventOrderStale, order, toOrderView(order), now)
		alerted++
	}
	if alerted > 0 {
		s.logger.InfoContext(ctx, "stale orders alerted", "count", alerted, "older_than", s.opts.StaleAfter)
	}
	return alerted, nil
}

func (s *housekeepingService) PurgeLoginLogs(ctx context.Context) (int64, error) {
	if s.opts.LoginLogs == nil {
		return 0, nil
	}
	before := s.now().Add(-s.opts.LoginLogRetention).Unix()
	removed, err := s.opts.LoginLogs.DeleteBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("purge login logs: %w", err)
	}
	return removed, nil
}
