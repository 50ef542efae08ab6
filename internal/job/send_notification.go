// 文件路径: internal/job/send_notification.go
// 模块说明: 从内存队列取出订单通知并通过 notifier 投递，失败的消息放回队首。
package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/brinaregal/brina/internal/async"
	"github.com/brinaregal/brina/internal/notifier"
)

// SendNotificationJob 处理订单通知队列。
type SendNotificationJob struct {
	Queue    *async.NotificationQueue
	Notifier notifier.Service
	Logger   *slog.Logger
}

// NewSendNotificationJob 构造通知投递任务。
func NewSendNotificationJob(queue *async.NotificationQueue, notifier notifier.Service, logger *slog.Logger) *SendNotificationJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &SendNotificationJob{Queue: queue, Notifier: notifier, Logger: logger}
}

// Name 返回任务标识。
func (j *SendNotificationJob) Name() string { return "notify.webhook" }

// Run 投递队列中的全部消息。遇到第一个失败时停止，并把未投递的消息按原顺序放回。
func (j *SendNotificationJob) Run(ctx context.Context) error {
	if j == nil || j.Queue == nil || j.Notifier == nil {
		return fmt.Errorf("notification job dependencies not configured / 通知任务依赖未配置")
	}
	msgs := j.Queue.Drain()
	if len(msgs) == 0 {
		return nil
	}
	sent := 0
	for i, msg := range msgs {
		if err := j.Notifier.Send(ctx, msg); err != nil {
			if errors.Is(err, notifier.ErrNotImplemented) {
				j.Logger.Warn("order notification not delivered", "event", msg.Event, "reason", err)
				continue
			}
			j.Queue.Requeue(msgs[i:]...)
			return fmt.Errorf("deliver %s: %w", msg.Event, err)
		}
		sent++
	}
	j.Logger.Debug("order notifications sent", "count", sent)
	return nil
}
