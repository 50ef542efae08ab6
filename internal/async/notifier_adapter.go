// 文件路径: internal/async/notifier_adapter.go
package async

import (
	"context"
	"fmt"
	"time"

	"github.com/brinaregal/brina/internal/notifier"
)

// QueueNotifier implements notifier.Service by enqueueing messages for background workers.
type QueueNotifier struct {
	queue *NotificationQueue
}

// NewQueueNotifier wraps a notification queue to satisfy notifier.Service for request flows.
func NewQueueNotifier(queue *NotificationQueue) notifier.Service {
	return &QueueNotifier{queue: queue}
}

// Send enqueues the message for asynchronous delivery.
func (n *QueueNotifier) Send(_ context.Context, msg notifier.Message) error {
	if n == nil || n.queue == nil {
		return fmt.Errorf("notification queue unavailable / 通知队列不可用")
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	n.queue.Enqueue(msg)
	return nil
}
