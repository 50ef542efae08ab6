// 文件路径: internal/async/notification_queue.go
// 模块说明: 订单通知的内存队列，由定时任务批量投递。
package async

import (
	"maps"
	"sync"

	"github.com/brinaregal/brina/internal/notifier"
)

// NotificationQueue buffers outbound order notifications for background dispatch.
type NotificationQueue struct {
	mu       sync.Mutex
	messages []notifier.Message
}

// NewNotificationQueue returns an empty notification queue instance.
func NewNotificationQueue() *NotificationQueue {
	return &NotificationQueue{messages: make([]notifier.Message, 0)}
}

// Enqueue appends a pending message.
func (q *NotificationQueue) Enqueue(msg notifier.Message) {
	if q == nil || msg.Event == "" {
		return
	}
	q.mu.Lock()
	q.messages = append(q.messages, cloneMessage(msg))
	q.mu.Unlock()
}

// Drain returns all pending messages and clears the buffer.
func (q *NotificationQueue) Drain() []notifier.Message {
	if q == nil {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	drained := q.messages
	q.messages = make([]notifier.Message, 0)
	return drained
}

// Pending reports buffered messages.
func (q *NotificationQueue) Pending() int {
	if q == nil {
		return 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.messages)
}

// Requeue puts undelivered messages back at the head of the queue, keeping their order.
func (q *NotificationQueue) Requeue(msgs ...notifier.Message) {
	if q == nil || len(msgs) == 0 {
		return
	}
	head := make([]notifier.Message, 0, len(msgs)+len(q.messages))
	for _, msg := range msgs {
		if msg.Event != "" {
			head = append(head, cloneMessage(msg))
		}
	}
	q.mu.Lock()
	q.messages = append(head, q.messages...)
	q.mu.Unlock()
}

func cloneMessage(msg notifier.Message) notifier.Message {
	cloned := msg
	if len(msg.Variables) > 0 {
		cloned.Variables = maps.Clone(msg.Variables)
	}
	return cloned
}
