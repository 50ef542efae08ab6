// 文件路径: internal/notifier/notifier.go
// 模块说明: 订单通知的统一出口，默认仅写日志，配置 webhook 后推送到外部系统。
package notifier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// Message 描述一条待投递的通知。
type Message struct {
	Event     string         `json:"event"`
	Subject   string         `json:"subject"`
	Body      string         `json:"body"`
	Variables map[string]any `json:"variables,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Service 提供订单流程使用的统一通知能力。
type Service interface {
	Send(ctx context.Context, msg Message) error
}

// ErrNotImplemented 表示未配置真实通知通道。
var ErrNotImplemented = errors.New("notifier: not implemented")

// LoggerService 将通知意图写入日志，适用于测试或未配置 webhook 的部署。
type LoggerService struct {
	logger *slog.Logger
}

// NewLoggerService 创建仅记录日志的通知服务。
func NewLoggerService(logger *slog.Logger) *LoggerService {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LoggerService{logger: logger}
}

// Send 记录通知请求。
func (s *LoggerService) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.Event) == "" {
		return fmt.Errorf("notification event is required / 通知事件不能为空")
	}
	s.logger.InfoContext(ctx, "order notification", "event", msg.Event, "subject", msg.Subject)
	return ErrNotImplemented
}
