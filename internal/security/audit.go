// 文件路径: internal/security/audit.go
// 模块说明: 记录登录、注册、订单审核等安全相关事件。
package security

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// Event kinds recorded by the services.
const (
	EventLoginSuccess   = "auth.login.success"
	EventLoginFailure   = "auth.login.failure"
	EventRegister       = "auth.register"
	EventAdminCreated   = "admin.created"
	EventOrderConfirmed = "order.confirmed"
	EventOrderRejected  = "order.rejected"
	EventSettingsSaved  = "admin.settings.saved"
	EventUserStatus     = "admin.user.status"
)

// Event 表示安全相关的行为。
type Event struct {
	Kind      string
	ActorID   string
	IP        string
	UserAgent string
	Metadata  map[string]any
	Occurred  time.Time
}

// Recorder 记录安全事件，供后续分析。
type Recorder interface {
	Record(ctx context.Context, event Event)
}

// LoggerRecorder 将审计事件写入 slog.Logger。
type LoggerRecorder struct {
	logger *slog.Logger
}

// NewLoggerRecorder 返回记录器，写入指定 logger（为空时丢弃）。
func NewLoggerRecorder(logger *slog.Logger) *LoggerRecorder {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LoggerRecorder{logger: logger.With("component", "audit")}
}

// Record 实现 Recorder。
func (r *LoggerRecorder) Record(ctx context.Context, event Event) {
	if r == nil || r.logger == nil {
		return
	}
	if event.Occurred.IsZero() {
		event.Occurred = time.Now().UTC()
	}
	attrs := []any{
		"kind", event.Kind,
		"actor_id", event.ActorID,
		"ip", event.IP,
		"occurred", event.Occurred.Format(time.RFC3339Nano),
	}
	if event.UserAgent != "" {
		attrs = append(attrs, "ua", event.UserAgent)
	}
	if len(event.Metadata) > 0 {
		attrs = append(attrs, "metadata", event.Metadata)
	}
	r.logger.InfoContext(ctx, "audit event", attrs...)
}
