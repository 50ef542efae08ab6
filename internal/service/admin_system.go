// 文件路径: internal/service/admin_system.go
// 模块说明: 后台系统状态：版本、运行时长、主机资源与队列积压。
package service

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/brinaregal/brina/internal/monitor"
)

// QueueStats 提供通知队列积压指标，避免 async 包循环依赖。
type QueueStats interface {
	Pending() int
}

// SubscriberStats reports live feed listeners.
type SubscriberStats interface {
	Subscribers() int
}

// HostCollector samples host resources.
type HostCollector interface {
	Collect() monitor.HostStats
}

// AdminSystemOptions 注入运行时依赖。
type AdminSystemOptions struct {
	Version          string
	Environment      string
	StartedAt        time.Time
	Queue            QueueStats
	Feed             SubscriberStats
	Host             HostCollector
	SchemaVersion    func(ctx context.Context) (int64, error)
	Now              func() time.Time
	HostnameResolver func() (string, error)
}

// AdminSystemStatus 描述管理后台系统状态返回字段。
type AdminSystemStatus struct {
	Version             string            `json:"version"`
	GoVersion           string            `json:"go_version"`
	Environment         string            `json:"environment"`
	Hostname            string            `json:"hostname"`
	StartedAt           time.Time         `json:"started_at"`
	Uptime              int64             `json:"uptime"`
	SchemaVersion       int64             `json:"schema_version"`
	NotificationBacklog int               `json:"notification_backlog"`
	LiveSubscribers     int               `json:"live_subscribers"`
	Goroutines          int               `json:"goroutines"`
	Host                monitor.HostStats `json:"host"`
}

// AdminSystemService 汇总后台系统状态。
type AdminSystemService interface {
	SystemStatus(ctx context.Context) (AdminSystemStatus, error)
}

type adminSystemService struct {
	opts AdminSystemOptions
}

func NewAdminSystemService(opts AdminSystemOptions) AdminSystemService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.StartedAt.IsZero() {
		opts.StartedAt = opts.Now()
	}
	if opts.HostnameResolver == nil {
		opts.HostnameResolver = os.Hostname
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	return &adminSystemService{opts: opts}
}

func (s *adminSystemService) SystemStatus(ctx context.Context) (AdminSystemStatus, error) {
	now := s.opts.Now()
	status := AdminSystemStatus{
		Version:     s.opts.Version,
		GoVersion:   runtime.Version(),
		Environment: s.opts.Environment,
		StartedAt:   s.opts.StartedAt.UTC(),
		Uptime:      int64(now.Sub(s.opts.StartedAt).Seconds()),
		Goroutines:  runtime.NumGoroutine(),
	}
	if host, err := s.opts.HostnameResolver(); err == nil {
		status.Hostname = host
	}
	if s.opts.Queue != nil {
		status.NotificationBacklog = s.opts.Queue.Pending()
	}
	if s.opts.Feed != nil {
		status.LiveSubscribers = s.opts.Feed.Subscribers()
	}
	if s.opts.Host != nil {
		status.Host = s.opts.Host.Collect()
	}
	if s.opts.SchemaVersion != nil {
		version, err := s.opts.SchemaVersion(ctx)
		if err != nil {
			return status, err
		}
		status.SchemaVersion = version
	}
	return status, nil
}
