// 文件路径: internal/service/admin_order.go
// 模块说明: 后台订单管理：列表、确认与拒绝，状态变更同时推送实时事件并记录审计。
package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/brinaregal/brina/internal/notifier"
	"github.com/brinaregal/brina/internal/repository"
	"github.com/brinaregal/brina/internal/security"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// AdminOrderFilter 对应后台订单列表的查询参数。
type AdminOrderFilter struct {
	Status   string
	Kind     string
	Keyword  string
	Page     int
	PageSize int
}

// AdminOrderService 处理后台订单审核。
type AdminOrderService interface {
	List(ctx context.Context, filter AdminOrderFilter) (*OrderPage, error)
	Get(ctx context.Context, id int64) (*OrderView, error)
	GetByReference(ctx context.Context, reference string) (*OrderView, error)
	Confirm(ctx context.Context, id int64, actor string) (*OrderView, error)
	Reject(ctx context.Context, id int64, reason, actor string) (*OrderView, error)
}

type adminOrderService struct {
	orders   repository.OrderRepository
	notifier notifier.Service
	events   EventPublisher
	audit    security.Recorder
	logger   *slog.Logger
	now      func() time.Time
}

func NewAdminOrderService(orders repository.OrderRepository, n notifier.Service, events EventPublisher, audit security.Recorder, logger *slog.Logger) AdminOrderService {
	if logger == nil {
		logger = slog.Default()
	}
	return &adminOrderService{
		orders:   orders,
		notifier: n,
		events:   events,
		audit:    audit,
		logger:   logger.With("component", "admin_order"),
		now:      time.Now,
	}
}

func (s *adminOrderService) List(ctx context.Context, filter AdminOrderFilter) (*OrderPage, error) {
	limit, offset := paginate(filter.Page, filter.PageSize)
	repoFilter := repository.OrderFilter{
		Keyword: strings.TrimSpace(filter.Keyword),
		Limit:   limit,
		Offset:  offset,
	}
	if status := OrderStatus(strings.ToLower(strings.TrimSpace(filter.Status))); status.Valid() {
		repoFilter.Status = string(status)
	}
	if kind := OrderKind(strings.ToLower(strings.TrimSpace(filter.Kind))); kind.Valid() {
		repoFilter.Kind = string(kind)
	}

	orders, err := s.orders.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.orders.Count(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	return &OrderPage{Orders: toOrderViews(orders), Total: total}, nil
}

func (s *adminOrderService) Get(ctx context.Context, id int64) (*OrderView, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	view := toOrderView(order)
	return &view, nil
}

func (s *adminOrderService) GetByReference(ctx context.Context, reference string) (*OrderView, error) {
	order, err := s.orders.FindByReference(ctx, reference)
	if err != nil {
		return nil, translateNotFound(err)
	}
	view := toOrderView(order)
	return &view, nil
}

func (s *adminOrderService) Confirm(ctx context.Context, id int64, actor string) (*OrderView, error) {
	return s.transition(ctx, id, OrderStatusConfirmed, "", actor)
}

func (s *adminOrderService) Reject(ctx context.Context, id int64, reason, actor string) (*OrderView, error) {
	return s.transition(ctx, id, OrderStatusRejected, stripTags(reason), actor)
}

func (s *adminOrderService) transition(ctx context.Context, id int64, next OrderStatus, reason, actor string) (*OrderView, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	current := OrderStatus(order.Status)
	if _, err := current.Transition(next); err != nil {
		return nil, err
	}

	now := s.now()
	ok, err := s.orders.UpdateStatus(ctx, order.ID, string(current), string(next), reason, now.Unix())
	if err != nil {
		return nil, err
	}
	if !ok {
		// another admin decided first
		return nil, ErrInvalidTransition
	}
	order.Status = string(next)
	order.StatusReason = reason
	order.UpdatedAt = now.Unix()

	kind := security.EventOrderConfirmed
	if next == OrderStatusRejected {
		kind = security.EventOrderRejected
	}
	if s.audit != nil {
		s.audit.Record(ctx, security.Event{
			Kind:    kind,
			ActorID: actor,
			Metadata: map[string]any{
				"order_id":  order.ID,
				"reference": order.Reference,
				"from":      string(current),
				"reason":    reason,
			},
			Occurred: now.UTC(),
		})
	}

	view := toOrderView(order)
	announceOrder(ctx, s.logger, s.notifier, s.events, EventOrderStatusChanged, order, view, now)
	s.logger.InfoContext(ctx, "order status changed", "reference", order.Reference, "from", current, "to", next, "actor", actor)
	return &view, nil
}

func paginate(page, size int) (limit, offset int) {
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	if page < 1 {
		page = 1
	}
	return size, (page - 1) * size
}
