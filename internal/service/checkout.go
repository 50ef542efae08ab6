// 文件路径: internal/service/checkout.go
// 模块说明: 下单流程。价格一律按当前菜单重新计算，客户端提交的价格被忽略。
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/brinaregal/brina/internal/async"
	"github.com/brinaregal/brina/internal/cart"
	"github.com/brinaregal/brina/internal/notifier"
	"github.com/brinaregal/brina/internal/repository"
	"github.com/brinaregal/brina/internal/security"
)

const (
	checkoutLimit     = 10
	checkoutWindow    = 10 * time.Minute
	maxReferenceTries = 3
)

// CheckoutItem is an explicit line submitted instead of a cart ID.
type CheckoutItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// CheckoutInput 描述下单请求。
type CheckoutInput struct {
	CartID          string
	Items           []CheckoutItem
	CustomerName    string
	Phone           string
	Place           string
	PaymentProofURL string
	Instructions    string
	UserID          *int64
	IP              string
}

// CheckoutService 负责下单与订单查询。
type CheckoutService interface {
	Checkout(ctx context.Context, input CheckoutInput) (*OrderView, error)
	Track(ctx context.Context, reference, phone string) (*OrderView, error)
}

// CheckoutDeps 注入下单流程需要的协作者。
type CheckoutDeps struct {
	Orders     repository.OrderRepository
	Products   repository.ProductRepository
	Users      repository.UserRepository
	Carts      CartService
	Restaurant RestaurantService
	Notifier   notifier.Service
	Events     EventPublisher
	Rate       *security.RateLimiter
	Logger     *slog.Logger
}

type checkoutService struct {
	deps   CheckoutDeps
	logger *slog.Logger
	now    func() time.Time
}

func NewCheckoutService(deps CheckoutDeps) CheckoutService {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &checkoutService{deps: deps, logger: logger.With("component", "checkout"), now: time.Now}
}

func (s *checkoutService) Checkout(ctx context.Context, input CheckoutInput) (*OrderView, error) {
	phone, ok := normalizePhone(input.Phone)
	if !ok {
		return nil, ErrInvalidPhone
	}
	zone, ok := s.deps.Restaurant.Zone(input.Place)
	if !ok {
		return nil, ErrInvalidPlace
	}
	proof := strings.TrimSpace(input.PaymentProofURL)
	if zone.RequiresProof && proof == "" {
		return nil, ErrPaymentProofRequired
	}

	if s.deps.Rate != nil && input.IP != "" {
		res, err := s.deps.Rate.Allow(ctx, "checkout:"+input.IP, checkoutLimit, checkoutWindow)
		if err != nil {
			return nil, err
		}
		if !res.Allowed {
			return nil, ErrRateLimited
		}
	}

	lines, err := s.requestedLines(ctx, input)
	if err != nil {
		return nil, err
	}
	items, total, err := s.priceLines(ctx, lines)
	if err != nil {
		return nil, err
	}

	name := stripTags(input.CustomerName)
	if name == "" && input.UserID != nil && s.deps.Users != nil {
		if user, err := s.deps.Users.FindByID(ctx, *input.UserID); err == nil {
			name = user.Name
		}
	}

	now := s.now()
	order := &repository.Order{
		Kind:            string(OrderKindDelivery),
		UserID:          input.UserID,
		CustomerName:    name,
		Phone:           phone,
		Items:           items,
		Total:           total,
		Place:           zone.Code,
		PaymentProofURL: proof,
		Status:          string(InitialOrderStatus(OrderKindDelivery)),
		Instructions:    stripTags(input.Instructions),
		CreatedAt:       now.Unix(),
		UpdatedAt:       now.Unix(),
	}
	created, err := createWithReference(ctx, s.deps.Orders, order)
	if err != nil {
		return nil, err
	}

	// 只有按购物车下单时才清空购物车
	if len(input.Items) == 0 && input.CartID != "" && s.deps.Carts != nil {
		if _, err := s.deps.Carts.Clear(ctx, input.CartID); err != nil {
			s.logger.WarnContext(ctx, "clear cart after checkout failed", "cart_id", input.CartID, "error", err)
		}
	}

	view := toOrderView(created)
	s.announce(ctx, EventOrderCreated, created, view)
	s.logger.InfoContext(ctx, "order created", "reference", created.Reference, "total", created.Total, "place", created.Place)
	return &view, nil
}

// Track returns the order only when phone matches the one used at checkout.
func (s *checkoutService) Track(ctx context.Context, reference, phone string) (*OrderView, error) {
	reference = strings.TrimSpace(reference)
	normalized, ok := normalizePhone(phone)
	if reference == "" || !ok {
		return nil, ErrNotFound
	}
	order, err := s.deps.Orders.FindByReference(ctx, reference)
	if err != nil {
		return nil, translateNotFound(err)
	}
	if order.Phone != normalized {
		return nil, ErrNotFound
	}
	view := toOrderView(order)
	return &view, nil
}

func (s *checkoutService) requestedLines(ctx context.Context, input CheckoutInput) ([]cart.Item, error) {
	var c cart.Cart
	if len(input.Items) > 0 {
		items := make([]cart.Item, 0, len(input.Items))
		for _, it := range input.Items {
			if it.Quantity < 0 || it.Quantity > MaxLineQuantity {
				return nil, ErrInvalidQuantity
			}
			items = append(items, cart.Item{ProductID: it.ProductID, Quantity: it.Quantity})
		}
		c.Load(items)
	} else if input.CartID != "" && s.deps.Carts != nil {
		view, err := s.deps.Carts.Get(ctx, input.CartID)
		if err != nil {
			return nil, err
		}
		if len(view.Removed) > 0 {
			return nil, ErrProductUnavailable
		}
		for _, line := range view.Items {
			c.AddQuantity(cart.Product{ID: line.ProductID}, line.Quantity)
		}
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}
	return c.Items, nil
}

func (s *checkoutService) priceLines(ctx context.Context, lines []cart.Item) ([]repository.OrderItem, int64, error) {
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	products, err := s.deps.Products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	items := make([]repository.OrderItem, 0, len(lines))
	var total int64
	for _, line := range lines {
		if line.Quantity > MaxLineQuantity {
			return nil, 0, ErrInvalidQuantity
		}
		p, ok := products[line.ProductID]
		if !ok || !p.Available {
			return nil, 0, fmt.Errorf("%w: %d", ErrProductUnavailable, line.ProductID)
		}
		items = append(items, repository.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.Price,
			Quantity:  line.Quantity,
			ImageURL:  p.ImageURL,
		})
		total += p.Price * int64(line.Quantity)
	}
	return items, total, nil
}

func (s *checkoutService) announce(ctx context.Context, event string, order *repository.Order, view OrderView) {
	announceOrder(ctx, s.logger, s.deps.Notifier, s.deps.Events, event, order, view, s.now())
}

func announceOrder(ctx context.Context, logger *slog.Logger, n notifier.Service, events EventPublisher, event string, order *repository.Order, view OrderView, at time.Time) {
	if n != nil {
		if err := n.Send(ctx, orderMessage(event, order, at)); err != nil && !errors.Is(err, notifier.ErrNotImplemented) {
			logger.WarnContext(ctx, "order notification failed", "reference", order.Reference, "event", event, "error", err)
		}
	}
	if events != nil {
		feedType := event
		if event == EventReservationCreated {
			feedType = EventOrderCreated
		}
		events.Publish(async.Event{Type: feedType, Reference: order.Reference, Payload: view, Occurred: at.UTC()})
	}
}

func createWithReference(ctx context.Context, orders repository.OrderRepository, order *repository.Order) (*repository.Order, error) {
	var lastErr error
	for i := 0; i < maxReferenceTries; i++ {
		order.Reference = newOrderReference()
		created, err := orders.Create(ctx, order)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, repository.ErrConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("allocate order reference: %w", lastErr)
}
