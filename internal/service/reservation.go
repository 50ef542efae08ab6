package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/brinaregal/brina/internal/notifier"
	"github.com/brinaregal/brina/internal/repository"
)

const defaultPartySize = 2

// ReservationInput 描述一次订座请求。
type ReservationInput struct {
	Name         string
	Phone        string
	PartySize    int
	Date         string // YYYY-MM-DD in the restaurant's time zone
	Time         string // one of Slots()
	Instructions string
	UserID       *int64
}

// ReservationService 处理餐桌预订；预订以 kind=reservation 的订单保存。
type ReservationService interface {
	Slots() []string
	Create(ctx context.Context, input ReservationInput) (*OrderView, error)
}

type reservationService struct {
	orders     repository.OrderRepository
	restaurant RestaurantService
	notifier   notifier.Service
	events     EventPublisher
	logger     *slog.Logger
	now        func() time.Time
}

func NewReservationService(orders repository.OrderRepository, restaurant RestaurantService, n notifier.Service, events EventPublisher, logger *slog.Logger) ReservationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &reservationService{
		orders:     orders,
		restaurant: restaurant,
		notifier:   n,
		events:     events,
		logger:     logger.With("component", "reservation"),
		now:        time.Now,
	}
}

func (s *reservationService) Slots() []string {
	return s.restaurant.Slots()
}

func (s *reservationService) Create(ctx context.Context, input ReservationInput) (*OrderView, error) {
	name, ok := cleanName(input.Name)
	if !ok {
		return nil, ErrInvalidName
	}
	phone, ok := normalizePhone(input.Phone)
	if !ok {
		return nil, ErrInvalidPhone
	}
	size := input.PartySize
	if size == 0 {
		size = defaultPartySize
	}
	if size < 1 || size > s.restaurant.MaxPartySize() {
		return nil, ErrInvalidPartySize
	}

	loc := s.restaurant.Location()
	now := s.now().In(loc)
	date, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(input.Date), loc)
	if err != nil {
		return nil, ErrInvalidDate
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if date.Before(today) {
		return nil, ErrInvalidDate
	}
	slot := strings.TrimSpace(input.Time)
	if !s.restaurant.ValidSlot(slot) {
		return nil, ErrInvalidTimeSlot
	}
	if date.Equal(today) {
		at, _ := time.ParseInLocation("2006-01-02 15:04", date.Format("2006-01-02")+" "+slot, loc)
		if !at.After(now) {
			return nil, ErrInvalidTimeSlot
		}
	}

	order := &repository.Order{
		Kind:            string(OrderKindReservation),
		UserID:          input.UserID,
		CustomerName:    name,
		Phone:           phone,
		Total:           0,
		Status:          string(InitialOrderStatus(OrderKindReservation)),
		PartySize:       size,
		ReservationDate: date.Format("2006-01-02"),
		ReservationTime: slot,
		Instructions:    stripTags(input.Instructions),
		CreatedAt:       now.Unix(),
		UpdatedAt:       now.Unix(),
	}
	created, err := createWithReference(ctx, s.orders, order)
	if err != nil {
		return nil, err
	}

	view := toOrderView(created)
	announceOrder(ctx, s.logger, s.notifier, s.events, EventReservationCreated, created, view, now)
	s.logger.InfoContext(ctx, "reservation created", "reference", created.Reference, "date", created.ReservationDate, "time", created.ReservationTime, "party_size", size)
	return &view, nil
}
