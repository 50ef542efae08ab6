// 文件路径: internal/service/admin_stat.go
// 模块说明: 后台首页的统计卡片。营业额只统计已确认订单，日期边界按餐厅时区计算。
package service

import (
	"context"
	"math"
	"time"

	"github.com/brinaregal/brina/internal/repository"
)

// AdminDashboardStats aggregates KPI tiles for the admin home.
type AdminDashboardStats struct {
	OrdersToday          int64   `json:"orders_today"`
	PendingOrders        int64   `json:"pending_orders"`
	PendingReservations  int64   `json:"pending_reservations"`
	UpcomingReservations int64   `json:"upcoming_reservations"`
	RevenueToday         int64   `json:"revenue_today"`
	RevenueMonth         int64   `json:"revenue_month"`
	ProductCount         int64   `json:"product_count"`
	CustomerCount        int64   `json:"customer_count"`
	PendingReviews       int64   `json:"pending_reviews"`
	AverageRating        float64 `json:"average_rating"`
}

// AdminStatService exposes analytics for admin dashboards.
type AdminStatService interface {
	Dashboard(ctx context.Context) (*AdminDashboardStats, error)
}

type adminStatService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	users    repository.UserRepository
	reviews  repository.ReviewRepository
	location *time.Location
	now      func() time.Time
}

func NewAdminStatService(store repository.Store, restaurant RestaurantService) AdminStatService {
	loc := time.UTC
	if restaurant != nil && restaurant.Location() != nil {
		loc = restaurant.Location()
	}
	return &adminStatService{
		orders:   store.Orders(),
		products: store.Products(),
		users:    store.Users(),
		reviews:  store.Reviews(),
		location: loc,
		now:      time.Now,
	}
}

func (s *adminStatService) Dashboard(ctx context.Context) (*AdminDashboardStats, error) {
	now := s.now().In(s.location)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
	dayEnd := dayStart.AddDate(0, 0, 1)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.location)
	monthEnd := monthStart.AddDate(0, 1, 0)

	var (
		stats AdminDashboardStats
		err   error
	)
	if stats.OrdersToday, err = s.orders.Count(ctx, repository.OrderFilter{
		Kind:        string(OrderKindDelivery),
		CreatedFrom: dayStart.Unix(),
		CreatedTo:   dayEnd.Unix(),
	}); err != nil {
		return nil, err
	}
	if stats.PendingOrders, err = s.orders.Count(ctx, repository.OrderFilter{Status: string(OrderStatusPending)}); err != nil {
		return nil, err
	}
	if stats.PendingReservations, err = s.orders.Count(ctx, repository.OrderFilter{Status: string(OrderStatusReservation)}); err != nil {
		return nil, err
	}
	if stats.UpcomingReservations, err = s.orders.CountReservationsFrom(ctx, dayStart.Format("2006-01-02"),
		[]string{string(OrderStatusReservation), string(OrderStatusConfirmed)}); err != nil {
		return nil, err
	}
	if stats.RevenueToday, err = s.orders.SumTotal(ctx, string(OrderStatusConfirmed), dayStart.Unix(), dayEnd.Unix()); err != nil {
		return nil, err
	}
	if stats.RevenueMonth, err = s.orders.SumTotal(ctx, string(OrderStatusConfirmed), monthStart.Unix(), monthEnd.Unix()); err != nil {
		return nil, err
	}
	if stats.ProductCount, err = s.products.Count(ctx); err != nil {
		return nil, err
	}
	customers := false
	if stats.CustomerCount, err = s.users.CountFiltered(ctx, repository.UserSearchFilter{IsAdmin: &customers}); err != nil {
		return nil, err
	}
	if stats.PendingReviews, err = s.reviews.Count(ctx, repository.ReviewFilter{Status: ReviewStatusPending}); err != nil {
		return nil, err
	}
	summary, err := s.reviews.Summary(ctx, ReviewStatusApproved)
	if err != nil {
		return nil, err
	}
	stats.AverageRating = math.Round(summary.Average*10) / 10
	return &stats, nil
}
