package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brinaregal/brina/internal/async"
	"github.com/brinaregal/brina/internal/notifier"
	"github.com/brinaregal/brina/internal/repository"
)

// Event names shared by the live feed and outbound notifications.
const (
	EventOrderCreated       = "order.created"
	EventReservationCreated = "reservation.created"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderStale         = "order.stale"
)

// EventPublisher receives live order events; *async.EventHub satisfies it.
type EventPublisher interface {
	Publish(e async.Event)
}

// OrderItemView is one frozen line of an order.
type OrderItemView struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
	ImageURL  string `json:"image_url,omitempty"`
}

// OrderView is the JSON shape of an order or reservation.
type OrderView struct {
	ID              int64           `json:"id"`
	Reference       string          `json:"reference"`
	Kind            OrderKind       `json:"kind"`
	Status          OrderStatus     `json:"status"`
	StatusReason    string          `json:"status_reason,omitempty"`
	UserID          *int64          `json:"user_id,omitempty"`
	CustomerName    string          `json:"customer_name,omitempty"`
	Phone           string          `json:"phone"`
	Items           []OrderItemView `json:"items"`
	Total           int64           `json:"total"`
	Place           string          `json:"place,omitempty"`
	PaymentProofURL string          `json:"payment_proof_url,omitempty"`
	PartySize       int             `json:"party_size,omitempty"`
	ReservationDate string          `json:"reservation_date,omitempty"`
	ReservationTime string          `json:"reservation_time,omitempty"`
	Instructions    string          `json:"instructions,omitempty"`
	CreatedAt       int64           `json:"created_at"`
	UpdatedAt       int64           `json:"updated_at"`
}

// OrderPage is a paginated order listing.
type OrderPage struct {
	Orders []OrderView `json:"orders"`
	Total  int64       `json:"total"`
}

func toOrderView(o *repository.Order) OrderView {
	items := make([]OrderItemView, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemView{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Subtotal:  it.UnitPrice * int64(it.Quantity),
			ImageURL:  it.ImageURL,
		})
	}
	return OrderView{
		ID:              o.ID,
		Reference:       o.Reference,
		Kind:            OrderKind(o.Kind),
		Status:          OrderStatus(o.Status),
		StatusReason:    o.StatusReason,
		UserID:          o.UserID,
		CustomerName:    o.CustomerName,
		Phone:           o.Phone,
		Items:           items,
		Total:           o.Total,
		Place:           o.Place,
		PaymentProofURL: o.PaymentProofURL,
		PartySize:       o.PartySize,
		ReservationDate: o.ReservationDate,
		ReservationTime: o.ReservationTime,
		Instructions:    o.Instructions,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func toOrderViews(orders []*repository.Order) []OrderView {
	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, toOrderView(o))
	}
	return views
}

// newOrderReference returns "BR-" followed by 8 uppercase hex characters.
func newOrderReference() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "BR-" + strings.ToUpper(raw[:8])
}

func orderMessage(event string, o *repository.Order, at time.Time) notifier.Message {
	var subject, body string
	switch event {
	case EventReservationCreated:
		subject = fmt.Sprintf("Nouvelle réservation %s", o.Reference)
		body = fmt.Sprintf("%s, %d personne(s), le %s à %s. Tél: %s", o.CustomerName, o.PartySize, o.ReservationDate, o.ReservationTime, o.Phone)
	case EventOrderStatusChanged:
		subject = fmt.Sprintf("Commande %s: %s", o.Reference, o.Status)
		body = o.StatusReason
	case EventOrderStale:
		subject = fmt.Sprintf("Commande %s en attente", o.Reference)
		body = fmt.Sprintf("La commande %s (%d FCFA) attend toujours une validation. Tél: %s", o.Reference, o.Total, o.Phone)
	default:
		subject = fmt.Sprintf("Nouvelle commande %s", o.Reference)
		body = fmt.Sprintf("%d FCFA, livraison: %s. Tél: %s", o.Total, o.Place, o.Phone)
	}
	return notifier.Message{
		Event:   event,
		Subject: subject,
		Body:    body,
		Variables: map[string]any{
			"reference": o.Reference,
			"kind":      o.Kind,
			"status":    o.Status,
			"total":     o.Total,
			"phone":     o.Phone,
			"place":     o.Place,
		},
		CreatedAt: at.UTC(),
	}
}
