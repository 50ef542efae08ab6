// 文件路径: internal/service/order_status.go
// 模块说明: 订单状态机。外卖订单从 pending 开始，预订从 reservation 开始，二者都只能变为 confirmed 或 rejected。
package service

// OrderKind 区分外卖订单与餐桌预订。
type OrderKind string

const (
	OrderKindDelivery    OrderKind = "delivery"
	OrderKindReservation OrderKind = "reservation"
)

// Valid reports whether k is a known kind.
func (k OrderKind) Valid() bool {
	return k == OrderKindDelivery || k == OrderKindReservation
}

// OrderStatus is stored as text in the orders table.
type OrderStatus string

const (
	OrderStatusPending     OrderStatus = "pending"
	OrderStatusReservation OrderStatus = "reservation"
	OrderStatusConfirmed   OrderStatus = "confirmed"
	OrderStatusRejected    OrderStatus = "rejected"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:     {OrderStatusConfirmed, OrderStatusRejected},
	OrderStatusReservation: {OrderStatusConfirmed, OrderStatusRejected},
}

// InitialOrderStatus returns the status a new order of kind k starts in.
func InitialOrderStatus(k OrderKind) OrderStatus {
	if k == OrderKindReservation {
		return OrderStatusReservation
	}
	return OrderStatusPending
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusReservation, OrderStatusConfirmed, OrderStatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusConfirmed || s == OrderStatusRejected
}

// Awaiting reports whether the order still waits for an admin decision.
func (s OrderStatus) Awaiting() bool {
	return s == OrderStatusPending || s == OrderStatusReservation
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transition validates s -> next.
func (s OrderStatus) Transition(next OrderStatus) (OrderStatus, error) {
	if !s.CanTransitionTo(next) {
		return s, ErrInvalidTransition
	}
	return next, nil
}

// LabelKey is the i18n key of the status label.
func (s OrderStatus) LabelKey() string {
	return "order.status." + string(s)
}

func (s OrderStatus) String() string { return string(s) }
