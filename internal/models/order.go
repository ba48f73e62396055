package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderStatus is the fulfilment state of an order
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "PENDING"
	OrderStatusConfirmed      OrderStatus = "CONFIRMED"
	OrderStatusPreparing      OrderStatus = "PREPARING"
	OrderStatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	OrderStatusDelivered      OrderStatus = "DELIVERED"
	OrderStatusCancelled      OrderStatus = "CANCELLED"
)

// orderTransitions lists, per status, the statuses an order may move to next.
// DELIVERED and CANCELLED are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:        {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:      {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing:      {OrderStatusOutForDelivery, OrderStatusCancelled},
	OrderStatusOutForDelivery: {OrderStatusDelivered},
	OrderStatusDelivered:      {},
	OrderStatusCancelled:      {},
}

// IsValid reports whether s is a known order status
func (s OrderStatus) IsValid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// IsTerminal reports whether no further transition is allowed from s
func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

// CanTransitionTo reports whether an order in status s may move to next
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from s
func (s OrderStatus) NextStatuses() []OrderStatus {
	next := orderTransitions[s]
	out := make([]OrderStatus, len(next))
	copy(out, next)
	return out
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

type PaymentMethod string

const PaymentMethodCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"

type Order struct {
	ID              string        `gorm:"type:varchar(36);primaryKey" json:"id"`
	CustomerID      string        `gorm:"type:varchar(36);not null;index" json:"customerId"`
	TotalPrice      float64       `gorm:"not null" json:"totalPrice"`
	DeliveryAddress string        `gorm:"not null" json:"deliveryAddress"`
	Status          OrderStatus   `gorm:"type:varchar(24);not null;default:PENDING;index" json:"status"`
	PaymentStatus   PaymentStatus `gorm:"type:varchar(16);not null;default:PENDING" json:"paymentStatus"`
	PaymentMethod   PaymentMethod `gorm:"type:varchar(24);not null;default:CASH_ON_DELIVERY" json:"paymentMethod"`
	CreatedAt       time.Time     `gorm:"index" json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`

	Customer   *User                `gorm:"constraint:OnDelete:CASCADE" json:"customer,omitempty"`
	OrderItems []OrderItem          `gorm:"constraint:OnDelete:CASCADE" json:"orderItems"`
	History    []OrderStatusHistory `json:"history,omitempty"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// OrderItem keeps the meal price at order time. MealID becomes null when the meal is deleted.
type OrderItem struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrderID   string    `gorm:"type:varchar(36);not null;index" json:"orderId"`
	MealID    *string   `gorm:"type:varchar(36);index" json:"mealId"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Price     float64   `gorm:"not null" json:"price"`
	CreatedAt time.Time `json:"createdAt"`

	Meal *Meal `gorm:"constraint:OnDelete:SET NULL" json:"meal,omitempty"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// OrderStatusHistory records every status an order has been moved to
type OrderStatusHistory struct {
	ID         string       `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrderID    string       `gorm:"type:varchar(36);not null;index" json:"orderId"`
	FromStatus *OrderStatus `gorm:"type:varchar(24)" json:"fromStatus"`
	ToStatus   OrderStatus  `gorm:"type:varchar(24);not null" json:"toStatus"`
	ChangedBy  string       `gorm:"type:varchar(36);not null" json:"changedBy"`
	CreatedAt  time.Time    `json:"createdAt"`
}

func (OrderStatusHistory) TableName() string {
	return "order_status_history"
}

func (h *OrderStatusHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}
