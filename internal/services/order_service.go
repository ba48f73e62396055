package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/franciscosanchezn/gin-foodhub-api/internal/metrics"
	"github.com/franciscosanchezn/gin-foodhub-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CreateOrderInput is the payload for placing an order of a single meal
type CreateOrderInput struct {
	MealID   string `json:"mealId" binding:"required"`
	Quantity int    `json:"quantity"`
	Address  string `json:"address"`
}

// OrderService provides methods to place and track orders
type OrderService interface {
	// CreateOrder places an order and its item atomically, snapshotting the meal price
	CreateOrder(customerID string, input CreateOrderInput) (*models.Order, error)
	// ListOrders returns the orders visible to the requester, newest first
	ListOrders(requester *models.CurrentUser) ([]models.Order, error)
	// GetOrderDetails returns one order if the requester may see it
	GetOrderDetails(requester *models.CurrentUser, id string) (*models.Order, error)
	// UpdateOrderStatus moves an order to the next status when the transition is legal
	UpdateOrderStatus(requester *models.CurrentUser, id string, status string) (*models.Order, error)
}

type orderService struct {
	db *gorm.DB
}

func NewOrderService(db *gorm.DB) OrderService {
	return &orderService{db: db}
}

func (s *orderService) CreateOrder(customerID string, input CreateOrderInput) (*models.Order, error) {
	mealID := strings.TrimSpace(input.MealID)
	if mealID == "" {
		return nil, models.NewValidationError("Meal id is required")
	}
	if input.Quantity <= 0 {
		return nil, models.NewValidationError("Invalid quantity provided.")
	}
	address := strings.TrimSpace(input.Address)
	if address == "" {
		return nil, models.NewValidationError("Delivery address is required")
	}

	var meal models.Meal
	if err := s.db.Where("id = ?", mealID).First(&meal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Target meal not found")
		}
		return nil, models.NewInternalError("failed to load meal", err)
	}

	order := &models.Order{
		CustomerID:      customerID,
		TotalPrice:      LineTotal(meal.Price, input.Quantity),
		DeliveryAddress: address,
		Status:          models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusPending,
		PaymentMethod:   models.PaymentMethodCashOnDelivery,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		item := &models.OrderItem{
			OrderID:  order.ID,
			MealID:   &meal.ID,
			Quantity: input.Quantity,
			Price:    meal.Price,
		}
		if err := tx.Create(item).Error; err != nil {
			return err
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  models.OrderStatusPending,
			ChangedBy: customerID,
		}).Error
	})
	if err != nil {
		return nil, models.NewInternalError("failed to place order", err)
	}

	metrics.RecordOrderCreated()
	log.WithFields(logrus.Fields{
		"order_id":    order.ID,
		"customer_id": customerID,
		"total":       order.TotalPrice,
	}).Info("Order placed")
	return s.load(order.ID)
}

func (s *orderService) ListOrders(requester *models.CurrentUser) ([]models.Order, error) {
	if requester == nil {
		return nil, models.NewUnauthorizedError("Authentication required")
	}

	query := s.withRelations(s.db).Order("orders.created_at desc")
	switch requester.Role {
	case models.RoleAdmin:
	case models.RoleProvider:
		query = query.Where("orders.id IN (?)", s.providerOrderIDs(requester.ID))
	default:
		query = query.Where("orders.customer_id = ?", requester.ID)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, models.NewInternalError("failed to list orders", err)
	}
	return orders, nil
}

func (s *orderService) GetOrderDetails(requester *models.CurrentUser, id string) (*models.Order, error) {
	id = strings.TrimSpace(id)
	// "success" is what payment redirect pages hit by mistake
	if id == "" || id == "success" {
		return nil, models.NewValidationError("Invalid order id")
	}

	order, err := s.load(id)
	if err != nil {
		return nil, err
	}

	visible, err := s.canView(requester, order)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, models.NewForbiddenError("You do not have access to this order")
	}
	return order, nil
}

func (s *orderService) UpdateOrderStatus(requester *models.CurrentUser, id string, status string) (*models.Order, error) {
	if requester == nil {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if requester.Role != models.RoleAdmin && requester.Role != models.RoleProvider {
		return nil, models.NewForbiddenError("Only admins and providers can update order status")
	}

	next := models.OrderStatus(strings.ToUpper(strings.TrimSpace(status)))
	if !next.IsValid() {
		return nil, models.NewValidationError("Invalid order status")
	}

	var previous models.OrderStatus
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Where("id = ?", id).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Order not found")
			}
			return err
		}

		if requester.Role == models.RoleProvider {
			var count int64
			if err := tx.Model(&models.Order{}).
				Where("orders.id = ? AND orders.id IN (?)", order.ID, s.providerOrderIDs(requester.ID)).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return models.NewForbiddenError("You do not have access to this order")
			}
		}

		if !order.Status.CanTransitionTo(next) {
			return illegalTransition(order.Status, next)
		}

		previous = order.Status
		if err := tx.Model(&order).Update("status", next).Error; err != nil {
			return err
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: &previous,
			ToStatus:   next,
			ChangedBy:  requester.ID,
		}).Error
	})
	if err != nil {
		if _, ok := models.AsAppError(err); ok {
			return nil, err
		}
		return nil, models.NewInternalError("failed to update order status", err)
	}

	metrics.RecordOrderTransition(string(next))
	log.WithFields(logrus.Fields{
		"order_id":   id,
		"from":       previous,
		"to":         next,
		"changed_by": requester.ID,
	}).Info("Order status changed")
	return s.load(id)
}

// providerOrderIDs selects ids of orders containing at least one meal of the provider owned by userID
func (s *orderService) providerOrderIDs(userID string) *gorm.DB {
	return s.db.Model(&models.OrderItem{}).
		Select("order_items.order_id").
		Joins("JOIN meals ON meals.id = order_items.meal_id").
		Joins("JOIN provider_profiles ON provider_profiles.id = meals.provider_id").
		Where("provider_profiles.user_id = ?", userID)
}

func (s *orderService) canView(requester *models.CurrentUser, order *models.Order) (bool, error) {
	if requester == nil {
		return false, nil
	}
	switch requester.Role {
	case models.RoleAdmin:
		return true, nil
	case models.RoleProvider:
		var count int64
		err := s.db.Model(&models.Order{}).
			Where("orders.id = ? AND orders.id IN (?)", order.ID, s.providerOrderIDs(requester.ID)).
			Count(&count).Error
		if err != nil {
			return false, models.NewInternalError("failed to check order access", err)
		}
		return count > 0, nil
	default:
		return order.CustomerID == requester.ID, nil
	}
}

func (s *orderService) withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("OrderItems").
		Preload("OrderItems.Meal").
		Preload("OrderItems.Meal.Provider").
		Preload("Customer", selectPublicUser)
}

func (s *orderService) load(id string) (*models.Order, error) {
	var order models.Order
	err := s.withRelations(s.db).
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_status_history.created_at asc")
		}).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Order not found")
		}
		return nil, models.NewInternalError("failed to load order", err)
	}
	return &order, nil
}

// illegalTransition explains why an order cannot move to next and where it can go instead
func illegalTransition(current, next models.OrderStatus) error {
	if current.IsTerminal() {
		return models.NewValidationError(fmt.Sprintf("Order is %s and its status can no longer change", current))
	}
	allowed := make([]string, 0, len(current.NextStatuses()))
	for _, status := range current.NextStatuses() {
		allowed = append(allowed, string(status))
	}
	return models.NewValidationError(fmt.Sprintf("Cannot change order status from %s to %s, expected one of: %s",
		current, next, strings.Join(allowed, ", ")))
}
