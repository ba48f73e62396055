package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/franciscosanchezn/gin-foodhub-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type orderFixture struct {
	db           *gorm.DB
	service      OrderService
	customer     *models.User
	otherCust    *models.User
	providerUser *models.User
	provider     *models.ProviderProfile
	otherUser    *models.User
	other        *models.ProviderProfile
	admin        *models.User
	meal         *models.Meal
}

func setupOrderFixture(t *testing.T) *orderFixture {
	db := setupTestDB(t)
	f := &orderFixture{db: db, service: NewOrderService(db)}
	f.customer = createUser(t, db, "customer@example.com", models.RoleCustomer, models.UserStatusApproved)
	f.otherCust = createUser(t, db, "other-customer@example.com", models.RoleCustomer, models.UserStatusApproved)
	f.admin = createUser(t, db, "admin@example.com", models.RoleAdmin, models.UserStatusApproved)
	f.providerUser, f.provider = createProvider(t, db, "provider@example.com", models.UserStatusApproved)
	f.otherUser, f.other = createProvider(t, db, "other-provider@example.com", models.UserStatusApproved)
	f.meal = createMeal(t, db, f.provider, "Biryani", "Rice", 12.99)
	return f
}

func TestCreateOrderSnapshotsPrice(t *testing.T) {
	f := setupOrderFixture(t)

	order, err := f.service.CreateOrder(f.customer.ID, CreateOrderInput{MealID: f.meal.ID, Quantity: 3, Address: " 221B Baker Street "})
	require.NoError(t, err)
	assert.Equal(t, 38.97, order.TotalPrice)
	assert.Equal(t, "221B Baker Street", order.DeliveryAddress)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, models.PaymentMethodCashOnDelivery, order.PaymentMethod)
	require.Len(t, order.OrderItems, 1)
	assert.Equal(t, 12.99, order.OrderItems[0].Price)
	assert.Equal(t, 3, order.OrderItems[0].Quantity)
	require.NotNil(t, order.OrderItems[0].Meal)
	require.NotNil(t, order.OrderItems[0].Meal.Provider)
	assert.Equal(t, f.provider.ID, order.OrderItems[0].Meal.Provider.ID)
	require.Len(t, order.History, 1)
	assert.Nil(t, order.History[0].FromStatus)

	// Later price changes do not touch the order
	require.NoError(t, f.db.Model(&models.Meal{}).Where("id = ?", f.meal.ID).Update("price", 99.0).Error)
	reloaded, err := f.service.GetOrderDetails(currentUser(f.customer, nil), order.ID)
	require.NoError(t, err)
	assert.Equal(t, 38.97, reloaded.TotalPrice)
	assert.Equal(t, 12.99, reloaded.OrderItems[0].Price)
}

func TestCreateOrderValidation(t *testing.T) {
	f := setupOrderFixture(t)

	testCases := []struct {
		name  string
		input CreateOrderInput
		code  string
	}{
		{name: "zero quantity", input: CreateOrderInput{MealID: f.meal.ID, Quantity: 0, Address: "x"}, code: models.ErrValidationFailed},
		{name: "negative quantity", input: CreateOrderInput{MealID: f.meal.ID, Quantity: -1, Address: "x"}, code: models.ErrValidationFailed},
		{name: "missing address", input: CreateOrderInput{MealID: f.meal.ID, Quantity: 1}, code: models.ErrValidationFailed},
		{name: "missing meal id", input: CreateOrderInput{Quantity: 1, Address: "x"}, code: models.ErrValidationFailed},
		{name: "unknown meal", input: CreateOrderInput{MealID: "missing", Quantity: 1, Address: "x"}, code: models.ErrNotFound},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.CreateOrder(f.customer.ID, tt.input)
			assert.True(t, models.HasCode(err, tt.code), "got %v", err)
		})
	}

	var orders int64
	f.db.Model(&models.Order{}).Count(&orders)
	assert.Equal(t, int64(0), orders)
}

func TestCreateOrderIsAtomic(t *testing.T) {
	f := setupOrderFixture(t)

	// Fail every insert into order_items
	err := f.db.Callback().Create().Before("gorm:create").Register("test:fail_order_items", func(tx *gorm.DB) {
		if tx.Statement.Table == "order_items" {
			tx.AddError(errors.New("disk full"))
		}
	})
	require.NoError(t, err)

	_, err = f.service.CreateOrder(f.customer.ID, CreateOrderInput{MealID: f.meal.ID, Quantity: 1, Address: "x"})
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.ErrInternalServer))

	var orders, items int64
	f.db.Model(&models.Order{}).Count(&orders)
	f.db.Model(&models.OrderItem{}).Count(&items)
	assert.Equal(t, int64(0), orders)
	assert.Equal(t, int64(0), items)
}

func TestListOrdersByRole(t *testing.T) {
	f := setupOrderFixture(t)
	otherMeal := createMeal(t, f.db, f.other, "Dumplings", "Chinese", 4)

	mine, err := f.service.CreateOrder(f.customer.ID, CreateOrderInput{MealID: f.meal.ID, Quantity: 1, Address: "a"})
	require.NoError(t, err)
	_, err = f.service.CreateOrder(f.otherCust.ID, CreateOrderInput{MealID: otherMeal.ID, Quantity: 2, Address: "b"})
	require.NoError(t, err)

	all, err := f.service.ListOrders(currentUser(f.admin, nil))
	require.NoError(t, err)
	assert.Len(t, all, 2)

	customerOrders, err := f.service.ListOrders(currentUser(f.customer, nil))
	require.NoError(t, err)
	require.Len(t, customerOrders, 1)
	assert.Equal(t, mine.ID, customerOrders[0].ID)

	providerOrders, err := f.service.ListOrders(currentUser(f.providerUser, f.provider))
	require.NoError(t, err)
	require.Len(t, providerOrders, 1)
	assert.Equal(t, mine.ID, providerOrders[0].ID)
}

func TestGetOrderDetails(t *testing.T) {
	f := setupOrderFixture(t)
	order, err := f.service.CreateOrder(f.customer.ID, CreateOrderInput{MealID: f.meal.ID, Quantity: 1, Address: "a"})
	require.NoError(t, err)

	_, err = f.service.GetOrderDetails(currentUser(f.customer, nil), "success")
	assert.True(t, models.HasCode(err, models.ErrValidationFailed))

	_, err = f.service.GetOrderDetails(currentUser(f.customer, nil), "does-not-exist")
	assert.True(t, models.HasCode(err, models.ErrNotFound))

	for _, viewer := range []*models.CurrentUser{
		currentUser(f.customer, nil),
		currentUser(f.admin, nil),
		currentUser(f.providerUser, f.provider),
	} {
		got, err := f.service.GetOrderDetails(viewer, order.ID)
		require.NoError(t, err, "viewer %s", viewer.Email)
		assert.Equal(t, order.ID, got.ID)
	}

	for _, viewer := range []*models.CurrentUser{
		currentUser(f.otherCust, nil),
		currentUser(f.otherUser, f.other),
	} {
		_, err := f.service.GetOrderDetails(viewer, order.ID)
		assert.True(t, models.HasCode(err, models.ErrForbidden), "viewer %s", viewer.Email)
	}
}

func TestUpdateOrderStatusStateMachine(t *testing.T) {
	f := setupOrderFixture(t)
	order, err := f.service.CreateOrder(f.customer.ID, CreateOrderInput{MealID: f.meal.ID, Quantity: 1, Address: "a"})
	require.NoError(t, err)
	provider := currentUser(f.providerUser, f.provider)

	_, err = f.service.UpdateOrderStatus(provider, order.ID, "DELIVERED")
	assert.True(t, models.HasCode(err, models.ErrValidationFailed), "cannot skip states")
	assert.EqualError(t, err, "Cannot change order status from PENDING to DELIVERED, expected one of: CONFIRMED, CANCELLED")

	_, err = f.service.UpdateOrderStatus(provider, order.ID, "teleported")
	assert.True(t, models.HasCode(err, models.ErrValidationFailed))

	for _, next := range []string{"confirmed", "PREPARING", "OUT_FOR_DELIVERY", "DELIVERED"} {
		updated, err := f.service.UpdateOrderStatus(provider, order.ID, next)
		require.NoError(t, err, next)
		assert.Equal(t, models.OrderStatus(strings.ToUpper(next)), updated.Status)
	}

	_, err = f.service.UpdateOrderStatus(currentUser(f.admin, nil), order.ID, "PENDING")
	assert.True(t, models.HasCode(err, models.ErrValidationFailed), "delivered is terminal")
	assert.EqualError(t, err, "Order is DELIVERED and its status can no longer change")

	var history []models.OrderStatusHistory
	require.NoError(t, f.db.Where("order_id = ?", order.ID).Order("created_at asc").Find(&history).Error)
	assert.Len(t, history, 5)
}

func TestUpdateOrderStatusPermissions(t *testing.T) {
	f := setupOrderFixture(t)
	order, err := f.service.CreateOrder(f.customer.ID, CreateOrderInput{MealID: f.meal.ID, Quantity: 1, Address: "a"})
	require.NoError(t, err)

	_, err = f.service.UpdateOrderStatus(currentUser(f.customer, nil), order.ID, "CANCELLED")
	assert.True(t, models.HasCode(err, models.ErrForbidden))

	_, err = f.service.UpdateOrderStatus(currentUser(f.otherUser, f.other), order.ID, "CONFIRMED")
	assert.True(t, models.HasCode(err, models.ErrForbidden))

	_, err = f.service.UpdateOrderStatus(currentUser(f.admin, nil), "missing", "CONFIRMED")
	assert.True(t, models.HasCode(err, models.ErrNotFound))

	cancelled, err := f.service.UpdateOrderStatus(currentUser(f.admin, nil), order.ID, "CANCELLED")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
}
