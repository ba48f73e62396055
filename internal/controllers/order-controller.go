package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-foodhub-api/internal/services"
	"github.com/gin-gonic/gin"
)

// UpdateOrderStatusRequest is the payload of the status endpoint
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,orderstatus"`
}

// OrderController handles HTTP requests related to orders
type OrderController interface {
	CreateOrder(c *gin.Context)
	// ListOrders returns the orders the requester may see
	ListOrders(c *gin.Context)
	GetOrder(c *gin.Context)
	UpdateOrderStatus(c *gin.Context)
}

type orderController struct {
	service services.OrderService
}

// NewOrderController creates a new instance of OrderController
func NewOrderController(service services.OrderService) OrderController {
	return &orderController{service: service}
}

// CreateOrder godoc
// @Summary Place an order
// @Description Order a quantity of one meal, paid cash on delivery
// @Tags orders
// @Accept json
// @Produce json
// @Param order body services.CreateOrderInput true "Order"
// @Success 201 {object} Response{data=models.Order}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/orders [post]
func (oc *orderController) CreateOrder(c *gin.Context) {
	user, ok := requester(c)
	if !ok {
		return
	}

	var input services.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := oc.service.CreateOrder(user.ID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Order placed successfully!", order)
}

// ListOrders godoc
// @Summary List orders
// @Description Admins see every order, providers orders of their meals and customers their own
// @Tags orders
// @Produce json
// @Success 200 {object} Response{data=[]models.Order}
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/orders [get]
func (oc *orderController) ListOrders(c *gin.Context) {
	user, ok := requester(c)
	if !ok {
		return
	}

	orders, err := oc.service.ListOrders(user)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", orders)
}

// GetOrder godoc
// @Summary Get order details
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} Response{data=models.Order}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/orders/{id} [get]
func (oc *orderController) GetOrder(c *gin.Context) {
	user, ok := requester(c)
	if !ok {
		return
	}

	order, err := oc.service.GetOrderDetails(user, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "", order)
}

// UpdateOrderStatus godoc
// @Summary Update order status
// @Description Moves the order along PENDING, CONFIRMED, PREPARING, OUT_FOR_DELIVERY, DELIVERED; CANCELLED before delivery
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param status body UpdateOrderStatusRequest true "New status"
// @Success 200 {object} Response{data=models.Order}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/orders/{id}/status [patch]
func (oc *orderController) UpdateOrderStatus(c *gin.Context) {
	user, ok := requester(c)
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := oc.service.UpdateOrderStatus(user, c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Order status updated", order)
}
