package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/nkefor/microservices-cicd/internal/client"
	"github.com/nkefor/microservices-cicd/internal/config"
	"github.com/nkefor/microservices-cicd/internal/model"
	"github.com/nkefor/microservices-cicd/internal/queue"
	"github.com/nkefor/microservices-cicd/internal/repository"
)

// OrderHandler bundles dependencies for the order service endpoints.
type OrderHandler struct {
	Cfg      config.Config
	Orders   repository.OrderStore
	Products client.ProductClient
	Events   queue.Publisher
}

func NewOrderHandler(cfg config.Config, orders repository.OrderStore, products client.ProductClient, events queue.Publisher) *OrderHandler {
	if events == nil {
		events = queue.NopPublisher{}
	}
	return &OrderHandler{Cfg: cfg, Orders: orders, Products: products, Events: events}
}

type createOrderReq struct {
	UserID          string            `json:"userId"`
	Items           []model.OrderItem `json:"items"`
	ShippingAddress map[string]any    `json:"shippingAddress"`
	PaymentMethod   string            `json:"paymentMethod"`
}

type updateOrderReq struct {
	Status string `json:"status"`
}

// Health reports liveness for the order service.
func (h *OrderHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":    "UP",
		"service":   "order-service",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Root describes the service and its endpoint map.
func (h *OrderHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"service": "Order Service",
		"version": "1.0.0",
		"endpoints": echo.Map{
			"health":    "/health",
			"orders":    "/orders",
			"orderById": "/orders/:id",
			"stats":     "/orders/stats",
		},
	})
}

// List returns all orders, optionally filtered by exact status and/or
// userId. Both filters are AND-combined when present.
func (h *OrderHandler) List(c echo.Context) error {
	status := c.QueryParam("status")
	userID := c.QueryParam("userId")

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	orders, err := h.Orders.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}

	filtered := make([]model.Order, 0, len(orders))
	for _, o := range orders {
		if status != "" && o.Status != status {
			continue
		}
		if userID != "" && o.UserID != userID {
			continue
		}
		filtered = append(filtered, o)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total":  len(filtered),
		"orders": filtered,
	})
}

// Get returns a single order by id.
func (h *OrderHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	order, err := h.Orders.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}
	return c.JSON(http.StatusOK, order)
}

// Create validates each line item against the product service, in input
// order, and persists the order only if every item validates. A single item
// failure aborts the whole request before the store is touched, so no
// partial orders ever exist.
func (h *OrderHandler) Create(c echo.Context) error {
	var req createOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "userId and items are required"})
	}
	if req.UserID == "" || len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "userId and items are required"})
	}

	ctx := c.Request().Context()
	items := make([]model.OrderItem, len(req.Items))
	copy(items, req.Items)

	var total float64
	for i := range items {
		if items[i].ProductID == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "productId required for all items"})
		}
		if items[i].Quantity <= 0 {
			items[i].Quantity = 1
		}

		av, err := h.Products.CheckAvailability(ctx, items[i].ProductID, items[i].Quantity)
		if err != nil {
			return h.productFailure(c, items[i].ProductID, err)
		}
		if !av.Available {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error":     fmt.Sprintf("Product %s not available", items[i].ProductID),
				"requested": items[i].Quantity,
				"available": av.CurrentStock,
			})
		}

		product, err := h.Products.GetProduct(ctx, items[i].ProductID)
		if err != nil {
			return h.productFailure(c, items[i].ProductID, err)
		}
		items[i].Price = product.Price
		items[i].Name = product.Name
		total += product.Price * float64(items[i].Quantity)
	}

	shipping := req.ShippingAddress
	if shipping == nil {
		shipping = map[string]any{}
	}
	payment := req.PaymentMethod
	if payment == "" {
		payment = "card"
	}

	order := model.Order{
		ID:              uuid.NewString(),
		UserID:          req.UserID,
		Items:           items,
		TotalAmount:     model.Round2(total),
		Status:          model.StatusPending,
		CreatedAt:       time.Now().UTC(),
		ShippingAddress: shipping,
		PaymentMethod:   payment,
	}

	sctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := h.Orders.Insert(sctx, order); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}

	_ = h.Events.PublishOrderCreated(ctx, queue.OrderCreatedEvent{
		OrderID:     order.ID,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		ItemCount:   len(order.Items),
		Status:      order.Status,
		CreatedAt:   order.CreatedAt.Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, order)
}

// productFailure maps product client errors onto HTTP responses: a missing
// product is the caller's problem (404 naming the product), an unreachable
// product service is a dependency failure (503 with the cause attached).
func (h *OrderHandler) productFailure(c echo.Context, productID string, err error) error {
	if errors.Is(err, client.ErrProductNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": fmt.Sprintf("Product %s not found", productID),
		})
	}
	var unreachable *client.UnreachableError
	if errors.As(err, &unreachable) {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"error":   "Failed to validate products",
			"details": unreachable.Cause.Error(),
		})
	}
	return c.JSON(http.StatusServiceUnavailable, echo.Map{
		"error":   "Failed to validate products",
		"details": err.Error(),
	})
}

// Update sets a new status on an order. An absent status field is a no-op
// that returns the order unchanged.
func (h *OrderHandler) Update(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	order, err := h.Orders.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}

	var req updateOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	if req.Status != "" {
		if !model.ValidStatus(req.Status) {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": fmt.Sprintf("Invalid status. Allowed: %s", strings.Join(model.OrderStatuses, ", ")),
			})
		}
		now := time.Now().UTC()
		order.Status = req.Status
		order.UpdatedAt = &now
		if err := h.Orders.Update(ctx, order); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
		}
	}

	return c.JSON(http.StatusOK, order)
}

// Cancel sets an order to cancelled unless it has already shipped or been
// delivered.
func (h *OrderHandler) Cancel(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	order, err := h.Orders.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}

	if !order.CanCancel() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Cannot cancel shipped or delivered orders"})
	}

	now := time.Now().UTC()
	order.Status = model.StatusCancelled
	order.CancelledAt = &now
	if err := h.Orders.Update(ctx, order); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}

	_ = h.Events.PublishOrderCancelled(c.Request().Context(), queue.OrderCancelledEvent{
		OrderID:     order.ID,
		UserID:      order.UserID,
		CancelledAt: now.Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, order)
}

// Stats aggregates order counts and revenue. Revenue excludes cancelled
// orders only; every other status counts.
func (h *OrderHandler) Stats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	orders, err := h.Orders.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}

	var revenue float64
	breakdown := map[string]int{}
	for _, o := range orders {
		if o.Status != model.StatusCancelled {
			revenue += o.TotalAmount
		}
		breakdown[o.Status]++
	}

	return c.JSON(http.StatusOK, echo.Map{
		"totalOrders":     len(orders),
		"totalRevenue":    model.Round2(revenue),
		"statusBreakdown": breakdown,
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	})
}
