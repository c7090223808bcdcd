package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/nkefor/microservices-cicd/internal/model"
	"github.com/nkefor/microservices-cicd/internal/repository"
)

// ProductHandler bundles dependencies for the product service endpoints.
type ProductHandler struct {
	Products repository.ProductStore
}

func NewProductHandler(products repository.ProductStore) *ProductHandler {
	return &ProductHandler{Products: products}
}

type productReq struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
	Category    string   `json:"category"`
}

type availabilityReq struct {
	Quantity int `json:"quantity"`
}

// Health reports liveness for the product service.
func (h *ProductHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":    "UP",
		"service":   "product-service",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Root describes the service and its endpoint map.
func (h *ProductHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"service": "Product Service",
		"version": "1.0.0",
		"endpoints": echo.Map{
			"health":      "/health",
			"products":    "/products",
			"productById": "/products/:id",
		},
	})
}

// List returns the catalog, optionally filtered by category and price range.
func (h *ProductHandler) List(c echo.Context) error {
	category := c.QueryParam("category")
	minPrice, hasMin := parsePrice(c.QueryParam("minPrice"))
	maxPrice, hasMax := parsePrice(c.QueryParam("maxPrice"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	products, err := h.Products.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}

	filtered := make([]model.Product, 0, len(products))
	for _, p := range products {
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		if hasMin && p.Price < minPrice {
			continue
		}
		if hasMax && p.Price > maxPrice {
			continue
		}
		filtered = append(filtered, p)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total":    len(filtered),
		"products": filtered,
	})
}

// Get returns a single product by id.
func (h *ProductHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	p, err := h.Products.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}
	return c.JSON(http.StatusOK, p)
}

// Create adds a catalog entry. Name and price are required.
func (h *ProductHandler) Create(c echo.Context) error {
	var req productReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Name and price are required"})
	}
	if req.Name == "" || req.Price == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Name and price are required"})
	}

	now := time.Now().UTC()
	p := model.Product{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Category:    req.Category,
		CreatedAt:   &now,
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if p.Category == "" {
		p.Category = "Uncategorized"
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()
	if err := h.Products.Insert(ctx, p); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}
	return c.JSON(http.StatusCreated, p)
}

// Update modifies the provided fields of a product; the id never changes.
func (h *ProductHandler) Update(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	p, err := h.Products.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}

	var req productReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name != "" {
		p.Name = req.Name
	}
	if req.Description != "" {
		p.Description = req.Description
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.Category != "" {
		p.Category = req.Category
	}
	now := time.Now().UTC()
	p.UpdatedAt = &now

	if err := h.Products.Update(ctx, p); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}
	return c.JSON(http.StatusOK, p)
}

// Delete removes a product from the catalog.
func (h *ProductHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	if err := h.Products.Delete(ctx, c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}
	return c.NoContent(http.StatusNoContent)
}

// CheckAvailability reports whether the requested quantity can be
// fulfilled. A missing or non-positive quantity counts as 1.
func (h *ProductHandler) CheckAvailability(c echo.Context) error {
	var req availabilityReq
	_ = c.Bind(&req)
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	p, err := h.Products.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"productId":         p.ID,
		"available":         p.Stock >= req.Quantity,
		"requestedQuantity": req.Quantity,
		"currentStock":      p.Stock,
	})
}

func parsePrice(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
