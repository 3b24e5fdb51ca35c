package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"inventory-api/internal/domain"
	"inventory-api/internal/repository"
	"inventory-api/internal/service"
)

// ProductHandler mantiene dependencias para endpoints de productos.
type ProductHandler struct {
	logger      *zap.Logger
	productServ *service.ProductService
}

func NewProductHandler(logger *zap.Logger, productServ *service.ProductService) *ProductHandler {
	return &ProductHandler{logger: logger, productServ: productServ}
}

// AddProduct maneja POST /products.
func (h *ProductHandler) AddProduct(c *gin.Context) {
	var req struct {
		Name              string   `json:"name" binding:"required,min=2"`
		Description       *string  `json:"description"`
		Price             *float64 `json:"price" binding:"required,gte=0"`
		Category          *string  `json:"category"`
		SupplierID        *string  `json:"supplier_id"`
		StockQuantity     *int     `json:"stock_quantity" binding:"required,gte=0"`
		LowStockThreshold *int     `json:"low_stock_threshold" binding:"omitempty,gte=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid add product request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	product, err := h.productServ.AddProduct(c.Request.Context(), service.CreateProductInput{
		Name:              req.Name,
		Description:       req.Description,
		Price:             *req.Price,
		Category:          req.Category,
		SupplierID:        req.SupplierID,
		StockQuantity:     *req.StockQuantity,
		LowStockThreshold: req.LowStockThreshold,
	})
	if err != nil {
		if errors.Is(err, service.ErrProductExists) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "product already exists, please update existing product"})
			return
		}
		h.logger.Error("add product failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not add product"})
		return
	}

	c.JSON(http.StatusCreated, product)
}

// GetProducts maneja GET /products.
func (h *ProductHandler) GetProducts(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)
	filter := repository.ProductFilter{
		Name:       c.Query("name"),
		Category:   c.Query("category"),
		SupplierID: c.Query("supplier_id"),
	}

	products, total, err := h.productServ.ListProducts(c.Request.Context(), page, limit, filter)
	if err != nil {
		h.logger.Error("list products failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": products, "total": total})
}

// GetProduct maneja GET /products/:id.
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.productServ.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("get product failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load product"})
		return
	}
	c.JSON(http.StatusOK, product)
}

// UpdateProduct maneja PUT /products/:id.
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req struct {
		Name              *string  `json:"name" binding:"omitempty,min=2"`
		Description       *string  `json:"description"`
		Price             *float64 `json:"price" binding:"omitempty,gte=0"`
		Category          *string  `json:"category"`
		SupplierID        *string  `json:"supplier_id"`
		StockQuantity     *int     `json:"stock_quantity" binding:"omitempty,gte=0"`
		LowStockThreshold *int     `json:"low_stock_threshold" binding:"omitempty,gte=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update product request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	product, err := h.productServ.UpdateProduct(c.Request.Context(), c.Param("id"), repository.ProductUpdate{
		Name:              req.Name,
		Description:       req.Description,
		Price:             req.Price,
		Category:          req.Category,
		SupplierID:        req.SupplierID,
		StockQuantity:     req.StockQuantity,
		LowStockThreshold: req.LowStockThreshold,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNoUpdateFields):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Error("update product failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update product"})
		}
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeleteProduct maneja DELETE /products/:id.
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id := c.Param("id")
	if err := h.productServ.DeleteProduct(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("delete product failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete product"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully", "id": id})
}

// IncreaseStock maneja PATCH /products/:id/increase.
func (h *ProductHandler) IncreaseStock(c *gin.Context) {
	h.adjustStock(c, h.productServ.IncreaseStock)
}

// DecreaseStock maneja PATCH /products/:id/decrease.
func (h *ProductHandler) DecreaseStock(c *gin.Context) {
	h.adjustStock(c, h.productServ.DecreaseStock)
}

func (h *ProductHandler) adjustStock(c *gin.Context, op func(ctx context.Context, id string, quantity int) (domain.Product, error)) {
	var req struct {
		Quantity int `json:"quantity" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid stock update request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	product, err := op(c.Request.Context(), c.Param("id"), req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrInsufficientStock):
			c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient stock to decrease by the specified quantity"})
		default:
			h.logger.Error("stock update failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update stock"})
		}
		return
	}

	c.JSON(http.StatusOK, product)
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
