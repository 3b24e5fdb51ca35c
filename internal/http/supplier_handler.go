package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"inventory-api/internal/repository"
	"inventory-api/internal/service"
)

// SupplierHandler mantiene dependencias para endpoints de proveedores.
type SupplierHandler struct {
	logger       *zap.Logger
	supplierServ *service.SupplierService
}

func NewSupplierHandler(logger *zap.Logger, supplierServ *service.SupplierService) *SupplierHandler {
	return &SupplierHandler{logger: logger, supplierServ: supplierServ}
}

// AddSupplier maneja POST /supplier.
func (h *SupplierHandler) AddSupplier(c *gin.Context) {
	var req struct {
		Name    string  `json:"name" binding:"required,min=2"`
		Email   *string `json:"email" binding:"omitempty,email"`
		Phone   *string `json:"phone"`
		Address *string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid add supplier request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	supplier, err := h.supplierServ.AddSupplier(c.Request.Context(), service.CreateSupplierInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		if errors.Is(err, service.ErrSupplierExists) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("add supplier failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not add supplier"})
		return
	}

	c.JSON(http.StatusCreated, supplier)
}

// GetSuppliers maneja GET /supplier.
func (h *SupplierHandler) GetSuppliers(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)

	suppliers, total, err := h.supplierServ.ListSuppliers(c.Request.Context(), page, limit)
	if err != nil {
		h.logger.Error("list suppliers failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list suppliers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": suppliers, "total": total})
}

// GetSupplier maneja GET /supplier/:id.
func (h *SupplierHandler) GetSupplier(c *gin.Context) {
	supplier, err := h.supplierServ.GetSupplier(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrSupplierNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("get supplier failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load supplier"})
		return
	}
	c.JSON(http.StatusOK, supplier)
}

// UpdateSupplier maneja PUT /supplier/:id.
func (h *SupplierHandler) UpdateSupplier(c *gin.Context) {
	var req struct {
		Name    *string `json:"name" binding:"omitempty,min=2"`
		Email   *string `json:"email" binding:"omitempty,email"`
		Phone   *string `json:"phone"`
		Address *string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update supplier request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	supplier, err := h.supplierServ.UpdateSupplier(c.Request.Context(), c.Param("id"), repository.SupplierUpdate{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		if errors.Is(err, service.ErrSupplierNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("update supplier failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update supplier"})
		return
	}

	c.JSON(http.StatusOK, supplier)
}

// DeleteSupplier maneja DELETE /supplier/:id.
func (h *SupplierHandler) DeleteSupplier(c *gin.Context) {
	id := c.Param("id")
	if err := h.supplierServ.DeleteSupplier(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrSupplierNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("delete supplier failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete supplier"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Supplier deleted successfully", "id": id})
}
