package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"inventory-api/internal/service"
)

// ReportHandler mantiene dependencias para endpoints de reportes.
type ReportHandler struct {
	logger     *zap.Logger
	reportServ *service.ReportService
}

func NewReportHandler(logger *zap.Logger, reportServ *service.ReportService) *ReportHandler {
	return &ReportHandler{logger: logger, reportServ: reportServ}
}

// GetLowStock maneja GET /reports/stock.
func (h *ReportHandler) GetLowStock(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)

	products, total, err := h.reportServ.LowStockProducts(c.Request.Context(), page, limit)
	if err != nil {
		h.logger.Error("low stock report failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not build report"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": products, "total": total})
}

// GetProductsBySupplier maneja GET /reports/suppliers.
func (h *ReportHandler) GetProductsBySupplier(c *gin.Context) {
	grouped, err := h.reportServ.ProductsGroupedBySupplier(c.Request.Context())
	if err != nil {
		h.logger.Error("supplier report failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not build report"})
		return
	}

	c.JSON(http.StatusOK, grouped)
}
