package service

import (
	"context"

	"inventory-api/internal/domain"
	"inventory-api/internal/repository"
)

// ReportService arma reportes de solo lectura sobre el inventario.
type ReportService struct {
	products  repository.ProductRepository
	suppliers repository.SupplierRepository
}

func NewReportService(products repository.ProductRepository, suppliers repository.SupplierRepository) *ReportService {
	return &ReportService{products: products, suppliers: suppliers}
}

// LowStockProducts lista productos cuyo stock quedo por debajo de su umbral.
func (s *ReportService) LowStockProducts(ctx context.Context, page, limit int) ([]domain.Product, int, error) {
	page, limit = normalizePage(page, limit)
	return s.products.ListLowStock(ctx, page, limit)
}

// ProductsGroupedBySupplier devuelve cada proveedor con sus productos.
func (s *ReportService) ProductsGroupedBySupplier(ctx context.Context) ([]domain.SupplierWithProducts, error) {
	return s.suppliers.ListWithProducts(ctx)
}
