package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"inventory-api/internal/domain"
	"inventory-api/internal/repository"
)

type mockProductRepo struct {
	byID   map[string]domain.Product
	byName map[string]string
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{
		byID:   make(map[string]domain.Product),
		byName: make(map[string]string),
	}
}

func (m *mockProductRepo) Create(_ context.Context, product domain.Product) error {
	m.byID[product.ID] = product
	m.byName[product.Name] = product.ID
	return nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id string) (domain.Product, error) {
	product, ok := m.byID[id]
	if !ok {
		return domain.Product{}, pgx.ErrNoRows
	}
	return product, nil
}

func (m *mockProductRepo) GetByName(_ context.Context, name string) (domain.Product, error) {
	id, ok := m.byName[name]
	if !ok {
		return domain.Product{}, pgx.ErrNoRows
	}
	return m.GetByID(context.Background(), id)
}

func (m *mockProductRepo) Update(_ context.Context, id string, update repository.ProductUpdate) (domain.Product, error) {
	product, ok := m.byID[id]
	if !ok {
		return domain.Product{}, pgx.ErrNoRows
	}
	if update.Name != nil {
		delete(m.byName, product.Name)
		product.Name = *update.Name
		m.byName[product.Name] = id
	}
	if update.Description != nil {
		product.Description = update.Description
	}
	if update.Price != nil {
		product.Price = *update.Price
	}
	if update.Category != nil {
		product.Category = update.Category
	}
	if update.SupplierID != nil {
		product.SupplierID = update.SupplierID
	}
	if update.StockQuantity != nil {
		product.StockQuantity = *update.StockQuantity
	}
	if update.LowStockThreshold != nil {
		product.LowStockThreshold = update.LowStockThreshold
	}
	product.UpdatedAt = time.Now().UTC()
	m.byID[id] = product
	return product, nil
}

func (m *mockProductRepo) Delete(_ context.Context, id string) error {
	product, ok := m.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	delete(m.byID, id)
	delete(m.byName, product.Name)
	return nil
}

func (m *mockProductRepo) AdjustStock(_ context.Context, id string, delta int) (domain.Product, error) {
	product, ok := m.byID[id]
	if !ok {
		return domain.Product{}, pgx.ErrNoRows
	}
	product.StockQuantity += delta
	product.UpdatedAt = time.Now().UTC()
	m.byID[id] = product
	return product, nil
}

func (m *mockProductRepo) List(_ context.Context, _, _ int, filter repository.ProductFilter) ([]domain.Product, int, error) {
	products := make([]domain.Product, 0)
	for _, p := range m.byID {
		if filter.Category != "" && (p.Category == nil || *p.Category != filter.Category) {
			continue
		}
		products = append(products, p)
	}
	return products, len(products), nil
}

func (m *mockProductRepo) ListLowStock(_ context.Context, _, _ int) ([]domain.Product, int, error) {
	products := make([]domain.Product, 0)
	for _, p := range m.byID {
		if p.LowStockThreshold != nil && p.StockQuantity < *p.LowStockThreshold {
			products = append(products, p)
		}
	}
	return products, len(products), nil
}

func TestProductService_AddDuplicateName(t *testing.T) {
	ctx := context.Background()
	repo := newMockProductRepo()
	svc := NewProductService(repo)

	input := CreateProductInput{Name: "Widget", Price: 9.99, StockQuantity: 5}
	if _, err := svc.AddProduct(ctx, input); err != nil {
		t.Fatalf("add product: %v", err)
	}
	if _, err := svc.AddProduct(ctx, input); !errors.Is(err, ErrProductExists) {
		t.Fatalf("expected ErrProductExists, got %v", err)
	}
}

func TestProductService_UpdatePartial(t *testing.T) {
	ctx := context.Background()
	repo := newMockProductRepo()
	svc := NewProductService(repo)

	created, err := svc.AddProduct(ctx, CreateProductInput{Name: "Widget", Price: 9.99, StockQuantity: 5})
	if err != nil {
		t.Fatalf("add product: %v", err)
	}

	price := 14.50
	updated, err := svc.UpdateProduct(ctx, created.ID, repository.ProductUpdate{Price: &price})
	if err != nil {
		t.Fatalf("update product: %v", err)
	}
	if updated.Price != 14.50 {
		t.Fatalf("expected updated price, got %v", updated.Price)
	}
	if updated.Name != "Widget" || updated.StockQuantity != 5 {
		t.Fatalf("expected untouched fields preserved: %+v", updated)
	}

	if _, err := svc.UpdateProduct(ctx, created.ID, repository.ProductUpdate{}); !errors.Is(err, ErrNoUpdateFields) {
		t.Fatalf("expected ErrNoUpdateFields, got %v", err)
	}
	if _, err := svc.UpdateProduct(ctx, "missing", repository.ProductUpdate{Price: &price}); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestProductService_Stock(t *testing.T) {
	ctx := context.Background()
	repo := newMockProductRepo()
	svc := NewProductService(repo)

	created, err := svc.AddProduct(ctx, CreateProductInput{Name: "Widget", Price: 9.99, StockQuantity: 5})
	if err != nil {
		t.Fatalf("add product: %v", err)
	}

	product, err := svc.IncreaseStock(ctx, created.ID, 7)
	if err != nil {
		t.Fatalf("increase: %v", err)
	}
	if product.StockQuantity != 12 {
		t.Fatalf("expected 12, got %d", product.StockQuantity)
	}

	product, err = svc.DecreaseStock(ctx, created.ID, 10)
	if err != nil {
		t.Fatalf("decrease: %v", err)
	}
	if product.StockQuantity != 2 {
		t.Fatalf("expected 2, got %d", product.StockQuantity)
	}

	if _, err := svc.DecreaseStock(ctx, created.ID, 3); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if _, err := svc.IncreaseStock(ctx, "missing", 1); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestProductService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newMockProductRepo()
	svc := NewProductService(repo)

	created, err := svc.AddProduct(ctx, CreateProductInput{Name: "Widget", Price: 9.99, StockQuantity: 5})
	if err != nil {
		t.Fatalf("add product: %v", err)
	}

	if err := svc.DeleteProduct(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.DeleteProduct(ctx, created.ID); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}
