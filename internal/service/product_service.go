package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"inventory-api/internal/domain"
	"inventory-api/internal/repository"
)

// ProductService coordina reglas de negocio para productos del inventario.
type ProductService struct {
	products repository.ProductRepository
}

var (
	ErrProductExists     = errors.New("product already exists")
	ErrProductNotFound   = errors.New("product not found")
	ErrNoUpdateFields    = errors.New("no valid fields provided for update")
	ErrInsufficientStock = errors.New("insufficient stock")
)

func NewProductService(products repository.ProductRepository) *ProductService {
	return &ProductService{products: products}
}

type CreateProductInput struct {
	Name              string
	Description       *string
	Price             float64
	Category          *string
	SupplierID        *string
	StockQuantity     int
	LowStockThreshold *int
}

func (s *ProductService) AddProduct(ctx context.Context, input CreateProductInput) (domain.Product, error) {
	name := strings.TrimSpace(input.Name)
	if _, err := s.products.GetByName(ctx, name); err == nil {
		return domain.Product{}, ErrProductExists
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, err
	}

	now := time.Now().UTC()
	product := domain.Product{
		ID:                uuid.NewString(),
		Name:              name,
		Description:       input.Description,
		Price:             input.Price,
		Category:          input.Category,
		SupplierID:        input.SupplierID,
		StockQuantity:     input.StockQuantity,
		LowStockThreshold: input.LowStockThreshold,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Product{}, ErrProductNotFound
		}
		return domain.Product{}, err
	}
	return product, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id string, update repository.ProductUpdate) (domain.Product, error) {
	if update.IsEmpty() {
		return domain.Product{}, ErrNoUpdateFields
	}
	if _, err := s.products.GetByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Product{}, ErrProductNotFound
		}
		return domain.Product{}, err
	}
	product, err := s.products.Update(ctx, id, update)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Product{}, ErrProductNotFound
		}
		return domain.Product{}, err
	}
	return product, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProductNotFound
		}
		return err
	}
	return nil
}

func (s *ProductService) IncreaseStock(ctx context.Context, id string, quantity int) (domain.Product, error) {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return domain.Product{}, err
	}
	product, err := s.products.AdjustStock(ctx, id, quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Product{}, ErrProductNotFound
		}
		return domain.Product{}, err
	}
	return product, nil
}

func (s *ProductService) DecreaseStock(ctx context.Context, id string, quantity int) (domain.Product, error) {
	existing, err := s.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	if existing.StockQuantity < quantity {
		return domain.Product{}, ErrInsufficientStock
	}
	product, err := s.products.AdjustStock(ctx, id, -quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Product{}, ErrProductNotFound
		}
		return domain.Product{}, err
	}
	return product, nil
}

func (s *ProductService) ListProducts(ctx context.Context, page, limit int, filter repository.ProductFilter) ([]domain.Product, int, error) {
	page, limit = normalizePage(page, limit)
	return s.products.List(ctx, page, limit, filter)
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return page, limit
}
