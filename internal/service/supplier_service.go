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

// SupplierService coordina reglas de negocio para proveedores.
type SupplierService struct {
	suppliers repository.SupplierRepository
}

var (
	ErrSupplierExists   = errors.New("supplier with this email already exists")
	ErrSupplierNotFound = errors.New("supplier not found")
)

func NewSupplierService(suppliers repository.SupplierRepository) *SupplierService {
	return &SupplierService{suppliers: suppliers}
}

type CreateSupplierInput struct {
	Name    string
	Email   *string
	Phone   *string
	Address *string
}

func (s *SupplierService) AddSupplier(ctx context.Context, input CreateSupplierInput) (domain.Supplier, error) {
	if input.Email != nil && strings.TrimSpace(*input.Email) != "" {
		if _, err := s.suppliers.GetByEmail(ctx, *input.Email); err == nil {
			return domain.Supplier{}, ErrSupplierExists
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return domain.Supplier{}, err
		}
	}

	now := time.Now().UTC()
	supplier := domain.Supplier{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(input.Name),
		Email:     input.Email,
		Phone:     input.Phone,
		Address:   input.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.suppliers.Create(ctx, supplier); err != nil {
		return domain.Supplier{}, err
	}
	return supplier, nil
}

func (s *SupplierService) GetSupplier(ctx context.Context, id string) (domain.Supplier, error) {
	supplier, err := s.suppliers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Supplier{}, ErrSupplierNotFound
		}
		return domain.Supplier{}, err
	}
	return supplier, nil
}

// UpdateSupplier aplica una actualizacion parcial. Una actualizacion sin
// campos devuelve el registro actual sin tocar nada.
func (s *SupplierService) UpdateSupplier(ctx context.Context, id string, update repository.SupplierUpdate) (domain.Supplier, error) {
	existing, err := s.GetSupplier(ctx, id)
	if err != nil {
		return domain.Supplier{}, err
	}
	if update.IsEmpty() {
		return existing, nil
	}
	supplier, err := s.suppliers.Update(ctx, id, update)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Supplier{}, ErrSupplierNotFound
		}
		return domain.Supplier{}, err
	}
	return supplier, nil
}

func (s *SupplierService) DeleteSupplier(ctx context.Context, id string) error {
	if err := s.suppliers.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrSupplierNotFound
		}
		return err
	}
	return nil
}

func (s *SupplierService) ListSuppliers(ctx context.Context, page, limit int) ([]domain.Supplier, int, error) {
	page, limit = normalizePage(page, limit)
	return s.suppliers.List(ctx, page, limit)
}
