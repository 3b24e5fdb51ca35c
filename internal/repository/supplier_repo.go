package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"inventory-api/internal/domain"
)

// SupplierUpdate describe una actualizacion parcial de proveedor.
type SupplierUpdate struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
}

func (u SupplierUpdate) IsEmpty() bool {
	return u.Name == nil && u.Email == nil && u.Phone == nil && u.Address == nil
}

// SupplierRepository define el contrato de persistencia para proveedores.
type SupplierRepository interface {
	Create(ctx context.Context, supplier domain.Supplier) error
	GetByID(ctx context.Context, id string) (domain.Supplier, error)
	GetByEmail(ctx context.Context, email string) (domain.Supplier, error)
	Update(ctx context.Context, id string, update SupplierUpdate) (domain.Supplier, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, page, limit int) ([]domain.Supplier, int, error)
	ListWithProducts(ctx context.Context) ([]domain.SupplierWithProducts, error)
}

const supplierColumns = `id, name, email, phone, address, created_at, updated_at`

// PgSupplierRepository implementa SupplierRepository usando pgxpool.
type PgSupplierRepository struct {
	pool *pgxpool.Pool
}

func NewPgSupplierRepository(pool *pgxpool.Pool) *PgSupplierRepository {
	return &PgSupplierRepository{pool: pool}
}

func scanSupplier(row pgx.Row) (domain.Supplier, error) {
	var s domain.Supplier
	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Email,
		&s.Phone,
		&s.Address,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return domain.Supplier{}, err
	}
	return s, nil
}

func (r *PgSupplierRepository) Create(ctx context.Context, supplier domain.Supplier) error {
	const query = `
		INSERT INTO suppliers (id, name, email, phone, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		supplier.ID,
		supplier.Name,
		supplier.Email,
		supplier.Phone,
		supplier.Address,
		supplier.CreatedAt,
		supplier.UpdatedAt,
	)
	return err
}

func (r *PgSupplierRepository) GetByID(ctx context.Context, id string) (domain.Supplier, error) {
	query := fmt.Sprintf(`SELECT %s FROM suppliers WHERE id = $1`, supplierColumns)
	return scanSupplier(r.pool.QueryRow(ctx, query, id))
}

func (r *PgSupplierRepository) GetByEmail(ctx context.Context, email string) (domain.Supplier, error) {
	query := fmt.Sprintf(`SELECT %s FROM suppliers WHERE email = $1`, supplierColumns)
	return scanSupplier(r.pool.QueryRow(ctx, query, email))
}

func (r *PgSupplierRepository) Update(ctx context.Context, id string, update SupplierUpdate) (domain.Supplier, error) {
	set := make([]string, 0, 5)
	args := make([]any, 0, 6)
	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Name != nil {
		add("name", *update.Name)
	}
	if update.Email != nil {
		add("email", *update.Email)
	}
	if update.Phone != nil {
		add("phone", *update.Phone)
	}
	if update.Address != nil {
		add("address", *update.Address)
	}
	add("updated_at", time.Now().UTC())

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE suppliers SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(set, ", "), len(args), supplierColumns,
	)
	return scanSupplier(r.pool.QueryRow(ctx, query, args...))
}

func (r *PgSupplierRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgSupplierRepository) List(ctx context.Context, page, limit int) ([]domain.Supplier, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM suppliers`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(
		`SELECT %s FROM suppliers ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		supplierColumns,
	)
	rows, err := r.pool.Query(ctx, query, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	suppliers := make([]domain.Supplier, 0)
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, 0, err
		}
		suppliers = append(suppliers, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return suppliers, total, nil
}

func (r *PgSupplierRepository) ListWithProducts(ctx context.Context) ([]domain.SupplierWithProducts, error) {
	query := fmt.Sprintf(`SELECT %s FROM suppliers ORDER BY created_at DESC`, supplierColumns)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	grouped := make([]domain.SupplierWithProducts, 0)
	index := make(map[string]int)
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, err
		}
		index[s.ID] = len(grouped)
		grouped = append(grouped, domain.SupplierWithProducts{Supplier: s, Products: []domain.Product{}})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	productQuery := fmt.Sprintf(
		`SELECT %s FROM products WHERE supplier_id IS NOT NULL ORDER BY created_at DESC`,
		productColumns,
	)
	productRows, err := r.pool.Query(ctx, productQuery)
	if err != nil {
		return nil, err
	}
	defer productRows.Close()

	for productRows.Next() {
		p, err := scanProduct(productRows)
		if err != nil {
			return nil, err
		}
		if p.SupplierID == nil {
			continue
		}
		if i, ok := index[*p.SupplierID]; ok {
			grouped[i].Products = append(grouped[i].Products, p)
		}
	}
	if err := productRows.Err(); err != nil {
		return nil, err
	}
	return grouped, nil
}
