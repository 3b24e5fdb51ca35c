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

// ProductUpdate describe una actualizacion parcial: solo los campos no nulos
// se escriben.
type ProductUpdate struct {
	Name              *string
	Description       *string
	Price             *float64
	Category          *string
	SupplierID        *string
	StockQuantity     *int
	LowStockThreshold *int
}

// IsEmpty indica si la actualizacion no trae ningun campo.
func (u ProductUpdate) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.Price == nil &&
		u.Category == nil && u.SupplierID == nil &&
		u.StockQuantity == nil && u.LowStockThreshold == nil
}

// ProductFilter restringe el listado de productos.
type ProductFilter struct {
	Name       string
	Category   string
	SupplierID string
}

// ProductRepository define el contrato de persistencia para productos.
type ProductRepository interface {
	Create(ctx context.Context, product domain.Product) error
	GetByID(ctx context.Context, id string) (domain.Product, error)
	GetByName(ctx context.Context, name string) (domain.Product, error)
	Update(ctx context.Context, id string, update ProductUpdate) (domain.Product, error)
	Delete(ctx context.Context, id string) error
	AdjustStock(ctx context.Context, id string, delta int) (domain.Product, error)
	List(ctx context.Context, page, limit int, filter ProductFilter) ([]domain.Product, int, error)
	ListLowStock(ctx context.Context, page, limit int) ([]domain.Product, int, error)
}

const productColumns = `id, name, description, price, category, supplier_id, stock_quantity, low_stock_threshold, created_at, updated_at`

// PgProductRepository implementa ProductRepository usando pgxpool.
type PgProductRepository struct {
	pool *pgxpool.Pool
}

func NewPgProductRepository(pool *pgxpool.Pool) *PgProductRepository {
	return &PgProductRepository{pool: pool}
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Category,
		&p.SupplierID,
		&p.StockQuantity,
		&p.LowStockThreshold,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (r *PgProductRepository) Create(ctx context.Context, product domain.Product) error {
	const query = `
		INSERT INTO products (id, name, description, price, category, supplier_id, stock_quantity, low_stock_threshold, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.Category,
		product.SupplierID,
		product.StockQuantity,
		product.LowStockThreshold,
		product.CreatedAt,
		product.UpdatedAt,
	)
	return err
}

func (r *PgProductRepository) GetByID(ctx context.Context, id string) (domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)
	return scanProduct(r.pool.QueryRow(ctx, query, id))
}

func (r *PgProductRepository) GetByName(ctx context.Context, name string) (domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE name = $1`, productColumns)
	return scanProduct(r.pool.QueryRow(ctx, query, name))
}

func (r *PgProductRepository) Update(ctx context.Context, id string, update ProductUpdate) (domain.Product, error) {
	set := make([]string, 0, 8)
	args := make([]any, 0, 9)
	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Name != nil {
		add("name", *update.Name)
	}
	if update.Description != nil {
		add("description", *update.Description)
	}
	if update.Price != nil {
		add("price", *update.Price)
	}
	if update.Category != nil {
		add("category", *update.Category)
	}
	if update.SupplierID != nil {
		add("supplier_id", *update.SupplierID)
	}
	if update.StockQuantity != nil {
		add("stock_quantity", *update.StockQuantity)
	}
	if update.LowStockThreshold != nil {
		add("low_stock_threshold", *update.LowStockThreshold)
	}
	add("updated_at", time.Now().UTC())

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE products SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(set, ", "), len(args), productColumns,
	)
	return scanProduct(r.pool.QueryRow(ctx, query, args...))
}

func (r *PgProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgProductRepository) AdjustStock(ctx context.Context, id string, delta int) (domain.Product, error) {
	query := fmt.Sprintf(`
		UPDATE products
		SET stock_quantity = stock_quantity + $2, updated_at = $3
		WHERE id = $1
		RETURNING %s
	`, productColumns)
	return scanProduct(r.pool.QueryRow(ctx, query, id, delta, time.Now().UTC()))
}

func (r *PgProductRepository) List(ctx context.Context, page, limit int, filter ProductFilter) ([]domain.Product, int, error) {
	where := make([]string, 0, 3)
	args := make([]any, 0, 5)

	if filter.Name != "" {
		args = append(args, "%"+filter.Name+"%")
		where = append(where, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.SupplierID != "" {
		args = append(args, filter.SupplierID)
		where = append(where, fmt.Sprintf("supplier_id = $%d", len(args)))
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM products" + whereClause
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, (page-1)*limit)
	query := fmt.Sprintf(
		`SELECT %s FROM products%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		productColumns, whereClause, len(args)-1, len(args),
	)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	products, err := collectProducts(rows)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *PgProductRepository) ListLowStock(ctx context.Context, page, limit int) ([]domain.Product, int, error) {
	const lowStockWhere = ` WHERE low_stock_threshold IS NOT NULL AND stock_quantity < low_stock_threshold`

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM products"+lowStockWhere).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(
		`SELECT %s FROM products%s ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		productColumns, lowStockWhere,
	)
	rows, err := r.pool.Query(ctx, query, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	products, err := collectProducts(rows)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func collectProducts(rows pgx.Rows) ([]domain.Product, error) {
	products := make([]domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
