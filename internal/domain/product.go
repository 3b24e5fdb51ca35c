package domain

import "time"

// Product es un producto del inventario. Los campos opcionales usan punteros
// para distinguir ausencia de valor cero.
type Product struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Description       *string   `json:"description,omitempty"`
	Price             float64   `json:"price"`
	Category          *string   `json:"category,omitempty"`
	SupplierID        *string   `json:"supplier_id,omitempty"`
	StockQuantity     int       `json:"stock_quantity"`
	LowStockThreshold *int      `json:"low_stock_threshold,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
