package domain

import "time"

type Supplier struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Address   *string   `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SupplierWithProducts agrupa un proveedor con sus productos para reportes.
type SupplierWithProducts struct {
	Supplier Supplier  `json:"supplier"`
	Products []Product `json:"products"`
}
