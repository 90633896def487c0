package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Catalog models
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null;unique" json:"name"`
	Description string    `json:"description"`
	Aisle       *int      `json:"aisle"`
	AreaManager string    `gorm:"size:100" json:"area_manager"`
	Active      bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Supplier struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CompanyName  string    `gorm:"size:150;not null;unique" json:"company_name"`
	ContactName  string    `gorm:"size:100" json:"contact_name"`
	Phone        string    `gorm:"size:20" json:"phone"`
	CompanyPhone string    `gorm:"size:20" json:"company_phone"`
	Email        string    `gorm:"size:100" json:"email"`
	Address      string    `json:"address"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Product is the unit of stock keeping. Stock is a non-negative integer and is
// only ever mutated through the services.Ledger choke point; catalog edits do
// not touch it.
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"size:150;not null;index" json:"name"`
	Description string          `json:"description"`
	SalePrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"sale_price"`
	Stock       int             `gorm:"not null;default:0" json:"stock"`
	Barcode     *string         `gorm:"size:100;uniqueIndex" json:"barcode"`
	CategoryID  *uint           `gorm:"index" json:"category_id"`
	Category    *Category       `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
	Suppliers   []Supplier      `gorm:"many2many:product_suppliers" json:"suppliers,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
