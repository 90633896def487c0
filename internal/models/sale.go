package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment methods accepted on a sale.
const (
	PaymentCash     = "EFE"
	PaymentCard     = "TAR"
	PaymentTransfer = "TRA"
	PaymentOther    = "OTR"
)

// PaymentMethods lists the accepted codes with display labels, in menu order.
var PaymentMethods = []struct {
	Code  string
	Label string
}{
	{PaymentCash, "Efectivo"},
	{PaymentCard, "Tarjeta de Crédito/Débito"},
	{PaymentTransfer, "Transferencia Bancaria"},
	{PaymentOther, "Otro"},
}

// Sale is the transaction header. Total is derived from the line subtotals and
// is never set directly by user input. Exactly one customer resolution path is
// populated: CustomerID for a known customer, or CustomerName for "Anónimo" /
// a free-text name. Same scheme for EmployeeID vs SellerName.
type Sale struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	SoldAt        time.Time       `gorm:"autoCreateTime;<-:create" json:"sold_at"`
	CustomerID    *uint           `gorm:"index" json:"customer_id"`
	Customer      *Customer       `gorm:"foreignKey:CustomerID;constraint:OnDelete:SET NULL" json:"customer,omitempty"`
	CustomerName  string          `gorm:"size:150" json:"customer_name"`
	EmployeeID    *uint           `gorm:"index" json:"employee_id"`
	Employee      *Employee       `gorm:"foreignKey:EmployeeID;constraint:OnDelete:SET NULL" json:"employee,omitempty"`
	SellerName    string          `gorm:"size:100" json:"seller_name"`
	PaymentMethod string          `gorm:"size:3;not null;default:'EFE'" json:"payment_method"`
	Paid          bool            `gorm:"not null;default:true" json:"paid"`
	Total         decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"total"`
	Notes         string          `json:"notes"`
	Lines         []SaleLine      `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"lines,omitempty"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CustomerDisplay prefers the linked customer over the free-text fallback.
func (s *Sale) CustomerDisplay() string {
	if s.Customer != nil {
		return s.Customer.FullName
	}
	if s.CustomerName != "" {
		return s.CustomerName
	}
	return "N/A"
}

// SellerDisplay prefers the linked employee over the free-text fallback.
func (s *Sale) SellerDisplay() string {
	if s.Employee != nil {
		return s.Employee.FullName
	}
	if s.SellerName != "" {
		return s.SellerName
	}
	return "N/A"
}

// SaleLine is one product position within a sale. At most one line per
// (sale, product) pair. Subtotal = quantity * unit price * (1 - discount/100),
// recomputed on every save.
type SaleLine struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	SaleID          uint            `gorm:"not null;index:idx_sale_product,unique,priority:1" json:"sale_id"`
	ProductID       uint            `gorm:"not null;index:idx_sale_product,unique,priority:2" json:"product_id"`
	Product         Product         `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity        int             `gorm:"not null;default:1" json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"discount_percent"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"subtotal"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
