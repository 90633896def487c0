package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee positions.
const (
	RoleSeller      = "VEN"
	RoleCashier     = "CAJ"
	RoleWarehouse   = "ALM"
	RoleManager     = "GER"
	RoleSupervisor  = "SUP"
	RoleOtherStaff  = "OTR"
)

var EmployeeRoles = []struct {
	Code  string
	Label string
}{
	{RoleSeller, "Vendedor"},
	{RoleCashier, "Cajero"},
	{RoleWarehouse, "Almacenista"},
	{RoleManager, "Gerente"},
	{RoleSupervisor, "Supervisor"},
	{RoleOtherStaff, "Otro"},
}

type Employee struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	FullName  string           `gorm:"size:150;not null;index" json:"full_name"`
	Role      string           `gorm:"size:3;not null;default:'VEN'" json:"role"`
	Phone     string           `gorm:"size:20" json:"phone"`
	Email     string           `gorm:"size:100" json:"email"`
	HiredAt   time.Time        `json:"hired_at"`
	Salary    *decimal.Decimal `gorm:"type:decimal(10,2)" json:"salary"`
	Active    bool             `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}
