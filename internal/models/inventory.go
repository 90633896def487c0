package models

import "time"

// Movement kinds. Quantity is always stored positive; the kind alone encodes
// the direction of the stock effect (ENT adds, SAL subtracts, AJU records a
// correction without touching stock).
const (
	MovementIn     = "ENT"
	MovementOut    = "SAL"
	MovementAdjust = "AJU"
)

// MovementKinds lists the accepted codes with display labels.
var MovementKinds = []struct {
	Code  string
	Label string
}{
	{MovementIn, "Entrada"},
	{MovementOut, "Salida"},
	{MovementAdjust, "Ajuste"},
}

// InventoryMovement is an append-only audit record for every stock change.
// There is no update path: a wrong movement is deleted (which reverses its
// stock effect) and re-entered.
type InventoryMovement struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProductID   uint      `gorm:"not null;index" json:"product_id"`
	Product     Product   `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Kind        string    `gorm:"size:3;not null" json:"kind"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	MovedAt     time.Time `gorm:"autoCreateTime;<-:create" json:"moved_at"`
	Reason      string    `gorm:"size:255" json:"reason"`
	Responsible string    `gorm:"size:100" json:"responsible"`
}
