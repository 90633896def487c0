package services

import (
	"fmt"

	"github.com/rmedina/go-tienda/internal/models"

	"gorm.io/gorm"
)

// ResponsibleSystem is recorded on movements when no employee is identified.
const ResponsibleSystem = "Sistema"

// Ledger is the single choke point for Product.Stock mutation. Both the sale
// flow and the standalone inventory flow go through Adjust, so the
// negative-stock check lives in exactly one place.
type Ledger struct{}

func NewLedger() *Ledger { return &Ledger{} }

// Adjust applies a signed delta to a product's on-hand quantity inside the
// caller's transaction, and returns the refreshed product. The check and the
// write are a single guarded UPDATE, so two concurrent decrements cannot both
// pass against a stale quantity and jointly drive stock negative.
func (l *Ledger) Adjust(tx *gorm.DB, productID uint, delta int) (*models.Product, error) {
	if delta != 0 {
		res := tx.Model(&models.Product{}).
			Where("id = ? AND stock + ? >= 0", productID, delta).
			UpdateColumn("stock", gorm.Expr("stock + ?", delta))
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			var p models.Product
			if err := tx.First(&p, productID).Error; err != nil {
				return nil, err
			}
			return nil, &InsufficientStockError{
				ProductID:   p.ID,
				ProductName: p.Name,
				Available:   p.Stock,
				Requested:   -delta,
			}
		}
	}
	var p models.Product
	if err := tx.First(&p, productID).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// Record appends one immutable movement row for a logical stock change.
// Quantity must be a positive magnitude; the kind alone encodes direction.
func (l *Ledger) Record(tx *gorm.DB, product *models.Product, kind string, quantity int, reason, responsible string) (*models.InventoryMovement, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("movement quantity must be positive, got %d", quantity)
	}
	switch kind {
	case models.MovementIn, models.MovementOut, models.MovementAdjust:
	default:
		return nil, fmt.Errorf("unknown movement kind %q", kind)
	}
	if responsible == "" {
		responsible = ResponsibleSystem
	}
	mv := models.InventoryMovement{
		ProductID:   product.ID,
		Kind:        kind,
		Quantity:    quantity,
		Reason:      reason,
		Responsible: responsible,
	}
	if err := tx.Create(&mv).Error; err != nil {
		return nil, err
	}
	return &mv, nil
}
