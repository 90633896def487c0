package services

import (
	"errors"
	"strings"

	"github.com/rmedina/go-tienda/internal/models"
	"github.com/rmedina/go-tienda/internal/validation"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// MovementInput is the standalone (non-sale) inventory movement form.
type MovementInput struct {
	ProductID   uint   `json:"product_id" validate:"required"`
	Kind        string `json:"kind" validate:"required,oneof=ENT SAL AJU"`
	Quantity    int    `json:"quantity" validate:"required,gt=0"`
	Reason      string `json:"reason"`
	Responsible string `json:"responsible"`
}

// InventoryService manages the movement ledger outside the sale flow: manual
// stock entries, outflows and adjustments, and the deletion path that reverses
// a movement's stock effect before removing the record. Stock mutation still
// goes through the shared Ledger, so the negative-stock invariant is enforced
// in one place.
type InventoryService struct {
	db       *gorm.DB
	ledger   *Ledger
	validate *validator.Validate
}

func NewInventoryService(db *gorm.DB, ledger *Ledger) *InventoryService {
	return &InventoryService{db: db, ledger: ledger, validate: validator.New()}
}

// Add records one movement and applies its stock effect atomically. ENT adds
// stock, SAL subtracts (rejected when it would go negative), AJU records a
// correction without touching stock.
func (s *InventoryService) Add(in MovementInput) (*models.InventoryMovement, error) {
	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			viol := validation.Violations{}
			for _, fe := range verrs {
				viol[strings.ToLower(fe.Field())] = fe.Tag()
			}
			return nil, &ValidationError{Violations: viol}
		}
		return nil, err
	}
	var out *models.InventoryMovement
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var p *models.Product
		var err error
		switch in.Kind {
		case models.MovementIn:
			p, err = s.ledger.Adjust(tx, in.ProductID, +in.Quantity)
		case models.MovementOut:
			p, err = s.ledger.Adjust(tx, in.ProductID, -in.Quantity)
		case models.MovementAdjust:
			p, err = s.ledger.Adjust(tx, in.ProductID, 0)
		}
		if err != nil {
			return err
		}
		out, err = s.ledger.Record(tx, p, in.Kind, in.Quantity, in.Reason, in.Responsible)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete reverses a movement's stock effect, then removes the record. An ENT
// whose reversal would drive stock negative is refused; the movement stays.
func (s *InventoryService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var mv models.InventoryMovement
		if err := tx.First(&mv, id).Error; err != nil {
			return err
		}
		switch mv.Kind {
		case models.MovementIn:
			if _, err := s.ledger.Adjust(tx, mv.ProductID, -mv.Quantity); err != nil {
				return err
			}
		case models.MovementOut:
			if _, err := s.ledger.Adjust(tx, mv.ProductID, +mv.Quantity); err != nil {
				return err
			}
		}
		return tx.Delete(&models.InventoryMovement{}, mv.ID).Error
	})
}

func (s *InventoryService) Get(id uint) (*models.InventoryMovement, error) {
	var mv models.InventoryMovement
	if err := s.db.Preload("Product").First(&mv, id).Error; err != nil {
		return nil, err
	}
	return &mv, nil
}

func (s *InventoryService) List() ([]models.InventoryMovement, error) {
	var mvs []models.InventoryMovement
	err := s.db.Preload("Product").Order("moved_at desc, id desc").Find(&mvs).Error
	return mvs, err
}
