package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rmedina/go-tienda/internal/models"
	"github.com/rmedina/go-tienda/internal/money"
	"github.com/rmedina/go-tienda/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Customer resolution kinds. Exactly one path is taken per sale: a known
// customer record, the anonymous marker, or a free-text name.
const (
	CustomerKnown     = "known"
	CustomerAnonymous = "anonymous"
	CustomerOther     = "other"
)

// Seller resolution kinds. Empty means unattributed; movements are then
// logged under the system responsible.
const (
	SellerEmployee = "employee"
	SellerOther    = "other"
)

// AnonymousCustomerName is stored in the free-text field for anonymous sales.
const AnonymousCustomerName = "Anónimo"

type CustomerChoice struct {
	Kind       string `json:"kind" validate:"required,oneof=known anonymous other"`
	CustomerID uint   `json:"customer_id"`
	Name       string `json:"name"`
}

type SellerChoice struct {
	Kind       string `json:"kind" validate:"omitempty,oneof=employee other"`
	EmployeeID uint   `json:"employee_id"`
	Name       string `json:"name"`
}

// LineInput is one entry of the submitted line change-set. ID is zero for new
// lines; Delete marks an existing line for removal. Price and discount arrive
// as raw strings because malformed values degrade the subtotal to zero instead
// of failing the whole sale.
type LineInput struct {
	ID              uint   `json:"id"`
	Delete          bool   `json:"delete"`
	ProductID       uint   `json:"product_id"`
	Quantity        int    `json:"quantity"`
	UnitPrice       string `json:"unit_price"`
	DiscountPercent string `json:"discount_percent"`
}

type SaleInput struct {
	Customer      CustomerChoice `json:"customer"`
	Seller        SellerChoice   `json:"seller"`
	PaymentMethod string         `json:"payment_method" validate:"required,oneof=EFE TAR TRA OTR"`
	Paid          bool           `json:"paid"`
	Notes         string         `json:"notes"`
	Lines         []LineInput    `json:"lines"`
}

// SaleService is the transactional entry point for creating, editing and
// deleting sales. Every operation runs inside one DB transaction: header
// update, line reconciliation, stock effects, movement records and the total
// recompute commit together or not at all.
type SaleService struct {
	db       *gorm.DB
	ledger   *Ledger
	validate *validator.Validate
	log      *logrus.Logger
}

func NewSaleService(db *gorm.DB, ledger *Ledger, log *logrus.Logger) *SaleService {
	return &SaleService{db: db, ledger: ledger, validate: validator.New(), log: log}
}

// saleParties is the resolved header: what gets persisted on the sale row and
// the display names used in movement reasons and responsible fields.
type saleParties struct {
	customerID   *uint
	customerName string
	customerLog  string
	employeeID   *uint
	sellerName   string
	sellerLog    string
}

func (s *SaleService) resolveParties(tx *gorm.DB, in SaleInput) (*saleParties, error) {
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

	p := &saleParties{customerLog: "N/A", sellerLog: ResponsibleSystem}

	switch in.Customer.Kind {
	case CustomerKnown:
		if in.Customer.CustomerID == 0 {
			return nil, newValidationError("customer_id", "required")
		}
		var c models.Customer
		if err := tx.First(&c, in.Customer.CustomerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, newValidationError("customer_id", "unknown")
			}
			return nil, err
		}
		id := c.ID
		p.customerID = &id
		p.customerLog = c.FullName
	case CustomerAnonymous:
		p.customerName = AnonymousCustomerName
		p.customerLog = AnonymousCustomerName
	case CustomerOther:
		name := strings.TrimSpace(in.Customer.Name)
		if name == "" {
			return nil, newValidationError("customer_name", "required")
		}
		p.customerName = name
		p.customerLog = name
	}

	switch in.Seller.Kind {
	case SellerEmployee:
		if in.Seller.EmployeeID == 0 {
			return nil, newValidationError("employee_id", "required")
		}
		var e models.Employee
		if err := tx.First(&e, in.Seller.EmployeeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, newValidationError("employee_id", "unknown")
			}
			return nil, err
		}
		id := e.ID
		p.employeeID = &id
		p.sellerLog = e.FullName
	case SellerOther:
		name := strings.TrimSpace(in.Seller.Name)
		if name == "" {
			return nil, newValidationError("seller_name", "required")
		}
		p.sellerName = name
		p.sellerLog = name
	}

	return p, nil
}

// Create registers a new sale. Header fields validate before any line is
// processed; every line is treated as new, so stock for each product is
// decremented by its full requested quantity. Insufficient stock on any single
// line aborts the whole creation with nothing persisted.
func (s *SaleService) Create(in SaleInput) (*models.Sale, error) {
	var out models.Sale
	err := s.db.Transaction(func(tx *gorm.DB) error {
		parties, err := s.resolveParties(tx, in)
		if err != nil {
			return err
		}
		sale := models.Sale{
			CustomerID:    parties.customerID,
			CustomerName:  parties.customerName,
			EmployeeID:    parties.employeeID,
			SellerName:    parties.sellerName,
			PaymentMethod: in.PaymentMethod,
			Paid:          in.Paid,
			Notes:         in.Notes,
			Total:         decimal.Zero,
		}
		if err := tx.Create(&sale).Error; err != nil {
			return err
		}
		if _, err := s.reconcile(tx, &sale, in.Lines, parties); err != nil {
			return err
		}
		if _, err := s.recomputeTotal(tx, sale.ID); err != nil {
			return err
		}
		return s.load(tx, sale.ID, &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Update edits a sale's header and reconciles its line set against the
// submitted change-set. The total is re-aggregated unless the submission is
// empty and nothing changed.
func (s *SaleService) Update(id uint, in SaleInput) (*models.Sale, error) {
	var out models.Sale
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var sale models.Sale
		if err := tx.First(&sale, id).Error; err != nil {
			return err
		}
		parties, err := s.resolveParties(tx, in)
		if err != nil {
			return err
		}
		updates := map[string]any{
			"customer_id":    parties.customerID,
			"customer_name":  parties.customerName,
			"employee_id":    parties.employeeID,
			"seller_name":    parties.sellerName,
			"payment_method": in.PaymentMethod,
			"paid":           in.Paid,
			"notes":          in.Notes,
		}
		if err := tx.Model(&sale).Updates(updates).Error; err != nil {
			return err
		}
		changed, err := s.reconcile(tx, &sale, in.Lines, parties)
		if err != nil {
			return err
		}
		if changed {
			if _, err := s.recomputeTotal(tx, sale.ID); err != nil {
				return err
			}
		}
		return s.load(tx, sale.ID, &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a sale wholesale, reversing every line's stock effect and
// recording a compensating entry movement per product before the lines and
// header go away. Without the reversal, deleted sales would leak stock that
// was decremented but never restored.
func (s *SaleService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var sale models.Sale
		if err := tx.Preload("Lines").Preload("Employee").First(&sale, id).Error; err != nil {
			return err
		}
		responsible := ResponsibleSystem
		if sale.Employee != nil {
			responsible = sale.Employee.FullName
		} else if sale.SellerName != "" {
			responsible = sale.SellerName
		}
		for _, ln := range sale.Lines {
			p, err := s.ledger.Adjust(tx, ln.ProductID, +ln.Quantity)
			if err != nil {
				return err
			}
			reason := fmt.Sprintf("Anulación de Venta #%d", sale.ID)
			if _, err := s.ledger.Record(tx, p, models.MovementIn, ln.Quantity, reason, responsible); err != nil {
				return err
			}
		}
		if err := tx.Where("sale_id = ?", sale.ID).Delete(&models.SaleLine{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Sale{}, sale.ID).Error
	})
}

func (s *SaleService) Get(id uint) (*models.Sale, error) {
	var sale models.Sale
	if err := s.load(s.db, id, &sale); err != nil {
		return nil, err
	}
	return &sale, nil
}

func (s *SaleService) List() ([]models.Sale, error) {
	var sales []models.Sale
	err := s.db.Preload("Lines").Preload("Customer").Preload("Employee").
		Order("sold_at desc, id desc").Find(&sales).Error
	return sales, err
}

func (s *SaleService) load(tx *gorm.DB, id uint, dst *models.Sale) error {
	return tx.Preload("Lines").Preload("Lines.Product").
		Preload("Customer").Preload("Employee").First(dst, id).Error
}

// reconcile diffs the submitted change-set against the sale's persisted lines
// and drives exactly one ledger adjustment per affected product. Order
// matters: deletions release stock first, so a multi-line edit that moves
// quantity between products observes its own reversals. Each line is
// persisted, with a freshly computed subtotal, only after its stock effect
// succeeded. Returns whether the line set changed.
func (s *SaleService) reconcile(tx *gorm.DB, sale *models.Sale, lines []LineInput, parties *saleParties) (bool, error) {
	var existing []models.SaleLine
	if err := tx.Where("sale_id = ?", sale.ID).Find(&existing).Error; err != nil {
		return false, err
	}
	snapshot := make(map[uint]models.SaleLine, len(existing))
	for _, ln := range existing {
		snapshot[ln.ID] = ln
	}

	if err := validateLineSet(lines, existing, snapshot); err != nil {
		return false, err
	}

	changed := false
	editReason := fmt.Sprintf("Devolución por edición de Venta #%d", sale.ID)

	// Step 1: deletions reverse their original stock effect, then drop the row.
	for _, in := range lines {
		if !in.Delete {
			continue
		}
		orig, ok := snapshot[in.ID]
		if !ok {
			continue // already gone; nothing to reverse
		}
		p, err := s.ledger.Adjust(tx, orig.ProductID, +orig.Quantity)
		if err != nil {
			return false, err
		}
		if _, err := s.ledger.Record(tx, p, models.MovementIn, orig.Quantity, editReason, parties.sellerLog); err != nil {
			return false, err
		}
		if err := tx.Delete(&models.SaleLine{}, orig.ID).Error; err != nil {
			return false, err
		}
		delete(snapshot, orig.ID)
		changed = true
	}

	// Step 2: additions and modifications apply the net per-product delta.
	for _, in := range lines {
		if in.Delete {
			continue
		}
		origQty := 0
		var origProduct uint
		if in.ID != 0 {
			orig := snapshot[in.ID]
			origQty = orig.Quantity
			origProduct = orig.ProductID
		}
		if origProduct != 0 && origProduct != in.ProductID {
			// The line now points at a different product: restore the old one
			// fully and treat the new one as a fresh decrement.
			p, err := s.ledger.Adjust(tx, origProduct, +origQty)
			if err != nil {
				return false, err
			}
			if _, err := s.ledger.Record(tx, p, models.MovementIn, origQty, editReason, parties.sellerLog); err != nil {
				return false, err
			}
			origQty = 0
		}
		delta := in.Quantity - origQty
		if delta != 0 {
			p, err := s.ledger.Adjust(tx, in.ProductID, -delta)
			if err != nil {
				return false, err
			}
			if delta > 0 {
				reason := fmt.Sprintf("Venta a cliente %s (Venta #%d)", parties.customerLog, sale.ID)
				if _, err := s.ledger.Record(tx, p, models.MovementOut, delta, reason, parties.sellerLog); err != nil {
					return false, err
				}
			} else {
				if _, err := s.ledger.Record(tx, p, models.MovementIn, -delta, editReason, parties.sellerLog); err != nil {
					return false, err
				}
			}
		}

		price, okPrice := money.ParseAmount(in.UnitPrice)
		disc, okDisc := money.ParseAmount(in.DiscountPercent)
		if !okPrice || !okDisc {
			s.log.WithFields(logrus.Fields{
				"sale_id":    sale.ID,
				"product_id": in.ProductID,
			}).Warn("malformed price or discount on sale line; subtotal degraded to zero")
		}
		subtotal := money.Subtotal(in.Quantity, price, disc)

		if in.ID == 0 {
			ln := models.SaleLine{
				SaleID:          sale.ID,
				ProductID:       in.ProductID,
				Quantity:        in.Quantity,
				UnitPrice:       price,
				DiscountPercent: disc,
				Subtotal:        subtotal,
			}
			if err := tx.Create(&ln).Error; err != nil {
				return false, err
			}
		} else {
			updates := map[string]any{
				"product_id":       in.ProductID,
				"quantity":         in.Quantity,
				"unit_price":       price,
				"discount_percent": disc,
				"subtotal":         subtotal,
			}
			if err := tx.Model(&models.SaleLine{}).Where("id = ?", in.ID).Updates(updates).Error; err != nil {
				return false, err
			}
		}
		changed = true
	}

	return changed, nil
}

// validateLineSet rejects a submission that would violate the one-line-per
// (sale, product) invariant, or that carries an invalid quantity or an unknown
// line id, before any stock mutation happens.
func validateLineSet(lines []LineInput, existing []models.SaleLine, snapshot map[uint]models.SaleLine) error {
	deleted := map[uint]bool{}
	edited := map[uint]bool{}
	for _, in := range lines {
		if in.Delete {
			deleted[in.ID] = true
		} else if in.ID != 0 {
			edited[in.ID] = true
		}
	}
	occupied := map[uint]bool{}
	for _, ln := range existing {
		if !deleted[ln.ID] && !edited[ln.ID] {
			occupied[ln.ProductID] = true
		}
	}
	for _, in := range lines {
		if in.Delete {
			continue
		}
		if in.ProductID == 0 {
			return newValidationError("lines", "product_required")
		}
		if in.Quantity <= 0 {
			return newValidationError("lines", "quantity_must_be_positive")
		}
		if in.ID != 0 {
			// The same line must not be both deleted and edited: step 1 would
			// drop the row and step 2 would then decrement stock against a
			// line that no longer exists.
			if deleted[in.ID] {
				return newValidationError("lines", "duplicate_line_entry")
			}
			if _, ok := snapshot[in.ID]; !ok {
				return newValidationError("lines", "unknown_line")
			}
		}
		if occupied[in.ProductID] {
			return newValidationError("lines", "duplicate_product")
		}
		occupied[in.ProductID] = true
	}
	return nil
}

// recomputeTotal re-aggregates the sale total from the live line set and
// persists it on the header. Full re-aggregation rather than incremental
// maintenance: line counts per sale are small and the sum can never drift.
func (s *SaleService) recomputeTotal(tx *gorm.DB, saleID uint) (decimal.Decimal, error) {
	var lines []models.SaleLine
	if err := tx.Where("sale_id = ?", saleID).Find(&lines).Error; err != nil {
		return decimal.Zero, err
	}
	subtotals := make([]decimal.Decimal, len(lines))
	for i, ln := range lines {
		subtotals[i] = ln.Subtotal
	}
	total := money.Sum(subtotals...)
	if err := tx.Model(&models.Sale{}).Where("id = ?", saleID).Update("total", total).Error; err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
