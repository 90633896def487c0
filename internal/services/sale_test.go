package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/rmedina/go-tienda/internal/models"

	"gorm.io/gorm"
)

func TestCreateSaleComputesTotalAndDecrementsStock(t *testing.T) {
	svc, db := newSaleService(t)
	prodA := seedProduct(t, db, "Café", "10.00", 10)
	prodB := seedProduct(t, db, "Azúcar", "5.00", 10)

	sale, err := svc.Create(anonymousSale(
		LineInput{ProductID: prodA.ID, Quantity: 2, UnitPrice: "10.00", DiscountPercent: "0"},
		LineInput{ProductID: prodB.ID, Quantity: 1, UnitPrice: "5.00", DiscountPercent: "10"},
	))
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}

	// 2*10.00 + 1*5.00*0.9 = 24.50
	if !sale.Total.Equal(mustDec(t, "24.50")) {
		t.Fatalf("total = %s, want 24.50", sale.Total)
	}
	if got := productStock(t, db, prodA.ID); got != 8 {
		t.Fatalf("prodA stock = %d, want 8", got)
	}
	if got := productStock(t, db, prodB.ID); got != 9 {
		t.Fatalf("prodB stock = %d, want 9", got)
	}
	if n := countMovements(t, db, 0, models.MovementOut); n != 2 {
		t.Fatalf("OUT movements = %d, want 2", n)
	}

	var mv models.InventoryMovement
	if err := db.Where("product_id = ?", prodA.ID).First(&mv).Error; err != nil {
		t.Fatalf("load movement: %v", err)
	}
	if !strings.Contains(mv.Reason, "Venta #") {
		t.Fatalf("movement reason %q does not reference the sale", mv.Reason)
	}
	if mv.Responsible != ResponsibleSystem {
		t.Fatalf("responsible = %q, want %q", mv.Responsible, ResponsibleSystem)
	}
	if mv.Quantity <= 0 {
		t.Fatalf("movement quantity must be positive, got %d", mv.Quantity)
	}
}

func TestCreateSaleInsufficientStockAbortsEverything(t *testing.T) {
	svc, db := newSaleService(t)
	cheap := seedProduct(t, db, "Pan", "2.00", 100)
	scarce := seedProduct(t, db, "Leche", "15.00", 5)

	_, err := svc.Create(anonymousSale(
		LineInput{ProductID: cheap.ID, Quantity: 3, UnitPrice: "2.00", DiscountPercent: "0"},
		LineInput{ProductID: scarce.ID, Quantity: 6, UnitPrice: "15.00", DiscountPercent: "0"},
	))
	var insufficientErr *InsufficientStockError
	if !errors.As(err, &insufficientErr) {
		t.Fatalf("want InsufficientStockError, got %v", err)
	}
	if insufficientErr.ProductName != "Leche" || insufficientErr.Available != 5 {
		t.Fatalf("error = %+v, want product Leche available 5", insufficientErr)
	}
	if !strings.Contains(insufficientErr.Error(), "Disponible: 5") {
		t.Fatalf("message %q missing available quantity", insufficientErr.Error())
	}

	// Nothing from the attempt survives, including line 1's decrement.
	if got := productStock(t, db, cheap.ID); got != 100 {
		t.Fatalf("cheap stock = %d, want 100 (rolled back)", got)
	}
	if got := productStock(t, db, scarce.ID); got != 5 {
		t.Fatalf("scarce stock = %d, want 5", got)
	}
	var sales, lines, movements int64
	db.Model(&models.Sale{}).Count(&sales)
	db.Model(&models.SaleLine{}).Count(&lines)
	db.Model(&models.InventoryMovement{}).Count(&movements)
	if sales != 0 || lines != 0 || movements != 0 {
		t.Fatalf("persisted rows after failed create: sales=%d lines=%d movements=%d", sales, lines, movements)
	}
}

func TestCreateSaleHeaderValidation(t *testing.T) {
	svc, db := newSaleService(t)
	p := seedProduct(t, db, "Arroz", "3.00", 10)
	line := LineInput{ProductID: p.ID, Quantity: 1, UnitPrice: "3.00", DiscountPercent: "0"}

	cases := []struct {
		name  string
		input SaleInput
	}{
		{"missing customer kind", SaleInput{PaymentMethod: models.PaymentCash, Lines: []LineInput{line}}},
		{"other without name", SaleInput{Customer: CustomerChoice{Kind: CustomerOther}, PaymentMethod: models.PaymentCash, Lines: []LineInput{line}}},
		{"unknown customer id", SaleInput{Customer: CustomerChoice{Kind: CustomerKnown, CustomerID: 999}, PaymentMethod: models.PaymentCash, Lines: []LineInput{line}}},
		{"invalid payment method", SaleInput{Customer: CustomerChoice{Kind: CustomerAnonymous}, PaymentMethod: "XXX", Lines: []LineInput{line}}},
		{"unknown employee", SaleInput{Customer: CustomerChoice{Kind: CustomerAnonymous}, Seller: SellerChoice{Kind: SellerEmployee, EmployeeID: 999}, PaymentMethod: models.PaymentCash, Lines: []LineInput{line}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(tc.input)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("want ValidationError, got %v", err)
			}
			if got := productStock(t, db, p.ID); got != 10 {
				t.Fatalf("stock mutated by invalid header: %d", got)
			}
		})
	}
}

func TestCreateSaleWithKnownpartiesTagsMovements(t *testing.T) {
	svc, db := newSaleService(t)
	p := seedProduct(t, db, "Queso", "8.00", 10)
	cust := seedCustomer(t, db, "María López")
	emp := seedEmployee(t, db, "Juan Pérez")

	sale, err := svc.Create(SaleInput{
		Customer:      CustomerChoice{Kind: CustomerKnown, CustomerID: cust.ID},
		Seller:        SellerChoice{Kind: SellerEmployee, EmployeeID: emp.ID},
		PaymentMethod: models.PaymentCard,
		Paid:          true,
		Lines:         []LineInput{{ProductID: p.ID, Quantity: 1, UnitPrice: "8.00", DiscountPercent: "0"}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sale.CustomerID == nil || *sale.CustomerID != cust.ID {
		t.Fatalf("customer not linked: %+v", sale.CustomerID)
	}
	if sale.CustomerName != "" {
		t.Fatalf("free-text name set alongside known customer: %q", sale.CustomerName)
	}
	var mv models.InventoryMovement
	if err := db.Where("product_id = ?", p.ID).First(&mv).Error; err != nil {
		t.Fatalf("movement: %v", err)
	}
	if !strings.Contains(mv.Reason, "María López") {
		t.Fatalf("reason %q missing customer name", mv.Reason)
	}
	if mv.Responsible != "Juan Pérez" {
		t.Fatalf("responsible = %q, want employee name", mv.Responsible)
	}
}

func TestCreateSaleRejectsDuplicateProductLines(t *testing.T) {
	svc, db := newSaleService(t)
	p := seedProduct(t, db, "Sal", "1.00", 10)

	_, err := svc.Create(anonymousSale(
		LineInput{ProductID: p.ID, Quantity: 1, UnitPrice: "1.00", DiscountPercent: "0"},
		LineInput{ProductID: p.ID, Quantity: 2, UnitPrice: "1.00", DiscountPercent: "0"},
	))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if got := productStock(t, db, p.ID); got != 10 {
		t.Fatalf("stock mutated before uniqueness rejection: %d", got)
	}
}

func TestCreateSaleMalformedPriceDegradesSubtotal(t *testing.T) {
	svc, db := newSaleService(t)
	good := seedProduct(t, db, "Aceite", "20.00", 10)
	bad := seedProduct(t, db, "Harina", "4.00", 10)

	sale, err := svc.Create(anonymousSale(
		LineInput{ProductID: good.ID, Quantity: 1, UnitPrice: "20.00", DiscountPercent: "0"},
		LineInput{ProductID: bad.ID, Quantity: 2, UnitPrice: "not-a-number", DiscountPercent: "0"},
	))
	if err != nil {
		t.Fatalf("malformed line must not fail the sale: %v", err)
	}
	// Degraded line contributes zero; the rest of the transaction stands.
	if !sale.Total.Equal(mustDec(t, "20.00")) {
		t.Fatalf("total = %s, want 20.00", sale.Total)
	}
	// Stock is still decremented: the quantity was valid, only the price was not.
	if got := productStock(t, db, bad.ID); got != 8 {
		t.Fatalf("bad-line stock = %d, want 8", got)
	}
}

func TestUpdateSaleQuantityRoundTrip(t *testing.T) {
	svc, db := newSaleService(t)
	p := seedProduct(t, db, "Atún", "12.00", 10)

	sale, err := svc.Create(anonymousSale(
		LineInput{ProductID: p.ID, Quantity: 2, UnitPrice: "12.00", DiscountPercent: "0"},
	))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := productStock(t, db, p.ID); got != 8 {
		t.Fatalf("stock after create = %d, want 8", got)
	}
	lineID := sale.Lines[0].ID

	// 2 -> 5: net delta 3 decremented.
	sale, err = svc.Update(sale.ID, anonymousSale(
		LineInput{ID: lineID, ProductID: p.ID, Quantity: 5, UnitPrice: "12.00", DiscountPercent: "0"},
	))
	if err != nil {
		t.Fatalf("update up: %v", err)
	}
	if got := productStock(t, db, p.ID); got != 5 {
		t.Fatalf("stock after 2->5 = %d, want 5", got)
	}
	if !sale.Total.Equal(mustDec(t, "60.00")) {
		t.Fatalf("total = %s, want 60.00", sale.Total)
	}

	// 5 -> 2: stock returns to the original level.
	sale, err = svc.Update(sale.ID, anonymousSale(
		LineInput{ID: lineID, ProductID: p.ID, Quantity: 2, UnitPrice: "12.00", DiscountPercent: "0"},
	))
	if err != nil {
		t.Fatalf("update down: %v", err)
	}
	if got := productStock(t, db, p.ID); got != 8 {
		t.Fatalf("stock after 5->2 = %d, want 8", got)
	}
	if !sale.Total.Equal(mustDec(t, "24.00")) {
		t.Fatalf("total = %s, want 24.00", sale.Total)
	}
}

func TestUpdateSaleInsufficientStockRollsBackWholeEdit(t *testing.T) {
	svc, db := newSaleService(t)
	a := seedProduct(t, db, "Jugo", "6.00", 10)
	b := seedProduct(t, db, "Soda", "7.00", 3)

	sale, err := svc.Create(anonymousSale(
		LineInput{ProductID: a.ID, Quantity: 1, UnitPrice: "6.00", DiscountPercent: "0"},
		LineInput{ProductID: b.ID, Quantity: 1, UnitPrice: "7.00", DiscountPercent: "0"},
	))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	var lineA, lineB models.SaleLine
	for _, ln := range sale.Lines {
		if ln.ProductID == a.ID {
			lineA = ln
		} else {
			lineB = ln
		}
	}

	// Line A grows fine, line B asks for more than exists: whole edit aborts.
	_, err = svc.Update(sale.ID, anonymousSale(
		LineInput{ID: lineA.ID, ProductID: a.ID, Quantity: 5, UnitPrice: "6.00", DiscountPercent: "0"},
		LineInput{ID: lineB.ID, ProductID: b.ID, Quantity: 9, UnitPrice: "7.00", DiscountPercent: "0"},
	))
	var insufficientErr *InsufficientStockError
	if !errors.As(err, &insufficientErr) {
		t.Fatalf("want InsufficientStockError, got %v", err)
	}
	if got := productStock(t, db, a.ID); got != 9 {
		t.Fatalf("product A stock = %d, want 9 (edit rolled back)", got)
	}
	if got := productStock(t, db, b.ID); got != 2 {
		t.Fatalf("product B stock = %d, want 2 (edit rolled back)", got)
	}
	var reloaded models.SaleLine
	if err := db.First(&reloaded, lineA.ID).Error; err != nil {
		t.Fatalf("reload line: %v", err)
	}
	if reloaded.Quantity != 1 {
		t.Fatalf("line A quantity = %d, want 1 (edit rolled back)", reloaded.Quantity)
	}
}

func TestUpdateSaleLineDeletionReversesOnce(t *testing.T) {
	svc, db := newSaleService(t)
	keep := seedProduct(t, db, "Galletas", "3.50", 10)
	drop := seedProduct(t, db, "Chicles", "1.50", 10)

	sale, err := svc.Create(anonymousSale(
		LineInput{ProductID: keep.ID, Quantity: 2, UnitPrice: "3.50", DiscountPercent: "0"},
		LineInput{ProductID: drop.ID, Quantity: 4, UnitPrice: "1.50", DiscountPercent: "0"},
	))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	var keepLine, dropLine models.SaleLine
	for _, ln := range sale.Lines {
		if ln.ProductID == keep.ID {
			keepLine = ln
		} else {
			dropLine = ln
		}
	}

	sale, err = svc.Update(sale.ID, anonymousSale(
		LineInput{ID: keepLine.ID, ProductID: keep.ID, Quantity: 2, UnitPrice: "3.50", DiscountPercent: "0"},
		LineInput{ID: dropLine.ID, Delete: true},
	))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := productStock(t, db, drop.ID); got != 10 {
		t.Fatalf("dropped product stock = %d, want 10 (reversed exactly once)", got)
	}
	if len(sale.Lines) != 1 {
		t.Fatalf("lines after deletion = %d, want 1", len(sale.Lines))
	}
	if !sale.Total.Equal(mustDec(t, "7.00")) {
		t.Fatalf("total = %s, want 7.00", sale.Total)
	}
	if n := countMovements(t, db, drop.ID, models.MovementIn); n != 1 {
		t.Fatalf("IN movements for dropped product = %d, want 1", n)
	}

	// Re-running the edit with no further changes must not double-reverse.
	sale, err = svc.Update(sale.ID, anonymousSale(
		LineInput{ID: keepLine.ID, ProductID: keep.ID, Quantity: 2, UnitPrice: "3.50", DiscountPercent: "0"},
	))
	if err != nil {
		t.Fatalf("re-run update: %v", err)
	}
	if got := productStock(t, db, drop.ID); got != 10 {
		t.Fatalf("dropped product stock after re-run = %d, want 10", got)
	}
	if !sale.Total.Equal(mustDec(t, "7.00")) {
		t.Fatalf("total after re-run = %s, want 7.00", sale.Total)
	}
}

func TestUpdateSaleRejectsDeleteAndEditOfSameLine(t *testing.T) {
	svc, db := newSaleService(t)
	p := seedProduct(t, db, "Azúcar", "12.00", 10)

	sale, err := svc.Create(anonymousSale(
		LineInput{ProductID: p.ID, Quantity: 2, UnitPrice: "12.00", DiscountPercent: "0"},
	))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	lineID := sale.Lines[0].ID

	// One submission marking the line deleted AND editing it is contradictory
	// and must be rejected outright.
	_, err = svc.Update(sale.ID, anonymousSale(
		LineInput{ID: lineID, Delete: true},
		LineInput{ID: lineID, ProductID: p.ID, Quantity: 3, UnitPrice: "12.00", DiscountPercent: "0"},
	))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want ValidationError, got %v", err)
	}

	// Nothing may have moved: stock, line set and total stay as created.
	if got := productStock(t, db, p.ID); got != 8 {
		t.Fatalf("stock = %d, want 8 (untouched)", got)
	}
	var lines []models.SaleLine
	if err := db.Where("sale_id = ?", sale.ID).Find(&lines).Error; err != nil {
		t.Fatalf("load lines: %v", err)
	}
	if len(lines) != 1 || lines[0].Quantity != 2 {
		t.Fatalf("line set mutated: %+v", lines)
	}
	if n := countMovements(t, db, p.ID, models.MovementOut); n != 1 {
		t.Fatalf("OUT movements = %d, want 1 (only the creation)", n)
	}
	assertTotalInvariant(t, db, sale.ID)
}

func TestUpdateSaleRejectsDuplicateAgainstExistingLine(t *testing.T) {
	svc, db := newSaleService(t)
	a := seedProduct(t, db, "Huevos", "2.50", 20)
	b := seedProduct(t, db, "Tortillas", "1.00", 20)

	sale, err := svc.Create(anonymousSale(
		LineInput{ProductID: a.ID, Quantity: 1, UnitPrice: "2.50", DiscountPercent: "0"},
		LineInput{ProductID: b.ID, Quantity: 1, UnitPrice: "1.00", DiscountPercent: "0"},
	))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// A brand-new line for a product that already has a line must be rejected.
	_, err = svc.Update(sale.ID, anonymousSale(
		LineInput{ProductID: a.ID, Quantity: 3, UnitPrice: "2.50", DiscountPercent: "0"},
	))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if got := productStock(t, db, a.ID); got != 19 {
		t.Fatalf("stock mutated by rejected submission: %d, want 19", got)
	}
}

func TestUpdateSaleProductSwapRestoresOldProduct(t *testing.T) {
	svc, db := newSaleService(t)
	oldP := seedProduct(t, db, "Cerveza", "18.00", 10)
	newP := seedProduct(t, db, "Vino", "95.00", 4)

	sale, err := svc.Create(anonymousSale(
		LineInput{ProductID: oldP.ID, Quantity: 3, UnitPrice: "18.00", DiscountPercent: "0"},
	))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	lineID := sale.Lines[0].ID

	sale, err = svc.Update(sale.ID, anonymousSale(
		LineInput{ID: lineID, ProductID: newP.ID, Quantity: 2, UnitPrice: "95.00", DiscountPercent: "0"},
	))
	if err != nil {
		t.Fatalf("swap update: %v", err)
	}
	if got := productStock(t, db, oldP.ID); got != 10 {
		t.Fatalf("old product stock = %d, want 10 (fully restored)", got)
	}
	if got := productStock(t, db, newP.ID); got != 2 {
		t.Fatalf("new product stock = %d, want 2", got)
	}
	if !sale.Total.Equal(mustDec(t, "190.00")) {
		t.Fatalf("total = %s, want 190.00", sale.Total)
	}
}

func TestUpdateSaleEmptySubmissionKeepsTotal(t *testing.T) {
	svc, db := newSaleService(t)
	p := seedProduct(t, db, "Miel", "30.00", 10)

	sale, err := svc.Create(anonymousSale(
		LineInput{ProductID: p.ID, Quantity: 1, UnitPrice: "30.00", DiscountPercent: "0"},
	))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Header-only edit: no line submission, no stock or total churn.
	got, err := svc.Update(sale.ID, SaleInput{
		Customer:      CustomerChoice{Kind: CustomerOther, Name: "Pedro"},
		PaymentMethod: models.PaymentTransfer,
		Paid:          false,
		Notes:         "pendiente de pago",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !got.Total.Equal(mustDec(t, "30.00")) {
		t.Fatalf("total = %s, want 30.00", got.Total)
	}
	if got.PaymentMethod != models.PaymentTransfer || got.Paid {
		t.Fatalf("header not updated: %+v", got)
	}
	if got.CustomerName != "Pedro" || got.CustomerID != nil {
		t.Fatalf("customer resolution = (%v, %q), want free-text Pedro", got.CustomerID, got.CustomerName)
	}
	if got := productStock(t, db, p.ID); got != 9 {
		t.Fatalf("stock = %d, want 9", got)
	}
}

func TestAggregatorIdempotentOnUnchangedLines(t *testing.T) {
	svc, db := newSaleService(t)
	p := seedProduct(t, db, "Yogur", "9.90", 10)

	sale, err := svc.Create(anonymousSale(
		LineInput{ProductID: p.ID, Quantity: 3, UnitPrice: "9.90", DiscountPercent: "0"},
	))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	first := sale.Total

	var again models.Sale
	err = db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.recomputeTotal(tx, sale.ID)
		if err != nil {
			return err
		}
		return tx.First(&again, sale.ID).Error
	})
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if !again.Total.Equal(first) {
		t.Fatalf("recompute changed total: %s -> %s", first, again.Total)
	}
}

func TestTotalMatchesLineSubtotalsAfterEveryCommit(t *testing.T) {
	svc, db := newSaleService(t)
	a := seedProduct(t, db, "Fideos", "1.75", 50)
	b := seedProduct(t, db, "Salsa", "4.25", 50)

	sale, err := svc.Create(anonymousSale(
		LineInput{ProductID: a.ID, Quantity: 4, UnitPrice: "1.75", DiscountPercent: "0"},
		LineInput{ProductID: b.ID, Quantity: 2, UnitPrice: "4.25", DiscountPercent: "25"},
	))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	assertTotalInvariant(t, db, sale.ID)

	lineID := sale.Lines[0].ID
	sale, err = svc.Update(sale.ID, anonymousSale(
		LineInput{ID: lineID, ProductID: sale.Lines[0].ProductID, Quantity: 7, UnitPrice: "1.75", DiscountPercent: "10"},
	))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	assertTotalInvariant(t, db, sale.ID)
}

func assertTotalInvariant(t *testing.T, db *gorm.DB, saleID uint) {
	t.Helper()
	var sale models.Sale
	if err := db.Preload("Lines").First(&sale, saleID).Error; err != nil {
		t.Fatalf("load sale: %v", err)
	}
	sum := mustDec(t, "0")
	for _, ln := range sale.Lines {
		sum = sum.Add(ln.Subtotal)
	}
	if !sale.Total.Equal(sum) {
		t.Fatalf("total %s != sum of subtotals %s", sale.Total, sum)
	}
}

func TestDeleteSaleReversesAllLineStockEffects(t *testing.T) {
	svc, db := newSaleService(t)
	a := seedProduct(t, db, "Detergente", "22.00", 10)
	b := seedProduct(t, db, "Esponja", "3.00", 10)
	emp := seedEmployee(t, db, "Ana Ruiz")

	sale, err := svc.Create(SaleInput{
		Customer:      CustomerChoice{Kind: CustomerAnonymous},
		Seller:        SellerChoice{Kind: SellerEmployee, EmployeeID: emp.ID},
		PaymentMethod: models.PaymentCash,
		Paid:          true,
		Lines: []LineInput{
			{ProductID: a.ID, Quantity: 3, UnitPrice: "22.00", DiscountPercent: "0"},
			{ProductID: b.ID, Quantity: 5, UnitPrice: "3.00", DiscountPercent: "0"},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(sale.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := productStock(t, db, a.ID); got != 10 {
		t.Fatalf("product A stock = %d, want 10", got)
	}
	if got := productStock(t, db, b.ID); got != 10 {
		t.Fatalf("product B stock = %d, want 10", got)
	}
	var lines int64
	db.Model(&models.SaleLine{}).Where("sale_id = ?", sale.ID).Count(&lines)
	if lines != 0 {
		t.Fatalf("lines not cascaded: %d", lines)
	}
	if err := db.First(&models.Sale{}, sale.ID).Error; !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("sale still present: %v", err)
	}
	// One compensating IN movement per line, attributed to the seller.
	if n := countMovements(t, db, a.ID, models.MovementIn); n != 1 {
		t.Fatalf("IN movements for A = %d, want 1", n)
	}
	var mv models.InventoryMovement
	if err := db.Where("product_id = ? AND kind = ?", a.ID, models.MovementIn).First(&mv).Error; err != nil {
		t.Fatalf("load reversal movement: %v", err)
	}
	if !strings.Contains(mv.Reason, "Anulación") || mv.Responsible != "Ana Ruiz" {
		t.Fatalf("reversal movement = %q / %q", mv.Reason, mv.Responsible)
	}
}

func TestStockNeverNegativeAcrossOperations(t *testing.T) {
	svc, db := newSaleService(t)
	p := seedProduct(t, db, "Velas", "5.00", 3)

	if _, err := svc.Create(anonymousSale(
		LineInput{ProductID: p.ID, Quantity: 2, UnitPrice: "5.00", DiscountPercent: "0"},
	)); err != nil {
		t.Fatalf("first sale: %v", err)
	}
	if _, err := svc.Create(anonymousSale(
		LineInput{ProductID: p.ID, Quantity: 2, UnitPrice: "5.00", DiscountPercent: "0"},
	)); err == nil {
		t.Fatal("second sale should fail, only 1 unit left")
	}
	if got := productStock(t, db, p.ID); got != 1 {
		t.Fatalf("stock = %d, want 1", got)
	}
}
