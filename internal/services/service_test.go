package services

import (
	"testing"

	"github.com/rmedina/go-tienda/internal/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Unique in-memory database per test to avoid cross-test collisions.
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Category{}, &models.Supplier{}, &models.Customer{}, &models.Employee{},
		&models.Product{}, &models.Sale{}, &models.SaleLine{}, &models.InventoryMovement{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func newSaleService(t *testing.T) (*SaleService, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	return NewSaleService(db, NewLedger(), testLogger()), db
}

func seedProduct(t *testing.T, db *gorm.DB, name, price string, stock int) *models.Product {
	t.Helper()
	p := models.Product{Name: name, SalePrice: mustDec(t, price), Stock: stock}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed product %s: %v", name, err)
	}
	return &p
}

func seedCustomer(t *testing.T, db *gorm.DB, name string) *models.Customer {
	t.Helper()
	c := models.Customer{FullName: name, Active: true}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	return &c
}

func seedEmployee(t *testing.T, db *gorm.DB, name string) *models.Employee {
	t.Helper()
	e := models.Employee{FullName: name, Role: models.RoleSeller, Active: true}
	if err := db.Create(&e).Error; err != nil {
		t.Fatalf("seed employee: %v", err)
	}
	return &e
}

func mustDec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func productStock(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var p models.Product
	if err := db.First(&p, id).Error; err != nil {
		t.Fatalf("load product %d: %v", id, err)
	}
	return p.Stock
}

func countMovements(t *testing.T, db *gorm.DB, productID uint, kind string) int64 {
	t.Helper()
	var n int64
	q := db.Model(&models.InventoryMovement{})
	if productID != 0 {
		q = q.Where("product_id = ?", productID)
	}
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("count movements: %v", err)
	}
	return n
}

func anonymousSale(lines ...LineInput) SaleInput {
	return SaleInput{
		Customer:      CustomerChoice{Kind: CustomerAnonymous},
		PaymentMethod: models.PaymentCash,
		Paid:          true,
		Lines:         lines,
	}
}
