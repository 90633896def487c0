package services

import (
	"strings"

	"github.com/rmedina/go-tienda/internal/models"
	"github.com/rmedina/go-tienda/internal/money"
	"github.com/rmedina/go-tienda/internal/validation"

	"gorm.io/gorm"
)

// ProductInput carries catalog fields. Stock is only accepted on creation (the
// opening quantity); afterwards stock changes exclusively through sales and
// inventory movements.
type ProductInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	SalePrice   string `json:"sale_price"`
	Stock       int    `json:"stock"`
	Barcode     string `json:"barcode"`
	CategoryID  *uint  `json:"category_id"`
	SupplierIDs []uint `json:"supplier_ids"`
}

// ProductService covers catalog CRUD plus the deletion protection rule: a
// product referenced by sale lines or movement history must not be deleted.
type ProductService struct {
	db *gorm.DB
}

func NewProductService(db *gorm.DB) *ProductService { return &ProductService{db: db} }

func (s *ProductService) Create(in ProductInput) (*models.Product, error) {
	viol := validation.Violations{}
	validation.Required("name", in.Name, viol)
	price, ok := money.ParseAmount(in.SalePrice)
	if !ok || price.IsNegative() {
		viol["sale_price"] = "invalid_amount"
	}
	if in.Stock < 0 {
		viol["stock"] = "must_not_be_negative"
	}
	if !viol.Empty() {
		return nil, &ValidationError{Violations: viol}
	}
	p := models.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		SalePrice:   price,
		Stock:       in.Stock,
		CategoryID:  in.CategoryID,
	}
	if b := strings.TrimSpace(in.Barcode); b != "" {
		p.Barcode = &b
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		return s.assignSuppliers(tx, &p, in.SupplierIDs)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ProductService) Update(id uint, in ProductInput) (*models.Product, error) {
	viol := validation.Violations{}
	validation.Required("name", in.Name, viol)
	price, ok := money.ParseAmount(in.SalePrice)
	if !ok || price.IsNegative() {
		viol["sale_price"] = "invalid_amount"
	}
	if !viol.Empty() {
		return nil, &ValidationError{Violations: viol}
	}
	var p models.Product
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&p, id).Error; err != nil {
			return err
		}
		var barcode *string
		if b := strings.TrimSpace(in.Barcode); b != "" {
			barcode = &b
		}
		updates := map[string]any{
			"name":        strings.TrimSpace(in.Name),
			"description": in.Description,
			"sale_price":  price,
			"barcode":     barcode,
			"category_id": in.CategoryID,
		}
		if err := tx.Model(&p).Updates(updates).Error; err != nil {
			return err
		}
		return s.assignSuppliers(tx, &p, in.SupplierIDs)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete refuses to remove a product that sale lines or inventory movements
// still reference; history must never end up pointing at a missing product.
func (s *ProductService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := tx.First(&p, id).Error; err != nil {
			return err
		}
		var lineRefs int64
		if err := tx.Model(&models.SaleLine{}).Where("product_id = ?", id).Count(&lineRefs).Error; err != nil {
			return err
		}
		if lineRefs > 0 {
			return &ReferentialIntegrityError{Entity: "Product", ID: id, Reason: "referenced by sale lines"}
		}
		var movementRefs int64
		if err := tx.Model(&models.InventoryMovement{}).Where("product_id = ?", id).Count(&movementRefs).Error; err != nil {
			return err
		}
		if movementRefs > 0 {
			return &ReferentialIntegrityError{Entity: "Product", ID: id, Reason: "referenced by inventory movements"}
		}
		if err := tx.Model(&p).Association("Suppliers").Clear(); err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, id).Error
	})
}

func (s *ProductService) Get(id uint) (*models.Product, error) {
	var p models.Product
	if err := s.db.Preload("Category").Preload("Suppliers").First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ProductService) List() ([]models.Product, error) {
	var products []models.Product
	err := s.db.Preload("Category").Preload("Suppliers").Order("name asc").Find(&products).Error
	return products, err
}

func (s *ProductService) assignSuppliers(tx *gorm.DB, p *models.Product, ids []uint) error {
	if ids == nil {
		return nil
	}
	var suppliers []models.Supplier
	if len(ids) > 0 {
		if err := tx.Find(&suppliers, ids).Error; err != nil {
			return err
		}
		if len(suppliers) != len(ids) {
			return newValidationError("supplier_ids", "unknown_supplier")
		}
	}
	return tx.Model(p).Association("Suppliers").Replace(&suppliers)
}

// DeleteCategory nullifies the category reference on products before removing
// the category itself: category deletion never cascades into the catalog.
func DeleteCategory(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var c models.Category
		if err := tx.First(&c, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Product{}).Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Category{}, id).Error
	})
}

// DeleteSupplier detaches the supplier from every product, then removes it.
func DeleteSupplier(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var sup models.Supplier
		if err := tx.First(&sup, id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM product_suppliers WHERE supplier_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Supplier{}, id).Error
	})
}
