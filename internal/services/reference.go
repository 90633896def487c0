package services

import (
	"github.com/rmedina/go-tienda/internal/models"

	"gorm.io/gorm"
)

// DeleteCustomer nullifies the customer reference on past sales, copying the
// customer's name into the free-text field so those sales keep displaying who
// bought, then removes the customer.
func DeleteCustomer(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var c models.Customer
		if err := tx.First(&c, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Sale{}).Where("customer_id = ?", id).
			Updates(map[string]interface{}{"customer_id": nil, "customer_name": c.FullName}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Customer{}, id).Error
	})
}

// DeleteEmployee works the same way for the seller reference.
func DeleteEmployee(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var e models.Employee
		if err := tx.First(&e, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Sale{}).Where("employee_id = ?", id).
			Updates(map[string]interface{}{"employee_id": nil, "seller_name": e.FullName}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Employee{}, id).Error
	})
}
