package handlers

import (
	"net/http"
	"strings"

	"github.com/rmedina/go-tienda/internal/httpx"
	"github.com/rmedina/go-tienda/internal/models"
	"github.com/rmedina/go-tienda/internal/services"
	"github.com/rmedina/go-tienda/internal/validation"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Reference-entity handlers: thin CRUD over categories, suppliers, customers
// and employees. These work on the DB directly; the only non-trivial rules
// (what happens to references on delete) live in the services package.

type CategoryHandler struct{ DB *gorm.DB }

func NewCategoryHandler(db *gorm.DB) *CategoryHandler { return &CategoryHandler{DB: db} }

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	if id, ok := idParam(r); ok {
		var c models.Category
		if err := h.DB.First(&c, id).Error; err != nil {
			writeServiceError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, c)
		return
	}
	var cs []models.Category
	if err := h.DB.Order("name asc").Find(&cs).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": cs, "total": len(cs)})
}

type categoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Aisle       *int   `json:"aisle"`
	AreaManager string `json:"area_manager"`
	Active      *bool  `json:"active"`
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in categoryInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	c := models.Category{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Aisle:       in.Aisle,
		AreaManager: in.AreaManager,
		Active:      true,
	}
	if in.Active != nil {
		c.Active = *in.Active
	}
	if err := h.DB.Create(&c).Error; err != nil {
		if isDuplicate(err) {
			httpx.JSONError(w, http.StatusConflict, "name_already_exists", nil)
			return
		}
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var c models.Category
	if err := h.DB.First(&c, id).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	var in categoryInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if in.Name != "" {
		c.Name = strings.TrimSpace(in.Name)
	}
	if in.Description != "" {
		c.Description = in.Description
	}
	if in.Aisle != nil {
		c.Aisle = in.Aisle
	}
	if in.AreaManager != "" {
		c.AreaManager = in.AreaManager
	}
	if in.Active != nil {
		c.Active = *in.Active
	}
	if err := h.DB.Save(&c).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := services.DeleteCategory(h.DB, id); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

type SupplierHandler struct{ DB *gorm.DB }

func NewSupplierHandler(db *gorm.DB) *SupplierHandler { return &SupplierHandler{DB: db} }

func (h *SupplierHandler) List(w http.ResponseWriter, r *http.Request) {
	if id, ok := idParam(r); ok {
		var s models.Supplier
		if err := h.DB.First(&s, id).Error; err != nil {
			writeServiceError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, s)
		return
	}
	var ss []models.Supplier
	if err := h.DB.Order("company_name asc").Find(&ss).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": ss, "total": len(ss)})
}

type supplierInput struct {
	CompanyName  string `json:"company_name"`
	ContactName  string `json:"contact_name"`
	Phone        string `json:"phone"`
	CompanyPhone string `json:"company_phone"`
	Email        string `json:"email"`
	Address      string `json:"address"`
}

func (h *SupplierHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in supplierInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("company_name", in.CompanyName, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	s := models.Supplier{
		CompanyName:  strings.TrimSpace(in.CompanyName),
		ContactName:  in.ContactName,
		Phone:        in.Phone,
		CompanyPhone: in.CompanyPhone,
		Email:        in.Email,
		Address:      in.Address,
	}
	if err := h.DB.Create(&s).Error; err != nil {
		if isDuplicate(err) {
			httpx.JSONError(w, http.StatusConflict, "company_name_already_exists", nil)
			return
		}
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, s)
}

func (h *SupplierHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var s models.Supplier
	if err := h.DB.First(&s, id).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	var in supplierInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if in.CompanyName != "" {
		s.CompanyName = strings.TrimSpace(in.CompanyName)
	}
	if in.ContactName != "" {
		s.ContactName = in.ContactName
	}
	if in.Phone != "" {
		s.Phone = in.Phone
	}
	if in.CompanyPhone != "" {
		s.CompanyPhone = in.CompanyPhone
	}
	if in.Email != "" {
		s.Email = in.Email
	}
	if in.Address != "" {
		s.Address = in.Address
	}
	if err := h.DB.Save(&s).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, s)
}

func (h *SupplierHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := services.DeleteSupplier(h.DB, id); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

type CustomerHandler struct{ DB *gorm.DB }

func NewCustomerHandler(db *gorm.DB) *CustomerHandler { return &CustomerHandler{DB: db} }

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	if id, ok := idParam(r); ok {
		var c models.Customer
		if err := h.DB.First(&c, id).Error; err != nil {
			writeServiceError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, c)
		return
	}
	var cs []models.Customer
	if err := h.DB.Order("full_name asc").Find(&cs).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": cs, "total": len(cs)})
}

type customerInput struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	Notes    string `json:"notes"`
	Active   *bool  `json:"active"`
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in customerInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("full_name", in.FullName, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	c := models.Customer{
		FullName: strings.TrimSpace(in.FullName),
		Phone:    in.Phone,
		Email:    in.Email,
		Address:  in.Address,
		Notes:    in.Notes,
		Active:   true,
	}
	if in.Active != nil {
		c.Active = *in.Active
	}
	if err := h.DB.Create(&c).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var c models.Customer
	if err := h.DB.First(&c, id).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	var in customerInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if in.FullName != "" {
		c.FullName = strings.TrimSpace(in.FullName)
	}
	if in.Phone != "" {
		c.Phone = in.Phone
	}
	if in.Email != "" {
		c.Email = in.Email
	}
	if in.Address != "" {
		c.Address = in.Address
	}
	if in.Notes != "" {
		c.Notes = in.Notes
	}
	if in.Active != nil {
		c.Active = *in.Active
	}
	if err := h.DB.Save(&c).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := services.DeleteCustomer(h.DB, id); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

type EmployeeHandler struct{ DB *gorm.DB }

func NewEmployeeHandler(db *gorm.DB) *EmployeeHandler { return &EmployeeHandler{DB: db} }

func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	if id, ok := idParam(r); ok {
		var e models.Employee
		if err := h.DB.First(&e, id).Error; err != nil {
			writeServiceError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, e)
		return
	}
	var es []models.Employee
	if err := h.DB.Order("full_name asc").Find(&es).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": es, "total": len(es)})
}

type employeeInput struct {
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Salary   string `json:"salary"`
	Active   *bool  `json:"active"`
}

func employeeRoleCodes() []string {
	codes := make([]string, 0, len(models.EmployeeRoles))
	for _, role := range models.EmployeeRoles {
		codes = append(codes, role.Code)
	}
	return codes
}

func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in employeeInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("full_name", in.FullName, v)
	if in.Role != "" {
		validation.OneOf("role", in.Role, employeeRoleCodes(), v)
	}
	var salary *decimal.Decimal
	if in.Salary != "" {
		d, err := decimal.NewFromString(in.Salary)
		if err != nil || d.IsNegative() {
			v["salary"] = "invalid_amount"
		} else {
			salary = &d
		}
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	e := models.Employee{
		FullName: strings.TrimSpace(in.FullName),
		Role:     in.Role,
		Phone:    in.Phone,
		Email:    in.Email,
		Salary:   salary,
		Active:   true,
	}
	if e.Role == "" {
		e.Role = models.RoleSeller
	}
	if in.Active != nil {
		e.Active = *in.Active
	}
	if err := h.DB.Create(&e).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, e)
}

func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var e models.Employee
	if err := h.DB.First(&e, id).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	var in employeeInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	if in.Role != "" {
		validation.OneOf("role", in.Role, employeeRoleCodes(), v)
	}
	if in.Salary != "" {
		d, err := decimal.NewFromString(in.Salary)
		if err != nil || d.IsNegative() {
			v["salary"] = "invalid_amount"
		} else {
			e.Salary = &d
		}
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if in.FullName != "" {
		e.FullName = strings.TrimSpace(in.FullName)
	}
	if in.Role != "" {
		e.Role = in.Role
	}
	if in.Phone != "" {
		e.Phone = in.Phone
	}
	if in.Email != "" {
		e.Email = in.Email
	}
	if in.Active != nil {
		e.Active = *in.Active
	}
	if err := h.DB.Save(&e).Error; err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := services.DeleteEmployee(h.DB, id); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func isDuplicate(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}
