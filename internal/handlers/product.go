package handlers

import (
	"net/http"

	"github.com/rmedina/go-tienda/internal/httpx"
	"github.com/rmedina/go-tienda/internal/services"
)

type ProductHandler struct {
	Svc *services.ProductService
}

func NewProductHandler(svc *services.ProductService) *ProductHandler {
	return &ProductHandler{Svc: svc}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	if id, ok := idParam(r); ok {
		p, err := h.Svc.Get(id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, p)
		return
	}
	products, err := h.Svc.List()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": products, "total": len(products)})
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.ProductInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	p, err := h.Svc.Create(in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var in services.ProductInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	p, err := h.Svc.Update(id, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// Delete refuses products referenced by sale lines or movement history; the
// service returns the conflict, mapped to 409 here.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.Svc.Delete(id); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}
