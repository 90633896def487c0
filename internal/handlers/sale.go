package handlers

import (
	"net/http"

	"github.com/rmedina/go-tienda/internal/httpx"
	"github.com/rmedina/go-tienda/internal/services"
)

// SaleHandler exposes the sale lifecycle over JSON. All mutations are
// delegated to SaleService so they stay transactional.
type SaleHandler struct {
	Svc *services.SaleService
}

func NewSaleHandler(svc *services.SaleService) *SaleHandler { return &SaleHandler{Svc: svc} }

func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
	if id, ok := idParam(r); ok {
		sale, err := h.Svc.Get(id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, sale)
		return
	}
	sales, err := h.Svc.List()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": sales, "total": len(sales)})
}

func (h *SaleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.SaleInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	sale, err := h.Svc.Create(in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sale)
}

func (h *SaleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var in services.SaleInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	sale, err := h.Svc.Update(id, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

func (h *SaleHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
