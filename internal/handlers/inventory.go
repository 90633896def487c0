package handlers

import (
	"net/http"

	"github.com/rmedina/go-tienda/internal/httpx"
	"github.com/rmedina/go-tienda/internal/services"
)

// InventoryHandler covers the standalone movement ledger. Movements have no
// update endpoint; a wrong record is deleted (reversing its stock effect) and
// re-entered.
type InventoryHandler struct {
	Svc *services.InventoryService
}

func NewInventoryHandler(svc *services.InventoryService) *InventoryHandler {
	return &InventoryHandler{Svc: svc}
}

func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	if id, ok := idParam(r); ok {
		mv, err := h.Svc.Get(id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, mv)
		return
	}
	mvs, err := h.Svc.List()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": mvs, "total": len(mvs)})
}

func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.MovementInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	mv, err := h.Svc.Add(in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, mv)
}

func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
