package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/rmedina/go-tienda/internal/httpx"
	"github.com/rmedina/go-tienda/internal/services"

	"gorm.io/gorm"
)

// idParam extracts the numeric id from the query string (?id=N).
func idParam(r *http.Request) (uint, bool) {
	n, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil || n <= 0 {
		return 0, false
	}
	return uint(n), true
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
// Validation problems are 400 with the per-field violations attached; stock
// and referential conflicts are 409; a missing record is 404.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", verr.Violations)
		return
	}
	var serr *services.InsufficientStockError
	if errors.As(err, &serr) {
		httpx.JSONError(w, http.StatusConflict, "insufficient_stock", map[string]any{
			"message":    serr.Error(),
			"product_id": serr.ProductID,
			"available":  serr.Available,
			"requested":  serr.Requested,
		})
		return
	}
	var rerr *services.ReferentialIntegrityError
	if errors.As(err, &rerr) {
		httpx.JSONError(w, http.StatusConflict, "referential_integrity", map[string]any{
			"message": rerr.Error(),
			"entity":  rerr.Entity,
			"id":      rerr.ID,
		})
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
}
