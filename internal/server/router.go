package server

import (
	"net/http"

	"github.com/rmedina/go-tienda/internal/handlers"
	"github.com/rmedina/go-tienda/internal/httpx"
	"github.com/rmedina/go-tienda/internal/middleware"
	"github.com/rmedina/go-tienda/internal/services"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB, log *logrus.Logger) http.Handler {
	mux := http.NewServeMux()

	ledger := services.NewLedger()
	saleSvc := services.NewSaleService(db, ledger, log)
	invSvc := services.NewInventoryService(db, ledger)
	prodSvc := services.NewProductService(db)

	// --- Health endpoints ---
	//revive:disable:unused-parameter simple handlers intentionally ignore *http.Request
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		// Lightweight DB check (SELECT 1); detailed errors stay out of the body.
		if err := db.Exec("SELECT 1").Error; err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			if _, werr := w.Write([]byte(`{"status":"degraded"}`)); werr != nil {
				_ = werr
			}
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Sales: list/create via /sales, update/delete via explicit subpaths.
	sh := handlers.NewSaleHandler(saleSvc)
	mux.HandleFunc("/sales", listCreate(sh.List, sh.Create))
	mux.HandleFunc("/sales/update", mutate(sh.Update, http.MethodPost, http.MethodPut, http.MethodPatch))
	mux.HandleFunc("/sales/delete", mutate(sh.Delete, http.MethodPost, http.MethodDelete))

	// Products
	ph := handlers.NewProductHandler(prodSvc)
	mux.HandleFunc("/products", listCreate(ph.List, ph.Create))
	mux.HandleFunc("/products/update", mutate(ph.Update, http.MethodPost, http.MethodPut, http.MethodPatch))
	mux.HandleFunc("/products/delete", mutate(ph.Delete, http.MethodPost, http.MethodDelete))

	// Inventory movements: append and delete only, no update path.
	mh := handlers.NewInventoryHandler(invSvc)
	mux.HandleFunc("/movements", listCreate(mh.List, mh.Create))
	mux.HandleFunc("/movements/delete", mutate(mh.Delete, http.MethodPost, http.MethodDelete))

	// Reference entities
	ch := handlers.NewCategoryHandler(db)
	mux.HandleFunc("/categories", listCreate(ch.List, ch.Create))
	mux.HandleFunc("/categories/update", mutate(ch.Update, http.MethodPost, http.MethodPut, http.MethodPatch))
	mux.HandleFunc("/categories/delete", mutate(ch.Delete, http.MethodPost, http.MethodDelete))

	suh := handlers.NewSupplierHandler(db)
	mux.HandleFunc("/suppliers", listCreate(suh.List, suh.Create))
	mux.HandleFunc("/suppliers/update", mutate(suh.Update, http.MethodPost, http.MethodPut, http.MethodPatch))
	mux.HandleFunc("/suppliers/delete", mutate(suh.Delete, http.MethodPost, http.MethodDelete))

	cuh := handlers.NewCustomerHandler(db)
	mux.HandleFunc("/customers", listCreate(cuh.List, cuh.Create))
	mux.HandleFunc("/customers/update", mutate(cuh.Update, http.MethodPost, http.MethodPut, http.MethodPatch))
	mux.HandleFunc("/customers/delete", mutate(cuh.Delete, http.MethodPost, http.MethodDelete))

	eh := handlers.NewEmployeeHandler(db)
	mux.HandleFunc("/employees", listCreate(eh.List, eh.Create))
	mux.HandleFunc("/employees/update", mutate(eh.Update, http.MethodPost, http.MethodPut, http.MethodPatch))
	mux.HandleFunc("/employees/delete", mutate(eh.Delete, http.MethodPost, http.MethodDelete))

	// Root placeholder
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if _, werr := w.Write([]byte("Tienda API - see /sales, /products, /movements")); werr != nil {
			_ = werr
		}
	})
	//revive:enable:unused-parameter

	return middleware.Recover(log, middleware.Logging(log, mux))
}

// listCreate dispatches GET to list and POST to create.
func listCreate(list, create http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			list(w, r)
		case http.MethodPost:
			create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	}
}

// mutate restricts a handler to the given methods.
func mutate(h http.HandlerFunc, methods ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, m := range methods {
			if r.Method == m {
				h(w, r)
				return
			}
		}
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	}
}
