// Package handler is the thin HTTP shell over the catalog and purchase
// services. Handlers convert wire requests to domain calls, delegate, and map
// the result (or error) back to a JSON response.
package handler

import (
	"net/http"

	"lootshop/internal/domain/purchase"
	"lootshop/internal/service"
)

// Handler serves the public API, delegating business logic to the catalog
// and purchase services.
type Handler struct {
	catalog   *service.Catalog
	purchases *purchase.Service
}

// New constructs a Handler with the required domain dependencies.
func New(catalog *service.Catalog, purchases *purchase.Service) *Handler {
	return &Handler{
		catalog:   catalog,
		purchases: purchases,
	}
}

// Routes registers every public endpoint on the mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/catalog", h.browseCatalog)
	mux.HandleFunc("GET /api/catalog/{id}", h.itemDetails)
	mux.HandleFunc("GET /api/users/{id}", h.getUser)
	mux.HandleFunc("POST /api/users/{id}/purchase", h.purchase)
	mux.HandleFunc("POST /api/users/{id}/refund", h.refund)
}
