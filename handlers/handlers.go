package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"emarket/entities"

	"github.com/gorilla/mux"
)

// Handler serves a fixed product set the way the real catalog API does:
// GET /products with optional page/limit query params. Without params the
// whole catalog is returned; a page past the end is an empty list. Used by
// the demo binary and integration-style tests as a stand-in remote.
type Handler struct {
	products []entities.Product
}

func NewHandler(products []entities.Product) *Handler {
	return &Handler{
		products: products,
	}
}

func (h *Handler) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/products", h.GetProducts).Methods("GET")
	return router
}

func (h *Handler) GetProducts(w http.ResponseWriter, r *http.Request) {
	pageParam := r.URL.Query().Get("page")
	limitParam := r.URL.Query().Get("limit")

	result := h.products
	if pageParam != "" || limitParam != "" {
		page, err := strconv.Atoi(pageParam)
		if err != nil || page < 1 {
			page = 1
		}
		limit, err := strconv.Atoi(limitParam)
		if err != nil || limit < 1 {
			limit = len(h.products)
		}
		start := (page - 1) * limit
		if start > len(h.products) {
			start = len(h.products)
		}
		end := start + limit
		if end > len(h.products) {
			end = len(h.products)
		}
		result = h.products[start:end]
	}
	if result == nil {
		result = []entities.Product{}
	}

	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(result)
	if err != nil {
		log.Printf("GetProducts: %v", err)
	}
}
