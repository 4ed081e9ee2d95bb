package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warungbuyogi/storefront/internal/cart"
	"github.com/warungbuyogi/storefront/internal/catalog"
	"github.com/warungbuyogi/storefront/internal/redisx"
)

// CartHandler memuat keranjang sesi dari KV, menjalankan mutasi lewat
// cart.Store (write-through), dan mengembalikan view keranjang.
type CartHandler struct {
	KV      cart.Storage
	Catalog CatalogService
}

type cartView struct {
	Items []cart.LineItem `json:"items"`
	Total int64           `json:"total"`
	Count int             `json:"count"`
}

type addItemReq struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type updateQtyReq struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) Register(r *chi.Mux) {
	r.Get("/cart", h.getCart)
	r.Post("/cart/items", h.addItem)
	r.Patch("/cart/items/{productID}", h.updateQuantity)
	r.Delete("/cart/items/{productID}", h.removeItem)
	r.Delete("/cart", h.clear)
}

func (h *CartHandler) open(ctx context.Context, w http.ResponseWriter, r *http.Request) (*cart.Store, bool) {
	sid := sessionID(w, r)
	s, err := cart.Open(ctx, h.KV, fmt.Sprintf(redisx.KeyCart, sid))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return s, true
}

func view(s *cart.Store) cartView {
	return cartView{Items: s.Items(), Total: s.Total(), Count: s.Count()}
}

func (h *CartHandler) getCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	s, ok := h.open(ctx, w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, view(s))
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	var req addItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "missing product_id")
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	p, err := h.Catalog.Get(ctx, req.ProductID)
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s, ok := h.open(ctx, w, r)
	if !ok {
		return
	}
	// snapshot nama/harga/gambar diambil saat add, bukan saat checkout
	err = s.AddItem(ctx, cart.Product{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.Price,
		Image: p.Image,
	}, req.Quantity)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, view(s))
}

func (h *CartHandler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	var req updateQtyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	s, ok := h.open(ctx, w, r)
	if !ok {
		return
	}
	if err := s.UpdateQuantity(ctx, chi.URLParam(r, "productID"), req.Quantity); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, view(s))
}

func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	s, ok := h.open(ctx, w, r)
	if !ok {
		return
	}
	if err := s.RemoveItem(ctx, chi.URLParam(r, "productID")); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, view(s))
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	s, ok := h.open(ctx, w, r)
	if !ok {
		return
	}
	if err := s.Clear(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, view(s))
}
