package httpx

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/warungbuyogi/storefront/internal/catalog"
	kafkax "github.com/warungbuyogi/storefront/internal/kafka"
	"github.com/warungbuyogi/storefront/internal/notify"
	"github.com/warungbuyogi/storefront/internal/orders"
	"github.com/warungbuyogi/storefront/internal/redisx"
)

// AdminCatalog menambah operasi tulis di atas CatalogService.
type AdminCatalog interface {
	CatalogService
	Create(ctx context.Context, p catalog.Product) (catalog.Product, error)
	Update(ctx context.Context, p catalog.Product) error
	Delete(ctx context.Context, id string) error
}

type OrderStore interface {
	ListOrders(ctx context.Context) ([]orders.Order, error)
	UpdateStatus(ctx context.Context, orderID string, to orders.Status) error
}

// AdminHandler melayani dashboard admin: CRUD produk, daftar order,
// perubahan status order, feed notifikasi. Autentikasi sebenarnya ada di
// luar aplikasi; di sini cukup bearer token opaque dari konfigurasi.
type AdminHandler struct {
	Catalog  AdminCatalog
	Orders   OrderStore
	Producer Publisher     // boleh nil
	Redis    *redis.Client // boleh nil
	Token    string
	Service  string
}

func (h *AdminHandler) Register(r *chi.Mux) {
	r.Route("/admin", func(ar chi.Router) {
		ar.Use(h.requireToken)
		ar.Post("/products", h.createProduct)
		ar.Put("/products/{id}", h.updateProduct)
		ar.Delete("/products/{id}", h.deleteProduct)
		ar.Get("/orders", h.listOrders)
		ar.Post("/orders/{id}/status", h.updateOrderStatus)
		ar.Get("/notifications", h.listNotifications)
	})
}

func (h *AdminHandler) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Token == "" {
			writeError(w, http.StatusForbidden, "admin API disabled")
			return
		}
		got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.Token)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *AdminHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var p catalog.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if p.Name == "" || p.Price < 0 {
		writeError(w, http.StatusBadRequest, "missing fields")
		return
	}
	if p.Status == "" {
		p.Status = "ready"
	}

	created, err := h.Catalog.Create(ctx, p)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *AdminHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var p catalog.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	p.ID = chi.URLParam(r, "id")

	err := h.Catalog.Update(ctx, p)
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *AdminHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	err := h.Catalog.Delete(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	os, err := h.Orders.ListOrders(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if os == nil {
		os = []orders.Order{}
	}
	writeJSON(w, http.StatusOK, os)
}

type updateStatusReq struct {
	Status string `json:"status"`
}

func (h *AdminHandler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	to, err := orders.ParseStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	orderID := chi.URLParam(r, "id")
	err = h.Orders.UpdateStatus(ctx, orderID, to)
	switch {
	case errors.Is(err, orders.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "not found")
		return
	case errors.Is(err, orders.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if h.Redis != nil {
		skey := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
		body, _ := json.Marshal(map[string]any{"status": to})
		_ = h.Redis.Set(ctx, skey, body, redisx.TTLStatusCache).Err()
	}
	if h.Producer != nil {
		h.publishStatusChanged(r, orderID, to)
	}

	writeJSON(w, http.StatusOK, map[string]any{"order_id": orderID, "status": to})
}

func (h *AdminHandler) listNotifications(w http.ResponseWriter, r *http.Request) {
	if h.Redis == nil {
		writeJSON(w, http.StatusOK, []notify.Notification{})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	raw, err := h.Redis.LRange(ctx, redisx.KeyAdminNotifications, 0, redisx.AdminNotificationsMax-1).Result()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]notify.Notification, 0, len(raw))
	for _, s := range raw {
		var n notify.Notification
		if err := json.Unmarshal([]byte(s), &n); err != nil {
			continue
		}
		out = append(out, n)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AdminHandler) publishStatusChanged(r *http.Request, orderID string, to orders.Status) {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderStatusChanged,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: orderID,
		Payload: kafkax.MustMarshal(orders.OrderStatusChangedPayload{
			OrderID:   orderID,
			NewStatus: to,
		}),
	}
	h.Producer.Publish(orders.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderStatusChanged)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
