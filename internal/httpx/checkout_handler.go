package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/warungbuyogi/storefront/internal/cart"
	"github.com/warungbuyogi/storefront/internal/checkout"
	kafkax "github.com/warungbuyogi/storefront/internal/kafka"
	"github.com/warungbuyogi/storefront/internal/orders"
	"github.com/warungbuyogi/storefront/internal/redisx"
)

// Publisher adalah subset kafkax.Producer yang dipakai handler; test
// memakai fake yang merekam pesan.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type CheckoutHandler struct {
	KV       cart.Storage
	Seq      *checkout.Sequencer
	Producer Publisher     // boleh nil: tanpa event
	Redis    *redis.Client // boleh nil: tanpa lock lintas-request & cache status
	Service  string
}

func (h *CheckoutHandler) Register(r *chi.Mux) {
	r.Post("/checkout", h.submit)
}

func (h *CheckoutHandler) submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var form checkout.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	sid := sessionID(w, r)
	crt, err := cart.Open(ctx, h.KV, fmt.Sprintf(redisx.KeyCart, sid))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// lock lintas-request per sesi; guard in-process ada di Sequencer
	if h.Redis != nil {
		lkey := fmt.Sprintf(redisx.KeyCheckoutLock, sid)
		ok, err := h.Redis.SetNX(ctx, lkey, "1", redisx.TTLCheckoutLock).Result()
		if err == nil && !ok {
			writeError(w, http.StatusConflict, checkout.ErrSubmitInProgress.Error())
			return
		}
		defer h.Redis.Del(context.Background(), lkey)
	}

	items := crt.Items() // untuk payload event; Submit mengosongkan keranjang
	res, err := h.Seq.Submit(ctx, crt, form)
	if err != nil {
		writeCheckoutError(w, err)
		return
	}

	if h.Redis != nil {
		skey := fmt.Sprintf(redisx.KeyOrderStatus, res.OrderID)
		_ = h.Redis.Set(ctx, skey, `{"status":"pending"}`, redisx.TTLStatusCache).Err()
	}

	if h.Producer != nil {
		h.publishPlaced(r, res, form, items)
	}

	writeJSON(w, http.StatusCreated, res)
}

func writeCheckoutError(w http.ResponseWriter, err error) {
	var (
		verr *checkout.ValidationError
		cerr *checkout.CorruptEntryError
		rerr *checkout.RemoteOrderError
	)
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, checkout.ErrSubmitInProgress):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &verr), errors.As(err, &cerr):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &rerr):
		// alasan remote diteruskan apa adanya; keranjang masih utuh
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *CheckoutHandler) publishPlaced(r *http.Request, res checkout.Result, form checkout.Form, items []cart.LineItem) {
	lines := make([]orders.ItemInput, 0, len(items))
	for _, li := range items {
		lines = append(lines, orders.ItemInput{
			ProductID: li.ProductID,
			Quantity:  li.Quantity,
			Price:     li.UnitPrice,
		})
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderPlaced,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: res.OrderID,
		Payload: kafkax.MustMarshal(orders.OrderPlacedPayload{
			OrderID:      res.OrderID,
			CustomerName: form.Name,
			Phone:        form.Phone,
			Total:        res.Total,
			Items:        lines,
		}),
	}
	h.Producer.Publish(orders.PartitionKey(res.OrderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderPlaced)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
