package checkout

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/warungbuyogi/storefront/internal/cart"
	"github.com/warungbuyogi/storefront/internal/orders"
)

// Form adalah data pemesan dari halaman checkout.
type Form struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Note    string `json:"note,omitempty"`
}

// OrderCreator adalah operasi remote pembuatan order: atomik, semua item
// tercatat atau tidak sama sekali. Produksi: orders.Repo di atas Postgres;
// test: fake in-memory.
type OrderCreator interface {
	CreateOrder(ctx context.Context, p orders.CreateOrderParams) (string, error)
}

type Result struct {
	OrderID     string `json:"order_id"`
	Total       int64  `json:"total"`
	Message     string `json:"message"`
	WhatsAppURL string `json:"whatsapp_url"`
}

// Sequencer menjalankan urutan checkout: precondition, validasi, proyeksi,
// remote call, pesan konfirmasi, reset keranjang, deep link WhatsApp.
type Sequencer struct {
	Orders         OrderCreator
	StoreName      string
	WhatsAppNumber string

	// satu submit berjalan per keranjang; klik ganda tidak boleh
	// menghasilkan dua order
	inflight sync.Map
}

// Submit memproses checkout untuk keranjang crt.
//
// Gagal di precondition/validasi/proyeksi: tanpa efek samping, remote
// tidak dipanggil. Gagal di remote call: keranjang utuh, user bisa retry.
// Setelah remote sukses, kegagalan menyusun pesan atau mengosongkan
// keranjang tidak membatalkan order yang sudah dibuat.
func (s *Sequencer) Submit(ctx context.Context, crt *cart.Store, f Form) (Result, error) {
	if _, busy := s.inflight.LoadOrStore(crt.Key(), struct{}{}); busy {
		return Result{}, ErrSubmitInProgress
	}
	defer s.inflight.Delete(crt.Key())

	items := crt.Items()
	if len(items) == 0 {
		return Result{}, ErrEmptyCart
	}

	f.Name = strings.TrimSpace(f.Name)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Address = strings.TrimSpace(f.Address)
	f.Note = strings.TrimSpace(f.Note)
	switch {
	case f.Name == "":
		return Result{}, &ValidationError{Field: "name"}
	case f.Phone == "":
		return Result{}, &ValidationError{Field: "phone"}
	case f.Address == "":
		return Result{}, &ValidationError{Field: "address"}
	}

	var total int64
	lines := make([]orders.ItemInput, 0, len(items))
	for _, li := range items {
		if li.ProductID == "" {
			return Result{}, &CorruptEntryError{Name: li.Name}
		}
		lines = append(lines, orders.ItemInput{
			ProductID: li.ProductID,
			Quantity:  li.Quantity,
			Price:     li.UnitPrice,
		})
		total += li.Subtotal()
	}

	orderID, err := s.Orders.CreateOrder(ctx, orders.CreateOrderParams{
		CustomerName: f.Name,
		Phone:        f.Phone,
		Address:      f.Address,
		Note:         f.Note,
		Total:        total,
		Items:        lines,
	})
	if err != nil {
		return Result{}, &RemoteOrderError{Err: err}
	}

	msg := ComposeMessage(s.StoreName, orderID, f, items, total)

	if err := crt.Clear(ctx); err != nil {
		// order sudah ada; keranjang yang gagal dikosongkan bukan
		// kegagalan checkout
		log.Printf("clear cart %s after checkout: %v", crt.Key(), err)
	}

	return Result{
		OrderID:     orderID,
		Total:       total,
		Message:     msg,
		WhatsAppURL: WhatsAppURL(s.WhatsAppNumber, msg),
	}, nil
}
