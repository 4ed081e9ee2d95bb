package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// LineItem adalah satu baris keranjang. Name, UnitPrice dan Image adalah
// snapshot saat produk ditambahkan; perubahan produk di katalog tidak
// menyentuh keranjang yang sudah ada.
type LineItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Image     string `json:"image,omitempty"`
	Quantity  int    `json:"quantity"`
}

// Subtotal = harga satuan x jumlah.
func (li LineItem) Subtotal() int64 { return li.UnitPrice * int64(li.Quantity) }

// Product adalah input minimal untuk AddItem; httpx memetakan
// catalog.Product ke sini supaya package cart tetap berdiri sendiri.
type Product struct {
	ID    string
	Name  string
	Price int64
	Image string
}

// Storage adalah KV durable tempat keranjang disimpan: satu key berisi
// seluruh state ter-serialize. Get mengembalikan (nil, nil) jika key
// belum ada.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Store menyimpan line item keranjang dengan urutan insert. Setiap mutasi
// menulis ulang seluruh state ke Storage sebelum return (write-through
// sinkron); listener dipanggil setelah tulisan sukses, berurutan sesuai
// registrasi, di goroutine pemanggil.
type Store struct {
	mu        sync.Mutex
	kv        Storage
	key       string
	items     []LineItem
	listeners []func([]LineItem)
}

// Open memuat keranjang dari Storage, atau mulai kosong jika key belum ada.
func Open(ctx context.Context, kv Storage, key string) (*Store, error) {
	s := &Store{kv: kv, key: key}
	b, err := kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load cart %s: %w", key, err)
	}
	if len(b) > 0 {
		if err := json.Unmarshal(b, &s.items); err != nil {
			return nil, fmt.Errorf("decode cart %s: %w", key, err)
		}
	}
	return s, nil
}

// Key mengembalikan key Storage milik store ini.
func (s *Store) Key() string { return s.key }

// Subscribe mendaftarkan listener yang dipanggil setelah tiap mutasi sukses
// (setelah persist). Tidak thread-safe terhadap mutasi berjalan; daftarkan
// sebelum store dipakai.
func (s *Store) Subscribe(fn func(items []LineItem)) {
	s.listeners = append(s.listeners, fn)
}

// AddItem menambahkan produk ke keranjang. Kalau product ID sudah ada,
// quantity baris itu bertambah qty; kalau belum, baris baru ditambahkan di
// akhir dengan snapshot nama/harga/gambar. qty <= 0 adalah no-op diam-diam
// (konsisten dengan UpdateQuantity di bawah 1). Batas stok bukan urusan
// store ini.
func (s *Store) AddItem(ctx context.Context, p Product, qty int) error {
	if qty <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := snapshot(s.items)
	found := false
	for i := range next {
		if next[i].ProductID == p.ID {
			next[i].Quantity += qty
			found = true
			break
		}
	}
	if !found {
		next = append(next, LineItem{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.Price,
			Image:     p.Image,
			Quantity:  qty,
		})
	}
	return s.commitLocked(ctx, next)
}

// RemoveItem menghapus baris dengan product ID tersebut; no-op jika tidak ada.
func (s *Store) RemoveItem(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]LineItem, 0, len(s.items))
	for _, li := range s.items {
		if li.ProductID != productID {
			next = append(next, li)
		}
	}
	if len(next) == len(s.items) {
		return nil
	}
	return s.commitLocked(ctx, next)
}

// UpdateQuantity mengeset quantity baris persis ke qty. qty < 1 adalah
// no-op; penghapusan harus lewat RemoveItem. No-op juga jika product ID
// tidak ada di keranjang.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, qty int) error {
	if qty < 1 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := snapshot(s.items)
	for i := range next {
		if next[i].ProductID == productID {
			if next[i].Quantity == qty {
				return nil
			}
			next[i].Quantity = qty
			return s.commitLocked(ctx, next)
		}
	}
	return nil
}

// Clear mengosongkan keranjang dan mem-persist state kosong.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitLocked(ctx, []LineItem{})
}

// Items mengembalikan salinan baris keranjang sesuai urutan insert.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.items)
}

// Total = Σ(unit price x quantity). Rupiah bulat, jadi eksak.
func (s *Store) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, li := range s.items {
		total += li.UnitPrice * int64(li.Quantity)
	}
	return total
}

// Count = Σ quantity, untuk badge keranjang di UI.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, li := range s.items {
		n += li.Quantity
	}
	return n
}

func (s *Store) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) == 0
}

// commitLocked mem-persist next lalu menjadikannya state in-memory.
// Kalau tulisan gagal, state lama tetap berlaku (memori dan storage tidak
// pernah berbeda setelah return).
func (s *Store) commitLocked(ctx context.Context, next []LineItem) error {
	b, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode cart %s: %w", s.key, err)
	}
	if err := s.kv.Set(ctx, s.key, b); err != nil {
		return fmt.Errorf("persist cart %s: %w", s.key, err)
	}
	s.items = next
	for _, fn := range s.listeners {
		fn(snapshot(s.items))
	}
	return nil
}

func snapshot(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}
