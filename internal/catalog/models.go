package catalog

import "time"

// Product adalah baris katalog. Price dalam rupiah bulat. Image adalah
// path opaque di object storage; aplikasi ini tidak mengelola file-nya.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       int64     `json:"price"`
	Category    string    `json:"category"`
	Stock       int       `json:"stock"`
	Status      string    `json:"status"` // ready | preorder
	Image       string    `json:"image,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Filter untuk listing katalog; zero value = semua produk, terbaru dulu.
type Filter struct {
	Search    string // substring nama, case-insensitive
	Category  string // kosong = semua kategori
	ReadyOnly bool   // status ready dan stok > 0
	Sort      string // "-created" (default) | "price" | "-price"
	Limit     int    // default 50
}
