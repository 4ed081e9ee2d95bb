package orders

import "time"

type Order struct {
	ID           string      `json:"id"`
	CustomerName string      `json:"customer_name"`
	Phone        string      `json:"phone"`
	Address      string      `json:"address"`
	Note         string      `json:"note,omitempty"`
	Status       Status      `json:"status"`
	Total        int64       `json:"total"`
	CreatedAt    time.Time   `json:"created_at"`
	Items        []OrderItem `json:"items,omitempty"`
}

type OrderItem struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Image       string `json:"image,omitempty"`
	Quantity    int    `json:"quantity"`
	Price       int64  `json:"price"`
}

// ItemInput adalah satu baris permintaan order dari checkout.
// Price dari client bersifat advisory; harga di tabel products yang
// dipakai menghitung total final.
type ItemInput struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
}

// CreateOrderParams adalah snapshot permintaan checkout: sekali dibangun,
// mutasi keranjang berikutnya tidak mempengaruhinya.
type CreateOrderParams struct {
	CustomerName string      `json:"customer_name"`
	Phone        string      `json:"phone"`
	Address      string      `json:"address"`
	Note         string      `json:"note,omitempty"`
	Total        int64       `json:"total"`
	Items        []ItemInput `json:"items"`
}
