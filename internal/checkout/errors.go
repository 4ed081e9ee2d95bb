package checkout

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCart: checkout tanpa item; tidak ada remote call yang terjadi.
	ErrEmptyCart = errors.New("cart is empty, nothing to checkout")

	// ErrSubmitInProgress: sudah ada submit berjalan untuk keranjang ini.
	ErrSubmitInProgress = errors.New("checkout already in progress")
)

// ValidationError: field wajib kosong setelah trim. Diselesaikan inline
// oleh user, tidak pernah sampai ke remote call.
type ValidationError struct{ Field string }

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// CorruptEntryError: baris keranjang tanpa product ID. Pemulihan yang
// disarankan: hapus baris tersebut dari keranjang.
type CorruptEntryError struct{ Name string }

func (e *CorruptEntryError) Error() string {
	return fmt.Sprintf("cart entry without product id: %s", e.Name)
}

// RemoteOrderError: pembuatan order di backend gagal (alasan apapun).
// Pesan diteruskan apa adanya; keranjang tetap utuh supaya bisa retry.
type RemoteOrderError struct{ Err error }

func (e *RemoteOrderError) Error() string {
	return fmt.Sprintf("create order: %v", e.Err)
}

func (e *RemoteOrderError) Unwrap() error { return e.Err }
