package checkout

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/warungbuyogi/storefront/internal/cart"
)

var idPrinter = message.NewPrinter(language.Indonesian)

// FormatRupiah menulis nominal dengan pemisah ribuan id-ID: 10000 -> "Rp 10.000".
func FormatRupiah(n int64) string {
	return "Rp " + idPrinter.Sprintf("%d", n)
}

// ComposeMessage membangun ringkasan pesanan untuk WhatsApp. Template
// tetap dan deterministik: urutan field dan format nominal tidak berubah
// antar pemanggilan.
func ComposeMessage(storeName, orderID string, f Form, items []cart.LineItem, total int64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*PESANAN BARU - %s*\n\n", storeName)
	fmt.Fprintf(&b, "Order ID: %s\n\n", orderID)
	b.WriteString("*Data Pemesan:*\n")
	fmt.Fprintf(&b, "Nama: %s\n", f.Name)
	fmt.Fprintf(&b, "No HP: %s\n", f.Phone)
	fmt.Fprintf(&b, "Alamat: %s\n", f.Address)
	if f.Note != "" {
		fmt.Fprintf(&b, "Catatan: %s\n", f.Note)
	}
	b.WriteString("\n*Daftar Pesanan:*\n")
	for i, li := range items {
		fmt.Fprintf(&b, "%d. %s (%dx) - %s\n", i+1, li.Name, li.Quantity, FormatRupiah(li.Subtotal()))
	}
	fmt.Fprintf(&b, "\n*Total Belanja: %s*", FormatRupiah(total))
	return b.String()
}

// WhatsAppURL membangun deep link wa.me dengan teks ter-percent-encode.
// Membuka link adalah best effort: kalau gagal, order tetap sudah ada.
func WhatsAppURL(number, text string) string {
	return "https://wa.me/" + number + "?text=" + url.QueryEscape(text)
}
