package checkout

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warungbuyogi/storefront/internal/cart"
)

func TestFormatRupiah(t *testing.T) {
	assert.Equal(t, "Rp 0", FormatRupiah(0))
	assert.Equal(t, "Rp 500", FormatRupiah(500))
	assert.Equal(t, "Rp 10.000", FormatRupiah(10000))
	assert.Equal(t, "Rp 1.250.000", FormatRupiah(1250000))
}

func TestComposeMessageLayout(t *testing.T) {
	items := []cart.LineItem{
		{ProductID: "p1", Name: "Tomat", UnitPrice: 5000, Quantity: 2},
	}
	f := Form{Name: "Siti", Phone: "0812", Address: "Jl. Mawar 1"}

	got := ComposeMessage("WARUNG BU YOGI", "abc123", f, items, 10000)

	want := "*PESANAN BARU - WARUNG BU YOGI*\n\n" +
		"Order ID: abc123\n\n" +
		"*Data Pemesan:*\n" +
		"Nama: Siti\n" +
		"No HP: 0812\n" +
		"Alamat: Jl. Mawar 1\n" +
		"\n*Daftar Pesanan:*\n" +
		"1. Tomat (2x) - Rp 10.000\n" +
		"\n*Total Belanja: Rp 10.000*"
	assert.Equal(t, want, got)

	// dua kali compose identik byte per byte
	assert.Equal(t, got, ComposeMessage("WARUNG BU YOGI", "abc123", f, items, 10000))
}

func TestComposeMessageIncludesOptionalNote(t *testing.T) {
	f := Form{Name: "Siti", Phone: "0812", Address: "Jl. Mawar 1", Note: "jangan pedas"}
	got := ComposeMessage("X", "abc123", f, nil, 0)
	assert.Contains(t, got, "Catatan: jangan pedas\n")

	f.Note = ""
	assert.NotContains(t, ComposeMessage("X", "abc123", f, nil, 0), "Catatan:")
}

func TestWhatsAppURLEncodesText(t *testing.T) {
	link := WhatsAppURL("6282125646353", "*PESANAN BARU*\nTotal: Rp 10.000")
	require.True(t, strings.HasPrefix(link, "https://wa.me/6282125646353?text="))

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "*PESANAN BARU*\nTotal: Rp 10.000", u.Query().Get("text"))
}
