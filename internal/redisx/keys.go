package redisx

import "time"

const (
	// Keranjang per sesi pelanggan: cart:{session_id} -> JSON line items.
	// Tanpa TTL: keranjang bertahan sampai di-clear eksplisit.
	KeyCart = "cart:%s"

	// Guard submit checkout per sesi: checkout:lock:{session_id} -> 1
	KeyCheckoutLock = "checkout:lock:%s"

	// Cache status order: order_status:{order_id} -> {"status": "..."}
	KeyOrderStatus = "order_status:%s"

	// Dedup event processing di notifier: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Feed notifikasi dashboard admin (list, terbaru di depan).
	KeyAdminNotifications = "admin:notifications"
)

var (
	TTLCheckoutLock = 30 * time.Second
	TTLStatusCache  = 5 * time.Minute
	TTLDedup        = 48 * time.Hour
)

// Panjang maksimum feed notifikasi admin.
const AdminNotificationsMax = 100
