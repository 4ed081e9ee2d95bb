package httpx

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

const sessionCookie = "warung_session"

// sessionID mengambil id sesi keranjang dari cookie, atau membuat yang
// baru. Satu sesi = satu keranjang di Redis.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	sid := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(30 * 24 * time.Hour),
	})
	return sid
}
