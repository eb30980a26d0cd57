package http

import (
	"net/http"
	"time"

	"salesdash/internal/config"
)

// SessionCookie writes and reads the opaque session ID cookie
type SessionCookie struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

// NewSessionCookie builds the cookie settings from the session config
func NewSessionCookie(cfg config.SessionConfig) SessionCookie {
	return SessionCookie{Name: cfg.CookieName, Secure: cfg.SecureCookie, TTL: cfg.TTL}
}

// ID returns the session ID sent by the client, or "" when absent
func (c SessionCookie) ID(r *http.Request) string {
	cookie, err := r.Cookie(c.Name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// Set sends id back to the client
func (c SessionCookie) Set(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    id,
		Path:     "/",
		MaxAge:   int(c.TTL.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
