package session

import (
	"net/http"

	"github.com/google/uuid"
)

const (
	cookieName = "storefront_session"
	keyPrefix  = "cart_"

	// cookieMaxAge keeps the key around as long as the store keeps the cart.
	cookieMaxAge = 90 * 24 * 60 * 60
)

// Provider issues and recalls the stable per-visitor cart key backed by a
// browser cookie. The key is created on first access and reused afterwards.
type Provider struct {
	cookieName string
	secure     bool
}

// NewProvider builds a provider. secure marks the cookie Secure so HTTPS
// deployments never leak the cart key over plaintext.
func NewProvider(secure bool) *Provider {
	return &Provider{cookieName: cookieName, secure: secure}
}

// CartKey returns the visitor's cart key, minting and setting one when the
// request carries none. Stable across calls within a session, distinct
// across sessions.
func (p *Provider) CartKey(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(p.cookieName); err == nil && c.Value != "" {
		return c.Value
	}

	key := keyPrefix + uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     p.cookieName,
		Value:    key,
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		Secure:   p.secure,
		SameSite: http.SameSiteLaxMode,
	})

	return key
}
