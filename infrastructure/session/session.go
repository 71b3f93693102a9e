package session

import (
	"net/http"
	"time"
)

const CookieName = "X-Session-Token"

// DefaultTTL is used when no lifetime is configured.
const DefaultTTL = 12 * time.Hour

// Cookies issues and clears session cookies with one configured lifetime.
type Cookies struct {
	TTL    time.Duration
	Secure bool
}

func NewCookies(ttl time.Duration, secure bool) Cookies {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return Cookies{TTL: ttl, Secure: secure}
}

// Issue returns a cookie carrying token that lives as long as the session row.
func (c Cookies) Issue(token string) *http.Cookie {
	return c.cookie(token, int(c.ttl().Seconds()))
}

// Clear returns a cookie that makes the browser drop the session.
func (c Cookies) Clear() *http.Cookie {
	return c.cookie("", -1)
}

// Expiry is the expires_at stored for a session created at now.
func (c Cookies) Expiry(now time.Time) time.Time {
	return now.UTC().Add(c.ttl())
}

func (c Cookies) ttl() time.Duration {
	if c.TTL <= 0 {
		return DefaultTTL
	}
	return c.TTL
}

func (c Cookies) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   c.Secure,
	}
}
