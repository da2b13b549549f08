package httpserver

import (
	"net/http"
	"strings"
	"time"

	"aproz_tours/internal/domain"
)

const (
	sessionCookie = "aproz-sid"
	prefMaxAge    = 365 * 24 * time.Hour
)

// cookiePrefs persists visitor preferences as cookies. Values set during
// the request are visible to later reads of the same request.
type cookiePrefs struct {
	w      http.ResponseWriter
	r      *http.Request
	secure bool
	set    map[string]string
}

var _ domain.PreferenceStore = (*cookiePrefs)(nil)

func newCookiePrefs(w http.ResponseWriter, r *http.Request, secure bool) *cookiePrefs {
	return &cookiePrefs{w: w, r: r, secure: secureRequest(r, secure), set: map[string]string{}}
}

// secureRequest reports whether cookies get the Secure flag: forced by
// configuration, or the request arrived over TLS directly or via a proxy.
func secureRequest(r *http.Request, force bool) bool {
	return force || r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

func (p *cookiePrefs) Get(key string) (string, bool) {
	if v, ok := p.set[key]; ok {
		return v, true
	}
	c, err := p.r.Cookie(key)
	if err != nil {
		return "", false
	}
	return c.Value, true
}

func (p *cookiePrefs) Set(key, value string) {
	p.set[key] = value
	http.SetCookie(p.w, &http.Cookie{
		Name:     key,
		Value:    value,
		Path:     "/",
		MaxAge:   int(prefMaxAge.Seconds()),
		SameSite: http.SameSiteLaxMode,
		Secure:   p.secure,
	})
}

func setSessionCookie(w http.ResponseWriter, id string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	})
}
