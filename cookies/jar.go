package cookies

import (
	"net/http"
	"strings"
	"time"

	"github.com/zestacademy/zestcompilers/internal/config"
	"github.com/zestacademy/zestcompilers/internal/utils"
)

// Jar knows the names and security policy of the session and CSRF state
// cookies.
type Jar struct {
	cfg config.CookieConfig
}

func NewJar(cfg config.CookieConfig) *Jar {
	return &Jar{cfg: cfg}
}

// SessionCookie stores the access token for the configured session lifetime.
func (j *Jar) SessionCookie(token string) string {
	return Serialize(j.cfg.GetSessionCookieName(), token, j.options(j.cfg.GetSessionMaxAge()))
}

// ClearSessionCookie expires the session cookie immediately.
func (j *Jar) ClearSessionCookie() string {
	return Serialize(j.cfg.GetSessionCookieName(), "", j.options(0))
}

// StateCookie stores the CSRF state for the login attempt.
func (j *Jar) StateCookie(state string) string {
	return Serialize(j.cfg.GetStateCookieName(), state, j.options(j.cfg.GetStateMaxAge()))
}

// ClearStateCookie expires the CSRF state cookie immediately.
func (j *Jar) ClearStateCookie() string {
	return Serialize(j.cfg.GetStateCookieName(), "", j.options(0))
}

// SessionToken returns the access token from the request cookies, if any.
func (j *Jar) SessionToken(r *http.Request) (string, bool) {
	return lookup(r, j.cfg.GetSessionCookieName())
}

// StoredState returns the CSRF state from the request cookies, if any.
func (j *Jar) StoredState(r *http.Request) (string, bool) {
	return lookup(r, j.cfg.GetStateCookieName())
}

func (j *Jar) options(maxAge time.Duration) Options {
	return Options{
		MaxAge:   utils.Ptr(int(maxAge / time.Second)),
		Path:     j.cfg.GetCookiePath(),
		HttpOnly: true,
		Secure:   j.cfg.GetCookieSecure(),
		SameSite: SameSite(j.cfg.GetCookieSameSite()),
	}
}

func lookup(r *http.Request, name string) (string, bool) {
	header := strings.Join(r.Header.Values("Cookie"), ";")
	if header == "" {
		return "", false
	}
	value, ok := Parse(header)[name]
	if !ok || value == "" {
		return "", false
	}
	return value, true
}
