package config

import "time"

type CookieConfig interface {
	GetSessionCookieName() string
	GetStateCookieName() string
	GetSessionMaxAge() time.Duration
	GetStateMaxAge() time.Duration
	GetCookiePath() string
	GetCookieSameSite() string
	GetCookieSecure() bool
}

type Cookies struct {
	secure bool
}

var _ CookieConfig = Cookies{}

func loadCookies(production bool) Cookies {
	return Cookies{secure: production}
}

func (Cookies) GetSessionCookieName() string {
	return "zest_access_token"
}

func (Cookies) GetStateCookieName() string {
	return "oauth_state"
}

func (Cookies) GetSessionMaxAge() time.Duration {
	return 7 * 24 * time.Hour // 7 days
}

func (Cookies) GetStateMaxAge() time.Duration {
	return 10 * time.Minute
}

func (Cookies) GetCookiePath() string {
	return "/"
}

func (Cookies) GetCookieSameSite() string {
	return "Lax"
}

// GetCookieSecure is true only in production so local http development works.
func (c Cookies) GetCookieSecure() bool {
	return c.secure
}
