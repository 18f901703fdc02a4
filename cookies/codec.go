package cookies

import (
	"fmt"
	"net/url"
	"strings"
)

// SameSite is the SameSite attribute of a cookie.
type SameSite string

const (
	SameSiteStrict SameSite = "Strict"
	SameSiteLax    SameSite = "Lax"
	SameSiteNone   SameSite = "None"
)

// Options are the Set-Cookie attributes understood by Serialize.
type Options struct {
	// MaxAge in seconds. Nil omits the attribute, zero removes the cookie.
	MaxAge   *int
	Path     string
	HttpOnly bool
	Secure   bool
	SameSite SameSite
}

// Serialize builds a single Set-Cookie header value. Name and value are
// percent-encoded independently.
func Serialize(name, value string, opts Options) string {
	var b strings.Builder
	b.WriteString(encodeComponent(name))
	b.WriteByte('=')
	b.WriteString(encodeComponent(value))

	if opts.MaxAge != nil {
		fmt.Fprintf(&b, "; Max-Age=%d", *opts.MaxAge)
	}
	if opts.Path != "" {
		b.WriteString("; Path=" + opts.Path)
	}
	if opts.HttpOnly {
		b.WriteString("; HttpOnly")
	}
	if opts.Secure {
		b.WriteString("; Secure")
	}
	if opts.SameSite != "" {
		b.WriteString("; SameSite=" + string(opts.SameSite))
	}
	return b.String()
}

// Parse reads a Cookie request header into a name->value map. Fragments
// without '=' or that fail to percent-decode are skipped. Values may contain
// '='; only the first one separates name from value.
func Parse(header string) map[string]string {
	cookies := make(map[string]string)
	for _, fragment := range strings.Split(header, ";") {
		fragment = strings.TrimSpace(fragment)
		rawName, rawValue, ok := strings.Cut(fragment, "=")
		if !ok || rawName == "" {
			continue
		}
		name, err := url.PathUnescape(rawName)
		if err != nil {
			continue
		}
		value, err := url.PathUnescape(rawValue)
		if err != nil {
			continue
		}
		cookies[name] = value
	}
	return cookies
}

// encodeComponent percent-encodes everything outside the unreserved set.
// Spaces become %20, never '+'.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
