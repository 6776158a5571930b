// Package session implements the cookie codec for the admin session.
//
// The session is an unsigned, client-readable JSON payload carried verbatim
// in a cookie named by the codec. That model is ported as-is for wire
// compatibility: it is not tamper-resistant, and callers must treat the
// decoded identity as a claim to be re-verified against the database.
package session

import (
	"encoding/json"
	"strings"
)

// Payload is the structured content of the session cookie.
type Payload struct {
	UserID   int64  `json:"user_id,omitempty"`
	Language string `json:"language,omitempty"`
}

// Codec encodes and decodes session cookies.
type Codec struct {
	cookieName string
}

// NewCodec returns a Codec bound to the given cookie name.
func NewCodec(cookieName string) *Codec {
	if cookieName == "" {
		cookieName = "session"
	}
	return &Codec{cookieName: cookieName}
}

// CookieName returns the cookie the codec reads and writes.
func (c *Codec) CookieName() string {
	return c.cookieName
}

// Decode parses a raw Cookie header value into a Payload. Decoding is
// lenient: a missing cookie, malformed attribute list, or unparseable JSON
// yields ok=false, never an error. Each pair is cut on its first "=" only;
// a JSON value containing "=" must not be re-split.
func (c *Codec) Decode(rawHeader string) (Payload, bool) {
	if rawHeader == "" {
		return Payload{}, false
	}
	var raw string
	for _, attr := range strings.Split(rawHeader, ";") {
		name, value, found := strings.Cut(attr, "=")
		if !found {
			continue
		}
		if strings.TrimSpace(name) == c.cookieName {
			raw = strings.TrimSpace(value)
			break
		}
	}
	if raw == "" {
		return Payload{}, false
	}
	var p Payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Payload{}, false
	}
	return p, true
}

// Encode renders the full Set-Cookie value carrying the payload. Encoding a
// well-formed payload always succeeds; the fixed attribute set mirrors the
// original cookie contract.
func (c *Codec) Encode(p Payload) string {
	data, _ := json.Marshal(p)
	attrs := []string{
		c.cookieName + "=" + string(data),
		"HttpOnly",
		"SameSite=Lax",
		"Path=/",
	}
	return strings.Join(attrs, "; ")
}

// EncodeExpired renders a Set-Cookie value that clears the session.
func (c *Codec) EncodeExpired() string {
	attrs := []string{
		c.cookieName + "=",
		"HttpOnly",
		"SameSite=Lax",
		"Path=/",
		"Max-Age=0",
	}
	return strings.Join(attrs, "; ")
}
