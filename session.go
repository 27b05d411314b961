package auth

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
)

const DefaultCookieName = "session"

// SessionCarrier moves the session token in and out of the session cookie.
// The cookie value is base64(JSON {"jwt": token}).
type SessionCarrier struct {
	Name   string
	Secure bool
	Path   string
}

type sessionPayload struct {
	JWT string `json:"jwt"`
}

// NewSessionCarrier reads cookie name and secure flag from cfg
func NewSessionCarrier(cfg Config) *SessionCarrier {
	name := cfg.GetCookieName()
	if name == "" {
		name = DefaultCookieName
	}
	return &SessionCarrier{
		Name:   name,
		Secure: cfg.GetSecureCookies(),
		Path:   "/",
	}
}

// Encode packs token into a cookie ready to be set on the response
func (s *SessionCarrier) Encode(token string) (*fiber.Cookie, error) {
	raw, err := json.Marshal(sessionPayload{JWT: token})
	if err != nil {
		return nil, err
	}
	return s.cookie(base64.StdEncoding.EncodeToString(raw), time.Time{}), nil
}

// Decode returns the token inside a cookie value. Any decoding failure
// is reported as absent.
func (s *SessionCarrier) Decode(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}

	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return "", false
	}

	var payload sessionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", false
	}

	if payload.JWT == "" {
		return "", false
	}
	return payload.JWT, true
}

// Clear expires the session cookie
func (s *SessionCarrier) Clear() *fiber.Cookie {
	return s.cookie("", time.Now().Add(-time.Hour*(24*365)))
}

// Extract reads the session cookie of the request, it has the jwtware extractor signature
func (s *SessionCarrier) Extract(c *fiber.Ctx) (string, error) {
	token, ok := s.Decode(c.Cookies(s.Name))
	if !ok {
		return "", ErrUnableToDecodeSession
	}
	return token, nil
}

// Set writes cookie on the response
func (s *SessionCarrier) Set(ctx router.Context, cookie *fiber.Cookie) {
	ctx.Cookie(&router.Cookie{
		Name:     cookie.Name,
		Value:    cookie.Value,
		Path:     cookie.Path,
		Expires:  cookie.Expires,
		HTTPOnly: cookie.HTTPOnly,
		Secure:   cookie.Secure,
		SameSite: cookie.SameSite,
	})
}

func (s *SessionCarrier) cookie(value string, expires time.Time) *fiber.Cookie {
	path := s.Path
	if path == "" {
		path = "/"
	}
	return &fiber.Cookie{
		Name:     s.Name,
		Value:    value,
		Path:     path,
		Expires:  expires,
		HTTPOnly: true,
		Secure:   s.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}
