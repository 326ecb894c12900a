package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"
)

// CookieConfig describes the cookie carrying the session token.
type CookieConfig struct {
	Name   string `env:"SESSION_COOKIE_NAME" envDefault:"__sid"`
	Secret string `env:"SESSION_SECRET"`
	Domain string `env:"SESSION_COOKIE_DOMAIN"`
	Path   string `env:"SESSION_COOKIE_PATH" envDefault:"/"`
	Secure bool   `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
}

// Cookie reads and writes the session token cookie.
// With a secret of 32+ bytes the token is signed with HMAC-SHA256;
// without one it is stored as is.
type Cookie struct {
	secret []byte
	cfg    CookieConfig
}

// NewCookie creates a token cookie from cfg.
func NewCookie(cfg CookieConfig) *Cookie {
	if cfg.Name == "" {
		cfg.Name = "__sid"
	}
	if cfg.Path == "" {
		cfg.Path = "/"
	}
	c := &Cookie{cfg: cfg}
	if len(cfg.Secret) >= 32 {
		c.secret = []byte(cfg.Secret)
	}
	return c
}

// Name returns the cookie name.
func (c *Cookie) Name() string {
	return c.cfg.Name
}

// Token returns the session token carried by r.
// Returns ErrNotFound when the cookie is absent and ErrInvalidToken when its
// signature does not verify.
func (c *Cookie) Token(r *http.Request) (string, error) {
	raw, err := r.Cookie(c.cfg.Name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrNotFound
		}
		return "", err
	}
	if c.secret == nil {
		if raw.Value == "" {
			return "", ErrInvalidToken
		}
		return raw.Value, nil
	}

	value, sig, ok := strings.Cut(raw.Value, ".")
	if !ok {
		return "", ErrInvalidToken
	}
	token, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return "", ErrInvalidToken
	}
	got, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return "", ErrInvalidToken
	}
	if !hmac.Equal(got, c.sign(token)) {
		return "", ErrInvalidToken
	}
	return string(token), nil
}

// Write sets the token cookie, expiring with the session.
func (c *Cookie) Write(w http.ResponseWriter, token string, expiresAt time.Time) {
	value := token
	if c.secret != nil {
		value = base64.RawURLEncoding.EncodeToString([]byte(token)) +
			"." + base64.RawURLEncoding.EncodeToString(c.sign([]byte(token)))
	}

	maxAge := 0
	if !expiresAt.IsZero() {
		maxAge = max(int(time.Until(expiresAt).Seconds()), 1)
	}
	http.SetCookie(w, c.cookie(value, maxAge))
}

// Clear removes the token cookie.
func (c *Cookie) Clear(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie("", -1))
}

func (c *Cookie) sign(token []byte) []byte {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write(token)
	return mac.Sum(nil)
}

func (c *Cookie) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     c.cfg.Name,
		Value:    value,
		Path:     c.cfg.Path,
		Domain:   c.cfg.Domain,
		MaxAge:   maxAge,
		Secure:   c.cfg.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
