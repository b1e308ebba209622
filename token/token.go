// Package token issues and verifies the short-lived signed tokens that carry
// a gated redirect across the credential-entry round trip.
package token

import (
	"crypto/rand"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/HaslienFotografene/haslien-short-2/model"
)

// Token types, one per credential-entry flow.
const (
	TypeLogin    = "login"
	TypePassword = "password"
	TypeFrame    = "frame"
)

// TTL is the lifetime of every issued token.
const TTL = 15 * time.Minute

// secretLength is the size of the process-lifetime signing secret in bytes.
const secretLength = 32

var (
	ErrEmptyToken    = errors.New("empty token")
	ErrInvalidClaims = errors.New("token carries no usable claims")
)

// Claims is the payload of an authorization token. Primary/Secondary are only
// present on authorized tokens minted after a successful credential check.
type Claims struct {
	Path      string      `json:"path"`
	AccessID  string      `json:"a,omitempty"`
	Type      string      `json:"type"`
	Flags     model.Flags `json:"flags"`
	Primary   string      `json:"primary,omitempty"`
	Secondary string      `json:"secondary,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies tokens with a process-lifetime secret. The secret
// is generated at startup and never persisted, so every restart invalidates
// all outstanding tokens. That is deliberate: tokens live 15 minutes and the
// simplicity beats key management for this service.
type Issuer struct {
	secret []byte
}

// NewSecret generates a random signing secret.
func NewSecret() ([]byte, error) {
	secret := make([]byte, secretLength)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	return secret, nil
}

// NewIssuer creates an issuer around the given signing secret.
func NewIssuer(secret []byte) *Issuer {
	return &Issuer{secret: secret}
}

// Issue signs a token for a path about to be gated. accessID references the
// access-log entry recorded for the request, and may be empty.
func (i *Issuer) Issue(path, typ, accessID string, flags model.Flags) (string, error) {
	now := time.Now()
	claims := &Claims{
		Path:     path,
		AccessID: accessID,
		Type:     typ,
		Flags:    flags,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Authorize re-mints a verified token with the supplied credentials embedded,
// giving it a fresh expiry window. The framed view uses the result to stay
// authorized across page reloads.
func (i *Issuer) Authorize(c *Claims, primary, secondary string) (string, error) {
	if c == nil {
		return "", ErrInvalidClaims
	}
	now := time.Now()
	authed := &Claims{
		Path:      c.Path,
		AccessID:  c.AccessID,
		Type:      c.Type,
		Flags:     c.Flags,
		Primary:   primary,
		Secondary: secondary,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, authed).SignedString(i.secret)
}

// Verify validates signature and expiry and returns the decoded claims. Any
// failure (tampered, expired, malformed, wrong algorithm) comes back as an
// error; the caller treats all of them as unauthenticated.
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrEmptyToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}

// Decode structurally decodes a token without checking signature or expiry.
// The result is untrusted and is only good for telling a human which path
// their dead link pointed at; it must never authorize anything.
func Decode(tokenString string) *Claims {
	if tokenString == "" {
		return nil
	}

	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil
	}
	return claims
}
