// Package auth verifies bearer tokens issued by the identity provider and
// carries the resulting caller through request contexts.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
)

var (
	ErrNoToken = errors.New("missing bearer token")
	// ErrNoSecret is returned by a verifier built without a signing key; such
	// a verifier accepts nothing.
	ErrNoSecret = errors.New("token secret not configured")
)

// Claims are the identity assertions the provider puts in its tokens. The
// subject is the stable user id.
type Claims struct {
	jwt.RegisteredClaims
	Email           string `json:"email,omitempty"`
	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
	Role            string `json:"role,omitempty"`
}

func (c Claims) Profile() app.Profile {
	return app.Profile{
		Subject:         c.Subject,
		Email:           c.Email,
		FirstName:       c.FirstName,
		LastName:        c.LastName,
		ProfileImageURL: c.ProfileImageURL,
		Role:            domain.Role(c.Role),
	}
}

type Verifier struct {
	secret []byte
	issuer string
}

func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer}
}

// Verify checks signature, expiry and (when configured) issuer.
func (v *Verifier) Verify(token string) (Claims, error) {
	if len(v.secret) == 0 {
		return Claims{}, ErrNoSecret
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	var c Claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) { return v.secret, nil }, opts...)
	if err != nil {
		return Claims{}, fmt.Errorf("verify token: %w", err)
	}
	if c.Subject == "" {
		return Claims{}, errors.New("verify token: empty subject")
	}
	return c, nil
}

// Sign issues a token for c, filling issuer and expiry when unset. Used by
// tests and local tooling; production tokens come from the provider.
func (v *Verifier) Sign(c Claims, ttl time.Duration) (string, error) {
	if len(v.secret) == 0 {
		return "", ErrNoSecret
	}
	now := time.Now()
	if c.Issuer == "" {
		c.Issuer = v.issuer
	}
	if c.IssuedAt == nil {
		c.IssuedAt = jwt.NewNumericDate(now)
	}
	if c.ExpiresAt == nil {
		c.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(v.secret)
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tok) == "" {
		return "", ErrNoToken
	}
	return strings.TrimSpace(tok), nil
}
