package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is how long an issued session token stays valid.
const DefaultTTL = 7 * 24 * time.Hour

var ErrInvalidToken = errors.New("invalid or expired token")

// Session is the identity carried inside a bearer token. Nothing is stored
// server side; the signature and expiry are the whole session.
type Session struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies session tokens with one HS256 secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

// Secret is the HS256 key, for verifiers that check tokens outside Parse.
func (i *Issuer) Secret() []byte {
	return i.secret
}

func (i *Issuer) Issue(email, role string) (string, error) {
	now := time.Now()
	claims := Session{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("unable to sign session token: %w", err)
	}

	return t, nil
}

// Parse verifies signature, algorithm and expiry and returns the embedded session.
func (i *Issuer) Parse(tokenString string) (*Session, error) {
	session := new(Session)
	token, err := jwt.ParseWithClaims(tokenString, session, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || session.Email == "" {
		return nil, ErrInvalidToken
	}

	return session, nil
}
