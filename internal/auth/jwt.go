package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Principal kinds carried in the token. The kind claim makes resolution a
// single lookup in the right table; user and vendor ids live in disjoint
// tables and may collide numerically.
const (
	KindUser   = "user"
	KindVendor = "vendor"
)

// ErrInvalidToken covers expired, forged and malformed tokens alike. Callers
// must not learn which of the three happened.
var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	Kind        string `json:"kind"`
	PrincipalID int64  `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name,omitempty"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

func (m *Manager) Generate(kind string, id int64, email, firstName string) (string, error) {
	now := time.Now().UTC()

	claims := Claims{
		Kind:        kind,
		PrincipalID: id,
		Email:       email,
		FirstName:   firstName,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			Subject:   strconv.FormatInt(id, 10),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *Manager) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HS256

		_, ok := t.Method.(*jwt.SigningMethodHMAC)

		if !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})

	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)

	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Kind != KindUser && claims.Kind != KindVendor {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
