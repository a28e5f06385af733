package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/amaravathi/marketplace/internal/auth"
	"github.com/amaravathi/marketplace/internal/domain/user"
	"github.com/amaravathi/marketplace/internal/domain/vendor"
	"github.com/gin-gonic/gin"
)

// Small interfaces so tests can fake them easily.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type UserGetter interface {
	GetByID(ctx context.Context, id int64) (user.User, error)
}

type VendorGetter interface {
	GetByID(ctx context.Context, id int64) (vendor.Vendor, error)
}

// AuthMiddleware resolves a bearer token to exactly one principal. The token's
// kind claim picks the table, so a user id and a vendor id that happen to
// collide numerically can never shadow each other.
type AuthMiddleware struct {
	jwt     TokenVerifier
	users   UserGetter
	vendors VendorGetter
}

func NewAuthMiddleware(jwt TokenVerifier, users UserGetter, vendors VendorGetter) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, users: users, vendors: vendors}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c)
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if raw == "" {
			abortUnauthorized(c)
			return
		}

		// One generic rejection whether the token is expired, forged or
		// malformed.
		claims, err := m.jwt.Verify(raw)
		if err != nil {
			abortUnauthorized(c)
			return
		}

		ctx := c.Request.Context()

		switch claims.Kind {
		case auth.KindVendor:
			v, err := m.vendors.GetByID(ctx, claims.PrincipalID)
			if err != nil {
				abortPrincipalGone(c)
				return
			}
			c.Set(ctxKindKey, auth.KindVendor)
			c.Set(ctxVendorKey, v)

		case auth.KindUser:
			u, err := m.users.GetByID(ctx, claims.PrincipalID)
			if err != nil {
				abortPrincipalGone(c)
				return
			}
			c.Set(ctxKindKey, auth.KindUser)
			c.Set(ctxUserKey, u)

		default:
			abortUnauthorized(c)
			return
		}

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": "Not authenticated",
	})
}

// The token was valid but its principal row is gone, e.g. the account was
// deleted after issuance.
func abortPrincipalGone(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
		"success": false,
		"message": "User or vendor not found",
	})
}

// Helpers so handlers don't need to know the magic keys.

func PrincipalKind(c *gin.Context) string {
	v, ok := c.Get(ctxKindKey)
	if !ok {
		return ""
	}
	kind, _ := v.(string)
	return kind
}

func UserFromContext(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return user.User{}, false
	}
	u, ok := v.(user.User)
	return u, ok
}

func VendorFromContext(c *gin.Context) (vendor.Vendor, bool) {
	v, ok := c.Get(ctxVendorKey)
	if !ok {
		return vendor.Vendor{}, false
	}
	vnd, ok := v.(vendor.Vendor)
	return vnd, ok
}
