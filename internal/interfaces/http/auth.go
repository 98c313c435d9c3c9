package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/sric-portal/expense-workflow/internal/domain/entity"
)

const identityKey = "identity"

// IdentityClaims are the token claims the portal's identity provider issues.
type IdentityClaims struct {
	Name       string `json:"name"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	jwt.RegisteredClaims
}

// AuthMiddleware verifies the bearer token and stores the caller identity on
// the request context.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abortUnauthorized(c, "missing bearer token")
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims := &IdentityClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		role := entity.Role(claims.Role)
		if !role.IsValid() {
			abortUnauthorized(c, "token carries an unknown role")
			return
		}

		c.Set(identityKey, entity.UserRef{
			ID:         claims.Subject,
			Name:       claims.Name,
			Role:       role,
			Department: claims.Department,
		})
		c.Next()
	}
}

// CurrentUser returns the authenticated caller set by AuthMiddleware.
func CurrentUser(c *gin.Context) (entity.UserRef, bool) {
	value, ok := c.Get(identityKey)
	if !ok {
		return entity.UserRef{}, false
	}
	user, ok := value.(entity.UserRef)
	return user, ok
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
		Success: false,
		Error:   message,
		Code:    "UNAUTHORIZED",
	})
}
