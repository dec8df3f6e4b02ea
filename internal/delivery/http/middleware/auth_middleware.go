package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"kondax-backend/internal/delivery/http/response"
	"kondax-backend/internal/domain"
	"kondax-backend/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ScopeRevalidate must appear in the token's scope claim to purge the cache.
const ScopeRevalidate = "revalidate"

// AdminClaims are the claims carried by operator tokens.
type AdminClaims struct {
	// Space separated, OAuth style
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// HasScope reports whether scope is granted.
func (c *AdminClaims) HasScope(scope string) bool {
	for _, s := range strings.Fields(c.Scope) {
		if s == scope {
			return true
		}
	}
	return false
}

// AdminAuthMiddleware accepts HS256 bearer tokens signed with secret that
// grant the given scope. With no secret configured every call gets 503.
func AdminAuthMiddleware(secret, scope string, audit *security.SecurityLogger) gin.HandlerFunc {
	key := []byte(secret)

	return func(c *gin.Context) {
		if len(key) == 0 {
			response.Error(c, http.StatusServiceUnavailable, "Admin API is not configured", nil)
			c.Abort()
			return
		}

		authHeader := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			rejectAdmin(c, audit, "missing bearer token")
			return
		}

		claims := &AdminClaims{}
		token, err := jwt.ParseWithClaims(strings.TrimSpace(tokenString), claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return key, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			reason := "invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				reason = "token expired"
			}
			rejectAdmin(c, audit, reason)
			return
		}

		if !claims.HasScope(scope) {
			rejectAdmin(c, audit, "missing scope "+scope)
			return
		}

		c.Set(string(domain.KeyTokenSubject), claims.Subject)
		c.Next()
	}
}

func rejectAdmin(c *gin.Context, audit *security.SecurityLogger, reason string) {
	if audit != nil {
		audit.LogUnauthorized(c.Request.Context(), c.ClientIP(), response.RequestID(c), c.FullPath(), reason)
	}
	response.Error(c, http.StatusUnauthorized, "Unauthorized", nil)
	c.Abort()
}
